package api

import (
	"bytes"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/annel0/voxel-mesher/internal/chunk"
	"github.com/annel0/voxel-mesher/internal/export"
)

// GenericResponse представляет общий ответ API
type GenericResponse struct {
	Success bool        `json:"success"`
	Message string      `json:"message"`
	Data    interface{} `json:"data,omitempty"`
}

// ChunkSummary описывает чанк без геометрии
type ChunkSummary struct {
	X           int       `json:"x"`
	Z           int       `json:"z"`
	Active      bool      `json:"active"`
	Generation  uint64    `json:"generation"`
	Method      string    `json:"method"`
	SolidVoxels int       `json:"solid_voxels"`
	Vertices    int       `json:"vertices"`
	Triangles   int       `json:"triangles"`
	Quads       int       `json:"quads"`
	MeshMicros  int64     `json:"mesh_us"`
	BuiltAt     time.Time `json:"built_at"`
}

// MeshPayload содержит геометрию чанка: тройки координат вершин и индексы треугольников
type MeshPayload struct {
	X        int        `json:"x"`
	Z        int        `json:"z"`
	Origin   [3]float32 `json:"origin"`
	Vertices []float32  `json:"vertices"`
	Indices  []uint32   `json:"indices"`
}

// PlayerRequest содержит мировую позицию игрока
type PlayerRequest struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
	Z float64 `json:"z"`
}

func summarize(ch chunk.Chunk) ChunkSummary {
	return ChunkSummary{
		X:           ch.Coord.X,
		Z:           ch.Coord.Z,
		Active:      ch.Active,
		Generation:  ch.Generation,
		Method:      ch.Stats.Method.String(),
		SolidVoxels: ch.Grid.SolidCount(),
		Vertices:    ch.Stats.Vertices,
		Triangles:   ch.Stats.Triangles,
		Quads:       ch.Stats.Quads,
		MeshMicros:  ch.Stats.Duration.Microseconds(),
		BuiltAt:     ch.BuiltAt,
	}
}

// handleHealth проверяет состояние сервиса
func (rs *RestServer) handleHealth(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status": "ok",
		"time":   time.Now().Unix(),
	})
}

// handleServerInfo возвращает сведения о процессе и хранилище
func (rs *RestServer) handleServerInfo(c *gin.Context) {
	info := rs.metrics.Snapshot()
	info["chunks"] = rs.store.Len()
	info["active_chunks"] = len(rs.store.ActiveCoords())
	info["mesh_builds"] = rs.store.MeshBuilds()
	info["method"] = rs.store.Method().String()
	info["render_distance"] = rs.store.RenderDistance()
	info["chunk_size"] = rs.store.ChunkSize()

	c.JSON(http.StatusOK, GenericResponse{
		Success: true,
		Message: "Информация о сервисе",
		Data:    info,
	})
}

// handlePlayer обновляет окно стриминга по позиции игрока
func (rs *RestServer) handlePlayer(c *gin.Context) {
	var req PlayerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, GenericResponse{
			Success: false,
			Message: "Неверный формат запроса",
		})
		return
	}

	if err := chunk.CheckPosition(req.X, req.Z, rs.store.ChunkSize()); err != nil {
		c.JSON(http.StatusBadRequest, GenericResponse{
			Success: false,
			Message: err.Error(),
		})
		return
	}

	res, err := rs.store.Update(c.Request.Context(), req.X, req.Z)
	if err != nil {
		rs.logger.Warn("обновление окна прервано: %v", err)
		c.JSON(http.StatusServiceUnavailable, GenericResponse{
			Success: false,
			Message: "Обновление окна прервано",
			Data:    res,
		})
		return
	}

	c.JSON(http.StatusOK, GenericResponse{
		Success: true,
		Message: "Окно обновлено",
		Data:    res,
	})
}

// handleListChunks возвращает все чанки; с ?active=true только активные
func (rs *RestServer) handleListChunks(c *gin.Context) {
	onlyActive := c.Query("active") == "true"

	chunks := rs.store.Chunks()
	summaries := make([]ChunkSummary, 0, len(chunks))
	for _, ch := range chunks {
		if onlyActive && !ch.Active {
			continue
		}
		summaries = append(summaries, summarize(ch))
	}

	data := gin.H{
		"chunks": summaries,
		"total":  len(summaries),
	}
	if center, ok := rs.store.Center(); ok {
		data["center"] = center
	}

	c.JSON(http.StatusOK, GenericResponse{
		Success: true,
		Message: "Список чанков",
		Data:    data,
	})
}

// handleGetChunk возвращает описание одного чанка
func (rs *RestServer) handleGetChunk(c *gin.Context) {
	ch, ok := rs.lookup(c)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, GenericResponse{
		Success: true,
		Message: "Чанк " + ch.Coord.String(),
		Data:    summarize(ch),
	})
}

// handleGetMesh возвращает меш чанка. ?world=true сдвигает вершины в мировые координаты,
// ?format=gltf|glb отдаёт glTF вместо JSON.
func (rs *RestServer) handleGetMesh(c *gin.Context) {
	ch, ok := rs.lookup(c)
	if !ok {
		return
	}

	origin := ch.Coord.Origin(rs.store.ChunkSize())
	m := ch.Mesh
	if c.Query("world") == "true" {
		m = m.Translated(origin)
	}

	switch c.Query("format") {
	case "gltf", "glb":
		rs.writeGLTF(c, []export.Item{{Name: "chunk" + ch.Coord.String(), Mesh: m}})
		return
	case "", "json":
	default:
		c.JSON(http.StatusBadRequest, GenericResponse{
			Success: false,
			Message: "Неизвестный формат: " + c.Query("format"),
		})
		return
	}

	vertices := make([]float32, 0, len(m.Vertices)*3)
	for _, v := range m.Vertices {
		vertices = append(vertices, v[0], v[1], v[2])
	}

	c.JSON(http.StatusOK, MeshPayload{
		X:        ch.Coord.X,
		Z:        ch.Coord.Z,
		Origin:   origin,
		Vertices: vertices,
		Indices:  m.Indices,
	})
}

// handleExport отдаёт все активные чанки одним glTF в мировых координатах
func (rs *RestServer) handleExport(c *gin.Context) {
	size := rs.store.ChunkSize()

	var items []export.Item
	for _, ch := range rs.store.Chunks() {
		if !ch.Active {
			continue
		}
		items = append(items, export.Item{
			Name:   "chunk" + ch.Coord.String(),
			Mesh:   ch.Mesh,
			Offset: ch.Coord.Origin(size),
		})
	}
	rs.writeGLTF(c, items)
}

func (rs *RestServer) writeGLTF(c *gin.Context, items []export.Item) {
	binary := c.Query("format") != "gltf"
	contentType := "model/gltf-binary"
	if !binary {
		contentType = "model/gltf+json"
	}

	var buf bytes.Buffer
	if err := export.WriteGLTF(&buf, items, binary); err != nil {
		if errors.Is(err, export.ErrNothingToExport) {
			c.JSON(http.StatusNotFound, GenericResponse{
				Success: false,
				Message: "Нет геометрии для экспорта",
			})
			return
		}
		rs.logger.Error("экспорт glTF: %v", err)
		respondError(c, err)
		return
	}
	c.Data(http.StatusOK, contentType, buf.Bytes())
}

func (rs *RestServer) handleActivate(c *gin.Context) {
	rs.toggle(c, true)
}

func (rs *RestServer) handleDeactivate(c *gin.Context) {
	rs.toggle(c, false)
}

func (rs *RestServer) toggle(c *gin.Context, active bool) {
	coord, ok := parseCoord(c)
	if !ok {
		return
	}

	var err error
	if active {
		err = rs.store.Activate(coord)
	} else {
		err = rs.store.Deactivate(coord)
	}
	if err != nil {
		respondError(c, err)
		return
	}

	ch, err := rs.store.Get(coord)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, GenericResponse{
		Success: true,
		Message: "Состояние чанка изменено",
		Data:    summarize(ch),
	})
}

// handleRegenerate заново строит сетку и меш чанка
func (rs *RestServer) handleRegenerate(c *gin.Context) {
	coord, ok := parseCoord(c)
	if !ok {
		return
	}

	ch, err := rs.store.Regenerate(c.Request.Context(), coord)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, GenericResponse{
		Success: true,
		Message: "Чанк перестроен",
		Data:    summarize(ch),
	})
}

func (rs *RestServer) lookup(c *gin.Context) (chunk.Chunk, bool) {
	coord, ok := parseCoord(c)
	if !ok {
		return chunk.Chunk{}, false
	}
	ch, err := rs.store.Get(coord)
	if err != nil {
		respondError(c, err)
		return chunk.Chunk{}, false
	}
	return ch, true
}

func parseCoord(c *gin.Context) (chunk.Coord, bool) {
	x, errX := strconv.Atoi(c.Param("x"))
	z, errZ := strconv.Atoi(c.Param("z"))
	if errX != nil || errZ != nil {
		c.JSON(http.StatusBadRequest, GenericResponse{
			Success: false,
			Message: "Координаты чанка должны быть целыми числами",
		})
		return chunk.Coord{}, false
	}
	coord := chunk.Coord{X: x, Z: z}
	if !coord.Valid() {
		c.JSON(http.StatusBadRequest, GenericResponse{
			Success: false,
			Message: fmt.Sprintf("Координаты чанка должны быть в пределах ±%d", chunk.MaxCoord),
		})
		return chunk.Coord{}, false
	}
	return coord, true
}

func respondError(c *gin.Context, err error) {
	status := http.StatusInternalServerError
	switch {
	case errors.Is(err, chunk.ErrChunkNotFound):
		status = http.StatusNotFound
	case errors.Is(err, chunk.ErrChunkBusy):
		status = http.StatusConflict
	}
	c.JSON(status, GenericResponse{
		Success: false,
		Message: err.Error(),
	})
}
