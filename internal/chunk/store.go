// Package chunk решает, какие чанки существуют и какие активны, в окне вокруг игрока.
package chunk

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/go-gl/mathgl/mgl64"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/annel0/voxel-mesher/internal/logging"
	"github.com/annel0/voxel-mesher/internal/mesh"
	"github.com/annel0/voxel-mesher/internal/metrics"
	"github.com/annel0/voxel-mesher/internal/observability"
	"github.com/annel0/voxel-mesher/internal/voxel"
	"github.com/annel0/voxel-mesher/internal/worker"
)

var (
	// ErrChunkNotFound возвращается для координат, которых нет в хранилище
	ErrChunkNotFound = errors.New("чанк не найден")
	// ErrChunkBusy возвращается, если чанк уже строится
	ErrChunkBusy = errors.New("чанк строится")
)

// Generator заполняет сетку чанка
type Generator interface {
	ChunkSize() int
	Generate(chunkX, chunkZ int) *voxel.Grid
}

// GridCache — необязательное постоянное хранилище сеток
type GridCache interface {
	LoadGrid(x, z int) (*voxel.Grid, bool, error)
	SaveGrid(x, z int, grid *voxel.Grid) error
}

// Chunk содержит снимок построенного чанка. Сетка и меш после публикации не изменяются.
type Chunk struct {
	Coord      Coord
	Grid       *voxel.Grid
	Mesh       *mesh.Mesh
	Stats      mesh.Stats
	Active     bool
	Generation uint64 // 1 при первой сборке, +1 при каждом Regenerate
	BuiltAt    time.Time
}

// Options содержит зависимости хранилища
type Options struct {
	RenderDistance int
	Generator      Generator
	Mesher         mesh.Mesher

	// Необязательные: без пула используется пул по числу CPU,
	// без кэша сетки всегда генерируются, без метрик ничего не учитывается.
	Pool    *worker.Pool
	Cache   GridCache
	Metrics *metrics.Collector
}

// UpdateResult содержит итог одного Update
type UpdateResult struct {
	Center      Coord `json:"center"`
	Built       int   `json:"built"`
	Dropped     int   `json:"dropped"`
	Activated   int   `json:"activated"`
	Deactivated int   `json:"deactivated"`
}

// Store владеет всеми чанками. Чанки вне окна деактивируются, но не удаляются.
type Store struct {
	mu        sync.RWMutex
	chunks    map[Coord]*Chunk
	inflight  map[Coord]chan struct{}
	center    Coord
	hasCenter bool

	renderDistance int
	size           int
	generator      Generator
	mesher         mesh.Mesher
	pool           *worker.Pool
	cache          GridCache
	metrics        *metrics.Collector
	logger         *logging.Logger

	meshBuilds atomic.Uint64
}

// NewStore создаёт пустое хранилище
func NewStore(opts Options) (*Store, error) {
	if opts.RenderDistance < 1 {
		return nil, fmt.Errorf("дальность прорисовки должна быть >= 1, получено %d", opts.RenderDistance)
	}
	if opts.Generator == nil {
		return nil, errors.New("генератор не задан")
	}
	if opts.Mesher == nil {
		return nil, errors.New("стратегия построения меша не задана")
	}
	if opts.Pool == nil {
		opts.Pool = worker.New(0)
	}

	return &Store{
		chunks:         make(map[Coord]*Chunk),
		inflight:       make(map[Coord]chan struct{}),
		renderDistance: opts.RenderDistance,
		size:           opts.Generator.ChunkSize(),
		generator:      opts.Generator,
		mesher:         opts.Mesher,
		pool:           opts.Pool,
		cache:          opts.Cache,
		metrics:        opts.Metrics,
		logger:         logging.Component("chunk"),
	}, nil
}

// RenderDistance возвращает радиус окна в чанках
func (s *Store) RenderDistance() int {
	return s.renderDistance
}

// ChunkSize возвращает размер чанка в вокселях
func (s *Store) ChunkSize() int {
	return s.size
}

// Method возвращает стратегию построения мешей
func (s *Store) Method() mesh.Method {
	return s.mesher.Method()
}

// MeshBuilds возвращает число построенных мешей за всё время
func (s *Store) MeshBuilds() uint64 {
	return s.meshBuilds.Load()
}

// Center возвращает чанк игрока последнего Update
func (s *Store) Center() (Coord, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.center, s.hasCenter
}

// UpdatePosition вызывает Update по мировой позиции игрока; Y не используется
func (s *Store) UpdatePosition(ctx context.Context, pos mgl64.Vec3) (UpdateResult, error) {
	return s.Update(ctx, pos.X(), pos.Z())
}

// Update приводит хранилище к окну вокруг игрока: недостающие чанки строятся через пул,
// все чанки окна активируются, остальные деактивируются. Возвращается после завершения
// всей запущенной работы, в том числе сборок окна, начатых другими вызовами.
// При отмене ctx ещё не начатые сборки отбрасываются. Позиция вне MaxCoord
// отклоняется с ErrOutOfRange без изменения состояния.
func (s *Store) Update(ctx context.Context, playerX, playerZ float64) (UpdateResult, error) {
	if err := CheckPosition(playerX, playerZ, s.size); err != nil {
		return UpdateResult{}, err
	}

	center := PlayerChunk(playerX, playerZ, s.size)
	window := Window(center, s.renderDistance)

	s.mu.Lock()
	s.center = center
	s.hasCenter = true
	s.mu.Unlock()

	result := UpdateResult{Center: center}
	var runErr error
	for {
		missing, pending := s.claim(window)
		if len(missing) == 0 && len(pending) == 0 {
			break
		}

		if len(missing) > 0 {
			res, err := s.runBuilds(ctx, missing)
			result.Built += res.Completed
			result.Dropped += res.Dropped
			if err != nil {
				runErr = err
				break
			}
		}

		// Чужие сборки окна: ждём их завершения, затем проверяем окно заново,
		// так как чужой вызов мог отбросить свои задания.
		if err := waitAll(ctx, pending); err != nil {
			runErr = err
			break
		}
	}

	s.mu.Lock()
	activated, deactivated := s.reconcileLocked()
	tracked, active := len(s.chunks), s.activeCountLocked()
	s.mu.Unlock()

	s.metrics.SetChunks(tracked, active)

	result.Activated = activated
	result.Deactivated = deactivated
	if result.Built > 0 || result.Dropped > 0 || activated > 0 || deactivated > 0 {
		s.logger.Info("окно %s: построено %d, отброшено %d, активировано %d, деактивировано %d (всего %d, активных %d)",
			center, result.Built, result.Dropped, activated, deactivated, tracked, active)
	}

	if runErr != nil {
		return result, fmt.Errorf("обновление окна %s: %w", center, runErr)
	}
	return result, nil
}

// claim резервирует отсутствующие координаты окна за вызывающим и возвращает
// каналы завершения сборок, уже запущенных другими вызовами
func (s *Store) claim(window []Coord) (missing []Coord, pending []chan struct{}) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, c := range window {
		if _, ok := s.chunks[c]; ok {
			continue
		}
		if done, ok := s.inflight[c]; ok {
			pending = append(pending, done)
			continue
		}
		s.inflight[c] = make(chan struct{})
		missing = append(missing, c)
	}
	return missing, pending
}

// runBuilds строит зарезервированные координаты и снимает резерв со всех,
// включая отброшенные
func (s *Store) runBuilds(ctx context.Context, coords []Coord) (worker.Result, error) {
	jobs := make([]worker.Job, len(coords))
	for i, c := range coords {
		c := c
		jobs[i] = func(ctx context.Context) error {
			s.publish(s.build(ctx, c, 1, false))
			return nil
		}
	}

	res, err := s.pool.Run(ctx, jobs)

	s.mu.Lock()
	for _, c := range coords {
		s.releaseLocked(c)
	}
	s.mu.Unlock()
	return res, err
}

// releaseLocked снимает резерв координаты и будит ожидающих; вызывается под s.mu
func (s *Store) releaseLocked(c Coord) {
	if done, ok := s.inflight[c]; ok {
		close(done)
		delete(s.inflight, c)
	}
}

func waitAll(ctx context.Context, pending []chan struct{}) error {
	for _, done := range pending {
		select {
		case <-done:
		case <-ctx.Done():
			return ctx.Err()
		}
	}
	return nil
}

// reconcileLocked выставляет Active по текущему центру; вызывается под s.mu
func (s *Store) reconcileLocked() (activated, deactivated int) {
	for c, ch := range s.chunks {
		want := s.hasCenter && c.Distance(s.center) <= s.renderDistance
		if ch.Active == want {
			continue
		}
		ch.Active = want
		if want {
			activated++
		} else {
			deactivated++
		}
	}
	return activated, deactivated
}

func (s *Store) activeCountLocked() int {
	n := 0
	for _, ch := range s.chunks {
		if ch.Active {
			n++
		}
	}
	return n
}

// build выполняет одну единицу работы: сетка (кэш или генерация), затем меш.
// Не трогает состояние хранилища.
func (s *Store) build(ctx context.Context, c Coord, generation uint64, fresh bool) *Chunk {
	_, span := observability.Tracer().Start(ctx, "chunk.build", trace.WithAttributes(
		attribute.Int("chunk.x", c.X),
		attribute.Int("chunk.z", c.Z),
		attribute.String("mesh.method", s.mesher.Method().String()),
	))
	defer span.End()

	grid := s.loadGrid(c, fresh, span)

	m, stats := mesh.Build(s.mesher, grid)
	s.meshBuilds.Add(1)
	s.metrics.ObserveMesh(stats)

	span.SetAttributes(
		attribute.Int("mesh.quads", stats.Quads),
		attribute.Int("mesh.triangles", stats.Triangles),
	)
	s.logger.Debug("чанк %s: %d вершин, %d треугольников, %d квадов за %s (%s)",
		c, stats.Vertices, stats.Triangles, stats.Quads, stats.Duration, stats.Method)

	return &Chunk{
		Coord:      c,
		Grid:       grid,
		Mesh:       m,
		Stats:      stats,
		Generation: generation,
		BuiltAt:    time.Now(),
	}
}

func (s *Store) loadGrid(c Coord, fresh bool, span trace.Span) *voxel.Grid {
	if s.cache != nil && !fresh {
		grid, found, err := s.cache.LoadGrid(c.X, c.Z)
		switch {
		case err != nil:
			s.metrics.CacheError()
			span.RecordError(err)
			s.logger.Warn("кэш сеток: чтение %s: %v", c, err)
		case found && grid.Size() == s.size:
			s.metrics.CacheHit()
			return grid
		default:
			s.metrics.CacheMiss()
		}
	}

	grid := s.generator.Generate(c.X, c.Z)
	s.metrics.ObserveGenerated()

	if s.cache != nil {
		if err := s.cache.SaveGrid(c.X, c.Z, grid); err != nil {
			s.metrics.CacheError()
			span.SetStatus(codes.Error, "кэш сеток недоступен")
			s.logger.Warn("кэш сеток: запись %s: %v", c, err)
		}
	}
	return grid
}

// publish записывает готовый чанк одной операцией под блокировкой
func (s *Store) publish(ch *Chunk) {
	s.mu.Lock()
	if prev, ok := s.chunks[ch.Coord]; ok {
		ch.Active = prev.Active
	} else {
		ch.Active = s.hasCenter && ch.Coord.Distance(s.center) <= s.renderDistance
	}
	s.chunks[ch.Coord] = ch
	s.mu.Unlock()
}

// Get возвращает снимок чанка
func (s *Store) Get(c Coord) (Chunk, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	ch, ok := s.chunks[c]
	if !ok {
		return Chunk{}, fmt.Errorf("%w: %s", ErrChunkNotFound, c)
	}
	return *ch, nil
}

// Activate помечает чанк активным до следующего Update
func (s *Store) Activate(c Coord) error {
	return s.setActive(c, true)
}

// Deactivate помечает чанк неактивным, не удаляя его
func (s *Store) Deactivate(c Coord) error {
	return s.setActive(c, false)
}

func (s *Store) setActive(c Coord, active bool) error {
	s.mu.Lock()
	ch, ok := s.chunks[c]
	if !ok {
		s.mu.Unlock()
		return fmt.Errorf("%w: %s", ErrChunkNotFound, c)
	}
	ch.Active = active
	tracked, activeCount := len(s.chunks), s.activeCountLocked()
	s.mu.Unlock()

	s.metrics.SetChunks(tracked, activeCount)
	return nil
}

// Regenerate заново генерирует сетку (минуя кэш) и строит меш существующего чанка.
// Флаг активности сохраняется.
func (s *Store) Regenerate(ctx context.Context, c Coord) (Chunk, error) {
	s.mu.Lock()
	prev, ok := s.chunks[c]
	if !ok {
		s.mu.Unlock()
		return Chunk{}, fmt.Errorf("%w: %s", ErrChunkNotFound, c)
	}
	if _, busy := s.inflight[c]; busy {
		s.mu.Unlock()
		return Chunk{}, fmt.Errorf("%w: %s", ErrChunkBusy, c)
	}
	s.inflight[c] = make(chan struct{})
	generation := prev.Generation + 1
	s.mu.Unlock()

	defer func() {
		s.mu.Lock()
		s.releaseLocked(c)
		s.mu.Unlock()
	}()

	_, err := s.pool.Run(ctx, []worker.Job{func(ctx context.Context) error {
		s.publish(s.build(ctx, c, generation, true))
		return nil
	}})
	if err != nil {
		return Chunk{}, fmt.Errorf("перестроение %s: %w", c, err)
	}

	s.logger.Info("чанк %s перестроен (поколение %d)", c, generation)
	return s.Get(c)
}

// Chunks возвращает снимки всех чанков, упорядоченные по координатам
func (s *Store) Chunks() []Chunk {
	s.mu.RLock()
	coords := make([]Coord, 0, len(s.chunks))
	for c := range s.chunks {
		coords = append(coords, c)
	}
	sortCoords(coords)

	out := make([]Chunk, len(coords))
	for i, c := range coords {
		out[i] = *s.chunks[c]
	}
	s.mu.RUnlock()
	return out
}

// ActiveCoords возвращает упорядоченные координаты активных чанков
func (s *Store) ActiveCoords() []Coord {
	s.mu.RLock()
	coords := make([]Coord, 0, len(s.chunks))
	for c, ch := range s.chunks {
		if ch.Active {
			coords = append(coords, c)
		}
	}
	s.mu.RUnlock()

	sortCoords(coords)
	return coords
}

// Len возвращает число отслеживаемых чанков
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.chunks)
}
