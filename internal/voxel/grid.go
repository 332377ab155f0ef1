package voxel

import (
	"errors"
	"fmt"
)

// ErrMalformedGrid возвращается при декодировании повреждённых данных сетки
var ErrMalformedGrid = errors.New("voxel: повреждённые данные сетки")

// Grid хранит кубический буфер N×N×N вокселей.
// Линейный индекс: x + N*(y + N*z). От этого порядка осей зависят проверки соседей и границ,
// поэтому он сохраняется и в бинарном представлении.
type Grid struct {
	size   int
	voxels []Voxel
}

// NewGrid создаёт пустую сетку с ребром size
func NewGrid(size int) *Grid {
	if size <= 0 || size > 255 {
		panic(fmt.Sprintf("voxel: недопустимый размер сетки %d", size))
	}
	return &Grid{
		size:   size,
		voxels: make([]Voxel, size*size*size),
	}
}

// NewChunkGrid создаёт пустую сетку размера ChunkSize
func NewChunkGrid() *Grid {
	return NewGrid(ChunkSize)
}

// Size возвращает длину ребра сетки
func (g *Grid) Size() int {
	return g.size
}

// Len возвращает общее количество ячеек
func (g *Grid) Len() int {
	return len(g.voxels)
}

// InBounds проверяет, что координаты лежат внутри сетки
func (g *Grid) InBounds(x, y, z int) bool {
	return x >= 0 && x < g.size && y >= 0 && y < g.size && z >= 0 && z < g.size
}

// Index переводит координаты в линейный индекс
func (g *Grid) Index(x, y, z int) int {
	return x + g.size*(y+g.size*z)
}

// At возвращает воксель по координатам.
// Выход за границы считается ошибкой логики вызывающего кода, а не штатная ситуация.
func (g *Grid) At(x, y, z int) Voxel {
	if !g.InBounds(x, y, z) {
		panic(fmt.Sprintf("voxel: координаты (%d,%d,%d) вне сетки %d³", x, y, z, g.size))
	}
	return g.voxels[g.Index(x, y, z)]
}

// Set записывает воксель по координатам
func (g *Grid) Set(x, y, z int, v Voxel) {
	if !g.InBounds(x, y, z) {
		panic(fmt.Sprintf("voxel: координаты (%d,%d,%d) вне сетки %d³", x, y, z, g.size))
	}
	g.voxels[g.Index(x, y, z)] = v
}

// Fill заполняет всю сетку одним вокселем
func (g *Grid) Fill(v Voxel) {
	for i := range g.voxels {
		g.voxels[i] = v
	}
}

// SolidCount возвращает количество непустых вокселей
func (g *Grid) SolidCount() int {
	count := 0
	for _, v := range g.voxels {
		if v.IsSolid() {
			count++
		}
	}
	return count
}

// Clone создаёт независимую копию сетки
func (g *Grid) Clone() *Grid {
	c := &Grid{
		size:   g.size,
		voxels: make([]Voxel, len(g.voxels)),
	}
	copy(c.voxels, g.voxels)
	return c
}

// Equal сравнивает размер и содержимое двух сеток
func (g *Grid) Equal(other *Grid) bool {
	if other == nil || g.size != other.size {
		return false
	}
	for i := range g.voxels {
		if g.voxels[i] != other.voxels[i] {
			return false
		}
	}
	return true
}

// MarshalBinary кодирует сетку: байт размера, затем типы вокселей в линейном порядке
func (g *Grid) MarshalBinary() ([]byte, error) {
	data := make([]byte, 1+len(g.voxels))
	data[0] = byte(g.size)
	for i, v := range g.voxels {
		data[1+i] = v.Type
	}
	return data, nil
}

// UnmarshalBinary восстанавливает сетку из MarshalBinary
func (g *Grid) UnmarshalBinary(data []byte) error {
	if len(data) < 1 {
		return fmt.Errorf("%w: пустой буфер", ErrMalformedGrid)
	}
	size := int(data[0])
	if size == 0 {
		return fmt.Errorf("%w: нулевой размер", ErrMalformedGrid)
	}
	if len(data) != 1+size*size*size {
		return fmt.Errorf("%w: ожидалось %d байт, получено %d", ErrMalformedGrid, 1+size*size*size, len(data))
	}

	g.size = size
	g.voxels = make([]Voxel, size*size*size)
	for i := range g.voxels {
		g.voxels[i] = Voxel{Type: data[1+i]}
	}
	return nil
}
