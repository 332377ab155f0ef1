// Package mesh строит треугольные поверхности из воксельных сеток.
//
// Три стратегии реализуют общий интерфейс Mesher: NaiveMesher выводит все грани,
// CulledMesher отбрасывает закрытые соседями, GreedyMesher дополнительно сливает
// подряд идущие видимые грани в один четырёхугольник вдоль оси сканирования.
package mesh

import (
	"errors"
	"fmt"

	"github.com/go-gl/mathgl/mgl32"

	"github.com/annel0/voxel-mesher/internal/voxel"
)

// ErrInvalidMesh возвращается Validate при нарушении структуры буферов
var ErrInvalidMesh = errors.New("mesh: нарушена структура меша")

// Mesh хранит упорядоченные позиции вершин и индексы треугольников (по 3 на треугольник).
// Каждый четырёхугольник занимает 4 вершины и 6 индексов 0,1,2,0,2,3.
type Mesh struct {
	Vertices []mgl32.Vec3
	Indices  []uint32
}

// QuadCount возвращает количество четырёхугольников
func (m *Mesh) QuadCount() int {
	return len(m.Vertices) / 4
}

// TriangleCount возвращает количество треугольников
func (m *Mesh) TriangleCount() int {
	return len(m.Indices) / 3
}

// Empty возвращает true для меша без геометрии
func (m *Mesh) Empty() bool {
	return len(m.Vertices) == 0
}

// Validate проверяет инварианты буферов: кратность индексов трём,
// кратность вершин четырём, шаблон 0,1,2,0,2,3 и диапазон индексов.
func (m *Mesh) Validate() error {
	if len(m.Indices)%3 != 0 {
		return fmt.Errorf("%w: %d индексов не кратно 3", ErrInvalidMesh, len(m.Indices))
	}
	if len(m.Vertices)%4 != 0 {
		return fmt.Errorf("%w: %d вершин не кратно 4", ErrInvalidMesh, len(m.Vertices))
	}
	if len(m.Indices) != m.QuadCount()*6 {
		return fmt.Errorf("%w: %d индексов на %d четырёхугольников", ErrInvalidMesh, len(m.Indices), m.QuadCount())
	}

	for q := 0; q < m.QuadCount(); q++ {
		base := uint32(q * 4)
		want := quadIndices(base)
		for i, idx := range m.Indices[q*6 : q*6+6] {
			if idx != want[i] {
				return fmt.Errorf("%w: четырёхугольник %d, индекс %d = %d, ожидалось %d", ErrInvalidMesh, q, i, idx, want[i])
			}
		}
	}
	return nil
}

// Equal сравнивает вершины и индексы поэлементно
func (m *Mesh) Equal(other *Mesh) bool {
	if other == nil || len(m.Vertices) != len(other.Vertices) || len(m.Indices) != len(other.Indices) {
		return false
	}
	for i := range m.Vertices {
		if m.Vertices[i] != other.Vertices[i] {
			return false
		}
	}
	for i := range m.Indices {
		if m.Indices[i] != other.Indices[i] {
			return false
		}
	}
	return true
}

// Bounds возвращает ограничивающий параллелепипед вершин.
// Для пустого меша возвращаются нулевые векторы.
func (m *Mesh) Bounds() (lo, hi mgl32.Vec3) {
	if len(m.Vertices) == 0 {
		return mgl32.Vec3{}, mgl32.Vec3{}
	}
	lo, hi = m.Vertices[0], m.Vertices[0]
	for _, v := range m.Vertices[1:] {
		for i := 0; i < 3; i++ {
			if v[i] < lo[i] {
				lo[i] = v[i]
			}
			if v[i] > hi[i] {
				hi[i] = v[i]
			}
		}
	}
	return lo, hi
}

// Translated возвращает копию меша, сдвинутую на offset (например, в мировые координаты чанка)
func (m *Mesh) Translated(offset mgl32.Vec3) *Mesh {
	out := &Mesh{
		Vertices: make([]mgl32.Vec3, len(m.Vertices)),
		Indices:  make([]uint32, len(m.Indices)),
	}
	for i, v := range m.Vertices {
		out.Vertices[i] = v.Add(offset)
	}
	copy(out.Indices, m.Indices)
	return out
}

func quadIndices(base uint32) [6]uint32 {
	return [6]uint32{base, base + 1, base + 2, base, base + 2, base + 3}
}

// builder накапливает вершины одного прохода; индексы выводятся механически в build
type builder struct {
	vertices []mgl32.Vec3
}

func newBuilder(quadHint int) *builder {
	return &builder{vertices: make([]mgl32.Vec3, 0, quadHint*4)}
}

// appendQuad добавляет грань вокселя (x,y,z) в направлении dir.
// Компонента шаблона вдоль оси axis растягивается на length ячеек.
func (b *builder) appendQuad(x, y, z int, dir voxel.Direction, axis voxel.Axis, length int) {
	origin := [3]int{x, y, z}
	for _, corner := range dir.Corners() {
		corner[axis] *= length
		b.vertices = append(b.vertices, mgl32.Vec3{
			float32(origin[0] + corner[0]),
			float32(origin[1] + corner[1]),
			float32(origin[2] + corner[2]),
		})
	}
}

func (b *builder) build() *Mesh {
	indices := make([]uint32, 0, len(b.vertices)/4*6)
	for i := 0; i < len(b.vertices); i += 4 {
		q := quadIndices(uint32(i))
		indices = append(indices, q[:]...)
	}
	return &Mesh{
		Vertices: b.vertices,
		Indices:  indices,
	}
}
