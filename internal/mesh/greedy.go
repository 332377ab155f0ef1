package mesh

import (
	"fmt"

	"github.com/annel0/voxel-mesher/internal/voxel"
)

// GreedyMesher сливает подряд идущие видимые грани одного типа вдоль оси сканирования
// в один четырёхугольник. Слияние идёт только по одной оси на направление (стратегия «runs»),
// полное прямоугольное слияние по двум осям не выполняется.
type GreedyMesher struct{}

// Method возвращает MethodGreedy
func (GreedyMesher) Method() Method {
	return MethodGreedy
}

// ScanAxis возвращает ось, вдоль которой сливаются грани направления dir:
// вертикаль для боковых граней, Z для верхних и нижних.
func ScanAxis(dir voxel.Direction) voxel.Axis {
	switch dir {
	case voxel.Top, voxel.Bottom:
		return voxel.AxisZ
	default:
		return voxel.AxisY
	}
}

// visitedMask хранит шесть независимых буферов посещения, по одному на направление.
// Живёт ровно один вызов Mesh.
type visitedMask struct {
	size    int
	buffers [voxel.DirectionCount][]bool
}

func newVisitedMask(size int) *visitedMask {
	m := &visitedMask{size: size}
	for i := range m.buffers {
		m.buffers[i] = make([]bool, size*size*size)
	}
	return m
}

func (m *visitedMask) index(p [3]int) int {
	return p[0] + m.size*(p[1]+m.size*p[2])
}

func (m *visitedMask) visited(dir voxel.Direction, p [3]int) bool {
	return m.buffers[dir][m.index(p)]
}

func (m *visitedMask) mark(dir voxel.Direction, p [3]int) {
	m.buffers[dir][m.index(p)] = true
}

// Mesh строит меш со слиянием граней
func (GreedyMesher) Mesh(src voxel.Source) *Mesh {
	n := src.Size()
	mask := newVisitedMask(n)
	b := newBuilder(0)

	for _, dir := range voxel.Directions {
		axis := ScanAxis(dir)
		for x := 0; x < n; x++ {
			for z := 0; z < n; z++ {
				for y := 0; y < n; y++ {
					p := [3]int{x, y, z}
					if mask.visited(dir, p) {
						continue
					}
					v := src.At(x, y, z)
					if v.IsAir() || !voxel.Visible(src, x, y, z, dir) {
						continue
					}

					length := extendRun(src, mask, p, dir, axis, v.Type)
					if length == 0 {
						continue
					}
					b.appendQuad(x, y, z, dir, axis, length)
				}
			}
		}
	}

	return b.build()
}

// extendRun идёт от start вдоль axis, пока ячейка того же типа, не посещена и её грань видна,
// помечает ячейки посещёнными и возвращает длину серии.
func extendRun(src voxel.Source, mask *visitedMask, start [3]int, dir voxel.Direction, axis voxel.Axis, t uint8) int {
	n := src.Size()
	length := 0
	for i := start[axis]; i < n; i++ {
		p := start
		p[axis] = i
		if p[axis] < 0 || p[axis] >= n {
			panic(fmt.Sprintf("mesh: серия вышла за границы сетки: %v по оси %s", p, axis))
		}
		if src.At(p[0], p[1], p[2]).Type != t || mask.visited(dir, p) || !voxel.Visible(src, p[0], p[1], p[2], dir) {
			break
		}
		mask.mark(dir, p)
		length++
	}
	return length
}
