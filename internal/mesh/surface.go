package mesh

import (
	"fmt"
	"math"

	"github.com/annel0/voxel-mesher/internal/voxel"
)

// Face описывает единичную грань: воксель-владелец и направление нормали
type Face struct {
	X, Y, Z int
	Dir     voxel.Direction
}

// Surface считает единичные грани, покрытые мешем (мультимножество)
type Surface map[Face]int

// UnitFaces раскладывает каждый четырёхугольник меша на единичные грани.
// Направление берётся из обхода первого треугольника, поэтому для согласованной
// намотки разные разбиения одной поверхности дают одинаковый результат.
func UnitFaces(m *Mesh) (Surface, error) {
	if err := m.Validate(); err != nil {
		return nil, err
	}

	faces := make(Surface, m.QuadCount())
	for q := 0; q < m.QuadCount(); q++ {
		quad := m.Vertices[q*4 : q*4+4]
		normal := quad[1].Sub(quad[0]).Cross(quad[2].Sub(quad[0]))

		dir, ok := directionOf(normal)
		if !ok {
			return nil, fmt.Errorf("%w: вырожденный четырёхугольник %d", ErrInvalidMesh, q)
		}

		axis := int(dir.Axis())
		u, v := (axis+1)%3, (axis+2)%3
		plane := round(quad[0][axis])

		lo := [3]int{}
		hi := [3]int{}
		for i := 0; i < 3; i++ {
			lo[i], hi[i] = math.MaxInt, math.MinInt
		}
		for _, c := range quad {
			for i := 0; i < 3; i++ {
				r := round(c[i])
				if r < lo[i] {
					lo[i] = r
				}
				if r > hi[i] {
					hi[i] = r
				}
			}
		}

		owner := plane
		if dir.Positive() {
			owner = plane - 1
		}

		for a := lo[u]; a < hi[u]; a++ {
			for b := lo[v]; b < hi[v]; b++ {
				var p [3]int
				p[axis], p[u], p[v] = owner, a, b
				faces[Face{X: p[0], Y: p[1], Z: p[2], Dir: dir}]++
			}
		}
	}
	return faces, nil
}

// CancelOpposing убирает пары граней, которые совпадают по положению с противоположной
// гранью соседнего вокселя: такие грани находятся внутри тела и никогда не видны.
func CancelOpposing(s Surface) Surface {
	out := make(Surface, len(s))
	for f, count := range s {
		dx, dy, dz := f.Dir.Offset()
		twin := Face{X: f.X + dx, Y: f.Y + dy, Z: f.Z + dz, Dir: f.Dir.Opposite()}
		if _, hidden := s[twin]; hidden {
			continue
		}
		out[f] = count
	}
	return out
}

// Equal сравнивает два мультимножества граней
func (s Surface) Equal(other Surface) bool {
	if len(s) != len(other) {
		return false
	}
	for f, count := range s {
		if other[f] != count {
			return false
		}
	}
	return true
}

// Overlaps возвращает true, если хотя бы одна единичная грань покрыта больше одного раза
func (s Surface) Overlaps() bool {
	for _, count := range s {
		if count > 1 {
			return true
		}
	}
	return false
}

// Diff возвращает грани, которые есть в s, но отсутствуют в other
func (s Surface) Diff(other Surface) []Face {
	var missing []Face
	for f := range s {
		if _, ok := other[f]; !ok {
			missing = append(missing, f)
		}
	}
	return missing
}

func directionOf(n [3]float32) (voxel.Direction, bool) {
	axis := 0
	for i := 1; i < 3; i++ {
		if abs32(n[i]) > abs32(n[axis]) {
			axis = i
		}
	}
	if n[axis] == 0 {
		return 0, false
	}

	var normal [3]int
	if n[axis] > 0 {
		normal[axis] = 1
	} else {
		normal[axis] = -1
	}
	return voxel.DirectionFromNormal(normal)
}

func abs32(f float32) float32 {
	if f < 0 {
		return -f
	}
	return f
}

func round(f float32) int {
	return int(math.Round(float64(f)))
}
