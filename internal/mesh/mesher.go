package mesh

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/annel0/voxel-mesher/internal/voxel"
)

// ErrUnknownMethod возвращается для неизвестного имени стратегии
var ErrUnknownMethod = errors.New("mesh: неизвестный метод построения")

// Method выбирает стратегию построения меша
type Method int

const (
	MethodNaive Method = iota
	MethodCulled
	MethodGreedy
)

// Methods перечисляет стратегии от самой дорогой по выходу к самой компактной
var Methods = []Method{MethodNaive, MethodCulled, MethodGreedy}

// String возвращает каноническое имя стратегии
func (m Method) String() string {
	switch m {
	case MethodNaive:
		return "naive"
	case MethodCulled:
		return "culled"
	case MethodGreedy:
		return "greedy"
	default:
		return fmt.Sprintf("method(%d)", int(m))
	}
}

// ParseMethod разбирает имя стратегии без учёта регистра.
// Принимаются и старые имена: lazy (naive) и runs (greedy).
func ParseMethod(s string) (Method, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "naive", "lazy":
		return MethodNaive, nil
	case "culled":
		return MethodCulled, nil
	case "greedy", "runs":
		return MethodGreedy, nil
	default:
		return 0, fmt.Errorf("%w: %q", ErrUnknownMethod, s)
	}
}

// Mesher строит меш по сетке вокселей.
// Реализации не имеют состояния между вызовами и безопасны для параллельного использования.
type Mesher interface {
	Method() Method
	Mesh(src voxel.Source) *Mesh
}

// New возвращает стратегию для указанного метода
func New(m Method) (Mesher, error) {
	switch m {
	case MethodNaive:
		return NaiveMesher{}, nil
	case MethodCulled:
		return CulledMesher{}, nil
	case MethodGreedy:
		return GreedyMesher{}, nil
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnknownMethod, m)
	}
}

// Stats содержит сводку одного построения меша
type Stats struct {
	Method    Method
	Vertices  int
	Triangles int
	Quads     int
	Duration  time.Duration
}

// Build строит меш и замеряет время построения
func Build(mesher Mesher, src voxel.Source) (*Mesh, Stats) {
	start := time.Now()
	m := mesher.Mesh(src)
	return m, Stats{
		Method:    mesher.Method(),
		Vertices:  len(m.Vertices),
		Triangles: m.TriangleCount(),
		Quads:     m.QuadCount(),
		Duration:  time.Since(start),
	}
}

// forEachSolid обходит непустые воксели в порядке x, z, y
func forEachSolid(src voxel.Source, fn func(x, y, z int, v voxel.Voxel)) {
	n := src.Size()
	for x := 0; x < n; x++ {
		for z := 0; z < n; z++ {
			for y := 0; y < n; y++ {
				v := src.At(x, y, z)
				if v.IsAir() {
					continue
				}
				fn(x, y, z, v)
			}
		}
	}
}
