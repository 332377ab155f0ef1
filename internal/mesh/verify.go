package mesh

import (
	"fmt"

	"github.com/annel0/voxel-mesher/internal/voxel"
)

// Report содержит результат сверки стратегий на одной сетке
type Report struct {
	Stats    []Stats
	Problems []string
}

// OK возвращает true, если расхождений не найдено
func (r Report) OK() bool {
	return len(r.Problems) == 0
}

// StatsFor возвращает статистику конкретной стратегии
func (r Report) StatsFor(m Method) (Stats, bool) {
	for _, s := range r.Stats {
		if s.Method == m {
			return s, true
		}
	}
	return Stats{}, false
}

func (r *Report) fail(format string, args ...interface{}) {
	r.Problems = append(r.Problems, fmt.Sprintf(format, args...))
}

// Verify строит меш всеми стратегиями и проверяет их согласованность:
// структуру буферов, детерминированность, совпадение видимой поверхности
// и монотонное уменьшение числа треугольников naive → culled → greedy.
func Verify(src voxel.Source) Report {
	var report Report
	meshes := make(map[Method]*Mesh, len(Methods))
	surfaces := make(map[Method]Surface, len(Methods))

	for _, method := range Methods {
		mesher, err := New(method)
		if err != nil {
			report.fail("%s: %v", method, err)
			continue
		}

		m, stats := Build(mesher, src)
		report.Stats = append(report.Stats, stats)
		meshes[method] = m

		if err := m.Validate(); err != nil {
			report.fail("%s: %v", method, err)
			continue
		}
		if again := mesher.Mesh(src); !again.Equal(m) {
			report.fail("%s: повторное построение дало другой меш", method)
		}

		s, err := UnitFaces(m)
		if err != nil {
			report.fail("%s: %v", method, err)
			continue
		}
		surfaces[method] = s
	}

	naive, culled, greedy := surfaces[MethodNaive], surfaces[MethodCulled], surfaces[MethodGreedy]
	if naive != nil && culled != nil {
		if visible := CancelOpposing(naive); !visible.Equal(culled) {
			report.fail("naive после отсечения внутренних граней не совпадает с culled: %d против %d граней",
				len(visible), len(culled))
		}
	}
	if culled != nil && culled.Overlaps() {
		report.fail("culled покрывает грань больше одного раза")
	}
	if greedy != nil {
		if greedy.Overlaps() {
			report.fail("greedy покрывает грань больше одного раза")
		}
		if culled != nil && !greedy.Equal(culled) {
			report.fail("greedy и culled описывают разные поверхности: пропущено %d, лишних %d",
				len(culled.Diff(greedy)), len(greedy.Diff(culled)))
		}
	}

	if n, c, g := meshes[MethodNaive], meshes[MethodCulled], meshes[MethodGreedy]; n != nil && c != nil && g != nil {
		if !(g.TriangleCount() <= c.TriangleCount() && c.TriangleCount() <= n.TriangleCount()) {
			report.fail("нарушена монотонность: greedy=%d culled=%d naive=%d треугольников",
				g.TriangleCount(), c.TriangleCount(), n.TriangleCount())
		}
	}

	return report
}
