package mesh

import (
	"math/rand"
	"testing"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/annel0/voxel-mesher/internal/voxel"
)

// randomGrid заполняет сетку случайными твёрдыми вокселями с заданной плотностью
func randomGrid(size int, seed int64, density float64) *voxel.Grid {
	rng := rand.New(rand.NewSource(seed))
	g := voxel.NewGrid(size)
	for x := 0; x < size; x++ {
		for y := 0; y < size; y++ {
			for z := 0; z < size; z++ {
				if rng.Float64() < density {
					g.Set(x, y, z, voxel.Solid(1))
				}
			}
		}
	}
	return g
}

// quadsByDirection считает четырёхугольники меша по направлениям нормали
func quadsByDirection(t *testing.T, m *Mesh) map[voxel.Direction]int {
	t.Helper()
	out := make(map[voxel.Direction]int)
	for q := 0; q < m.QuadCount(); q++ {
		quad := m.Vertices[q*4 : q*4+4]
		dir, ok := directionOf(quad[1].Sub(quad[0]).Cross(quad[2].Sub(quad[0])))
		require.True(t, ok, "четырёхугольник %d вырожден", q)
		out[dir]++
	}
	return out
}

func allMeshers() []Mesher {
	return []Mesher{NaiveMesher{}, CulledMesher{}, GreedyMesher{}}
}

func TestParseMethod(t *testing.T) {
	cases := map[string]Method{
		"naive":    MethodNaive,
		"Lazy":     MethodNaive,
		"culled":   MethodCulled,
		"GREEDY":   MethodGreedy,
		" runs ":   MethodGreedy,
		"greedy\n": MethodGreedy,
	}
	for in, want := range cases {
		got, err := ParseMethod(in)
		require.NoError(t, err, "вход %q", in)
		assert.Equal(t, want, got, "вход %q", in)
	}

	_, err := ParseMethod("marching-cubes")
	assert.ErrorIs(t, err, ErrUnknownMethod)

	_, err = New(Method(42))
	assert.ErrorIs(t, err, ErrUnknownMethod)
}

func TestNew_ReturnsMatchingStrategy(t *testing.T) {
	for _, method := range Methods {
		m, err := New(method)
		require.NoError(t, err)
		assert.Equal(t, method, m.Method())
	}
}

func TestEmptyGrid_ProducesEmptyValidMesh(t *testing.T) {
	g := voxel.NewGrid(4)
	for _, mesher := range allMeshers() {
		m := mesher.Mesh(g)
		assert.True(t, m.Empty(), "%s: пустая сетка должна дать пустой меш", mesher.Method())
		assert.NoError(t, m.Validate())
		assert.Equal(t, 0, m.TriangleCount())
	}
}

func TestNaive_SixQuadsPerVoxel(t *testing.T) {
	g := voxel.NewGrid(4)
	g.Set(0, 0, 0, voxel.Solid(1))
	g.Set(1, 0, 0, voxel.Solid(1))
	g.Set(3, 3, 3, voxel.Solid(2))

	m := NaiveMesher{}.Mesh(g)
	require.NoError(t, m.Validate())
	assert.Equal(t, 18, m.QuadCount())
	assert.Equal(t, 72, len(m.Vertices))
	assert.Equal(t, 108, len(m.Indices))
}

func TestCulled_CornerVoxelHasSixFaces(t *testing.T) {
	g := voxel.NewGrid(2)
	g.Set(0, 0, 0, voxel.Solid(1))

	m := CulledMesher{}.Mesh(g)
	require.NoError(t, m.Validate())
	assert.Equal(t, 6, m.QuadCount())
	assert.Equal(t, 24, len(m.Vertices))
	assert.Equal(t, 12, m.TriangleCount())

	for _, dir := range voxel.Directions {
		assert.Equal(t, 1, quadsByDirection(t, m)[dir], "грань %s", dir)
	}
}

func TestCulled_FullGridKeepsOnlyBoundary(t *testing.T) {
	n := voxel.ChunkSize
	g := voxel.NewChunkGrid()
	g.Fill(voxel.Solid(1))

	m := CulledMesher{}.Mesh(g)
	require.NoError(t, m.Validate())
	assert.Equal(t, 6*n*n, m.QuadCount(), "видны только шесть внешних плоскостей")

	lo, hi := m.Bounds()
	assert.Equal(t, mgl32.Vec3{0, 0, 0}, lo)
	assert.Equal(t, mgl32.Vec3{float32(n), float32(n), float32(n)}, hi)
}

func TestCulled_QuadIndicesFollowBlocksOfFour(t *testing.T) {
	g := voxel.NewGrid(3)
	g.Set(1, 1, 1, voxel.Solid(1))
	g.Set(1, 2, 1, voxel.Solid(1))

	m := CulledMesher{}.Mesh(g)
	require.Equal(t, 10, m.QuadCount())
	for q := 0; q < m.QuadCount(); q++ {
		i := uint32(q * 4)
		assert.Equal(t, []uint32{i, i + 1, i + 2, i, i + 2, i + 3}, m.Indices[q*6:q*6+6])
	}
}

func TestGreedy_FlatLayerMergesRows(t *testing.T) {
	const n = 4
	g := voxel.NewGrid(n)
	for x := 0; x < n; x++ {
		for z := 0; z < n; z++ {
			g.Set(x, 0, z, voxel.Solid(1))
		}
	}

	m := GreedyMesher{}.Mesh(g)
	require.NoError(t, m.Validate())

	byDir := quadsByDirection(t, m)
	assert.Equal(t, n, byDir[voxel.Top], "одна серия на ряд, а не N*N граней")
	assert.Equal(t, n, byDir[voxel.Bottom])
	for _, dir := range []voxel.Direction{voxel.Front, voxel.Back, voxel.Right, voxel.Left} {
		assert.Equal(t, n, byDir[dir], "боковая грань %s", dir)
	}

	culled := CulledMesher{}.Mesh(g)
	assert.Equal(t, n*n, quadsByDirection(t, culled)[voxel.Top])
}

func TestGreedy_ColumnSidesBecomeSingleQuads(t *testing.T) {
	g := voxel.NewGrid(4)
	for y := 0; y < 4; y++ {
		g.Set(2, y, 1, voxel.Solid(1))
	}

	m := GreedyMesher{}.Mesh(g)
	require.NoError(t, m.Validate())
	assert.Equal(t, 6, m.QuadCount())
	assert.Equal(t, 18, CulledMesher{}.Mesh(g).QuadCount())

	// Правая грань колонки растянута по Y на всю высоту
	for q := 0; q < m.QuadCount(); q++ {
		quad := m.Vertices[q*4 : q*4+4]
		dir, _ := directionOf(quad[1].Sub(quad[0]).Cross(quad[2].Sub(quad[0])))
		if dir != voxel.Right {
			continue
		}
		assert.Equal(t, []mgl32.Vec3{{3, 4, 1}, {3, 4, 2}, {3, 0, 2}, {3, 0, 1}}, quad)
	}
}

func TestGreedy_RunStopsAtOccludedFace(t *testing.T) {
	g := voxel.NewGrid(4)
	g.Set(1, 0, 1, voxel.Solid(1))
	g.Set(1, 1, 1, voxel.Solid(1))
	g.Set(2, 0, 1, voxel.Solid(1)) // закрывает правую грань нижней ячейки колонки

	greedy, err := UnitFaces(GreedyMesher{}.Mesh(g))
	require.NoError(t, err)
	culled, err := UnitFaces(CulledMesher{}.Mesh(g))
	require.NoError(t, err)

	assert.True(t, greedy.Equal(culled), "серия не должна покрывать закрытую грань")
	assert.NotContains(t, greedy, Face{X: 1, Y: 0, Z: 1, Dir: voxel.Right})
	assert.Contains(t, greedy, Face{X: 1, Y: 1, Z: 1, Dir: voxel.Right})
}

func TestGreedy_DifferentTypesBreakRuns(t *testing.T) {
	g := voxel.NewGrid(3)
	g.Set(0, 0, 0, voxel.Solid(1))
	g.Set(0, 1, 0, voxel.Solid(2))
	g.Set(0, 2, 0, voxel.Solid(2))

	byDir := quadsByDirection(t, GreedyMesher{}.Mesh(g))
	assert.Equal(t, 2, byDir[voxel.Left], "серия рвётся на смене типа")
}

func TestMeshers_Deterministic(t *testing.T) {
	g := randomGrid(8, 7, 0.45)
	for _, mesher := range allMeshers() {
		a := mesher.Mesh(g)
		b := mesher.Mesh(g)
		assert.True(t, a.Equal(b), "%s: два прохода должны совпадать", mesher.Method())
	}
}

func TestMeshers_SurfaceEquivalence(t *testing.T) {
	for seed := int64(1); seed <= 12; seed++ {
		density := 0.15 + float64(seed%4)*0.2
		g := randomGrid(6, seed, density)

		report := Verify(g)
		assert.True(t, report.OK(), "seed=%d density=%.2f: %v", seed, density, report.Problems)
	}
}

func TestMeshers_MonotonicCompression(t *testing.T) {
	g := randomGrid(voxel.ChunkSize, 99, 0.6)

	naive := NaiveMesher{}.Mesh(g).TriangleCount()
	culled := CulledMesher{}.Mesh(g).TriangleCount()
	greedy := GreedyMesher{}.Mesh(g).TriangleCount()

	assert.LessOrEqual(t, greedy, culled)
	assert.LessOrEqual(t, culled, naive)
	assert.Less(t, greedy, naive)
}

func TestBuild_ReportsStats(t *testing.T) {
	g := voxel.NewGrid(2)
	g.Fill(voxel.Solid(1))

	m, stats := Build(CulledMesher{}, g)
	assert.Equal(t, MethodCulled, stats.Method)
	assert.Equal(t, m.QuadCount(), stats.Quads)
	assert.Equal(t, 24, stats.Quads)
	assert.Equal(t, 48, stats.Triangles)
	assert.Equal(t, 96, stats.Vertices)
}

func TestValidate_DetectsBrokenBuffers(t *testing.T) {
	g := voxel.NewGrid(2)
	g.Set(0, 0, 0, voxel.Solid(1))
	m := CulledMesher{}.Mesh(g)
	require.NoError(t, m.Validate())

	broken := &Mesh{Vertices: m.Vertices, Indices: m.Indices[:len(m.Indices)-1]}
	assert.ErrorIs(t, broken.Validate(), ErrInvalidMesh)

	swapped := &Mesh{Vertices: m.Vertices, Indices: append([]uint32(nil), m.Indices...)}
	swapped.Indices[1], swapped.Indices[2] = swapped.Indices[2], swapped.Indices[1]
	assert.ErrorIs(t, swapped.Validate(), ErrInvalidMesh)
}

func TestTranslated_ShiftsVertices(t *testing.T) {
	g := voxel.NewGrid(2)
	g.Set(0, 0, 0, voxel.Solid(1))
	m := CulledMesher{}.Mesh(g)

	moved := m.Translated(mgl32.Vec3{16, 0, -32})
	lo, hi := moved.Bounds()
	assert.Equal(t, mgl32.Vec3{16, 0, -32}, lo)
	assert.Equal(t, mgl32.Vec3{17, 1, -31}, hi)
	assert.Equal(t, m.Indices, moved.Indices)
}

func benchmarkMesher(b *testing.B, mesher Mesher) {
	g := randomGrid(voxel.ChunkSize, 1, 0.5)
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		_ = mesher.Mesh(g)
	}
}

func BenchmarkNaiveMesher(b *testing.B)  { benchmarkMesher(b, NaiveMesher{}) }
func BenchmarkCulledMesher(b *testing.B) { benchmarkMesher(b, CulledMesher{}) }
func BenchmarkGreedyMesher(b *testing.B) { benchmarkMesher(b, GreedyMesher{}) }
