package mesh

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/annel0/voxel-mesher/internal/voxel"
)

func TestUnitFaces_SingleVoxel(t *testing.T) {
	g := voxel.NewGrid(3)
	g.Set(1, 1, 1, voxel.Solid(1))

	s, err := UnitFaces(CulledMesher{}.Mesh(g))
	require.NoError(t, err)
	require.Len(t, s, 6)
	for _, dir := range voxel.Directions {
		assert.Equal(t, 1, s[Face{X: 1, Y: 1, Z: 1, Dir: dir}], "грань %s принадлежит вокселю (1,1,1)", dir)
	}
}

func TestUnitFaces_MergedQuadExpands(t *testing.T) {
	g := voxel.NewGrid(4)
	for z := 0; z < 4; z++ {
		g.Set(0, 0, z, voxel.Solid(1))
	}

	s, err := UnitFaces(GreedyMesher{}.Mesh(g))
	require.NoError(t, err)
	for z := 0; z < 4; z++ {
		assert.Equal(t, 1, s[Face{X: 0, Y: 0, Z: z, Dir: voxel.Top}])
	}
}

func TestCancelOpposing_RemovesInternalPairs(t *testing.T) {
	g := voxel.NewGrid(3)
	g.Set(0, 0, 0, voxel.Solid(1))
	g.Set(1, 0, 0, voxel.Solid(1))

	naive, err := UnitFaces(NaiveMesher{}.Mesh(g))
	require.NoError(t, err)
	assert.Len(t, naive, 12)

	visible := CancelOpposing(naive)
	assert.Len(t, visible, 10)
	assert.NotContains(t, visible, Face{X: 0, Y: 0, Z: 0, Dir: voxel.Right})
	assert.NotContains(t, visible, Face{X: 1, Y: 0, Z: 0, Dir: voxel.Left})
}

func TestSurface_DiffAndOverlaps(t *testing.T) {
	a := Surface{{X: 0, Dir: voxel.Top}: 1, {X: 1, Dir: voxel.Top}: 2}
	b := Surface{{X: 0, Dir: voxel.Top}: 1}

	assert.True(t, a.Overlaps())
	assert.False(t, b.Overlaps())
	assert.Equal(t, []Face{{X: 1, Dir: voxel.Top}}, a.Diff(b))
	assert.Empty(t, b.Diff(a))
	assert.False(t, a.Equal(b))
}
