package storage

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/annel0/voxel-mesher/internal/voxel"
)

func setupTestStorage(t *testing.T, namespace string) *GridStorage {
	t.Helper()

	gs, err := NewGridStorage(t.TempDir(), namespace)
	require.NoError(t, err, "Не удалось создать хранилище")
	t.Cleanup(func() { gs.Close() })
	return gs
}

func sampleGrid() *voxel.Grid {
	g := voxel.NewGrid(8)
	for x := 0; x < 8; x++ {
		for z := 0; z < 8; z++ {
			for y := 0; y <= (x+z)%5; y++ {
				g.Set(x, y, z, voxel.Solid(uint8(1+y%3)))
			}
		}
	}
	return g
}

func TestSaveAndLoadGrid(t *testing.T) {
	gs := setupTestStorage(t, "test")

	grid := sampleGrid()
	require.NoError(t, gs.SaveGrid(10, -20, grid))

	loaded, found, err := gs.LoadGrid(10, -20)
	require.NoError(t, err)
	require.True(t, found)
	assert.True(t, grid.Equal(loaded), "загруженная сетка должна совпадать с сохранённой")
}

func TestLoadMissingGrid(t *testing.T) {
	gs := setupTestStorage(t, "test")

	grid, found, err := gs.LoadGrid(1, 1)
	require.NoError(t, err)
	assert.False(t, found)
	assert.Nil(t, grid)
}

func TestDeleteGrid(t *testing.T) {
	gs := setupTestStorage(t, "test")

	require.NoError(t, gs.SaveGrid(0, 0, sampleGrid()))
	require.NoError(t, gs.DeleteGrid(0, 0))

	_, found, err := gs.LoadGrid(0, 0)
	require.NoError(t, err)
	assert.False(t, found)

	assert.NoError(t, gs.DeleteGrid(5, 5), "удаление отсутствующей сетки не ошибка")
}

func TestNamespacesAreIsolated(t *testing.T) {
	dir := t.TempDir()

	a, err := NewGridStorage(dir, "seed1")
	require.NoError(t, err)
	require.NoError(t, a.SaveGrid(2, 3, sampleGrid()))
	require.NoError(t, a.Close())

	b, err := NewGridStorage(dir, "seed2")
	require.NoError(t, err)
	defer b.Close()

	_, found, err := b.LoadGrid(2, 3)
	require.NoError(t, err)
	assert.False(t, found, "сетка другого пространства имён не должна возвращаться")
}

func TestGridStorageDirectoryLayout(t *testing.T) {
	dir := t.TempDir()

	gs, err := NewGridStorage(dir, "ns")
	require.NoError(t, err)
	defer gs.Close()

	assert.DirExists(t, filepath.Join(dir, "grids"))
	assert.NoDirExists(t, filepath.Join(dir, "grids", "grids"))
}

func TestPersistenceAcrossReopen(t *testing.T) {
	dir := t.TempDir()
	grid := sampleGrid()

	first, err := NewGridStorage(dir, "ns")
	require.NoError(t, err)
	require.NoError(t, first.SaveGrid(-1, 4, grid))
	require.NoError(t, first.Close())

	second, err := NewGridStorage(dir, "ns")
	require.NoError(t, err)
	defer second.Close()

	loaded, found, err := second.LoadGrid(-1, 4)
	require.NoError(t, err)
	require.True(t, found)
	assert.True(t, grid.Equal(loaded))
}

func TestCoords(t *testing.T) {
	gs, err := NewInMemoryGridStorage("mem")
	require.NoError(t, err)
	defer gs.Close()

	require.NoError(t, gs.SaveGrid(0, 0, sampleGrid()))
	require.NoError(t, gs.SaveGrid(-3, 7, sampleGrid()))

	coords, err := gs.Coords()
	require.NoError(t, err)
	assert.ElementsMatch(t, [][2]int{{0, 0}, {-3, 7}}, coords)
}

func TestClosedStorage(t *testing.T) {
	gs, err := NewInMemoryGridStorage("mem")
	require.NoError(t, err)
	require.NoError(t, gs.Close())
	require.NoError(t, gs.Close(), "повторное закрытие безопасно")

	assert.ErrorIs(t, gs.SaveGrid(0, 0, sampleGrid()), ErrNotReady)
	_, _, err = gs.LoadGrid(0, 0)
	assert.ErrorIs(t, err, ErrNotReady)
}

func TestInvalidNamespace(t *testing.T) {
	_, err := NewInMemoryGridStorage("")
	assert.Error(t, err)

	_, err = NewInMemoryGridStorage("a:b")
	assert.Error(t, err)
}
