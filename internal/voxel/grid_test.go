package voxel

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGrid_IndexLinearization(t *testing.T) {
	g := NewGrid(4)

	assert.Equal(t, 0, g.Index(0, 0, 0))
	assert.Equal(t, 1, g.Index(1, 0, 0), "x — самая быстрая ось")
	assert.Equal(t, 4, g.Index(0, 1, 0), "шаг по y равен N")
	assert.Equal(t, 16, g.Index(0, 0, 1), "шаг по z равен N*N")
	assert.Equal(t, 63, g.Index(3, 3, 3))
}

func TestGrid_SetAndAt(t *testing.T) {
	g := NewChunkGrid()
	require.Equal(t, ChunkSize, g.Size())
	assert.Equal(t, ChunkSize*ChunkSize*ChunkSize, g.Len())

	assert.True(t, g.At(3, 4, 5).IsAir(), "новая сетка должна быть пустой")

	g.Set(3, 4, 5, Solid(7))
	assert.Equal(t, uint8(7), g.At(3, 4, 5).Type)
	assert.Equal(t, 1, g.SolidCount())
}

func TestGrid_OutOfBoundsPanics(t *testing.T) {
	g := NewGrid(2)

	assert.False(t, g.InBounds(-1, 0, 0))
	assert.False(t, g.InBounds(0, 2, 0))
	assert.Panics(t, func() { g.At(2, 0, 0) }, "чтение за границей — ошибка логики")
	assert.Panics(t, func() { g.Set(0, 0, -1, Solid(1)) })
}

func TestGrid_CloneIsIndependent(t *testing.T) {
	g := NewGrid(3)
	g.Fill(Solid(1))

	c := g.Clone()
	require.True(t, g.Equal(c))

	c.Set(0, 0, 0, Air())
	assert.False(t, g.Equal(c), "изменение копии не должно влиять на оригинал")
	assert.True(t, g.At(0, 0, 0).IsSolid())
}

func TestGrid_BinaryRoundTrip(t *testing.T) {
	g := NewGrid(5)
	g.Set(1, 2, 3, Solid(1))
	g.Set(4, 4, 4, Solid(9))

	data, err := g.MarshalBinary()
	require.NoError(t, err)
	assert.Len(t, data, 1+5*5*5)

	var restored Grid
	require.NoError(t, restored.UnmarshalBinary(data))
	assert.True(t, g.Equal(&restored))
}

func TestGrid_UnmarshalRejectsMalformed(t *testing.T) {
	var g Grid
	assert.ErrorIs(t, g.UnmarshalBinary(nil), ErrMalformedGrid)
	assert.ErrorIs(t, g.UnmarshalBinary([]byte{0}), ErrMalformedGrid)
	assert.ErrorIs(t, g.UnmarshalBinary([]byte{2, 1, 1}), ErrMalformedGrid)
}
