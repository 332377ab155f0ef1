package chunk

import (
	"math"
	"testing"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPlayerChunk_RoundsToNearest(t *testing.T) {
	assert.Equal(t, Coord{0, 0}, PlayerChunk(0, 0, 16))
	assert.Equal(t, Coord{1, 0}, PlayerChunk(8, 7.9, 16), "8/16 = 0.5 округляется от нуля")
	assert.Equal(t, Coord{-1, -1}, PlayerChunk(-8, -9, 16))
	assert.Equal(t, Coord{2, -2}, PlayerChunk(6, -6, 4))
	assert.Equal(t, Coord{1, 0}, PlayerChunk(5.9, 1.9, 4))
}

func TestCoord_Distance(t *testing.T) {
	c := Coord{X: 2, Z: -3}
	assert.Equal(t, 0, c.Distance(c))
	assert.Equal(t, 5, c.Distance(Coord{X: 7, Z: -1}))
	assert.Equal(t, 4, c.Distance(Coord{X: 0, Z: 1}))
}

func TestWindow(t *testing.T) {
	w := Window(Coord{X: 5, Z: -5}, 2)
	require.Len(t, w, 25)
	assert.Equal(t, Coord{X: 3, Z: -7}, w[0])
	assert.Equal(t, Coord{X: 7, Z: -3}, w[24])
	for _, c := range w {
		assert.LessOrEqual(t, c.Distance(Coord{X: 5, Z: -5}), 2)
	}

	assert.Len(t, Window(Coord{}, 0), 1)
	assert.Nil(t, Window(Coord{}, -1))
}

func TestParseCoord(t *testing.T) {
	c, err := ParseCoord(" 3, -12 ")
	require.NoError(t, err)
	assert.Equal(t, Coord{X: 3, Z: -12}, c)

	for _, bad := range []string{"", "1", "1,2,3", "a,1", "1,b"} {
		_, err := ParseCoord(bad)
		assert.Error(t, err, "строка %q", bad)
	}
}

func TestCheckPosition(t *testing.T) {
	assert.NoError(t, CheckPosition(-1234.5, 98765, 16))
	assert.NoError(t, CheckPosition(float64(MaxCoord)*16, 0, 16))

	for _, pos := range [][2]float64{
		{1e300, 0},
		{0, -1e300},
		{float64(MaxCoord+1) * 4, 0},
		{math.NaN(), 0},
		{0, math.Inf(1)},
	} {
		assert.ErrorIs(t, CheckPosition(pos[0], pos[1], 4), ErrOutOfRange, "позиция %v", pos)
	}
}

func TestParseCoord_OutOfRange(t *testing.T) {
	_, err := ParseCoord("2000000000,0")
	assert.ErrorIs(t, err, ErrOutOfRange)

	c, err := ParseCoord("-1073741824,1073741824")
	require.NoError(t, err)
	assert.True(t, c.Valid())
}

func TestCoord_Origin(t *testing.T) {
	assert.Equal(t, mgl32.Vec3{-32, 0, 48}, Coord{X: -2, Z: 3}.Origin(16))
	assert.Equal(t, "(-2,3)", Coord{X: -2, Z: 3}.String())
}
