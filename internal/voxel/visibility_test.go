package voxel

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDirection_OppositeAndAxis(t *testing.T) {
	for _, d := range Directions {
		assert.Equal(t, d, d.Opposite().Opposite(), "двойная инверсия %s", d)
		assert.Equal(t, d.Axis(), d.Opposite().Axis(), "противоположные грани лежат на одной оси")
		assert.NotEqual(t, d.Positive(), d.Opposite().Positive())

		n := d.Normal()
		back, ok := DirectionFromNormal(n)
		assert.True(t, ok)
		assert.Equal(t, d, back)
	}
}

func TestDirection_CornersLieOnFacePlane(t *testing.T) {
	for _, d := range Directions {
		axis := d.Axis()
		want := 0
		if d.Positive() {
			want = 1
		}
		for i, c := range d.Corners() {
			assert.Equal(t, want, c[axis], "угол %d грани %s должен лежать в плоскости грани", i, d)
		}
	}
}

func TestDirection_CornersWindOutward(t *testing.T) {
	for _, d := range Directions {
		c := d.Corners()
		e1 := [3]int{c[1][0] - c[0][0], c[1][1] - c[0][1], c[1][2] - c[0][2]}
		e2 := [3]int{c[2][0] - c[0][0], c[2][1] - c[0][1], c[2][2] - c[0][2]}
		cross := [3]int{
			e1[1]*e2[2] - e1[2]*e2[1],
			e1[2]*e2[0] - e1[0]*e2[2],
			e1[0]*e2[1] - e1[1]*e2[0],
		}
		assert.Equal(t, d.Normal(), cross, "первый треугольник грани %s должен смотреть наружу", d)
	}
}

func TestVisible_BoundaryFacesAlwaysVisible(t *testing.T) {
	g := NewGrid(2)
	g.Fill(Solid(1))

	// Угловой воксель: три грани смотрят за границу, три — на твёрдых соседей
	assert.True(t, Visible(g, 0, 0, 0, Left))
	assert.True(t, Visible(g, 0, 0, 0, Bottom))
	assert.True(t, Visible(g, 0, 0, 0, Back))
	assert.False(t, Visible(g, 0, 0, 0, Right))
	assert.False(t, Visible(g, 0, 0, 0, Top))
	assert.False(t, Visible(g, 0, 0, 0, Front))
}

func TestVisible_EmptyNeighbor(t *testing.T) {
	g := NewGrid(3)
	g.Set(1, 1, 1, Solid(1))
	g.Set(1, 2, 1, Solid(1))

	assert.False(t, Visible(g, 1, 1, 1, Top), "сосед сверху твёрдый")
	assert.True(t, Visible(g, 1, 1, 1, Bottom), "сосед снизу пустой")
	for _, d := range []Direction{Front, Back, Right, Left} {
		assert.True(t, Visible(g, 1, 1, 1, d), "боковая грань %s", d)
	}
}
