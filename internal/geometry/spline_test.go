package geometry

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"coaster-studio/internal/common"
)

func TestCurveRequiresTwoPoints(t *testing.T) {
	assert.Nil(t, NewCurve(nil, false))
	assert.Nil(t, NewCurve([]common.Vec3{{X: 1}}, false))
	assert.NotNil(t, NewCurve([]common.Vec3{{X: 1}, {X: 2}}, false))
}

func TestCurvePassesThroughControlPoints(t *testing.T) {
	pts := []common.Vec3{
		{X: 0, Y: 0, Z: 0},
		{X: 10, Y: 5, Z: 2},
		{X: 20, Y: 0, Z: -3},
		{X: 30, Y: 8, Z: 1},
	}
	c := NewCurve(pts, false)
	require.NotNil(t, c)
	require.Equal(t, 3, c.Segments())

	for i, want := range pts {
		got := c.PointAt(float64(i) / 3)
		assert.InDelta(t, want.X, got.X, 1e-9)
		assert.InDelta(t, want.Y, got.Y, 1e-9)
		assert.InDelta(t, want.Z, got.Z, 1e-9)
	}
}

func TestClosedCurveWraps(t *testing.T) {
	pts := []common.Vec3{
		{X: 0, Z: 0},
		{X: 10, Z: 0},
		{X: 10, Z: 10},
		{X: 0, Z: 10},
	}
	c := NewCurve(pts, true)
	require.NotNil(t, c)
	require.Equal(t, 4, c.Segments())

	// t=1 wraps back to the first control point.
	p0 := c.PointAt(0)
	p1 := c.PointAt(1)
	assert.InDelta(t, p0.X, p1.X, 1e-9)
	assert.InDelta(t, p0.Z, p1.Z, 1e-9)

	// Negative parameters wrap too.
	a := c.PointAt(-0.25)
	b := c.PointAt(0.75)
	assert.InDelta(t, a.X, b.X, 1e-9)
	assert.InDelta(t, a.Z, b.Z, 1e-9)
}

func TestStraightLineMidpoint(t *testing.T) {
	c := NewCurve([]common.Vec3{{}, {X: 10}}, false)
	require.NotNil(t, c)

	mid := c.PointAt(0.5)
	assert.InDelta(t, 5.0, mid.X, 1e-9)
	assert.InDelta(t, 0.0, mid.Y, 1e-9)
	assert.InDelta(t, 0.0, mid.Z, 1e-9)

	tan := c.TangentAt(0.5).Normalize()
	assert.InDelta(t, 1.0, tan.X, 1e-9)
}

func TestCurveDoesNotMutateInput(t *testing.T) {
	pts := []common.Vec3{{X: 1}, {X: 2}, {X: 3}}
	c := NewCurve(pts, false)
	require.NotNil(t, c)
	pts[0].X = 99
	assert.InDelta(t, 1.0, c.PointAt(0).X, 1e-9)
}
