package detection

import (
	"math"
	"testing"

	"github.com/golang/geo/r2"
	"github.com/stretchr/testify/assert"
)

func TestComputeAttributes(t *testing.T) {
	tests := []struct {
		name         string
		conic        Conic
		cx, cy       float64
		major, minor float64
	}{
		{"circle", circleConic(100, 50, 30), 100, 50, 30, 30},
		{"circle at origin", circleConic(0, 0, 5), 0, 0, 5, 5},
		{"wide ellipse", ellipseConic(100, 50, 40, 20, 0), 100, 50, 40, 20},
		{"tall ellipse", ellipseConic(-20, 10, 15, 45, 0), -20, 10, 45, 15},
		{"rotated ellipse", ellipseConic(64, 48, 36, 18, math.Pi/5), 64, 48, 36, 18},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e := NewEllipse(tt.conic, nil)
			e.ComputeAttributes()

			assert.InDelta(t, tt.cx, e.Center.X, 1e-6)
			assert.InDelta(t, tt.cy, e.Center.Y, 1e-6)
			assert.InDelta(t, tt.major, e.MajorLength, 1e-6)
			assert.InDelta(t, tt.minor, e.MinorLength, 1e-6)
			assert.GreaterOrEqual(t, e.MajorLength, e.MinorLength)
		})
	}
}

func TestComputeAttributesKeepsConic(t *testing.T) {
	u := ellipseConic(10, 20, 8, 4, 0.4)
	e := NewEllipse(u, nil)
	e.ComputeAttributes()

	assert.Equal(t, u, e.Conic)
}

func TestComputeAttributesSignInvariant(t *testing.T) {
	u := ellipseConic(30, 40, 12, 6, 1.1)
	var neg Conic
	for i := range u {
		neg[i] = -u[i]
	}

	a := builtEllipse(u)
	b := builtEllipse(neg)

	assert.InDelta(t, a.Center.X, b.Center.X, 1e-9)
	assert.InDelta(t, a.Center.Y, b.Center.Y, 1e-9)
	assert.InDelta(t, a.MajorLength, b.MajorLength, 1e-9)
	assert.InDelta(t, a.MinorLength, b.MinorLength, 1e-9)
}

func TestEllipseValueSigns(t *testing.T) {
	e := builtEllipse(circleConic(50, 50, 20))

	center := e.EllipseValue(50, 50)
	justInside := e.EllipseValue(69, 50)
	farOutside := e.EllipseValue(200, 200)

	assert.Greater(t, center*justInside, 0.0, "centre and inner point share a sign")
	assert.Less(t, center*farOutside, 0.0, "centre and outer point differ in sign")
	assert.InDelta(t, 0.0, e.EllipseValue(70, 50), 1e-12)
}

func TestCheckInner(t *testing.T) {
	tests := []struct {
		name     string
		x, y     float64
		expected bool
	}{
		{"centre", 50, 50, true},
		{"inside", 60, 45, true},
		{"just inside", 50, 69.5, true},
		{"just outside", 50, 70.5, false},
		{"far outside", -100, 300, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e := builtEllipse(circleConic(50, 50, 20))
			assert.Equal(t, tt.expected, e.CheckInner(tt.x, tt.y))
		})
	}
}

func TestCheckInnerWithoutAttributes(t *testing.T) {
	e := NewEllipse(circleConic(50, 50, 20), nil)
	e.Center = r2.Point{X: 50, Y: 50}

	assert.True(t, e.CheckInner(55, 55))
	assert.False(t, e.CheckInner(90, 90))
}

func TestCheckInnerIsPerInstance(t *testing.T) {
	// One ellipse's centre sign must not leak into another's classification.
	positive := builtEllipse(circleConic(50, 50, 20))

	u := circleConic(200, 200, 20)
	for i := range u {
		u[i] = -u[i]
	}
	negative := builtEllipse(u)

	assert.True(t, positive.CheckInner(50, 55))
	assert.True(t, negative.CheckInner(200, 205))
	assert.False(t, negative.CheckInner(50, 55))
	assert.False(t, positive.CheckInner(200, 205))
}

func TestAxisRatio(t *testing.T) {
	e := builtEllipse(ellipseConic(0, 0, 40, 10, 0))
	assert.InDelta(t, 0.25, e.AxisRatio(), 1e-9)

	assert.Equal(t, 0.0, (&Ellipse{}).AxisRatio())
}

func TestEllipseString(t *testing.T) {
	e := builtEllipse(circleConic(12, 34, 5))
	assert.Contains(t, e.String(), "center=(12.0,34.0)")
}
