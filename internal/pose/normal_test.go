package pose

import (
	"math"
	"testing"

	"github.com/golang/geo/r3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/mat"

	"github.com/ironsheep/circular-marker-ar/internal/detection"
)

func TestCubeRoot(t *testing.T) {
	tests := []struct {
		name     string
		input    float64
		expected float64
	}{
		{"negative unit", -1, -1},
		{"negative", -27, -3},
		{"positive", 8, 2},
		{"positive unit", 1, 1},
		{"small positive", 0.001, 0.1},
		{"large", 1e9, 1000},
		{"fraction", -0.125, -0.5},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := CubeRoot(tt.input)
			require.NoError(t, err)
			assert.InDelta(t, tt.expected, got, 1e-7*math.Max(1, math.Abs(tt.expected)))
		})
	}
}

func TestCubeRootFailures(t *testing.T) {
	// From x₀ = −1, y = 2 puts the first iterate exactly on zero.
	_, err := CubeRoot(2)
	assert.ErrorIs(t, err, ErrDegeneratePose)

	_, err = CubeRoot(math.NaN())
	assert.ErrorIs(t, err, ErrDegeneratePose)
}

func TestPlaneNormalFrontal(t *testing.T) {
	// A circle of radius r facing the camera at distance d images as
	// diag(d², d², −r²).
	const d, r = 300.0, 27.5
	q := mat.NewDense(3, 3, []float64{d * d, 0, 0, 0, d * d, 0, 0, 0, -r * r})

	for _, placement := range []detection.Placement{detection.PlacementDefault, detection.PlacementFlipped} {
		got, err := PlaneNormal(q, r, placement)
		require.NoError(t, err)

		assert.InDelta(t, 0, got.Normal.X, 1e-9)
		assert.InDelta(t, 0, got.Normal.Y, 1e-9)
		assert.InDelta(t, -1, got.Normal.Z, 1e-9)
		assert.InDelta(t, d, got.Distance, 1e-6)
		assert.InDelta(t, -1, mat.Det(got.Conic), 1e-9)
	}
}

func TestPlaneNormalTilted(t *testing.T) {
	tests := []struct {
		name      string
		normal    r3.Vector
		placement detection.Placement
	}{
		{"default", r3.Vector{X: 0.5, Y: 0.2, Z: -1}, detection.PlacementDefault},
		{"flipped", r3.Vector{X: -0.5, Y: 0.2, Z: -1}, detection.PlacementFlipped},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := r3.Vector{Z: 300}
			n := tt.normal.Normalize()

			var q mat.Dense
			q.Scale(0.01, circleCone(c, n, 27.5))

			got, err := PlaneNormal(&q, 27.5, tt.placement)
			require.NoError(t, err)

			assert.InDelta(t, 0, got.Normal.Sub(n).Norm(), 1e-9)
			assert.InDelta(t, math.Abs(c.Dot(n)), got.Distance, 1e-6)
			assert.LessOrEqual(t, got.Eigenvalues[0], got.Eigenvalues[1])
			assert.LessOrEqual(t, got.Eigenvalues[1], got.Eigenvalues[2])
		})
	}
}

func TestPlaneNormalSignInvariant(t *testing.T) {
	c := r3.Vector{X: 0, Y: 0, Z: 300}
	n := r3.Vector{X: 0.5, Y: 0.2, Z: -1}.Normalize()
	cone := circleCone(c, n, 27.5)

	var neg mat.Dense
	neg.Scale(-1, cone)

	a, err := PlaneNormal(cone, 27.5, detection.PlacementDefault)
	require.NoError(t, err)
	b, err := PlaneNormal(&neg, 27.5, detection.PlacementDefault)
	require.NoError(t, err)

	assert.InDelta(t, 0, a.Normal.Sub(b.Normal).Norm(), 1e-9)
	assert.InDelta(t, a.Distance, b.Distance, 1e-6)
}

func TestPlaneNormalDegenerate(t *testing.T) {
	tests := []struct {
		name      string
		q         *mat.Dense
		placement detection.Placement
		expected  error
	}{
		{"negative identity", mat.NewDense(3, 3, []float64{-1, 0, 0, 0, -1, 0, 0, 0, -1}), detection.PlacementDefault, ErrDegeneratePose},
		{"singular", mat.NewDense(3, 3, []float64{1, 0, 0, 0, 1, 0, 0, 0, 0}), detection.PlacementDefault, ErrDegeneratePose},
		{"invalid placement", mat.NewDense(3, 3, []float64{1, 0, 0, 0, 1, 0, 0, 0, -1}), detection.Placement(5), ErrInvalidPlacement},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := PlaneNormal(tt.q, 10, tt.placement)
			assert.ErrorIs(t, err, tt.expected)
		})
	}
}
