package pose

import (
	"fmt"
	"math"

	"github.com/golang/geo/r3"
	"gonum.org/v1/gonum/mat"

	"github.com/ironsheep/circular-marker-ar/internal/detection"
)

const (
	cubeRootTolerance = 1e-8
	cubeRootMaxIter   = 200

	// eigenGapTolerance bounds λ₂ − λ₀ relative to the largest |λ|.
	eigenGapTolerance = 1e-12
)

// CubeRoot returns the real x with x³ = y by Newton's method started at −1,
// iterating x ← x − (x³ − y)/(3x²) until the step is below 1e-8.
//
// The fixed start point is kept as is. An iterate that lands on zero, a
// non-finite value or running out of iterations yields ErrDegeneratePose.
func CubeRoot(y float64) (float64, error) {
	x := -1.0
	for i := 0; i < cubeRootMaxIter; i++ {
		d := 3 * x * x
		if d == 0 {
			return 0, fmt.Errorf("%w: cube root of %g hit a zero derivative", ErrDegeneratePose, y)
		}
		dx := (x*x*x - y) / d
		x -= dx
		if math.IsNaN(x) || math.IsInf(x, 0) {
			return 0, fmt.Errorf("%w: cube root of %g diverged", ErrDegeneratePose, y)
		}
		if math.Abs(dx) <= cubeRootTolerance {
			return x, nil
		}
	}
	return 0, fmt.Errorf("%w: cube root of %g did not converge", ErrDegeneratePose, y)
}

// PlaneResult is the supporting plane recovered from one conic.
type PlaneResult struct {
	// Normal is the unit plane normal, oriented toward the camera (Z < 0).
	Normal r3.Vector

	// Distance is the camera to plane distance in the units of the radius.
	Distance float64

	// Conic is the input scaled so that det = −1.
	Conic *mat.Dense

	// Eigenvalues of Conic, ascending.
	Eigenvalues [3]float64
}

// PlaneNormal recovers the plane supporting a circle of the given radius
// whose image is the normalized conic q.
//
// # Algorithm
//
//  1. Scale q by the real cube root of −det(q) so that det = −1.
//  2. Eigendecompose: λ₀ ≤ λ₁ ≤ λ₂ with eigenvectors u₀, u₁, u₂.
//  3. v₁ = √((λ₂−λ₁)/(λ₂−λ₀))·u₂ and v₂ = √((λ₁−λ₀)/(λ₂−λ₀))·u₀.
//  4. n = normalize(v₁+v₂), switching to normalize(v₁−v₂) when n.X·n.Z > 0
//     under PlacementDefault or n.X·n.Z ≤ 0 under PlacementFlipped.
//  5. Negate n if n.Z > 0.
//  6. Distance = √(λ₁³)·radius.
//
// Returns ErrDegeneratePose when λ₂ = λ₀, when λ₁ < 0, or when any step
// produces a non-finite value.
func PlaneNormal(q mat.Matrix, radius float64, placement detection.Placement) (PlaneResult, error) {
	if !placement.Valid() {
		return PlaneResult{}, fmt.Errorf("%w: %d", ErrInvalidPlacement, placement)
	}

	det := mat.Det(q)
	if det == 0 || math.IsNaN(det) {
		return PlaneResult{}, fmt.Errorf("%w: singular conic", ErrDegeneratePose)
	}
	k, err := CubeRoot(-det)
	if err != nil {
		return PlaneResult{}, err
	}
	if k == 0 {
		return PlaneResult{}, fmt.Errorf("%w: singular conic", ErrDegeneratePose)
	}

	var scaled mat.Dense
	scaled.Scale(1/k, q)

	sym := mat.NewSymDense(3, nil)
	for i := 0; i < 3; i++ {
		for j := i; j < 3; j++ {
			sym.SetSym(i, j, 0.5*(scaled.At(i, j)+scaled.At(j, i)))
		}
	}

	var eig mat.EigenSym
	if ok := eig.Factorize(sym, true); !ok {
		return PlaneResult{}, fmt.Errorf("%w: eigendecomposition failed", ErrDegeneratePose)
	}
	values := eig.Values(nil)
	var vecs mat.Dense
	eig.VectorsTo(&vecs)

	l0, l1, l2 := values[0], values[1], values[2]
	scale := math.Max(math.Abs(l0), math.Abs(l2))
	if l2-l0 <= eigenGapTolerance*math.Max(scale, 1) {
		return PlaneResult{}, fmt.Errorf("%w: eigenvalues coincide (λ₀=%g, λ₂=%g)", ErrDegeneratePose, l0, l2)
	}
	if l1 < 0 {
		return PlaneResult{}, fmt.Errorf("%w: middle eigenvalue %g is negative", ErrDegeneratePose, l1)
	}

	u0 := r3.Vector{X: vecs.At(0, 0), Y: vecs.At(1, 0), Z: vecs.At(2, 0)}
	u2 := r3.Vector{X: vecs.At(0, 2), Y: vecs.At(1, 2), Z: vecs.At(2, 2)}

	v1 := u2.Mul(math.Sqrt((l2 - l1) / (l2 - l0)))
	v2 := u0.Mul(math.Sqrt((l1 - l0) / (l2 - l0)))

	n := v1.Add(v2)
	if n.Norm() == 0 {
		return PlaneResult{}, fmt.Errorf("%w: zero normal", ErrDegeneratePose)
	}
	n = n.Normalize()

	if (n.X*n.Z > 0 && placement == detection.PlacementDefault) ||
		(n.X*n.Z <= 0 && placement == detection.PlacementFlipped) {
		n = v1.Sub(v2)
		if n.Norm() == 0 {
			return PlaneResult{}, fmt.Errorf("%w: zero normal", ErrDegeneratePose)
		}
		n = n.Normalize()
	}
	if n.Z > 0 {
		n = n.Mul(-1)
	}

	dist := math.Sqrt(l1*l1*l1) * radius
	if !finiteVector(n) || math.IsNaN(dist) || math.IsInf(dist, 0) {
		return PlaneResult{}, fmt.Errorf("%w: non-finite plane", ErrDegeneratePose)
	}

	return PlaneResult{
		Normal:      n,
		Distance:    dist,
		Conic:       &scaled,
		Eigenvalues: [3]float64{l0, l1, l2},
	}, nil
}

func finiteVector(v r3.Vector) bool {
	for _, c := range []float64{v.X, v.Y, v.Z} {
		if math.IsNaN(c) || math.IsInf(c, 0) {
			return false
		}
	}
	return true
}
