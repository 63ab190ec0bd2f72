package detection

import (
	"fmt"
	"image"
	"math"

	"github.com/golang/geo/r2"
	"gonum.org/v1/gonum/mat"
)

// DefaultScale is the default F₀ scale constant used in the data vector.
const DefaultScale = 1.0

// Conic holds the parameters (A, B, C, D, E, F) of the curve
//
//	Ax² + 2Bxy + Cy² + 2Dx + 2Ey + F = 0
//
// Fitted conics are stored with unit norm. The overall sign is arbitrary.
type Conic [6]float64

// Matrix returns the symmetric 3×3 form Q = [[A,B,D],[B,C,E],[D,E,F]].
func (c Conic) Matrix() *mat.Dense {
	return mat.NewDense(3, 3, []float64{
		c[0], c[1], c[3],
		c[1], c[2], c[4],
		c[3], c[4], c[5],
	})
}

// Discriminant returns AC − B². The conic is a real or imaginary ellipse when positive.
func (c Conic) Discriminant() float64 {
	return c[0]*c[2] - c[1]*c[1]
}

// Norm returns the Euclidean norm of the parameter vector.
func (c Conic) Norm() float64 {
	var sum float64
	for _, v := range c {
		sum += v * v
	}
	return math.Sqrt(sum)
}

// Normalized returns c scaled to unit norm. A zero conic is returned unchanged.
func (c Conic) Normalized() Conic {
	n := c.Norm()
	if n == 0 {
		return c
	}
	for i := range c {
		c[i] /= n
	}
	return c
}

// Value evaluates the implicit polynomial at (x, y).
func (c Conic) Value(x, y float64) float64 {
	return c[0]*x*x + 2*c[1]*x*y + c[2]*y*y + 2*c[3]*x + 2*c[4]*y + c[5]
}

// ConicFromMatrix extracts a unit-norm parameter vector from a symmetric 3×3 matrix.
// Only the upper triangle is read.
func ConicFromMatrix(q mat.Matrix) Conic {
	c := Conic{
		q.At(0, 0), q.At(0, 1), q.At(1, 1),
		q.At(0, 2), q.At(1, 2), q.At(2, 2),
	}
	return c.Normalized()
}

// FitResult is the outcome of a single conic fit.
type FitResult struct {
	// Conic is the unit-norm eigenvector of the scatter matrix with the
	// smallest eigenvalue, expressed for F₀ = 1.
	Conic Conic `json:"conic"`

	// IsEllipse reports whether AC − B² > 0.
	IsEllipse bool `json:"is_ellipse"`

	// Error is the mean statistically weighted residual in pixels.
	// Zero when error computation is disabled.
	Error float64 `json:"error"`
}

// ConicFitter fits a conic to a point list by least squares on the data vector
//
//	ξ = (x², 2xy, y², 2xF₀, 2yF₀, F₀²)
//
// The solution is the eigenvector of M = (1/n)·Σ ξξᵗ associated with the
// smallest eigenvalue. When ComputeError is set, the fitter also reports the
// mean of 0.5·sqrt((uᵗξ)² / (uᵗV₀u)) over all points, where V₀ is the
// first-order covariance of ξ. That quantity approximates the geometric
// distance of each point from the fitted curve.
//
// A ConicFitter has no per-call state and may be reused.
type ConicFitter struct {
	// Scale is the F₀ constant. Zero means DefaultScale.
	Scale float64

	// ComputeError enables the residual computation.
	ComputeError bool
}

// NewConicFitter returns a fitter with the default scale and error reporting enabled.
func NewConicFitter() *ConicFitter {
	return &ConicFitter{Scale: DefaultScale, ComputeError: true}
}

// Fit fits a conic to integer pixel coordinates.
//
// Returns ErrInsufficientPoints for fewer than 6 points, since the scatter
// matrix is rank-deficient below that.
func (f *ConicFitter) Fit(points []image.Point) (FitResult, error) {
	pts := make([]r2.Point, len(points))
	for i, p := range points {
		pts[i] = r2.Point{X: float64(p.X), Y: float64(p.Y)}
	}
	return f.FitPoints(pts)
}

// FitPoints fits a conic to sub-pixel coordinates.
func (f *ConicFitter) FitPoints(points []r2.Point) (FitResult, error) {
	n := len(points)
	if n < 6 {
		return FitResult{}, fmt.Errorf("%w: got %d, need 6", ErrInsufficientPoints, n)
	}

	f0 := f.Scale
	if f0 == 0 {
		f0 = DefaultScale
	}

	xis := make([][6]float64, n)
	var m [36]float64
	for k, p := range points {
		xi := dataVector(p, f0)
		xis[k] = xi
		for i := 0; i < 6; i++ {
			for j := i; j < 6; j++ {
				m[i*6+j] += xi[i] * xi[j]
			}
		}
	}
	for i := 0; i < 6; i++ {
		for j := i; j < 6; j++ {
			m[i*6+j] /= float64(n)
			m[j*6+i] = m[i*6+j]
		}
	}

	var eig mat.EigenSym
	if ok := eig.Factorize(mat.NewSymDense(6, m[:]), true); !ok {
		return FitResult{}, ErrEigenFailed
	}
	var vecs mat.Dense
	eig.VectorsTo(&vecs)

	// Eigenvalues are ascending; column 0 belongs to the smallest.
	var u Conic
	for i := 0; i < 6; i++ {
		u[i] = vecs.At(i, 0)
	}
	u = u.Normalized()

	result := FitResult{
		Conic:     u,
		IsEllipse: u.Discriminant() > 0,
	}

	if f.ComputeError {
		var sum float64
		for k, p := range points {
			uxi := dot6(u, xis[k])
			uvu := weightedNorm(u, p, f0)
			if uvu <= 0 {
				continue
			}
			sum += 0.5 * math.Sqrt((uxi*uxi)/uvu)
		}
		result.Error = sum / float64(n)
	}

	// Fold F₀ back into D, E and F so the conic reads in pixel units.
	if f0 != 1 {
		u[3] *= f0
		u[4] *= f0
		u[5] *= f0 * f0
		result.Conic = u.Normalized()
	}

	return result, nil
}

// dataVector returns ξ for a single point.
func dataVector(p r2.Point, f0 float64) [6]float64 {
	return [6]float64{
		p.X * p.X,
		2 * p.X * p.Y,
		p.Y * p.Y,
		2 * p.X * f0,
		2 * p.Y * f0,
		f0 * f0,
	}
}

// covariance returns the normalized covariance V₀ of ξ at p.
// The F₀F₀ row and column are zero.
func covariance(p r2.Point, f0 float64) [6][6]float64 {
	x, y := p.X, p.Y
	xx, xy, yy := x*x, x*y, y*y
	xf, yf, ff := x*f0, y*f0, f0*f0

	return [6][6]float64{
		{xx, xy, 0, xf, 0, 0},
		{xy, xx + yy, xy, yf, xf, 0},
		{0, xy, yy, 0, yf, 0},
		{xf, yf, 0, ff, 0, 0},
		{0, xf, yf, 0, ff, 0},
		{0, 0, 0, 0, 0, 0},
	}
}

// weightedNorm returns uᵗV₀u at p.
func weightedNorm(u Conic, p r2.Point, f0 float64) float64 {
	v := covariance(p, f0)
	var sum float64
	for i := 0; i < 6; i++ {
		var row float64
		for j := 0; j < 6; j++ {
			row += v[i][j] * u[j]
		}
		sum += u[i] * row
	}
	return sum
}

func dot6(u Conic, xi [6]float64) float64 {
	var sum float64
	for i := range u {
		sum += u[i] * xi[i]
	}
	return sum
}
