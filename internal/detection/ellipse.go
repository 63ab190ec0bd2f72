package detection

import (
	"fmt"
	"image"
	"math"

	"github.com/golang/geo/r2"
	"gonum.org/v1/gonum/mat"
)

// Ellipse wraps a fitted conic together with its derived geometry.
//
// Center, MajorLength and MinorLength are valid only after ComputeAttributes
// has run. They are meaningless (possibly NaN) when the conic is not a real
// ellipse, so callers must check Conic.Discriminant() > 0 first. The
// detector only builds ellipses that passed that test.
type Ellipse struct {
	// Conic is the unit-norm parameter vector (A, B, C, D, E, F).
	Conic Conic `json:"conic"`

	// Center is the critical point of the conic in the coordinate frame of
	// the source points.
	Center r2.Point `json:"center"`

	// MajorLength is the semi-major axis length.
	MajorLength float64 `json:"major_length"`

	// MinorLength is the semi-minor axis length.
	MinorLength float64 `json:"minor_length"`

	// FitError is the residual reported by the fitter.
	FitError float64 `json:"fit_error"`

	// Points is the source contour. Not serialized.
	Points []image.Point `json:"-"`

	centerSign    float64
	hasCenterSign bool
}

// NewEllipse returns an ellipse for conic u built from points.
// Attributes are not computed.
func NewEllipse(u Conic, points []image.Point) *Ellipse {
	return &Ellipse{Conic: u, Points: points}
}

// Matrix returns the symmetric 3×3 conic matrix Q.
func (e *Ellipse) Matrix() *mat.Dense {
	return e.Conic.Matrix()
}

// ComputeAttributes derives the centre and semi-axis lengths from the conic.
//
// # Algorithm
//
// The centre is the critical point of the quadratic:
//
//	cx = −(CD − BE) / (AC − B²)
//	cy = −(AE − BD) / (AC − B²)
//
// The quadratic part is rescaled by c = A·cx² + 2B·cx·cy + C·cy² − F so the
// centred form reads Ax² + 2Bxy + Cy² = 1. Its eigenvalues are
// ((A+C) ∓ √((A+C)² − 4(AC−B²))) / 2 and each axis length is 1/√|λ|, so the
// smaller eigenvalue gives the major axis.
//
// The stored Conic is left unchanged. The centre sign used by CheckInner is
// fixed here.
func (e *Ellipse) ComputeAttributes() {
	a, b, c := e.Conic[0], e.Conic[1], e.Conic[2]
	d, ee, f := e.Conic[3], e.Conic[4], e.Conic[5]

	det := a*c - b*b
	cx := -(c*d - b*ee) / det
	cy := -(a*ee - b*d) / det
	e.Center = r2.Point{X: cx, Y: cy}

	scale := a*cx*cx + 2*b*cx*cy + c*cy*cy - f
	a /= scale
	b /= scale
	c /= scale

	part := math.Sqrt((a+c)*(a+c) - 4*(a*c-b*b))
	lambdaSmall := 0.5 * ((a + c) - part)
	lambdaLarge := 0.5 * ((a + c) + part)

	e.MajorLength = 1 / math.Sqrt(math.Abs(lambdaSmall))
	e.MinorLength = 1 / math.Sqrt(math.Abs(lambdaLarge))

	e.centerSign = e.EllipseValue(cx, cy)
	e.hasCenterSign = true
}

// EllipseValue evaluates the stored implicit polynomial at (x, y).
func (e *Ellipse) EllipseValue(x, y float64) float64 {
	return e.Conic.Value(x, y)
}

// CheckInner reports whether (x, y) lies on the same side of the curve as
// the ellipse centre.
//
// The centre sign is taken once per ellipse, by ComputeAttributes or on the
// first call here, and reused for the lifetime of the value.
func (e *Ellipse) CheckInner(x, y float64) bool {
	if !e.hasCenterSign {
		e.centerSign = e.EllipseValue(e.Center.X, e.Center.Y)
		e.hasCenterSign = true
	}
	return e.centerSign*e.EllipseValue(x, y) > 0
}

// AxisRatio returns MinorLength / MajorLength.
func (e *Ellipse) AxisRatio() float64 {
	if e.MajorLength == 0 {
		return 0
	}
	return e.MinorLength / e.MajorLength
}

// String returns a short description for logs.
func (e *Ellipse) String() string {
	return fmt.Sprintf("ellipse center=(%.1f,%.1f) axes=%.1f/%.1f err=%.3f",
		e.Center.X, e.Center.Y, e.MajorLength, e.MinorLength, e.FitError)
}
