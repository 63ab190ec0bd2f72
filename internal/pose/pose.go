package pose

import (
	"fmt"
	"math"

	"github.com/golang/geo/r3"
	"gonum.org/v1/gonum/mat"

	"github.com/ironsheep/circular-marker-ar/internal/detection"
)

// backProjectTolerance guards the homogenization and ray scaling steps.
const backProjectTolerance = 1e-12

// centreTolerance is the smallest in-plane centre separation, relative to
// the outer centre's distance, that defines the marker's Z axis.
const centreTolerance = 1e-9

// rotationTolerance bounds the orthonormality and determinant checks in Validate.
const rotationTolerance = 1e-6

// CameraPose is the marker frame expressed in renderer eye coordinates.
//
// The columns of R are the marker's X, Y and Z axes; Y is the marker plane
// normal and Z points from the outer circle's centre toward the inner
// circle's centre. T is the outer circle's centre.
type CameraPose struct {
	R [3][3]float64 `json:"r"`
	T r3.Vector     `json:"t"`
}

// basisSwap maps the camera frame (X up, Y right, Z forward) to eye
// coordinates (X right, Y up, Z backward).
var basisSwap = [3][3]float64{
	{0, 1, 0},
	{1, 0, 0},
	{0, 0, -1},
}

// Column returns column j of R.
func (p CameraPose) Column(j int) r3.Vector {
	return r3.Vector{X: p.R[0][j], Y: p.R[1][j], Z: p.R[2][j]}
}

// Apply maps a marker-frame point into eye coordinates: R·v + T.
func (p CameraPose) Apply(v r3.Vector) r3.Vector {
	return r3.Vector{
		X: p.R[0][0]*v.X + p.R[0][1]*v.Y + p.R[0][2]*v.Z + p.T.X,
		Y: p.R[1][0]*v.X + p.R[1][1]*v.Y + p.R[1][2]*v.Z + p.T.Y,
		Z: p.R[2][0]*v.X + p.R[2][1]*v.Y + p.R[2][2]*v.Z + p.T.Z,
	}
}

// ModelView packs R and T into a 16-element column-major matrix with the
// translation in the fourth column and (0, 0, 0, 1) as the last row.
func (p CameraPose) ModelView() [16]float64 {
	var m [16]float64
	for j := 0; j < 3; j++ {
		for i := 0; i < 3; i++ {
			m[4*j+i] = p.R[i][j]
		}
	}
	m[12] = p.T.X
	m[13] = p.T.Y
	m[14] = p.T.Z
	m[15] = 1
	return m
}

// Validate reports ErrDegeneratePose unless R is finite, orthonormal and
// right-handed and T is finite.
func (p CameraPose) Validate() error {
	for i := 0; i < 3; i++ {
		for j := 0; j < 3; j++ {
			if math.IsNaN(p.R[i][j]) || math.IsInf(p.R[i][j], 0) {
				return fmt.Errorf("%w: rotation has non-finite entries", ErrDegeneratePose)
			}
		}
	}
	if !finiteVector(p.T) {
		return fmt.Errorf("%w: translation has non-finite entries", ErrDegeneratePose)
	}

	for a := 0; a < 3; a++ {
		for b := a; b < 3; b++ {
			want := 0.0
			if a == b {
				want = 1
			}
			if got := p.Column(a).Dot(p.Column(b)); math.Abs(got-want) > rotationTolerance {
				return fmt.Errorf("%w: rotation is not orthonormal", ErrDegeneratePose)
			}
		}
	}

	det := p.Column(0).Cross(p.Column(1)).Dot(p.Column(2))
	if math.Abs(det-1) > rotationTolerance {
		return fmt.Errorf("%w: rotation determinant %g", ErrDegeneratePose, det)
	}
	return nil
}

// ComputeCameraParam estimates the pose of a marker from its normalized
// outer and inner conics.
//
// # Algorithm
//
//  1. PlaneNormal on the outer conic gives the plane normal Y, the distance d
//     and the outer conic rescaled to det = −1.
//  2. For each conic Q, Xc = Q⁻¹·Y homogenized to Xc.Z = 1 is the direction
//     of the circle's centre, and Rc = −d·Xc/(Y·Xc) is the centre itself.
//  3. Z = normalize((I − YYᵗ)(RcInner − RcOuter)), X = normalize(Y × Z),
//     R = [X Y Z] and T = RcOuter.
//  4. R and T are premultiplied by a fixed basis swap into eye coordinates.
//
// Only the placement stored on the marker chooses between the two plane
// normals consistent with the outer conic. Returns ErrDegeneratePose when
// the geometry does not determine a pose, including coincident circle
// centres, which leave Z undefined.
func ComputeCameraParam(m detection.Marker) (CameraPose, error) {
	if !(m.RadiusOuter > 0) {
		return CameraPose{}, fmt.Errorf("%w: outer radius %g", ErrInvalidRadius, m.RadiusOuter)
	}

	plane, err := PlaneNormal(m.Outer.Matrix(), m.RadiusOuter, m.Placement)
	if err != nil {
		return CameraPose{}, err
	}
	y := plane.Normal

	rcOuter, err := circleCenter(plane.Conic, y, plane.Distance)
	if err != nil {
		return CameraPose{}, fmt.Errorf("outer circle: %w", err)
	}
	rcInner, err := circleCenter(m.Inner.Matrix(), y, plane.Distance)
	if err != nil {
		return CameraPose{}, fmt.Errorf("inner circle: %w", err)
	}

	diff := rcInner.Sub(rcOuter)
	z := diff.Sub(y.Mul(y.Dot(diff)))
	if z.Norm() <= centreTolerance*math.Max(rcOuter.Norm(), 1) {
		return CameraPose{}, fmt.Errorf("%w: circle centres coincide", ErrDegeneratePose)
	}
	z = z.Normalize()
	x := y.Cross(z).Normalize()

	var camera [3][3]float64
	for i, col := range []r3.Vector{x, y, z} {
		camera[0][i] = col.X
		camera[1][i] = col.Y
		camera[2][i] = col.Z
	}

	result := CameraPose{
		R: mul3(basisSwap, camera),
		T: apply3(basisSwap, rcOuter),
	}
	if err := result.Validate(); err != nil {
		return CameraPose{}, err
	}
	return result, nil
}

// circleCenter back-projects the centre of the circle imaged as q onto the
// plane with normal y at distance dist.
func circleCenter(q mat.Matrix, y r3.Vector, dist float64) (r3.Vector, error) {
	var inv mat.Dense
	if err := inv.Inverse(q); err != nil {
		return r3.Vector{}, fmt.Errorf("%w: conic is singular: %v", ErrDegeneratePose, err)
	}

	xc := r3.Vector{
		X: inv.At(0, 0)*y.X + inv.At(0, 1)*y.Y + inv.At(0, 2)*y.Z,
		Y: inv.At(1, 0)*y.X + inv.At(1, 1)*y.Y + inv.At(1, 2)*y.Z,
		Z: inv.At(2, 0)*y.X + inv.At(2, 1)*y.Y + inv.At(2, 2)*y.Z,
	}
	if math.Abs(xc.Z) <= backProjectTolerance*xc.Norm() {
		return r3.Vector{}, fmt.Errorf("%w: centre ray is parallel to the image plane", ErrDegeneratePose)
	}
	xc = r3.Vector{X: xc.X / xc.Z, Y: xc.Y / xc.Z, Z: 1}

	denom := y.Dot(xc)
	if math.Abs(denom) <= backProjectTolerance {
		return r3.Vector{}, fmt.Errorf("%w: centre ray lies in the marker plane", ErrDegeneratePose)
	}
	return xc.Mul(-dist / denom), nil
}

func mul3(a, b [3][3]float64) [3][3]float64 {
	var out [3][3]float64
	for i := 0; i < 3; i++ {
		for j := 0; j < 3; j++ {
			for k := 0; k < 3; k++ {
				out[i][j] += a[i][k] * b[k][j]
			}
		}
	}
	return out
}

func apply3(a [3][3]float64, v r3.Vector) r3.Vector {
	return r3.Vector{
		X: a[0][0]*v.X + a[0][1]*v.Y + a[0][2]*v.Z,
		Y: a[1][0]*v.X + a[1][1]*v.Y + a[1][2]*v.Z,
		Z: a[2][0]*v.X + a[2][1]*v.Y + a[2][2]*v.Z,
	}
}
