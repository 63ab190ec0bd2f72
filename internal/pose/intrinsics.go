package pose

import (
	"github.com/golang/geo/r2"
	"github.com/golang/geo/r3"
	"gonum.org/v1/gonum/mat"
)

// Default camera parameters.
const (
	DefaultFocal  = 700.0
	DefaultWidth  = 640
	DefaultHeight = 480

	// DefaultFrustumScale converts pixel distances into projection units.
	DefaultFrustumScale = 0.005

	// DefaultFarScale is the ratio of the far to the near clipping distance.
	DefaultFarScale = 1e6
)

// Intrinsics describes a pinhole camera by focal length and principal point,
// all in pixels.
//
// The camera frame is X toward the top of the image, Y toward the right and
// Z along the optical axis, so a camera-frame point P maps to the pixel
// A·P / P.Z with
//
//	A = | 0  f  u₀ |
//	    |−f  0  v₀ |
//	    | 0  0  1  |
type Intrinsics struct {
	Focal float64 `json:"focal"`
	U0    float64 `json:"u0"`
	V0    float64 `json:"v0"`
}

// NewIntrinsics returns intrinsics with the principal point at the image centre.
func NewIntrinsics(focal float64, width, height int) Intrinsics {
	return Intrinsics{
		Focal: focal,
		U0:    float64(width) / 2,
		V0:    float64(height) / 2,
	}
}

// Matrix returns the 3×3 matrix A.
func (in Intrinsics) Matrix() *mat.Dense {
	f := in.Focal
	return mat.NewDense(3, 3, []float64{
		0, f, in.U0,
		-f, 0, in.V0,
		0, 0, 1,
	})
}

// Project maps a camera-frame point to pixels. ok is false for points at or
// behind the camera.
func (in Intrinsics) Project(p r3.Vector) (r2.Point, bool) {
	if p.Z <= 0 {
		return r2.Point{}, false
	}
	return r2.Point{
		X: in.U0 + in.Focal*p.Y/p.Z,
		Y: in.V0 - in.Focal*p.X/p.Z,
	}, true
}

// ProjectEye maps a point in renderer eye coordinates (X right, Y up,
// looking down −Z) to pixels. ok is false for points at or behind the eye.
func (in Intrinsics) ProjectEye(p r3.Vector) (r2.Point, bool) {
	if p.Z >= 0 {
		return r2.Point{}, false
	}
	return r2.Point{
		X: in.U0 + in.Focal*p.X/(-p.Z),
		Y: in.V0 - in.Focal*p.Y/(-p.Z),
	}, true
}

// Frustum holds symmetric perspective clipping planes in the layout used by
// glFrustum.
type Frustum struct {
	Horiz float64 `json:"horiz"`
	Vert  float64 `json:"vert"`
	Near  float64 `json:"near"`
	Far   float64 `json:"far"`
}

// NewFrustum returns the frustum matching a width×height image taken with
// the given focal length. scale converts pixels to projection units.
//
// The near plane sits at focal·scale and spans ±(width/2)·scale by
// ±(height/2)·scale, so a marker drawn under the estimated model-view lands
// on its image. The far plane is DefaultFarScale times the near plane.
func NewFrustum(focal float64, width, height int, scale float64) Frustum {
	near := focal * scale
	return Frustum{
		Horiz: float64(width) / 2 * scale,
		Vert:  float64(height) / 2 * scale,
		Near:  near,
		Far:   near * DefaultFarScale,
	}
}

// Matrix returns the 16-element column-major projection matrix.
func (fr Frustum) Matrix() [16]float64 {
	l, r := -fr.Horiz, fr.Horiz
	b, t := -fr.Vert, fr.Vert
	n, f := fr.Near, fr.Far

	var m [16]float64
	m[0] = 2 * n / (r - l)
	m[5] = 2 * n / (t - b)
	m[8] = (r + l) / (r - l)
	m[9] = (t + b) / (t - b)
	m[10] = -(f + n) / (f - n)
	m[11] = -1
	m[14] = -2 * f * n / (f - n)
	return m
}
