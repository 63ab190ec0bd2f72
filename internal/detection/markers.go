package detection

import (
	"gonum.org/v1/gonum/mat"
)

// Placement selects which eigenvector branch the pose estimator uses for
// the plane normal. It encodes which side of the marker the camera is
// expected to be on and cannot be inferred from a single image.
type Placement int

const (
	// PlacementDefault keeps the v₁+v₂ branch unless the candidate normal's
	// x·z product is positive.
	PlacementDefault Placement = 0

	// PlacementFlipped keeps the v₁+v₂ branch unless the x·z product is
	// zero or negative.
	PlacementFlipped Placement = 1
)

// Valid reports whether p is one of the two defined placements.
func (p Placement) Valid() bool {
	return p == PlacementDefault || p == PlacementFlipped
}

// Default physical marker radii, in model units.
const (
	DefaultRadiusOuter = 27.5
	DefaultRadiusInner = 15.0
)

// Marker is a nested ellipse pair that is a candidate for one circular marker.
type Marker struct {
	// Outer and Inner are the ellipses in the intrinsics-normalized frame.
	// Their centres are carried over from image space unchanged.
	Outer Ellipse `json:"outer"`
	Inner Ellipse `json:"inner"`

	// OuterImage and InnerImage are the same ellipses in pixel coordinates.
	OuterImage Ellipse `json:"outer_image"`
	InnerImage Ellipse `json:"inner_image"`

	RadiusOuter float64   `json:"radius_outer"`
	RadiusInner float64   `json:"radius_inner"`
	Placement   Placement `json:"placement"`
}

// PairingConfig holds the physical description attached to each marker.
type PairingConfig struct {
	RadiusOuter float64   `json:"radius_outer"`
	RadiusInner float64   `json:"radius_inner"`
	Placement   Placement `json:"placement"`
}

// DefaultPairingConfig returns the standard marker radii with PlacementDefault.
func DefaultPairingConfig() PairingConfig {
	return PairingConfig{
		RadiusOuter: DefaultRadiusOuter,
		RadiusInner: DefaultRadiusInner,
		Placement:   PlacementDefault,
	}
}

// MarkerPairing groups detected ellipses into outer/inner marker candidates.
type MarkerPairing struct {
	cfg PairingConfig
	a   *mat.Dense
}

// NewMarkerPairing returns a pairing stage. a is the 3×3 intrinsics matrix
// used to move conics into the normalized camera frame; nil means identity.
func NewMarkerPairing(cfg PairingConfig, a mat.Matrix) *MarkerPairing {
	p := &MarkerPairing{cfg: cfg}
	if a == nil {
		p.a = mat.NewDense(3, 3, []float64{1, 0, 0, 0, 1, 0, 0, 0, 1})
	} else {
		p.a = mat.DenseCopyOf(a)
	}
	return p
}

// Detect pairs ellipses into markers.
//
// # Algorithm
//
// Ellipses are visited in index order. An unused ellipse n is the target;
// the first later unused ellipse m whose centre gives the target's implicit
// polynomial the same sign as the target's own centre is its partner. Both
// are transformed by TransformEllipse, emitted as (outer=n, inner=m), and
// marked used. The scan for n stops at the first partner.
//
// Feeding the detector's size-sorted output makes the outer ellipse the
// larger one.
func (p *MarkerPairing) Detect(ellipses []Ellipse) ([]Marker, bool) {
	used := make([]bool, len(ellipses))
	var markers []Marker

	for n := 0; n < len(ellipses)-1; n++ {
		if used[n] {
			continue
		}
		target := ellipses[n]
		for m := n + 1; m < len(ellipses); m++ {
			if used[m] {
				continue
			}
			ref := ellipses[m]
			if !target.CheckInner(ref.Center.X, ref.Center.Y) {
				continue
			}

			markers = append(markers, Marker{
				Outer:       TransformEllipse(target, p.a),
				Inner:       TransformEllipse(ref, p.a),
				OuterImage:  target,
				InnerImage:  ref,
				RadiusOuter: p.cfg.RadiusOuter,
				RadiusInner: p.cfg.RadiusInner,
				Placement:   p.cfg.Placement,
			})
			used[n] = true
			used[m] = true
			break
		}
	}

	return markers, len(markers) > 0
}

// TransformEllipse maps e into the frame defined by a via Q' = AᵗQA.
// The result is renormalized to unit norm. Centre and axis lengths are
// copied from e unchanged.
func TransformEllipse(e Ellipse, a mat.Matrix) Ellipse {
	var tmp, q mat.Dense
	tmp.Mul(a.T(), e.Conic.Matrix())
	q.Mul(&tmp, a)

	out := Ellipse{
		Conic:       ConicFromMatrix(&q),
		Center:      e.Center,
		MajorLength: e.MajorLength,
		MinorLength: e.MinorLength,
		FitError:    e.FitError,
		Points:      e.Points,
	}
	return out
}
