package detection

import "errors"

var (
	// ErrInsufficientPoints is returned when a point list is too short to fit a conic.
	ErrInsufficientPoints = errors.New("too few points for conic fit")

	// ErrNotAnEllipse is returned when a fitted conic fails the ellipse discriminant
	// test or its residual error exceeds the configured threshold.
	ErrNotAnEllipse = errors.New("fitted conic is not an acceptable ellipse")

	// ErrShapeRejected is returned when an ellipse fails the eccentricity or size heuristics.
	ErrShapeRejected = errors.New("ellipse rejected by shape heuristics")

	// ErrNoPairFound is returned when no nested ellipse pair forms a marker.
	ErrNoPairFound = errors.New("no concentric ellipse pair found")

	// ErrEigenFailed is returned when the symmetric eigendecomposition does not converge.
	ErrEigenFailed = errors.New("symmetric eigendecomposition failed")
)
