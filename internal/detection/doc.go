// Package detection finds circular markers in contour data.
//
// This package implements the geometric front half of the marker pipeline:
// fitting conics to contour points, turning conics into ellipses with a centre
// and axis lengths, filtering and deduplicating ellipses, and pairing nested
// ellipses into marker candidates. It also traces ordered contours from a
// binary edge map and finds near-rectangular quadrilaterals.
//
// # Pipeline
//
//  1. Contours: TraceContours walks each 8-connected component of an edge map
//     into an ordered closed point list. Any contour source with the same
//     contract works, for example OpenCV's findContours.
//  2. Conic fitting: ConicFitter solves for the conic that minimizes the
//     algebraic residual over the data vectors ξ = (x², 2xy, y², 2xF₀, 2yF₀, F₀²)
//     and reports a statistically weighted residual in pixels.
//  3. Ellipse detection: EllipseDetector drops short contours, non-ellipses,
//     poor fits, very eccentric or very small ellipses, then merges ellipses
//     whose centres nearly coincide.
//  4. Pairing: MarkerPairing matches each ellipse with the first later ellipse
//     whose centre lies inside it, and moves both conics into the
//     intrinsics-normalized camera frame for pose estimation.
//
// # Coordinate System
//
// Pixel coordinates follow the image convention:
//   - Origin (0, 0) at top-left corner
//   - X increases rightward
//   - Y increases downward
//
// Ellipse centres are always reported in pixel coordinates, including for the
// normalized ellipses held by a Marker.
//
// # Failure Reporting
//
// Detect methods return a found flag instead of an error. Per-contour reasons
// (ErrInsufficientPoints, ErrNotAnEllipse, ErrShapeRejected) are counted in a
// DetectReport. Nothing in this package is fatal to a frame loop.
//
// # Thread Safety
//
// Detectors hold only immutable configuration and may be shared. Ellipse
// values memoize their centre sign on first use and must not be mutated
// concurrently.
package detection
