package detection

import (
	"errors"
	"image"
	"sort"
)

// Default thresholds for ellipse detection.
const (
	DefaultMinLength      = 50
	DefaultErrorThreshold = 1.4
	DefaultAxisRatio      = 0.3
	DefaultAxisLength     = 20.0
	DefaultMergeDistance2 = 4.0
)

// DetectorConfig holds the filtering thresholds of an EllipseDetector.
type DetectorConfig struct {
	// MinLength is the minimum number of contour points. Shorter contours are skipped.
	MinLength int `json:"min_length"`

	// ErrorThreshold is the largest accepted fit residual in pixels (exclusive).
	ErrorThreshold float64 `json:"error_threshold"`

	// AxisRatio is the smallest accepted MinorLength / MajorLength (inclusive).
	AxisRatio float64 `json:"axis_ratio"`

	// AxisLength is the MajorLength an ellipse must exceed.
	AxisLength float64 `json:"axis_length"`

	// MergeDistance2 is the squared centre distance below which a smaller
	// ellipse is merged into a larger one.
	MergeDistance2 float64 `json:"merge_distance2"`

	// Scale is the F₀ fitting constant.
	Scale float64 `json:"scale"`
}

// DefaultDetectorConfig returns the standard thresholds.
func DefaultDetectorConfig() DetectorConfig {
	return DetectorConfig{
		MinLength:      DefaultMinLength,
		ErrorThreshold: DefaultErrorThreshold,
		AxisRatio:      DefaultAxisRatio,
		AxisLength:     DefaultAxisLength,
		MergeDistance2: DefaultMergeDistance2,
		Scale:          DefaultScale,
	}
}

// DetectReport counts what happened to each contour during detection.
type DetectReport struct {
	Contours      int `json:"contours"`
	TooShort      int `json:"too_short"`
	NotAnEllipse  int `json:"not_an_ellipse"`
	ShapeRejected int `json:"shape_rejected"`
	Merged        int `json:"merged"`
	Accepted      int `json:"accepted"`
}

// EllipseDetector turns contours into a filtered, deduplicated ellipse list.
type EllipseDetector struct {
	cfg    DetectorConfig
	fitter *ConicFitter
}

// NewEllipseDetector returns a detector using cfg.
func NewEllipseDetector(cfg DetectorConfig) *EllipseDetector {
	return &EllipseDetector{
		cfg:    cfg,
		fitter: &ConicFitter{Scale: cfg.Scale, ComputeError: true},
	}
}

// Config returns the detector thresholds.
func (d *EllipseDetector) Config() DetectorConfig {
	return d.cfg
}

// Detect returns the ellipses found in contours, largest first.
// found is false when fewer than two ellipses survive, since a marker
// needs a nested pair.
func (d *EllipseDetector) Detect(contours []Contour) ([]Ellipse, bool) {
	ellipses, _ := d.DetectWithReport(contours)
	return ellipses, len(ellipses) >= 2
}

// DetectWithReport is Detect with per-stage rejection counts.
//
// # Algorithm
//
//  1. Skip contours with fewer than MinLength points.
//  2. Fit a conic; drop it unless AC − B² > 0 and the residual is below ErrorThreshold.
//  3. Compute attributes; drop it if MinorLength/MajorLength < AxisRatio or
//     MajorLength ≤ AxisLength.
//  4. Sort by MajorLength descending (stable, so equal sizes keep contour order).
//  5. Walking that order, each kept ellipse suppresses every later one whose
//     centre lies within MergeDistance2 (squared pixels, strict).
func (d *EllipseDetector) DetectWithReport(contours []Contour) ([]Ellipse, DetectReport) {
	report := DetectReport{Contours: len(contours)}

	var candidates []Ellipse
	for _, contour := range contours {
		e, err := d.evaluate(contour)
		switch {
		case err == nil:
			candidates = append(candidates, *e)
		case errors.Is(err, ErrInsufficientPoints):
			report.TooShort++
		case errors.Is(err, ErrNotAnEllipse), errors.Is(err, ErrEigenFailed):
			report.NotAnEllipse++
		case errors.Is(err, ErrShapeRejected):
			report.ShapeRejected++
		}
	}

	sort.SliceStable(candidates, func(i, j int) bool {
		return candidates[i].MajorLength > candidates[j].MajorLength
	})

	result, merged := mergeNearby(candidates, d.cfg.MergeDistance2)
	report.Merged = merged
	report.Accepted = len(result)

	return result, report
}

// mergeNearby keeps each ellipse that is not within dist2 (squared, strict)
// of an earlier kept ellipse. It returns the survivors and the merge count.
func mergeNearby(sorted []Ellipse, dist2 float64) ([]Ellipse, int) {
	suppressed := make([]bool, len(sorted))
	merged := 0
	for n := range sorted {
		if suppressed[n] {
			continue
		}
		for m := n + 1; m < len(sorted); m++ {
			if suppressed[m] {
				continue
			}
			dx := sorted[n].Center.X - sorted[m].Center.X
			dy := sorted[n].Center.Y - sorted[m].Center.Y
			if dx*dx+dy*dy < dist2 {
				suppressed[m] = true
				merged++
			}
		}
	}

	result := make([]Ellipse, 0, len(sorted)-merged)
	for n := range sorted {
		if !suppressed[n] {
			result = append(result, sorted[n])
		}
	}
	return result, merged
}

// evaluate runs the per-contour filters and returns the accepted ellipse.
func (d *EllipseDetector) evaluate(contour Contour) (*Ellipse, error) {
	if len(contour) < d.cfg.MinLength || len(contour) < 6 {
		return nil, ErrInsufficientPoints
	}

	fit, err := d.fitter.Fit([]image.Point(contour))
	if err != nil {
		return nil, err
	}
	if !fit.IsEllipse || !(fit.Error < d.cfg.ErrorThreshold) {
		return nil, ErrNotAnEllipse
	}

	e := NewEllipse(fit.Conic, contour)
	e.FitError = fit.Error
	e.ComputeAttributes()

	if !(e.AxisRatio() >= d.cfg.AxisRatio) || !(e.MajorLength > d.cfg.AxisLength) {
		return nil, ErrShapeRejected
	}
	return e, nil
}
