package pipeline

import (
	"fmt"
	"image"

	"github.com/ironsheep/circular-marker-ar/internal/config"
	"github.com/ironsheep/circular-marker-ar/internal/detection"
	"github.com/ironsheep/circular-marker-ar/internal/imaging"
	"github.com/ironsheep/circular-marker-ar/internal/pose"
)

// Pipeline runs one frame at a time through edge extraction, ellipse
// detection, marker pairing and pose estimation.
//
// A Pipeline holds only read-only state after New and may be shared by
// goroutines processing different frames.
type Pipeline struct {
	cfg        config.Config
	intrinsics pose.Intrinsics
	detector   *detection.EllipseDetector
	pairing    *detection.MarkerPairing

	// Logf receives per-frame stage counts. Nil disables logging.
	Logf func(format string, args ...any)
}

// MarkerPose is the pose of one detected marker, or the reason it has none.
type MarkerPose struct {
	Index     int              `json:"index"`
	Pose      *pose.CameraPose `json:"pose,omitempty"`
	ModelView *[16]float64     `json:"model_view,omitempty"`
	Err       error            `json:"-"`
	Error     string           `json:"error,omitempty"`
}

// Result is everything one frame produced.
type Result struct {
	Contours []detection.Contour    `json:"-"`
	Ellipses []detection.Ellipse    `json:"ellipses"`
	Report   detection.DetectReport `json:"report"`
	Markers  []detection.Marker     `json:"-"`
	Poses    []MarkerPose           `json:"poses"`
}

// Err returns detection.ErrNoPairFound when the frame holds no marker.
func (r *Result) Err() error {
	if len(r.Markers) == 0 {
		return fmt.Errorf("%w: %d ellipses from %d contours", detection.ErrNoPairFound, len(r.Ellipses), len(r.Contours))
	}
	return nil
}

// New builds a pipeline for cfg. cfg is copied.
func New(cfg config.Config) *Pipeline {
	in := cfg.Intrinsics()
	return &Pipeline{
		cfg:        cfg,
		intrinsics: in,
		detector:   detection.NewEllipseDetector(cfg.DetectorConfig()),
		pairing:    detection.NewMarkerPairing(cfg.PairingConfig(), in.Matrix()),
	}
}

// Config returns the configuration the pipeline was built with.
func (p *Pipeline) Config() config.Config {
	return p.cfg
}

// Intrinsics returns the camera intrinsics in use.
func (p *Pipeline) Intrinsics() pose.Intrinsics {
	return p.intrinsics
}

// ForImage returns a pipeline whose camera matches the size of img. When the
// configuration fixes the principal point, or img already has the configured
// size, p itself is returned.
func (p *Pipeline) ForImage(img image.Image) *Pipeline {
	cam := p.cfg.Camera
	size := img.Bounds().Size()
	if cam.U0 != 0 || cam.V0 != 0 || (size.X == cam.Width && size.Y == cam.Height) {
		return p
	}
	cfg := p.cfg
	cfg.Camera.Width = size.X
	cfg.Camera.Height = size.Y
	q := New(cfg)
	q.Logf = p.Logf
	return q
}

// EdgeMap extracts the edge grid of img using the configured edge mode.
func (p *Pipeline) EdgeMap(img image.Image) [][]bool {
	e := p.cfg.Edge
	if e.Mode == config.EdgeModeThreshold {
		return imaging.BoundaryMap(img, uint8(e.Level))
	}
	return imaging.EdgeMap(img, imaging.EdgeOptions{
		BlurSigma:     e.BlurSigma,
		ThresholdLow:  e.ThresholdLow,
		ThresholdHigh: e.ThresholdHigh,
	})
}

// Contours extracts ordered contours from img.
func (p *Pipeline) Contours(img image.Image) []detection.Contour {
	contours := detection.TraceContours(p.EdgeMap(img))
	if origin := img.Bounds().Min; origin != (image.Point{}) {
		for _, c := range contours {
			for i := range c {
				c[i] = c[i].Add(origin)
			}
		}
	}
	return contours
}

// ProcessImage runs the full pipeline on one frame.
func (p *Pipeline) ProcessImage(img image.Image) *Result {
	return p.ProcessContours(p.Contours(img))
}

// ProcessContours runs detection, pairing and pose estimation on contours
// that were extracted elsewhere.
//
// A marker whose pose cannot be recovered gets a MarkerPose carrying the
// error; the other markers are unaffected.
func (p *Pipeline) ProcessContours(contours []detection.Contour) *Result {
	ellipses, report := p.detector.DetectWithReport(contours)
	r := &Result{
		Contours: contours,
		Ellipses: ellipses,
		Report:   report,
	}

	if len(ellipses) >= 2 {
		r.Markers, _ = p.pairing.Detect(ellipses)
	}

	for i, m := range r.Markers {
		mp := MarkerPose{Index: i}
		cp, err := pose.ComputeCameraParam(m)
		if err != nil {
			mp.Err = err
			mp.Error = err.Error()
		} else {
			mv := cp.ModelView()
			mp.Pose = &cp
			mp.ModelView = &mv
		}
		r.Poses = append(r.Poses, mp)
	}

	p.logf("frame: %d contours, %d too short, %d not ellipses, %d rejected, %d merged, %d ellipses, %d markers",
		report.Contours, report.TooShort, report.NotAnEllipse, report.ShapeRejected, report.Merged,
		len(ellipses), len(r.Markers))
	for _, mp := range r.Poses {
		if mp.Err != nil {
			p.logf("marker %d: %v", mp.Index, mp.Err)
		}
	}
	return r
}

func (p *Pipeline) logf(format string, args ...any) {
	if p.Logf != nil {
		p.Logf(format, args...)
	}
}
