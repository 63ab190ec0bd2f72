package capture

import (
	"errors"
	"fmt"
	"image"
	"image/color"
	"math"
	"path/filepath"

	"github.com/ironsheep/circular-marker-ar/internal/detection"
	"github.com/ironsheep/circular-marker-ar/internal/imaging"
	"github.com/ironsheep/circular-marker-ar/internal/pipeline"
)

var (
	// ErrUnavailable is returned by Run in builds without gocv.
	ErrUnavailable = errors.New("live capture requires a linux build with cgo")

	// ErrCaptureFailed is returned when the device cannot be opened or stops
	// delivering frames.
	ErrCaptureFailed = errors.New("capture failed")
)

// Options controls the live loop.
type Options struct {
	// Title is the window title.
	Title string

	// SnapshotDir receives the output-NNN.png files.
	SnapshotDir string
}

// DefaultOptions returns the options used by marker-ar.
func DefaultOptions() Options {
	return Options{
		Title:       "circular-marker-ar",
		SnapshotDir: ".",
	}
}

// SnapshotName returns the path of the n-th snapshot.
func SnapshotName(dir string, n int) string {
	return filepath.Join(dir, fmt.Sprintf("output-%03d.png", n))
}

type action int

const (
	actionNone action = iota
	actionQuit
	actionSnapshot
)

// keyAction maps a WaitKey result to a loop action. -1 means no key.
func keyAction(key int) action {
	if key < 0 {
		return actionNone
	}
	switch key & 0xff {
	case 'q', 'Q', 27:
		return actionQuit
	case 's', 'S':
		return actionSnapshot
	}
	return actionNone
}

// kernelSize returns the square Gaussian kernel for an odd size k.
func kernelSize(k int) image.Point {
	return image.Point{X: k, Y: k}
}

// toContours copies raw point lists into detection contours, dropping
// empty ones.
func toContours(raw [][]image.Point) []detection.Contour {
	contours := make([]detection.Contour, 0, len(raw))
	for _, pts := range raw {
		if len(pts) == 0 {
			continue
		}
		contours = append(contours, detection.Contour(pts))
	}
	return contours
}

// canvas is the drawing surface of a frame.
type canvas interface {
	Line(from, to image.Point, c color.RGBA)
	Dot(center image.Point, radius int, c color.RGBA)
	Text(org image.Point, text string, c color.RGBA)
}

const (
	ellipseDotRadius = 3
	markerDotRadius  = 5
)

// drawResult annotates a frame with r. Markers whose pose failed or whose
// projection leaves the front of the camera get no outline or axes.
func drawResult(c canvas, p *pipeline.Pipeline, r *pipeline.Result) {
	for _, mp := range r.Poses {
		if mp.Pose == nil {
			continue
		}
		pr, ok := p.Project(*mp.Pose, r.Markers[mp.Index].RadiusOuter)
		if !ok {
			continue
		}
		mc := toRGBA(imaging.MarkerColor(mp.Index))
		for i := range pr.Outline {
			c.Line(pr.Outline[i], pr.Outline[(i+1)%len(pr.Outline)], mc)
		}
		origin := roundPoint(pr.Origin.X, pr.Origin.Y)
		for k, ac := range []color.Color{imaging.AxisXColor, imaging.AxisYColor, imaging.AxisZColor} {
			c.Line(origin, roundPoint(pr.Axes[k].X, pr.Axes[k].Y), toRGBA(ac))
		}
	}

	for _, e := range r.Ellipses {
		c.Dot(roundPoint(e.Center.X, e.Center.Y), ellipseDotRadius, toRGBA(imaging.EllipseColor))
	}

	for i, m := range r.Markers {
		center := roundPoint(m.OuterImage.Center.X, m.OuterImage.Center.Y)
		c.Dot(center, markerDotRadius, toRGBA(imaging.MarkerColor(i)))
		c.Text(center.Add(image.Point{X: 7, Y: -10}), fmt.Sprintf("#%d", i), toRGBA(imaging.LabelFgColor))
	}
}

func roundPoint(x, y float64) image.Point {
	return image.Point{X: int(math.Round(x)), Y: int(math.Round(y))}
}

func toRGBA(c color.Color) color.RGBA {
	return color.RGBAModel.Convert(c).(color.RGBA)
}
