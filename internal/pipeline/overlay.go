package pipeline

import (
	"fmt"
	"image"
	"image/color"
	"math"

	"github.com/golang/geo/r2"
	"github.com/golang/geo/r3"

	"github.com/ironsheep/circular-marker-ar/internal/imaging"
	"github.com/ironsheep/circular-marker-ar/internal/pose"
)

const (
	ellipseDotRadius = 3
	markerDotRadius  = 5
	outlineSamples   = 48
)

// Projection is a marker pose drawn into pixel space.
type Projection struct {
	Origin r2.Point

	// Axes are the tips of the marker X, Y and Z axes, each as long as the
	// outer radius. Y is the plane normal.
	Axes [3]r2.Point

	// Outline traces the outer circle.
	Outline []image.Point
}

// Project maps the marker frame given by cp into pixels. ok is false when
// any part of the marker lies behind the camera.
func (p *Pipeline) Project(cp pose.CameraPose, radius float64) (Projection, bool) {
	var pr Projection
	var ok bool

	if pr.Origin, ok = p.intrinsics.ProjectEye(cp.T); !ok {
		return Projection{}, false
	}
	for k, axis := range []r3.Vector{{X: radius}, {Y: radius}, {Z: radius}} {
		if pr.Axes[k], ok = p.intrinsics.ProjectEye(cp.Apply(axis)); !ok {
			return Projection{}, false
		}
	}

	pr.Outline = make([]image.Point, 0, outlineSamples)
	for i := 0; i < outlineSamples; i++ {
		t := 2 * math.Pi * float64(i) / outlineSamples
		px, ok := p.intrinsics.ProjectEye(cp.Apply(r3.Vector{X: radius * math.Cos(t), Z: radius * math.Sin(t)}))
		if !ok {
			return Projection{}, false
		}
		pr.Outline = append(pr.Outline, image.Point{X: int(math.Round(px.X)), Y: int(math.Round(px.Y))})
	}
	return pr, true
}

// Overlay draws r onto a copy of img: projected outlines and axes for every
// recovered pose, a green dot on each ellipse centre, and a numbered dot in
// the marker colour on each outer centre.
func (p *Pipeline) Overlay(img image.Image, r *Result) *image.NRGBA {
	canvas := imaging.Canvas(img)
	offset := img.Bounds().Min

	for _, mp := range r.Poses {
		if mp.Pose == nil {
			continue
		}
		pr, ok := p.Project(*mp.Pose, r.Markers[mp.Index].RadiusOuter)
		if !ok {
			continue
		}
		outline := make([]image.Point, len(pr.Outline))
		for i, pt := range pr.Outline {
			outline[i] = pt.Sub(offset)
		}
		imaging.DrawPolyline(canvas, outline, true, imaging.MarkerColor(mp.Index))

		o := pr.Origin.Sub(toR2(offset))
		for k, c := range []color.Color{imaging.AxisXColor, imaging.AxisYColor, imaging.AxisZColor} {
			tip := pr.Axes[k].Sub(toR2(offset))
			imaging.DrawLine(canvas, o.X, o.Y, tip.X, tip.Y, c)
		}
	}

	for _, e := range r.Ellipses {
		c := e.Center.Sub(toR2(offset))
		imaging.DrawDisc(canvas, c.X, c.Y, ellipseDotRadius, imaging.EllipseColor)
	}

	for i, m := range r.Markers {
		c := m.OuterImage.Center.Sub(toR2(offset))
		imaging.DrawDisc(canvas, c.X, c.Y, markerDotRadius, imaging.MarkerColor(i))
		imaging.DrawLabel(canvas, int(math.Round(c.X))+7, int(math.Round(c.Y))-10,
			fmt.Sprintf("#%d", i), imaging.LabelFgColor, imaging.LabelBgColor)
	}
	return canvas
}

func toR2(p image.Point) r2.Point {
	return r2.Point{X: float64(p.X), Y: float64(p.Y)}
}
