package detection

import (
	"image"
	"math"

	"github.com/golang/geo/r2"
)

// ellipseConic returns the conic of an ellipse with centre (cx, cy), semi-axes
// a and b, rotated by theta radians.
func ellipseConic(cx, cy, a, b, theta float64) Conic {
	cos, sin := math.Cos(theta), math.Sin(theta)
	A := cos*cos/(a*a) + sin*sin/(b*b)
	B := cos * sin * (1/(a*a) - 1/(b*b))
	C := sin*sin/(a*a) + cos*cos/(b*b)
	D := -(A*cx + B*cy)
	E := -(B*cx + C*cy)
	F := A*cx*cx + 2*B*cx*cy + C*cy*cy - 1
	return Conic{A, B, C, D, E, F}.Normalized()
}

// circleConic returns the conic of a circle.
func circleConic(cx, cy, r float64) Conic {
	return ellipseConic(cx, cy, r, r, 0)
}

// ellipseSamples returns n exact points on an ellipse.
func ellipseSamples(cx, cy, a, b, theta float64, n int) []r2.Point {
	cos, sin := math.Cos(theta), math.Sin(theta)
	pts := make([]r2.Point, n)
	for i := range pts {
		t := 2 * math.Pi * float64(i) / float64(n)
		x := a * math.Cos(t)
		y := b * math.Sin(t)
		pts[i] = r2.Point{X: cx + x*cos - y*sin, Y: cy + x*sin + y*cos}
	}
	return pts
}

// ellipseContour returns n ellipse samples rounded to pixels.
func ellipseContour(cx, cy, a, b, theta float64, n int) Contour {
	samples := ellipseSamples(cx, cy, a, b, theta, n)
	c := make(Contour, n)
	for i, p := range samples {
		c[i] = image.Point{X: int(math.Round(p.X)), Y: int(math.Round(p.Y))}
	}
	return c
}

// circleContour returns n circle samples rounded to pixels.
func circleContour(cx, cy, r float64, n int) Contour {
	return ellipseContour(cx, cy, r, r, 0, n)
}

// polygonContour walks the closed polygon through vertices one pixel at a time.
func polygonContour(vertices ...image.Point) Contour {
	var c Contour
	for i, a := range vertices {
		b := vertices[(i+1)%len(vertices)]
		dx, dy := b.X-a.X, b.Y-a.Y
		steps := max(abs(dx), abs(dy))
		for s := 0; s < steps; s++ {
			t := float64(s) / float64(steps)
			c = append(c, image.Point{
				X: a.X + int(math.Round(t*float64(dx))),
				Y: a.Y + int(math.Round(t*float64(dy))),
			})
		}
	}
	return c
}

// edgeGrid returns an empty width×height edge map.
func edgeGrid(width, height int) [][]bool {
	g := make([][]bool, height)
	for y := range g {
		g[y] = make([]bool, width)
	}
	return g
}

// drawRectOutline marks a 1-pixel rectangle outline with inclusive corners.
func drawRectOutline(g [][]bool, x1, y1, x2, y2 int) {
	for x := x1; x <= x2; x++ {
		g[y1][x] = true
		g[y2][x] = true
	}
	for y := y1; y <= y2; y++ {
		g[y][x1] = true
		g[y][x2] = true
	}
}

// builtEllipse returns an ellipse with attributes computed.
func builtEllipse(u Conic) Ellipse {
	e := NewEllipse(u, nil)
	e.ComputeAttributes()
	return *e
}

func abs(v int) int {
	if v < 0 {
		return -v
	}
	return v
}
