package detection

import (
	"image"
	"math"
	"sort"
)

// Default thresholds for quadrilateral detection.
const (
	DefaultSquareEpsilonRatio = 0.02
	DefaultSquareMinArea      = 1000.0
	DefaultSquareMaxCosine    = 0.3
)

// Quadrilateral is a convex four-sided polygon found in a contour.
type Quadrilateral struct {
	// Vertices are in contour order.
	Vertices [4]image.Point `json:"vertices"`

	// Area is the absolute polygon area in square pixels.
	Area float64 `json:"area"`

	// MaxCosine is the largest |cos| over the four corner angles.
	// 0 means every corner is a right angle.
	MaxCosine float64 `json:"max_cosine"`
}

// SquareConfig holds the thresholds of DetectSquares.
type SquareConfig struct {
	// EpsilonRatio scales the contour perimeter into the polygon
	// approximation tolerance.
	EpsilonRatio float64 `json:"epsilon_ratio"`

	// MinArea is the area a quadrilateral must exceed.
	MinArea float64 `json:"min_area"`

	// MaxCosine is the bound every corner's |cos| must stay below.
	MaxCosine float64 `json:"max_cosine"`
}

// DefaultSquareConfig returns the standard quadrilateral thresholds.
func DefaultSquareConfig() SquareConfig {
	return SquareConfig{
		EpsilonRatio: DefaultSquareEpsilonRatio,
		MinArea:      DefaultSquareMinArea,
		MaxCosine:    DefaultSquareMaxCosine,
	}
}

// DetectSquares finds near-rectangular quadrilaterals among contours.
//
// Parameters:
//   - contours: Closed contours, for example from TraceContours.
//   - cfg: Approximation and acceptance thresholds.
//
// Returns the quadrilaterals sorted by area, largest first.
//
// # Algorithm
//
//  1. Approximate each contour with a closed Douglas-Peucker polygon using
//     ε = EpsilonRatio × perimeter.
//  2. Keep polygons with exactly 4 vertices that are convex and whose
//     absolute area exceeds MinArea.
//  3. Keep those whose largest corner |cos| is below MaxCosine, i.e. all
//     corners are close to 90°.
func DetectSquares(contours []Contour, cfg SquareConfig) []Quadrilateral {
	var quads []Quadrilateral
	for _, c := range contours {
		if len(c) < 4 {
			continue
		}
		poly := approxPolygon(c, cfg.EpsilonRatio*perimeter(c))
		if len(poly) != 4 {
			continue
		}
		area := math.Abs(polygonArea(poly))
		if area <= cfg.MinArea || !isConvex(poly) {
			continue
		}

		maxCos := 0.0
		for i := 0; i < 4; i++ {
			cos := math.Abs(cornerCosine(poly[(i+3)%4], poly[i], poly[(i+1)%4]))
			maxCos = math.Max(maxCos, cos)
		}
		if maxCos >= cfg.MaxCosine {
			continue
		}

		q := Quadrilateral{Area: area, MaxCosine: maxCos}
		copy(q.Vertices[:], poly)
		quads = append(quads, q)
	}

	sort.SliceStable(quads, func(i, j int) bool {
		return quads[i].Area > quads[j].Area
	})
	return quads
}

// perimeter returns the closed arc length of c.
func perimeter(c Contour) float64 {
	var sum float64
	for i := range c {
		a := c[i]
		b := c[(i+1)%len(c)]
		sum += math.Hypot(float64(b.X-a.X), float64(b.Y-a.Y))
	}
	return sum
}

// approxPolygon simplifies a closed contour. The contour is split at the
// point farthest from its first point and each half is simplified with
// Douglas-Peucker.
func approxPolygon(c Contour, epsilon float64) []image.Point {
	far := 0
	best := -1.0
	for i, p := range c {
		dx := float64(p.X - c[0].X)
		dy := float64(p.Y - c[0].Y)
		if d := dx*dx + dy*dy; d > best {
			best = d
			far = i
		}
	}
	if far == 0 {
		return []image.Point{c[0]}
	}

	first := simplifyPath(c[:far+1], epsilon)

	second := make([]image.Point, 0, len(c)-far+1)
	second = append(second, c[far:]...)
	second = append(second, c[0])
	rest := simplifyPath(second, epsilon)

	// Both halves share the split point and the closing point.
	poly := append([]image.Point{}, first[:len(first)-1]...)
	poly = append(poly, rest[:len(rest)-1]...)
	return poly
}

// simplifyPath is the recursive Douglas-Peucker reduction of an open path.
func simplifyPath(path []image.Point, epsilon float64) []image.Point {
	if len(path) <= 2 {
		return path
	}

	dmax := 0.0
	index := 0
	end := len(path) - 1
	for i := 1; i < end; i++ {
		d := perpendicularDistance(path[i], path[0], path[end])
		if d > dmax {
			dmax = d
			index = i
		}
	}

	if dmax > epsilon {
		left := simplifyPath(path[:index+1], epsilon)
		right := simplifyPath(path[index:], epsilon)

		result := make([]image.Point, 0, len(left)+len(right)-1)
		result = append(result, left[:len(left)-1]...)
		result = append(result, right...)
		return result
	}

	return []image.Point{path[0], path[end]}
}

// perpendicularDistance returns the distance from p to the line through a and b.
func perpendicularDistance(p, a, b image.Point) float64 {
	dx := float64(b.X - a.X)
	dy := float64(b.Y - a.Y)
	if dx == 0 && dy == 0 {
		return math.Hypot(float64(p.X-a.X), float64(p.Y-a.Y))
	}
	num := math.Abs(dy*float64(p.X) - dx*float64(p.Y) + float64(b.X*a.Y) - float64(b.Y*a.X))
	return num / math.Hypot(dx, dy)
}

// polygonArea returns the signed shoelace area.
func polygonArea(poly []image.Point) float64 {
	var sum float64
	for i := range poly {
		a := poly[i]
		b := poly[(i+1)%len(poly)]
		sum += float64(a.X*b.Y - b.X*a.Y)
	}
	return sum / 2
}

// isConvex reports whether every turn of the polygon has the same sign.
func isConvex(poly []image.Point) bool {
	sign := 0
	for i := range poly {
		a := poly[i]
		b := poly[(i+1)%len(poly)]
		c := poly[(i+2)%len(poly)]
		cross := (b.X-a.X)*(c.Y-b.Y) - (b.Y-a.Y)*(c.X-b.X)
		switch {
		case cross > 0:
			if sign < 0 {
				return false
			}
			sign = 1
		case cross < 0:
			if sign > 0 {
				return false
			}
			sign = -1
		}
	}
	return sign != 0
}

// cornerCosine returns the cosine of the angle at vertex between prev and next.
func cornerCosine(prev, vertex, next image.Point) float64 {
	dx1 := float64(prev.X - vertex.X)
	dy1 := float64(prev.Y - vertex.Y)
	dx2 := float64(next.X - vertex.X)
	dy2 := float64(next.Y - vertex.Y)
	return (dx1*dx2 + dy1*dy2) / math.Sqrt((dx1*dx1+dy1*dy1)*(dx2*dx2+dy2*dy2)+1e-10)
}
