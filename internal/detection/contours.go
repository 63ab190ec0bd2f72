package detection

import (
	"image"
)

// Contour is an ordered closed sequence of pixel coordinates. The last point
// connects back to the first.
type Contour []image.Point

// Length returns the number of points.
func (c Contour) Length() int {
	return len(c)
}

// Bounds returns the bounding rectangle of the contour, inclusive of the
// maximum coordinates.
func (c Contour) Bounds() image.Rectangle {
	if len(c) == 0 {
		return image.Rectangle{}
	}
	r := image.Rectangle{Min: c[0], Max: c[0]}
	for _, p := range c[1:] {
		if p.X < r.Min.X {
			r.Min.X = p.X
		}
		if p.Y < r.Min.Y {
			r.Min.Y = p.Y
		}
		if p.X > r.Max.X {
			r.Max.X = p.X
		}
		if p.Y > r.Max.Y {
			r.Max.Y = p.Y
		}
	}
	return r
}

// mooreDirs lists the 8 neighbours clockwise (y grows downward), starting north.
var mooreDirs = [8]image.Point{
	{X: 0, Y: -1},
	{X: 1, Y: -1},
	{X: 1, Y: 0},
	{X: 1, Y: 1},
	{X: 0, Y: 1},
	{X: -1, Y: 1},
	{X: -1, Y: 0},
	{X: -1, Y: -1},
}

// TraceContours extracts one ordered border per 8-connected component of an
// edge map. edges is indexed [y][x]; returned points use the same grid
// coordinates. Rows may differ in length; a missing cell counts as background.
//
// # Algorithm
//
//  1. Label 8-connected components with an iterative flood fill.
//  2. For each component, start at its first pixel in raster order with the
//     backtrack pixel to its west, and walk the border clockwise using
//     Moore-neighbour tracing.
//  3. Stop when the walk is back at the start and about to repeat its first
//     move, or after a step cap proportional to the component size.
//
// Components are returned in raster order of their start pixels. A single
// isolated pixel yields a one-point contour.
func TraceContours(edges [][]bool) []Contour {
	height := len(edges)
	if height == 0 {
		return nil
	}
	labels := make([][]int, height)
	for y := range labels {
		labels[y] = make([]int, len(edges[y]))
	}

	var contours []Contour
	label := 0
	for y := 0; y < height; y++ {
		for x := 0; x < len(edges[y]); x++ {
			if !edges[y][x] || labels[y][x] != 0 {
				continue
			}
			label++
			size := labelComponent(edges, labels, x, y, label)
			contours = append(contours, traceBorder(labels, image.Point{X: x, Y: y}, label, size))
		}
	}
	return contours
}

// labelComponent flood-fills the component containing (startX, startY) and
// returns its pixel count.
func labelComponent(edges [][]bool, labels [][]int, startX, startY, label int) int {
	height := len(edges)
	stack := []image.Point{{X: startX, Y: startY}}
	count := 0

	for len(stack) > 0 {
		p := stack[len(stack)-1]
		stack = stack[:len(stack)-1]

		if p.Y < 0 || p.Y >= height || p.X < 0 || p.X >= len(edges[p.Y]) {
			continue
		}
		if labels[p.Y][p.X] != 0 || !edges[p.Y][p.X] {
			continue
		}

		labels[p.Y][p.X] = label
		count++

		for _, d := range mooreDirs {
			stack = append(stack, p.Add(d))
		}
	}
	return count
}

// traceBorder walks the border of one labelled component starting at start,
// which must be the component's first pixel in raster order.
func traceBorder(labels [][]int, start image.Point, label, size int) Contour {
	inside := func(p image.Point) bool {
		return p.Y >= 0 && p.Y < len(labels) && p.X >= 0 && p.X < len(labels[p.Y]) &&
			labels[p.Y][p.X] == label
	}

	contour := Contour{start}
	current := start
	backtrack := start.Add(image.Point{X: -1, Y: 0})

	var firstMove image.Point
	moved := false
	maxSteps := 4*size + 8

	for step := 0; step < maxSteps; step++ {
		next, nextBacktrack, ok := mooreStep(inside, current, backtrack)
		if !ok {
			break
		}
		if moved && current == start && next == firstMove {
			break
		}
		if !moved {
			firstMove = next
			moved = true
		}
		current, backtrack = next, nextBacktrack
		if current != start {
			contour = append(contour, current)
		}
	}
	return contour
}

// mooreStep finds the next border pixel clockwise from backtrack around
// current. The returned backtrack is the last background neighbour examined.
func mooreStep(inside func(image.Point) bool, current, backtrack image.Point) (image.Point, image.Point, bool) {
	offset := backtrack.Sub(current)
	start := 0
	for i, d := range mooreDirs {
		if d == offset {
			start = i
			break
		}
	}

	prev := backtrack
	for k := 1; k <= 8; k++ {
		candidate := current.Add(mooreDirs[(start+k)%8])
		if inside(candidate) {
			return candidate, prev, true
		}
		prev = candidate
	}
	return image.Point{}, image.Point{}, false
}
