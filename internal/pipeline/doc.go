// Package pipeline drives a frame through marker detection.
//
// The stages run in order: an edge map (Canny or dark-boundary threshold),
// ordered contours, fitted ellipses, outer/inner marker pairs, and one
// camera pose per pair. Each stage may come up empty; the frame then simply
// carries fewer results and Result.Err reports why no marker was found. A
// pose failure is recorded on that marker alone.
//
// Overlay renders a Result for inspection, and Project maps a pose back into
// pixels for drawing on live frames.
package pipeline
