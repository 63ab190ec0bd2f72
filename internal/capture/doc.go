// Package capture runs the live marker loop on a camera.
//
// Frames come from an OpenCV capture device through gocv. Each frame is
// blurred, edge-detected with Canny and split into contours by
// FindContours, then handed to the pipeline. Recovered poses are drawn back
// onto the frame and shown in a window.
//
// Keys:
//   - q or Esc: quit
//   - s: save the annotated frame as output-NNN.png
//
// The gocv loop is only built on Linux with cgo. Other builds get a Run that
// returns ErrUnavailable.
package capture
