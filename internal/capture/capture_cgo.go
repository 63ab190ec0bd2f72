//go:build cgo && linux

package capture

import (
	"context"
	"fmt"
	"image"
	"image/color"
	"log"

	"gocv.io/x/gocv"

	"github.com/ironsheep/circular-marker-ar/internal/config"
	"github.com/ironsheep/circular-marker-ar/internal/detection"
	"github.com/ironsheep/circular-marker-ar/internal/pipeline"
)

// Run opens the configured camera and processes frames until the user
// quits, ctx is cancelled or the device stops delivering frames.
func Run(ctx context.Context, p *pipeline.Pipeline, opts Options) error {
	cfg := p.Config()

	webcam, err := gocv.VideoCaptureDevice(cfg.Camera.Device)
	if err != nil {
		return fmt.Errorf("%w: open device %d: %v", ErrCaptureFailed, cfg.Camera.Device, err)
	}
	defer webcam.Close()
	webcam.Set(gocv.VideoCaptureFrameWidth, float64(cfg.Camera.Width))
	webcam.Set(gocv.VideoCaptureFrameHeight, float64(cfg.Camera.Height))

	window := gocv.NewWindow(opts.Title)
	defer window.Close()

	frame := gocv.NewMat()
	defer frame.Close()
	fx := newFrameContours()
	defer fx.Close()

	snapshots := 0
	for {
		select {
		case <-ctx.Done():
			return nil
		default:
		}

		if ok := webcam.Read(&frame); !ok {
			return fmt.Errorf("%w: device %d stopped delivering frames", ErrCaptureFailed, cfg.Camera.Device)
		}
		if frame.Empty() {
			continue
		}

		r := p.ProcessContours(fx.Extract(frame, cfg.Edge))
		drawResult(matCanvas{&frame}, p, r)
		window.IMShow(frame)

		switch keyAction(window.WaitKey(1)) {
		case actionQuit:
			return nil
		case actionSnapshot:
			name := SnapshotName(opts.SnapshotDir, snapshots)
			if gocv.IMWrite(name, frame) {
				log.Printf("Saved %s", name)
				snapshots++
			} else {
				log.Printf("Failed to write %s", name)
			}
		}
	}
}

// frameContours holds the scratch Mats reused across frames.
type frameContours struct {
	gray, blurred, edges gocv.Mat
}

func newFrameContours() *frameContours {
	return &frameContours{
		gray:    gocv.NewMat(),
		blurred: gocv.NewMat(),
		edges:   gocv.NewMat(),
	}
}

// Extract runs blur, Canny and FindContours on a BGR frame.
func (f *frameContours) Extract(frame gocv.Mat, edge config.EdgeConfig) []detection.Contour {
	gocv.CvtColor(frame, &f.gray, gocv.ColorBGRToGray)
	gocv.GaussianBlur(f.gray, &f.blurred, kernelSize(edge.BlurKernel), edge.BlurSigma, edge.BlurSigma, gocv.BorderDefault)
	gocv.Canny(f.blurred, &f.edges, float32(edge.ThresholdLow), float32(edge.ThresholdHigh))

	found := gocv.FindContours(f.edges, gocv.RetrievalList, gocv.ChainApproxNone)
	defer found.Close()

	raw := make([][]image.Point, found.Size())
	for i := range raw {
		raw[i] = found.At(i).ToPoints()
	}
	return toContours(raw)
}

func (f *frameContours) Close() {
	f.gray.Close()
	f.blurred.Close()
	f.edges.Close()
}

// matCanvas draws on a gocv frame.
type matCanvas struct {
	img *gocv.Mat
}

func (m matCanvas) Line(from, to image.Point, c color.RGBA) {
	gocv.Line(m.img, from, to, c, 2)
}

func (m matCanvas) Dot(center image.Point, radius int, c color.RGBA) {
	gocv.Circle(m.img, center, radius, c, -1)
}

func (m matCanvas) Text(org image.Point, text string, c color.RGBA) {
	gocv.PutText(m.img, text, org, gocv.FontHersheyPlain, 1.0, c, 1)
}
