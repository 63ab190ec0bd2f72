//go:build !(cgo && linux)

package capture

import (
	"context"

	"github.com/ironsheep/circular-marker-ar/internal/pipeline"
)

// Run returns ErrUnavailable: this build has no gocv.
func Run(ctx context.Context, p *pipeline.Pipeline, opts Options) error {
	return ErrUnavailable
}
