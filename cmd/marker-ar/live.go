package main

import (
	"context"
	"os"
	"os/signal"

	"github.com/spf13/cobra"

	"github.com/ironsheep/circular-marker-ar/internal/capture"
)

func runLive(cmd *cobra.Command, args []string) error {
	p, err := opts.newPipeline(cmd)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	co := capture.DefaultOptions()
	co.SnapshotDir = opts.snapshotDir
	return capture.Run(ctx, p, co)
}
