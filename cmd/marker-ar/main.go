package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

// Version information - set by ldflags during build
var Version = "dev"

var rootCmd = &cobra.Command{
	Use:   "marker-ar",
	Short: "Live circular marker tracking on a camera",
	Long: `marker-ar detects circular markers (a dark disc holding an offset light disc)
in camera frames, estimates the camera pose for each marker and draws the
marker's projected outline and axes over the live view.

Keys in the viewer: q quits, s saves the current frame as output-NNN.png.`,
	Version:       Version,
	Args:          cobra.NoArgs,
	RunE:          runLive,
	SilenceUsage:  true,
	SilenceErrors: true,
}

func init() {
	flags := rootCmd.PersistentFlags()
	flags.StringVarP(&opts.configPath, "config", "c", "", "JSON configuration file")
	flags.StringVarP(&opts.settingsPath, "settings", "s", "", "legacy settings file (deviceID width height focal modelFile modelScale radiusOuter radiusInner)")
	flags.IntVarP(&opts.device, "device", "d", 0, "capture device index")
	flags.IntVarP(&opts.placement, "placement", "p", 0, "marker placement: 0 default, 1 flipped")
	flags.BoolVar(&opts.debug, "debug", false, "log per-frame pipeline stages")

	rootCmd.Flags().StringVar(&opts.snapshotDir, "snapshots", ".", "directory for saved frames")
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
