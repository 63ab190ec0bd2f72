package main

import (
	"log"
	"os"

	"github.com/spf13/cobra"

	"github.com/ironsheep/circular-marker-ar/internal/config"
	"github.com/ironsheep/circular-marker-ar/internal/detection"
	"github.com/ironsheep/circular-marker-ar/internal/pipeline"
)

type options struct {
	configPath   string
	settingsPath string
	device       int
	placement    int
	debug        bool
	snapshotDir  string
}

var opts options

// loadConfig layers the JSON file, the settings file and the explicit flags
// over the defaults, in that order.
func (o options) loadConfig(cmd *cobra.Command) (config.Config, error) {
	cfg := config.DefaultConfig()
	var err error
	if o.configPath != "" {
		if cfg, err = config.Load(o.configPath); err != nil {
			return cfg, err
		}
	}
	if o.settingsPath != "" {
		if cfg, err = config.LoadSettings(o.settingsPath, cfg); err != nil {
			return cfg, err
		}
	}

	if cmd.Flags().Changed("device") {
		cfg.Camera.Device = o.device
	}
	if cmd.Flags().Changed("placement") {
		cfg.Marker.Placement = detection.Placement(o.placement)
	}
	return cfg, cfg.Validate()
}

// newPipeline builds the pipeline for cmd, logging to stderr.
func (o options) newPipeline(cmd *cobra.Command) (*pipeline.Pipeline, error) {
	log.SetOutput(os.Stderr)
	log.SetFlags(log.Ldate | log.Ltime | log.Lshortfile)

	cfg, err := o.loadConfig(cmd)
	if err != nil {
		return nil, err
	}

	p := pipeline.New(cfg)
	if o.debug {
		p.Logf = log.Printf
		log.Printf("marker-ar %s: camera %d %dx%d f=%g, radii %g/%g, placement %d, edge mode %s",
			Version, cfg.Camera.Device, cfg.Camera.Width, cfg.Camera.Height, cfg.Camera.Focal,
			cfg.Marker.RadiusOuter, cfg.Marker.RadiusInner, cfg.Marker.Placement, cfg.Edge.Mode)
	}
	return p, nil
}
