package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
)

// LoadSettings reads a whitespace-separated settings file on top of base:
//
//	deviceID width height focal modelFile modelScale radiusOuter radiusInner
//
// Trailing fields may be omitted and keep their base values. The principal
// point is always reset to the image centre. The result is validated.
func LoadSettings(path string, base Config) (Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return base, fmt.Errorf("failed to read settings file: %w", err)
	}

	cfg := base
	fields := strings.Fields(string(data))

	setters := []func(string) error{
		intField("deviceID", &cfg.Camera.Device),
		intField("width", &cfg.Camera.Width),
		intField("height", &cfg.Camera.Height),
		floatField("focal", &cfg.Camera.Focal),
		func(s string) error { cfg.Model.File = s; return nil },
		floatField("modelScale", &cfg.Model.Scale),
		floatField("radiusOuter", &cfg.Marker.RadiusOuter),
		floatField("radiusInner", &cfg.Marker.RadiusInner),
	}
	if len(fields) > len(setters) {
		return base, fmt.Errorf("%w: settings file has %d fields, expected at most %d", ErrInvalidConfig, len(fields), len(setters))
	}
	for i, f := range fields {
		if err := setters[i](f); err != nil {
			return base, err
		}
	}

	cfg.Camera.U0 = float64(cfg.Camera.Width) / 2
	cfg.Camera.V0 = float64(cfg.Camera.Height) / 2

	if err := cfg.Validate(); err != nil {
		return base, err
	}
	return cfg, nil
}

func intField(name string, dst *int) func(string) error {
	return func(s string) error {
		v, err := strconv.Atoi(s)
		if err != nil {
			return fmt.Errorf("%w: %s %q: %v", ErrInvalidConfig, name, s, err)
		}
		*dst = v
		return nil
	}
}

func floatField(name string, dst *float64) func(string) error {
	return func(s string) error {
		v, err := strconv.ParseFloat(s, 64)
		if err != nil {
			return fmt.Errorf("%w: %s %q: %v", ErrInvalidConfig, name, s, err)
		}
		*dst = v
		return nil
	}
}
