package config

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ironsheep/circular-marker-ar/internal/detection"
	"github.com/ironsheep/circular-marker-ar/internal/pose"
)

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()
	require.NoError(t, cfg.Validate())

	assert.Equal(t, 0, cfg.Camera.Device)
	assert.Equal(t, 640, cfg.Camera.Width)
	assert.Equal(t, 480, cfg.Camera.Height)
	assert.Equal(t, 700.0, cfg.Camera.Focal)
	assert.Equal(t, 27.5, cfg.Marker.RadiusOuter)
	assert.Equal(t, 15.0, cfg.Marker.RadiusInner)
	assert.Equal(t, detection.PlacementDefault, cfg.Marker.Placement)
	assert.Equal(t, detection.DefaultDetectorConfig(), cfg.DetectorConfig())
	assert.Equal(t, detection.DefaultPairingConfig(), cfg.PairingConfig())
	assert.Equal(t, EdgeModeCanny, cfg.Edge.Mode)
	assert.Equal(t, 5, cfg.Edge.BlurKernel)
	assert.Equal(t, 50, cfg.Edge.ThresholdLow)
	assert.Equal(t, 200, cfg.Edge.ThresholdHigh)
	assert.Equal(t, 1.0, cfg.Model.Scale)
}

func TestIntrinsics(t *testing.T) {
	cfg := DefaultConfig()
	assert.Equal(t, pose.Intrinsics{Focal: 700, U0: 320, V0: 240}, cfg.Intrinsics())

	cfg.Camera.U0 = 300
	cfg.Camera.V0 = 250
	assert.Equal(t, pose.Intrinsics{Focal: 700, U0: 300, V0: 250}, cfg.Intrinsics())
}

func TestFrustum(t *testing.T) {
	fr := DefaultConfig().Frustum()
	assert.InDelta(t, 1.6, fr.Horiz, 1e-12)
	assert.InDelta(t, 1.2, fr.Vert, 1e-12)
	assert.InDelta(t, 3.5, fr.Near, 1e-12)
}

func TestLoad(t *testing.T) {
	path := writeFile(t, "marker.json", `{
  "camera": {"device": 1, "width": 1280, "height": 720, "focal": 900},
  "marker": {"radius_outer": 40, "radius_inner": 20, "placement": 1},
  "detection": {"error_threshold": 2.0},
  "edge": {"mode": "threshold"}
}`)

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, 1, cfg.Camera.Device)
	assert.Equal(t, 1280, cfg.Camera.Width)
	assert.Equal(t, 900.0, cfg.Camera.Focal)
	assert.Equal(t, 40.0, cfg.Marker.RadiusOuter)
	assert.Equal(t, detection.PlacementFlipped, cfg.Marker.Placement)
	assert.Equal(t, 2.0, cfg.Detection.ErrorThreshold)
	assert.Equal(t, EdgeModeThreshold, cfg.Edge.Mode)

	// Untouched fields keep their defaults.
	assert.Equal(t, detection.DefaultMinLength, cfg.Detection.MinLength)
	assert.Equal(t, DefaultBlurKernel, cfg.Edge.BlurKernel)
	assert.Equal(t, pose.Intrinsics{Focal: 900, U0: 640, V0: 360}, cfg.Intrinsics())
}

func TestLoadErrors(t *testing.T) {
	tests := []struct {
		name    string
		file    string
		content string
		invalid bool
	}{
		{"not json extension", "marker.yaml", `{}`, false},
		{"malformed", "marker.json", `{"camera": `, false},
		{"invalid placement", "marker.json", `{"marker": {"placement": 3}}`, true},
		{"inner not smaller", "marker.json", `{"marker": {"radius_outer": 10, "radius_inner": 10}}`, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg, err := Load(writeFile(t, tt.file, tt.content))
			require.Error(t, err)
			assert.Equal(t, tt.invalid, errorIsInvalid(err))
			assert.Equal(t, DefaultConfig(), cfg)
		})
	}

	_, err := Load(filepath.Join(t.TempDir(), "missing.json"))
	assert.Error(t, err)
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(c *Config)
	}{
		{"zero width", func(c *Config) { c.Camera.Width = 0 }},
		{"negative focal", func(c *Config) { c.Camera.Focal = -1 }},
		{"negative device", func(c *Config) { c.Camera.Device = -1 }},
		{"zero inner radius", func(c *Config) { c.Marker.RadiusInner = 0 }},
		{"inner larger than outer", func(c *Config) { c.Marker.RadiusInner = 30 }},
		{"placement out of range", func(c *Config) { c.Marker.Placement = 2 }},
		{"min length below fit size", func(c *Config) { c.Detection.MinLength = 5 }},
		{"zero error threshold", func(c *Config) { c.Detection.ErrorThreshold = 0 }},
		{"axis ratio above one", func(c *Config) { c.Detection.AxisRatio = 1.5 }},
		{"negative merge distance", func(c *Config) { c.Detection.MergeDistance2 = -1 }},
		{"zero scale", func(c *Config) { c.Detection.Scale = 0 }},
		{"unknown edge mode", func(c *Config) { c.Edge.Mode = "sobel" }},
		{"even blur kernel", func(c *Config) { c.Edge.BlurKernel = 4 }},
		{"inverted thresholds", func(c *Config) { c.Edge.ThresholdLow, c.Edge.ThresholdHigh = 200, 50 }},
		{"level out of range", func(c *Config) { c.Edge.Level = 0 }},
		{"zero model scale", func(c *Config) { c.Model.Scale = 0 }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tt.mutate(&cfg)
			assert.ErrorIs(t, cfg.Validate(), ErrInvalidConfig)
		})
	}
}

func TestLoadSettings(t *testing.T) {
	path := writeFile(t, "settings.txt", "1 800 600 650.5\n./mqo/model.mqo 0.5\n30 12\n")

	cfg, err := LoadSettings(path, DefaultConfig())
	require.NoError(t, err)

	assert.Equal(t, 1, cfg.Camera.Device)
	assert.Equal(t, 800, cfg.Camera.Width)
	assert.Equal(t, 600, cfg.Camera.Height)
	assert.Equal(t, 650.5, cfg.Camera.Focal)
	assert.Equal(t, "./mqo/model.mqo", cfg.Model.File)
	assert.Equal(t, 0.5, cfg.Model.Scale)
	assert.Equal(t, 30.0, cfg.Marker.RadiusOuter)
	assert.Equal(t, 12.0, cfg.Marker.RadiusInner)
	assert.Equal(t, 400.0, cfg.Camera.U0)
	assert.Equal(t, 300.0, cfg.Camera.V0)
}

func TestLoadSettingsPartial(t *testing.T) {
	path := writeFile(t, "settings.txt", "2 320 240")

	cfg, err := LoadSettings(path, DefaultConfig())
	require.NoError(t, err)

	assert.Equal(t, 2, cfg.Camera.Device)
	assert.Equal(t, 320, cfg.Camera.Width)
	assert.Equal(t, pose.DefaultFocal, cfg.Camera.Focal)
	assert.Equal(t, detection.DefaultRadiusOuter, cfg.Marker.RadiusOuter)
	assert.Equal(t, pose.Intrinsics{Focal: 700, U0: 160, V0: 120}, cfg.Intrinsics())
}

func TestLoadSettingsErrors(t *testing.T) {
	base := DefaultConfig()

	tests := []struct {
		name    string
		content string
	}{
		{"bad integer", "zero 640 480"},
		{"bad float", "0 640 480 wide"},
		{"too many fields", "0 640 480 700 m.mqo 1 27.5 15 extra"},
		{"radii swapped", "0 640 480 700 m.mqo 1 15 27.5"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg, err := LoadSettings(writeFile(t, "settings.txt", tt.content), base)
			assert.ErrorIs(t, err, ErrInvalidConfig)
			assert.Equal(t, base, cfg)
		})
	}

	_, err := LoadSettings(filepath.Join(t.TempDir(), "missing.txt"), base)
	assert.Error(t, err)
}

func errorIsInvalid(err error) bool {
	return errors.Is(err, ErrInvalidConfig)
}
