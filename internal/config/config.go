// Package config holds the session configuration shared by the marker
// binaries: camera, marker geometry, detection thresholds, edge extraction
// and the rendered model.
package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/ironsheep/circular-marker-ar/internal/detection"
	"github.com/ironsheep/circular-marker-ar/internal/pose"
)

// ErrInvalidConfig is wrapped by every Validate failure.
var ErrInvalidConfig = errors.New("invalid configuration")

// Edge extraction modes.
const (
	EdgeModeCanny     = "canny"
	EdgeModeThreshold = "threshold"
)

// Defaults not owned by the detection or pose packages.
const (
	DefaultDevice         = 0
	DefaultBlurKernel     = 5
	DefaultBlurSigma      = 1.0
	DefaultThresholdLow   = 50
	DefaultThresholdHigh  = 200
	DefaultThresholdLevel = 128
	DefaultModelScale     = 1.0

	maxFileSize = 1 << 20
)

// Config is the complete session configuration. It is treated as immutable
// once loaded; stages receive copies of the parts they need.
type Config struct {
	Camera    CameraConfig    `json:"camera"`
	Marker    MarkerConfig    `json:"marker"`
	Detection DetectionConfig `json:"detection"`
	Edge      EdgeConfig      `json:"edge"`
	Model     ModelConfig     `json:"model"`
}

// CameraConfig describes the capture device and its intrinsics in pixels.
// A zero principal point means the image centre.
type CameraConfig struct {
	Device int     `json:"device"`
	Width  int     `json:"width"`
	Height int     `json:"height"`
	Focal  float64 `json:"focal"`
	U0     float64 `json:"u0,omitempty"`
	V0     float64 `json:"v0,omitempty"`
}

// MarkerConfig is the physical marker geometry.
type MarkerConfig struct {
	RadiusOuter float64             `json:"radius_outer"`
	RadiusInner float64             `json:"radius_inner"`
	Placement   detection.Placement `json:"placement"`
}

// DetectionConfig mirrors detection.DetectorConfig.
type DetectionConfig struct {
	MinLength      int     `json:"min_length"`
	ErrorThreshold float64 `json:"error_threshold"`
	AxisRatio      float64 `json:"axis_ratio"`
	AxisLength     float64 `json:"axis_length"`
	MergeDistance2 float64 `json:"merge_distance2"`
	Scale          float64 `json:"scale"`
}

// EdgeConfig controls how edge maps are produced from frames.
type EdgeConfig struct {
	Mode          string  `json:"mode"`
	BlurKernel    int     `json:"blur_kernel"`
	BlurSigma     float64 `json:"blur_sigma"`
	ThresholdLow  int     `json:"threshold_low"`
	ThresholdHigh int     `json:"threshold_high"`

	// Level is the gray level splitting dark from light in threshold mode.
	Level int `json:"level"`
}

// ModelConfig names the model drawn on each marker.
type ModelConfig struct {
	File  string  `json:"file,omitempty"`
	Scale float64 `json:"scale"`
}

// DefaultConfig returns the standard session: a 640×480 camera with a
// 700 px focal length and 27.5/15.0 marker radii.
func DefaultConfig() Config {
	det := detection.DefaultDetectorConfig()
	return Config{
		Camera: CameraConfig{
			Device: DefaultDevice,
			Width:  pose.DefaultWidth,
			Height: pose.DefaultHeight,
			Focal:  pose.DefaultFocal,
		},
		Marker: MarkerConfig{
			RadiusOuter: detection.DefaultRadiusOuter,
			RadiusInner: detection.DefaultRadiusInner,
			Placement:   detection.PlacementDefault,
		},
		Detection: DetectionConfig{
			MinLength:      det.MinLength,
			ErrorThreshold: det.ErrorThreshold,
			AxisRatio:      det.AxisRatio,
			AxisLength:     det.AxisLength,
			MergeDistance2: det.MergeDistance2,
			Scale:          det.Scale,
		},
		Edge: EdgeConfig{
			Mode:          EdgeModeCanny,
			BlurKernel:    DefaultBlurKernel,
			BlurSigma:     DefaultBlurSigma,
			ThresholdLow:  DefaultThresholdLow,
			ThresholdHigh: DefaultThresholdHigh,
			Level:         DefaultThresholdLevel,
		},
		Model: ModelConfig{
			Scale: DefaultModelScale,
		},
	}
}

// Load reads a JSON configuration file. Fields absent from the file keep
// their DefaultConfig values. The result is validated.
func Load(path string) (Config, error) {
	cfg := DefaultConfig()

	cleanPath := filepath.Clean(path)
	if ext := filepath.Ext(cleanPath); ext != ".json" {
		return cfg, fmt.Errorf("config file must have .json extension, got %q", ext)
	}

	info, err := os.Stat(cleanPath)
	if err != nil {
		return cfg, fmt.Errorf("failed to stat config file: %w", err)
	}
	if info.Size() > maxFileSize {
		return cfg, fmt.Errorf("config file too large: %d bytes (max %d)", info.Size(), maxFileSize)
	}

	data, err := os.ReadFile(cleanPath)
	if err != nil {
		return cfg, fmt.Errorf("failed to read config file: %w", err)
	}
	if err := json.Unmarshal(data, &cfg); err != nil {
		return DefaultConfig(), fmt.Errorf("failed to parse config JSON: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return DefaultConfig(), err
	}
	return cfg, nil
}

// Validate reports the first out-of-range field, wrapped in ErrInvalidConfig.
func (c Config) Validate() error {
	switch {
	case c.Camera.Width <= 0 || c.Camera.Height <= 0:
		return fmt.Errorf("%w: camera size %dx%d must be positive", ErrInvalidConfig, c.Camera.Width, c.Camera.Height)
	case !(c.Camera.Focal > 0):
		return fmt.Errorf("%w: focal length %g must be positive", ErrInvalidConfig, c.Camera.Focal)
	case c.Camera.Device < 0:
		return fmt.Errorf("%w: device %d must be non-negative", ErrInvalidConfig, c.Camera.Device)
	case !(c.Marker.RadiusInner > 0):
		return fmt.Errorf("%w: inner radius %g must be positive", ErrInvalidConfig, c.Marker.RadiusInner)
	case !(c.Marker.RadiusOuter > c.Marker.RadiusInner):
		return fmt.Errorf("%w: outer radius %g must exceed inner radius %g", ErrInvalidConfig, c.Marker.RadiusOuter, c.Marker.RadiusInner)
	case !c.Marker.Placement.Valid():
		return fmt.Errorf("%w: placement %d must be 0 or 1", ErrInvalidConfig, c.Marker.Placement)
	case c.Detection.MinLength < 6:
		return fmt.Errorf("%w: min_length %d must be at least 6", ErrInvalidConfig, c.Detection.MinLength)
	case !(c.Detection.ErrorThreshold > 0):
		return fmt.Errorf("%w: error_threshold %g must be positive", ErrInvalidConfig, c.Detection.ErrorThreshold)
	case !(c.Detection.AxisRatio >= 0 && c.Detection.AxisRatio <= 1):
		return fmt.Errorf("%w: axis_ratio %g must be in [0,1]", ErrInvalidConfig, c.Detection.AxisRatio)
	case c.Detection.AxisLength < 0:
		return fmt.Errorf("%w: axis_length %g must be non-negative", ErrInvalidConfig, c.Detection.AxisLength)
	case c.Detection.MergeDistance2 < 0:
		return fmt.Errorf("%w: merge_distance2 %g must be non-negative", ErrInvalidConfig, c.Detection.MergeDistance2)
	case !(c.Detection.Scale > 0):
		return fmt.Errorf("%w: scale %g must be positive", ErrInvalidConfig, c.Detection.Scale)
	case c.Edge.Mode != EdgeModeCanny && c.Edge.Mode != EdgeModeThreshold:
		return fmt.Errorf("%w: edge mode %q must be %q or %q", ErrInvalidConfig, c.Edge.Mode, EdgeModeCanny, EdgeModeThreshold)
	case c.Edge.BlurKernel < 1 || c.Edge.BlurKernel%2 == 0:
		return fmt.Errorf("%w: blur_kernel %d must be a positive odd number", ErrInvalidConfig, c.Edge.BlurKernel)
	case c.Edge.BlurSigma < 0:
		return fmt.Errorf("%w: blur_sigma %g must be non-negative", ErrInvalidConfig, c.Edge.BlurSigma)
	case c.Edge.ThresholdLow < 0 || c.Edge.ThresholdHigh > 255 || c.Edge.ThresholdLow > c.Edge.ThresholdHigh:
		return fmt.Errorf("%w: thresholds %d/%d must satisfy 0 <= low <= high <= 255", ErrInvalidConfig, c.Edge.ThresholdLow, c.Edge.ThresholdHigh)
	case c.Edge.Level < 1 || c.Edge.Level > 255:
		return fmt.Errorf("%w: level %d must be in [1,255]", ErrInvalidConfig, c.Edge.Level)
	case !(c.Model.Scale > 0):
		return fmt.Errorf("%w: model scale %g must be positive", ErrInvalidConfig, c.Model.Scale)
	}
	return nil
}

// Intrinsics returns the camera intrinsics, placing the principal point at
// the image centre when it is unset.
func (c Config) Intrinsics() pose.Intrinsics {
	in := pose.NewIntrinsics(c.Camera.Focal, c.Camera.Width, c.Camera.Height)
	if c.Camera.U0 != 0 || c.Camera.V0 != 0 {
		in.U0 = c.Camera.U0
		in.V0 = c.Camera.V0
	}
	return in
}

// Frustum returns the projection frustum matching the camera.
func (c Config) Frustum() pose.Frustum {
	return pose.NewFrustum(c.Camera.Focal, c.Camera.Width, c.Camera.Height, pose.DefaultFrustumScale)
}

// DetectorConfig returns the ellipse detector thresholds.
func (c Config) DetectorConfig() detection.DetectorConfig {
	d := c.Detection
	return detection.DetectorConfig{
		MinLength:      d.MinLength,
		ErrorThreshold: d.ErrorThreshold,
		AxisRatio:      d.AxisRatio,
		AxisLength:     d.AxisLength,
		MergeDistance2: d.MergeDistance2,
		Scale:          d.Scale,
	}
}

// PairingConfig returns the marker pairing parameters.
func (c Config) PairingConfig() detection.PairingConfig {
	return detection.PairingConfig{
		RadiusOuter: c.Marker.RadiusOuter,
		RadiusInner: c.Marker.RadiusInner,
		Placement:   c.Marker.Placement,
	}
}
