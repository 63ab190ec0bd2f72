package imaging

import (
	"image"
	"image/color"
	"testing"
)

func TestCropRegion(t *testing.T) {
	img := solidImage(100, 80, color.White)

	tests := []struct {
		name          string
		region        image.Rectangle
		margin        int
		scale         float64
		width, height int
	}{
		{"interior", image.Rect(10, 10, 30, 40), 0, 1, 20, 30},
		{"with margin", image.Rect(10, 10, 30, 40), 5, 1, 30, 40},
		{"clipped by border", image.Rect(90, 70, 100, 80), 20, 1, 30, 30},
		{"scaled up", image.Rect(0, 0, 10, 10), 0, 2, 20, 20},
		{"scaled down", image.Rect(0, 0, 40, 20), 0, 0.5, 20, 10},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := CropRegion(img, tt.region, tt.margin, tt.scale)
			if err != nil {
				t.Fatalf("CropRegion failed: %v", err)
			}
			if got.Width != tt.width || got.Height != tt.height {
				t.Errorf("size: got %dx%d, want %dx%d", got.Width, got.Height, tt.width, tt.height)
			}
		})
	}
}

func TestCropRegion_Errors(t *testing.T) {
	img := solidImage(50, 50, color.White)

	if _, err := CropRegion(img, image.Rect(60, 60, 70, 70), 0, 1); err == nil {
		t.Error("region outside the image should fail")
	}
	if _, err := CropRegion(img, image.Rect(0, 0, 10, 10), 0, 0); err == nil {
		t.Error("zero scale should fail")
	}
	if _, err := CropRegion(img, image.Rect(0, 0, 10, 10), 0, 0.01); err == nil {
		t.Error("scale shrinking the crop to nothing should fail")
	}
}
