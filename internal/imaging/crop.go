package imaging

import (
	"fmt"
	"image"

	"github.com/disintegration/imaging"
)

// CropRegion cuts region, grown by margin pixels on every side and clipped
// to the image, out of img. A scale other than 1 resizes the crop with a
// Lanczos filter.
func CropRegion(img image.Image, region image.Rectangle, margin int, scale float64) (*EncodedImage, error) {
	if scale <= 0 {
		return nil, fmt.Errorf("crop scale must be positive, got %g", scale)
	}

	r := region.Inset(-margin).Intersect(img.Bounds())
	if r.Empty() {
		return nil, fmt.Errorf("crop region %v lies outside image bounds %v", region, img.Bounds())
	}

	cropped := imaging.Crop(img, r)
	if scale != 1.0 {
		w := int(float64(cropped.Bounds().Dx()) * scale)
		h := int(float64(cropped.Bounds().Dy()) * scale)
		if w < 1 || h < 1 {
			return nil, fmt.Errorf("crop of %v at scale %g is empty", r, scale)
		}
		cropped = imaging.Resize(cropped, w, h, imaging.Lanczos)
	}
	return EncodeImage(cropped)
}
