package imaging

import (
	"fmt"
	"image"
	_ "image/gif"  // Register GIF format decoder
	_ "image/jpeg" // Register JPEG format decoder
	_ "image/png"  // Register PNG format decoder
	"os"
	"sync"
)

// ImageCache holds decoded frames keyed by file path so that successive
// tool calls on the same file skip disk reads and decoding.
//
// ImageCache is safe for concurrent use. Entries stay until Evict or Clear.
type ImageCache struct {
	mu      sync.RWMutex
	entries map[string]cachedImage
}

type cachedImage struct {
	img    image.Image
	format string
}

// NewImageCache returns an empty cache.
func NewImageCache() *ImageCache {
	return &ImageCache{entries: make(map[string]cachedImage)}
}

// Load returns the decoded image at path, reading it on first use.
// PNG, JPEG and GIF are supported.
func (c *ImageCache) Load(path string) (image.Image, error) {
	e, err := c.load(path)
	if err != nil {
		return nil, err
	}
	return e.img, nil
}

func (c *ImageCache) load(path string) (cachedImage, error) {
	c.mu.RLock()
	e, ok := c.entries[path]
	c.mu.RUnlock()
	if ok {
		return e, nil
	}

	f, err := os.Open(path)
	if err != nil {
		return cachedImage{}, fmt.Errorf("failed to open image: %w", err)
	}
	defer f.Close()

	img, format, err := image.Decode(f)
	if err != nil {
		return cachedImage{}, fmt.Errorf("failed to decode image: %w", err)
	}

	e = cachedImage{img: img, format: format}
	c.mu.Lock()
	c.entries[path] = e
	c.mu.Unlock()
	return e, nil
}

// Len returns the number of cached images.
func (c *ImageCache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.entries)
}

// Clear drops every cached image.
func (c *ImageCache) Clear() {
	c.mu.Lock()
	c.entries = make(map[string]cachedImage)
	c.mu.Unlock()
}

// Evict drops the image cached under path, if any.
func (c *ImageCache) Evict(path string) {
	c.mu.Lock()
	delete(c.entries, path)
	c.mu.Unlock()
}

// ImageInfo describes a loaded image file.
type ImageInfo struct {
	Width  int `json:"width"`
	Height int `json:"height"`

	// Format is the decoder name reported by image.Decode: "png", "jpeg" or "gif".
	Format string `json:"format"`

	// Grayscale is set for single-channel images.
	Grayscale bool `json:"grayscale"`

	FileSizeBytes int64 `json:"file_size_bytes"`
}

// LoadImageInfo loads path through cache and describes it.
func LoadImageInfo(cache *ImageCache, path string) (*ImageInfo, error) {
	e, err := cache.load(path)
	if err != nil {
		return nil, err
	}

	stat, err := os.Stat(path)
	if err != nil {
		return nil, fmt.Errorf("failed to stat file: %w", err)
	}

	var gray bool
	switch e.img.(type) {
	case *image.Gray, *image.Gray16:
		gray = true
	}

	b := e.img.Bounds()
	return &ImageInfo{
		Width:         b.Dx(),
		Height:        b.Dy(),
		Format:        e.format,
		Grayscale:     gray,
		FileSizeBytes: stat.Size(),
	}, nil
}

// DimensionsResult is the size of an image in pixels.
type DimensionsResult struct {
	Width  int `json:"width"`
	Height int `json:"height"`
}

// GetDimensions loads path through cache and returns its size.
func GetDimensions(cache *ImageCache, path string) (*DimensionsResult, error) {
	img, err := cache.Load(path)
	if err != nil {
		return nil, err
	}
	b := img.Bounds()
	return &DimensionsResult{Width: b.Dx(), Height: b.Dy()}, nil
}
