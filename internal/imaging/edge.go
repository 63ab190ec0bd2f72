package imaging

import (
	"image"
	"image/color"
	"math"

	"github.com/anthonynsimon/bild/blur"
	"github.com/disintegration/imaging"
)

// EdgeOptions controls EdgeMap.
type EdgeOptions struct {
	// BlurSigma is the Gaussian pre-blur radius in pixels. Zero disables it.
	BlurSigma float64

	// ThresholdLow and ThresholdHigh are the hysteresis thresholds on the
	// 0-255 gradient scale.
	ThresholdLow  int
	ThresholdHigh int
}

// DefaultEdgeOptions matches the camera loop: σ 1.0, thresholds 50/200.
func DefaultEdgeOptions() EdgeOptions {
	return EdgeOptions{BlurSigma: 1.0, ThresholdLow: 50, ThresholdHigh: 200}
}

// EdgeDetectResult is an edge map rendered as a base64 PNG, white on black.
type EdgeDetectResult struct {
	EncodedImage

	// EdgePixels is the number of pixels marked as edges.
	EdgePixels int `json:"edge_pixels"`
}

// EdgeMap runs Canny-style edge detection and returns the edge pixels as a
// grid indexed [y][x] relative to the image bounds.
//
// # Algorithm
//
//  1. Grayscale conversion.
//  2. Gaussian blur with radius BlurSigma.
//  3. Sobel gradients; magnitude and direction.
//  4. Non-maximum suppression along the quantized gradient direction.
//  5. Hysteresis: pixels at or above ThresholdHigh seed edges, which then
//     grow through 8-connected pixels at or above ThresholdLow.
func EdgeMap(img image.Image, opts EdgeOptions) [][]bool {
	gray := grayLevels(img, opts.BlurSigma)
	width, height := gray.width, gray.height

	mag := make([]float64, width*height)
	dir := make([]float64, width*height)
	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			gx := gray.at(x+1, y-1) + 2*gray.at(x+1, y) + gray.at(x+1, y+1) -
				gray.at(x-1, y-1) - 2*gray.at(x-1, y) - gray.at(x-1, y+1)
			gy := gray.at(x-1, y+1) + 2*gray.at(x, y+1) + gray.at(x+1, y+1) -
				gray.at(x-1, y-1) - 2*gray.at(x, y-1) - gray.at(x+1, y-1)
			mag[y*width+x] = math.Hypot(gx, gy)
			dir[y*width+x] = math.Atan2(gy, gx)
		}
	}

	thin := make([]float64, width*height)
	for y := 1; y < height-1; y++ {
		for x := 1; x < width-1; x++ {
			i := y*width + x
			dx, dy := suppressionOffset(dir[i])
			n1 := mag[(y+dy)*width+x+dx]
			n2 := mag[(y-dy)*width+x-dx]
			if mag[i] >= n1 && mag[i] >= n2 {
				thin[i] = mag[i]
			}
		}
	}

	edges := newGrid(width, height)
	low := float64(opts.ThresholdLow)
	high := float64(opts.ThresholdHigh)

	var stack []int
	for i, v := range thin {
		if v >= high && v > 0 {
			edges[i/width][i%width] = true
			stack = append(stack, i)
		}
	}
	for len(stack) > 0 {
		i := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		x, y := i%width, i/width
		for dy := -1; dy <= 1; dy++ {
			for dx := -1; dx <= 1; dx++ {
				nx, ny := x+dx, y+dy
				if nx < 0 || ny < 0 || nx >= width || ny >= height || edges[ny][nx] {
					continue
				}
				if v := thin[ny*width+nx]; v >= low && v > 0 {
					edges[ny][nx] = true
					stack = append(stack, ny*width+nx)
				}
			}
		}
	}
	return edges
}

// BoundaryMap marks dark pixels (gray level below level) that have a light
// 4-neighbour inside the image. For clean, high-contrast frames it yields
// one-pixel closed borders around every dark region.
func BoundaryMap(img image.Image, level uint8) [][]bool {
	gray := grayLevels(img, 0)
	width, height := gray.width, gray.height
	threshold := float64(level)

	edges := newGrid(width, height)
	light := func(x, y int) bool {
		return x >= 0 && y >= 0 && x < width && y < height && gray.pix[y*width+x] >= threshold
	}
	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			if light(x, y) {
				continue
			}
			edges[y][x] = light(x-1, y) || light(x+1, y) || light(x, y-1) || light(x, y+1)
		}
	}
	return edges
}

// EdgeImage renders an edge grid as white edges on black.
func EdgeImage(edges [][]bool) (*image.Gray, int) {
	height := len(edges)
	width := 0
	if height > 0 {
		width = len(edges[0])
	}

	out := image.NewGray(image.Rect(0, 0, width, height))
	count := 0
	for y, row := range edges {
		for x, on := range row {
			if on {
				out.SetGray(x, y, color.Gray{Y: 255})
				count++
			}
		}
	}
	return out, count
}

// EdgeDetect computes the edge map of img with the given hysteresis
// thresholds and default blur, and encodes it as PNG.
func EdgeDetect(img image.Image, thresholdLow, thresholdHigh int) (*EdgeDetectResult, error) {
	opts := DefaultEdgeOptions()
	opts.ThresholdLow = thresholdLow
	opts.ThresholdHigh = thresholdHigh

	rendered, count := EdgeImage(EdgeMap(img, opts))
	enc, err := EncodeImage(rendered)
	if err != nil {
		return nil, err
	}
	return &EdgeDetectResult{EncodedImage: *enc, EdgePixels: count}, nil
}

// levels is a row-major grayscale buffer on the 0-255 scale.
type levels struct {
	pix           []float64
	width, height int
}

// at reads with clamped (replicated) borders.
func (l levels) at(x, y int) float64 {
	return l.pix[clamp(y, 0, l.height-1)*l.width+clamp(x, 0, l.width-1)]
}

func grayLevels(img image.Image, sigma float64) levels {
	var src image.Image = imaging.Grayscale(img)
	if sigma > 0 {
		src = blur.Gaussian(src, sigma)
	}

	b := src.Bounds()
	l := levels{pix: make([]float64, b.Dx()*b.Dy()), width: b.Dx(), height: b.Dy()}
	for y := 0; y < l.height; y++ {
		for x := 0; x < l.width; x++ {
			r, _, _, _ := src.At(b.Min.X+x, b.Min.Y+y).RGBA()
			l.pix[y*l.width+x] = float64(r >> 8)
		}
	}
	return l
}

// suppressionOffset quantizes a gradient direction to the neighbour offset
// along it.
func suppressionOffset(angle float64) (int, int) {
	a := math.Mod(angle+math.Pi, math.Pi)
	switch {
	case a < math.Pi/8 || a >= 7*math.Pi/8:
		return 1, 0
	case a < 3*math.Pi/8:
		return 1, 1
	case a < 5*math.Pi/8:
		return 0, 1
	default:
		return -1, 1
	}
}

func newGrid(width, height int) [][]bool {
	g := make([][]bool, height)
	for y := range g {
		g[y] = make([]bool, width)
	}
	return g
}

func clamp(val, lo, hi int) int {
	if val < lo {
		return lo
	}
	if val > hi {
		return hi
	}
	return val
}
