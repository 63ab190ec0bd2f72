package imaging

import (
	"bytes"
	"encoding/base64"
	"fmt"
	"image"
	"image/color"
	"image/draw"
	"image/png"
	"math"

	"github.com/disintegration/imaging"
	"github.com/lucasb-eyer/go-colorful"
)

// Overlay colours.
var (
	EllipseColor = colorful.Color{R: 0, G: 1, B: 0}
	AxisXColor   = colorful.Color{R: 1, G: 0, B: 0}
	AxisYColor   = colorful.Color{R: 0, G: 1, B: 0}
	AxisZColor   = colorful.Color{R: 0, G: 0, B: 1}
	LabelFgColor = colorful.Color{R: 1, G: 1, B: 1}
	LabelBgColor = color.NRGBA{R: 0, G: 0, B: 0, A: 180}
)

// EncodedImage is a PNG image in base64 form.
type EncodedImage struct {
	Width       int    `json:"width"`
	Height      int    `json:"height"`
	ImageBase64 string `json:"image_base64"`
	MimeType    string `json:"mime_type"`
}

// EncodeImage encodes img as a base64 PNG.
func EncodeImage(img image.Image) (*EncodedImage, error) {
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		return nil, fmt.Errorf("failed to encode image: %w", err)
	}
	return &EncodedImage{
		Width:       img.Bounds().Dx(),
		Height:      img.Bounds().Dy(),
		ImageBase64: base64.StdEncoding.EncodeToString(buf.Bytes()),
		MimeType:    "image/png",
	}, nil
}

// Canvas returns a drawable copy of img with its origin at (0,0).
func Canvas(img image.Image) *image.NRGBA {
	return imaging.Clone(img)
}

// MarkerColor returns a distinct colour for the i-th marker. Hues advance by
// the golden angle so neighbouring indices stay apart.
func MarkerColor(i int) colorful.Color {
	hue := math.Mod(float64(i)*137.508+30, 360)
	return colorful.Hsv(hue, 0.85, 0.95).Clamped()
}

// DrawDisc fills a disc of radius r centred on (cx, cy).
func DrawDisc(dst draw.Image, cx, cy float64, r int, c color.Color) {
	x0, y0 := int(math.Round(cx)), int(math.Round(cy))
	for dy := -r; dy <= r; dy++ {
		for dx := -r; dx <= r; dx++ {
			if dx*dx+dy*dy <= r*r {
				setClipped(dst, x0+dx, y0+dy, c)
			}
		}
	}
}

// DrawLine draws a one-pixel line with Bresenham's algorithm. Pixels outside
// dst are skipped.
func DrawLine(dst draw.Image, x0, y0, x1, y1 float64, c color.Color) {
	ax, ay := int(math.Round(x0)), int(math.Round(y0))
	bx, by := int(math.Round(x1)), int(math.Round(y1))

	dx := abs(bx - ax)
	dy := -abs(by - ay)
	sx, sy := 1, 1
	if ax > bx {
		sx = -1
	}
	if ay > by {
		sy = -1
	}

	e := dx + dy
	for {
		setClipped(dst, ax, ay, c)
		if ax == bx && ay == by {
			return
		}
		e2 := 2 * e
		if e2 >= dy {
			e += dy
			ax += sx
		}
		if e2 <= dx {
			e += dx
			ay += sy
		}
	}
}

// DrawPolyline joins pts with lines, closing the loop when closed is set.
func DrawPolyline(dst draw.Image, pts []image.Point, closed bool, c color.Color) {
	for i := 1; i < len(pts); i++ {
		DrawLine(dst, float64(pts[i-1].X), float64(pts[i-1].Y), float64(pts[i].X), float64(pts[i].Y), c)
	}
	if closed && len(pts) > 2 {
		last := pts[len(pts)-1]
		DrawLine(dst, float64(last.X), float64(last.Y), float64(pts[0].X), float64(pts[0].Y), c)
	}
}

// DrawLabel writes text in a 3×5 pixel font on a filled background with its
// top-left corner at (x, y). Only digits, '#' and ',' have glyphs.
func DrawLabel(dst draw.Image, x, y int, text string, fg, bg color.Color) {
	const charWidth, labelHeight = 4, 7

	for dy := -1; dy < labelHeight; dy++ {
		for dx := -1; dx < len(text)*charWidth; dx++ {
			setClipped(dst, x+dx, y+dy, bg)
		}
	}

	cx := x
	for _, ch := range text {
		for row, line := range glyphs[ch] {
			for col, bit := range line {
				if bit == '1' {
					setClipped(dst, cx+col, y+row, fg)
				}
			}
		}
		cx += charWidth
	}
}

var glyphs = map[rune][5]string{
	'0': {"111", "101", "101", "101", "111"},
	'1': {"010", "110", "010", "010", "111"},
	'2': {"111", "001", "111", "100", "111"},
	'3': {"111", "001", "111", "001", "111"},
	'4': {"101", "101", "111", "001", "001"},
	'5': {"111", "100", "111", "001", "111"},
	'6': {"111", "100", "111", "101", "111"},
	'7': {"111", "001", "001", "001", "001"},
	'8': {"111", "101", "111", "101", "111"},
	'9': {"111", "101", "111", "001", "111"},
	'#': {"101", "111", "101", "111", "101"},
	',': {"000", "000", "000", "010", "010"},
}

func setClipped(dst draw.Image, x, y int, c color.Color) {
	if (image.Point{X: x, Y: y}).In(dst.Bounds()) {
		dst.Set(x, y, c)
	}
}

func abs(v int) int {
	if v < 0 {
		return -v
	}
	return v
}
