package imaging

import (
	"image"
	"image/color"
)

func solidImage(width, height int, c color.Color) *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, width, height))
	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			img.Set(x, y, c)
		}
	}
	return img
}

// fillDisc paints a filled disc of radius r centred on (cx, cy).
func fillDisc(img *image.RGBA, cx, cy, r int, c color.Color) {
	for y := cy - r; y <= cy+r; y++ {
		for x := cx - r; x <= cx+r; x++ {
			if (x-cx)*(x-cx)+(y-cy)*(y-cy) <= r*r {
				img.Set(x, y, c)
			}
		}
	}
}

func countEdges(edges [][]bool) int {
	n := 0
	for _, row := range edges {
		for _, on := range row {
			if on {
				n++
			}
		}
	}
	return n
}
