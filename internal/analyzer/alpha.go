package analyzer

import (
	"image"
	"image/color"

	"golang.org/x/image/draw"
)

// AlphaDetector finds opaque elements on a transparent background
type AlphaDetector struct {
	AlphaThreshold int // pixel is foreground iff alpha > AlphaThreshold (0-255)
	MinElementSize int // elements narrower or shorter than this are dropped
	Connectivity   int // 4 or 8

	// KeyColor, if set, is treated as background even where the image is opaque.
	KeyColor     *color.RGBA
	KeyTolerance int // max per-channel difference to KeyColor
}

// NewAlphaDetector creates a new alpha-based detector with default settings
func NewAlphaDetector() *AlphaDetector {
	return &AlphaDetector{
		AlphaThreshold: 10,
		MinElementSize: 10, // removes anti-aliasing speckle
		Connectivity:   4,
	}
}

// Detect returns the elements of img in label discovery order.
// An image without foreground pixels yields an empty slice.
func (d *AlphaDetector) Detect(img image.Image) ([]Element, error) {
	rgba := ToRGBA(img)

	// Step 1: Binary foreground mask
	mask := d.Mask(rgba)

	// Step 2: Connected component labeling
	w, h := rgba.Rect.Dx(), rgba.Rect.Dy()
	labels := Label(mask, w, h, d.Connectivity)

	// Step 3-4: Bounding boxes, size filter
	elements := []Element{}
	for _, e := range labels.Regions() {
		if e.Width() < d.MinElementSize || e.Height() < d.MinElementSize {
			continue
		}
		elements = append(elements, e)
	}

	return elements, nil
}

// Mask marks foreground pixels of img, row-major, one entry per pixel.
func (d *AlphaDetector) Mask(img *image.RGBA) []bool {
	w, h := img.Rect.Dx(), img.Rect.Dy()
	mask := make([]bool, w*h)
	threshold := uint8(clamp(d.AlphaThreshold, 0, 255))

	for y := 0; y < h; y++ {
		row := img.Pix[y*img.Stride : y*img.Stride+w*4]
		for x := 0; x < w; x++ {
			px := row[x*4 : x*4+4]
			a := px[3]
			if a <= threshold {
				continue
			}
			if d.KeyColor != nil && d.matchesKey(px) {
				continue
			}
			mask[y*w+x] = true
		}
	}

	return mask
}

// matchesKey compares the straight (non-premultiplied) colour of px to KeyColor.
func (d *AlphaDetector) matchesKey(px []uint8) bool {
	a := int(px[3])
	key := [3]uint8{d.KeyColor.R, d.KeyColor.G, d.KeyColor.B}
	for c := 0; c < 3; c++ {
		v := int(px[c]) * 255 / a
		if abs(v-int(key[c])) > d.KeyTolerance {
			return false
		}
	}
	return true
}

// ToRGBA returns img as an *image.RGBA anchored at (0,0).
// Images already in that form are returned as-is.
func ToRGBA(img image.Image) *image.RGBA {
	if rgba, ok := img.(*image.RGBA); ok && rgba.Rect.Min == (image.Point{}) {
		return rgba
	}
	b := img.Bounds()
	rgba := image.NewRGBA(image.Rect(0, 0, b.Dx(), b.Dy()))
	DrawRGBA(rgba, img)
	return rgba
}

// DrawRGBA copies src into dst, shifting src's origin to dst's origin.
func DrawRGBA(dst *image.RGBA, src image.Image) {
	draw.Draw(dst, dst.Bounds(), src, src.Bounds().Min, draw.Src)
}

func clamp(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

// abs returns absolute value of an integer
func abs(x int) int {
	if x < 0 {
		return -x
	}
	return x
}
