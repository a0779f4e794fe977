package analyzer

import "image"

// Element is a single connected opaque region of an image.
type Element struct {
	Box    image.Rectangle // tight bounds, Max exclusive
	Label  int             // 1-based label in discovery order
	Pixels int             // number of foreground pixels
}

func (e Element) Width() int  { return e.Box.Dx() }
func (e Element) Height() int { return e.Box.Dy() }

// Detector is the interface for element detection strategies
type Detector interface {
	Detect(img image.Image) ([]Element, error)
}
