package grouper

import "image"

// HorizontalDistance is the gap between the x-ranges of a and b, 0 if they overlap or touch.
func HorizontalDistance(a, b image.Rectangle) int {
	return axisGap(a.Min.X, a.Max.X, b.Min.X, b.Max.X)
}

// VerticalDistance is the gap between the y-ranges of a and b, 0 if they overlap or touch.
func VerticalDistance(a, b image.Rectangle) int {
	return axisGap(a.Min.Y, a.Max.Y, b.Min.Y, b.Max.Y)
}

func axisGap(aMin, aMax, bMin, bMax int) int {
	switch {
	case bMin > aMax: // b after a
		return bMin - aMax
	case aMin > bMax: // b before a
		return aMin - bMax
	default:
		return 0
	}
}

// IsAdjacent reports whether b is within hGap of a horizontally and within
// vGap vertically. Both axes must pass independently.
func IsAdjacent(a, b image.Rectangle, hGap, vGap int) bool {
	return HorizontalDistance(a, b) <= hGap && VerticalDistance(a, b) <= vGap
}
