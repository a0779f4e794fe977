package analyzer

import "image"

// LabelMap is the result of connected component labeling.
// Background pixels carry label 0, components 1..Count in raster order of
// their first pixel.
type LabelMap struct {
	Width, Height int
	Count         int
	Labels        []int
}

// At returns the label of pixel (x, y).
func (m *LabelMap) At(x, y int) int {
	return m.Labels[y*m.Width+x]
}

// Label runs a two-pass union-find labeling over mask.
// Connectivity 8 also joins diagonal neighbours; any other value means 4.
func Label(mask []bool, width, height, connectivity int) *LabelMap {
	labels := make([]int, width*height)
	parent := []int{0} // parent[0] is the background

	find := func(l int) int {
		for parent[l] != l {
			parent[l] = parent[parent[l]]
			l = parent[l]
		}
		return l
	}
	union := func(a, b int) int {
		ra, rb := find(a), find(b)
		if ra == rb {
			return ra
		}
		if ra < rb {
			parent[rb] = ra
			return ra
		}
		parent[ra] = rb
		return rb
	}

	// Pass 1: provisional labels and equivalences
	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			i := y*width + x
			if !mask[i] {
				continue
			}

			cur := 0
			join := func(nx, ny int) {
				if nx < 0 || nx >= width || ny < 0 {
					return
				}
				n := labels[ny*width+nx]
				if n == 0 {
					return
				}
				if cur == 0 {
					cur = find(n)
				} else {
					cur = union(cur, n)
				}
			}

			join(x-1, y)
			join(x, y-1)
			if connectivity == 8 {
				join(x-1, y-1)
				join(x+1, y-1)
			}

			if cur == 0 {
				cur = len(parent)
				parent = append(parent, cur)
			}
			labels[i] = cur
		}
	}

	// Pass 2: resolve roots, renumber in raster order
	final := make([]int, len(parent))
	count := 0
	for i, l := range labels {
		if l == 0 {
			continue
		}
		root := find(l)
		if final[root] == 0 {
			count++
			final[root] = count
		}
		labels[i] = final[root]
	}

	return &LabelMap{Width: width, Height: height, Count: count, Labels: labels}
}

// Regions returns one unfiltered Element per label, in label order.
func (m *LabelMap) Regions() []Element {
	if m.Count == 0 {
		return nil
	}

	type bounds struct {
		minX, minY, maxX, maxY int
		pixels                 int
	}
	acc := make([]bounds, m.Count+1)

	for y := 0; y < m.Height; y++ {
		for x := 0; x < m.Width; x++ {
			l := m.At(x, y)
			if l == 0 {
				continue
			}
			b := &acc[l]
			if b.pixels == 0 {
				*b = bounds{minX: x, minY: y, maxX: x, maxY: y}
			}
			b.pixels++
			if x < b.minX {
				b.minX = x
			}
			if x > b.maxX {
				b.maxX = x
			}
			if y > b.maxY {
				b.maxY = y
			}
		}
	}

	regions := make([]Element, 0, m.Count)
	for l := 1; l <= m.Count; l++ {
		b := acc[l]
		regions = append(regions, Element{
			Box:    image.Rect(b.minX, b.minY, b.maxX+1, b.maxY+1),
			Label:  l,
			Pixels: b.pixels,
		})
	}
	return regions
}
