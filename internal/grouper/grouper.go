package grouper

import (
	"errors"
	"fmt"
	"image"
	"sort"

	"github.com/ivlev/logoextract/internal/analyzer"
	"github.com/ivlev/logoextract/internal/config"
)

var (
	ErrInvalidConfiguration = config.ErrInvalidConfiguration
	ErrInconsistentGrouping = errors.New("inconsistent grouping")
)

// Group is a set of elements transitively connected by the gap rule
type Group struct {
	Members []int           // element indices, in order of addition
	Box     image.Rectangle // unpadded union of member boxes
}

// LogoRegion is a padded, clamped output box for one group
type LogoRegion struct {
	Box      image.Rectangle
	Raw      image.Rectangle // group box before padding
	Elements int
}

// MergeStep describes one element joining a group
type MergeStep struct {
	Group   int
	Element int
	Box     image.Rectangle // group box after the addition
}

// Grouper merges nearby elements into complete logo units
type Grouper struct {
	HorizontalGap int // max x-axis gap to join a group (px)
	VerticalGap   int // max y-axis gap to join a group (px)
	Padding       int // expansion of the output box on every side (px)

	OnMerge func(MergeStep)
}

// NewGrouper creates a new Grouper with default settings
func NewGrouper() *Grouper {
	return &Grouper{
		HorizontalGap: 100,
		VerticalGap:   50,
		Padding:       20,
	}
}

func (g *Grouper) validate() error {
	switch {
	case g.HorizontalGap < 0:
		return fmt.Errorf("%w: horizontal gap %d < 0", ErrInvalidConfiguration, g.HorizontalGap)
	case g.VerticalGap < 0:
		return fmt.Errorf("%w: vertical gap %d < 0", ErrInvalidConfiguration, g.VerticalGap)
	case g.Padding < 0:
		return fmt.Errorf("%w: padding %d < 0", ErrInvalidConfiguration, g.Padding)
	}
	return nil
}

// Group partitions elements and returns padded regions of an
// imageWidth x imageHeight image in reading order.
func (g *Grouper) Group(elements []analyzer.Element, imageWidth, imageHeight int) ([]LogoRegion, error) {
	groups, err := g.Groups(elements)
	if err != nil {
		return nil, err
	}

	canvas := image.Rect(0, 0, imageWidth, imageHeight)
	regions := make([]LogoRegion, 0, len(groups))
	for _, grp := range groups {
		box := grp.Box.Inset(-g.Padding).Intersect(canvas)
		if box.Empty() {
			return nil, fmt.Errorf("%w: group %v lies outside %v", ErrInconsistentGrouping, grp.Box, canvas)
		}
		regions = append(regions, LogoRegion{
			Box:      box,
			Raw:      grp.Box,
			Elements: len(grp.Members),
		})
	}

	SortRegions(regions)
	return regions, nil
}

// Groups runs the fixed-point grouping. Groups come out in the order their
// seed elements appear in elements. Every element box must be non-empty:
// image.Rectangle.Union skips empty rectangles, so they could never be
// covered by a group box.
func (g *Grouper) Groups(elements []analyzer.Element) ([]Group, error) {
	if err := g.validate(); err != nil {
		return nil, err
	}
	for i, e := range elements {
		if e.Box.Empty() {
			return nil, fmt.Errorf("%w: element %d has empty box %v", ErrInvalidConfiguration, i, e.Box)
		}
	}

	used := make([]bool, len(elements))
	groups := []Group{}

	for i := range elements {
		if used[i] {
			continue
		}

		grp := Group{Members: []int{i}, Box: elements[i].Box}
		used[i] = true

		// The box only grows, so every addition may bring earlier
		// rejects into range: rescan from the start until nothing joins.
		for {
			j := g.nextAdjacent(grp.Box, elements, used)
			if j < 0 {
				break
			}
			grp.Members = append(grp.Members, j)
			grp.Box = grp.Box.Union(elements[j].Box)
			used[j] = true

			if g.OnMerge != nil {
				g.OnMerge(MergeStep{Group: len(groups), Element: j, Box: grp.Box})
			}
		}

		groups = append(groups, grp)
	}

	if err := checkPartition(groups, len(elements)); err != nil {
		return nil, err
	}
	return groups, nil
}

// nextAdjacent returns the first unused element adjacent to box, or -1.
func (g *Grouper) nextAdjacent(box image.Rectangle, elements []analyzer.Element, used []bool) int {
	for j := range elements {
		if !used[j] && IsAdjacent(box, elements[j].Box, g.HorizontalGap, g.VerticalGap) {
			return j
		}
	}
	return -1
}

func checkPartition(groups []Group, n int) error {
	seen := make([]int, n)
	for _, grp := range groups {
		if len(grp.Members) == 0 {
			return fmt.Errorf("%w: empty group", ErrInconsistentGrouping)
		}
		for _, m := range grp.Members {
			seen[m]++
		}
	}
	for i, c := range seen {
		if c != 1 {
			return fmt.Errorf("%w: element %d is in %d groups", ErrInconsistentGrouping, i, c)
		}
	}
	return nil
}

// SortRegions orders regions top-to-bottom, then left-to-right
func SortRegions(regions []LogoRegion) {
	sort.SliceStable(regions, func(i, j int) bool {
		a, b := regions[i].Box.Min, regions[j].Box.Min
		if a.Y != b.Y {
			return a.Y < b.Y
		}
		return a.X < b.X
	})
}
