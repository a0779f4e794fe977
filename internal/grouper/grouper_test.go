package grouper

import (
	"errors"
	"image"
	"math/rand"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/ivlev/logoextract/internal/analyzer"
)

func el(x0, y0, x1, y1 int) analyzer.Element {
	return analyzer.Element{Box: image.Rect(x0, y0, x1, y1)}
}

func TestGroupTwoSquaresMerge(t *testing.T) {
	elements := []analyzer.Element{el(10, 10, 30, 30), el(40, 10, 60, 30)}

	regions, err := NewGrouper().Group(elements, 500, 300)
	if err != nil {
		t.Fatalf("Group failed: %v", err)
	}

	want := []LogoRegion{{
		Box:      image.Rect(0, 0, 80, 50),
		Raw:      image.Rect(10, 10, 60, 30),
		Elements: 2,
	}}
	if diff := cmp.Diff(want, regions); diff != "" {
		t.Errorf("regions mismatch (-want +got):\n%s", diff)
	}
}

func TestGroupTwoSquaresSeparate(t *testing.T) {
	// Right square first: output order must not depend on input order
	elements := []analyzer.Element{el(40, 10, 60, 30), el(10, 10, 30, 30)}

	g := NewGrouper()
	g.HorizontalGap = 5
	regions, err := g.Group(elements, 500, 300)
	if err != nil {
		t.Fatalf("Group failed: %v", err)
	}

	want := []LogoRegion{
		{Box: image.Rect(0, 0, 50, 50), Raw: image.Rect(10, 10, 30, 30), Elements: 1},
		{Box: image.Rect(20, 0, 80, 50), Raw: image.Rect(40, 10, 60, 30), Elements: 1},
	}
	if diff := cmp.Diff(want, regions); diff != "" {
		t.Errorf("regions mismatch (-want +got):\n%s", diff)
	}
}

func TestTransitiveMerge(t *testing.T) {
	a := el(0, 0, 20, 20)
	b := el(110, 60, 130, 80)   // 90 right, 40 down of a
	c := el(220, 120, 240, 140) // 90 right, 40 down of b

	g := NewGrouper()
	if IsAdjacent(a.Box, c.Box, g.HorizontalGap, g.VerticalGap) {
		t.Fatal("a and c must be too far apart on their own")
	}

	// c is scanned before b joins; only a rescan after growth picks it up
	groups, err := g.Groups([]analyzer.Element{a, c, b})
	if err != nil {
		t.Fatalf("Groups failed: %v", err)
	}

	want := []Group{{Members: []int{0, 2, 1}, Box: image.Rect(0, 0, 240, 140)}}
	if diff := cmp.Diff(want, groups); diff != "" {
		t.Errorf("groups mismatch (-want +got):\n%s", diff)
	}
}

func TestDiagonalWithinBothGapsMerges(t *testing.T) {
	// Euclidean distance ~108px, but each axis is within its threshold
	g := NewGrouper()
	groups, err := g.Groups([]analyzer.Element{el(0, 0, 20, 20), el(115, 65, 135, 85)})
	if err != nil {
		t.Fatalf("Groups failed: %v", err)
	}
	if len(groups) != 1 {
		t.Errorf("expected 1 group, got %d", len(groups))
	}
}

func TestNoElements(t *testing.T) {
	regions, err := NewGrouper().Group(nil, 100, 100)
	if err != nil {
		t.Fatalf("zero elements must not be an error: %v", err)
	}
	if len(regions) != 0 {
		t.Errorf("expected no regions, got %d", len(regions))
	}
}

func TestInvalidConfiguration(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(g *Grouper)
	}{
		{"h-gap", func(g *Grouper) { g.HorizontalGap = -1 }},
		{"v-gap", func(g *Grouper) { g.VerticalGap = -1 }},
		{"padding", func(g *Grouper) { g.Padding = -1 }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			g := NewGrouper()
			tt.mutate(g)
			_, err := g.Group([]analyzer.Element{el(0, 0, 10, 10)}, 100, 100)
			if !errors.Is(err, ErrInvalidConfiguration) {
				t.Errorf("expected ErrInvalidConfiguration, got %v", err)
			}
		})
	}
}

func TestEmptyElementRejected(t *testing.T) {
	tests := []struct {
		name string
		box  image.Rectangle
	}{
		{"zero width", image.Rect(40, 10, 40, 30)},
		{"zero height", image.Rect(40, 10, 60, 10)},
		{"zero value", image.Rectangle{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			g := NewGrouper()
			g.Padding = 0
			elements := []analyzer.Element{el(10, 10, 30, 30), {Box: tt.box}}
			_, err := g.Group(elements, 500, 300)
			if !errors.Is(err, ErrInvalidConfiguration) {
				t.Errorf("expected ErrInvalidConfiguration, got %v", err)
			}
		})
	}

	// A one-pixel element is not empty and joins normally
	groups, err := NewGrouper().Groups([]analyzer.Element{el(10, 10, 30, 30), el(40, 10, 41, 11)})
	if err != nil {
		t.Fatalf("Groups failed: %v", err)
	}
	want := []Group{{Members: []int{0, 1}, Box: image.Rect(10, 10, 41, 30)}}
	if diff := cmp.Diff(want, groups); diff != "" {
		t.Errorf("groups mismatch (-want +got):\n%s", diff)
	}
}

func TestElementOutsideCanvas(t *testing.T) {
	g := NewGrouper()
	g.Padding = 0
	_, err := g.Group([]analyzer.Element{el(200, 200, 220, 220)}, 100, 100)
	if !errors.Is(err, ErrInconsistentGrouping) {
		t.Errorf("expected ErrInconsistentGrouping, got %v", err)
	}
}

// randomElements scatters n boxes of 10-60px over a w x h canvas
func randomElements(r *rand.Rand, n, w, h int) []analyzer.Element {
	elements := make([]analyzer.Element, n)
	for i := range elements {
		bw, bh := 10+r.Intn(50), 10+r.Intn(50)
		x, y := r.Intn(w-bw), r.Intn(h-bh)
		elements[i] = el(x, y, x+bw, y+bh)
	}
	return elements
}

func TestPartitionProperty(t *testing.T) {
	r := rand.New(rand.NewSource(42))

	for trial := 0; trial < 200; trial++ {
		elements := randomElements(r, 1+r.Intn(40), 1200, 800)
		g := &Grouper{HorizontalGap: r.Intn(150), VerticalGap: r.Intn(80), Padding: r.Intn(40)}

		groups, err := g.Groups(elements)
		if err != nil {
			t.Fatalf("trial %d: Groups failed: %v", trial, err)
		}

		seen := make([]int, len(elements))
		for _, grp := range groups {
			union := image.Rectangle{}
			for _, m := range grp.Members {
				seen[m]++
				union = union.Union(elements[m].Box)
			}
			if union != grp.Box {
				t.Errorf("trial %d: group box %v, union of members %v", trial, grp.Box, union)
			}
		}
		for i, c := range seen {
			if c != 1 {
				t.Errorf("trial %d: element %d appears in %d groups", trial, i, c)
			}
		}
	}
}

func TestGroupsAreClosed(t *testing.T) {
	r := rand.New(rand.NewSource(7))
	elements := randomElements(r, 60, 2000, 1500)
	g := NewGrouper()

	groups, err := g.Groups(elements)
	if err != nil {
		t.Fatalf("Groups failed: %v", err)
	}

	// A group seeded later can never have been reachable from an earlier one
	for gi, grp := range groups {
		for gj := gi + 1; gj < len(groups); gj++ {
			for _, m := range groups[gj].Members {
				if IsAdjacent(grp.Box, elements[m].Box, g.HorizontalGap, g.VerticalGap) {
					t.Errorf("element %d of group %d is adjacent to final box of group %d", m, gj, gi)
				}
			}
		}
	}
}

func TestMonotonicBoxGrowth(t *testing.T) {
	r := rand.New(rand.NewSource(99))
	elements := randomElements(r, 50, 1000, 700)

	var steps []MergeStep
	g := NewGrouper()
	g.OnMerge = func(s MergeStep) { steps = append(steps, s) }

	groups, err := g.Groups(elements)
	if err != nil {
		t.Fatalf("Groups failed: %v", err)
	}
	if want := len(elements) - len(groups); len(steps) != want {
		t.Fatalf("expected %d merge steps, got %d", want, len(steps))
	}

	prev := map[int]image.Rectangle{}
	for _, s := range steps {
		last, ok := prev[s.Group]
		if !ok {
			last = elements[groups[s.Group].Members[0]].Box
		}
		if !last.In(s.Box) {
			t.Errorf("group %d shrank: %v -> %v", s.Group, last, s.Box)
		}
		if !elements[s.Element].Box.In(s.Box) {
			t.Errorf("group %d box %v misses new element %v", s.Group, s.Box, elements[s.Element].Box)
		}
		prev[s.Group] = s.Box
	}
	for gi, grp := range groups {
		if last, ok := prev[gi]; ok && last != grp.Box {
			t.Errorf("group %d: last step box %v, final box %v", gi, last, grp.Box)
		}
	}
}

func TestClampInvariant(t *testing.T) {
	r := rand.New(rand.NewSource(1))
	const w, h = 400, 300

	for trial := 0; trial < 100; trial++ {
		elements := randomElements(r, 1+r.Intn(20), w, h)
		// Hug the edges too
		elements = append(elements, el(0, 0, 12, 12), el(w-15, h-15, w, h))

		g := NewGrouper()
		g.Padding = r.Intn(500)
		g.HorizontalGap = r.Intn(60)
		g.VerticalGap = r.Intn(60)

		regions, err := g.Group(elements, w, h)
		if err != nil {
			t.Fatalf("trial %d: Group failed: %v", trial, err)
		}
		for _, reg := range regions {
			b := reg.Box
			if !(0 <= b.Min.X && b.Min.X < b.Max.X && b.Max.X <= w) ||
				!(0 <= b.Min.Y && b.Min.Y < b.Max.Y && b.Max.Y <= h) {
				t.Errorf("trial %d: region %v violates clamp invariant", trial, b)
			}
			if !reg.Raw.In(b) {
				t.Errorf("trial %d: padded box %v does not contain raw %v", trial, b, reg.Raw)
			}
		}
	}
}

func TestDeterminism(t *testing.T) {
	r := rand.New(rand.NewSource(2024))
	elements := randomElements(r, 30, 900, 600)

	first, err := NewGrouper().Group(elements, 900, 600)
	if err != nil {
		t.Fatalf("Group failed: %v", err)
	}
	second, err := NewGrouper().Group(elements, 900, 600)
	if err != nil {
		t.Fatalf("Group failed: %v", err)
	}
	if diff := cmp.Diff(first, second); diff != "" {
		t.Errorf("runs differ (-first +second):\n%s", diff)
	}
}

func TestSortRegions(t *testing.T) {
	regions := []LogoRegion{
		{Box: image.Rect(300, 100, 400, 200)},
		{Box: image.Rect(10, 100, 50, 150)},
		{Box: image.Rect(500, 0, 600, 40)},
		{Box: image.Rect(0, 400, 20, 420)},
	}
	SortRegions(regions)

	want := []image.Point{{500, 0}, {10, 100}, {300, 100}, {0, 400}}
	for i, reg := range regions {
		if reg.Box.Min != want[i] {
			t.Errorf("position %d: expected %v, got %v", i, want[i], reg.Box.Min)
		}
	}
}
