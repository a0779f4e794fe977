package manifest

// Manifest describes one extraction run
type Manifest struct {
	Version  string   `yaml:"version"`
	Source   string   `yaml:"source"`
	Settings Settings `yaml:"settings"`
	Pages    []Page   `yaml:"pages"`
}

// Settings records the options the regions were produced with
type Settings struct {
	HorizontalGap  int    `yaml:"horizontal_gap"`
	VerticalGap    int    `yaml:"vertical_gap"`
	Padding        int    `yaml:"padding"`
	AlphaThreshold int    `yaml:"alpha_threshold"`
	MinElementSize int    `yaml:"min_element_size"`
	Connectivity   int    `yaml:"connectivity"`
	KeyColor       string `yaml:"key_color,omitempty"`
}

// Page represents a single decoded image or PDF page
type Page struct {
	Name     string   `yaml:"name"`
	Width    int      `yaml:"width"`
	Height   int      `yaml:"height"`
	Elements int      `yaml:"elements"` // Detected elements after size filtering
	Regions  []Region `yaml:"regions"`
}

// Region represents one saved crop
type Region struct {
	File     string    `yaml:"file"`
	Box      Rectangle `yaml:"box"` // Crop rectangle (padded)
	Raw      Rectangle `yaml:"raw"` // Group bounds before padding
	Elements int       `yaml:"elements"`
	Bytes    int64     `yaml:"bytes"`
}

// Rectangle represents a bounding box
type Rectangle struct {
	X int `yaml:"x"`
	Y int `yaml:"y"`
	W int `yaml:"w"`
	H int `yaml:"h"`
}
