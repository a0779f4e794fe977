package manifest

import (
	"image"
	"os"

	"gopkg.in/yaml.v3"
)

// FileName is the manifest name inside the output directory
const FileName = "manifest.yaml"

// FromRect converts an image.Rectangle into a manifest Rectangle
func FromRect(r image.Rectangle) Rectangle {
	return Rectangle{X: r.Min.X, Y: r.Min.Y, W: r.Dx(), H: r.Dy()}
}

// Rect converts back to image.Rectangle
func (r Rectangle) Rect() image.Rectangle {
	return image.Rect(r.X, r.Y, r.X+r.W, r.Y+r.H)
}

// Count returns the number of regions over all pages
func (m *Manifest) Count() int {
	n := 0
	for _, p := range m.Pages {
		n += len(p.Regions)
	}
	return n
}

// Write writes a manifest to a YAML file
func Write(m *Manifest, path string) error {
	data, err := yaml.Marshal(m)
	if err != nil {
		return err
	}

	return os.WriteFile(path, data, 0644)
}

// Read reads a manifest from a YAML file
func Read(path string) (*Manifest, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var m Manifest
	if err := yaml.Unmarshal(data, &m); err != nil {
		return nil, err
	}

	return &m, nil
}
