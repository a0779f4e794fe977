package source

import (
	"fmt"
	"image"
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"
	"os"
	"path/filepath"
	"sort"
	"strings"

	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/tiff"
	_ "golang.org/x/image/webp"
)

// ImageExtensions перечисляет форматы, для которых зарегистрированы декодеры.
var ImageExtensions = []string{".png", ".jpg", ".jpeg", ".gif", ".bmp", ".tif", ".tiff", ".webp"}

func IsImage(name string) bool {
	ext := strings.ToLower(filepath.Ext(name))
	for _, e := range ImageExtensions {
		if ext == e {
			return true
		}
	}
	return false
}

func IsPDF(name string) bool {
	return strings.EqualFold(filepath.Ext(name), ".pdf")
}

// Stem возвращает имя файла без каталога и расширения.
func Stem(path string) string {
	base := filepath.Base(path)
	return strings.TrimSuffix(base, filepath.Ext(base))
}

type ImageSource struct {
	paths []string
	names []string
}

func NewImageSource(path string) (*ImageSource, error) {
	fi, err := os.Stat(path)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrImageLoad, err)
	}

	var paths []string
	if fi.IsDir() {
		entries, err := os.ReadDir(path)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrImageLoad, err)
		}
		for _, entry := range entries {
			if !entry.IsDir() && IsImage(entry.Name()) {
				paths = append(paths, filepath.Join(path, entry.Name()))
			}
		}
		sort.Strings(paths)
	} else {
		paths = []string{path}
	}

	return &ImageSource{paths: paths, names: pageNames(paths)}, nil
}

// pageNames выдает каждому файлу уникальную основу имени. Файлы с общей
// основой (logo.png и logo.jpg) получают расширение в имени, иначе их
// вырезки перезаписали бы друг друга. Регистр не различается.
func pageNames(paths []string) []string {
	stems := make(map[string]int, len(paths))
	for _, p := range paths {
		stems[strings.ToLower(Stem(p))]++
	}

	taken := make(map[string]bool, len(paths))
	for _, p := range paths {
		if stems[strings.ToLower(Stem(p))] == 1 {
			taken[strings.ToLower(Stem(p))] = true
		}
	}

	names := make([]string, len(paths))
	for i, p := range paths {
		name := Stem(p)
		if stems[strings.ToLower(name)] > 1 {
			base := name + "_" + strings.ToLower(strings.TrimPrefix(filepath.Ext(p), "."))
			name = base
			for n := 2; taken[strings.ToLower(name)]; n++ {
				name = fmt.Sprintf("%s_%d", base, n)
			}
		}
		taken[strings.ToLower(name)] = true
		names[i] = name
	}
	return names
}

func (s *ImageSource) PageCount() int {
	return len(s.paths)
}

func (s *ImageSource) PageName(index int) string {
	return s.names[index]
}

func (s *ImageSource) Opaque() bool {
	return false
}

func (s *ImageSource) GetPageDimensions(index int) (int, int, error) {
	f, err := os.Open(s.paths[index])
	if err != nil {
		return 0, 0, fmt.Errorf("%w: %v", ErrImageLoad, err)
	}
	defer f.Close()

	cfg, _, err := image.DecodeConfig(f)
	if err != nil {
		return 0, 0, fmt.Errorf("%w: %s: %v", ErrImageLoad, s.paths[index], err)
	}
	return cfg.Width, cfg.Height, nil
}

// RenderPage декодирует файл; dpi для растровых изображений не используется.
func (s *ImageSource) RenderPage(index int, dpi int) (image.Image, error) {
	f, err := os.Open(s.paths[index])
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrImageLoad, err)
	}
	defer f.Close()

	img, _, err := image.Decode(f)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrImageLoad, s.paths[index], err)
	}
	return img, nil
}

func (s *ImageSource) Close() error {
	return nil
}

// Open выбирает реализацию Source по расширению.
func Open(path string) (Source, error) {
	if IsPDF(path) {
		return NewFitzPDFSource(path)
	}
	return NewImageSource(path)
}
