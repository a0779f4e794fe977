package source

import (
	"errors"
	"fmt"
	"image"

	"github.com/gen2brain/go-fitz"
)

// ErrImageLoad отмечает отсутствующий или нечитаемый источник.
var ErrImageLoad = errors.New("image load error")

type Source interface {
	PageCount() int
	// PageName возвращает основу имени для файлов, полученных со страницы.
	PageName(index int) string
	// Opaque сообщает, что страницы не содержат прозрачности (нужен ключ фона).
	Opaque() bool
	GetPageDimensions(index int) (width, height int, err error)
	RenderPage(index int, dpi int) (image.Image, error)
	Close() error
}

type FitzPDFSource struct {
	doc  *fitz.Document
	path string
	stem string
}

func NewFitzPDFSource(path string) (*FitzPDFSource, error) {
	doc, err := fitz.New(path)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrImageLoad, path, err)
	}
	return &FitzPDFSource{doc: doc, path: path, stem: Stem(path)}, nil
}

func (f *FitzPDFSource) PageCount() int {
	return f.doc.NumPage()
}

func (f *FitzPDFSource) PageName(index int) string {
	if f.PageCount() == 1 {
		return f.stem
	}
	return fmt.Sprintf("%s_p%02d", f.stem, index+1)
}

func (f *FitzPDFSource) Opaque() bool {
	return true
}

func (f *FitzPDFSource) GetPageDimensions(index int) (int, int, error) {
	rect, err := f.doc.Bound(index)
	if err != nil {
		return 0, 0, err
	}
	return rect.Dx(), rect.Dy(), nil
}

func (f *FitzPDFSource) RenderPage(index int, dpi int) (image.Image, error) {
	img, err := f.doc.ImageDPI(index, float64(dpi))
	if err != nil {
		return nil, fmt.Errorf("%w: %s страница %d: %v", ErrImageLoad, f.path, index+1, err)
	}
	return img, nil
}

func (f *FitzPDFSource) Close() error {
	return f.doc.Close()
}
