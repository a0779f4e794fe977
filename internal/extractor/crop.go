package extractor

import (
	"fmt"
	"image"
	"image/png"
	"os"

	"golang.org/x/image/draw"
)

// RegionFileName: <name>_logo01.png, нумерация с 1 в порядке чтения.
func RegionFileName(name string, index int) string {
	return fmt.Sprintf("%s_logo%02d.png", name, index+1)
}

// Crop копирует box из img в новое изображение с началом в (0,0).
func Crop(img image.Image, box image.Rectangle) *image.NRGBA {
	box = box.Intersect(img.Bounds())
	dst := image.NewNRGBA(image.Rect(0, 0, box.Dx(), box.Dy()))
	draw.Copy(dst, image.Point{}, img, box, draw.Src, nil)
	return dst
}

// SaveCrop пишет вырезку в PNG и возвращает размер файла в байтах.
func SaveCrop(img image.Image, box image.Rectangle, path string) (int64, error) {
	f, err := os.Create(path)
	if err != nil {
		return 0, err
	}

	if err := png.Encode(f, Crop(img, box)); err != nil {
		f.Close()
		return 0, err
	}
	if err := f.Close(); err != nil {
		return 0, err
	}

	fi, err := os.Stat(path)
	if err != nil {
		return 0, err
	}
	return fi.Size(), nil
}
