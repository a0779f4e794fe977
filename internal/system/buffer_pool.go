package system

import (
	"image"
	"sync"
	"sync/atomic"
)

// ImagePool переиспользует пиксельные буферы страниц. Буфер подходит любой
// странице, площадь которой не больше его емкости, поэтому страницы PDF и
// изображения разного размера делят один пул.
type ImagePool struct {
	buffers sync.Pool // *[]uint8

	hits, misses atomic.Int64
}

// PoolStats показывает, сколько запросов обслужено готовым буфером.
type PoolStats struct {
	Hits, Misses int64
}

var globalPool = NewImagePool()

func NewImagePool() *ImagePool {
	return &ImagePool{}
}

// GetImage возвращает *image.RGBA с началом в rect.Min из общего пула.
// Содержимое буфера не очищается.
func GetImage(rect image.Rectangle) *image.RGBA {
	return globalPool.Get(rect)
}

// PutImage возвращает буфер изображения в общий пул.
func PutImage(img *image.RGBA) {
	globalPool.Put(img)
}

// GlobalPoolStats возвращает счетчики общего пула.
func GlobalPoolStats() PoolStats {
	return globalPool.Stats()
}

func (p *ImagePool) Get(rect image.Rectangle) *image.RGBA {
	n := 4 * rect.Dx() * rect.Dy()

	var pix []uint8
	if buf, ok := p.buffers.Get().(*[]uint8); ok && cap(*buf) >= n {
		pix = (*buf)[:n]
		p.hits.Add(1)
	} else {
		// Маленький буфер не возвращаем: его место займет новый, большего размера
		pix = make([]uint8, n)
		p.misses.Add(1)
	}

	return &image.RGBA{Pix: pix, Stride: 4 * rect.Dx(), Rect: rect}
}

func (p *ImagePool) Put(img *image.RGBA) {
	if img == nil || cap(img.Pix) == 0 {
		return
	}
	pix := img.Pix[:0]
	p.buffers.Put(&pix)
}

func (p *ImagePool) Stats() PoolStats {
	return PoolStats{Hits: p.hits.Load(), Misses: p.misses.Load()}
}
