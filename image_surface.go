package flipbook

import (
	"image"
	"sync"

	"golang.org/x/image/draw"
)

// ImageSurface is a Surface that renders into an in-memory draw.Image.
// Images whose size differs from the target rectangle are scaled with
// Scaler, draw.BiLinear by default.
type ImageSurface struct {
	Scaler draw.Scaler

	mutex sync.Mutex
	dst   draw.Image
}

var _ Resizer = (*ImageSurface)(nil)

// NewImageSurface returns a surface drawing into dst.
func NewImageSurface(dst draw.Image) *ImageSurface {
	return &ImageSurface{Scaler: draw.BiLinear, dst: dst}
}

// Image returns the image currently drawn into.
func (s *ImageSurface) Image() draw.Image {
	s.mutex.Lock()
	defer s.mutex.Unlock()
	return s.dst
}

// Resize replaces the destination with an empty RGBA image of the given size.
func (s *ImageSurface) Resize(width, height int) error {
	s.mutex.Lock()
	s.dst = image.NewRGBA(image.Rect(0, 0, width, height))
	s.mutex.Unlock()
	return nil
}

func (s *ImageSurface) Begin() error {
	s.mutex.Lock()
	return nil
}

func (s *ImageSurface) Clear(rect image.Rectangle) error {
	draw.Draw(s.dst, rect, image.Transparent, image.Point{}, draw.Src)
	return nil
}

func (s *ImageSurface) DrawImage(rect image.Rectangle, img image.Image) error {
	src := img.Bounds()
	if dst, ok := s.dst.(*Pixmap); ok {
		// Pixmaps carry no alpha, so a raw copy matches draw.Over.
		if pixmap, ok := img.(*Pixmap); ok && src.Size() == rect.Size() && dst.copyFrom(rect.Min, pixmap) {
			return nil
		}
	}
	if src.Size() == rect.Size() {
		draw.Copy(s.dst, rect.Min, img, src, draw.Over, nil)
		return nil
	}
	scaler := s.Scaler
	if scaler == nil {
		scaler = draw.BiLinear
	}
	scaler.Scale(s.dst, rect, img, src, draw.Over, nil)
	return nil
}

func (s *ImageSurface) End() error {
	s.mutex.Unlock()
	return nil
}
