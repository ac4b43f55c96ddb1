package flipbook

import (
	"image"
)

type nullSurface struct {
}

// NullSurface returns a surface that discards all drawing.
func NullSurface() Surface {
	return nullSurface{}
}

func (nullSurface) Begin() error {
	return nil
}

func (nullSurface) Clear(rect image.Rectangle) error {
	return nil
}

func (nullSurface) DrawImage(rect image.Rectangle, img image.Image) error {
	return nil
}

func (nullSurface) End() error {
	return nil
}
