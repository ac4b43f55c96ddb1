package flipbook

import (
	"image"
)

// Surface is the interface definition for drawing frames.
// Every frame is drawn between a Begin and an End call.
type Surface interface {
	Begin() error
	Clear(rect image.Rectangle) error
	DrawImage(rect image.Rectangle, img image.Image) error
	End() error
}

// Resizer is implemented by surfaces whose drawable area can be set
// to the configured frame geometry.
type Resizer interface {
	Resize(width, height int) error
}
