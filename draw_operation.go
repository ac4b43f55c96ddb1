package flipbook

import "image"

// DrawOperation is one step of rendering a Frame onto a Surface.
type DrawOperation interface {
	Draw(surface Surface) error
}

type clearOp image.Rectangle

func (o clearOp) Draw(surface Surface) error {
	return surface.Clear(image.Rectangle(o))
}

// NewClearDrawOperation returns an operation clearing rect.
func NewClearDrawOperation(rect image.Rectangle) DrawOperation {
	return clearOp(rect)
}

type blitOp struct {
	rect image.Rectangle
	img  image.Image
}

func (o blitOp) Draw(surface Surface) error {
	return surface.DrawImage(o.rect, o.img)
}

// NewDrawImageOperation returns an operation drawing img scaled into rect.
func NewDrawImageOperation(rect image.Rectangle, img image.Image) DrawOperation {
	return blitOp{rect: rect, img: img}
}
