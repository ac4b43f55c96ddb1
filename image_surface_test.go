package flipbook

import (
	"image"
	"image/color"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/image/draw"
)

func TestImageSurface_DrawSameSize(t *testing.T) {
	surface := NewImageSurface(image.NewRGBA(image.Rect(0, 0, 4, 4)))
	frame := Frame{DrawOperations: []DrawOperation{
		NewDrawImageOperation(image.Rect(1, 1, 3, 3), solidImage(2, 2, frameColor(5))),
	}}
	require.NoError(t, frame.Render(surface))

	dst := surface.Image()
	assert.Equal(t, color.RGBA{}, color.RGBAModel.Convert(dst.At(0, 0)))
	assert.Equal(t, frameColor(5), color.RGBAModel.Convert(dst.At(1, 1)))
	assert.Equal(t, frameColor(5), color.RGBAModel.Convert(dst.At(2, 2)))
	assert.Equal(t, color.RGBA{}, color.RGBAModel.Convert(dst.At(3, 3)))
}

func TestImageSurface_DrawScaled(t *testing.T) {
	surface := NewImageSurface(image.NewRGBA(image.Rect(0, 0, 6, 4)))
	surface.Scaler = draw.NearestNeighbor
	frame := Frame{DrawOperations: []DrawOperation{
		NewDrawImageOperation(image.Rect(0, 0, 6, 4), solidImage(2, 2, frameColor(7))),
	}}
	require.NoError(t, frame.Render(surface))

	dst := surface.Image()
	for _, p := range []image.Point{{0, 0}, {5, 3}, {3, 2}} {
		assert.Equal(t, frameColor(7), color.RGBAModel.Convert(dst.At(p.X, p.Y)), p.String())
	}
}

func TestImageSurface_ClearThenDraw(t *testing.T) {
	surface := NewImageSurface(solidImage(4, 4, color.White))
	half := image.NewRGBA(image.Rect(0, 0, 4, 4))
	half.Set(0, 0, frameColor(3))

	frame := Frame{DrawOperations: []DrawOperation{
		NewClearDrawOperation(image.Rect(0, 0, 4, 4)),
		NewDrawImageOperation(image.Rect(0, 0, 4, 4), half),
	}}
	require.NoError(t, frame.Render(surface))

	dst := surface.Image()
	assert.Equal(t, frameColor(3), color.RGBAModel.Convert(dst.At(0, 0)))
	assert.Equal(t, color.RGBA{}, color.RGBAModel.Convert(dst.At(2, 2)))
}

func TestImageSurface_Resize(t *testing.T) {
	surface := NewImageSurface(image.NewRGBA(image.Rect(0, 0, 1, 1)))
	require.NoError(t, surface.Resize(8, 6))
	assert.Equal(t, image.Rect(0, 0, 8, 6), surface.Image().Bounds())
}

func TestImageSurface_PixmapTarget(t *testing.T) {
	pixmap := NewPixmap(2, 2, RGB16)
	surface := NewImageSurface(pixmap)
	frame := Frame{DrawOperations: []DrawOperation{
		NewDrawImageOperation(pixmap.Bounds(), solidImage(2, 2, color.RGBA{R: 0xff, A: 0xff})),
	}}
	require.NoError(t, frame.Render(surface))
	assert.Equal(t, color.RGBA{R: 0xff, A: 0xff}, pixmap.At(1, 1))
}

func TestImageSurface_PixmapToPixmap(t *testing.T) {
	red := color.RGBA{R: 0xff, A: 0xff}
	dst := NewPixmap(4, 4, RGB16)
	surface := NewImageSurface(dst)

	same := PixmapFromImage(solidImage(2, 2, red), RGB16)
	other := PixmapFromImage(solidImage(2, 2, red), RGB32)
	frame := Frame{DrawOperations: []DrawOperation{
		NewDrawImageOperation(image.Rect(0, 0, 2, 2), same),
		NewDrawImageOperation(image.Rect(2, 2, 4, 4), other),
	}}
	require.NoError(t, frame.Render(surface))

	for _, p := range []image.Point{{0, 0}, {1, 1}, {2, 2}, {3, 3}} {
		assert.Equal(t, red, dst.At(p.X, p.Y), p.String())
	}
	assert.Equal(t, color.RGBA{A: 0xff}, dst.At(3, 0))
}
