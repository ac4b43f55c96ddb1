package flipbook

import (
	"image"
	"image/color"

	"golang.org/x/image/draw"
)

// Pixmap contains a collection of pixels in one of the device pixel formats.
// Pixmap implements draw.Image so frames can be rendered straight into
// device memory.
type Pixmap struct {
	Data        []byte
	Width       int
	Height      int
	BytePerLine int
	PixFormat   PixelFormat
}

var _ draw.Image = (*Pixmap)(nil)

// NewPixmap allocates a zeroed pixmap.
func NewPixmap(width, height int, pixFormat PixelFormat) *Pixmap {
	bytePerLine := width * GetPixelSize(pixFormat)
	return &Pixmap{
		Data:        make([]byte, bytePerLine*height),
		Width:       width,
		Height:      height,
		BytePerLine: bytePerLine,
		PixFormat:   pixFormat,
	}
}

// PixmapFromImage converts img into a pixmap of the given format.
func PixmapFromImage(img image.Image, pixFormat PixelFormat) *Pixmap {
	b := img.Bounds()
	pixmap := NewPixmap(b.Dx(), b.Dy(), pixFormat)
	draw.Copy(pixmap, image.Point{}, img, b, draw.Src, nil)
	return pixmap
}

// ColorModel implements the image.Image interface.
func (pixmap *Pixmap) ColorModel() color.Model {
	return color.RGBAModel
}

// Bounds implements the image.Image interface.
func (pixmap *Pixmap) Bounds() image.Rectangle {
	return image.Rect(0, 0, pixmap.Width, pixmap.Height)
}

func (pixmap *Pixmap) offset(x, y int) int {
	return y*pixmap.BytePerLine + x*GetPixelSize(pixmap.PixFormat)
}

// At implements the image.Image interface.
func (pixmap *Pixmap) At(x, y int) color.Color {
	if !(image.Point{x, y}.In(pixmap.Bounds())) {
		return color.RGBA{}
	}
	pix := pixmap.Data[pixmap.offset(x, y):]
	if pixmap.PixFormat == RGB16 {
		v := uint16(pix[0]) | uint16(pix[1])<<8
		r := uint8(v>>11) & 0x1f
		g := uint8(v>>5) & 0x3f
		b := uint8(v) & 0x1f
		return color.RGBA{
			R: r<<3 | r>>2,
			G: g<<2 | g>>4,
			B: b<<3 | b>>2,
			A: 0xff,
		}
	}
	return color.RGBA{R: pix[2], G: pix[1], B: pix[0], A: 0xff}
}

// Set implements the draw.Image interface. Alpha is discarded.
func (pixmap *Pixmap) Set(x, y int, c color.Color) {
	if !(image.Point{x, y}.In(pixmap.Bounds())) {
		return
	}
	rgba := color.RGBAModel.Convert(c).(color.RGBA)
	pix := pixmap.Data[pixmap.offset(x, y):]
	if pixmap.PixFormat == RGB16 {
		v := uint16(rgba.R>>3)<<11 | uint16(rgba.G>>2)<<5 | uint16(rgba.B>>3)
		pix[0] = byte(v)
		pix[1] = byte(v >> 8)
		return
	}
	pix[0] = rgba.B
	pix[1] = rgba.G
	pix[2] = rgba.R
	pix[3] = 0xff
}

// Clear sets every pixel inside rect to zero.
func (pixmap *Pixmap) Clear(rect image.Rectangle) {
	r := rect.Intersect(pixmap.Bounds())
	if r.Empty() {
		return
	}
	pixSize := GetPixelSize(pixmap.PixFormat)
	for y := r.Min.Y; y < r.Max.Y; y++ {
		start := pixmap.offset(r.Min.X, y)
		row := pixmap.Data[start : start+r.Dx()*pixSize]
		for i := range row {
			row[i] = 0
		}
	}
}

// copyFrom copies src row by row into pixmap with its top-left corner at
// dp. It copies nothing and returns false when the pixel formats differ
// or src does not fit.
func (pixmap *Pixmap) copyFrom(dp image.Point, src *Pixmap) bool {
	if src.PixFormat != pixmap.PixFormat {
		return false
	}
	if !(image.Rectangle{Min: dp, Max: dp.Add(src.Bounds().Size())}).In(pixmap.Bounds()) {
		return false
	}
	rowLen := src.Width * GetPixelSize(src.PixFormat)
	for y := 0; y < src.Height; y++ {
		srcRow := src.Data[y*src.BytePerLine:][:rowLen]
		copy(pixmap.Data[pixmap.offset(dp.X, dp.Y+y):][:rowLen], srcRow)
	}
	return true
}
