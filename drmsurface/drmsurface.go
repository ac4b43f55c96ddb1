// Package drmsurface provides a flipbook.Surface drawing straight into
// KMS/DRM dumb framebuffers, for devices without a window system.
package drmsurface

import (
	"errors"
	"fmt"
	"image"
	"os"
	"syscall"

	"github.com/rmcsoft/flipbook"
	drm "github.com/rmcsoft/godrm"
	"github.com/rmcsoft/godrm/mode"
)

type framebuffer struct {
	handle uint32
	id     uint32
	buf    []byte

	pixmap *flipbook.Pixmap
}

// Surface renders into the back framebuffer and flips it onto the CRTC
// on End.
type Surface struct {
	card    *os.File
	modeset mode.Modeset

	pixFormat flipbook.PixelFormat

	framebuffers       []*framebuffer
	backFrameBufferNum int
	canvas             *flipbook.ImageSurface

	isActive bool
}

var _ flipbook.Surface = (*Surface)(nil)

// New opens DRM card cardNum and allocates two framebuffers in pixFormat
// for its first connected output.
func New(cardNum int, pixFormat flipbook.PixelFormat) (*Surface, error) {
	card, err := drm.OpenCard(cardNum)
	if err != nil {
		return nil, err
	}

	if !drm.HasDumbBuffer(card) {
		card.Close()
		return nil, fmt.Errorf("drm device %v does not support dumb buffers", cardNum)
	}

	simpleMSet, err := mode.NewSimpleModeset(card)
	if err != nil {
		card.Close()
		return nil, err
	}
	if len(simpleMSet.Modesets) == 0 {
		card.Close()
		return nil, errors.New("drmsurface: no modesets")
	}

	s := &Surface{
		card:      card,
		modeset:   simpleMSet.Modesets[0],
		pixFormat: pixFormat,
	}
	for i := 0; i < 2; i++ {
		fb, err := s.createFramebuffer()
		if err != nil {
			s.Close()
			return nil, err
		}
		s.framebuffers = append(s.framebuffers, fb)
	}
	return s, nil
}

// Width returns the width of the output mode.
func (s *Surface) Width() int {
	return s.framebuffers[0].pixmap.Width
}

// Height returns the height of the output mode.
func (s *Surface) Height() int {
	return s.framebuffers[0].pixmap.Height
}

func (s *Surface) Begin() error {
	if s.isActive {
		return errors.New("drmsurface: already active")
	}
	s.isActive = true
	s.canvas = flipbook.NewImageSurface(s.framebuffers[s.backFrameBufferNum].pixmap)
	return s.canvas.Begin()
}

func (s *Surface) Clear(rect image.Rectangle) error {
	if !s.isActive {
		return errors.New("drmsurface: not active")
	}
	s.framebuffers[s.backFrameBufferNum].pixmap.Clear(rect)
	return nil
}

// DrawImage draws img into rect of the back buffer. A *flipbook.Pixmap
// in the framebuffer pixel format is copied row by row when it needs no
// scaling, anything else goes through the scaler.
func (s *Surface) DrawImage(rect image.Rectangle, img image.Image) error {
	if !s.isActive {
		return errors.New("drmsurface: not active")
	}
	return s.canvas.DrawImage(rect, img)
}

func (s *Surface) End() error {
	if !s.isActive {
		return errors.New("drmsurface: not active")
	}
	s.canvas.End()

	backFrameBuffer := s.framebuffers[s.backFrameBufferNum]
	err := mode.SetCrtc(s.card, s.modeset.Crtc, backFrameBuffer.id,
		0, 0, &s.modeset.Conn, 1, &s.modeset.Mode)

	s.isActive = false
	s.backFrameBufferNum = (s.backFrameBufferNum + 1) % len(s.framebuffers)
	return err
}

// Close releases the framebuffers and the card.
func (s *Surface) Close() error {
	for _, fb := range s.framebuffers {
		s.destroyFramebuffer(fb)
	}
	s.framebuffers = nil
	return s.card.Close()
}

func (s *Surface) createFramebuffer() (*framebuffer, error) {
	fb := &framebuffer{}
	var err error

	defer func() {
		if err != nil {
			s.destroyFramebuffer(fb)
		}
	}()

	width := s.modeset.Width
	height := s.modeset.Height
	bpp := flipbook.GetPixelSize(s.pixFormat) * 8
	depth := flipbook.GetPixelDepth(s.pixFormat)

	fbInfo, err := mode.CreateFB(s.card, uint16(width), uint16(height), uint32(bpp))
	if err != nil {
		return nil, err
	}

	fb.handle = fbInfo.Handle
	fb.id, err = mode.AddFB(s.card, uint16(width), uint16(height),
		uint8(depth), uint8(bpp), fbInfo.Pitch, fb.handle)
	if err != nil {
		return nil, err
	}

	offset, err := mode.MapDumb(s.card, fb.handle)
	if err != nil {
		return nil, err
	}

	fb.buf, err = syscall.Mmap(int(s.card.Fd()), int64(offset), int(fbInfo.Size),
		syscall.PROT_READ|syscall.PROT_WRITE, syscall.MAP_SHARED)
	if err != nil {
		return nil, err
	}

	fb.pixmap = &flipbook.Pixmap{
		Data:        fb.buf,
		Width:       int(width),
		Height:      int(height),
		BytePerLine: int(fbInfo.Pitch),
		PixFormat:   s.pixFormat,
	}
	return fb, nil
}

func (s *Surface) destroyFramebuffer(fb *framebuffer) {
	if fb == nil || s.card == nil {
		return
	}
	if fb.id != 0 {
		mode.RmFB(s.card, fb.id)
		fb.id = 0
	}
	if fb.handle != 0 {
		mode.DestroyDumb(s.card, fb.handle)
		fb.handle = 0
	}
	if fb.buf != nil {
		syscall.Munmap(fb.buf)
		fb.buf = nil
	}
}
