// Package sdlsurface provides a flipbook.Surface rendering into an SDL2 window.
//
// SDL requires rendering to happen on the thread that created the window,
// so the surface is meant to be used with a flipbook.FrameScheduler stepped
// from the same thread that polls SDL events.
package sdlsurface

import (
	"image"
	"reflect"
	"sync"

	"github.com/rmcsoft/flipbook"
	"github.com/veandco/go-sdl2/sdl"
)

var (
	initOnce sync.Once
	initErr  error
)

func initSdl() error {
	initOnce.Do(func() {
		initErr = sdl.Init(sdl.INIT_VIDEO)
	})
	return initErr
}

// PixelFormatToSDL maps a flipbook pixel format to the SDL one.
func PixelFormatToSDL(pixelFormat flipbook.PixelFormat) (uint32, error) {
	switch pixelFormat {
	case flipbook.RGB16:
		return sdl.PIXELFORMAT_RGB565, nil
	case flipbook.RGB32:
		return sdl.PIXELFORMAT_ARGB8888, nil
	default:
		return 0, flipbook.ErrUnsupportedPixelFormat
	}
}

// Surface draws frames into an SDL window.
type Surface struct {
	window   *sdl.Window
	renderer *sdl.Renderer
	textures map[image.Image]*sdl.Texture
}

var (
	_ flipbook.Surface = (*Surface)(nil)
	_ flipbook.Resizer = (*Surface)(nil)
)

// New creates a window of the given size together with its renderer.
func New(title string, width int, height int) (*Surface, error) {
	if err := initSdl(); err != nil {
		return nil, err
	}
	window, renderer, err := sdl.CreateWindowAndRenderer(int32(width), int32(height), sdl.WINDOW_SHOWN)
	if err != nil {
		return nil, err
	}
	window.SetTitle(title)
	return &Surface{
		window:   window,
		renderer: renderer,
		textures: make(map[image.Image]*sdl.Texture),
	}, nil
}

// Resize sets the window size. An empty size keeps the current one.
func (s *Surface) Resize(width, height int) error {
	if width <= 0 || height <= 0 {
		return nil
	}
	s.window.SetSize(int32(width), int32(height))
	return nil
}

func (s *Surface) Begin() error {
	if err := s.renderer.SetDrawColor(0, 0, 0, 0); err != nil {
		return err
	}
	return s.renderer.Clear()
}

func (s *Surface) Clear(rect image.Rectangle) error {
	if err := s.renderer.SetDrawColor(0, 0, 0, 0); err != nil {
		return err
	}
	sdlRect := toSDLRect(rect)
	return s.renderer.FillRect(&sdlRect)
}

func (s *Surface) DrawImage(rect image.Rectangle, img image.Image) error {
	texture, cached, err := s.texture(img)
	if err != nil {
		return err
	}
	if !cached {
		defer texture.Destroy()
	}
	sdlRect := toSDLRect(rect)
	return s.renderer.Copy(texture, nil, &sdlRect)
}

func (s *Surface) End() error {
	s.renderer.Present()
	return nil
}

// Close releases the textures, the renderer and the window.
func (s *Surface) Close() error {
	for img, texture := range s.textures {
		texture.Destroy()
		delete(s.textures, img)
	}
	if err := s.renderer.Destroy(); err != nil {
		return err
	}
	return s.window.Destroy()
}

// texture returns a streaming texture holding img. Textures of comparable
// image values are cached and reported as such.
func (s *Surface) texture(img image.Image) (*sdl.Texture, bool, error) {
	cacheable := reflect.TypeOf(img).Comparable()
	if cacheable {
		if texture, ok := s.textures[img]; ok {
			return texture, true, nil
		}
	}

	pixmap, ok := img.(*flipbook.Pixmap)
	if !ok {
		pixmap = flipbook.PixmapFromImage(img, flipbook.RGB32)
	}
	sdlPixFormat, err := PixelFormatToSDL(pixmap.PixFormat)
	if err != nil {
		return nil, false, err
	}

	texture, err := s.renderer.CreateTexture(sdlPixFormat, sdl.TEXTUREACCESS_STREAMING,
		int32(pixmap.Width), int32(pixmap.Height))
	if err != nil {
		return nil, false, err
	}

	texturePixels, textureBytePerLine, err := texture.Lock(nil)
	if err != nil {
		texture.Destroy()
		return nil, false, err
	}
	rowSize := pixmap.Width * flipbook.GetPixelSize(pixmap.PixFormat)
	for rowNum := 0; rowNum < pixmap.Height; rowNum++ {
		pixmapOffset := rowNum * pixmap.BytePerLine
		textureOffset := rowNum * textureBytePerLine
		copy(texturePixels[textureOffset:textureOffset+rowSize], pixmap.Data[pixmapOffset:pixmapOffset+rowSize])
	}
	texture.Unlock()

	if cacheable {
		s.textures[img] = texture
	}
	return texture, cacheable, nil
}

func toSDLRect(rect image.Rectangle) sdl.Rect {
	return sdl.Rect{
		X: int32(rect.Min.X),
		Y: int32(rect.Min.Y),
		W: int32(rect.Dx()),
		H: int32(rect.Dy()),
	}
}
