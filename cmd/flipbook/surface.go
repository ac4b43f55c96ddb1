package main

import (
	"fmt"

	"github.com/rmcsoft/flipbook"
	"github.com/rmcsoft/flipbook/drmsurface"
	"github.com/rmcsoft/flipbook/sdlsurface"
	"github.com/veandco/go-sdl2/sdl"
)

// hostSurface is a surface owned by the command. Poll handles window
// system events and reports whether playback should continue.
type hostSurface interface {
	flipbook.Surface
	Poll() bool
	Close() error
}

type sdlHost struct {
	*sdlsurface.Surface
}

func (sdlHost) Poll() bool {
	for event := sdl.PollEvent(); event != nil; event = sdl.PollEvent() {
		if _, ok := event.(*sdl.QuitEvent); ok {
			return false
		}
	}
	return true
}

type drmHost struct {
	*drmsurface.Surface
}

func (drmHost) Poll() bool { return true }

type nullHost struct {
	flipbook.Surface
}

func (nullHost) Poll() bool   { return true }
func (nullHost) Close() error { return nil }

func openSurface(s settings) (hostSurface, error) {
	switch s.Surface {
	case "sdl":
		surface, err := sdlsurface.New("flipbook", max(s.Width, 1), max(s.Height, 1))
		if err != nil {
			return nil, err
		}
		return sdlHost{surface}, nil
	case "drm":
		surface, err := drmsurface.New(s.Card, flipbook.RGB16)
		if err != nil {
			return nil, err
		}
		return drmHost{surface}, nil
	case "null":
		return nullHost{flipbook.NullSurface()}, nil
	default:
		return nil, fmt.Errorf("unknown surface %q", s.Surface)
	}
}
