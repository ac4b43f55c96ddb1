package flipbook

import (
	"errors"
	"fmt"

	"github.com/sirupsen/logrus"
)

const (
	// DefaultFPS is the frame rate used when Config.FPS is zero.
	DefaultFPS = 24
	// LoopForever repeats playback until Stop is called.
	LoopForever = -1
)

// ErrInvalidConfig is returned by NewPlayer for unusable configurations.
var ErrInvalidConfig = errors.New("invalid player config")

// Config configures a Player. The zero value is usable and plays
// nothing onto a NullSurface.
type Config struct {
	// Surface frames are drawn onto. NullSurface when nil.
	Surface Surface
	// Width and Height of the drawn frame, in pixels.
	Width  int
	Height int
	// Images are the frame source locators, in playback order.
	Images []string
	// FPS is the target frame rate. DefaultFPS when zero.
	FPS float64
	// Loop is the number of repeats after the first pass: 0 plays once,
	// LoopForever never stops on its own.
	Loop int
	// Alternate reverses direction at each boundary instead of
	// restarting from the entry edge.
	Alternate bool
	// Transparent clears the frame rectangle before each draw.
	Transparent bool
	// AutoPlay starts playback once all images are loaded.
	AutoPlay bool

	// PrescaleFrames scales images to Width x Height once at load time.
	// Ignored when Loader is set.
	PrescaleFrames bool

	Scheduler Scheduler
	Loader    *Loader
	Clock     Clock
	Logger    logrus.FieldLogger
}

// DefaultConfig returns a Config with the documented defaults filled in.
func DefaultConfig() Config {
	return Config{FPS: DefaultFPS}
}

func (c *Config) validate() error {
	if c.Width < 0 || c.Height < 0 {
		return fmt.Errorf("%w: negative size %dx%d", ErrInvalidConfig, c.Width, c.Height)
	}
	if c.FPS < 0 {
		return fmt.Errorf("%w: negative fps %v", ErrInvalidConfig, c.FPS)
	}
	if c.Loop < LoopForever {
		return fmt.Errorf("%w: loop %d", ErrInvalidConfig, c.Loop)
	}
	return nil
}

func (c *Config) setDefaults() {
	if c.FPS == 0 {
		c.FPS = DefaultFPS
	}
	if c.Surface == nil {
		c.Surface = NullSurface()
	}
	if c.Scheduler == nil {
		c.Scheduler = DefaultScheduler()
	}
	if c.Clock == nil {
		c.Clock = SystemClock()
	}
	if c.Logger == nil {
		c.Logger = logrus.StandardLogger()
	}
	if c.Loader == nil {
		opts := LoaderOptions{Logger: c.Logger}
		if c.PrescaleFrames {
			opts.Size.X, opts.Size.Y = c.Width, c.Height
		}
		c.Loader = NewLoader(opts)
	}
	c.Images = append([]string(nil), c.Images...)
}
