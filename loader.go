package flipbook

import (
	"context"
	"fmt"
	"image"
	_ "image/gif"  // GIF frames
	_ "image/jpeg" // JPEG frames
	_ "image/png"  // PNG frames
	"io"
	"path"
	"strings"
	"sync"
	"time"

	"github.com/nfnt/resize"
	"github.com/sirupsen/logrus"
	_ "golang.org/x/image/bmp"  // BMP frames
	_ "golang.org/x/image/tiff" // TIFF frames
	_ "golang.org/x/image/webp" // WebP frames
	"golang.org/x/sync/semaphore"
)

const defaultMaxConcurrentLoads = 4

// LoaderOptions configures a Loader.
type LoaderOptions struct {
	// Fetcher fetches image data. DefaultFetcher is used when nil.
	Fetcher Fetcher
	// Size, when non-zero, is the size decoded images are scaled to.
	Size image.Point
	// MaxConcurrent bounds the number of fetches in flight.
	MaxConcurrent int64
	// Timeout bounds each fetch. Zero means no timeout.
	Timeout time.Duration
	Logger  logrus.FieldLogger
}

// Loader turns source locators into a FrameSet.
type Loader struct {
	fetcher Fetcher
	size    image.Point
	sem     *semaphore.Weighted
	timeout time.Duration
	logger  logrus.FieldLogger
}

// NewLoader creates a Loader.
func NewLoader(opts LoaderOptions) *Loader {
	if opts.Fetcher == nil {
		opts.Fetcher = DefaultFetcher()
	}
	if opts.MaxConcurrent <= 0 {
		opts.MaxConcurrent = defaultMaxConcurrentLoads
	}
	if opts.Logger == nil {
		opts.Logger = logrus.StandardLogger()
	}
	return &Loader{
		fetcher: opts.Fetcher,
		size:    opts.Size,
		sem:     semaphore.NewWeighted(opts.MaxConcurrent),
		timeout: opts.Timeout,
		logger:  opts.Logger.WithField("component", "loader"),
	}
}

// LoadRequest describes one Load call.
type LoadRequest struct {
	Locators []string
	// Frames receives the decoded images. It must have one slot per
	// locator. A new FrameSet is created when nil.
	Frames *FrameSet
	// Events receives loading, ready and error events.
	Events *Emitter
	// Dispatch runs completion handling. When nil it runs on the
	// fetching goroutine.
	Dispatch func(func())
	// OnReady is called after the ready event.
	OnReady func()
}

// Load starts fetching every locator and returns the FrameSet the
// results are stored in. It does not wait for any fetch to finish.
// It panics if req.Frames does not have one slot per locator.
func (l *Loader) Load(ctx context.Context, req LoadRequest) *FrameSet {
	frames := req.Frames
	if frames == nil {
		frames = newFrameSet(len(req.Locators))
	}
	events := req.Events
	if events == nil {
		events = NewEmitter()
	}
	dispatch := req.Dispatch
	if dispatch == nil {
		dispatch = func(fn func()) { fn() }
	}

	var (
		mutex sync.Mutex
		count int
		total = len(req.Locators)
	)
	if frames.Len() != len(req.Locators) {
		panic(fmt.Sprintf("flipbook: frame set has %d slots for %d locators", frames.Len(), len(req.Locators)))
	}
	ready := func() {
		events.Emit(Event{Type: EventReady})
		if req.OnReady != nil {
			req.OnReady()
		}
	}

	if total == 0 {
		dispatch(ready)
		return frames
	}

	for i, locator := range req.Locators {
		go func(index int, locator string) {
			img, err := l.load(ctx, locator)
			dispatch(func() {
				mutex.Lock()
				defer mutex.Unlock()

				log := l.logger.WithFields(logrus.Fields{"index": index, "locator": locator})
				if err != nil {
					log.WithError(err).Warn("Image load failed")
					events.Emit(Event{Type: EventError, Locator: locator, Err: err})
					return
				}

				frames.set(index, img)
				count++
				log.Debugf("Image loaded (%d/%d)", count, total)
				events.Emit(Event{Type: EventLoading, Count: count, Total: total})
				if count == total {
					ready()
				}
			})
		}(i, locator)
	}
	return frames
}

func (l *Loader) load(ctx context.Context, locator string) (image.Image, error) {
	if err := l.sem.Acquire(ctx, 1); err != nil {
		return nil, err
	}
	defer l.sem.Release(1)

	if l.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, l.timeout)
		defer cancel()
	}

	r, err := l.fetcher.Fetch(ctx, locator)
	if err != nil {
		return nil, err
	}
	defer r.Close()

	img, err := DecodeFrame(r, locator)
	if err != nil {
		return nil, fmt.Errorf("decode %s: %w", locator, err)
	}

	if l.size.X > 0 && l.size.Y > 0 && img.Bounds().Size() != l.size {
		img = resize.Resize(uint(l.size.X), uint(l.size.Y), img, resize.Bilinear)
	}
	return img, nil
}

// DecodeFrame decodes one frame image. Locators with the packed pixmap
// extension are read as packed pixmaps, anything else by content sniffing.
func DecodeFrame(r io.Reader, locator string) (image.Image, error) {
	if strings.EqualFold(path.Ext(locator), PackedPixmapExt) {
		packed, err := ReadPackedPixmap(r)
		if err != nil {
			return nil, err
		}
		return packed.Unpack()
	}
	img, _, err := image.Decode(r)
	return img, err
}
