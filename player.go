package flipbook

import (
	"context"
	"image"
	"sync"
	"time"

	"github.com/samber/lo"
	"github.com/sirupsen/logrus"
)

// Player plays a FrameSet onto a Surface at a fixed frame rate.
type Player struct {
	config    Config
	surface   Surface
	scheduler Scheduler
	clock     Clock
	logger    logrus.FieldLogger
	events    *Emitter
	frames    *FrameSet
	rect      image.Rectangle
	interval  time.Duration

	mutex            sync.Mutex
	startFrame       int
	endFrame         int
	currentFrame     int
	isPlaying        bool
	descending       bool
	hasTraversedOnce bool
	repeatCount      int
	lastTick         time.Time
	tickHandle       Handle
	tickGen          uint64
	armed            bool
	pending          []Event
}

// NewPlayer creates a Player and starts loading config.Images. ctx bounds
// the image loads only.
//
// Load completions are delivered through the scheduler, so listeners
// registered with On before the scheduler next steps see every event.
func NewPlayer(ctx context.Context, config Config) (*Player, error) {
	if err := config.validate(); err != nil {
		return nil, err
	}
	config.setDefaults()

	player := &Player{
		config:    config,
		surface:   config.Surface,
		scheduler: config.Scheduler,
		clock:     config.Clock,
		logger:    config.Logger.WithField("component", "player"),
		events:    NewEmitter(),
		rect:      image.Rect(0, 0, config.Width, config.Height),
		interval:  time.Duration(float64(time.Second) / config.FPS),
		endFrame:  len(config.Images) - 1,
	}

	if resizer, ok := player.surface.(Resizer); ok {
		if err := resizer.Resize(config.Width, config.Height); err != nil {
			return nil, err
		}
	}

	player.frames = newFrameSet(len(config.Images))
	config.Loader.Load(ctx, LoadRequest{
		Locators: config.Images,
		Frames:   player.frames,
		Events:   player.events,
		Dispatch: func(fn func()) { player.scheduler.Request(fn) },
		OnReady: func() {
			if config.AutoPlay {
				player.Play(false)
			}
		},
	})
	return player, nil
}

// On registers listener for events of type t and returns a function
// removing it.
func (player *Player) On(t EventType, listener Listener) func() {
	return player.events.On(t, listener)
}

// Frames returns the frame set being loaded or played.
func (player *Player) Frames() *FrameSet {
	return player.frames
}

// Frame returns the current frame index.
func (player *Player) Frame() int {
	player.mutex.Lock()
	defer player.mutex.Unlock()
	return player.currentFrame
}

// IsPlaying reports whether playback is running.
func (player *Player) IsPlaying() bool {
	player.mutex.Lock()
	defer player.mutex.Unlock()
	return player.isPlaying
}

// Play starts playback in the given direction. It does nothing while
// already playing.
func (player *Player) Play(descending bool) {
	player.do(func() {
		if player.isPlaying {
			return
		}
		player.isPlaying = true
		player.hasTraversedOnce = false
		player.descending = descending
		player.logger.WithField("descending", descending).Debug("Play")
		player.emit(Event{Type: EventPlay})
		player.armed = true
		player.tickGen++
		player.tickLocked()
	})
}

// Stop stops playback without drawing.
func (player *Player) Stop() {
	player.do(func() {
		player.stopLocked(0, false)
	})
}

// StopAt stops playback and draws frame, clamped to the playable range.
func (player *Player) StopAt(frame int) {
	player.do(func() {
		player.stopLocked(frame, true)
	})
}

// Draw draws frame, clamped to the playable range, and makes it current.
func (player *Player) Draw(frame int) {
	player.do(func() {
		player.drawLocked(frame)
	})
}

// do runs fn under the player lock and delivers the events it queued
// once the lock is released.
func (player *Player) do(fn func()) {
	player.mutex.Lock()
	fn()
	events := player.pending
	player.pending = nil
	player.mutex.Unlock()

	for _, event := range events {
		player.events.Emit(event)
	}
}

func (player *Player) emit(event Event) {
	player.pending = append(player.pending, event)
}

// requestTick schedules the next tick of the current tick chain. A tick
// whose chain was stopped by the time it runs does nothing.
func (player *Player) requestTick() {
	gen := player.tickGen
	player.tickHandle = player.scheduler.Request(func() {
		player.do(func() {
			if gen == player.tickGen {
				player.tickLocked()
			}
		})
	})
}

func (player *Player) tickLocked() {
	if !player.armed {
		return
	}
	now := player.clock.Now()
	if now.Sub(player.lastTick) >= player.interval {
		player.lastTick = now
		player.update()
	}
	if player.armed {
		player.requestTick()
	}
}

func (player *Player) update() {
	if !player.isPlaying {
		return
	}
	if player.frames.Len() == 0 {
		player.stopLocked(0, false)
		return
	}

	player.drawLocked(player.currentFrame)

	atBoundary := player.currentFrame == player.endFrame || player.currentFrame == player.startFrame
	if !atBoundary || !player.hasTraversedOnce {
		if player.descending {
			player.setFrame(player.currentFrame - 1)
		} else {
			player.setFrame(player.currentFrame + 1)
		}
		player.hasTraversedOnce = true
		return
	}

	loop := player.config.Loop
	if loop == 0 || (player.repeatCount+1 >= loop && loop != LoopForever) {
		player.stopLocked(0, false)
		return
	}

	minFrame, maxFrame := player.startFrame, player.endFrame
	if minFrame > maxFrame {
		minFrame, maxFrame = maxFrame, minFrame
	}
	if player.config.Alternate {
		// The edge frame was just drawn, so the bounce resumes one frame in.
		if player.descending {
			player.setFrame(minFrame + 1)
		} else {
			player.setFrame(maxFrame - 1)
		}
		player.descending = !player.descending
	} else {
		player.hasTraversedOnce = false
		if player.descending {
			player.currentFrame = maxFrame
		} else {
			player.currentFrame = minFrame
		}
	}
	player.repeatCount++
}

// setFrame makes frame current, clamped to the playable range.
func (player *Player) setFrame(frame int) {
	player.currentFrame = lo.Clamp(frame, 0, max(player.endFrame, 0))
}

func (player *Player) stopLocked(frame int, draw bool) {
	player.isPlaying = false
	if player.armed {
		player.scheduler.Cancel(player.tickHandle)
		player.armed = false
		player.tickGen++
	}
	player.repeatCount = 0
	if draw {
		player.drawLocked(frame)
	}
	player.logger.WithField("frame", player.currentFrame).Debug("Stop")
	player.emit(Event{Type: EventStop})
}

func (player *Player) drawLocked(frame int) {
	if player.frames.Len() == 0 {
		return
	}
	player.setFrame(frame)
	frame = player.currentFrame

	ops := make([]DrawOperation, 0, 2)
	if player.config.Transparent {
		ops = append(ops, NewClearDrawOperation(player.rect))
	}
	if img := player.frames.Image(frame); img != nil {
		ops = append(ops, NewDrawImageOperation(player.rect, img))
	} else {
		player.logger.WithField("frame", frame).Debug("Frame not loaded, skipping blit")
	}

	f := Frame{DrawOperations: ops}
	if err := f.Render(player.surface); err != nil {
		player.logger.WithError(err).WithField("frame", frame).Warn("Frame render failed")
		player.emit(Event{Type: EventError, Err: err})
	}

	player.emit(Event{
		Type:       EventUpdate,
		Frame:      frame,
		Times:      player.repeatCount + 1,
		Descending: player.descending,
	})
}
