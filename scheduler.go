package flipbook

import (
	"context"
	"sync"
	"time"
)

// DefaultRefreshRate is the refresh rate of the default scheduler, in Hz.
const DefaultRefreshRate = 60

// Handle identifies a requested callback.
type Handle uint64

// Scheduler runs a requested callback once before the next refresh.
type Scheduler interface {
	Request(fn func()) Handle
	Cancel(h Handle)
}

// Clock provides the current time.
type Clock interface {
	Now() time.Time
}

type systemClock struct{}

func (systemClock) Now() time.Time { return time.Now() }

// SystemClock returns a Clock backed by time.Now.
func SystemClock() Clock {
	return systemClock{}
}

// FrameScheduler is a Scheduler driven by the host render loop, which
// calls Step once per refresh. Callbacks requested while a Step is
// running are deferred to the next Step.
type FrameScheduler struct {
	mutex     sync.Mutex
	nextID    Handle
	order     []Handle
	callbacks map[Handle]func()
}

// NewFrameScheduler creates an empty FrameScheduler.
func NewFrameScheduler() *FrameScheduler {
	return &FrameScheduler{callbacks: make(map[Handle]func())}
}

// Request queues fn for the next Step.
func (s *FrameScheduler) Request(fn func()) Handle {
	s.mutex.Lock()
	defer s.mutex.Unlock()

	s.nextID++
	s.order = append(s.order, s.nextID)
	s.callbacks[s.nextID] = fn
	return s.nextID
}

// Cancel removes a queued callback. Unknown or already run handles are ignored.
func (s *FrameScheduler) Cancel(h Handle) {
	s.mutex.Lock()
	delete(s.callbacks, h)
	s.mutex.Unlock()
}

// Pending returns the number of queued callbacks.
func (s *FrameScheduler) Pending() int {
	s.mutex.Lock()
	defer s.mutex.Unlock()
	return len(s.callbacks)
}

// Step runs the callbacks queued before the call and returns how many ran.
func (s *FrameScheduler) Step() int {
	s.mutex.Lock()
	batch := s.order
	s.order = nil
	s.mutex.Unlock()

	ran := 0
	for _, h := range batch {
		s.mutex.Lock()
		fn, ok := s.callbacks[h]
		delete(s.callbacks, h)
		s.mutex.Unlock()

		if ok {
			fn()
			ran++
		}
	}
	return ran
}

// TickerScheduler steps a FrameScheduler from its own goroutine at a
// fixed refresh rate.
type TickerScheduler struct {
	*FrameScheduler
	interval time.Duration
}

// NewTickerScheduler creates a TickerScheduler stepping refreshRate times
// per second. Run must be called to start it.
func NewTickerScheduler(refreshRate int) *TickerScheduler {
	if refreshRate <= 0 {
		refreshRate = DefaultRefreshRate
	}
	return &TickerScheduler{
		FrameScheduler: NewFrameScheduler(),
		interval:       time.Second / time.Duration(refreshRate),
	}
}

// Run steps the scheduler until ctx is done.
func (s *TickerScheduler) Run(ctx context.Context) error {
	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			s.Step()
		}
	}
}

var defaultScheduler = sync.OnceValue(func() *TickerScheduler {
	s := NewTickerScheduler(DefaultRefreshRate)
	go s.Run(context.Background())
	return s
})

// DefaultScheduler returns the process-wide scheduler used when none is
// configured. It is started on first use and never stops.
func DefaultScheduler() Scheduler {
	return defaultScheduler()
}
