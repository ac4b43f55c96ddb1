package flipbook

import (
	"image"
	"sync"
)

// FrameSet holds one decoded image slot per source locator. Positions are
// fixed at creation, slots are filled as their loads complete.
type FrameSet struct {
	mutex  sync.RWMutex
	images []image.Image
	loaded int
}

func newFrameSet(n int) *FrameSet {
	return &FrameSet{images: make([]image.Image, n)}
}

// Len returns the number of slots.
func (fs *FrameSet) Len() int {
	return len(fs.images)
}

// Image returns the image at index i, or nil if it is not loaded yet
// or i is out of range.
func (fs *FrameSet) Image(i int) image.Image {
	if i < 0 || i >= len(fs.images) {
		return nil
	}
	fs.mutex.RLock()
	defer fs.mutex.RUnlock()
	return fs.images[i]
}

// Loaded reports whether slot i holds an image.
func (fs *FrameSet) Loaded(i int) bool {
	return fs.Image(i) != nil
}

// LoadedCount returns the number of filled slots.
func (fs *FrameSet) LoadedCount() int {
	fs.mutex.RLock()
	defer fs.mutex.RUnlock()
	return fs.loaded
}

func (fs *FrameSet) set(i int, img image.Image) {
	fs.mutex.Lock()
	defer fs.mutex.Unlock()
	if fs.images[i] == nil {
		fs.loaded++
	}
	fs.images[i] = img
}
