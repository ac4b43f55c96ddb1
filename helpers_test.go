package flipbook

import (
	"bytes"
	"fmt"
	"image"
	"image/color"
	"image/png"
	"sync"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/spf13/afero"
	"github.com/stretchr/testify/require"
)

type fakeClock struct {
	mutex sync.Mutex
	now   time.Time
}

func newFakeClock() *fakeClock {
	return &fakeClock{now: time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)}
}

func (c *fakeClock) Now() time.Time {
	c.mutex.Lock()
	defer c.mutex.Unlock()
	return c.now
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mutex.Lock()
	c.now = c.now.Add(d)
	c.mutex.Unlock()
}

// recordingSurface records drawing calls. Drawn frames are identified by
// the red channel of the image's top-left pixel.
type recordingSurface struct {
	mutex   sync.Mutex
	ops     []string
	frames  []int
	drawErr error
}

func (s *recordingSurface) Begin() error {
	s.record("begin")
	return nil
}

func (s *recordingSurface) Clear(rect image.Rectangle) error {
	s.record(fmt.Sprintf("clear %v", rect))
	return nil
}

func (s *recordingSurface) DrawImage(rect image.Rectangle, img image.Image) error {
	r, _, _, _ := img.At(img.Bounds().Min.X, img.Bounds().Min.Y).RGBA()
	s.mutex.Lock()
	s.ops = append(s.ops, fmt.Sprintf("draw %v", rect))
	s.frames = append(s.frames, frameIDFromRed(uint8(r>>8)))
	s.mutex.Unlock()
	return s.drawErr
}

func (s *recordingSurface) End() error {
	s.record("end")
	return nil
}

func (s *recordingSurface) record(op string) {
	s.mutex.Lock()
	s.ops = append(s.ops, op)
	s.mutex.Unlock()
}

func (s *recordingSurface) Ops() []string {
	s.mutex.Lock()
	defer s.mutex.Unlock()
	return append([]string(nil), s.ops...)
}

func (s *recordingSurface) Frames() []int {
	s.mutex.Lock()
	defer s.mutex.Unlock()
	return append([]int(nil), s.frames...)
}

func frameColor(i int) color.RGBA {
	return color.RGBA{R: uint8(i * 10), A: 0xff}
}

func frameIDFromRed(r uint8) int {
	return int(r) / 10
}

func encodePNG(t *testing.T, img image.Image) []byte {
	t.Helper()
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, img))
	return buf.Bytes()
}

func solidImage(w, h int, c color.Color) *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.Set(x, y, c)
		}
	}
	return img
}

// writeFrames writes n solid 2x2 PNG frames to fs and returns their names.
func writeFrames(t *testing.T, fs afero.Fs, n int) []string {
	t.Helper()
	names := make([]string, n)
	for i := range n {
		names[i] = fmt.Sprintf("/frames/%02d.png", i)
		data := encodePNG(t, solidImage(2, 2, frameColor(i)))
		require.NoError(t, afero.WriteFile(fs, names[i], data, 0644))
	}
	return names
}

// stepUntil steps sched until cond holds or the deadline passes.
func stepUntil(t *testing.T, sched *FrameScheduler, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(5 * time.Second)
	for !cond() {
		if time.Now().After(deadline) {
			t.Fatal("condition not reached")
		}
		sched.Step()
		time.Sleep(time.Millisecond)
	}
}

func quietLogger() logrus.FieldLogger {
	logger := logrus.New()
	logger.SetOutput(bytes.NewBuffer(nil))
	return logger
}
