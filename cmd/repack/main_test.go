package main

import (
	"bytes"
	"image"
	"image/color"
	"image/png"
	"testing"

	"github.com/rmcsoft/flipbook"
	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writePNG(t *testing.T, fs afero.Fs, name string, w, h int) {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	img.Set(0, 0, color.RGBA{R: 0xff, A: 0xff})
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, img))
	require.NoError(t, afero.WriteFile(fs, name, buf.Bytes(), 0644))
}

func TestRepacker_Run(t *testing.T) {
	for _, rotate := range []bool{false, true} {
		fs := afero.NewMemMapFs()
		writePNG(t, fs, "/in/a.png", 4, 2)
		writePNG(t, fs, "/in/sub/b.png", 4, 2)
		require.NoError(t, afero.WriteFile(fs, "/in/notes.txt", []byte("skip me"), 0644))
		require.NoError(t, afero.WriteFile(fs, "/out/stale.ppixmap", []byte("old"), 0644))

		r := repacker{fs: fs, inputDir: "/in", outputDir: "/out", pixFormat: flipbook.RGB16, rotate: rotate}
		require.NoError(t, r.run())

		assert.Equal(t, 2, r.count)
		assert.Equal(t, int64(2*4*2*2), r.unpackedSize)

		exists, err := afero.Exists(fs, "/out/stale.ppixmap")
		require.NoError(t, err)
		assert.False(t, exists, "output dir is recreated")

		for _, name := range []string{"/out/a.ppixmap", "/out/sub/b.ppixmap"} {
			packed, err := flipbook.LoadPackedPixmap(fs, name)
			require.NoError(t, err, name)
			pixmap, err := packed.Unpack()
			require.NoError(t, err)

			if rotate {
				assert.Equal(t, image.Rect(0, 0, 2, 4), pixmap.Bounds())
				assert.Equal(t, color.RGBA{R: 0xff, A: 0xff}, pixmap.At(1, 0))
			} else {
				assert.Equal(t, image.Rect(0, 0, 4, 2), pixmap.Bounds())
				assert.Equal(t, color.RGBA{R: 0xff, A: 0xff}, pixmap.At(0, 0))
			}
		}
	}
}

func TestRotatePixmap(t *testing.T) {
	pixmap := flipbook.NewPixmap(3, 2, flipbook.RGB32)
	pixmap.Set(0, 0, color.RGBA{R: 1, A: 0xff})
	pixmap.Set(2, 1, color.RGBA{R: 2, A: 0xff})

	rotated := rotatePixmap(pixmap)
	assert.Equal(t, 2, rotated.Width)
	assert.Equal(t, 3, rotated.Height)
	assert.Equal(t, 8, rotated.BytePerLine)
	assert.Equal(t, color.RGBA{R: 1, A: 0xff}, rotated.At(1, 0))
	assert.Equal(t, color.RGBA{R: 2, A: 0xff}, rotated.At(0, 2))
}
