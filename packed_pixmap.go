package flipbook

import (
	"bytes"
	"encoding/binary"
	"errors"
	"fmt"
	"io"

	"github.com/spf13/afero"
)

// PackedPixmapExt is the file extension of packed pixmaps.
const PackedPixmapExt = ".ppixmap"

const maxPackedDimension = 32000

var (
	// ErrInvalidData is returned when packed pixmap data is malformed.
	ErrInvalidData = errors.New("invalid packed pixmap data")
	// ErrUnsupportedPixelFormat is returned for unknown pixel formats.
	ErrUnsupportedPixelFormat = errors.New("unsupported pixel format")
)

// PackedPixmap is a run-length encoded Pixmap. Each row is a sequence of
// (count, pixel) runs followed by a zero byte.
type PackedPixmap struct {
	Data      []byte
	Width     int
	Height    int
	PixFormat PixelFormat
}

type packedHeader struct {
	PixFormat uint32
	Width     uint32
	Height    uint32
}

// PackPixmap run-length encodes pixmap. Runs are at most 255 pixels long.
func PackPixmap(pixmap *Pixmap) *PackedPixmap {
	pixSize := GetPixelSize(pixmap.PixFormat)
	var data []byte
	for y := 0; y < pixmap.Height; y++ {
		start := y * pixmap.BytePerLine
		row := pixmap.Data[start : start+pixmap.Width*pixSize]
		for len(row) > 0 {
			pix := row[:pixSize]
			n := 1
			for n < 0xff && n*pixSize < len(row) && bytes.Equal(pix, row[n*pixSize:(n+1)*pixSize]) {
				n++
			}
			data = append(data, byte(n))
			data = append(data, pix...)
			row = row[n*pixSize:]
		}
		data = append(data, 0)
	}
	return &PackedPixmap{
		Data:      data,
		Width:     pixmap.Width,
		Height:    pixmap.Height,
		PixFormat: pixmap.PixFormat,
	}
}

// scan walks the runs of p, calling run for each of them, and checks that
// every row holds exactly Width pixels and that there are Height rows.
func (p *PackedPixmap) scan(run func(count int, pix []byte)) error {
	pixSize := GetPixelSize(p.PixFormat)
	rows, rowLen := 0, 0
	data := p.Data
	for len(data) > 0 {
		count := int(data[0])
		data = data[1:]
		if count == 0 {
			if rowLen != p.Width {
				return fmt.Errorf("%w: row %d has %d pixels", ErrInvalidData, rows, rowLen)
			}
			rows++
			rowLen = 0
			continue
		}
		if len(data) < pixSize {
			return fmt.Errorf("%w: truncated pixel in row %d", ErrInvalidData, rows)
		}
		if run != nil {
			run(count, data[:pixSize])
		}
		rowLen += count
		data = data[pixSize:]
	}
	if rows != p.Height {
		return fmt.Errorf("%w: %d rows, want %d", ErrInvalidData, rows, p.Height)
	}
	return nil
}

// Unpack decodes p into a Pixmap.
func (p *PackedPixmap) Unpack() (*Pixmap, error) {
	pixSize := GetPixelSize(p.PixFormat)
	pixels := make([]byte, 0, p.Width*p.Height*pixSize)
	err := p.scan(func(count int, pix []byte) {
		for range count {
			pixels = append(pixels, pix...)
		}
	})
	if err != nil {
		return nil, err
	}
	return &Pixmap{
		Data:        pixels,
		Width:       p.Width,
		Height:      p.Height,
		BytePerLine: p.Width * pixSize,
		PixFormat:   p.PixFormat,
	}, nil
}

// WriteTo writes the little-endian header followed by the runs.
func (p *PackedPixmap) WriteTo(w io.Writer) (int64, error) {
	header := packedHeader{
		PixFormat: uint32(p.PixFormat),
		Width:     uint32(p.Width),
		Height:    uint32(p.Height),
	}
	if err := binary.Write(w, binary.LittleEndian, header); err != nil {
		return 0, err
	}
	n, err := w.Write(p.Data)
	return int64(binary.Size(header) + n), err
}

// Save writes p to fileName in fs.
func (p *PackedPixmap) Save(fs afero.Fs, fileName string) error {
	file, err := fs.Create(fileName)
	if err != nil {
		return err
	}
	defer file.Close()

	if _, err := p.WriteTo(file); err != nil {
		return err
	}
	return file.Sync()
}

func parsePixelFormat(v uint32) (PixelFormat, error) {
	switch PixelFormat(v) {
	case RGB32, RGB16:
		return PixelFormat(v), nil
	}
	return 0, fmt.Errorf("%w: %d", ErrUnsupportedPixelFormat, v)
}

// ReadPackedPixmap reads and validates a packed pixmap.
func ReadPackedPixmap(r io.Reader) (*PackedPixmap, error) {
	var header packedHeader
	if err := binary.Read(r, binary.LittleEndian, &header); err != nil {
		return nil, err
	}
	pixFormat, err := parsePixelFormat(header.PixFormat)
	if err != nil {
		return nil, err
	}
	if header.Width > maxPackedDimension || header.Height > maxPackedDimension {
		return nil, fmt.Errorf("%w: size %dx%d", ErrInvalidData, header.Width, header.Height)
	}

	data, err := io.ReadAll(r)
	if err != nil {
		return nil, err
	}
	p := &PackedPixmap{
		Data:      data,
		Width:     int(header.Width),
		Height:    int(header.Height),
		PixFormat: pixFormat,
	}
	if err := p.scan(nil); err != nil {
		return nil, err
	}
	return p, nil
}

// LoadPackedPixmap reads a packed pixmap from fileName in fs.
func LoadPackedPixmap(fs afero.Fs, fileName string) (*PackedPixmap, error) {
	file, err := fs.Open(fileName)
	if err != nil {
		return nil, err
	}
	defer file.Close()
	return ReadPackedPixmap(file)
}
