// Command repack converts a directory tree of images into packed pixmaps.
package main

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/dustin/go-humanize"
	"github.com/jessevdk/go-flags"
	"github.com/rmcsoft/flipbook"
	"github.com/sirupsen/logrus"
	"github.com/spf13/afero"
)

type options struct {
	InputDir  string `short:"i" long:"input-dir"  description:"The input directory" required:"yes"`
	OutputDir string `short:"o" long:"output-dir" description:"The output directory" required:"yes"`
	NotRotate bool   `short:"n" long:"not-rotate" description:"Disable image rotate"`
	RGB32     bool   `long:"rgb32"                description:"Pack 32-bit pixels instead of RGB565"`
}

var imageExts = map[string]bool{
	".png":  true,
	".jpg":  true,
	".jpeg": true,
	".gif":  true,
	".bmp":  true,
	".tif":  true,
	".tiff": true,
	".webp": true,
}

func parseCmd() options {
	var opts options
	var cmdParser = flags.NewParser(&opts, flags.Default)
	var err error

	if _, err = cmdParser.Parse(); err != nil {
		if flagsErr, ok := err.(*flags.Error); ok && flagsErr.Type == flags.ErrHelp {
			os.Exit(0)
		}
		os.Exit(1)
	}

	if opts.InputDir, err = filepath.Abs(opts.InputDir); err != nil {
		logrus.Fatal(err)
	}
	if opts.OutputDir, err = filepath.Abs(opts.OutputDir); err != nil {
		logrus.Fatal(err)
	}
	return opts
}

func main() {
	opts := parseCmd()
	pixFormat := flipbook.RGB16
	if opts.RGB32 {
		pixFormat = flipbook.RGB32
	}

	r := repacker{
		fs:        afero.NewOsFs(),
		inputDir:  opts.InputDir,
		outputDir: opts.OutputDir,
		pixFormat: pixFormat,
		rotate:    !opts.NotRotate,
	}
	if err := r.run(); err != nil {
		logrus.Fatal(err)
	}

	logrus.WithFields(logrus.Fields{
		"images":   r.count,
		"unpacked": humanize.Bytes(uint64(r.unpackedSize)),
		"packed":   humanize.Bytes(uint64(r.packedSize)),
	}).Info("Done")
	if r.packedSize > 0 {
		logrus.Infof("unpackedSize/packedSize=%.2f", float64(r.unpackedSize)/float64(r.packedSize))
	}
}

type repacker struct {
	fs        afero.Fs
	inputDir  string
	outputDir string
	pixFormat flipbook.PixelFormat
	rotate    bool

	count        int
	packedSize   int64
	unpackedSize int64
}

func (r *repacker) run() error {
	if err := r.fs.RemoveAll(r.outputDir); err != nil && !os.IsNotExist(err) {
		return err
	}
	return afero.Walk(r.fs, r.inputDir, func(path string, info os.FileInfo, err error) error {
		if err != nil || info.IsDir() {
			return err
		}
		if !imageExts[strings.ToLower(filepath.Ext(path))] {
			return nil
		}
		return r.repack(path)
	})
}

func (r *repacker) repack(inputFile string) error {
	logrus.WithField("file", inputFile).Info("Processing")

	file, err := r.fs.Open(inputFile)
	if err != nil {
		return err
	}
	img, err := flipbook.DecodeFrame(file, inputFile)
	file.Close()
	if err != nil {
		return err
	}

	pixmap := flipbook.PixmapFromImage(img, r.pixFormat)
	r.unpackedSize += int64(pixmap.BytePerLine * pixmap.Height)
	if r.rotate {
		pixmap = rotatePixmap(pixmap)
	}

	packedPixmap := flipbook.PackPixmap(pixmap)
	r.packedSize += int64(len(packedPixmap.Data))
	r.count++

	relInputPath, err := filepath.Rel(r.inputDir, inputFile)
	if err != nil {
		return err
	}
	relOutputPath := strings.TrimSuffix(relInputPath, filepath.Ext(relInputPath)) + flipbook.PackedPixmapExt
	outputFile := filepath.Join(r.outputDir, relOutputPath)
	if err := r.fs.MkdirAll(filepath.Dir(outputFile), 0755); err != nil {
		return err
	}
	return packedPixmap.Save(r.fs, outputFile)
}

// rotatePixmap rotates the pixmap 90 degrees clockwise.
func rotatePixmap(pixmap *flipbook.Pixmap) *flipbook.Pixmap {
	pixSize := flipbook.GetPixelSize(pixmap.PixFormat)
	rotatedData := make([]byte, 0, pixmap.Width*pixmap.Height*pixSize)
	for x := 0; x < pixmap.Width; x++ {
		for y := pixmap.Height - 1; y >= 0; y-- {
			pixOffset := y*pixmap.BytePerLine + x*pixSize
			rotatedData = append(rotatedData, pixmap.Data[pixOffset:pixOffset+pixSize]...)
		}
	}

	return &flipbook.Pixmap{
		Data:        rotatedData,
		Width:       pixmap.Height,
		Height:      pixmap.Width,
		PixFormat:   pixmap.PixFormat,
		BytePerLine: pixSize * pixmap.Height,
	}
}
