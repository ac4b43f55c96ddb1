// Command flipbook plays a sequence of images as an animation.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"runtime"
	"syscall"
	"time"

	"github.com/jessevdk/go-flags"
	"github.com/rmcsoft/flipbook"
	"github.com/sirupsen/logrus"
)

// version is set at link time with -ldflags "-X main.version=...".
var version = "dev"

type options struct {
	Config      string  `short:"c" long:"config"      description:"TOML configuration file"`
	Surface     string  `short:"s" long:"surface"     description:"Drawing surface" choice:"sdl" choice:"drm" choice:"null"`
	Card        int     `long:"card"                  description:"DRM card number"`
	Width       int     `short:"W" long:"width"       description:"Frame width in pixels"`
	Height      int     `short:"H" long:"height"      description:"Frame height in pixels"`
	FPS         float64 `short:"f" long:"fps"         description:"Frames per second"`
	Loop        int     `short:"l" long:"loop"        description:"Number of repeats, -1 repeats forever"`
	Alternate   bool    `short:"a" long:"alternate"   description:"Bounce between the first and the last frame"`
	Transparent bool    `short:"t" long:"transparent" description:"Clear the surface before each frame"`
	Descending  bool    `short:"d" long:"descending"  description:"Play from the last frame to the first"`
	Prescale    bool    `short:"p" long:"prescale"    description:"Scale images to the frame size when loading"`
	Refresh     int     `short:"r" long:"refresh"     description:"Surface refresh rate in Hz"`
	LogLevel    string  `long:"log-level"             description:"Log level"`
	LogJSON     bool    `long:"log-json"              description:"Log in JSON format"`
	Version     bool    `short:"v" long:"version"     description:"Print the version and exit"`

	Args struct {
		Images []string `positional-arg-name:"IMAGE"`
	} `positional-args:"yes"`
}

func init() {
	// SDL must be driven from the main thread.
	runtime.LockOSThread()
}

func parseCmd() (options, *flags.Parser) {
	var opts options
	var cmdParser = flags.NewParser(&opts, flags.Default)

	if _, err := cmdParser.Parse(); err != nil {
		if flagsErr, ok := err.(*flags.Error); ok && flagsErr.Type == flags.ErrHelp {
			os.Exit(0)
		}
		os.Exit(1)
	}
	return opts, cmdParser
}

// isSetFunc reports whether an option was given on the command line.
func isSetFunc(cmdParser *flags.Parser) func(longName string) bool {
	return func(longName string) bool {
		option := cmdParser.FindOptionByLongName(longName)
		return option != nil && option.IsSet()
	}
}

func setupLogging(s logSettings) {
	level, err := logrus.ParseLevel(s.Level)
	if err != nil {
		level = logrus.InfoLevel
	}
	logrus.SetLevel(level)
	if s.JSON {
		logrus.SetFormatter(&logrus.JSONFormatter{})
	} else {
		logrus.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
	}
}

func main() {
	opts, cmdParser := parseCmd()
	if opts.Version {
		fmt.Println(version)
		return
	}

	s, err := loadSettings(opts.Config)
	if err != nil {
		logrus.Fatal(err)
	}
	s.apply(&opts, isSetFunc(cmdParser))
	setupLogging(s.Log)

	if err := run(s); err != nil {
		logrus.Fatal(err)
	}
}

func run(s settings) error {
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	surface, err := openSurface(s)
	if err != nil {
		return err
	}
	defer surface.Close()

	scheduler := flipbook.NewFrameScheduler()
	player, err := flipbook.NewPlayer(ctx, flipbook.Config{
		Surface:        surface,
		Width:          s.Width,
		Height:         s.Height,
		Images:         s.Images,
		FPS:            s.FPS,
		Loop:           s.Loop,
		Alternate:      s.Alternate,
		Transparent:    s.Transparent,
		PrescaleFrames: s.Prescale,
		Scheduler:      scheduler,
	})
	if err != nil {
		return err
	}

	log := logrus.WithField("component", "flipbook")
	player.On(flipbook.EventLoading, func(e flipbook.Event) {
		log.Infof("Loaded %d/%d", e.Count, e.Total)
	})
	player.On(flipbook.EventReady, func(flipbook.Event) {
		log.Info("Ready")
		player.Play(s.Descending)
	})
	player.On(flipbook.EventUpdate, func(e flipbook.Event) {
		log.WithFields(logrus.Fields{
			"frame":      e.Frame,
			"times":      e.Times,
			"descending": e.Descending,
		}).Debug("Update")
	})
	player.On(flipbook.EventError, func(e flipbook.Event) {
		log.WithError(e.Err).WithField("locator", e.Locator).Error("Playback error")
	})
	player.On(flipbook.EventStop, func(flipbook.Event) {
		log.Info("Stopped")
		cancel()
	})

	refresh := s.Refresh
	if refresh <= 0 {
		refresh = flipbook.DefaultRefreshRate
	}
	ticker := time.NewTicker(time.Second / time.Duration(refresh))
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			player.Stop()
			return nil
		case <-ticker.C:
			if !surface.Poll() {
				cancel()
				continue
			}
			scheduler.Step()
		}
	}
}
