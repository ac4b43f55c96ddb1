package main

import (
	"fmt"

	"github.com/knadh/koanf/parsers/toml"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
)

type settings struct {
	Surface     string   `koanf:"surface"` // "sdl", "drm" or "null"
	Card        int      `koanf:"card"`    // DRM card number
	Width       int      `koanf:"width"`
	Height      int      `koanf:"height"`
	Images      []string `koanf:"images"`
	FPS         float64  `koanf:"fps"`
	Loop        int      `koanf:"loop"` // -1 repeats forever
	Alternate   bool     `koanf:"alternate"`
	Transparent bool     `koanf:"transparent"`
	Descending  bool     `koanf:"descending"`
	Prescale    bool     `koanf:"prescale"`
	Refresh     int      `koanf:"refresh"` // refresh rate in Hz

	Log logSettings `koanf:"log"`
}

type logSettings struct {
	Level string `koanf:"level"`
	JSON  bool   `koanf:"json"`
}

func defaultSettings() settings {
	return settings{
		Surface: "sdl",
		FPS:     24,
		Refresh: 60,
		Log:     logSettings{Level: "info"},
	}
}

// loadSettings reads the TOML file at path over the defaults.
func loadSettings(path string) (settings, error) {
	s := defaultSettings()
	if path == "" {
		return s, nil
	}

	k := koanf.New(".")
	if err := k.Load(file.Provider(path), toml.Parser()); err != nil {
		return s, fmt.Errorf("load config %s: %w", path, err)
	}
	if err := k.Unmarshal("", &s); err != nil {
		return s, fmt.Errorf("parse config %s: %w", path, err)
	}
	return s, nil
}

// apply overlays the command line options for which isSet reports true.
// Positional images replace the configured list.
func (s *settings) apply(opts *options, isSet func(longName string) bool) {
	if isSet("surface") {
		s.Surface = opts.Surface
	}
	if isSet("card") {
		s.Card = opts.Card
	}
	if isSet("width") {
		s.Width = opts.Width
	}
	if isSet("height") {
		s.Height = opts.Height
	}
	if isSet("fps") {
		s.FPS = opts.FPS
	}
	if isSet("loop") {
		s.Loop = opts.Loop
	}
	if isSet("alternate") {
		s.Alternate = opts.Alternate
	}
	if isSet("transparent") {
		s.Transparent = opts.Transparent
	}
	if isSet("descending") {
		s.Descending = opts.Descending
	}
	if isSet("prescale") {
		s.Prescale = opts.Prescale
	}
	if isSet("refresh") {
		s.Refresh = opts.Refresh
	}
	if isSet("log-level") {
		s.Log.Level = opts.LogLevel
	}
	if isSet("log-json") {
		s.Log.JSON = opts.LogJSON
	}
	if len(opts.Args.Images) > 0 {
		s.Images = opts.Args.Images
	}
}
