package main

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/jessevdk/go-flags"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sampleConfig = `
surface = "null"
width = 320
height = 240
images = ["frames/a.png", "frames/b.png"]
fps = 12.5
loop = 2
alternate = true

[log]
level = "debug"
json = true
`

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "flipbook.toml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0644))
	return path
}

func TestLoadSettings(t *testing.T) {
	s, err := loadSettings(writeConfig(t, sampleConfig))
	require.NoError(t, err)

	want := defaultSettings()
	want.Surface = "null"
	want.Width = 320
	want.Height = 240
	want.Images = []string{"frames/a.png", "frames/b.png"}
	want.FPS = 12.5
	want.Loop = 2
	want.Alternate = true
	want.Log = logSettings{Level: "debug", JSON: true}
	assert.Equal(t, want, s)
}

func TestLoadSettings_NoFile(t *testing.T) {
	s, err := loadSettings("")
	require.NoError(t, err)
	assert.Equal(t, defaultSettings(), s)
}

func TestLoadSettings_Errors(t *testing.T) {
	_, err := loadSettings(filepath.Join(t.TempDir(), "missing.toml"))
	assert.Error(t, err)

	_, err = loadSettings(writeConfig(t, "fps = [not toml"))
	assert.Error(t, err)
}

func TestApply_OnlySetFlagsOverride(t *testing.T) {
	s, err := loadSettings(writeConfig(t, sampleConfig))
	require.NoError(t, err)

	var opts options
	parser := flags.NewParser(&opts, flags.None)
	_, err = parser.ParseArgs([]string{"-f", "30", "--loop=-1", "--transparent", "--log-level", "warn"})
	require.NoError(t, err)
	s.apply(&opts, isSetFunc(parser))

	assert.Equal(t, 30.0, s.FPS)
	assert.Equal(t, -1, s.Loop)
	assert.True(t, s.Transparent)
	assert.Equal(t, "warn", s.Log.Level)

	// Untouched by the command line.
	assert.Equal(t, "null", s.Surface)
	assert.Equal(t, 320, s.Width)
	assert.True(t, s.Alternate)
	assert.True(t, s.Log.JSON)
	assert.Equal(t, []string{"frames/a.png", "frames/b.png"}, s.Images)
}

func TestApply_PositionalImagesReplaceConfigured(t *testing.T) {
	s := defaultSettings()
	s.Images = []string{"configured.png"}

	var opts options
	parser := flags.NewParser(&opts, flags.None)
	_, err := parser.ParseArgs([]string{"x.png", "y.png"})
	require.NoError(t, err)
	s.apply(&opts, isSetFunc(parser))

	assert.Equal(t, []string{"x.png", "y.png"}, s.Images)
	assert.Equal(t, "sdl", s.Surface)
}
