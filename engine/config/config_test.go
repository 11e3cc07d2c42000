package config

import (
	"bytes"
	"context"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad(t *testing.T) {
	assert := assert.New(t)
	path := filepath.Join(t.TempDir(), "engine.toml")
	require.NoError(t, os.WriteFile(path, []byte(`
[window]
title = "cubes"
width = 800
samples = 4

[render]
clear_color = [0.1, 0.2, 0.3, 1.0]

[engine]
frame_limit = 144
profiling = true

[log]
level = "debug"
`), 0o644))

	c, err := Load(path)
	require.NoError(t, err)
	assert.Equal("cubes", c.Window.Title)
	assert.Equal(800, c.Window.Width)
	assert.Equal(720, c.Window.Height, "unset keys keep their defaults")
	assert.True(c.Window.VSync)
	assert.Equal(4, c.Window.Samples)
	assert.Equal([4]float32{0.1, 0.2, 0.3, 1}, c.Render.ClearColor)
	assert.Equal(float32(1), c.Render.ClearDepth)
	assert.Equal(60.0, c.Engine.TickRate)
	assert.Equal(144.0, c.Engine.FrameLimit)
	assert.True(c.Engine.Profiling)

	assert.Len(c.WindowOptions(), 5)
	assert.Len(c.DeviceOptions(), 2)
	assert.Len(c.EngineOptions(), 6)
	assert.True(c.Logger().Enabled(context.Background(), slog.LevelDebug))
}

func TestRead_Errors(t *testing.T) {
	cases := []struct{ want, text string }{
		{"unknown keys", "[window]\ntitel = \"typo\"\n"},
		{"must be positive", "[window]\nheight = 0\n"},
		{"samples -2 must not be negative", "[window]\nsamples = -2\n"},
		{"must not be negative", "[engine]\ntick_rate = -1\n"},
		{"outside [0, 1]", "[render]\nclear_depth = 2.0\n"},
		{"log level \"loud\"", "[log]\nlevel = \"loud\"\n"},
		{"failed to decode config", "[window\n"},
	}
	for _, c := range cases {
		_, err := Read(strings.NewReader(c.text))
		assert.ErrorContains(t, err, c.want, c.text)
	}
}

func TestLoad_MissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "none.toml"))
	assert.ErrorIs(t, err, os.ErrNotExist)
}

func TestDefault(t *testing.T) {
	c := Default()
	require.NoError(t, c.Validate())

	var out bytes.Buffer
	l := c.newLogger(&out)
	l.Debug("hidden")
	l.Info("shown")
	assert.NotContains(t, out.String(), "hidden")
	assert.Contains(t, out.String(), "shown")
}
