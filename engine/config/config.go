// Package config loads engine settings from a TOML file.
package config

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/Carmen-Shannon/oxy-gl/common"
	"github.com/Carmen-Shannon/oxy-gl/engine"
	"github.com/Carmen-Shannon/oxy-gl/engine/renderer/device"
	"github.com/Carmen-Shannon/oxy-gl/engine/window"
	"github.com/pelletier/go-toml/v2"
)

// Config is the engine configuration file.
//
//	[window]
//	title = "demo"
//	width = 1280
//	height = 720
//	vsync = true
//
//	[render]
//	clear_color = [0.1, 0.1, 0.12, 1.0]
//	clear_depth = 1.0
//
//	[engine]
//	tick_rate = 60
//	frame_limit = 0
//	profiling = false
//
//	[log]
//	level = "info"
type Config struct {
	Window WindowConfig `toml:"window"`
	Render RenderConfig `toml:"render"`
	Engine EngineConfig `toml:"engine"`
	Log    LogConfig    `toml:"log"`
}

type WindowConfig struct {
	Title   string `toml:"title"`
	Width   int    `toml:"width"`
	Height  int    `toml:"height"`
	VSync   bool   `toml:"vsync"`
	Samples int    `toml:"samples"`
	Debug   bool   `toml:"debug"`
}

// RenderConfig holds the render device defaults.
type RenderConfig struct {
	ClearColor [4]float32 `toml:"clear_color"`
	ClearDepth float32    `toml:"clear_depth"`
}

type EngineConfig struct {
	// TickRate is the tick callback frequency in Hz.
	TickRate float64 `toml:"tick_rate"`
	// FrameLimit caps rendered frames per second; 0 leaves the loop uncapped.
	FrameLimit float64 `toml:"frame_limit"`
	Profiling  bool    `toml:"profiling"`
}

type LogConfig struct {
	// Level is one of debug, info, warn or error.
	Level string `toml:"level"`
}

// Default returns the configuration used when no file is given. Load starts from it, so a file
// only needs the keys it changes.
//
// Returns:
//   - Config: the default configuration
func Default() Config {
	return Config{
		Window: WindowConfig{
			Title:  "oxy-gl",
			Width:  1280,
			Height: 720,
			VSync:  true,
		},
		Render: RenderConfig{
			ClearColor: [4]float32{0, 0, 0, 1},
			ClearDepth: 1,
		},
		Engine: EngineConfig{
			TickRate: 60,
		},
		Log: LogConfig{
			Level: "info",
		},
	}
}

// Load reads a TOML configuration file over the defaults.
//
// Parameters:
//   - path: the file path of the configuration
//
// Returns:
//   - Config: the loaded configuration
//   - error: error if the file cannot be read, has unknown keys or holds invalid values
func Load(path string) (Config, error) {
	f, err := os.Open(path)
	if err != nil {
		return Config{}, fmt.Errorf("failed to open config %s: %w", path, err)
	}
	defer f.Close()

	c, err := Read(f)
	if err != nil {
		return Config{}, fmt.Errorf("config %s: %w", path, err)
	}
	return c, nil
}

// Read decodes a TOML configuration from r over the defaults.
//
// Parameters:
//   - r: the reader providing TOML text
//
// Returns:
//   - Config: the decoded configuration
//   - error: error if decoding or validation fails
func Read(r io.Reader) (Config, error) {
	c := Default()
	dec := toml.NewDecoder(r).DisallowUnknownFields()
	if err := dec.Decode(&c); err != nil {
		var strict *toml.StrictMissingError
		if errors.As(err, &strict) {
			return Config{}, fmt.Errorf("unknown keys:\n%s", strict.String())
		}
		return Config{}, fmt.Errorf("failed to decode config: %w", err)
	}
	if err := c.Validate(); err != nil {
		return Config{}, err
	}
	return c, nil
}

// Validate reports the first invalid setting.
//
// Returns:
//   - error: error describing the invalid setting, or nil
func (c Config) Validate() error {
	if c.Window.Width <= 0 || c.Window.Height <= 0 {
		return fmt.Errorf("window size %dx%d must be positive", c.Window.Width, c.Window.Height)
	}
	if c.Window.Samples < 0 {
		return fmt.Errorf("samples %d must not be negative", c.Window.Samples)
	}
	if c.Engine.TickRate < 0 || c.Engine.FrameLimit < 0 {
		return fmt.Errorf("tick_rate and frame_limit must not be negative")
	}
	if c.Render.ClearDepth < 0 || c.Render.ClearDepth > 1 {
		return fmt.Errorf("clear_depth %v is outside [0, 1]", c.Render.ClearDepth)
	}
	if _, err := c.level(); err != nil {
		return err
	}
	return nil
}

func (c Config) level() (slog.Level, error) {
	var l slog.Level
	if err := l.UnmarshalText([]byte(strings.TrimSpace(c.Log.Level))); err != nil {
		return 0, fmt.Errorf("log level %q: %w", c.Log.Level, err)
	}
	return l, nil
}

// Logger returns a text logger on stderr at the configured level.
//
// Returns:
//   - *slog.Logger: the configured logger
func (c Config) Logger() *slog.Logger {
	return c.newLogger(os.Stderr)
}

func (c Config) newLogger(w io.Writer) *slog.Logger {
	level, err := c.level()
	if err != nil {
		level = slog.LevelInfo
	}
	return slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: level}))
}

// WindowOptions converts the window section into window builder options.
//
// Returns:
//   - []window.WindowBuilderOption: the window options
func (c Config) WindowOptions() []window.WindowBuilderOption {
	return []window.WindowBuilderOption{
		window.WithTitle(c.Window.Title),
		window.WithSize(c.Window.Width, c.Window.Height),
		window.WithVSync(c.Window.VSync),
		window.WithSamples(c.Window.Samples),
		window.WithDebugContext(c.Window.Debug),
	}
}

// DeviceOptions converts the render section into render device builder options.
//
// Returns:
//   - []device.DeviceBuilderOption: the device options
func (c Config) DeviceOptions() []device.DeviceBuilderOption {
	cc := c.Render.ClearColor
	return []device.DeviceBuilderOption{
		device.WithDefaultClearColor(common.Color{R: cc[0], G: cc[1], B: cc[2], A: cc[3]}),
		device.WithDefaultClearDepth(c.Render.ClearDepth),
	}
}

// EngineOptions converts the whole configuration into engine builder options, including the
// window and device options and a logger at the configured level.
//
// Returns:
//   - []engine.EngineBuilderOption: the engine options
func (c Config) EngineOptions() []engine.EngineBuilderOption {
	return []engine.EngineBuilderOption{
		engine.WithTickRate(c.Engine.TickRate),
		engine.WithRenderFrameLimit(c.Engine.FrameLimit),
		engine.WithProfiling(c.Engine.Profiling),
		engine.WithWindowOptions(c.WindowOptions()...),
		engine.WithDeviceOptions(c.DeviceOptions()...),
		engine.WithLogger(c.Logger()),
	}
}
