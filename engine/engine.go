package engine

import (
	"fmt"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/Carmen-Shannon/oxy-gl/engine/profiler"
	"github.com/Carmen-Shannon/oxy-gl/engine/renderer/device"
	"github.com/Carmen-Shannon/oxy-gl/engine/renderer/glapi"
	"github.com/Carmen-Shannon/oxy-gl/engine/renderer/glapi/gogl"
	"github.com/Carmen-Shannon/oxy-gl/engine/window"
)

// contextFunctions is the GL function table of one context. Invalidate is called once the
// context behind it is destroyed.
type contextFunctions interface {
	glapi.Functions
	Invalidate()
}

// loadGoGL loads the go-gl entry points for the context current on the calling thread.
func loadGoGL() (contextFunctions, error) {
	f, err := gogl.New()
	if err != nil {
		return nil, err
	}
	return f, nil
}

// engine implements the Engine interface.
// Rendering runs on the main thread inside the window's message loop; the fixed-rate tick loop
// runs in its own goroutine.
type engine struct {
	tickRateChannel chan time.Duration // Channel for dynamic tick rate updates

	running atomic.Bool
	wg      sync.WaitGroup

	quitChannel  chan struct{}
	quitOnce     sync.Once // Ensures quitChannel is only closed once
	shutdownOnce sync.Once

	logger *slog.Logger

	window        window.Window
	windowOptions []window.WindowBuilderOption

	device        device.Device
	deviceOptions []device.DeviceBuilderOption
	functions     contextFunctions
	loadContext   func() (contextFunctions, error)

	// paused is set while the device has no context; ticks and frames are skipped.
	paused            atomic.Bool
	recreateRequested atomic.Bool

	profiler         *profiler.Profiler
	profilingEnabled bool

	engineTickRate time.Duration
	tickCallback   func(deltaTime float32)
	renderCallback func(deltaTime float32) error

	renderFrameLimit time.Duration // minimum frame duration; 0 = uncapped
	lastRender       time.Time
}

// Engine is the main entry point for the engine.
// It owns the window, its OpenGL context and the render device, and orchestrates the tick loop
// and the render loop.
type Engine interface {
	// Window returns the underlying window.
	//
	// Returns:
	//   - window.Window: the window instance
	Window() window.Window

	// Device returns the render device bound to the window's context.
	//
	// Returns:
	//   - device.Device: the render device
	Device() device.Device

	// EnableProfiler enables performance profiling output to the log.
	EnableProfiler()

	// DisableProfiler disables performance profiling output.
	DisableProfiler()

	// SetTickRate sets the engine tick rate in frames per second.
	// The tick callback will be called at this rate for game logic updates.
	//
	// Parameters:
	//   - fps: target frames per second (defaults to 60 if <= 0)
	SetTickRate(fps float64)

	// SetTickCallback registers the function called each engine tick.
	// Use this for game logic, input processing, and camera updates. It runs on the tick goroutine
	// and must not touch the device.
	//
	// Parameters:
	//   - callback: function to call at the configured tick rate, receiving the delta time in seconds
	SetTickCallback(callback func(deltaTime float32))

	// SetRenderCallback registers the function called each render frame on the thread that owns
	// the GL context. Use this to configure the device and issue draws. A returned error is logged
	// and the frame is still presented.
	//
	// Parameters:
	//   - callback: function to call each render frame, receiving the delta time in seconds
	SetRenderCallback(callback func(deltaTime float32) error)

	// SetRenderFrameLimit sets an optional render frame rate cap in frames per second.
	// Pass 0 to uncap the render loop (default).
	//
	// Parameters:
	//   - fps: maximum render frames per second (0 = uncapped)
	SetRenderFrameLimit(fps float64)

	// Paused reports whether the engine is waiting for a context restore.
	//
	// Returns:
	//   - bool: true while the device's context is lost
	Paused() bool

	// RequestContextRecreate asks the render loop to destroy and recreate the GL context before
	// its next frame. Safe to call from any goroutine, including input callbacks.
	RequestContextRecreate()

	// RecreateContext destroys the window's GL context, creates a new one and restores every
	// device resource into it. Must be called on the thread that owns the context.
	//
	// Returns:
	//   - error: error if the new context could not be created or restored
	RecreateContext() error

	// Run starts the main engine loop (blocks until the window closes or Quit is called).
	Run()

	// Quit signals all engine goroutines to stop and shuts down the engine.
	// Safe to call multiple times; subsequent calls are no-ops.
	Quit()
}

// NewEngine creates a new Engine instance with the provided options.
// When no window is supplied one is created from the window options. The window's context is
// made current on the calling thread, which becomes the render thread, and the render device is
// created on it.
//
// Parameters:
//   - options: functional options for engine configuration (window, profiling, tick rate, etc.)
//
// Returns:
//   - Engine: the newly created engine
//   - error: error if the GL context or the render device could not be initialized
func NewEngine(options ...EngineBuilderOption) (Engine, error) {
	e := newEngine(options...)
	if e.window == nil {
		e.window = window.NewWindow(e.windowOptions...)
	}
	if err := e.init(); err != nil {
		return nil, err
	}
	return e, nil
}

func newEngine(options ...EngineBuilderOption) *engine {
	e := &engine{
		tickRateChannel: make(chan time.Duration, 1),
		quitChannel:     make(chan struct{}),
		logger:          slog.Default(),
		loadContext:     loadGoGL,
		profiler:        profiler.NewProfiler(),
		engineTickRate:  time.Second / 60,
	}
	for _, opt := range options {
		opt(e)
	}
	e.profiler.SetLogger(e.logger)
	return e
}

// init creates the device on the window's context and wires window events into it.
func (e *engine) init() error {
	e.window.MakeContextCurrent()
	f, err := e.loadContext()
	if err != nil {
		return fmt.Errorf("failed to load OpenGL functions: %w", err)
	}
	d, err := device.New(f, e.window.Width(), e.window.Height(), e.deviceOptions...)
	if err != nil {
		return fmt.Errorf("failed to create render device: %w", err)
	}
	e.functions = f
	e.device = d

	d.OnContextLost(func() {
		e.paused.Store(true)
		e.logger.Warn("render context lost, pausing")
	})
	d.OnContextRestored(func() {
		e.paused.Store(false)
		e.logger.Info("render context restored, resuming")
	})

	e.window.SetResizeCallback(func(width, height int) {
		e.device.Resize(width, height)
	})
	e.window.SetContextLostCallback(func() {
		e.functions.Invalidate()
		e.device.LoseContext()
	})
	return nil
}

func (e *engine) Window() window.Window {
	return e.window
}

func (e *engine) Device() device.Device {
	return e.device
}

func (e *engine) Paused() bool {
	return e.paused.Load()
}

func (e *engine) RequestContextRecreate() {
	e.recreateRequested.Store(true)
}

func (e *engine) RecreateContext() error {
	if err := e.window.RecreateContext(); err != nil {
		return fmt.Errorf("failed to recreate window context: %w", err)
	}
	f, err := e.loadContext()
	if err != nil {
		return fmt.Errorf("failed to load OpenGL functions: %w", err)
	}
	e.functions = f
	if err := e.device.RestoreContext(f); err != nil {
		return fmt.Errorf("failed to restore render device: %w", err)
	}
	e.device.Resize(e.window.Width(), e.window.Height())
	return nil
}

func (e *engine) Run() {
	e.running.Store(true)
	e.lastRender = time.Now()
	e.window.SetUpdateCallback(e.renderFrame)

	e.wg.Add(1)
	go e.handleEngine()

	e.window.ProcessMessages()

	e.signalQuit()
	e.wg.Wait()
	e.shutdown()
}

// Quit signals all engine goroutines to stop and shuts down the engine.
// Safe to call multiple times; subsequent calls are no-ops due to sync.Once.
func (e *engine) Quit() {
	e.signalQuit()
}

// signalQuit closes the quit channel to signal all goroutines to exit.
// Uses sync.Once to ensure the channel is only closed once.
func (e *engine) signalQuit() {
	e.quitOnce.Do(func() {
		e.running.Store(false)
		close(e.quitChannel)
	})
}

// shutdown releases the device's GL objects while the context is still alive, then closes the
// window.
func (e *engine) shutdown() {
	e.shutdownOnce.Do(func() {
		e.device.Destroy()
		if err := e.window.Close(); err != nil {
			e.logger.Debug("window already closed", slog.Any("error", err))
		}
	})
}

// handleEngine runs the fixed-rate engine tick loop in its own goroutine.
// Fires the tick callback at the configured tick rate and listens for dynamic rate changes
// via tickRateChannel. Ticks are skipped while the engine is paused. Exits when the quit channel
// is closed.
func (e *engine) handleEngine() {
	defer e.wg.Done()

	ticker := time.NewTicker(e.engineTickRate)
	defer ticker.Stop()

	lastTick := time.Now()

	for {
		select {
		case <-e.quitChannel:
			return
		case <-ticker.C:
			now := time.Now()
			dt := float32(now.Sub(lastTick).Seconds())
			lastTick = now

			if e.tickCallback != nil && !e.paused.Load() {
				e.tickCallback(dt)
			}
		case newRate := <-e.tickRateChannel:
			ticker.Reset(newRate)
			e.engineTickRate = newRate
		}
	}
}

// renderFrame runs one iteration of the render loop on the context's thread: a pending context
// recreation first, then the render callback, buffer swap, profiling and the frame limit.
func (e *engine) renderFrame() {
	select {
	case <-e.quitChannel:
		e.shutdown()
		return
	default:
	}

	if e.recreateRequested.CompareAndSwap(true, false) {
		if err := e.RecreateContext(); err != nil {
			e.logger.Error("context recreation failed", slog.Any("error", err))
			e.signalQuit()
			return
		}
	}

	now := time.Now()
	dt := float32(now.Sub(e.lastRender).Seconds())
	e.lastRender = now

	if e.paused.Load() {
		return
	}

	if e.renderCallback != nil {
		if err := e.renderCallback(dt); err != nil {
			e.logger.Error("render callback failed", slog.Any("error", err))
		}
	}
	e.window.SwapBuffers()

	if e.profilingEnabled && e.profiler.Tick(e.device.Stats()) {
		e.device.ResetStats()
	}

	// Frame rate limiting
	if e.renderFrameLimit > 0 {
		if remaining := e.renderFrameLimit - time.Since(now); remaining > 0 {
			time.Sleep(remaining)
		}
	}
}

// EnableProfiler enables performance profiling output to the log.
func (e *engine) EnableProfiler() {
	e.profilingEnabled = true
}

// DisableProfiler disables performance profiling output.
func (e *engine) DisableProfiler() {
	e.profilingEnabled = false
}

// SetTickRate sets the engine tick rate in frames per second.
// If the engine is running, the change takes effect immediately.
func (e *engine) SetTickRate(fps float64) {
	if fps <= 0 {
		fps = 60
	}
	newRate := time.Duration(float64(time.Second) / fps)

	if e.running.Load() {
		// Non-blocking send - if channel is full, replace the pending value
		select {
		case e.tickRateChannel <- newRate:
		default:
			select {
			case <-e.tickRateChannel:
			default:
			}
			e.tickRateChannel <- newRate
		}
	} else {
		e.engineTickRate = newRate
	}
}

// SetTickCallback registers the function called each engine tick.
func (e *engine) SetTickCallback(callback func(deltaTime float32)) {
	e.tickCallback = callback
}

// SetRenderCallback registers the function called each render frame.
func (e *engine) SetRenderCallback(callback func(deltaTime float32) error) {
	e.renderCallback = callback
}

// SetRenderFrameLimit sets an optional render frame rate cap.
// Pass 0 to uncap the render loop.
func (e *engine) SetRenderFrameLimit(fps float64) {
	if fps <= 0 {
		e.renderFrameLimit = 0
		return
	}
	e.renderFrameLimit = time.Duration(float64(time.Second) / fps)
}
