package engine

import (
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/Carmen-Shannon/oxy-gl/common"
	"github.com/Carmen-Shannon/oxy-gl/engine/renderer/glapi/glapitest"
	"github.com/Carmen-Shannon/oxy-gl/engine/window"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// testContext adapts the recording GL to a destroyable context.
type testContext struct {
	*glapitest.Recorder
}

func (c testContext) Invalidate() {
	c.Lose()
}

// fakeWindow runs a fixed number of message loop iterations and records what the engine asks of it.
type fakeWindow struct {
	width, height int
	frames        int
	running       bool

	onUpdate func()
	onResize func(width, height int)
	onLost   func()

	swaps       int
	recreations int
	closed      int
	current     int
}

var _ window.Window = &fakeWindow{}

func newFakeWindow(frames int) *fakeWindow {
	return &fakeWindow{width: 640, height: 480, frames: frames, running: true}
}

func (w *fakeWindow) SetUpdateCallback(callback func())                  { w.onUpdate = callback }
func (w *fakeWindow) SetResizeCallback(callback func(width, height int)) { w.onResize = callback }
func (w *fakeWindow) SetScrollCallback(func(delta float32))              {}
func (w *fakeWindow) SetKeyDownCallback(func(keyCode uint32))            {}
func (w *fakeWindow) SetKeyUpCallback(func(keyCode uint32))              {}
func (w *fakeWindow) SetMiddleMouseDownCallback(func(x, y int32))        {}
func (w *fakeWindow) SetMiddleMouseUpCallback(func(x, y int32))          {}
func (w *fakeWindow) SetMouseMoveCallback(func(x, y int32))              {}
func (w *fakeWindow) SetContextLostCallback(callback func())             { w.onLost = callback }
func (w *fakeWindow) MakeContextCurrent()                                { w.current++ }
func (w *fakeWindow) SwapBuffers()                                       { w.swaps++ }
func (w *fakeWindow) IsRunning() bool                                    { return w.running }
func (w *fakeWindow) Width() int                                         { return w.width }
func (w *fakeWindow) Height() int                                        { return w.height }

func (w *fakeWindow) RecreateContext() error {
	if w.onLost != nil {
		w.onLost()
	}
	w.recreations++
	w.current++
	return nil
}

func (w *fakeWindow) Close() error {
	w.running = false
	w.closed++
	return nil
}

func (w *fakeWindow) ProcessMessages() {
	for i := 0; i < w.frames && w.running; i++ {
		if w.onUpdate != nil {
			w.onUpdate()
		}
	}
}

// newTestEngine builds an engine on a fake window whose contexts are recorders.
func newTestEngine(t *testing.T, w *fakeWindow, options ...EngineBuilderOption) (*engine, *[]*glapitest.Recorder) {
	t.Helper()
	var contexts []*glapitest.Recorder
	e := newEngine(append([]EngineBuilderOption{WithWindow(w)}, options...)...)
	e.loadContext = func() (contextFunctions, error) {
		r := glapitest.New()
		contexts = append(contexts, r)
		return testContext{r}, nil
	}
	require.NoError(t, e.init())
	return e, &contexts
}

func TestEngine_RunRendersAndShutsDown(t *testing.T) {
	assert := assert.New(t)
	w := newFakeWindow(3)
	e, contexts := newTestEngine(t, w)
	assert.Equal(1, w.current)

	var frames int
	e.SetRenderCallback(func(dt float32) error {
		frames++
		e.Device().SetClearColor(&common.Color{R: 1, A: 1})
		return e.Device().Apply()
	})
	e.Run()

	assert.Equal(3, frames)
	assert.Equal(3, w.swaps)
	assert.Equal(1, w.closed)
	assert.Equal([4]float32{1, 0, 0, 1}, (*contexts)[0].Snapshot().ClearColor)
	assert.Zero(e.Device().Stats().LiveDescriptors)
}

func TestEngine_QuitStopsTheLoop(t *testing.T) {
	w := newFakeWindow(10)
	e, _ := newTestEngine(t, w)
	var frames int
	e.SetRenderCallback(func(dt float32) error {
		frames++
		e.Quit()
		return nil
	})
	e.Run()
	assert.Equal(t, 1, frames)
	assert.Equal(t, 1, w.closed)
	e.Quit()
}

func TestEngine_RenderErrorsAreLogged(t *testing.T) {
	w := newFakeWindow(2)
	e, _ := newTestEngine(t, w)
	e.SetRenderCallback(func(dt float32) error {
		return errors.New("frame failed")
	})
	e.Run()
	assert.Equal(t, 2, w.swaps, "a failed frame is still presented")
}

func TestEngine_Resize(t *testing.T) {
	w := newFakeWindow(0)
	e, _ := newTestEngine(t, w)
	var resized [2]int
	e.Device().OnResize(func(width, height int) { resized = [2]int{width, height} })

	w.onResize(800, 600)
	assert.Equal(t, 800, e.Device().ViewPortWidth())
	assert.Equal(t, 600, e.Device().ViewPortHeight())
	assert.Equal(t, [2]int{800, 600}, resized)
}

func TestEngine_PausedWhileLost(t *testing.T) {
	assert := assert.New(t)
	w := newFakeWindow(0)
	e, contexts := newTestEngine(t, w)
	var frames int
	e.SetRenderCallback(func(dt float32) error {
		frames++
		return nil
	})

	// The window lost its context on its own.
	w.onLost()
	assert.True(e.Paused())
	assert.True((*contexts)[0].IsContextLost())
	e.renderFrame()
	assert.Zero(frames)
	assert.Zero(w.swaps)

	require.NoError(t, e.RecreateContext())
	assert.False(e.Paused())
	require.Len(t, *contexts, 2)
	e.renderFrame()
	assert.Equal(1, frames)
}

func TestEngine_RequestContextRecreate(t *testing.T) {
	assert := assert.New(t)
	w := newFakeWindow(2)
	e, contexts := newTestEngine(t, w)
	var lost, restored int
	e.Device().OnContextLost(func() { lost++ })
	e.Device().OnContextRestored(func() { restored++ })

	w.width, w.height = 320, 200
	e.SetRenderCallback(func(dt float32) error {
		return e.Device().Apply()
	})
	e.RequestContextRecreate()
	e.Run()

	assert.Equal(1, w.recreations)
	assert.Equal(1, lost)
	assert.Equal(1, restored)
	require.Len(t, *contexts, 2)
	assert.Equal([4]int{0, 0, 320, 200}, (*contexts)[1].Snapshot().Viewport)
	assert.Empty((*contexts)[1].Errors())
}

func TestEngine_Ticks(t *testing.T) {
	w := newFakeWindow(1)
	e, _ := newTestEngine(t, w, WithTickRate(1000))
	var ticks atomic.Int32
	e.SetTickCallback(func(dt float32) { ticks.Add(1) })
	e.SetRenderCallback(func(dt float32) error {
		time.Sleep(30 * time.Millisecond)
		return nil
	})
	e.Run()
	assert.Positive(t, ticks.Load())
}

func TestEngine_Rates(t *testing.T) {
	assert := assert.New(t)
	e := newEngine(WithTickRate(-1), WithRenderFrameLimit(50))
	assert.Equal(time.Second/60, e.engineTickRate)
	assert.Equal(20*time.Millisecond, e.renderFrameLimit)

	e.SetTickRate(120)
	assert.Equal(time.Second/120, e.engineTickRate)
	e.SetRenderFrameLimit(0)
	assert.Zero(e.renderFrameLimit)
}
