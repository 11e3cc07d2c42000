// Package device turns logical pipeline configuration into the minimal stream of OpenGL calls.
//
// Callers stage state with the Set* methods, commit it with Apply and then draw. GPU objects are
// created lazily from the logical resources in package resource the first time Apply (or
// SetProgramVariable) needs them, are released when the resource is released, and are recreated
// from the same resources when the host restores a lost context.
//
// A Device is not safe for concurrent use. It must be driven from the goroutine that owns the GL
// context, and loss and restore notifications must be delivered between device calls.
package device

import (
	"errors"
	"fmt"
	"log/slog"
	"slices"

	"github.com/Carmen-Shannon/oxy-gl/common"
	"github.com/Carmen-Shannon/oxy-gl/engine/renderer/glapi"
	"github.com/Carmen-Shannon/oxy-gl/engine/renderer/resource"
)

// pipelineState is one full set of logical configuration: either staged (pending) or last
// applied. Applied blend, depth and cull values are always resolved (never *Default).
type pipelineState struct {
	topology      Topology
	program       resource.Program
	vertexBuffers []resource.Buffer
	indexBuffer   resource.Buffer
	renderTarget  resource.RenderTarget
	viewport      *common.Rect
	scissor       *common.Rect
	blend         BlendState
	depth         DepthState
	cull          CullState

	clearColor        common.Color
	clearDepth        float32
	clearColorPending bool
	clearDepthPending bool
}

func (s pipelineState) clone() pipelineState {
	s.vertexBuffers = slices.Clone(s.vertexBuffers)
	s.viewport = cloneRect(s.viewport)
	s.scissor = cloneRect(s.scissor)
	return s
}

func cloneRect(r *common.Rect) *common.Rect {
	if r == nil {
		return nil
	}
	c := *r
	return &c
}

// defaults are the values nil and *Default arguments resolve to.
type defaults struct {
	blend      BlendState
	depth      DepthState
	cull       CullState
	clearColor common.Color
	clearDepth float32
}

// device is the implementation of the Device interface.
type device struct {
	f        glapi.Functions
	log      *slog.Logger
	caps     Caps
	cache    *bindingCache
	registry *registry
	stats    Stats
	defaults defaults

	width, height int
	lost          bool

	pending  pipelineState
	applied  pipelineState
	applyErr error

	// attribsDirty forces the attribute setup to be rebuilt on the next Apply.
	attribsDirty  bool
	attribBuffers []resource.Buffer
	vertexCount   int
	indexCount    int
	indexType     glapi.Enum
	indexSize     int

	claimed  []bool
	deferred map[resource.ID]map[string]any

	lostListeners     []func()
	restoredListeners []func()
	resizeListeners   []func(width, height int)
}

// Device is the render device: a state-tracking layer over one OpenGL context.
type Device interface {
	// SetPrimitiveTopology stages the primitive mode used by subsequent draws.
	//
	// Parameters:
	//   - topology: the primitive mode
	SetPrimitiveTopology(topology Topology)

	// SetVertexBuffers stages the buffers that supply vertex attributes, matched to program
	// attributes by name. Calling it with no buffers clears the set.
	//
	// Parameters:
	//   - buffers: the vertex buffers
	SetVertexBuffers(buffers ...resource.Buffer)

	// SetIndexBuffer stages the index buffer used by indexed draws, nil for none.
	//
	// Parameters:
	//   - buffer: the index buffer
	SetIndexBuffer(buffer resource.Buffer)

	// SetProgram stages the program, nil for none.
	//
	// Parameters:
	//   - program: the program
	SetProgram(program resource.Program)

	// SetViewPort stages the viewport, nil for the full size of the bound render target or device.
	//
	// Parameters:
	//   - rect: the viewport rectangle
	SetViewPort(rect *common.Rect)

	// SetScissor stages the scissor rectangle, nil to disable scissoring.
	//
	// Parameters:
	//   - rect: the scissor rectangle
	SetScissor(rect *common.Rect)

	// SetRenderTarget stages the render target, nil for the default framebuffer.
	//
	// Parameters:
	//   - target: the render target
	SetRenderTarget(target resource.RenderTarget)

	// SetCullState stages face culling.
	//
	// Parameters:
	//   - state: the cull state, CullDefault for the device default
	SetCullState(state CullState)

	// SetDepthState stages the depth test.
	//
	// Parameters:
	//   - state: the depth state, DepthDefault for the device default
	SetDepthState(state DepthState)

	// SetBlendState stages blending.
	//
	// Parameters:
	//   - state: the blend state, BlendDefault for the device default
	SetBlendState(state BlendState)

	// SetClearColor stages a color clear, executed once by the next Apply.
	//
	// Parameters:
	//   - color: the clear color, nil for the device default
	SetClearColor(color *common.Color)

	// SetClearDepth stages a depth clear, executed once by the next Apply.
	//
	// Parameters:
	//   - depth: the clear depth, nil for the device default
	SetClearDepth(depth *float32)

	// SetClearColorAndDepth stages a color and depth clear, executed once by the next Apply.
	//
	// Parameters:
	//   - color: the clear color, nil for the device default
	//   - depth: the clear depth, nil for the device default
	SetClearColorAndDepth(color *common.Color, depth *float32)

	// Apply commits all staged state with the fewest GL calls, creating GPU objects on first use.
	// While the context is lost Apply does nothing and returns nil.
	//
	// Returns:
	//   - error: ErrInvalidConfiguration, ErrUnsupportedCapability, ErrCompilationFailure or ErrLinkFailure
	Apply() error

	// Draw draws every vertex of the applied vertex buffers.
	//
	// Returns:
	//   - error: an error if nothing drawable is applied
	Draw() error

	// DrawSubSet draws count vertices starting at start, clipped to the applied vertex count.
	//
	// Parameters:
	//   - start: first vertex
	//   - count: number of vertices
	//
	// Returns:
	//   - error: an error if nothing drawable is applied
	DrawSubSet(start, count int) error

	// DrawIndexed draws every index of the applied index buffer.
	//
	// Returns:
	//   - error: ErrInvalidConfiguration if no index buffer is applied
	DrawIndexed() error

	// DrawIndexedSubSet draws count indices starting at start, clipped to the applied index count.
	//
	// Parameters:
	//   - start: first index
	//   - count: number of indices
	//
	// Returns:
	//   - error: ErrInvalidConfiguration if no index buffer is applied
	DrawIndexedSubSet(start, count int) error

	// DrawAuto draws indexed when an index buffer is applied, otherwise non-indexed.
	//
	// Returns:
	//   - error: an error if nothing drawable is applied
	DrawAuto() error

	// SetProgramVariable stages a uniform value on a program, linking the program if needed.
	//
	// Parameters:
	//   - program: the program
	//   - name: the uniform path, e.g. "lights[1].color"
	//   - value: the value; textures or render targets for samplers
	//
	// Returns:
	//   - error: ErrInvalidVariableName, ErrInvalidConfiguration or a link error
	SetProgramVariable(program resource.Program, name string, value any) error

	// ProgramVariables returns the uniform tree of a program, linking it if needed.
	//
	// Parameters:
	//   - program: the program
	//
	// Returns:
	//   - ProgramVariable: the root struct node
	//   - error: a link error
	ProgramVariables(program resource.Program) (ProgramVariable, error)

	// Resize changes the size of the default framebuffer. The default viewport follows on the
	// next Apply.
	//
	// Parameters:
	//   - width: new width in pixels
	//   - height: new height in pixels
	//
	// Returns:
	//   - bool: false when the size is unchanged
	Resize(width, height int) bool

	// ViewPortWidth returns the width of the viewport the next Apply will use.
	//
	// Returns:
	//   - int: width in pixels
	ViewPortWidth() int

	// ViewPortHeight returns the height of the viewport the next Apply will use.
	//
	// Returns:
	//   - int: height in pixels
	ViewPortHeight() int

	// OnContextLost registers a callback fired when the device enters the lost state.
	//
	// Parameters:
	//   - fn: the callback
	OnContextLost(fn func())

	// OnContextRestored registers a callback fired after a successful restore.
	//
	// Parameters:
	//   - fn: the callback
	OnContextRestored(fn func())

	// OnResize registers a callback fired when Resize changes the size.
	//
	// Parameters:
	//   - fn: the callback
	OnResize(fn func(width, height int))

	// LoseContext tells the device its context is gone. Further GL work is skipped until
	// RestoreContext.
	LoseContext()

	// RestoreContext rebuilds every GPU object on a replacement context and replays the applied
	// state.
	//
	// Parameters:
	//   - f: the functions of the new context
	//
	// Returns:
	//   - error: resources that could not be recreated (shader and program failures are only logged)
	RestoreContext(f glapi.Functions) error

	// IsContextLost reports whether the device is in the lost state.
	//
	// Returns:
	//   - bool: true while lost
	IsContextLost() bool

	// Caps returns the limits queried from the current context.
	//
	// Returns:
	//   - Caps: the capabilities
	Caps() Caps

	// Stats returns the counters accumulated since creation or the last ResetStats.
	//
	// Returns:
	//   - Stats: the counters
	Stats() Stats

	// ResetStats zeroes the counters.
	ResetStats()

	// Release deletes the GPU objects of a resource without releasing the resource itself. They
	// are recreated on next use.
	//
	// Parameters:
	//   - res: the resource
	Release(res resource.Resource)

	// Destroy releases every GPU object the device owns.
	Destroy()
}

var _ Device = &device{}

// New creates a device on the context behind f, which must be current on the calling thread.
//
// Parameters:
//   - f: the GL functions of the context
//   - width: width of the default framebuffer
//   - height: height of the default framebuffer
//   - options: builder options
//
// Returns:
//   - Device: the new device
//   - error: an error if the context is lost or lacks required limits
func New(f glapi.Functions, width, height int, options ...DeviceBuilderOption) (Device, error) {
	if f == nil {
		return nil, fmt.Errorf("%w: nil GL functions", ErrInvalidConfiguration)
	}
	if f.IsContextLost() {
		return nil, errors.New("cannot create a device on a lost context")
	}
	d := &device{
		f:      f,
		width:  width,
		height: height,
		defaults: defaults{
			blend:      BlendNone,
			depth:      DepthLess,
			cull:       CullBack,
			clearColor: common.Black,
			clearDepth: 1,
		},
		deferred: make(map[resource.ID]map[string]any),
	}
	for _, opt := range options {
		opt(d)
	}
	if err := d.bind(f); err != nil {
		return nil, err
	}
	d.registry = newRegistry(d)
	d.initState()
	d.logger().Info("render device created",
		"vendor", d.caps.Vendor,
		"renderer", d.caps.Renderer,
		"version", d.caps.Version,
		"maxTextureSize", d.caps.MaxTextureSize,
		"textureUnits", d.caps.MaxTextureUnits,
	)
	return d, nil
}

// bind attaches the device to f: queries limits and resets the binding cache to a fresh context.
func (d *device) bind(f glapi.Functions) error {
	caps := queryCaps(f)
	if caps.MaxTextureUnits <= 0 || caps.MaxVertexAttribs <= 0 {
		return fmt.Errorf("%w: context reports %d texture units and %d vertex attributes", ErrUnsupportedCapability, caps.MaxTextureUnits, caps.MaxVertexAttribs)
	}
	d.f = f
	d.caps = caps
	if d.cache == nil {
		d.cache = newBindingCache(f, &d.stats, caps.MaxTextureUnits, caps.MaxVertexAttribs)
	} else {
		d.cache.reset(f, caps.MaxTextureUnits, caps.MaxVertexAttribs)
	}
	d.claimed = make([]bool, caps.MaxTextureUnits)
	return nil
}

// initState puts the device defaults on a fresh context and records them as applied.
func (d *device) initState() {
	d.applied = pipelineState{clearDepth: 1}
	d.attribsDirty = true
	d.attribBuffers = nil
	d.vertexCount, d.indexCount = 0, 0
	d.applyErr = nil
	d.applyBlend(d.defaults.blend)
	d.applyDepth(d.defaults.depth)
	d.applyCull(d.defaults.cull)
	d.cache.set(glapi.SCISSOR_TEST, false)
	d.cache.setViewport(common.Rect{Width: d.width, Height: d.height})
}

func (d *device) logger() *slog.Logger {
	if d.log != nil {
		return d.log
	}
	return Logger()
}

// contextLost reports loss either signalled by the host or detected on the functions.
func (d *device) contextLost() bool {
	return d.lost || d.f.IsContextLost()
}

func (d *device) SetPrimitiveTopology(topology Topology) {
	d.pending.topology = topology
}

func (d *device) SetVertexBuffers(buffers ...resource.Buffer) {
	d.pending.vertexBuffers = slices.Clone(buffers)
}

func (d *device) SetIndexBuffer(buffer resource.Buffer) {
	d.pending.indexBuffer = buffer
}

func (d *device) SetProgram(program resource.Program) {
	d.pending.program = program
}

func (d *device) SetViewPort(rect *common.Rect) {
	d.pending.viewport = cloneRect(rect)
}

func (d *device) SetScissor(rect *common.Rect) {
	d.pending.scissor = cloneRect(rect)
}

func (d *device) SetRenderTarget(target resource.RenderTarget) {
	d.pending.renderTarget = target
}

func (d *device) SetCullState(state CullState) {
	d.pending.cull = state
}

func (d *device) SetDepthState(state DepthState) {
	d.pending.depth = state
}

func (d *device) SetBlendState(state BlendState) {
	d.pending.blend = state
}

func (d *device) SetClearColor(color *common.Color) {
	d.pending.clearColor = *common.Coalesce(color, &d.defaults.clearColor)
	d.pending.clearColorPending = true
}

func (d *device) SetClearDepth(depth *float32) {
	d.pending.clearDepth = *common.Coalesce(depth, &d.defaults.clearDepth)
	d.pending.clearDepthPending = true
}

func (d *device) SetClearColorAndDepth(color *common.Color, depth *float32) {
	d.SetClearColor(color)
	d.SetClearDepth(depth)
}

func (d *device) resolveBlend(b BlendState) BlendState {
	if b == BlendDefault {
		return d.defaults.blend
	}
	return b
}

func (d *device) resolveDepth(s DepthState) DepthState {
	if s == DepthDefault {
		return d.defaults.depth
	}
	return s
}

func (d *device) resolveCull(c CullState) CullState {
	if c == CullDefault {
		return d.defaults.cull
	}
	return c
}

// viewport resolves the staged viewport against the staged render target.
func (d *device) viewport() common.Rect {
	if d.pending.viewport != nil {
		return *d.pending.viewport
	}
	if rt := d.pending.renderTarget; rt != nil {
		return common.Rect{Width: rt.Width(), Height: rt.Height()}
	}
	return common.Rect{Width: d.width, Height: d.height}
}

// drawable reports whether a draw should be issued: false without error while the context is lost.
func (d *device) drawable() (bool, error) {
	if d.lost {
		return false, nil
	}
	if d.f.IsContextLost() {
		d.LoseContext()
		return false, nil
	}
	if d.applyErr != nil {
		return false, fmt.Errorf("draw after failed apply: %w", d.applyErr)
	}
	if d.applied.program == nil {
		return false, fmt.Errorf("%w: draw without an applied program", ErrInvalidConfiguration)
	}
	return true, nil
}

func (d *device) Draw() error {
	return d.DrawSubSet(0, d.vertexCount)
}

func (d *device) DrawSubSet(start, count int) error {
	ok, err := d.drawable()
	if !ok {
		return err
	}
	if len(d.attribBuffers) > 0 {
		count = min(count, d.vertexCount-start)
	}
	if start < 0 || count <= 0 {
		return nil
	}
	d.f.DrawArrays(d.applied.topology.mode(), start, count)
	d.stats.Draws++
	return nil
}

func (d *device) DrawIndexed() error {
	return d.DrawIndexedSubSet(0, d.indexCount)
}

func (d *device) DrawIndexedSubSet(start, count int) error {
	ok, err := d.drawable()
	if !ok {
		return err
	}
	if d.applied.indexBuffer == nil {
		return fmt.Errorf("%w: indexed draw without an applied index buffer", ErrInvalidConfiguration)
	}
	count = min(count, d.indexCount-start)
	if start < 0 || count <= 0 {
		return nil
	}
	d.f.DrawElements(d.applied.topology.mode(), count, d.indexType, start*d.indexSize)
	d.stats.Draws++
	return nil
}

func (d *device) DrawAuto() error {
	if d.applied.indexBuffer != nil {
		return d.DrawIndexed()
	}
	return d.Draw()
}

func (d *device) SetProgramVariable(program resource.Program, name string, value any) error {
	if d.lost {
		pd := d.registry.lookup(program)
		if pd == nil || pd.needsUpdate {
			// Validated once the program links on the restored context.
			if d.deferred[program.ID()] == nil {
				d.deferred[program.ID()] = make(map[string]any)
			}
			d.deferred[program.ID()][name] = value
			return nil
		}
		return d.setVariable(pd, program, name, value)
	}
	pd, err := d.registry.ensure(program)
	if err != nil {
		if errors.Is(err, errContextLost) {
			d.LoseContext()
			return d.SetProgramVariable(program, name, value)
		}
		return err
	}
	return d.setVariable(pd, program, name, value)
}

func (d *device) setVariable(pd *descriptor, program resource.Program, name string, value any) error {
	v := pd.variables.lookup(name)
	if v == nil {
		return fmt.Errorf("%w: %q in program %q", ErrInvalidVariableName, name, program.Name())
	}
	return v.Set(value)
}

func (d *device) ProgramVariables(program resource.Program) (ProgramVariable, error) {
	if pd := d.registry.lookup(program); pd != nil && pd.variables != nil && (d.lost || !pd.needsUpdate) {
		return pd.variables.root, nil
	}
	if d.lost {
		return nil, fmt.Errorf("program %q is not linked while the context is lost", program.Name())
	}
	pd, err := d.registry.ensure(program)
	if err != nil {
		return nil, err
	}
	return pd.variables.root, nil
}

// deferValues keeps values for the next link of a program. A value already deferred for the same
// uniform is newer and is kept.
func (d *device) deferValues(id resource.ID, values map[string]any) {
	if len(values) == 0 {
		return
	}
	merged := d.deferred[id]
	if merged == nil {
		merged = make(map[string]any, len(values))
		d.deferred[id] = merged
	}
	for name, value := range values {
		if _, ok := merged[name]; !ok {
			merged[name] = value
		}
	}
}

// restoreValues stages previously set values on a freshly linked program. Values that no longer
// fit (the uniform was removed or changed type) are logged and dropped.
func (d *device) restoreValues(pd *descriptor, values map[string]any) {
	for name, value := range values {
		v := pd.variables.lookup(name)
		if v == nil {
			d.logger().Warn("uniform value dropped", "program", pd.res.Name(), "uniform", name)
			continue
		}
		if err := v.Set(value); err != nil {
			d.logger().Warn("uniform value dropped", "program", pd.res.Name(), "uniform", name, "err", err)
		}
	}
}

func (d *device) Resize(width, height int) bool {
	if width == d.width && height == d.height {
		return false
	}
	d.width, d.height = width, height
	for _, fn := range slices.Clone(d.resizeListeners) {
		fn(width, height)
	}
	return true
}

func (d *device) ViewPortWidth() int {
	return d.viewport().Width
}

func (d *device) ViewPortHeight() int {
	return d.viewport().Height
}

func (d *device) OnContextLost(fn func()) {
	d.lostListeners = append(d.lostListeners, fn)
}

func (d *device) OnContextRestored(fn func()) {
	d.restoredListeners = append(d.restoredListeners, fn)
}

func (d *device) OnResize(fn func(width, height int)) {
	d.resizeListeners = append(d.resizeListeners, fn)
}

func (d *device) IsContextLost() bool {
	return d.lost
}

func (d *device) Caps() Caps {
	return d.caps
}

func (d *device) Release(res resource.Resource) {
	d.registry.release(res)
}

func (d *device) Destroy() {
	for _, res := range slices.Clone(d.registry.order) {
		d.registry.release(res)
	}
	clear(d.deferred)
	d.pending = pipelineState{}
	d.applied = pipelineState{}
	d.attribBuffers = nil
}
