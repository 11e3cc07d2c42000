package device

import (
	"fmt"
	"slices"
	"strings"

	"github.com/Carmen-Shannon/oxy-gl/engine/renderer/glapi"
	"github.com/Carmen-Shannon/oxy-gl/engine/renderer/resource"
)

// registry owns the descriptors of one device, keyed by logical resource ID. It listens to every
// resource it created a descriptor for and keeps creation order for context restore.
type registry struct {
	dev   *device
	pool  descriptorPool
	slots map[resource.ID]int
	order []resource.Resource
}

var _ resource.Listener = &registry{}

func newRegistry(dev *device) *registry {
	return &registry{dev: dev, slots: make(map[resource.ID]int)}
}

func (r *registry) lookup(res resource.Resource) *descriptor {
	if slot, ok := r.slots[res.ID()]; ok {
		return r.pool.get(slot)
	}
	return nil
}

// ensure returns the live descriptor of res, creating the GPU objects on first use. A descriptor
// flagged needsUpdate (shader source changed) is recompiled or relinked first.
func (r *registry) ensure(res resource.Resource) (*descriptor, error) {
	if d := r.lookup(res); d != nil {
		if d.needsUpdate {
			if err := r.rebuild(d); err != nil {
				return nil, err
			}
		}
		return d, nil
	}
	if res.Released() {
		return nil, fmt.Errorf("%w: %s %q was released", ErrInvalidConfiguration, res.Kind(), res.Name())
	}

	d := r.pool.acquire(res)
	var err error
	switch res.Kind() {
	case resource.KindShader:
		err = r.createShader(d, res.(resource.Shader))
	case resource.KindProgram:
		err = r.createProgram(d, res.(resource.Program))
	case resource.KindBuffer:
		err = r.createBuffer(d, res.(resource.Buffer))
	case resource.KindTexture:
		err = r.createTexture(d, res.(resource.Texture))
	case resource.KindRenderTarget:
		err = r.createRenderTarget(d, res.(resource.RenderTarget))
	default:
		err = fmt.Errorf("%w: unknown resource kind %s", ErrInvalidConfiguration, res.Kind())
	}
	if err != nil {
		r.destroy(d)
		r.pool.release(d)
		return nil, err
	}

	r.slots[res.ID()] = d.slot
	r.order = append(r.order, res)
	res.Subscribe(r)
	r.dev.stats.DescriptorsCreated++
	r.dev.logger().Debug("descriptor created", "kind", res.Kind().String(), "name", res.Name(), "id", uint64(res.ID()))
	return d, nil
}

func (r *registry) OnResourceEvent(res resource.Resource, e resource.Event) {
	if e == resource.EventReleased {
		r.release(res)
		return
	}
	d := r.lookup(res)
	if d == nil {
		return
	}
	switch e {
	case resource.EventDataChanged:
		switch res := res.(type) {
		case resource.Shader:
			r.invalidateShader(d, res)
		case resource.Buffer:
			d.markWritten(res.LastWrite())
		default:
			d.dataChanged = true
		}
	case resource.EventSizeChanged:
		d.sizeChanged = true
	case resource.EventParametersChanged:
		d.paramsChanged = true
	}
}

// invalidateShader schedules a recompile of the shader and a relink of every program using it.
func (r *registry) invalidateShader(d *descriptor, s resource.Shader) {
	d.needsUpdate = true
	for _, res := range r.order {
		p, ok := res.(resource.Program)
		if !ok || (p.VertexShader() != s && p.FragmentShader() != s) {
			continue
		}
		if pd := r.lookup(p); pd != nil {
			pd.needsUpdate = true
		}
	}
}

// release deletes the GPU objects of res and returns its descriptor to the pool. While the
// context is lost the objects are already gone and only the bookkeeping is dropped. A resource
// released on the device only, not by its owner, is recreated on next use: a program gets its
// staged values back, and state referring to the old objects is rebuilt.
func (r *registry) release(res resource.Resource) {
	d := r.lookup(res)
	if d == nil {
		return
	}
	if !r.dev.lost {
		r.destroy(d)
	}
	switch res := res.(type) {
	case resource.Program:
		if r.dev.applied.program == res {
			r.dev.attribsDirty = true
		}
		if res.Released() {
			delete(r.dev.deferred, res.ID())
		} else if d.variables != nil {
			r.dev.deferValues(res.ID(), d.variables.pendingValues())
		}
	case resource.Buffer:
		if slices.Contains(r.dev.attribBuffers, res) {
			r.dev.attribsDirty = true
		}
	case resource.Texture:
		r.releaseAttachments(res)
	}
	r.forget(d)
	r.dev.stats.DescriptorsReleased++
	r.dev.logger().Debug("descriptor released", "kind", res.Kind().String(), "name", res.Name(), "id", uint64(res.ID()))
}

// releaseAttachments releases every render target with t attached so its framebuffer is
// assembled again around the recreated texture.
func (r *registry) releaseAttachments(t resource.Texture) {
	var targets []resource.Resource
	for _, res := range r.order {
		if rt, ok := res.(resource.RenderTarget); ok && slices.Contains(rt.ColorTextures(), t) {
			targets = append(targets, rt)
		}
	}
	for _, rt := range targets {
		r.release(rt)
	}
}

func (r *registry) forget(d *descriptor) {
	res := d.res
	delete(r.slots, res.ID())
	r.order = slices.DeleteFunc(r.order, func(o resource.Resource) bool { return o.ID() == res.ID() })
	res.Unsubscribe(r)
	r.pool.release(d)
}

// dropAll forgets every descriptor without GL calls; the objects died with the old context.
func (r *registry) dropAll() {
	for _, res := range r.order {
		if d := r.lookup(res); d != nil {
			r.pool.release(d)
		}
		res.Unsubscribe(r)
	}
	r.slots = make(map[resource.ID]int)
	r.order = nil
}

// destroy deletes whatever GPU objects d holds, keeping the binding cache in step.
func (r *registry) destroy(d *descriptor) {
	c := r.dev.cache
	if d.shader != 0 {
		r.dev.f.DeleteShader(d.shader)
	}
	if d.program != 0 {
		c.deleteProgram(d.program)
	}
	if d.buffer != 0 {
		c.deleteBuffer(d.buffer)
	}
	if d.texture != 0 {
		c.deleteTexture(d.texture)
	}
	if d.framebuffer != 0 {
		c.deleteFramebuffer(d.framebuffer)
	}
	if d.renderbuffer != 0 {
		c.deleteRenderbuffer(d.renderbuffer)
	}
}

// failure reports a compile or link failure, unless the context went away meanwhile: a dead
// context fails every compile, so the failure is an artifact of the loss.
func (r *registry) failure(sentinel error, what, infoLog string) error {
	if r.dev.contextLost() {
		r.dev.logger().Warn("failure suppressed on lost context", "what", what, "err", sentinel)
		return errContextLost
	}
	return fmt.Errorf("%w: %s: %s", sentinel, what, strings.TrimSpace(infoLog))
}

func (r *registry) createShader(d *descriptor, s resource.Shader) error {
	f := r.dev.f
	typ, stage := glapi.VERTEX_SHADER, "vertex"
	if s.Type() == resource.ShaderTypeFragment {
		typ, stage = glapi.FRAGMENT_SHADER, "fragment"
	}
	h := f.CreateShader(typ)
	f.ShaderSource(h, s.Source())
	f.CompileShader(h)
	if f.GetShaderi(h, glapi.COMPILE_STATUS) == glapi.FALSE {
		infoLog := f.GetShaderInfoLog(h)
		f.DeleteShader(h)
		return r.failure(ErrCompilationFailure, fmt.Sprintf("%s shader %q", stage, s.Name()), infoLog)
	}
	d.shader = h
	return nil
}

func (r *registry) createProgram(d *descriptor, p resource.Program) error {
	vs, err := r.ensure(p.VertexShader())
	if err != nil {
		return err
	}
	fs, err := r.ensure(p.FragmentShader())
	if err != nil {
		return err
	}

	f := r.dev.f
	h := f.CreateProgram()
	f.AttachShader(h, vs.shader)
	f.AttachShader(h, fs.shader)
	f.LinkProgram(h)
	if f.GetProgrami(h, glapi.LINK_STATUS) == glapi.FALSE {
		infoLog := f.GetProgramInfoLog(h)
		r.dev.cache.deleteProgram(h)
		return r.failure(ErrLinkFailure, fmt.Sprintf("program %q", p.Name()), infoLog)
	}
	d.program = h
	d.variables = newProgramVariables(r.activeUniforms(h))
	d.attributes = r.activeAttributes(h)
	if values, ok := r.dev.deferred[p.ID()]; ok {
		delete(r.dev.deferred, p.ID())
		r.dev.restoreValues(d, values)
	}
	return nil
}

func (r *registry) activeUniforms(h glapi.Program) []activeUniform {
	f := r.dev.f
	n := f.GetProgrami(h, glapi.ACTIVE_UNIFORMS)
	uniforms := make([]activeUniform, 0, n)
	for i := 0; i < n; i++ {
		v := f.GetActiveUniform(h, i)
		loc := f.GetUniformLocation(h, v.Name)
		if loc < 0 {
			// Members of uniform blocks have no location.
			continue
		}
		uniforms = append(uniforms, activeUniform{name: v.Name, size: v.Size, typ: v.Type, location: loc})
	}
	return uniforms
}

func (r *registry) activeAttributes(h glapi.Program) []activeAttribute {
	f := r.dev.f
	n := f.GetProgrami(h, glapi.ACTIVE_ATTRIBUTES)
	attrs := make([]activeAttribute, 0, n)
	for i := 0; i < n; i++ {
		v := f.GetActiveAttrib(h, i)
		if strings.HasPrefix(v.Name, "gl_") {
			continue
		}
		loc := f.GetAttribLocation(h, v.Name)
		if loc < 0 {
			continue
		}
		columns := 1
		switch v.Type {
		case glapi.FLOAT_MAT2:
			columns = 2
		case glapi.FLOAT_MAT3:
			columns = 3
		case glapi.FLOAT_MAT4:
			columns = 4
		}
		attrs = append(attrs, activeAttribute{name: v.Name, location: loc, columns: columns})
	}
	return attrs
}

// rebuild recompiles a shader or relinks a program in place after a source change. The values
// staged on the old uniforms are deferred to the next successful link.
func (r *registry) rebuild(d *descriptor) error {
	switch res := d.res.(type) {
	case resource.Shader:
		if d.shader != 0 {
			r.dev.f.DeleteShader(d.shader)
			d.shader = 0
		}
		if err := r.createShader(d, res); err != nil {
			return err
		}
	case resource.Program:
		if d.variables != nil {
			r.dev.deferValues(res.ID(), d.variables.pendingValues())
		}
		if d.program != 0 {
			r.dev.cache.deleteProgram(d.program)
		}
		d.program, d.variables, d.attributes = 0, nil, nil
		if err := r.createProgram(d, res); err != nil {
			return err
		}
		r.dev.attribsDirty = true
	}
	d.needsUpdate = false
	return nil
}

func (r *registry) createBuffer(d *descriptor, b resource.Buffer) error {
	d.target = glapi.ARRAY_BUFFER
	if b.BufferKind() == resource.BufferKindIndex {
		d.target = glapi.ELEMENT_ARRAY_BUFFER
	}
	d.buffer = r.dev.f.CreateBuffer()
	r.dev.cache.bindBuffer(d.target, d.buffer)
	r.dev.f.BufferData(d.target, b.Size(), b.Data(), bufferUsage(b.Usage()))
	d.size = b.Size()
	return nil
}

// updateBuffer uploads pending changes to a buffer that is bound on its target: a new allocation
// when the size changed, otherwise the written range only.
func (r *registry) updateBuffer(d *descriptor, b resource.Buffer) {
	switch {
	case d.sizeChanged || d.size != b.Size():
		r.dev.f.BufferData(d.target, b.Size(), b.Data(), bufferUsage(b.Usage()))
		d.size = b.Size()
	case d.dataChanged && d.dirtyTo > d.dirtyFrom:
		r.dev.f.BufferSubData(d.target, d.dirtyFrom, b.Data()[d.dirtyFrom:d.dirtyTo])
	}
	d.clean()
}

func (r *registry) checkTextureSize(t resource.Texture) error {
	limit := r.dev.caps.MaxTextureSize
	if t.Width() <= 0 || t.Height() <= 0 || t.Width() > limit || t.Height() > limit {
		return fmt.Errorf("%w: texture %q is %dx%d, limit is %d", ErrUnsupportedCapability, t.Name(), t.Width(), t.Height(), limit)
	}
	return nil
}

func (r *registry) createTexture(d *descriptor, t resource.Texture) error {
	if err := r.checkTextureSize(t); err != nil {
		return err
	}
	if !r.dev.caps.SupportsFormat(t.Format(), false) {
		return fmt.Errorf("%w: texture %q format %d", ErrUnsupportedCapability, t.Name(), t.Format())
	}
	d.target = textureTarget(t.Target())
	d.texture = r.dev.f.CreateTexture()
	r.withTexture(d, func() {
		r.writeTexture(d, t, true, true)
	})
	return nil
}

// withTexture binds d on the active unit for fn and then restores the unit's previous binding, so
// creating or updating a texture leaves the sampler bindings untouched.
func (r *registry) withTexture(d *descriptor, fn func()) {
	c := r.dev.cache
	prev := c.boundTexture(c.activeUnit, d.target)
	c.bindTexture(d.target, d.texture)
	fn()
	c.bindTexture(d.target, prev)
}

// updateTexture uploads pending changes to a texture bound on the active unit.
func (r *registry) updateTexture(d *descriptor, t resource.Texture) error {
	if d.sizeChanged {
		if err := r.checkTextureSize(t); err != nil {
			return err
		}
	}
	r.writeTexture(d, t, d.dataChanged || d.sizeChanged, d.paramsChanged)
	d.clean()
	return nil
}

func (r *registry) writeTexture(d *descriptor, t resource.Texture, images, params bool) {
	f := r.dev.f
	if images {
		internal, pixel, typ := textureFormat(t.Format())
		if d.target == glapi.TEXTURE_CUBE_MAP {
			for i := 0; i < 6; i++ {
				f.TexImage2D(glapi.TEXTURE_CUBE_MAP_POSITIVE_X+glapi.Enum(i), 0, internal, t.Width(), t.Height(), pixel, typ, t.Face(i))
			}
		} else {
			f.TexImage2D(glapi.TEXTURE_2D, 0, internal, t.Width(), t.Height(), pixel, typ, t.Pixels())
		}
		d.width, d.height = t.Width(), t.Height()
	}
	p := t.Parameters()
	if params {
		f.TexParameteri(d.target, glapi.TEXTURE_MIN_FILTER, int(filterMode(p.MinFilter, p.Mipmaps)))
		f.TexParameteri(d.target, glapi.TEXTURE_MAG_FILTER, int(filterMode(p.MagFilter, false)))
		f.TexParameteri(d.target, glapi.TEXTURE_WRAP_S, int(wrapMode(p.WrapS)))
		f.TexParameteri(d.target, glapi.TEXTURE_WRAP_T, int(wrapMode(p.WrapT)))
	}
	if p.Mipmaps && (images || params) {
		f.GenerateMipmap(d.target)
	}
}

func (r *registry) checkRenderTarget(rt resource.RenderTarget) error {
	caps := r.dev.caps
	limit := min(caps.MaxRenderbufferSize, caps.MaxTextureSize)
	if rt.Width() <= 0 || rt.Height() <= 0 || rt.Width() > limit || rt.Height() > limit {
		return fmt.Errorf("%w: render target %q is %dx%d, limit is %d", ErrUnsupportedCapability, rt.Name(), rt.Width(), rt.Height(), limit)
	}
	colors := rt.ColorTextures()
	if len(colors) > caps.MaxColorAttachments || len(colors) > caps.MaxDrawBuffers {
		return fmt.Errorf("%w: render target %q has %d color attachments, limit is %d", ErrUnsupportedCapability, rt.Name(), len(colors), min(caps.MaxColorAttachments, caps.MaxDrawBuffers))
	}
	for _, c := range colors {
		if !caps.SupportsFormat(c.Format(), true) {
			return fmt.Errorf("%w: render target %q color format %d", ErrUnsupportedCapability, rt.Name(), c.Format())
		}
	}
	return nil
}

func (r *registry) createRenderTarget(d *descriptor, rt resource.RenderTarget) error {
	if err := r.checkRenderTarget(rt); err != nil {
		return err
	}
	colors := make([]*descriptor, 0, len(rt.ColorTextures()))
	for _, tex := range rt.ColorTextures() {
		td, err := r.ensure(tex)
		if err != nil {
			return err
		}
		colors = append(colors, td)
	}

	f, c := r.dev.f, r.dev.cache
	d.framebuffer = f.CreateFramebuffer()
	prevFB, prevRB := c.framebuffer, c.renderbuffer
	c.bindFramebuffer(d.framebuffer)
	drawBuffers := make([]glapi.Enum, len(colors))
	for i, td := range colors {
		drawBuffers[i] = glapi.COLOR_ATTACHMENT0 + glapi.Enum(i)
		f.FramebufferTexture2D(glapi.FRAMEBUFFER, drawBuffers[i], glapi.TEXTURE_2D, td.texture, 0)
	}
	if rt.HasDepth() {
		d.renderbuffer = f.CreateRenderbuffer()
		c.bindRenderbuffer(d.renderbuffer)
		f.RenderbufferStorage(glapi.RENDERBUFFER, glapi.DEPTH_COMPONENT24, rt.Width(), rt.Height())
		f.FramebufferRenderbuffer(glapi.FRAMEBUFFER, glapi.DEPTH_ATTACHMENT, glapi.RENDERBUFFER, d.renderbuffer)
	}
	if len(drawBuffers) > 1 {
		f.DrawBuffers(drawBuffers)
	}
	status := f.CheckFramebufferStatus(glapi.FRAMEBUFFER)
	c.bindRenderbuffer(prevRB)
	c.bindFramebuffer(prevFB)
	d.width, d.height = rt.Width(), rt.Height()
	if status != glapi.FRAMEBUFFER_COMPLETE {
		if r.dev.contextLost() {
			return errContextLost
		}
		return fmt.Errorf("%w: render target %q is incomplete (status 0x%X)", ErrUnsupportedCapability, rt.Name(), uint32(status))
	}
	return nil
}

// updateRenderTarget reallocates the storage of a resized render target.
func (r *registry) updateRenderTarget(d *descriptor, rt resource.RenderTarget) error {
	if d.sizeChanged {
		if err := r.checkRenderTarget(rt); err != nil {
			return err
		}
		for _, tex := range rt.ColorTextures() {
			td, err := r.ensure(tex)
			if err != nil {
				return err
			}
			if !td.dirty() {
				continue
			}
			var uerr error
			r.withTexture(td, func() {
				uerr = r.updateTexture(td, tex)
			})
			if uerr != nil {
				return uerr
			}
		}
		if d.renderbuffer != 0 {
			r.dev.cache.bindRenderbuffer(d.renderbuffer)
			r.dev.f.RenderbufferStorage(glapi.RENDERBUFFER, glapi.DEPTH_COMPONENT24, rt.Width(), rt.Height())
		}
		d.width, d.height = rt.Width(), rt.Height()
	}
	d.clean()
	return nil
}
