package device

import (
	"errors"
	"fmt"
	"slices"

	"github.com/Carmen-Shannon/oxy-gl/engine/renderer/glapi"
	"github.com/Carmen-Shannon/oxy-gl/engine/renderer/resource"
)

func (d *device) Apply() error {
	if d.lost {
		return nil
	}
	// Only reports what the driver layer was told: gogl flips after the host calls Invalidate, so
	// on a real driver loss arrives through the host and this check is a backstop.
	if d.f.IsContextLost() {
		d.LoseContext()
		return nil
	}
	d.stats.Applies++
	err := d.apply()
	if err != nil && (errors.Is(err, errContextLost) || d.f.IsContextLost()) {
		d.LoseContext()
		err = nil
	}
	d.applyErr = err
	return err
}

// apply reconciles the pending state with the applied state, stage by stage.
func (d *device) apply() error {
	if err := d.applyProgram(); err != nil {
		return err
	}
	if p := d.applied.program; p != nil {
		pd := d.registry.lookup(p)
		if err := d.resolveSamplers(pd.variables); err != nil {
			return err
		}
		pd.variables.upload(d.f, &d.stats)
	}
	if err := d.applyIndexBuffer(); err != nil {
		return err
	}
	if err := d.applyRenderTarget(); err != nil {
		return err
	}
	d.applyScissor()
	d.applyClears()

	d.cache.setViewport(d.viewport())
	d.applied.viewport = cloneRect(d.pending.viewport)
	if b := d.resolveBlend(d.pending.blend); b != d.applied.blend {
		d.applyBlend(b)
	}
	if c := d.resolveCull(d.pending.cull); c != d.applied.cull {
		d.applyCull(c)
	}
	if s := d.resolveDepth(d.pending.depth); s != d.applied.depth {
		d.applyDepth(s)
	}
	d.applied.topology = d.pending.topology
	return nil
}

// applyProgram binds the program and, when the program or the vertex buffer set changed, rebuilds
// the attribute bindings. Otherwise it only uploads pending data of the buffers already bound.
func (d *device) applyProgram() error {
	p := d.pending.program
	if p == nil {
		d.cache.useProgram(0)
		for loc, on := range d.cache.attribs {
			if on {
				d.cache.setAttribArray(loc, false)
			}
		}
		d.applied.program = nil
		d.applied.vertexBuffers = slices.Clone(d.pending.vertexBuffers)
		d.attribBuffers = nil
		d.vertexCount = 0
		d.attribsDirty = false
		return nil
	}

	pd, err := d.registry.ensure(p)
	if err != nil {
		return err
	}
	d.cache.useProgram(pd.program)

	if !d.attribsDirty && p == d.applied.program && slices.Equal(d.pending.vertexBuffers, d.applied.vertexBuffers) {
		for _, b := range d.attribBuffers {
			bd, err := d.registry.ensure(b)
			if err != nil {
				return err
			}
			if bd.dirty() {
				d.cache.bindBuffer(glapi.ARRAY_BUFFER, bd.buffer)
				d.registry.updateBuffer(bd, b)
			}
		}
		d.vertexCount = minVertexCount(d.attribBuffers)
		return nil
	}

	if err := d.bindAttributes(p, pd); err != nil {
		return err
	}
	d.applied.program = p
	d.applied.vertexBuffers = slices.Clone(d.pending.vertexBuffers)
	d.attribsDirty = false
	return nil
}

func (d *device) bindAttributes(p resource.Program, pd *descriptor) error {
	supplier := make(map[string]resource.Buffer)
	for _, b := range d.pending.vertexBuffers {
		if b == nil {
			continue
		}
		for _, a := range b.Layout().Attributes {
			if _, ok := supplier[a.Name]; !ok {
				supplier[a.Name] = b
			}
		}
	}

	used := make([]bool, len(d.cache.attribs))
	d.attribBuffers = d.attribBuffers[:0]
	for _, attr := range pd.attributes {
		b, ok := supplier[attr.name]
		if !ok {
			return fmt.Errorf("%w: attribute %q of program %q has no vertex buffer", ErrInvalidConfiguration, attr.name, p.Name())
		}
		if attr.location+attr.columns > len(used) {
			return fmt.Errorf("%w: attribute %q location %d exceeds %d", ErrUnsupportedCapability, attr.name, attr.location, len(used))
		}
		bd, err := d.registry.ensure(b)
		if err != nil {
			return err
		}
		d.cache.bindBuffer(glapi.ARRAY_BUFFER, bd.buffer)
		if bd.dirty() {
			d.registry.updateBuffer(bd, b)
		}

		layout := b.Layout()
		la, _ := layout.Attribute(attr.name)
		per := la.Components / attr.columns
		if per == 0 {
			per = la.Components
		}
		for c := 0; c < attr.columns; c++ {
			loc := attr.location + c
			d.f.VertexAttribPointer(glapi.Attrib(loc), per, componentType(la.Type), la.Normalized, layout.Stride, la.Offset+c*per*la.Type.Size())
			d.stats.CallsIssued++
			used[loc] = true
		}
		if !slices.Contains(d.attribBuffers, b) {
			d.attribBuffers = append(d.attribBuffers, b)
		}
	}

	for loc, on := range used {
		if on || d.cache.attribs[loc] {
			d.cache.setAttribArray(loc, on)
		}
	}
	d.vertexCount = minVertexCount(d.attribBuffers)
	d.logger().Debug("vertex attributes rebound", "program", p.Name(), "attributes", len(pd.attributes), "vertices", d.vertexCount)
	return nil
}

func minVertexCount(buffers []resource.Buffer) int {
	if len(buffers) == 0 {
		return 0
	}
	n := buffers[0].VertexCount()
	for _, b := range buffers[1:] {
		n = min(n, b.VertexCount())
	}
	return n
}

func (d *device) applyIndexBuffer() error {
	ib := d.pending.indexBuffer
	if ib == nil {
		d.cache.bindBuffer(glapi.ELEMENT_ARRAY_BUFFER, 0)
		d.applied.indexBuffer = nil
		d.indexCount = 0
		return nil
	}
	bd, err := d.registry.ensure(ib)
	if err != nil {
		return err
	}
	d.cache.bindBuffer(glapi.ELEMENT_ARRAY_BUFFER, bd.buffer)
	if bd.dirty() {
		d.registry.updateBuffer(bd, ib)
	}
	d.indexType = indexType(ib.IndexType())
	d.indexSize = ib.IndexType().Size()
	d.indexCount = ib.IndexCount()
	d.applied.indexBuffer = ib
	return nil
}

func (d *device) applyRenderTarget() error {
	rt := d.pending.renderTarget
	if rt == nil {
		d.cache.bindFramebuffer(0)
		d.applied.renderTarget = nil
		return nil
	}
	rd, err := d.registry.ensure(rt)
	if err != nil {
		return err
	}
	if rd.dirty() {
		if err := d.registry.updateRenderTarget(rd, rt); err != nil {
			return err
		}
	}
	d.cache.bindFramebuffer(rd.framebuffer)
	d.applied.renderTarget = rt
	return nil
}

// applyScissor disables the scissor test for the default instead of setting a full-size box.
func (d *device) applyScissor() {
	if r := d.pending.scissor; r != nil {
		d.cache.set(glapi.SCISSOR_TEST, true)
		d.cache.setScissor(*r)
	} else {
		d.cache.set(glapi.SCISSOR_TEST, false)
	}
	d.applied.scissor = cloneRect(d.pending.scissor)
}

func (d *device) applyClears() {
	var mask glapi.Enum
	if d.pending.clearColorPending {
		d.cache.setClearColor(d.pending.clearColor)
		d.applied.clearColor = d.pending.clearColor
		mask |= glapi.COLOR_BUFFER_BIT
	}
	if d.pending.clearDepthPending {
		d.cache.setClearDepth(d.pending.clearDepth)
		d.applied.clearDepth = d.pending.clearDepth
		mask |= glapi.DEPTH_BUFFER_BIT
	}
	if mask != 0 {
		d.f.Clear(mask)
		d.stats.CallsIssued++
	}
	d.pending.clearColorPending = false
	d.pending.clearDepthPending = false
}

// applyBlend, applyCull and applyDepth model the None variants as the capability being disabled:
// moving to or from None toggles the capability, other moves only change the function.

func (d *device) applyBlend(b BlendState) {
	if b == BlendNone || b == BlendDefault {
		d.cache.set(glapi.BLEND, false)
	} else {
		d.cache.set(glapi.BLEND, true)
		d.cache.setBlendFunc(b.factors())
	}
	d.applied.blend = b
}

func (d *device) applyCull(c CullState) {
	if c == CullNone || c == CullDefault {
		d.cache.set(glapi.CULL_FACE, false)
	} else {
		d.cache.set(glapi.CULL_FACE, true)
		d.cache.setCullFace(c.face())
	}
	d.applied.cull = c
}

func (d *device) applyDepth(s DepthState) {
	if s == DepthNone || s == DepthDefault {
		d.cache.set(glapi.DEPTH_TEST, false)
	} else {
		d.cache.set(glapi.DEPTH_TEST, true)
		d.cache.setDepthFunc(s.function())
	}
	d.applied.depth = s
}
