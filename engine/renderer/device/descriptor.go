package device

import (
	"github.com/Carmen-Shannon/oxy-gl/engine/renderer/glapi"
	"github.com/Carmen-Shannon/oxy-gl/engine/renderer/resource"
)

// descriptor is the GPU shadow of one logical resource: its GL handles, the parameters it was
// created with and what changed since the last upload.
type descriptor struct {
	res  resource.Resource
	slot int

	shader       glapi.Shader
	program      glapi.Program
	buffer       glapi.Buffer
	texture      glapi.Texture
	framebuffer  glapi.Framebuffer
	renderbuffer glapi.Renderbuffer

	// target is the buffer or texture binding target.
	target glapi.Enum
	size   int
	width  int
	height int

	variables  *programVariables
	attributes []activeAttribute

	// dirtyFrom and dirtyTo bound the buffer bytes written since the last upload.
	dirtyFrom, dirtyTo int

	needsUpdate   bool
	dataChanged   bool
	sizeChanged   bool
	paramsChanged bool
}

// activeAttribute is one vertex input of a linked program.
type activeAttribute struct {
	name     string
	location int
	// columns is the number of consecutive locations the attribute occupies (matrices use 2 to 4).
	columns int
}

func (d *descriptor) dirty() bool {
	return d.needsUpdate || d.dataChanged || d.sizeChanged || d.paramsChanged
}

func (d *descriptor) markWritten(offset, length int) {
	if !d.dataChanged {
		d.dirtyFrom, d.dirtyTo = offset, offset+length
		d.dataChanged = true
		return
	}
	d.dirtyFrom = min(d.dirtyFrom, offset)
	d.dirtyTo = max(d.dirtyTo, offset+length)
}

func (d *descriptor) clean() {
	d.needsUpdate, d.dataChanged, d.sizeChanged, d.paramsChanged = false, false, false, false
	d.dirtyFrom, d.dirtyTo = 0, 0
}

// descriptorPool is an arena of descriptors addressed by slot index. Released slots are reset and
// pushed onto a free list for the next acquire, so descriptor memory is reused across resource
// lifetimes.
type descriptorPool struct {
	slots []*descriptor
	free  []int
}

func (p *descriptorPool) acquire(res resource.Resource) *descriptor {
	if n := len(p.free); n > 0 {
		slot := p.free[n-1]
		p.free = p.free[:n-1]
		d := p.slots[slot]
		d.res, d.slot = res, slot
		return d
	}
	d := &descriptor{res: res, slot: len(p.slots)}
	p.slots = append(p.slots, d)
	return d
}

func (p *descriptorPool) get(slot int) *descriptor {
	return p.slots[slot]
}

func (p *descriptorPool) release(d *descriptor) {
	slot := d.slot
	*d = descriptor{slot: slot}
	p.free = append(p.free, slot)
}

// live returns the number of descriptors currently handed out.
func (p *descriptorPool) live() int {
	return len(p.slots) - len(p.free)
}
