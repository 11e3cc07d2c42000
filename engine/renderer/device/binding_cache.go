package device

import (
	"github.com/Carmen-Shannon/oxy-gl/common"
	"github.com/Carmen-Shannon/oxy-gl/engine/renderer/glapi"
)

// bindingCache mirrors every bindable slot and fixed-function value of the context. All binds
// and state changes go through it: a change matching the mirror is dropped, anything else costs
// exactly one GL call and updates the mirror. After reset it holds the values of a fresh context.
type bindingCache struct {
	f     glapi.Functions
	stats *Stats

	arrayBuffer   glapi.Buffer
	elementBuffer glapi.Buffer
	activeUnit    int
	units         []map[glapi.Enum]glapi.Texture
	program       glapi.Program
	framebuffer   glapi.Framebuffer
	renderbuffer  glapi.Renderbuffer
	attribs       []bool

	enabled    map[glapi.Enum]bool
	blendSrc   glapi.Enum
	blendDst   glapi.Enum
	depthFunc  glapi.Enum
	cullFace   glapi.Enum
	viewport   common.Rect
	scissor    common.Rect
	clearColor common.Color
	clearDepth float32
}

func newBindingCache(f glapi.Functions, stats *Stats, units, attribs int) *bindingCache {
	c := &bindingCache{stats: stats}
	c.reset(f, units, attribs)
	return c
}

// reset forgets every binding without GL calls; used for a new or replacement context.
func (c *bindingCache) reset(f glapi.Functions, units, attribs int) {
	*c = bindingCache{
		f:          f,
		stats:      c.stats,
		units:      make([]map[glapi.Enum]glapi.Texture, units),
		attribs:    make([]bool, attribs),
		enabled:    make(map[glapi.Enum]bool),
		blendSrc:   glapi.ONE,
		blendDst:   glapi.ZERO,
		depthFunc:  glapi.LESS,
		cullFace:   glapi.BACK,
		clearDepth: 1,
	}
	for i := range c.units {
		c.units[i] = make(map[glapi.Enum]glapi.Texture, 2)
	}
}

func (c *bindingCache) skip() {
	c.stats.CallsAvoided++
}

func (c *bindingCache) issue() {
	c.stats.CallsIssued++
}

func (c *bindingCache) bindBuffer(target glapi.Enum, b glapi.Buffer) {
	slot := &c.arrayBuffer
	if target == glapi.ELEMENT_ARRAY_BUFFER {
		slot = &c.elementBuffer
	}
	if *slot == b {
		c.skip()
		return
	}
	c.f.BindBuffer(target, b)
	c.issue()
	*slot = b
}

func (c *bindingCache) boundBuffer(target glapi.Enum) glapi.Buffer {
	if target == glapi.ELEMENT_ARRAY_BUFFER {
		return c.elementBuffer
	}
	return c.arrayBuffer
}

func (c *bindingCache) activeTexture(unit int) {
	if c.activeUnit == unit {
		c.skip()
		return
	}
	c.f.ActiveTexture(glapi.TEXTURE0 + glapi.Enum(unit))
	c.issue()
	c.activeUnit = unit
}

// bindTexture binds t on the active unit.
func (c *bindingCache) bindTexture(target glapi.Enum, t glapi.Texture) {
	c.bindTextureUnit(c.activeUnit, target, t)
}

// bindTextureUnit binds t on unit, switching the active unit only when the binding changes.
func (c *bindingCache) bindTextureUnit(unit int, target glapi.Enum, t glapi.Texture) {
	if c.units[unit][target] == t {
		c.skip()
		return
	}
	c.activeTexture(unit)
	c.f.BindTexture(target, t)
	c.issue()
	c.units[unit][target] = t
}

func (c *bindingCache) boundTexture(unit int, target glapi.Enum) glapi.Texture {
	return c.units[unit][target]
}

func (c *bindingCache) useProgram(p glapi.Program) {
	if c.program == p {
		c.skip()
		return
	}
	c.f.UseProgram(p)
	c.issue()
	c.program = p
}

func (c *bindingCache) bindFramebuffer(fb glapi.Framebuffer) {
	if c.framebuffer == fb {
		c.skip()
		return
	}
	c.f.BindFramebuffer(glapi.FRAMEBUFFER, fb)
	c.issue()
	c.framebuffer = fb
}

func (c *bindingCache) bindRenderbuffer(rb glapi.Renderbuffer) {
	if c.renderbuffer == rb {
		c.skip()
		return
	}
	c.f.BindRenderbuffer(glapi.RENDERBUFFER, rb)
	c.issue()
	c.renderbuffer = rb
}

func (c *bindingCache) setAttribArray(loc int, enabled bool) {
	if c.attribs[loc] == enabled {
		c.skip()
		return
	}
	if enabled {
		c.f.EnableVertexAttribArray(glapi.Attrib(loc))
	} else {
		c.f.DisableVertexAttribArray(glapi.Attrib(loc))
	}
	c.issue()
	c.attribs[loc] = enabled
}

func (c *bindingCache) set(capability glapi.Enum, enable bool) {
	if c.enabled[capability] == enable {
		c.skip()
		return
	}
	if enable {
		c.f.Enable(capability)
	} else {
		c.f.Disable(capability)
	}
	c.issue()
	c.enabled[capability] = enable
}

func (c *bindingCache) setBlendFunc(src, dst glapi.Enum) {
	if c.blendSrc == src && c.blendDst == dst {
		c.skip()
		return
	}
	c.f.BlendFunc(src, dst)
	c.issue()
	c.blendSrc, c.blendDst = src, dst
}

func (c *bindingCache) setDepthFunc(fn glapi.Enum) {
	if c.depthFunc == fn {
		c.skip()
		return
	}
	c.f.DepthFunc(fn)
	c.issue()
	c.depthFunc = fn
}

func (c *bindingCache) setCullFace(face glapi.Enum) {
	if c.cullFace == face {
		c.skip()
		return
	}
	c.f.CullFace(face)
	c.issue()
	c.cullFace = face
}

func (c *bindingCache) setViewport(r common.Rect) {
	if c.viewport == r {
		c.skip()
		return
	}
	c.f.Viewport(r.X, r.Y, r.Width, r.Height)
	c.issue()
	c.viewport = r
}

func (c *bindingCache) setScissor(r common.Rect) {
	if c.scissor == r {
		c.skip()
		return
	}
	c.f.Scissor(r.X, r.Y, r.Width, r.Height)
	c.issue()
	c.scissor = r
}

func (c *bindingCache) setClearColor(col common.Color) {
	if c.clearColor == col {
		c.skip()
		return
	}
	c.f.ClearColor(col.R, col.G, col.B, col.A)
	c.issue()
	c.clearColor = col
}

func (c *bindingCache) setClearDepth(d float32) {
	if c.clearDepth == d {
		c.skip()
		return
	}
	c.f.ClearDepthf(d)
	c.issue()
	c.clearDepth = d
}

// The delete functions mirror GL: deleting a bound object unbinds it from the current context.

func (c *bindingCache) deleteBuffer(b glapi.Buffer) {
	c.f.DeleteBuffer(b)
	if c.arrayBuffer == b {
		c.arrayBuffer = 0
	}
	if c.elementBuffer == b {
		c.elementBuffer = 0
	}
}

func (c *bindingCache) deleteTexture(t glapi.Texture) {
	c.f.DeleteTexture(t)
	for _, u := range c.units {
		for target, bound := range u {
			if bound == t {
				u[target] = 0
			}
		}
	}
}

func (c *bindingCache) deleteProgram(p glapi.Program) {
	c.f.DeleteProgram(p)
	if c.program == p {
		c.program = 0
	}
}

func (c *bindingCache) deleteFramebuffer(fb glapi.Framebuffer) {
	c.f.DeleteFramebuffer(fb)
	if c.framebuffer == fb {
		c.framebuffer = 0
	}
}

func (c *bindingCache) deleteRenderbuffer(rb glapi.Renderbuffer) {
	c.f.DeleteRenderbuffer(rb)
	if c.renderbuffer == rb {
		c.renderbuffer = 0
	}
}
