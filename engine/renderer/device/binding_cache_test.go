package device

import (
	"testing"

	"github.com/Carmen-Shannon/oxy-gl/common"
	"github.com/Carmen-Shannon/oxy-gl/engine/renderer/glapi"
	"github.com/Carmen-Shannon/oxy-gl/engine/renderer/glapi/glapitest"
	"github.com/stretchr/testify/assert"
)

func TestBindingCache_SkipsRedundantCalls(t *testing.T) {
	assert := assert.New(t)
	r := glapitest.New()
	var stats Stats
	c := newBindingCache(r, &stats, 4, 4)

	c.bindBuffer(glapi.ARRAY_BUFFER, 3)
	c.bindBuffer(glapi.ARRAY_BUFFER, 3)
	c.bindBuffer(glapi.ELEMENT_ARRAY_BUFFER, 3)
	c.set(glapi.BLEND, true)
	c.set(glapi.BLEND, true)
	c.setBlendFunc(glapi.ONE, glapi.ZERO)
	c.setViewport(common.Rect{Width: 10, Height: 10})
	c.setViewport(common.Rect{Width: 10, Height: 10})
	c.setClearDepth(1)

	assert.Equal([]string{"BindBuffer", "BindBuffer", "Enable", "Viewport"}, r.CallNames())
	assert.Equal(4, stats.CallsIssued)
	assert.Equal(5, stats.CallsAvoided)
}

func TestBindingCache_TextureUnits(t *testing.T) {
	assert := assert.New(t)
	r := glapitest.New()
	var stats Stats
	c := newBindingCache(r, &stats, 4, 4)
	tex := r.CreateTexture()
	r.Reset()

	c.bindTextureUnit(2, glapi.TEXTURE_2D, tex)
	c.bindTextureUnit(2, glapi.TEXTURE_2D, tex)
	assert.Equal([]string{"ActiveTexture", "BindTexture"}, r.CallNames())
	assert.Equal(2, c.activeUnit)
	assert.Equal(tex, c.boundTexture(2, glapi.TEXTURE_2D))
	assert.Zero(c.boundTexture(2, glapi.TEXTURE_CUBE_MAP))

	c.deleteTexture(tex)
	assert.Zero(c.boundTexture(2, glapi.TEXTURE_2D))
	assert.Empty(r.Snapshot().Textures)
}

func TestBindingCache_DeleteClearsMirror(t *testing.T) {
	assert := assert.New(t)
	r := glapitest.New()
	var stats Stats
	c := newBindingCache(r, &stats, 1, 1)

	b := r.CreateBuffer()
	c.bindBuffer(glapi.ARRAY_BUFFER, b)
	c.deleteBuffer(b)
	assert.Zero(c.boundBuffer(glapi.ARRAY_BUFFER))

	fb := r.CreateFramebuffer()
	c.bindFramebuffer(fb)
	c.deleteFramebuffer(fb)
	assert.Zero(c.framebuffer)

	// The next bind after a delete reaches the context.
	b2 := r.CreateBuffer()
	r.Reset()
	c.bindBuffer(glapi.ARRAY_BUFFER, b2)
	assert.Equal(1, r.Count("BindBuffer"))
	assert.Equal(b2, r.Snapshot().ArrayBuffer)
}

func TestBindingCache_Reset(t *testing.T) {
	r := glapitest.New()
	var stats Stats
	c := newBindingCache(r, &stats, 2, 2)
	c.set(glapi.DEPTH_TEST, true)
	c.setAttribArray(1, true)

	other := glapitest.New()
	c.reset(other, 3, 5)
	assert.Same(t, &stats, c.stats)
	assert.Len(t, c.units, 3)
	assert.Len(t, c.attribs, 5)
	assert.False(t, c.enabled[glapi.DEPTH_TEST])

	// The mirror now matches a fresh context: enabling depth testing costs a call again.
	c.set(glapi.DEPTH_TEST, true)
	assert.Equal(t, 1, other.Count("Enable"))
}
