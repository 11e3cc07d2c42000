package device

import (
	"testing"

	"github.com/Carmen-Shannon/oxy-gl/engine/renderer/resource"
	"github.com/stretchr/testify/assert"
)

func TestDescriptorPool_ReusesSlots(t *testing.T) {
	assert := assert.New(t)
	var pool descriptorPool
	a := resource.NewShader("a", resource.ShaderTypeVertex, "")
	b := resource.NewShader("b", resource.ShaderTypeVertex, "")
	c := resource.NewShader("c", resource.ShaderTypeVertex, "")

	da := pool.acquire(a)
	db := pool.acquire(b)
	assert.Equal(0, da.slot)
	assert.Equal(1, db.slot)
	assert.Equal(2, pool.live())

	da.shader = 7
	da.sizeChanged = true
	pool.release(da)
	assert.Equal(1, pool.live())

	dc := pool.acquire(c)
	assert.Same(da, dc, "the released slot is handed out again")
	assert.Equal(0, dc.slot)
	assert.Equal(c, dc.res)
	assert.Zero(dc.shader)
	assert.False(dc.dirty())
	assert.Same(db, pool.get(1))
	assert.Equal(2, pool.live())
}

func TestDescriptor_MarkWritten(t *testing.T) {
	assert := assert.New(t)
	var d descriptor

	d.markWritten(16, 4)
	assert.True(d.dirty())
	assert.Equal([2]int{16, 20}, [2]int{d.dirtyFrom, d.dirtyTo})

	d.markWritten(4, 2)
	d.markWritten(30, 10)
	assert.Equal([2]int{4, 40}, [2]int{d.dirtyFrom, d.dirtyTo})

	d.clean()
	assert.False(d.dirty())
	d.markWritten(50, 1)
	assert.Equal([2]int{50, 51}, [2]int{d.dirtyFrom, d.dirtyTo}, "a clean descriptor starts a new range")
}
