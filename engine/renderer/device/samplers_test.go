package device

import (
	"testing"

	"github.com/Carmen-Shannon/oxy-gl/engine/renderer/glapi"
	"github.com/Carmen-Shannon/oxy-gl/engine/renderer/glapi/glapitest"
	"github.com/Carmen-Shannon/oxy-gl/engine/renderer/resource"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const layeredFragmentShader = `#version 410 core
uniform sampler2D layers[3];
uniform sampler2D mask;
out vec4 fragColor;
void main() {
	fragColor = texture(layers[0], vec2(0.0)) * texture(mask, vec2(0.0));
}
`

const pairFragmentShader = `#version 410 core
uniform sampler2D mask;
uniform sampler2D extra;
out vec4 fragColor;
void main() {
	fragColor = texture(mask, vec2(0.0)) + texture(extra, vec2(0.0));
}
`

// samplerSlot is one texture slot of a sampler uniform: index is the array element.
type samplerSlot struct {
	name  string
	index int
	tex   resource.Texture
}

// assertSamplersBound checks that every slot's uniform names a unit holding its texture and that
// no two slots share a unit.
func assertSamplersBound(t *testing.T, r *glapitest.Recorder, dev *device, p resource.Program, slots ...samplerSlot) {
	t.Helper()
	ph := dev.registry.lookup(p).program
	bound := r.Snapshot().Textures
	owners := make(map[int32]string)
	for _, s := range slots {
		units, ok := r.Uniform(ph, s.name).([]int32)
		require.True(t, ok, "sampler %q was never uploaded", s.name)
		require.Greater(t, len(units), s.index)
		unit := units[s.index]
		td := dev.registry.lookup(s.tex)
		require.NotNil(t, td, s.tex.Name())
		assert.Equal(t, td.texture, bound[int(unit)][glapi.TEXTURE_2D], "%s[%d] on unit %d", s.name, s.index, unit)
		if owner, dup := owners[unit]; dup {
			t.Errorf("%s[%d] shares unit %d with %s", s.name, s.index, unit, owner)
		}
		owners[unit] = s.name
	}
}

func TestSamplers_DistinctUnits(t *testing.T) {
	r, dev := newTestDevice(t)
	s := newTestScene(t)
	s.stage(t, dev)
	require.NoError(t, dev.Apply())
	assertSamplersBound(t, r, dev, s.program,
		samplerSlot{name: "albedo", tex: s.albedo},
		samplerSlot{name: "detail", tex: s.detail},
	)
	assert.Empty(t, r.Errors())
}

func TestSamplers_Array(t *testing.T) {
	r, dev := newTestDevice(t)
	s := newTestScene(t)
	p := newProgram("layered", positionVertexShader, layeredFragmentShader)
	layers := []resource.Texture{
		newTexture(t, "layer0", 1, 1),
		newTexture(t, "layer1", 1, 1),
		newTexture(t, "layer2", 1, 1),
	}

	require.NoError(t, dev.SetProgramVariable(p, "layers", layers))
	require.NoError(t, dev.SetProgramVariable(p, "mask", layers[0]))
	dev.SetProgram(p)
	dev.SetVertexBuffers(s.vertices)
	require.NoError(t, dev.Apply())

	assertSamplersBound(t, r, dev, p,
		samplerSlot{name: "layers", index: 0, tex: layers[0]},
		samplerSlot{name: "layers", index: 1, tex: layers[1]},
		samplerSlot{name: "layers", index: 2, tex: layers[2]},
		samplerSlot{name: "mask", tex: layers[0]},
	)

	// Too many textures for the array.
	extra := append(layers, newTexture(t, "layer3", 1, 1))
	assert.ErrorIs(t, dev.SetProgramVariable(p, "layers", extra), ErrInvalidConfiguration)
	assert.ErrorIs(t, dev.SetProgramVariable(p, "layers", 3), ErrInvalidConfiguration)
}

func TestSamplers_ProgramSwitch(t *testing.T) {
	r, dev := newTestDevice(t)
	s := newTestScene(t)
	s.stage(t, dev)
	require.NoError(t, dev.Apply())

	pair := newProgram("pair", positionVertexShader, pairFragmentShader)
	extra := newTexture(t, "extra", 1, 1)
	require.NoError(t, dev.SetProgramVariable(pair, "mask", s.detail))
	require.NoError(t, dev.SetProgramVariable(pair, "extra", extra))
	dev.SetProgram(pair)
	require.NoError(t, dev.Apply())
	assertSamplersBound(t, r, dev, pair,
		samplerSlot{name: "mask", tex: s.detail},
		samplerSlot{name: "extra", tex: extra},
	)

	// The first program's units still hold its textures, so nothing is re-uploaded.
	r.Reset()
	dev.SetProgram(s.program)
	require.NoError(t, dev.Apply())
	assert.Zero(t, r.Count("Uniform1iv"))
	assertSamplersBound(t, r, dev, s.program,
		samplerSlot{name: "albedo", tex: s.albedo},
		samplerSlot{name: "detail", tex: s.detail},
	)
}

func TestSamplers_EvictedUnitsAreRebound(t *testing.T) {
	r := glapitest.New()
	r.Limits[glapi.MAX_COMBINED_TEXTURE_IMAGE_UNITS] = 2
	d, err := New(r, 64, 64)
	require.NoError(t, err)
	dev := d.(*device)

	s := newTestScene(t)
	s.stage(t, dev)
	require.NoError(t, dev.Apply())

	pair := newProgram("pair", positionVertexShader, pairFragmentShader)
	first, second := newTexture(t, "first", 1, 1), newTexture(t, "second", 1, 1)
	require.NoError(t, dev.SetProgramVariable(pair, "mask", first))
	require.NoError(t, dev.SetProgramVariable(pair, "extra", second))
	dev.SetProgram(pair)
	require.NoError(t, dev.Apply())
	assertSamplersBound(t, r, dev, pair,
		samplerSlot{name: "mask", tex: first},
		samplerSlot{name: "extra", tex: second},
	)

	dev.SetProgram(s.program)
	require.NoError(t, dev.Apply())
	assertSamplersBound(t, r, dev, s.program,
		samplerSlot{name: "albedo", tex: s.albedo},
		samplerSlot{name: "detail", tex: s.detail},
	)
	assert.Empty(t, r.Errors())
}

func TestSamplers_Exhausted(t *testing.T) {
	r := glapitest.New()
	r.Limits[glapi.MAX_COMBINED_TEXTURE_IMAGE_UNITS] = 2
	dev, err := New(r, 64, 64)
	require.NoError(t, err)

	s := newTestScene(t)
	p := newProgram("layered", positionVertexShader, layeredFragmentShader)
	require.NoError(t, dev.SetProgramVariable(p, "layers", []resource.Texture{s.albedo, s.detail}))
	require.NoError(t, dev.SetProgramVariable(p, "mask", newTexture(t, "mask", 1, 1)))
	dev.SetProgram(p)
	dev.SetVertexBuffers(s.vertices)

	err = dev.Apply()
	assert.ErrorIs(t, err, ErrUnsupportedCapability)
	assert.ErrorIs(t, dev.Draw(), ErrUnsupportedCapability)
	assert.Zero(t, r.Count("DrawArrays"))
}
