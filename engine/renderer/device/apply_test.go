package device

import (
	"testing"

	"github.com/Carmen-Shannon/oxy-gl/common"
	"github.com/Carmen-Shannon/oxy-gl/engine/renderer/glapi"
	"github.com/Carmen-Shannon/oxy-gl/engine/renderer/glapi/glapitest"
	"github.com/Carmen-Shannon/oxy-gl/engine/renderer/resource"
	"github.com/go-gl/mathgl/mgl32"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestApply_Idempotent(t *testing.T) {
	r, dev := newTestDevice(t)
	s := newTestScene(t)
	s.stage(t, dev)
	dev.SetBlendState(BlendNormal)
	dev.SetScissor(&common.Rect{Width: 100, Height: 100})
	dev.SetClearColorAndDepth(nil, nil)
	require.NoError(t, dev.Apply())
	require.Empty(t, r.Errors())

	r.Reset()
	require.NoError(t, dev.Apply())
	assert.Zero(t, r.Total(), "calls: %v", r.CallNames())
}

func TestApply_NoRedundantBinds(t *testing.T) {
	assert := assert.New(t)
	r, dev := newTestDevice(t)
	s := newTestScene(t)
	s.stage(t, dev)
	require.NoError(t, dev.Apply())

	r.Reset()
	for i := 0; i < 3; i++ {
		dev.SetProgram(s.program)
		dev.SetVertexBuffers(s.vertices)
		dev.SetIndexBuffer(s.indices)
		dev.SetRenderTarget(nil)
	}
	require.NoError(t, dev.Apply())
	assert.Zero(r.Total(), "calls: %v", r.CallNames())

	other := resource.NewVertexBuffer("other", texturedLayout, make([]byte, 3*texturedLayout.Stride))
	dev.SetVertexBuffers(other)
	require.NoError(t, dev.Apply())
	r.Reset()
	dev.SetVertexBuffers(other)
	dev.SetVertexBuffers(s.vertices)
	dev.SetVertexBuffers(other)
	dev.SetVertexBuffers(s.vertices)
	require.NoError(t, dev.Apply())
	assert.Equal(1, r.Count("BindBuffer"))
	assert.Equal(2, r.Count("VertexAttribPointer"))
	assert.Zero(r.Count("EnableVertexAttribArray"))

	rt, err := resource.NewRenderTarget("offscreen", 64, 64)
	require.NoError(t, err)
	dev.SetRenderTarget(rt)
	require.NoError(t, dev.Apply())
	r.Reset()
	dev.SetRenderTarget(nil)
	dev.SetRenderTarget(rt)
	dev.SetRenderTarget(rt)
	require.NoError(t, dev.Apply())
	assert.Zero(r.Count("BindFramebuffer"))
	dev.SetRenderTarget(nil)
	dev.SetRenderTarget(nil)
	require.NoError(t, dev.Apply())
	assert.Equal(1, r.Count("BindFramebuffer"))
}

func TestApply_StateTransitions(t *testing.T) {
	assert := assert.New(t)
	r, dev := newTestDevice(t)
	require.NoError(t, dev.Apply())

	cases := []struct {
		name  string
		stage func()
		calls []string
	}{
		{"blend on", func() { dev.SetBlendState(BlendNormal) }, []string{"Enable", "BlendFunc"}},
		{"blend function only", func() { dev.SetBlendState(BlendAdditive) }, []string{"BlendFunc"}},
		{"blend off", func() { dev.SetBlendState(BlendNone) }, []string{"Disable"}},
		{"blend default is none", func() { dev.SetBlendState(BlendDefault) }, nil},
		{"blend back on keeps function", func() { dev.SetBlendState(BlendAdditive) }, []string{"Enable"}},
		{"depth function", func() { dev.SetDepthState(DepthGreaterEqual) }, []string{"DepthFunc"}},
		{"depth off", func() { dev.SetDepthState(DepthNone) }, []string{"Disable"}},
		{"depth default", func() { dev.SetDepthState(DepthDefault) }, []string{"Enable", "DepthFunc"}},
		{"cull front", func() { dev.SetCullState(CullFront) }, []string{"CullFace"}},
		{"cull off", func() { dev.SetCullState(CullNone) }, []string{"Disable"}},
		{"cull default", func() { dev.SetCullState(CullDefault) }, []string{"Enable", "CullFace"}},
		{"scissor on", func() { dev.SetScissor(&common.Rect{X: 4, Y: 4, Width: 8, Height: 8}) }, []string{"Enable", "Scissor"}},
		{"scissor box", func() { dev.SetScissor(&common.Rect{Width: 8, Height: 8}) }, []string{"Scissor"}},
		{"scissor off", func() { dev.SetScissor(nil) }, []string{"Disable"}},
		{"viewport", func() { dev.SetViewPort(&common.Rect{Width: 10, Height: 10}) }, []string{"Viewport"}},
		{"viewport default", func() { dev.SetViewPort(nil) }, []string{"Viewport"}},
		{"topology only", func() { dev.SetPrimitiveTopology(TopologyPoints) }, nil},
		{"clear color", func() { dev.SetClearColor(&common.Color{R: 1, A: 1}) }, []string{"ClearColor", "Clear"}},
		{"clear same color", func() { dev.SetClearColor(&common.Color{R: 1, A: 1}) }, []string{"Clear"}},
		{"clear depth", func() { dev.SetClearDepth(new(float32)) }, []string{"ClearDepthf", "Clear"}},
	}
	for _, c := range cases {
		r.Reset()
		c.stage()
		require.NoError(t, dev.Apply(), c.name)
		if c.calls == nil {
			assert.Zero(r.Total(), c.name)
			continue
		}
		assert.Equal(c.calls, r.CallNames(), c.name)
	}
}

func TestApply_ClearMask(t *testing.T) {
	r, dev := newTestDevice(t)
	dev.SetClearColorAndDepth(nil, nil)
	require.NoError(t, dev.Apply())
	c, ok := r.Last("Clear")
	require.True(t, ok)
	assert.Equal(t, []any{glapi.COLOR_BUFFER_BIT | glapi.DEPTH_BUFFER_BIT}, c.Args)
	assert.Equal(t, [4]float32{0, 0, 0, 1}, r.Snapshot().ClearColor)

	// A clear runs once.
	r.Reset()
	require.NoError(t, dev.Apply())
	assert.Zero(t, r.Count("Clear"))
}

func TestApply_DefaultEquivalence(t *testing.T) {
	rA, devA := newTestDevice(t)
	rB, devB := newTestDevice(t)
	sA, sB := newTestScene(t), newTestScene(t)
	sA.stage(t, devA)
	sB.stage(t, devB)

	devA.SetBlendState(BlendNormal)
	devA.SetCullState(CullFront)
	devA.SetDepthState(DepthAlways)
	require.NoError(t, devA.Apply())
	devA.SetBlendState(BlendDefault)
	devA.SetCullState(CullDefault)
	devA.SetDepthState(DepthDefault)
	require.NoError(t, devA.Apply())

	require.NoError(t, devB.Apply())
	assert.Equal(t, rB.Snapshot(), rA.Snapshot())
}

func TestApply_DefaultEquivalenceWithConfiguredDefaults(t *testing.T) {
	rA, devA := newTestDevice(t, WithDefaultBlendState(BlendPremultiplied), WithDefaultClearColor(common.Color{G: 1, A: 1}))
	rB, devB := newTestDevice(t)
	require.NoError(t, devA.Apply())
	devA.SetClearColor(nil)
	require.NoError(t, devA.Apply())

	devB.SetBlendState(BlendPremultiplied)
	devB.SetClearColor(&common.Color{G: 1, A: 1})
	require.NoError(t, devB.Apply())
	assert.Equal(t, rB.Snapshot(), rA.Snapshot())
}

func TestApply_ScissorEquivalence(t *testing.T) {
	rA, devA := newTestDevice(t)
	rB, devB := newTestDevice(t)
	sA, sB := newTestScene(t), newTestScene(t)
	sA.stage(t, devA)
	sB.stage(t, devB)

	devA.SetScissor(&common.Rect{X: 10, Y: 10, Width: 100, Height: 100})
	require.NoError(t, devA.Apply())
	require.True(t, rA.Snapshot().Capabilities[glapi.SCISSOR_TEST])
	devA.SetScissor(nil)
	require.NoError(t, devA.Apply())

	require.NoError(t, devB.Apply())
	assert.False(t, rA.Snapshot().Capabilities[glapi.SCISSOR_TEST])
	assert.Equal(t, rB.Snapshot(), rA.Snapshot())
}

func TestApply_ScenarioSinglePositionAttribute(t *testing.T) {
	assert := assert.New(t)
	r, dev := newTestDevice(t)
	vertices := resource.NewVertexBuffer("triangle", positionLayout, common.SliceToBytes([]float32{
		0, 0, 0,
		1, 0, 0,
		0, 1, 0,
	}))
	dev.SetVertexBuffers(vertices)
	dev.SetProgram(newProgram("flat", positionVertexShader, flatFragmentShader))
	require.NoError(t, dev.Apply())
	require.NoError(t, dev.Draw())

	assert.Equal(1, r.Count("EnableVertexAttribArray"))
	assert.Equal(1, r.Count("BindBuffer"))
	assert.Equal(1, r.Count("VertexAttribPointer"))
	c, _ := r.Last("VertexAttribPointer")
	assert.Equal([]any{glapi.Attrib(0), 3, glapi.FLOAT, false, 12, 0}, c.Args)
	assert.Equal(1, r.Count("DrawArrays"))
	c, _ = r.Last("DrawArrays")
	assert.Equal([]any{glapi.TRIANGLES, 0, 3}, c.Args)
	assert.Empty(r.Errors())
}

func TestApply_ScenarioUniformOnlyChange(t *testing.T) {
	assert := assert.New(t)
	r, dev := newTestDevice(t)
	p := newProgram("flat", positionVertexShader, flatFragmentShader)
	vertices := resource.NewVertexBuffer("triangle", positionLayout, make([]byte, 3*positionLayout.Stride))
	dev.SetVertexBuffers(vertices)
	dev.SetProgram(p)
	require.NoError(t, dev.SetProgramVariable(p, "tint", mgl32.Vec4{1, 0, 0, 1}))
	require.NoError(t, dev.Apply())
	require.NoError(t, dev.Draw())

	r.Reset()
	require.NoError(t, dev.SetProgramVariable(p, "tint", mgl32.Vec4{0, 1, 0, 1}))
	require.NoError(t, dev.Apply())
	assert.Equal([]string{"Uniform4fv"}, r.CallNames())
	require.NoError(t, dev.Draw())

	ph := dev.registry.lookup(p).program
	assert.Equal([]float32{0, 1, 0, 1}, r.Uniform(ph, "tint"))

	// Setting the value already on the GPU uploads nothing.
	r.Reset()
	require.NoError(t, dev.SetProgramVariable(p, "tint", []float32{0, 1, 0, 1}))
	require.NoError(t, dev.Apply())
	assert.Zero(r.Total())
}

func TestApply_MatrixAttribute(t *testing.T) {
	r, dev := newTestDevice(t)
	const instancedVertexShader = `#version 410 core
in vec3 position;
in mat4 model;
void main() {
	gl_Position = model * vec4(position, 1.0);
}
`
	p := newProgram("instanced", instancedVertexShader, flatFragmentShader)
	instances := resource.NewVertexBuffer("instances", resource.Interleaved(
		resource.VertexAttribute{Name: "model", Components: 16, Type: resource.ComponentFloat32},
	), make([]byte, 2*64))
	vertices := resource.NewVertexBuffer("triangle", positionLayout, make([]byte, 3*positionLayout.Stride))
	dev.SetVertexBuffers(vertices, instances)
	dev.SetProgram(p)
	require.NoError(t, dev.Apply())

	s := r.Snapshot()
	assert.Len(t, s.EnabledAttribs, 5)
	for col := 0; col < 4; col++ {
		ptr := s.AttribPointers[glapi.Attrib(1+col)]
		assert.Equal(t, 4, ptr.Size)
		assert.Equal(t, 64, ptr.Stride)
		assert.Equal(t, col*16, ptr.Offset)
	}
	require.NoError(t, dev.Draw())
	c, _ := r.Last("DrawArrays")
	assert.Equal(t, []any{glapi.TRIANGLES, 0, 2}, c.Args, "clipped to the shortest buffer")
}

func TestApply_AttributesDisabledOnProgramChange(t *testing.T) {
	r, dev := newTestDevice(t)
	s := newTestScene(t)
	s.stage(t, dev)
	require.NoError(t, dev.Apply())
	require.Len(t, r.Snapshot().EnabledAttribs, 2)

	dev.SetProgram(newProgram("flat", positionVertexShader, flatFragmentShader))
	require.NoError(t, dev.Apply())
	assert.Equal(t, map[glapi.Attrib]bool{0: true}, r.Snapshot().EnabledAttribs)

	dev.SetProgram(nil)
	require.NoError(t, dev.Apply())
	st := r.Snapshot()
	assert.Empty(t, st.EnabledAttribs)
	assert.Zero(t, st.Program)
}

func TestApply_BufferUpdates(t *testing.T) {
	assert := assert.New(t)
	r, dev := newTestDevice(t)
	s := newTestScene(t)
	s.stage(t, dev)
	require.NoError(t, dev.Apply())
	vb := dev.registry.lookup(s.vertices).buffer
	ib := dev.registry.lookup(s.indices).buffer

	r.Reset()
	patch := []byte{1, 2, 3, 4}
	require.NoError(t, s.vertices.SetSubData(24, patch))
	require.NoError(t, s.vertices.SetSubData(40, patch))
	require.NoError(t, dev.Apply())
	assert.Equal([]string{"BufferSubData"}, r.CallNames())
	c, _ := r.Last("BufferSubData")
	assert.Equal([]any{glapi.ARRAY_BUFFER, 24, 20}, c.Args)
	assert.Equal(s.vertices.Data(), r.BufferContents(vb))

	r.Reset()
	s.vertices.SetData(make([]byte, 8*texturedLayout.Stride))
	require.NoError(t, dev.Apply())
	assert.Equal(1, r.Count("BufferData"))
	assert.Len(r.BufferContents(vb), 8*texturedLayout.Stride)
	require.NoError(t, dev.Draw())
	c, _ = r.Last("DrawArrays")
	assert.Equal([]any{glapi.TRIANGLES, 0, 8}, c.Args)

	r.Reset()
	require.NoError(t, s.indices.SetSubData(0, common.SliceToBytes([]uint16{3})))
	require.NoError(t, dev.Apply())
	c, _ = r.Last("BufferSubData")
	assert.Equal([]any{glapi.ELEMENT_ARRAY_BUFFER, 0, 2}, c.Args)
	assert.Equal(s.indices.Data(), r.BufferContents(ib))
	assert.Empty(r.Errors())
}

func TestApply_TextureUpdates(t *testing.T) {
	assert := assert.New(t)
	r, dev := newTestDevice(t)
	s := newTestScene(t)
	s.stage(t, dev)
	require.NoError(t, dev.Apply())
	h := dev.registry.lookup(s.albedo).texture

	pixels := make([]byte, 2*2*4)
	pixels[0] = 0xff
	s.albedo.SetPixels(pixels)
	r.Reset()
	require.NoError(t, dev.Apply())
	assert.Equal(1, r.Count("TexImage2D"))
	assert.Zero(r.Count("TexParameteri"))
	assert.Equal(pixels, r.TextureObject(h).Images[glapi.TEXTURE_2D])

	s.albedo.SetParameters(resource.TextureParameters{
		MinFilter: resource.FilterNearest,
		MagFilter: resource.FilterNearest,
		WrapS:     resource.WrapRepeat,
		WrapT:     resource.WrapMirror,
		Mipmaps:   true,
	})
	r.Reset()
	require.NoError(t, dev.Apply())
	assert.Zero(r.Count("TexImage2D"))
	assert.Equal(1, r.Count("GenerateMipmap"))
	tex := r.TextureObject(h)
	assert.Equal(map[glapi.Enum]int{
		glapi.TEXTURE_MIN_FILTER: int(glapi.NEAREST_MIPMAP_NEAREST),
		glapi.TEXTURE_MAG_FILTER: int(glapi.NEAREST),
		glapi.TEXTURE_WRAP_S:     int(glapi.REPEAT),
		glapi.TEXTURE_WRAP_T:     int(glapi.MIRRORED_REPEAT),
	}, tex.Params)
	assert.True(tex.Mipmapped)

	s.albedo.Resize(4, 4, nil)
	require.NoError(t, dev.Apply())
	tex = r.TextureObject(h)
	assert.Equal(4, tex.Width)
	assert.Equal(4, tex.Height)

	// The sampler keeps pointing at the unit holding the texture.
	unit := r.Uniform(dev.registry.lookup(s.program).program, "albedo").([]int32)[0]
	assert.Equal(h, r.Snapshot().Textures[int(unit)][glapi.TEXTURE_2D])
	assert.Empty(r.Errors())
}

func TestApply_TextureLimits(t *testing.T) {
	r, dev := newTestDevice(t)
	p := newProgram("textured", texturedVertexShader, texturedFragmentShader)
	huge, err := resource.NewTexture2D("huge", resource.FormatRGBA8, 8192, 1, nil)
	require.NoError(t, err)
	require.NoError(t, dev.SetProgramVariable(p, "albedo", huge))
	dev.SetProgram(p)
	dev.SetVertexBuffers(resource.NewVertexBuffer("quad", texturedLayout, make([]byte, 4*texturedLayout.Stride)))
	assert.ErrorIs(t, dev.Apply(), ErrUnsupportedCapability)
	assert.Zero(t, r.Count("CreateTexture"))

	legacy := newLegacyDevice(t)
	hdr, err := resource.NewTexture2D("hdr", resource.FormatRGBA16F, 1, 1, nil)
	require.NoError(t, err)
	require.NoError(t, legacy.SetProgramVariable(p, "albedo", hdr))
	legacy.SetProgram(p)
	legacy.SetVertexBuffers(resource.NewVertexBuffer("quad", texturedLayout, make([]byte, 4*texturedLayout.Stride)))
	assert.ErrorIs(t, legacy.Apply(), ErrUnsupportedCapability)
}

// newLegacyDevice runs on a GL 2.1 context without float texture extensions.
func newLegacyDevice(t *testing.T) Device {
	t.Helper()
	r := glapitest.New()
	r.Version = "2.1 legacy"
	dev, err := New(r, 64, 64)
	require.NoError(t, err)
	assert.False(t, dev.Caps().FloatTextures)
	return dev
}

func TestApply_CubeTexture(t *testing.T) {
	assert := assert.New(t)
	r, dev := newTestDevice(t)
	const skyFragmentShader = `#version 410 core
uniform samplerCube sky;
out vec4 fragColor;
void main() {
	fragColor = texture(sky, vec3(0.0, 0.0, 1.0));
}
`
	p := newProgram("sky", positionVertexShader, skyFragmentShader)
	var faces [6][]byte
	for i := range faces {
		faces[i] = []byte{byte(i), 0, 0, 255}
	}
	sky, err := resource.NewTextureCube("sky", resource.FormatRGBA8, 1, faces)
	require.NoError(t, err)

	flat := newTexture(t, "flat", 1, 1)
	assert.ErrorIs(dev.SetProgramVariable(p, "sky", flat), ErrInvalidConfiguration)
	require.NoError(t, dev.SetProgramVariable(p, "sky", sky))
	dev.SetProgram(p)
	dev.SetVertexBuffers(resource.NewVertexBuffer("triangle", positionLayout, make([]byte, 3*positionLayout.Stride)))
	require.NoError(t, dev.Apply())

	h := dev.registry.lookup(sky).texture
	tex := r.TextureObject(h)
	assert.Equal(glapi.TEXTURE_CUBE_MAP, tex.Target)
	assert.Len(tex.Images, 6)
	assert.Equal([]byte{5, 0, 0, 255}, tex.Images[glapi.TEXTURE_CUBE_MAP_POSITIVE_X+5])
	assert.Equal(h, r.Snapshot().Textures[0][glapi.TEXTURE_CUBE_MAP])
	assert.Empty(r.Errors())
}

func TestApply_RenderTarget(t *testing.T) {
	assert := assert.New(t)
	r, dev := newTestDevice(t)
	rt, err := resource.NewRenderTarget("gbuffer", 256, 128, resource.WithColorAttachments(2, resource.FormatRGBA16F))
	require.NoError(t, err)

	dev.SetRenderTarget(rt)
	assert.Equal(256, dev.ViewPortWidth())
	assert.Equal(128, dev.ViewPortHeight())
	dev.SetClearColorAndDepth(nil, nil)
	require.NoError(t, dev.Apply())

	rd := dev.registry.lookup(rt)
	require.NotNil(t, rd)
	c0 := dev.registry.lookup(rt.ColorTexture(0)).texture
	c1 := dev.registry.lookup(rt.ColorTexture(1)).texture
	assert.Equal(uint32(c0), r.FramebufferAttachment(rd.framebuffer, glapi.COLOR_ATTACHMENT0))
	assert.Equal(uint32(c1), r.FramebufferAttachment(rd.framebuffer, glapi.COLOR_ATTACHMENT0+1))
	assert.Equal(uint32(rd.renderbuffer), r.FramebufferAttachment(rd.framebuffer, glapi.DEPTH_ATTACHMENT))
	assert.Equal([]glapi.Enum{glapi.COLOR_ATTACHMENT0, glapi.COLOR_ATTACHMENT0 + 1}, r.DrawBuffersOf(rd.framebuffer))

	s := r.Snapshot()
	assert.Equal(rd.framebuffer, s.Framebuffer)
	assert.Zero(s.Renderbuffer)
	assert.Equal([4]int{0, 0, 256, 128}, s.Viewport)
	assert.Empty(s.Textures, "creation leaves no texture bound")

	rt.SetSize(512, 512)
	r.Reset()
	require.NoError(t, dev.Apply())
	assert.Equal(2, r.Count("TexImage2D"))
	c, _ := r.Last("RenderbufferStorage")
	assert.Equal([]any{glapi.DEPTH_COMPONENT24, 512, 512}, c.Args)
	assert.Equal(512, r.TextureObject(c1).Width)
	assert.Equal([4]int{0, 0, 512, 512}, r.Snapshot().Viewport)

	// Sampling the target in a later pass samples its first color texture.
	s2 := newTestScene(t)
	s2.stage(t, dev)
	require.NoError(t, dev.SetProgramVariable(s2.program, "albedo", rt))
	dev.SetRenderTarget(nil)
	require.NoError(t, dev.Apply())
	unit := r.Uniform(dev.registry.lookup(s2.program).program, "albedo").([]int32)[0]
	assert.Equal(c0, r.Snapshot().Textures[int(unit)][glapi.TEXTURE_2D])

	rt.Release()
	assert.Nil(dev.registry.lookup(rt.ColorTexture(0)))
	assert.Equal(0, r.Live()["framebuffer"])
	assert.Equal(0, r.Live()["renderbuffer"])
	assert.Empty(r.Errors())
}

func TestApply_RenderTargetLimits(t *testing.T) {
	r := glapitest.New()
	r.Limits[glapi.MAX_DRAW_BUFFERS] = 1
	r.Limits[glapi.MAX_RENDERBUFFER_SIZE] = 1024
	dev, err := New(r, 64, 64)
	require.NoError(t, err)

	mrt, err := resource.NewRenderTarget("mrt", 64, 64, resource.WithColorAttachments(2, resource.FormatRGBA8))
	require.NoError(t, err)
	dev.SetRenderTarget(mrt)
	assert.ErrorIs(t, dev.Apply(), ErrUnsupportedCapability)

	big, err := resource.NewRenderTarget("big", 2048, 16)
	require.NoError(t, err)
	dev.SetRenderTarget(big)
	assert.ErrorIs(t, dev.Apply(), ErrUnsupportedCapability)

	depth, err := resource.NewRenderTarget("depth", 16, 16, resource.WithColorAttachments(1, resource.FormatDepth24))
	require.NoError(t, err)
	dev.SetRenderTarget(depth)
	assert.ErrorIs(t, dev.Apply(), ErrUnsupportedCapability)

	assert.Zero(t, r.Count("CreateFramebuffer"))
	assert.Zero(t, dev.Stats().LiveDescriptors)
}
