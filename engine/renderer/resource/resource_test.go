package resource

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// eventLog is a Listener that records what it receives.
type eventLog struct {
	events []Event
	from   []Resource
}

func (l *eventLog) OnResourceEvent(r Resource, e Event) {
	l.events = append(l.events, e)
	l.from = append(l.from, r)
}

// unsubscriber drops itself on the first event it sees.
type unsubscriber struct {
	seen int
}

func (u *unsubscriber) OnResourceEvent(r Resource, _ Event) {
	u.seen++
	r.Unsubscribe(u)
}

// releaseWatcher records whether the resource already reports itself released on EventReleased.
type releaseWatcher struct {
	released bool
}

func (w *releaseWatcher) OnResourceEvent(r Resource, e Event) {
	if e == EventReleased {
		w.released = r.Released()
	}
}

func TestResource_ReleasedDuringEvent(t *testing.T) {
	b := NewVertexBuffer("b", Interleaved(VertexAttribute{Name: "position", Components: 3, Type: ComponentFloat32}), nil)
	var w releaseWatcher
	b.Subscribe(&w)
	b.Release()
	assert.True(t, w.released)
}

func TestResource_Identity(t *testing.T) {
	assert := assert.New(t)
	a := NewShader("a", ShaderTypeVertex, "")
	b := NewShader("a", ShaderTypeVertex, "")
	assert.NotEqual(a.ID(), b.ID())
	assert.Equal(KindShader, a.Kind())
	assert.Equal("a", a.Name())
	assert.Equal("render target", KindRenderTarget.String())
	assert.Equal("Kind(42)", Kind(42).String())
	assert.Equal("sizeChanged", EventSizeChanged.String())
}

func TestResource_SubscribeAndRelease(t *testing.T) {
	assert := assert.New(t)
	s := NewShader("s", ShaderTypeFragment, "old")
	var log eventLog
	s.Subscribe(&log)
	s.Subscribe(&log)

	s.SetSource("new")
	assert.Equal("new", s.Source())
	assert.Equal([]Event{EventDataChanged}, log.events, "subscribing twice delivers once")
	assert.Same(s, log.from[0])

	s.Release()
	s.Release()
	assert.True(s.Released())
	assert.Equal([]Event{EventDataChanged, EventReleased}, log.events)

	// A released resource keeps no listeners.
	s.Subscribe(&log)
	s.SetSource("newer")
	assert.Len(log.events, 2)
}

func TestResource_UnsubscribeDuringNotify(t *testing.T) {
	s := NewShader("s", ShaderTypeVertex, "")
	var once unsubscriber
	var log eventLog
	s.Subscribe(&once)
	s.Subscribe(&log)

	s.SetSource("a")
	s.SetSource("b")
	assert.Equal(t, 1, once.seen)
	assert.Len(t, log.events, 2, "later listeners still see the event")
}

func TestInterleaved(t *testing.T) {
	assert := assert.New(t)
	layout := Interleaved(
		VertexAttribute{Name: "position", Components: 3, Type: ComponentFloat32, Offset: 99},
		VertexAttribute{Name: "color", Components: 4, Type: ComponentUint8, Normalized: true},
		VertexAttribute{Name: "uv", Components: 2, Type: ComponentUint16},
	)
	assert.Equal(12+4+4, layout.Stride)
	uv, ok := layout.Attribute("uv")
	require.True(t, ok)
	assert.Equal(16, uv.Offset)
	pos, _ := layout.Attribute("position")
	assert.Zero(pos.Offset)
	_, ok = layout.Attribute("normal")
	assert.False(ok)
}

func TestBuffer_Events(t *testing.T) {
	assert := assert.New(t)
	layout := Interleaved(VertexAttribute{Name: "position", Components: 2, Type: ComponentFloat32})
	b := NewVertexBuffer("quad", layout, make([]byte, 4*8), WithUsage(UsageDynamic))
	var log eventLog
	b.Subscribe(&log)

	assert.Equal(UsageDynamic, b.Usage())
	assert.Equal(BufferKindVertex, b.BufferKind())
	assert.Equal(4, b.VertexCount())
	assert.Zero(b.IndexCount())

	require.NoError(t, b.SetSubData(8, []byte{1, 2, 3}))
	off, n := b.LastWrite()
	assert.Equal([2]int{8, 3}, [2]int{off, n})
	assert.Equal(byte(2), b.Data()[9])
	assert.Error(b.SetSubData(30, []byte{1, 2, 3}))
	assert.Error(b.SetSubData(-1, []byte{1}))

	b.SetData(make([]byte, 32))
	b.SetData(make([]byte, 48))
	assert.Equal([]Event{EventDataChanged, EventDataChanged, EventSizeChanged}, log.events)
	off, n = b.LastWrite()
	assert.Equal([2]int{0, 48}, [2]int{off, n})
	assert.Equal(6, b.VertexCount())
}

func TestBuffer_Index(t *testing.T) {
	assert := assert.New(t)
	b := NewIndexBuffer("indices", IndexUint32, make([]byte, 24))
	assert.Equal(BufferKindIndex, b.BufferKind())
	assert.Equal(UsageStatic, b.Usage())
	assert.Equal(6, b.IndexCount())
	assert.Zero(b.VertexCount())
	assert.Equal(1, IndexUint8.Size())
	assert.Equal(2, IndexUint16.Size())
}

func TestTexture_2D(t *testing.T) {
	assert := assert.New(t)
	_, err := NewTexture2D("bad", FormatRGBA8, 2, 2, make([]byte, 3))
	assert.Error(err)

	tex, err := NewTexture2D("albedo", FormatRGB8, 2, 1, make([]byte, 6), WithTextureParameters(TextureParameters{Mipmaps: true}))
	require.NoError(t, err)
	var log eventLog
	tex.Subscribe(&log)
	assert.Equal(Texture2D, tex.Target())
	assert.True(tex.Parameters().Mipmaps)
	assert.Nil(tex.Face(1))

	tex.SetPixels([]byte{1, 2, 3, 4, 5, 6})
	assert.Equal([]byte{1, 2, 3, 4, 5, 6}, tex.Face(0))
	tex.Resize(4, 4, nil)
	assert.Nil(tex.Pixels())
	assert.Equal(4, tex.Width())
	tex.SetParameters(DefaultTextureParameters)
	tex.SetFace(3, []byte{1})
	assert.Equal([]Event{EventDataChanged, EventSizeChanged, EventParametersChanged}, log.events)
}

func TestTexture_Cube(t *testing.T) {
	assert := assert.New(t)
	var faces [6][]byte
	faces[2] = make([]byte, 4)
	_, err := NewTextureCube("bad", FormatRGBA8, 2, faces)
	assert.Error(err)

	faces[2] = make([]byte, 16)
	cube, err := NewTextureCube("sky", FormatRGBA8, 2, faces)
	require.NoError(t, err)
	assert.Equal(TextureCube, cube.Target())
	assert.Len(cube.Face(2), 16)
	assert.Nil(cube.Face(0))
	assert.Nil(cube.Face(6))

	cube.SetFace(5, []byte{9})
	assert.Equal([]byte{9}, cube.Face(5))
	assert.Equal(8, FormatRGBA16F.BytesPerPixel())
}

func TestRenderTarget(t *testing.T) {
	assert := assert.New(t)
	rt, err := NewRenderTarget("gbuffer", 64, 32,
		WithColorAttachments(3, FormatRGBA16F),
		WithDepth(false),
		WithColorParameters(TextureParameters{MinFilter: FilterNearest}),
	)
	require.NoError(t, err)
	assert.False(rt.HasDepth())
	require.Len(t, rt.ColorTextures(), 3)
	assert.Nil(rt.ColorTexture(3))
	c1 := rt.ColorTexture(1)
	assert.Equal("gbuffer/color1", c1.Name())
	assert.Equal(FormatRGBA16F, c1.Format())
	assert.Equal(FilterNearest, c1.Parameters().MinFilter)

	var rtLog, texLog eventLog
	rt.Subscribe(&rtLog)
	c1.Subscribe(&texLog)
	rt.SetSize(64, 32)
	assert.Empty(rtLog.events, "same size is a no-op")
	rt.SetSize(128, 64)
	assert.Equal([]Event{EventSizeChanged}, rtLog.events)
	assert.Equal([]Event{EventSizeChanged}, texLog.events)
	assert.Equal(128, c1.Width())

	rt.Release()
	assert.True(c1.Released())
	assert.Equal([]Event{EventSizeChanged, EventReleased}, rtLog.events)

	single, err := NewRenderTarget("single", 8, 8, WithColorAttachments(0, FormatRGBA8))
	require.NoError(t, err)
	assert.Len(single.ColorTextures(), 1)
	assert.True(single.HasDepth())
}
