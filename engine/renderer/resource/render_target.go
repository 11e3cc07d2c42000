package resource

import "fmt"

// renderTarget is the implementation of the RenderTarget interface.
type renderTarget struct {
	base
	width, height int
	colorCount    int
	colorFormat   Format
	colorParams   TextureParameters
	depth         bool
	colors        []Texture
}

// RenderTarget is the logical description of an offscreen framebuffer: one or more color
// textures plus an optional depth buffer. The color textures are owned by the target and can be
// sampled by later draws.
type RenderTarget interface {
	Resource

	// Width returns the width in pixels.
	//
	// Returns:
	//   - int: width in pixels
	Width() int

	// Height returns the height in pixels.
	//
	// Returns:
	//   - int: height in pixels
	Height() int

	// ColorTextures returns every color attachment in attachment order.
	//
	// Returns:
	//   - []Texture: the color textures
	ColorTextures() []Texture

	// ColorTexture returns color attachment i, or nil when out of range.
	//
	// Parameters:
	//   - i: the attachment index
	//
	// Returns:
	//   - Texture: the color texture
	ColorTexture(i int) Texture

	// HasDepth reports whether the target carries a depth buffer.
	//
	// Returns:
	//   - bool: true when a depth buffer is attached
	HasDepth() bool

	// SetSize resizes the target and its color textures and raises EventSizeChanged.
	//
	// Parameters:
	//   - width: new width in pixels
	//   - height: new height in pixels
	SetSize(width, height int)
}

var _ RenderTarget = &renderTarget{}

// NewRenderTarget creates a logical render target with its color textures.
//
// Parameters:
//   - name: debug name
//   - width: width in pixels
//   - height: height in pixels
//   - options: builder options (color attachments, depth)
//
// Returns:
//   - RenderTarget: the new logical render target
//   - error: an error if a color texture could not be created
func NewRenderTarget(name string, width, height int, options ...RenderTargetBuilderOption) (RenderTarget, error) {
	rt := &renderTarget{
		base:        newBase(KindRenderTarget, name),
		width:       width,
		height:      height,
		colorCount:  1,
		colorFormat: FormatRGBA8,
		colorParams: DefaultTextureParameters,
		depth:       true,
	}
	rt.self = rt
	for _, opt := range options {
		opt(rt)
	}
	for i := 0; i < rt.colorCount; i++ {
		tex, err := NewTexture2D(fmt.Sprintf("%s/color%d", name, i), rt.colorFormat, width, height, nil, WithTextureParameters(rt.colorParams))
		if err != nil {
			return nil, err
		}
		rt.colors = append(rt.colors, tex)
	}
	return rt, nil
}

func (rt *renderTarget) Width() int {
	return rt.width
}

func (rt *renderTarget) Height() int {
	return rt.height
}

func (rt *renderTarget) ColorTextures() []Texture {
	return rt.colors
}

func (rt *renderTarget) ColorTexture(i int) Texture {
	if i < 0 || i >= len(rt.colors) {
		return nil
	}
	return rt.colors[i]
}

func (rt *renderTarget) HasDepth() bool {
	return rt.depth
}

func (rt *renderTarget) SetSize(width, height int) {
	if width == rt.width && height == rt.height {
		return
	}
	rt.width, rt.height = width, height
	for _, c := range rt.colors {
		c.Resize(width, height, nil)
	}
	rt.notify(EventSizeChanged)
}

// Release releases the target and then its color textures.
func (rt *renderTarget) Release() {
	if rt.released {
		return
	}
	rt.base.Release()
	for _, c := range rt.colors {
		c.Release()
	}
}
