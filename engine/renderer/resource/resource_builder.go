package resource

// BufferBuilderOption is a functional option used to configure a Buffer during construction.
type BufferBuilderOption func(*buffer)

// WithUsage sets the update-frequency hint of a buffer. The default is UsageStatic.
//
// Parameters:
//   - usage: the usage hint
//
// Returns:
//   - BufferBuilderOption: a function that sets the usage of the buffer
func WithUsage(usage Usage) BufferBuilderOption {
	return func(b *buffer) {
		b.usage = usage
	}
}

// TextureBuilderOption is a functional option used to configure a Texture during construction.
type TextureBuilderOption func(*texture)

// WithTextureParameters sets the sampling parameters of a texture. The default is
// DefaultTextureParameters.
//
// Parameters:
//   - params: the sampling parameters
//
// Returns:
//   - TextureBuilderOption: a function that sets the sampling parameters of the texture
func WithTextureParameters(params TextureParameters) TextureBuilderOption {
	return func(t *texture) {
		t.params = params
	}
}

// RenderTargetBuilderOption is a functional option used to configure a RenderTarget during construction.
type RenderTargetBuilderOption func(*renderTarget)

// WithColorAttachments sets how many color textures the render target renders into, and their format.
// The default is one FormatRGBA8 attachment.
//
// Parameters:
//   - count: number of color attachments (at least 1)
//   - format: the pixel format of every color attachment
//
// Returns:
//   - RenderTargetBuilderOption: a function that sets the color attachments of the render target
func WithColorAttachments(count int, format Format) RenderTargetBuilderOption {
	return func(rt *renderTarget) {
		rt.colorCount = max(count, 1)
		rt.colorFormat = format
	}
}

// WithDepth sets whether the render target carries a depth renderbuffer. The default is true.
//
// Parameters:
//   - depth: true to attach a depth buffer
//
// Returns:
//   - RenderTargetBuilderOption: a function that sets the depth attachment of the render target
func WithDepth(depth bool) RenderTargetBuilderOption {
	return func(rt *renderTarget) {
		rt.depth = depth
	}
}

// WithColorParameters sets the sampling parameters of the render target's color textures.
//
// Parameters:
//   - params: the sampling parameters
//
// Returns:
//   - RenderTargetBuilderOption: a function that sets the color texture parameters
func WithColorParameters(params TextureParameters) RenderTargetBuilderOption {
	return func(rt *renderTarget) {
		rt.colorParams = params
	}
}
