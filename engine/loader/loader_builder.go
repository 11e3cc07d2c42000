package loader

import "github.com/Carmen-Shannon/oxy-gl/engine/renderer/resource"

// LoaderBuilderOption is a functional option for configuring a Loader via NewLoader.
type LoaderBuilderOption func(*loader)

// WithWorkers sets the number of goroutines that decode images in parallel.
//
// Parameters:
//   - n: the worker count (minimum 1)
//
// Returns:
//   - LoaderBuilderOption: a function that applies the worker count to a loader
func WithWorkers(n int) LoaderBuilderOption {
	return func(l *loader) {
		l.workers = n
	}
}

// WithMaxTextureSize downsizes images larger than size on either axis, typically the device's
// Caps().MaxTextureSize.
//
// Parameters:
//   - size: the largest width or height in pixels; 0 disables the limit
//
// Returns:
//   - LoaderBuilderOption: a function that applies the size limit to a loader
func WithMaxTextureSize(size int) LoaderBuilderOption {
	return func(l *loader) {
		l.maxSize = size
	}
}

// WithFlipY sets whether 2D images are flipped vertically to GL's bottom-left origin. The default
// is true.
//
// Parameters:
//   - flip: true to flip images
//
// Returns:
//   - LoaderBuilderOption: a function that applies the flip setting to a loader
func WithFlipY(flip bool) LoaderBuilderOption {
	return func(l *loader) {
		l.flipY = flip
	}
}

// WithTexture is an option builder that pre-populates the texture cache.
//
// Parameters:
//   - key: the cache key for the texture
//   - texture: the texture to cache
//
// Returns:
//   - LoaderBuilderOption: a function that applies the texture option to a loader
func WithTexture(key string, texture resource.Texture) LoaderBuilderOption {
	return func(l *loader) {
		l.textureCache[key] = texture
	}
}
