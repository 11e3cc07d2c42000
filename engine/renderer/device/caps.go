package device

import (
	"slices"
	"strings"

	"github.com/Carmen-Shannon/oxy-gl/engine/renderer/glapi"
	"github.com/Carmen-Shannon/oxy-gl/engine/renderer/resource"
)

// Caps are the limits and features queried from the current context. They are re-queried on
// restore since a replacement context may differ.
type Caps struct {
	Vendor     string
	Renderer   string
	Version    string
	Extensions []string

	MaxTextureSize      int
	MaxRenderbufferSize int
	MaxColorAttachments int
	MaxDrawBuffers      int
	MaxTextureUnits     int
	MaxVertexAttribs    int

	// FloatTextures reports support for sampled RGBA16F and RGBA32F textures.
	FloatTextures bool
	// FloatRenderTargets reports support for rendering into RGBA16F and RGBA32F attachments.
	FloatRenderTargets bool
}

func queryCaps(f glapi.Functions) Caps {
	c := Caps{
		Vendor:              f.GetString(glapi.VENDOR),
		Renderer:            f.GetString(glapi.RENDERER),
		Version:             f.GetString(glapi.VERSION),
		MaxTextureSize:      f.GetInteger(glapi.MAX_TEXTURE_SIZE),
		MaxRenderbufferSize: f.GetInteger(glapi.MAX_RENDERBUFFER_SIZE),
		MaxColorAttachments: f.GetInteger(glapi.MAX_COLOR_ATTACHMENTS),
		MaxDrawBuffers:      f.GetInteger(glapi.MAX_DRAW_BUFFERS),
		MaxTextureUnits:     f.GetInteger(glapi.MAX_COMBINED_TEXTURE_IMAGE_UNITS),
		MaxVertexAttribs:    f.GetInteger(glapi.MAX_VERTEX_ATTRIBS),
	}
	if exts := f.GetString(glapi.EXTENSIONS); exts != "" {
		c.Extensions = strings.Fields(exts)
	}
	core3 := majorVersion(c.Version) >= 3
	c.FloatTextures = core3 || c.HasExtension("GL_ARB_texture_float") || c.HasExtension("GL_OES_texture_float")
	c.FloatRenderTargets = core3 || c.HasExtension("GL_ARB_color_buffer_float") || c.HasExtension("GL_EXT_color_buffer_float")
	return c
}

// majorVersion extracts the leading major version from a GL_VERSION string such as
// "4.1 Metal - 83" or "OpenGL ES 3.0".
func majorVersion(version string) int {
	for i, r := range version {
		if r >= '0' && r <= '9' {
			major := 0
			for _, d := range version[i:] {
				if d < '0' || d > '9' {
					break
				}
				major = major*10 + int(d-'0')
			}
			return major
		}
	}
	return 0
}

// HasExtension reports whether the context advertises the named extension.
//
// Parameters:
//   - name: the extension name, e.g. "GL_EXT_color_buffer_float"
//
// Returns:
//   - bool: true if advertised
func (c Caps) HasExtension(name string) bool {
	return slices.Contains(c.Extensions, name)
}

// SupportsFormat reports whether textures of format can be created, and when renderable is set,
// whether they can also be attached as render target colors.
//
// Parameters:
//   - format: the pixel format
//   - renderable: true when the texture is a color attachment
//
// Returns:
//   - bool: true if supported
func (c Caps) SupportsFormat(format resource.Format, renderable bool) bool {
	switch format {
	case resource.FormatRGBA16F, resource.FormatRGBA32F:
		if renderable {
			return c.FloatRenderTargets
		}
		return c.FloatTextures
	case resource.FormatDepth24:
		return !renderable
	}
	return true
}

// textureFormat maps a logical format to (internal format, pixel format, component type).
func textureFormat(format resource.Format) (internal, pixel, typ glapi.Enum) {
	switch format {
	case resource.FormatRGB8:
		return glapi.RGB8, glapi.RGB, glapi.UNSIGNED_BYTE
	case resource.FormatR8:
		return glapi.R8, glapi.RED, glapi.UNSIGNED_BYTE
	case resource.FormatRGBA16F:
		return glapi.RGBA16F, glapi.RGBA, glapi.HALF_FLOAT
	case resource.FormatRGBA32F:
		return glapi.RGBA32F, glapi.RGBA, glapi.FLOAT
	case resource.FormatDepth24:
		return glapi.DEPTH_COMPONENT24, glapi.DEPTH_COMPONENT, glapi.UNSIGNED_INT
	}
	return glapi.RGBA8, glapi.RGBA, glapi.UNSIGNED_BYTE
}

func textureTarget(t resource.TextureTarget) glapi.Enum {
	if t == resource.TextureCube {
		return glapi.TEXTURE_CUBE_MAP
	}
	return glapi.TEXTURE_2D
}

func filterMode(f resource.Filter, mipmaps bool) glapi.Enum {
	switch {
	case f == resource.FilterNearest && mipmaps:
		return glapi.NEAREST_MIPMAP_NEAREST
	case f == resource.FilterNearest:
		return glapi.NEAREST
	case mipmaps:
		return glapi.LINEAR_MIPMAP_LINEAR
	}
	return glapi.LINEAR
}

func wrapMode(w resource.Wrap) glapi.Enum {
	switch w {
	case resource.WrapRepeat:
		return glapi.REPEAT
	case resource.WrapMirror:
		return glapi.MIRRORED_REPEAT
	}
	return glapi.CLAMP_TO_EDGE
}

func bufferUsage(u resource.Usage) glapi.Enum {
	switch u {
	case resource.UsageDynamic:
		return glapi.DYNAMIC_DRAW
	case resource.UsageStream:
		return glapi.STREAM_DRAW
	}
	return glapi.STATIC_DRAW
}

func componentType(c resource.ComponentType) glapi.Enum {
	switch c {
	case resource.ComponentInt8:
		return glapi.BYTE
	case resource.ComponentUint8:
		return glapi.UNSIGNED_BYTE
	case resource.ComponentInt16:
		return glapi.SHORT
	case resource.ComponentUint16:
		return glapi.UNSIGNED_SHORT
	case resource.ComponentInt32:
		return glapi.INT
	case resource.ComponentUint32:
		return glapi.UNSIGNED_INT
	}
	return glapi.FLOAT
}

func indexType(t resource.IndexType) glapi.Enum {
	switch t {
	case resource.IndexUint8:
		return glapi.UNSIGNED_BYTE
	case resource.IndexUint32:
		return glapi.UNSIGNED_INT
	}
	return glapi.UNSIGNED_SHORT
}
