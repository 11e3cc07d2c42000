package resource

import "fmt"

// TextureTarget is the dimensionality of a texture.
type TextureTarget int

const (
	Texture2D TextureTarget = iota
	TextureCube
)

// Format is the pixel format of a texture.
type Format int

const (
	FormatRGBA8 Format = iota
	FormatRGB8
	FormatR8
	FormatRGBA16F
	FormatRGBA32F
	FormatDepth24
)

// BytesPerPixel returns the CPU-side size of one pixel.
func (f Format) BytesPerPixel() int {
	switch f {
	case FormatRGB8:
		return 3
	case FormatR8:
		return 1
	case FormatRGBA16F:
		return 8
	case FormatRGBA32F:
		return 16
	}
	return 4
}

// Filter is a texture sampling filter.
type Filter int

const (
	FilterLinear Filter = iota
	FilterNearest
)

// Wrap is a texture coordinate wrap mode.
type Wrap int

const (
	WrapClamp Wrap = iota
	WrapRepeat
	WrapMirror
)

// TextureParameters are the sampling parameters of a texture.
type TextureParameters struct {
	MinFilter, MagFilter Filter
	WrapS, WrapT         Wrap
	// Mipmaps generates a mip chain on upload and samples it with MinFilter.
	Mipmaps bool
}

// DefaultTextureParameters is linear filtering with edge clamping and no mipmaps.
var DefaultTextureParameters = TextureParameters{}

// texture is the implementation of the Texture interface.
type texture struct {
	base
	target        TextureTarget
	format        Format
	width, height int
	// faces holds one slice for 2D textures and six (+X, -X, +Y, -Y, +Z, -Z) for cube maps.
	faces  [][]byte
	params TextureParameters
}

// Texture is the logical description of a 2D texture or cube map.
type Texture interface {
	Resource

	// Target returns the texture dimensionality.
	//
	// Returns:
	//   - TextureTarget: 2D or cube
	Target() TextureTarget

	// Format returns the pixel format.
	//
	// Returns:
	//   - Format: the pixel format
	Format() Format

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

	// Pixels returns the pixel data of a 2D texture, nil when the texture is allocated without data.
	//
	// Returns:
	//   - []byte: the pixel data
	Pixels() []byte

	// Face returns the pixel data of one cube face (0..5) or, for 2D textures, of face 0.
	//
	// Parameters:
	//   - i: the face index
	//
	// Returns:
	//   - []byte: the pixel data, nil when unset
	Face(i int) []byte

	// Parameters returns the sampling parameters.
	//
	// Returns:
	//   - TextureParameters: the sampling parameters
	Parameters() TextureParameters

	// SetPixels replaces the pixel data of a 2D texture without changing its size and raises EventDataChanged.
	//
	// Parameters:
	//   - pixels: the new pixel data
	SetPixels(pixels []byte)

	// SetFace replaces the pixel data of one cube face and raises EventDataChanged.
	//
	// Parameters:
	//   - i: the face index (0..5)
	//   - pixels: the new pixel data
	SetFace(i int, pixels []byte)

	// Resize changes the texture size, replaces its data (nil allocates uninitialized storage)
	// and raises EventSizeChanged.
	//
	// Parameters:
	//   - width: new width in pixels
	//   - height: new height in pixels
	//   - pixels: new data for every face, or nil
	Resize(width, height int, pixels []byte)

	// SetParameters replaces the sampling parameters and raises EventParametersChanged.
	//
	// Parameters:
	//   - params: the new sampling parameters
	SetParameters(params TextureParameters)
}

var _ Texture = &texture{}

// NewTexture2D creates a logical 2D texture.
//
// Parameters:
//   - name: debug name
//   - format: the pixel format
//   - width: width in pixels
//   - height: height in pixels
//   - pixels: initial data, or nil to allocate uninitialized storage
//   - options: builder options (sampling parameters)
//
// Returns:
//   - Texture: the new logical texture
//   - error: an error if pixels does not match the size and format
func NewTexture2D(name string, format Format, width, height int, pixels []byte, options ...TextureBuilderOption) (Texture, error) {
	if pixels != nil && len(pixels) != width*height*format.BytesPerPixel() {
		return nil, fmt.Errorf("texture %q: %d bytes of pixel data for %dx%d format %d", name, len(pixels), width, height, format)
	}
	t := &texture{
		base:   newBase(KindTexture, name),
		target: Texture2D,
		format: format,
		width:  width,
		height: height,
		faces:  [][]byte{pixels},
		params: DefaultTextureParameters,
	}
	t.self = t
	for _, opt := range options {
		opt(t)
	}
	return t, nil
}

// NewTextureCube creates a logical cube map with square faces.
//
// Parameters:
//   - name: debug name
//   - format: the pixel format
//   - size: the width and height of each face
//   - faces: face data in +X, -X, +Y, -Y, +Z, -Z order; nil entries allocate uninitialized storage
//   - options: builder options (sampling parameters)
//
// Returns:
//   - Texture: the new logical cube map
//   - error: an error if any face does not match the size and format
func NewTextureCube(name string, format Format, size int, faces [6][]byte, options ...TextureBuilderOption) (Texture, error) {
	for i, f := range faces {
		if f != nil && len(f) != size*size*format.BytesPerPixel() {
			return nil, fmt.Errorf("cube texture %q: face %d has %d bytes for %dx%d", name, i, len(f), size, size)
		}
	}
	t := &texture{
		base:   newBase(KindTexture, name),
		target: TextureCube,
		format: format,
		width:  size,
		height: size,
		faces:  faces[:],
		params: DefaultTextureParameters,
	}
	t.self = t
	for _, opt := range options {
		opt(t)
	}
	return t, nil
}

func (t *texture) Target() TextureTarget {
	return t.target
}

func (t *texture) Format() Format {
	return t.format
}

func (t *texture) Width() int {
	return t.width
}

func (t *texture) Height() int {
	return t.height
}

func (t *texture) Pixels() []byte {
	return t.faces[0]
}

func (t *texture) Face(i int) []byte {
	if i < 0 || i >= len(t.faces) {
		return nil
	}
	return t.faces[i]
}

func (t *texture) Parameters() TextureParameters {
	return t.params
}

func (t *texture) SetPixels(pixels []byte) {
	t.faces[0] = pixels
	t.notify(EventDataChanged)
}

func (t *texture) SetFace(i int, pixels []byte) {
	if i < 0 || i >= len(t.faces) {
		return
	}
	t.faces[i] = pixels
	t.notify(EventDataChanged)
}

func (t *texture) Resize(width, height int, pixels []byte) {
	t.width, t.height = width, height
	for i := range t.faces {
		t.faces[i] = pixels
	}
	t.notify(EventSizeChanged)
}

func (t *texture) SetParameters(params TextureParameters) {
	t.params = params
	t.notify(EventParametersChanged)
}
