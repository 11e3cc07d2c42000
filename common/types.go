// package common contains common types that are used throughout this engine. They are not interface-wrapped structs, just plain structs that express
// commonly used data-types.
package common

import (
	"bytes"
	"fmt"
	"image"
	"image/draw"
	_ "image/jpeg"
	_ "image/png"
	"os"

	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/tiff"
	_ "golang.org/x/image/webp"
)

// Rect is an integer pixel rectangle with its origin at the bottom-left, matching GL viewport
// and scissor conventions.
type Rect struct {
	X, Y          int
	Width, Height int
}

// Empty reports whether the rectangle has no area.
func (r Rect) Empty() bool {
	return r.Width <= 0 || r.Height <= 0
}

// Color is a linear RGBA color with float components in [0, 1].
type Color struct {
	R, G, B, A float32
}

// Black is opaque black, the device's default clear color.
var Black = Color{A: 1}

// TextureStagingData holds RGBA pixel data for a texture pending GPU upload.
type TextureStagingData struct {
	// Pixels is the byte slice representing the actual pixel data for the texture. It should be in RGBA format, with 4 bytes per pixel.
	Pixels []byte
	// Width is the width of the texture in pixels.
	Width int
	// Height is the height of the texture in pixels.
	Height int
}

// ImportedTexture represents texture data to be decoded from memory or disk.
// For embedded textures, the Data field contains raw image bytes.
// For external textures, the Path field contains the file path.
type ImportedTexture struct {
	// Name is an identifier for this texture (e.g., "diffuse", "normal").
	Name string

	// Path is the file path for external textures (empty for embedded).
	Path string

	// Data contains raw image bytes for embedded textures.
	Data []byte
}

// Image decodes the texture into an image.Image using either the embedded Data bytes or the
// file at Path. PNG, JPEG, BMP, TIFF and WebP are supported.
//
// Returns:
//   - image.Image: the decoded image
//   - error: error if decoding fails
func (t *ImportedTexture) Image() (image.Image, error) {
	if t == nil {
		return nil, fmt.Errorf("texture is nil")
	}

	if len(t.Data) > 0 {
		img, _, err := image.Decode(bytes.NewReader(t.Data))
		if err != nil {
			return nil, fmt.Errorf("failed to decode embedded image: %w", err)
		}
		return img, nil
	}
	if t.Path == "" {
		return nil, fmt.Errorf("texture has neither data nor path")
	}

	file, err := os.Open(t.Path)
	if err != nil {
		return nil, fmt.Errorf("failed to open texture file %s: %w", t.Path, err)
	}
	defer file.Close()

	img, _, err := image.Decode(file)
	if err != nil {
		return nil, fmt.Errorf("failed to decode texture file %s: %w", t.Path, err)
	}
	return img, nil
}

// ToStagingData converts any image to tightly packed RGBA staging data.
//
// Parameters:
//   - img: the source image
//
// Returns:
//   - TextureStagingData: RGBA pixels (4 bytes per pixel, row-major order) and dimensions
func ToStagingData(img image.Image) TextureStagingData {
	bounds := img.Bounds()
	rgba, ok := img.(*image.RGBA)
	if !ok || rgba.Stride != bounds.Dx()*4 || bounds.Min != (image.Point{}) {
		rgba = image.NewRGBA(image.Rect(0, 0, bounds.Dx(), bounds.Dy()))
		draw.Draw(rgba, rgba.Bounds(), img, bounds.Min, draw.Src)
	}
	return TextureStagingData{
		Pixels: rgba.Pix,
		Width:  bounds.Dx(),
		Height: bounds.Dy(),
	}
}
