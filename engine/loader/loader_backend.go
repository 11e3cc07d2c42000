package loader

import (
	"fmt"
	"image"
	"io"
	"path/filepath"
	"strings"

	"github.com/Carmen-Shannon/oxy-gl/common"
)

// loaderBackend decodes image files into images. Concrete implementations handle format-specific
// details.
type loaderBackend interface {
	// Decode reads and decodes the image file at path.
	//
	// Parameters:
	//   - path: the file path to load
	//
	// Returns:
	//   - image.Image: the decoded image
	//   - error: error if reading or decoding fails
	Decode(path string) (image.Image, error)

	// DecodeReader decodes an image from a reader stream.
	//
	// Parameters:
	//   - r: the reader providing encoded image data
	//
	// Returns:
	//   - image.Image: the decoded image
	//   - error: error if decoding fails
	DecodeReader(r io.Reader) (image.Image, error)
}

// imageBackend decodes through the registered image codecs: PNG, JPEG, BMP, TIFF and WebP.
type imageBackend struct{}

var _ loaderBackend = imageBackend{}

func (imageBackend) Decode(path string) (image.Image, error) {
	t := &common.ImportedTexture{Name: filepath.Base(path), Path: path}
	return t.Image()
}

func (imageBackend) DecodeReader(r io.Reader) (image.Image, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("failed to read image data: %w", err)
	}
	t := &common.ImportedTexture{Data: data}
	return t.Image()
}

// supportedExtensions are the file extensions imageBackend can decode.
var supportedExtensions = map[string]bool{
	".png":  true,
	".jpg":  true,
	".jpeg": true,
	".bmp":  true,
	".tif":  true,
	".tiff": true,
	".webp": true,
}

// checkExtension rejects paths whose extension has no decoder.
func checkExtension(path string) error {
	ext := strings.ToLower(filepath.Ext(path))
	if !supportedExtensions[ext] {
		return fmt.Errorf("unsupported texture format: %q", ext)
	}
	return nil
}
