package loader

import (
	"bytes"
	"image"
	"image/color"
	"image/png"
	"os"
	"path/filepath"
	"testing"

	"github.com/Carmen-Shannon/oxy-gl/engine/renderer/resource"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/image/bmp"
)

var (
	red  = color.NRGBA{R: 255, A: 255}
	blue = color.NRGBA{B: 255, A: 255}
)

// striped returns a w x h image whose top row is red and the rest blue.
func striped(w, h int) *image.NRGBA {
	img := image.NewNRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			c := blue
			if y == 0 {
				c = red
			}
			img.SetNRGBA(x, y, c)
		}
	}
	return img
}

func writePNG(t *testing.T, dir, name string, img image.Image) string {
	t.Helper()
	path := filepath.Join(dir, name)
	f, err := os.Create(path)
	require.NoError(t, err)
	defer f.Close()
	require.NoError(t, png.Encode(f, img))
	return path
}

func TestLoader_LoadFlipsToBottomLeftOrigin(t *testing.T) {
	assert := assert.New(t)
	path := writePNG(t, t.TempDir(), "stripe.png", striped(2, 2))

	l := NewLoader()
	tex, err := l.Load(path)
	require.NoError(t, err)
	assert.Equal(resource.Texture2D, tex.Target())
	assert.Equal(resource.FormatRGBA8, tex.Format())
	assert.Equal(2, tex.Width())
	assert.Equal(2, tex.Height())

	px := tex.Pixels()
	require.Len(t, px, 16)
	assert.Equal([]byte{0, 0, 255, 255}, px[0:4], "first row is the image's bottom row")
	assert.Equal([]byte{255, 0, 0, 255}, px[8:12], "last row is the image's top row")

	again, err := l.Load(path)
	require.NoError(t, err)
	assert.Same(tex, again)
	assert.Same(tex, l.Get(path))
}

func TestLoader_NoFlip(t *testing.T) {
	path := writePNG(t, t.TempDir(), "stripe.png", striped(1, 2))
	tex, err := NewLoader(WithFlipY(false)).Load(path)
	require.NoError(t, err)
	assert.Equal(t, []byte{255, 0, 0, 255}, tex.Pixels()[0:4])
}

func TestLoader_MaxTextureSize(t *testing.T) {
	path := writePNG(t, t.TempDir(), "wide.png", striped(16, 4))
	tex, err := NewLoader(WithMaxTextureSize(8)).Load(path)
	require.NoError(t, err)
	assert.Equal(t, 8, tex.Width())
	assert.Equal(t, 2, tex.Height())
	assert.Len(t, tex.Pixels(), 8*2*4)
}

func TestLoader_BMP(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, bmp.Encode(&buf, striped(3, 1)))
	path := filepath.Join(t.TempDir(), "single.bmp")
	require.NoError(t, os.WriteFile(path, buf.Bytes(), 0o644))

	tex, err := NewLoader().Load(path)
	require.NoError(t, err)
	assert.Equal(t, 3, tex.Width())
	assert.Equal(t, []byte{255, 0, 0, 255}, tex.Pixels()[0:4])
}

func TestLoader_LoadReader(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, striped(1, 1)))
	params := resource.TextureParameters{MinFilter: resource.FilterNearest, MagFilter: resource.FilterNearest}

	l := NewLoader()
	tex, err := l.LoadReader("embedded", &buf, resource.WithTextureParameters(params))
	require.NoError(t, err)
	assert.Equal(t, params, tex.Parameters())
	assert.Same(t, tex, l.Get("embedded"))

	_, err = l.LoadReader("empty", bytes.NewReader(nil))
	assert.Error(t, err)
	assert.Nil(t, l.Get("empty"))
}

func TestLoader_LoadAll(t *testing.T) {
	assert := assert.New(t)
	dir := t.TempDir()
	paths := []string{
		writePNG(t, dir, "a.png", striped(1, 1)),
		writePNG(t, dir, "b.png", striped(2, 2)),
		writePNG(t, dir, "c.png", striped(3, 3)),
		filepath.Join(dir, "missing.png"),
		filepath.Join(dir, "model.gltf"),
	}

	l := NewLoader(WithWorkers(2))
	loaded, err := l.LoadAll(paths)
	require.Error(t, err)
	assert.Contains(err.Error(), "missing.png")
	assert.Contains(err.Error(), "unsupported texture format")
	assert.Len(loaded, 3)
	assert.Equal(3, loaded[paths[2]].Width())
	assert.Len(l.Textures(), 3)
}

func TestLoader_LoadCube(t *testing.T) {
	dir := t.TempDir()
	var faces [6]string
	for i := range faces {
		faces[i] = writePNG(t, dir, string(rune('a'+i))+".png", striped(2, 2))
	}

	l := NewLoader()
	cube, err := l.LoadCube("sky", faces)
	require.NoError(t, err)
	assert.Equal(t, resource.TextureCube, cube.Target())
	assert.Equal(t, 2, cube.Width())
	assert.Equal(t, []byte{255, 0, 0, 255}, cube.Face(5)[0:4], "faces keep their top-left origin")

	faces[3] = writePNG(t, dir, "odd.png", striped(2, 3))
	_, err = l.LoadCube("odd", faces)
	assert.ErrorContains(t, err, "face 3")
}

func TestLoader_Evict(t *testing.T) {
	path := writePNG(t, t.TempDir(), "a.png", striped(1, 1))
	l := NewLoader()
	tex, err := l.Load(path)
	require.NoError(t, err)

	l.Evict(path)
	assert.True(t, tex.Released())
	assert.Nil(t, l.Get(path))
	l.Evict(path)
}

func TestLoader_WithTexture(t *testing.T) {
	tex, err := resource.NewTexture2D("white", resource.FormatRGBA8, 1, 1, []byte{255, 255, 255, 255})
	require.NoError(t, err)
	l := NewLoader(WithTexture("white", tex))
	assert.Same(t, tex, l.Get("white"))
}
