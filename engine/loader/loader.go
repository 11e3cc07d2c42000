package loader

import (
	"errors"
	"fmt"
	"image"
	"io"
	"sync"
	"time"

	"github.com/Carmen-Shannon/automation/tools/worker"
	"github.com/Carmen-Shannon/oxy-gl/common"
	"github.com/Carmen-Shannon/oxy-gl/engine/renderer/resource"
	"github.com/disintegration/imaging"
)

// loader is the implementation of the Loader interface.
type loader struct {
	mu sync.RWMutex

	textureCache map[string]resource.Texture

	backend loaderBackend

	workers int
	pool    worker.DynamicWorkerPool

	// flipY flips 2D images so their first row is the bottom one, matching GL's texture origin.
	flipY bool
	// maxSize downsizes images whose width or height exceeds it, keeping the aspect ratio. Zero
	// disables the limit.
	maxSize int
}

// Loader decodes image files into logical textures and caches them by path or name.
// The textures carry pixels only; the render device creates their GL objects on first use.
type Loader interface {
	// Load decodes an image file into a 2D RGBA8 texture and caches it by path.
	// If the texture is already cached, the cached version is returned.
	//
	// Parameters:
	//   - path: the file path to the image
	//   - options: texture builder options (sampling parameters)
	//
	// Returns:
	//   - resource.Texture: the loaded and cached texture
	//   - error: error if the format is unsupported or decoding fails
	Load(path string, options ...resource.TextureBuilderOption) (resource.Texture, error)

	// LoadAll decodes several image files in parallel on the loader's worker pool. Textures that
	// load are cached and returned even when others fail; the failures are joined into the error.
	//
	// Parameters:
	//   - paths: the file paths to load
	//   - options: texture builder options applied to every texture
	//
	// Returns:
	//   - map[string]resource.Texture: the loaded textures keyed by path
	//   - error: the joined errors of the paths that failed, or nil
	LoadAll(paths []string, options ...resource.TextureBuilderOption) (map[string]resource.Texture, error)

	// LoadReader decodes an image from a reader stream and caches it by the given name.
	//
	// Parameters:
	//   - name: the cache key for the texture
	//   - r: the reader providing encoded image data
	//   - options: texture builder options (sampling parameters)
	//
	// Returns:
	//   - resource.Texture: the loaded texture
	//   - error: error if decoding fails
	LoadReader(name string, r io.Reader, options ...resource.TextureBuilderOption) (resource.Texture, error)

	// LoadCube decodes six square face images of the same size in parallel into a cube map cached
	// by name. Faces are in +X, -X, +Y, -Y, +Z, -Z order and are not flipped.
	//
	// Parameters:
	//   - name: the cache key for the cube map
	//   - faces: the six face file paths
	//   - options: texture builder options (sampling parameters)
	//
	// Returns:
	//   - resource.Texture: the loaded cube map
	//   - error: error if a face fails to decode or the faces are not matching squares
	LoadCube(name string, faces [6]string, options ...resource.TextureBuilderOption) (resource.Texture, error)

	// Get retrieves a cached texture by name. Returns nil if not found.
	//
	// Parameters:
	//   - name: the cache key to look up
	//
	// Returns:
	//   - resource.Texture: the cached texture or nil
	Get(name string) resource.Texture

	// Textures returns a copy of the texture cache.
	//
	// Returns:
	//   - map[string]resource.Texture: all cached textures keyed by name
	Textures() map[string]resource.Texture

	// Evict removes a texture from the cache and releases it, which lets a device holding its GL
	// object delete it.
	//
	// Parameters:
	//   - name: the cache key to evict
	Evict(name string)
}

var _ Loader = &loader{}

// NewLoader creates a new Loader with the options applied.
// Decoding runs on a worker pool sized by WithWorkers (default 4).
//
// Parameters:
//   - options: a variadic list of LoaderBuilderOption functions to configure the Loader
//
// Returns:
//   - Loader: a new instance of Loader configured with the provided options
func NewLoader(options ...LoaderBuilderOption) Loader {
	l := &loader{
		mu:           sync.RWMutex{},
		textureCache: make(map[string]resource.Texture),
		backend:      imageBackend{},
		workers:      4,
		flipY:        true,
	}
	for _, option := range options {
		option(l)
	}
	if l.workers < 1 {
		l.workers = 1
	}
	l.pool = worker.NewDynamicWorkerPool(l.workers, 256, 1*time.Second)
	return l
}

func (l *loader) cached(name string) resource.Texture {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.textureCache[name]
}

// store caches t under name unless another load got there first, in which case the earlier
// texture wins and t is released.
func (l *loader) store(name string, t resource.Texture) resource.Texture {
	l.mu.Lock()
	defer l.mu.Unlock()
	if existing, ok := l.textureCache[name]; ok {
		t.Release()
		return existing
	}
	l.textureCache[name] = t
	return t
}

func (l *loader) Load(path string, options ...resource.TextureBuilderOption) (resource.Texture, error) {
	if t := l.cached(path); t != nil {
		return t, nil
	}
	if err := checkExtension(path); err != nil {
		return nil, err
	}
	img, err := l.backend.Decode(path)
	if err != nil {
		return nil, fmt.Errorf("failed to load %s: %w", path, err)
	}
	t, err := l.texture2D(path, img, options)
	if err != nil {
		return nil, err
	}
	return l.store(path, t), nil
}

func (l *loader) LoadAll(paths []string, options ...resource.TextureBuilderOption) (map[string]resource.Texture, error) {
	type result struct {
		path string
		tex  resource.Texture
		err  error
	}
	results := make([]result, len(paths))

	// The pool reuses its workers across batches; the WaitGroup is the per-batch barrier.
	var wg sync.WaitGroup
	for i, path := range paths {
		wg.Add(1)
		l.pool.SubmitTask(worker.Task{
			ID: i,
			Do: func() (any, error) {
				defer wg.Done()
				t, err := l.Load(path, options...)
				results[i] = result{path: path, tex: t, err: err}
				return t, err
			},
		})
	}
	wg.Wait()

	loaded := make(map[string]resource.Texture, len(paths))
	var errs []error
	for _, r := range results {
		if r.err != nil {
			errs = append(errs, r.err)
			continue
		}
		loaded[r.path] = r.tex
	}
	return loaded, errors.Join(errs...)
}

func (l *loader) LoadReader(name string, r io.Reader, options ...resource.TextureBuilderOption) (resource.Texture, error) {
	if t := l.cached(name); t != nil {
		return t, nil
	}
	img, err := l.backend.DecodeReader(r)
	if err != nil {
		return nil, fmt.Errorf("failed to load from reader %q: %w", name, err)
	}
	t, err := l.texture2D(name, img, options)
	if err != nil {
		return nil, err
	}
	return l.store(name, t), nil
}

func (l *loader) LoadCube(name string, faces [6]string, options ...resource.TextureBuilderOption) (resource.Texture, error) {
	if t := l.cached(name); t != nil {
		return t, nil
	}

	var staged [6]common.TextureStagingData
	var errs [6]error
	var wg sync.WaitGroup
	for i, path := range faces {
		wg.Add(1)
		l.pool.SubmitTask(worker.Task{
			ID: i,
			Do: func() (any, error) {
				defer wg.Done()
				if err := checkExtension(path); err != nil {
					errs[i] = err
					return nil, err
				}
				img, err := l.backend.Decode(path)
				if err != nil {
					errs[i] = fmt.Errorf("failed to load cube face %d %s: %w", i, path, err)
					return nil, errs[i]
				}
				staged[i] = common.ToStagingData(l.limit(img))
				return nil, nil
			},
		})
	}
	wg.Wait()
	if err := errors.Join(errs[:]...); err != nil {
		return nil, err
	}

	size := staged[0].Width
	var pixels [6][]byte
	for i, s := range staged {
		if s.Width != size || s.Height != size {
			return nil, fmt.Errorf("cube texture %q: face %d is %dx%d, want %dx%d", name, i, s.Width, s.Height, size, size)
		}
		pixels[i] = s.Pixels
	}
	t, err := resource.NewTextureCube(name, resource.FormatRGBA8, size, pixels, options...)
	if err != nil {
		return nil, err
	}
	return l.store(name, t), nil
}

func (l *loader) Get(name string) resource.Texture {
	return l.cached(name)
}

func (l *loader) Textures() map[string]resource.Texture {
	l.mu.RLock()
	defer l.mu.RUnlock()

	result := make(map[string]resource.Texture, len(l.textureCache))
	for k, v := range l.textureCache {
		result[k] = v
	}
	return result
}

func (l *loader) Evict(name string) {
	l.mu.Lock()
	t, ok := l.textureCache[name]
	delete(l.textureCache, name)
	l.mu.Unlock()
	if ok {
		t.Release()
	}
}

// limit downsizes img to fit within maxSize on both axes.
func (l *loader) limit(img image.Image) image.Image {
	b := img.Bounds()
	if l.maxSize <= 0 || (b.Dx() <= l.maxSize && b.Dy() <= l.maxSize) {
		return img
	}
	return imaging.Fit(img, l.maxSize, l.maxSize, imaging.Lanczos)
}

// texture2D converts a decoded image into an RGBA8 texture, flipped and downsized as configured.
func (l *loader) texture2D(name string, img image.Image, options []resource.TextureBuilderOption) (resource.Texture, error) {
	img = l.limit(img)
	if l.flipY {
		img = imaging.FlipV(img)
	}
	staged := common.ToStagingData(img)
	return resource.NewTexture2D(name, resource.FormatRGBA8, staged.Width, staged.Height, staged.Pixels, options...)
}
