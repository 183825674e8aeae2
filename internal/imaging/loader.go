package imaging

import (
	"errors"
	"fmt"
	"image"
	_ "image/gif"  // Register GIF format decoder
	_ "image/jpeg" // Register JPEG format decoder
	_ "image/png"  // Register PNG format decoder
	"io/fs"
	"os"
	"sync"

	"github.com/ironsheep/mirror-tools-mcp/internal/apperrors"
)

// ImageCache provides thread-safe caching of decoded images keyed by path.
//
// Cached images remain in memory until Evict or Clear. The server holds at
// most a handful of mirror photographs, so no size bound is enforced.
type ImageCache struct {
	mu     sync.RWMutex
	images map[string]*LoadedImage
}

// LoadedImage is a decoded image and its format name as reported by
// image.Decode ("png", "jpeg", "gif").
type LoadedImage struct {
	Path   string
	Format string
	Image  image.Image
}

// NewImageCache creates an empty image cache.
func NewImageCache() *ImageCache {
	return &ImageCache{
		images: make(map[string]*LoadedImage),
	}
}

// Load returns the cached image for path, decoding it from disk on first use.
//
// Missing files are not-found errors; undecodable files are validation
// errors.
func (c *ImageCache) Load(path string) (*LoadedImage, error) {
	c.mu.RLock()
	if img, ok := c.images[path]; ok {
		c.mu.RUnlock()
		return img, nil
	}
	c.mu.RUnlock()

	f, err := os.Open(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, apperrors.NewNotFoundError(fmt.Sprintf("image %q does not exist", path), err)
		}
		return nil, fmt.Errorf("failed to open image: %w", err)
	}
	defer f.Close()

	img, format, err := image.Decode(f)
	if err != nil {
		return nil, apperrors.NewValidationError(fmt.Sprintf("failed to decode image %q", path), err)
	}
	if img.Bounds().Empty() {
		return nil, apperrors.NewValidationError(fmt.Sprintf("image %q has no pixels", path), nil)
	}

	loaded := &LoadedImage{Path: path, Format: format, Image: img}

	c.mu.Lock()
	c.images[path] = loaded
	c.mu.Unlock()

	return loaded, nil
}

// Len returns the number of cached images.
func (c *ImageCache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.images)
}

// Clear removes all images from the cache.
func (c *ImageCache) Clear() {
	c.mu.Lock()
	c.images = make(map[string]*LoadedImage)
	c.mu.Unlock()
}

// Evict removes path from the cache. The next Load reads from disk, which is
// how a re-exported photograph is picked up.
func (c *ImageCache) Evict(path string) {
	c.mu.Lock()
	delete(c.images, path)
	c.mu.Unlock()
}

// ImageInfo describes a loaded image.
type ImageInfo struct {
	Path   string `json:"path"`
	Width  int    `json:"width"`
	Height int    `json:"height"`
	Format string `json:"format"`
}

// Info returns the dimensions and format of the image.
func (l *LoadedImage) Info() ImageInfo {
	b := l.Image.Bounds()
	return ImageInfo{
		Path:   l.Path,
		Width:  b.Dx(),
		Height: b.Dy(),
		Format: l.Format,
	}
}
