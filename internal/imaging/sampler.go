package imaging

import (
	"fmt"
	"image"
	"math"
	"strings"

	"github.com/anthonynsimon/bild/blur"
	"github.com/disintegration/imaging"
	"github.com/lucasb-eyer/go-colorful"

	"github.com/ironsheep/mirror-tools-mcp/internal/apperrors"
	"github.com/ironsheep/mirror-tools-mcp/internal/geometry"
)

// IntensityMode selects how a pixel becomes a scalar intensity.
type IntensityMode string

const (
	// IntensityLuma is Rec. 601 luma, 0-255.
	IntensityLuma IntensityMode = "luma"
	// IntensityLightness is CIE L* scaled to 0-255. It tracks perceived
	// brightness more closely on saturated mirror frames.
	IntensityLightness IntensityMode = "lightness"
)

// ParseIntensityMode maps a case-insensitive name to an IntensityMode. The
// empty string selects luma.
func ParseIntensityMode(s string) (IntensityMode, error) {
	switch IntensityMode(strings.ToLower(strings.TrimSpace(s))) {
	case "", IntensityLuma:
		return IntensityLuma, nil
	case IntensityLightness:
		return IntensityLightness, nil
	}
	return "", apperrors.NewValidationError(
		fmt.Sprintf("unknown intensity mode %q: want luma or lightness", s), nil)
}

// Sampler returns the intensity of the pixel nearest a point. It implements
// circlefit.Sampler.
type Sampler struct {
	bounds image.Rectangle
	width  int
	values []float64
	mode   IntensityMode
	sigma  float64
}

// NewSampler precomputes intensities for img. A positive blurSigma applies a
// Gaussian blur of that radius first.
func NewSampler(img image.Image, mode IntensityMode, blurSigma float64) (*Sampler, error) {
	if img == nil || img.Bounds().Empty() {
		return nil, apperrors.NewValidationError("sampler needs a non-empty image", nil)
	}
	if blurSigma < 0 || math.IsNaN(blurSigma) {
		return nil, apperrors.NewValidationError(fmt.Sprintf("invalid blur sigma %v", blurSigma), nil)
	}

	src := img
	if blurSigma > 0 {
		src = blur.Gaussian(img, blurSigma)
	}

	var values []float64
	switch mode {
	case IntensityLuma, "":
		mode = IntensityLuma
		values = lumaValues(src)
	case IntensityLightness:
		values = lightnessValues(src)
	default:
		return nil, apperrors.NewValidationError(fmt.Sprintf("unknown intensity mode %q", mode), nil)
	}

	return &Sampler{
		bounds: img.Bounds(),
		width:  img.Bounds().Dx(),
		values: values,
		mode:   mode,
		sigma:  blurSigma,
	}, nil
}

// lumaValues returns row-major luma. imaging.Grayscale rebases the result to
// a zero origin.
func lumaValues(img image.Image) []float64 {
	gray := imaging.Grayscale(img)
	w, h := gray.Bounds().Dx(), gray.Bounds().Dy()
	values := make([]float64, w*h)
	for y := 0; y < h; y++ {
		row := gray.Pix[y*gray.Stride:]
		for x := 0; x < w; x++ {
			values[y*w+x] = float64(row[x*4])
		}
	}
	return values
}

// lightnessValues returns row-major CIE L* scaled to 0-255. Fully
// transparent pixels count as black.
func lightnessValues(img image.Image) []float64 {
	b := img.Bounds()
	w := b.Dx()
	values := make([]float64, w*b.Dy())
	for y := b.Min.Y; y < b.Max.Y; y++ {
		for x := b.Min.X; x < b.Max.X; x++ {
			c, ok := colorful.MakeColor(img.At(x, y))
			if !ok {
				continue
			}
			l, _, _ := c.Lab()
			values[(y-b.Min.Y)*w+(x-b.Min.X)] = l * 255
		}
	}
	return values
}

// Sample returns the intensity of the pixel nearest p. Points outside the
// image clamp to the closest edge pixel; non-finite points read the origin
// pixel.
func (s *Sampler) Sample(p geometry.Point) float64 {
	x, y := s.pixel(p)
	return s.values[(y-s.bounds.Min.Y)*s.width+(x-s.bounds.Min.X)]
}

// pixel maps p to the clamped nearest pixel coordinates.
func (s *Sampler) pixel(p geometry.Point) (int, int) {
	if !p.IsFinite() {
		return s.bounds.Min.X, s.bounds.Min.Y
	}
	return clamp(int(math.Round(p.X)), s.bounds.Min.X, s.bounds.Max.X-1),
		clamp(int(math.Round(p.Y)), s.bounds.Min.Y, s.bounds.Max.Y-1)
}

func clamp(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

// Bounds returns the image rectangle the sampler covers.
func (s *Sampler) Bounds() geometry.Rect {
	return geometry.RectFromImage(s.bounds)
}

// Mode returns the intensity mode.
func (s *Sampler) Mode() IntensityMode { return s.mode }

// BlurSigma returns the pre-smoothing radius, 0 when disabled.
func (s *Sampler) BlurSigma() float64 { return s.sigma }

// IntensitySample is what the refiner sees at one requested point.
type IntensitySample struct {
	Requested geometry.Point `json:"requested"`
	PixelX    int            `json:"pixel_x"`
	PixelY    int            `json:"pixel_y"`
	Clamped   bool           `json:"clamped"`
	Intensity float64        `json:"intensity"`
	Mode      IntensityMode  `json:"mode"`
}

// Describe returns the sample at p together with the pixel it was read from.
func (s *Sampler) Describe(p geometry.Point) IntensitySample {
	x, y := s.pixel(p)
	return IntensitySample{
		Requested: p,
		PixelX:    x,
		PixelY:    y,
		Clamped:   !p.IsFinite() || float64(x) != math.Round(p.X) || float64(y) != math.Round(p.Y),
		Intensity: s.Sample(p),
		Mode:      s.mode,
	}
}
