package imaging

import (
	"bytes"
	"encoding/base64"
	"fmt"
	"image"
	"image/color"
	"image/draw"
	"image/png"
	"math"

	"github.com/disintegration/imaging"
	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/math/fixed"

	"github.com/ironsheep/mirror-tools-mcp/internal/apperrors"
	"github.com/ironsheep/mirror-tools-mcp/internal/geometry"
)

// MaxZoom bounds the overlay magnification.
const MaxZoom = 8.0

// labelBackground sits behind overlay labels so they stay readable on bright
// mirror highlights.
var labelBackground = color.RGBA{0, 0, 0, 180}

// Overlay draws annotations on a copy of an image. It implements
// analysis.Canvas.
type Overlay struct {
	canvas *image.RGBA
	bounds geometry.Rect
}

// NewOverlay copies img into a drawable RGBA canvas.
func NewOverlay(img image.Image) *Overlay {
	b := img.Bounds()
	canvas := image.NewRGBA(b)
	draw.Draw(canvas, b, img, b.Min, draw.Src)
	return &Overlay{
		canvas: canvas,
		bounds: geometry.RectFromImage(b),
	}
}

// Image returns the canvas.
func (o *Overlay) Image() *image.RGBA {
	return o.canvas
}

// DrawSegment draws the line through s across the whole image, as far as it
// is visible. Degenerate segments draw a single point.
func (o *Overlay) DrawSegment(s geometry.Segment, c color.Color) {
	if s.IsDegenerate() {
		o.DrawPoint(s.P1, 1, c)
		return
	}
	// Clip against the pixel-center rectangle so both ends land on pixels.
	r := geometry.Rect{Min: o.bounds.Min, Max: o.bounds.Max.Sub(geometry.Pt(1, 1))}
	ends := geometry.IntersectLineWithRect(s, r)
	switch len(ends) {
	case 2:
		o.line(ends[0], ends[1], c)
	case 1:
		o.set(ends[0], c)
	}
}

// line rasterizes a->b with a DDA walk of one pixel per step along the
// dominant axis.
func (o *Overlay) line(a, b geometry.Point, c color.Color) {
	d := b.Sub(a)
	steps := int(math.Ceil(math.Max(math.Abs(d.X), math.Abs(d.Y))))
	if steps == 0 {
		o.set(a, c)
		return
	}
	inc := d.Scale(1 / float64(steps))
	p := a
	for i := 0; i <= steps; i++ {
		o.set(p, c)
		p = p.Add(inc)
	}
}

// DrawPoint draws a filled disc of the given radius around p.
func (o *Overlay) DrawPoint(p geometry.Point, radius float64, c color.Color) {
	if !p.IsFinite() {
		return
	}
	if radius < 0.5 {
		o.set(p, c)
		return
	}
	cx, cy := math.Round(p.X), math.Round(p.Y)
	r := math.Ceil(radius)
	for dy := -r; dy <= r; dy++ {
		for dx := -r; dx <= r; dx++ {
			if dx*dx+dy*dy <= radius*radius {
				o.set(geometry.Pt(cx+dx, cy+dy), c)
			}
		}
	}
}

// DrawCircle draws the outline of circle with roughly one sample per pixel of
// circumference.
func (o *Overlay) DrawCircle(circle geometry.Circle, c color.Color) {
	if !circle.IsFitted() {
		return
	}
	n := int(math.Ceil(2 * math.Pi * circle.Radius * 1.5))
	if n < 16 {
		n = 16
	}
	for _, p := range geometry.CirclePoints(circle, n) {
		o.set(p, c)
	}
}

// DrawLabel writes text with its top-left corner at p on a translucent
// backing box.
func (o *Overlay) DrawLabel(p geometry.Point, text string, c color.Color) {
	if !p.IsFinite() || text == "" {
		return
	}
	face := basicfont.Face7x13
	x, y := int(math.Round(p.X)), int(math.Round(p.Y))

	d := &font.Drawer{
		Dst:  o.canvas,
		Src:  image.NewUniform(c),
		Face: face,
	}
	width := d.MeasureString(text).Ceil()
	box := image.Rect(x-1, y-1, x+width+1, y+face.Height+1)
	draw.Draw(o.canvas, box.Intersect(o.canvas.Bounds()), image.NewUniform(labelBackground), image.Point{}, draw.Over)

	d.Dot = fixed.Point26_6{X: fixed.I(x), Y: fixed.I(y + face.Ascent)}
	d.DrawString(text)
}

func (o *Overlay) set(p geometry.Point, c color.Color) {
	if !p.IsFinite() {
		return
	}
	x, y := int(math.Round(p.X)), int(math.Round(p.Y))
	if (image.Point{X: x, Y: y}).In(o.canvas.Bounds()) {
		o.canvas.Set(x, y, c)
	}
}

// RenderOptions selects the part of the overlay to encode.
type RenderOptions struct {
	// Clip restricts output to a region; nil renders the whole image.
	Clip *image.Rectangle

	// Zoom scales the output; values <= 0 mean 1.
	Zoom float64
}

// RenderResult is an encoded overlay.
type RenderResult struct {
	Width       int     `json:"width"`
	Height      int     `json:"height"`
	OriginX     int     `json:"origin_x"`
	OriginY     int     `json:"origin_y"`
	Zoom        float64 `json:"zoom"`
	ImageBase64 string  `json:"image_base64"`
	MimeType    string  `json:"mime_type"`
}

// Render crops and zooms the canvas and encodes it as base64 PNG. Zooming
// uses nearest-neighbor sampling so annotation pixels stay crisp; OriginX
// and OriginY give the image coordinates of the output's top-left pixel.
func (o *Overlay) Render(opts RenderOptions) (*RenderResult, error) {
	zoom := opts.Zoom
	if zoom <= 0 {
		zoom = 1
	}
	if zoom > MaxZoom || math.IsNaN(zoom) {
		return nil, apperrors.NewValidationError(fmt.Sprintf("zoom %v out of range (0, %v]", opts.Zoom, MaxZoom), nil)
	}

	bounds := o.canvas.Bounds()
	region := bounds
	if opts.Clip != nil {
		region = opts.Clip.Canon().Intersect(bounds)
		if region.Empty() {
			return nil, apperrors.NewValidationError(
				fmt.Sprintf("clip region %v lies outside image bounds %v", *opts.Clip, bounds), nil)
		}
	}

	var out image.Image = o.canvas
	if region != bounds {
		out = imaging.Crop(o.canvas, region)
	}
	if zoom != 1 {
		w := int(math.Round(float64(region.Dx()) * zoom))
		h := int(math.Round(float64(region.Dy()) * zoom))
		if w < 1 || h < 1 {
			return nil, apperrors.NewValidationError(fmt.Sprintf("zoom %v leaves no pixels", zoom), nil)
		}
		out = imaging.Resize(out, w, h, imaging.NearestNeighbor)
	}

	var buf bytes.Buffer
	if err := png.Encode(&buf, out); err != nil {
		return nil, fmt.Errorf("failed to encode overlay: %w", err)
	}

	return &RenderResult{
		Width:       out.Bounds().Dx(),
		Height:      out.Bounds().Dy(),
		OriginX:     region.Min.X,
		OriginY:     region.Min.Y,
		Zoom:        zoom,
		ImageBase64: base64.StdEncoding.EncodeToString(buf.Bytes()),
		MimeType:    "image/png",
	}, nil
}
