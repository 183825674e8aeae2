// Package imaging is the pixel side of the mirror tools: loading and caching
// images, turning pixels into scalar intensities for edge refinement, and
// rendering annotation overlays.
//
// # Coordinate System
//
// All coordinates are image pixels with (0,0) at the top-left corner, X
// increasing rightward and Y increasing downward. Geometry arrives as
// float64 points from package geometry; pixel lookups round to the nearest
// pixel.
//
// # Intensity
//
// A Sampler precomputes one intensity per pixel at construction:
//   - "luma": Rec. 601 luma via disintegration/imaging's Grayscale, 0-255.
//   - "lightness": CIE L* via go-colorful, scaled to 0-255.
//
// An optional Gaussian pre-smoothing (anthonynsimon/bild) suppresses sensor
// noise before edges are compared. Lookups outside the image clamp to the
// nearest edge pixel.
//
// # Overlays
//
// Overlay implements analysis.Canvas on a copy of the source image. Lines are
// clipped to the image rectangle, labels use the basicfont 7x13 face, and the
// result can be cropped and zoomed before PNG encoding.
//
// # Thread Safety
//
// ImageCache is safe for concurrent use. Sampler is read-only after
// construction and may be shared. Overlay is not safe for concurrent use.
package imaging
