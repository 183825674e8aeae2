// Package circlefit recovers the outline of a spherical mirror from a handful
// of boundary samples clicked by an operator.
//
// # Algorithm
//
// Fit solves the algebraic circle equation
//
//	D·x + E·y + F = -(x² + y²)
//
// in the least-squares sense over all samples, then recovers the center
// (h, k) = (-D/2, -E/2) and radius r = sqrt(h² + k² - F). With exactly three
// non-collinear points the solve is exact; with more it is overdetermined.
// The samples are shifted to their centroid before solving to keep the normal
// matrix well conditioned for large pixel coordinates.
//
// Refine snaps each sample onto the strongest intensity step found along the
// radial line through the current center. Ten samples are taken at integer
// step offsets -5..+4, where one step moves exactly one pixel along the
// dominant axis. The sample is replaced by the midpoint of the consecutive
// pair with the largest absolute difference. A flat profile leaves the sample
// where it was.
//
// # Limitations
//
// Refine is a 1-D edge snap, not 2-D edge detection. It finds the strongest
// step within a few pixels of each sample and will happily lock onto a nearby
// specular highlight if that is stronger than the rim. The sampler is queried
// at fractional positions and is expected to answer with the nearest pixel;
// there is no interpolation.
//
// The typical sequence is Fit, Refine, Fit again, which FitRefined wraps. The
// shift between the two centers is a quality signal: a large shift means the
// original clicks were poorly placed.
package circlefit
