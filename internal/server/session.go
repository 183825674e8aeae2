package server

import (
	"github.com/ironsheep/mirror-tools-mcp/internal/analysis"
	"github.com/ironsheep/mirror-tools-mcp/internal/apperrors"
	"github.com/ironsheep/mirror-tools-mcp/internal/imaging"
)

// session is the single annotation session a server holds: the active
// image, its sampler, the analysis under way and its last report.
type session struct {
	opts     analysis.Options
	image    *imaging.LoadedImage
	sampler  *imaging.Sampler
	analysis analysis.Analysis
	report   *analysis.Report
}

// newSession starts with an empty planar analysis and no image.
func newSession(opts analysis.Options) *session {
	return &session{opts: opts, analysis: analysis.NewPlanar(opts)}
}

// start replaces the analysis with an empty one of the given kind.
func (s *session) start(kind analysis.Kind) error {
	a, err := analysis.New(kind, s.opts)
	if err != nil {
		return err
	}
	s.analysis = a
	s.report = nil
	return nil
}

func (s *session) requireImage() (*imaging.LoadedImage, error) {
	if s.image == nil {
		return nil, apperrors.NewNotFoundError("no image loaded: call mirror_load_image first", nil)
	}
	return s.image, nil
}

func (s *session) spherical() (*analysis.Spherical, error) {
	sph, ok := s.analysis.(*analysis.Spherical)
	if !ok {
		return nil, apperrors.NewValidationError(
			"circle fitting needs spherical mode: call mirror_reset with mode \"spherical\"", nil)
	}
	return sph, nil
}

// invalidate drops the cached report after any change to the annotations.
func (s *session) invalidate() {
	s.report = nil
}
