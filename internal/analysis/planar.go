package analysis

import (
	"fmt"

	"github.com/sirupsen/logrus"

	"github.com/ironsheep/mirror-tools-mcp/internal/logger"
)

// Planar tests the hypothesis that each reflective object is flat. Lines
// reflected by a plane meet near a common point, so tight per-object
// intersection clusters support it.
type Planar struct {
	model
}

// NewPlanar returns a Planar analysis with one empty open collection.
func NewPlanar(opts Options) *Planar {
	if opts.Logger == nil {
		opts.Logger = logger.Logger
	}
	return &Planar{model: newModel(opts.Logger)}
}

func (p *Planar) Kind() Kind { return KindPlanar }

// FindClusters ranks candidate object counts over the intersection sets of
// every collection. See EstimateClusters.
func (p *Planar) FindClusters() ([]Candidate, error) {
	candidates, err := EstimateClusters(p.intersectionSets())
	if err != nil {
		return nil, fmt.Errorf("find clusters: %w", err)
	}
	return candidates, nil
}

func (p *Planar) Analyze() (*Report, error) {
	candidates, err := p.FindClusters()
	if err != nil {
		return nil, err
	}

	p.log.WithFields(logrus.Fields{
		"collections": len(p.collections),
		"best":        candidates[0].NumClusters,
		"best_score":  candidates[0].Score,
	}).Info("planar analysis complete")

	return &Report{
		Kind:        KindPlanar,
		Collections: len(p.collections),
		Candidates:  candidates,
	}, nil
}

func (p *Planar) Draw(c Canvas) {
	p.drawLines(c)
}
