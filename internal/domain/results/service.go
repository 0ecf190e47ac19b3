package results

import (
	"github.com/rs/zerolog"

	"github.com/gvaxx/ai-patient/internal/domain/cases"
	"github.com/gvaxx/ai-patient/internal/domain/catalog"
)

// Service is the facade consumed by sessions and handlers. It dispatches
// between plain generation and override merging and normalizes both
// outcomes into the single TestResult shape.
type Service struct {
	catalog *catalog.Catalog
	gen     *Generator
	merger  *Merger
}

// NewService wires a service over the catalog. seed feeds the result
// generator (zero means time-based).
func NewService(cat *catalog.Catalog, seed int64, logger zerolog.Logger) *Service {
	gen := NewGenerator(cat, seed, logger)
	return &Service{
		catalog: cat,
		gen:     gen,
		merger:  NewMerger(gen, logger),
	}
}

// GetTestResult returns the result the given case produces for the
// test: the merged authored result when the case supplies one, a fresh
// normal result otherwise. cc may be nil for a case-free preview.
// Returns catalog.ErrUnknownTest for an id the catalog does not define.
func (s *Service) GetTestResult(testID string, cc *cases.ClinicalCase) (*TestResult, error) {
	var (
		gr  *GeneratedResult
		err error
	)
	if cc != nil && cc.HasRealResults(testID) {
		gr, err = s.merger.Merge(testID, cc.RealResults(testID))
	} else {
		gr, err = s.gen.GenerateNormal(testID)
	}
	if err != nil {
		return nil, err
	}
	return gr.toTestResult(), nil
}

// ListTests returns the ordered catalog listing.
func (s *Service) ListTests() []catalog.TestSummary {
	return s.catalog.List()
}
