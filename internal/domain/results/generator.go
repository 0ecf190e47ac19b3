package results

import (
	"fmt"
	"math"
	"math/rand"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/gvaxx/ai-patient/internal/domain/catalog"
)

// referenceThreshold governs display rounding: ranges whose larger
// bound does not exceed it are shown with one decimal, everything else
// as integers.
const referenceThreshold = 50

// Generator produces normal result instances from catalog definitions.
// It is safe for concurrent use.
type Generator struct {
	catalog *catalog.Catalog
	logger  zerolog.Logger

	mu  sync.Mutex
	rng *rand.Rand
}

// NewGenerator returns a generator backed by the given catalog. A zero
// seed picks a time-based one; tests inject a fixed seed for
// reproducible sampling.
func NewGenerator(cat *catalog.Catalog, seed int64, logger zerolog.Logger) *Generator {
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	return &Generator{
		catalog: cat,
		logger:  logger,
		rng:     rand.New(rand.NewSource(seed)),
	}
}

// GenerateNormal produces a fresh normal result for the given test.
// Descriptive tests return their template text verbatim; numeric tests
// get per-parameter values sampled from a window centered in the normal
// range. The only error condition is an unknown test id.
func (g *Generator) GenerateNormal(testID string) (*GeneratedResult, error) {
	def, err := g.catalog.Get(testID)
	if err != nil {
		return nil, err
	}

	out := &GeneratedResult{
		TestID:   def.ID,
		Name:     def.Name,
		Category: def.Category,
	}

	if !def.HasParameters() {
		out.Description = def.Description
		return out, nil
	}

	out.Results = make(map[string]ParameterResult, len(def.Parameters))
	out.Order = append(out.Order, def.ParameterOrder...)

	capped := map[string]bool{}
	if def.SumCap != nil {
		for _, pid := range def.SumCap.Parameters {
			capped[pid] = true
		}
	}

	for _, pid := range def.ParameterOrder {
		if capped[pid] {
			continue
		}
		out.Results[pid] = g.generateParameter(def.Parameters[pid])
	}

	if def.SumCap != nil {
		g.generateCappedPair(def, out)
	}
	return out, nil
}

// generateCappedPair fills in the two sum-capped parameters: the first
// is sampled normally, the second with its ceiling lowered so the pair
// stays within the cap. When the lowered ceiling would drop below the
// second parameter's own floor, the floor wins and the violation is
// flagged rather than failed.
func (g *Generator) generateCappedPair(def *catalog.TestDefinition, out *GeneratedResult) {
	firstID, secondID := def.SumCap.Parameters[0], def.SumCap.Parameters[1]
	first := def.Parameters[firstID]
	second := def.Parameters[secondID]

	if first.NormalRange.Kind != catalog.RangeNumeric || second.NormalRange.Kind != catalog.RangeNumeric {
		out.Results[firstID] = g.generateParameter(first)
		out.Results[secondID] = g.generateParameter(second)
		return
	}

	firstValue := g.valueInRange(first.NormalRange.Min, first.NormalRange.Max)
	out.Results[firstID] = ParameterResult{
		Name:      first.Name,
		Value:     firstValue,
		Unit:      first.Unit,
		Reference: formatReference(first.NormalRange.Min, first.NormalRange.Max),
		Status:    StatusNormal,
	}

	ceiling := math.Min(second.NormalRange.Max, math.Max(0, def.SumCap.Limit-firstValue))
	if ceiling < second.NormalRange.Min {
		ceiling = second.NormalRange.Min
		out.Clamped = append(out.Clamped, secondID)
		g.logger.Warn().
			Str("test_id", def.ID).
			Str("parameter", secondID).
			Float64("first_value", firstValue).
			Float64("limit", def.SumCap.Limit).
			Msg("sum cap ceiling below parameter floor, clamped to floor")
	}

	out.Results[secondID] = ParameterResult{
		Name:      second.Name,
		Value:     g.valueInRange(second.NormalRange.Min, ceiling),
		Unit:      second.Unit,
		Reference: formatReference(second.NormalRange.Min, second.NormalRange.Max),
		Status:    StatusNormal,
	}
}

func (g *Generator) generateParameter(p catalog.Parameter) ParameterResult {
	pr := ParameterResult{
		Name:   p.Name,
		Unit:   p.Unit,
		Status: StatusNormal,
	}
	switch p.NormalRange.Kind {
	case catalog.RangeNumeric:
		pr.Value = g.valueInRange(p.NormalRange.Min, p.NormalRange.Max)
		pr.Reference = formatReference(p.NormalRange.Min, p.NormalRange.Max)
	case catalog.RangeText:
		pr.Value = p.NormalRange.Text
		pr.Reference = p.NormalRange.Text
	case catalog.RangeChoice:
		pr.Value = p.NormalRange.Choices[g.intn(len(p.NormalRange.Choices))]
		pr.Reference = strings.Join(p.NormalRange.Choices, ", ")
	}
	return pr
}

// valueInRange samples uniformly from a window centered at the range
// midpoint, 30% of the full width, clamped to [min, max]. Normal labs
// cluster near the center, not the edges. Rounding follows the display
// threshold: one decimal for small ranges, integers for large ones.
func (g *Generator) valueInRange(min, max float64) float64 {
	center := (min + max) / 2
	variation := 0.15 * (max - min)
	low := math.Max(min, center-variation)
	high := math.Min(max, center+variation)

	value := low + g.float64()*(high-low)
	if max > referenceThreshold {
		return math.Round(value)
	}
	return math.Round(value*10) / 10
}

func (g *Generator) float64() float64 {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.rng.Float64()
}

func (g *Generator) intn(n int) int {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.rng.Intn(n)
}

// formatReference renders a numeric range for display: "3.9-6.1" for
// small ranges, "130-160" for large ones. The threshold applies to the
// range as a whole, not per bound.
func formatReference(min, max float64) string {
	if math.Max(math.Abs(min), math.Abs(max)) > referenceThreshold {
		return fmt.Sprintf("%.0f-%.0f", min, max)
	}
	return fmt.Sprintf("%.1f-%.1f", min, max)
}
