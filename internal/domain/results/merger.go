package results

import (
	"encoding/json"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/gvaxx/ai-patient/internal/domain/cases"
)

// Merger layers case-authored overrides on top of freshly generated
// normal results. Authored content is hand-edited, so the merge is
// fail-soft: for a known test id it always yields a displayable result,
// degrading to a stringified description when the override shape is
// unusable.
type Merger struct {
	gen    *Generator
	logger zerolog.Logger
}

// NewMerger creates a merger over the given generator.
func NewMerger(gen *Generator, logger zerolog.Logger) *Merger {
	return &Merger{gen: gen, logger: logger}
}

// Merge generates a normal baseline for the test and applies the
// override on top. Overrides never need to supply the full value set;
// untouched parameters keep their generated values, so the result
// always carries every parameter the template defines.
func (m *Merger) Merge(testID string, ov *cases.Override) (*GeneratedResult, error) {
	base, err := m.gen.GenerateNormal(testID)
	if err != nil {
		return nil, err
	}
	if ov == nil {
		return base, nil
	}

	switch ov.Kind {
	case cases.OverrideText:
		// A text override onto a numeric template keeps the generated
		// values and adds the text as a descriptive annotation.
		base.Description = ov.Text

	case cases.OverrideStructured:
		m.applyStructured(base, ov)

	case cases.OverrideFlat:
		m.applyFlat(base, ov)

	default:
		m.degrade(base, ov.Raw, "unrecognized override shape")
	}
	return base, nil
}

// applyStructured replaces whole parameter sub-records. The template is
// authoritative for shape on numeric tests: override keys it does not
// define are dropped. A descriptive base has no template parameters, so
// there the authored records are accepted as given.
func (m *Merger) applyStructured(base *GeneratedResult, ov *cases.Override) {
	templated := base.HasParameters()
	if base.Results == nil {
		base.Results = make(map[string]ParameterResult, len(ov.Results))
	}
	for pid, raw := range ov.Results {
		if templated {
			if _, known := base.Results[pid]; !known {
				m.logger.Debug().
					Str("test_id", base.TestID).
					Str("parameter", pid).
					Msg("override parameter not in template, ignored")
				continue
			}
		}
		var pr ParameterResult
		if err := json.Unmarshal(raw, &pr); err != nil {
			m.degrade(base, ov.Raw, fmt.Sprintf("parameter %q: %v", pid, err))
			return
		}
		if !templated {
			base.Order = append(base.Order, pid)
		}
		base.Results[pid] = pr
	}
}

// applyFlat patches parameter values only, keeping the generated name,
// unit and reference. On a base without parameters the whole mapping
// becomes the description, string-formed.
func (m *Merger) applyFlat(base *GeneratedResult, ov *cases.Override) {
	if !base.HasParameters() {
		base.Description = stringify(ov.Raw)
		return
	}
	for pid, value := range ov.Values {
		pr, known := base.Results[pid]
		if !known {
			continue
		}
		pr.Value = value
		pr.Status = StatusNormal
		base.Results[pid] = pr
	}
}

// degrade is the last-resort branch: whatever was authored becomes the
// description so retrieval still returns something displayable.
func (m *Merger) degrade(base *GeneratedResult, raw json.RawMessage, reason string) {
	m.logger.Warn().
		Str("test_id", base.TestID).
		Str("reason", reason).
		Msg("override unusable, storing stringified payload as description")
	base.Description = stringify(raw)
	base.Degraded = true
}

func stringify(raw json.RawMessage) string {
	var buf any
	if err := json.Unmarshal(raw, &buf); err != nil {
		return string(raw)
	}
	compact, err := json.Marshal(buf)
	if err != nil {
		return string(raw)
	}
	return string(compact)
}
