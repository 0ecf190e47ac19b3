package catalog

import (
	"encoding/json"
	"fmt"
)

// Category classifies a test by how it is performed.
type Category string

const (
	CategoryLaboratory  Category = "laboratory"
	CategoryExamination Category = "examination"
	CategoryImaging     Category = "imaging"
)

var validCategories = map[Category]bool{
	CategoryLaboratory:  true,
	CategoryExamination: true,
	CategoryImaging:     true,
}

// RangeKind discriminates the three shapes a normal_range can take in
// catalog source data.
type RangeKind int

const (
	// RangeNumeric is a [min, max] pair.
	RangeNumeric RangeKind = iota
	// RangeText is a single canonical string such as "negative".
	RangeText
	// RangeChoice is a set of acceptable strings, any of which is normal.
	RangeChoice
)

// NormalRange is the polymorphic reference range of a parameter. The
// source format allows a numeric pair, a single string, or a list of
// candidate strings; the shape is preserved rather than coerced.
type NormalRange struct {
	Kind    RangeKind
	Min     float64
	Max     float64
	Text    string
	Choices []string
}

// UnmarshalJSON accepts [min, max], "text", or ["a", "b", ...].
func (r *NormalRange) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err == nil {
		*r = NormalRange{Kind: RangeText, Text: s}
		return nil
	}

	var pair []float64
	if err := json.Unmarshal(data, &pair); err == nil {
		if len(pair) != 2 {
			return fmt.Errorf("normal_range: numeric range must have exactly 2 bounds, got %d", len(pair))
		}
		if pair[0] > pair[1] {
			return fmt.Errorf("normal_range: min %v exceeds max %v", pair[0], pair[1])
		}
		*r = NormalRange{Kind: RangeNumeric, Min: pair[0], Max: pair[1]}
		return nil
	}

	var choices []string
	if err := json.Unmarshal(data, &choices); err == nil {
		if len(choices) == 0 {
			return fmt.Errorf("normal_range: candidate list is empty")
		}
		*r = NormalRange{Kind: RangeChoice, Choices: choices}
		return nil
	}

	return fmt.Errorf("normal_range: unsupported shape %s", string(data))
}

// MarshalJSON writes the range back in its source shape.
func (r NormalRange) MarshalJSON() ([]byte, error) {
	switch r.Kind {
	case RangeText:
		return json.Marshal(r.Text)
	case RangeChoice:
		return json.Marshal(r.Choices)
	default:
		return json.Marshal([2]float64{r.Min, r.Max})
	}
}

// Parameter describes one measured value of a numeric test.
type Parameter struct {
	Name        string      `json:"name"`
	NormalRange NormalRange `json:"normal_range"`
	Unit        string      `json:"unit,omitempty"`
	Ideal       float64     `json:"ideal,omitempty"`
}

// SumCap constrains a pair of percentage-type parameters so their
// generated values do not exceed Limit when added.
type SumCap struct {
	Parameters [2]string `json:"parameters"`
	Limit      float64   `json:"limit"`
}

// TestDefinition is a single catalog entry. A test is either numeric
// (Parameters set, ParameterOrder giving their definition order) or
// descriptive (Description set). Definitions are immutable after load.
type TestDefinition struct {
	ID             string               `json:"-"`
	Name           string               `json:"name"`
	Category       Category             `json:"category"`
	Parameters     map[string]Parameter `json:"parameters,omitempty"`
	ParameterOrder []string             `json:"-"`
	Description    string               `json:"description,omitempty"`
	SumCap         *SumCap              `json:"sum_cap,omitempty"`
}

// HasParameters reports whether the test produces structured numeric
// results rather than a free-text description.
func (d *TestDefinition) HasParameters() bool {
	return len(d.Parameters) > 0
}

// TestSummary is the listing shape of a catalog entry.
type TestSummary struct {
	TestID   string   `json:"test_id"`
	Name     string   `json:"name"`
	Category Category `json:"category"`
}
