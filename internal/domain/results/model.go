// Package results implements the test-result synthesis engine: the
// generator that produces physiologically plausible normal values from
// catalog definitions, the merger that layers case-authored "real"
// results on top, and the service facade consumed by the session layer.
package results

import (
	"bytes"
	"encoding/json"
	"sort"

	"github.com/gvaxx/ai-patient/internal/domain/catalog"
)

// StatusNormal marks a generated in-range value. Abnormal statuses only
// ever come from authored overrides.
const StatusNormal = "normal"

// DescriptionKey is the single results key under which descriptive
// outcomes are surfaced, so consumers branch on one key presence
// instead of on result shape.
const DescriptionKey = "description"

// ParameterResult is one measured value in a structured test result.
// Value holds a number for numeric parameters or a string for
// text/choice parameters.
type ParameterResult struct {
	Name      string `json:"name"`
	Value     any    `json:"value"`
	Unit      string `json:"unit,omitempty"`
	Reference string `json:"reference,omitempty"`
	Status    string `json:"status"`
}

// GeneratedResult is the engine-internal result shape shared by the
// generator and the merger. Exactly one of Results or Description is
// populated for a freshly generated result; a merged result may carry
// both when a descriptive annotation is layered onto a numeric test.
type GeneratedResult struct {
	TestID      string
	Name        string
	Category    catalog.Category
	Results     map[string]ParameterResult
	Order       []string
	Description string
	// Clamped lists parameters whose sum-cap ceiling fell below their own
	// floor, i.e. where the best-effort clamp policy accepted a slight
	// constraint violation instead of failing.
	Clamped []string
	// Degraded marks a merge that fell through to the last-resort
	// stringification branch.
	Degraded bool
}

// HasParameters reports whether the result carries structured values.
func (r *GeneratedResult) HasParameters() bool {
	return len(r.Results) > 0
}

// TestResult is the externally consumed, normalized shape. Results maps
// parameter ids to ParameterResult records; descriptive outcomes appear
// as a plain string under DescriptionKey. Clamped carries the sum-cap
// clamp flag through to consumers.
type TestResult struct {
	TestID   string           `json:"test_id"`
	Name     string           `json:"name"`
	Category catalog.Category `json:"category"`
	Results  map[string]any   `json:"results"`
	Clamped  []string         `json:"clamped,omitempty"`
	Degraded bool             `json:"degraded,omitempty"`

	order []string
}

// toTestResult normalizes the internal shape for external consumers.
func (r *GeneratedResult) toTestResult() *TestResult {
	out := &TestResult{
		TestID:   r.TestID,
		Name:     r.Name,
		Category: r.Category,
		Results:  make(map[string]any, len(r.Results)+1),
		Clamped:  r.Clamped,
		Degraded: r.Degraded,
		order:    r.Order,
	}
	for id, pr := range r.Results {
		out.Results[id] = pr
	}
	if r.Description != "" {
		out.Results[DescriptionKey] = r.Description
	}
	return out
}

// MarshalJSON writes the results object in catalog parameter order, so
// a rendered panel matches the template layout instead of map order.
func (r *TestResult) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, pid := range r.keyOrder() {
		if i > 0 {
			buf.WriteByte(',')
		}
		key, err := json.Marshal(pid)
		if err != nil {
			return nil, err
		}
		val, err := json.Marshal(r.Results[pid])
		if err != nil {
			return nil, err
		}
		buf.Write(key)
		buf.WriteByte(':')
		buf.Write(val)
	}
	buf.WriteByte('}')

	type alias TestResult
	return json.Marshal(struct {
		*alias
		Results json.RawMessage `json:"results"`
	}{(*alias)(r), buf.Bytes()})
}

// keyOrder lists the result keys in catalog order. Keys the order list
// does not cover, such as the description annotation, are appended in
// sorted order.
func (r *TestResult) keyOrder() []string {
	keys := make([]string, 0, len(r.Results))
	seen := make(map[string]bool, len(r.Results))
	for _, pid := range r.order {
		if _, ok := r.Results[pid]; ok && !seen[pid] {
			keys = append(keys, pid)
			seen[pid] = true
		}
	}
	rest := make([]string, 0, len(r.Results)-len(keys))
	for pid := range r.Results {
		if !seen[pid] {
			rest = append(rest, pid)
		}
	}
	sort.Strings(rest)
	return append(keys, rest...)
}
