package cases

import "encoding/json"

// OverrideKind discriminates the authored shapes of real_test_results
// entries. Shape is resolved once here, at the parsing boundary, so the
// merge path dispatches on an explicit tag instead of re-inspecting raw
// JSON.
type OverrideKind int

const (
	// OverrideText is a plain descriptive string.
	OverrideText OverrideKind = iota
	// OverrideStructured is an object with a "results" sub-mapping of
	// full per-parameter records.
	OverrideStructured
	// OverrideFlat is a bare mapping of parameter id to raw value.
	OverrideFlat
	// OverrideOpaque is anything else; the merge path stringifies it.
	OverrideOpaque
)

// Override is the parsed form of one authored test result. Exactly the
// fields for its Kind are populated; Raw always holds the original
// payload for the stringify fallback.
type Override struct {
	Kind    OverrideKind
	Text    string
	Results map[string]json.RawMessage
	Values  map[string]any
	Raw     json.RawMessage
}

// ParseOverride classifies an authored payload. It never fails:
// unrecognizable input becomes OverrideOpaque, since hand-edited case
// content must not break test retrieval.
func ParseOverride(raw json.RawMessage) Override {
	ov := Override{Kind: OverrideOpaque, Raw: append(json.RawMessage(nil), raw...)}

	var text string
	if err := json.Unmarshal(raw, &text); err == nil {
		ov.Kind = OverrideText
		ov.Text = text
		return ov
	}

	var obj map[string]json.RawMessage
	if err := json.Unmarshal(raw, &obj); err != nil {
		return ov
	}

	if sub, ok := obj["results"]; ok {
		var results map[string]json.RawMessage
		if err := json.Unmarshal(sub, &results); err != nil {
			return ov
		}
		ov.Kind = OverrideStructured
		ov.Results = results
		return ov
	}

	// An object carrying only a descriptive string is authored shorthand
	// for a text override.
	if desc, ok := obj["description"]; ok && len(obj) == 1 {
		if err := json.Unmarshal(desc, &text); err == nil {
			ov.Kind = OverrideText
			ov.Text = text
			return ov
		}
	}

	values := make(map[string]any, len(obj))
	for k, v := range obj {
		var val any
		if err := json.Unmarshal(v, &val); err != nil {
			return ov
		}
		values[k] = val
	}
	ov.Kind = OverrideFlat
	ov.Values = values
	return ov
}
