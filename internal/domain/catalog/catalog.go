// Package catalog holds the static registry of diagnostic test
// definitions used by the virtual clinic. Definitions are loaded once,
// either from an external JSON catalog or from the embedded defaults,
// and are read-only afterwards, which makes the catalog safe for
// concurrent use without locking.
package catalog

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/rs/zerolog"
)

// ErrUnknownTest is returned when a requested test id is not present in
// the catalog.
var ErrUnknownTest = errors.New("unknown test")

// Catalog is an immutable, ordered registry of test definitions.
type Catalog struct {
	defs  map[string]*TestDefinition
	order []string
}

// New builds a catalog from the given definitions, preserving their
// order for listing.
func New(defs []*TestDefinition) *Catalog {
	c := &Catalog{defs: make(map[string]*TestDefinition, len(defs))}
	for _, d := range defs {
		if _, dup := c.defs[d.ID]; dup {
			continue
		}
		c.defs[d.ID] = d
		c.order = append(c.order, d.ID)
	}
	return c
}

// Default returns a catalog containing only the embedded built-in
// definitions. It never fails and needs no external resources.
func Default() *Catalog {
	return New(builtinDefinitions())
}

// Load reads a catalog from the JSON file at path. Any failure (missing
// file, malformed JSON, empty catalog) falls back to the embedded
// defaults; a catalog is always returned.
func Load(path string, logger zerolog.Logger) *Catalog {
	if path == "" {
		return Default()
	}
	data, err := os.ReadFile(path)
	if err != nil {
		logger.Warn().Err(err).Str("path", path).Msg("catalog file unavailable, using built-in defaults")
		return Default()
	}
	defs, err := Parse(bytes.NewReader(data))
	if err != nil {
		logger.Warn().Err(err).Str("path", path).Msg("catalog file invalid, using built-in defaults")
		return Default()
	}
	if len(defs) == 0 {
		logger.Warn().Str("path", path).Msg("catalog file empty, using built-in defaults")
		return Default()
	}
	logger.Info().Str("path", path).Int("tests", len(defs)).Msg("catalog loaded")
	return New(defs)
}

// Get returns the definition for the given test id.
func (c *Catalog) Get(id string) (*TestDefinition, error) {
	d, ok := c.defs[id]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownTest, id)
	}
	return d, nil
}

// Has reports whether the catalog contains the given test id.
func (c *Catalog) Has(id string) bool {
	_, ok := c.defs[id]
	return ok
}

// List returns summaries of all tests in catalog definition order. The
// order is stable across calls.
func (c *Catalog) List() []TestSummary {
	out := make([]TestSummary, 0, len(c.order))
	for _, id := range c.order {
		d := c.defs[id]
		out = append(out, TestSummary{TestID: d.ID, Name: d.Name, Category: d.Category})
	}
	return out
}

// Len returns the number of definitions in the catalog.
func (c *Catalog) Len() int { return len(c.order) }

// Parse decodes a catalog source document: a JSON object keyed by test
// id. Key order of the document (and of each parameters object) is
// preserved so listings match the authored order. Unknown fields are
// ignored.
func Parse(r io.Reader) ([]*TestDefinition, error) {
	dec := json.NewDecoder(r)

	if err := expectDelim(dec, '{'); err != nil {
		return nil, fmt.Errorf("catalog document: %w", err)
	}

	var defs []*TestDefinition
	for dec.More() {
		tok, err := dec.Token()
		if err != nil {
			return nil, err
		}
		id, ok := tok.(string)
		if !ok {
			return nil, fmt.Errorf("catalog document: unexpected key token %v", tok)
		}
		var raw json.RawMessage
		if err := dec.Decode(&raw); err != nil {
			return nil, fmt.Errorf("test %q: %w", id, err)
		}
		def, err := parseDefinition(id, raw)
		if err != nil {
			return nil, err
		}
		defs = append(defs, def)
	}
	return defs, nil
}

func parseDefinition(id string, raw json.RawMessage) (*TestDefinition, error) {
	var def TestDefinition
	if err := json.Unmarshal(raw, &def); err != nil {
		return nil, fmt.Errorf("test %q: %w", id, err)
	}
	def.ID = id

	if def.Name == "" {
		return nil, fmt.Errorf("test %q: name is required", id)
	}
	if !validCategories[def.Category] {
		return nil, fmt.Errorf("test %q: invalid category %q", id, def.Category)
	}
	if !def.HasParameters() && def.Description == "" {
		return nil, fmt.Errorf("test %q: either parameters or description is required", id)
	}
	if def.SumCap != nil {
		for _, pid := range def.SumCap.Parameters {
			if _, ok := def.Parameters[pid]; !ok {
				return nil, fmt.Errorf("test %q: sum_cap references unknown parameter %q", id, pid)
			}
		}
	}

	if def.HasParameters() {
		order, err := parameterOrder(raw)
		if err != nil {
			return nil, fmt.Errorf("test %q: %w", id, err)
		}
		def.ParameterOrder = order
	}
	return &def, nil
}

// parameterOrder re-scans a definition document to recover the key
// order of its parameters object, which encoding/json maps discard.
func parameterOrder(raw json.RawMessage) ([]string, error) {
	dec := json.NewDecoder(bytes.NewReader(raw))
	if err := expectDelim(dec, '{'); err != nil {
		return nil, err
	}
	for dec.More() {
		tok, err := dec.Token()
		if err != nil {
			return nil, err
		}
		key, _ := tok.(string)
		if key != "parameters" {
			if err := skipValue(dec); err != nil {
				return nil, err
			}
			continue
		}
		if err := expectDelim(dec, '{'); err != nil {
			return nil, err
		}
		var order []string
		for dec.More() {
			tok, err := dec.Token()
			if err != nil {
				return nil, err
			}
			pid, _ := tok.(string)
			order = append(order, pid)
			if err := skipValue(dec); err != nil {
				return nil, err
			}
		}
		return order, nil
	}
	return nil, nil
}

func expectDelim(dec *json.Decoder, want json.Delim) error {
	tok, err := dec.Token()
	if err != nil {
		return err
	}
	if d, ok := tok.(json.Delim); !ok || d != want {
		return fmt.Errorf("expected %q, got %v", want, tok)
	}
	return nil
}

func skipValue(dec *json.Decoder) error {
	var raw json.RawMessage
	return dec.Decode(&raw)
}
