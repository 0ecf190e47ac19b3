package cases

import (
	"errors"
	"fmt"
)

// ErrUnknownCase is returned when a requested case id is not loaded.
var ErrUnknownCase = errors.New("unknown case")

// Registry holds loaded cases, read-only after construction, in load
// order.
type Registry struct {
	byID  map[string]*ClinicalCase
	order []string
}

// NewRegistry indexes the given cases, preserving their order.
func NewRegistry(loaded []*ClinicalCase) *Registry {
	r := &Registry{byID: make(map[string]*ClinicalCase, len(loaded))}
	for _, c := range loaded {
		if _, dup := r.byID[c.CaseID]; dup {
			continue
		}
		r.byID[c.CaseID] = c
		r.order = append(r.order, c.CaseID)
	}
	return r
}

// Get returns the case with the given id.
func (r *Registry) Get(id string) (*ClinicalCase, error) {
	c, ok := r.byID[id]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownCase, id)
	}
	return c, nil
}

// List returns answer-free summaries of all cases in load order.
func (r *Registry) List() []Summary {
	out := make([]Summary, 0, len(r.order))
	for _, id := range r.order {
		out = append(out, r.byID[id].Summary())
	}
	return out
}

// Len returns the number of loaded cases.
func (r *Registry) Len() int { return len(r.order) }
