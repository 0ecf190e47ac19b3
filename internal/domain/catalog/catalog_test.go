package catalog

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/rs/zerolog"
)

func TestDefault_ContainsCorePanels(t *testing.T) {
	c := Default()

	for _, id := range []string{"cbc", "biochemistry", "urinalysis", "vital_signs"} {
		def, err := c.Get(id)
		if err != nil {
			t.Fatalf("Get(%q) failed: %v", id, err)
		}
		if !def.HasParameters() {
			t.Errorf("expected %q to have parameters", id)
		}
	}

	descriptive := 0
	for _, s := range c.List() {
		def, _ := c.Get(s.TestID)
		if !def.HasParameters() {
			descriptive++
			if def.Description == "" {
				t.Errorf("descriptive test %q has empty description", s.TestID)
			}
		}
	}
	if descriptive < 4 {
		t.Errorf("expected at least 4 descriptive tests, got %d", descriptive)
	}
}

func TestDefault_CBCSumCap(t *testing.T) {
	def, err := Default().Get("cbc")
	if err != nil {
		t.Fatal(err)
	}
	if def.SumCap == nil {
		t.Fatal("cbc should define a sum cap")
	}
	if def.SumCap.Parameters != [2]string{"neutrophils", "lymphocytes"} {
		t.Errorf("unexpected sum cap parameters: %v", def.SumCap.Parameters)
	}
	if def.SumCap.Limit != 100 {
		t.Errorf("expected limit 100, got %v", def.SumCap.Limit)
	}
}

func TestGet_UnknownTest(t *testing.T) {
	_, err := Default().Get("nonexistent_test")
	if !errors.Is(err, ErrUnknownTest) {
		t.Errorf("expected ErrUnknownTest, got %v", err)
	}
}

func TestList_StableOrder(t *testing.T) {
	c := Default()
	first := c.List()
	second := c.List()

	if len(first) != len(second) || len(first) != c.Len() {
		t.Fatalf("inconsistent list lengths: %d vs %d", len(first), len(second))
	}
	for i := range first {
		if first[i] != second[i] {
			t.Errorf("list order changed at index %d: %v vs %v", i, first[i], second[i])
		}
	}
	if first[0].TestID != "cbc" {
		t.Errorf("expected cbc first, got %q", first[0].TestID)
	}
}

func TestParse_PreservesDocumentOrder(t *testing.T) {
	src := `{
		"zeta_panel": {
			"name": "Zeta Panel",
			"category": "laboratory",
			"parameters": {
				"z2": {"name": "Z Two", "normal_range": [1, 2], "unit": "u"},
				"z1": {"name": "Z One", "normal_range": [0, 1], "unit": "u"}
			}
		},
		"alpha_exam": {
			"name": "Alpha Exam",
			"category": "examination",
			"description": "unremarkable"
		}
	}`

	defs, err := Parse(strings.NewReader(src))
	if err != nil {
		t.Fatal(err)
	}
	if len(defs) != 2 {
		t.Fatalf("expected 2 definitions, got %d", len(defs))
	}
	if defs[0].ID != "zeta_panel" || defs[1].ID != "alpha_exam" {
		t.Errorf("document order not preserved: %q, %q", defs[0].ID, defs[1].ID)
	}
	if got := defs[0].ParameterOrder; len(got) != 2 || got[0] != "z2" || got[1] != "z1" {
		t.Errorf("parameter order not preserved: %v", got)
	}
}

func TestParse_IgnoresUnknownFields(t *testing.T) {
	src := `{
		"t": {
			"name": "T",
			"category": "imaging",
			"description": "clear",
			"loinc": "12345-6",
			"extra": {"nested": true}
		}
	}`
	defs, err := Parse(strings.NewReader(src))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if defs[0].Description != "clear" {
		t.Errorf("description lost: %q", defs[0].Description)
	}
}

func TestParse_Invalid(t *testing.T) {
	cases := map[string]string{
		"missing name":      `{"t": {"category": "laboratory", "description": "x"}}`,
		"bad category":      `{"t": {"name": "T", "category": "genetic", "description": "x"}}`,
		"no body":           `{"t": {"name": "T", "category": "laboratory"}}`,
		"bad range":         `{"t": {"name": "T", "category": "laboratory", "parameters": {"p": {"name": "P", "normal_range": [1, 2, 3]}}}}`,
		"inverted range":    `{"t": {"name": "T", "category": "laboratory", "parameters": {"p": {"name": "P", "normal_range": [5, 1]}}}}`,
		"dangling sum cap":  `{"t": {"name": "T", "category": "laboratory", "parameters": {"p": {"name": "P", "normal_range": [0, 1]}}, "sum_cap": {"parameters": ["p", "q"], "limit": 100}}}`,
		"not an object":     `[1, 2]`,
	}
	for name, src := range cases {
		if _, err := Parse(strings.NewReader(src)); err == nil {
			t.Errorf("%s: expected error", name)
		}
	}
}

func TestNormalRange_Shapes(t *testing.T) {
	var r NormalRange

	if err := r.UnmarshalJSON([]byte(`[4.0, 9.0]`)); err != nil {
		t.Fatal(err)
	}
	if r.Kind != RangeNumeric || r.Min != 4.0 || r.Max != 9.0 {
		t.Errorf("numeric pair parsed wrong: %+v", r)
	}

	if err := r.UnmarshalJSON([]byte(`"отрицательный"`)); err != nil {
		t.Fatal(err)
	}
	if r.Kind != RangeText || r.Text != "отрицательный" {
		t.Errorf("text range parsed wrong: %+v", r)
	}

	if err := r.UnmarshalJSON([]byte(`["соломенно-желтый", "светло-желтый"]`)); err != nil {
		t.Fatal(err)
	}
	if r.Kind != RangeChoice || len(r.Choices) != 2 {
		t.Errorf("choice range parsed wrong: %+v", r)
	}

	if err := r.UnmarshalJSON([]byte(`{"min": 1}`)); err == nil {
		t.Error("expected error for object-shaped range")
	}
}

func TestLoad_FallsBackToDefaults(t *testing.T) {
	logger := zerolog.Nop()

	c := Load("", logger)
	if c.Len() == 0 {
		t.Fatal("empty-path load produced empty catalog")
	}

	c = Load(filepath.Join(t.TempDir(), "missing.json"), logger)
	if !c.Has("cbc") {
		t.Error("missing-file load should fall back to defaults")
	}

	bad := filepath.Join(t.TempDir(), "bad.json")
	if err := os.WriteFile(bad, []byte("{not json"), 0o600); err != nil {
		t.Fatal(err)
	}
	c = Load(bad, logger)
	if !c.Has("cbc") {
		t.Error("malformed-file load should fall back to defaults")
	}
}

func TestLoad_FromFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "catalog.json")
	src := `{
		"glucose_tolerance": {
			"name": "Глюкозотолерантный тест",
			"category": "laboratory",
			"parameters": {
				"fasting": {"name": "Натощак", "normal_range": [3.9, 6.1], "unit": "ммоль/л", "ideal": 5.0}
			}
		}
	}`
	if err := os.WriteFile(path, []byte(src), 0o600); err != nil {
		t.Fatal(err)
	}

	c := Load(path, zerolog.Nop())
	if c.Len() != 1 {
		t.Fatalf("expected 1 test, got %d", c.Len())
	}
	def, err := c.Get("glucose_tolerance")
	if err != nil {
		t.Fatal(err)
	}
	if def.Parameters["fasting"].Unit != "ммоль/л" {
		t.Errorf("unexpected unit: %q", def.Parameters["fasting"].Unit)
	}
}
