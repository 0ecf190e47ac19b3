package cases

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"github.com/rs/zerolog"
)

// caseFile mirrors the authored case document layout, which nests the
// presentation and the correct answers.
type caseFile struct {
	CaseID       string  `json:"case_id"`
	Title        string  `json:"title"`
	Patient      Patient `json:"patient"`
	Presentation struct {
		ChiefComplaint string         `json:"chief_complaint"`
		History        string         `json:"history"`
		Symptoms       map[string]any `json:"symptoms"`
	} `json:"presentation"`
	CorrectAnswers struct {
		Diagnosis struct {
			Primary string `json:"primary"`
			ICD10   string `json:"icd10"`
		} `json:"diagnosis"`
		Treatment map[string]any `json:"treatment"`
	} `json:"correct_answers"`
	RealTestResults map[string]json.RawMessage `json:"real_test_results"`
}

// Loader reads clinical case documents from a directory of JSON files.
type Loader struct {
	dir    string
	logger zerolog.Logger
}

// NewLoader creates a loader for the given cases directory.
func NewLoader(dir string, logger zerolog.Logger) *Loader {
	return &Loader{dir: dir, logger: logger}
}

// LoadAll reads every *.json file in the directory, sorted by file
// name. A missing directory yields an empty registry rather than an
// error; an unreadable individual file fails the whole load so broken
// content is caught at startup.
func (l *Loader) LoadAll() (*Registry, error) {
	entries, err := os.ReadDir(l.dir)
	if err != nil {
		if os.IsNotExist(err) {
			l.logger.Warn().Str("dir", l.dir).Msg("cases directory missing, no cases loaded")
			return NewRegistry(nil), nil
		}
		return nil, fmt.Errorf("read cases dir: %w", err)
	}

	var names []string
	for _, e := range entries {
		if e.IsDir() || filepath.Ext(e.Name()) != ".json" {
			continue
		}
		names = append(names, e.Name())
	}
	sort.Strings(names)

	var loaded []*ClinicalCase
	for _, name := range names {
		c, err := l.LoadFile(filepath.Join(l.dir, name))
		if err != nil {
			return nil, err
		}
		loaded = append(loaded, c)
	}
	l.logger.Info().Int("cases", len(loaded)).Str("dir", l.dir).Msg("clinical cases loaded")
	return NewRegistry(loaded), nil
}

// LoadFile reads and parses a single case document.
func (l *Loader) LoadFile(path string) (*ClinicalCase, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read case %s: %w", path, err)
	}

	var f caseFile
	if err := json.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("parse case %s: %w", path, err)
	}
	if f.CaseID == "" {
		return nil, fmt.Errorf("case %s: case_id is required", path)
	}
	if f.Title == "" {
		return nil, fmt.Errorf("case %s: title is required", path)
	}

	return &ClinicalCase{
		CaseID:           f.CaseID,
		Title:            f.Title,
		Patient:          f.Patient,
		ChiefComplaint:   f.Presentation.ChiefComplaint,
		History:          f.Presentation.History,
		Symptoms:         f.Presentation.Symptoms,
		CorrectDiagnosis: f.CorrectAnswers.Diagnosis.Primary,
		CorrectICD10:     f.CorrectAnswers.Diagnosis.ICD10,
		CorrectTreatment: f.CorrectAnswers.Treatment,
		RealTestResults:  f.RealTestResults,
	}, nil
}
