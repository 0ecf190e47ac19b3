// Package cases models clinical training scenarios: a synthetic
// patient, the presentation shown to the learner, the hidden correct
// answers, and optional authored test results that supersede generated
// normals. Cases are static content loaded once from JSON files.
package cases

import "encoding/json"

// Patient is the presented virtual patient.
type Patient struct {
	Name       string `json:"name"`
	Age        int    `json:"age"`
	Gender     string `json:"gender"`
	Occupation string `json:"occupation,omitempty"`
}

// ClinicalCase is one training scenario. RealTestResults, keyed by test
// id, is authored content in one of three lenient shapes; it is parsed
// into an Override at access time, never validated at load time.
type ClinicalCase struct {
	CaseID          string                     `json:"case_id"`
	Title           string                     `json:"title"`
	Patient         Patient                    `json:"patient"`
	ChiefComplaint  string                     `json:"chief_complaint"`
	History         string                     `json:"history"`
	Symptoms        map[string]any             `json:"symptoms"`
	CorrectDiagnosis string                    `json:"correct_diagnosis"`
	CorrectICD10    string                     `json:"correct_icd10"`
	CorrectTreatment map[string]any            `json:"correct_treatment"`
	RealTestResults map[string]json.RawMessage `json:"real_test_results"`
}

// HasRealResults reports whether the case authors results for the test.
func (c *ClinicalCase) HasRealResults(testID string) bool {
	_, ok := c.RealTestResults[testID]
	return ok
}

// RealResults returns the parsed authored override for the test, or
// nil when the case authors none.
func (c *ClinicalCase) RealResults(testID string) *Override {
	raw, ok := c.RealTestResults[testID]
	if !ok {
		return nil
	}
	ov := ParseOverride(raw)
	return &ov
}

// Summary is the listing shape of a case. It deliberately omits the
// correct answers and the authored results.
type Summary struct {
	CaseID         string  `json:"case_id"`
	Title          string  `json:"title"`
	Patient        Patient `json:"patient"`
	ChiefComplaint string  `json:"chief_complaint"`
}

// Summary returns the answer-free listing view of the case.
func (c *ClinicalCase) Summary() Summary {
	return Summary{
		CaseID:         c.CaseID,
		Title:          c.Title,
		Patient:        c.Patient,
		ChiefComplaint: c.ChiefComplaint,
	}
}
