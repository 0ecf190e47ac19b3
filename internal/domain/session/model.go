// Package session tracks one learner's encounter with a case: the
// dialogue with the virtual patient, the tests they ordered, and the
// graded answers they submitted.
package session

import (
	"time"

	"github.com/google/uuid"

	"github.com/gvaxx/ai-patient/internal/domain/evaluation"
	"github.com/gvaxx/ai-patient/internal/domain/results"
)

// Session statuses.
const (
	StatusActive    = "active"
	StatusSubmitted = "submitted"
)

// Turn is one entry in the doctor/patient dialogue.
type Turn struct {
	Role      string    `json:"role"`
	Content   string    `json:"content"`
	Timestamp time.Time `json:"timestamp"`
}

// Submission is the learner's final answer with its grades.
type Submission struct {
	Diagnosis           string             `json:"diagnosis"`
	Treatment           map[string]any     `json:"treatment,omitempty"`
	DiagnosisEvaluation *evaluation.Result `json:"diagnosis_evaluation,omitempty"`
	TreatmentEvaluation *evaluation.Result `json:"treatment_evaluation,omitempty"`
	SubmittedAt         time.Time          `json:"submitted_at"`
}

// Session is one learner run through a case.
type Session struct {
	ID           uuid.UUID                      `json:"id"`
	CaseID       string                         `json:"case_id"`
	Learner      string                         `json:"learner,omitempty"`
	Status       string                         `json:"status"`
	Conversation []Turn                         `json:"conversation"`
	OrderedTests []string                       `json:"ordered_tests"`
	TestResults  map[string]*results.TestResult `json:"test_results"`
	Submission   *Submission                    `json:"submission,omitempty"`
	CreatedAt    time.Time                      `json:"created_at"`
	UpdatedAt    time.Time                      `json:"updated_at"`
}

// HasOrdered reports whether the test was already ordered in this
// session.
func (s *Session) HasOrdered(testID string) bool {
	_, ok := s.TestResults[testID]
	return ok
}
