// Package evaluation grades learner answers against a case's hidden
// correct answers: an exact match scores without a model call, anything
// else goes to the language model, and a lexical comparison covers the
// model being unavailable.
package evaluation

import (
	"context"
	"strconv"
	"strings"

	"github.com/rs/zerolog"

	"github.com/gvaxx/ai-patient/internal/domain/cases"
	"github.com/gvaxx/ai-patient/internal/platform/llm"
)

const (
	StatusCorrect          = "correct"
	StatusPartiallyCorrect = "partially_correct"
	StatusIncorrect        = "incorrect"
)

// Result is one graded answer.
type Result struct {
	Score    int    `json:"score"`
	Status   string `json:"status"`
	Feedback string `json:"feedback"`
}

// Grader is the subset of the llm client the service needs.
type Grader interface {
	EvaluateDiagnosis(ctx context.Context, submitted, correct string, pc llm.PatientContext) (llm.Evaluation, error)
	EvaluateTreatment(ctx context.Context, submitted, correct map[string]any, pc llm.PatientContext) (llm.Evaluation, error)
	EvaluateCombined(ctx context.Context, submittedDiagnosis string, submittedTreatment map[string]any, correctDiagnosis string, correctTreatment map[string]any, pc llm.PatientContext) (llm.Evaluation, error)
}

// Service grades diagnoses and treatment plans.
type Service struct {
	grader Grader
	logger zerolog.Logger
}

// NewService creates an evaluation service. grader may be nil, in which
// case every evaluation uses the lexical fallback.
func NewService(grader Grader, logger zerolog.Logger) *Service {
	return &Service{
		grader: grader,
		logger: logger.With().Str("component", "evaluation").Logger(),
	}
}

// EvaluateDiagnosis grades a submitted diagnosis against the case.
// A normalized exact match is accepted without a model call.
func (s *Service) EvaluateDiagnosis(ctx context.Context, submitted string, cc *cases.ClinicalCase) Result {
	sub := normalize(submitted)
	correct := normalize(cc.CorrectDiagnosis)
	if sub != "" && sub == correct {
		return Result{Score: 100, Status: StatusCorrect, Feedback: "Диагноз поставлен абсолютно верно."}
	}

	if s.grader != nil {
		ev, err := s.grader.EvaluateDiagnosis(ctx, submitted, cc.CorrectDiagnosis, patientContext(cc))
		if err == nil {
			return resultFrom(ev)
		}
		s.logger.Warn().Err(err).Str("case_id", cc.CaseID).Msg("diagnosis evaluation fell back to lexical scoring")
	}
	return s.lexical(sub, correct)
}

// EvaluateTreatment grades a submitted treatment plan.
func (s *Service) EvaluateTreatment(ctx context.Context, submitted map[string]any, cc *cases.ClinicalCase) Result {
	if s.grader != nil {
		ev, err := s.grader.EvaluateTreatment(ctx, submitted, cc.CorrectTreatment, patientContext(cc))
		if err == nil {
			return resultFrom(ev)
		}
		s.logger.Warn().Err(err).Str("case_id", cc.CaseID).Msg("treatment evaluation fell back to lexical scoring")
	}
	return s.lexical(flatten(submitted), flatten(cc.CorrectTreatment))
}

// EvaluateCombined grades diagnosis and treatment with a single model
// call, producing one overall verdict. The fallback averages the
// per-axis lexical scores.
func (s *Service) EvaluateCombined(ctx context.Context, diagnosis string, treatment map[string]any, cc *cases.ClinicalCase) Result {
	if s.grader != nil {
		ev, err := s.grader.EvaluateCombined(ctx, diagnosis, treatment, cc.CorrectDiagnosis, cc.CorrectTreatment, patientContext(cc))
		if err == nil {
			return resultFrom(ev)
		}
		s.logger.Warn().Err(err).Str("case_id", cc.CaseID).Msg("combined evaluation fell back to lexical scoring")
	}

	dr := s.lexical(normalize(diagnosis), normalize(cc.CorrectDiagnosis))
	if len(treatment) == 0 {
		return dr
	}
	tr := s.lexical(flatten(treatment), flatten(cc.CorrectTreatment))
	overall := (dr.Score + tr.Score) / 2
	return resultFrom(llm.Evaluation{
		Score:    overall,
		Feedback: "Автоматическая оценка по совпадению формулировок: диагноз " + strconv.Itoa(dr.Score) + "/100, лечение " + strconv.Itoa(tr.Score) + "/100.",
	})
}

// lexical is the offline fallback: token overlap between the two
// normalized strings, scored as a hit ratio over the reference tokens.
func (s *Service) lexical(submitted, correct string) Result {
	subTokens := strings.Fields(submitted)
	refTokens := strings.Fields(correct)
	if len(subTokens) == 0 || len(refTokens) == 0 {
		return Result{Score: 0, Status: StatusIncorrect, Feedback: "Ответ не распознан."}
	}

	seen := make(map[string]bool, len(subTokens))
	for _, tok := range subTokens {
		seen[tok] = true
	}
	hits := 0
	for _, tok := range refTokens {
		if seen[tok] {
			hits++
		}
	}
	score := hits * 100 / len(refTokens)

	status := StatusIncorrect
	switch {
	case score >= 90:
		status = StatusCorrect
	case score >= 40:
		status = StatusPartiallyCorrect
	}
	return Result{
		Score:    score,
		Status:   status,
		Feedback: "Автоматическая оценка по совпадению формулировок: " + strconv.Itoa(score) + "/100.",
	}
}

func resultFrom(ev llm.Evaluation) Result {
	status := ev.Status
	if status == "" {
		switch {
		case ev.Score >= 90:
			status = StatusCorrect
		case ev.Score >= 40:
			status = StatusPartiallyCorrect
		default:
			status = StatusIncorrect
		}
	}
	return Result{Score: ev.Score, Status: status, Feedback: ev.Feedback}
}

func patientContext(cc *cases.ClinicalCase) llm.PatientContext {
	return llm.PatientContext{
		Name:           cc.Patient.Name,
		Age:            strconv.Itoa(cc.Patient.Age),
		Gender:         cc.Patient.Gender,
		ChiefComplaint: cc.ChiefComplaint,
		History:        cc.History,
		Symptoms:       cc.Symptoms,
	}
}

func normalize(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}

// flatten renders a treatment mapping as a comparable token string.
func flatten(m map[string]any) string {
	var sb strings.Builder
	for _, v := range m {
		switch t := v.(type) {
		case string:
			sb.WriteString(normalize(t))
			sb.WriteByte(' ')
		case []any:
			for _, item := range t {
				if str, ok := item.(string); ok {
					sb.WriteString(normalize(str))
					sb.WriteByte(' ')
				}
			}
		}
	}
	return strings.TrimSpace(sb.String())
}
