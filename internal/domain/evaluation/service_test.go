package evaluation

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/rs/zerolog"

	"github.com/gvaxx/ai-patient/internal/domain/cases"
	"github.com/gvaxx/ai-patient/internal/platform/llm"
)

type fakeGrader struct {
	evaluation llm.Evaluation
	err        error
	calls      int
}

func (f *fakeGrader) EvaluateDiagnosis(_ context.Context, _, _ string, _ llm.PatientContext) (llm.Evaluation, error) {
	f.calls++
	return f.evaluation, f.err
}

func (f *fakeGrader) EvaluateTreatment(_ context.Context, _, _ map[string]any, _ llm.PatientContext) (llm.Evaluation, error) {
	f.calls++
	return f.evaluation, f.err
}

func (f *fakeGrader) EvaluateCombined(_ context.Context, _ string, _ map[string]any, _ string, _ map[string]any, _ llm.PatientContext) (llm.Evaluation, error) {
	f.calls++
	return f.evaluation, f.err
}

func testCase() *cases.ClinicalCase {
	return &cases.ClinicalCase{
		CaseID:           "case_001",
		CorrectDiagnosis: "Острый аппендицит",
		CorrectTreatment: map[string]any{
			"surgery":     "аппендэктомия",
			"medications": []any{"цефтриаксон", "метронидазол"},
		},
		Patient:        cases.Patient{Name: "Иван", Age: 34, Gender: "мужской"},
		ChiefComplaint: "Боль в животе",
	}
}

func TestEvaluateDiagnosis_ExactMatchSkipsModel(t *testing.T) {
	fg := &fakeGrader{}
	svc := NewService(fg, zerolog.Nop())

	r := svc.EvaluateDiagnosis(context.Background(), "  острый АППЕНДИЦИТ ", testCase())
	if r.Score != 100 || r.Status != StatusCorrect {
		t.Errorf("exact match not short-circuited: %+v", r)
	}
	if fg.calls != 0 {
		t.Errorf("model called %d times for exact match", fg.calls)
	}
}

func TestEvaluateDiagnosis_UsesModelVerdict(t *testing.T) {
	fg := &fakeGrader{evaluation: llm.Evaluation{Score: 70, Status: StatusPartiallyCorrect, Feedback: "уточните форму"}}
	svc := NewService(fg, zerolog.Nop())

	r := svc.EvaluateDiagnosis(context.Background(), "аппендицит", testCase())
	if r.Score != 70 || r.Status != StatusPartiallyCorrect || r.Feedback != "уточните форму" {
		t.Errorf("model verdict not surfaced: %+v", r)
	}
}

func TestEvaluateDiagnosis_StatusDerivedFromScore(t *testing.T) {
	fg := &fakeGrader{evaluation: llm.Evaluation{Score: 95, Feedback: "ok"}}
	svc := NewService(fg, zerolog.Nop())

	if r := svc.EvaluateDiagnosis(context.Background(), "x", testCase()); r.Status != StatusCorrect {
		t.Errorf("expected derived correct status, got %+v", r)
	}
}

func TestEvaluateDiagnosis_FallbackOnModelError(t *testing.T) {
	fg := &fakeGrader{err: errors.New("llm down")}
	svc := NewService(fg, zerolog.Nop())

	r := svc.EvaluateDiagnosis(context.Background(), "острый гастрит", testCase())
	if r.Score == 100 {
		t.Errorf("partial lexical overlap should not score full: %+v", r)
	}
	if r.Status != StatusPartiallyCorrect {
		t.Errorf("one-of-two token hit should be partial: %+v", r)
	}
	if !strings.Contains(r.Feedback, "Автоматическая") {
		t.Errorf("fallback feedback missing: %q", r.Feedback)
	}
}

func TestEvaluateDiagnosis_NilGraderUsesLexical(t *testing.T) {
	svc := NewService(nil, zerolog.Nop())

	r := svc.EvaluateDiagnosis(context.Background(), "перелом бедра", testCase())
	if r.Score != 0 || r.Status != StatusIncorrect {
		t.Errorf("disjoint answer should score zero: %+v", r)
	}
}

func TestEvaluateDiagnosis_EmptySubmission(t *testing.T) {
	svc := NewService(nil, zerolog.Nop())

	r := svc.EvaluateDiagnosis(context.Background(), "   ", testCase())
	if r.Score != 0 || r.Status != StatusIncorrect {
		t.Errorf("empty submission should score zero: %+v", r)
	}
}

func TestEvaluateTreatment_UsesModelVerdict(t *testing.T) {
	fg := &fakeGrader{evaluation: llm.Evaluation{Score: 80, Feedback: "план в целом верный"}}
	svc := NewService(fg, zerolog.Nop())

	r := svc.EvaluateTreatment(context.Background(), map[string]any{"surgery": "аппендэктомия"}, testCase())
	if r.Score != 80 || fg.calls != 1 {
		t.Errorf("model verdict not surfaced: %+v calls=%d", r, fg.calls)
	}
}

func TestEvaluateTreatment_LexicalFallback(t *testing.T) {
	svc := NewService(nil, zerolog.Nop())

	r := svc.EvaluateTreatment(context.Background(), map[string]any{
		"surgery":     "аппендэктомия",
		"medications": []any{"цефтриаксон", "метронидазол"},
	}, testCase())
	if r.Score != 100 || r.Status != StatusCorrect {
		t.Errorf("full token match should score 100: %+v", r)
	}
}

func TestEvaluateCombined_UsesModelVerdict(t *testing.T) {
	fg := &fakeGrader{evaluation: llm.Evaluation{Score: 75, Feedback: "диагноз верный, лечение неполное"}}
	svc := NewService(fg, zerolog.Nop())

	r := svc.EvaluateCombined(context.Background(), "аппендицит", map[string]any{"surgery": "аппендэктомия"}, testCase())
	if r.Score != 75 || r.Status != StatusPartiallyCorrect || fg.calls != 1 {
		t.Errorf("combined verdict not surfaced: %+v calls=%d", r, fg.calls)
	}
}

func TestEvaluateCombined_FallbackAveragesAxes(t *testing.T) {
	svc := NewService(nil, zerolog.Nop())

	r := svc.EvaluateCombined(context.Background(), "острый аппендицит", map[string]any{
		"surgery":     "аппендэктомия",
		"medications": []any{"цефтриаксон", "метронидазол"},
	}, testCase())
	if r.Score != 100 || r.Status != StatusCorrect {
		t.Errorf("both axes fully matched should score 100: %+v", r)
	}
}

func TestEvaluateCombined_NoTreatmentGradesDiagnosisOnly(t *testing.T) {
	svc := NewService(nil, zerolog.Nop())

	r := svc.EvaluateCombined(context.Background(), "острый аппендицит", nil, testCase())
	if r.Score != 100 {
		t.Errorf("diagnosis-only combined should match diagnosis grade: %+v", r)
	}
}
