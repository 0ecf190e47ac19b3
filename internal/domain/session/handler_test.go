package session

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/labstack/echo/v4"

	"github.com/gvaxx/ai-patient/internal/platform/auth"
)

func newTestHandler(t *testing.T) (*Handler, *Service) {
	t.Helper()
	svc := newTestService(t, &fakeResponder{reply: "Болит справа."})
	return NewHandler(svc), svc
}

func doJSON(t *testing.T, h echo.HandlerFunc, method, body string, names, values []string) *httptest.ResponseRecorder {
	t.Helper()
	e := echo.New()
	req := httptest.NewRequest(method, "/", strings.NewReader(body))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	c.SetParamNames(names...)
	c.SetParamValues(values...)
	if err := h(c); err != nil {
		e.HTTPErrorHandler(err, c)
	}
	return rec
}

func TestStartSessionEndpoint(t *testing.T) {
	h, _ := newTestHandler(t)

	rec := doJSON(t, h.StartSession, http.MethodPost, `{"case_id": "case_001", "learner": "student1"}`, nil, nil)
	if rec.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d: %s", rec.Code, rec.Body.String())
	}

	var sess Session
	if err := json.Unmarshal(rec.Body.Bytes(), &sess); err != nil {
		t.Fatal(err)
	}
	if sess.CaseID != "case_001" || sess.Status != StatusActive {
		t.Errorf("unexpected session: %+v", sess)
	}
}

func TestStartSessionEndpoint_LearnerFromAuthContext(t *testing.T) {
	h, _ := newTestHandler(t)

	e := echo.New()
	req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{"case_id": "case_001", "learner": "mallory"}`))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	c.Set(auth.LearnerKey, "alice")
	if err := h.StartSession(c); err != nil {
		e.HTTPErrorHandler(err, c)
	}
	if rec.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d: %s", rec.Code, rec.Body.String())
	}

	var sess Session
	if err := json.Unmarshal(rec.Body.Bytes(), &sess); err != nil {
		t.Fatal(err)
	}
	if sess.Learner != "alice" {
		t.Errorf("session attributed to %q, want the verified learner", sess.Learner)
	}
}

func TestStartSessionEndpoint_BodyLearnerOnlyNamesAnonymous(t *testing.T) {
	h, _ := newTestHandler(t)

	rec := doJSON(t, h.StartSession, http.MethodPost, `{"case_id": "case_001", "learner": "student1"}`, nil, nil)
	if rec.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d: %s", rec.Code, rec.Body.String())
	}

	var sess Session
	if err := json.Unmarshal(rec.Body.Bytes(), &sess); err != nil {
		t.Fatal(err)
	}
	if sess.Learner != "student1" {
		t.Errorf("anonymous start should fall back to the body learner, got %q", sess.Learner)
	}
}

func TestStartSessionEndpoint_UnknownCase(t *testing.T) {
	h, _ := newTestHandler(t)
	rec := doJSON(t, h.StartSession, http.MethodPost, `{"case_id": "case_404"}`, nil, nil)
	if rec.Code != http.StatusNotFound {
		t.Errorf("expected 404, got %d", rec.Code)
	}
}

func TestStartSessionEndpoint_MissingCaseID(t *testing.T) {
	h, _ := newTestHandler(t)
	rec := doJSON(t, h.StartSession, http.MethodPost, `{}`, nil, nil)
	if rec.Code != http.StatusBadRequest {
		t.Errorf("expected 400, got %d", rec.Code)
	}
}

func TestAskEndpoint(t *testing.T) {
	h, svc := newTestHandler(t)
	sess, _ := svc.Start(context.Background(), "case_001", "")

	rec := doJSON(t, h.Ask, http.MethodPost, `{"question": "Где болит?"}`,
		[]string{"id"}, []string{sess.ID.String()})
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}

	var body map[string]string
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatal(err)
	}
	if body["answer"] != "Болит справа." {
		t.Errorf("unexpected answer: %q", body["answer"])
	}
}

func TestOrderTestEndpoint(t *testing.T) {
	h, svc := newTestHandler(t)
	sess, _ := svc.Start(context.Background(), "case_001", "")

	rec := doJSON(t, h.OrderTest, http.MethodPost, "",
		[]string{"id", "testId"}, []string{sess.ID.String(), "cbc"})
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
}

func TestSubmitEndpoint(t *testing.T) {
	h, svc := newTestHandler(t)
	sess, _ := svc.Start(context.Background(), "case_001", "")

	rec := doJSON(t, h.Submit, http.MethodPost, `{"diagnosis": "Острый аппендицит"}`,
		[]string{"id"}, []string{sess.ID.String()})
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}

	var sub Submission
	if err := json.Unmarshal(rec.Body.Bytes(), &sub); err != nil {
		t.Fatal(err)
	}
	if sub.DiagnosisEvaluation == nil || sub.DiagnosisEvaluation.Score != 100 {
		t.Errorf("unexpected grade: %+v", sub.DiagnosisEvaluation)
	}
}

func TestSubmitEndpoint_InvalidID(t *testing.T) {
	h, _ := newTestHandler(t)
	rec := doJSON(t, h.Submit, http.MethodPost, `{"diagnosis": "x"}`,
		[]string{"id"}, []string{"not-a-uuid"})
	if rec.Code != http.StatusBadRequest {
		t.Errorf("expected 400, got %d", rec.Code)
	}
}
