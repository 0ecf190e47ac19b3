package session

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/gvaxx/ai-patient/internal/domain/cases"
	"github.com/gvaxx/ai-patient/internal/domain/evaluation"
	"github.com/gvaxx/ai-patient/internal/domain/results"
	"github.com/gvaxx/ai-patient/internal/platform/llm"
)

// Dialogue roles stored in the conversation log.
const (
	RoleDoctor  = "doctor"
	RolePatient = "patient"
)

var (
	// ErrSessionClosed is returned for actions on a submitted session.
	ErrSessionClosed = errors.New("session already submitted")
	// ErrNoResponder is returned when dialogue is requested but no
	// language model is configured.
	ErrNoResponder = errors.New("patient dialogue is not configured")
)

// Responder produces the virtual patient's reply to a doctor question.
type Responder interface {
	PatientResponse(ctx context.Context, question string, pc llm.PatientContext, history []llm.Message) (string, error)
}

// Service runs learner sessions end to end.
type Service struct {
	repo      Repository
	registry  *cases.Registry
	results   *results.Service
	eval      *evaluation.Service
	responder Responder
	logger    zerolog.Logger
}

// NewService wires the session service. responder may be nil when no
// model is configured; Ask then fails with ErrNoResponder.
func NewService(repo Repository, registry *cases.Registry, res *results.Service, eval *evaluation.Service, responder Responder, logger zerolog.Logger) *Service {
	return &Service{
		repo:      repo,
		registry:  registry,
		results:   res,
		eval:      eval,
		responder: responder,
		logger:    logger.With().Str("component", "session").Logger(),
	}
}

// Start opens a new session for the given case.
func (s *Service) Start(ctx context.Context, caseID, learner string) (*Session, error) {
	if _, err := s.registry.Get(caseID); err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	sess := &Session{
		ID:           uuid.New(),
		CaseID:       caseID,
		Learner:      learner,
		Status:       StatusActive,
		TestResults:  make(map[string]*results.TestResult),
		OrderedTests: []string{},
		Conversation: []Turn{},
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if err := s.repo.Create(ctx, sess); err != nil {
		return nil, fmt.Errorf("create session: %w", err)
	}

	s.logger.Info().
		Str("session_id", sess.ID.String()).
		Str("case_id", caseID).
		Msg("session started")
	return sess, nil
}

// Get returns the session with the given id.
func (s *Service) Get(ctx context.Context, id uuid.UUID) (*Session, error) {
	return s.repo.GetByID(ctx, id)
}

// List returns sessions, optionally filtered by case.
func (s *Service) List(ctx context.Context, caseID string, limit, offset int) ([]*Session, int, error) {
	return s.repo.List(ctx, caseID, limit, offset)
}

// Ask relays a doctor question to the virtual patient and records both
// turns.
func (s *Service) Ask(ctx context.Context, id uuid.UUID, question string) (string, error) {
	if s.responder == nil {
		return "", ErrNoResponder
	}

	sess, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return "", err
	}
	if sess.Status != StatusActive {
		return "", ErrSessionClosed
	}
	cc, err := s.registry.Get(sess.CaseID)
	if err != nil {
		return "", err
	}

	history := make([]llm.Message, 0, len(sess.Conversation))
	for _, t := range sess.Conversation {
		history = append(history, llm.Message{Role: t.Role, Content: t.Content})
	}

	answer, err := s.responder.PatientResponse(ctx, question, patientContext(cc), history)
	if err != nil {
		return "", fmt.Errorf("patient response: %w", err)
	}

	now := time.Now().UTC()
	sess.Conversation = append(sess.Conversation,
		Turn{Role: RoleDoctor, Content: question, Timestamp: now},
		Turn{Role: RolePatient, Content: answer, Timestamp: now},
	)
	sess.UpdatedAt = now
	if err := s.repo.Update(ctx, sess); err != nil {
		return "", fmt.Errorf("save session: %w", err)
	}
	return answer, nil
}

// OrderTest runs a test for the session's case and records the result.
// Ordering the same test twice returns the recorded result unchanged.
func (s *Service) OrderTest(ctx context.Context, id uuid.UUID, testID string) (*results.TestResult, error) {
	sess, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if sess.Status != StatusActive {
		return nil, ErrSessionClosed
	}
	if sess.HasOrdered(testID) {
		return sess.TestResults[testID], nil
	}

	cc, err := s.registry.Get(sess.CaseID)
	if err != nil {
		return nil, err
	}
	result, err := s.results.GetTestResult(testID, cc)
	if err != nil {
		return nil, err
	}

	sess.TestResults[testID] = result
	sess.OrderedTests = append(sess.OrderedTests, testID)
	sess.UpdatedAt = time.Now().UTC()
	if err := s.repo.Update(ctx, sess); err != nil {
		return nil, fmt.Errorf("save session: %w", err)
	}

	s.logger.Info().
		Str("session_id", id.String()).
		Str("test_id", testID).
		Msg("test ordered")
	return result, nil
}

// Submit grades the learner's final answer and closes the session.
func (s *Service) Submit(ctx context.Context, id uuid.UUID, diagnosis string, treatment map[string]any) (*Submission, error) {
	sess, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if sess.Status != StatusActive {
		return nil, ErrSessionClosed
	}
	cc, err := s.registry.Get(sess.CaseID)
	if err != nil {
		return nil, err
	}

	sub := &Submission{
		Diagnosis:   diagnosis,
		Treatment:   treatment,
		SubmittedAt: time.Now().UTC(),
	}
	dr := s.eval.EvaluateDiagnosis(ctx, diagnosis, cc)
	sub.DiagnosisEvaluation = &dr
	if len(treatment) > 0 {
		tr := s.eval.EvaluateTreatment(ctx, treatment, cc)
		sub.TreatmentEvaluation = &tr
	}

	sess.Submission = sub
	sess.Status = StatusSubmitted
	sess.UpdatedAt = sub.SubmittedAt
	if err := s.repo.Update(ctx, sess); err != nil {
		return nil, fmt.Errorf("save session: %w", err)
	}

	s.logger.Info().
		Str("session_id", id.String()).
		Int("diagnosis_score", dr.Score).
		Msg("session submitted")
	return sub, nil
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
