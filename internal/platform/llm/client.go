package llm

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
)

// historyWindow limits how many prior turns are replayed into the
// patient prompt.
const historyWindow = 10

// PatientContext carries the case facts the model needs to stay in
// character.
type PatientContext struct {
	Name           string
	Age            string
	Gender         string
	ChiefComplaint string
	History        string
	Symptoms       map[string]any
}

// Evaluation is the structured verdict the evaluation prompts ask the
// model to emit.
type Evaluation struct {
	Score    int    `json:"score"`
	Status   string `json:"status,omitempty"`
	Feedback string `json:"feedback"`
}

// Client wraps a Provider with the domain-level calls: patient
// role-play and answer grading.
type Client struct {
	provider Provider
}

// NewClient creates a client over the given provider.
func NewClient(provider Provider) *Client {
	return &Client{provider: provider}
}

// PatientResponse answers a doctor's question in the patient's voice.
func (c *Client) PatientResponse(ctx context.Context, question string, pc PatientContext, history []Message) (string, error) {
	if len(history) > historyWindow {
		history = history[len(history)-historyWindow:]
	}
	lines := make([]string, 0, len(history))
	for _, m := range history {
		lines = append(lines, m.Role+": "+m.Content)
	}
	transcript := "(пока нет)"
	if len(lines) > 0 {
		transcript = strings.Join(lines, "\n")
	}

	prompt := fmt.Sprintf(patientRolePrompt,
		pc.Name, pc.Age, pc.Gender,
		pc.ChiefComplaint, pc.History,
		jsonString(pc.Symptoms),
		transcript, question,
	)
	return c.provider.Generate(ctx, []Message{{Role: "user", Content: prompt}}, GenOptions{Temperature: 0.8})
}

// EvaluateDiagnosis grades a submitted diagnosis against the expected
// one.
func (c *Client) EvaluateDiagnosis(ctx context.Context, submitted, correct string, pc PatientContext) (Evaluation, error) {
	prompt := fmt.Sprintf(diagnosisEvaluationPrompt,
		submitted, correct, pc.ChiefComplaint, jsonString(pc.Symptoms))
	return c.evaluate(ctx, prompt)
}

// EvaluateTreatment grades a submitted treatment plan.
func (c *Client) EvaluateTreatment(ctx context.Context, submitted, correct map[string]any, pc PatientContext) (Evaluation, error) {
	prompt := fmt.Sprintf(treatmentEvaluationPrompt,
		jsonString(submitted), jsonString(correct), pc.Age, pc.Gender)
	return c.evaluate(ctx, prompt)
}

// EvaluateCombined grades diagnosis and treatment in a single call.
func (c *Client) EvaluateCombined(ctx context.Context, submittedDiagnosis string, submittedTreatment map[string]any, correctDiagnosis string, correctTreatment map[string]any, pc PatientContext) (Evaluation, error) {
	prompt := fmt.Sprintf(combinedEvaluationPrompt,
		submittedDiagnosis, jsonString(submittedTreatment),
		correctDiagnosis, jsonString(correctTreatment),
		pc.ChiefComplaint, jsonString(pc.Symptoms),
		pc.Age, pc.Gender,
	)
	return c.evaluate(ctx, prompt)
}

func (c *Client) evaluate(ctx context.Context, prompt string) (Evaluation, error) {
	raw, err := c.provider.Generate(ctx, []Message{{Role: "user", Content: prompt}}, GenOptions{Temperature: 0.3})
	if err != nil {
		return Evaluation{}, err
	}

	var ev Evaluation
	if err := json.Unmarshal([]byte(StripCodeFences(raw)), &ev); err != nil {
		return Evaluation{}, fmt.Errorf("decode evaluation: %w", err)
	}
	return ev, nil
}

// StripCodeFences removes a surrounding markdown code fence, with or
// without a json language tag, that models often wrap JSON answers in.
func StripCodeFences(s string) string {
	s = strings.TrimSpace(s)
	if !strings.HasPrefix(s, "```") {
		return s
	}
	s = strings.Trim(s, "`")
	s = strings.TrimPrefix(s, "json")
	return strings.TrimSpace(s)
}

func jsonString(v any) string {
	if v == nil {
		return "{}"
	}
	b, err := json.Marshal(v)
	if err != nil {
		return "{}"
	}
	return string(b)
}
