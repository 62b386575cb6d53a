package service

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"chatform/internal/config"
	"chatform/internal/model"
	"chatform/internal/util"
)

// ExtractorService asks Gemini to pull structured answers out of a
// free-form utterance. With no API key it falls back to a mock that
// maps the utterance onto the first open question.
type ExtractorService struct {
	config *config.AIConfig
	client *http.Client
}

// NewExtractorService creates a new extractor service
func NewExtractorService() *ExtractorService {
	cfg := config.DefaultAIConfig()
	return &ExtractorService{
		config: cfg,
		client: &http.Client{
			Timeout: time.Duration(cfg.TimeoutMS) * time.Millisecond,
		},
	}
}

// NewExtractorServiceWith lets tests inject config and client
func NewExtractorServiceWith(cfg *config.AIConfig, client *http.Client) *ExtractorService {
	return &ExtractorService{config: cfg, client: client}
}

// extractionWire is the JSON shape the model is asked to return
type extractionWire struct {
	ExtractedAnswers map[string]interface{} `json:"extracted_answers"`
	ActionRequest    string                 `json:"action_request"`
	Reasoning        string                 `json:"reasoning"`
}

// Extract runs one extraction call over the utterance and recent history
func (s *ExtractorService) Extract(ctx context.Context, questions []model.QuestionDefinition, answers map[string]*model.AnswerValue, history []model.Turn, utterance string) (*model.ExtractionOutcome, error) {
	if !s.config.IsEnabled() {
		return s.mockExtract(questions, answers, utterance), nil
	}

	prompt := s.buildExtractionPrompt(questions, answers, history, utterance)
	response, err := callGemini(ctx, s.client, s.config, s.config.Models.Extract, prompt)
	if err != nil {
		return &model.ExtractionOutcome{Action: model.ActionError, Reasoning: err.Error()}, nil
	}

	return decodeExtraction(response), nil
}

// decodeExtraction turns the raw model output into a typed outcome.
// Anything malformed collapses to ActionError so callers only have to
// branch on the action.
func decodeExtraction(response string) *model.ExtractionOutcome {
	response = util.StripCodeFences(response)

	var wire extractionWire
	if err := json.Unmarshal([]byte(response), &wire); err != nil {
		return &model.ExtractionOutcome{Action: model.ActionError, Reasoning: "malformed extraction response"}
	}
	if wire.ActionRequest == "" {
		return &model.ExtractionOutcome{Action: model.ActionError, Reasoning: "missing action_request"}
	}

	out := &model.ExtractionOutcome{
		Action:    normalizeAction(wire.ActionRequest),
		Reasoning: wire.Reasoning,
	}
	if len(wire.ExtractedAnswers) > 0 {
		out.Extracted = make(map[string]string, len(wire.ExtractedAnswers))
		for id, v := range wire.ExtractedAnswers {
			out.Extracted[id] = coerceValue(v)
		}
	}
	return out
}

// normalizeAction accepts both the short and the long spelling the
// model tends to use
func normalizeAction(a string) model.ActionRequest {
	switch strings.ToLower(strings.TrimSpace(a)) {
	case "continue", "continue_questionnaire":
		return model.ActionContinue
	case "finish", "finish_questionnaire":
		return model.ActionFinish
	case "no_change":
		return model.ActionNoChange
	default:
		return model.ActionError
	}
}

// coerceValue flattens JSON scalars to the string form the validator expects
func coerceValue(v interface{}) string {
	switch t := v.(type) {
	case string:
		return t
	case float64:
		if t == float64(int64(t)) {
			return strconv.FormatInt(int64(t), 10)
		}
		return strconv.FormatFloat(t, 'f', -1, 64)
	case bool:
		if t {
			return "yes"
		}
		return "no"
	case nil:
		return ""
	default:
		b, _ := json.Marshal(t)
		return string(b)
	}
}

// Prompt builder
func (s *ExtractorService) buildExtractionPrompt(questions []model.QuestionDefinition, answers map[string]*model.AnswerValue, history []model.Turn, utterance string) string {
	var schema strings.Builder
	for _, q := range questions {
		schema.WriteString(fmt.Sprintf("- %s (%s): %s", q.ID, q.Type, q.Prompt))
		if len(q.Options) > 0 {
			schema.WriteString(fmt.Sprintf(" [options: %s]", strings.Join(q.Options, ", ")))
		}
		if q.MappingContext != "" {
			schema.WriteString(fmt.Sprintf(" [hint: %s]", q.MappingContext))
		}
		schema.WriteString("\n")
	}

	var known strings.Builder
	for _, q := range questions {
		if v := answers[q.ID]; v != nil {
			known.WriteString(fmt.Sprintf("- %s: %s\n", q.ID, v.String()))
		}
	}
	if known.Len() == 0 {
		known.WriteString("(none yet)\n")
	}

	var convo strings.Builder
	for _, t := range history {
		convo.WriteString(fmt.Sprintf("[%s] %s\n", t.Role, t.Content))
	}

	return fmt.Sprintf(`You are extracting questionnaire answers from a free-form chat reply. The user may answer any subset of questions, in any order, in Chinese or English. Return ONLY valid JSON matching this schema:
{
  "extracted_answers": {"question_id": "value"},
  "action_request": "continue" | "finish" | "no_change",
  "reasoning": "one short sentence"
}

Rules:
- Include a question id in extracted_answers ONLY when the latest user message clearly states its answer.
- Use "finish" only when the user explicitly wants to stop or submit the questionnaire.
- Use "no_change" when the latest message contains no answer to any question.
- Never invent answers.

Questions:
%s
Answers collected so far:
%s
Recent conversation:
%s
Latest user message:
%s`, schema.String(), known.String(), convo.String(), utterance)
}

// mockExtract keeps the conversation loop usable without an API key:
// the raw utterance becomes the answer to the first open question.
func (s *ExtractorService) mockExtract(questions []model.QuestionDefinition, answers map[string]*model.AnswerValue, utterance string) *model.ExtractionOutcome {
	if strings.TrimSpace(utterance) == "" {
		return &model.ExtractionOutcome{Action: model.ActionNoChange, Reasoning: "mock: empty message"}
	}
	for _, q := range questions {
		if answers[q.ID] == nil {
			return &model.ExtractionOutcome{
				Action:    model.ActionContinue,
				Extracted: map[string]string{q.ID: utterance},
				Reasoning: "mock: assigned to first open question",
			}
		}
	}
	return &model.ExtractionOutcome{Action: model.ActionNoChange, Reasoning: "mock: all questions answered"}
}
