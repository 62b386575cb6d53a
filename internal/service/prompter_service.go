package service

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"chatform/internal/config"
	"chatform/internal/model"
	"chatform/internal/util"
)

// PrompterService phrases the assistant's side of the conversation via
// Gemini. Every method degrades to a fixed template so the loop never
// stalls on an AI outage.
type PrompterService struct {
	config *config.AIConfig
	client *http.Client
}

// NewPrompterService creates a new prompter service
func NewPrompterService() *PrompterService {
	cfg := config.DefaultAIConfig()
	return &PrompterService{
		config: cfg,
		client: &http.Client{
			Timeout: time.Duration(cfg.TimeoutMS) * time.Millisecond,
		},
	}
}

// NewPrompterServiceWith lets tests inject config and client
func NewPrompterServiceWith(cfg *config.AIConfig, client *http.Client) *PrompterService {
	return &PrompterService{config: cfg, client: client}
}

// Greeting opens the conversation and poses the first question
func (s *PrompterService) Greeting(ctx context.Context, first model.QuestionDefinition) string {
	fallback := fmt.Sprintf("您好！感謝您撥空填寫這份問卷。我們先從第一題開始：%s", first.Prompt)
	if first.Prompt == "" {
		fallback = "您好！感謝您撥空填寫這份問卷。"
	}
	if !s.config.IsEnabled() {
		return fallback
	}

	prompt := fmt.Sprintf(`You are a friendly questionnaire assistant speaking Traditional Chinese. Write a short warm greeting (1-2 sentences) that welcomes the user and then asks this first question verbatim:
%s
Return ONLY valid JSON: {"message": "..."}`, first.Prompt)

	return s.phrase(ctx, prompt, fallback)
}

// NextQuestions nudges the user toward the open questions
func (s *PrompterService) NextQuestions(ctx context.Context, next []model.QuestionDefinition, history []model.Turn) string {
	if len(next) == 0 {
		return "請問還有什麼想補充的嗎？"
	}

	var prompts []string
	for _, q := range next {
		prompts = append(prompts, q.Prompt)
	}
	fallback := fmt.Sprintf("接下來想請教您：%s", strings.Join(prompts, "；"))

	if !s.config.IsEnabled() {
		return fallback
	}

	prompt := fmt.Sprintf(`You are a friendly questionnaire assistant speaking Traditional Chinese. Given the recent conversation, write a short natural message (1-2 sentences) that asks the user these open questions, keeping each question's meaning intact:
%s
Recent conversation:
%s
Return ONLY valid JSON: {"message": "..."}`, strings.Join(prompts, "\n"), renderHistory(history))

	return s.phrase(ctx, prompt, fallback)
}

// Clarification quotes the rejected segment, explains the problem and
// asks the question again
func (s *PrompterService) Clarification(ctx context.Context, q model.QuestionDefinition, segment, reason string, history []model.Turn) string {
	fallback := fmt.Sprintf("抱歉，您說了「%s」，但這個回答無法使用（%s）。請再回答一次：%s", segment, reason, q.Prompt)
	if !s.config.IsEnabled() {
		return fallback
	}

	prompt := fmt.Sprintf(`You are a friendly questionnaire assistant speaking Traditional Chinese. The user's answer to the question below was rejected. Write a short polite message (1-2 sentences) that quotes what the user said, explains the problem, and asks the question again.
Question: %s
User said: %s
Rejection reason: %s
Recent conversation:
%s
Return ONLY valid JSON: {"message": "..."}`, q.Prompt, segment, reason, renderHistory(history))

	return s.phrase(ctx, prompt, fallback)
}

// phrase runs one generation call, falling back to the template on any failure
func (s *PrompterService) phrase(ctx context.Context, prompt, fallback string) string {
	response, err := callGemini(ctx, s.client, s.config, s.config.Models.Prompt, prompt)
	if err != nil {
		return fallback
	}

	var wire struct {
		Message string `json:"message"`
	}
	if err := json.Unmarshal([]byte(util.StripCodeFences(response)), &wire); err != nil || strings.TrimSpace(wire.Message) == "" {
		return fallback
	}
	return wire.Message
}

func renderHistory(history []model.Turn) string {
	if len(history) == 0 {
		return "(start of conversation)"
	}
	var b strings.Builder
	for _, t := range history {
		b.WriteString(fmt.Sprintf("[%s] %s\n", t.Role, t.Content))
	}
	return b.String()
}
