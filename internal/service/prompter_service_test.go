package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"

	"chatform/internal/config"
	"chatform/internal/model"
)

// A zero AIConfig has no key, so every method takes the fallback path.
func fallbackPrompter() *PrompterService {
	return NewPrompterServiceWith(&config.AIConfig{}, nil)
}

func TestClarification_FallbackQuotesSegment(t *testing.T) {
	p := fallbackPrompter()
	q := model.QuestionDefinition{ID: "product_satisfaction", Prompt: "您對我們產品的整體滿意度如何？（1-5分）"}

	msg := p.Clarification(context.Background(), q, "9", "數字超出 1-5 的範圍", nil)

	assert.Contains(t, msg, "您說了「9」")
	assert.Contains(t, msg, "數字超出 1-5 的範圍")
	assert.Contains(t, msg, q.Prompt)
}

func TestGreeting_Fallback(t *testing.T) {
	p := fallbackPrompter()
	q := model.QuestionDefinition{ID: "name", Prompt: "請問您怎麼稱呼？"}

	msg := p.Greeting(context.Background(), q)

	assert.Contains(t, msg, q.Prompt)
}

func TestNextQuestions_Fallback(t *testing.T) {
	p := fallbackPrompter()
	next := []model.QuestionDefinition{
		{ID: "name", Prompt: "請問您怎麼稱呼？"},
		{ID: "age_group", Prompt: "請問您的年齡區間？"},
	}

	msg := p.NextQuestions(context.Background(), next, nil)

	assert.Contains(t, msg, "請問您怎麼稱呼？")
	assert.Contains(t, msg, "請問您的年齡區間？")
}

func TestNextQuestions_EmptyFallback(t *testing.T) {
	p := fallbackPrompter()

	msg := p.NextQuestions(context.Background(), nil, nil)

	assert.NotEmpty(t, msg)
}
