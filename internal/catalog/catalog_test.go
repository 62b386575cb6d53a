package catalog

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"chatform/internal/model"
)

func TestNew_SortsByPriority(t *testing.T) {
	cat, err := New([]model.QuestionDefinition{
		{ID: "b", Prompt: "B", Type: model.QuestionTypeText, Priority: 2},
		{ID: "a", Prompt: "A", Type: model.QuestionTypeText, Priority: 1},
		{ID: "c", Prompt: "C", Type: model.QuestionTypeText, Priority: 3},
	})
	require.NoError(t, err)

	assert.Equal(t, []string{"a", "b", "c"}, cat.Headers())
	assert.Equal(t, 3, cat.Len())
}

func TestNew_Invalid(t *testing.T) {
	tests := []struct {
		name string
		defs []model.QuestionDefinition
	}{
		{
			name: "empty catalog",
			defs: nil,
		},
		{
			name: "duplicate ids",
			defs: []model.QuestionDefinition{
				{ID: "a", Prompt: "A", Type: model.QuestionTypeText, Priority: 1},
				{ID: "a", Prompt: "A again", Type: model.QuestionTypeText, Priority: 2},
			},
		},
		{
			name: "select without options",
			defs: []model.QuestionDefinition{
				{ID: "a", Prompt: "A", Type: model.QuestionTypeSelect, Priority: 1},
			},
		},
		{
			name: "options on non-select",
			defs: []model.QuestionDefinition{
				{ID: "a", Prompt: "A", Type: model.QuestionTypeText, Options: []string{"x"}, Priority: 1},
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := New(tt.defs)
			assert.Error(t, err)
		})
	}
}

func TestByID(t *testing.T) {
	cat := Default()

	q, ok := cat.ByID("product_satisfaction")
	require.True(t, ok)
	assert.Equal(t, model.QuestionTypeNumber, q.Type)
	assert.Equal(t, model.RuleRange1To5, q.Rule)

	_, ok = cat.ByID("nope")
	assert.False(t, ok)
}

func TestDefault_Shape(t *testing.T) {
	cat := Default()

	require.Equal(t, 7, cat.Len())
	assert.Equal(t, []string{
		"name",
		"email",
		"age_group",
		"product_satisfaction",
		"detailed_dissatisfaction_reason",
		"feedback_comments",
		"allow_follow_up",
	}, cat.Headers())

	age, ok := cat.ByID("age_group")
	require.True(t, ok)
	assert.Equal(t, []string{"18-24", "25-34", "35-44", "45-54", "55+"}, age.Options)
}
