package engine

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"chatform/internal/model"
)

func textQuestion(id string, rule model.ValidationRule) model.QuestionDefinition {
	return model.QuestionDefinition{ID: id, Prompt: id, Type: model.QuestionTypeText, Rule: rule}
}

func TestValidate_Number(t *testing.T) {
	rules := NewRuleEngine(nil)
	q := model.QuestionDefinition{ID: "score", Type: model.QuestionTypeNumber, Rule: model.RuleRange1To5}

	tests := []struct {
		name   string
		raw    string
		status ValidationStatus
		number int
	}{
		{name: "in range", raw: "3", status: StatusAccepted, number: 3},
		{name: "lower bound", raw: "1", status: StatusAccepted, number: 1},
		{name: "upper bound", raw: "5", status: StatusAccepted, number: 5},
		{name: "above range", raw: "6", status: StatusRejected},
		{name: "zero", raw: "0", status: StatusRejected},
		{name: "not a number", raw: "很滿意", status: StatusRejected},
		{name: "whitespace trimmed", raw: " 4 ", status: StatusAccepted, number: 4},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res := Validate(q, tt.raw, rules, nil)
			assert.Equal(t, tt.status, res.Status)
			if tt.status == StatusAccepted {
				require.NotNil(t, res.Value)
				assert.Equal(t, model.KindNumber, res.Value.Kind)
				assert.Equal(t, tt.number, res.Value.Number)
			} else {
				assert.NotEmpty(t, res.Reason)
			}
		})
	}
}

func TestValidate_Select(t *testing.T) {
	rules := NewRuleEngine(nil)
	q := model.QuestionDefinition{
		ID:      "age_group",
		Type:    model.QuestionTypeSelect,
		Options: []string{"18-24", "25-34", "35-44", "45-54", "55+"},
		Rule:    model.RuleRequired,
	}

	tests := []struct {
		name   string
		raw    string
		status ValidationStatus
		option string
	}{
		{name: "exact option", raw: "25-34", status: StatusAccepted, option: "25-34"},
		{name: "numeric age maps to range", raw: "30", status: StatusAccepted, option: "25-34"},
		{name: "numeric at range edge", raw: "44", status: StatusAccepted, option: "35-44"},
		{name: "numeric outside all ranges", raw: "60", status: StatusRejected},
		{name: "unknown text", raw: "中年", status: StatusRejected},
		{name: "empty while required", raw: "", status: StatusRejected},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res := Validate(q, tt.raw, rules, nil)
			assert.Equal(t, tt.status, res.Status)
			if tt.status == StatusAccepted {
				require.NotNil(t, res.Value)
				assert.Equal(t, tt.option, res.Value.Text)
			}
		})
	}
}

func TestValidate_Boolean(t *testing.T) {
	rules := NewRuleEngine(nil)
	q := model.QuestionDefinition{ID: "allow_follow_up", Type: model.QuestionTypeBoolean, Rule: model.RuleYesNo}

	tests := []struct {
		raw    string
		status ValidationStatus
		text   string
	}{
		{raw: "是", status: StatusAccepted, text: "是"},
		{raw: "yes", status: StatusAccepted, text: "是"},
		{raw: "YES", status: StatusAccepted, text: "是"},
		{raw: "否", status: StatusAccepted, text: "否"},
		{raw: "no", status: StatusAccepted, text: "否"},
		{raw: "maybe", status: StatusRejected},
	}

	for _, tt := range tests {
		t.Run(tt.raw, func(t *testing.T) {
			res := Validate(q, tt.raw, rules, nil)
			assert.Equal(t, tt.status, res.Status)
			if tt.status == StatusAccepted {
				require.NotNil(t, res.Value)
				assert.Equal(t, tt.text, res.Value.Text)
			}
		})
	}
}

func TestValidate_Email(t *testing.T) {
	rules := NewRuleEngine(nil)
	q := textQuestion("email", model.RuleEmail)

	res := Validate(q, "user@example.com", rules, nil)
	require.Equal(t, StatusAccepted, res.Status)
	assert.Equal(t, "user@example.com", res.Value.Text)

	res = Validate(q, "not-an-email", rules, nil)
	assert.Equal(t, StatusRejected, res.Status)

	// Email is optional in the built-in catalog; absence is fine
	res = Validate(q, "", rules, nil)
	assert.Equal(t, StatusAcceptedEmpty, res.Status)
}

func TestValidate_RequiredEmpty(t *testing.T) {
	rules := NewRuleEngine(nil)

	res := Validate(textQuestion("name", model.RuleRequired), "  ", rules, nil)
	assert.Equal(t, StatusRejected, res.Status)

	res = Validate(textQuestion("feedback_comments", model.RuleNone), "", rules, nil)
	assert.Equal(t, StatusAcceptedEmpty, res.Status)
}

func TestIsRequired_Conditional(t *testing.T) {
	rules := NewRuleEngine(DefaultRules())
	q := textQuestion("detailed_dissatisfaction_reason", model.RuleRequiredIfTriggered)

	answers := map[string]*model.AnswerValue{}
	assert.False(t, IsRequired(q, rules, answers))

	answers["product_satisfaction"] = model.NumberValue(2)
	assert.True(t, IsRequired(q, rules, answers))

	answers["product_satisfaction"] = model.NumberValue(4)
	assert.False(t, IsRequired(q, rules, answers))
}
