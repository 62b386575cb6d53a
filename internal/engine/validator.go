package engine

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"chatform/internal/model"
)

// ValidationStatus classifies a validator outcome
type ValidationStatus string

const (
	StatusAccepted      ValidationStatus = "accepted"
	StatusAcceptedEmpty ValidationStatus = "accepted_empty" // Valid absence of an optional answer
	StatusRejected      ValidationStatus = "rejected"
)

// ValidationResult is the outcome of validating one extracted value
type ValidationResult struct {
	Status ValidationStatus
	Value  *model.AnswerValue // Set only when Status == StatusAccepted
	Reason string             // Set only when Status == StatusRejected
}

var emailPattern = regexp.MustCompile(`^[^@\s]+@[^@\s]+\.[^@\s]+$`)

// IsRequired evaluates a question's requiredness against the current
// answers: always for RuleRequired, and for RuleRequiredIfTriggered
// only while the question's trigger condition holds.
func IsRequired(q model.QuestionDefinition, rules *RuleEngine, answers map[string]*model.AnswerValue) bool {
	switch q.Rule {
	case model.RuleRequired:
		return true
	case model.RuleRequiredIfTriggered:
		return rules.IsTriggered(q.ID, answers)
	default:
		return false
	}
}

// Validate checks one raw extracted value against a question definition.
// It is a pure function over its inputs; the answers map is only read
// to evaluate conditional requiredness.
func Validate(q model.QuestionDefinition, raw string, rules *RuleEngine, answers map[string]*model.AnswerValue) ValidationResult {
	required := IsRequired(q, rules, answers)

	trimmed := strings.TrimSpace(raw)
	if trimmed == "" {
		if required {
			return reject("this question is required but no usable answer was found")
		}
		return ValidationResult{Status: StatusAcceptedEmpty}
	}

	switch q.Type {
	case model.QuestionTypeNumber:
		n, err := strconv.Atoi(trimmed)
		if err != nil {
			return reject("the answer could not be read as a number")
		}
		if q.Rule == model.RuleRange1To5 && (n < 1 || n > 5) {
			return reject("the number is outside the valid range (1-5)")
		}
		return accept(model.NumberValue(n))

	case model.QuestionTypeSelect:
		return validateSelect(q, trimmed)

	case model.QuestionTypeBoolean:
		switch strings.ToLower(trimmed) {
		case "是", "yes":
			return accept(model.BooleanValue("是"))
		case "否", "no":
			return accept(model.BooleanValue("否"))
		}
		return reject("the answer could not be read as 是 or 否")

	default: // text
		if q.Rule == model.RuleEmail && !emailPattern.MatchString(trimmed) {
			return reject("the answer is not a valid email address")
		}
		return accept(model.TextValue(trimmed))
	}
}

// validateSelect matches case-insensitively against the option list,
// then falls back to numeric containment for "low-high" style options
// when the raw value is purely numeric (e.g. "30" matches "25-34").
func validateSelect(q model.QuestionDefinition, trimmed string) ValidationResult {
	for _, opt := range q.Options {
		if strings.EqualFold(trimmed, opt) {
			return accept(model.OptionValue(opt))
		}
	}

	if n, err := strconv.Atoi(trimmed); err == nil {
		for _, opt := range q.Options {
			low, high, ok := parseRangeOption(opt)
			if ok && low <= n && n <= high {
				return accept(model.OptionValue(opt))
			}
		}
	}

	return reject(fmt.Sprintf("the answer is not one of the valid options: %s", strings.Join(q.Options, ", ")))
}

func parseRangeOption(opt string) (low, high int, ok bool) {
	parts := strings.SplitN(opt, "-", 2)
	if len(parts) != 2 {
		return 0, 0, false
	}
	low, err := strconv.Atoi(parts[0])
	if err != nil {
		return 0, 0, false
	}
	high, err = strconv.Atoi(parts[1])
	if err != nil {
		return 0, 0, false
	}
	return low, high, true
}

func accept(v *model.AnswerValue) ValidationResult {
	return ValidationResult{Status: StatusAccepted, Value: v}
}

func reject(reason string) ValidationResult {
	return ValidationResult{Status: StatusRejected, Reason: reason}
}
