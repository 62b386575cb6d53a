package engine

import (
	"fmt"

	"chatform/internal/model"
)

// ConditionalRule activates a dependent question while a predicate over
// the trigger question's answer holds. Rules are plain data so new
// conditional questions can be added without touching engine logic.
type ConditionalRule struct {
	TriggerID   string
	Predicate   func(v *model.AnswerValue) bool
	DependentID string
}

// DefaultRules returns the rule table for the built-in questionnaire:
// a low product satisfaction score (1 or 2) makes the dissatisfaction
// reason question required.
func DefaultRules() []ConditionalRule {
	return []ConditionalRule{
		{
			TriggerID: "product_satisfaction",
			Predicate: func(v *model.AnswerValue) bool {
				return v != nil && v.Kind == model.KindNumber && (v.Number == 1 || v.Number == 2)
			},
			DependentID: "detailed_dissatisfaction_reason",
		},
	}
}

// RuleEngine recomputes conditional requiredness from the current answers
type RuleEngine struct {
	rules []ConditionalRule
}

// NewRuleEngine creates a rule engine over a rule table
func NewRuleEngine(rules []ConditionalRule) *RuleEngine {
	return &RuleEngine{rules: rules}
}

// Rules returns the rule table
func (e *RuleEngine) Rules() []ConditionalRule {
	return e.rules
}

// IsDependent reports whether a question id is the dependent of any rule
func (e *RuleEngine) IsDependent(id string) bool {
	for _, r := range e.rules {
		if r.DependentID == id {
			return true
		}
	}
	return false
}

// IsTriggered reports whether a dependent question is currently active,
// i.e. its rule's predicate holds over the stored trigger answer.
// Non-dependent questions are always considered active.
func (e *RuleEngine) IsTriggered(id string, answers map[string]*model.AnswerValue) bool {
	for _, r := range e.rules {
		if r.DependentID == id {
			return r.Predicate(answers[r.TriggerID])
		}
	}
	return true
}

// Recompute applies the rule table to the session: active dependents
// without an answer enter the pending set; inactive dependents leave it
// and any stale stored answer is discarded. Idempotent.
func (e *RuleEngine) Recompute(s *model.Session) []string {
	var notices []string
	for _, r := range e.rules {
		if r.Predicate(s.Answers[r.TriggerID]) {
			if s.Answers[r.DependentID] == nil && !s.Pending[r.DependentID] {
				s.Pending[r.DependentID] = true
				notices = append(notices, fmt.Sprintf("question %q is now required", r.DependentID))
			}
			continue
		}
		if s.Pending[r.DependentID] {
			delete(s.Pending, r.DependentID)
			notices = append(notices, fmt.Sprintf("question %q no longer applies", r.DependentID))
		}
		if s.Answers[r.DependentID] != nil {
			delete(s.Answers, r.DependentID)
			notices = append(notices, fmt.Sprintf("previous answer for %q was discarded", r.DependentID))
		}
	}
	return notices
}
