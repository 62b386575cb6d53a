package engine

import (
	"log"
	"sort"

	"chatform/internal/catalog"
	"chatform/internal/model"
)

// Tracker owns the answer store and progress bookkeeping of one session.
// All mutation goes through Apply; requiredness and pending membership
// are recomputed through the rule engine.
type Tracker struct {
	cat   *catalog.Catalog
	rules *RuleEngine
	sess  *model.Session
}

// NewTracker wraps a session. A fresh session (nil maps) is initialized:
// every question is pending except dependents of conditional rules,
// which only enter the pending set once their trigger fires.
func NewTracker(cat *catalog.Catalog, rules *RuleEngine, sess *model.Session) *Tracker {
	if sess.Answers == nil {
		sess.Answers = make(map[string]*model.AnswerValue)
	}
	if sess.Pending == nil {
		sess.Pending = make(map[string]bool, cat.Len())
		for _, q := range cat.Questions() {
			if !rules.IsDependent(q.ID) {
				sess.Pending[q.ID] = true
			}
		}
	}
	return &Tracker{cat: cat, rules: rules, sess: sess}
}

// Apply stores a validated value. It reports true only when a present
// value was newly set or actually differs from the stored one; a nil
// value or a repeat of the same value is a no-op for the change signal.
func (t *Tracker) Apply(id string, v *model.AnswerValue) bool {
	if v == nil {
		return false
	}
	old := t.sess.Answers[id]
	if v.Equal(old) {
		return false
	}
	t.sess.Answers[id] = v
	delete(t.sess.Pending, id)
	return true
}

// Recompute reapplies the conditional rules after answer changes
func (t *Tracker) Recompute() []string {
	return t.rules.Recompute(t.sess)
}

// IsComplete reports whether no question still needs an answer
func (t *Tracker) IsComplete() bool {
	return len(t.sess.Pending) == 0
}

// PendingRequiredCount counts pending questions that are currently required
func (t *Tracker) PendingRequiredCount() int {
	n := 0
	for id := range t.sess.Pending {
		q, ok := t.cat.ByID(id)
		if !ok {
			continue
		}
		if IsRequired(q, t.rules, t.sess.Answers) {
			n++
		}
	}
	return n
}

// AnsweredCount counts present answers. A conditional question whose
// trigger is not satisfied is excluded even if it still holds a stale
// value; the rule engine clears such values, this keeps the count
// correct regardless.
func (t *Tracker) AnsweredCount() int {
	n := 0
	for _, q := range t.cat.Questions() {
		if t.sess.Answers[q.ID] == nil {
			continue
		}
		if t.rules.IsDependent(q.ID) && !t.rules.IsTriggered(q.ID, t.sess.Answers) {
			continue
		}
		n++
	}
	return n
}

// PendingOrdered returns pending questions ordered required-first then
// by ascending priority, capped to limit (0 = no cap).
func (t *Tracker) PendingOrdered(limit int) []model.QuestionDefinition {
	var pending []model.QuestionDefinition
	for id := range t.sess.Pending {
		q, ok := t.cat.ByID(id)
		if !ok {
			// Pending ids come from the catalog; an unknown id here
			// means an upstream invariant was broken
			log.Printf("tracker: pending question %q not in catalog, skipping", id)
			continue
		}
		pending = append(pending, q)
	}

	sort.SliceStable(pending, func(i, j int) bool {
		ri := IsRequired(pending[i], t.rules, t.sess.Answers)
		rj := IsRequired(pending[j], t.rules, t.sess.Answers)
		if ri != rj {
			return ri
		}
		return pending[i].Priority < pending[j].Priority
	})

	if limit > 0 && len(pending) > limit {
		pending = pending[:limit]
	}
	return pending
}
