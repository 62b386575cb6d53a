package catalog

import (
	"fmt"
	"sort"

	"chatform/internal/model"
)

// Catalog is the immutable ordered set of questionnaire questions.
// It is loaded once at process start and never mutated afterwards.
type Catalog struct {
	defs []model.QuestionDefinition
	byID map[string]int
}

// New builds a catalog and checks its invariants: ids must be unique
// and option lists appear exactly on select-typed questions.
func New(defs []model.QuestionDefinition) (*Catalog, error) {
	if len(defs) == 0 {
		return nil, fmt.Errorf("catalog: no questions")
	}

	ordered := make([]model.QuestionDefinition, len(defs))
	copy(ordered, defs)
	sort.SliceStable(ordered, func(i, j int) bool {
		return ordered[i].Priority < ordered[j].Priority
	})

	byID := make(map[string]int, len(ordered))
	for i, q := range ordered {
		if q.ID == "" {
			return nil, fmt.Errorf("catalog: question %d has empty id", i)
		}
		if _, dup := byID[q.ID]; dup {
			return nil, fmt.Errorf("catalog: duplicate question id %q", q.ID)
		}
		if q.Type == model.QuestionTypeSelect && len(q.Options) == 0 {
			return nil, fmt.Errorf("catalog: select question %q has no options", q.ID)
		}
		if q.Type != model.QuestionTypeSelect && len(q.Options) > 0 {
			return nil, fmt.Errorf("catalog: non-select question %q declares options", q.ID)
		}
		byID[q.ID] = i
	}

	return &Catalog{defs: ordered, byID: byID}, nil
}

// Questions returns the questions in ask order (ascending priority)
func (c *Catalog) Questions() []model.QuestionDefinition {
	out := make([]model.QuestionDefinition, len(c.defs))
	copy(out, c.defs)
	return out
}

// ByID looks up a question definition
func (c *Catalog) ByID(id string) (model.QuestionDefinition, bool) {
	i, ok := c.byID[id]
	if !ok {
		return model.QuestionDefinition{}, false
	}
	return c.defs[i], true
}

// Headers returns the question ids in catalog order, used as the
// header row of the tabular export
func (c *Catalog) Headers() []string {
	out := make([]string, len(c.defs))
	for i, q := range c.defs {
		out[i] = q.ID
	}
	return out
}

// Len returns the number of questions
func (c *Catalog) Len() int {
	return len(c.defs)
}
