package service

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"chatform/internal/catalog"
	"chatform/internal/model"
)

// recordingSink captures appended records in memory
type recordingSink struct {
	header []string
	rows   [][]string
	err    error
}

func (s *recordingSink) AppendRecord(ctx context.Context, header []string, row []string) error {
	if s.err != nil {
		return s.err
	}
	s.header = header
	s.rows = append(s.rows, row)
	return nil
}

func endedSession() *model.Session {
	return &model.Session{
		ID:     "sess-1",
		Status: model.SessionEnded,
		Answers: map[string]*model.AnswerValue{
			"name":                 model.TextValue("王小明"),
			"age_group":            model.OptionValue("25-34"),
			"product_satisfaction": model.NumberValue(5),
			"allow_follow_up":      model.BooleanValue("是"),
		},
	}
}

func TestSave_RowFollowsCatalogOrder(t *testing.T) {
	cat := catalog.Default()
	snk := &recordingSink{}
	svc := NewSubmissionService(cat, nil, snk)

	sub, err := svc.Save(context.Background(), endedSession())

	require.NoError(t, err)
	assert.Equal(t, cat.Headers(), snk.header)
	require.Len(t, snk.rows, 1)

	// Unanswered questions come through as empty cells
	assert.Equal(t, []string{"王小明", "", "25-34", "5", "", "", "是"}, snk.rows[0])
	assert.Equal(t, "sess-1", sub.SessionID)
	assert.False(t, sub.SavedAt.IsZero())
}

func TestSave_SinkFailureDoesNotStarveOthers(t *testing.T) {
	cat := catalog.Default()
	broken := &recordingSink{err: errors.New("sheet unavailable")}
	healthy := &recordingSink{}
	svc := NewSubmissionService(cat, nil, broken, healthy)

	_, err := svc.Save(context.Background(), endedSession())

	assert.Error(t, err)
	assert.Len(t, healthy.rows, 1)
}

func TestSave_NoSinksNoRepo(t *testing.T) {
	svc := NewSubmissionService(catalog.Default(), nil)

	sub, err := svc.Save(context.Background(), endedSession())

	require.NoError(t, err)
	assert.Equal(t, "王小明", sub.Values["name"])
}

func TestList_NilRepo(t *testing.T) {
	svc := NewSubmissionService(catalog.Default(), nil)

	subs, err := svc.List(context.Background())

	require.NoError(t, err)
	assert.Empty(t, subs)
}
