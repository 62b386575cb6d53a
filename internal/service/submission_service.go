package service

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"chatform/internal/catalog"
	"chatform/internal/model"
	"chatform/internal/repository"
	"chatform/internal/sink"
)

// SubmissionService turns an ended session into a flat record and
// hands it to the submission repository plus every configured sink.
// The repo and sinks are each optional; the console runner uses sinks
// only, the server uses both.
type SubmissionService struct {
	cat   *catalog.Catalog
	repo  repository.SubmissionRepo
	sinks []sink.Sink
}

func NewSubmissionService(cat *catalog.Catalog, repo repository.SubmissionRepo, sinks ...sink.Sink) *SubmissionService {
	return &SubmissionService{cat: cat, repo: repo, sinks: sinks}
}

// Save persists a session's answers. Cells follow catalog order;
// unanswered questions become empty cells so every row has the same
// shape. Sink failures are accumulated, not short-circuited, so one
// broken sink cannot starve the others.
func (s *SubmissionService) Save(ctx context.Context, sess *model.Session) (*model.Submission, error) {
	values := make(map[string]string, s.cat.Len())
	for _, q := range s.cat.Questions() {
		if v := sess.Answers[q.ID]; v != nil {
			values[q.ID] = v.String()
		} else {
			values[q.ID] = ""
		}
	}

	sub := &model.Submission{
		SessionID: sess.ID,
		Values:    values,
		SavedAt:   time.Now(),
	}

	var errs []error
	if s.repo != nil {
		if err := s.repo.Create(ctx, sub); err != nil {
			errs = append(errs, fmt.Errorf("submission repo: %w", err))
		}
	}

	header := s.cat.Headers()
	row := s.Row(sub)
	for _, snk := range s.sinks {
		if err := snk.AppendRecord(ctx, header, row); err != nil {
			log.Printf("submission sink failed for session %s: %v", sess.ID, err)
			errs = append(errs, err)
		}
	}

	return sub, errors.Join(errs...)
}

// Row renders a submission as cells in catalog order
func (s *SubmissionService) Row(sub *model.Submission) []string {
	row := make([]string, 0, s.cat.Len())
	for _, id := range s.cat.Headers() {
		row = append(row, sub.Values[id])
	}
	return row
}

// List returns stored submissions, newest first
func (s *SubmissionService) List(ctx context.Context) ([]*model.Submission, error) {
	if s.repo == nil {
		return nil, nil
	}
	return s.repo.GetAll(ctx)
}
