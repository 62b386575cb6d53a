package service

import (
	"context"
	"errors"
	"log"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"chatform/internal/cache"
	"chatform/internal/catalog"
	"chatform/internal/engine"
	"chatform/internal/model"
)

var ErrSessionNotFound = errors.New("session not found")

const msgSaveFailed = "抱歉，您的回答目前無法寫入後端儲存。我們已保留這份會話，稍後會再嘗試儲存。"

// SessionService owns the lifecycle of questionnaire conversations:
// creation, turn processing and the exactly-once handoff of a finished
// session to the submission service.
type SessionService struct {
	cat         *catalog.Catalog
	rules       *engine.RuleEngine
	sessions    cache.SessionCache
	extractor   engine.Extractor
	prompter    engine.Prompter
	submissions *SubmissionService
}

func NewSessionService(cat *catalog.Catalog, rules *engine.RuleEngine, sessions cache.SessionCache, ex engine.Extractor, pr engine.Prompter, subs *SubmissionService) *SessionService {
	return &SessionService{
		cat:         cat,
		rules:       rules,
		sessions:    sessions,
		extractor:   ex,
		prompter:    pr,
		submissions: subs,
	}
}

// Create starts a new session and returns it along with the greeting
func (s *SessionService) Create(ctx context.Context) (*model.Session, string, error) {
	sess := &model.Session{
		ID:        uuid.New().String(),
		Status:    model.SessionActive,
		StartedAt: time.Now(),
	}

	orch := engine.NewOrchestrator(s.cat, s.rules, sess, s.extractor, s.prompter)
	greeting := orch.Greeting(ctx)

	if err := s.sessions.Set(ctx, sess); err != nil {
		return nil, "", err
	}
	return sess, greeting, nil
}

// Get loads a session by id
func (s *SessionService) Get(ctx context.Context, id string) (*model.Session, error) {
	sess, err := s.sessions.Get(ctx, id)
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, ErrSessionNotFound
		}
		return nil, err
	}
	return sess, nil
}

// ProcessMessage advances a session by one user message. When the turn
// ends the session, the answers are handed to the submission service
// exactly once; the Saved flag guards against duplicate rows.
func (s *SessionService) ProcessMessage(ctx context.Context, id, message string) (*model.Session, engine.TurnReply, error) {
	sess, err := s.Get(ctx, id)
	if err != nil {
		return nil, engine.TurnReply{}, err
	}

	orch := engine.NewOrchestrator(s.cat, s.rules, sess, s.extractor, s.prompter)
	reply := orch.ProcessTurn(ctx, message)

	if sess.Status == model.SessionEnded && !sess.Saved {
		if _, err := s.submissions.Save(ctx, sess); err != nil {
			// The conversation already ended for the user; log, tell the
			// user, and keep the session so an operator can re-drive the
			// save.
			log.Printf("saving submission for session %s: %v", sess.ID, err)
			sess.AppendTurn(model.RoleSystem, msgSaveFailed)
			reply.Messages = append(reply.Messages, msgSaveFailed)
		} else {
			sess.Saved = true
		}
	}

	if err := s.sessions.Set(ctx, sess); err != nil {
		return nil, engine.TurnReply{}, err
	}
	return sess, reply, nil
}
