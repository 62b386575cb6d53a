package engine

import (
	"context"
	"fmt"
	"strings"

	"chatform/internal/catalog"
	"chatform/internal/model"
)

// Extractor maps a user utterance plus conversation context to
// structured candidate answers and an action request.
type Extractor interface {
	Extract(ctx context.Context, questions []model.QuestionDefinition, answers map[string]*model.AnswerValue, history []model.Turn, utterance string) (*model.ExtractionOutcome, error)
}

// Prompter phrases the assistant side of the conversation
type Prompter interface {
	Greeting(ctx context.Context, first model.QuestionDefinition) string
	NextQuestions(ctx context.Context, next []model.QuestionDefinition, history []model.Turn) string
	Clarification(ctx context.Context, q model.QuestionDefinition, segment, reason string, history []model.Turn) string
}

// ReplyKind labels what a turn produced
type ReplyKind string

const (
	ReplyClarification ReplyKind = "clarification"
	ReplyAskNext       ReplyKind = "ask_next"
	ReplyConfirmExit   ReplyKind = "confirm_exit"
	ReplyAllDone       ReplyKind = "all_done"
	ReplyEnded         ReplyKind = "ended"
	ReplyError         ReplyKind = "error"
)

// TurnReply is the orchestrator's answer to one user turn
type TurnReply struct {
	Kind            ReplyKind `json:"kind"`
	Messages        []string  `json:"messages"`
	Answered        int       `json:"answered"`
	Total           int       `json:"total"`
	PendingRequired int       `json:"pending_required"`
}

const (
	extractHistoryWindow = 8
	nudgeHistoryWindow   = 4
	clarifyHistoryWindow = 2
	askBatchLimit        = 2
)

var exitPhrases = []string{"結束問卷", "完成問卷", "結束", "完成", "我想結束", "不用了", "quit", "exit", "done"}

var affirmatives = []string{"是", "yes"}

const (
	msgAllDone     = "感謝您的配合！所有問題都已完成。您可以說「結束」來提交問卷。"
	msgNoChange    = "我沒有從您的回覆中獲得新的資訊。"
	msgEnded       = "好的，感謝您的參與。問卷已結束。"
	msgSessionOver = "問卷已結束，感謝您的參與。"
	msgTurnError   = "抱歉，我暫時無法理解您的回覆，請再說一次。"
	msgConfirmFmt  = "您還有 %d 個重要問題尚未回答，確定要現在結束嗎？ (是/否)"
	msgProgressFmt = "目前進度：%d/%d 題已完成。"
)

// Orchestrator runs the conversation state machine over one session.
// It is not safe for concurrent use; callers serialize per session.
type Orchestrator struct {
	cat       *catalog.Catalog
	rules     *RuleEngine
	tracker   *Tracker
	sess      *model.Session
	extractor Extractor
	prompter  Prompter
}

func NewOrchestrator(cat *catalog.Catalog, rules *RuleEngine, sess *model.Session, ex Extractor, pr Prompter) *Orchestrator {
	return &Orchestrator{
		cat:       cat,
		rules:     rules,
		tracker:   NewTracker(cat, rules, sess),
		sess:      sess,
		extractor: ex,
		prompter:  pr,
	}
}

// Session exposes the underlying session for persistence
func (o *Orchestrator) Session() *model.Session { return o.sess }

// Tracker exposes progress bookkeeping for transports
func (o *Orchestrator) Tracker() *Tracker { return o.tracker }

// Greeting opens the conversation with the first pending question and
// records it in the transcript.
func (o *Orchestrator) Greeting(ctx context.Context) string {
	next := o.tracker.PendingOrdered(1)
	var first model.QuestionDefinition
	if len(next) > 0 {
		first = next[0]
	}
	msg := o.prompter.Greeting(ctx, first)
	o.sess.AppendTurn(model.RoleSystem, msg)
	return msg
}

// ProcessTurn advances the state machine by one user utterance
func (o *Orchestrator) ProcessTurn(ctx context.Context, utterance string) TurnReply {
	utterance = strings.TrimSpace(utterance)

	if o.sess.Status == model.SessionEnded {
		return o.reply(ReplyEnded, msgSessionOver)
	}

	o.sess.AppendTurn(model.RoleUser, utterance)

	if o.sess.Status == model.SessionConfirmExit {
		return o.resolveExitConfirmation(ctx, utterance)
	}

	if isExitPhrase(utterance) {
		return o.requestExit()
	}

	outcome, err := o.extractor.Extract(ctx,
		o.cat.Questions(),
		o.sess.Answers,
		o.sess.RecentTurns(extractHistoryWindow),
		utterance,
	)
	if err != nil || outcome == nil {
		return o.systemReply(ReplyError, msgTurnError)
	}

	switch outcome.Action {
	case model.ActionError:
		if outcome.Reasoning != "" {
			return o.systemReply(ReplyError, msgTurnError, outcome.Reasoning)
		}
		return o.systemReply(ReplyError, msgTurnError)
	case model.ActionFinish:
		o.applyExtractions(ctx, outcome.Extracted)
		o.tracker.Recompute()
		return o.requestExit()
	}

	clarifications := o.applyExtractions(ctx, outcome.Extracted)
	notices := o.tracker.Recompute()

	if len(clarifications) > 0 {
		msgs := append(notices, clarifications...)
		return o.systemReply(ReplyClarification, msgs...)
	}

	if o.tracker.IsComplete() {
		msgs := append(notices, msgAllDone)
		return o.systemReply(ReplyAllDone, msgs...)
	}

	// A no_change turn still gets a nudge toward the open questions
	// rather than silence
	if outcome.Action == model.ActionNoChange && len(outcome.Extracted) == 0 {
		notices = append([]string{msgNoChange}, notices...)
	}
	next := o.tracker.PendingOrdered(askBatchLimit)
	ask := o.prompter.NextQuestions(ctx, next, o.sess.RecentTurns(nudgeHistoryWindow))
	msgs := append(notices, ask)
	return o.systemReply(ReplyAskNext, msgs...)
}

// applyExtractions validates and stores candidate answers in catalog
// order so that trigger questions land before their dependents within
// a single turn. Rejections come back as clarification messages.
func (o *Orchestrator) applyExtractions(ctx context.Context, extracted map[string]string) []string {
	var clarifications []string
	for _, q := range o.cat.Questions() {
		raw, ok := extracted[q.ID]
		if !ok {
			continue
		}
		res := Validate(q, raw, o.rules, o.sess.Answers)
		switch res.Status {
		case StatusAccepted:
			o.tracker.Apply(q.ID, res.Value)
		case StatusRejected:
			msg := o.prompter.Clarification(ctx, q, raw, res.Reason, o.sess.RecentTurns(clarifyHistoryWindow))
			clarifications = append(clarifications, msg)
		}
	}
	return clarifications
}

// requestExit either ends immediately (nothing required is open) or
// asks the user to confirm abandoning required questions.
func (o *Orchestrator) requestExit() TurnReply {
	required := o.tracker.PendingRequiredCount()
	if required == 0 {
		return o.end()
	}
	o.sess.Status = model.SessionConfirmExit
	return o.systemReply(ReplyConfirmExit, fmt.Sprintf(msgConfirmFmt, required))
}

func (o *Orchestrator) resolveExitConfirmation(ctx context.Context, utterance string) TurnReply {
	if isAffirmative(utterance) {
		return o.end()
	}
	o.sess.Status = model.SessionActive
	next := o.tracker.PendingOrdered(askBatchLimit)
	progress := fmt.Sprintf(msgProgressFmt, o.tracker.AnsweredCount(), o.cat.Len())
	ask := o.prompter.NextQuestions(ctx, next, o.sess.RecentTurns(nudgeHistoryWindow))
	return o.systemReply(ReplyAskNext, progress, ask)
}

func (o *Orchestrator) end() TurnReply {
	o.sess.End()
	return o.systemReply(ReplyEnded, msgEnded)
}

func (o *Orchestrator) systemReply(kind ReplyKind, msgs ...string) TurnReply {
	for _, m := range msgs {
		o.sess.AppendTurn(model.RoleSystem, m)
	}
	return o.reply(kind, msgs...)
}

func (o *Orchestrator) reply(kind ReplyKind, msgs ...string) TurnReply {
	return TurnReply{
		Kind:            kind,
		Messages:        msgs,
		Answered:        o.tracker.AnsweredCount(),
		Total:           o.cat.Len(),
		PendingRequired: o.tracker.PendingRequiredCount(),
	}
}

func isExitPhrase(s string) bool {
	s = strings.ToLower(strings.TrimSpace(s))
	for _, p := range exitPhrases {
		if s == p {
			return true
		}
	}
	return false
}

func isAffirmative(s string) bool {
	s = strings.ToLower(strings.TrimSpace(s))
	for _, p := range affirmatives {
		if s == p {
			return true
		}
	}
	return false
}
