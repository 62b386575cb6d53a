package engine

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"chatform/internal/catalog"
	"chatform/internal/model"
)

// fakeExtractor replays scripted outcomes in order
type fakeExtractor struct {
	outcomes []*model.ExtractionOutcome
	err      error
	calls    int
}

func (f *fakeExtractor) Extract(ctx context.Context, questions []model.QuestionDefinition, answers map[string]*model.AnswerValue, history []model.Turn, utterance string) (*model.ExtractionOutcome, error) {
	if f.err != nil {
		return nil, f.err
	}
	i := f.calls
	f.calls++
	if i < len(f.outcomes) {
		return f.outcomes[i], nil
	}
	return &model.ExtractionOutcome{Action: model.ActionNoChange}, nil
}

// fakePrompter returns deterministic strings so replies can be asserted
type fakePrompter struct{}

func (fakePrompter) Greeting(ctx context.Context, first model.QuestionDefinition) string {
	return "greeting: " + first.Prompt
}

func (fakePrompter) NextQuestions(ctx context.Context, next []model.QuestionDefinition, history []model.Turn) string {
	if len(next) == 0 {
		return "ask: nothing"
	}
	return "ask: " + next[0].ID
}

func (fakePrompter) Clarification(ctx context.Context, q model.QuestionDefinition, segment, reason string, history []model.Turn) string {
	return fmt.Sprintf("clarify %s (said %q): %s", q.ID, segment, reason)
}

func newOrchestrator(ex Extractor) (*Orchestrator, *model.Session) {
	sess := &model.Session{Status: model.SessionActive}
	o := NewOrchestrator(catalog.Default(), NewRuleEngine(DefaultRules()), sess, ex, fakePrompter{})
	return o, sess
}

func extractOnce(extracted map[string]string) *fakeExtractor {
	return &fakeExtractor{outcomes: []*model.ExtractionOutcome{
		{Action: model.ActionContinue, Extracted: extracted},
	}}
}

func TestGreeting(t *testing.T) {
	o, sess := newOrchestrator(&fakeExtractor{})

	msg := o.Greeting(context.Background())

	assert.Contains(t, msg, "greeting: ")
	require.Len(t, sess.Turns, 1)
	assert.Equal(t, model.RoleSystem, sess.Turns[0].Role)
}

func TestProcessTurn_AcceptsAnswerAndAsksNext(t *testing.T) {
	o, sess := newOrchestrator(extractOnce(map[string]string{"name": "王小明"}))

	reply := o.ProcessTurn(context.Background(), "我叫王小明")

	assert.Equal(t, ReplyAskNext, reply.Kind)
	assert.Equal(t, 1, reply.Answered)
	assert.Equal(t, 7, reply.Total)
	assert.Equal(t, "王小明", sess.Answers["name"].Text)
	// The user turn and the nudge are both on the transcript
	assert.GreaterOrEqual(t, len(sess.Turns), 2)
}

func TestProcessTurn_MultipleAnswersOneTurn(t *testing.T) {
	o, sess := newOrchestrator(extractOnce(map[string]string{
		"name":      "王小明",
		"age_group": "30",
	}))

	reply := o.ProcessTurn(context.Background(), "我叫王小明，今年30歲")

	assert.Equal(t, 2, reply.Answered)
	assert.Equal(t, "25-34", sess.Answers["age_group"].Text)
}

func TestProcessTurn_RejectedValueYieldsClarification(t *testing.T) {
	o, sess := newOrchestrator(extractOnce(map[string]string{"product_satisfaction": "9"}))

	reply := o.ProcessTurn(context.Background(), "我給9分")

	assert.Equal(t, ReplyClarification, reply.Kind)
	require.NotEmpty(t, reply.Messages)
	assert.Contains(t, reply.Messages[len(reply.Messages)-1], "clarify product_satisfaction")
	// The rejected segment is quoted back to the user
	assert.Contains(t, reply.Messages[len(reply.Messages)-1], `"9"`)
	assert.Nil(t, sess.Answers["product_satisfaction"])
}

func TestProcessTurn_LowSatisfactionActivatesFollowUp(t *testing.T) {
	o, sess := newOrchestrator(extractOnce(map[string]string{"product_satisfaction": "1"}))

	reply := o.ProcessTurn(context.Background(), "非常不滿意")

	assert.Equal(t, ReplyAskNext, reply.Kind)
	assert.True(t, sess.Pending["detailed_dissatisfaction_reason"])
	// The rule notice precedes the nudge
	require.GreaterOrEqual(t, len(reply.Messages), 2)
}

func TestProcessTurn_TriggerAndDependentSameTurn(t *testing.T) {
	// The trigger answer is applied before the dependent one even
	// though both arrive in the same extraction
	o, sess := newOrchestrator(extractOnce(map[string]string{
		"product_satisfaction":            "2",
		"detailed_dissatisfaction_reason": "電池續航太差",
	}))

	o.ProcessTurn(context.Background(), "不滿意，電池續航太差")

	assert.Equal(t, "電池續航太差", sess.Answers["detailed_dissatisfaction_reason"].Text)
	assert.False(t, sess.Pending["detailed_dissatisfaction_reason"])
}

func TestProcessTurn_AllDone(t *testing.T) {
	o, _ := newOrchestrator(extractOnce(map[string]string{
		"name":                 "王小明",
		"email":                "user@example.com",
		"age_group":            "25-34",
		"product_satisfaction": "5",
		"feedback_comments":    "很好用",
		"allow_follow_up":      "是",
	}))

	reply := o.ProcessTurn(context.Background(), "一次回答全部")

	assert.Equal(t, ReplyAllDone, reply.Kind)
	assert.Contains(t, reply.Messages[len(reply.Messages)-1], "所有問題都已完成")
}

func TestProcessTurn_ExitWithRequiredPending(t *testing.T) {
	o, sess := newOrchestrator(&fakeExtractor{})

	reply := o.ProcessTurn(context.Background(), "結束")

	assert.Equal(t, ReplyConfirmExit, reply.Kind)
	assert.Equal(t, model.SessionConfirmExit, sess.Status)
	assert.Contains(t, reply.Messages[0], "確定要現在結束嗎")
}

func TestProcessTurn_ConfirmExitAffirmative(t *testing.T) {
	o, sess := newOrchestrator(&fakeExtractor{})

	o.ProcessTurn(context.Background(), "結束")
	reply := o.ProcessTurn(context.Background(), "是")

	assert.Equal(t, ReplyEnded, reply.Kind)
	assert.Equal(t, model.SessionEnded, sess.Status)
	require.NotNil(t, sess.EndedAt)
}

func TestProcessTurn_ConfirmExitDeclined(t *testing.T) {
	o, sess := newOrchestrator(&fakeExtractor{})

	o.ProcessTurn(context.Background(), "quit")
	reply := o.ProcessTurn(context.Background(), "否")

	assert.Equal(t, ReplyAskNext, reply.Kind)
	assert.Equal(t, model.SessionActive, sess.Status)
	// The progress line comes before the nudge
	require.Len(t, reply.Messages, 2)
	assert.Contains(t, reply.Messages[0], "目前進度")
}

func TestProcessTurn_ExitWithoutRequiredPendingEndsImmediately(t *testing.T) {
	o, sess := newOrchestrator(extractOnce(map[string]string{
		"name":      "王小明",
		"age_group": "25-34",
	}))

	o.ProcessTurn(context.Background(), "王小明，25-34")
	reply := o.ProcessTurn(context.Background(), "結束問卷")

	assert.Equal(t, ReplyEnded, reply.Kind)
	assert.Equal(t, model.SessionEnded, sess.Status)
}

func TestProcessTurn_ActionFinishAppliesExtractionsFirst(t *testing.T) {
	o, sess := newOrchestrator(&fakeExtractor{outcomes: []*model.ExtractionOutcome{
		{
			Action: model.ActionFinish,
			Extracted: map[string]string{
				"name":      "王小明",
				"age_group": "25-34",
			},
		},
	}})

	reply := o.ProcessTurn(context.Background(), "我叫王小明，25-34歲，就這樣吧")

	assert.Equal(t, "王小明", sess.Answers["name"].Text)
	assert.Equal(t, ReplyEnded, reply.Kind)
}

func TestProcessTurn_ExtractorError(t *testing.T) {
	o, _ := newOrchestrator(&fakeExtractor{err: errors.New("boom")})

	reply := o.ProcessTurn(context.Background(), "hello")

	assert.Equal(t, ReplyError, reply.Kind)
	require.Len(t, reply.Messages, 1)
}

func TestProcessTurn_EndedSessionStaysEnded(t *testing.T) {
	o, sess := newOrchestrator(extractOnce(map[string]string{
		"name":      "王小明",
		"age_group": "25-34",
	}))

	o.ProcessTurn(context.Background(), "王小明，25-34")
	o.ProcessTurn(context.Background(), "完成")
	require.Equal(t, model.SessionEnded, sess.Status)

	turnsBefore := len(sess.Turns)
	reply := o.ProcessTurn(context.Background(), "還在嗎")

	assert.Equal(t, ReplyEnded, reply.Kind)
	// Ended sessions do not grow the transcript
	assert.Equal(t, turnsBefore, len(sess.Turns))
}

func TestProcessTurn_NoChangeStillNudges(t *testing.T) {
	o, _ := newOrchestrator(&fakeExtractor{outcomes: []*model.ExtractionOutcome{
		{Action: model.ActionNoChange},
	}})

	reply := o.ProcessTurn(context.Background(), "今天天氣不錯")

	assert.Equal(t, ReplyAskNext, reply.Kind)
	require.Len(t, reply.Messages, 2)
	assert.Equal(t, msgNoChange, reply.Messages[0])
	assert.Contains(t, reply.Messages[1], "ask: ")
}

func TestProcessTurn_OracleErrorSurfacesReasoning(t *testing.T) {
	o, _ := newOrchestrator(&fakeExtractor{outcomes: []*model.ExtractionOutcome{
		{Action: model.ActionError, Reasoning: "malformed extraction response"},
	}})

	reply := o.ProcessTurn(context.Background(), "???")

	assert.Equal(t, ReplyError, reply.Kind)
	require.Len(t, reply.Messages, 2)
	assert.Equal(t, "malformed extraction response", reply.Messages[1])
}
