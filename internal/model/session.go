package model

import "time"

type SessionStatus string

const (
	SessionActive      SessionStatus = "active"
	SessionConfirmExit SessionStatus = "confirm_exit" // Waiting for the user to confirm an early exit
	SessionEnded       SessionStatus = "ended"
)

// Role tags one utterance in the conversation log
type Role string

const (
	RoleSystem Role = "system"
	RoleUser   Role = "user"
)

// Turn is one utterance in the append-only conversation log
type Turn struct {
	Role    Role      `json:"role" bson:"role"`
	Content string    `json:"content" bson:"content"`
	At      time.Time `json:"at" bson:"at"`
}

// Session is the full mutable state of one questionnaire conversation.
// It is owned by a single orchestrator while a turn is processed and
// snapshotted to the session cache between turns.
type Session struct {
	ID        string                  `json:"id" bson:"_id,omitempty"`
	Status    SessionStatus           `json:"status" bson:"status"`
	Answers   map[string]*AnswerValue `json:"answers" bson:"answers"`
	Pending   map[string]bool         `json:"pending" bson:"pending"` // Question ids still needing an answer
	Turns     []Turn                  `json:"turns" bson:"turns"`
	Saved     bool                    `json:"saved" bson:"saved"` // Final answer set handed to the sinks
	StartedAt time.Time               `json:"startedAt" bson:"startedAt"`
	EndedAt   *time.Time              `json:"endedAt,omitempty" bson:"endedAt,omitempty"`
}

// AppendTurn records one utterance in the conversation log
func (s *Session) AppendTurn(role Role, content string) {
	s.Turns = append(s.Turns, Turn{Role: role, Content: content, At: time.Now()})
}

// End marks the session finished; idempotent
func (s *Session) End() {
	if s.Status == SessionEnded {
		return
	}
	s.Status = SessionEnded
	now := time.Now()
	s.EndedAt = &now
}

// RecentTurns returns the trailing window of the conversation log
func (s *Session) RecentTurns(n int) []Turn {
	if len(s.Turns) <= n {
		return s.Turns
	}
	return s.Turns[len(s.Turns)-n:]
}
