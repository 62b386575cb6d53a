package model

import "time"

// Submission is one completed questionnaire, persisted at session end
type Submission struct {
	ID        string            `json:"id" bson:"_id,omitempty"`
	SessionID string            `json:"sessionId" bson:"sessionId"`
	Values    map[string]string `json:"values" bson:"values"` // question id -> rendered cell, "" for absent
	SavedAt   time.Time         `json:"savedAt" bson:"savedAt"`
}
