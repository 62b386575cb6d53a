package model

// ActionRequest is the extraction oracle's suggested next step
type ActionRequest string

const (
	ActionContinue ActionRequest = "continue"
	ActionFinish   ActionRequest = "finish"
	ActionNoChange ActionRequest = "no_change"
	ActionError    ActionRequest = "error"
)

// ExtractionOutcome is the typed result of one extraction oracle call.
// A malformed oracle response arrives here as ActionError; the raw
// per-question values are already coerced to strings.
type ExtractionOutcome struct {
	Action    ActionRequest     `json:"action"`
	Extracted map[string]string `json:"extracted,omitempty"` // question id -> raw value
	Reasoning string            `json:"reasoning,omitempty"`
}
