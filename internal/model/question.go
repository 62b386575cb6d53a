package model

// QuestionType defines the type of questionnaire question
type QuestionType string

const (
	QuestionTypeText    QuestionType = "text"    // Free text
	QuestionTypeNumber  QuestionType = "number"  // Integer answer
	QuestionTypeSelect  QuestionType = "select"  // One of a fixed option list
	QuestionTypeBoolean QuestionType = "boolean" // 是/否
)

// ValidationRule defines how an extracted answer is validated
type ValidationRule string

const (
	RuleNone                ValidationRule = "none"
	RuleRequired            ValidationRule = "required"
	RuleRequiredIfTriggered ValidationRule = "required_if_triggered" // Required only while a trigger condition holds
	RuleRange1To5           ValidationRule = "range_1_5"
	RuleEmail               ValidationRule = "email"
	RuleYesNo               ValidationRule = "yes_no"
)

// QuestionDefinition is one immutable catalog entry
type QuestionDefinition struct {
	ID             string         `json:"id" bson:"id"`
	Prompt         string         `json:"prompt" bson:"prompt"`
	Type           QuestionType   `json:"type" bson:"type"`
	Options        []string       `json:"options,omitempty" bson:"options,omitempty"` // select only
	Rule           ValidationRule `json:"rule,omitempty" bson:"rule,omitempty"`
	Priority       int            `json:"priority" bson:"priority"`                                 // Lower = asked earlier
	MappingContext string         `json:"mappingContext,omitempty" bson:"mappingContext,omitempty"` // Extraction hint rendered into the oracle schema
}

// IsRequiredAlways reports whether the question is unconditionally required
func (q *QuestionDefinition) IsRequiredAlways() bool {
	return q.Rule == RuleRequired
}
