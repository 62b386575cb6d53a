package model

import "strconv"

// AnswerKind tags the payload of a normalized answer value
type AnswerKind string

const (
	KindNumber  AnswerKind = "number"
	KindOption  AnswerKind = "option"
	KindBoolean AnswerKind = "boolean"
	KindText    AnswerKind = "text"
)

// AnswerValue is a normalized answer as produced by the validator.
// Absence of an answer is represented by a nil *AnswerValue.
type AnswerValue struct {
	Kind   AnswerKind `json:"kind" bson:"kind"`
	Number int        `json:"number,omitempty" bson:"number,omitempty"`
	Text   string     `json:"text,omitempty" bson:"text,omitempty"`
}

func NumberValue(n int) *AnswerValue {
	return &AnswerValue{Kind: KindNumber, Number: n}
}

func OptionValue(s string) *AnswerValue {
	return &AnswerValue{Kind: KindOption, Text: s}
}

func BooleanValue(s string) *AnswerValue {
	return &AnswerValue{Kind: KindBoolean, Text: s}
}

func TextValue(s string) *AnswerValue {
	return &AnswerValue{Kind: KindText, Text: s}
}

// String renders the value as a single cell for tabular export
func (v *AnswerValue) String() string {
	if v == nil {
		return ""
	}
	if v.Kind == KindNumber {
		return strconv.Itoa(v.Number)
	}
	return v.Text
}

// Equal compares two values; two nils are equal
func (v *AnswerValue) Equal(o *AnswerValue) bool {
	if v == nil || o == nil {
		return v == o
	}
	return v.Kind == o.Kind && v.Number == o.Number && v.Text == o.Text
}
