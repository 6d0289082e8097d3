package domain

import (
	"fmt"
	"time"
)

// AnswerStatus is the review state of an answer
type AnswerStatus string

const (
	AnswerStatusPending   AnswerStatus = "PENDING"
	AnswerStatusGenerated AnswerStatus = "GENERATED"
	AnswerStatusConfirmed AnswerStatus = "CONFIRMED"
	AnswerStatusRejected  AnswerStatus = "REJECTED"
	AnswerStatusManual    AnswerStatus = "MANUAL"
)

// Answerability classifies whether the retrieved context sufficed to answer
type Answerability string

const (
	AnswerabilityYes     Answerability = "yes"
	AnswerabilityPartial Answerability = "partial"
	AnswerabilityNo      Answerability = "no"
	AnswerabilityUnknown Answerability = "unknown"
)

// DefaultConfidence is used when a model response carries no parsable score
const DefaultConfidence = 0.5

// ParsedAnswer is the display text and annotations extracted from a raw model response
type ParsedAnswer struct {
	Text          string
	Confidence    float64
	Answerability Answerability
}

// Answer is the stored result of answer generation for one question.
// VariantA and VariantB keep the raw candidate answers for audit.
type Answer struct {
	ID            string        `json:"id"`
	QuestionID    string        `json:"question_id"`
	AIAnswer      string        `json:"ai_answer"`
	VariantA      string        `json:"answer_variant_a,omitempty"`
	VariantB      string        `json:"answer_variant_b,omitempty"`
	ManualAnswer  string        `json:"manual_answer"`
	Citations     []Citation    `json:"citations"`
	Confidence    float64       `json:"confidence"`
	Answerability Answerability `json:"is_answerable"`
	Status        AnswerStatus  `json:"status"`
	CreatedAt     time.Time     `json:"created_at"`
}

// ValidateAnswer validates an Answer instance
func ValidateAnswer(a *Answer) error {
	if a == nil {
		return fmt.Errorf("answer cannot be nil")
	}

	if a.ID == "" {
		return fmt.Errorf("answer ID is required")
	}

	if a.QuestionID == "" {
		return fmt.Errorf("answer QuestionID is required")
	}

	if a.Confidence < 0 || a.Confidence > 1 {
		return fmt.Errorf("answer Confidence must be within [0, 1]: %v", a.Confidence)
	}

	if !IsValidAnswerability(a.Answerability) {
		return fmt.Errorf("answer Answerability is invalid: %s", a.Answerability)
	}

	if !IsValidAnswerStatus(a.Status) {
		return fmt.Errorf("answer Status is invalid: %s", a.Status)
	}

	for i, c := range a.Citations {
		if c.Num != i+1 {
			return fmt.Errorf("answer citation %d has number %d", i, c.Num)
		}
	}

	return nil
}

// IsValidAnswerStatus checks if an AnswerStatus is valid
func IsValidAnswerStatus(s AnswerStatus) bool {
	switch s {
	case AnswerStatusPending, AnswerStatusGenerated, AnswerStatusConfirmed,
		AnswerStatusRejected, AnswerStatusManual:
		return true
	}
	return false
}

// IsValidAnswerability checks if an Answerability is valid
func IsValidAnswerability(a Answerability) bool {
	switch a {
	case AnswerabilityYes, AnswerabilityPartial, AnswerabilityNo, AnswerabilityUnknown:
		return true
	}
	return false
}

// AnswerStatuses lists every review status in workflow order
func AnswerStatuses() []AnswerStatus {
	return []AnswerStatus{
		AnswerStatusPending,
		AnswerStatusGenerated,
		AnswerStatusConfirmed,
		AnswerStatusRejected,
		AnswerStatusManual,
	}
}
