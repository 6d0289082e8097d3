package domain

import "fmt"

// DefaultSection is used for questions imported without a section
const DefaultSection = "General"

// Question is a single questionnaire item within a project
type Question struct {
	ID         string  `json:"id"`
	ProjectID  string  `json:"project_id"`
	Section    string  `json:"section"`
	Text       string  `json:"question_text"`
	OrderIndex int     `json:"order_index"`
	Answer     *Answer `json:"answer,omitempty"`
}

// NewQuestion creates a new Question
func NewQuestion(id, projectID, section, text string, orderIndex int) *Question {
	if section == "" {
		section = DefaultSection
	}
	return &Question{
		ID:         id,
		ProjectID:  projectID,
		Section:    section,
		Text:       text,
		OrderIndex: orderIndex,
	}
}

// ValidateQuestion validates a Question instance
func ValidateQuestion(q *Question) error {
	if q == nil {
		return fmt.Errorf("question cannot be nil")
	}

	if q.ID == "" {
		return fmt.Errorf("question ID is required")
	}

	if q.ProjectID == "" {
		return fmt.Errorf("question ProjectID is required")
	}

	if q.Text == "" {
		return fmt.Errorf("question Text is required")
	}

	if q.OrderIndex < 0 {
		return fmt.Errorf("question OrderIndex cannot be negative")
	}

	return nil
}
