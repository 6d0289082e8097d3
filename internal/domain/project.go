package domain

import (
	"fmt"
	"time"
)

// ProjectStatus tracks whether a questionnaire has been answered
type ProjectStatus string

const (
	ProjectStatusDraft    ProjectStatus = "DRAFT"
	ProjectStatusReady    ProjectStatus = "READY"
	ProjectStatusOutdated ProjectStatus = "OUTDATED"
)

// Project is a due-diligence questionnaire: an ordered set of questions
type Project struct {
	ID          string        `json:"id"`
	Name        string        `json:"name"`
	Description string        `json:"description"`
	Status      ProjectStatus `json:"status"`
	CreatedAt   time.Time     `json:"created_at"`
	UpdatedAt   time.Time     `json:"updated_at"`
}

// ProjectSummary is a list view of a project with answer progress counters
type ProjectSummary struct {
	Project
	QuestionCount int `json:"question_count"`
	AnsweredCount int `json:"answered_count"`
}

// NewProject creates a new draft Project
func NewProject(id, name, description string, createdAt time.Time) *Project {
	return &Project{
		ID:          id,
		Name:        name,
		Description: description,
		Status:      ProjectStatusDraft,
		CreatedAt:   createdAt,
		UpdatedAt:   createdAt,
	}
}

// ValidateProject validates a Project instance
func ValidateProject(p *Project) error {
	if p == nil {
		return fmt.Errorf("project cannot be nil")
	}

	if p.ID == "" {
		return fmt.Errorf("project ID is required")
	}

	if p.Name == "" {
		return fmt.Errorf("project Name is required")
	}

	if !IsValidProjectStatus(p.Status) {
		return fmt.Errorf("project Status is invalid: %s", p.Status)
	}

	return nil
}

// IsValidProjectStatus checks if a ProjectStatus is valid
func IsValidProjectStatus(s ProjectStatus) bool {
	switch s {
	case ProjectStatusDraft, ProjectStatusReady, ProjectStatusOutdated:
		return true
	}
	return false
}
