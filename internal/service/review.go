package service

import (
	"context"
	"strings"

	"github.com/cloo-solutions/diligence/internal/domain"
)

// ReviewAnswer sets the review status of an answer. MANUAL requires the
// reviewer's replacement text. Other statuses ignore any supplied text and
// keep the stored manual answer.
func (s *AnswerService) ReviewAnswer(ctx context.Context, id string, status domain.AnswerStatus, manualAnswer string) (*domain.Answer, error) {
	if !domain.IsValidAnswerStatus(status) {
		return nil, domain.ErrInvalidAnswerStatus
	}

	manualAnswer = strings.TrimSpace(manualAnswer)
	if status == domain.AnswerStatusManual && manualAnswer == "" {
		return nil, domain.ErrManualAnswerRequired
	}

	existing, err := s.answers.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if status != domain.AnswerStatusManual {
		manualAnswer = existing.ManualAnswer
	}

	return s.answers.UpdateReview(ctx, id, status, manualAnswer)
}
