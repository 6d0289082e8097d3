package service

import (
	"context"
	"testing"

	"github.com/cloo-solutions/diligence/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func TestAnswerService_ReviewAnswer(t *testing.T) {
	t.Run("confirm keeps previous manual answer", func(t *testing.T) {
		f := newAnswerFixture()
		existing := &domain.Answer{ID: "a1", ManualAnswer: "edited earlier"}
		updated := &domain.Answer{ID: "a1", Status: domain.AnswerStatusConfirmed, ManualAnswer: "edited earlier"}

		f.answers.On("GetByID", mock.Anything, "a1").Return(existing, nil)
		f.answers.On("UpdateReview", mock.Anything, "a1", domain.AnswerStatusConfirmed, "edited earlier").Return(updated, nil)

		got, err := f.service(nil).ReviewAnswer(context.Background(), "a1", domain.AnswerStatusConfirmed, "")

		require.NoError(t, err)
		assert.Same(t, updated, got)
	})

	t.Run("non-manual status ignores supplied text", func(t *testing.T) {
		f := newAnswerFixture()
		existing := &domain.Answer{ID: "a1", Status: domain.AnswerStatusManual, ManualAnswer: "reviewer text"}
		updated := &domain.Answer{ID: "a1", Status: domain.AnswerStatusRejected, ManualAnswer: "reviewer text"}

		f.answers.On("GetByID", mock.Anything, "a1").Return(existing, nil)
		f.answers.On("UpdateReview", mock.Anything, "a1", domain.AnswerStatusRejected, "reviewer text").Return(updated, nil)

		got, err := f.service(nil).ReviewAnswer(context.Background(), "a1", domain.AnswerStatusRejected, "should not be stored")

		require.NoError(t, err)
		assert.Equal(t, "reviewer text", got.ManualAnswer)
		f.answers.AssertExpectations(t)
	})

	t.Run("manual stores replacement text", func(t *testing.T) {
		f := newAnswerFixture()
		updated := &domain.Answer{ID: "a1", Status: domain.AnswerStatusManual, ManualAnswer: "Revenue was $12M."}

		f.answers.On("GetByID", mock.Anything, "a1").Return(&domain.Answer{ID: "a1"}, nil)
		f.answers.On("UpdateReview", mock.Anything, "a1", domain.AnswerStatusManual, "Revenue was $12M.").Return(updated, nil)

		got, err := f.service(nil).ReviewAnswer(context.Background(), "a1", domain.AnswerStatusManual, "  Revenue was $12M.  ")

		require.NoError(t, err)
		assert.Equal(t, "Revenue was $12M.", got.ManualAnswer)
	})

	t.Run("manual without text is rejected", func(t *testing.T) {
		f := newAnswerFixture()

		_, err := f.service(nil).ReviewAnswer(context.Background(), "a1", domain.AnswerStatusManual, "   ")

		assert.ErrorIs(t, err, domain.ErrManualAnswerRequired)
		f.answers.AssertNotCalled(t, "UpdateReview", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("unknown status is rejected", func(t *testing.T) {
		f := newAnswerFixture()

		_, err := f.service(nil).ReviewAnswer(context.Background(), "a1", domain.AnswerStatus("APPROVED"), "")

		assert.ErrorIs(t, err, domain.ErrInvalidAnswerStatus)
	})

	t.Run("missing answer", func(t *testing.T) {
		f := newAnswerFixture()
		f.answers.On("GetByID", mock.Anything, "missing").Return(nil, domain.ErrAnswerNotFound)

		_, err := f.service(nil).ReviewAnswer(context.Background(), "missing", domain.AnswerStatusRejected, "")

		assert.ErrorIs(t, err, domain.ErrAnswerNotFound)
	})
}
