package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDocumentStatus_Settled(t *testing.T) {
	assert.False(t, DocumentStatusPending.Settled())
	assert.False(t, DocumentStatusIndexing.Settled())
	assert.True(t, DocumentStatusIndexed.Settled())
	assert.True(t, DocumentStatusFailed.Settled())
}
