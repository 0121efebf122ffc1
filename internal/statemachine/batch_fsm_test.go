package statemachine

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tresdv/nomina-api/internal/models"
)

func TestBatchCloseAndReopen(t *testing.T) {
	ctx := context.Background()
	batch := &models.PayslipBatch{Status: models.BatchStatusDraft}

	require.NoError(t, NewBatchFSM(batch).Close(ctx))
	assert.Equal(t, models.BatchStatusClosed, batch.Status)

	require.NoError(t, NewBatchFSM(batch).Reopen(ctx))
	assert.Equal(t, models.BatchStatusDraft, batch.Status)
}

func TestBatchCancelAndReopen(t *testing.T) {
	ctx := context.Background()
	batch := &models.PayslipBatch{Status: models.BatchStatusDraft}

	require.NoError(t, NewBatchFSM(batch).Cancel(ctx))
	assert.Equal(t, models.BatchStatusCancel, batch.Status)

	// A cancelled batch can be brought back to draft
	require.NoError(t, NewBatchFSM(batch).Reopen(ctx))
	assert.Equal(t, models.BatchStatusDraft, batch.Status)
}

func TestBatchCannotCloseTwice(t *testing.T) {
	ctx := context.Background()
	batch := &models.PayslipBatch{Status: models.BatchStatusClosed}

	err := NewBatchFSM(batch).Close(ctx)
	assert.Error(t, err)
	assert.Equal(t, models.BatchStatusClosed, batch.Status)
}

func TestBatchReopenRequiresClosedOrCancelled(t *testing.T) {
	ctx := context.Background()
	batch := &models.PayslipBatch{Status: models.BatchStatusDraft}

	err := NewBatchFSM(batch).Reopen(ctx)
	assert.Error(t, err)
	assert.Equal(t, models.BatchStatusDraft, batch.Status)
}
