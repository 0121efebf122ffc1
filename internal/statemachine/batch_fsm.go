package statemachine

import (
	"context"
	"fmt"

	"github.com/looplab/fsm"
	"github.com/tresdv/nomina-api/internal/models"
)

// BatchFSM wraps a payslip batch with its state machine
type BatchFSM struct {
	batch *models.PayslipBatch
	fsm   *fsm.FSM
}

// NewBatchFSM creates a new batch state machine
func NewBatchFSM(batch *models.PayslipBatch) *BatchFSM {
	bfsm := &BatchFSM{
		batch: batch,
	}

	bfsm.fsm = fsm.NewFSM(
		batch.Status,
		fsm.Events{
			// draft → closed
			{Name: "close", Src: []string{models.BatchStatusDraft}, Dst: models.BatchStatusClosed},

			// draft/closed → cancel
			{Name: "cancel", Src: []string{models.BatchStatusDraft, models.BatchStatusClosed}, Dst: models.BatchStatusCancel},

			// cancel/closed → draft (reopen)
			{Name: "reopen", Src: []string{models.BatchStatusCancel, models.BatchStatusClosed}, Dst: models.BatchStatusDraft},
		},
		fsm.Callbacks{},
	)

	return bfsm
}

// Close transitions the batch to closed state
func (b *BatchFSM) Close(ctx context.Context) error {
	if !b.batch.MayClose() {
		return fmt.Errorf("el lote no puede cerrarse en estado: %s", b.batch.Status)
	}

	if err := b.fsm.Event(ctx, "close"); err != nil {
		return fmt.Errorf("no se pudo cerrar el lote: %w", err)
	}

	b.batch.Status = b.fsm.Current()
	return nil
}

// Cancel transitions the batch to cancel state
func (b *BatchFSM) Cancel(ctx context.Context) error {
	if !b.batch.MayCancel() {
		return fmt.Errorf("el lote no puede anularse en estado: %s", b.batch.Status)
	}

	if err := b.fsm.Event(ctx, "cancel"); err != nil {
		return fmt.Errorf("no se pudo anular el lote: %w", err)
	}

	b.batch.Status = b.fsm.Current()
	return nil
}

// Reopen returns the batch to draft state
func (b *BatchFSM) Reopen(ctx context.Context) error {
	if !b.batch.MayReopen() {
		return fmt.Errorf("el lote no puede reabrirse en estado: %s", b.batch.Status)
	}

	if err := b.fsm.Event(ctx, "reopen"); err != nil {
		return fmt.Errorf("no se pudo reabrir el lote: %w", err)
	}

	b.batch.Status = b.fsm.Current()
	return nil
}

// Current returns the current state
func (b *BatchFSM) Current() string {
	return b.fsm.Current()
}
