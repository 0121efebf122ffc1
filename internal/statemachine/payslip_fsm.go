package statemachine

import (
	"context"
	"fmt"

	"github.com/looplab/fsm"
	"github.com/tresdv/nomina-api/internal/models"
)

// PayslipFSM wraps a payslip with its state machine
type PayslipFSM struct {
	payslip *models.Payslip
	fsm     *fsm.FSM
}

// NewPayslipFSM creates a new payslip state machine
func NewPayslipFSM(payslip *models.Payslip) *PayslipFSM {
	pfsm := &PayslipFSM{
		payslip: payslip,
	}

	pfsm.fsm = fsm.NewFSM(
		payslip.Status,
		fsm.Events{
			// draft → computed (rule engine ran successfully)
			{Name: "compute", Src: []string{models.PayslipStatusDraft}, Dst: models.PayslipStatusComputed},

			// computed → done (user confirmation)
			{Name: "confirm", Src: []string{models.PayslipStatusComputed}, Dst: models.PayslipStatusDone},

			// computed/done → draft (reopen for recomputation; batch guard is checked by the service)
			{Name: "set_to_draft", Src: []string{models.PayslipStatusComputed, models.PayslipStatusDone}, Dst: models.PayslipStatusDraft},

			// draft/computed → cancel
			{Name: "cancel", Src: []string{models.PayslipStatusDraft, models.PayslipStatusComputed}, Dst: models.PayslipStatusCancel},
		},
		fsm.Callbacks{},
	)

	return pfsm
}

// Compute transitions the payslip to computed state
func (p *PayslipFSM) Compute(ctx context.Context) error {
	if !p.payslip.MayCompute() {
		return fmt.Errorf("el recibo no puede calcularse en estado: %s", p.payslip.Status)
	}

	if err := p.fsm.Event(ctx, "compute"); err != nil {
		return fmt.Errorf("no se pudo calcular el recibo: %w", err)
	}

	p.payslip.Status = p.fsm.Current()
	return nil
}

// Confirm transitions the payslip to done state
func (p *PayslipFSM) Confirm(ctx context.Context) error {
	if !p.payslip.MayConfirm() {
		return fmt.Errorf("el recibo no puede confirmarse en estado: %s", p.payslip.Status)
	}

	if err := p.fsm.Event(ctx, "confirm"); err != nil {
		return fmt.Errorf("no se pudo confirmar el recibo: %w", err)
	}

	p.payslip.Status = p.fsm.Current()
	return nil
}

// SetToDraft returns the payslip to draft state
func (p *PayslipFSM) SetToDraft(ctx context.Context) error {
	if !p.payslip.MaySetToDraft() {
		return fmt.Errorf("el recibo no puede volver a borrador en estado: %s", p.payslip.Status)
	}

	if err := p.fsm.Event(ctx, "set_to_draft"); err != nil {
		return fmt.Errorf("no se pudo reabrir el recibo: %w", err)
	}

	p.payslip.Status = p.fsm.Current()
	return nil
}

// Cancel transitions the payslip to cancel state
func (p *PayslipFSM) Cancel(ctx context.Context) error {
	if !p.payslip.MayCancel() {
		return fmt.Errorf("el recibo no puede anularse en estado: %s", p.payslip.Status)
	}

	if err := p.fsm.Event(ctx, "cancel"); err != nil {
		return fmt.Errorf("no se pudo anular el recibo: %w", err)
	}

	p.payslip.Status = p.fsm.Current()
	return nil
}

// Current returns the current state
func (p *PayslipFSM) Current() string {
	return p.fsm.Current()
}
