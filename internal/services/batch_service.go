package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/tresdv/nomina-api/internal/models"
	"github.com/tresdv/nomina-api/internal/repository"
	"github.com/tresdv/nomina-api/internal/statemachine"
	"github.com/tresdv/nomina-api/pkg/logger"
	"gorm.io/gorm"
)

// BatchService manages pay runs: generating one payslip per open contract
// over a period and driving the batch state machine.
type BatchService struct {
	batchRepo       repository.BatchRepository
	payslipRepo     repository.PayslipRepository
	contractRepo    repository.ContractRepository
	payslipSvc      *PayslipService
	notificationSvc *NotificationService
	auditSvc        *AuditService
}

// NewBatchService creates a new batch service
func NewBatchService(
	batchRepo repository.BatchRepository,
	payslipRepo repository.PayslipRepository,
	contractRepo repository.ContractRepository,
	payslipSvc *PayslipService,
	notificationSvc *NotificationService,
	auditSvc *AuditService,
) *BatchService {
	return &BatchService{
		batchRepo:       batchRepo,
		payslipRepo:     payslipRepo,
		contractRepo:    contractRepo,
		payslipSvc:      payslipSvc,
		notificationSvc: notificationSvc,
		auditSvc:        auditSvc,
	}
}

// CreateBatchInput are the request fields for a new pay run
type CreateBatchInput struct {
	Name      string    `json:"name" binding:"required"`
	DateFrom  time.Time `json:"date_from" binding:"required"`
	DateTo    time.Time `json:"date_to" binding:"required"`
	Structure string    `json:"structure"`
}

// Create registers a draft batch and one draft payslip per contract open
// during the period.
func (s *BatchService) Create(ctx context.Context, input *CreateBatchInput, userID uint) (*models.PayslipBatch, error) {
	if input.DateTo.Before(input.DateFrom) {
		return nil, fmt.Errorf("período inválido: %s > %s",
			input.DateFrom.Format("2006-01-02"), input.DateTo.Format("2006-01-02"))
	}
	structure := input.Structure
	if structure == "" {
		structure = models.StructureRegular
	}

	batch := &models.PayslipBatch{
		Name:      input.Name,
		DateFrom:  truncateDate(input.DateFrom),
		DateTo:    truncateDate(input.DateTo),
		Status:    models.BatchStatusDraft,
		Structure: structure,
	}
	if err := s.batchRepo.Create(ctx, batch); err != nil {
		return nil, err
	}

	contracts, err := s.contractRepo.FindOpenOn(ctx, batch.DateFrom)
	if err != nil {
		return nil, err
	}
	for i := range contracts {
		contract := &contracts[i]
		if !contract.Covers(batch.DateFrom, batch.DateTo) {
			logger.Warn("contrato no cubre el período del lote, omitido",
				"contract_id", contract.ID, "batch_id", batch.ID)
			continue
		}
		payslip, err := s.payslipSvc.Create(ctx, &CreatePayslipInput{
			EmployeeID:    contract.EmployeeID,
			StructureCode: structure,
			DateFrom:      batch.DateFrom,
			DateTo:        batch.DateTo,
			BatchID:       &batch.ID,
		})
		if err != nil {
			return nil, err
		}
		batch.Payslips = append(batch.Payslips, *payslip)
	}

	s.audit(ctx, userID, "batch.create", batch.ID,
		fmt.Sprintf("%d recibos generados", len(batch.Payslips)))
	return batch, nil
}

// FindByID returns the batch with its payslips loaded.
func (s *BatchService) FindByID(ctx context.Context, id uint) (*models.PayslipBatch, error) {
	batch, err := s.batchRepo.FindByIDWithPayslips(ctx, id)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotFound
	}
	return batch, err
}

// List returns batches matching the query.
func (s *BatchService) List(ctx context.Context, query *repository.ListQuery) ([]models.PayslipBatch, int64, error) {
	return s.batchRepo.List(ctx, query)
}

// ComputeAll computes every draft payslip of the batch.
func (s *BatchService) ComputeAll(ctx context.Context, id uint, userID uint) (*models.PayslipBatch, error) {
	batch, err := s.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if batch.Status != models.BatchStatusDraft {
		return nil, ErrBatchStateViolation
	}
	for i := range batch.Payslips {
		if !batch.Payslips[i].MayCompute() {
			continue
		}
		if _, err := s.payslipSvc.Compute(ctx, batch.Payslips[i].ID, userID); err != nil {
			return nil, fmt.Errorf("recibo %d: %w", batch.Payslips[i].ID, err)
		}
	}
	return s.FindByID(ctx, id)
}

// Close confirms all computed payslips and closes the batch.
func (s *BatchService) Close(ctx context.Context, id uint, userID uint) (*models.PayslipBatch, error) {
	batch, err := s.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}

	fsm := statemachine.NewBatchFSM(batch)
	if err := fsm.Close(ctx); err != nil {
		return nil, err
	}

	for i := range batch.Payslips {
		if !batch.Payslips[i].MayConfirm() {
			continue
		}
		if _, err := s.payslipSvc.Confirm(ctx, batch.Payslips[i].ID, userID); err != nil {
			return nil, fmt.Errorf("recibo %d: %w", batch.Payslips[i].ID, err)
		}
	}

	now := time.Now()
	batch.ClosedAt = &now
	if err := s.batchRepo.Update(ctx, batch); err != nil {
		return nil, err
	}

	s.audit(ctx, userID, "batch.close", batch.ID, "")
	if s.notificationSvc != nil {
		if err := s.notificationSvc.NotifyAdmins(ctx, "Lote de nómina cerrado",
			fmt.Sprintf("El lote %s fue cerrado con %d recibos.", batch.Name, len(batch.Payslips)),
			models.NotificationTypeBatchClosed); err != nil {
			logger.Error("error notificando cierre de lote", "error", err)
		}
	}
	return batch, nil
}

// Cancel voids the batch. Child payslips keep their lines but cannot
// return to draft while the batch stays cancelled.
func (s *BatchService) Cancel(ctx context.Context, id uint, userID uint) (*models.PayslipBatch, error) {
	batch, err := s.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}

	fsm := statemachine.NewBatchFSM(batch)
	if err := fsm.Cancel(ctx); err != nil {
		return nil, err
	}
	if err := s.batchRepo.Update(ctx, batch); err != nil {
		return nil, err
	}

	s.audit(ctx, userID, "batch.cancel", batch.ID, "")
	return batch, nil
}

// Reopen returns a closed or cancelled batch to draft.
func (s *BatchService) Reopen(ctx context.Context, id uint, userID uint) (*models.PayslipBatch, error) {
	batch, err := s.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}

	fsm := statemachine.NewBatchFSM(batch)
	if err := fsm.Reopen(ctx); err != nil {
		return nil, err
	}
	batch.ClosedAt = nil
	if err := s.batchRepo.Update(ctx, batch); err != nil {
		return nil, err
	}

	s.audit(ctx, userID, "batch.reopen", batch.ID, "")
	return batch, nil
}

func (s *BatchService) audit(ctx context.Context, userID uint, action string, batchID uint, details string) {
	if s.auditSvc == nil {
		return
	}
	if err := s.auditSvc.Log(ctx, userID, action, "batch", batchID, details, "", ""); err != nil {
		logger.Error("error registrando auditoría", "error", err)
	}
}
