package services

import (
	"context"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tresdv/nomina-api/internal/models"
	"gorm.io/gorm"
)

func (m *mockBatchRepository) Create(ctx context.Context, batch *models.PayslipBatch) error {
	batch.ID = 5
	m.batch = batch
	return nil
}

func (m *mockBatchRepository) Update(ctx context.Context, batch *models.PayslipBatch) error {
	m.updateCalls++
	return nil
}

func (m *mockBatchRepository) FindByIDWithPayslips(ctx context.Context, id uint) (*models.PayslipBatch, error) {
	if m.batch == nil || m.batch.ID != id {
		return nil, gorm.ErrRecordNotFound
	}
	return m.batch, nil
}

func newTestBatchService(payslipRepo *mockPayslipRepository, contractRepo *mockContractRepository, ruleRepo *mockRuleRepository, batchRepo *mockBatchRepository) *BatchService {
	payslipSvc := newTestPayslipService(payslipRepo, contractRepo, ruleRepo, batchRepo)
	return NewBatchService(batchRepo, payslipRepo, contractRepo, payslipSvc, nil, nil)
}

func TestBatchCreateGeneratesPayslipsPerOpenContract(t *testing.T) {
	covering := liquidationContract()
	partial := models.Contract{
		ID:         8,
		EmployeeID: 4,
		StartDate:  date(2025, 1, 1),
		EndDate:    datePtr(2025, 8, 15),
		Status:     models.ContractStatusOpen,
		MonthlyWage: decimal.NewFromInt(450),
	}

	payslipRepo := &mockPayslipRepository{}
	contractRepo := &mockContractRepository{contracts: []models.Contract{covering, partial}}
	batchRepo := &mockBatchRepository{}
	svc := newTestBatchService(payslipRepo, contractRepo, &mockRuleRepository{}, batchRepo)

	batch, err := svc.Create(context.Background(), &CreateBatchInput{
		Name:      "Liquidaciones agosto 2025",
		DateFrom:  date(2025, 8, 1),
		DateTo:    date(2025, 8, 31),
		Structure: models.StructureLiquidationV1,
	}, 1)
	require.NoError(t, err)

	assert.Equal(t, models.BatchStatusDraft, batch.Status)
	// The contract ending mid period is skipped, not an error
	require.Len(t, batch.Payslips, 1)

	payslip := batch.Payslips[0]
	assert.Equal(t, covering.EmployeeID, payslip.EmployeeID)
	assert.Equal(t, models.StructureLiquidationV1, payslip.StructureCode)
	assert.Equal(t, models.PayslipStatusDraft, payslip.Status)
	require.NotNil(t, payslip.BatchID)
	assert.Equal(t, batch.ID, *payslip.BatchID)
	assert.Equal(t, "NOM-2025-000100", payslip.Number)
}

func TestBatchCreateRejectsInvertedPeriod(t *testing.T) {
	svc := newTestBatchService(&mockPayslipRepository{}, &mockContractRepository{}, &mockRuleRepository{}, &mockBatchRepository{})

	_, err := svc.Create(context.Background(), &CreateBatchInput{
		Name:     "Lote inválido",
		DateFrom: date(2025, 8, 31),
		DateTo:   date(2025, 8, 1),
	}, 1)
	assert.Error(t, err)
}

func TestBatchComputeAllAndClose(t *testing.T) {
	batchID := uint(5)
	stored := liquidationPayslip(models.StructureLiquidationV1)
	stored.BatchID = &batchID

	payslipRepo := &mockPayslipRepository{created: []*models.Payslip{stored}}
	contractRepo := &mockContractRepository{contracts: []models.Contract{liquidationContract()}}
	ruleRepo := &mockRuleRepository{rules: liquidationRules(models.StructureLiquidationV1)}
	batchRepo := &mockBatchRepository{batch: &models.PayslipBatch{
		ID:        batchID,
		Name:      "Liquidaciones agosto 2025",
		Status:    models.BatchStatusDraft,
		Structure: models.StructureLiquidationV1,
		Payslips:  []models.Payslip{*stored},
	}}
	svc := newTestBatchService(payslipRepo, contractRepo, ruleRepo, batchRepo)

	_, err := svc.ComputeAll(context.Background(), batchID, 1)
	require.NoError(t, err)
	assert.Equal(t, models.PayslipStatusComputed, stored.Status)
	assert.True(t, lineAmount(t, payslipRepo.replacedLines, models.RuleCodeLiquidNet).
		Equal(decimal.RequireFromString("882.3")))

	// Closing the batch confirms every computed payslip
	batchRepo.batch.Payslips = []models.Payslip{*stored}
	batch, err := svc.Close(context.Background(), batchID, 1)
	require.NoError(t, err)
	assert.Equal(t, models.BatchStatusClosed, batch.Status)
	assert.NotNil(t, batch.ClosedAt)
	assert.Equal(t, models.PayslipStatusDone, stored.Status)
	assert.NotNil(t, stored.ConfirmedAt)
}

func TestBatchComputeAllRequiresDraftBatch(t *testing.T) {
	batchRepo := &mockBatchRepository{batch: &models.PayslipBatch{ID: 5, Status: models.BatchStatusClosed}}
	svc := newTestBatchService(&mockPayslipRepository{}, &mockContractRepository{}, &mockRuleRepository{}, batchRepo)

	_, err := svc.ComputeAll(context.Background(), 5, 1)
	assert.ErrorIs(t, err, ErrBatchStateViolation)
}

func TestBatchReopenClearsClosedAt(t *testing.T) {
	closedAt := date(2025, 9, 1)
	batchRepo := &mockBatchRepository{batch: &models.PayslipBatch{
		ID:       5,
		Status:   models.BatchStatusClosed,
		ClosedAt: &closedAt,
	}}
	svc := newTestBatchService(&mockPayslipRepository{}, &mockContractRepository{}, &mockRuleRepository{}, batchRepo)

	batch, err := svc.Reopen(context.Background(), 5, 1)
	require.NoError(t, err)
	assert.Equal(t, models.BatchStatusDraft, batch.Status)
	assert.Nil(t, batch.ClosedAt)
	assert.Equal(t, 1, batchRepo.updateCalls)
}
