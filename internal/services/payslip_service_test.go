package services

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tresdv/nomina-api/internal/models"
	"github.com/tresdv/nomina-api/internal/repository"
	"github.com/tresdv/nomina-api/pkg/logger"
	"gorm.io/gorm"
)

func TestMain(m *testing.M) {
	logger.Setup("test")
	os.Exit(m.Run())
}

// Mock PayslipRepository
type mockPayslipRepository struct {
	repository.PayslipRepository
	payslip          *models.Payslip
	created          []*models.Payslip
	replacedLines    []models.PayslipLine
	replaceCalls     int
	updateCalls      int
	mockReplaceLines func(ctx context.Context, payslip *models.Payslip, lines []models.PayslipLine) error
}

func (m *mockPayslipRepository) Create(ctx context.Context, payslip *models.Payslip) error {
	payslip.ID = uint(len(m.created) + 100)
	m.created = append(m.created, payslip)
	return nil
}

func (m *mockPayslipRepository) FindByIDWithDetails(ctx context.Context, id uint) (*models.Payslip, error) {
	if m.payslip != nil && m.payslip.ID == id {
		return m.payslip, nil
	}
	for _, p := range m.created {
		if p.ID == id {
			return p, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockPayslipRepository) Update(ctx context.Context, payslip *models.Payslip) error {
	m.updateCalls++
	return nil
}

func (m *mockPayslipRepository) ReplaceLines(ctx context.Context, payslip *models.Payslip, lines []models.PayslipLine) error {
	m.replaceCalls++
	m.replacedLines = lines
	if m.mockReplaceLines != nil {
		return m.mockReplaceLines(ctx, payslip, lines)
	}
	return nil
}

// Mock ContractRepository
type mockContractRepository struct {
	repository.ContractRepository
	contracts []models.Contract
}

func (m *mockContractRepository) FindByID(ctx context.Context, id uint) (*models.Contract, error) {
	for i := range m.contracts {
		if m.contracts[i].ID == id {
			return &m.contracts[i], nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockContractRepository) FindByEmployee(ctx context.Context, employeeID uint) ([]models.Contract, error) {
	var out []models.Contract
	for _, c := range m.contracts {
		if c.EmployeeID == employeeID {
			out = append(out, c)
		}
	}
	return out, nil
}

func (m *mockContractRepository) FindActiveOn(ctx context.Context, employeeID uint, onDate time.Time) (*models.Contract, error) {
	for i := range m.contracts {
		c := &m.contracts[i]
		if c.EmployeeID == employeeID && c.Status == models.ContractStatusOpen && c.IsActiveOn(onDate) {
			return c, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockContractRepository) FindOpenOn(ctx context.Context, onDate time.Time) ([]models.Contract, error) {
	var out []models.Contract
	for _, c := range m.contracts {
		if c.Status == models.ContractStatusOpen && c.IsActiveOn(onDate) {
			out = append(out, c)
		}
	}
	return out, nil
}

// Mock RuleRepository
type mockRuleRepository struct {
	repository.RuleRepository
	rules []models.SalaryRule
}

func (m *mockRuleRepository) FindByStructure(ctx context.Context, structureCode string) ([]models.SalaryRule, error) {
	var out []models.SalaryRule
	for _, r := range m.rules {
		if r.StructureCode == structureCode {
			out = append(out, r)
		}
	}
	return out, nil
}

// Mock BatchRepository
type mockBatchRepository struct {
	repository.BatchRepository
	batch       *models.PayslipBatch
	updateCalls int
}

func (m *mockBatchRepository) FindByID(ctx context.Context, id uint) (*models.PayslipBatch, error) {
	if m.batch == nil || m.batch.ID != id {
		return nil, gorm.ErrRecordNotFound
	}
	return m.batch, nil
}

// liquidationRules mirrors the seeded liquidation structures.
func liquidationRules(structure string) []models.SalaryRule {
	rules := []models.SalaryRule{
		{StructureCode: structure, Code: models.RuleCodeAntiguedad, Name: "Prestaciones Sociales",
			Category: models.LineCategoryAllowance, Sequence: 10,
			Amount: "contract.daily_salary * 5 * timeline.service_months"},
		{StructureCode: structure, Code: models.RuleCodeVacaciones, Name: "Vacaciones Fraccionadas",
			Category: models.LineCategoryAllowance, Sequence: 20,
			Condition: "timeline.vacation_days_due > 0",
			Amount:    "contract.daily_salary * timeline.vacation_days_due"},
		{StructureCode: structure, Code: models.RuleCodeBonoVacacional, Name: "Bono Vacacional Fraccionado",
			Category: models.LineCategoryAllowance, Sequence: 30,
			Condition: "timeline.bono_vacacional_days_due > 0",
			Amount:    "contract.daily_salary * timeline.bono_vacacional_days_due"},
		{StructureCode: structure, Code: models.RuleCodeVacationPrepaid, Name: "Vacaciones Pagadas por Adelantado",
			Category: models.LineCategoryDeduction, Sequence: 40,
			Amount: "-contract.vacation_prepaid"},
		{StructureCode: structure, Code: models.RuleCodeARIDeduction, Name: "Retención I.S.L.R. (ARI)",
			Category: models.LineCategoryDeduction, Sequence: 70,
			Amount: "-(contract.deduction_base * contract.ari_biweekly_pct / 100)"},
		{StructureCode: structure, Code: models.RuleCodeSSODeduction, Name: "Seguro Social Obligatorio",
			Category: models.LineCategoryDeduction, Sequence: 80,
			Amount: "-(contract.monthly_wage * 0.045 * payslip.period_days / 30)"},
		{StructureCode: structure, Code: models.RuleCodeLiquidNet, Name: "Neto a Pagar",
			Category: models.LineCategoryNet, Sequence: 99,
			Amount: "categories.gross + categories.deduction"},
	}
	if structure == models.StructureLiquidationV2 {
		rules = append(rules,
			models.SalaryRule{StructureCode: structure, Code: models.RuleCodeUtilidades, Name: "Utilidades Fraccionadas",
				Category: models.LineCategoryAllowance, Sequence: 50,
				Amount: "contract.monthly_wage * payslip.months_in_fiscal_year / 12 * contract.utilidades_factor"},
			models.SalaryRule{StructureCode: structure, Code: models.RuleCodeIntereses, Name: "Intereses sobre Prestaciones",
				Category: models.LineCategoryAllowance, Sequence: 60,
				Amount: "prestaciones.intereses"},
		)
	}
	return rules
}

func liquidationContract() models.Contract {
	return models.Contract{
		ID:             7,
		EmployeeID:     3,
		StartDate:      date(2024, 9, 1),
		Status:         models.ContractStatusOpen,
		MonthlyWage:    decimal.NewFromInt(300),
		DeductionBase:  decimal.NewFromInt(210),
		ARIBiweeklyPct: decimal.NewFromInt(2),
	}
}

func liquidationPayslip(structure string) *models.Payslip {
	return &models.Payslip{
		ID:            11,
		EmployeeID:    3,
		ContractID:    7,
		StructureCode: structure,
		DateFrom:      date(2025, 8, 1),
		DateTo:        date(2025, 8, 31),
		Status:        models.PayslipStatusDraft,
		Number:        "NOM-2025-000011",
	}
}

func newTestPayslipService(payslipRepo *mockPayslipRepository, contractRepo *mockContractRepository, ruleRepo *mockRuleRepository, batchRepo *mockBatchRepository) *PayslipService {
	if batchRepo == nil {
		batchRepo = &mockBatchRepository{}
	}
	return NewPayslipService(payslipRepo, batchRepo, contractRepo, nil, ruleRepo,
		NewPrestacionesService(), nil, nil)
}

func lineAmount(t *testing.T, lines []models.PayslipLine, code string) decimal.Decimal {
	t.Helper()
	for _, line := range lines {
		if line.Code == code {
			return line.Amount
		}
	}
	t.Fatalf("línea %s no encontrada", code)
	return decimal.Zero
}

func hasLine(lines []models.PayslipLine, code string) bool {
	for _, line := range lines {
		if line.Code == code {
			return true
		}
	}
	return false
}

func TestComputeLiquidationV1(t *testing.T) {
	payslipRepo := &mockPayslipRepository{payslip: liquidationPayslip(models.StructureLiquidationV1)}
	contractRepo := &mockContractRepository{contracts: []models.Contract{liquidationContract()}}
	ruleRepo := &mockRuleRepository{rules: liquidationRules(models.StructureLiquidationV1)}
	svc := newTestPayslipService(payslipRepo, contractRepo, ruleRepo, nil)

	payslip, err := svc.Compute(context.Background(), 11, 1)
	require.NoError(t, err)

	assert.Equal(t, models.PayslipStatusComputed, payslip.Status)
	assert.NotNil(t, payslip.ComputedAt)
	require.Equal(t, 1, payslipRepo.replaceCalls)

	lines := payslipRepo.replacedLines
	// Twelve service months at 5 days each, daily salary 10
	assert.True(t, lineAmount(t, lines, models.RuleCodeAntiguedad).Equal(decimal.NewFromInt(600)))
	// First anniversary quota of 15 days
	assert.True(t, lineAmount(t, lines, models.RuleCodeVacaciones).Equal(decimal.NewFromInt(150)))
	assert.True(t, lineAmount(t, lines, models.RuleCodeBonoVacacional).Equal(decimal.NewFromInt(150)))
	// 210 * 2% withholding
	assert.True(t, lineAmount(t, lines, models.RuleCodeARIDeduction).Equal(decimal.NewFromFloat(-4.2)))
	// 4.5% of 300 over a full 30-day period
	assert.True(t, lineAmount(t, lines, models.RuleCodeSSODeduction).Equal(decimal.NewFromFloat(-13.5)))
	assert.True(t, lineAmount(t, lines, models.RuleCodeLiquidNet).Equal(decimal.NewFromFloat(882.3)))

	// No prepaid vacations on this contract: the line still appears, at zero
	assert.True(t, lineAmount(t, lines, models.RuleCodeVacationPrepaid).IsZero())
	// liquidation-v1 never carries utilidades or interest lines
	assert.False(t, hasLine(lines, models.RuleCodeUtilidades))
	assert.False(t, hasLine(lines, models.RuleCodeIntereses))
}

func TestComputeLiquidationV2AddsUtilidadesAndInterest(t *testing.T) {
	contract := liquidationContract()
	contract.UtilidadesFactor = decimal.NewFromInt(1)

	payslipRepo := &mockPayslipRepository{payslip: liquidationPayslip(models.StructureLiquidationV2)}
	contractRepo := &mockContractRepository{contracts: []models.Contract{contract}}
	ruleRepo := &mockRuleRepository{rules: liquidationRules(models.StructureLiquidationV2)}
	svc := newTestPayslipService(payslipRepo, contractRepo, ruleRepo, nil)

	_, err := svc.Compute(context.Background(), 11, 1)
	require.NoError(t, err)

	lines := payslipRepo.replacedLines
	// Eight months of the 2025 fiscal year: 300 * 8/12 * factor 1
	assert.True(t, lineAmount(t, lines, models.RuleCodeUtilidades).Equal(decimal.NewFromInt(200)),
		"utilidades %s", lineAmount(t, lines, models.RuleCodeUtilidades))
	// Simulated prestaciones interest for the year of service
	assert.True(t, lineAmount(t, lines, models.RuleCodeIntereses).Equal(decimal.NewFromFloat(29.25)),
		"intereses %s", lineAmount(t, lines, models.RuleCodeIntereses))

	net := lineAmount(t, lines, models.RuleCodeLiquidNet)
	assert.True(t, net.Equal(decimal.NewFromFloat(1111.55)), "net %s", net)
}

func TestComputeDeductsPrepaidVacations(t *testing.T) {
	contract := liquidationContract()
	contract.VacationPrepaid = decimal.RequireFromString("256.82")

	payslipRepo := &mockPayslipRepository{payslip: liquidationPayslip(models.StructureLiquidationV1)}
	contractRepo := &mockContractRepository{contracts: []models.Contract{contract}}
	ruleRepo := &mockRuleRepository{rules: liquidationRules(models.StructureLiquidationV1)}
	svc := newTestPayslipService(payslipRepo, contractRepo, ruleRepo, nil)

	_, err := svc.Compute(context.Background(), 11, 1)
	require.NoError(t, err)

	prepaid := lineAmount(t, payslipRepo.replacedLines, models.RuleCodeVacationPrepaid)
	assert.True(t, prepaid.Equal(decimal.RequireFromString("-256.82")), "prepaid %s", prepaid)
}

func TestComputeZeroRuleStillEmitsLine(t *testing.T) {
	// An unconditioned rule that evaluates to zero keeps its line, so the
	// receipt shows the withholding exists even when nothing was withheld
	contract := liquidationContract()
	contract.ARIBiweeklyPct = decimal.Zero

	payslipRepo := &mockPayslipRepository{payslip: liquidationPayslip(models.StructureLiquidationV1)}
	contractRepo := &mockContractRepository{contracts: []models.Contract{contract}}
	ruleRepo := &mockRuleRepository{rules: liquidationRules(models.StructureLiquidationV1)}
	svc := newTestPayslipService(payslipRepo, contractRepo, ruleRepo, nil)

	_, err := svc.Compute(context.Background(), 11, 1)
	require.NoError(t, err)

	ari := lineAmount(t, payslipRepo.replacedLines, models.RuleCodeARIDeduction)
	assert.True(t, ari.IsZero())
}

func TestComputeEmitsPrepaidAndInterestLinesAtZero(t *testing.T) {
	// Two service months: no prestaciones deposit yet, so no interest, and
	// nothing prepaid. Both lines still show on the receipt with amount 0
	contract := liquidationContract()
	contract.StartDate = date(2025, 7, 1)
	contract.UtilidadesFactor = decimal.NewFromInt(1)

	payslipRepo := &mockPayslipRepository{payslip: liquidationPayslip(models.StructureLiquidationV2)}
	contractRepo := &mockContractRepository{contracts: []models.Contract{contract}}
	ruleRepo := &mockRuleRepository{rules: liquidationRules(models.StructureLiquidationV2)}
	svc := newTestPayslipService(payslipRepo, contractRepo, ruleRepo, nil)

	_, err := svc.Compute(context.Background(), 11, 1)
	require.NoError(t, err)

	lines := payslipRepo.replacedLines
	assert.True(t, lineAmount(t, lines, models.RuleCodeVacationPrepaid).IsZero())
	assert.True(t, lineAmount(t, lines, models.RuleCodeIntereses).IsZero())
}

func TestComputeIsIdempotentOnDraft(t *testing.T) {
	payslipRepo := &mockPayslipRepository{payslip: liquidationPayslip(models.StructureLiquidationV1)}
	contractRepo := &mockContractRepository{contracts: []models.Contract{liquidationContract()}}
	ruleRepo := &mockRuleRepository{rules: liquidationRules(models.StructureLiquidationV1)}
	svc := newTestPayslipService(payslipRepo, contractRepo, ruleRepo, nil)

	_, err := svc.Compute(context.Background(), 11, 1)
	require.NoError(t, err)
	first := payslipRepo.replacedLines

	// Back to draft and recompute: identical lines
	payslipRepo.payslip.Status = models.PayslipStatusDraft
	_, err = svc.Compute(context.Background(), 11, 1)
	require.NoError(t, err)
	second := payslipRepo.replacedLines

	require.Equal(t, len(first), len(second))
	for i := range first {
		assert.Equal(t, first[i].Code, second[i].Code)
		assert.True(t, first[i].Amount.Equal(second[i].Amount))
	}
}

func TestComputeForbiddenWhenNotDraft(t *testing.T) {
	payslip := liquidationPayslip(models.StructureLiquidationV1)
	payslip.Status = models.PayslipStatusComputed

	payslipRepo := &mockPayslipRepository{payslip: payslip}
	svc := newTestPayslipService(payslipRepo, &mockContractRepository{}, &mockRuleRepository{}, nil)

	_, err := svc.Compute(context.Background(), 11, 1)
	assert.ErrorIs(t, err, ErrPayslipRecomputeForbidden)
	assert.Zero(t, payslipRepo.replaceCalls)
}

func TestSetToDraftBlockedByCancelledBatch(t *testing.T) {
	batchID := uint(5)
	payslip := liquidationPayslip(models.StructureLiquidationV1)
	payslip.Status = models.PayslipStatusComputed
	payslip.BatchID = &batchID

	payslipRepo := &mockPayslipRepository{payslip: payslip}
	batchRepo := &mockBatchRepository{batch: &models.PayslipBatch{ID: 5, Status: models.BatchStatusCancel}}
	svc := newTestPayslipService(payslipRepo, &mockContractRepository{}, &mockRuleRepository{}, batchRepo)

	_, err := svc.SetToDraft(context.Background(), 11, 1)
	assert.ErrorIs(t, err, ErrBatchStateViolation)
	assert.Equal(t, models.PayslipStatusComputed, payslip.Status)
	assert.Zero(t, payslipRepo.updateCalls)
}

func TestCreateRejectsUnknownStructure(t *testing.T) {
	svc := newTestPayslipService(&mockPayslipRepository{}, &mockContractRepository{}, &mockRuleRepository{}, nil)

	_, err := svc.Create(context.Background(), &CreatePayslipInput{
		EmployeeID:    3,
		StructureCode: "noexiste",
		DateFrom:      date(2025, 8, 1),
		DateTo:        date(2025, 8, 31),
	})
	assert.Error(t, err)
}

func TestCreateRequiresCoveringContract(t *testing.T) {
	// Contract ends mid-period: the payslip cannot be created over it
	contract := liquidationContract()
	end := date(2025, 8, 15)
	contract.EndDate = &end

	contractRepo := &mockContractRepository{contracts: []models.Contract{contract}}
	svc := newTestPayslipService(&mockPayslipRepository{}, contractRepo, &mockRuleRepository{}, nil)

	_, err := svc.Create(context.Background(), &CreatePayslipInput{
		EmployeeID:    3,
		StructureCode: models.StructureLiquidationV1,
		DateFrom:      date(2025, 8, 1),
		DateTo:        date(2025, 8, 31),
	})
	assert.ErrorIs(t, err, ErrInvalidContractState)
}
