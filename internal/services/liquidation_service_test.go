package services

import (
	"context"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tresdv/nomina-api/internal/models"
	"github.com/tresdv/nomina-api/internal/repository"
	"gorm.io/gorm"
)

// Mock EmployeeRepository
type mockEmployeeRepository struct {
	repository.EmployeeRepository
	employee *models.Employee
}

func (m *mockEmployeeRepository) FindByID(ctx context.Context, id uint) (*models.Employee, error) {
	if m.employee == nil || m.employee.ID != id {
		return nil, gorm.ErrRecordNotFound
	}
	return m.employee, nil
}

func computedLiquidationPayslip(structure string) *models.Payslip {
	payslip := liquidationPayslip(structure)
	payslip.Status = models.PayslipStatusComputed
	payslip.Contract = liquidationContract()
	payslip.Lines = []models.PayslipLine{
		{Code: models.RuleCodeAntiguedad, Name: "Prestaciones Sociales", Sequence: 10,
			Category: models.LineCategoryAllowance, Amount: decimal.NewFromInt(600)},
		{Code: models.RuleCodeVacaciones, Name: "Vacaciones Fraccionadas", Sequence: 20,
			Category: models.LineCategoryAllowance, Amount: decimal.NewFromInt(150)},
		{Code: models.RuleCodeBonoVacacional, Name: "Bono Vacacional Fraccionado", Sequence: 30,
			Category: models.LineCategoryAllowance, Amount: decimal.NewFromInt(150)},
		{Code: models.RuleCodeARIDeduction, Name: "Retención I.S.L.R. (ARI)", Sequence: 70,
			Category: models.LineCategoryDeduction, Amount: decimal.RequireFromString("-4.2")},
		{Code: models.RuleCodeSSODeduction, Name: "Seguro Social Obligatorio", Sequence: 80,
			Category: models.LineCategoryDeduction, Amount: decimal.RequireFromString("-13.5")},
		{Code: models.RuleCodeLiquidNet, Name: "Neto a Pagar", Sequence: 99,
			Category: models.LineCategoryNet, Amount: decimal.RequireFromString("882.3")},
	}
	return payslip
}

func newTestLiquidationService(payslip *models.Payslip, rateRepo repository.RateRepository) *LiquidationService {
	email := "mgonzalez@example.com"
	employeeRepo := &mockEmployeeRepository{employee: &models.Employee{
		ID:        3,
		FirstName: "María",
		LastName:  "González",
		Identity:  "V-18.456.789",
		Email:     &email,
		HireDate:  date(2024, 9, 1),
		Active:    true,
	}}
	contractRepo := &mockContractRepository{contracts: []models.Contract{payslip.Contract}}
	ruleRepo := &mockRuleRepository{rules: liquidationRules(payslip.StructureCode)}
	if rateRepo == nil {
		rateRepo = &mockRateRepository{}
	}
	return NewLiquidationService(
		&mockPayslipRepository{payslip: payslip},
		contractRepo,
		employeeRepo,
		ruleRepo,
		NewCurrencyService(rateRepo),
		NewPrestacionesService(),
	)
}

func TestBuildReportWithOverrideRate(t *testing.T) {
	svc := newTestLiquidationService(computedLiquidationPayslip(models.StructureLiquidationV1), nil)

	override := decimal.RequireFromString("236.4601")
	report, err := svc.BuildReport(context.Background(), 11, ReportOptions{
		Currency:     models.CurrencyVES,
		OverrideRate: &override,
	})
	require.NoError(t, err)

	assert.Equal(t, models.CurrencyVES, report.Currency)
	assert.Equal(t, "override", report.RateSourceDate)
	assert.Empty(t, report.Notice)
	assert.Equal(t, "María González", report.Employee.FullName)
	assert.Equal(t, 12, report.ContractSummary.ServiceMonths)

	require.Len(t, report.Benefits, 3)
	require.Len(t, report.Deductions, 2)

	// Deduction rows carry the magnitude; the sign lives in the section
	ari := report.Deductions[0]
	assert.Equal(t, models.RuleCodeARIDeduction, ari.Code)
	assert.True(t, ari.AmountUSD.Equal(decimal.RequireFromString("4.2")))
	assert.True(t, ari.Amount.Equal(decimal.RequireFromString("993.13")), "ari %s", ari.Amount)

	// 141876.06 + 35469.02 + 35469.02, the rows as printed
	assert.True(t, report.Totals.Benefits.Equal(decimal.RequireFromString("212814.10")),
		"benefits %s", report.Totals.Benefits)
	assert.True(t, report.Totals.Deductions.Equal(decimal.RequireFromString("4185.34")),
		"deductions %s", report.Totals.Deductions)
	assert.True(t, report.Totals.Net.Equal(decimal.RequireFromString("208628.76")),
		"net %s", report.Totals.Net)
	assert.True(t, report.Totals.Benefits.Sub(report.Totals.Deductions).Equal(report.Totals.Net))
}

func TestBuildReportTotalsMatchDisplayedRows(t *testing.T) {
	// Per-row rounding must carry into the totals: with five rows of
	// 10.004 the printed sum is 50.00, not the 50.02 of the raw amounts
	payslip := liquidationPayslip(models.StructureLiquidationV1)
	payslip.Status = models.PayslipStatusComputed
	payslip.Contract = liquidationContract()
	for i := 0; i < 5; i++ {
		payslip.Lines = append(payslip.Lines, models.PayslipLine{
			Code: models.RuleCodeAntiguedad, Name: "Prestaciones Sociales", Sequence: 10 + i,
			Category: models.LineCategoryAllowance, Amount: decimal.RequireFromString("10.004"),
		})
	}
	payslip.Lines = append(payslip.Lines, models.PayslipLine{
		Code: models.RuleCodeLiquidNet, Name: "Neto a Pagar", Sequence: 99,
		Category: models.LineCategoryNet, Amount: decimal.RequireFromString("50.02"),
	})

	svc := newTestLiquidationService(payslip, nil)
	report, err := svc.BuildReport(context.Background(), 11, ReportOptions{Currency: models.CurrencyUSD})
	require.NoError(t, err)

	rowSum := decimal.Zero
	for _, row := range report.Benefits {
		rowSum = rowSum.Add(row.Amount)
	}
	assert.True(t, rowSum.Equal(decimal.RequireFromString("50")), "rows %s", rowSum)
	assert.True(t, report.Totals.Benefits.Equal(rowSum), "benefits %s", report.Totals.Benefits)
	assert.True(t, report.Totals.Net.Equal(decimal.RequireFromString("50")), "net %s", report.Totals.Net)
	assert.True(t, report.Totals.Benefits.Sub(report.Totals.Deductions).Equal(report.Totals.Net))
}

func TestBuildReportFallsBackToUSDWithoutRates(t *testing.T) {
	svc := newTestLiquidationService(computedLiquidationPayslip(models.StructureLiquidationV1), nil)

	report, err := svc.BuildReport(context.Background(), 11, ReportOptions{Currency: models.CurrencyVES})
	require.NoError(t, err)

	assert.Equal(t, models.CurrencyUSD, report.Currency)
	assert.True(t, report.ExchangeRate.Equal(decimal.NewFromInt(1)))
	assert.Equal(t, "Montos expresados en USD por falta de tasa de cambio.", report.Notice)
	assert.Equal(t, "2025-08-31", report.RateSourceDate)
	assert.True(t, report.Totals.Net.Equal(decimal.RequireFromString("882.3")))
}

func TestBuildReportFlagsApproximateRate(t *testing.T) {
	rateRepo := &mockRateRepository{
		mockFindEarliest: func(ctx context.Context, currency string) (*models.CurrencyRate, error) {
			return bcvRate(date(2025, 9, 15), "240.1000"), nil
		},
	}
	svc := newTestLiquidationService(computedLiquidationPayslip(models.StructureLiquidationV1), rateRepo)

	report, err := svc.BuildReport(context.Background(), 11, ReportOptions{Currency: models.CurrencyVES})
	require.NoError(t, err)

	assert.Equal(t, models.CurrencyVES, report.Currency)
	assert.Equal(t, "Tasa más antigua disponible aplicada a fechas anteriores al registro.", report.Notice)
	assert.Equal(t, "2025-09-15 (tasa más antigua disponible)", report.RateSourceDate)
}

func TestBuildReportRequiresComputedLines(t *testing.T) {
	payslip := liquidationPayslip(models.StructureLiquidationV1)
	payslip.Contract = liquidationContract()

	svc := newTestLiquidationService(payslip, nil)

	_, err := svc.BuildReport(context.Background(), 11, ReportOptions{})
	assert.ErrorIs(t, err, ErrInvalidState)
}

func TestBuildReportInterestBreakdown(t *testing.T) {
	svc := newTestLiquidationService(computedLiquidationPayslip(models.StructureLiquidationV2), nil)

	override := decimal.RequireFromString("236.4601")
	report, err := svc.BuildReport(context.Background(), 11, ReportOptions{
		Currency:     models.CurrencyVES,
		OverrideRate: &override,
	})
	require.NoError(t, err)

	// One row per service month, hire 2024-09 through cut-off 2025-08
	require.Len(t, report.MonthlyInterestBreakdown, 12)

	last := report.MonthlyInterestBreakdown[len(report.MonthlyInterestBreakdown)-1]
	assert.Equal(t, time.August, last.MonthEnd.Month())
	assert.True(t, last.MonthRate.Equal(override))
	// 29.25 USD of accumulated interest at the override rate
	assert.True(t, last.CumulativeInterest.Equal(decimal.RequireFromString("6916.46")),
		"cumulative %s", last.CumulativeInterest)
	// 600 USD of deposits
	assert.True(t, last.Balance.Equal(decimal.RequireFromString("141876.06")),
		"balance %s", last.Balance)
}
