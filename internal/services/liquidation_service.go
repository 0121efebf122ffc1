package services

import (
	"context"
	"errors"
	"time"

	"github.com/shopspring/decimal"
	"github.com/tresdv/nomina-api/internal/models"
	"github.com/tresdv/nomina-api/internal/repository"
	"github.com/tresdv/nomina-api/pkg/logger"
)

// ReportRow is one benefit or deduction of the liquidation report.
// Deduction amounts are shown as positive magnitudes; the sign lives in
// the row's section.
type ReportRow struct {
	Sequence  int             `json:"sequence"`
	Code      string          `json:"code"`
	Name      string          `json:"name"`
	Formula   string          `json:"formula"`   // legal formula template, for the renderer
	Narrative string          `json:"narrative"` // optional calculation note
	AmountUSD decimal.Decimal `json:"amount_usd"`
	Amount    decimal.Decimal `json:"amount"` // display currency, two decimals
}

// ReportTotals aggregates the report sections in display currency.
type ReportTotals struct {
	Benefits   decimal.Decimal `json:"benefits"`
	Deductions decimal.Decimal `json:"deductions"`
	Net        decimal.Decimal `json:"net"`
}

// InterestRow is one month of the prestaciones interest table, in display
// currency. MonthRate is the exchange rate actually used for the row.
type InterestRow struct {
	MonthEnd           time.Time       `json:"month_end"`
	MonthRate          decimal.Decimal `json:"month_rate"`
	Accrual            decimal.Decimal `json:"accrual"`
	Balance            decimal.Decimal `json:"balance"`
	Interest           decimal.Decimal `json:"interest"`
	CumulativeInterest decimal.Decimal `json:"cumulative_interest"`
}

// ContractSummary is the header block of the liquidation report.
type ContractSummary struct {
	HireDate           time.Time       `json:"hire_date"`
	CutOff             time.Time       `json:"cut_off"`
	ServiceMonths      int             `json:"service_months"`
	ServiceMonthsExact decimal.Decimal `json:"service_months_exact"`
	MonthlyWage        decimal.Decimal `json:"monthly_wage"`
	DailySalary        decimal.Decimal `json:"daily_salary"`
}

// LiquidationReport is the structured payload consumed by the PDF and
// spreadsheet renderers.
type LiquidationReport struct {
	Employee                 models.EmployeeResponse `json:"employee"`
	ContractSummary          ContractSummary         `json:"contract_summary"`
	PeriodFrom               time.Time               `json:"period_from"`
	PeriodTo                 time.Time               `json:"period_to"`
	Currency                 string                  `json:"currency"`
	ExchangeRate             decimal.Decimal         `json:"exchange_rate"`
	RateSourceDate           string                  `json:"rate_source_date"` // record date or "override"
	Notice                   string                  `json:"notice,omitempty"`
	Benefits                 []ReportRow             `json:"benefits"`
	Deductions               []ReportRow             `json:"deductions"`
	Totals                   ReportTotals            `json:"totals"`
	MonthlyInterestBreakdown []InterestRow           `json:"monthly_interest_breakdown,omitempty"`
}

// ReportOptions select the display currency and an optional rate override.
type ReportOptions struct {
	Currency     string
	OverrideRate *decimal.Decimal
	OverrideDate *time.Time
}

// LiquidationService assembles the liquidation report from a computed
// payslip, the contract history and the currency service.
type LiquidationService struct {
	payslipRepo     repository.PayslipRepository
	contractRepo    repository.ContractRepository
	employeeRepo    repository.EmployeeRepository
	ruleRepo        repository.RuleRepository
	currencySvc     *CurrencyService
	prestacionesSvc *PrestacionesService
}

// NewLiquidationService creates a new liquidation report service
func NewLiquidationService(
	payslipRepo repository.PayslipRepository,
	contractRepo repository.ContractRepository,
	employeeRepo repository.EmployeeRepository,
	ruleRepo repository.RuleRepository,
	currencySvc *CurrencyService,
	prestacionesSvc *PrestacionesService,
) *LiquidationService {
	return &LiquidationService{
		payslipRepo:     payslipRepo,
		contractRepo:    contractRepo,
		employeeRepo:    employeeRepo,
		ruleRepo:        ruleRepo,
		currencySvc:     currencySvc,
		prestacionesSvc: prestacionesSvc,
	}
}

// BuildReport assembles the report payload for a computed payslip. A
// missing display-currency rate is recoverable: the report falls back to
// the ledger currency with a labelled notice.
func (s *LiquidationService) BuildReport(ctx context.Context, payslipID uint, opts ReportOptions) (*LiquidationReport, error) {
	payslip, err := s.payslipRepo.FindByIDWithDetails(ctx, payslipID)
	if err != nil {
		return nil, err
	}
	if len(payslip.Lines) == 0 {
		return nil, ErrInvalidState
	}

	employee, err := s.employeeRepo.FindByID(ctx, payslip.EmployeeID)
	if err != nil {
		return nil, err
	}
	history, err := s.contractRepo.FindByEmployee(ctx, payslip.EmployeeID)
	if err != nil {
		return nil, err
	}
	timeline, err := NewTimeline(history, payslip.DateTo)
	if err != nil {
		return nil, err
	}

	currency := opts.Currency
	if currency == "" {
		currency = models.CurrencyVES
	}
	quote, err := s.currencySvc.GetRate(ctx, currency, payslip.DateTo, opts.OverrideRate, opts.OverrideDate)
	notice := ""
	if errors.Is(err, ErrRateUnavailable) {
		// Recoverable at render time: fall back to the ledger currency.
		logger.Warn("sin tasa para el reporte, usando moneda contable", "currency", currency)
		currency = models.CurrencyUSD
		day := truncateDate(payslip.DateTo)
		quote = RateQuote{Rate: decimal.NewFromInt(1), SourceDate: &day}
		notice = "Montos expresados en USD por falta de tasa de cambio."
	} else if err != nil {
		return nil, err
	}
	if quote.Approximate {
		notice = "Tasa más antigua disponible aplicada a fechas anteriores al registro."
	}

	report := &LiquidationReport{
		Employee:       employee.ToResponse(),
		PeriodFrom:     payslip.DateFrom,
		PeriodTo:       payslip.DateTo,
		Currency:       currency,
		ExchangeRate:   quote.Rate,
		RateSourceDate: quote.SourceLabel(),
		Notice:         notice,
	}

	contract := payslip.Contract
	report.ContractSummary = ContractSummary{
		HireDate:           timeline.HireDate(),
		CutOff:             timeline.CutOff,
		ServiceMonths:      timeline.ServiceMonths(),
		ServiceMonthsExact: timeline.ServiceMonthsExact(),
		MonthlyWage:        contract.MonthlyWage,
		DailySalary:        contract.DailySalary(),
	}

	ruleRows, err := s.ruleRepo.FindByStructure(ctx, payslip.StructureCode)
	if err != nil {
		return nil, err
	}
	labels := map[string]models.SalaryRule{}
	for _, row := range ruleRows {
		labels[row.Code] = row
	}

	for _, line := range payslip.Lines {
		rule := labels[line.Code]
		row := ReportRow{
			Sequence:  line.Sequence,
			Code:      line.Code,
			Name:      line.Name,
			Formula:   rule.FormulaLabel,
			Narrative: rule.Narrative,
			AmountUSD: line.Amount,
		}
		switch line.Category {
		case models.LineCategoryBasic, models.LineCategoryAllowance:
			row.Amount = line.Amount.Mul(quote.Rate).Round(2)
			report.Benefits = append(report.Benefits, row)
		case models.LineCategoryDeduction:
			row.AmountUSD = line.Amount.Abs()
			row.Amount = line.Amount.Abs().Mul(quote.Rate).Round(2)
			report.Deductions = append(report.Deductions, row)
		}
	}

	// Totals are the sums of the rows as displayed, so the printed sections
	// always reconcile with the printed net.
	for _, row := range report.Benefits {
		report.Totals.Benefits = report.Totals.Benefits.Add(row.Amount)
	}
	for _, row := range report.Deductions {
		report.Totals.Deductions = report.Totals.Deductions.Add(row.Amount)
	}
	report.Totals.Net = report.Totals.Benefits.Sub(report.Totals.Deductions)

	if payslip.StructureCode == models.StructureLiquidationV2 {
		breakdown, err := s.interestBreakdown(ctx, history, timeline, currency, opts)
		if err != nil {
			return nil, err
		}
		report.MonthlyInterestBreakdown = breakdown
	}

	return report, nil
}

// interestBreakdown converts the simulator series to the display currency,
// month by month, with the rate effective at each month's end.
func (s *LiquidationService) interestBreakdown(ctx context.Context, history []models.Contract, timeline *Timeline, currency string, opts ReportOptions) ([]InterestRow, error) {
	accrual := s.prestacionesSvc.Simulate(history, timeline)
	rows := make([]InterestRow, 0, len(accrual.Breakdown))
	for _, month := range accrual.Breakdown {
		quote, err := s.currencySvc.GetRate(ctx, currency, month.MonthEnd, opts.OverrideRate, opts.OverrideDate)
		if err != nil {
			return nil, err
		}
		rows = append(rows, InterestRow{
			MonthEnd:           month.MonthEnd,
			MonthRate:          quote.Rate,
			Accrual:            month.Accrual.Mul(quote.Rate).Round(2),
			Balance:            month.Balance.Mul(quote.Rate).Round(2),
			Interest:           month.Interest.Mul(quote.Rate).Round(2),
			CumulativeInterest: month.CumulativeInterest.Mul(quote.Rate).Round(2),
		})
	}
	return rows, nil
}
