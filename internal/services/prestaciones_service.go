package services

import (
	"time"

	"github.com/shopspring/decimal"
	"github.com/tresdv/nomina-api/internal/models"
)

// Prestaciones interest accrues at 13% per annum on the standing balance,
// capitalized monthly. The seniority deposit is 15 days of salary per
// completed trimester of service.
var (
	monthlyInterestRate = decimal.RequireFromString("0.13").Div(twelve)
	trimesterDepositDays = decimal.NewFromInt(15)
)

// MonthAccrual is one row of the prestaciones simulation.
type MonthAccrual struct {
	MonthEnd           time.Time       `json:"month_end"`
	Accrual            decimal.Decimal `json:"accrual"`             // seniority deposit this month (USD)
	Balance            decimal.Decimal `json:"balance"`             // balance after the deposit
	Interest           decimal.Decimal `json:"interest"`            // interest on the balance before the deposit
	CumulativeInterest decimal.Decimal `json:"cumulative_interest"`
}

// AccrualResult is the simulator output: the interest total and the
// per-month series behind it.
type AccrualResult struct {
	TotalInterest decimal.Decimal `json:"total_interest"`
	Balance       decimal.Decimal `json:"balance"`
	Breakdown     []MonthAccrual  `json:"breakdown"`
}

// PrestacionesService simulates the seniority-benefit balance and its
// statutory interest month by month from hire to cut-off.
type PrestacionesService struct{}

// NewPrestacionesService creates a new prestaciones simulator
func NewPrestacionesService() *PrestacionesService {
	return &PrestacionesService{}
}

// Simulate walks the month-end series of the service timeline. Months
// inside an employment gap contribute no deposit and no interest. The
// deposit lands on every third month of accumulated service; interest for
// a month is computed on the balance standing before that month's deposit.
func (s *PrestacionesService) Simulate(contracts []models.Contract, timeline *Timeline) *AccrualResult {
	result := &AccrualResult{
		TotalInterest: decimal.Zero,
		Balance:       decimal.Zero,
	}

	serviceMonths := 0
	cursor := firstOfMonth(timeline.HireDate())
	for !cursor.After(timeline.CutOff) {
		monthEnd := endOfMonth(cursor)
		rowDate := monthEnd
		if rowDate.After(timeline.CutOff) {
			rowDate = timeline.CutOff
		}
		if !timeline.overlapsMonth(cursor, monthEnd) {
			cursor = cursor.AddDate(0, 1, 0)
			continue
		}
		serviceMonths++

		interest := result.Balance.Mul(monthlyInterestRate).Round(6)

		accrual := decimal.Zero
		if serviceMonths%3 == 0 {
			accrual = wageAt(contracts, rowDate).Div(thirty).Mul(trimesterDepositDays).Round(6)
		}
		result.Balance = result.Balance.Add(accrual)
		result.TotalInterest = result.TotalInterest.Add(interest)

		result.Breakdown = append(result.Breakdown, MonthAccrual{
			MonthEnd:           rowDate,
			Accrual:            accrual,
			Balance:            result.Balance,
			Interest:           interest,
			CumulativeInterest: result.TotalInterest,
		})
		cursor = cursor.AddDate(0, 1, 0)
	}
	return result
}

// overlapsMonth reports whether any service segment covers at least one
// day of [monthStart, monthEnd].
func (t *Timeline) overlapsMonth(monthStart, monthEnd time.Time) bool {
	for _, seg := range t.Segments {
		if !seg.Start.After(monthEnd) && !seg.End.Before(monthStart) {
			return true
		}
	}
	return false
}

// wageAt returns the monthly wage of the contract covering the date, or
// the wage of the nearest earlier contract when the date falls in a gap
// month's tail.
func wageAt(contracts []models.Contract, date time.Time) decimal.Decimal {
	wage := decimal.Zero
	for _, c := range contracts {
		if c.Status == models.ContractStatusDraft {
			continue
		}
		if c.IsActiveOn(date) {
			return c.MonthlyWage
		}
		if !c.StartDate.After(date) {
			wage = c.MonthlyWage
		}
	}
	return wage
}

func firstOfMonth(d time.Time) time.Time {
	return time.Date(d.Year(), d.Month(), 1, 0, 0, 0, 0, time.UTC)
}

func endOfMonth(d time.Time) time.Time {
	return firstOfMonth(d).AddDate(0, 1, -1)
}
