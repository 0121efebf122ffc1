package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// Contract represents one continuous period of service for an employee.
// Wages are kept in the ledger currency (USD); the deduction base is the
// portion of the monthly wage subject to statutory withholdings.
type Contract struct {
	ID                uint       `gorm:"primaryKey" json:"id"`
	EmployeeID        uint       `gorm:"not null;index" json:"employee_id"`
	StartDate         time.Time  `gorm:"type:date;not null;index" json:"start_date"`
	EndDate           *time.Time `gorm:"type:date" json:"end_date"`
	Status            string     `gorm:"default:draft;index" json:"status"`
	MonthlyWage       decimal.Decimal `gorm:"type:decimal(18,6);not null" json:"monthly_wage"`
	DeductionBase     decimal.Decimal `gorm:"type:decimal(18,6);not null" json:"deduction_base"`
	CestaDaily        decimal.Decimal `gorm:"type:decimal(18,6);default:0" json:"cesta_daily"`
	ARIBiweeklyPct    decimal.Decimal `gorm:"type:decimal(8,4);default:0" json:"ari_biweekly_pct"`
	UtilidadesFactor  decimal.Decimal `gorm:"type:decimal(8,4);default:1" json:"utilidades_factor"`
	VacationPrepaid   decimal.Decimal `gorm:"type:decimal(18,6);default:0" json:"vacation_prepaid"`
	VacationPaidUntil *time.Time      `gorm:"type:date" json:"vacation_paid_until"`
	Currency          string          `gorm:"default:USD;not null" json:"currency"`
	Note              *string         `gorm:"type:text" json:"note"`
	CreatedAt         time.Time       `json:"created_at"`
	UpdatedAt         time.Time       `json:"updated_at"`

	// Associations
	Employee Employee `gorm:"foreignKey:EmployeeID" json:"-"`
}

// TableName specifies the table name for Contract
func (Contract) TableName() string {
	return "contracts"
}

// Contract status constants
const (
	ContractStatusDraft = "draft"
	ContractStatusOpen  = "open"
	ContractStatusClose = "close"
)

// DeductionBaseFraction is the conventional share of the monthly wage that
// is subject to statutory withholdings when no explicit base is loaded.
var DeductionBaseFraction = decimal.NewFromFloat(0.70)

// SalaryShareFraction splits the deduction base into the salary column of
// the payslip; the remainder is displayed as bonus.
var SalaryShareFraction = decimal.NewFromFloat(0.70)

// MayOpen returns true if the contract can transition to open
func (c *Contract) MayOpen() bool {
	return c.Status == ContractStatusDraft
}

// MayClose returns true if the contract can be closed
func (c *Contract) MayClose() bool {
	return c.Status == ContractStatusOpen
}

// IsActiveOn returns true when the contract covers the given date
func (c *Contract) IsActiveOn(date time.Time) bool {
	if date.Before(c.StartDate) {
		return false
	}
	if c.EndDate != nil && date.After(*c.EndDate) {
		return false
	}
	return true
}

// Covers returns true when the contract period contains [from, to].
// The payslip computation refuses contracts that do not cover the period.
func (c *Contract) Covers(from, to time.Time) bool {
	return c.IsActiveOn(from) && c.IsActiveOn(to)
}

// BonusResidual is the non-taxable remainder of the monthly wage.
func (c *Contract) BonusResidual() decimal.Decimal {
	return c.MonthlyWage.Sub(c.DeductionBase)
}

// SalaryShare is the portion displayed in the salary column: 70% of the
// deduction base.
func (c *Contract) SalaryShare() decimal.Decimal {
	return c.DeductionBase.Mul(SalaryShareFraction)
}

// BonusShare is the displayed bonus column: the remaining 30% of the
// deduction base plus the non-taxable residual. SalaryShare + BonusShare
// always reconstructs the monthly wage.
func (c *Contract) BonusShare() decimal.Decimal {
	return c.MonthlyWage.Sub(c.SalaryShare())
}

// DailySalary is the monthly wage over the 30-day commercial month.
func (c *Contract) DailySalary() decimal.Decimal {
	return c.MonthlyWage.Div(decimal.NewFromInt(30))
}

// Validate enforces 0 <= deduction_base <= monthly_wage.
func (c *Contract) Validate() bool {
	if c.DeductionBase.IsNegative() {
		return false
	}
	return c.DeductionBase.LessThanOrEqual(c.MonthlyWage)
}

// ContractResponse is the JSON response format for contracts
type ContractResponse struct {
	ID                uint            `json:"id"`
	EmployeeID        uint            `json:"employee_id"`
	StartDate         time.Time       `json:"start_date"`
	EndDate           *time.Time      `json:"end_date"`
	Status            string          `json:"status"`
	MonthlyWage       decimal.Decimal `json:"monthly_wage"`
	DeductionBase     decimal.Decimal `json:"deduction_base"`
	BonusResidual     decimal.Decimal `json:"bonus_residual"`
	SalaryShare       decimal.Decimal `json:"salary_share"`
	BonusShare        decimal.Decimal `json:"bonus_share"`
	CestaDaily        decimal.Decimal `json:"cesta_daily"`
	ARIBiweeklyPct    decimal.Decimal `json:"ari_biweekly_pct"`
	UtilidadesFactor  decimal.Decimal `json:"utilidades_factor"`
	VacationPrepaid   decimal.Decimal `json:"vacation_prepaid"`
	VacationPaidUntil *time.Time      `json:"vacation_paid_until"`
	Currency          string          `json:"currency"`
}

// ToResponse converts Contract to ContractResponse
func (c *Contract) ToResponse() ContractResponse {
	return ContractResponse{
		ID:                c.ID,
		EmployeeID:        c.EmployeeID,
		StartDate:         c.StartDate,
		EndDate:           c.EndDate,
		Status:            c.Status,
		MonthlyWage:       c.MonthlyWage,
		DeductionBase:     c.DeductionBase,
		BonusResidual:     c.BonusResidual(),
		SalaryShare:       c.SalaryShare(),
		BonusShare:        c.BonusShare(),
		CestaDaily:        c.CestaDaily,
		ARIBiweeklyPct:    c.ARIBiweeklyPct,
		UtilidadesFactor:  c.UtilidadesFactor,
		VacationPrepaid:   c.VacationPrepaid,
		VacationPaidUntil: c.VacationPaidUntil,
		Currency:          c.Currency,
	}
}
