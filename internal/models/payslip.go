package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// Payslip is one computed settlement document for an employee over a
// period. Lines are fully determined by the structure's rule set plus the
// evaluation context; they are replaced as a unit on every recompute.
type Payslip struct {
	ID            uint       `gorm:"primaryKey" json:"id"`
	BatchID       *uint      `gorm:"index" json:"batch_id"`
	EmployeeID    uint       `gorm:"not null;index" json:"employee_id"`
	ContractID    uint       `gorm:"not null;index" json:"contract_id"`
	StructureCode string     `gorm:"not null;index" json:"structure_code"`
	DateFrom      time.Time  `gorm:"type:date;not null" json:"date_from"`
	DateTo        time.Time  `gorm:"type:date;not null" json:"date_to"`
	Status        string     `gorm:"default:draft;not null;index" json:"status"`
	Number        string     `gorm:"index" json:"number"`
	ComputedAt    *time.Time `json:"computed_at"`
	ConfirmedAt   *time.Time `json:"confirmed_at"`
	CreatedAt     time.Time  `json:"created_at"`
	UpdatedAt     time.Time  `json:"updated_at"`

	// Associations
	Employee Employee      `gorm:"foreignKey:EmployeeID" json:"employee,omitempty"`
	Contract Contract      `gorm:"foreignKey:ContractID" json:"contract,omitempty"`
	Batch    *PayslipBatch `gorm:"foreignKey:BatchID" json:"batch,omitempty"`
	Lines    []PayslipLine `gorm:"foreignKey:PayslipID" json:"lines,omitempty"`
}

// TableName specifies the table name for Payslip
func (Payslip) TableName() string {
	return "payslips"
}

// Payslip status constants
const (
	PayslipStatusDraft    = "draft"
	PayslipStatusComputed = "computed"
	PayslipStatusDone     = "done"
	PayslipStatusCancel   = "cancel"
)

// Payslip structure constants
const (
	StructureRegular       = "regular"
	StructureAguinaldos    = "aguinaldos"
	StructureLiquidationV1 = "liquidation-v1"
	StructureLiquidationV2 = "liquidation-v2"
)

// MayCompute returns true if the payslip can be (re)computed
func (p *Payslip) MayCompute() bool {
	return p.Status == PayslipStatusDraft
}

// MayConfirm returns true if the payslip can transition to done
func (p *Payslip) MayConfirm() bool {
	return p.Status == PayslipStatusComputed
}

// MaySetToDraft returns true if the payslip can return to draft.
// The batch guard (no draft while the batch is cancelled) is enforced by
// the service, not here, because it needs the parent batch loaded.
func (p *Payslip) MaySetToDraft() bool {
	return p.Status == PayslipStatusComputed || p.Status == PayslipStatusDone
}

// MayCancel returns true if the payslip can be cancelled
func (p *Payslip) MayCancel() bool {
	return p.Status != PayslipStatusDone
}

// IsLiquidation returns true for final-settlement structures
func (p *Payslip) IsLiquidation() bool {
	return p.StructureCode == StructureLiquidationV1 || p.StructureCode == StructureLiquidationV2
}

// Gross sums the basic and allowance lines
func (p *Payslip) Gross() decimal.Decimal {
	total := decimal.Zero
	for _, line := range p.Lines {
		if line.Category == LineCategoryBasic || line.Category == LineCategoryAllowance {
			total = total.Add(line.Amount)
		}
	}
	return total
}

// Deductions sums the deduction lines (stored as negatives)
func (p *Payslip) Deductions() decimal.Decimal {
	total := decimal.Zero
	for _, line := range p.Lines {
		if line.Category == LineCategoryDeduction {
			total = total.Add(line.Amount)
		}
	}
	return total
}

// Net is the algebraic sum of gross and signed deductions
func (p *Payslip) Net() decimal.Decimal {
	return p.Gross().Add(p.Deductions())
}

// Line returns the line with the given code, or nil
func (p *Payslip) Line(code string) *PayslipLine {
	for i := range p.Lines {
		if p.Lines[i].Code == code {
			return &p.Lines[i]
		}
	}
	return nil
}

// PayslipLine is one signed amount produced by a salary rule.
// Amounts are persisted in the ledger currency (USD); display-currency
// figures are derived at render time and never stored.
type PayslipLine struct {
	ID        uint             `gorm:"primaryKey" json:"id"`
	PayslipID uint             `gorm:"not null;index" json:"payslip_id"`
	Code      string           `gorm:"not null;index" json:"code"`
	Name      string           `gorm:"not null" json:"name"`
	Sequence  int              `gorm:"not null" json:"sequence"`
	Category  string           `gorm:"not null" json:"category"`
	Amount    decimal.Decimal  `gorm:"type:decimal(18,6);not null" json:"amount"`
	Quantity  *decimal.Decimal `gorm:"type:decimal(18,6)" json:"quantity"`
	Rate      *decimal.Decimal `gorm:"type:decimal(18,6)" json:"rate"`
	CreatedAt time.Time        `json:"created_at"`
}

// TableName specifies the table name for PayslipLine
func (PayslipLine) TableName() string {
	return "payslip_lines"
}

// Line category constants
const (
	LineCategoryBasic     = "basic"
	LineCategoryAllowance = "allowance"
	LineCategoryDeduction = "deduction"
	LineCategoryGross     = "gross"
	LineCategoryNet       = "net"
)

// PayslipResponse is the JSON response format for payslips
type PayslipResponse struct {
	ID            uint                  `json:"id"`
	BatchID       *uint                 `json:"batch_id"`
	EmployeeID    uint                  `json:"employee_id"`
	EmployeeName  string                `json:"employee_name,omitempty"`
	ContractID    uint                  `json:"contract_id"`
	StructureCode string                `json:"structure_code"`
	DateFrom      time.Time             `json:"date_from"`
	DateTo        time.Time             `json:"date_to"`
	Status        string                `json:"status"`
	Number        string                `json:"number"`
	Gross         decimal.Decimal       `json:"gross"`
	Deductions    decimal.Decimal       `json:"deductions"`
	Net           decimal.Decimal       `json:"net"`
	Lines         []PayslipLineResponse `json:"lines,omitempty"`
	ComputedAt    *time.Time            `json:"computed_at"`
	ConfirmedAt   *time.Time            `json:"confirmed_at"`
}

// PayslipLineResponse is the JSON response format for payslip lines
type PayslipLineResponse struct {
	Code     string           `json:"code"`
	Name     string           `json:"name"`
	Sequence int              `json:"sequence"`
	Category string           `json:"category"`
	Amount   decimal.Decimal  `json:"amount"`
	Quantity *decimal.Decimal `json:"quantity,omitempty"`
	Rate     *decimal.Decimal `json:"rate,omitempty"`
}

// ToResponse converts Payslip to PayslipResponse
func (p *Payslip) ToResponse() PayslipResponse {
	resp := PayslipResponse{
		ID:            p.ID,
		BatchID:       p.BatchID,
		EmployeeID:    p.EmployeeID,
		ContractID:    p.ContractID,
		StructureCode: p.StructureCode,
		DateFrom:      p.DateFrom,
		DateTo:        p.DateTo,
		Status:        p.Status,
		Number:        p.Number,
		Gross:         p.Gross(),
		Deductions:    p.Deductions(),
		Net:           p.Net(),
		ComputedAt:    p.ComputedAt,
		ConfirmedAt:   p.ConfirmedAt,
	}
	if p.Employee.ID != 0 {
		resp.EmployeeName = p.Employee.FullName()
	}
	for _, line := range p.Lines {
		resp.Lines = append(resp.Lines, PayslipLineResponse{
			Code:     line.Code,
			Name:     line.Name,
			Sequence: line.Sequence,
			Category: line.Category,
			Amount:   line.Amount,
			Quantity: line.Quantity,
			Rate:     line.Rate,
		})
	}
	return resp
}
