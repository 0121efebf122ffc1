package models

import (
	"time"
)

// SalaryRule is one monetary rule of a payslip structure. Condition and
// Amount are expressions in the engine's small formula language; rules are
// data so RRHH can adjust formulas without a deploy. Evaluation order is
// ascending Sequence, stable on ties.
type SalaryRule struct {
	ID            uint      `gorm:"primaryKey" json:"id"`
	StructureCode string    `gorm:"not null;index:idx_structure_seq" json:"structure_code"`
	Code          string    `gorm:"not null;index" json:"code"`
	Name          string    `gorm:"not null" json:"name"`
	Category      string    `gorm:"not null" json:"category"`
	Sequence      int       `gorm:"not null;index:idx_structure_seq" json:"sequence"`
	Condition     string    `gorm:"type:text" json:"condition"` // empty means always
	Amount        string    `gorm:"type:text;not null" json:"amount"`
	FormulaLabel  string    `gorm:"type:text" json:"formula_label"` // legal formula shown on reports
	Narrative     string    `gorm:"type:text" json:"narrative"`     // optional calculation note
	Active        bool      `gorm:"default:true;index" json:"active"`
	CreatedAt     time.Time `json:"created_at"`
	UpdatedAt     time.Time `json:"updated_at"`
}

// TableName specifies the table name for SalaryRule
func (SalaryRule) TableName() string {
	return "salary_rules"
}

// Liquidation rule codes
const (
	RuleCodeAntiguedad      = "LIQUID_ANTIG"
	RuleCodeVacaciones      = "LIQUID_VACACIONES"
	RuleCodeBonoVacacional  = "LIQUID_BONO_VACACIONAL"
	RuleCodeVacationPrepaid = "LIQUID_VACATION_PREPAID"
	RuleCodeUtilidades      = "LIQUID_UTILIDADES"
	RuleCodeIntereses       = "LIQUID_INTERESES"
	RuleCodeARIDeduction    = "LIQUID_ARI_DED"
	RuleCodeSSODeduction    = "LIQUID_SSO_DED"
	RuleCodeLiquidNet       = "LIQUID_NET"
)

// Regular payslip rule codes
const (
	RuleCodeSalario     = "VE_SALARIO"
	RuleCodeBono        = "VE_BONO"
	RuleCodeCestaTicket = "VE_CESTA_TICKET"
	RuleCodeARI         = "VE_ARI"
	RuleCodeSSO         = "VE_SSO"
	RuleCodeNet         = "VE_NET"
	RuleCodeAguinaldos  = "VE_AGUINALDOS"
)
