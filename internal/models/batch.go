package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// PayslipBatch groups the payslips of one pay run. While a batch is
// cancelled, none of its payslips may return to draft.
type PayslipBatch struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	Name      string    `gorm:"not null" json:"name"`
	DateFrom  time.Time `gorm:"type:date;not null" json:"date_from"`
	DateTo    time.Time `gorm:"type:date;not null" json:"date_to"`
	Status    string    `gorm:"default:draft;not null;index" json:"status"`
	Structure string    `gorm:"default:regular;not null" json:"structure"`
	ClosedAt  *time.Time `json:"closed_at"`
	CreatedAt time.Time  `json:"created_at"`
	UpdatedAt time.Time  `json:"updated_at"`

	// Associations
	Payslips []Payslip `gorm:"foreignKey:BatchID" json:"payslips,omitempty"`
}

// TableName specifies the table name for PayslipBatch
func (PayslipBatch) TableName() string {
	return "payslip_batches"
}

// Batch status constants
const (
	BatchStatusDraft  = "draft"
	BatchStatusClosed = "closed"
	BatchStatusCancel = "cancel"
)

// MayClose returns true if the batch can be closed
func (b *PayslipBatch) MayClose() bool {
	return b.Status == BatchStatusDraft
}

// MayCancel returns true if the batch can be cancelled
func (b *PayslipBatch) MayCancel() bool {
	return b.Status == BatchStatusDraft || b.Status == BatchStatusClosed
}

// MayReopen returns true if the batch can return to draft
func (b *PayslipBatch) MayReopen() bool {
	return b.Status == BatchStatusCancel || b.Status == BatchStatusClosed
}

// IsCancelled reports the state that blocks child payslips from drafting
func (b *PayslipBatch) IsCancelled() bool {
	return b.Status == BatchStatusCancel
}

// TotalNet sums the net of all loaded payslips
func (b *PayslipBatch) TotalNet() decimal.Decimal {
	total := decimal.Zero
	for i := range b.Payslips {
		total = total.Add(b.Payslips[i].Net())
	}
	return total
}

// BatchResponse is the JSON response format for batches
type BatchResponse struct {
	ID           uint            `json:"id"`
	Name         string          `json:"name"`
	DateFrom     time.Time       `json:"date_from"`
	DateTo       time.Time       `json:"date_to"`
	Status       string          `json:"status"`
	Structure    string          `json:"structure"`
	PayslipCount int             `json:"payslip_count"`
	TotalNet     decimal.Decimal `json:"total_net"`
	ClosedAt     *time.Time      `json:"closed_at"`
	CreatedAt    time.Time       `json:"created_at"`
}

// ToResponse converts PayslipBatch to BatchResponse
func (b *PayslipBatch) ToResponse() BatchResponse {
	return BatchResponse{
		ID:           b.ID,
		Name:         b.Name,
		DateFrom:     b.DateFrom,
		DateTo:       b.DateTo,
		Status:       b.Status,
		Structure:    b.Structure,
		PayslipCount: len(b.Payslips),
		TotalNet:     b.TotalNet(),
		ClosedAt:     b.ClosedAt,
		CreatedAt:    b.CreatedAt,
	}
}
