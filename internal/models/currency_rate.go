package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// CurrencyRate is one exchange-rate observation. Historical data carries
// both quotation styles, so every row records which side its Rate
// expresses; ForeignPerUSD normalizes before any arithmetic.
type CurrencyRate struct {
	ID            uint            `gorm:"primaryKey" json:"id"`
	Currency      string          `gorm:"not null;index:idx_currency_date" json:"currency"`
	EffectiveDate time.Time       `gorm:"type:date;not null;index:idx_currency_date" json:"effective_date"`
	Rate          decimal.Decimal `gorm:"type:decimal(24,10);not null" json:"rate"`
	Quote         string          `gorm:"default:foreign_per_usd;not null" json:"quote"`
	Source        *string         `json:"source"` // e.g. BCV, manual
	CreatedAt     time.Time       `json:"created_at"`
}

// TableName specifies the table name for CurrencyRate
func (CurrencyRate) TableName() string {
	return "currency_rates"
}

// Quotation style constants
const (
	QuoteForeignPerUSD = "foreign_per_usd" // Rate = VES per 1 USD
	QuoteUSDPerForeign = "usd_per_foreign" // Rate = USD per 1 VES (platform native)
)

// Currency codes handled by the payroll
const (
	CurrencyUSD = "USD"
	CurrencyVES = "VES"
)

// ForeignPerUSD returns the rate normalized to foreign units per one USD.
func (r *CurrencyRate) ForeignPerUSD() decimal.Decimal {
	if r.Quote == QuoteUSDPerForeign && !r.Rate.IsZero() {
		return decimal.NewFromInt(1).Div(r.Rate)
	}
	return r.Rate
}

// CurrencyRateResponse is the JSON response format for rates
type CurrencyRateResponse struct {
	ID            uint            `json:"id"`
	Currency      string          `json:"currency"`
	EffectiveDate time.Time       `json:"effective_date"`
	Rate          decimal.Decimal `json:"rate"`
	Source        *string         `json:"source"`
}

// ToResponse converts CurrencyRate to CurrencyRateResponse, always in the
// normalized foreign-per-USD orientation.
func (r *CurrencyRate) ToResponse() CurrencyRateResponse {
	return CurrencyRateResponse{
		ID:            r.ID,
		Currency:      r.Currency,
		EffectiveDate: r.EffectiveDate,
		Rate:          r.ForeignPerUSD(),
		Source:        r.Source,
	}
}
