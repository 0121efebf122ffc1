package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/shopspring/decimal"
	"github.com/tresdv/nomina-api/internal/models"
	"github.com/tresdv/nomina-api/internal/repository"
	"gorm.io/gorm"
)

// RateSourceOverride marks a quote supplied by the caller instead of the
// rate table.
const RateSourceOverride = "override"

// RateQuote is the rate a conversion used plus its provenance, for the
// audit line on reports.
type RateQuote struct {
	Rate        decimal.Decimal // foreign units per one USD
	SourceDate  *time.Time      // effective date of the record used; nil for overrides
	Source      string          // "override" or the record's source (BCV, manual)
	Approximate bool            // true when the earliest rate stood in for an older date
}

// SourceLabel is the string shown in the report's rate-source field.
func (q RateQuote) SourceLabel() string {
	if q.SourceDate == nil {
		return RateSourceOverride
	}
	label := q.SourceDate.Format("2006-01-02")
	if q.Approximate {
		label += " (tasa más antigua disponible)"
	}
	return label
}

// CurrencyService translates ledger (USD) amounts into a display currency
// at a given date, honoring caller-supplied overrides.
type CurrencyService struct {
	rateRepo repository.RateRepository
}

// NewCurrencyService creates a new currency service
func NewCurrencyService(rateRepo repository.RateRepository) *CurrencyService {
	return &CurrencyService{rateRepo: rateRepo}
}

// GetRate resolves the rate a conversion would use. Precedence: explicit
// override rate, then the most recent record at or before overrideDate,
// then the most recent record at or before onDate. For dates older than
// the earliest record on file the earliest rate is returned, flagged as
// approximate.
func (s *CurrencyService) GetRate(ctx context.Context, currency string, onDate time.Time, overrideRate *decimal.Decimal, overrideDate *time.Time) (RateQuote, error) {
	if overrideRate != nil {
		if !overrideRate.IsPositive() {
			return RateQuote{}, fmt.Errorf("tasa de cambio inválida: %s", overrideRate)
		}
		return RateQuote{Rate: *overrideRate, Source: RateSourceOverride}, nil
	}
	if currency == models.CurrencyUSD {
		day := truncateDate(onDate)
		return RateQuote{Rate: decimal.NewFromInt(1), SourceDate: &day}, nil
	}

	lookupDate := onDate
	if overrideDate != nil {
		lookupDate = *overrideDate
	}

	record, err := s.rateRepo.FindAtOrBefore(ctx, currency, truncateDate(lookupDate))
	approximate := false
	if errors.Is(err, gorm.ErrRecordNotFound) {
		record, err = s.rateRepo.FindEarliest(ctx, currency)
		approximate = true
	}
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return RateQuote{}, fmt.Errorf("%w: %s al %s", ErrRateUnavailable, currency, lookupDate.Format("2006-01-02"))
	}
	if err != nil {
		return RateQuote{}, err
	}

	quote := RateQuote{
		Rate:        record.ForeignPerUSD(),
		SourceDate:  &record.EffectiveDate,
		Approximate: approximate,
	}
	if record.Source != nil {
		quote.Source = *record.Source
	}
	return quote, nil
}

// Convert translates a USD amount into the target currency and returns the
// quote actually applied.
func (s *CurrencyService) Convert(ctx context.Context, amountUSD decimal.Decimal, currency string, onDate time.Time, overrideRate *decimal.Decimal, overrideDate *time.Time) (decimal.Decimal, RateQuote, error) {
	quote, err := s.GetRate(ctx, currency, onDate, overrideRate, overrideDate)
	if err != nil {
		return decimal.Zero, RateQuote{}, err
	}
	return amountUSD.Mul(quote.Rate), quote, nil
}
