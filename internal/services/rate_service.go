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

// RateService manages the exchange-rate table.
type RateService struct {
	rateRepo repository.RateRepository
	auditSvc *AuditService
}

// NewRateService creates a new rate service
func NewRateService(rateRepo repository.RateRepository, auditSvc *AuditService) *RateService {
	return &RateService{rateRepo: rateRepo, auditSvc: auditSvc}
}

// CreateRateInput are the request fields for a new rate record
type CreateRateInput struct {
	Currency      string          `json:"currency" binding:"required"`
	EffectiveDate time.Time       `json:"effective_date" binding:"required"`
	Rate          decimal.Decimal `json:"rate" binding:"required"`
	Quote         string          `json:"quote"`
	Source        string          `json:"source"`
}

// Create registers one exchange-rate observation.
func (s *RateService) Create(ctx context.Context, input *CreateRateInput, userID uint) (*models.CurrencyRate, error) {
	if !input.Rate.IsPositive() {
		return nil, fmt.Errorf("tasa de cambio inválida: %s", input.Rate)
	}
	quote := input.Quote
	if quote == "" {
		quote = models.QuoteForeignPerUSD
	}
	if quote != models.QuoteForeignPerUSD && quote != models.QuoteUSDPerForeign {
		return nil, fmt.Errorf("orientación de tasa desconocida: %s", quote)
	}

	rate := &models.CurrencyRate{
		Currency:      input.Currency,
		EffectiveDate: truncateDate(input.EffectiveDate),
		Rate:          input.Rate,
		Quote:         quote,
	}
	if input.Source != "" {
		rate.Source = &input.Source
	}
	if err := s.rateRepo.Create(ctx, rate); err != nil {
		return nil, err
	}

	if s.auditSvc != nil {
		details := fmt.Sprintf("%s %s al %s", rate.Currency, rate.Rate, rate.EffectiveDate.Format("2006-01-02"))
		_ = s.auditSvc.Log(ctx, userID, "rate.create", "currency_rate", rate.ID, details, "", "")
	}
	return rate, nil
}

// List returns the rate history for a currency.
func (s *RateService) List(ctx context.Context, currency string, from, to *time.Time) ([]models.CurrencyRate, error) {
	if currency == "" {
		currency = models.CurrencyVES
	}
	return s.rateRepo.List(ctx, currency, from, to)
}

// StaleDays returns how many days the newest rate for the currency lags
// behind today, or -1 when no rate exists. Used by the stale-rate warning
// job.
func (s *RateService) StaleDays(ctx context.Context, currency string) (int, error) {
	latest, err := s.rateRepo.FindLatest(ctx, currency)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return -1, nil
	}
	if err != nil {
		return 0, err
	}
	age := time.Since(latest.EffectiveDate)
	return int(age.Hours() / 24), nil
}
