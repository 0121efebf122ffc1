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

// Mock RateRepository
type mockRateRepository struct {
	repository.RateRepository
	mockFindAtOrBefore func(ctx context.Context, currency string, date time.Time) (*models.CurrencyRate, error)
	mockFindEarliest   func(ctx context.Context, currency string) (*models.CurrencyRate, error)
	mockList           func(ctx context.Context, currency string, from, to *time.Time) ([]models.CurrencyRate, error)
}

func (m *mockRateRepository) FindAtOrBefore(ctx context.Context, currency string, date time.Time) (*models.CurrencyRate, error) {
	if m.mockFindAtOrBefore != nil {
		return m.mockFindAtOrBefore(ctx, currency, date)
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockRateRepository) FindEarliest(ctx context.Context, currency string) (*models.CurrencyRate, error) {
	if m.mockFindEarliest != nil {
		return m.mockFindEarliest(ctx, currency)
	}
	return nil, gorm.ErrRecordNotFound
}

func bcvRate(day time.Time, rate string) *models.CurrencyRate {
	source := "BCV"
	return &models.CurrencyRate{
		Currency:      models.CurrencyVES,
		EffectiveDate: day,
		Rate:          decimal.RequireFromString(rate),
		Quote:         models.QuoteForeignPerUSD,
		Source:        &source,
	}
}

func TestGetRateOverrideWins(t *testing.T) {
	repo := &mockRateRepository{
		mockFindAtOrBefore: func(ctx context.Context, currency string, date time.Time) (*models.CurrencyRate, error) {
			t.Fatal("override must not hit the rate table")
			return nil, nil
		},
	}
	svc := NewCurrencyService(repo)

	override := decimal.RequireFromString("236.4601")
	quote, err := svc.GetRate(context.Background(), models.CurrencyVES, date(2025, 8, 31), &override, nil)
	require.NoError(t, err)

	assert.True(t, quote.Rate.Equal(override))
	assert.Nil(t, quote.SourceDate)
	assert.Equal(t, "override", quote.SourceLabel())
}

func TestGetRateRejectsNonPositiveOverride(t *testing.T) {
	svc := NewCurrencyService(&mockRateRepository{})

	zero := decimal.Zero
	_, err := svc.GetRate(context.Background(), models.CurrencyVES, date(2025, 8, 31), &zero, nil)
	assert.Error(t, err)
}

func TestGetRateUSDIsIdentity(t *testing.T) {
	svc := NewCurrencyService(&mockRateRepository{})

	quote, err := svc.GetRate(context.Background(), models.CurrencyUSD, date(2025, 8, 31), nil, nil)
	require.NoError(t, err)
	assert.True(t, quote.Rate.Equal(decimal.NewFromInt(1)))
	require.NotNil(t, quote.SourceDate)
	assert.Equal(t, "2025-08-31", quote.SourceLabel())
}

func TestGetRateLookupOnDate(t *testing.T) {
	recordDay := date(2025, 7, 1)
	repo := &mockRateRepository{
		mockFindAtOrBefore: func(ctx context.Context, currency string, lookup time.Time) (*models.CurrencyRate, error) {
			assert.Equal(t, models.CurrencyVES, currency)
			assert.Equal(t, date(2025, 8, 31), lookup)
			return bcvRate(recordDay, "236.4601"), nil
		},
	}
	svc := NewCurrencyService(repo)

	quote, err := svc.GetRate(context.Background(), models.CurrencyVES, date(2025, 8, 31), nil, nil)
	require.NoError(t, err)

	assert.True(t, quote.Rate.Equal(decimal.RequireFromString("236.4601")))
	assert.Equal(t, "BCV", quote.Source)
	assert.False(t, quote.Approximate)
	assert.Equal(t, "2025-07-01", quote.SourceLabel())
}

func TestGetRateOverrideDateRedirectsLookup(t *testing.T) {
	repo := &mockRateRepository{
		mockFindAtOrBefore: func(ctx context.Context, currency string, lookup time.Time) (*models.CurrencyRate, error) {
			assert.Equal(t, date(2025, 1, 15), lookup)
			return bcvRate(date(2025, 1, 2), "52.0200"), nil
		},
	}
	svc := NewCurrencyService(repo)

	quote, err := svc.GetRate(context.Background(), models.CurrencyVES, date(2025, 8, 31), nil, datePtr(2025, 1, 15))
	require.NoError(t, err)
	assert.True(t, quote.Rate.Equal(decimal.RequireFromString("52.0200")))
}

func TestGetRateFallsBackToEarliest(t *testing.T) {
	// Liquidation older than the rate history: the earliest record stands
	// in, flagged approximate
	repo := &mockRateRepository{
		mockFindEarliest: func(ctx context.Context, currency string) (*models.CurrencyRate, error) {
			return bcvRate(date(2024, 1, 30), "36.50"), nil
		},
	}
	svc := NewCurrencyService(repo)

	quote, err := svc.GetRate(context.Background(), models.CurrencyVES, date(2023, 6, 30), nil, nil)
	require.NoError(t, err)

	assert.True(t, quote.Rate.Equal(decimal.RequireFromString("36.50")))
	assert.True(t, quote.Approximate)
	assert.Equal(t, "2024-01-30 (tasa más antigua disponible)", quote.SourceLabel())
}

func TestGetRateUnavailable(t *testing.T) {
	svc := NewCurrencyService(&mockRateRepository{})

	_, err := svc.GetRate(context.Background(), models.CurrencyVES, date(2025, 8, 31), nil, nil)
	assert.ErrorIs(t, err, ErrRateUnavailable)
}

func TestGetRateNormalizesUSDPerForeignQuote(t *testing.T) {
	// Platform-native rows store USD per VES; conversion must still
	// return VES per USD
	repo := &mockRateRepository{
		mockFindAtOrBefore: func(ctx context.Context, currency string, lookup time.Time) (*models.CurrencyRate, error) {
			record := bcvRate(date(2025, 7, 1), "0.025")
			record.Quote = models.QuoteUSDPerForeign
			return record, nil
		},
	}
	svc := NewCurrencyService(repo)

	quote, err := svc.GetRate(context.Background(), models.CurrencyVES, date(2025, 7, 1), nil, nil)
	require.NoError(t, err)
	assert.True(t, quote.Rate.Equal(decimal.NewFromInt(40)), "rate %s", quote.Rate)
}

func TestConvertAppliesQuote(t *testing.T) {
	repo := &mockRateRepository{
		mockFindAtOrBefore: func(ctx context.Context, currency string, lookup time.Time) (*models.CurrencyRate, error) {
			return bcvRate(date(2025, 7, 1), "236.4601"), nil
		},
	}
	svc := NewCurrencyService(repo)

	amount, quote, err := svc.Convert(context.Background(),
		decimal.RequireFromString("1272.01"), models.CurrencyVES, date(2025, 8, 31), nil, nil)
	require.NoError(t, err)

	expected := decimal.RequireFromString("1272.01").Mul(decimal.RequireFromString("236.4601"))
	assert.True(t, amount.Equal(expected))
	assert.True(t, quote.Rate.Equal(decimal.RequireFromString("236.4601")))
}
