package repository

import (
	"context"
	"time"

	"github.com/tresdv/nomina-api/internal/models"
	"gorm.io/gorm"
)

// RateRepository defines the interface for currency rate data access
type RateRepository interface {
	// FindAtOrBefore returns the most recent rate whose effective date is
	// on or before the given date.
	FindAtOrBefore(ctx context.Context, currency string, date time.Time) (*models.CurrencyRate, error)
	// FindEarliest returns the oldest rate on file for the currency.
	FindEarliest(ctx context.Context, currency string) (*models.CurrencyRate, error)
	FindLatest(ctx context.Context, currency string) (*models.CurrencyRate, error)
	Create(ctx context.Context, rate *models.CurrencyRate) error
	List(ctx context.Context, currency string, from, to *time.Time) ([]models.CurrencyRate, error)
}

type rateRepository struct {
	db *gorm.DB
}

// NewRateRepository creates a new currency rate repository
func NewRateRepository(db *gorm.DB) RateRepository {
	return &rateRepository{db: db}
}

func (r *rateRepository) FindAtOrBefore(ctx context.Context, currency string, date time.Time) (*models.CurrencyRate, error) {
	var rate models.CurrencyRate
	err := r.db.WithContext(ctx).
		Where("currency = ? AND effective_date <= ?", currency, date).
		Order("effective_date DESC").
		First(&rate).Error
	if err != nil {
		return nil, err
	}
	return &rate, nil
}

func (r *rateRepository) FindEarliest(ctx context.Context, currency string) (*models.CurrencyRate, error) {
	var rate models.CurrencyRate
	err := r.db.WithContext(ctx).
		Where("currency = ?", currency).
		Order("effective_date ASC").
		First(&rate).Error
	if err != nil {
		return nil, err
	}
	return &rate, nil
}

func (r *rateRepository) FindLatest(ctx context.Context, currency string) (*models.CurrencyRate, error) {
	var rate models.CurrencyRate
	err := r.db.WithContext(ctx).
		Where("currency = ?", currency).
		Order("effective_date DESC").
		First(&rate).Error
	if err != nil {
		return nil, err
	}
	return &rate, nil
}

func (r *rateRepository) Create(ctx context.Context, rate *models.CurrencyRate) error {
	return r.db.WithContext(ctx).Create(rate).Error
}

func (r *rateRepository) List(ctx context.Context, currency string, from, to *time.Time) ([]models.CurrencyRate, error) {
	var rates []models.CurrencyRate
	db := r.db.WithContext(ctx).Where("currency = ?", currency)
	if from != nil {
		db = db.Where("effective_date >= ?", *from)
	}
	if to != nil {
		db = db.Where("effective_date <= ?", *to)
	}
	err := db.Order("effective_date ASC").Find(&rates).Error
	return rates, err
}

// RuleRepository defines the interface for salary rule data access
type RuleRepository interface {
	FindByStructure(ctx context.Context, structureCode string) ([]models.SalaryRule, error)
	FindByCode(ctx context.Context, structureCode, code string) (*models.SalaryRule, error)
	Create(ctx context.Context, rule *models.SalaryRule) error
	Update(ctx context.Context, rule *models.SalaryRule) error
}

type ruleRepository struct {
	db *gorm.DB
}

// NewRuleRepository creates a new salary rule repository
func NewRuleRepository(db *gorm.DB) RuleRepository {
	return &ruleRepository{db: db}
}

func (r *ruleRepository) FindByStructure(ctx context.Context, structureCode string) ([]models.SalaryRule, error) {
	var ruleRows []models.SalaryRule
	err := r.db.WithContext(ctx).
		Where("structure_code = ? AND active = ?", structureCode, true).
		Order("sequence ASC, id ASC").
		Find(&ruleRows).Error
	return ruleRows, err
}

func (r *ruleRepository) FindByCode(ctx context.Context, structureCode, code string) (*models.SalaryRule, error) {
	var rule models.SalaryRule
	err := r.db.WithContext(ctx).
		Where("structure_code = ? AND code = ?", structureCode, code).
		First(&rule).Error
	if err != nil {
		return nil, err
	}
	return &rule, nil
}

func (r *ruleRepository) Create(ctx context.Context, rule *models.SalaryRule) error {
	return r.db.WithContext(ctx).Create(rule).Error
}

func (r *ruleRepository) Update(ctx context.Context, rule *models.SalaryRule) error {
	return r.db.WithContext(ctx).Save(rule).Error
}
