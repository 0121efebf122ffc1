package repository

import (
	"context"
	"time"

	"github.com/tresdv/nomina-api/internal/models"
	"gorm.io/gorm"
)

// EmployeeRepository defines the interface for employee data access
type EmployeeRepository interface {
	FindByID(ctx context.Context, id uint) (*models.Employee, error)
	FindByIDWithContracts(ctx context.Context, id uint) (*models.Employee, error)
	FindByIdentity(ctx context.Context, identity string) (*models.Employee, error)
	Create(ctx context.Context, employee *models.Employee) error
	Update(ctx context.Context, employee *models.Employee) error
	List(ctx context.Context, query *ListQuery) ([]models.Employee, int64, error)
	FindActive(ctx context.Context) ([]models.Employee, error)
}

type employeeRepository struct {
	db *gorm.DB
}

// NewEmployeeRepository creates a new employee repository
func NewEmployeeRepository(db *gorm.DB) EmployeeRepository {
	return &employeeRepository{db: db}
}

func (r *employeeRepository) FindByID(ctx context.Context, id uint) (*models.Employee, error) {
	var employee models.Employee
	err := r.db.WithContext(ctx).First(&employee, id).Error
	if err != nil {
		return nil, err
	}
	return &employee, nil
}

func (r *employeeRepository) FindByIDWithContracts(ctx context.Context, id uint) (*models.Employee, error) {
	var employee models.Employee
	err := r.db.WithContext(ctx).
		Preload("Contracts", func(db *gorm.DB) *gorm.DB {
			return db.Order("start_date ASC")
		}).
		First(&employee, id).Error
	if err != nil {
		return nil, err
	}
	return &employee, nil
}

func (r *employeeRepository) FindByIdentity(ctx context.Context, identity string) (*models.Employee, error) {
	var employee models.Employee
	err := r.db.WithContext(ctx).
		Where("identity = ?", identity).
		First(&employee).Error
	if err != nil {
		return nil, err
	}
	return &employee, nil
}

func (r *employeeRepository) Create(ctx context.Context, employee *models.Employee) error {
	return r.db.WithContext(ctx).Create(employee).Error
}

func (r *employeeRepository) Update(ctx context.Context, employee *models.Employee) error {
	return r.db.WithContext(ctx).Save(employee).Error
}

func (r *employeeRepository) List(ctx context.Context, query *ListQuery) ([]models.Employee, int64, error) {
	var employees []models.Employee
	var total int64

	db := r.db.WithContext(ctx).Model(&models.Employee{})

	if query.Search != "" {
		term := "%" + query.Search + "%"
		db = db.Where("first_name ILIKE ? OR last_name ILIKE ? OR identity ILIKE ?", term, term, term)
	}
	if status := query.Filters["active"]; status != "" {
		db = db.Where("active = ?", status == "true")
	}

	if err := db.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	err := db.Order(query.OrderClause("last_name ASC")).
		Offset((query.Page - 1) * query.PerPage).
		Limit(query.PerPage).
		Find(&employees).Error
	return employees, total, err
}

func (r *employeeRepository) FindActive(ctx context.Context) ([]models.Employee, error) {
	var employees []models.Employee
	err := r.db.WithContext(ctx).
		Where("active = ?", true).
		Order("last_name ASC").
		Find(&employees).Error
	return employees, err
}

// ContractRepository defines the interface for contract data access
type ContractRepository interface {
	FindByID(ctx context.Context, id uint) (*models.Contract, error)
	FindByEmployee(ctx context.Context, employeeID uint) ([]models.Contract, error)
	FindActiveOn(ctx context.Context, employeeID uint, date time.Time) (*models.Contract, error)
	FindLastByEmployee(ctx context.Context, employeeID uint) (*models.Contract, error)
	Create(ctx context.Context, contract *models.Contract) error
	Update(ctx context.Context, contract *models.Contract) error
	FindOpenOn(ctx context.Context, date time.Time) ([]models.Contract, error)
}

type contractRepository struct {
	db *gorm.DB
}

// NewContractRepository creates a new contract repository
func NewContractRepository(db *gorm.DB) ContractRepository {
	return &contractRepository{db: db}
}

func (r *contractRepository) FindByID(ctx context.Context, id uint) (*models.Contract, error) {
	var contract models.Contract
	err := r.db.WithContext(ctx).First(&contract, id).Error
	if err != nil {
		return nil, err
	}
	return &contract, nil
}

func (r *contractRepository) FindByEmployee(ctx context.Context, employeeID uint) ([]models.Contract, error) {
	var contracts []models.Contract
	err := r.db.WithContext(ctx).
		Where("employee_id = ?", employeeID).
		Order("start_date ASC").
		Find(&contracts).Error
	return contracts, err
}

func (r *contractRepository) FindActiveOn(ctx context.Context, employeeID uint, date time.Time) (*models.Contract, error) {
	var contract models.Contract
	err := r.db.WithContext(ctx).
		Where("employee_id = ? AND start_date <= ? AND (end_date IS NULL OR end_date >= ?)", employeeID, date, date).
		Where("status <> ?", models.ContractStatusDraft).
		Order("start_date DESC").
		First(&contract).Error
	if err != nil {
		return nil, err
	}
	return &contract, nil
}

func (r *contractRepository) FindLastByEmployee(ctx context.Context, employeeID uint) (*models.Contract, error) {
	var contract models.Contract
	err := r.db.WithContext(ctx).
		Where("employee_id = ?", employeeID).
		Order("start_date DESC").
		First(&contract).Error
	if err != nil {
		return nil, err
	}
	return &contract, nil
}

func (r *contractRepository) Create(ctx context.Context, contract *models.Contract) error {
	return r.db.WithContext(ctx).Create(contract).Error
}

func (r *contractRepository) Update(ctx context.Context, contract *models.Contract) error {
	return r.db.WithContext(ctx).Save(contract).Error
}

func (r *contractRepository) FindOpenOn(ctx context.Context, date time.Time) ([]models.Contract, error) {
	var contracts []models.Contract
	err := r.db.WithContext(ctx).
		Where("status = ? AND start_date <= ? AND (end_date IS NULL OR end_date >= ?)", models.ContractStatusOpen, date, date).
		Find(&contracts).Error
	return contracts, err
}
