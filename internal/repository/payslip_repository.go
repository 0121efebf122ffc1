package repository

import (
	"context"
	"time"

	"github.com/tresdv/nomina-api/internal/models"
	"gorm.io/gorm"
)

// PayslipRepository defines the interface for payslip data access
type PayslipRepository interface {
	FindByID(ctx context.Context, id uint) (*models.Payslip, error)
	FindByIDWithDetails(ctx context.Context, id uint) (*models.Payslip, error)
	FindByBatch(ctx context.Context, batchID uint) ([]models.Payslip, error)
	FindByEmployee(ctx context.Context, employeeID uint) ([]models.Payslip, error)
	Create(ctx context.Context, payslip *models.Payslip) error
	Update(ctx context.Context, payslip *models.Payslip) error
	List(ctx context.Context, query *PayslipQuery) ([]models.Payslip, int64, error)
	// ReplaceLines atomically swaps the payslip's lines and status in a
	// single transaction; either everything is written or nothing is.
	ReplaceLines(ctx context.Context, payslip *models.Payslip, lines []models.PayslipLine) error
}

// PayslipQuery extends ListQuery with payslip-specific filters
type PayslipQuery struct {
	*ListQuery
	EmployeeID uint
	BatchID    uint
	Status     string
	Structure  string
	From       *time.Time
	To         *time.Time
}

type payslipRepository struct {
	db *gorm.DB
}

// NewPayslipRepository creates a new payslip repository
func NewPayslipRepository(db *gorm.DB) PayslipRepository {
	return &payslipRepository{db: db}
}

func (r *payslipRepository) FindByID(ctx context.Context, id uint) (*models.Payslip, error) {
	var payslip models.Payslip
	err := r.db.WithContext(ctx).First(&payslip, id).Error
	if err != nil {
		return nil, err
	}
	return &payslip, nil
}

func (r *payslipRepository) FindByIDWithDetails(ctx context.Context, id uint) (*models.Payslip, error) {
	var payslip models.Payslip
	err := r.db.WithContext(ctx).
		Joins("Employee").
		Joins("Contract").
		Preload("Batch").
		Preload("Lines", func(db *gorm.DB) *gorm.DB {
			return db.Order("sequence ASC, id ASC")
		}).
		First(&payslip, id).Error
	if err != nil {
		return nil, err
	}
	return &payslip, nil
}

func (r *payslipRepository) FindByBatch(ctx context.Context, batchID uint) ([]models.Payslip, error) {
	var payslips []models.Payslip
	err := r.db.WithContext(ctx).
		Where("batch_id = ?", batchID).
		Preload("Employee").
		Preload("Lines").
		Order("id ASC").
		Find(&payslips).Error
	return payslips, err
}

func (r *payslipRepository) FindByEmployee(ctx context.Context, employeeID uint) ([]models.Payslip, error) {
	var payslips []models.Payslip
	err := r.db.WithContext(ctx).
		Where("employee_id = ?", employeeID).
		Preload("Lines").
		Order("date_from DESC").
		Find(&payslips).Error
	return payslips, err
}

func (r *payslipRepository) Create(ctx context.Context, payslip *models.Payslip) error {
	return r.db.WithContext(ctx).Create(payslip).Error
}

func (r *payslipRepository) Update(ctx context.Context, payslip *models.Payslip) error {
	return r.db.WithContext(ctx).Omit("Lines", "Employee", "Contract", "Batch").Save(payslip).Error
}

func (r *payslipRepository) List(ctx context.Context, query *PayslipQuery) ([]models.Payslip, int64, error) {
	var payslips []models.Payslip
	var total int64

	db := r.db.WithContext(ctx).Model(&models.Payslip{})

	if query.EmployeeID > 0 {
		db = db.Where("employee_id = ?", query.EmployeeID)
	}
	if query.BatchID > 0 {
		db = db.Where("batch_id = ?", query.BatchID)
	}
	if query.Status != "" {
		db = db.Where("status = ?", query.Status)
	}
	if query.Structure != "" {
		db = db.Where("structure_code = ?", query.Structure)
	}
	if query.From != nil {
		db = db.Where("date_from >= ?", *query.From)
	}
	if query.To != nil {
		db = db.Where("date_to <= ?", *query.To)
	}

	if err := db.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	err := db.Preload("Employee").
		Preload("Lines").
		Order(query.OrderClause("date_from DESC")).
		Offset((query.Page - 1) * query.PerPage).
		Limit(query.PerPage).
		Find(&payslips).Error
	return payslips, total, err
}

func (r *payslipRepository) ReplaceLines(ctx context.Context, payslip *models.Payslip, lines []models.PayslipLine) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("payslip_id = ?", payslip.ID).Delete(&models.PayslipLine{}).Error; err != nil {
			return err
		}
		for i := range lines {
			lines[i].ID = 0
			lines[i].PayslipID = payslip.ID
		}
		if len(lines) > 0 {
			if err := tx.Create(&lines).Error; err != nil {
				return err
			}
		}
		if err := tx.Omit("Lines", "Employee", "Contract", "Batch").Save(payslip).Error; err != nil {
			return err
		}
		payslip.Lines = lines
		return nil
	})
}

// BatchRepository defines the interface for payslip batch data access
type BatchRepository interface {
	FindByID(ctx context.Context, id uint) (*models.PayslipBatch, error)
	FindByIDWithPayslips(ctx context.Context, id uint) (*models.PayslipBatch, error)
	Create(ctx context.Context, batch *models.PayslipBatch) error
	Update(ctx context.Context, batch *models.PayslipBatch) error
	List(ctx context.Context, query *ListQuery) ([]models.PayslipBatch, int64, error)
}

type batchRepository struct {
	db *gorm.DB
}

// NewBatchRepository creates a new batch repository
func NewBatchRepository(db *gorm.DB) BatchRepository {
	return &batchRepository{db: db}
}

func (r *batchRepository) FindByID(ctx context.Context, id uint) (*models.PayslipBatch, error) {
	var batch models.PayslipBatch
	err := r.db.WithContext(ctx).First(&batch, id).Error
	if err != nil {
		return nil, err
	}
	return &batch, nil
}

func (r *batchRepository) FindByIDWithPayslips(ctx context.Context, id uint) (*models.PayslipBatch, error) {
	var batch models.PayslipBatch
	err := r.db.WithContext(ctx).
		Preload("Payslips", func(db *gorm.DB) *gorm.DB {
			return db.Order("id ASC")
		}).
		Preload("Payslips.Employee").
		Preload("Payslips.Lines").
		First(&batch, id).Error
	if err != nil {
		return nil, err
	}
	return &batch, nil
}

func (r *batchRepository) Create(ctx context.Context, batch *models.PayslipBatch) error {
	return r.db.WithContext(ctx).Create(batch).Error
}

func (r *batchRepository) Update(ctx context.Context, batch *models.PayslipBatch) error {
	return r.db.WithContext(ctx).Omit("Payslips").Save(batch).Error
}

func (r *batchRepository) List(ctx context.Context, query *ListQuery) ([]models.PayslipBatch, int64, error) {
	var batches []models.PayslipBatch
	var total int64

	db := r.db.WithContext(ctx).Model(&models.PayslipBatch{})

	if status := query.Filters["status"]; status != "" {
		db = db.Where("status = ?", status)
	}
	if query.Search != "" {
		db = db.Where("name ILIKE ?", "%"+query.Search+"%")
	}

	if err := db.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	err := db.Order(query.OrderClause("date_from DESC")).
		Offset((query.Page - 1) * query.PerPage).
		Limit(query.PerPage).
		Find(&batches).Error
	return batches, total, err
}
