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

// ContractService manages the contract history behind the service
// timeline. Contracts of one employee must never overlap.
type ContractService struct {
	contractRepo repository.ContractRepository
	employeeRepo repository.EmployeeRepository
	auditSvc     *AuditService
}

// NewContractService creates a new contract service
func NewContractService(
	contractRepo repository.ContractRepository,
	employeeRepo repository.EmployeeRepository,
	auditSvc *AuditService,
) *ContractService {
	return &ContractService{
		contractRepo: contractRepo,
		employeeRepo: employeeRepo,
		auditSvc:     auditSvc,
	}
}

// CreateContractInput are the request fields for a new contract
type CreateContractInput struct {
	EmployeeID       uint             `json:"employee_id" binding:"required"`
	StartDate        time.Time        `json:"start_date" binding:"required"`
	EndDate          *time.Time       `json:"end_date"`
	MonthlyWage      decimal.Decimal  `json:"monthly_wage" binding:"required"`
	DeductionBase    *decimal.Decimal `json:"deduction_base"`
	CestaDaily       decimal.Decimal  `json:"cesta_daily"`
	ARIBiweeklyPct   decimal.Decimal  `json:"ari_biweekly_pct"`
	UtilidadesFactor decimal.Decimal  `json:"utilidades_factor"`
	VacationPrepaid  decimal.Decimal  `json:"vacation_prepaid"`
}

// Create registers a draft contract. When no deduction base is given the
// conventional 70% of the monthly wage applies.
func (s *ContractService) Create(ctx context.Context, input *CreateContractInput, userID uint) (*models.Contract, error) {
	if _, err := s.employeeRepo.FindByID(ctx, input.EmployeeID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}

	deductionBase := input.MonthlyWage.Mul(models.DeductionBaseFraction)
	if input.DeductionBase != nil {
		deductionBase = *input.DeductionBase
	}

	// A factor of zero would silently erase the utilidades line; an unset
	// factor means the statutory single share.
	utilidadesFactor := input.UtilidadesFactor
	if utilidadesFactor.IsZero() {
		utilidadesFactor = decimal.NewFromInt(1)
	}

	contract := &models.Contract{
		EmployeeID:       input.EmployeeID,
		StartDate:        truncateDate(input.StartDate),
		Status:           models.ContractStatusDraft,
		MonthlyWage:      input.MonthlyWage,
		DeductionBase:    deductionBase,
		CestaDaily:       input.CestaDaily,
		ARIBiweeklyPct:   input.ARIBiweeklyPct,
		UtilidadesFactor: utilidadesFactor,
		VacationPrepaid:  input.VacationPrepaid,
		Currency:         models.CurrencyUSD,
	}
	if input.EndDate != nil {
		end := truncateDate(*input.EndDate)
		contract.EndDate = &end
	}

	if !contract.Validate() {
		return nil, fmt.Errorf("base de deducción inválida: debe estar entre 0 y el salario mensual")
	}
	if err := s.checkOverlap(ctx, contract); err != nil {
		return nil, err
	}

	if err := s.contractRepo.Create(ctx, contract); err != nil {
		return nil, err
	}
	if s.auditSvc != nil {
		_ = s.auditSvc.Log(ctx, userID, "contract.create", "contract", contract.ID, "", "", "")
	}
	return contract, nil
}

// FindByID returns one contract.
func (s *ContractService) FindByID(ctx context.Context, id uint) (*models.Contract, error) {
	contract, err := s.contractRepo.FindByID(ctx, id)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotFound
	}
	return contract, err
}

// FindByEmployee returns the contract history ordered by start date.
func (s *ContractService) FindByEmployee(ctx context.Context, employeeID uint) ([]models.Contract, error) {
	return s.contractRepo.FindByEmployee(ctx, employeeID)
}

// Open activates a draft contract so payslips can be computed against it.
func (s *ContractService) Open(ctx context.Context, id uint, userID uint) (*models.Contract, error) {
	contract, err := s.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if !contract.MayOpen() {
		return nil, ErrInvalidState
	}
	contract.Status = models.ContractStatusOpen
	if err := s.contractRepo.Update(ctx, contract); err != nil {
		return nil, err
	}
	if s.auditSvc != nil {
		_ = s.auditSvc.Log(ctx, userID, "contract.open", "contract", contract.ID, "", "", "")
	}
	return contract, nil
}

// Close ends an open contract at the given date.
func (s *ContractService) Close(ctx context.Context, id uint, endDate time.Time, userID uint) (*models.Contract, error) {
	contract, err := s.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if !contract.MayClose() {
		return nil, ErrInvalidState
	}
	end := truncateDate(endDate)
	if end.Before(contract.StartDate) {
		return nil, fmt.Errorf("la fecha de cierre precede al inicio del contrato")
	}
	contract.EndDate = &end
	contract.Status = models.ContractStatusClose
	if err := s.contractRepo.Update(ctx, contract); err != nil {
		return nil, err
	}
	if s.auditSvc != nil {
		_ = s.auditSvc.Log(ctx, userID, "contract.close", "contract", contract.ID,
			end.Format("2006-01-02"), "", "")
	}
	return contract, nil
}

// checkOverlap rejects a contract whose period intersects an existing one
// of the same employee.
func (s *ContractService) checkOverlap(ctx context.Context, contract *models.Contract) error {
	history, err := s.contractRepo.FindByEmployee(ctx, contract.EmployeeID)
	if err != nil {
		return err
	}
	for i := range history {
		existing := &history[i]
		if existing.ID == contract.ID {
			continue
		}
		if existing.EndDate == nil || !existing.EndDate.Before(contract.StartDate) {
			if contract.EndDate == nil || !contract.EndDate.Before(existing.StartDate) {
				return ErrInvalidContractState
			}
		}
	}
	return nil
}
