package services

import (
	"context"
	"errors"
	"time"

	"github.com/tresdv/nomina-api/internal/models"
	"github.com/tresdv/nomina-api/internal/repository"
	"github.com/tresdv/nomina-api/pkg/logger"
	"gorm.io/gorm"
)

// EmployeeService manages employee records and terminations.
type EmployeeService struct {
	employeeRepo repository.EmployeeRepository
	contractRepo repository.ContractRepository
	payslipSvc   *PayslipService
	auditSvc     *AuditService
}

// NewEmployeeService creates a new employee service
func NewEmployeeService(
	employeeRepo repository.EmployeeRepository,
	contractRepo repository.ContractRepository,
	payslipSvc *PayslipService,
	auditSvc *AuditService,
) *EmployeeService {
	return &EmployeeService{
		employeeRepo: employeeRepo,
		contractRepo: contractRepo,
		payslipSvc:   payslipSvc,
		auditSvc:     auditSvc,
	}
}

// CreateEmployeeInput are the request fields for a new employee
type CreateEmployeeInput struct {
	FirstName string    `json:"first_name" binding:"required"`
	LastName  string    `json:"last_name" binding:"required"`
	Identity  string    `json:"identity" binding:"required"`
	Email     *string   `json:"email"`
	HireDate  time.Time `json:"hire_date" binding:"required"`
}

// Create registers a new employee. The identity (cédula) must be unique.
func (s *EmployeeService) Create(ctx context.Context, input *CreateEmployeeInput, userID uint) (*models.Employee, error) {
	if _, err := s.employeeRepo.FindByIdentity(ctx, input.Identity); err == nil {
		return nil, ErrDuplicate
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	employee := &models.Employee{
		FirstName: input.FirstName,
		LastName:  input.LastName,
		Identity:  input.Identity,
		Email:     input.Email,
		HireDate:  truncateDate(input.HireDate),
		Active:    true,
	}
	if err := s.employeeRepo.Create(ctx, employee); err != nil {
		return nil, err
	}

	if s.auditSvc != nil {
		_ = s.auditSvc.Log(ctx, userID, "employee.create", "employee", employee.ID, employee.Identity, "", "")
	}
	return employee, nil
}

// FindByID returns an employee with the contract history loaded.
func (s *EmployeeService) FindByID(ctx context.Context, id uint) (*models.Employee, error) {
	employee, err := s.employeeRepo.FindByIDWithContracts(ctx, id)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotFound
	}
	return employee, err
}

// List returns employees matching the query.
func (s *EmployeeService) List(ctx context.Context, query *repository.ListQuery) ([]models.Employee, int64, error) {
	return s.employeeRepo.List(ctx, query)
}

// Update modifies the employee's identification fields.
func (s *EmployeeService) Update(ctx context.Context, id uint, input *CreateEmployeeInput, userID uint) (*models.Employee, error) {
	employee, err := s.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}

	employee.FirstName = input.FirstName
	employee.LastName = input.LastName
	employee.Email = input.Email
	if err := s.employeeRepo.Update(ctx, employee); err != nil {
		return nil, err
	}

	if s.auditSvc != nil {
		_ = s.auditSvc.Log(ctx, userID, "employee.update", "employee", employee.ID, "", "", "")
	}
	return employee, nil
}

// Terminate closes the employee's open contract at the termination date
// and creates a draft liquidation payslip over the final month.
func (s *EmployeeService) Terminate(ctx context.Context, id uint, terminationDate time.Time, structure string, userID uint) (*models.Payslip, error) {
	employee, err := s.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	terminationDate = truncateDate(terminationDate)

	contract, err := s.contractRepo.FindActiveOn(ctx, employee.ID, terminationDate)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrInvalidContractState
	}
	if err != nil {
		return nil, err
	}
	if !contract.MayClose() {
		return nil, ErrInvalidContractState
	}

	contract.EndDate = &terminationDate
	contract.Status = models.ContractStatusClose
	if err := s.contractRepo.Update(ctx, contract); err != nil {
		return nil, err
	}

	employee.TerminationDate = &terminationDate
	employee.Active = false
	if err := s.employeeRepo.Update(ctx, employee); err != nil {
		return nil, err
	}

	if structure == "" {
		structure = models.StructureLiquidationV2
	}
	from := firstOfMonth(terminationDate)
	if from.Before(contract.StartDate) {
		from = contract.StartDate
	}
	payslip, err := s.payslipSvc.Create(ctx, &CreatePayslipInput{
		EmployeeID:    employee.ID,
		StructureCode: structure,
		DateFrom:      from,
		DateTo:        terminationDate,
	})
	if err != nil {
		return nil, err
	}

	logger.Info("empleado egresado",
		"employee_id", employee.ID,
		"termination_date", terminationDate.Format("2006-01-02"),
		"liquidation_payslip_id", payslip.ID,
	)
	if s.auditSvc != nil {
		_ = s.auditSvc.Log(ctx, userID, "employee.terminate", "employee", employee.ID,
			terminationDate.Format("2006-01-02"), "", "")
	}
	return payslip, nil
}
