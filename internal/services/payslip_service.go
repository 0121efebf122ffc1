package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/shopspring/decimal"
	"github.com/tresdv/nomina-api/internal/models"
	"github.com/tresdv/nomina-api/internal/repository"
	"github.com/tresdv/nomina-api/internal/rules"
	"github.com/tresdv/nomina-api/internal/statemachine"
	"github.com/tresdv/nomina-api/pkg/logger"
	"gorm.io/gorm"
)

// PayslipService owns the payslip lifecycle: creation, rule evaluation and
// the draft/computed/done transitions. Computation is a pure function of
// the contract snapshot, the timeline and the structure's rule set; lines
// are only written once the whole evaluation succeeds.
type PayslipService struct {
	payslipRepo     repository.PayslipRepository
	batchRepo       repository.BatchRepository
	contractRepo    repository.ContractRepository
	employeeRepo    repository.EmployeeRepository
	ruleRepo        repository.RuleRepository
	prestacionesSvc *PrestacionesService
	notificationSvc *NotificationService
	auditSvc        *AuditService
}

// NewPayslipService creates a new payslip service
func NewPayslipService(
	payslipRepo repository.PayslipRepository,
	batchRepo repository.BatchRepository,
	contractRepo repository.ContractRepository,
	employeeRepo repository.EmployeeRepository,
	ruleRepo repository.RuleRepository,
	prestacionesSvc *PrestacionesService,
	notificationSvc *NotificationService,
	auditSvc *AuditService,
) *PayslipService {
	return &PayslipService{
		payslipRepo:     payslipRepo,
		batchRepo:       batchRepo,
		contractRepo:    contractRepo,
		employeeRepo:    employeeRepo,
		ruleRepo:        ruleRepo,
		prestacionesSvc: prestacionesSvc,
		notificationSvc: notificationSvc,
		auditSvc:        auditSvc,
	}
}

// CreatePayslipInput are the request fields for a new payslip
type CreatePayslipInput struct {
	EmployeeID    uint       `json:"employee_id" binding:"required"`
	StructureCode string     `json:"structure_code" binding:"required"`
	DateFrom      time.Time  `json:"date_from" binding:"required"`
	DateTo        time.Time  `json:"date_to" binding:"required"`
	BatchID       *uint      `json:"batch_id"`
}

// Create registers a draft payslip over the contract covering the period.
func (s *PayslipService) Create(ctx context.Context, input *CreatePayslipInput) (*models.Payslip, error) {
	switch input.StructureCode {
	case models.StructureRegular, models.StructureAguinaldos,
		models.StructureLiquidationV1, models.StructureLiquidationV2:
	default:
		return nil, fmt.Errorf("estructura salarial desconocida: %s", input.StructureCode)
	}
	if input.DateTo.Before(input.DateFrom) {
		return nil, fmt.Errorf("período inválido: %s > %s",
			input.DateFrom.Format("2006-01-02"), input.DateTo.Format("2006-01-02"))
	}

	contract, err := s.contractRepo.FindActiveOn(ctx, input.EmployeeID, truncateDate(input.DateFrom))
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrInvalidContractState
	}
	if err != nil {
		return nil, err
	}
	if !contract.Covers(truncateDate(input.DateFrom), truncateDate(input.DateTo)) {
		return nil, ErrInvalidContractState
	}

	payslip := &models.Payslip{
		BatchID:       input.BatchID,
		EmployeeID:    input.EmployeeID,
		ContractID:    contract.ID,
		StructureCode: input.StructureCode,
		DateFrom:      truncateDate(input.DateFrom),
		DateTo:        truncateDate(input.DateTo),
		Status:        models.PayslipStatusDraft,
	}
	if err := s.payslipRepo.Create(ctx, payslip); err != nil {
		return nil, err
	}
	payslip.Number = fmt.Sprintf("NOM-%d-%06d", payslip.DateTo.Year(), payslip.ID)
	if err := s.payslipRepo.Update(ctx, payslip); err != nil {
		return nil, err
	}
	return payslip, nil
}

// FindByID returns a payslip with its lines and associations.
func (s *PayslipService) FindByID(ctx context.Context, id uint) (*models.Payslip, error) {
	payslip, err := s.payslipRepo.FindByIDWithDetails(ctx, id)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotFound
	}
	return payslip, err
}

// List returns payslips matching the query.
func (s *PayslipService) List(ctx context.Context, query *repository.PayslipQuery) ([]models.Payslip, int64, error) {
	return s.payslipRepo.List(ctx, query)
}

// Compute evaluates the payslip's rule set and replaces its lines in one
// transaction. Only draft payslips may be computed; recomputing a draft is
// idempotent because the lines are a pure function of the stored context.
func (s *PayslipService) Compute(ctx context.Context, id uint, userID uint) (*models.Payslip, error) {
	payslip, err := s.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if !payslip.MayCompute() {
		return nil, ErrPayslipRecomputeForbidden
	}

	result, err := s.evaluate(ctx, payslip)
	if err != nil {
		return nil, err
	}

	lines := make([]models.PayslipLine, 0, len(result.Lines))
	for _, line := range result.Lines {
		lines = append(lines, models.PayslipLine{
			PayslipID: payslip.ID,
			Code:      line.Code,
			Name:      line.Name,
			Sequence:  line.Sequence,
			Category:  line.Category,
			Amount:    line.Amount.Round(6),
		})
	}

	fsm := statemachine.NewPayslipFSM(payslip)
	if err := fsm.Compute(ctx); err != nil {
		return nil, err
	}
	now := time.Now()
	payslip.ComputedAt = &now

	if err := s.payslipRepo.ReplaceLines(ctx, payslip, lines); err != nil {
		return nil, err
	}
	payslip.Lines = lines

	logger.Info("recibo calculado",
		"payslip_id", payslip.ID,
		"structure", payslip.StructureCode,
		"net", result.Net.Round(2),
	)
	s.audit(ctx, userID, "payslip.compute", payslip.ID, fmt.Sprintf("neto USD %s", result.Net.Round(2)))
	if payslip.IsLiquidation() {
		s.emailLiquidationReady(ctx, payslip, result.Net)
	}
	return payslip, nil
}

func (s *PayslipService) emailLiquidationReady(ctx context.Context, payslip *models.Payslip, net decimal.Decimal) {
	if s.notificationSvc == nil {
		return
	}
	employee, err := s.employeeRepo.FindByID(ctx, payslip.EmployeeID)
	if err != nil {
		logger.Error("error buscando empleado para correo de liquidación", "error", err, "payslip_id", payslip.ID)
		return
	}
	if err := s.notificationSvc.EmailLiquidationReady(ctx, employee, net); err != nil {
		logger.Error("error enviando correo de liquidación", "error", err, "payslip_id", payslip.ID)
	}
}

// Confirm moves a computed payslip to done.
func (s *PayslipService) Confirm(ctx context.Context, id uint, userID uint) (*models.Payslip, error) {
	payslip, err := s.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}

	fsm := statemachine.NewPayslipFSM(payslip)
	if err := fsm.Confirm(ctx); err != nil {
		return nil, err
	}
	now := time.Now()
	payslip.ConfirmedAt = &now
	if err := s.payslipRepo.Update(ctx, payslip); err != nil {
		return nil, err
	}

	s.audit(ctx, userID, "payslip.confirm", payslip.ID, "")
	s.notifyEmployee(ctx, payslip, "Recibo de nómina confirmado",
		fmt.Sprintf("Su recibo %s del período %s al %s fue confirmado.",
			payslip.Number,
			payslip.DateFrom.Format("02/01/2006"),
			payslip.DateTo.Format("02/01/2006")),
		models.NotificationTypePayslipConfirmed)
	if s.notificationSvc != nil {
		if err := s.notificationSvc.EmailPayslipConfirmed(ctx, payslip); err != nil {
			logger.Error("error enviando correo de recibo confirmado", "error", err, "payslip_id", payslip.ID)
		}
	}
	return payslip, nil
}

// SetToDraft reverts a computed or done payslip to draft so it can be
// recomputed. Forbidden while the parent batch is cancelled.
func (s *PayslipService) SetToDraft(ctx context.Context, id uint, userID uint) (*models.Payslip, error) {
	payslip, err := s.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if payslip.BatchID != nil {
		batch, err := s.batchRepo.FindByID(ctx, *payslip.BatchID)
		if err != nil {
			return nil, err
		}
		if batch.IsCancelled() {
			return nil, ErrBatchStateViolation
		}
	}

	fsm := statemachine.NewPayslipFSM(payslip)
	if err := fsm.SetToDraft(ctx); err != nil {
		return nil, err
	}
	payslip.ComputedAt = nil
	payslip.ConfirmedAt = nil
	if err := s.payslipRepo.Update(ctx, payslip); err != nil {
		return nil, err
	}

	s.audit(ctx, userID, "payslip.set_to_draft", payslip.ID, "")
	return payslip, nil
}

// Cancel voids a payslip that has not been confirmed.
func (s *PayslipService) Cancel(ctx context.Context, id uint, userID uint) (*models.Payslip, error) {
	payslip, err := s.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}

	fsm := statemachine.NewPayslipFSM(payslip)
	if err := fsm.Cancel(ctx); err != nil {
		return nil, err
	}
	if err := s.payslipRepo.Update(ctx, payslip); err != nil {
		return nil, err
	}

	s.audit(ctx, userID, "payslip.cancel", payslip.ID, "")
	return payslip, nil
}

// evaluate loads the rule set and the evaluation context and runs the
// engine. No state is written here.
func (s *PayslipService) evaluate(ctx context.Context, payslip *models.Payslip) (*rules.Result, error) {
	ruleRows, err := s.ruleRepo.FindByStructure(ctx, payslip.StructureCode)
	if err != nil {
		return nil, err
	}
	if len(ruleRows) == 0 {
		return nil, fmt.Errorf("la estructura %s no tiene reglas activas", payslip.StructureCode)
	}

	ruleList := make([]rules.Rule, 0, len(ruleRows))
	for _, row := range ruleRows {
		ruleList = append(ruleList, rules.Rule{
			Code:      row.Code,
			Name:      row.Name,
			Category:  row.Category,
			Sequence:  row.Sequence,
			Condition: row.Condition,
			Amount:    row.Amount,
		})
	}
	ruleSet, err := rules.Compile(ruleList)
	if err != nil {
		return nil, err
	}

	env, err := s.buildContext(ctx, payslip)
	if err != nil {
		return nil, err
	}
	return ruleSet.Evaluate(env)
}

// buildContext assembles the variables the rule formulas can reference.
func (s *PayslipService) buildContext(ctx context.Context, payslip *models.Payslip) (rules.Vars, error) {
	contract, err := s.contractRepo.FindByID(ctx, payslip.ContractID)
	if err != nil {
		return nil, err
	}
	if !contract.Covers(payslip.DateFrom, payslip.DateTo) {
		return nil, ErrInvalidContractState
	}

	history, err := s.contractRepo.FindByEmployee(ctx, payslip.EmployeeID)
	if err != nil {
		return nil, err
	}
	timeline, err := NewTimeline(history, payslip.DateTo)
	if err != nil {
		return nil, err
	}

	periodDays := PeriodDays(payslip.DateFrom, payslip.DateTo)

	intereses := decimal.Zero
	if payslip.StructureCode == models.StructureLiquidationV2 {
		accrual := s.prestacionesSvc.Simulate(history, timeline)
		intereses = accrual.TotalInterest
	}

	env := rules.Vars{
		"contract.monthly_wage":             contract.MonthlyWage,
		"contract.deduction_base":           contract.DeductionBase,
		"contract.salary_share":             contract.SalaryShare(),
		"contract.bonus_share":              contract.BonusShare(),
		"contract.cesta_daily":              contract.CestaDaily,
		"contract.ari_biweekly_pct":         contract.ARIBiweeklyPct,
		"contract.utilidades_factor":        contract.UtilidadesFactor,
		"contract.vacation_prepaid":         contract.VacationPrepaid,
		"contract.daily_salary":             contract.DailySalary(),
		"payslip.period_days":               decimal.NewFromInt(int64(periodDays)),
		"payslip.worked_days":               decimal.NewFromInt(int64(periodDays)),
		"payslip.months_in_fiscal_year":     decimal.NewFromInt(int64(s.monthsInFiscalYear(timeline, payslip.DateTo))),
		"timeline.service_months":           decimal.NewFromInt(int64(timeline.ServiceMonths())),
		"timeline.vacation_days_due":        timeline.VacationDaysDue(contract.VacationPaidUntil),
		"timeline.bono_vacacional_days_due": timeline.BonoVacacionalDaysDue(contract.VacationPaidUntil),
		"prestaciones.intereses":            intereses,
	}
	return env, nil
}

// monthsInFiscalYear counts the service months inside the calendar year of
// the cut-off date, for year-end bonus proration.
func (s *PayslipService) monthsInFiscalYear(timeline *Timeline, asOf time.Time) int {
	fiscalStart := time.Date(asOf.Year(), time.January, 1, 0, 0, 0, 0, time.UTC)
	start := fiscalStart
	if timeline.HireDate().After(fiscalStart) {
		start = timeline.HireDate()
	}
	months := timeline.MonthsSince(start, asOf)
	if months > 12 {
		months = 12
	}
	return months
}

func (s *PayslipService) audit(ctx context.Context, userID uint, action string, payslipID uint, details string) {
	if s.auditSvc == nil {
		return
	}
	if err := s.auditSvc.Log(ctx, userID, action, "payslip", payslipID, details, "", ""); err != nil {
		logger.Error("error registrando auditoría", "error", err)
	}
}

func (s *PayslipService) notifyEmployee(ctx context.Context, payslip *models.Payslip, title, message, notifType string) {
	if s.notificationSvc == nil {
		return
	}
	if err := s.notificationSvc.NotifyEmployee(ctx, payslip.EmployeeID, title, message, notifType); err != nil {
		logger.Error("error enviando notificación", "error", err, "payslip_id", payslip.ID)
	}
}
