package services

import (
	"github.com/tresdv/nomina-api/internal/config"
	"github.com/tresdv/nomina-api/internal/jobs"
	"github.com/tresdv/nomina-api/internal/repository"
	"github.com/tresdv/nomina-api/internal/storage"
	"gorm.io/gorm"
)

// Services holds all service instances
type Services struct {
	Auth         *AuthService
	User         *UserService
	Employee     *EmployeeService
	Contract     *ContractService
	Payslip      *PayslipService
	Batch        *BatchService
	Rate         *RateService
	Currency     *CurrencyService
	Prestaciones *PrestacionesService
	Liquidation  *LiquidationService
	Report       *ReportService
	Export       *ExportService
	Notification *NotificationService
	Audit        *AuditService
	Email        *EmailService
	Job          *JobService
	Storage      *storage.LocalStorage
}

// NewServices creates all service instances
func NewServices(repos *repository.Repositories, worker *jobs.Worker, store *storage.LocalStorage, cfg *config.Config, db *gorm.DB) *Services {
	emailSvc := NewEmailService(cfg)
	notificationSvc := NewNotificationService(repos.Notification, repos.User, emailSvc)
	auditSvc := NewAuditService(db)
	currencySvc := NewCurrencyService(repos.Rate)
	prestacionesSvc := NewPrestacionesService()

	payslipSvc := NewPayslipService(
		repos.Payslip, repos.Batch, repos.Contract, repos.Employee, repos.Rule,
		prestacionesSvc, notificationSvc, auditSvc,
	)
	liquidationSvc := NewLiquidationService(
		repos.Payslip, repos.Contract, repos.Employee, repos.Rule,
		currencySvc, prestacionesSvc,
	)

	return &Services{
		Auth:         NewAuthService(repos.User, repos.RefreshToken, cfg),
		User:         NewUserService(repos.User, emailSvc, auditSvc),
		Employee:     NewEmployeeService(repos.Employee, repos.Contract, payslipSvc, auditSvc),
		Contract:     NewContractService(repos.Contract, repos.Employee, auditSvc),
		Payslip:      payslipSvc,
		Batch:        NewBatchService(repos.Batch, repos.Payslip, repos.Contract, payslipSvc, notificationSvc, auditSvc),
		Rate:         NewRateService(repos.Rate, auditSvc),
		Currency:     currencySvc,
		Prestaciones: prestacionesSvc,
		Liquidation:  liquidationSvc,
		Report:       NewReportService(liquidationSvc, repos.Payslip, repos.Employee, store),
		Export:       NewExportService(repos.Batch, repos.Rate),
		Notification: notificationSvc,
		Audit:        auditSvc,
		Email:        emailSvc,
		Job:          NewJobService(worker),
		Storage:      store,
	}
}
