package handlers

import (
	"github.com/tresdv/nomina-api/internal/services"
)

// Handlers holds all handler instances
type Handlers struct {
	Health       *HealthHandler
	Auth         *AuthHandler
	User         *UserHandler
	Employee     *EmployeeHandler
	Contract     *ContractHandler
	Payslip      *PayslipHandler
	Batch        *BatchHandler
	Rate         *RateHandler
	Liquidation  *LiquidationHandler
	Notification *NotificationHandler
	Audit        *AuditHandler
	Job          *JobHandler
}

// NewHandlers creates all handler instances
func NewHandlers(svcs *services.Services) *Handlers {
	return &Handlers{
		Health:       NewHealthHandler(),
		Auth:         NewAuthHandler(svcs.Auth),
		User:         NewUserHandler(svcs.User),
		Employee:     NewEmployeeHandler(svcs.Employee, svcs.Contract),
		Contract:     NewContractHandler(svcs.Contract),
		Payslip:      NewPayslipHandler(svcs.Payslip, svcs.Report),
		Batch:        NewBatchHandler(svcs.Batch, svcs.Export),
		Rate:         NewRateHandler(svcs.Rate, svcs.Export),
		Liquidation:  NewLiquidationHandler(svcs.Liquidation, svcs.Report, svcs.Export),
		Notification: NewNotificationHandler(svcs.Notification),
		Audit:        NewAuditHandler(svcs.Audit),
		Job:          NewJobHandler(svcs.Job),
	}
}
