package repository

import (
	"gorm.io/gorm"
)

// Repositories holds all repository instances
type Repositories struct {
	User         UserRepository
	Employee     EmployeeRepository
	Contract     ContractRepository
	Payslip      PayslipRepository
	Batch        BatchRepository
	Rate         RateRepository
	Rule         RuleRepository
	Notification NotificationRepository
	RefreshToken RefreshTokenRepository
}

// NewRepositories creates all repository instances
func NewRepositories(db *gorm.DB) *Repositories {
	return &Repositories{
		User:         NewUserRepository(db),
		Employee:     NewEmployeeRepository(db),
		Contract:     NewContractRepository(db),
		Payslip:      NewPayslipRepository(db),
		Batch:        NewBatchRepository(db),
		Rate:         NewRateRepository(db),
		Rule:         NewRuleRepository(db),
		Notification: NewNotificationRepository(db),
		RefreshToken: NewRefreshTokenRepository(db),
	}
}
