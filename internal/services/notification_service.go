package services

import (
	"context"
	"errors"

	"github.com/shopspring/decimal"
	"github.com/tresdv/nomina-api/internal/models"
	"github.com/tresdv/nomina-api/internal/repository"
	"gorm.io/gorm"
)

// NotificationService handles in-app notifications and, when an email
// service is configured, their email counterparts.
type NotificationService struct {
	repo     repository.NotificationRepository
	userRepo repository.UserRepository
	emailSvc *EmailService
}

// NewNotificationService creates a new notification service
func NewNotificationService(repo repository.NotificationRepository, userRepo repository.UserRepository, emailSvc *EmailService) *NotificationService {
	return &NotificationService{repo: repo, userRepo: userRepo, emailSvc: emailSvc}
}

func (s *NotificationService) FindByUser(ctx context.Context, userID uint, limit int) ([]models.Notification, error) {
	return s.repo.FindByUser(ctx, userID, limit)
}

func (s *NotificationService) Create(ctx context.Context, notification *models.Notification) error {
	return s.repo.Create(ctx, notification)
}

func (s *NotificationService) MarkAsRead(ctx context.Context, id uint, userID uint) error {
	notification, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return err
	}
	if notification.UserID != userID {
		return ErrUnauthorized
	}
	notification.MarkAsRead()
	return s.repo.Update(ctx, notification)
}

func (s *NotificationService) MarkAllAsRead(ctx context.Context, userID uint) error {
	return s.repo.MarkAllAsRead(ctx, userID)
}

// NotifyUser creates a notification for one user
func (s *NotificationService) NotifyUser(ctx context.Context, userID uint, title, message, notifType string) error {
	notification := &models.Notification{
		UserID:           userID,
		Title:            title,
		Message:          message,
		NotificationType: &notifType,
	}
	return s.repo.Create(ctx, notification)
}

// NotifyEmployee notifies the account linked to an employee, if one
// exists. Employees without an account are silently skipped.
func (s *NotificationService) NotifyEmployee(ctx context.Context, employeeID uint, title, message, notifType string) error {
	user, err := s.userRepo.FindByEmployeeID(ctx, employeeID)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil
	}
	if err != nil {
		return err
	}
	return s.NotifyUser(ctx, user.ID, title, message, notifType)
}

// EmailPayslipConfirmed mails the confirmed receipt summary to the account
// linked to the payslip's employee. No account or no email service is not
// an error.
func (s *NotificationService) EmailPayslipConfirmed(ctx context.Context, payslip *models.Payslip) error {
	if s.emailSvc == nil {
		return nil
	}
	user, err := s.userRepo.FindByEmployeeID(ctx, payslip.EmployeeID)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil
	}
	if err != nil {
		return err
	}
	return s.emailSvc.SendPayslipConfirmed(ctx, user, payslip)
}

// EmailLiquidationReady mails the liquidation availability notice to the
// account linked to the employee.
func (s *NotificationService) EmailLiquidationReady(ctx context.Context, employee *models.Employee, net decimal.Decimal) error {
	if s.emailSvc == nil {
		return nil
	}
	user, err := s.userRepo.FindByEmployeeID(ctx, employee.ID)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil
	}
	if err != nil {
		return err
	}
	return s.emailSvc.SendLiquidationReady(ctx, user, employee, net)
}

// NotifyAdmins creates the same notification for every admin
func (s *NotificationService) NotifyAdmins(ctx context.Context, title, message, notifType string) error {
	admins, err := s.userRepo.FindAdmins(ctx)
	if err != nil {
		return err
	}
	for _, admin := range admins {
		if err := s.NotifyUser(ctx, admin.ID, title, message, notifType); err != nil {
			return err
		}
	}
	return nil
}

// CleanupOld deletes read notifications older than the given number of days
func (s *NotificationService) CleanupOld(ctx context.Context, days int) (int64, error) {
	return s.repo.DeleteOlderThan(ctx, days)
}
