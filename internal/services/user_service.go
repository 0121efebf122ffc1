package services

import (
	"context"
	"errors"

	"github.com/tresdv/nomina-api/internal/models"
	"github.com/tresdv/nomina-api/internal/repository"
	"github.com/tresdv/nomina-api/pkg/logger"
	"gorm.io/gorm"
)

// UserService manages application accounts.
type UserService struct {
	userRepo repository.UserRepository
	emailSvc *EmailService
	auditSvc *AuditService
}

// NewUserService creates a new user service
func NewUserService(userRepo repository.UserRepository, emailSvc *EmailService, auditSvc *AuditService) *UserService {
	return &UserService{
		userRepo: userRepo,
		emailSvc: emailSvc,
		auditSvc: auditSvc,
	}
}

// CreateUserInput are the request fields for a new account
type CreateUserInput struct {
	Email      string `json:"email" binding:"required,email"`
	Password   string `json:"password" binding:"required,min=8"`
	FullName   string `json:"full_name" binding:"required"`
	Role       string `json:"role"`
	EmployeeID *uint  `json:"employee_id"`
}

// Create registers a new account, optionally linked to an employee.
func (s *UserService) Create(ctx context.Context, input *CreateUserInput, actorID uint) (*models.User, error) {
	if _, err := s.userRepo.FindByEmail(ctx, input.Email); err == nil {
		return nil, ErrDuplicate
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	hash, err := HashPassword(input.Password)
	if err != nil {
		return nil, err
	}

	user := &models.User{
		Email:             input.Email,
		EncryptedPassword: hash,
		FullName:          input.FullName,
		Role:              input.Role,
		EmployeeID:        input.EmployeeID,
	}
	if err := s.userRepo.Create(ctx, user); err != nil {
		return nil, err
	}

	if s.emailSvc != nil {
		if err := s.emailSvc.SendAccountCreated(ctx, user, ""); err != nil {
			logger.Error("error enviando correo de bienvenida", "error", err, "user_id", user.ID)
		}
	}
	if s.auditSvc != nil {
		_ = s.auditSvc.Log(ctx, actorID, "user.create", "user", user.ID, user.Email, "", "")
	}
	return user, nil
}

// FindByID returns one account.
func (s *UserService) FindByID(ctx context.Context, id uint) (*models.User, error) {
	user, err := s.userRepo.FindByID(ctx, id)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotFound
	}
	return user, err
}

// List returns accounts matching the query.
func (s *UserService) List(ctx context.Context, query *repository.ListQuery) ([]models.User, int64, error) {
	return s.userRepo.List(ctx, query)
}

// ChangePassword verifies the current password and stores a new one.
func (s *UserService) ChangePassword(ctx context.Context, id uint, current, newPassword string) error {
	user, err := s.FindByID(ctx, id)
	if err != nil {
		return err
	}
	if !VerifyPassword(current, user.EncryptedPassword) {
		return ErrInvalidPassword
	}
	hash, err := HashPassword(newPassword)
	if err != nil {
		return err
	}
	user.EncryptedPassword = hash
	return s.userRepo.Update(ctx, user)
}
