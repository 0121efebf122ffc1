package models

import (
	"time"

	"gorm.io/gorm"
)

// User represents an application account (RRHH staff or administrator)
type User struct {
	ID                uint       `gorm:"primaryKey" json:"id"`
	Email             string     `gorm:"uniqueIndex;not null" json:"email"`
	EncryptedPassword string     `gorm:"column:encrypted_password;not null" json:"-"`
	Role              string     `gorm:"default:rrhh" json:"role"`
	FullName          string     `json:"full_name"`
	Status            string     `gorm:"default:active" json:"status"`
	Locale            string     `gorm:"default:es" json:"locale"`
	EmployeeID        *uint      `gorm:"index" json:"employee_id"` // set when the account belongs to an employee
	DiscardedAt       *time.Time `gorm:"index" json:"-"`
	CreatedAt         time.Time  `json:"created_at"`
	UpdatedAt         time.Time  `json:"updated_at"`

	// Associations
	Employee      *Employee      `gorm:"foreignKey:EmployeeID" json:"employee,omitempty"`
	Notifications []Notification `gorm:"foreignKey:UserID" json:"notifications,omitempty"`
}

// TableName specifies the table name for User
func (User) TableName() string {
	return "users"
}

// BeforeCreate hook for setting defaults
func (u *User) BeforeCreate(tx *gorm.DB) error {
	if u.Role == "" {
		u.Role = RoleRRHH
	}
	if u.Status == "" {
		u.Status = StatusActive
	}
	if u.Locale == "" {
		u.Locale = LocaleES
	}
	return nil
}

// IsAdmin returns true if user has admin role
func (u *User) IsAdmin() bool {
	return u.Role == RoleAdmin
}

// IsRRHH returns true if user belongs to human resources
func (u *User) IsRRHH() bool {
	return u.Role == RoleRRHH
}

// IsActive returns true if user status is active
func (u *User) IsActive() bool {
	return u.Status == StatusActive && u.DiscardedAt == nil
}

// Role constants
const (
	RoleAdmin    = "admin"
	RoleRRHH     = "rrhh"
	RoleEmpleado = "empleado"
)

// Status constants
const (
	StatusActive   = "active"
	StatusInactive = "inactive"
)

// Locale constants
const (
	LocaleES = "es"
	LocaleEN = "en"
)

// UserResponse is the JSON response format for users
type UserResponse struct {
	ID         uint      `json:"id"`
	Email      string    `json:"email"`
	FullName   string    `json:"full_name"`
	Role       string    `json:"role"`
	Status     string    `json:"status"`
	Locale     string    `json:"locale"`
	EmployeeID *uint     `json:"employee_id"`
	CreatedAt  time.Time `json:"created_at"`
}

// ToResponse converts User to UserResponse
func (u *User) ToResponse() UserResponse {
	return UserResponse{
		ID:         u.ID,
		Email:      u.Email,
		FullName:   u.FullName,
		Role:       u.Role,
		Status:     u.Status,
		Locale:     u.Locale,
		EmployeeID: u.EmployeeID,
		CreatedAt:  u.CreatedAt,
	}
}
