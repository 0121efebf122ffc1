package models

import (
	"time"
)

// Employee represents a worker with an ordered contract history.
// Gaps between contracts are breaks in service and do not accrue seniority.
type Employee struct {
	ID              uint       `gorm:"primaryKey" json:"id"`
	FirstName       string     `gorm:"not null" json:"first_name"`
	LastName        string     `gorm:"not null" json:"last_name"`
	Identity        string     `gorm:"uniqueIndex;not null" json:"identity"` // cédula
	Email           *string    `gorm:"index" json:"email"`
	HireDate        time.Time  `gorm:"type:date;not null" json:"hire_date"`
	TerminationDate *time.Time `gorm:"type:date" json:"termination_date"`
	Active          bool       `gorm:"default:true;index" json:"active"`
	CreatedAt       time.Time  `json:"created_at"`
	UpdatedAt       time.Time  `json:"updated_at"`

	// Associations
	Contracts []Contract `gorm:"foreignKey:EmployeeID" json:"contracts,omitempty"`
}

// TableName specifies the table name for Employee
func (Employee) TableName() string {
	return "employees"
}

// FullName returns the display name used in reports
func (e *Employee) FullName() string {
	return e.FirstName + " " + e.LastName
}

// IsTerminated returns true once a termination date is set
func (e *Employee) IsTerminated() bool {
	return e.TerminationDate != nil
}

// EmployeeResponse is the JSON response format for employees
type EmployeeResponse struct {
	ID              uint       `json:"id"`
	FullName        string     `json:"full_name"`
	Identity        string     `json:"identity"`
	Email           *string    `json:"email"`
	HireDate        time.Time  `json:"hire_date"`
	TerminationDate *time.Time `json:"termination_date"`
	Active          bool       `json:"active"`
}

// ToResponse converts Employee to EmployeeResponse
func (e *Employee) ToResponse() EmployeeResponse {
	return EmployeeResponse{
		ID:              e.ID,
		FullName:        e.FullName(),
		Identity:        e.Identity,
		Email:           e.Email,
		HireDate:        e.HireDate,
		TerminationDate: e.TerminationDate,
		Active:          e.Active,
	}
}
