package dto

import "time"

// CreateStudentRequest is the payload for registering a student account.
type CreateStudentRequest struct {
	FirstName      string     `json:"first_name" validate:"required,max=100"`
	LastName       string     `json:"last_name" validate:"required,max=100"`
	Email          string     `json:"email" validate:"required,email"`
	Password       string     `json:"password" validate:"required,min=8"`
	DateOfBirth    *time.Time `json:"date_of_birth"`
	EnrollmentYear int        `json:"enrollment_year" validate:"required,gte=1900,lte=2100"`
	DepartmentID   int64      `json:"department_id" validate:"required,gt=0"`
	GPA            *float64   `json:"gpa" validate:"omitempty,gte=0,lte=4"`
}

// UpdateStudentRequest carries editable student fields. Nil fields are left as-is.
type UpdateStudentRequest struct {
	FirstName      *string  `json:"first_name" validate:"omitempty,min=1,max=100"`
	LastName       *string  `json:"last_name" validate:"omitempty,min=1,max=100"`
	Email          *string  `json:"email" validate:"omitempty,email"`
	Active         *bool    `json:"is_active"`
	EnrollmentYear *int     `json:"enrollment_year" validate:"omitempty,gte=1900,lte=2100"`
	DepartmentID   *int64   `json:"department_id" validate:"omitempty,gt=0"`
	GPA            *float64 `json:"gpa" validate:"omitempty,gte=0,lte=4"`
}

// CreateTeacherRequest is the payload for registering a teacher account.
type CreateTeacherRequest struct {
	FirstName    string     `json:"first_name" validate:"required,max=100"`
	LastName     string     `json:"last_name" validate:"required,max=100"`
	Email        string     `json:"email" validate:"required,email"`
	Password     string     `json:"password" validate:"required,min=8"`
	DateOfBirth  *time.Time `json:"date_of_birth"`
	DepartmentID int64      `json:"department_id" validate:"required,gt=0"`
}

// CreateAdminRequest is the payload for registering an administrator.
type CreateAdminRequest struct {
	FirstName      string     `json:"first_name" validate:"required,max=100"`
	LastName       string     `json:"last_name" validate:"required,max=100"`
	Email          string     `json:"email" validate:"required,email"`
	Password       string     `json:"password" validate:"required,min=8"`
	DateOfBirth    *time.Time `json:"date_of_birth"`
	Role           string     `json:"role" validate:"required,oneof=SYSTEM_ADMIN FACULTY_ADMIN"`
	AccessLevel    string     `json:"access_level" validate:"required"`
	OfficeLocation string     `json:"office_location"`
}

// LoginRequest carries credentials.
type LoginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

// ChangePasswordRequest replaces a user's password.
type ChangePasswordRequest struct {
	CurrentPassword string `json:"current_password" validate:"required"`
	NewPassword     string `json:"new_password" validate:"required,min=8,nefield=CurrentPassword"`
}
