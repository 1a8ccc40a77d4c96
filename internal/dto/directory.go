package dto

// FacultyRequest creates or renames a faculty.
type FacultyRequest struct {
	Name string `json:"name" validate:"required,max=100"`
	Code string `json:"code" validate:"required,max=10"`
}

// DepartmentRequest creates or edits a department.
type DepartmentRequest struct {
	Name      string `json:"name" validate:"required,max=100"`
	Code      string `json:"code" validate:"required,max=10"`
	FacultyID int64  `json:"faculty_id" validate:"required,gt=0"`
}

// ResetPasswordRequest sets a new password for a user without the old one.
type ResetPasswordRequest struct {
	UserID      int64  `json:"user_id" validate:"required,gt=0"`
	NewPassword string `json:"new_password" validate:"required,min=8"`
}
