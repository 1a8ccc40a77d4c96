package models

import "time"

// UserRole represents the account kinds stored in users.role.
type UserRole string

const (
	RoleSystemAdmin  UserRole = "SYSTEM_ADMIN"
	RoleFacultyAdmin UserRole = "FACULTY_ADMIN"
	RoleTeacher      UserRole = "TEACHER"
	RoleStudent      UserRole = "STUDENT"
)

// Valid reports whether r is a known role.
func (r UserRole) Valid() bool {
	switch r {
	case RoleSystemAdmin, RoleFacultyAdmin, RoleTeacher, RoleStudent:
		return true
	default:
		return false
	}
}

// IsAdmin reports whether r is one of the administrator roles.
func (r UserRole) IsAdmin() bool {
	return r == RoleSystemAdmin || r == RoleFacultyAdmin
}

// User is the base row shared by students, teachers and administrators.
type User struct {
	ID           int64      `db:"id" json:"id"`
	Role         UserRole   `db:"role" json:"role"`
	FirstName    string     `db:"first_name" json:"first_name"`
	LastName     string     `db:"last_name" json:"last_name"`
	Email        string     `db:"email" json:"email"`
	PasswordHash string     `db:"password" json:"-"`
	DateOfBirth  *time.Time `db:"date_of_birth" json:"date_of_birth,omitempty"`
	Active       bool       `db:"is_active" json:"is_active"`
}

// FullName joins first and last name.
func (u User) FullName() string {
	return u.FirstName + " " + u.LastName
}
