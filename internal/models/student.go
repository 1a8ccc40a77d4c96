package models

// Student is the students specialization of a user, keyed by user_id.
type Student struct {
	UserID         int64    `db:"user_id" json:"user_id"`
	EnrollmentYear int      `db:"enrollment_year" json:"enrollment_year"`
	DepartmentID   int64    `db:"department_id" json:"department_id"`
	GPA            *float64 `db:"gpa" json:"gpa,omitempty"`
}

// StudentAccount pairs a student with its user row.
type StudentAccount struct {
	User    User    `json:"user"`
	Student Student `json:"student"`
}
