package models

// Enrollment links a student to a course offering.
type Enrollment struct {
	OfferingID int64    `db:"offering_id" json:"offering_id"`
	StudentID  int64    `db:"student_id" json:"student_id"`
	FinalGrade *float64 `db:"final_grade" json:"final_grade,omitempty"`
}
