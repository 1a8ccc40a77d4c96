package models

import (
	"fmt"
	"time"
)

// Faculty groups departments.
type Faculty struct {
	ID   int64  `db:"id" json:"id"`
	Name string `db:"name" json:"name"`
	Code string `db:"code" json:"code"`
}

// Department belongs to a faculty.
type Department struct {
	ID        int64  `db:"id" json:"id"`
	Name      string `db:"name" json:"name"`
	Code      string `db:"code" json:"code"`
	FacultyID int64  `db:"faculty_id" json:"faculty_id"`
}

// Course is a catalog entry.
type Course struct {
	ID           int64  `db:"id" json:"id"`
	Code         string `db:"code" json:"code"`
	Name         string `db:"name" json:"name"`
	Credits      int    `db:"credits" json:"credits"`
	DepartmentID int64  `db:"department_id" json:"department_id"`
}

// Semester is a teaching period.
type Semester struct {
	ID        int64     `db:"id" json:"id"`
	Name      string    `db:"name" json:"name"`
	StartDate time.Time `db:"start_date" json:"start_date"`
	EndDate   time.Time `db:"end_date" json:"end_date"`
}

// CourseOffering is one section of a course taught in a semester.
type CourseOffering struct {
	ID         int64  `db:"id" json:"id"`
	CourseID   int64  `db:"course_id" json:"course_id"`
	TeacherID  int64  `db:"teacher_id" json:"teacher_id"`
	SemesterID int64  `db:"semester_id" json:"semester_id"`
	Section    string `db:"section" json:"section"`
	Capacity   int    `db:"capacity" json:"capacity"`
}

// OfferingLabel renders the selector text for an offering of course.
func OfferingLabel(course Course, offering CourseOffering) string {
	return fmt.Sprintf("%s - %s (Section %s)", course.Code, course.Name, offering.Section)
}

// OfferingOption is a selectable offering.
type OfferingOption struct {
	OfferingID int64  `json:"offering_id"`
	Label      string `json:"label"`
}
