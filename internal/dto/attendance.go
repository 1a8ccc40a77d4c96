package dto

import "github.com/noah-isme/sims-core/internal/reconcile"

// StudentAttendance is a student's session list for one offering.
type StudentAttendance struct {
	OfferingID int64                  `json:"offering_id"`
	Sessions   []reconcile.SessionRow `json:"sessions"`
	Summary    reconcile.Summary      `json:"summary"`
}

// AttendanceSheet is a teacher's roster for one session.
type AttendanceSheet struct {
	OfferingID int64                 `json:"offering_id"`
	ScheduleID int64                 `json:"schedule_id"`
	Rows       []reconcile.RosterRow `json:"rows"`
	Summary    reconcile.Summary     `json:"summary"`
}

// AttendanceMark sets one student's presence for a session.
type AttendanceMark struct {
	StudentID int64 `json:"student_id" validate:"required,gt=0"`
	Present   bool  `json:"present"`
}

// SaveAttendanceRequest records a full roster.
type SaveAttendanceRequest struct {
	ScheduleID int64            `json:"schedule_id" validate:"required,gt=0"`
	Marks      []AttendanceMark `json:"marks" validate:"required,min=1,dive"`
}
