package models

// Attendance records whether a student attended a scheduled session.
type Attendance struct {
	ScheduleID int64 `db:"schedule_id" json:"schedule_id"`
	StudentID  int64 `db:"student_id" json:"student_id"`
	Present    bool  `db:"present" json:"present"`
}
