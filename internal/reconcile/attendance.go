package reconcile

import (
	"fmt"

	"github.com/noah-isme/sims-core/internal/models"
)

// AttendanceStatus is the display state of one attendance slot.
type AttendanceStatus int

const (
	NotRecorded AttendanceStatus = iota
	Present
	Absent
)

func (s AttendanceStatus) String() string {
	switch s {
	case Present:
		return "Present"
	case Absent:
		return "Absent"
	default:
		return "Not Recorded"
	}
}

// MarshalText renders the display label.
func (s AttendanceStatus) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

// StatusOf maps an optional attendance record onto a status.
func StatusOf(record models.Attendance, found bool) AttendanceStatus {
	if !found {
		return NotRecorded
	}
	if record.Present {
		return Present
	}
	return Absent
}

// DateLayout formats session dates.
const DateLayout = "Jan 02, 2006"

// SessionRow is one scheduled session as seen by a student.
type SessionRow struct {
	ScheduleID int64            `json:"schedule_id"`
	Date       string           `json:"date"`
	Day        string           `json:"day"`
	Time       string           `json:"time"`
	Status     AttendanceStatus `json:"status"`
}

// StudentSessions pairs every session of an offering with the student's
// attendance records. Sessions without a record are NotRecorded.
func StudentSessions(schedules []models.Schedule, records []models.Attendance) []SessionRow {
	return Reconcile(schedules, records,
		func(s models.Schedule) int64 { return s.ID },
		func(a models.Attendance) int64 { return a.ScheduleID },
		func(s models.Schedule, a models.Attendance, found bool) SessionRow {
			date := ""
			if !s.Date.IsZero() {
				date = s.Date.Format(DateLayout)
			}
			return SessionRow{
				ScheduleID: s.ID,
				Date:       date,
				Day:        s.DayOfWeek,
				Time:       TimeRange(s.StartTime, s.EndTime),
				Status:     StatusOf(a, found),
			}
		})
}

// TimeRange renders "HH:MM - HH:MM" from time-of-day strings.
func TimeRange(start, end string) string {
	return fmt.Sprintf("%s - %s", clock(start), clock(end))
}

func clock(v string) string {
	if len(v) >= 5 {
		return v[:5]
	}
	return v
}

// RosterRow is one enrolled student on a session's attendance sheet.
type RosterRow struct {
	StudentID int64            `json:"student_id"`
	Name      string           `json:"name"`
	Present   bool             `json:"present"`
	Status    AttendanceStatus `json:"status"`
}

// Roster pairs the enrollments of an offering with the attendance recorded
// for one session. Students without a record are listed as not present.
func Roster(enrollments []models.Enrollment, records []models.Attendance, names map[int64]string) []RosterRow {
	return Reconcile(enrollments, records,
		func(e models.Enrollment) int64 { return e.StudentID },
		func(a models.Attendance) int64 { return a.StudentID },
		func(e models.Enrollment, a models.Attendance, found bool) RosterRow {
			return RosterRow{
				StudentID: e.StudentID,
				Name:      names[e.StudentID],
				Present:   found && a.Present,
				Status:    StatusOf(a, found),
			}
		})
}

// Summary counts statuses for display counters.
type Summary struct {
	Total       int `json:"total"`
	Present     int `json:"present"`
	Absent      int `json:"absent"`
	NotRecorded int `json:"not_recorded"`
}

// Summarize counts statuses.
func Summarize(statuses []AttendanceStatus) Summary {
	s := Summary{Total: len(statuses)}
	for _, st := range statuses {
		switch st {
		case Present:
			s.Present++
		case Absent:
			s.Absent++
		default:
			s.NotRecorded++
		}
	}
	return s
}

// Rate is the present share of recorded sessions, in percent. Unrecorded
// sessions are excluded.
func (s Summary) Rate() float64 {
	recorded := s.Present + s.Absent
	if recorded == 0 {
		return 0
	}
	return float64(s.Present) * 100 / float64(recorded)
}

// SessionStatuses extracts statuses from session rows.
func SessionStatuses(rows []SessionRow) []AttendanceStatus {
	out := make([]AttendanceStatus, len(rows))
	for i, r := range rows {
		out[i] = r.Status
	}
	return out
}

// RosterStatuses extracts statuses from roster rows.
func RosterStatuses(rows []RosterRow) []AttendanceStatus {
	out := make([]AttendanceStatus, len(rows))
	for i, r := range rows {
		out[i] = r.Status
	}
	return out
}
