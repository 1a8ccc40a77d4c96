package service

import (
	"context"
	"fmt"
	"time"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/noah-isme/sims-core/internal/dto"
	"github.com/noah-isme/sims-core/internal/models"
	"github.com/noah-isme/sims-core/internal/reconcile"
	appErrors "github.com/noah-isme/sims-core/pkg/errors"
)

type scheduleReader interface {
	Get(ctx context.Context, id any) (models.Schedule, bool, error)
	ListByOffering(ctx context.Context, offeringID int64) ([]models.Schedule, error)
	FindByDate(ctx context.Context, offeringID int64, day time.Time) (models.Schedule, bool, error)
}

type attendanceStore interface {
	ListByStudentInOffering(ctx context.Context, studentID, offeringID int64) ([]models.Attendance, error)
	ListBySchedule(ctx context.Context, scheduleID int64) ([]models.Attendance, error)
	Save(ctx context.Context, records []models.Attendance) error
}

type enrollmentReader interface {
	ListByOffering(ctx context.Context, offeringID int64) ([]models.Enrollment, error)
}

type nameResolver interface {
	Names(ctx context.Context, ids []int64) (map[int64]string, error)
}

// AttendanceService builds the student and teacher attendance views.
type AttendanceService struct {
	schedules   scheduleReader
	attendance  attendanceStore
	enrollments enrollmentReader
	users       nameResolver
	validator   *validator.Validate
	logger      *zap.Logger
}

// NewAttendanceService constructs an AttendanceService.
func NewAttendanceService(schedules scheduleReader, attendance attendanceStore, enrollments enrollmentReader, users nameResolver, validate *validator.Validate, logger *zap.Logger) *AttendanceService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if validate == nil {
		validate = validator.New()
	}
	return &AttendanceService{
		schedules:   schedules,
		attendance:  attendance,
		enrollments: enrollments,
		users:       users,
		validator:   validate,
		logger:      logger,
	}
}

// Schedule returns the sessions of an offering in calendar order.
func (s *AttendanceService) Schedule(ctx context.Context, offeringID int64) ([]models.Schedule, error) {
	return s.schedules.ListByOffering(ctx, offeringID)
}

// StudentView lists every session of an offering with the student's status.
func (s *AttendanceService) StudentView(ctx context.Context, offeringID, studentID int64) (dto.StudentAttendance, error) {
	schedules, err := s.schedules.ListByOffering(ctx, offeringID)
	if err != nil {
		return dto.StudentAttendance{}, err
	}
	records, err := s.attendance.ListByStudentInOffering(ctx, studentID, offeringID)
	if err != nil {
		return dto.StudentAttendance{}, err
	}
	rows := reconcile.StudentSessions(schedules, records)
	return dto.StudentAttendance{
		OfferingID: offeringID,
		Sessions:   rows,
		Summary:    reconcile.Summarize(reconcile.SessionStatuses(rows)),
	}, nil
}

// TeacherRoster lists the enrolled students of an offering with their
// presence at one session.
func (s *AttendanceService) TeacherRoster(ctx context.Context, offeringID, scheduleID int64) (dto.AttendanceSheet, error) {
	schedule, ok, err := s.schedules.Get(ctx, scheduleID)
	if err != nil {
		return dto.AttendanceSheet{}, err
	}
	if !ok || schedule.OfferingID != offeringID {
		return dto.AttendanceSheet{}, appErrors.Clone(appErrors.ErrNotFound, "session not found")
	}
	return s.roster(ctx, offeringID, scheduleID)
}

// RosterForDate resolves the session held on day and returns its roster.
func (s *AttendanceService) RosterForDate(ctx context.Context, offeringID int64, day time.Time) (dto.AttendanceSheet, error) {
	schedule, ok, err := s.schedules.FindByDate(ctx, offeringID, day)
	if err != nil {
		return dto.AttendanceSheet{}, err
	}
	if !ok {
		return dto.AttendanceSheet{}, appErrors.Clone(appErrors.ErrNotFound, fmt.Sprintf("no class scheduled on %s", day.Format(reconcile.DateLayout)))
	}
	return s.roster(ctx, offeringID, schedule.ID)
}

// SaveRoster records presence for the students in req.
func (s *AttendanceService) SaveRoster(ctx context.Context, req dto.SaveAttendanceRequest) error {
	if err := s.validator.Struct(req); err != nil {
		return appErrors.Wrap(err, appErrors.CodeValidation, "invalid attendance payload")
	}
	records := make([]models.Attendance, 0, len(req.Marks))
	for _, mark := range req.Marks {
		records = append(records, models.Attendance{
			ScheduleID: req.ScheduleID,
			StudentID:  mark.StudentID,
			Present:    mark.Present,
		})
	}
	if err := s.attendance.Save(ctx, records); err != nil {
		return err
	}
	s.logger.Sugar().Infow("attendance saved", "schedule_id", req.ScheduleID, "records", len(records))
	return nil
}

func (s *AttendanceService) roster(ctx context.Context, offeringID, scheduleID int64) (dto.AttendanceSheet, error) {
	enrollments, err := s.enrollments.ListByOffering(ctx, offeringID)
	if err != nil {
		return dto.AttendanceSheet{}, err
	}
	records, err := s.attendance.ListBySchedule(ctx, scheduleID)
	if err != nil {
		return dto.AttendanceSheet{}, err
	}

	ids := make([]int64, 0, len(enrollments))
	for _, e := range enrollments {
		ids = append(ids, e.StudentID)
	}
	names, err := s.users.Names(ctx, ids)
	if err != nil {
		return dto.AttendanceSheet{}, err
	}

	rows := reconcile.Roster(enrollments, records, names)
	return dto.AttendanceSheet{
		OfferingID: offeringID,
		ScheduleID: scheduleID,
		Rows:       rows,
		Summary:    reconcile.Summarize(reconcile.RosterStatuses(rows)),
	}, nil
}
