package repository

import (
	"context"

	"github.com/jmoiron/sqlx"

	"github.com/noah-isme/sims-core/internal/models"
	"github.com/noah-isme/sims-core/internal/store"
)

// AttendanceRepository manages attendance records.
type AttendanceRepository struct {
	*store.Store[models.Attendance]
}

// NewAttendanceRepository builds the attendance store.
func NewAttendanceRepository(db *sqlx.DB, opts ...store.Option) *AttendanceRepository {
	return &AttendanceRepository{Store: store.MustNew(db, AttendanceBinding, opts...)}
}

// ListByStudent returns every attendance record of a student.
func (r *AttendanceRepository) ListByStudent(ctx context.Context, studentID int64) ([]models.Attendance, error) {
	return r.FindBy(ctx, "student_id", studentID)
}

// ListByStudentInOffering returns a student's records for sessions of one offering.
func (r *AttendanceRepository) ListByStudentInOffering(ctx context.Context, studentID, offeringID int64) ([]models.Attendance, error) {
	return r.Select(ctx, "student_id = ? AND schedule_id IN (SELECT id FROM schedules WHERE offering_id = ?)", "", studentID, offeringID)
}

// ListBySchedule returns the records of one session.
func (r *AttendanceRepository) ListBySchedule(ctx context.Context, scheduleID int64) ([]models.Attendance, error) {
	return r.FindBy(ctx, "schedule_id", scheduleID)
}

// Save writes a batch of records in one transaction, updating existing rows
// and inserting missing ones.
func (r *AttendanceRepository) Save(ctx context.Context, records []models.Attendance) error {
	if len(records) == 0 {
		return nil
	}
	return store.RunInTx(ctx, r.DB(), func(tx *sqlx.Tx) error {
		s := r.WithTx(tx)
		for _, rec := range records {
			if err := upsert(ctx, s, rec, rec.ScheduleID, rec.StudentID); err != nil {
				return err
			}
		}
		return nil
	})
}

func upsert[T any](ctx context.Context, s *store.Store[T], entity T, key ...any) error {
	_, found, err := s.GetByKey(ctx, key...)
	if err != nil {
		return err
	}
	if found {
		_, err = s.Update(ctx, entity)
		return err
	}
	_, err = s.Create(ctx, entity)
	return err
}
