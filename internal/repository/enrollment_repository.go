package repository

import (
	"context"

	"github.com/jmoiron/sqlx"

	"github.com/noah-isme/sims-core/internal/models"
	"github.com/noah-isme/sims-core/internal/store"
)

// EnrollmentRepository manages student enrollments in offerings.
type EnrollmentRepository struct {
	*store.Store[models.Enrollment]
}

// NewEnrollmentRepository builds the enrollments store.
func NewEnrollmentRepository(db *sqlx.DB, opts ...store.Option) *EnrollmentRepository {
	return &EnrollmentRepository{Store: store.MustNew(db, EnrollmentBinding, opts...)}
}

// ListByStudent returns a student's enrollments.
func (r *EnrollmentRepository) ListByStudent(ctx context.Context, studentID int64) ([]models.Enrollment, error) {
	return r.Select(ctx, "student_id = ?", "offering_id", studentID)
}

// ListByOffering returns the enrollments of an offering.
func (r *EnrollmentRepository) ListByOffering(ctx context.Context, offeringID int64) ([]models.Enrollment, error) {
	return r.Select(ctx, "offering_id = ?", "student_id", offeringID)
}

// CountByOffering returns the number of students enrolled in an offering.
func (r *EnrollmentRepository) CountByOffering(ctx context.Context, offeringID int64) (int64, error) {
	return r.Count(ctx, "offering_id = ?", offeringID)
}
