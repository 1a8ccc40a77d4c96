package repository

import (
	"context"

	"github.com/jmoiron/sqlx"

	"github.com/noah-isme/sims-core/internal/models"
	"github.com/noah-isme/sims-core/internal/store"
	appErrors "github.com/noah-isme/sims-core/pkg/errors"
)

// GradeRepository manages assessment scores.
type GradeRepository struct {
	*store.Store[models.Grade]
}

// NewGradeRepository builds the assessments store.
func NewGradeRepository(db *sqlx.DB, opts ...store.Option) *GradeRepository {
	return &GradeRepository{Store: store.MustNew(db, GradeBinding, opts...)}
}

// ListByOffering returns every score recorded for an offering.
func (r *GradeRepository) ListByOffering(ctx context.Context, offeringID int64) ([]models.Grade, error) {
	return r.Select(ctx, "offering_id = ?", "assessment_name, student_id", offeringID)
}

// ListByStudent returns a student's scores across offerings.
func (r *GradeRepository) ListByStudent(ctx context.Context, studentID int64) ([]models.Grade, error) {
	return r.Select(ctx, "student_id = ?", "offering_id, assessment_name", studentID)
}

// ListByAssessment returns the scores of one assessment in an offering.
func (r *GradeRepository) ListByAssessment(ctx context.Context, offeringID int64, assessment string) ([]models.Grade, error) {
	return r.Select(ctx, "offering_id = ? AND assessment_name = ?", "student_id", offeringID, assessment)
}

// AssessmentNames lists the distinct assessments recorded for an offering.
func (r *GradeRepository) AssessmentNames(ctx context.Context, offeringID int64) ([]string, error) {
	const query = `SELECT DISTINCT assessment_name FROM assessments WHERE offering_id = ? ORDER BY assessment_name`
	names := make([]string, 0)
	if err := r.DB().SelectContext(ctx, &names, r.DB().Rebind(query), offeringID); err != nil {
		return nil, appErrors.Storage(err, "list assessment names")
	}
	return names, nil
}

// Save writes a batch of scores in one transaction.
func (r *GradeRepository) Save(ctx context.Context, grades []models.Grade) error {
	if len(grades) == 0 {
		return nil
	}
	return store.RunInTx(ctx, r.DB(), func(tx *sqlx.Tx) error {
		s := r.WithTx(tx)
		for _, g := range grades {
			if err := upsert(ctx, s, g, g.OfferingID, g.StudentID, g.AssessmentName); err != nil {
				return err
			}
		}
		return nil
	})
}
