package service

import (
	"context"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/noah-isme/sims-core/internal/dto"
	"github.com/noah-isme/sims-core/internal/models"
	appErrors "github.com/noah-isme/sims-core/pkg/errors"
)

type gradeStore interface {
	ListByOffering(ctx context.Context, offeringID int64) ([]models.Grade, error)
	ListByAssessment(ctx context.Context, offeringID int64, assessment string) ([]models.Grade, error)
	ListByStudent(ctx context.Context, studentID int64) ([]models.Grade, error)
	Save(ctx context.Context, grades []models.Grade) error
}

// GradeService lists and records assessment scores.
type GradeService struct {
	grades    gradeStore
	validator *validator.Validate
	logger    *zap.Logger
}

// NewGradeService constructs a GradeService.
func NewGradeService(grades gradeStore, validate *validator.Validate, logger *zap.Logger) *GradeService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if validate == nil {
		validate = validator.New()
	}
	return &GradeService{grades: grades, validator: validate, logger: logger}
}

// List returns the scores of an offering, optionally for one assessment.
func (s *GradeService) List(ctx context.Context, offeringID int64, assessment string) ([]models.Grade, error) {
	if assessment != "" {
		return s.grades.ListByAssessment(ctx, offeringID, assessment)
	}
	return s.grades.ListByOffering(ctx, offeringID)
}

// ListForStudent returns every score of one student across offerings.
func (s *GradeService) ListForStudent(ctx context.Context, studentID int64) ([]models.Grade, error) {
	return s.grades.ListByStudent(ctx, studentID)
}

// Record inserts or replaces one score.
func (s *GradeService) Record(ctx context.Context, req dto.RecordGradeRequest) (models.Grade, error) {
	if err := s.validator.Struct(req); err != nil {
		return models.Grade{}, appErrors.Wrap(err, appErrors.CodeValidation, "invalid grade payload")
	}
	grade := models.Grade{
		OfferingID:     req.OfferingID,
		StudentID:      req.StudentID,
		AssessmentName: req.AssessmentName,
		Score:          req.Score,
		MaxScore:       req.MaxScore,
		DateSubmitted:  req.DateSubmitted,
	}
	if err := s.grades.Save(ctx, []models.Grade{grade}); err != nil {
		return models.Grade{}, err
	}
	return grade, nil
}
