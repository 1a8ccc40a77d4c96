package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/noah-isme/sims-core/internal/models"
	appErrors "github.com/noah-isme/sims-core/pkg/errors"
)

const offeringLabelPrefix = "offering:label:"

type offeringReader interface {
	Get(ctx context.Context, id any) (models.CourseOffering, bool, error)
	ListByTeacher(ctx context.Context, teacherID int64) ([]models.CourseOffering, error)
}

type courseReader interface {
	Get(ctx context.Context, id any) (models.Course, bool, error)
}

type studentEnrollmentReader interface {
	ListByStudent(ctx context.Context, studentID int64) ([]models.Enrollment, error)
}

type labelCache interface {
	Get(ctx context.Context, key string, dest interface{}) error
	Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error
	DeleteByPattern(ctx context.Context, pattern string) error
}

type cacheMetrics interface {
	RecordCacheOperation(hit bool, duration time.Duration)
}

// CatalogService renders course offering selectors.
type CatalogService struct {
	offerings   offeringReader
	courses     courseReader
	enrollments studentEnrollmentReader
	cache       labelCache
	metrics     cacheMetrics
	ttl         time.Duration
	logger      *zap.Logger
}

// NewCatalogService constructs a CatalogService. cache and metrics may be nil.
func NewCatalogService(offerings offeringReader, courses courseReader, enrollments studentEnrollmentReader, cache labelCache, metrics cacheMetrics, ttl time.Duration, logger *zap.Logger) *CatalogService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if ttl <= 0 {
		ttl = 10 * time.Minute
	}
	return &CatalogService{
		offerings:   offerings,
		courses:     courses,
		enrollments: enrollments,
		cache:       cache,
		metrics:     metrics,
		ttl:         ttl,
		logger:      logger,
	}
}

// OfferingLabel returns "CODE - Name (Section S)" for an offering.
func (s *CatalogService) OfferingLabel(ctx context.Context, offeringID int64) (string, error) {
	key := fmt.Sprintf("%s%d", offeringLabelPrefix, offeringID)
	if label, ok := s.cachedLabel(ctx, key); ok {
		return label, nil
	}

	offering, ok, err := s.offerings.Get(ctx, offeringID)
	if err != nil {
		return "", err
	}
	if !ok {
		return "", appErrors.Clone(appErrors.ErrNotFound, "offering not found")
	}
	course, ok, err := s.courses.Get(ctx, offering.CourseID)
	if err != nil {
		return "", err
	}
	if !ok {
		return "", appErrors.Clone(appErrors.ErrNotFound, "course not found")
	}

	label := models.OfferingLabel(course, offering)
	if s.cache != nil {
		if err := s.cache.Set(ctx, key, label, s.ttl); err != nil {
			s.logger.Sugar().Warnw("failed to cache offering label", "key", key, "error", err)
		}
	}
	return label, nil
}

// StudentOfferings lists the offerings a student is enrolled in.
func (s *CatalogService) StudentOfferings(ctx context.Context, studentID int64) ([]models.OfferingOption, error) {
	enrollments, err := s.enrollments.ListByStudent(ctx, studentID)
	if err != nil {
		return nil, err
	}
	ids := make([]int64, 0, len(enrollments))
	for _, e := range enrollments {
		ids = append(ids, e.OfferingID)
	}
	return s.options(ctx, ids)
}

// TeacherOfferings lists the offerings a teacher teaches.
func (s *CatalogService) TeacherOfferings(ctx context.Context, teacherID int64) ([]models.OfferingOption, error) {
	offerings, err := s.offerings.ListByTeacher(ctx, teacherID)
	if err != nil {
		return nil, err
	}
	ids := make([]int64, 0, len(offerings))
	for _, o := range offerings {
		ids = append(ids, o.ID)
	}
	return s.options(ctx, ids)
}

// InvalidateLabels drops every cached offering label.
func (s *CatalogService) InvalidateLabels(ctx context.Context) error {
	if s.cache == nil {
		return nil
	}
	return s.cache.DeleteByPattern(ctx, offeringLabelPrefix+"*")
}

func (s *CatalogService) options(ctx context.Context, ids []int64) ([]models.OfferingOption, error) {
	options := make([]models.OfferingOption, 0, len(ids))
	for _, id := range ids {
		label, err := s.OfferingLabel(ctx, id)
		if err != nil {
			return nil, err
		}
		options = append(options, models.OfferingOption{OfferingID: id, Label: label})
	}
	return options, nil
}

func (s *CatalogService) cachedLabel(ctx context.Context, key string) (string, bool) {
	if s.cache == nil {
		return "", false
	}
	start := time.Now()
	var label string
	err := s.cache.Get(ctx, key, &label)
	hit := err == nil
	if s.metrics != nil {
		s.metrics.RecordCacheOperation(hit, time.Since(start))
	}
	if err != nil && !errors.Is(err, appErrors.ErrCacheMiss) {
		s.logger.Sugar().Warnw("offering label cache read failed", "key", key, "error", err)
	}
	return label, hit
}
