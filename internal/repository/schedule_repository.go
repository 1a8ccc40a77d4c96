package repository

import (
	"context"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/noah-isme/sims-core/internal/models"
	"github.com/noah-isme/sims-core/internal/store"
)

const dateLayout = "2006-01-02"

// ScheduleRepository manages class sessions.
type ScheduleRepository struct {
	*store.Store[models.Schedule]
}

// NewScheduleRepository builds the schedules store.
func NewScheduleRepository(db *sqlx.DB, opts ...store.Option) *ScheduleRepository {
	return &ScheduleRepository{Store: store.MustNew(db, ScheduleBinding, opts...)}
}

// ListByOffering returns an offering's sessions in calendar order.
func (r *ScheduleRepository) ListByOffering(ctx context.Context, offeringID int64) ([]models.Schedule, error) {
	return r.Select(ctx, "offering_id = ?", "date, start_time", offeringID)
}

// FindByDate returns the first session of an offering held on day. Bounds are
// bound as YYYY-MM-DD so they compare against DATE columns and SQLite text.
func (r *ScheduleRepository) FindByDate(ctx context.Context, offeringID int64, day time.Time) (models.Schedule, bool, error) {
	start := time.Date(day.Year(), day.Month(), day.Day(), 0, 0, 0, 0, day.Location())
	items, err := r.Select(ctx, "offering_id = ? AND date >= ? AND date < ?", "start_time",
		offeringID, start.Format(dateLayout), start.AddDate(0, 0, 1).Format(dateLayout))
	if err != nil || len(items) == 0 {
		return models.Schedule{}, false, err
	}
	return items[0], true, nil
}

// ClassDates returns the distinct session dates of an offering.
func (r *ScheduleRepository) ClassDates(ctx context.Context, offeringID int64) ([]time.Time, error) {
	sessions, err := r.ListByOffering(ctx, offeringID)
	if err != nil {
		return nil, err
	}
	dates := make([]time.Time, 0, len(sessions))
	seen := make(map[string]bool, len(sessions))
	for _, s := range sessions {
		key := s.Date.Format(dateLayout)
		if seen[key] {
			continue
		}
		seen[key] = true
		dates = append(dates, s.Date)
	}
	return dates, nil
}
