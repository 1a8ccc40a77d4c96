package repository

import (
	"context"

	"github.com/jmoiron/sqlx"

	"github.com/noah-isme/sims-core/internal/models"
	"github.com/noah-isme/sims-core/internal/store"
)

// UserRepository reads and writes the users base table.
type UserRepository struct {
	*store.Store[models.User]
}

// NewUserRepository builds the users store.
func NewUserRepository(db *sqlx.DB, opts ...store.Option) *UserRepository {
	return &UserRepository{Store: store.MustNew(db, UserBinding, opts...)}
}

// FindByEmail looks a user up by login email.
func (r *UserRepository) FindByEmail(ctx context.Context, email string) (models.User, bool, error) {
	return r.FindOneBy(ctx, "email", email)
}

// ListByRole returns users with role, ordered by name.
func (r *UserRepository) ListByRole(ctx context.Context, role models.UserRole) ([]models.User, error) {
	return r.Select(ctx, "role = ?", "last_name, first_name", role)
}

// UpdatePassword replaces the stored password hash.
func (r *UserRepository) UpdatePassword(ctx context.Context, id int64, hash string) (int64, error) {
	return r.ExecCount(ctx, "UPDATE users SET password = ? WHERE id = ?", hash, id)
}

// SetActive toggles the is_active flag.
func (r *UserRepository) SetActive(ctx context.Context, id int64, active bool) (int64, error) {
	return r.ExecCount(ctx, "UPDATE users SET is_active = ? WHERE id = ?", active, id)
}

// Names maps user ids to display names.
func (r *UserRepository) Names(ctx context.Context, ids []int64) (map[int64]string, error) {
	names := make(map[int64]string, len(ids))
	if len(ids) == 0 {
		return names, nil
	}
	query, args, err := sqlx.In("id IN (?)", ids)
	if err != nil {
		return nil, err
	}
	users, err := r.Select(ctx, query, "", args...)
	if err != nil {
		return nil, err
	}
	for _, u := range users {
		names[u.ID] = u.FullName()
	}
	return names, nil
}
