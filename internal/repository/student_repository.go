package repository

import (
	"context"

	"github.com/jmoiron/sqlx"

	"github.com/noah-isme/sims-core/internal/models"
	"github.com/noah-isme/sims-core/internal/store"
)

// StudentRepository reads and writes the students child table.
type StudentRepository struct {
	*store.Store[models.Student]
}

// NewStudentRepository builds the students store.
func NewStudentRepository(db *sqlx.DB, opts ...store.Option) *StudentRepository {
	return &StudentRepository{Store: store.MustNew(db, StudentBinding, opts...)}
}

// ListByDepartment returns students of a department.
func (r *StudentRepository) ListByDepartment(ctx context.Context, departmentID int64) ([]models.Student, error) {
	return r.FindBy(ctx, "department_id", departmentID)
}

// TeacherRepository reads and writes the teachers child table.
type TeacherRepository struct {
	*store.Store[models.Teacher]
}

// NewTeacherRepository builds the teachers store.
func NewTeacherRepository(db *sqlx.DB, opts ...store.Option) *TeacherRepository {
	return &TeacherRepository{Store: store.MustNew(db, TeacherBinding, opts...)}
}

// ListByDepartment returns teachers of a department.
func (r *TeacherRepository) ListByDepartment(ctx context.Context, departmentID int64) ([]models.Teacher, error) {
	return r.FindBy(ctx, "department_id", departmentID)
}

// AdminRepository reads and writes the admins child table.
type AdminRepository struct {
	*store.Store[models.Admin]
}

// NewAdminRepository builds the admins store.
func NewAdminRepository(db *sqlx.DB, opts ...store.Option) *AdminRepository {
	return &AdminRepository{Store: store.MustNew(db, AdminBinding, opts...)}
}
