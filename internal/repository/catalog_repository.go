package repository

import (
	"context"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/noah-isme/sims-core/internal/models"
	"github.com/noah-isme/sims-core/internal/store"
)

// FacultyRepository manages faculties.
type FacultyRepository struct {
	*store.Store[models.Faculty]
}

// NewFacultyRepository builds the faculties store.
func NewFacultyRepository(db *sqlx.DB, opts ...store.Option) *FacultyRepository {
	return &FacultyRepository{Store: store.MustNew(db, FacultyBinding, opts...)}
}

// DepartmentRepository manages departments.
type DepartmentRepository struct {
	*store.Store[models.Department]
}

// NewDepartmentRepository builds the departments store.
func NewDepartmentRepository(db *sqlx.DB, opts ...store.Option) *DepartmentRepository {
	return &DepartmentRepository{Store: store.MustNew(db, DepartmentBinding, opts...)}
}

// ListByFaculty returns the departments of a faculty ordered by name.
func (r *DepartmentRepository) ListByFaculty(ctx context.Context, facultyID int64) ([]models.Department, error) {
	return r.Select(ctx, "faculty_id = ?", "name", facultyID)
}

// CourseRepository manages the course catalog.
type CourseRepository struct {
	*store.Store[models.Course]
}

// NewCourseRepository builds the courses store.
func NewCourseRepository(db *sqlx.DB, opts ...store.Option) *CourseRepository {
	return &CourseRepository{Store: store.MustNew(db, CourseBinding, opts...)}
}

// FindByCode looks a course up by its catalog code.
func (r *CourseRepository) FindByCode(ctx context.Context, code string) (models.Course, bool, error) {
	return r.FindOneBy(ctx, "code", code)
}

// ListByDepartment returns a department's courses ordered by code.
func (r *CourseRepository) ListByDepartment(ctx context.Context, departmentID int64) ([]models.Course, error) {
	return r.Select(ctx, "department_id = ?", "code", departmentID)
}

// SemesterRepository manages semesters.
type SemesterRepository struct {
	*store.Store[models.Semester]
}

// NewSemesterRepository builds the semesters store.
func NewSemesterRepository(db *sqlx.DB, opts ...store.Option) *SemesterRepository {
	return &SemesterRepository{Store: store.MustNew(db, SemesterBinding, opts...)}
}

// FindCurrent returns the semester whose date range contains at.
func (r *SemesterRepository) FindCurrent(ctx context.Context, at time.Time) (models.Semester, bool, error) {
	items, err := r.Select(ctx, "start_date <= ? AND end_date >= ?", "start_date DESC", at, at)
	if err != nil || len(items) == 0 {
		return models.Semester{}, false, err
	}
	return items[0], true, nil
}

// OfferingRepository manages course offerings.
type OfferingRepository struct {
	*store.Store[models.CourseOffering]
}

// NewOfferingRepository builds the course_offerings store.
func NewOfferingRepository(db *sqlx.DB, opts ...store.Option) *OfferingRepository {
	return &OfferingRepository{Store: store.MustNew(db, OfferingBinding, opts...)}
}

// ListByTeacher returns the offerings taught by a teacher.
func (r *OfferingRepository) ListByTeacher(ctx context.Context, teacherID int64) ([]models.CourseOffering, error) {
	return r.Select(ctx, "teacher_id = ?", "id", teacherID)
}

// ListBySemester returns the offerings of a semester.
func (r *OfferingRepository) ListBySemester(ctx context.Context, semesterID int64) ([]models.CourseOffering, error) {
	return r.Select(ctx, "semester_id = ?", "course_id, section", semesterID)
}

// ListByCourse returns every section of a course.
func (r *OfferingRepository) ListByCourse(ctx context.Context, courseID int64) ([]models.CourseOffering, error) {
	return r.Select(ctx, "course_id = ?", "section", courseID)
}
