package repository

import (
	"github.com/jmoiron/sqlx"

	"github.com/noah-isme/sims-core/internal/store"
)

// Repositories bundles one store per table over a shared handle.
type Repositories struct {
	Users       *UserRepository
	Students    *StudentRepository
	Teachers    *TeacherRepository
	Admins      *AdminRepository
	Faculties   *FacultyRepository
	Departments *DepartmentRepository
	Courses     *CourseRepository
	Semesters   *SemesterRepository
	Offerings   *OfferingRepository
	Enrollments *EnrollmentRepository
	Schedules   *ScheduleRepository
	Attendance  *AttendanceRepository
	Grades      *GradeRepository
}

// New builds every repository on db.
func New(db *sqlx.DB, opts ...store.Option) *Repositories {
	return &Repositories{
		Users:       NewUserRepository(db, opts...),
		Students:    NewStudentRepository(db, opts...),
		Teachers:    NewTeacherRepository(db, opts...),
		Admins:      NewAdminRepository(db, opts...),
		Faculties:   NewFacultyRepository(db, opts...),
		Departments: NewDepartmentRepository(db, opts...),
		Courses:     NewCourseRepository(db, opts...),
		Semesters:   NewSemesterRepository(db, opts...),
		Offerings:   NewOfferingRepository(db, opts...),
		Enrollments: NewEnrollmentRepository(db, opts...),
		Schedules:   NewScheduleRepository(db, opts...),
		Attendance:  NewAttendanceRepository(db, opts...),
		Grades:      NewGradeRepository(db, opts...),
	}
}
