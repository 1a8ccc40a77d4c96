package repository

import (
	"github.com/noah-isme/sims-core/internal/models"
	"github.com/noah-isme/sims-core/internal/store"
)

// Table bindings. Column lists mirror the persisted schema exactly.
var (
	UserBinding = store.Binding[models.User]{
		Table:   "users",
		Columns: []string{"id", "role", "first_name", "last_name", "email", "password", "date_of_birth", "is_active"},
		AutoKey: true,
	}
	StudentBinding = store.Binding[models.Student]{
		Table:   "students",
		Columns: []string{"user_id", "enrollment_year", "department_id", "gpa"},
		Key:     []string{"user_id"},
	}
	TeacherBinding = store.Binding[models.Teacher]{
		Table:   "teachers",
		Columns: []string{"user_id", "department_id"},
		Key:     []string{"user_id"},
	}
	AdminBinding = store.Binding[models.Admin]{
		Table:   "admins",
		Columns: []string{"user_id", "access_level", "office_location"},
		Key:     []string{"user_id"},
	}
	FacultyBinding = store.Binding[models.Faculty]{
		Table:   "faculties",
		Columns: []string{"id", "name", "code"},
		AutoKey: true,
	}
	DepartmentBinding = store.Binding[models.Department]{
		Table:   "departments",
		Columns: []string{"id", "name", "code", "faculty_id"},
		AutoKey: true,
	}
	CourseBinding = store.Binding[models.Course]{
		Table:   "courses",
		Columns: []string{"id", "code", "name", "credits", "department_id"},
		AutoKey: true,
	}
	SemesterBinding = store.Binding[models.Semester]{
		Table:   "semesters",
		Columns: []string{"id", "name", "start_date", "end_date"},
		AutoKey: true,
	}
	OfferingBinding = store.Binding[models.CourseOffering]{
		Table:   "course_offerings",
		Columns: []string{"id", "course_id", "teacher_id", "semester_id", "section", "capacity"},
		AutoKey: true,
	}
	EnrollmentBinding = store.Binding[models.Enrollment]{
		Table:   "enrollments",
		Columns: []string{"offering_id", "student_id", "final_grade"},
		Key:     []string{"offering_id", "student_id"},
	}
	ScheduleBinding = store.Binding[models.Schedule]{
		Table:   "schedules",
		Columns: []string{"id", "offering_id", "day_of_week", "date", "start_time", "end_time", "room"},
		AutoKey: true,
	}
	AttendanceBinding = store.Binding[models.Attendance]{
		Table:   "attendance",
		Columns: []string{"schedule_id", "student_id", "present"},
		Key:     []string{"schedule_id", "student_id"},
	}
	GradeBinding = store.Binding[models.Grade]{
		Table:   "assessments",
		Columns: []string{"offering_id", "student_id", "assessment_name", "score", "max_score", "date_submitted"},
		Key:     []string{"offering_id", "student_id", "assessment_name"},
	}
)
