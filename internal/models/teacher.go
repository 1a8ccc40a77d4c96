package models

// Teacher is the teachers specialization of a user.
type Teacher struct {
	UserID       int64 `db:"user_id" json:"user_id"`
	DepartmentID int64 `db:"department_id" json:"department_id"`
}

// TeacherAccount pairs a teacher with its user row.
type TeacherAccount struct {
	User    User    `json:"user"`
	Teacher Teacher `json:"teacher"`
}

// Admin is the admins specialization of a user.
type Admin struct {
	UserID         int64  `db:"user_id" json:"user_id"`
	AccessLevel    string `db:"access_level" json:"access_level"`
	OfficeLocation string `db:"office_location" json:"office_location"`
}

// AdminAccount pairs an administrator with its user row.
type AdminAccount struct {
	User  User  `json:"user"`
	Admin Admin `json:"admin"`
}
