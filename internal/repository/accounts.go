package repository

import (
	"github.com/noah-isme/sims-core/internal/models"
	"github.com/noah-isme/sims-core/internal/store"
)

func userID(u models.User) int64         { return u.ID }
func setUserID(u *models.User, id int64) { u.ID = id }

// StudentAccounts pairs users with students on students.user_id.
func (r *Repositories) StudentAccounts(atomic bool) (*store.Composite[models.User, models.Student], error) {
	return store.NewComposite(r.Users.Store, r.Students.Store, "user_id", userID, setUserID,
		func(s *models.Student, id int64) { s.UserID = id }, atomic)
}

// TeacherAccounts pairs users with teachers on teachers.user_id.
func (r *Repositories) TeacherAccounts(atomic bool) (*store.Composite[models.User, models.Teacher], error) {
	return store.NewComposite(r.Users.Store, r.Teachers.Store, "user_id", userID, setUserID,
		func(t *models.Teacher, id int64) { t.UserID = id }, atomic)
}

// AdminAccounts pairs users with admins on admins.user_id.
func (r *Repositories) AdminAccounts(atomic bool) (*store.Composite[models.User, models.Admin], error) {
	return store.NewComposite(r.Users.Store, r.Admins.Store, "user_id", userID, setUserID,
		func(a *models.Admin, id int64) { a.UserID = id }, atomic)
}
