package service

import (
	"context"
	"strings"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"github.com/noah-isme/sims-core/internal/dto"
	"github.com/noah-isme/sims-core/internal/models"
	appErrors "github.com/noah-isme/sims-core/pkg/errors"
)

// accountStore persists a user row together with its role-specific row.
type accountStore[C any] interface {
	Add(ctx context.Context, user models.User, child C) (int64, error)
	Update(ctx context.Context, user models.User, child C) error
	Delete(ctx context.Context, id int64) error
	Get(ctx context.Context, id int64) (models.User, C, bool, error)
	All(ctx context.Context) ([]models.User, []C, error)
}

type accountUserRepository interface {
	FindByEmail(ctx context.Context, email string) (models.User, bool, error)
	UpdatePassword(ctx context.Context, id int64, hash string) (int64, error)
}

// AccountService manages student, teacher and administrator accounts.
type AccountService struct {
	users     accountUserRepository
	students  accountStore[models.Student]
	teachers  accountStore[models.Teacher]
	admins    accountStore[models.Admin]
	validator *validator.Validate
	logger    *zap.Logger
	hashCost  int
}

// NewAccountService constructs an AccountService.
func NewAccountService(users accountUserRepository, students accountStore[models.Student], teachers accountStore[models.Teacher], admins accountStore[models.Admin], validate *validator.Validate, logger *zap.Logger) *AccountService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if validate == nil {
		validate = validator.New()
	}
	return &AccountService{
		users:     users,
		students:  students,
		teachers:  teachers,
		admins:    admins,
		validator: validate,
		logger:    logger,
		hashCost:  bcrypt.DefaultCost,
	}
}

// CreateStudent registers a user row and its students row.
func (s *AccountService) CreateStudent(ctx context.Context, req dto.CreateStudentRequest) (models.StudentAccount, error) {
	req.Email = normalizeEmail(req.Email)
	if err := s.validator.Struct(req); err != nil {
		return models.StudentAccount{}, appErrors.Wrap(err, appErrors.CodeValidation, "invalid student payload")
	}
	user, err := s.newUser(ctx, models.RoleStudent, req.FirstName, req.LastName, req.Email, req.Password)
	if err != nil {
		return models.StudentAccount{}, err
	}
	user.DateOfBirth = req.DateOfBirth
	student := models.Student{EnrollmentYear: req.EnrollmentYear, DepartmentID: req.DepartmentID, GPA: req.GPA}

	id, err := s.students.Add(ctx, user, student)
	if err != nil {
		s.logAddFailure("student", id, user.Email, err)
		return models.StudentAccount{}, err
	}
	user.ID, student.UserID = id, id
	s.logger.Sugar().Infow("student account created", "user_id", id)
	return models.StudentAccount{User: user, Student: student}, nil
}

// GetStudent loads a student account.
func (s *AccountService) GetStudent(ctx context.Context, id int64) (models.StudentAccount, error) {
	user, student, ok, err := s.students.Get(ctx, id)
	if err != nil {
		return models.StudentAccount{}, err
	}
	if !ok {
		return models.StudentAccount{}, appErrors.Clone(appErrors.ErrNotFound, "student not found")
	}
	return models.StudentAccount{User: user, Student: student}, nil
}

// UpdateStudent applies the non-nil fields of req to a student account.
func (s *AccountService) UpdateStudent(ctx context.Context, id int64, req dto.UpdateStudentRequest) (models.StudentAccount, error) {
	if req.Email != nil {
		email := normalizeEmail(*req.Email)
		req.Email = &email
	}
	if err := s.validator.Struct(req); err != nil {
		return models.StudentAccount{}, appErrors.Wrap(err, appErrors.CodeValidation, "invalid student payload")
	}
	account, err := s.GetStudent(ctx, id)
	if err != nil {
		return models.StudentAccount{}, err
	}

	if req.Email != nil && *req.Email != account.User.Email {
		if err := s.ensureEmailFree(ctx, *req.Email); err != nil {
			return models.StudentAccount{}, err
		}
		account.User.Email = *req.Email
	}
	if req.FirstName != nil {
		account.User.FirstName = strings.TrimSpace(*req.FirstName)
	}
	if req.LastName != nil {
		account.User.LastName = strings.TrimSpace(*req.LastName)
	}
	if req.Active != nil {
		account.User.Active = *req.Active
	}
	if req.EnrollmentYear != nil {
		account.Student.EnrollmentYear = *req.EnrollmentYear
	}
	if req.DepartmentID != nil {
		account.Student.DepartmentID = *req.DepartmentID
	}
	if req.GPA != nil {
		account.Student.GPA = req.GPA
	}

	if err := s.students.Update(ctx, account.User, account.Student); err != nil {
		return models.StudentAccount{}, err
	}
	return account, nil
}

// DeleteStudent removes the students row and then the user row.
func (s *AccountService) DeleteStudent(ctx context.Context, id int64) error {
	if err := s.students.Delete(ctx, id); err != nil {
		return err
	}
	s.logger.Sugar().Infow("student account deleted", "user_id", id)
	return nil
}

// CreateTeacher registers a user row and its teachers row.
func (s *AccountService) CreateTeacher(ctx context.Context, req dto.CreateTeacherRequest) (models.TeacherAccount, error) {
	req.Email = normalizeEmail(req.Email)
	if err := s.validator.Struct(req); err != nil {
		return models.TeacherAccount{}, appErrors.Wrap(err, appErrors.CodeValidation, "invalid teacher payload")
	}
	user, err := s.newUser(ctx, models.RoleTeacher, req.FirstName, req.LastName, req.Email, req.Password)
	if err != nil {
		return models.TeacherAccount{}, err
	}
	user.DateOfBirth = req.DateOfBirth
	teacher := models.Teacher{DepartmentID: req.DepartmentID}

	id, err := s.teachers.Add(ctx, user, teacher)
	if err != nil {
		s.logAddFailure("teacher", id, user.Email, err)
		return models.TeacherAccount{}, err
	}
	user.ID, teacher.UserID = id, id
	return models.TeacherAccount{User: user, Teacher: teacher}, nil
}

// GetTeacher loads a teacher account.
func (s *AccountService) GetTeacher(ctx context.Context, id int64) (models.TeacherAccount, error) {
	user, teacher, ok, err := s.teachers.Get(ctx, id)
	if err != nil {
		return models.TeacherAccount{}, err
	}
	if !ok {
		return models.TeacherAccount{}, appErrors.Clone(appErrors.ErrNotFound, "teacher not found")
	}
	return models.TeacherAccount{User: user, Teacher: teacher}, nil
}

// ListStudents returns every student account.
func (s *AccountService) ListStudents(ctx context.Context) ([]models.StudentAccount, error) {
	users, students, err := s.students.All(ctx)
	if err != nil {
		return nil, err
	}
	accounts := make([]models.StudentAccount, len(users))
	for i := range users {
		accounts[i] = models.StudentAccount{User: users[i], Student: students[i]}
	}
	return accounts, nil
}

// ListTeachers returns every teacher account.
func (s *AccountService) ListTeachers(ctx context.Context) ([]models.TeacherAccount, error) {
	users, teachers, err := s.teachers.All(ctx)
	if err != nil {
		return nil, err
	}
	accounts := make([]models.TeacherAccount, len(users))
	for i := range users {
		accounts[i] = models.TeacherAccount{User: users[i], Teacher: teachers[i]}
	}
	return accounts, nil
}

// DeleteTeacher removes the teachers row and then the user row.
func (s *AccountService) DeleteTeacher(ctx context.Context, id int64) error {
	if err := s.teachers.Delete(ctx, id); err != nil {
		return err
	}
	s.logger.Sugar().Infow("teacher account deleted", "user_id", id)
	return nil
}

// DeleteAdmin removes the admins row and then the user row.
func (s *AccountService) DeleteAdmin(ctx context.Context, id int64) error {
	if err := s.admins.Delete(ctx, id); err != nil {
		return err
	}
	s.logger.Sugar().Infow("admin account deleted", "user_id", id)
	return nil
}

// CreateAdmin registers a user row and its admins row.
func (s *AccountService) CreateAdmin(ctx context.Context, req dto.CreateAdminRequest) (models.AdminAccount, error) {
	req.Email = normalizeEmail(req.Email)
	if err := s.validator.Struct(req); err != nil {
		return models.AdminAccount{}, appErrors.Wrap(err, appErrors.CodeValidation, "invalid admin payload")
	}
	user, err := s.newUser(ctx, models.UserRole(req.Role), req.FirstName, req.LastName, req.Email, req.Password)
	if err != nil {
		return models.AdminAccount{}, err
	}
	user.DateOfBirth = req.DateOfBirth
	admin := models.Admin{AccessLevel: req.AccessLevel, OfficeLocation: req.OfficeLocation}

	id, err := s.admins.Add(ctx, user, admin)
	if err != nil {
		s.logAddFailure("admin", id, user.Email, err)
		return models.AdminAccount{}, err
	}
	user.ID, admin.UserID = id, id
	return models.AdminAccount{User: user, Admin: admin}, nil
}

// Authenticate checks credentials and returns the matching active user.
func (s *AccountService) Authenticate(ctx context.Context, req dto.LoginRequest) (models.User, error) {
	req.Email = normalizeEmail(req.Email)
	if err := s.validator.Struct(req); err != nil {
		return models.User{}, appErrors.Wrap(err, appErrors.CodeValidation, "invalid login payload")
	}
	user, ok, err := s.users.FindByEmail(ctx, req.Email)
	if err != nil {
		return models.User{}, err
	}
	if !ok {
		return models.User{}, appErrors.Clone(appErrors.ErrInvalidCredentials, "invalid email or password")
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(req.Password)); err != nil {
		return models.User{}, appErrors.Clone(appErrors.ErrInvalidCredentials, "invalid email or password")
	}
	if !user.Active {
		return models.User{}, appErrors.Clone(appErrors.ErrInactiveAccount, "account is inactive")
	}
	return user, nil
}

// ChangePassword verifies the current password and stores a new hash.
func (s *AccountService) ChangePassword(ctx context.Context, email string, req dto.ChangePasswordRequest) error {
	if err := s.validator.Struct(req); err != nil {
		return appErrors.Wrap(err, appErrors.CodeValidation, "invalid password payload")
	}
	user, err := s.Authenticate(ctx, dto.LoginRequest{Email: email, Password: req.CurrentPassword})
	if err != nil {
		return err
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(req.NewPassword), s.hashCost)
	if err != nil {
		return appErrors.Wrap(err, appErrors.CodeInternal, "failed to hash password")
	}
	if _, err := s.users.UpdatePassword(ctx, user.ID, string(hash)); err != nil {
		return err
	}
	return nil
}

func (s *AccountService) newUser(ctx context.Context, role models.UserRole, first, last, email, password string) (models.User, error) {
	email = normalizeEmail(email)
	if err := s.ensureEmailFree(ctx, email); err != nil {
		return models.User{}, err
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(password), s.hashCost)
	if err != nil {
		return models.User{}, appErrors.Wrap(err, appErrors.CodeInternal, "failed to hash password")
	}
	return models.User{
		Role:         role,
		FirstName:    strings.TrimSpace(first),
		LastName:     strings.TrimSpace(last),
		Email:        email,
		PasswordHash: string(hash),
		Active:       true,
	}, nil
}

func (s *AccountService) ensureEmailFree(ctx context.Context, email string) error {
	_, exists, err := s.users.FindByEmail(ctx, email)
	if err != nil {
		return err
	}
	if exists {
		return appErrors.Clone(appErrors.ErrConflict, "email already registered")
	}
	return nil
}

func (s *AccountService) logAddFailure(kind string, id int64, email string, err error) {
	if id > 0 {
		s.logger.Sugar().Warnw("account base row kept after child insert failed", "kind", kind, "user_id", id, "email", email, "error", err)
		return
	}
	s.logger.Sugar().Errorw("account creation failed", "kind", kind, "email", email, "error", err)
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
