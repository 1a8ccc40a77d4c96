package service

import (
	"context"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"github.com/noah-isme/sims-core/internal/dto"
	"github.com/noah-isme/sims-core/internal/models"
	appErrors "github.com/noah-isme/sims-core/pkg/errors"
)

type userDirectory interface {
	All(ctx context.Context) ([]models.User, error)
	Get(ctx context.Context, id any) (models.User, bool, error)
	ListByRole(ctx context.Context, role models.UserRole) ([]models.User, error)
	SetActive(ctx context.Context, id int64, active bool) (int64, error)
	UpdatePassword(ctx context.Context, id int64, hash string) (int64, error)
}

// accountRemover deletes an account together with its role row.
type accountRemover interface {
	DeleteStudent(ctx context.Context, id int64) error
	DeleteTeacher(ctx context.Context, id int64) error
	DeleteAdmin(ctx context.Context, id int64) error
}

// UserService covers administrator-side user management.
type UserService struct {
	users     userDirectory
	accounts  accountRemover
	validator *validator.Validate
	logger    *zap.Logger
	hashCost  int
}

// NewUserService constructs a UserService.
func NewUserService(users userDirectory, accounts accountRemover, validate *validator.Validate, logger *zap.Logger) *UserService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if validate == nil {
		validate = validator.New()
	}
	return &UserService{users: users, accounts: accounts, validator: validate, logger: logger, hashCost: bcrypt.DefaultCost}
}

// List returns the users holding role, or every user when role is empty.
func (s *UserService) List(ctx context.Context, role models.UserRole) ([]models.User, error) {
	if role == "" {
		return s.users.All(ctx)
	}
	if !role.Valid() {
		return nil, appErrors.Clone(appErrors.ErrValidation, "unknown role "+string(role))
	}
	return s.users.ListByRole(ctx, role)
}

// SetActive enables or disables sign-in for a user.
func (s *UserService) SetActive(ctx context.Context, id int64, active bool) error {
	n, err := s.users.SetActive(ctx, id, active)
	if err != nil {
		return err
	}
	if n == 0 {
		return appErrors.Clone(appErrors.ErrNotFound, "user not found")
	}
	s.logger.Sugar().Infow("user activation changed", "user_id", id, "active", active)
	return nil
}

// ResetPassword stores a new hash without checking the current password.
func (s *UserService) ResetPassword(ctx context.Context, req dto.ResetPasswordRequest) error {
	if err := s.validator.Struct(req); err != nil {
		return appErrors.Wrap(err, appErrors.CodeValidation, "invalid password payload")
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(req.NewPassword), s.hashCost)
	if err != nil {
		return appErrors.Wrap(err, appErrors.CodeInternal, "failed to hash password")
	}
	n, err := s.users.UpdatePassword(ctx, req.UserID, string(hash))
	if err != nil {
		return err
	}
	if n == 0 {
		return appErrors.Clone(appErrors.ErrNotFound, "user not found")
	}
	s.logger.Sugar().Infow("password reset", "user_id", req.UserID)
	return nil
}

// Delete removes a user and the role row that belongs to it.
func (s *UserService) Delete(ctx context.Context, id int64) error {
	user, ok, err := s.users.Get(ctx, id)
	if err != nil {
		return err
	}
	if !ok {
		return appErrors.Clone(appErrors.ErrNotFound, "user not found")
	}
	switch {
	case user.Role == models.RoleStudent:
		return s.accounts.DeleteStudent(ctx, id)
	case user.Role == models.RoleTeacher:
		return s.accounts.DeleteTeacher(ctx, id)
	case user.Role.IsAdmin():
		return s.accounts.DeleteAdmin(ctx, id)
	default:
		return appErrors.Clone(appErrors.ErrValidation, "unknown role "+string(user.Role))
	}
}
