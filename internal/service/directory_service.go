package service

import (
	"context"
	"strings"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/noah-isme/sims-core/internal/dto"
	"github.com/noah-isme/sims-core/internal/models"
	appErrors "github.com/noah-isme/sims-core/pkg/errors"
)

type facultyStore interface {
	All(ctx context.Context) ([]models.Faculty, error)
	Get(ctx context.Context, id any) (models.Faculty, bool, error)
	Insert(ctx context.Context, faculty models.Faculty) (int64, error)
	Update(ctx context.Context, faculty models.Faculty) (int64, error)
	Delete(ctx context.Context, keyvals ...any) (int64, error)
}

type departmentStore interface {
	All(ctx context.Context) ([]models.Department, error)
	ListByFaculty(ctx context.Context, facultyID int64) ([]models.Department, error)
	Insert(ctx context.Context, department models.Department) (int64, error)
	Update(ctx context.Context, department models.Department) (int64, error)
	Delete(ctx context.Context, keyvals ...any) (int64, error)
}

// DirectoryService administers faculties and departments.
type DirectoryService struct {
	faculties   facultyStore
	departments departmentStore
	validator   *validator.Validate
	logger      *zap.Logger
}

// NewDirectoryService constructs a DirectoryService.
func NewDirectoryService(faculties facultyStore, departments departmentStore, validate *validator.Validate, logger *zap.Logger) *DirectoryService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if validate == nil {
		validate = validator.New()
	}
	return &DirectoryService{faculties: faculties, departments: departments, validator: validate, logger: logger}
}

// ListFaculties returns every faculty.
func (s *DirectoryService) ListFaculties(ctx context.Context) ([]models.Faculty, error) {
	return s.faculties.All(ctx)
}

// CreateFaculty inserts a faculty and returns it with its id.
func (s *DirectoryService) CreateFaculty(ctx context.Context, req dto.FacultyRequest) (models.Faculty, error) {
	faculty, err := s.faculty(req)
	if err != nil {
		return models.Faculty{}, err
	}
	id, err := s.faculties.Insert(ctx, faculty)
	if err != nil {
		return models.Faculty{}, err
	}
	faculty.ID = id
	s.logger.Sugar().Infow("faculty created", "faculty_id", id, "code", faculty.Code)
	return faculty, nil
}

// UpdateFaculty rewrites a faculty's name and code.
func (s *DirectoryService) UpdateFaculty(ctx context.Context, id int64, req dto.FacultyRequest) (models.Faculty, error) {
	faculty, err := s.faculty(req)
	if err != nil {
		return models.Faculty{}, err
	}
	faculty.ID = id
	n, err := s.faculties.Update(ctx, faculty)
	if err != nil {
		return models.Faculty{}, err
	}
	if n == 0 {
		return models.Faculty{}, appErrors.Clone(appErrors.ErrNotFound, "faculty not found")
	}
	return faculty, nil
}

// DeleteFaculty removes a faculty that no department references.
func (s *DirectoryService) DeleteFaculty(ctx context.Context, id int64) error {
	n, err := s.faculties.Delete(ctx, id)
	if err != nil {
		return err
	}
	if n == 0 {
		return appErrors.Clone(appErrors.ErrNotFound, "faculty not found")
	}
	s.logger.Sugar().Infow("faculty deleted", "faculty_id", id)
	return nil
}

// ListDepartments returns the departments of a faculty, or all of them when
// facultyID is zero.
func (s *DirectoryService) ListDepartments(ctx context.Context, facultyID int64) ([]models.Department, error) {
	if facultyID == 0 {
		return s.departments.All(ctx)
	}
	return s.departments.ListByFaculty(ctx, facultyID)
}

// CreateDepartment inserts a department under an existing faculty.
func (s *DirectoryService) CreateDepartment(ctx context.Context, req dto.DepartmentRequest) (models.Department, error) {
	department, err := s.department(ctx, req)
	if err != nil {
		return models.Department{}, err
	}
	id, err := s.departments.Insert(ctx, department)
	if err != nil {
		return models.Department{}, err
	}
	department.ID = id
	s.logger.Sugar().Infow("department created", "department_id", id, "faculty_id", department.FacultyID)
	return department, nil
}

// UpdateDepartment rewrites a department.
func (s *DirectoryService) UpdateDepartment(ctx context.Context, id int64, req dto.DepartmentRequest) (models.Department, error) {
	department, err := s.department(ctx, req)
	if err != nil {
		return models.Department{}, err
	}
	department.ID = id
	n, err := s.departments.Update(ctx, department)
	if err != nil {
		return models.Department{}, err
	}
	if n == 0 {
		return models.Department{}, appErrors.Clone(appErrors.ErrNotFound, "department not found")
	}
	return department, nil
}

// DeleteDepartment removes a department.
func (s *DirectoryService) DeleteDepartment(ctx context.Context, id int64) error {
	n, err := s.departments.Delete(ctx, id)
	if err != nil {
		return err
	}
	if n == 0 {
		return appErrors.Clone(appErrors.ErrNotFound, "department not found")
	}
	s.logger.Sugar().Infow("department deleted", "department_id", id)
	return nil
}

func (s *DirectoryService) faculty(req dto.FacultyRequest) (models.Faculty, error) {
	req.Name = strings.TrimSpace(req.Name)
	req.Code = strings.ToUpper(strings.TrimSpace(req.Code))
	if err := s.validator.Struct(req); err != nil {
		return models.Faculty{}, appErrors.Wrap(err, appErrors.CodeValidation, "invalid faculty payload")
	}
	return models.Faculty{Name: req.Name, Code: req.Code}, nil
}

func (s *DirectoryService) department(ctx context.Context, req dto.DepartmentRequest) (models.Department, error) {
	req.Name = strings.TrimSpace(req.Name)
	req.Code = strings.ToUpper(strings.TrimSpace(req.Code))
	if err := s.validator.Struct(req); err != nil {
		return models.Department{}, appErrors.Wrap(err, appErrors.CodeValidation, "invalid department payload")
	}
	_, ok, err := s.faculties.Get(ctx, req.FacultyID)
	if err != nil {
		return models.Department{}, err
	}
	if !ok {
		return models.Department{}, appErrors.Clone(appErrors.ErrNotFound, "faculty not found")
	}
	return models.Department{Name: req.Name, Code: req.Code, FacultyID: req.FacultyID}, nil
}
