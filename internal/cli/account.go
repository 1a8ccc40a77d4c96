package cli

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/spf13/cobra"

	"github.com/noah-isme/sims-core/internal/dto"
	"github.com/noah-isme/sims-core/internal/models"
	"github.com/noah-isme/sims-core/pkg/export"
)

const dateFlagLayout = "2006-01-02"

type personFlags struct {
	firstName   string
	lastName    string
	email       string
	password    string
	dateOfBirth string
}

func (p *personFlags) bind(cmd *cobra.Command) {
	cmd.Flags().StringVar(&p.firstName, "first-name", "", "first name")
	cmd.Flags().StringVar(&p.lastName, "last-name", "", "last name")
	cmd.Flags().StringVar(&p.email, "email", "", "login email")
	cmd.Flags().StringVar(&p.password, "password", "", "initial password")
	cmd.Flags().StringVar(&p.dateOfBirth, "dob", "", "date of birth (YYYY-MM-DD)")
}

func (p *personFlags) birthDate() (*time.Time, error) {
	if p.dateOfBirth == "" {
		return nil, nil
	}
	t, err := time.Parse(dateFlagLayout, p.dateOfBirth)
	if err != nil {
		return nil, fmt.Errorf("invalid --dob %q: %w", p.dateOfBirth, err)
	}
	return &t, nil
}

func newAccountCommand(opts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "account",
		Short: "Create, inspect and remove user accounts",
	}
	cmd.AddCommand(newCreateStudentCommand(opts))
	cmd.AddCommand(newCreateTeacherCommand(opts))
	cmd.AddCommand(newCreateAdminCommand(opts))
	cmd.AddCommand(newShowStudentCommand(opts))
	cmd.AddCommand(newShowTeacherCommand(opts))
	cmd.AddCommand(newListStudentsCommand(opts))
	cmd.AddCommand(newListTeachersCommand(opts))
	cmd.AddCommand(newDeleteStudentCommand(opts))
	cmd.AddCommand(newPasswordCommand(opts))
	return cmd
}

func newCreateStudentCommand(opts *RootOptions) *cobra.Command {
	var (
		person     personFlags
		year       int
		department int64
		gpa        float64
	)
	cmd := &cobra.Command{
		Use:   "create-student",
		Short: "Register a student account",
		RunE: func(cmd *cobra.Command, args []string) error {
			dob, err := person.birthDate()
			if err != nil {
				return err
			}
			req := dto.CreateStudentRequest{
				FirstName:      person.firstName,
				LastName:       person.lastName,
				Email:          person.email,
				Password:       person.password,
				DateOfBirth:    dob,
				EnrollmentYear: year,
				DepartmentID:   department,
			}
			if cmd.Flags().Changed("gpa") {
				req.GPA = &gpa
			}
			return opts.withApp(cmd, func(s *screen, out Output) error {
				submit(s, "create-student",
					func(ctx context.Context) (models.StudentAccount, error) {
						return s.app.Accounts.CreateStudent(ctx, req)
					},
					func(acc models.StudentAccount) error {
						return out.Line(acc, "created student %d (%s)", acc.User.ID, acc.User.Email)
					})
				return nil
			})
		},
	}
	person.bind(cmd)
	cmd.Flags().IntVar(&year, "year", time.Now().Year(), "enrollment year")
	cmd.Flags().Int64Var(&department, "department", 0, "department id")
	cmd.Flags().Float64Var(&gpa, "gpa", 0, "grade point average")
	return cmd
}

func newCreateTeacherCommand(opts *RootOptions) *cobra.Command {
	var (
		person     personFlags
		department int64
	)
	cmd := &cobra.Command{
		Use:   "create-teacher",
		Short: "Register a teacher account",
		RunE: func(cmd *cobra.Command, args []string) error {
			dob, err := person.birthDate()
			if err != nil {
				return err
			}
			req := dto.CreateTeacherRequest{
				FirstName:    person.firstName,
				LastName:     person.lastName,
				Email:        person.email,
				Password:     person.password,
				DateOfBirth:  dob,
				DepartmentID: department,
			}
			return opts.withApp(cmd, func(s *screen, out Output) error {
				submit(s, "create-teacher",
					func(ctx context.Context) (models.TeacherAccount, error) {
						return s.app.Accounts.CreateTeacher(ctx, req)
					},
					func(acc models.TeacherAccount) error {
						return out.Line(acc, "created teacher %d (%s)", acc.User.ID, acc.User.Email)
					})
				return nil
			})
		},
	}
	person.bind(cmd)
	cmd.Flags().Int64Var(&department, "department", 0, "department id")
	return cmd
}

func newCreateAdminCommand(opts *RootOptions) *cobra.Command {
	var (
		person personFlags
		role   string
		access string
		office string
	)
	cmd := &cobra.Command{
		Use:   "create-admin",
		Short: "Register an administrator account",
		RunE: func(cmd *cobra.Command, args []string) error {
			dob, err := person.birthDate()
			if err != nil {
				return err
			}
			req := dto.CreateAdminRequest{
				FirstName:      person.firstName,
				LastName:       person.lastName,
				Email:          person.email,
				Password:       person.password,
				DateOfBirth:    dob,
				Role:           role,
				AccessLevel:    access,
				OfficeLocation: office,
			}
			return opts.withApp(cmd, func(s *screen, out Output) error {
				submit(s, "create-admin",
					func(ctx context.Context) (models.AdminAccount, error) {
						return s.app.Accounts.CreateAdmin(ctx, req)
					},
					func(acc models.AdminAccount) error {
						return out.Line(acc, "created %s %d (%s)", acc.User.Role, acc.User.ID, acc.User.Email)
					})
				return nil
			})
		},
	}
	person.bind(cmd)
	cmd.Flags().StringVar(&role, "role", string(models.RoleFacultyAdmin), "SYSTEM_ADMIN or FACULTY_ADMIN")
	cmd.Flags().StringVar(&access, "access-level", "", "access level")
	cmd.Flags().StringVar(&office, "office", "", "office location")
	return cmd
}

func newShowStudentCommand(opts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "show-student ID",
		Short: "Show a student account",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			return opts.withApp(cmd, func(s *screen, out Output) error {
				submit(s, "show-student",
					func(ctx context.Context) (models.StudentAccount, error) {
						return s.app.Accounts.GetStudent(ctx, id)
					},
					func(acc models.StudentAccount) error {
						return out.Line(acc, "%d\t%s\t%s\t%d", acc.User.ID, acc.User.FullName(), acc.User.Email, acc.Student.EnrollmentYear)
					})
				return nil
			})
		},
	}
}

func newShowTeacherCommand(opts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "show-teacher ID",
		Short: "Show a teacher account",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			return opts.withApp(cmd, func(s *screen, out Output) error {
				submit(s, "show-teacher",
					func(ctx context.Context) (models.TeacherAccount, error) {
						return s.app.Accounts.GetTeacher(ctx, id)
					},
					func(acc models.TeacherAccount) error {
						return out.Line(acc, "%d\t%s\t%s\t%d", acc.User.ID, acc.User.FullName(), acc.User.Email, acc.Teacher.DepartmentID)
					})
				return nil
			})
		},
	}
}

func newListStudentsCommand(opts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "list-students",
		Short: "List student accounts",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return opts.withApp(cmd, func(s *screen, out Output) error {
				submit(s, "list-students",
					func(ctx context.Context) ([]models.StudentAccount, error) {
						return s.app.Accounts.ListStudents(ctx)
					},
					func(items []models.StudentAccount) error {
						table := export.Table{Headers: []string{"ID", "Name", "Email", "Year", "Department"}}
						for _, acc := range items {
							table.AddRow(
								strconv.FormatInt(acc.User.ID, 10),
								acc.User.FullName(),
								acc.User.Email,
								strconv.Itoa(acc.Student.EnrollmentYear),
								strconv.FormatInt(acc.Student.DepartmentID, 10),
							)
						}
						return out.Table(items, table)
					})
				return nil
			})
		},
	}
}

func newListTeachersCommand(opts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "list-teachers",
		Short: "List teacher accounts",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return opts.withApp(cmd, func(s *screen, out Output) error {
				submit(s, "list-teachers",
					func(ctx context.Context) ([]models.TeacherAccount, error) {
						return s.app.Accounts.ListTeachers(ctx)
					},
					func(items []models.TeacherAccount) error {
						table := export.Table{Headers: []string{"ID", "Name", "Email", "Department"}}
						for _, acc := range items {
							table.AddRow(
								strconv.FormatInt(acc.User.ID, 10),
								acc.User.FullName(),
								acc.User.Email,
								strconv.FormatInt(acc.Teacher.DepartmentID, 10),
							)
						}
						return out.Table(items, table)
					})
				return nil
			})
		},
	}
}

func newDeleteStudentCommand(opts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "delete-student ID",
		Short: "Remove a student account",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			return opts.withApp(cmd, func(s *screen, out Output) error {
				submit(s, "delete-student",
					func(ctx context.Context) (int64, error) {
						return id, s.app.Accounts.DeleteStudent(ctx, id)
					},
					func(id int64) error {
						return out.Line(map[string]int64{"deleted": id}, "deleted student %d", id)
					})
				return nil
			})
		},
	}
}

func newPasswordCommand(opts *RootOptions) *cobra.Command {
	var email, current, next string
	cmd := &cobra.Command{
		Use:   "passwd",
		Short: "Change an account password",
		RunE: func(cmd *cobra.Command, args []string) error {
			req := dto.ChangePasswordRequest{CurrentPassword: current, NewPassword: next}
			return opts.withApp(cmd, func(s *screen, out Output) error {
				submit(s, "change-password",
					func(ctx context.Context) (string, error) {
						return email, s.app.Accounts.ChangePassword(ctx, email, req)
					},
					func(email string) error {
						return out.Line(map[string]string{"updated": email}, "password updated for %s", email)
					})
				return nil
			})
		},
	}
	cmd.Flags().StringVar(&email, "email", "", "login email")
	cmd.Flags().StringVar(&current, "current", "", "current password")
	cmd.Flags().StringVar(&next, "new", "", "new password")
	return cmd
}

func newLoginCommand(opts *RootOptions) *cobra.Command {
	var email, password string
	cmd := &cobra.Command{
		Use:   "login",
		Short: "Check credentials",
		RunE: func(cmd *cobra.Command, args []string) error {
			req := dto.LoginRequest{Email: email, Password: password}
			return opts.withApp(cmd, func(s *screen, out Output) error {
				submit(s, "login",
					func(ctx context.Context) (models.User, error) {
						return s.app.Accounts.Authenticate(ctx, req)
					},
					func(u models.User) error {
						return out.Line(u, "signed in as %s (%s)", u.FullName(), u.Role)
					})
				return nil
			})
		},
	}
	cmd.Flags().StringVar(&email, "email", "", "login email")
	cmd.Flags().StringVar(&password, "password", "", "password")
	return cmd
}

func parseID(raw string) (int64, error) {
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("invalid id %q", raw)
	}
	return id, nil
}
