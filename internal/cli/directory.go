package cli

import (
	"context"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/noah-isme/sims-core/internal/dto"
	"github.com/noah-isme/sims-core/internal/models"
	"github.com/noah-isme/sims-core/pkg/export"
)

func newFacultyCommand(opts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "faculty",
		Short: "Administer faculties",
	}
	cmd.AddCommand(&cobra.Command{
		Use:   "list",
		Short: "List faculties",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return opts.withApp(cmd, func(s *screen, out Output) error {
				submit(s, "list-faculties",
					func(ctx context.Context) ([]models.Faculty, error) {
						return s.app.Directory.ListFaculties(ctx)
					},
					func(items []models.Faculty) error {
						table := export.Table{Headers: []string{"ID", "Code", "Name"}}
						for _, f := range items {
							table.AddRow(strconv.FormatInt(f.ID, 10), f.Code, f.Name)
						}
						return out.Table(items, table)
					})
				return nil
			})
		},
	})

	var add dto.FacultyRequest
	addCmd := &cobra.Command{
		Use:   "add",
		Short: "Create a faculty",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return opts.withApp(cmd, func(s *screen, out Output) error {
				submit(s, "create-faculty",
					func(ctx context.Context) (models.Faculty, error) {
						return s.app.Directory.CreateFaculty(ctx, add)
					},
					func(f models.Faculty) error {
						return out.Line(f, "created faculty %d (%s)", f.ID, f.Code)
					})
				return nil
			})
		},
	}
	addCmd.Flags().StringVar(&add.Name, "name", "", "faculty name")
	addCmd.Flags().StringVar(&add.Code, "code", "", "short code")
	cmd.AddCommand(addCmd)

	var update dto.FacultyRequest
	updateCmd := &cobra.Command{
		Use:   "update ID",
		Short: "Rename a faculty",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			return opts.withApp(cmd, func(s *screen, out Output) error {
				submit(s, "update-faculty",
					func(ctx context.Context) (models.Faculty, error) {
						return s.app.Directory.UpdateFaculty(ctx, id, update)
					},
					func(f models.Faculty) error {
						return out.Line(f, "updated faculty %d (%s)", f.ID, f.Code)
					})
				return nil
			})
		},
	}
	updateCmd.Flags().StringVar(&update.Name, "name", "", "faculty name")
	updateCmd.Flags().StringVar(&update.Code, "code", "", "short code")
	cmd.AddCommand(updateCmd)

	cmd.AddCommand(newDeleteByIDCommand(opts, "faculty", "delete-faculty", func(s *screen) func(context.Context, int64) error {
		return s.app.Directory.DeleteFaculty
	}))
	return cmd
}

func newDepartmentCommand(opts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "department",
		Short: "Administer departments",
	}

	var facultyID int64
	listCmd := &cobra.Command{
		Use:   "list",
		Short: "List departments, optionally of one faculty",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return opts.withApp(cmd, func(s *screen, out Output) error {
				submit(s, "list-departments",
					func(ctx context.Context) ([]models.Department, error) {
						return s.app.Directory.ListDepartments(ctx, facultyID)
					},
					func(items []models.Department) error {
						table := export.Table{Headers: []string{"ID", "Code", "Name", "Faculty"}}
						for _, d := range items {
							table.AddRow(strconv.FormatInt(d.ID, 10), d.Code, d.Name, strconv.FormatInt(d.FacultyID, 10))
						}
						return out.Table(items, table)
					})
				return nil
			})
		},
	}
	listCmd.Flags().Int64Var(&facultyID, "faculty", 0, "only departments of this faculty")
	cmd.AddCommand(listCmd)

	var add dto.DepartmentRequest
	addCmd := &cobra.Command{
		Use:   "add",
		Short: "Create a department",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return opts.withApp(cmd, func(s *screen, out Output) error {
				submit(s, "create-department",
					func(ctx context.Context) (models.Department, error) {
						return s.app.Directory.CreateDepartment(ctx, add)
					},
					func(d models.Department) error {
						return out.Line(d, "created department %d (%s)", d.ID, d.Code)
					})
				return nil
			})
		},
	}
	bindDepartmentFlags(addCmd, &add)
	cmd.AddCommand(addCmd)

	var update dto.DepartmentRequest
	updateCmd := &cobra.Command{
		Use:   "update ID",
		Short: "Edit a department",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			return opts.withApp(cmd, func(s *screen, out Output) error {
				submit(s, "update-department",
					func(ctx context.Context) (models.Department, error) {
						return s.app.Directory.UpdateDepartment(ctx, id, update)
					},
					func(d models.Department) error {
						return out.Line(d, "updated department %d (%s)", d.ID, d.Code)
					})
				return nil
			})
		},
	}
	bindDepartmentFlags(updateCmd, &update)
	cmd.AddCommand(updateCmd)

	cmd.AddCommand(newDeleteByIDCommand(opts, "department", "delete-department", func(s *screen) func(context.Context, int64) error {
		return s.app.Directory.DeleteDepartment
	}))
	return cmd
}

func bindDepartmentFlags(cmd *cobra.Command, req *dto.DepartmentRequest) {
	cmd.Flags().StringVar(&req.Name, "name", "", "department name")
	cmd.Flags().StringVar(&req.Code, "code", "", "short code")
	cmd.Flags().Int64Var(&req.FacultyID, "faculty", 0, "owning faculty id")
}

// newDeleteByIDCommand builds a "delete ID" subcommand for kind.
func newDeleteByIDCommand(opts *RootOptions, kind, task string, remove func(*screen) func(context.Context, int64) error) *cobra.Command {
	return &cobra.Command{
		Use:   "delete ID",
		Short: "Remove a " + kind,
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			return opts.withApp(cmd, func(s *screen, out Output) error {
				del := remove(s)
				submit(s, task,
					func(ctx context.Context) (int64, error) {
						return id, del(ctx, id)
					},
					func(id int64) error {
						return out.Line(map[string]int64{"deleted": id}, "deleted %s %d", kind, id)
					})
				return nil
			})
		},
	}
}
