package cli

import (
	"context"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/noah-isme/sims-core/internal/dto"
	"github.com/noah-isme/sims-core/internal/models"
	"github.com/noah-isme/sims-core/pkg/export"
)

func newUsersCommand(opts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "users",
		Short: "Manage user logins",
	}

	var role string
	listCmd := &cobra.Command{
		Use:   "list",
		Short: "List users, optionally of one role",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			filter := models.UserRole(strings.ToUpper(strings.TrimSpace(role)))
			return opts.withApp(cmd, func(s *screen, out Output) error {
				submit(s, "list-users",
					func(ctx context.Context) ([]models.User, error) {
						return s.app.Users.List(ctx, filter)
					},
					func(items []models.User) error {
						table := export.Table{Headers: []string{"ID", "Name", "Email", "Role", "Active"}}
						for _, u := range items {
							table.AddRow(strconv.FormatInt(u.ID, 10), u.FullName(), u.Email, string(u.Role), strconv.FormatBool(u.Active))
						}
						return out.Table(items, table)
					})
				return nil
			})
		},
	}
	listCmd.Flags().StringVar(&role, "role", "", "STUDENT, TEACHER, FACULTY_ADMIN or SYSTEM_ADMIN")
	cmd.AddCommand(listCmd)

	cmd.AddCommand(newActivationCommand(opts, "activate", true))
	cmd.AddCommand(newActivationCommand(opts, "deactivate", false))
	cmd.AddCommand(newDeleteByIDCommand(opts, "user", "delete-user", func(s *screen) func(context.Context, int64) error {
		return s.app.Users.Delete
	}))

	var reset dto.ResetPasswordRequest
	resetCmd := &cobra.Command{
		Use:   "reset-password ID",
		Short: "Set a new password without the current one",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			req := dto.ResetPasswordRequest{UserID: id, NewPassword: reset.NewPassword}
			return opts.withApp(cmd, func(s *screen, out Output) error {
				submit(s, "reset-password",
					func(ctx context.Context) (int64, error) {
						return id, s.app.Users.ResetPassword(ctx, req)
					},
					func(id int64) error {
						return out.Line(map[string]int64{"reset": id}, "password reset for user %d", id)
					})
				return nil
			})
		},
	}
	resetCmd.Flags().StringVar(&reset.NewPassword, "new", "", "new password")
	cmd.AddCommand(resetCmd)
	return cmd
}

func newActivationCommand(opts *RootOptions, verb string, active bool) *cobra.Command {
	return &cobra.Command{
		Use:   verb + " ID",
		Short: strings.ToUpper(verb[:1]) + verb[1:] + " a user login",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			return opts.withApp(cmd, func(s *screen, out Output) error {
				submit(s, verb+"-user",
					func(ctx context.Context) (int64, error) {
						return id, s.app.Users.SetActive(ctx, id, active)
					},
					func(id int64) error {
						return out.Line(map[string]interface{}{"id": id, "active": active}, "%sd user %d", verb, id)
					})
				return nil
			})
		},
	}
}
