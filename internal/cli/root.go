package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"
)

// Opener builds the App for a command invocation.
type Opener func(ctx context.Context, verbose bool) (*App, error)

// RootOptions holds global flags for all commands.
type RootOptions struct {
	Verbose bool
	Format  string

	open Opener
}

// NewRootCommand creates the simsctl root command.
func NewRootCommand() *cobra.Command {
	return newRootCommand(OpenApp)
}

func newRootCommand(open Opener) *cobra.Command {
	opts := &RootOptions{open: open}

	cmd := &cobra.Command{
		Use:           "simsctl",
		Short:         "Student information system console",
		Long:          "Manage accounts, faculties, course offerings, attendance and grades against the SIMS database.",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if !isValidFormat(opts.Format) {
				return fmt.Errorf("invalid format %q: must be one of %v", opts.Format, ValidFormats)
			}
			return nil
		},
	}

	cmd.PersistentFlags().BoolVarP(&opts.Verbose, "verbose", "v", false, "debug logging")
	cmd.PersistentFlags().StringVar(&opts.Format, "format", "text", "output format (text|json|csv)")

	cmd.AddCommand(newLoginCommand(opts))
	cmd.AddCommand(newAccountCommand(opts))
	cmd.AddCommand(newCoursesCommand(opts))
	cmd.AddCommand(newAttendanceCommand(opts))
	cmd.AddCommand(newScheduleCommand(opts))
	cmd.AddCommand(newGradesCommand(opts))
	cmd.AddCommand(newFacultyCommand(opts))
	cmd.AddCommand(newDepartmentCommand(opts))
	cmd.AddCommand(newUsersCommand(opts))
	cmd.AddCommand(newServeDiagCommand(opts))

	return cmd
}

// withApp opens the App, runs fn and closes the App.
func (o *RootOptions) withApp(cmd *cobra.Command, fn func(*screen, Output) error) error {
	app, err := o.open(cmd.Context(), o.Verbose)
	if err != nil {
		return err
	}
	defer func() {
		if err := app.Close(); err != nil {
			app.Logger.Sugar().Warnw("close app", "error", err)
		}
	}()
	out := Output{Format: o.Format, Writer: cmd.OutOrStdout()}
	s := newScreen(cmd.Context(), app)
	if err := fn(s, out); err != nil {
		return err
	}
	return s.run()
}
