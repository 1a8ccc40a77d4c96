package cli

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/spf13/cobra"

	"github.com/noah-isme/sims-core/internal/dto"
	"github.com/noah-isme/sims-core/internal/models"
	"github.com/noah-isme/sims-core/internal/reconcile"
	"github.com/noah-isme/sims-core/pkg/export"
)

func newCoursesCommand(opts *RootOptions) *cobra.Command {
	var teacherID, studentID int64
	cmd := &cobra.Command{
		Use:   "courses",
		Short: "List the course offerings of a teacher or student",
		RunE: func(cmd *cobra.Command, args []string) error {
			if (teacherID == 0) == (studentID == 0) {
				return fmt.Errorf("exactly one of --teacher or --student is required")
			}
			return opts.withApp(cmd, func(s *screen, out Output) error {
				submit(s, "list-offerings",
					func(ctx context.Context) ([]models.OfferingOption, error) {
						if teacherID != 0 {
							return s.app.Catalog.TeacherOfferings(ctx, teacherID)
						}
						return s.app.Catalog.StudentOfferings(ctx, studentID)
					},
					func(items []models.OfferingOption) error {
						table := export.Table{Headers: []string{"Offering", "Course"}}
						for _, o := range items {
							table.AddRow(strconv.FormatInt(o.OfferingID, 10), o.Label)
						}
						return out.Table(items, table)
					})
				return nil
			})
		},
	}
	cmd.Flags().Int64Var(&teacherID, "teacher", 0, "teacher user id")
	cmd.Flags().Int64Var(&studentID, "student", 0, "student user id")
	return cmd
}

func newScheduleCommand(opts *RootOptions) *cobra.Command {
	var offeringID int64
	cmd := &cobra.Command{
		Use:   "schedule",
		Short: "List the class sessions of an offering",
		RunE: func(cmd *cobra.Command, args []string) error {
			if offeringID == 0 {
				return fmt.Errorf("--offering is required")
			}
			return opts.withApp(cmd, func(s *screen, out Output) error {
				submit(s, "list-schedule",
					func(ctx context.Context) ([]models.Schedule, error) {
						return s.app.Attendance.Schedule(ctx, offeringID)
					},
					func(items []models.Schedule) error {
						table := export.Table{Headers: []string{"Session", "Date", "Day", "Time", "Room"}}
						for _, sc := range items {
							table.AddRow(
								strconv.FormatInt(sc.ID, 10),
								sc.Date.Format(reconcile.DateLayout),
								sc.DayOfWeek,
								reconcile.TimeRange(sc.StartTime, sc.EndTime),
								sc.Room,
							)
						}
						return out.Table(items, table)
					})
				return nil
			})
		},
	}
	cmd.Flags().Int64Var(&offeringID, "offering", 0, "course offering id")
	return cmd
}

func newAttendanceCommand(opts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "attendance",
		Short: "View and record class attendance",
	}
	cmd.AddCommand(newStudentAttendanceCommand(opts))
	cmd.AddCommand(newRosterCommand(opts))
	cmd.AddCommand(newMarkCommand(opts))
	return cmd
}

func newStudentAttendanceCommand(opts *RootOptions) *cobra.Command {
	var (
		studentID int64
		offerings []int64
	)
	cmd := &cobra.Command{
		Use:   "student",
		Short: "Show a student's sessions and status for an offering",
		Long: "Show a student's sessions and status for an offering. Repeating --offering " +
			"behaves like switching the selection: every load runs, only the last one is shown.",
		RunE: func(cmd *cobra.Command, args []string) error {
			if studentID == 0 || len(offerings) == 0 {
				return fmt.Errorf("--student and --offering are required")
			}
			return opts.withApp(cmd, func(s *screen, out Output) error {
				for _, offeringID := range offerings {
					offeringID := offeringID
					submitLatest(s, "student-attendance",
						func(ctx context.Context) (dto.StudentAttendance, error) {
							return s.app.Attendance.StudentView(ctx, offeringID, studentID)
						},
						func(view dto.StudentAttendance) error {
							return renderStudentAttendance(out, view)
						})
				}
				return nil
			})
		},
	}
	cmd.Flags().Int64Var(&studentID, "student", 0, "student user id")
	cmd.Flags().Int64SliceVar(&offerings, "offering", nil, "course offering id")
	return cmd
}

func renderStudentAttendance(out Output, view dto.StudentAttendance) error {
	table := export.Table{Headers: []string{"Date", "Day", "Time", "Status"}}
	for _, row := range view.Sessions {
		table.AddRow(row.Date, row.Day, row.Time, row.Status.String())
	}
	if err := out.Table(view, table); err != nil {
		return err
	}
	if out.Format != "text" {
		return nil
	}
	_, err := fmt.Fprintf(out.Writer, "\ntotal %d  present %d  absent %d  not recorded %d  rate %.1f%%\n",
		view.Summary.Total, view.Summary.Present, view.Summary.Absent, view.Summary.NotRecorded, view.Summary.Rate())
	return err
}

func newRosterCommand(opts *RootOptions) *cobra.Command {
	var (
		offeringID int64
		scheduleID int64
		day        string
	)
	cmd := &cobra.Command{
		Use:   "roster",
		Short: "Show the attendance sheet of one session",
		RunE: func(cmd *cobra.Command, args []string) error {
			if offeringID == 0 {
				return fmt.Errorf("--offering is required")
			}
			if (scheduleID == 0) == (day == "") {
				return fmt.Errorf("exactly one of --schedule or --date is required")
			}
			var date time.Time
			if day != "" {
				var err error
				if date, err = time.Parse(dateFlagLayout, day); err != nil {
					return fmt.Errorf("invalid --date %q: %w", day, err)
				}
			}
			return opts.withApp(cmd, func(s *screen, out Output) error {
				submit(s, "attendance-roster",
					func(ctx context.Context) (dto.AttendanceSheet, error) {
						if scheduleID != 0 {
							return s.app.Attendance.TeacherRoster(ctx, offeringID, scheduleID)
						}
						return s.app.Attendance.RosterForDate(ctx, offeringID, date)
					},
					func(sheet dto.AttendanceSheet) error {
						table := export.Table{Headers: []string{"Student", "Name", "Status"}}
						for _, row := range sheet.Rows {
							table.AddRow(strconv.FormatInt(row.StudentID, 10), row.Name, row.Status.String())
						}
						return out.Table(sheet, table)
					})
				return nil
			})
		},
	}
	cmd.Flags().Int64Var(&offeringID, "offering", 0, "course offering id")
	cmd.Flags().Int64Var(&scheduleID, "schedule", 0, "session id")
	cmd.Flags().StringVar(&day, "date", "", "session date (YYYY-MM-DD)")
	return cmd
}

func newMarkCommand(opts *RootOptions) *cobra.Command {
	var (
		scheduleID int64
		present    []int64
		absent     []int64
	)
	cmd := &cobra.Command{
		Use:   "mark",
		Short: "Record presence for a session",
		RunE: func(cmd *cobra.Command, args []string) error {
			req := dto.SaveAttendanceRequest{ScheduleID: scheduleID}
			for _, id := range present {
				req.Marks = append(req.Marks, dto.AttendanceMark{StudentID: id, Present: true})
			}
			for _, id := range absent {
				req.Marks = append(req.Marks, dto.AttendanceMark{StudentID: id})
			}
			return opts.withApp(cmd, func(s *screen, out Output) error {
				submit(s, "save-attendance",
					func(ctx context.Context) (int, error) {
						return len(req.Marks), s.app.Attendance.SaveRoster(ctx, req)
					},
					func(n int) error {
						return out.Line(map[string]int{"saved": n}, "saved %d attendance records", n)
					})
				return nil
			})
		},
	}
	cmd.Flags().Int64Var(&scheduleID, "schedule", 0, "session id")
	cmd.Flags().Int64SliceVar(&present, "present", nil, "student ids marked present")
	cmd.Flags().Int64SliceVar(&absent, "absent", nil, "student ids marked absent")
	return cmd
}
