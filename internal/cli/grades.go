package cli

import (
	"context"
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/noah-isme/sims-core/internal/dto"
	"github.com/noah-isme/sims-core/internal/models"
	"github.com/noah-isme/sims-core/pkg/export"
)

func newGradesCommand(opts *RootOptions) *cobra.Command {
	var (
		offeringID int64
		studentID  int64
		assessment string
	)
	cmd := &cobra.Command{
		Use:   "grades",
		Short: "List assessment scores of an offering or a student",
		RunE: func(cmd *cobra.Command, args []string) error {
			if (offeringID == 0) == (studentID == 0) {
				return fmt.Errorf("exactly one of --offering or --student is required")
			}
			return opts.withApp(cmd, func(s *screen, out Output) error {
				submit(s, "list-grades",
					func(ctx context.Context) ([]models.Grade, error) {
						if studentID != 0 {
							return s.app.Grades.ListForStudent(ctx, studentID)
						}
						return s.app.Grades.List(ctx, offeringID, assessment)
					},
					func(items []models.Grade) error {
						first := "Student"
						if studentID != 0 {
							first = "Offering"
						}
						table := export.Table{Headers: []string{first, "Assessment", "Score", "Percent", "Submitted"}}
						for _, g := range items {
							owner := g.StudentID
							if studentID != 0 {
								owner = g.OfferingID
							}
							table.AddRow(
								strconv.FormatInt(owner, 10),
								g.AssessmentName,
								fmt.Sprintf("%d/%d", g.Score, g.MaxScore),
								fmt.Sprintf("%.1f", g.Percent()),
								g.DateSubmitted,
							)
						}
						return out.Table(items, table)
					})
				return nil
			})
		},
	}
	cmd.Flags().Int64Var(&offeringID, "offering", 0, "course offering id")
	cmd.Flags().Int64Var(&studentID, "student", 0, "student user id")
	cmd.Flags().StringVar(&assessment, "assessment", "", "only this assessment (with --offering)")
	cmd.AddCommand(newRecordGradeCommand(opts))
	return cmd
}

func newRecordGradeCommand(opts *RootOptions) *cobra.Command {
	var req dto.RecordGradeRequest
	cmd := &cobra.Command{
		Use:   "record",
		Short: "Record one assessment score",
		RunE: func(cmd *cobra.Command, args []string) error {
			return opts.withApp(cmd, func(s *screen, out Output) error {
				submit(s, "record-grade",
					func(ctx context.Context) (models.Grade, error) {
						return s.app.Grades.Record(ctx, req)
					},
					func(g models.Grade) error {
						return out.Line(g, "recorded %s for student %d: %d/%d", g.AssessmentName, g.StudentID, g.Score, g.MaxScore)
					})
				return nil
			})
		},
	}
	cmd.Flags().Int64Var(&req.OfferingID, "offering", 0, "course offering id")
	cmd.Flags().Int64Var(&req.StudentID, "student", 0, "student user id")
	cmd.Flags().StringVar(&req.AssessmentName, "assessment", "", "assessment name")
	cmd.Flags().IntVar(&req.Score, "score", 0, "points scored")
	cmd.Flags().IntVar(&req.MaxScore, "max", 0, "points available")
	cmd.Flags().StringVar(&req.DateSubmitted, "date", "", "submission date (YYYY-MM-DD)")
	return cmd
}
