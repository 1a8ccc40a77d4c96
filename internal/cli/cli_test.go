package cli

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/noah-isme/sims-core/internal/models"
	"github.com/noah-isme/sims-core/internal/repository"
	"github.com/noah-isme/sims-core/pkg/config"
	"github.com/noah-isme/sims-core/pkg/database"
	appErrors "github.com/noah-isme/sims-core/pkg/errors"
)

func TestRootCommand(t *testing.T) {
	cmd := NewRootCommand()
	require.NotNil(t, cmd)
	assert.Equal(t, "simsctl", cmd.Use)
}

func TestCommandPresence(t *testing.T) {
	cmd := NewRootCommand()
	commands := [][]string{
		{"login"},
		{"account", "create-student"},
		{"account", "create-teacher"},
		{"account", "create-admin"},
		{"account", "show-student"},
		{"account", "show-teacher"},
		{"account", "list-students"},
		{"account", "list-teachers"},
		{"account", "delete-student"},
		{"account", "passwd"},
		{"courses"},
		{"attendance", "student"},
		{"attendance", "roster"},
		{"attendance", "mark"},
		{"grades"},
		{"grades", "record"},
		{"schedule"},
		{"faculty", "list"},
		{"faculty", "add"},
		{"faculty", "update"},
		{"faculty", "delete"},
		{"department", "list"},
		{"department", "add"},
		{"department", "update"},
		{"department", "delete"},
		{"users", "list"},
		{"users", "activate"},
		{"users", "deactivate"},
		{"users", "delete"},
		{"users", "reset-password"},
		{"serve-diag"},
	}
	for _, path := range commands {
		t.Run(strings.Join(path, " "), func(t *testing.T) {
			sub, _, err := cmd.Find(path)
			require.NoError(t, err)
			assert.Equal(t, path[len(path)-1], sub.Name())
		})
	}
}

func TestGlobalFlags(t *testing.T) {
	cmd := NewRootCommand()

	verbose := cmd.PersistentFlags().Lookup("verbose")
	require.NotNil(t, verbose)
	assert.Equal(t, "v", verbose.Shorthand)

	format := cmd.PersistentFlags().Lookup("format")
	require.NotNil(t, format)
	assert.Equal(t, "text", format.DefValue)
}

func TestInvalidFormat(t *testing.T) {
	_, err := execute(t, nil, "courses", "--teacher", "1", "--format", "yaml")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid format")
}

func execute(t *testing.T, open Opener, args ...string) (string, error) {
	t.Helper()
	cmd := newRootCommand(open)
	var buf bytes.Buffer
	cmd.SetOut(&buf)
	cmd.SetErr(&buf)
	cmd.SetArgs(args)
	err := cmd.ExecuteContext(context.Background())
	return buf.String(), err
}

// sqliteOpener returns an opener over a schema-initialised database file.
func sqliteOpener(t *testing.T) Opener {
	t.Helper()
	cfg := &config.Config{
		Env:      config.EnvDevelopment,
		Database: config.DatabaseConfig{Driver: config.DriverSQLite, Path: filepath.Join(t.TempDir(), "sims.db")},
		Tasks:    config.TaskConfig{Workers: 2, QueueSize: 8},
		Store:    config.StoreConfig{CompositeAtomic: true},
		Redis:    config.RedisConfig{CacheTTL: time.Minute},
	}

	schema, err := os.ReadFile("../repository/testdata/schema.sql")
	require.NoError(t, err)
	registry, err := database.Open(context.Background(), cfg.Database, nil)
	require.NoError(t, err)
	_, err = registry.DB().Exec(string(schema))
	require.NoError(t, err)
	ctx := context.Background()
	repos := repository.New(registry.DB())
	facultyID, err := repos.Faculties.Insert(ctx, models.Faculty{Name: "Engineering", Code: "ENG"})
	require.NoError(t, err)
	departmentID, err := repos.Departments.Insert(ctx, models.Department{Name: "Computer Science", Code: "CS", FacultyID: facultyID})
	require.NoError(t, err)
	_, err = repos.Courses.Insert(ctx, models.Course{Code: "CS101", Name: "Intro to Programming", Credits: 6, DepartmentID: departmentID})
	require.NoError(t, err)
	_, err = repos.Semesters.Insert(ctx, models.Semester{
		Name:      "Spring 2025",
		StartDate: time.Date(2025, time.February, 1, 0, 0, 0, 0, time.UTC),
		EndDate:   time.Date(2025, time.June, 30, 0, 0, 0, 0, time.UTC),
	})
	require.NoError(t, err)
	require.NoError(t, registry.Close())

	return func(ctx context.Context, verbose bool) (*App, error) {
		registry, err := database.Open(ctx, cfg.Database, nil)
		if err != nil {
			return nil, err
		}
		return NewApp(ctx, cfg, zap.NewNop(), registry, nil)
	}
}

func TestAccountAndAttendanceFlow(t *testing.T) {
	open := sqliteOpener(t)

	out, err := execute(t, open, "account", "create-teacher",
		"--first-name", "Edsger", "--last-name", "Dijkstra", "--email", "ewd@example.com",
		"--password", "goto-harmful", "--department", "1")
	require.NoError(t, err)
	assert.Equal(t, "created teacher 1 (ewd@example.com)\n", out)

	out, err = execute(t, open, "account", "create-student",
		"--first-name", "Ada", "--last-name", "Lovelace", "--email", "Ada@Example.com",
		"--password", "analytical", "--year", "2024", "--department", "1")
	require.NoError(t, err)
	assert.Equal(t, "created student 2 (ada@example.com)\n", out)

	out, err = execute(t, open, "login", "--email", "ada@example.com", "--password", "analytical")
	require.NoError(t, err)
	assert.Equal(t, "signed in as Ada Lovelace (STUDENT)\n", out)

	_, err = execute(t, open, "login", "--email", "ada@example.com", "--password", "wrong-one")
	require.Error(t, err)
	assert.Equal(t, appErrors.CodeInvalidCredentials, appErrors.CodeOf(err))

	seedOffering(t, open)

	out, err = execute(t, open, "courses", "--student", "2")
	require.NoError(t, err)
	assert.Contains(t, out, "CS101 - Intro to Programming (Section A)")

	out, err = execute(t, open, "attendance", "mark", "--schedule", "1", "--present", "2")
	require.NoError(t, err)
	assert.Equal(t, "saved 1 attendance records\n", out)

	out, err = execute(t, open, "--format", "csv", "attendance", "student", "--student", "2", "--offering", "1")
	require.NoError(t, err)
	assert.Equal(t, "Date,Day,Time,Status\n"+
		"\"Mar 03, 2025\",Monday,09:00 - 10:30,Present\n"+
		"\"Mar 05, 2025\",Wednesday,09:00 - 10:30,Not Recorded\n", out)

	out, err = execute(t, open, "--format", "csv", "attendance", "roster", "--offering", "1", "--date", "2025-03-05")
	require.NoError(t, err)
	assert.Equal(t, "Student,Name,Status\n2,Ada Lovelace,Not Recorded\n", out)

	_, err = execute(t, open, "attendance", "roster", "--offering", "1", "--date", "2025-03-04")
	require.Error(t, err)
	assert.Equal(t, appErrors.CodeNotFound, appErrors.CodeOf(err))

	out, err = execute(t, open, "grades", "record", "--offering", "1", "--student", "2",
		"--assessment", "Midterm", "--score", "40", "--max", "50", "--date", "2025-04-10")
	require.NoError(t, err)
	assert.Equal(t, "recorded Midterm for student 2: 40/50\n", out)

	out, err = execute(t, open, "--format", "csv", "grades", "--offering", "1")
	require.NoError(t, err)
	assert.Equal(t, "Student,Assessment,Score,Percent,Submitted\n2,Midterm,40/50,80.0,2025-04-10\n", out)

	out, err = execute(t, open, "--format", "csv", "grades", "--student", "2")
	require.NoError(t, err)
	assert.Equal(t, "Offering,Assessment,Score,Percent,Submitted\n1,Midterm,40/50,80.0,2025-04-10\n", out)

	_, err = execute(t, open, "grades", "--student", "2", "--offering", "1")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "exactly one of")

	out, err = execute(t, open, "--format", "csv", "schedule", "--offering", "1")
	require.NoError(t, err)
	assert.Equal(t, "Session,Date,Day,Time,Room\n"+
		"1,\"Mar 03, 2025\",Monday,09:00 - 10:30,B-201\n"+
		"2,\"Mar 05, 2025\",Wednesday,09:00 - 10:30,B-201\n", out)
}

func TestDirectoryCommands(t *testing.T) {
	open := sqliteOpener(t)

	out, err := execute(t, open, "faculty", "add", "--name", "Law", "--code", "law")
	require.NoError(t, err)
	assert.Equal(t, "created faculty 2 (LAW)\n", out)

	out, err = execute(t, open, "faculty", "update", "2", "--name", "Law School", "--code", "LAW")
	require.NoError(t, err)
	assert.Equal(t, "updated faculty 2 (LAW)\n", out)

	out, err = execute(t, open, "--format", "csv", "faculty", "list")
	require.NoError(t, err)
	assert.Contains(t, out, "1,ENG,Engineering\n")
	assert.Contains(t, out, "2,LAW,Law School\n")

	_, err = execute(t, open, "faculty", "add", "--name", "Duplicate", "--code", "ENG")
	require.Error(t, err)
	assert.Equal(t, appErrors.CodeStorage, appErrors.CodeOf(err))

	out, err = execute(t, open, "department", "add", "--name", "Criminal Law", "--code", "crim", "--faculty", "2")
	require.NoError(t, err)
	assert.Equal(t, "created department 2 (CRIM)\n", out)

	_, err = execute(t, open, "department", "add", "--name", "Ghost", "--code", "GH", "--faculty", "9")
	require.Error(t, err)
	assert.Equal(t, appErrors.CodeNotFound, appErrors.CodeOf(err))

	out, err = execute(t, open, "--format", "csv", "department", "list", "--faculty", "2")
	require.NoError(t, err)
	assert.Equal(t, "ID,Code,Name,Faculty\n2,CRIM,Criminal Law,2\n", out)

	_, err = execute(t, open, "faculty", "delete", "2")
	require.Error(t, err)
	assert.Equal(t, appErrors.CodeStorage, appErrors.CodeOf(err))

	out, err = execute(t, open, "department", "delete", "2")
	require.NoError(t, err)
	assert.Equal(t, "deleted department 2\n", out)

	out, err = execute(t, open, "faculty", "delete", "2")
	require.NoError(t, err)
	assert.Equal(t, "deleted faculty 2\n", out)

	_, err = execute(t, open, "faculty", "delete", "2")
	require.Error(t, err)
	assert.Equal(t, appErrors.CodeNotFound, appErrors.CodeOf(err))
}

func TestUserCommands(t *testing.T) {
	open := sqliteOpener(t)
	_, err := execute(t, open, "account", "create-teacher",
		"--first-name", "Edsger", "--last-name", "Dijkstra", "--email", "ewd@example.com",
		"--password", "goto-harmful", "--department", "1")
	require.NoError(t, err)
	_, err = execute(t, open, "account", "create-student",
		"--first-name", "Ada", "--last-name", "Lovelace", "--email", "ada@example.com",
		"--password", "analytical", "--year", "2024", "--department", "1")
	require.NoError(t, err)

	out, err := execute(t, open, "--format", "csv", "users", "list", "--role", "teacher")
	require.NoError(t, err)
	assert.Equal(t, "ID,Name,Email,Role,Active\n1,Edsger Dijkstra,ewd@example.com,TEACHER,true\n", out)

	_, err = execute(t, open, "users", "list", "--role", "janitor")
	require.Error(t, err)
	assert.Equal(t, appErrors.CodeValidation, appErrors.CodeOf(err))

	out, err = execute(t, open, "account", "show-teacher", "1")
	require.NoError(t, err)
	assert.Equal(t, "1\tEdsger Dijkstra\tewd@example.com\t1\n", out)

	out, err = execute(t, open, "--format", "csv", "account", "list-students")
	require.NoError(t, err)
	assert.Equal(t, "ID,Name,Email,Year,Department\n2,Ada Lovelace,ada@example.com,2024,1\n", out)

	out, err = execute(t, open, "--format", "csv", "account", "list-teachers")
	require.NoError(t, err)
	assert.Equal(t, "ID,Name,Email,Department\n1,Edsger Dijkstra,ewd@example.com,1\n", out)

	out, err = execute(t, open, "users", "deactivate", "1")
	require.NoError(t, err)
	assert.Equal(t, "deactivated user 1\n", out)

	_, err = execute(t, open, "login", "--email", "ewd@example.com", "--password", "goto-harmful")
	require.Error(t, err)
	assert.Equal(t, appErrors.CodeInactiveAccount, appErrors.CodeOf(err))

	_, err = execute(t, open, "users", "activate", "1")
	require.NoError(t, err)

	out, err = execute(t, open, "users", "reset-password", "1", "--new", "structured")
	require.NoError(t, err)
	assert.Equal(t, "password reset for user 1\n", out)

	out, err = execute(t, open, "login", "--email", "ewd@example.com", "--password", "structured")
	require.NoError(t, err)
	assert.Equal(t, "signed in as Edsger Dijkstra (TEACHER)\n", out)

	out, err = execute(t, open, "users", "delete", "2")
	require.NoError(t, err)
	assert.Equal(t, "deleted user 2\n", out)

	_, err = execute(t, open, "account", "show-student", "2")
	require.Error(t, err)
	assert.Equal(t, appErrors.CodeNotFound, appErrors.CodeOf(err))

	_, err = execute(t, open, "users", "deactivate", "2")
	require.Error(t, err)
	assert.Equal(t, appErrors.CodeNotFound, appErrors.CodeOf(err))
}

func TestLatestSelectionWins(t *testing.T) {
	open := sqliteOpener(t)
	_, err := execute(t, open, "account", "create-teacher",
		"--first-name", "Edsger", "--last-name", "Dijkstra", "--email", "ewd@example.com",
		"--password", "goto-harmful", "--department", "1")
	require.NoError(t, err)
	_, err = execute(t, open, "account", "create-student",
		"--first-name", "Ada", "--last-name", "Lovelace", "--email", "ada@example.com",
		"--password", "analytical", "--year", "2024", "--department", "1")
	require.NoError(t, err)
	seedOffering(t, open)

	out, err := execute(t, open, "--format", "csv", "attendance", "student", "--student", "2", "--offering", "99", "--offering", "1")
	require.NoError(t, err)
	assert.Equal(t, 1, strings.Count(out, "Date,Day,Time,Status"))
	assert.Contains(t, out, "Mar 03, 2025")
}

func TestDeleteStudent(t *testing.T) {
	open := sqliteOpener(t)
	_, err := execute(t, open, "account", "create-student",
		"--first-name", "Ada", "--last-name", "Lovelace", "--email", "ada@example.com",
		"--password", "analytical", "--year", "2024", "--department", "1")
	require.NoError(t, err)

	out, err := execute(t, open, "--format", "json", "account", "show-student", "1")
	require.NoError(t, err)
	assert.Contains(t, out, `"email": "ada@example.com"`)

	_, err = execute(t, open, "account", "delete-student", "1")
	require.NoError(t, err)

	_, err = execute(t, open, "account", "show-student", "1")
	require.Error(t, err)
	assert.Equal(t, appErrors.CodeNotFound, appErrors.CodeOf(err))
}

func seedOffering(t *testing.T, open Opener) {
	t.Helper()
	ctx := context.Background()
	app, err := open(ctx, false)
	require.NoError(t, err)
	defer app.Close()

	offeringID, err := app.Repos.Offerings.Insert(ctx, models.CourseOffering{CourseID: 1, TeacherID: 1, SemesterID: 1, Section: "A", Capacity: 30})
	require.NoError(t, err)
	_, err = app.Repos.Enrollments.Create(ctx, models.Enrollment{OfferingID: offeringID, StudentID: 2})
	require.NoError(t, err)
	for i, day := range []string{"Monday", "Wednesday"} {
		_, err = app.Repos.Schedules.Insert(ctx, models.Schedule{
			OfferingID: offeringID,
			DayOfWeek:  day,
			Date:       time.Date(2025, time.March, 3+2*i, 0, 0, 0, 0, time.UTC),
			StartTime:  "09:00:00",
			EndTime:    "10:30:00",
			Room:       "B-201",
		})
		require.NoError(t, err)
	}
}
