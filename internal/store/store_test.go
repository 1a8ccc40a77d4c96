package store

import (
	"context"
	"errors"
	"regexp"
	"testing"
	"time"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	appErrors "github.com/noah-isme/sims-core/pkg/errors"
)

type course struct {
	ID      int64  `db:"id"`
	Code    string `db:"code"`
	Name    string `db:"name"`
	Credits int64  `db:"credits"`
}

var courseBinding = Binding[course]{
	Table:   "courses",
	Columns: []string{"id", "code", "name", "credits"},
	AutoKey: true,
}

type enrollment struct {
	OfferingID int64   `db:"offering_id"`
	StudentID  int64   `db:"student_id"`
	Grade      *string `db:"grade"`
}

var enrollmentBinding = Binding[enrollment]{
	Table:   "enrollments",
	Columns: []string{"offering_id", "student_id", "grade"},
	Key:     []string{"offering_id", "student_id"},
}

func newMock(t *testing.T, driver string) (*sqlx.DB, sqlmock.Sqlmock, func()) {
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	require.NoError(t, err)
	return sqlx.NewDb(db, driver), mock, func() {
		db.Close()
	}
}

type recordingObserver struct {
	ops  []string
	errs []error
}

func (r *recordingObserver) ObserveStatement(table, op string, _ time.Duration, err error) {
	r.ops = append(r.ops, table+"."+op)
	r.errs = append(r.errs, err)
}

func TestGetReturnsEntity(t *testing.T) {
	db, mock, cleanup := newMock(t, "sqlmock")
	defer cleanup()
	obs := &recordingObserver{}
	s, err := New(db, courseBinding, WithObserver(obs))
	require.NoError(t, err)

	rows := sqlmock.NewRows([]string{"id", "code", "name", "credits"}).AddRow(7, "CS101", "Intro", 3)
	mock.ExpectQuery(regexp.QuoteMeta("SELECT id, code, name, credits FROM courses WHERE id = ? LIMIT 1")).
		WithArgs(int64(7)).
		WillReturnRows(rows).
		RowsWillBeClosed()

	got, ok, err := s.Get(context.Background(), int64(7))
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, course{ID: 7, Code: "CS101", Name: "Intro", Credits: 3}, got)
	assert.Equal(t, []string{"courses.get"}, obs.ops)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestGetMissingRowIsNotAnError(t *testing.T) {
	db, mock, cleanup := newMock(t, "sqlmock")
	defer cleanup()
	s := MustNew(db, courseBinding)

	mock.ExpectQuery("SELECT (.+) FROM courses WHERE id = \\?").
		WithArgs(int64(99)).
		WillReturnRows(sqlmock.NewRows([]string{"id", "code", "name", "credits"}))

	got, ok, err := s.Get(context.Background(), int64(99))
	require.NoError(t, err)
	assert.False(t, ok)
	assert.Equal(t, course{}, got)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestAllEmptyTableReturnsEmptySlice(t *testing.T) {
	db, mock, cleanup := newMock(t, "sqlmock")
	defer cleanup()
	s := MustNew(db, courseBinding)

	mock.ExpectQuery(regexp.QuoteMeta("SELECT id, code, name, credits FROM courses")).
		WillReturnRows(sqlmock.NewRows([]string{"id", "code", "name", "credits"}))

	items, err := s.All(context.Background())
	require.NoError(t, err)
	assert.NotNil(t, items)
	assert.Empty(t, items)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestInsertReturnsGeneratedKey(t *testing.T) {
	db, mock, cleanup := newMock(t, "sqlmock")
	defer cleanup()
	s := MustNew(db, courseBinding)

	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO courses (code, name, credits) VALUES (?, ?, ?)")).
		WithArgs("CS101", "Intro", int64(3)).
		WillReturnResult(sqlmock.NewResult(42, 1))

	id, err := s.Insert(context.Background(), course{Code: "CS101", Name: "Intro", Credits: 3})
	require.NoError(t, err)
	assert.Equal(t, int64(42), id)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestInsertWithoutGeneratedKeyFails(t *testing.T) {
	db, mock, cleanup := newMock(t, "sqlmock")
	defer cleanup()
	s := MustNew(db, courseBinding)

	mock.ExpectExec("INSERT INTO courses").WillReturnResult(sqlmock.NewResult(0, 1))

	id, err := s.Insert(context.Background(), course{Code: "CS101", Name: "Intro", Credits: 3})
	require.Error(t, err)
	assert.Zero(t, id)
	assert.True(t, errors.Is(err, appErrors.ErrInsertFailed))
	assert.Equal(t, appErrors.CodeInsertFailed, appErrors.CodeOf(err))
}

func TestInsertUsesReturningOnPostgres(t *testing.T) {
	db, mock, cleanup := newMock(t, "postgres")
	defer cleanup()
	s := MustNew(db, courseBinding)

	mock.ExpectQuery(regexp.QuoteMeta("INSERT INTO courses (code, name, credits) VALUES ($1, $2, $3) RETURNING id")).
		WithArgs("MA201", "Calculus", int64(4)).
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(9))

	id, err := s.Insert(context.Background(), course{Code: "MA201", Name: "Calculus", Credits: 4})
	require.NoError(t, err)
	assert.Equal(t, int64(9), id)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestInsertReturningNoRowFails(t *testing.T) {
	db, mock, cleanup := newMock(t, "postgres")
	defer cleanup()
	s := MustNew(db, courseBinding)

	mock.ExpectQuery("INSERT INTO courses").WillReturnRows(sqlmock.NewRows([]string{"id"}))

	_, err := s.Insert(context.Background(), course{Code: "MA201"})
	assert.True(t, errors.Is(err, appErrors.ErrInsertFailed))
}

func TestUpdateZeroRowsIsNotAnError(t *testing.T) {
	db, mock, cleanup := newMock(t, "sqlmock")
	defer cleanup()
	s := MustNew(db, courseBinding)

	mock.ExpectExec(regexp.QuoteMeta("UPDATE courses SET code = ?, name = ?, credits = ? WHERE id = ?")).
		WithArgs("CS101", "Intro II", int64(4), int64(5)).
		WillReturnResult(sqlmock.NewResult(0, 0))

	n, err := s.Update(context.Background(), course{ID: 5, Code: "CS101", Name: "Intro II", Credits: 4})
	require.NoError(t, err)
	assert.Zero(t, n)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCompositeKeyStatements(t *testing.T) {
	db, mock, cleanup := newMock(t, "sqlmock")
	defer cleanup()
	s := MustNew(db, enrollmentBinding)
	ctx := context.Background()

	grade := "A"
	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO enrollments (offering_id, student_id, grade) VALUES (?, ?, ?)")).
		WithArgs(int64(3), int64(11), "A").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(regexp.QuoteMeta("UPDATE enrollments SET grade = ? WHERE offering_id = ? AND student_id = ?")).
		WithArgs("A", int64(3), int64(11)).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectQuery(regexp.QuoteMeta("SELECT offering_id, student_id, grade FROM enrollments WHERE offering_id = ? AND student_id = ? LIMIT 1")).
		WithArgs(int64(3), int64(11)).
		WillReturnRows(sqlmock.NewRows([]string{"offering_id", "student_id", "grade"}).AddRow(3, 11, "A"))
	mock.ExpectExec(regexp.QuoteMeta("DELETE FROM enrollments WHERE offering_id = ? AND student_id = ?")).
		WithArgs(int64(3), int64(11)).
		WillReturnResult(sqlmock.NewResult(0, 1))

	e := enrollment{OfferingID: 3, StudentID: 11, Grade: &grade}
	n, err := s.Create(ctx, e)
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)

	_, err = s.Update(ctx, e)
	require.NoError(t, err)

	got, ok, err := s.GetByKey(ctx, int64(3), int64(11))
	require.NoError(t, err)
	require.True(t, ok)
	require.NotNil(t, got.Grade)
	assert.Equal(t, "A", *got.Grade)

	n, err = s.Delete(ctx, int64(3), int64(11))
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)
	assert.NoError(t, mock.ExpectationsWereMet())

	_, _, err = s.Get(ctx, int64(3))
	assert.Error(t, err)
	_, err = s.Insert(ctx, e)
	assert.Error(t, err)
}

func TestDriverErrorsBecomeStorageErrors(t *testing.T) {
	db, mock, cleanup := newMock(t, "sqlmock")
	defer cleanup()
	obs := &recordingObserver{}
	s := MustNew(db, courseBinding, WithObserver(obs))

	driverErr := errors.New("foreign key constraint fails")
	mock.ExpectExec(regexp.QuoteMeta("DELETE FROM courses WHERE id = ?")).
		WithArgs(int64(1)).
		WillReturnError(driverErr)

	_, err := s.Delete(context.Background(), int64(1))
	require.Error(t, err)
	assert.True(t, errors.Is(err, appErrors.ErrStorage))
	assert.True(t, errors.Is(err, driverErr))
	require.Len(t, obs.errs, 1)
	assert.Equal(t, err, obs.errs[0])
}

func TestRowsClosedWhenMappingFails(t *testing.T) {
	db, mock, cleanup := newMock(t, "sqlmock")
	defer cleanup()
	binding := courseBinding
	binding.Map = func(*sqlx.Rows) (course, error) {
		return course{}, errors.New("bad row")
	}
	s := MustNew(db, binding)

	mock.ExpectQuery("SELECT (.+) FROM courses").
		WillReturnRows(sqlmock.NewRows([]string{"id", "code", "name", "credits"}).AddRow(1, "X", "Y", 1).AddRow(2, "Z", "W", 2)).
		RowsWillBeClosed()

	items, err := s.All(context.Background())
	assert.Nil(t, items)
	assert.True(t, errors.Is(err, appErrors.ErrStorage))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestFindByRejectsUnboundColumn(t *testing.T) {
	db, _, cleanup := newMock(t, "sqlmock")
	defer cleanup()
	s := MustNew(db, courseBinding)

	_, err := s.FindBy(context.Background(), "code; DROP TABLE courses", "x")
	assert.Error(t, err)
	_, err = s.DeleteBy(context.Background(), "missing", 1)
	assert.Error(t, err)
}

func TestSelectBuildsFilteredQuery(t *testing.T) {
	db, mock, cleanup := newMock(t, "postgres")
	defer cleanup()
	s := MustNew(db, courseBinding)

	mock.ExpectQuery(regexp.QuoteMeta("SELECT id, code, name, credits FROM courses WHERE credits >= $1 ORDER BY code")).
		WithArgs(int64(3)).
		WillReturnRows(sqlmock.NewRows([]string{"id", "code", "name", "credits"}).AddRow(1, "CS101", "Intro", 3))

	items, err := s.Select(context.Background(), "credits >= ?", "code", int64(3))
	require.NoError(t, err)
	assert.Len(t, items, 1)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestNewValidatesBinding(t *testing.T) {
	db, _, cleanup := newMock(t, "sqlmock")
	defer cleanup()

	cases := map[string]Binding[course]{
		"unknown column": {Table: "courses", Columns: []string{"id", "title"}},
		"bad table":      {Table: "courses;", Columns: []string{"id"}},
		"duplicate":      {Table: "courses", Columns: []string{"id", "id"}},
		"key not bound":  {Table: "courses", Columns: []string{"code"}},
		"no columns":     {Table: "courses"},
		"auto composite": {Table: "courses", Columns: []string{"id", "code"}, Key: []string{"id", "code"}, AutoKey: true},
	}
	for name, b := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := New(db, b)
			assert.Error(t, err)
		})
	}

	custom := Binding[course]{
		Table:   "courses",
		Columns: []string{"id", "title"},
		Map: func(rows *sqlx.Rows) (course, error) {
			var c course
			err := rows.Scan(&c.ID, &c.Name)
			return c, err
		},
	}
	_, err := New(db, custom)
	assert.NoError(t, err)
}

func TestWithTxRunsInsideTransaction(t *testing.T) {
	db, mock, cleanup := newMock(t, "sqlmock")
	defer cleanup()
	s := MustNew(db, courseBinding)

	mock.ExpectBegin()
	mock.ExpectExec("INSERT INTO courses").WillReturnResult(sqlmock.NewResult(3, 1))
	mock.ExpectCommit()

	var id int64
	err := RunInTx(context.Background(), db, func(tx *sqlx.Tx) error {
		var err error
		id, err = s.WithTx(tx).Insert(context.Background(), course{Code: "A"})
		return err
	})
	require.NoError(t, err)
	assert.Equal(t, int64(3), id)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRunInTxRollsBackAndReturnsError(t *testing.T) {
	db, mock, cleanup := newMock(t, "sqlmock")
	defer cleanup()

	mock.ExpectBegin()
	mock.ExpectRollback()

	sentinel := errors.New("child failed")
	err := RunInTx(context.Background(), db, func(*sqlx.Tx) error { return sentinel })
	assert.Same(t, sentinel, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}
