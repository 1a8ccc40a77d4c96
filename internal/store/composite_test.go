package store

import (
	"context"
	"errors"
	"regexp"
	"testing"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	_ "modernc.org/sqlite"

	appErrors "github.com/noah-isme/sims-core/pkg/errors"
)

type person struct {
	ID    int64  `db:"id"`
	Name  string `db:"name"`
	Email string `db:"email"`
}

type badge struct {
	PersonID int64  `db:"person_id"`
	Level    int64  `db:"level"`
	Office   string `db:"office"`
}

var (
	personBinding = Binding[person]{
		Table:   "people",
		Columns: []string{"id", "name", "email"},
		AutoKey: true,
	}
	badgeBinding = Binding[badge]{
		Table:   "badges",
		Columns: []string{"person_id", "level", "office"},
		Key:     []string{"person_id"},
	}
)

const testSchema = `
CREATE TABLE people (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	name TEXT NOT NULL,
	email TEXT NOT NULL UNIQUE
);
CREATE TABLE badges (
	person_id INTEGER PRIMARY KEY REFERENCES people(id),
	level INTEGER NOT NULL CHECK (level > 0),
	office TEXT NOT NULL
);`

func newSQLite(t *testing.T) *sqlx.DB {
	t.Helper()
	db, err := sqlx.Open("sqlite", ":memory:")
	require.NoError(t, err)
	db.SetMaxOpenConns(1)
	t.Cleanup(func() { db.Close() })
	_, err = db.Exec("PRAGMA foreign_keys = ON")
	require.NoError(t, err)
	_, err = db.Exec(testSchema)
	require.NoError(t, err)
	return db
}

func newPeople(t *testing.T, db *sqlx.DB, atomic bool) *Composite[person, badge] {
	t.Helper()
	c, err := NewComposite(
		MustNew(db, personBinding),
		MustNew(db, badgeBinding),
		"person_id",
		func(p person) int64 { return p.ID },
		func(p *person, id int64) { p.ID = id },
		func(b *badge, id int64) { b.PersonID = id },
		atomic,
	)
	require.NoError(t, err)
	return c
}

func countRows(t *testing.T, db *sqlx.DB, table string) int {
	t.Helper()
	var n int
	require.NoError(t, db.Get(&n, "SELECT COUNT(*) FROM "+table))
	return n
}

func TestStoreRoundTripOnSQLite(t *testing.T) {
	db := newSQLite(t)
	s := MustNew(db, personBinding)
	ctx := context.Background()

	id, err := s.Insert(ctx, person{Name: "Ada", Email: "ada@example.com"})
	require.NoError(t, err)
	assert.Positive(t, id)

	got, ok, err := s.Get(ctx, id)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, person{ID: id, Name: "Ada", Email: "ada@example.com"}, got)

	got.Name = "Ada L."
	n, err := s.Update(ctx, got)
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)

	all, err := s.All(ctx)
	require.NoError(t, err)
	require.Len(t, all, 1)
	assert.Equal(t, "Ada L.", all[0].Name)

	n, err = s.Delete(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)

	_, ok, err = s.Get(ctx, id)
	require.NoError(t, err)
	assert.False(t, ok)

	n, err = s.Delete(ctx, id)
	require.NoError(t, err)
	assert.Zero(t, n)
}

func TestStoreDuplicateKeyIsStorageError(t *testing.T) {
	db := newSQLite(t)
	s := MustNew(db, personBinding)
	ctx := context.Background()

	_, err := s.Insert(ctx, person{Name: "A", Email: "same@example.com"})
	require.NoError(t, err)
	_, err = s.Insert(ctx, person{Name: "B", Email: "same@example.com"})
	require.Error(t, err)
	assert.Equal(t, appErrors.CodeStorage, appErrors.CodeOf(err))
}

func TestCompositeAddLinksChildToBase(t *testing.T) {
	db := newSQLite(t)
	c := newPeople(t, db, true)
	ctx := context.Background()

	id, err := c.Add(ctx, person{Name: "Grace", Email: "grace@example.com"}, badge{Level: 2, Office: "B-12"})
	require.NoError(t, err)
	assert.Positive(t, id)

	child, ok, err := c.GetChild(ctx, id)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, badge{PersonID: id, Level: 2, Office: "B-12"}, child)

	base, child, ok, err := c.Get(ctx, id)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, "Grace", base.Name)
	assert.Equal(t, id, child.PersonID)

	base.Email = "grace@navy.example.com"
	child.Level = 3
	require.NoError(t, c.Update(ctx, base, child))

	base, child, ok, err = c.Get(ctx, id)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, "grace@navy.example.com", base.Email)
	assert.Equal(t, int64(3), child.Level)

	bases, children, err := c.All(ctx)
	require.NoError(t, err)
	require.Len(t, bases, 1)
	assert.Equal(t, id, bases[0].ID)
	assert.Equal(t, id, children[0].PersonID)

	require.NoError(t, c.Delete(ctx, id))
	_, _, ok, err = c.Get(ctx, id)
	require.NoError(t, err)
	assert.False(t, ok)
	assert.Zero(t, countRows(t, db, "people"))
	assert.Zero(t, countRows(t, db, "badges"))
}

func TestCompositeAllPairsRowsAndSkipsBaseOnlyRows(t *testing.T) {
	db := newSQLite(t)
	c := newPeople(t, db, true)
	ctx := context.Background()

	first, err := c.Add(ctx, person{Name: "Ada", Email: "ada@example.com"}, badge{Level: 1, Office: "A-1"})
	require.NoError(t, err)
	loner, err := c.Base.Insert(ctx, person{Name: "Alan", Email: "alan@example.com"})
	require.NoError(t, err)
	second, err := c.Add(ctx, person{Name: "Grace", Email: "grace@example.com"}, badge{Level: 4, Office: "G-4"})
	require.NoError(t, err)

	bases, children, err := c.All(ctx)
	require.NoError(t, err)
	require.Len(t, bases, 2)
	require.Len(t, children, 2)
	for i := range bases {
		assert.Equal(t, bases[i].ID, children[i].PersonID)
		assert.NotEqual(t, loner, bases[i].ID)
	}
	ids := []int64{bases[0].ID, bases[1].ID}
	assert.ElementsMatch(t, []int64{first, second}, ids)

	empty := newPeople(t, newSQLite(t), true)
	bases, children, err = empty.All(ctx)
	require.NoError(t, err)
	assert.Empty(t, bases)
	assert.Empty(t, children)
}

func TestCompositeAtomicAddRollsBackBase(t *testing.T) {
	db := newSQLite(t)
	c := newPeople(t, db, true)

	id, err := c.Add(context.Background(), person{Name: "Linus", Email: "linus@example.com"}, badge{Level: 0, Office: "X"})
	require.Error(t, err)
	assert.Zero(t, id)
	assert.Equal(t, appErrors.CodeStorage, appErrors.CodeOf(err))
	assert.Zero(t, countRows(t, db, "people"))
}

func TestCompositeNonAtomicAddKeepsBase(t *testing.T) {
	db := newSQLite(t)
	c := newPeople(t, db, false)

	id, err := c.Add(context.Background(), person{Name: "Linus", Email: "linus@example.com"}, badge{Level: 0, Office: "X"})
	require.Error(t, err)
	assert.Positive(t, id)
	assert.Equal(t, 1, countRows(t, db, "people"))
	assert.Zero(t, countRows(t, db, "badges"))
}

func TestCompositeDeleteRemovesChildFirst(t *testing.T) {
	db, mock, cleanup := newMock(t, "sqlmock")
	defer cleanup()
	c, err := NewComposite(
		MustNew(db, personBinding),
		MustNew(db, badgeBinding),
		"person_id",
		func(p person) int64 { return p.ID },
		nil,
		func(b *badge, id int64) { b.PersonID = id },
		true,
	)
	require.NoError(t, err)

	mock.ExpectBegin()
	mock.ExpectExec(regexp.QuoteMeta("DELETE FROM badges WHERE person_id = ?")).WithArgs(int64(4)).WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(regexp.QuoteMeta("DELETE FROM people WHERE id = ?")).WithArgs(int64(4)).WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	require.NoError(t, c.Delete(context.Background(), 4))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCompositeChildErrorPropagatesUnchanged(t *testing.T) {
	db, mock, cleanup := newMock(t, "sqlmock")
	defer cleanup()
	c, err := NewComposite(
		MustNew(db, personBinding),
		MustNew(db, badgeBinding),
		"person_id",
		func(p person) int64 { return p.ID },
		nil,
		func(b *badge, id int64) { b.PersonID = id },
		true,
	)
	require.NoError(t, err)

	driverErr := errors.New("check constraint failed")
	mock.ExpectBegin()
	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO people (name, email) VALUES (?, ?)")).WillReturnResult(sqlmock.NewResult(8, 1))
	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO badges (person_id, level, office) VALUES (?, ?, ?)")).
		WithArgs(int64(8), int64(0), "X").
		WillReturnError(driverErr)
	mock.ExpectRollback()

	_, err = c.Add(context.Background(), person{Name: "N", Email: "n@example.com"}, badge{Office: "X"})
	require.Error(t, err)
	assert.True(t, errors.Is(err, driverErr))
	assert.Equal(t, "create badges: "+driverErr.Error(), err.Error())
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestNewCompositeValidatesForeignKey(t *testing.T) {
	db, _, cleanup := newMock(t, "sqlmock")
	defer cleanup()

	_, err := NewComposite(MustNew(db, personBinding), MustNew(db, badgeBinding), "owner_id",
		func(p person) int64 { return p.ID }, nil, func(*badge, int64) {}, true)
	assert.Error(t, err)

	_, err = NewComposite(MustNew(db, badgeBinding), MustNew(db, badgeBinding), "person_id",
		func(b badge) int64 { return b.PersonID }, nil, func(*badge, int64) {}, true)
	assert.Error(t, err)
}
