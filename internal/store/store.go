// Package store implements a generic entity store over sqlx. One Store is
// instantiated per entity kind from a Binding; every statement it issues is
// parameterized and every result handle is closed before the call returns.
package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/jmoiron/sqlx"
	"go.uber.org/zap"

	appErrors "github.com/noah-isme/sims-core/pkg/errors"
)

// Observer receives per-statement timings.
type Observer interface {
	ObserveStatement(table, op string, duration time.Duration, err error)
}

// Option customises a Store.
type Option func(*options)

type options struct {
	observer Observer
	logger   *zap.Logger
}

// WithObserver reports statement timings to o.
func WithObserver(o Observer) Option {
	return func(opts *options) { opts.observer = o }
}

// WithLogger attaches a logger for statement failures.
func WithLogger(l *zap.Logger) Option {
	return func(opts *options) { opts.logger = l }
}

// Store is the data access object for entity kind T.
type Store[T any] struct {
	binding Binding[T]
	db      *sqlx.DB
	ext     sqlx.ExtContext
	opts    options

	selectCols string
	insertCols []string
	updateCols []string
}

// New validates the binding and builds a store bound to db.
func New[T any](db *sqlx.DB, binding Binding[T], opts ...Option) (*Store[T], error) {
	structScanned := binding.Map == nil
	binding = binding.withDefaults()
	if err := binding.Validate(db.Mapper, structScanned); err != nil {
		return nil, err
	}

	o := options{logger: zap.NewNop()}
	for _, opt := range opts {
		opt(&o)
	}
	if o.logger == nil {
		o.logger = zap.NewNop()
	}

	s := &Store[T]{
		binding:    binding,
		db:         db,
		ext:        db,
		opts:       o,
		selectCols: strings.Join(binding.Columns, ", "),
	}
	for _, col := range binding.Columns {
		if !(binding.AutoKey && binding.isKey(col)) {
			s.insertCols = append(s.insertCols, col)
		}
		if !binding.isKey(col) {
			s.updateCols = append(s.updateCols, col)
		}
	}
	return s, nil
}

// MustNew is New for package-level bindings known to be valid.
func MustNew[T any](db *sqlx.DB, binding Binding[T], opts ...Option) *Store[T] {
	s, err := New(db, binding, opts...)
	if err != nil {
		panic(err)
	}
	return s
}

// WithTx returns a copy of the store whose statements run inside tx.
func (s *Store[T]) WithTx(tx *sqlx.Tx) *Store[T] {
	clone := *s
	clone.ext = tx
	return &clone
}

// DB returns the handle the store was built on.
func (s *Store[T]) DB() *sqlx.DB {
	return s.db
}

// Table returns the bound table name.
func (s *Store[T]) Table() string {
	return s.binding.Table
}

// Get returns the row whose single key column equals id. A missing row is
// reported through the boolean, not as an error.
func (s *Store[T]) Get(ctx context.Context, id any) (T, bool, error) {
	if len(s.binding.Key) != 1 {
		var zero T
		return zero, false, fmt.Errorf("get %s: table has a composite key, use GetByKey", s.binding.Table)
	}
	return s.GetByKey(ctx, id)
}

// GetByKey looks a row up by its full key, values in Key order.
func (s *Store[T]) GetByKey(ctx context.Context, keyvals ...any) (T, bool, error) {
	var zero T
	if len(keyvals) != len(s.binding.Key) {
		return zero, false, fmt.Errorf("get %s: expected %d key values, got %d", s.binding.Table, len(s.binding.Key), len(keyvals))
	}
	query := fmt.Sprintf("SELECT %s FROM %s WHERE %s", s.selectCols, s.binding.Table, s.keyPredicate())
	items, err := s.query(ctx, "get", query+" LIMIT 1", keyvals...)
	if err != nil || len(items) == 0 {
		return zero, false, err
	}
	return items[0], true, nil
}

// All returns every row of the table. The result is never nil.
func (s *Store[T]) All(ctx context.Context) ([]T, error) {
	query := fmt.Sprintf("SELECT %s FROM %s", s.selectCols, s.binding.Table)
	return s.query(ctx, "all", query)
}

// FindBy returns rows whose column equals value.
func (s *Store[T]) FindBy(ctx context.Context, column string, value any) ([]T, error) {
	if !s.binding.hasColumn(column) {
		return nil, fmt.Errorf("find %s: unknown column %q", s.binding.Table, column)
	}
	query := fmt.Sprintf("SELECT %s FROM %s WHERE %s = ?", s.selectCols, s.binding.Table, column)
	return s.query(ctx, "find", query, value)
}

// FindOneBy returns the first row whose column equals value.
func (s *Store[T]) FindOneBy(ctx context.Context, column string, value any) (T, bool, error) {
	var zero T
	if !s.binding.hasColumn(column) {
		return zero, false, fmt.Errorf("find %s: unknown column %q", s.binding.Table, column)
	}
	query := fmt.Sprintf("SELECT %s FROM %s WHERE %s = ? LIMIT 1", s.selectCols, s.binding.Table, column)
	items, err := s.query(ctx, "find", query, value)
	if err != nil || len(items) == 0 {
		return zero, false, err
	}
	return items[0], true, nil
}

// Select runs a filtered read. where and orderBy are SQL fragments owned by
// the caller's code and must reference user data only through ? placeholders.
func (s *Store[T]) Select(ctx context.Context, where, orderBy string, args ...any) ([]T, error) {
	query := fmt.Sprintf("SELECT %s FROM %s", s.selectCols, s.binding.Table)
	if where != "" {
		query += " WHERE " + where
	}
	if orderBy != "" {
		query += " ORDER BY " + orderBy
	}
	return s.query(ctx, "select", query, args...)
}

// Count returns the number of rows matching where, or all rows when where is
// empty.
func (s *Store[T]) Count(ctx context.Context, where string, args ...any) (n int64, err error) {
	start := time.Now()
	defer func() { s.observe("count", start, err) }()

	query := fmt.Sprintf("SELECT COUNT(*) FROM %s", s.binding.Table)
	if where != "" {
		query += " WHERE " + where
	}
	if scanErr := s.ext.QueryRowxContext(ctx, s.ext.Rebind(query), args...).Scan(&n); scanErr != nil {
		return 0, s.storageError("count", scanErr)
	}
	return n, nil
}

// Insert writes entity and returns the generated key. The key column is left
// to the database.
func (s *Store[T]) Insert(ctx context.Context, entity T) (int64, error) {
	if !s.binding.AutoKey {
		return 0, fmt.Errorf("insert %s: table has no generated key, use Create", s.binding.Table)
	}
	return s.ExecReturningID(ctx, s.insertSQL(), entity)
}

// Create writes entity including its key columns and returns the number of
// affected rows.
func (s *Store[T]) Create(ctx context.Context, entity T) (int64, error) {
	return s.execNamed(ctx, "create", s.insertSQL(), entity)
}

// Update rewrites the non-key columns of the row identified by entity's key.
// Zero affected rows is not an error.
func (s *Store[T]) Update(ctx context.Context, entity T) (int64, error) {
	if len(s.updateCols) == 0 {
		return 0, nil
	}
	sets := make([]string, len(s.updateCols))
	for i, col := range s.updateCols {
		sets[i] = fmt.Sprintf("%s = :%s", col, col)
	}
	where := make([]string, len(s.binding.Key))
	for i, key := range s.binding.Key {
		where[i] = fmt.Sprintf("%s = :%s", key, key)
	}
	query := fmt.Sprintf("UPDATE %s SET %s WHERE %s", s.binding.Table, strings.Join(sets, ", "), strings.Join(where, " AND "))
	return s.execNamed(ctx, "update", query, entity)
}

// Delete removes the row identified by keyvals. Zero affected rows is not an error.
func (s *Store[T]) Delete(ctx context.Context, keyvals ...any) (int64, error) {
	if len(keyvals) != len(s.binding.Key) {
		return 0, fmt.Errorf("delete %s: expected %d key values, got %d", s.binding.Table, len(s.binding.Key), len(keyvals))
	}
	query := fmt.Sprintf("DELETE FROM %s WHERE %s", s.binding.Table, s.keyPredicate())
	return s.ExecCount(ctx, query, keyvals...)
}

// DeleteBy removes every row whose column equals value.
func (s *Store[T]) DeleteBy(ctx context.Context, column string, value any) (int64, error) {
	if !s.binding.hasColumn(column) {
		return 0, fmt.Errorf("delete %s: unknown column %q", s.binding.Table, column)
	}
	query := fmt.Sprintf("DELETE FROM %s WHERE %s = ?", s.binding.Table, column)
	return s.ExecCount(ctx, query, value)
}

// ExecReturningID runs a named INSERT and returns the key generated for it.
// Drivers without LastInsertId support get a RETURNING clause instead. A
// statement that succeeds without yielding a key fails with InsertFailed.
func (s *Store[T]) ExecReturningID(ctx context.Context, query string, arg any) (id int64, err error) {
	start := time.Now()
	defer func() { s.observe("insert", start, err) }()

	if usesReturning(s.ext.DriverName()) {
		if !strings.Contains(strings.ToUpper(query), " RETURNING ") {
			query = fmt.Sprintf("%s RETURNING %s", query, s.binding.Key[0])
		}
		bound, args, bindErr := s.ext.BindNamed(query, arg)
		if bindErr != nil {
			return 0, fmt.Errorf("bind insert %s: %w", s.binding.Table, bindErr)
		}
		if scanErr := s.ext.QueryRowxContext(ctx, bound, args...).Scan(&id); scanErr != nil {
			if errors.Is(scanErr, sql.ErrNoRows) {
				return 0, s.insertFailed(nil)
			}
			return 0, s.storageError("insert", scanErr)
		}
		return id, nil
	}

	res, execErr := sqlx.NamedExecContext(ctx, s.ext, query, arg)
	if execErr != nil {
		return 0, s.storageError("insert", execErr)
	}
	id, idErr := res.LastInsertId()
	if idErr != nil || id <= 0 {
		return 0, s.insertFailed(idErr)
	}
	return id, nil
}

// ExecCount runs a positional statement and returns the affected row count.
func (s *Store[T]) ExecCount(ctx context.Context, query string, args ...any) (n int64, err error) {
	start := time.Now()
	defer func() { s.observe("exec", start, err) }()

	res, execErr := s.ext.ExecContext(ctx, s.ext.Rebind(query), args...)
	if execErr != nil {
		return 0, s.storageError("exec", execErr)
	}
	return rowsAffected(res), nil
}

func (s *Store[T]) execNamed(ctx context.Context, op, query string, arg any) (n int64, err error) {
	start := time.Now()
	defer func() { s.observe(op, start, err) }()

	res, execErr := sqlx.NamedExecContext(ctx, s.ext, query, arg)
	if execErr != nil {
		return 0, s.storageError(op, execErr)
	}
	return rowsAffected(res), nil
}

func (s *Store[T]) query(ctx context.Context, op, query string, args ...any) (items []T, err error) {
	start := time.Now()
	defer func() { s.observe(op, start, err) }()

	rows, qErr := s.ext.QueryxContext(ctx, s.ext.Rebind(query), args...)
	if qErr != nil {
		return nil, s.storageError(op, qErr)
	}
	defer rows.Close()

	items = make([]T, 0)
	for rows.Next() {
		item, mapErr := s.binding.Map(rows)
		if mapErr != nil {
			return nil, s.storageError("map", mapErr)
		}
		items = append(items, item)
	}
	if rowsErr := rows.Err(); rowsErr != nil {
		return nil, s.storageError(op, rowsErr)
	}
	return items, nil
}

func (s *Store[T]) insertSQL() string {
	named := make([]string, len(s.insertCols))
	for i, col := range s.insertCols {
		named[i] = ":" + col
	}
	return fmt.Sprintf("INSERT INTO %s (%s) VALUES (%s)", s.binding.Table, strings.Join(s.insertCols, ", "), strings.Join(named, ", "))
}

func (s *Store[T]) keyPredicate() string {
	parts := make([]string, len(s.binding.Key))
	for i, key := range s.binding.Key {
		parts[i] = key + " = ?"
	}
	return strings.Join(parts, " AND ")
}

func (s *Store[T]) storageError(op string, err error) error {
	s.opts.logger.Sugar().Debugw("statement failed", "table", s.binding.Table, "op", op, "error", err)
	return appErrors.Storage(err, fmt.Sprintf("%s %s", op, s.binding.Table))
}

func (s *Store[T]) insertFailed(cause error) error {
	s.opts.logger.Sugar().Errorw("insert yielded no generated key", "table", s.binding.Table, "error", cause)
	return appErrors.Wrap(cause, appErrors.CodeInsertFailed, fmt.Sprintf("insert %s: %s", s.binding.Table, appErrors.ErrInsertFailed.Message))
}

func (s *Store[T]) observe(op string, start time.Time, err error) {
	if s.opts.observer == nil {
		return
	}
	s.opts.observer.ObserveStatement(s.binding.Table, op, time.Since(start), err)
}

func rowsAffected(res sql.Result) int64 {
	n, err := res.RowsAffected()
	if err != nil {
		return 0
	}
	return n
}

func usesReturning(driver string) bool {
	switch driver {
	case "postgres", "pgx", "pq", "cloudsqlpostgres", "nrpostgres", "ql":
		return true
	default:
		return false
	}
}
