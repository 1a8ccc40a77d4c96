package store

import (
	"fmt"
	"reflect"
	"regexp"

	"github.com/jmoiron/sqlx"
	"github.com/jmoiron/sqlx/reflectx"
)

var identifier = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*$`)

// RowMapper converts the current row of rows into an entity. It must not
// advance the cursor or perform I/O beyond scanning.
type RowMapper[T any] func(rows *sqlx.Rows) (T, error)

// StructMapper maps a row onto T using its `db` struct tags.
func StructMapper[T any]() RowMapper[T] {
	return func(rows *sqlx.Rows) (T, error) {
		var entity T
		err := rows.StructScan(&entity)
		return entity, err
	}
}

// Binding ties an entity kind to its table. Columns and Map must stay in
// lockstep: every listed column has to be scannable by Map.
type Binding[T any] struct {
	Table   string
	Columns []string
	// Key lists the identity columns. Defaults to "id".
	Key []string
	// AutoKey marks a single key column generated by the database on insert.
	AutoKey bool
	// Map defaults to StructMapper.
	Map RowMapper[T]
}

func (b Binding[T]) withDefaults() Binding[T] {
	if len(b.Key) == 0 {
		b.Key = []string{"id"}
	}
	if b.Map == nil {
		b.Map = StructMapper[T]()
	}
	return b
}

// Validate checks identifiers, key membership and, for struct-scanned
// bindings, that each column resolves to a tagged field of T.
func (b Binding[T]) Validate(mapper *reflectx.Mapper, structScanned bool) error {
	if !identifier.MatchString(b.Table) {
		return fmt.Errorf("binding: invalid table name %q", b.Table)
	}
	if len(b.Columns) == 0 {
		return fmt.Errorf("binding %s: no columns", b.Table)
	}
	seen := make(map[string]bool, len(b.Columns))
	for _, col := range b.Columns {
		if !identifier.MatchString(col) {
			return fmt.Errorf("binding %s: invalid column name %q", b.Table, col)
		}
		if seen[col] {
			return fmt.Errorf("binding %s: duplicate column %q", b.Table, col)
		}
		seen[col] = true
	}
	for _, key := range b.Key {
		if !seen[key] {
			return fmt.Errorf("binding %s: key column %q not in column list", b.Table, key)
		}
	}
	if b.AutoKey && len(b.Key) != 1 {
		return fmt.Errorf("binding %s: generated keys need exactly one key column", b.Table)
	}

	if !structScanned {
		return nil
	}
	typ := reflect.TypeOf((*T)(nil)).Elem()
	if typ.Kind() != reflect.Struct {
		return fmt.Errorf("binding %s: struct mapping needs a struct type, got %s", b.Table, typ)
	}
	fields := mapper.TypeMap(typ)
	for _, col := range b.Columns {
		if fields.GetByPath(col) == nil {
			return fmt.Errorf("binding %s: column %q has no field on %s", b.Table, col, typ)
		}
	}
	return nil
}

func (b Binding[T]) isKey(col string) bool {
	for _, k := range b.Key {
		if k == col {
			return true
		}
	}
	return false
}

func (b Binding[T]) hasColumn(col string) bool {
	for _, c := range b.Columns {
		if c == col {
			return true
		}
	}
	return false
}
