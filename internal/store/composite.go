package store

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"
)

// Composite persists an entity split across a base table and a child table
// whose foreign key is the base row's generated id. Writes touch the base row
// first and deletes touch the child row first.
type Composite[B, C any] struct {
	Base  *Store[B]
	Child *Store[C]
	// ForeignKey is the child column holding the base id.
	ForeignKey string

	BaseID        func(B) int64
	SetBaseID     func(*B, int64)
	SetForeignKey func(*C, int64)

	// Atomic runs each operation in one transaction. When false a failed
	// child insert leaves the base row in place.
	Atomic bool
}

// NewComposite checks that the child store is keyed by foreignKey.
func NewComposite[B, C any](base *Store[B], child *Store[C], foreignKey string, baseID func(B) int64, setBaseID func(*B, int64), setForeignKey func(*C, int64), atomic bool) (*Composite[B, C], error) {
	if base == nil || child == nil {
		return nil, fmt.Errorf("composite: base and child stores are required")
	}
	if !base.binding.AutoKey {
		return nil, fmt.Errorf("composite %s: base table must generate its key", base.Table())
	}
	if !child.binding.hasColumn(foreignKey) {
		return nil, fmt.Errorf("composite %s: foreign key %q not bound", child.Table(), foreignKey)
	}
	if baseID == nil || setForeignKey == nil {
		return nil, fmt.Errorf("composite %s: id accessors are required", child.Table())
	}
	return &Composite[B, C]{
		Base:          base,
		Child:         child,
		ForeignKey:    foreignKey,
		BaseID:        baseID,
		SetBaseID:     setBaseID,
		SetForeignKey: setForeignKey,
		Atomic:        atomic,
	}, nil
}

// Add inserts the base row, stamps its id onto the child and inserts the
// child. It returns the base id.
func (c *Composite[B, C]) Add(ctx context.Context, base B, child C) (int64, error) {
	var id int64
	err := c.run(ctx, func(bs *Store[B], cs *Store[C]) error {
		var err error
		id, err = bs.Insert(ctx, base)
		if err != nil {
			return err
		}
		if c.SetBaseID != nil {
			c.SetBaseID(&base, id)
		}
		c.SetForeignKey(&child, id)
		_, err = cs.Create(ctx, child)
		return err
	})
	if err != nil {
		if c.Atomic {
			return 0, err
		}
		return id, err
	}
	return id, nil
}

// Update rewrites the base row and then the child row keyed by the base id.
func (c *Composite[B, C]) Update(ctx context.Context, base B, child C) error {
	id := c.BaseID(base)
	c.SetForeignKey(&child, id)
	return c.run(ctx, func(bs *Store[B], cs *Store[C]) error {
		if _, err := bs.Update(ctx, base); err != nil {
			return err
		}
		_, err := cs.Update(ctx, child)
		return err
	})
}

// Delete removes the child row and then the base row.
func (c *Composite[B, C]) Delete(ctx context.Context, id int64) error {
	return c.run(ctx, func(bs *Store[B], cs *Store[C]) error {
		if _, err := cs.DeleteBy(ctx, c.ForeignKey, id); err != nil {
			return err
		}
		_, err := bs.Delete(ctx, id)
		return err
	})
}

// Get loads both halves. found is true only when both rows exist.
func (c *Composite[B, C]) Get(ctx context.Context, id int64) (B, C, bool, error) {
	var (
		zeroB B
		zeroC C
	)
	base, ok, err := c.Base.Get(ctx, id)
	if err != nil || !ok {
		return zeroB, zeroC, false, err
	}
	child, ok, err := c.GetChild(ctx, id)
	if err != nil || !ok {
		return zeroB, zeroC, false, err
	}
	return base, child, true, nil
}

// GetChild looks the child row up by foreign key.
func (c *Composite[B, C]) GetChild(ctx context.Context, id int64) (C, bool, error) {
	return c.Child.FindOneBy(ctx, c.ForeignKey, id)
}

// All lists every child row that has a base row, in child order, with the
// matching base rows at the same indexes.
func (c *Composite[B, C]) All(ctx context.Context) ([]B, []C, error) {
	children, err := c.Child.All(ctx)
	if err != nil {
		return nil, nil, err
	}
	bases := make([]B, 0, len(children))
	paired := make([]C, 0, len(children))
	for _, child := range children {
		id, err := c.foreignKeyOf(child)
		if err != nil {
			return nil, nil, err
		}
		base, ok, err := c.Base.Get(ctx, id)
		if err != nil {
			return nil, nil, err
		}
		if !ok {
			continue
		}
		bases = append(bases, base)
		paired = append(paired, child)
	}
	return bases, paired, nil
}

func (c *Composite[B, C]) foreignKeyOf(child C) (int64, error) {
	stmt, args, err := sqlx.Named(":"+c.ForeignKey, child)
	if err != nil || stmt == "" || len(args) != 1 {
		return 0, fmt.Errorf("composite %s: read foreign key: %w", c.Child.Table(), err)
	}
	switch v := args[0].(type) {
	case int64:
		return v, nil
	case int:
		return int64(v), nil
	case int32:
		return int64(v), nil
	default:
		return 0, fmt.Errorf("composite %s: foreign key %q is %T, want an integer", c.Child.Table(), c.ForeignKey, args[0])
	}
}

func (c *Composite[B, C]) run(ctx context.Context, fn func(*Store[B], *Store[C]) error) error {
	return runMaybeTx(ctx, c.Base.DB(), c.Atomic, func(tx *sqlx.Tx) error {
		if tx == nil {
			return fn(c.Base, c.Child)
		}
		return fn(c.Base.WithTx(tx), c.Child.WithTx(tx))
	})
}
