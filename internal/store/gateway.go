// Package store executes statements produced by sqlbuilder against the
// relational store and decodes results into Row mappings. All access goes
// through a Gateway, which is either bound to the shared session or, inside
// Atomic, to a single transaction shared across every call made through it.
package store

import (
	"fmt"

	"gorm.io/gorm"

	"lavka/internal/sqlbuilder"
)

// Gateway executes generic table operations on one gorm session.
type Gateway struct {
	db *gorm.DB
}

// NewGateway creates a Gateway on top of an opened gorm session.
func NewGateway(db *gorm.DB) *Gateway {
	return &Gateway{db: db}
}

// FetchRows returns every row of table matching the AND of filters, in store
// iteration order. An empty or nil filter mapping scans the whole table.
// An empty result is an empty slice, not an error.
func (g *Gateway) FetchRows(table string, filters map[string]any) ([]Row, error) {
	query, args := sqlbuilder.Select(table, filters)
	return g.query(query, args)
}

// FetchJoined returns the join of the ordered table list, one predicate group
// per joined table, optionally filtered after all joins.
func (g *Gateway) FetchJoined(tables []string, joins [][]string, filters map[string]any) ([]Row, error) {
	query, args, err := sqlbuilder.SelectJoined(tables, joins, filters)
	if err != nil {
		return nil, err
	}
	return g.query(query, args)
}

// FetchOne returns the single row matching filters, or ErrNotFound when the
// lookup matches nothing. Extra matches beyond the first are ignored.
func (g *Gateway) FetchOne(table string, filters map[string]any) (Row, error) {
	rows, err := g.FetchRows(table, filters)
	if err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return nil, fmt.Errorf("%w in %s", ErrNotFound, table)
	}
	return rows[0], nil
}

// InsertRow inserts one row built from the column->value mapping.
func (g *Gateway) InsertRow(table string, values map[string]any) error {
	query, args, err := sqlbuilder.Insert(table, values)
	if err != nil {
		return err
	}
	if err := g.db.Exec(query, args...).Error; err != nil {
		return fmt.Errorf("failed to insert into %s: %w", table, err)
	}
	return nil
}

// UpdateRows sets values on every row of table matched by the match mapping.
func (g *Gateway) UpdateRows(table string, values, match map[string]any) error {
	query, args, err := sqlbuilder.Update(table, values, match)
	if err != nil {
		return err
	}
	if err := g.db.Exec(query, args...).Error; err != nil {
		return fmt.Errorf("failed to update %s: %w", table, err)
	}
	return nil
}

// DeleteRows removes every row of table matching the AND of filters. An empty
// mapping empties the table; callers guard against that when unintended.
func (g *Gateway) DeleteRows(table string, filters map[string]any) error {
	query, args := sqlbuilder.Delete(table, filters)
	if err := g.db.Exec(query, args...).Error; err != nil {
		return fmt.Errorf("failed to delete from %s: %w", table, err)
	}
	return nil
}

// MaxInt returns the maximum value of an integer column, or 0 for an empty
// table. Inside Atomic this reads under the surrounding transaction, which is
// what makes sequential identifier allocation safe.
func (g *Gateway) MaxInt(table, column string) (int64, error) {
	rows, err := g.query(sqlbuilder.SelectMax(table, column), nil)
	if err != nil {
		return 0, err
	}
	if len(rows) == 0 {
		return 0, nil
	}
	return rows[0].Int("max_value"), nil
}

// Atomic runs fn against a Gateway bound to one transaction: commit when fn
// returns nil, roll back everything when it returns an error or panics. The
// connection is released on every exit path.
func (g *Gateway) Atomic(fn func(tx *Gateway) error) error {
	return g.db.Transaction(func(tx *gorm.DB) error {
		return fn(&Gateway{db: tx})
	})
}

func (g *Gateway) query(query string, args []any) ([]Row, error) {
	rows, err := g.db.Raw(query, args...).Rows()
	if err != nil {
		return nil, fmt.Errorf("failed to execute query: %w", err)
	}
	defer rows.Close()
	return decodeRows(rows)
}
