// Package sqlbuilder constructs parameterized SQL statements from structured
// inputs: a table name plus column->value mappings. Values are always bound
// positionally through placeholders and never interpolated into statement
// text. Mapping keys are iterated in sorted order, so the same inputs always
// produce the same statement.
package sqlbuilder

import (
	"fmt"
	"sort"
	"strings"
)

// Select builds a SELECT over one table. Filters are combined into a single
// AND-ed equality predicate; an empty or nil filter mapping yields an
// unconditioned full-table SELECT, which callers must guard against when a
// full scan is unintended.
func Select(table string, filters map[string]any) (string, []any) {
	var sb strings.Builder
	sb.WriteString("SELECT * FROM ")
	sb.WriteString(table)
	args := appendWhere(&sb, filters)
	return sb.String(), args
}

// SelectJoined builds a SELECT over an ordered list of tables. Each table
// after the first is joined with the AND of its predicate group: joins[i]
// holds the raw column-equality fragments for tables[i+1], so exactly
// len(tables)-1 non-empty groups are required. The optional trailing filter
// mapping is applied after all joins.
func SelectJoined(tables []string, joins [][]string, filters map[string]any) (string, []any, error) {
	if len(tables) == 0 {
		return "", nil, fmt.Errorf("sqlbuilder: no tables to select from")
	}
	if len(joins) != len(tables)-1 {
		return "", nil, fmt.Errorf("sqlbuilder: got %d join predicate groups for %d tables, want %d",
			len(joins), len(tables), len(tables)-1)
	}

	var sb strings.Builder
	sb.WriteString("SELECT * FROM ")
	sb.WriteString(tables[0])
	for i, table := range tables[1:] {
		if len(joins[i]) == 0 {
			return "", nil, fmt.Errorf("sqlbuilder: empty join predicate group for table %s", table)
		}
		sb.WriteString(" JOIN ")
		sb.WriteString(table)
		sb.WriteString(" ON ")
		sb.WriteString(strings.Join(joins[i], " AND "))
	}
	args := appendWhere(&sb, filters)
	return sb.String(), args, nil
}

// SelectMax builds an aggregate returning the maximum value of column, or 0
// when the table is empty. The result column is named max_value.
func SelectMax(table, column string) string {
	return fmt.Sprintf("SELECT COALESCE(MAX(%s), 0) AS max_value FROM %s", column, table)
}

// Insert builds a single-row INSERT from a column->value mapping.
func Insert(table string, values map[string]any) (string, []any, error) {
	if len(values) == 0 {
		return "", nil, fmt.Errorf("sqlbuilder: insert into %s with no values", table)
	}
	cols := sortedKeys(values)
	args := make([]any, 0, len(cols))
	for _, col := range cols {
		args = append(args, values[col])
	}

	var sb strings.Builder
	sb.WriteString("INSERT INTO ")
	sb.WriteString(table)
	sb.WriteString(" (")
	sb.WriteString(strings.Join(cols, ", "))
	sb.WriteString(") VALUES (")
	sb.WriteString(placeholders(len(cols)))
	sb.WriteString(")")
	return sb.String(), args, nil
}

// Update builds an UPDATE setting values on every row matched by the AND of
// the match mapping. Both the new values and the match values are bound as
// parameters. An empty match mapping updates the whole table; callers guard.
func Update(table string, values, match map[string]any) (string, []any, error) {
	if len(values) == 0 {
		return "", nil, fmt.Errorf("sqlbuilder: update of %s with no values", table)
	}
	cols := sortedKeys(values)
	args := make([]any, 0, len(cols)+len(match))

	var sb strings.Builder
	sb.WriteString("UPDATE ")
	sb.WriteString(table)
	sb.WriteString(" SET ")
	for i, col := range cols {
		if i > 0 {
			sb.WriteString(", ")
		}
		sb.WriteString(col)
		sb.WriteString(" = ?")
		args = append(args, values[col])
	}
	args = append(args, appendWhere(&sb, match)...)
	return sb.String(), args, nil
}

// Delete builds a DELETE with the same filter contract as Select: an empty
// mapping deletes every row in the table.
func Delete(table string, filters map[string]any) (string, []any) {
	var sb strings.Builder
	sb.WriteString("DELETE FROM ")
	sb.WriteString(table)
	args := appendWhere(&sb, filters)
	return sb.String(), args
}

// appendWhere writes an AND-ed equality predicate for filters onto sb and
// returns the bound values in clause order. No-op for an empty mapping.
func appendWhere(sb *strings.Builder, filters map[string]any) []any {
	if len(filters) == 0 {
		return nil
	}
	args := make([]any, 0, len(filters))
	sb.WriteString(" WHERE ")
	for i, col := range sortedKeys(filters) {
		if i > 0 {
			sb.WriteString(" AND ")
		}
		sb.WriteString(col)
		sb.WriteString(" = ?")
		args = append(args, filters[col])
	}
	return args
}

func sortedKeys(m map[string]any) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

func placeholders(n int) string {
	return strings.TrimSuffix(strings.Repeat("?, ", n), ", ")
}
