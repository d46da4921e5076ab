// Package schema reads column and primary-key metadata from the
// database catalog and validates OWNER.TABLE specifications.
package schema

import (
	"context"
	"database/sql"
	"fmt"
)

// Column is the metadata for a single table column, immutable once
// read from the catalog.
type Column struct {
	Name            string
	Type            string
	Length          int64
	Precision       int64
	Scale           int64
	Nullable        bool
	PrimaryKey      bool
	OrdinalPosition int
}

// LookupError indicates the table does not exist or is inaccessible.
// An empty catalog result is reported as this error, not as a table
// with zero columns.
type LookupError struct {
	Table TableID
	Err   error
}

func (e *LookupError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("table %s not found or no access: %v", e.Table, e.Err)
	}
	return fmt.Sprintf("table %s not found or no access", e.Table)
}

func (e *LookupError) Unwrap() error {
	return e.Err
}

// Catalog builds the dialect-specific column metadata query for a
// table. The query must project, in order: column name, declared
// type, length, precision, scale, nullable ('Y'/'N'), a primary-key
// flag (1/0) computed by set membership against the table's
// primary-key constraint columns, and the ordinal position. Rows must
// be ordered by ordinal position.
type Catalog interface {
	ColumnsQuery(t TableID) (query string, args []any)
}

// Columns reads ordered column metadata for a table. Column names are
// returned in catalog-native case; the owner/table input has already
// been uppercased by ParseTableSpec.
func Columns(ctx context.Context, db *sql.DB, catalog Catalog, t TableID) ([]Column, error) {
	query, args := catalog.ColumnsQuery(t)
	rows, err := db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, &LookupError{Table: t, Err: err}
	}
	defer rows.Close()

	var columns []Column
	for rows.Next() {
		var (
			col                      Column
			length, precision, scale sql.NullInt64
			nullable                 string
			isPK                     int
		)
		if err := rows.Scan(&col.Name, &col.Type, &length, &precision, &scale,
			&nullable, &isPK, &col.OrdinalPosition); err != nil {
			return nil, &LookupError{Table: t, Err: err}
		}
		col.Length = length.Int64
		col.Precision = precision.Int64
		col.Scale = scale.Int64
		col.Nullable = nullable == "Y"
		col.PrimaryKey = isPK == 1
		columns = append(columns, col)
	}
	if err := rows.Err(); err != nil {
		return nil, &LookupError{Table: t, Err: err}
	}
	if len(columns) == 0 {
		return nil, &LookupError{Table: t}
	}
	return columns, nil
}

// PrimaryKeyColumns returns the subset of columns flagged as
// participating in the primary-key constraint, in ordinal order.
func PrimaryKeyColumns(columns []Column) []Column {
	var pk []Column
	for _, c := range columns {
		if c.PrimaryKey {
			pk = append(pk, c)
		}
	}
	return pk
}

// KeyColumns returns the declared primary-key columns, or the first
// fallback columns in ordinal order when the table has none. The
// fallback keeps filter prompting bounded on wide unkeyed tables.
func KeyColumns(columns []Column, fallback int) []Column {
	if pk := PrimaryKeyColumns(columns); len(pk) > 0 {
		return pk
	}
	if fallback > len(columns) {
		fallback = len(columns)
	}
	return columns[:fallback]
}

// NonKeyColumns returns the columns that are not part of the key set.
// The key set is passed explicitly because unkeyed tables substitute a
// fallback key.
func NonKeyColumns(columns, keyColumns []Column) []Column {
	keys := make(map[string]struct{}, len(keyColumns))
	for _, c := range keyColumns {
		keys[c.Name] = struct{}{}
	}
	var nonKey []Column
	for _, c := range columns {
		if _, ok := keys[c.Name]; !ok {
			nonKey = append(nonKey, c)
		}
	}
	return nonKey
}

// Names returns the column names in order.
func Names(columns []Column) []string {
	names := make([]string, 0, len(columns))
	for _, c := range columns {
		names = append(names, c.Name)
	}
	return names
}
