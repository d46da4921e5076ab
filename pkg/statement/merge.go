package statement

import (
	"github.com/sqldraft/sqldraft/pkg/dialect"
	"github.com/sqldraft/sqldraft/pkg/schema"
)

// MergeBuilder assembles one standalone upsert statement per fetched
// row. Match keys are the declared primary-key columns; a table with
// no declared key uses every column as a match key and emits
// insert-only statements, since nothing is left to update.
type MergeBuilder struct {
	dialect    dialect.Dialect
	table      schema.TableID
	columns    []schema.Column
	keyColumns []schema.Column
	nonKey     []schema.Column
}

// NewMergeBuilder prepares the column partitions for a table. columns
// must be the full ordered column list from the catalog.
func NewMergeBuilder(d dialect.Dialect, t schema.TableID, columns []schema.Column) *MergeBuilder {
	keyColumns := schema.PrimaryKeyColumns(columns)
	var nonKey []schema.Column
	if len(keyColumns) == 0 {
		keyColumns = columns
	} else {
		nonKey = schema.NonKeyColumns(columns, keyColumns)
	}
	return &MergeBuilder{
		dialect:    d,
		table:      t,
		columns:    columns,
		keyColumns: keyColumns,
		nonKey:     nonKey,
	}
}

// Unkeyed reports whether the table had no declared primary key and
// all columns were promoted to match keys.
func (b *MergeBuilder) Unkeyed() bool {
	return len(b.nonKey) == 0 && len(b.keyColumns) == len(b.columns)
}

// Row builds the statement for a single fetched row. Values must be
// aligned with the builder's column order; each value is embedded as a
// formatted literal, aliased to its column name in the source row.
func (b *MergeBuilder) Row(values []any) Generated {
	literals := make([]string, len(b.columns))
	for i, col := range b.columns {
		literals[i] = b.dialect.FormatLiteral(values[i], col)
	}
	return Generated{
		Table: b.table,
		SQL:   b.dialect.UpsertStatement(b.table, b.columns, b.keyColumns, b.nonKey, literals),
	}
}

// Rows builds one statement per row: statement count always equals row
// count, with no batching.
func (b *MergeBuilder) Rows(rows [][]any) []Generated {
	statements := make([]Generated, 0, len(rows))
	for _, row := range rows {
		statements = append(statements, b.Row(row))
	}
	return statements
}
