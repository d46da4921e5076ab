// Package dialect abstracts the per-database SQL surface: catalog
// queries, bind placeholders, date-construction predicates, literal
// formatting, and upsert statement shape.
package dialect

import (
	"fmt"
	"strings"

	"github.com/sqldraft/sqldraft/pkg/schema"
)

// ConnParams are the connection parameters a dialect turns into a DSN.
type ConnParams struct {
	Host     string
	Port     int
	Database string // oracle service name, postgres database, mysql schema
	Username string
	Password string
}

// Dialect is the strategy interface implemented once per supported
// database.
type Dialect interface {
	schema.Catalog

	Name() string
	DriverName() string
	DSN(p ConnParams) string

	// NamedBinds reports whether bind parameters are passed by name
	// (oracle) rather than by position.
	NamedBinds() bool

	// Predicate renders an equality predicate for one column. Date and
	// timestamp columns bind through an explicit date-construction
	// function rather than a bare placeholder, to avoid locale and
	// format ambiguity. position is the 1-based bind position for
	// positional dialects.
	Predicate(col schema.Column, position int) string

	// FormatLiteral renders a fetched row value as a SQL-safe literal.
	// This is the sole injection-safety boundary for values embedded
	// directly in generated SQL.
	FormatLiteral(v any, col schema.Column) string

	// UpsertStatement assembles one complete single-row upsert. The
	// literals slice is FormatLiteral output aligned with columns.
	UpsertStatement(t schema.TableID, columns, keyColumns, nonKeyColumns []schema.Column, literals []string) string

	// CountHint is an optimizer hint injected into row-count probes,
	// or empty.
	CountHint() string

	// LimitClause caps a preview query at n rows. isPredicate reports
	// that the clause belongs in the WHERE clause (oracle ROWNUM)
	// rather than appended as a suffix (LIMIT).
	LimitClause(n int) (clause string, isPredicate bool)

	// Preamble is a directive emitted at the top of generated scripts,
	// or empty. Oracle disables substitution-variable expansion so
	// literal ampersands survive review-and-run.
	Preamble() string
}

// New returns the dialect registered under name.
func New(name string) (Dialect, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "oracle":
		return &Oracle{}, nil
	case "postgres", "postgresql":
		return &Postgres{}, nil
	case "mysql":
		return &MySQL{}, nil
	default:
		return nil, fmt.Errorf("unsupported dialect %q (supported: oracle, postgres, mysql)", name)
	}
}

// mergeSyntax captures the small differences between the oracle and
// postgres MERGE renderings.
type mergeSyntax struct {
	aliasKeyword     string // "" for oracle, " AS" for postgres
	sourceSuffix     string // " FROM dual" for oracle, "" for postgres
	qualifyUpdateSet bool   // oracle updates target.<col>; postgres must not qualify
}

// mergeStatement builds a standard single-row MERGE: a literal-valued
// source row aliased per column, an ON predicate over every key
// column, an update branch over the non-key columns when any exist,
// and an insert branch naming every column from the aliased source.
func mergeStatement(t schema.TableID, columns, keyColumns, nonKeyColumns []schema.Column, literals []string, syn mergeSyntax) string {
	sourceValues := make([]string, 0, len(columns))
	for i, col := range columns {
		sourceValues = append(sourceValues, fmt.Sprintf("%s AS %s", literals[i], col.Name))
	}

	onConditions := make([]string, 0, len(keyColumns))
	for _, col := range keyColumns {
		onConditions = append(onConditions, fmt.Sprintf("target.%s = source.%s", col.Name, col.Name))
	}

	allNames := schema.Names(columns)
	sourceNames := make([]string, 0, len(allNames))
	for _, name := range allNames {
		sourceNames = append(sourceNames, "source."+name)
	}

	lines := []string{
		fmt.Sprintf("MERGE INTO %s%s target", t.QualifiedName(), syn.aliasKeyword),
		fmt.Sprintf("USING (SELECT %s%s)%s source", strings.Join(sourceValues, ", "), syn.sourceSuffix, syn.aliasKeyword),
		fmt.Sprintf("ON (%s)", strings.Join(onConditions, " AND ")),
	}
	if len(nonKeyColumns) > 0 {
		assignments := make([]string, 0, len(nonKeyColumns))
		for _, col := range nonKeyColumns {
			if syn.qualifyUpdateSet {
				assignments = append(assignments, fmt.Sprintf("target.%s = source.%s", col.Name, col.Name))
			} else {
				assignments = append(assignments, fmt.Sprintf("%s = source.%s", col.Name, col.Name))
			}
		}
		lines = append(lines, "WHEN MATCHED THEN UPDATE SET "+strings.Join(assignments, ", "))
	}
	lines = append(lines, fmt.Sprintf("WHEN NOT MATCHED THEN INSERT (%s) VALUES (%s)",
		strings.Join(allNames, ", "), strings.Join(sourceNames, ", ")))
	return strings.Join(lines, "\n")
}
