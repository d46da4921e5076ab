// Package statement assembles review-only SQL statements: WHERE
// clauses with bind parameters, DELETE statements, and single-row
// MERGE/upsert statements built from fetched row data.
package statement

import (
	"github.com/sqldraft/sqldraft/pkg/schema"
)

// Param is one bind parameter produced by the clause builder. Name is
// always the column name, case-sensitive; positional dialects consume
// params in slice order and keep the name for logging.
type Param struct {
	Name  string
	Value any
}

// Generated is one generated SQL statement and the table it targets.
// It has no identity beyond its position in the output sequence. The
// text carries no terminating semicolon; the script writer owns
// termination.
type Generated struct {
	Table schema.TableID
	SQL   string
}
