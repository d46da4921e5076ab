package statement

import (
	"github.com/sqldraft/sqldraft/pkg/schema"
)

// BuildDelete composes a DELETE statement from a table and an already
// built WHERE clause body. Pure text composition: no row data is
// involved. An empty clause means the statement targets every row.
func BuildDelete(t schema.TableID, whereClause string) Generated {
	sql := "DELETE FROM " + t.QualifiedName()
	if whereClause != "" {
		sql += " WHERE " + whereClause
	}
	return Generated{Table: t, SQL: sql}
}
