package statement

import (
	"strings"

	"github.com/sqldraft/sqldraft/pkg/dialect"
	"github.com/sqldraft/sqldraft/pkg/schema"
)

// BuildWhere turns a resolved filter mapping into a WHERE clause body
// and its bind parameters. Key columns are iterated in their ordinal
// order so clause order is deterministic regardless of map insertion
// order; only columns present in the mapping emit a predicate. An
// empty mapping yields an empty clause and no parameters, so the
// caller must omit the WHERE keyword entirely.
func BuildWhere(d dialect.Dialect, keyColumns []schema.Column, filters map[string]any) (string, []Param) {
	var (
		conditions []string
		params     []Param
	)
	for _, col := range keyColumns {
		v, ok := filters[col.Name]
		if !ok {
			continue
		}
		conditions = append(conditions, d.Predicate(col, len(params)+1))
		params = append(params, Param{Name: col.Name, Value: v})
	}
	return strings.Join(conditions, " AND "), params
}

// BuildWhereLiterals renders the same predicates with the values
// embedded as formatted literals, for execution paths that cannot use
// bind parameters.
func BuildWhereLiterals(d dialect.Dialect, keyColumns []schema.Column, filters map[string]any) string {
	var conditions []string
	for _, col := range keyColumns {
		v, ok := filters[col.Name]
		if !ok {
			continue
		}
		conditions = append(conditions, col.Name+" = "+d.FormatLiteral(v, col))
	}
	return strings.Join(conditions, " AND ")
}
