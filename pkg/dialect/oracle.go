package dialect

import (
	"database/sql"
	"fmt"
	"time"

	go_ora "github.com/sijms/go-ora/v2"

	"github.com/sqldraft/sqldraft/pkg/schema"
	"github.com/sqldraft/sqldraft/pkg/value"
)

// Oracle is the dialect the original generation flows were written
// against: named binds, TO_DATE/TO_TIMESTAMP literals, MERGE with a
// FROM dual source row.
type Oracle struct{}

var _ Dialect = (*Oracle)(nil)

func (o *Oracle) Name() string       { return "oracle" }
func (o *Oracle) DriverName() string { return "oracle" }

func (o *Oracle) DSN(p ConnParams) string {
	return go_ora.BuildUrl(p.Host, p.Port, p.Database, p.Username, p.Password, nil)
}

func (o *Oracle) NamedBinds() bool { return true }

// ColumnsQuery reads ALL_TAB_COLUMNS with the primary-key flag
// computed by membership in the table's 'P' constraint columns.
func (o *Oracle) ColumnsQuery(t schema.TableID) (string, []any) {
	query := `SELECT
    c.column_name,
    c.data_type,
    c.data_length,
    c.data_precision,
    c.data_scale,
    c.nullable,
    CASE WHEN EXISTS (
        SELECT 1
        FROM all_cons_columns cc
        INNER JOIN all_constraints con
            ON cc.constraint_name = con.constraint_name AND cc.owner = con.owner
        WHERE con.constraint_type = 'P'
          AND cc.owner = :owner
          AND cc.table_name = :table_name
          AND cc.column_name = c.column_name
    ) THEN 1 ELSE 0 END AS is_pk,
    c.column_id
FROM all_tab_columns c
WHERE c.owner = :owner
  AND c.table_name = :table_name
ORDER BY c.column_id`
	return query, []any{
		sql.Named("owner", t.Owner),
		sql.Named("table_name", t.Name),
	}
}

func (o *Oracle) Predicate(col schema.Column, _ int) string {
	if value.IsDateTime(col.Type) {
		return fmt.Sprintf("%s = TO_DATE(:%s, 'YYYY-MM-DD')", col.Name, col.Name)
	}
	return fmt.Sprintf("%s = :%s", col.Name, col.Name)
}

func (o *Oracle) FormatLiteral(v any, col schema.Column) string {
	if v == nil {
		return "NULL"
	}
	if b, ok := v.([]byte); ok {
		v = string(b)
	}
	switch value.TypeKind(col.Type) {
	case value.KindNumeric:
		return fmt.Sprintf("%v", v)
	case value.KindDate:
		if ts, ok := v.(time.Time); ok {
			return fmt.Sprintf("TO_DATE('%s', 'YYYY-MM-DD HH24:MI:SS')", ts.Format("2006-01-02 15:04:05"))
		}
		return fmt.Sprintf("TO_DATE('%s', 'YYYY-MM-DD')", value.EscapeString(fmt.Sprintf("%v", v)))
	case value.KindTimestamp:
		if ts, ok := v.(time.Time); ok {
			return fmt.Sprintf("TO_TIMESTAMP('%s', 'YYYY-MM-DD HH24:MI:SS.FF6')", ts.Format("2006-01-02 15:04:05.000000"))
		}
		return fmt.Sprintf("TO_TIMESTAMP('%s', 'YYYY-MM-DD HH24:MI:SS.FF')", value.EscapeString(fmt.Sprintf("%v", v)))
	default:
		// Character types and anything unrecognized: quoted, escaped.
		return "'" + value.EscapeString(fmt.Sprintf("%v", v)) + "'"
	}
}

func (o *Oracle) UpsertStatement(t schema.TableID, columns, keyColumns, nonKeyColumns []schema.Column, literals []string) string {
	return mergeStatement(t, columns, keyColumns, nonKeyColumns, literals, mergeSyntax{
		sourceSuffix:     " FROM dual",
		qualifyUpdateSet: true,
	})
}

func (o *Oracle) CountHint() string { return "/*+ NO_PARALLEL */" }

func (o *Oracle) LimitClause(n int) (string, bool) {
	return fmt.Sprintf("ROWNUM <= %d", n), true
}

func (o *Oracle) Preamble() string { return "SET DEFINE OFF;" }
