package dialect

import (
	"fmt"
	"net/url"
	"time"

	"github.com/sqldraft/sqldraft/pkg/schema"
	"github.com/sqldraft/sqldraft/pkg/value"
)

// Postgres targets PostgreSQL 15+, which supports standard MERGE.
// Binds are positional ($1..$n); TO_DATE/TO_TIMESTAMP carry the same
// format masks as oracle.
type Postgres struct{}

var _ Dialect = (*Postgres)(nil)

func (p *Postgres) Name() string       { return "postgres" }
func (p *Postgres) DriverName() string { return "postgres" }

func (p *Postgres) DSN(params ConnParams) string {
	u := url.URL{
		Scheme:   "postgres",
		User:     url.UserPassword(params.Username, params.Password),
		Host:     fmt.Sprintf("%s:%d", params.Host, params.Port),
		Path:     "/" + params.Database,
		RawQuery: "sslmode=prefer",
	}
	return u.String()
}

func (p *Postgres) NamedBinds() bool { return false }

// ColumnsQuery reads information_schema.columns with the primary-key
// flag computed from table_constraints/key_column_usage membership.
// Identifier comparison is case-insensitive: the caller has uppercased
// the owner/table while postgres catalogs hold folded-lowercase names.
func (p *Postgres) ColumnsQuery(t schema.TableID) (string, []any) {
	query := `SELECT
    c.column_name,
    c.data_type,
    COALESCE(c.character_maximum_length, 0),
    c.numeric_precision,
    c.numeric_scale,
    CASE WHEN c.is_nullable = 'YES' THEN 'Y' ELSE 'N' END,
    CASE WHEN EXISTS (
        SELECT 1
        FROM information_schema.table_constraints tc
        JOIN information_schema.key_column_usage kcu
            ON tc.constraint_name = kcu.constraint_name
            AND tc.table_schema = kcu.table_schema
        WHERE tc.constraint_type = 'PRIMARY KEY'
          AND upper(tc.table_schema) = $1
          AND upper(tc.table_name) = $2
          AND kcu.column_name = c.column_name
    ) THEN 1 ELSE 0 END AS is_pk,
    c.ordinal_position
FROM information_schema.columns c
WHERE upper(c.table_schema) = $1
  AND upper(c.table_name) = $2
ORDER BY c.ordinal_position`
	return query, []any{t.Owner, t.Name}
}

func (p *Postgres) Predicate(col schema.Column, position int) string {
	if value.IsDateTime(col.Type) {
		return fmt.Sprintf("%s = TO_DATE($%d, 'YYYY-MM-DD')", col.Name, position)
	}
	return fmt.Sprintf("%s = $%d", col.Name, position)
}

func (p *Postgres) FormatLiteral(v any, col schema.Column) string {
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
			return fmt.Sprintf("TO_DATE('%s', 'YYYY-MM-DD')", ts.Format("2006-01-02"))
		}
		return fmt.Sprintf("TO_DATE('%s', 'YYYY-MM-DD')", value.EscapeString(fmt.Sprintf("%v", v)))
	case value.KindTimestamp:
		if ts, ok := v.(time.Time); ok {
			return fmt.Sprintf("TO_TIMESTAMP('%s', 'YYYY-MM-DD HH24:MI:SS.US')", ts.Format("2006-01-02 15:04:05.000000"))
		}
		return fmt.Sprintf("TO_TIMESTAMP('%s', 'YYYY-MM-DD HH24:MI:SS.US')", value.EscapeString(fmt.Sprintf("%v", v)))
	default:
		return "'" + value.EscapeString(fmt.Sprintf("%v", v)) + "'"
	}
}

func (p *Postgres) UpsertStatement(t schema.TableID, columns, keyColumns, nonKeyColumns []schema.Column, literals []string) string {
	return mergeStatement(t, columns, keyColumns, nonKeyColumns, literals, mergeSyntax{
		aliasKeyword: " AS",
		// postgres rejects a qualified target column in UPDATE SET.
		qualifyUpdateSet: false,
	})
}

func (p *Postgres) CountHint() string { return "" }

func (p *Postgres) LimitClause(n int) (string, bool) {
	return fmt.Sprintf("LIMIT %d", n), false
}

func (p *Postgres) Preamble() string { return "" }
