package dialect

import (
	"fmt"
	"strings"
	"time"

	"github.com/go-sql-driver/mysql"

	"github.com/sqldraft/sqldraft/pkg/schema"
	"github.com/sqldraft/sqldraft/pkg/value"
)

// MySQL has no MERGE statement; the upsert form is
// INSERT ... ON DUPLICATE KEY UPDATE, which relies on the table's own
// unique keys for matching. Binds are positional (?).
type MySQL struct{}

var _ Dialect = (*MySQL)(nil)

func (m *MySQL) Name() string       { return "mysql" }
func (m *MySQL) DriverName() string { return "mysql" }

func (m *MySQL) DSN(p ConnParams) string {
	cfg := mysql.NewConfig()
	cfg.User = p.Username
	cfg.Passwd = p.Password
	cfg.Net = "tcp"
	cfg.Addr = fmt.Sprintf("%s:%d", p.Host, p.Port)
	cfg.DBName = p.Database
	return cfg.FormatDSN()
}

func (m *MySQL) NamedBinds() bool { return false }

// ColumnsQuery reads information_schema.columns; the primary-key flag
// is membership in the table's PRIMARY KEY constraint columns.
func (m *MySQL) ColumnsQuery(t schema.TableID) (string, []any) {
	query := `SELECT
    c.column_name,
    c.data_type,
    COALESCE(c.character_maximum_length, 0),
    c.numeric_precision,
    c.numeric_scale,
    CASE WHEN c.is_nullable = 'YES' THEN 'Y' ELSE 'N' END,
    CASE WHEN EXISTS (
        SELECT 1
        FROM information_schema.key_column_usage kcu
        JOIN information_schema.table_constraints tc
            ON tc.constraint_name = kcu.constraint_name
            AND tc.table_schema = kcu.table_schema
            AND tc.table_name = kcu.table_name
        WHERE tc.constraint_type = 'PRIMARY KEY'
          AND UPPER(kcu.table_schema) = ?
          AND UPPER(kcu.table_name) = ?
          AND kcu.column_name = c.column_name
    ) THEN 1 ELSE 0 END AS is_pk,
    c.ordinal_position
FROM information_schema.columns c
WHERE UPPER(c.table_schema) = ?
  AND UPPER(c.table_name) = ?
ORDER BY c.ordinal_position`
	return query, []any{t.Owner, t.Name, t.Owner, t.Name}
}

func (m *MySQL) Predicate(col schema.Column, _ int) string {
	if value.IsDateTime(col.Type) {
		return fmt.Sprintf("%s = STR_TO_DATE(?, '%%Y-%%m-%%d')", col.Name)
	}
	return fmt.Sprintf("%s = ?", col.Name)
}

func (m *MySQL) FormatLiteral(v any, col schema.Column) string {
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
			return fmt.Sprintf("STR_TO_DATE('%s', '%%Y-%%m-%%d %%H:%%i:%%s')", ts.Format("2006-01-02 15:04:05"))
		}
		return fmt.Sprintf("STR_TO_DATE('%s', '%%Y-%%m-%%d')", value.EscapeString(fmt.Sprintf("%v", v)))
	case value.KindTimestamp:
		if ts, ok := v.(time.Time); ok {
			return fmt.Sprintf("STR_TO_DATE('%s', '%%Y-%%m-%%d %%H:%%i:%%s.%%f')", ts.Format("2006-01-02 15:04:05.000000"))
		}
		return fmt.Sprintf("STR_TO_DATE('%s', '%%Y-%%m-%%d %%H:%%i:%%s.%%f')", value.EscapeString(fmt.Sprintf("%v", v)))
	default:
		return "'" + value.EscapeString(fmt.Sprintf("%v", v)) + "'"
	}
}

// UpsertStatement renders INSERT ... ON DUPLICATE KEY UPDATE. A table
// where every column is part of the key degenerates to INSERT IGNORE:
// there is nothing left to update on a match.
func (m *MySQL) UpsertStatement(t schema.TableID, columns, _, nonKeyColumns []schema.Column, literals []string) string {
	names := strings.Join(schema.Names(columns), ", ")
	values := strings.Join(literals, ", ")
	if len(nonKeyColumns) == 0 {
		return fmt.Sprintf("INSERT IGNORE INTO %s (%s) VALUES (%s)", t.QualifiedName(), names, values)
	}
	assignments := make([]string, 0, len(nonKeyColumns))
	for _, col := range nonKeyColumns {
		assignments = append(assignments, fmt.Sprintf("%s = VALUES(%s)", col.Name, col.Name))
	}
	return fmt.Sprintf("INSERT INTO %s (%s) VALUES (%s)\nON DUPLICATE KEY UPDATE %s",
		t.QualifiedName(), names, values, strings.Join(assignments, ", "))
}

func (m *MySQL) CountHint() string { return "" }

func (m *MySQL) LimitClause(n int) (string, bool) {
	return fmt.Sprintf("LIMIT %d", n), false
}

func (m *MySQL) Preamble() string { return "" }
