package dbconn

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"math/rand"
	"strings"
	"time"

	"github.com/go-sql-driver/mysql"

	"github.com/sqldraft/sqldraft/pkg/dialect"
	"github.com/sqldraft/sqldraft/pkg/schema"
	"github.com/sqldraft/sqldraft/pkg/statement"
)

const (
	errLockWaitTimeout = 1205
	errDeadlock        = 1213
	errCannotConnect   = 2003
	errConnLost        = 2013
	errReadOnly        = 1290
	errQueryKilled     = 1836
)

// ProbeError wraps a failed row-count query. Callers treat it as a
// zero count rather than a fatal error: a count that cannot be read
// only degrades the prompt context.
type ProbeError struct {
	Table schema.TableID
	Err   error
}

func (e *ProbeError) Error() string {
	return fmt.Sprintf("counting rows in %s: %v", e.Table, e.Err)
}

func (e *ProbeError) Unwrap() error {
	return e.Err
}

// ExecError wraps a statement that failed during script execution.
// Index locates the statement within the executed batch.
type ExecError struct {
	Index int
	Err   error
}

func (e *ExecError) Error() string {
	return fmt.Sprintf("executing statement %d: %v", e.Index+1, e.Err)
}

func (e *ExecError) Unwrap() error {
	return e.Err
}

// BindArgs converts WHERE parameters to driver arguments. Dialects
// with named binds get sql.Named values under the exact parameter
// name; drivers match named placeholders case-sensitively, so the
// catalog-native case is preserved. Positional dialects get the values
// in emitted predicate order.
func BindArgs(d dialect.Dialect, params []statement.Param) []any {
	args := make([]any, 0, len(params))
	for _, p := range params {
		if d.NamedBinds() {
			args = append(args, sql.Named(p.Name, p.Value))
		} else {
			args = append(args, p.Value)
		}
	}
	return args
}

// CountRows probes how many rows a filter matches. An empty clause
// counts the whole table.
func CountRows(ctx context.Context, db *sql.DB, d dialect.Dialect, t schema.TableID, whereClause string, params []statement.Param) (int64, error) {
	query := "SELECT COUNT(*) FROM " + t.QualifiedName()
	if hint := d.CountHint(); hint != "" {
		query = "SELECT " + hint + " COUNT(*) FROM " + t.QualifiedName()
	}
	if whereClause != "" {
		query += " WHERE " + whereClause
	}
	var count int64
	if err := db.QueryRowContext(ctx, query, BindArgs(d, params)...).Scan(&count); err != nil {
		return 0, &ProbeError{Table: t, Err: err}
	}
	return count, nil
}

// QueryRows fetches matching rows with values aligned to the column
// order. maxRows of 0 means unbounded; otherwise the dialect's limit
// syntax caps the result.
func QueryRows(ctx context.Context, db *sql.DB, d dialect.Dialect, t schema.TableID, columns []schema.Column, whereClause string, params []statement.Param, maxRows int) ([][]any, error) {
	query := "SELECT "
	if hint := d.CountHint(); hint != "" {
		query += hint + " "
	}
	query += strings.Join(schema.Names(columns), ", ") + " FROM " + t.QualifiedName()

	clause := whereClause
	suffix := ""
	if maxRows > 0 {
		// ROWNUM-style limits join the WHERE clause; LIMIT-style
		// limits trail the statement.
		limit, isPredicate := d.LimitClause(maxRows)
		if isPredicate {
			if clause == "" {
				clause = limit
			} else {
				clause = "(" + clause + ") AND " + limit
			}
		} else {
			suffix = " " + limit
		}
	}
	if clause != "" {
		query += " WHERE " + clause
	}
	query += suffix
	return scanRows(ctx, db, query, BindArgs(d, params), len(columns))
}

func scanRows(ctx context.Context, db *sql.DB, query string, args []any, width int) ([][]any, error) {
	rows, err := db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result [][]any
	for rows.Next() {
		values := make([]any, width)
		ptrs := make([]any, width)
		for i := range values {
			ptrs[i] = &values[i]
		}
		if err := rows.Scan(ptrs...); err != nil {
			return nil, err
		}
		for i, v := range values {
			if b, ok := v.([]byte); ok {
				values[i] = string(b)
			}
		}
		result = append(result, values)
	}
	return result, rows.Err()
}

// canRetryError looks at the error and decides if it is considered a
// permanent failure or not. Only the mysql driver exposes error
// numbers; other dialects never retry.
func canRetryError(err error) bool {
	var errNumber uint16
	var mErr *mysql.MySQLError
	if errors.As(err, &mErr) {
		errNumber = mErr.Number
	}
	switch errNumber {
	case errLockWaitTimeout, errDeadlock, errCannotConnect,
		errConnLost, errReadOnly, errQueryKilled:
		return true
	default:
		return false
	}
}

// ExecStatements runs generated statements in one transaction,
// retrying the whole transaction on transient errors up to MaxRetries
// times. Used only when the caller explicitly asked to execute instead
// of just writing the script.
func ExecStatements(ctx context.Context, db *sql.DB, config *DBConfig, stmts ...string) (int64, error) {
	var (
		err          error
		trx          *sql.Tx
		rowsAffected int64
		isFatal      bool
	)
	for i := range config.MaxRetries {
		func() {
			if trx, err = db.BeginTx(ctx, nil); err != nil {
				return
			}
			// On any failure roll back before retrying or finishing.
			defer func() {
				if err != nil {
					_ = trx.Rollback()
					if i < config.MaxRetries-1 && !isFatal {
						backoff(i)
					}
				}
			}()
			for n, stmt := range stmts {
				if stmt == "" {
					continue
				}
				res, execErr := trx.ExecContext(ctx, stmt)
				if execErr != nil {
					err = &ExecError{Index: n, Err: execErr}
					if !canRetryError(execErr) {
						isFatal = true
					}
					return
				}
				count, errC := res.RowsAffected()
				if errC == nil { // affectedRows is supported
					rowsAffected += count
				}
			}
			err = trx.Commit()
		}()
		if isFatal {
			return rowsAffected, err
		}
		if err == nil {
			return rowsAffected, nil
		}
	}
	return rowsAffected, err
}

// backoff sleeps a few milliseconds before retrying.
func backoff(i int) {
	randFactor := i * rand.Intn(10) * int(time.Millisecond)
	time.Sleep(time.Duration(randFactor))
}
