package dbconn

import (
	"context"
	"database/sql"

	"github.com/sqldraft/sqldraft/pkg/dialect"
	"github.com/sqldraft/sqldraft/pkg/schema"
	"github.com/sqldraft/sqldraft/pkg/statement"
)

// Store bundles a connection with its dialect so callers can work
// against one handle.
type Store struct {
	db       *sql.DB
	dialect  dialect.Dialect
	dbConfig *DBConfig
}

// NewStore opens a connection for the dialect and wraps it.
func NewStore(d dialect.Dialect, params dialect.ConnParams, config *DBConfig) (*Store, error) {
	db, err := New(d, params, config)
	if err != nil {
		return nil, err
	}
	return &Store{db: db, dialect: d, dbConfig: config}, nil
}

func (s *Store) Columns(ctx context.Context, t schema.TableID) ([]schema.Column, error) {
	return schema.Columns(ctx, s.db, s.dialect, t)
}

func (s *Store) CountRows(ctx context.Context, t schema.TableID, whereClause string, params []statement.Param) (int64, error) {
	return CountRows(ctx, s.db, s.dialect, t, whereClause, params)
}

func (s *Store) QueryRows(ctx context.Context, t schema.TableID, columns []schema.Column, whereClause string, params []statement.Param, maxRows int) ([][]any, error) {
	return QueryRows(ctx, s.db, s.dialect, t, columns, whereClause, params, maxRows)
}

func (s *Store) Exec(ctx context.Context, stmts ...string) (int64, error) {
	return ExecStatements(ctx, s.db, s.dbConfig, stmts...)
}

func (s *Store) Close() error {
	return s.db.Close()
}
