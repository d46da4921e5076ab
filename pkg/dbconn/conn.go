// Package dbconn contains a series of database-related utility functions.
package dbconn

import (
	"database/sql"
	"time"

	_ "github.com/go-sql-driver/mysql"
	_ "github.com/lib/pq"
	_ "github.com/sijms/go-ora/v2"

	"github.com/sqldraft/sqldraft/pkg/dialect"
	"github.com/sqldraft/sqldraft/pkg/utils"
)

const maxConnLifetime = time.Minute * 3

type DBConfig struct {
	MaxRetries         int
	MaxOpenConnections int
}

func NewDBConfig() *DBConfig {
	return &DBConfig{
		MaxRetries: 3,
		// The run walks tables one at a time, so a single connection
		// plus one spare for counts is plenty.
		MaxOpenConnections: 2,
	}
}

// New opens and pings a connection for the given dialect. The DSN is
// built by the dialect from the connection parameters.
func New(d dialect.Dialect, params dialect.ConnParams, config *DBConfig) (*sql.DB, error) {
	db, err := sql.Open(d.DriverName(), d.DSN(params))
	if err != nil {
		return nil, err
	}
	if err := db.Ping(); err != nil {
		utils.CloseAndLog(db)
		return nil, err
	}
	db.SetMaxOpenConns(config.MaxOpenConnections)
	db.SetConnMaxLifetime(maxConnLifetime)
	return db, nil
}
