package shared

import (
	"database/sql"
	"fmt"
	"strings"

	_ "github.com/lib/pq"
	_ "github.com/mattn/go-sqlite3"
)

// Dialect identifies the SQL backend behind a [sql.DB] handle.
type Dialect string

const (
	DialectSQLite   Dialect = "sqlite3"
	DialectPostgres Dialect = "postgres"
)

// DetectDialect picks the backend for a database URL. postgres:// and
// postgresql:// DSNs select PostgreSQL; everything else is treated as a
// SQLite file path (":memory:" included).
func DetectDialect(url string) Dialect {
	if strings.HasPrefix(url, "postgres://") || strings.HasPrefix(url, "postgresql://") {
		return DialectPostgres
	}
	return DialectSQLite
}

// NewDatabase opens a connection to the database named by url, selecting the
// driver via [DetectDialect].
// Returns an open database connection or an error if connection fails.
func NewDatabase(url string) (*sql.DB, Dialect, error) {
	dialect := DetectDialect(url)
	db, err := sql.Open(string(dialect), url)
	if err != nil {
		return nil, dialect, fmt.Errorf("failed to open database: %w", err)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, dialect, fmt.Errorf("failed to ping database: %w", err)
	}

	return db, dialect, nil
}

// ConfigureDatabase sets connection pool settings for the database.
// Recommended for production use to limit connections and improve performance.
func ConfigureDatabase(db *sql.DB, maxOpenConns, maxIdleConns int) {
	db.SetMaxOpenConns(maxOpenConns)
	db.SetMaxIdleConns(maxIdleConns)
}
