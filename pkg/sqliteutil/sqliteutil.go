package sqliteutil

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	_ "github.com/tursodatabase/libsql-client-go/libsql"
	_ "modernc.org/sqlite"
)

const (
	DriverSqlite = "sqlite"
	DriverLibsql = "libsql"
)

type Config struct {
	// Driver is either "sqlite" (default, a local file) or "libsql" (a remote
	// libsql/turso url).
	Driver string `json:"driver"`
	// Path is the file path for sqlite or the database url for libsql.
	Path string `json:"path"`
}

func wrapOpenDB(err error) error {
	return fmt.Errorf("open db: %w", err)
}

// OpenDB opens the configured database and applies `schema`, which must be
// idempotent (CREATE ... IF NOT EXISTS).
func OpenDB(config Config, schema string) (*sql.DB, error) {
	driver := config.Driver
	if driver == "" {
		driver = DriverSqlite
	}
	if config.Path == "" {
		return nil, wrapOpenDB(fmt.Errorf("a path was not specified"))
	}

	var db *sql.DB
	var err error
	switch driver {
	case DriverSqlite:
		db, err = openSqlite(config.Path)
	case DriverLibsql:
		db, err = sql.Open(DriverLibsql, config.Path)
	default:
		err = fmt.Errorf("unknown driver '%s'", driver)
	}
	if err != nil {
		return nil, wrapOpenDB(err)
	}

	_, err = db.Exec(schema)
	if err != nil && !strings.Contains(err.Error(), "already exists") {
		db.Close()
		return nil, wrapOpenDB(fmt.Errorf("apply schema: %w", err))
	}
	return db, nil
}

func openSqlite(path string) (*sql.DB, error) {
	if path != ":memory:" {
		err := os.MkdirAll(filepath.Dir(path), 0777)
		if err != nil {
			return nil, err
		}
	}

	db, err := sql.Open(DriverSqlite, path)
	if err != nil {
		return nil, err
	}

	// see this stackoverflow post for information on why the following
	// lines exist: https://stackoverflow.com/questions/35804884/sqlite-concurrent-writing-performance
	db.SetMaxOpenConns(1)
	if path != ":memory:" {
		_, err = db.Exec("PRAGMA journal_mode=WAL")
		if err != nil {
			return nil, err
		}
	}
	_, err = db.Exec("PRAGMA foreign_keys=ON")
	if err != nil {
		return nil, err
	}
	return db, nil
}
