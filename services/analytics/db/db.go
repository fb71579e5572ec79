package db

import (
	"database/sql"
	"fmt"

	_ "embed"

	_ "modernc.org/sqlite"
)

//go:embed schema.sql
var Schema string

// Open opens the reference store read-only and verifies it answers a
// trivial query. A store that cannot be opened or pinged is a fatal
// configuration error for the caller, never retried.
func Open(path string) (*sql.DB, error) {
	dsn := fmt.Sprintf("file:%s?mode=ro", path)
	sqlite, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, err
	}

	var ping string
	err = sqlite.QueryRow(`SELECT 'pong' AS ping`).Scan(&ping)
	if err != nil {
		sqlite.Close()
		return nil, fmt.Errorf("store at %s is not usable: %w", path, err)
	}
	if ping != "pong" {
		sqlite.Close()
		return nil, fmt.Errorf("store at %s is not usable", path)
	}

	return sqlite, nil
}
