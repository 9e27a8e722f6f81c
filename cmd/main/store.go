package main

import (
	"database/sql"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/CTAG07/titleforge/pkg/markov"
)

// openStore opens the model database, makes sure the schema exists and
// returns a ready Store. The caller closes both.
func openStore(dataSource string, logger *slog.Logger) (*sql.DB, *markov.Store, error) {
	db, err := initDB(dataSource)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to initialize database: %w", err)
	}
	if err = markov.SetupSchema(db); err != nil {
		_ = db.Close()
		return nil, nil, fmt.Errorf("failed to setup markov schema: %w", err)
	}
	store, err := markov.NewStore(db)
	if err != nil {
		_ = db.Close()
		return nil, nil, fmt.Errorf("error creating model store: %w", err)
	}
	store.SetLogger(logger)
	return db, store, nil
}

// openSQLite opens dataSource with driver and verifies the connection. The
// directory of a file data source is created when missing. SQLite allows a
// single writer, so the pool is limited to one connection.
func openSQLite(driver, dataSource string) (*sql.DB, error) {
	file, _, _ := strings.Cut(strings.TrimPrefix(dataSource, "file:"), "?")
	if file != "" && file != ":memory:" {
		if err := os.MkdirAll(filepath.Dir(file), 0755); err != nil {
			return nil, fmt.Errorf("failed to create database directory: %w", err)
		}
	}

	db, err := sql.Open(driver, dataSource)
	if err != nil {
		return nil, err
	}
	db.SetMaxOpenConns(1)
	if err = db.Ping(); err != nil {
		_ = db.Close()
		return nil, err
	}
	return db, nil
}
