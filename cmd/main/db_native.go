//go:build !cgo_sqlite

package main

import (
	"database/sql"

	_ "modernc.org/sqlite"
)

const sqliteDriver = "sqlite"

func initDB(dataSource string) (*sql.DB, error) {
	return openSQLite(sqliteDriver, dataSource)
}
