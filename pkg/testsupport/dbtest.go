package testsupport

import (
	"database/sql"
	"fmt"

	_ "github.com/mattn/go-sqlite3"
	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/sqlitedialect"
)

// NewSQLiteBunDB opens a named shared-cache in-memory SQLite database
// and wraps it in a bun handle. The name isolates test packages from
// each other while letting connections within one package share state.
// Foreign keys are enabled and the pool is pinned to a single
// connection so the in-memory database survives for the test's
// lifetime.
func NewSQLiteBunDB(name string) (*bun.DB, error) {
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared&_fk=1", name)
	sqldb, err := sql.Open("sqlite3", dsn)
	if err != nil {
		return nil, err
	}
	sqldb.SetMaxOpenConns(1)
	return bun.NewDB(sqldb, sqlitedialect.New()), nil
}
