package storage

import "context"

// Provider is the contract build outputs travel through. The generator
// issues the operation names defined in this package instead of SQL,
// so hosts can swap the local filesystem for object stores or
// in-memory fakes during tests while keeping the driver-style shape.
type Provider interface {
	Query(ctx context.Context, query string, args ...any) (Rows, error)
	Exec(ctx context.Context, query string, args ...any) (Result, error)
	Transaction(ctx context.Context, fn func(tx Transaction) error) error
}

// Rows is a cursor over the results of a Query operation. File-backed
// providers yield a single row holding the file contents.
type Rows interface {
	Next() bool
	Scan(dest ...any) error
	Close() error
}

// Result reports the outcome of an Exec operation.
type Result interface {
	RowsAffected() (int64, error)
	LastInsertId() (int64, error)
}

// Transaction scopes a group of operations. Providers without real
// transactional semantics may run operations directly and treat
// Commit and Rollback as no-ops.
type Transaction interface {
	Provider
	Commit() error
	Rollback() error
}
