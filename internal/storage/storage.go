package storage

import (
	"context"
	"database/sql"
)

// querier — общее подмножество *sql.DB и *sql.Tx, чтобы один и тот же запрос
// можно было выполнить как вне транзакции, так и внутри неё
type querier interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

// scanner — общее подмножество *sql.Row и *sql.Rows
type scanner interface {
	Scan(dest ...any) error
}

func nullInt64Ptr(v sql.NullInt64) *int64 {
	if !v.Valid {
		return nil
	}
	id := v.Int64
	return &id
}
