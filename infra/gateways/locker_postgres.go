package gateways

import (
	"context"
	"database/sql"
	"database/sql/driver"
	"fmt"
	"log/slog"
)

// AdvisoryLocker holds a Postgres session advisory lock per instrument on a
// dedicated connection for as long as the lock is held.
type AdvisoryLocker struct {
	db *sql.DB
}

func NewAdvisoryLocker(db *sql.DB) *AdvisoryLocker {
	return &AdvisoryLocker{db: db}
}

func (l *AdvisoryLocker) Lock(ctx context.Context, instrumentId int64) (func(), error) {
	conn, err := l.db.Conn(ctx)
	if err != nil {
		return nil, fmt.Errorf("advisory lock connection: %w", err)
	}
	if _, err := conn.ExecContext(ctx, `SELECT pg_advisory_lock($1)`, instrumentId); err != nil {
		_ = conn.Close()
		return nil, fmt.Errorf("pg_advisory_lock(%d): %w", instrumentId, err)
	}

	return func() {
		if _, err := conn.ExecContext(context.WithoutCancel(ctx), `SELECT pg_advisory_unlock($1)`, instrumentId); err != nil {
			slog.WarnContext(ctx, "release advisory lock", "instrument_id", instrumentId, "error", err)
			// a discarded session drops every advisory lock it holds
			_ = conn.Raw(func(any) error { return driver.ErrBadConn })
		}
		_ = conn.Close()
	}, nil
}
