package ingest

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
)

// WriteFunc is a callback that performs database writes inside a transaction.
type WriteFunc func(ctx context.Context, tx *sql.Tx) error

// ErrWriterClosed is returned by Write after Close.
var ErrWriterClosed = errors.New("row writer closed")

// RowWriter runs every WriteFunc in a transaction of its own, so a failed row
// leaves nothing behind and never affects its neighbours.
type RowWriter struct {
	db     *sql.DB
	closed bool
}

// NewRowWriter creates a writer on db.
func NewRowWriter(db *sql.DB) *RowWriter {
	return &RowWriter{db: db}
}

// Write executes w and commits, or rolls back if w fails.
func (rw *RowWriter) Write(ctx context.Context, w WriteFunc) error {
	if rw.closed {
		return ErrWriterClosed
	}
	tx, err := rw.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin row tx: %w", err)
	}
	defer func() {
		_ = tx.Rollback() // ignored if committed
	}()

	if err := w(ctx, tx); err != nil {
		return err
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit row: %w", err)
	}
	return nil
}

// Close stops accepting writes.
func (rw *RowWriter) Close() error {
	if rw.closed {
		return ErrWriterClosed
	}
	rw.closed = true
	return nil
}
