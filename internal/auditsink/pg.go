// Package auditsink persists rejection events to Postgres via
// jackc/pgx/v5, standing in for the kind of durable audit trail a real
// canister-adjacent operator would want even though the core itself
// (spec.md §6) defines no persistent on-disk format — that's a host
// concern, which is exactly why it lives here and not in pkg/inspector.
package auditsink

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/icdevs/inspect-mo-sub000/pkg/ictx"
)

// PostgresAuditSink implements ictx.TelemetrySink by inserting one row
// per rejection into inspectmo_rejections. Errors from the insert are
// swallowed after being reported through onError, matching the
// fire-and-forget contract spec.md §4.5 gives TelemetrySink — a failed
// audit write must never turn into a rejected request.
type PostgresAuditSink struct {
	pool    *pgxpool.Pool
	onError func(error)
}

// NewPostgresAuditSink wraps an already-connected pool. onError may be
// nil, in which case insert failures are silently dropped.
func NewPostgresAuditSink(pool *pgxpool.Pool, onError func(error)) *PostgresAuditSink {
	return &PostgresAuditSink{pool: pool, onError: onError}
}

// EnsureSchema creates the rejections table if it doesn't already exist.
// Called once at host startup; not part of ictx.TelemetrySink.
func (s *PostgresAuditSink) EnsureSchema(ctx context.Context) error {
	_, err := s.pool.Exec(ctx, `
		CREATE TABLE IF NOT EXISTS inspectmo_rejections (
			id          BIGSERIAL PRIMARY KEY,
			method_name TEXT NOT NULL,
			caller_id   TEXT NOT NULL,
			anonymous   BOOLEAN NOT NULL,
			is_inspect  BOOLEAN NOT NULL,
			reason      TEXT NOT NULL,
			recorded_at TIMESTAMPTZ NOT NULL DEFAULT now()
		)`)
	if err != nil {
		return fmt.Errorf("auditsink: create schema: %w", err)
	}
	return nil
}

// RecordRejection implements ictx.TelemetrySink.
func (s *PostgresAuditSink) RecordRejection(ctx context.Context, event ictx.TelemetryEvent) {
	reason := "ok"
	if event.Err != nil {
		reason = event.Err.Error()
	}

	_, err := s.pool.Exec(ctx, `
		INSERT INTO inspectmo_rejections (method_name, caller_id, anonymous, is_inspect, reason)
		VALUES ($1, $2, $3, $4, $5)`,
		event.MethodName, event.Caller.ID, event.Caller.Anonymous, event.IsInspect, reason,
	)
	if err != nil && s.onError != nil {
		s.onError(fmt.Errorf("auditsink: insert rejection: %w", err))
	}
}
