package main

import (
	"context"

	"github.com/l1jgo/thingpool/internal/config"
	"github.com/l1jgo/thingpool/internal/event"
	"github.com/l1jgo/thingpool/internal/telemetry"
	"go.uber.org/zap"
)

// auditSink batches pool lifecycle events from the event bus and writes
// them to pool_audit. When telemetry is disabled in config it is a no-op
// on every method, so call sites don't need an enabled check of their own.
type auditSink struct {
	db      *telemetry.DB
	repo    *telemetry.AuditRepo
	pending []telemetry.AuditEntry
}

// newAuditSink connects to Postgres and applies pending migrations if
// cfg.Enabled; otherwise it returns a sink whose subscribe/flush/close are
// no-ops.
func newAuditSink(ctx context.Context, cfg config.TelemetryConfig, log *zap.Logger) (*auditSink, error) {
	if !cfg.Enabled {
		return &auditSink{}, nil
	}

	db, err := telemetry.NewDB(ctx, cfg, log)
	if err != nil {
		return nil, err
	}
	if err := telemetry.RunMigrations(ctx, db.Pool); err != nil {
		db.Close()
		return nil, err
	}

	return &auditSink{db: db, repo: telemetry.NewAuditRepo(db)}, nil
}

// subscribe registers handlers that append every pool lifecycle event onto
// the sink's pending batch. Call flush to write the batch to pool_audit.
func (s *auditSink) subscribe(bus *event.Bus) {
	if s.repo == nil {
		return
	}
	event.Subscribe(bus, func(e event.Spawned) {
		s.pending = append(s.pending, telemetry.AuditEntry{
			EventType: "spawn", RefIndex: int32(e.Ref.Index), Generation: int32(e.Ref.Generation),
		})
	})
	event.Subscribe(bus, func(e event.Destroyed) {
		s.pending = append(s.pending, telemetry.AuditEntry{
			EventType: "destroy", RefIndex: int32(e.Ref.Index), Generation: int32(e.Ref.Generation),
		})
	})
	event.Subscribe(bus, func(e event.SnapshotSaved) {
		s.pending = append(s.pending, telemetry.AuditEntry{EventType: "snapshot_saved", Path: e.Path})
	})
	event.Subscribe(bus, func(e event.SnapshotSaveFailed) {
		s.pending = append(s.pending, telemetry.AuditEntry{EventType: "snapshot_save_failed", Path: e.Path, Detail: e.Err.Error()})
	})
	event.Subscribe(bus, func(e event.SnapshotLoadFailed) {
		s.pending = append(s.pending, telemetry.AuditEntry{EventType: "snapshot_load_failed", Path: e.Path, Detail: e.Err.Error()})
	})
}

// flush writes any pending entries to pool_audit in one transaction and
// clears the batch.
func (s *auditSink) flush(ctx context.Context) error {
	if s.repo == nil || len(s.pending) == 0 {
		return nil
	}
	if err := s.repo.WriteBatch(ctx, s.pending); err != nil {
		return err
	}
	s.pending = s.pending[:0]
	return nil
}

func (s *auditSink) close() {
	if s.db != nil {
		s.db.Close()
	}
}
