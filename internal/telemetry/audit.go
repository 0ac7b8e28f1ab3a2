package telemetry

import (
	"context"
	"fmt"
)

// AuditEntry records one pool lifecycle event: a spawn, a destroy, or a
// snapshot save/load attempt.
type AuditEntry struct {
	EventType  string // "spawn", "destroy", "snapshot_saved", "snapshot_save_failed", "snapshot_load_failed"
	RefIndex   int32
	Generation int32
	Path       string
	Detail     string
}

type AuditRepo struct {
	db *DB
}

func NewAuditRepo(db *DB) *AuditRepo {
	return &AuditRepo{db: db}
}

// WriteBatch atomically writes a batch of audit entries in a single
// transaction. On any failure the whole batch is rolled back — nothing is
// observable in pool_audit unless every entry was inserted.
func (r *AuditRepo) WriteBatch(ctx context.Context, entries []AuditEntry) error {
	tx, err := r.db.Pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("audit begin: %w", err)
	}
	defer tx.Rollback(ctx)

	for _, e := range entries {
		if _, err := tx.Exec(ctx,
			`INSERT INTO pool_audit (event_type, ref_index, generation, path, detail)
			 VALUES ($1, $2, $3, $4, $5)`,
			e.EventType, e.RefIndex, e.Generation, e.Path, e.Detail,
		); err != nil {
			return fmt.Errorf("audit insert: %w", err)
		}
	}

	return tx.Commit(ctx)
}

// MarkProcessed marks all unprocessed audit entries as processed. Called
// after a downstream consumer has read the backlog.
func (r *AuditRepo) MarkProcessed(ctx context.Context) error {
	_, err := r.db.Pool.Exec(ctx,
		`UPDATE pool_audit SET processed = TRUE WHERE processed = FALSE`,
	)
	return err
}
