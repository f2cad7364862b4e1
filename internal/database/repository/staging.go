package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/jask/tenderstage/internal/database"
)

// StagingRepo persists staged channel payloads. It is the backing medium
// behind the staging cache: get/put/delete by (owner, channel), batch delete,
// and expiry-bounded sweep. Write timestamps are assigned here, never by
// callers.
type StagingRepo struct{ db *sql.DB }

func NewStagingRepo(db *sql.DB) *StagingRepo { return &StagingRepo{db: db} }

// Put creates or overwrites the entry at (ownerID, channel). Last write wins;
// created_at survives an overwrite, updated_at and expires_at are refreshed.
func (r *StagingRepo) Put(ctx context.Context, e StagedEntry) error {
	now := database.Now()
	_, err := r.db.ExecContext(ctx, `
	INSERT INTO staged_entries(owner_id, channel, batch_id, payload, created_at, updated_at, expires_at)
	VALUES(?, ?, ?, ?, ?, ?, ?)
	ON CONFLICT(owner_id, channel) DO UPDATE SET
	 batch_id = excluded.batch_id,
	 payload = excluded.payload,
	 updated_at = excluded.updated_at,
	 expires_at = excluded.expires_at
	`, e.OwnerID, e.Channel, e.BatchID, e.Payload, now, now, e.ExpiresAt)
	if err != nil {
		return fmt.Errorf("put staged entry %s/%s: %w", e.OwnerID, e.Channel, err)
	}
	return nil
}

// Get returns the entry at (ownerID, channel), expired or not. Absence is
// reported as (nil, nil); callers own the expiry decision.
func (r *StagingRepo) Get(ctx context.Context, ownerID, channel string) (*StagedEntry, error) {
	row := r.db.QueryRowContext(ctx, `
	SELECT owner_id, channel, batch_id, payload, created_at, updated_at, expires_at
	FROM staged_entries WHERE owner_id = ? AND channel = ?
	`, ownerID, channel)
	var e StagedEntry
	if err := row.Scan(&e.OwnerID, &e.Channel, &e.BatchID, &e.Payload, &e.CreatedAt, &e.UpdatedAt, &e.ExpiresAt); err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("get staged entry %s/%s: %w", ownerID, channel, err)
	}
	return &e, nil
}

// Delete removes the entry at (ownerID, channel). Deleting a missing entry is
// not an error.
func (r *StagingRepo) Delete(ctx context.Context, ownerID, channel string) error {
	if _, err := r.db.ExecContext(ctx,
		`DELETE FROM staged_entries WHERE owner_id = ? AND channel = ?`,
		ownerID, channel,
	); err != nil {
		return fmt.Errorf("delete staged entry %s/%s: %w", ownerID, channel, err)
	}
	return nil
}

// DeleteExpired removes the entry only if it is still expired relative to
// cutoff. A concurrent refresh moves expires_at forward and survives.
func (r *StagingRepo) DeleteExpired(ctx context.Context, ownerID, channel string, cutoff time.Time) error {
	if _, err := r.db.ExecContext(ctx,
		`DELETE FROM staged_entries WHERE owner_id = ? AND channel = ? AND expires_at <= ?`,
		ownerID, channel, cutoff,
	); err != nil {
		return fmt.Errorf("delete expired entry %s/%s: %w", ownerID, channel, err)
	}
	return nil
}

// DeleteMany removes several channels for one owner in a single transaction.
func (r *StagingRepo) DeleteMany(ctx context.Context, ownerID string, channels []string) error {
	if len(channels) == 0 {
		return nil
	}
	return database.WithTx(r.db, func(tx *sql.Tx) error {
		for _, ch := range channels {
			if _, err := tx.ExecContext(ctx,
				`DELETE FROM staged_entries WHERE owner_id = ? AND channel = ?`,
				ownerID, ch,
			); err != nil {
				return fmt.Errorf("delete staged entry %s/%s: %w", ownerID, ch, err)
			}
		}
		return nil
	})
}

// DeleteAll removes every channel for one owner and reports how many went.
func (r *StagingRepo) DeleteAll(ctx context.Context, ownerID string) (int, error) {
	res, err := r.db.ExecContext(ctx, `DELETE FROM staged_entries WHERE owner_id = ?`, ownerID)
	if err != nil {
		return 0, fmt.Errorf("delete all staged entries for %s: %w", ownerID, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("delete all staged entries for %s: %w", ownerID, err)
	}
	return int(n), nil
}

// SweepExpired removes every entry for ownerID whose expires_at is at or
// before cutoff. The cutoff guard means an entry refreshed after the caller
// took its snapshot is left standing.
func (r *StagingRepo) SweepExpired(ctx context.Context, ownerID string, cutoff time.Time) (int, error) {
	res, err := r.db.ExecContext(ctx,
		`DELETE FROM staged_entries WHERE owner_id = ? AND expires_at <= ?`,
		ownerID, cutoff,
	)
	if err != nil {
		return 0, fmt.Errorf("sweep expired entries for %s: %w", ownerID, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("sweep expired entries for %s: %w", ownerID, err)
	}
	return int(n), nil
}
