// Package staging implements the owner-partitioned, time-boxed channel store
// behind multi-step pick workflows. A channel is the (owner, key) address of
// at most one staged payload; entries past their TTL read as absent and are
// removed on access.
package staging

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/jask/tenderstage/internal/auth"
	"github.com/jask/tenderstage/internal/database/repository"
	"github.com/jask/tenderstage/internal/metrics"
)

// DefaultTTL bounds staleness for ordinary channels. Item-pick channels
// usually get the longer ItemTTL because the workflow spans several screens.
// Neither value is load-bearing for correctness.
const (
	DefaultTTL = 24 * time.Hour
	ItemTTL    = 48 * time.Hour
)

// Entry is a staged payload with its write metadata. Timestamps are assigned
// by the store at write time, never by callers.
type Entry struct {
	BatchID   string
	Payload   json.RawMessage
	CreatedAt time.Time
	UpdatedAt time.Time
	ExpiresAt time.Time
}

// Cache is an explicitly constructed staging store. The principal provider is
// consulted once per operation to resolve the owner partition; every
// operation fails with ErrUnauthenticated when it reports no principal.
type Cache struct {
	Repo      *repository.StagingRepo
	Principal auth.PrincipalProvider
	Metrics   *metrics.Registry

	// TTL overrides DefaultTTL when positive.
	TTL time.Duration

	// Now is the clock; nil means time.Now. Tests pin it.
	Now func() time.Time
}

func (c *Cache) now() time.Time {
	if c.Now != nil {
		return c.Now().UTC()
	}
	return time.Now().UTC()
}

func (c *Cache) ttl() time.Duration {
	if c.TTL > 0 {
		return c.TTL
	}
	return DefaultTTL
}

func (c *Cache) owner() (string, error) {
	if c.Principal == nil {
		return "", ErrUnauthenticated
	}
	id, ok := c.Principal.PrincipalID()
	if !ok || id == "" {
		return "", ErrUnauthenticated
	}
	return id, nil
}

func validKey(key string) error {
	if strings.TrimSpace(key) == "" {
		return ErrEmptyKey
	}
	return nil
}

// Set stages payload on the channel with the cache's default TTL.
func (c *Cache) Set(ctx context.Context, key string, payload any) error {
	return c.SetWithTTL(ctx, key, payload, 0)
}

// SetWithTTL stages payload on the channel, overwriting any previous batch
// (last write wins, no history). ttl <= 0 falls back to the default. The
// entry's expiry is recomputed from now on every write.
func (c *Cache) SetWithTTL(ctx context.Context, key string, payload any, ttl time.Duration) error {
	owner, err := c.owner()
	if err != nil {
		return err
	}
	if err := validKey(key); err != nil {
		return err
	}
	raw, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("staging: encode payload for %q: %w", key, err)
	}
	if ttl <= 0 {
		ttl = c.ttl()
	}
	e := repository.StagedEntry{
		OwnerID:   owner,
		Channel:   key,
		BatchID:   uuid.NewString(),
		Payload:   raw,
		ExpiresAt: c.now().Add(ttl),
	}
	if err := c.Repo.Put(ctx, e); err != nil {
		return storeErr("put", err)
	}
	c.Metrics.IncStage()
	return nil
}

// Get returns the channel's entry, or nil when the channel is empty. An
// entry at or past its expiry reads as absent and is deleted on the way out;
// the delete is guarded so a concurrent overwrite with a fresh expiry
// survives.
func (c *Cache) Get(ctx context.Context, key string) (*Entry, error) {
	owner, err := c.owner()
	if err != nil {
		return nil, err
	}
	if err := validKey(key); err != nil {
		return nil, err
	}
	row, err := c.Repo.Get(ctx, owner, key)
	if err != nil {
		return nil, storeErr("get", err)
	}
	if row == nil {
		return nil, nil
	}
	now := c.now()
	if !row.ExpiresAt.After(now) {
		if err := c.Repo.DeleteExpired(ctx, owner, key, now); err != nil {
			return nil, storeErr("expire", err)
		}
		c.Metrics.IncLazyExpiry()
		return nil, nil
	}
	return &Entry{
		BatchID:   row.BatchID,
		Payload:   row.Payload,
		CreatedAt: row.CreatedAt,
		UpdatedAt: row.UpdatedAt,
		ExpiresAt: row.ExpiresAt,
	}, nil
}

// Clear empties the channel. Clearing an empty channel is not an error.
func (c *Cache) Clear(ctx context.Context, key string) error {
	owner, err := c.owner()
	if err != nil {
		return err
	}
	if err := validKey(key); err != nil {
		return err
	}
	if err := c.Repo.Delete(ctx, owner, key); err != nil {
		return storeErr("delete", err)
	}
	return nil
}

// ClearMany empties several channels in one transaction against the store.
func (c *Cache) ClearMany(ctx context.Context, keys []string) error {
	owner, err := c.owner()
	if err != nil {
		return err
	}
	for _, k := range keys {
		if err := validKey(k); err != nil {
			return err
		}
	}
	if err := c.Repo.DeleteMany(ctx, owner, keys); err != nil {
		return storeErr("delete batch", err)
	}
	return nil
}

// ClearAll empties every channel in the owner's partition and reports how
// many were removed.
func (c *Cache) ClearAll(ctx context.Context) (int, error) {
	owner, err := c.owner()
	if err != nil {
		return 0, err
	}
	n, err := c.Repo.DeleteAll(ctx, owner)
	if err != nil {
		return 0, storeErr("delete all", err)
	}
	return n, nil
}

// SweepExpired removes the owner's expired entries without reading them.
// Best-effort space reclamation; lazy expiry on Get keeps correctness even if
// this is never called. The sweep's cutoff is taken once, so an entry
// refreshed by a concurrent Set is left standing.
func (c *Cache) SweepExpired(ctx context.Context) (int, error) {
	owner, err := c.owner()
	if err != nil {
		return 0, err
	}
	n, err := c.Repo.SweepExpired(ctx, owner, c.now())
	if err != nil {
		return 0, storeErr("sweep", err)
	}
	c.Metrics.AddSweepRemoved(n)
	return n, nil
}
