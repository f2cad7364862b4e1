// Package merge orchestrates the drain-and-reconcile cycle a destination
// screen runs against a staged channel.
package merge

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"

	"github.com/jask/tenderstage/internal/metrics"
	"github.com/jask/tenderstage/internal/reconcile"
	"github.com/jask/tenderstage/internal/staging"
)

// Options tunes drain behavior.
type Options struct {
	// KeepStaged leaves the channel populated after a drain instead of
	// clearing it. Default false: a channel is single-consumption.
	KeepStaged bool
}

// DrainReport says what a drain did. The caller decides how to surface it
// (toast, inline banner, silence); nothing is auto-displayed.
type DrainReport struct {
	// Merged is the destination working set after the drain: the existing
	// items in their original order, then the accepted items in incoming
	// order. Equal to the input set when nothing was drained.
	Merged []reconcile.Item

	// Result is the classification of the drained batch. Zero when nothing
	// was drained.
	Result reconcile.Result

	// Drained is false when the channel was empty or expired: a no-op, not
	// an error.
	Drained bool

	// BatchID identifies the staged batch that was consumed.
	BatchID string

	// Accepted and DuplicateNames summarize the Result for user feedback.
	Accepted       int
	DuplicateNames []string
}

// Coordinator drains staged item batches into a destination working set.
// Drain calls serialize on an internal mutex, so a focus handler and a poll
// tick firing together produce one consumption and one no-op.
type Coordinator struct {
	Cache   *staging.Cache
	Metrics *metrics.Registry
	Options Options

	mu sync.Mutex
}

// StageItems writes a batch of pickable items to the channel with the long
// item-workflow TTL. Identity-less items are rejected outright; they could
// never be deduplicated on the other side.
func (c *Coordinator) StageItems(ctx context.Context, key string, items []reconcile.Item) error {
	if err := reconcile.Validate(items); err != nil {
		return err
	}
	return c.Cache.SetWithTTL(ctx, key, items, staging.ItemTTL)
}

// Drain pulls the channel's staged batch, reconciles it against current, and
// returns the merged working set. An empty channel is a no-op with
// Drained=false. Unless Options.KeepStaged is set, the channel is cleared so
// a re-render or second trigger cannot re-apply the same batch.
func (c *Coordinator) Drain(ctx context.Context, key string, current []reconcile.Item) (DrainReport, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	entry, err := c.Cache.Get(ctx, key)
	if err != nil {
		return DrainReport{}, err
	}
	if entry == nil {
		return DrainReport{Merged: current}, nil
	}

	var incoming []reconcile.Item
	if err := json.Unmarshal(entry.Payload, &incoming); err != nil {
		return DrainReport{}, fmt.Errorf("merge: decode staged batch %s on %q: %w", entry.BatchID, key, err)
	}

	res, err := reconcile.Reconcile(current, incoming)
	if err != nil {
		return DrainReport{}, err
	}

	merged := make([]reconcile.Item, 0, len(current)+len(res.Unique))
	merged = append(merged, current...)
	merged = append(merged, res.Unique...)

	if !c.Options.KeepStaged {
		if err := c.Cache.Clear(ctx, key); err != nil {
			return DrainReport{}, err
		}
	}

	c.Metrics.IncDrain()
	c.Metrics.AddDrainedItems(len(res.Unique))
	c.Metrics.AddDuplicates(len(res.Duplicates))

	return DrainReport{
		Merged:         merged,
		Result:         res,
		Drained:        true,
		BatchID:        entry.BatchID,
		Accepted:       len(res.Unique),
		DuplicateNames: res.DuplicateNames(),
	}, nil
}
