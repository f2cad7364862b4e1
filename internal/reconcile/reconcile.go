// Package reconcile classifies incoming pickable items against an existing
// working set as unique or duplicate, using prioritized identity signals.
// It is pure: no I/O, inputs are never mutated.
package reconcile

import (
	"fmt"
	"strings"
)

// MatchReason says which identity signal classified an item as a duplicate.
type MatchReason string

const (
	ReasonPrimaryID   MatchReason = "primary_id"
	ReasonSecondaryID MatchReason = "secondary_id"
	ReasonName        MatchReason = "name"
)

// Item is a pickable line item. PrimaryID and SecondaryID are interchangeable
// identity signals in practice (which screen produced the record decides which
// is populated); DisplayName doubles as the fallback matching key. The
// remaining fields are business payload the engine carries through unchanged.
type Item struct {
	PrimaryID   string  `json:"primaryId"`
	SecondaryID string  `json:"secondaryId,omitempty"`
	DisplayName string  `json:"displayName"`
	Quantity    float64 `json:"quantity,omitempty"`
	UnitCents   int64   `json:"unitCents,omitempty"`
	Notes       string  `json:"notes,omitempty"`
}

// Duplicate pairs a rejected incoming item with the existing item it matched.
type Duplicate struct {
	Item           Item
	MatchedAgainst Item
	Reason         MatchReason
}

// Result partitions one incoming batch. Every incoming item lands in exactly
// one of the two slices, each preserving incoming order.
type Result struct {
	Unique     []Item
	Duplicates []Duplicate
}

// DuplicateNames lists the display names of rejected items, for user feedback.
func (r Result) DuplicateNames() []string {
	if len(r.Duplicates) == 0 {
		return nil
	}
	names := make([]string, 0, len(r.Duplicates))
	for _, d := range r.Duplicates {
		names = append(names, d.Item.DisplayName)
	}
	return names
}

// InputError reports an incoming item carrying none of the three identity
// fields. Such an item can never be deduplicated later, so the whole batch is
// rejected rather than admitting it as unique.
type InputError struct {
	Index int
}

func (e *InputError) Error() string {
	return fmt.Sprintf("incoming item %d has no primary id, secondary id, or display name", e.Index)
}

type indices struct {
	byPrimary   map[string]Item
	bySecondary map[string]Item
	byName      map[string]Item
}

func buildIndices(existing []Item) indices {
	ix := indices{
		byPrimary:   make(map[string]Item, len(existing)),
		bySecondary: make(map[string]Item, len(existing)),
		byName:      make(map[string]Item, len(existing)),
	}
	ix.addAll(existing)
	return ix
}

func (ix indices) addAll(items []Item) {
	for _, it := range items {
		ix.add(it)
	}
}

// add indexes it under each identity field it carries. First writer wins so
// the earliest existing item stays the reported match.
func (ix indices) add(it Item) {
	if it.PrimaryID != "" {
		if _, seen := ix.byPrimary[it.PrimaryID]; !seen {
			ix.byPrimary[it.PrimaryID] = it
		}
	}
	if it.SecondaryID != "" {
		if _, seen := ix.bySecondary[it.SecondaryID]; !seen {
			ix.bySecondary[it.SecondaryID] = it
		}
	}
	if name := normalizeName(it.DisplayName); name != "" {
		if _, seen := ix.byName[name]; !seen {
			ix.byName[name] = it
		}
	}
}

// lookup tests the three signals in fixed priority order; the first hit wins.
func (ix indices) lookup(it Item) (Item, MatchReason, bool) {
	if it.PrimaryID != "" {
		if hit, ok := ix.byPrimary[it.PrimaryID]; ok {
			return hit, ReasonPrimaryID, true
		}
	}
	if it.SecondaryID != "" {
		if hit, ok := ix.bySecondary[it.SecondaryID]; ok {
			return hit, ReasonSecondaryID, true
		}
	}
	if name := normalizeName(it.DisplayName); name != "" {
		if hit, ok := ix.byName[name]; ok {
			return hit, ReasonName, true
		}
	}
	return Item{}, "", false
}

// normalizeName lowercases and trims surrounding whitespace, nothing more:
// names differing by internal whitespace or punctuation stay distinct.
func normalizeName(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}

// Validate rejects a batch containing any identity-less item. Staging and
// reconciliation both refuse such batches at the door.
func Validate(incoming []Item) error {
	for i, it := range incoming {
		if it.PrimaryID == "" && it.SecondaryID == "" && strings.TrimSpace(it.DisplayName) == "" {
			return &InputError{Index: i}
		}
	}
	return nil
}

// Reconcile classifies incoming against existing. Matching priority per item
// is primary id, then secondary id, then normalized display name; the first
// hit short-circuits the rest. Items matching nothing are unique, in their
// original relative order.
//
// Incoming items are only tested against existing: two incoming items that
// duplicate each other both pass. Callers needing intra-batch deduplication
// use Fold.
func Reconcile(existing, incoming []Item) (Result, error) {
	if err := Validate(incoming); err != nil {
		return Result{}, err
	}
	ix := buildIndices(existing)
	var res Result
	for _, it := range incoming {
		if hit, reason, ok := ix.lookup(it); ok {
			res.Duplicates = append(res.Duplicates, Duplicate{Item: it, MatchedAgainst: hit, Reason: reason})
			continue
		}
		res.Unique = append(res.Unique, it)
	}
	return res, nil
}

// Fold is Reconcile with intra-batch deduplication: each accepted incoming
// item joins the indices before the next is tested, so later incoming items
// duplicating an earlier one are rejected by the same three-key priority.
func Fold(existing, incoming []Item) (Result, error) {
	if err := Validate(incoming); err != nil {
		return Result{}, err
	}
	ix := buildIndices(existing)
	var res Result
	for _, it := range incoming {
		if hit, reason, ok := ix.lookup(it); ok {
			res.Duplicates = append(res.Duplicates, Duplicate{Item: it, MatchedAgainst: hit, Reason: reason})
			continue
		}
		res.Unique = append(res.Unique, it)
		ix.add(it)
	}
	return res, nil
}
