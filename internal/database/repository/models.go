package repository

import "time"

// StagedEntry represents a staged_entries row: one channel's payload for one
// owner. Payload is opaque JSON; the store never inspects it.
type StagedEntry struct {
	OwnerID   string
	Channel   string
	BatchID   string
	Payload   []byte
	CreatedAt time.Time
	UpdatedAt time.Time
	ExpiresAt time.Time
}
