package domain

import "time"

// Record is one persisted posture observation. Immutable once created; the
// store assigns the ID and guarantees it is strictly increasing.
type Record struct {
	ID        int64
	Status    Status
	Timestamp time.Time
}
