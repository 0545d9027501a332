package domain

// StatusEvent is the payload every observer receives, one per persisted
// record, in per-connection append order.
type StatusEvent struct {
	ID        int64  `json:"id"`
	Status    string `json:"status"`
	Timestamp string `json:"timestamp"`
}
