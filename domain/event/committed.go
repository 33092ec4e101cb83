package event

import (
	"conference-lab/domain"
	"time"

	"github.com/google/uuid"
)

// Record is an event stamped with its position in the session order.
type Record struct {
	Seq   uint64    `json:"seq"`
	ID    uuid.UUID `json:"id"`
	At    time.Time `json:"at"`
	Event Event     `json:"-"`
}

// Committed is published after an event has been applied to the registry.
// State is the snapshot produced by that event; Applied is false when the
// event was a no-op (stale or duplicate target).
type Committed struct {
	Record
	Applied bool
	State   domain.Registry
}
