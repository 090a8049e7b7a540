// Package events emits auth lifecycle events to Kafka for downstream
// consumers (audit trails, notification fan-out). Emission is best-effort:
// failures are logged by callers and never surfaced to clients.
package events

import (
	"context"
	"time"
)

// Event types emitted by the auth core.
const (
	TypeUserLoggedIn     = "auth.user.logged_in"
	TypeTokenRefreshed   = "auth.token.refreshed"
	TypeUserLoggedOut    = "auth.user.logged_out"
	TypeUserLoggedOutAll = "auth.user.logged_out_all"
	TypeTokensSwept      = "auth.tokens.swept"
)

// Event is a single auth lifecycle event. UserID is empty for events that
// are not tied to one user (e.g. the expiry sweep).
type Event struct {
	Type       string    `json:"type"`
	UserID     string    `json:"userId,omitempty"`
	IPAddress  string    `json:"ipAddress,omitempty"`
	DeviceInfo string    `json:"deviceInfo,omitempty"`
	Count      int64     `json:"count,omitempty"`
	OccurredAt time.Time `json:"occurredAt"`
}

// Producer emits auth events. Implementations must be safe for concurrent use.
type Producer interface {
	Emit(ctx context.Context, event Event) error
	Close() error
}

// NopProducer discards events. Used when KAFKA_BROKERS is not configured.
type NopProducer struct{}

func (NopProducer) Emit(context.Context, Event) error { return nil }
func (NopProducer) Close() error                      { return nil }
