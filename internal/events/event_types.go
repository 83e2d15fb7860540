package events

import (
	"time"

	"github.com/spec-kit/talent-gateway/internal/domain"
)

// EventType enumerates supported event identifiers.
type EventType string

const (
	EventLoginSucceeded  EventType = "login_succeeded"
	EventLoginFailed     EventType = "login_failed"
	EventSessionRejected EventType = "session_rejected"
	EventUpstreamFailed  EventType = "upstream_failed"
	EventBreakerChanged  EventType = "breaker_changed"
)

// Event represents an audit event emitted by gateway components. Events are
// fire-and-forget; nothing is persisted.
type Event struct {
	ID        string      `json:"id"`
	Type      EventType   `json:"type"`
	Timestamp time.Time   `json:"timestamp"`
	Payload   interface{} `json:"payload"`
}

// LoginSucceededPayload payload.
type LoginSucceededPayload struct {
	SubjectID string      `json:"subject_id"`
	Role      domain.Role `json:"role"`
}

// LoginFailedPayload payload. Carries the email only; the password never
// enters the event pipeline.
type LoginFailedPayload struct {
	Email  string `json:"email"`
	Reason string `json:"reason"`
}

// SessionRejectedPayload payload.
type SessionRejectedPayload struct {
	Path   string `json:"path"`
	Reason string `json:"reason"`
}

// UpstreamFailedPayload payload.
type UpstreamFailedPayload struct {
	Path  string `json:"path"`
	Cause string `json:"cause"`
}

// BreakerChangedPayload payload.
type BreakerChangedPayload struct {
	From string `json:"from"`
	To   string `json:"to"`
}
