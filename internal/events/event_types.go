package events

import (
	"time"

	"github.com/kopaska88/pengaduan-jokerbola/internal/domain"
)

// EventType enumerates supported event identifiers.
type EventType string

const (
	EventTicketCreated   EventType = "ticket_created"
	EventStatusChecked   EventType = "status_checked"
	EventNotifyExhausted EventType = "notify_exhausted"
)

// Event represents a domain event emitted by the conversation flow.
type Event struct {
	ID        string      `json:"id"`
	Type      EventType   `json:"type"`
	TicketID  string      `json:"ticket_id"`
	UserID    int64       `json:"user_id"`
	Timestamp time.Time   `json:"timestamp"`
	Payload   interface{} `json:"payload"`
}

// TicketCreatedPayload carries the full persisted record so the
// notifier can format the operator alert without re-reading the store.
type TicketCreatedPayload struct {
	Record domain.TicketRecord `json:"record"`
}

// StatusCheckedPayload records the outcome of a lookup.
type StatusCheckedPayload struct {
	Found bool `json:"found"`
}

// NotifyExhaustedPayload records a fan-out that never reached anyone.
type NotifyExhaustedPayload struct {
	Attempts int `json:"attempts"`
}
