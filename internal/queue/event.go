// Package queue defines message payloads exchanged over the message broker.
package queue

// TicketStatusQueue is the durable queue carrying TicketStatusChanged events.
const TicketStatusQueue = "ticket.status_changed"

// TicketStatusChanged is published after every successful workflow
// transition of a support request. It carries enough context for the
// audit log without querying the primary database.
type TicketStatusChanged struct {
	TicketID   string `json:"ticket_id"`
	UserID     string `json:"user_id"`
	ActorID    string `json:"actor_id"`
	ActorRole  string `json:"actor_role"`
	FromStatus string `json:"from_status"`
	ToStatus   string `json:"to_status"`
	ChangedAt  string `json:"changed_at"`
}
