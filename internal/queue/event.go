// Package queue defines the domain events published to the message broker
// after a mutating operation commits.
package queue

import "time"

// Event types. The routing key of a message equals its type.
const (
	CompanyCreated = "company.created"
	CompanyUpdated = "company.updated"
	CompanyDeleted = "company.deleted"
	LeadCreated    = "lead.created"
	LeadUpdated    = "lead.updated"
)

// Event carries enough information for downstream consumers to log or
// notify without querying the primary database.
type Event struct {
	Type       string    `json:"type"`
	EntityID   uint64    `json:"entity_id"`
	Name       string    `json:"name,omitempty"`     // company name or lead full name
	ActorID    *uint64   `json:"actor_id,omitempty"` // nil for system changes
	Summary    string    `json:"summary,omitempty"`  // history text for company.updated
	OccurredAt time.Time `json:"occurred_at"`
}

// NewEvent stamps an event with the current UTC time.
func NewEvent(typ string, id uint64, name string, actorID *uint64) Event {
	return Event{Type: typ, EntityID: id, Name: name, ActorID: actorID, OccurredAt: time.Now().UTC()}
}
