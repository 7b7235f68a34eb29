// Package events provides domain event definitions for decoupled,
// event-driven communication between modules.
// Infrastructure (Bus, Handler) is in platform/events.
package events

import (
	"freightdesk_backend/platform/events"

	"github.com/google/uuid"
)

// Re-export platform types for convenience
type (
	Event       = events.Event
	Bus         = events.Bus
	Handler     = events.Handler
	HandlerFunc = events.HandlerFunc
	BaseEvent   = events.BaseEvent
)

// Re-export platform functions
var NewBaseEvent = events.NewBaseEvent

// =============================================================================
// Quotations Domain Events
// =============================================================================

// QuotationCreated is published when a new quotation is created.
type QuotationCreated struct {
	BaseEvent
	QuotationID     uuid.UUID  `json:"quotationId"`
	ReferenceNumber string     `json:"referenceNumber"`
	CustomerName    string     `json:"customerName"`
	ActorID         *uuid.UUID `json:"actorId,omitempty"`
	ActorEmail      string     `json:"actorEmail,omitempty"`
}

func (e QuotationCreated) EventName() string { return "quotations.quotation.created" }

// QuotationUpdated is published after an update commits. It carries the
// before/after field projection so the audit subscriber does not need to
// re-read the record.
type QuotationUpdated struct {
	BaseEvent
	QuotationID     uuid.UUID      `json:"quotationId"`
	ReferenceNumber string         `json:"referenceNumber"`
	ActorID         *uuid.UUID     `json:"actorId,omitempty"`
	ActorEmail      string         `json:"actorEmail,omitempty"`
	BeforeFields    map[string]any `json:"beforeFields"`
	AfterFields     map[string]any `json:"afterFields"`
}

func (e QuotationUpdated) EventName() string { return "quotations.quotation.updated" }

// QuotationStatusChanged is published when an update moves a quotation to a
// different lifecycle status.
type QuotationStatusChanged struct {
	BaseEvent
	QuotationID     uuid.UUID  `json:"quotationId"`
	ReferenceNumber string     `json:"referenceNumber"`
	OldStatus       string     `json:"oldStatus"`
	NewStatus       string     `json:"newStatus"`
	CloseReason     string     `json:"closeReason,omitempty"`
	ActorID         *uuid.UUID `json:"actorId,omitempty"`
	ActorEmail      string     `json:"actorEmail,omitempty"`
}

func (e QuotationStatusChanged) EventName() string { return "quotations.quotation.status_changed" }

// QuotationDeleted is published when a quotation is removed.
type QuotationDeleted struct {
	BaseEvent
	QuotationID     uuid.UUID  `json:"quotationId"`
	ReferenceNumber string     `json:"referenceNumber"`
	ActorID         *uuid.UUID `json:"actorId,omitempty"`
	ActorEmail      string     `json:"actorEmail,omitempty"`
}

func (e QuotationDeleted) EventName() string { return "quotations.quotation.deleted" }
