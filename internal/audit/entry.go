// Package audit records who changed what on a resource. Entries are enqueued
// as background tasks so a failing audit write never fails the operation that
// produced it.
package audit

import (
	"time"

	"github.com/google/uuid"
)

// Entry is one audit-trail record.
type Entry struct {
	ID           uuid.UUID      `json:"id"`
	ResourceType string         `json:"resourceType"`
	ResourceID   uuid.UUID      `json:"resourceId"`
	Action       string         `json:"action"`
	ActorID      *uuid.UUID     `json:"actorId,omitempty"`
	ActorContact string         `json:"actorContact,omitempty"`
	BeforeFields map[string]any `json:"beforeFields,omitempty"`
	AfterFields  map[string]any `json:"afterFields,omitempty"`
	CreatedAt    time.Time      `json:"createdAt"`
}

// Audit actions.
const (
	ActionCreated       = "created"
	ActionUpdated       = "updated"
	ActionStatusChanged = "status_changed"
	ActionDeleted       = "deleted"
)

// ResourceQuotation is the resource type for quotation records.
const ResourceQuotation = "quotation"
