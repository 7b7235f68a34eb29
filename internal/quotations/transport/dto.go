// Package transport defines the request and response shapes of the quotations
// module. Rate and offer collections are carried as raw JSON so the engine's
// lenient normalizer decides what survives, not the HTTP binding layer.
package transport

import (
	"encoding/json"
	"time"

	"freightdesk_backend/internal/quotations/domain"

	"github.com/google/uuid"
)

// ── Requests ──────────────────────────────────────────────────────────────────

// CreateQuotationRequest is the request body for creating a new quotation.
type CreateQuotationRequest struct {
	CustomerName      string          `json:"customerName" validate:"required,max=500"`
	Origin            string          `json:"origin" validate:"omitempty,max=500"`
	Destination       string          `json:"destination" validate:"omitempty,max=500"`
	CargoDescription  string          `json:"cargoDescription" validate:"omitempty,max=2000"`
	Attributes        map[string]any  `json:"attributes"`
	CarrierRates      json.RawMessage `json:"carrierRates"`
	ExtraServiceRates json.RawMessage `json:"extraServiceRates"`
	CustomerRates     json.RawMessage `json:"customerRates"`
	Offers            json.RawMessage `json:"offers"`
}

// UpdateQuotationRequest is the partial change request applied by the update
// orchestrator. Absent fields leave the stored value unchanged. Derived
// fields (estimated cost, profit) are never part of this shape — any values a
// caller sends for them are discarded by the binding.
type UpdateQuotationRequest struct {
	ReferenceNumber   *string         `json:"referenceNumber"`
	CustomerName      *string         `json:"customerName" validate:"omitempty,max=500"`
	Origin            *string         `json:"origin" validate:"omitempty,max=500"`
	Destination       *string         `json:"destination" validate:"omitempty,max=500"`
	CargoDescription  *string         `json:"cargoDescription" validate:"omitempty,max=2000"`
	Status            *string         `json:"status" validate:"omitempty,oneof=CREATED QUOTATION CONFIRMED ONGOING ARRIVED RELEASED CLOSED CANCELLED"`
	CloseReason       *string         `json:"closeReason" validate:"omitempty,max=2000"`
	Attributes        map[string]any  `json:"attributes"`
	CarrierRates      json.RawMessage `json:"carrierRates"`
	ExtraServiceRates json.RawMessage `json:"extraServiceRates"`
	CustomerRates     json.RawMessage `json:"customerRates"`
	Offers            json.RawMessage `json:"offers"`
}

// UpdateStatusRequest is the request body for the status-only endpoint. It is
// funneled through the same orchestrator as full updates so the close-reason
// and rate-lock gates apply.
type UpdateStatusRequest struct {
	Status      string  `json:"status" validate:"required,oneof=CREATED QUOTATION CONFIRMED ONGOING ARRIVED RELEASED CLOSED CANCELLED"`
	CloseReason *string `json:"closeReason" validate:"omitempty,max=2000"`
}

// ListQuotationsRequest defines the query parameters for listing quotations.
type ListQuotationsRequest struct {
	Status    string `form:"status" validate:"omitempty,oneof=CREATED QUOTATION CONFIRMED ONGOING ARRIVED RELEASED CLOSED CANCELLED"`
	Search    string `form:"search"`
	SortBy    string `form:"sortBy" validate:"omitempty,oneof=referenceNumber status customerName estimatedCost createdAt updatedAt"`
	SortOrder string `form:"sortOrder" validate:"omitempty,oneof=asc desc"`
	Page      int    `form:"page" validate:"omitempty,min=1"`
	PageSize  int    `form:"pageSize" validate:"omitempty,min=1,max=100"`
}

// ── Responses ─────────────────────────────────────────────────────────────────

// QuotationResponse is the outward shape of a quotation snapshot.
type QuotationResponse struct {
	ID                uuid.UUID         `json:"id"`
	ReferenceNumber   string            `json:"referenceNumber"`
	CustomerName      string            `json:"customerName"`
	Origin            string            `json:"origin"`
	Destination       string            `json:"destination"`
	CargoDescription  string            `json:"cargoDescription"`
	Status            domain.Status     `json:"status"`
	CloseReason       string            `json:"closeReason,omitempty"`
	Attributes        map[string]any    `json:"attributes,omitempty"`
	CarrierRates      []domain.RateItem `json:"carrierRates"`
	ExtraServiceRates []domain.RateItem `json:"extraServiceRates"`
	CustomerRates     []domain.RateItem `json:"customerRates"`
	Offers            []domain.Offer    `json:"offers"`
	EstimatedCost     float64           `json:"estimatedCost"`
	Profit            domain.Money      `json:"profit"`
	Version           int64             `json:"version"`
	CreatedAt         time.Time         `json:"createdAt"`
	UpdatedAt         time.Time         `json:"updatedAt"`
}

// QuotationListResponse is the paginated list shape.
type QuotationListResponse struct {
	Items      []QuotationResponse `json:"items"`
	Total      int                 `json:"total"`
	Page       int                 `json:"page"`
	PageSize   int                 `json:"pageSize"`
	TotalPages int                 `json:"totalPages"`
}

// AuditEntryResponse is one audit-trail record for a quotation.
type AuditEntryResponse struct {
	ID           uuid.UUID      `json:"id"`
	Action       string         `json:"action"`
	ActorID      *uuid.UUID     `json:"actorId,omitempty"`
	ActorContact string         `json:"actorContact,omitempty"`
	BeforeFields map[string]any `json:"beforeFields,omitempty"`
	AfterFields  map[string]any `json:"afterFields,omitempty"`
	CreatedAt    time.Time      `json:"createdAt"`
}
