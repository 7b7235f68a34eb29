package service

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"freightdesk_backend/internal/events"
	"freightdesk_backend/internal/quotations/domain"
	"freightdesk_backend/internal/quotations/repository"
	"freightdesk_backend/internal/quotations/transport"
	"freightdesk_backend/platform/apperr"

	"github.com/google/uuid"
)

// AuditReader is the narrow interface the quotations service needs to list the
// audit trail of a record. Implemented by an adapter in internal/adapters that
// wraps the audit repository.
type AuditReader interface {
	ListByResource(ctx context.Context, resourceType string, resourceID uuid.UUID) ([]AuditEntry, error)
}

// AuditEntry captures an audit record without importing the audit domain.
type AuditEntry struct {
	ID           uuid.UUID
	Action       string
	ActorID      *uuid.UUID
	ActorContact string
	BeforeFields map[string]any
	AfterFields  map[string]any
	CreatedAt    time.Time
}

// Actor identifies who performed an operation, taken from the request identity.
type Actor struct {
	ID    *uuid.UUID
	Email string
}

// Service provides business logic for quotations. Every write funnels through
// the update orchestrator so the rate-lock and close-reason gates cannot be
// bypassed by any endpoint.
type Service struct {
	repo            *repository.Repository
	bus             events.Bus
	audit           AuditReader // optional — nil means no audit listing
	defaultCurrency string
}

// New creates a new quotations service.
func New(repo *repository.Repository, bus events.Bus, defaultCurrency string) *Service {
	if defaultCurrency == "" {
		defaultCurrency = domain.DefaultCurrency
	}
	return &Service{repo: repo, bus: bus, defaultCurrency: defaultCurrency}
}

// SetAuditReader injects the audit reader (set after construction to break circular deps).
func (s *Service) SetAuditReader(ar AuditReader) {
	s.audit = ar
}

// Create creates a new quotation, generating the immutable reference number
// and deriving estimated cost and profit server-side.
func (s *Service) Create(ctx context.Context, actor Actor, req transport.CreateQuotationRequest) (*transport.QuotationResponse, error) {
	refNumber, err := s.repo.NextReferenceNumber(ctx)
	if err != nil {
		return nil, fmt.Errorf("generate reference number: %w", err)
	}

	carrier := domain.NormalizeRates(decodeCollection(req.CarrierRates), s.defaultCurrency)
	extra := domain.NormalizeRates(decodeCollection(req.ExtraServiceRates), s.defaultCurrency)
	customer := domain.ResolvePrimary(domain.NormalizeRates(decodeCollection(req.CustomerRates), s.defaultCurrency))
	offers := domain.EnsureOfferSequence(domain.NormalizeOffers(decodeCollection(req.Offers), s.defaultCurrency))

	id := uuid.New()
	profit := domain.ComputeProfit(domain.PrimaryRate(customer), carrier, extra, s.defaultCurrency)
	now := time.Now()

	record := repository.Quotation{
		ID:                id,
		ReferenceNumber:   refNumber,
		CustomerName:      req.CustomerName,
		Origin:            req.Origin,
		Destination:       req.Destination,
		CargoDescription:  req.CargoDescription,
		Status:            string(domain.StatusCreated),
		Attributes:        req.Attributes,
		CarrierRates:      carrier,
		ExtraServiceRates: extra,
		CustomerRates:     customer,
		Offers:            domain.MaterializeOffers(offers, id),
		EstimatedCost:     domain.ComputeEstimatedCost(carrier, extra),
		ProfitCurrency:    profit.Currency,
		ProfitAmount:      profit.Amount,
		Version:           1,
		CreatedAt:         now,
		UpdatedAt:         now,
	}

	if err := s.repo.Create(ctx, &record); err != nil {
		return nil, err
	}

	s.bus.Publish(ctx, events.QuotationCreated{
		BaseEvent:       events.NewBaseEvent(),
		QuotationID:     record.ID,
		ReferenceNumber: record.ReferenceNumber,
		CustomerName:    record.CustomerName,
		ActorID:         actor.ID,
		ActorEmail:      actor.Email,
	})

	resp := toResponse(&record)
	return &resp, nil
}

// GetByID retrieves a single quotation.
func (s *Service) GetByID(ctx context.Context, id uuid.UUID) (*transport.QuotationResponse, error) {
	record, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	resp := toResponse(record)
	return &resp, nil
}

// List retrieves quotations with filtering and pagination.
func (s *Service) List(ctx context.Context, req transport.ListQuotationsRequest) (*transport.QuotationListResponse, error) {
	params := repository.ListParams{
		Search:    req.Search,
		SortBy:    req.SortBy,
		SortOrder: req.SortOrder,
		Page:      req.Page,
		PageSize:  req.PageSize,
	}
	if req.Status != "" {
		params.Status = &req.Status
	}
	if params.Page < 1 {
		params.Page = 1
	}
	if params.PageSize < 1 {
		params.PageSize = 20
	}

	result, err := s.repo.List(ctx, params)
	if err != nil {
		return nil, err
	}

	items := make([]transport.QuotationResponse, len(result.Items))
	for i := range result.Items {
		items[i] = toResponse(&result.Items[i])
	}
	return &transport.QuotationListResponse{
		Items:      items,
		Total:      result.Total,
		Page:       result.Page,
		PageSize:   result.PageSize,
		TotalPages: result.TotalPages,
	}, nil
}

// Update applies a partial change request through the orchestrator and saves
// the result under the optimistic version check. Business rejections map to
// typed errors with reason codes; a stale version maps to a retryable
// conflict without a reason code.
func (s *Service) Update(ctx context.Context, id uuid.UUID, actor Actor, req transport.UpdateQuotationRequest) (*transport.QuotationResponse, error) {
	record, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	current := toSnapshot(record)
	patch := toPatch(req)

	next, diff, err := domain.ApplyUpdate(current, patch, s.defaultCurrency)
	if err != nil {
		return nil, mapRejection(err)
	}

	applySnapshot(record, next)
	if err := s.repo.Save(ctx, record, record.Version); err != nil {
		return nil, err
	}
	record.Version++

	s.publishUpdated(ctx, record, actor, current, next, diff)

	resp := toResponse(record)
	return &resp, nil
}

// UpdateStatus changes only the lifecycle status. It reuses the full update
// path so the close-reason and rate-lock gates apply identically.
func (s *Service) UpdateStatus(ctx context.Context, id uuid.UUID, actor Actor, req transport.UpdateStatusRequest) (*transport.QuotationResponse, error) {
	return s.Update(ctx, id, actor, transport.UpdateQuotationRequest{
		Status:      &req.Status,
		CloseReason: req.CloseReason,
	})
}

// Delete removes a quotation.
func (s *Service) Delete(ctx context.Context, id uuid.UUID, actor Actor) error {
	record, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if err := s.repo.Delete(ctx, id); err != nil {
		return err
	}

	s.bus.Publish(ctx, events.QuotationDeleted{
		BaseEvent:       events.NewBaseEvent(),
		QuotationID:     record.ID,
		ReferenceNumber: record.ReferenceNumber,
		ActorID:         actor.ID,
		ActorEmail:      actor.Email,
	})
	return nil
}

// ListAudit returns the audit trail for a quotation, newest first.
func (s *Service) ListAudit(ctx context.Context, id uuid.UUID) ([]transport.AuditEntryResponse, error) {
	if _, err := s.repo.GetByID(ctx, id); err != nil {
		return nil, err
	}
	if s.audit == nil {
		return []transport.AuditEntryResponse{}, nil
	}

	entries, err := s.audit.ListByResource(ctx, "quotation", id)
	if err != nil {
		return nil, err
	}

	out := make([]transport.AuditEntryResponse, len(entries))
	for i, e := range entries {
		out[i] = transport.AuditEntryResponse{
			ID:           e.ID,
			Action:       e.Action,
			ActorID:      e.ActorID,
			ActorContact: e.ActorContact,
			BeforeFields: e.BeforeFields,
			AfterFields:  e.AfterFields,
			CreatedAt:    e.CreatedAt,
		}
	}
	return out, nil
}

func (s *Service) publishUpdated(ctx context.Context, record *repository.Quotation, actor Actor, before, after domain.Snapshot, diff domain.AuditDiff) {
	s.bus.Publish(ctx, events.QuotationUpdated{
		BaseEvent:       events.NewBaseEvent(),
		QuotationID:     record.ID,
		ReferenceNumber: record.ReferenceNumber,
		ActorID:         actor.ID,
		ActorEmail:      actor.Email,
		BeforeFields:    diff.Before,
		AfterFields:     diff.After,
	})

	if before.Status != after.Status {
		s.bus.Publish(ctx, events.QuotationStatusChanged{
			BaseEvent:       events.NewBaseEvent(),
			QuotationID:     record.ID,
			ReferenceNumber: record.ReferenceNumber,
			OldStatus:       string(before.Status),
			NewStatus:       string(after.Status),
			CloseReason:     after.CloseReason,
			ActorID:         actor.ID,
			ActorEmail:      actor.Email,
		})
	}
}

// mapRejection converts orchestrator rejections into typed API errors.
// RATE_LOCKED is a state conflict; the rest are validation failures.
func mapRejection(err error) error {
	rej, ok := err.(*domain.Rejection)
	if !ok {
		return apperr.Wrap(apperr.KindInternal, "update failed", err)
	}
	switch rej.Reason {
	case domain.ReasonRateLocked:
		return apperr.Conflict(rej.Message).WithCode(rej.Reason)
	default:
		return apperr.Validation(rej.Message).WithCode(rej.Reason)
	}
}

// decodeCollection turns a raw JSON field into the loosely-typed value the
// lenient normalizer expects. Malformed JSON becomes nil, which normalizes to
// an empty collection rather than failing the request.
func decodeCollection(raw json.RawMessage) any {
	if len(raw) == 0 {
		return nil
	}
	var v any
	if err := json.Unmarshal(raw, &v); err != nil {
		return nil
	}
	return v
}

func toSnapshot(q *repository.Quotation) domain.Snapshot {
	return domain.Snapshot{
		ID:                q.ID,
		ReferenceNumber:   q.ReferenceNumber,
		CustomerName:      q.CustomerName,
		Origin:            q.Origin,
		Destination:       q.Destination,
		CargoDescription:  q.CargoDescription,
		Status:            domain.Status(q.Status),
		CloseReason:       q.CloseReason,
		Attributes:        q.Attributes,
		CarrierRates:      q.CarrierRates,
		ExtraServiceRates: q.ExtraServiceRates,
		CustomerRates:     q.CustomerRates,
		Offers:            q.Offers,
		EstimatedCost:     q.EstimatedCost,
		Profit:            domain.Money{Currency: q.ProfitCurrency, Amount: q.ProfitAmount},
	}
}

func applySnapshot(q *repository.Quotation, s domain.Snapshot) {
	q.CustomerName = s.CustomerName
	q.Origin = s.Origin
	q.Destination = s.Destination
	q.CargoDescription = s.CargoDescription
	q.Status = string(s.Status)
	q.CloseReason = s.CloseReason
	q.Attributes = s.Attributes
	q.CarrierRates = s.CarrierRates
	q.ExtraServiceRates = s.ExtraServiceRates
	q.CustomerRates = s.CustomerRates
	q.Offers = s.Offers
	q.EstimatedCost = s.EstimatedCost
	q.ProfitCurrency = s.Profit.Currency
	q.ProfitAmount = s.Profit.Amount
}

func toPatch(req transport.UpdateQuotationRequest) domain.UpdatePatch {
	patch := domain.UpdatePatch{
		ReferenceNumber:  req.ReferenceNumber,
		CustomerName:     req.CustomerName,
		Origin:           req.Origin,
		Destination:      req.Destination,
		CargoDescription: req.CargoDescription,
		CloseReason:      req.CloseReason,
		Attributes:       req.Attributes,
	}
	if req.Status != nil {
		status := domain.Status(*req.Status)
		patch.Status = &status
	}
	if len(req.CarrierRates) > 0 {
		patch.CarrierRates = decodeCollection(req.CarrierRates)
		patch.HasCarrierRates = true
	}
	if len(req.ExtraServiceRates) > 0 {
		patch.ExtraServiceRates = decodeCollection(req.ExtraServiceRates)
		patch.HasExtraServiceRates = true
	}
	if len(req.CustomerRates) > 0 {
		patch.CustomerRates = decodeCollection(req.CustomerRates)
		patch.HasCustomerRates = true
	}
	if len(req.Offers) > 0 {
		patch.Offers = decodeCollection(req.Offers)
		patch.HasOffers = true
	}
	return patch
}

func toResponse(q *repository.Quotation) transport.QuotationResponse {
	return transport.QuotationResponse{
		ID:                q.ID,
		ReferenceNumber:   q.ReferenceNumber,
		CustomerName:      q.CustomerName,
		Origin:            q.Origin,
		Destination:       q.Destination,
		CargoDescription:  q.CargoDescription,
		Status:            domain.Status(q.Status),
		CloseReason:       q.CloseReason,
		Attributes:        q.Attributes,
		CarrierRates:      emptyIfNilRates(q.CarrierRates),
		ExtraServiceRates: emptyIfNilRates(q.ExtraServiceRates),
		CustomerRates:     emptyIfNilRates(q.CustomerRates),
		Offers:            emptyIfNilOffers(q.Offers),
		EstimatedCost:     q.EstimatedCost,
		Profit:            domain.Money{Currency: q.ProfitCurrency, Amount: q.ProfitAmount},
		Version:           q.Version,
		CreatedAt:         q.CreatedAt,
		UpdatedAt:         q.UpdatedAt,
	}
}

func emptyIfNilRates(items []domain.RateItem) []domain.RateItem {
	if items == nil {
		return []domain.RateItem{}
	}
	return items
}

func emptyIfNilOffers(offers []domain.Offer) []domain.Offer {
	if offers == nil {
		return []domain.Offer{}
	}
	return offers
}
