package domain

import (
	"fmt"
	"maps"
	"strings"

	"github.com/google/uuid"
)

// Reject reasons returned by ApplyUpdate. These surface to callers unchanged
// as machine-readable codes.
const (
	ReasonRateLocked            = "RATE_LOCKED"
	ReasonCloseReasonRequired   = "CLOSE_REASON_REQUIRED"
	ReasonImmutableFieldChanged = "IMMUTABLE_FIELD_CHANGED"
	ReasonValidationFailed      = "VALIDATION_FAILED"
)

// Rejection is a business-rule rejection of an update. It is request-level,
// never process-fatal, and carries a reason code for the HTTP layer.
type Rejection struct {
	Reason  string
	Message string
}

func (r *Rejection) Error() string {
	return fmt.Sprintf("%s: %s", r.Reason, r.Message)
}

func reject(reason, message string) error {
	return &Rejection{Reason: reason, Message: message}
}

// Snapshot is the persisted state of a quotation as seen by the engine. The
// orchestrator owns the aggregate: snapshots are produced only by ApplyUpdate
// (or by the create path) and are treated as immutable values.
type Snapshot struct {
	ID                uuid.UUID      `json:"id"`
	ReferenceNumber   string         `json:"referenceNumber"`
	CustomerName      string         `json:"customerName"`
	Origin            string         `json:"origin"`
	Destination       string         `json:"destination"`
	CargoDescription  string         `json:"cargoDescription"`
	Status            Status         `json:"status"`
	CloseReason       string         `json:"closeReason,omitempty"`
	Attributes        map[string]any `json:"attributes,omitempty"`
	CarrierRates      []RateItem     `json:"carrierRates"`
	ExtraServiceRates []RateItem     `json:"extraServiceRates"`
	CustomerRates     []RateItem     `json:"customerRates"`
	Offers            []Offer        `json:"offers"`
	EstimatedCost     float64        `json:"estimatedCost"`
	Profit            Money          `json:"profit"`
}

// UpdatePatch is a partial change request against a snapshot. Nil pointer
// fields are "leave unchanged". The four collection fields carry raw,
// loosely-typed input; their Has flags record whether the request included
// the field at all.
type UpdatePatch struct {
	ReferenceNumber  *string
	CustomerName     *string
	Origin           *string
	Destination      *string
	CargoDescription *string
	Status           *Status
	CloseReason      *string
	Attributes       map[string]any

	CarrierRates         any
	HasCarrierRates      bool
	ExtraServiceRates    any
	HasExtraServiceRates bool
	CustomerRates        any
	HasCustomerRates     bool
	Offers               any
	HasOffers            bool
}

// AuditDiff captures the mutable top-level fields of a quotation before and
// after an update, for the audit trail.
type AuditDiff struct {
	Before map[string]any `json:"before"`
	After  map[string]any `json:"after"`
}

// ApplyUpdate merges a partial change request into the current snapshot and
// returns the next snapshot plus an audit diff, or a *Rejection. This is the
// only composition point of the rate pipeline, the offer pipeline and the
// lifecycle gates: the rate-lock and close-reason checks depend on the
// current stored state, not just the incoming request.
//
// The derived fields (estimated cost, profit) are always recomputed from the
// resulting collections; any caller-supplied values for them are ignored.
func ApplyUpdate(current Snapshot, patch UpdatePatch, defaultCurrency string) (Snapshot, AuditDiff, error) {
	if defaultCurrency == "" {
		defaultCurrency = DefaultCurrency
	}

	// Normalize the stored state first so the lock comparison below is
	// content-based, not representation-based.
	curCarrier := cloneRates(current.CarrierRates)
	curExtra := cloneRates(current.ExtraServiceRates)
	curCustomer := ResolvePrimary(current.CustomerRates)
	curOffers := EnsureOfferSequence(cloneOffers(current.Offers))

	targetStatus := current.Status
	if patch.Status != nil {
		targetStatus = *patch.Status
		if !IsValidStatus(targetStatus) {
			return Snapshot{}, AuditDiff{}, reject(ReasonValidationFailed,
				fmt.Sprintf("unknown status %q", targetStatus))
		}
	}

	if patch.ReferenceNumber != nil {
		requested := strings.TrimSpace(*patch.ReferenceNumber)
		if current.ReferenceNumber != "" && requested != current.ReferenceNumber {
			return Snapshot{}, AuditDiff{}, reject(ReasonImmutableFieldChanged,
				"reference number cannot be changed")
		}
	}

	nextCarrier := curCarrier
	if patch.HasCarrierRates {
		nextCarrier = NormalizeRates(patch.CarrierRates, defaultCurrency)
	}
	nextExtra := curExtra
	if patch.HasExtraServiceRates {
		nextExtra = NormalizeRates(patch.ExtraServiceRates, defaultCurrency)
	}
	nextCustomer := curCustomer
	if patch.HasCustomerRates {
		nextCustomer = ResolvePrimary(NormalizeRates(patch.CustomerRates, defaultCurrency))
	}
	nextOffers := curOffers
	if patch.HasOffers {
		nextOffers = EnsureOfferSequence(NormalizeOffers(patch.Offers, defaultCurrency))
	}

	if IsRateEditLocked(targetStatus) {
		if !RatesEqual(nextCarrier, curCarrier) ||
			!RatesEqual(nextExtra, curExtra) ||
			!RatesEqual(nextCustomer, curCustomer) {
			return Snapshot{}, AuditDiff{}, reject(ReasonRateLocked,
				"rates are locked after confirmation")
		}
	}

	closeReason := strings.TrimSpace(current.CloseReason)
	if patch.CloseReason != nil {
		closeReason = strings.TrimSpace(*patch.CloseReason)
	}
	if RequiresCloseReason(targetStatus) {
		if closeReason == "" {
			return Snapshot{}, AuditDiff{}, reject(ReasonCloseReasonRequired,
				"close reason is required when closing or cancelling")
		}
	} else {
		// Only CLOSED and CANCELLED carry a close reason.
		closeReason = ""
	}

	next := current
	next.Status = targetStatus
	next.CloseReason = closeReason
	next.CarrierRates = nextCarrier
	next.ExtraServiceRates = nextExtra
	next.CustomerRates = nextCustomer
	next.Offers = MaterializeOffers(nextOffers, current.ID)
	next.EstimatedCost = ComputeEstimatedCost(nextCarrier, nextExtra)
	next.Profit = ComputeProfit(PrimaryRate(nextCustomer), nextCarrier, nextExtra, defaultCurrency)

	if patch.CustomerName != nil {
		next.CustomerName = strings.TrimSpace(*patch.CustomerName)
	}
	if patch.Origin != nil {
		next.Origin = strings.TrimSpace(*patch.Origin)
	}
	if patch.Destination != nil {
		next.Destination = strings.TrimSpace(*patch.Destination)
	}
	if patch.CargoDescription != nil {
		next.CargoDescription = strings.TrimSpace(*patch.CargoDescription)
	}

	next.Attributes = maps.Clone(current.Attributes)
	if len(patch.Attributes) > 0 {
		if next.Attributes == nil {
			next.Attributes = make(map[string]any, len(patch.Attributes))
		}
		maps.Copy(next.Attributes, patch.Attributes)
	}

	diff := AuditDiff{
		Before: auditFields(current),
		After:  auditFields(next),
	}
	return next, diff, nil
}

// auditFields projects the mutable top-level fields of a snapshot for the
// before/after audit record.
func auditFields(s Snapshot) map[string]any {
	return map[string]any{
		"status":           string(s.Status),
		"closeReason":      s.CloseReason,
		"customerName":     s.CustomerName,
		"origin":           s.Origin,
		"destination":      s.Destination,
		"cargoDescription": s.CargoDescription,
		"estimatedCost":    s.EstimatedCost,
		"profit":           s.Profit,
	}
}

func cloneRates(items []RateItem) []RateItem {
	cloned := make([]RateItem, len(items))
	copy(cloned, items)
	return cloned
}

func cloneOffers(offers []Offer) []Offer {
	cloned := make([]Offer, len(offers))
	copy(cloned, offers)
	return cloned
}
