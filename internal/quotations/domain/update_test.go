package domain

import (
	"errors"
	"testing"

	"github.com/google/uuid"
)

func baseSnapshot() Snapshot {
	return Snapshot{
		ID:              uuid.New(),
		ReferenceNumber: "FRT-2026-0042",
		CustomerName:    "Acme Trading",
		Origin:          "Rotterdam",
		Destination:     "Singapore",
		Status:          StatusQuotation,
		CustomerRates: []RateItem{
			{Name: "Sell", Currency: "USD", Amount: 1000, IsPrimary: true},
		},
		CarrierRates:      []RateItem{{Name: "Ocean", Currency: "USD", Amount: 600}},
		ExtraServiceRates: []RateItem{{Name: "Customs", Currency: "USD", Amount: 150}},
		Offers: []Offer{
			{ID: "offer-a", Order: 0, OfferNumber: "1", TransportMode: "sea", Currency: "USD", Rate: 1000},
		},
	}
}

func rejectionReason(t *testing.T, err error) string {
	t.Helper()
	var rej *Rejection
	if !errors.As(err, &rej) {
		t.Fatalf("expected a *Rejection, got %v", err)
	}
	return rej.Reason
}

func statusPtr(s Status) *Status { return &s }

func strPtr(s string) *string { return &s }

func TestApplyUpdateRecomputesDerivedFields(t *testing.T) {
	current := baseSnapshot()
	// Stale derived values on the stored snapshot must be overwritten.
	current.EstimatedCost = 99999
	current.Profit = Money{Currency: "EUR", Amount: 99999}

	next, diff, err := ApplyUpdate(current, UpdatePatch{}, "USD")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if next.EstimatedCost != 750 {
		t.Errorf("expected estimated cost 750, got %v", next.EstimatedCost)
	}
	if next.Profit.Amount != 250 || next.Profit.Currency != "USD" {
		t.Errorf("expected profit 250 USD, got %+v", next.Profit)
	}
	if diff.After["estimatedCost"] != 750.0 {
		t.Errorf("audit diff should carry recomputed cost, got %v", diff.After["estimatedCost"])
	}
}

func TestApplyUpdateRateLock(t *testing.T) {
	current := baseSnapshot()
	current.Status = StatusConfirmed

	// Changing a carrier amount while locked is rejected.
	patch := UpdatePatch{
		CarrierRates: []any{
			map[string]any{"name": "Ocean", "currency": "USD", "amount": 500.0},
		},
		HasCarrierRates: true,
	}
	_, _, err := ApplyUpdate(current, patch, "USD")
	if got := rejectionReason(t, err); got != ReasonRateLocked {
		t.Fatalf("expected RATE_LOCKED, got %s", got)
	}

	// Resubmitting identical content while locked succeeds.
	identical := UpdatePatch{
		CarrierRates: []any{
			map[string]any{"name": "Ocean", "currency": "USD", "amount": 600.0},
		},
		HasCarrierRates: true,
	}
	if _, _, err := ApplyUpdate(current, identical, "USD"); err != nil {
		t.Fatalf("identical rates must pass the lock, got %v", err)
	}
}

func TestApplyUpdateLockOnTransitionIntoConfirmed(t *testing.T) {
	current := baseSnapshot() // QUOTATION, unlocked

	// Moving to CONFIRMED with untouched rates succeeds.
	next, _, err := ApplyUpdate(current, UpdatePatch{Status: statusPtr(StatusConfirmed)}, "USD")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if next.Status != StatusConfirmed {
		t.Fatalf("expected CONFIRMED, got %s", next.Status)
	}

	// Moving to CONFIRMED while also changing rates is rejected: the lock
	// applies to the target status.
	patch := UpdatePatch{
		Status: statusPtr(StatusConfirmed),
		CustomerRates: []any{
			map[string]any{"name": "Sell", "currency": "USD", "amount": 1100.0, "isPrimary": true},
		},
		HasCustomerRates: true,
	}
	_, _, err = ApplyUpdate(current, patch, "USD")
	if got := rejectionReason(t, err); got != ReasonRateLocked {
		t.Fatalf("expected RATE_LOCKED, got %s", got)
	}
}

func TestApplyUpdateScalarEditAllowedWhileLocked(t *testing.T) {
	current := baseSnapshot()
	current.Status = StatusOngoing

	next, _, err := ApplyUpdate(current, UpdatePatch{CargoDescription: strPtr("  20ft reefer, bananas ")}, "USD")
	if err != nil {
		t.Fatalf("scalar edits must pass while rates are locked, got %v", err)
	}
	if next.CargoDescription != "20ft reefer, bananas" {
		t.Errorf("expected trimmed cargo description, got %q", next.CargoDescription)
	}
}

func TestApplyUpdateCloseReasonGate(t *testing.T) {
	current := baseSnapshot()

	// Closing without a reason is rejected; whitespace does not count.
	_, _, err := ApplyUpdate(current, UpdatePatch{Status: statusPtr(StatusClosed), CloseReason: strPtr("   ")}, "USD")
	if got := rejectionReason(t, err); got != ReasonCloseReasonRequired {
		t.Fatalf("expected CLOSE_REASON_REQUIRED, got %s", got)
	}

	// With a reason it succeeds and the reason persists.
	next, _, err := ApplyUpdate(current, UpdatePatch{Status: statusPtr(StatusClosed), CloseReason: strPtr("client cancelled")}, "USD")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if next.CloseReason != "client cancelled" {
		t.Fatalf("expected close reason persisted, got %q", next.CloseReason)
	}

	// A later unrelated edit that omits the reason keeps the stored one.
	later, _, err := ApplyUpdate(next, UpdatePatch{CustomerName: strPtr("Acme Trading BV")}, "USD")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if later.CloseReason != "client cancelled" {
		t.Errorf("stored close reason must be retained, got %q", later.CloseReason)
	}
}

func TestApplyUpdateClearsCloseReasonOutsideTerminalStatuses(t *testing.T) {
	current := baseSnapshot()
	current.Status = StatusCancelled
	current.CloseReason = "duplicate request"

	// Reopening drops the reason: only CLOSED/CANCELLED may carry one.
	next, _, err := ApplyUpdate(current, UpdatePatch{Status: statusPtr(StatusCreated)}, "USD")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if next.CloseReason != "" {
		t.Errorf("expected close reason cleared, got %q", next.CloseReason)
	}
}

func TestApplyUpdateImmutableReferenceNumber(t *testing.T) {
	current := baseSnapshot()

	_, _, err := ApplyUpdate(current, UpdatePatch{ReferenceNumber: strPtr("FRT-2026-9999")}, "USD")
	if got := rejectionReason(t, err); got != ReasonImmutableFieldChanged {
		t.Fatalf("expected IMMUTABLE_FIELD_CHANGED, got %s", got)
	}

	// Echoing the current value back is not a change.
	if _, _, err := ApplyUpdate(current, UpdatePatch{ReferenceNumber: strPtr("FRT-2026-0042")}, "USD"); err != nil {
		t.Fatalf("echoed reference number must be accepted, got %v", err)
	}
}

func TestApplyUpdateUnknownStatus(t *testing.T) {
	current := baseSnapshot()
	_, _, err := ApplyUpdate(current, UpdatePatch{Status: statusPtr("TELEPORTED")}, "USD")
	if got := rejectionReason(t, err); got != ReasonValidationFailed {
		t.Fatalf("expected VALIDATION_FAILED, got %s", got)
	}
}

func TestApplyUpdateBackwardTransitionAllowed(t *testing.T) {
	current := baseSnapshot()
	current.Status = StatusReleased

	next, _, err := ApplyUpdate(current, UpdatePatch{Status: statusPtr(StatusCreated)}, "USD")
	if err != nil {
		t.Fatalf("corrective backward transitions are allowed, got %v", err)
	}
	if next.Status != StatusCreated {
		t.Fatalf("expected CREATED, got %s", next.Status)
	}
}

func TestApplyUpdateMergesAttributes(t *testing.T) {
	current := baseSnapshot()
	current.Attributes = map[string]any{"incoterm": "FOB", "etd": "2026-09-15"}

	next, _, err := ApplyUpdate(current, UpdatePatch{
		Attributes: map[string]any{"etd": "2026-09-20", "notes": "priority"},
	}, "USD")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if next.Attributes["incoterm"] != "FOB" {
		t.Error("unspecified attribute keys must be preserved")
	}
	if next.Attributes["etd"] != "2026-09-20" {
		t.Error("patched attribute key must win")
	}
	if next.Attributes["notes"] != "priority" {
		t.Error("new attribute key must be added")
	}
	if current.Attributes["etd"] != "2026-09-15" {
		t.Error("current snapshot must not be mutated")
	}
}

func TestApplyUpdateReplacesOffersAndStampsOwner(t *testing.T) {
	current := baseSnapshot()

	patch := UpdatePatch{
		Offers: []any{
			map[string]any{"transportMode": "sea", "rate": 900.0},
			map[string]any{"transportMode": "air", "rate": 2100.0},
		},
		HasOffers: true,
	}

	next, _, err := ApplyUpdate(current, patch, "USD")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if len(next.Offers) != 2 {
		t.Fatalf("expected 2 offers, got %d", len(next.Offers))
	}
	for i, offer := range next.Offers {
		if offer.Order != i {
			t.Errorf("offer %d: expected order %d, got %d", i, i, offer.Order)
		}
		if offer.QuotationID != current.ID.String() {
			t.Errorf("offer %d not stamped with owning quotation", i)
		}
	}
	if next.Offers[0].OfferNumber != "1" || next.Offers[1].OfferNumber != "2" {
		t.Errorf("expected offer numbers 1,2, got %q,%q", next.Offers[0].OfferNumber, next.Offers[1].OfferNumber)
	}
}

func TestApplyUpdateAuditDiff(t *testing.T) {
	current := baseSnapshot()

	_, diff, err := ApplyUpdate(current, UpdatePatch{CustomerName: strPtr("New Name")}, "USD")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if diff.Before["customerName"] != "Acme Trading" {
		t.Errorf("before snapshot wrong: %v", diff.Before["customerName"])
	}
	if diff.After["customerName"] != "New Name" {
		t.Errorf("after snapshot wrong: %v", diff.After["customerName"])
	}
	if _, ok := diff.After["closeReason"]; !ok {
		t.Error("audit diff must always carry the close reason field")
	}
}
