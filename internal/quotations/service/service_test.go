package service

import (
	"encoding/json"
	"testing"

	"freightdesk_backend/internal/quotations/domain"
	"freightdesk_backend/internal/quotations/repository"
	"freightdesk_backend/internal/quotations/transport"
	"freightdesk_backend/platform/apperr"

	"github.com/google/uuid"
)

func TestMapRejectionRateLockedIsConflict(t *testing.T) {
	err := mapRejection(&domain.Rejection{Reason: domain.ReasonRateLocked, Message: "rates locked"})

	if !apperr.Is(err, apperr.KindConflict) {
		t.Fatalf("expected conflict kind, got %v", apperr.GetKind(err))
	}
	if apperr.GetCode(err) != domain.ReasonRateLocked {
		t.Errorf("expected code %s, got %s", domain.ReasonRateLocked, apperr.GetCode(err))
	}
}

func TestMapRejectionOthersAreValidation(t *testing.T) {
	reasons := []string{
		domain.ReasonCloseReasonRequired,
		domain.ReasonImmutableFieldChanged,
		domain.ReasonValidationFailed,
	}
	for _, reason := range reasons {
		err := mapRejection(&domain.Rejection{Reason: reason, Message: "rejected"})
		if !apperr.Is(err, apperr.KindValidation) {
			t.Errorf("reason %s: expected validation kind, got %v", reason, apperr.GetKind(err))
		}
		if apperr.GetCode(err) != reason {
			t.Errorf("reason %s: expected matching code, got %s", reason, apperr.GetCode(err))
		}
	}
}

func TestMapRejectionUntypedErrorIsInternal(t *testing.T) {
	err := mapRejection(json.Unmarshal([]byte("{"), &struct{}{}))
	if !apperr.Is(err, apperr.KindInternal) {
		t.Fatalf("expected internal kind, got %v", apperr.GetKind(err))
	}
}

func TestToPatchTracksCollectionPresence(t *testing.T) {
	req := transport.UpdateQuotationRequest{
		CarrierRates: json.RawMessage(`[{"name":"Ocean freight","amount":100}]`),
	}

	patch := toPatch(req)

	if !patch.HasCarrierRates {
		t.Error("expected carrier rates to be marked present")
	}
	if patch.HasExtraServiceRates || patch.HasCustomerRates || patch.HasOffers {
		t.Error("absent collections must not be marked present")
	}
}

func TestToPatchExplicitNullReplacesCollection(t *testing.T) {
	req := transport.UpdateQuotationRequest{
		Offers: json.RawMessage(`null`),
	}

	patch := toPatch(req)

	if !patch.HasOffers {
		t.Fatal("explicit null should count as a replacement")
	}
	if patch.Offers != nil {
		t.Errorf("expected nil collection value, got %v", patch.Offers)
	}
}

func TestToPatchConvertsStatus(t *testing.T) {
	status := "CONFIRMED"
	patch := toPatch(transport.UpdateQuotationRequest{Status: &status})

	if patch.Status == nil || *patch.Status != domain.StatusConfirmed {
		t.Fatalf("expected status CONFIRMED, got %v", patch.Status)
	}
}

func TestDecodeCollectionToleratesGarbage(t *testing.T) {
	if got := decodeCollection(json.RawMessage(`{not json`)); got != nil {
		t.Errorf("malformed JSON should decode to nil, got %v", got)
	}
	if got := decodeCollection(nil); got != nil {
		t.Errorf("empty input should decode to nil, got %v", got)
	}

	got := decodeCollection(json.RawMessage(`[{"name":"Fuel surcharge"}]`))
	list, ok := got.([]any)
	if !ok || len(list) != 1 {
		t.Fatalf("expected one-element list, got %v", got)
	}
}

func TestSnapshotRoundTrip(t *testing.T) {
	q := testQuotation()
	snap := toSnapshot(q)

	if snap.Status != domain.StatusCreated {
		t.Errorf("expected status CREATED, got %s", snap.Status)
	}
	if snap.Profit.Currency != "EUR" || snap.Profit.Amount != 40 {
		t.Errorf("unexpected profit: %+v", snap.Profit)
	}

	snap.Status = domain.StatusQuotation
	snap.Profit = domain.Money{Currency: "USD", Amount: 55}
	applySnapshot(q, snap)

	if q.Status != "QUOTATION" {
		t.Errorf("expected status QUOTATION, got %s", q.Status)
	}
	if q.ProfitCurrency != "USD" || q.ProfitAmount != 55 {
		t.Errorf("profit fields not applied: %s %f", q.ProfitCurrency, q.ProfitAmount)
	}
}

func testQuotation() *repository.Quotation {
	return &repository.Quotation{
		ID:              uuid.New(),
		ReferenceNumber: "FRT-2026-0001",
		CustomerName:    "Oceanic Traders",
		Status:          "CREATED",
		CustomerRates: []domain.RateItem{
			{Name: "Door to door", Currency: "EUR", Amount: 140, IsPrimary: true},
		},
		CarrierRates: []domain.RateItem{
			{Name: "Ocean freight", Currency: "EUR", Amount: 100},
		},
		EstimatedCost:  100,
		ProfitCurrency: "EUR",
		ProfitAmount:   40,
		Version:        1,
	}
}
