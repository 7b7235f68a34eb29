package domain

import (
	"testing"

	"github.com/google/uuid"
)

func TestNormalizeOffersGeneratesIdentity(t *testing.T) {
	raw := []any{
		map[string]any{"transportMode": " sea ", "rate": "1500,25", "grossWeight": 2400.0},
		map[string]any{"id": "existing-id", "transportMode": "air", "rate": 3200.0},
	}

	offers := NormalizeOffers(raw, "USD")

	if len(offers) != 2 {
		t.Fatalf("expected 2 offers, got %d", len(offers))
	}
	if offers[0].ID == "" {
		t.Error("expected generated id for offer without one")
	}
	if _, err := uuid.Parse(offers[0].ID); err != nil {
		t.Errorf("generated id should be a uuid, got %q", offers[0].ID)
	}
	if offers[1].ID != "existing-id" {
		t.Errorf("expected provided id preserved, got %q", offers[1].ID)
	}
	if offers[0].TransportMode != "sea" {
		t.Errorf("expected trimmed transport mode, got %q", offers[0].TransportMode)
	}
	if offers[0].Rate != 1500.25 {
		t.Errorf("expected comma decimal coerced, got %v", offers[0].Rate)
	}
	if offers[0].Order != 0 || offers[1].Order != 1 {
		t.Errorf("expected positional order 0,1, got %d,%d", offers[0].Order, offers[1].Order)
	}
}

func TestNormalizeOffersDropsMalformedEntries(t *testing.T) {
	raw := []any{"junk", map[string]any{"transportMode": "sea"}, 3.14}
	offers := NormalizeOffers(raw, "USD")
	if len(offers) != 1 {
		t.Fatalf("expected 1 offer, got %d", len(offers))
	}

	if got := NormalizeOffers("not a list", "USD"); len(got) != 0 {
		t.Errorf("non-list input should normalize to empty, got %d", len(got))
	}
}

func TestNormalizeOffersPassesThroughNestedStructures(t *testing.T) {
	raw := []any{map[string]any{
		"transportMode": "sea",
		"dimensions":    []any{map[string]any{"length": 12.0}},
		"rateBreakdown": []any{map[string]any{"name": "BAF", "amount": 80.0}},
		"profit":        map[string]any{"currency": "USD", "amount": 120.0},
	}}

	offers := NormalizeOffers(raw, "USD")
	if len(offers[0].Dimensions) != 1 {
		t.Error("expected dimensions passed through")
	}
	if len(offers[0].RateBreakdown) != 1 {
		t.Error("expected rate breakdown passed through")
	}
	if offers[0].Profit["amount"] != 120.0 {
		t.Error("expected nested profit passed through")
	}
}

func TestEnsureOfferSequenceNoOpReturnsSameSlice(t *testing.T) {
	offers := []Offer{
		{ID: "a", Order: 0, OfferNumber: "1"},
		{ID: "b", Order: 1, OfferNumber: "2"},
		{ID: "c", Order: 2, OfferNumber: "custom-3"},
	}

	got := EnsureOfferSequence(offers)
	if &got[0] != &offers[0] {
		t.Error("already-sequenced list must be returned as the identical slice")
	}
}

func TestEnsureOfferSequenceRenumbersAfterRemoval(t *testing.T) {
	// Offers a/b/c were sequenced, then b was deleted by the caller.
	offers := []Offer{
		{ID: "a", Order: 0, OfferNumber: "1"},
		{ID: "c", Order: 2, OfferNumber: ""},
	}

	got := EnsureOfferSequence(offers)

	if got[0].Order != 0 || got[0].OfferNumber != "1" {
		t.Errorf("expected first offer order 0 number \"1\", got %d %q", got[0].Order, got[0].OfferNumber)
	}
	if got[1].Order != 1 || got[1].OfferNumber != "2" {
		t.Errorf("expected second offer order 1 number \"2\", got %d %q", got[1].Order, got[1].OfferNumber)
	}
	if offers[1].Order != 2 {
		t.Error("input must not be mutated")
	}
}

func TestEnsureOfferSequenceTrimsExplicitNumbers(t *testing.T) {
	offers := []Offer{{ID: "a", Order: 0, OfferNumber: "  A-77  "}}
	got := EnsureOfferSequence(offers)
	if got[0].OfferNumber != "A-77" {
		t.Errorf("expected trimmed explicit number preserved, got %q", got[0].OfferNumber)
	}
}

func TestMaterializeOffers(t *testing.T) {
	quotationID := uuid.New()
	offers := []Offer{{ID: "a"}, {ID: "b"}}

	got := MaterializeOffers(offers, quotationID)

	for i, offer := range got {
		if offer.QuotationID != quotationID.String() {
			t.Errorf("offer %d not stamped with owner, got %q", i, offer.QuotationID)
		}
	}
	if offers[0].QuotationID != "" {
		t.Error("input must not be mutated")
	}
}
