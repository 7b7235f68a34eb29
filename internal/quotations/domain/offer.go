package domain

import (
	"strconv"
	"strings"

	"github.com/google/uuid"
)

// Offer is an alternative, self-contained commercial proposal attached to one
// quotation. Offer identity is stable across edits, but the set is replaced
// wholesale on every update — there are no partial patches.
type Offer struct {
	ID            string         `json:"id"`
	QuotationID   string         `json:"quotationId,omitempty"`
	Order         int            `json:"order"`
	OfferNumber   string         `json:"offerNumber"`
	TransportMode string         `json:"transportMode,omitempty"`
	Route         string         `json:"route,omitempty"`
	TransitTime   string         `json:"transitTime,omitempty"`
	Rate          float64        `json:"rate"`
	Currency      string         `json:"currency"`
	GrossWeight   float64        `json:"grossWeight,omitempty"`
	Volume        float64        `json:"volume,omitempty"`
	Notes         string         `json:"notes,omitempty"`
	Dimensions    []any          `json:"dimensions,omitempty"`
	RateBreakdown []any          `json:"rateBreakdown,omitempty"`
	Profit        map[string]any `json:"profit,omitempty"`
}

// NormalizeOffers converts loosely-typed input into a validated offer list.
// Non-list input yields an empty list; entries that are not structured records
// are dropped. Each kept offer gets a stable identifier (the provided one when
// it is a non-empty string, a freshly generated one otherwise), its order
// defaults to its position in the input, string fields are trimmed, numeric
// fields are coerced leniently, and nested dimension/breakdown arrays and
// profit objects pass through uninterpreted when well-formed.
func NormalizeOffers(raw any, defaultCurrency string) []Offer {
	if defaultCurrency == "" {
		defaultCurrency = DefaultCurrency
	}

	entries, ok := raw.([]any)
	if !ok {
		return []Offer{}
	}

	offers := make([]Offer, 0, len(entries))
	for _, entry := range entries {
		record, ok := entry.(map[string]any)
		if !ok {
			continue
		}
		offers = append(offers, normalizeOfferRecord(record, len(offers), defaultCurrency))
	}
	return offers
}

func normalizeOfferRecord(record map[string]any, position int, defaultCurrency string) Offer {
	id := coerceString(record["id"])
	if id == "" {
		id = uuid.NewString()
	}

	order := position
	if value, exists := record["order"]; exists {
		switch value.(type) {
		case float64, float32, int, int64:
			order = int(coerceNumber(value))
		}
	}

	currency := coerceString(record["currency"])
	if currency == "" {
		currency = defaultCurrency
	}

	offer := Offer{
		ID:            id,
		Order:         order,
		OfferNumber:   coerceString(record["offerNumber"]),
		TransportMode: coerceString(record["transportMode"]),
		Route:         coerceString(record["route"]),
		TransitTime:   coerceString(record["transitTime"]),
		Rate:          coerceNumber(record["rate"]),
		Currency:      currency,
		GrossWeight:   coerceNumber(record["grossWeight"]),
		Volume:        coerceNumber(record["volume"]),
		Notes:         coerceString(record["notes"]),
	}

	if nested, ok := record["dimensions"].([]any); ok {
		offer.Dimensions = nested
	}
	if nested, ok := record["rateBreakdown"].([]any); ok {
		offer.RateBreakdown = nested
	}
	if nested, ok := record["profit"].(map[string]any); ok {
		offer.Profit = nested
	}

	return offer
}

// EnsureOfferSequence repairs the ordering/numbering invariant after any
// structural change: offer order must equal the array index, a blank offer
// number becomes "position+1", and a non-blank number is trimmed. When no
// offer needs a change the original slice is returned unchanged, so callers
// can use identity to detect a no-op and skip spurious writes.
func EnsureOfferSequence(offers []Offer) []Offer {
	dirty := false
	for i := range offers {
		if offerNeedsSequenceFix(offers[i], i) {
			dirty = true
			break
		}
	}
	if !dirty {
		return offers
	}

	sequenced := make([]Offer, len(offers))
	copy(sequenced, offers)
	for i := range sequenced {
		sequenced[i].Order = i
		number := strings.TrimSpace(sequenced[i].OfferNumber)
		if number == "" {
			number = strconv.Itoa(i + 1)
		}
		sequenced[i].OfferNumber = number
	}
	return sequenced
}

func offerNeedsSequenceFix(offer Offer, position int) bool {
	if offer.Order != position {
		return true
	}
	trimmed := strings.TrimSpace(offer.OfferNumber)
	return trimmed == "" || trimmed != offer.OfferNumber
}

// MaterializeOffers stamps every offer with its owning quotation's identifier
// before persistence. The rest of the offer pipeline stays owner-agnostic so
// it can be tested and reused independent of storage.
func MaterializeOffers(offers []Offer, quotationID uuid.UUID) []Offer {
	owner := quotationID.String()
	materialized := make([]Offer, len(offers))
	copy(materialized, offers)
	for i := range materialized {
		materialized[i].QuotationID = owner
	}
	return materialized
}
