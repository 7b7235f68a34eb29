package domain

import "testing"

func TestNormalizeRatesLenientInput(t *testing.T) {
	raw := []any{
		map[string]any{"name": "  Ocean freight ", "currency": " usd ", "amount": "1200,50", "isPrimary": true},
		"not a record",
		42,
		map[string]any{"name": "THC", "amount": 150.0},
		map[string]any{"amount": "garbage"},
		map[string]any{"name": "Refund", "amount": -30.0},
	}

	items := NormalizeRates(raw, "USD")

	if len(items) != 4 {
		t.Fatalf("expected 4 items (malformed entries dropped), got %d", len(items))
	}
	if items[0].Name != "Ocean freight" {
		t.Errorf("expected trimmed name, got %q", items[0].Name)
	}
	if items[0].Currency != "usd" {
		t.Errorf("expected currency preserved as-is after trim, got %q", items[0].Currency)
	}
	if items[0].Amount != 1200.50 {
		t.Errorf("expected comma decimal coerced to 1200.50, got %v", items[0].Amount)
	}
	if !items[0].IsPrimary {
		t.Error("expected isPrimary true")
	}
	if items[1].Currency != "USD" {
		t.Errorf("expected default currency for missing field, got %q", items[1].Currency)
	}
	if items[2].Amount != 0 {
		t.Errorf("expected non-numeric amount coerced to 0, got %v", items[2].Amount)
	}
	if items[3].Amount != 0 {
		t.Errorf("expected negative amount clamped to 0, got %v", items[3].Amount)
	}
}

func TestNormalizeRatesNonListInput(t *testing.T) {
	for _, raw := range []any{nil, "rates", 7, map[string]any{"amount": 1}} {
		if items := NormalizeRates(raw, "USD"); len(items) != 0 {
			t.Errorf("NormalizeRates(%v) should be empty, got %d items", raw, len(items))
		}
	}
}

func TestResolvePrimaryPromotesFirst(t *testing.T) {
	items := []RateItem{
		{Name: "Sell A", Currency: "USD", Amount: 100},
		{Name: "Sell B", Currency: "USD", Amount: 200},
	}

	resolved := ResolvePrimary(items)

	if !resolved[0].IsPrimary {
		t.Error("expected first item promoted to primary")
	}
	if resolved[1].IsPrimary {
		t.Error("expected second item not primary")
	}
	if items[0].IsPrimary {
		t.Error("input must not be mutated")
	}
}

func TestResolvePrimaryClearsDuplicates(t *testing.T) {
	items := []RateItem{
		{Name: "A", Currency: "USD", Amount: 100},
		{Name: "B", Currency: "USD", Amount: 200, IsPrimary: true},
		{Name: "C", Currency: "USD", Amount: 300, IsPrimary: true},
	}

	resolved := ResolvePrimary(items)

	var primaries int
	for _, item := range resolved {
		if item.IsPrimary {
			primaries++
		}
	}
	if primaries != 1 {
		t.Fatalf("expected exactly one primary, got %d", primaries)
	}
	if !resolved[1].IsPrimary {
		t.Error("expected the first flagged item to keep the primary flag")
	}
}

// Idempotence: resolving twice yields the same result as once.
func TestResolvePrimaryIdempotent(t *testing.T) {
	inputs := [][]RateItem{
		{},
		{{Name: "A", Amount: 1}},
		{{Name: "A", Amount: 1}, {Name: "B", Amount: 2, IsPrimary: true}},
		{{Name: "A", Amount: 1, IsPrimary: true}, {Name: "B", Amount: 2, IsPrimary: true}},
	}

	for i, input := range inputs {
		once := ResolvePrimary(input)
		twice := ResolvePrimary(once)
		if !RatesEqual(once, twice) {
			t.Errorf("case %d: ResolvePrimary is not idempotent: %v vs %v", i, once, twice)
		}
	}
}

func TestPrimaryRate(t *testing.T) {
	if got := PrimaryRate(nil); got != nil {
		t.Errorf("expected nil primary for empty collection, got %v", got)
	}

	resolved := ResolvePrimary([]RateItem{
		{Name: "Sell", Currency: "EUR", Amount: 900},
		{Name: "Alt", Currency: "USD", Amount: 950},
	})
	primary := PrimaryRate(resolved)
	if primary == nil || primary.Name != "Sell" {
		t.Fatalf("expected promoted first rate as primary, got %v", primary)
	}
}
