package domain

import "testing"

func TestComputeProfitSign(t *testing.T) {
	primary := &RateItem{Name: "Sell", Currency: "USD", Amount: 100, IsPrimary: true}
	carrier := []RateItem{{Name: "Freight", Currency: "USD", Amount: 40}}
	extra := []RateItem{{Name: "Docs", Currency: "USD", Amount: 10}}

	profit := ComputeProfit(primary, carrier, extra, "USD")
	if profit.Amount != 50 {
		t.Fatalf("expected profit 50, got %v", profit.Amount)
	}
	if profit.Currency != "USD" {
		t.Fatalf("expected currency USD, got %q", profit.Currency)
	}

	// Costs above the primary produce a negative profit — a valid loss, not
	// an error.
	carrier[0].Amount = 120
	loss := ComputeProfit(primary, carrier, extra, "USD")
	if loss.Amount != -30 {
		t.Fatalf("expected loss -30, got %v", loss.Amount)
	}
}

func TestComputeProfitWithoutPrimary(t *testing.T) {
	profit := ComputeProfit(nil, []RateItem{{Amount: 600, Currency: "EUR"}}, nil, "USD")
	if profit.Amount != 0 || profit.Currency != "USD" {
		t.Fatalf("expected zero profit in default currency, got %+v", profit)
	}
}

func TestComputeProfitCurrencyFallback(t *testing.T) {
	tests := []struct {
		name    string
		primary *RateItem
		carrier []RateItem
		extra   []RateItem
		want    string
	}{
		{"primary wins", &RateItem{Currency: "EUR", Amount: 10}, []RateItem{{Currency: "GBP"}}, nil, "EUR"},
		{"first carrier", &RateItem{Amount: 10}, []RateItem{{Currency: "GBP"}}, []RateItem{{Currency: "JPY"}}, "GBP"},
		{"first extra", &RateItem{Amount: 10}, nil, []RateItem{{Currency: "JPY"}}, "JPY"},
		{"default", &RateItem{Amount: 10}, nil, nil, "USD"},
	}

	for _, tc := range tests {
		got := ComputeProfit(tc.primary, tc.carrier, tc.extra, "USD")
		if got.Currency != tc.want {
			t.Errorf("%s: expected currency %q, got %q", tc.name, tc.want, got.Currency)
		}
	}
}

func TestComputeEstimatedCostFloor(t *testing.T) {
	if got := ComputeEstimatedCost(nil, nil); got != 1 {
		t.Errorf("expected floor of 1 for empty collections, got %v", got)
	}
	if got := ComputeEstimatedCost([]RateItem{{Amount: 0}}, []RateItem{{Amount: 0}}); got != 1 {
		t.Errorf("expected floor of 1 for zero sums, got %v", got)
	}
	if got := ComputeEstimatedCost([]RateItem{{Amount: 600}}, []RateItem{{Amount: 150}}); got != 750 {
		t.Errorf("expected 750, got %v", got)
	}
}

// Full derivation over a realistic quotation: sell 1000 against 600 carrier
// and 150 extra-service cost.
func TestDerivedFieldsScenario(t *testing.T) {
	customer := ResolvePrimary([]RateItem{{Name: "Sell", Currency: "USD", Amount: 1000, IsPrimary: true}})
	carrier := []RateItem{{Name: "Ocean", Currency: "USD", Amount: 600}}
	extra := []RateItem{{Name: "Customs", Currency: "USD", Amount: 150}}

	profit := ComputeProfit(PrimaryRate(customer), carrier, extra, "USD")
	if profit.Amount != 250 || profit.Currency != "USD" {
		t.Errorf("expected profit 250 USD, got %+v", profit)
	}
	if cost := ComputeEstimatedCost(carrier, extra); cost != 750 {
		t.Errorf("expected estimated cost 750, got %v", cost)
	}
}
