package domain

// RateItem is a single named monetary line within a carrier, extra-service or
// customer rate collection. Rate items are value objects: they have no
// identity and are replaced wholesale on every update.
type RateItem struct {
	Name      string  `json:"name"`
	Currency  string  `json:"currency"`
	Amount    float64 `json:"amount"`
	IsPrimary bool    `json:"isPrimary,omitempty"`
}

// NormalizeRates converts loosely-typed input into a validated rate list.
// Input that is not a list normalizes to an empty list, and individual
// entries that are not structured records are dropped — malformed per-item
// shape never fails the whole operation.
func NormalizeRates(raw any, defaultCurrency string) []RateItem {
	if defaultCurrency == "" {
		defaultCurrency = DefaultCurrency
	}

	entries, ok := raw.([]any)
	if !ok {
		return []RateItem{}
	}

	items := make([]RateItem, 0, len(entries))
	for _, entry := range entries {
		item, ok := normalizeRateEntry(entry, defaultCurrency)
		if !ok {
			continue
		}
		items = append(items, item)
	}
	return items
}

// normalizeRateEntry is the per-entry transform. The bool result tags the
// entry as kept or dropped; it never errors.
func normalizeRateEntry(entry any, defaultCurrency string) (RateItem, bool) {
	record, ok := entry.(map[string]any)
	if !ok {
		return RateItem{}, false
	}

	currency := coerceString(record["currency"])
	if currency == "" {
		currency = defaultCurrency
	}

	amount := coerceNumber(record["amount"])
	if amount < 0 {
		amount = 0
	}

	return RateItem{
		Name:      coerceString(record["name"]),
		Currency:  currency,
		Amount:    amount,
		IsPrimary: coerceBool(record["isPrimary"]),
	}, true
}

// ResolvePrimary returns a copy of the customer-rate list in which exactly one
// item is primary when the list is non-empty: the first flagged item keeps the
// flag and duplicates are cleared, or the first item is promoted when none is
// flagged. Applying the function twice yields the same result as once.
func ResolvePrimary(items []RateItem) []RateItem {
	if len(items) == 0 {
		return []RateItem{}
	}

	primaryIdx := 0
	for i, item := range items {
		if item.IsPrimary {
			primaryIdx = i
			break
		}
	}

	resolved := make([]RateItem, len(items))
	copy(resolved, items)
	for i := range resolved {
		resolved[i].IsPrimary = i == primaryIdx
	}
	return resolved
}

// PrimaryRate returns the current primary customer rate, or nil when the
// collection is empty. Call ResolvePrimary first on unresolved input.
func PrimaryRate(items []RateItem) *RateItem {
	for i := range items {
		if items[i].IsPrimary {
			item := items[i]
			return &item
		}
	}
	return nil
}

// SumAmounts totals the amounts of a rate collection.
func SumAmounts(items []RateItem) float64 {
	var total float64
	for _, item := range items {
		total += item.Amount
	}
	return total
}

// RatesEqual reports whether two rate collections have identical content:
// same length and same name, currency, amount and primary flag per position.
func RatesEqual(a, b []RateItem) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}
