package domain

// Money is a currency/amount pair used for derived financial snapshots.
type Money struct {
	Currency string  `json:"currency"`
	Amount   float64 `json:"amount"`
}

// ComputeEstimatedCost derives the estimated cost from the carrier and
// extra-service collections. The result is floored at 1.
func ComputeEstimatedCost(carrierRates, extraServiceRates []RateItem) float64 {
	total := SumAmounts(carrierRates) + SumAmounts(extraServiceRates)
	if total < 1 {
		return 1
	}
	return total
}

// ComputeProfit derives the profit snapshot from the primary customer rate and
// the cost-side collections. A negative amount signals a loss, which is a
// valid, reportable business state. Without a primary customer rate the
// profit is zero in the default currency.
//
// Currency resolution order: primary → first carrier rate → first
// extra-service rate → default.
func ComputeProfit(primary *RateItem, carrierRates, extraServiceRates []RateItem, defaultCurrency string) Money {
	if defaultCurrency == "" {
		defaultCurrency = DefaultCurrency
	}

	if primary == nil {
		return Money{Currency: defaultCurrency, Amount: 0}
	}

	currency := firstNonBlank(
		primary.Currency,
		firstCurrency(carrierRates),
		firstCurrency(extraServiceRates),
		defaultCurrency,
	)

	return Money{
		Currency: currency,
		Amount:   primary.Amount - SumAmounts(carrierRates) - SumAmounts(extraServiceRates),
	}
}

func firstCurrency(items []RateItem) string {
	if len(items) == 0 {
		return ""
	}
	return items[0].Currency
}
