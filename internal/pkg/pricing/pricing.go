// Package pricing computes challenge prices server-side. The client never
// sends a price; it sends type, model and account size and the server quotes.
package pricing

import (
	"fmt"
	"math"
)

// CompetitionEntryFee is the flat entry fee for trading competitions, in USD.
const CompetitionEntryFee = 9.0

// AllowedSizes are the account sizes sold at checkout, in USD.
var AllowedSizes = []float64{5000, 10000, 25000, 50000, 100000, 200000}

var oneStepPrices = map[float64]float64{
	5000:   39,
	10000:  69,
	25000:  149,
	50000:  279,
	100000: 499,
	200000: 949,
}

var twoStepPrices = map[float64]float64{
	5000:   29,
	10000:  49,
	25000:  119,
	50000:  229,
	100000: 449,
	200000: 899,
}

// ValidSize reports whether size is one of the sellable account sizes.
func ValidSize(size float64) bool {
	for _, s := range AllowedSizes {
		if s == size {
			return true
		}
	}
	return false
}

// Price quotes the USD price for a challenge. challengeType is one of
// "1-step", "2-step" or "instant"; model "pro" carries a 20% markup over the
// base tier. Off-table sizes fall back to a per-dollar rate so admin-created
// custom sizes still price. The result is rounded to whole dollars.
func Price(challengeType, model string, size float64) (float64, error) {
	var price float64
	switch challengeType {
	case "1-step":
		if p, ok := oneStepPrices[size]; ok {
			price = p
		} else {
			price = size * 0.005
		}
	case "2-step":
		if p, ok := twoStepPrices[size]; ok {
			price = p
		} else {
			price = size * 0.0045
		}
	case "instant":
		price = size * 0.08
	default:
		return 0, fmt.Errorf("unknown challenge type %q", challengeType)
	}

	if model == "pro" {
		price *= 1.2
	}
	return math.Round(price), nil
}

// ApplyDiscount returns the discounted amount and the discount taken, both
// rounded to cents. Discounts never push a price below zero.
func ApplyDiscount(amount, discountPct float64) (total, discount float64) {
	if discountPct <= 0 {
		return amount, 0
	}
	if discountPct > 100 {
		discountPct = 100
	}
	discount = math.Round(amount*discountPct) / 100
	total = math.Round((amount-discount)*100) / 100
	if total < 0 {
		total = 0
	}
	return total, discount
}
