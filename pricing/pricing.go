// Package pricing computes purchase quotes. The same code path serves the
// public quote endpoint and order creation so the two can never drift.
package pricing

import (
	"fmt"
	"math"
	"sort"
	"time"

	"piogold-backend/models"
)

type Quote struct {
	UsdtAmount      float64 `json:"usdt_amount"`
	GoldPrice       float64 `json:"gold_price"`
	BasePio         float64 `json:"base_pio"`
	DiscountPercent float64 `json:"discount_percent"`
	BonusPio        float64 `json:"bonus_pio"`
	TotalPio        float64 `json:"total_pio"`
	DiscountTier    string  `json:"discount_tier,omitempty"`
}

// ResolveDiscount picks the bonus tier for a USDT amount. Offers are walked
// in descending min_usdt order, so when ranges overlap a higher, still-valid
// tier wins over a lower one. A tier whose validity window (days since ICO
// start) has elapsed is never selected. No match means 0% and no label.
func ResolveDiscount(amount float64, icoStart, now time.Time, offers []*models.Offer) (float64, string) {
	daysSinceStart := int64(now.Sub(icoStart).Hours() / 24)

	sorted := make([]*models.Offer, 0, len(offers))
	for _, offer := range offers {
		if offer.IsActive {
			sorted = append(sorted, offer)
		}
	}
	sort.Slice(sorted, func(i, j int) bool {
		return sorted[i].MinUsdt > sorted[j].MinUsdt
	})

	for _, offer := range sorted {
		if offer.MinUsdt <= amount && amount <= offer.MaxUsdt {
			if daysSinceStart <= offer.ValidityDays {
				tier := fmt.Sprintf("$%s-$%s (%s%% bonus)",
					trimFloat(offer.MinUsdt), trimFloat(offer.MaxUsdt), trimFloat(offer.DiscountPercent))
				return offer.DiscountPercent, tier
			}
		}
	}

	return 0, ""
}

// Calculate produces the full purchase breakdown for an amount at the given
// gold price and offer set.
func Calculate(amount, goldPrice float64, icoStart, now time.Time, offers []*models.Offer) *Quote {
	basePio := amount / goldPrice
	discountPercent, tier := ResolveDiscount(amount, icoStart, now, offers)
	bonusPio := basePio * (discountPercent / 100)

	return &Quote{
		UsdtAmount:      amount,
		GoldPrice:       goldPrice,
		BasePio:         Round8(basePio),
		DiscountPercent: discountPercent,
		BonusPio:        Round8(bonusPio),
		TotalPio:        Round8(basePio + bonusPio),
		DiscountTier:    tier,
	}
}

// Round8 rounds to the 8 decimal places PIO amounts are quoted in.
func Round8(v float64) float64 {
	return math.Round(v*1e8) / 1e8
}

func trimFloat(v float64) string {
	return fmt.Sprintf("%g", v)
}
