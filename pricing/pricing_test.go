package pricing

import (
	"testing"
	"time"

	"piogold-backend/models"

	"github.com/stretchr/testify/require"
)

func testOffers() []*models.Offer {
	return []*models.Offer{
		{MinUsdt: 50, MaxUsdt: 299, DiscountPercent: 5, ValidityDays: 60, IsActive: true},
		{MinUsdt: 300, MaxUsdt: 499, DiscountPercent: 10, ValidityDays: 45, IsActive: true},
	}
}

func TestResolveDiscountTieBreak(t *testing.T) {
	start := time.Now().Add(-24 * time.Hour)
	now := time.Now()

	percent, tier := ResolveDiscount(400, start, now, testOffers())
	require.Equal(t, 10.0, percent)
	require.NotEmpty(t, tier)

	percent, _ = ResolveDiscount(100, start, now, testOffers())
	require.Equal(t, 5.0, percent)
}

func TestResolveDiscountPrefersHigherTierOnOverlap(t *testing.T) {
	offers := []*models.Offer{
		{MinUsdt: 50, MaxUsdt: 1000, DiscountPercent: 5, ValidityDays: 60, IsActive: true},
		{MinUsdt: 300, MaxUsdt: 1000, DiscountPercent: 10, ValidityDays: 60, IsActive: true},
	}
	start := time.Now().Add(-24 * time.Hour)

	percent, _ := ResolveDiscount(400, start, time.Now(), offers)
	require.Equal(t, 10.0, percent)
}

func TestResolveDiscountExpiredTier(t *testing.T) {
	offers := []*models.Offer{
		{MinUsdt: 300, MaxUsdt: 499, DiscountPercent: 10, ValidityDays: 45, IsActive: true},
	}
	start := time.Now().Add(-50 * 24 * time.Hour)

	percent, tier := ResolveDiscount(400, start, time.Now(), offers)
	require.Equal(t, 0.0, percent)
	require.Empty(t, tier)
}

func TestResolveDiscountInactiveOffer(t *testing.T) {
	offers := []*models.Offer{
		{MinUsdt: 300, MaxUsdt: 499, DiscountPercent: 10, ValidityDays: 45, IsActive: false},
	}
	start := time.Now().Add(-24 * time.Hour)

	percent, _ := ResolveDiscount(400, start, time.Now(), offers)
	require.Equal(t, 0.0, percent)
}

func TestResolveDiscountNoMatch(t *testing.T) {
	start := time.Now().Add(-24 * time.Hour)

	percent, tier := ResolveDiscount(10, start, time.Now(), testOffers())
	require.Equal(t, 0.0, percent)
	require.Empty(t, tier)
}

func TestResolveDiscountOrderIndependent(t *testing.T) {
	start := time.Now().Add(-24 * time.Hour)
	now := time.Now()

	offers := testOffers()
	reversed := []*models.Offer{offers[1], offers[0]}

	p1, t1 := ResolveDiscount(400, start, now, offers)
	p2, t2 := ResolveDiscount(400, start, now, reversed)
	require.Equal(t, p1, p2)
	require.Equal(t, t1, t2)
}

func TestCalculateIdempotent(t *testing.T) {
	start := time.Now().Add(-24 * time.Hour)
	now := time.Now()

	first := Calculate(100, 85.0, start, now, testOffers())
	second := Calculate(100, 85.0, start, now, testOffers())
	require.Equal(t, first, second)
}

func TestCalculateBreakdown(t *testing.T) {
	start := time.Now().Add(-24 * time.Hour)

	quote := Calculate(400, 85.0, start, time.Now(), testOffers())
	require.Equal(t, 10.0, quote.DiscountPercent)
	require.Equal(t, Round8(400.0/85.0), quote.BasePio)
	require.Equal(t, Round8(400.0/85.0*0.10), quote.BonusPio)
	require.Equal(t, Round8(400.0/85.0*1.10), quote.TotalPio)
}
