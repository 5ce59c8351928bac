package billing

import (
	"log/slog"

	"github.com/cheflamb/brigade-api/internal/config"
	"github.com/cheflamb/brigade-api/internal/domain"
	"github.com/stripe/stripe-go/v83"
)

// PriceMap is the injected, ordered price→tier mapping. Order matters:
// resolution walks line items first-to-last and the first mapped price wins.
type PriceMap struct {
	entries []domain.PriceTier
}

// NewPriceMap builds a PriceMap from parsed config entries, dropping pairs
// whose tier name is unknown.
func NewPriceMap(entries []config.PriceTierEntry) *PriceMap {
	pm := &PriceMap{}
	for _, e := range entries {
		tier := domain.Tier(e.Tier)
		if !tier.IsValid() {
			slog.Warn("ignoring price mapping with unknown tier", "price_id", e.PriceID, "tier", e.Tier)
			continue
		}
		pm.entries = append(pm.entries, domain.PriceTier{PriceID: e.PriceID, Tier: tier})
	}
	return pm
}

// Lookup returns the tier mapped to a price ID, if any.
func (pm *PriceMap) Lookup(priceID string) (domain.Tier, bool) {
	for _, e := range pm.entries {
		if e.PriceID == priceID {
			return e.Tier, true
		}
	}
	return "", false
}

// ResolveSessionTier maps a completed checkout session to a tier: first
// mapped line-item price wins, preserving line-item order; with no match the
// total amount (major units) falls through the threshold ladder. Unmapped
// prices never error — they silently resolve down to free, which is the
// compatibility contract with the original platform.
func (pm *PriceMap) ResolveSessionTier(session *stripe.CheckoutSession) domain.Tier {
	if session.LineItems != nil {
		for _, item := range session.LineItems.Data {
			if item.Price == nil {
				continue
			}
			if tier, ok := pm.Lookup(item.Price.ID); ok {
				return tier
			}
		}
	}

	amount := float64(session.AmountTotal) / 100
	tier := domain.TierForAmount(amount)
	if tier == domain.TierFree {
		slog.Warn("checkout session resolved to free tier",
			"session_id", session.ID, "amount", amount)
	}
	return tier
}

// ResolveSubscriptionTier maps a subscription to a tier by its item prices,
// preserving item order. Subscriptions with no recognized price resolve to
// free; there is no amount fallback for subscriptions.
func (pm *PriceMap) ResolveSubscriptionTier(sub *stripe.Subscription) domain.Tier {
	if sub.Items != nil {
		for _, item := range sub.Items.Data {
			if item.Price == nil {
				continue
			}
			if tier, ok := pm.Lookup(item.Price.ID); ok {
				return tier
			}
		}
	}
	slog.Warn("subscription resolved to free tier", "subscription_id", sub.ID)
	return domain.TierFree
}
