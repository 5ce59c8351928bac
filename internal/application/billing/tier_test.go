package billing

import (
	"testing"

	"github.com/cheflamb/brigade-api/internal/config"
	"github.com/cheflamb/brigade-api/internal/domain"
	"github.com/stripe/stripe-go/v83"
	"github.com/stretchr/testify/assert"
)

func TestTierForAmount(t *testing.T) {
	cases := []struct {
		amount float64
		want   domain.Tier
	}{
		{0, domain.TierFree},
		{18.99, domain.TierFree},
		{19, domain.TierBrigade},
		{96.99, domain.TierBrigade},
		{97, domain.TierFraternity},
		{496.99, domain.TierFraternity},
		{497, domain.TierGuild},
		{1200, domain.TierGuild},
	}
	for _, c := range cases {
		assert.Equal(t, c.want, domain.TierForAmount(c.amount), "amount %.2f", c.amount)
	}
}

func TestNewPriceMap_DropsUnknownTiers(t *testing.T) {
	pm := NewPriceMap([]config.PriceTierEntry{
		{PriceID: "price_good", Tier: "guild"},
		{PriceID: "price_bad", Tier: "platinum"},
	})

	tier, ok := pm.Lookup("price_good")
	assert.True(t, ok)
	assert.Equal(t, domain.TierGuild, tier)

	_, ok = pm.Lookup("price_bad")
	assert.False(t, ok)
}

func newTestPriceMap() *PriceMap {
	return NewPriceMap([]config.PriceTierEntry{
		{PriceID: "price_brigade", Tier: "brigade"},
		{PriceID: "price_fraternity", Tier: "fraternity"},
		{PriceID: "price_guild", Tier: "guild"},
	})
}

func sessionWithItems(amountCents int64, priceIDs ...string) *stripe.CheckoutSession {
	s := &stripe.CheckoutSession{ID: "cs_test", AmountTotal: amountCents}
	if len(priceIDs) > 0 {
		s.LineItems = &stripe.LineItemList{}
		for _, id := range priceIDs {
			s.LineItems.Data = append(s.LineItems.Data, &stripe.LineItem{
				Price: &stripe.Price{ID: id},
			})
		}
	}
	return s
}

func TestResolveSessionTier_MappedPriceWinsOverAmount(t *testing.T) {
	pm := newTestPriceMap()

	// Amount says guild, price says brigade. Price wins.
	tier := pm.ResolveSessionTier(sessionWithItems(49700, "price_brigade"))
	assert.Equal(t, domain.TierBrigade, tier)
}

func TestResolveSessionTier_FirstMappedLineItemWins(t *testing.T) {
	pm := newTestPriceMap()

	tier := pm.ResolveSessionTier(sessionWithItems(0, "price_unknown", "price_fraternity", "price_guild"))
	assert.Equal(t, domain.TierFraternity, tier)
}

func TestResolveSessionTier_AmountFallback(t *testing.T) {
	pm := newTestPriceMap()

	assert.Equal(t, domain.TierGuild, pm.ResolveSessionTier(sessionWithItems(49700)))
	assert.Equal(t, domain.TierFraternity, pm.ResolveSessionTier(sessionWithItems(9700)))
	assert.Equal(t, domain.TierBrigade, pm.ResolveSessionTier(sessionWithItems(1900)))
	assert.Equal(t, domain.TierFree, pm.ResolveSessionTier(sessionWithItems(500)))
}

func TestResolveSessionTier_UnmappedPriceFallsThroughToAmount(t *testing.T) {
	pm := newTestPriceMap()

	tier := pm.ResolveSessionTier(sessionWithItems(9700, "price_unknown"))
	assert.Equal(t, domain.TierFraternity, tier)
}

func TestResolveSubscriptionTier(t *testing.T) {
	pm := newTestPriceMap()

	sub := &stripe.Subscription{
		ID: "sub_test",
		Items: &stripe.SubscriptionItemList{
			Data: []*stripe.SubscriptionItem{
				{Price: &stripe.Price{ID: "price_guild"}},
			},
		},
	}
	assert.Equal(t, domain.TierGuild, pm.ResolveSubscriptionTier(sub))

	// No amount fallback for subscriptions: unrecognized means free.
	sub.Items.Data[0].Price.ID = "price_unknown"
	assert.Equal(t, domain.TierFree, pm.ResolveSubscriptionTier(sub))
}
