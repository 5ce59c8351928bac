package domain

// Tier identifies a membership level. Ordered from free upwards; the order
// matters for the amount-fallback ladder in tier resolution.
type Tier string

const (
	TierFree       Tier = "free"
	TierBrigade    Tier = "brigade"
	TierFraternity Tier = "fraternity"
	TierGuild      Tier = "guild"
)

// IsValid reports whether t is one of the known tiers.
func (t Tier) IsValid() bool {
	switch t {
	case TierFree, TierBrigade, TierFraternity, TierGuild:
		return true
	}
	return false
}

// SubscriptionStatus tracks the billing state of a membership.
//
// Transitions: active → past_due (payment failure) → active (next successful
// payment) → canceled (subscription deletion, which also forces tier=free).
// Nothing leaves canceled except a brand-new checkout completion.
type SubscriptionStatus string

const (
	SubscriptionNone    SubscriptionStatus = "none"
	SubscriptionActive  SubscriptionStatus = "active"
	SubscriptionPastDue SubscriptionStatus = "past_due"
	SubscriptionCancel  SubscriptionStatus = "canceled"
)

// PriceTier binds one Stripe price ID to a tier. The billing service is
// configured with an ordered list of these; line-item order decides ties.
type PriceTier struct {
	PriceID string
	Tier    Tier
}

// Amount thresholds (major currency units) for the checkout fallback ladder
// used when no line-item price ID is recognized. Inclusive lower bounds.
const (
	GuildAmountThreshold      = 497
	FraternityAmountThreshold = 97
	BrigadeAmountThreshold    = 19
)

// TierForAmount maps a checkout total (major units) to a tier when no price
// ID matched. Unrecognized cheap amounts silently resolve to free — preserved
// behavior from the original platform, not a validation path.
func TierForAmount(amount float64) Tier {
	switch {
	case amount >= GuildAmountThreshold:
		return TierGuild
	case amount >= FraternityAmountThreshold:
		return TierFraternity
	case amount >= BrigadeAmountThreshold:
		return TierBrigade
	default:
		return TierFree
	}
}

// WelcomeBadge is granted once, on the first upgrade to any paid tier.
const WelcomeBadge = "brigade_member"
