package dynamo

// DynamoDB attribute names used in update expressions across all repos.
// Using constants prevents silent runtime bugs caused by key typos.
const (
	fieldReaded             = "readed"
	fieldStatus             = "status"
	fieldTier               = "tier"
	fieldSubscriptionStatus = "subscription_status"
	fieldStripeCustomerID   = "stripe_customer_id"
	fieldSubscriptionID     = "subscription_id"
	fieldBadges             = "badges"
	fieldIsActive           = "is_active"
)
