package domain

import "time"

type User struct {
	UserID             string             `json:"id" dynamodbav:"user_id"`
	Email              string             `json:"email" dynamodbav:"email"`
	Phone              *string            `json:"phone" dynamodbav:"phone"`
	FirstName          string             `json:"first_name" dynamodbav:"first_name"`
	LastName           string             `json:"last_name" dynamodbav:"last_name"`
	Role               string             `json:"role" dynamodbav:"role"`
	Tier               Tier               `json:"tier" dynamodbav:"tier"`
	SubscriptionStatus SubscriptionStatus `json:"subscription_status" dynamodbav:"subscription_status"`
	StripeCustomerID   string             `json:"stripe_customer_id,omitempty" dynamodbav:"stripe_customer_id"`
	SubscriptionID     string             `json:"subscription_id,omitempty" dynamodbav:"subscription_id"`
	Badges             []string           `json:"badges" dynamodbav:"badges,stringset,omitemptyelem"`
	Enable             bool               `json:"enable" dynamodbav:"enable"`
	CreatedAt          time.Time          `json:"created" dynamodbav:"created_at"`
	UpdatedAt          time.Time          `json:"updated" dynamodbav:"updated_at"`
}

// HasBadge reports whether the user already holds the given badge.
// Badge grants are idempotent: callers must check before appending.
func (u *User) HasBadge(badge string) bool {
	for _, b := range u.Badges {
		if b == badge {
			return true
		}
	}
	return false
}
