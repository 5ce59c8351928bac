package domain

// Role names carried in JWT claims. Issuance is external; this service only
// gates routes on the verified claim.
const (
	RoleAdmin  = "admin"
	RoleMember = "member"
)
