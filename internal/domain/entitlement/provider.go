package entitlement

import "context"

// BillingProvider reports raw, device-level subscription state. The engine
// serializes calls; implementations may assume at most one concurrent query.
type BillingProvider interface {
	// QueryStatus returns the raw subscription status of the device owner.
	QueryStatus(ctx context.Context) (*SubscriptionStatus, error)

	// QueryStatusFor returns the raw subscription status of another user,
	// used for cross-device family resolution.
	QueryStatusFor(ctx context.Context, userID string) (*SubscriptionStatus, error)

	// ClearCache drops any provider-side cached credentials or entitlement
	// state without issuing a network query.
	ClearCache(ctx context.Context) error
}

// FamilyDirectory reports household membership. It is a pure read; the engine
// merges the result with raw statuses itself.
type FamilyDirectory interface {
	// GetFamilyMembers returns the ids of every member of the family plan the
	// user belongs to, including the user themselves. An empty slice means
	// the user is not on a family plan.
	GetFamilyMembers(ctx context.Context, userID string) ([]string, error)
}
