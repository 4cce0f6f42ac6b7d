package revenuecat

import "time"

// SubscriberResponse is the shape of GET /v1/subscribers/{app_user_id}.
type SubscriberResponse struct {
	Subscriber Subscriber `json:"subscriber"`
}

type Subscriber struct {
	OriginalAppUserID string                 `json:"original_app_user_id"`
	Entitlements      map[string]Entitlement `json:"entitlements"`
	FirstSeen         *time.Time             `json:"first_seen,omitempty"`
}

// Entitlement is a single granted entitlement keyed by its identifier.
type Entitlement struct {
	ProductIdentifier string     `json:"product_identifier"`
	PurchaseDate      *time.Time `json:"purchase_date,omitempty"`
	ExpiresDate       *time.Time `json:"expires_date,omitempty"`
}

// Active reports whether the entitlement grants access at the given instant.
// A nil expiry means a lifetime grant.
func (e Entitlement) Active(now time.Time) bool {
	return e.ExpiresDate == nil || e.ExpiresDate.After(now)
}

// ErrorResponse is the error envelope the subscriptions API returns.
type ErrorResponse struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
}
