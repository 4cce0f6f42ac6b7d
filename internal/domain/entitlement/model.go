package entitlement

import (
	"time"

	"github.com/remindly/remindly/internal/types"
)

// SubscriptionStatus is an immutable snapshot of a subscription as last
// reported by the billing provider. A new snapshot supersedes the previous
// one; snapshots are never mutated in place.
type SubscriptionStatus struct {
	Tier        types.SubscriptionTier `json:"tier"`
	IsActive    bool                   `json:"is_active"`
	Name        string                 `json:"name"`
	Description string                 `json:"description"`
	// RenewalOrExpiryDate is the next renewal date for active subscriptions
	// and the expiry date for lapsed ones. Nil when the provider does not
	// report one (e.g. lifetime or free).
	RenewalOrExpiryDate *time.Time `json:"renewal_or_expiry_date,omitempty"`
}

// DefaultStatus returns the free, inactive status used before initialization
// and after a forced clear.
func DefaultStatus() *SubscriptionStatus {
	return &SubscriptionStatus{
		Tier:        types.SubscriptionTierFree,
		IsActive:    false,
		Name:        types.SubscriptionTierFree.DisplayName(),
		Description: types.SubscriptionTierFree.Description(),
	}
}

// StatusForTier builds an active status snapshot for the given tier, keeping
// the renewal date of the source status it was derived from.
func StatusForTier(tier types.SubscriptionTier, renewalOrExpiry *time.Time) *SubscriptionStatus {
	return &SubscriptionStatus{
		Tier:                tier,
		IsActive:            true,
		Name:                tier.DisplayName(),
		Description:         tier.Description(),
		RenewalOrExpiryDate: renewalOrExpiry,
	}
}

// SameEntitlement reports whether two snapshots unlock the same entitlement,
// i.e. agree on tier and active flag. Name, description and renewal date do
// not affect what a user can do, so they are ignored here.
func (s *SubscriptionStatus) SameEntitlement(other *SubscriptionStatus) bool {
	if s == nil || other == nil {
		return s == other
	}
	return s.Tier == other.Tier && s.IsActive == other.IsActive
}

// Features derives the entitlement set for this snapshot's tier.
func (s *SubscriptionStatus) Features() types.PremiumFeatures {
	if s == nil {
		return types.FeaturesForTier(types.SubscriptionTierFree)
	}
	return types.FeaturesForTier(s.Tier)
}

// Clone returns a copy so callers can hold a snapshot without aliasing the
// stored value.
func (s *SubscriptionStatus) Clone() *SubscriptionStatus {
	if s == nil {
		return nil
	}
	clone := *s
	if s.RenewalOrExpiryDate != nil {
		t := *s.RenewalOrExpiryDate
		clone.RenewalOrExpiryDate = &t
	}
	return &clone
}
