package service

import (
	"context"

	"github.com/remindly/remindly/internal/cache"
	"github.com/remindly/remindly/internal/domain/entitlement"
)

const memberStatusCacheKey = "family:member_status:"

// FamilyResolver applies family-plan overrides: a user inherits the best
// active tier held by any member of their household. Resolution is a pure
// read followed by a pure merge and can only ever upgrade the perceived tier.
type FamilyResolver struct {
	ServiceParams
}

func NewFamilyResolver(params ServiceParams) *FamilyResolver {
	return &FamilyResolver{ServiceParams: params}
}

// EffectiveStatusFor merges the user's raw status with their family plan.
// Directory or member lookups that fail degrade to "no override"; a family
// check never produces a hard failure, only a possibly conservative tier.
func (r *FamilyResolver) EffectiveStatusFor(
	ctx context.Context,
	userID string,
	raw *entitlement.SubscriptionStatus,
) *entitlement.SubscriptionStatus {
	if raw == nil {
		raw = entitlement.DefaultStatus()
	}
	if !r.Config.Family.Enabled || userID == "" {
		return raw
	}

	members, err := r.FamilyDirectory.GetFamilyMembers(ctx, userID)
	if err != nil {
		r.Logger.Warnw("family directory lookup failed, using raw status",
			"user_id", userID,
			"error", err)
		return raw
	}
	if len(members) == 0 {
		return raw
	}

	var best *entitlement.SubscriptionStatus
	for _, memberID := range members {
		if memberID == userID {
			continue
		}
		status := r.memberStatus(ctx, memberID)
		if status == nil || !status.IsActive {
			continue
		}
		if best == nil || betterStatus(status, best) {
			best = status
		}
	}
	if best == nil {
		return raw
	}

	// Family sharing can only upgrade: adopt the best member status only when
	// it strictly improves on the raw entitlement.
	cmp := best.Tier.Compare(raw.Tier)
	if cmp < 0 || (cmp == 0 && raw.IsActive) {
		return raw
	}

	return entitlement.StatusForTier(best.Tier, best.RenewalOrExpiryDate)
}

// memberStatus returns the raw status of a family member, memoized with a
// short TTL so repeated resolutions do not re-query the billing provider for
// every member each time.
func (r *FamilyResolver) memberStatus(ctx context.Context, memberID string) *entitlement.SubscriptionStatus {
	key := memberStatusCacheKey + memberID

	if value, found := r.Cache.Get(ctx, key); found {
		if status, ok := cache.UnmarshalCacheValue[entitlement.SubscriptionStatus](value); ok {
			return status
		}
	}

	status, err := r.BillingProvider.QueryStatusFor(ctx, memberID)
	if err != nil {
		r.Logger.Warnw("failed to query member status, skipping member",
			"member_id", memberID,
			"error", err)
		return nil
	}

	r.Cache.Set(ctx, key, status.Clone(), r.Config.Family.MemberStatusTTL)
	return status
}

// betterStatus reports whether a should win over b: highest tier first, then
// the later renewal date as the documented deterministic tie-break.
func betterStatus(a, b *entitlement.SubscriptionStatus) bool {
	if cmp := a.Tier.Compare(b.Tier); cmp != 0 {
		return cmp > 0
	}
	if a.RenewalOrExpiryDate == nil {
		return false
	}
	if b.RenewalOrExpiryDate == nil {
		return true
	}
	return a.RenewalOrExpiryDate.After(*b.RenewalOrExpiryDate)
}
