package entitlement

import (
	"testing"
	"time"

	"github.com/remindly/remindly/internal/types"
	"github.com/stretchr/testify/assert"
)

func TestDefaultStatus(t *testing.T) {
	status := DefaultStatus()
	assert.Equal(t, types.SubscriptionTierFree, status.Tier)
	assert.False(t, status.IsActive)
	assert.Nil(t, status.RenewalOrExpiryDate)
}

func TestSameEntitlement(t *testing.T) {
	now := time.Now().UTC()
	later := now.Add(time.Hour)

	a := StatusForTier(types.SubscriptionTierPremium, &now)
	b := StatusForTier(types.SubscriptionTierPremium, &later)
	// Renewal date differences do not change what the user can do.
	assert.True(t, a.SameEntitlement(b))

	c := StatusForTier(types.SubscriptionTierPro, &now)
	assert.False(t, a.SameEntitlement(c))

	expired := &SubscriptionStatus{Tier: types.SubscriptionTierPremium, IsActive: false}
	assert.False(t, a.SameEntitlement(expired))

	var nilStatus *SubscriptionStatus
	assert.False(t, a.SameEntitlement(nil))
	assert.True(t, nilStatus.SameEntitlement(nil))
}

func TestCloneIsIndependent(t *testing.T) {
	now := time.Now().UTC()
	original := StatusForTier(types.SubscriptionTierPro, &now)

	clone := original.Clone()
	clone.Tier = types.SubscriptionTierFree
	*clone.RenewalOrExpiryDate = now.Add(48 * time.Hour)

	assert.Equal(t, types.SubscriptionTierPro, original.Tier)
	assert.Equal(t, now, *original.RenewalOrExpiryDate)

	var nilStatus *SubscriptionStatus
	assert.Nil(t, nilStatus.Clone())
}

func TestFeaturesFollowTier(t *testing.T) {
	now := time.Now().UTC()
	pro := StatusForTier(types.SubscriptionTierPro, &now)
	assert.True(t, pro.Features().CloudBackup)

	var nilStatus *SubscriptionStatus
	assert.False(t, nilStatus.Features().AdFree)
}
