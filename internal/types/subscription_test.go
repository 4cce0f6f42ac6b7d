package types

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSubscriptionTierOrdering(t *testing.T) {
	assert.Negative(t, SubscriptionTierFree.Compare(SubscriptionTierPremium))
	assert.Negative(t, SubscriptionTierPremium.Compare(SubscriptionTierPro))
	assert.Negative(t, SubscriptionTierFree.Compare(SubscriptionTierPro))
	assert.Zero(t, SubscriptionTierPremium.Compare(SubscriptionTierPremium))
	assert.Positive(t, SubscriptionTierPro.Compare(SubscriptionTierFree))

	// A corrupted tier must never rank above free.
	assert.LessOrEqual(t, SubscriptionTier("platinum").Compare(SubscriptionTierFree), 0)
}

func TestSubscriptionTierValidate(t *testing.T) {
	assert.NoError(t, SubscriptionTierFree.Validate())
	assert.NoError(t, SubscriptionTierPremium.Validate())
	assert.NoError(t, SubscriptionTierPro.Validate())
	assert.Error(t, SubscriptionTier("platinum").Validate())
	assert.Error(t, SubscriptionTier("").Validate())
}

// Every boolean flag unlocked by a lower tier must stay unlocked in every
// higher tier.
func TestFeatureFlagsMonotone(t *testing.T) {
	ordered := []SubscriptionTier{
		SubscriptionTierFree,
		SubscriptionTierPremium,
		SubscriptionTierPro,
	}

	for i := 1; i < len(ordered); i++ {
		lower := FeaturesForTier(ordered[i-1]).Flags()
		higher := FeaturesForTier(ordered[i]).Flags()
		for key, enabled := range lower {
			if enabled {
				assert.Truef(t, higher[key],
					"feature %s unlocked by %s but not by %s", key, ordered[i-1], ordered[i])
			}
		}
	}
}

func TestFeaturesForTier(t *testing.T) {
	free := FeaturesForTier(SubscriptionTierFree)
	assert.False(t, free.UnlimitedReminders)
	assert.Equal(t, 50, free.MaxActiveReminders)
	assert.True(t, free.MonthlyPrice.IsZero())

	premium := FeaturesForTier(SubscriptionTierPremium)
	assert.True(t, premium.UnlimitedReminders)
	assert.True(t, premium.AdFree)
	assert.False(t, premium.CloudBackup)

	pro := FeaturesForTier(SubscriptionTierPro)
	assert.True(t, pro.CloudBackup)
	assert.True(t, pro.PrioritySupport)
	assert.True(t, pro.MonthlyPrice.GreaterThan(premium.MonthlyPrice))

	// Unknown tiers resolve to the free feature set.
	assert.Equal(t, free, FeaturesForTier(SubscriptionTier("platinum")))
}

func TestFeatureKeyValidate(t *testing.T) {
	assert.NoError(t, FeatureAdFree.Validate())
	assert.NoError(t, FeatureCloudBackup.Validate())
	assert.Error(t, FeatureKey("time_travel").Validate())
}

func TestPremiumFeaturesHas(t *testing.T) {
	pro := FeaturesForTier(SubscriptionTierPro)
	assert.True(t, pro.Has(FeatureNaturalLanguageInput))

	free := FeaturesForTier(SubscriptionTierFree)
	assert.False(t, free.Has(FeatureCustomThemes))
}
