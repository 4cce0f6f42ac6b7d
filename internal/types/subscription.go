package types

import (
	ierr "github.com/remindly/remindly/internal/errors"
	"github.com/samber/lo"
	"github.com/shopspring/decimal"
)

// SubscriptionTier is the closed set of subscription levels, ordered by
// entitlement breadth: free < premium < pro.
type SubscriptionTier string

const (
	SubscriptionTierFree    SubscriptionTier = "free"
	SubscriptionTierPremium SubscriptionTier = "premium"
	SubscriptionTierPro     SubscriptionTier = "pro"
)

// tierRank defines the entitlement ordering. Unknown tiers rank below free so
// a corrupted value can never unlock anything.
var tierRank = map[SubscriptionTier]int{
	SubscriptionTierFree:    0,
	SubscriptionTierPremium: 1,
	SubscriptionTierPro:     2,
}

func (t SubscriptionTier) Validate() error {
	allowedTiers := []SubscriptionTier{
		SubscriptionTierFree,
		SubscriptionTierPremium,
		SubscriptionTierPro,
	}

	if !lo.Contains(allowedTiers, t) {
		return ierr.NewErrorf("invalid subscription tier: %s", t).
			WithHint("Please provide a valid subscription tier").
			WithReportableDetails(map[string]any{
				"allowed": allowedTiers,
			}).
			Mark(ierr.ErrValidation)
	}
	return nil
}

// Compare returns a negative value if t unlocks less than other, zero if they
// are the same tier, and a positive value if t unlocks more.
func (t SubscriptionTier) Compare(other SubscriptionTier) int {
	return tierRank[t] - tierRank[other]
}

func (t SubscriptionTier) DisplayName() string {
	switch t {
	case SubscriptionTierPremium:
		return "Premium"
	case SubscriptionTierPro:
		return "Pro"
	default:
		return "Free"
	}
}

func (t SubscriptionTier) Description() string {
	switch t {
	case SubscriptionTierPremium:
		return "Unlimited reminders, custom themes and an ad-free experience"
	case SubscriptionTierPro:
		return "Everything in Premium plus cloud backup, natural language input and priority support"
	default:
		return "Basic reminders with a limited number of active items"
	}
}

// FeatureKey identifies a single gated capability.
type FeatureKey string

const (
	FeatureUnlimitedReminders   FeatureKey = "unlimited_reminders"
	FeatureCustomThemes         FeatureKey = "custom_themes"
	FeatureAdFree               FeatureKey = "ad_free"
	FeatureAttachments          FeatureKey = "attachments"
	FeatureLocationReminders    FeatureKey = "location_reminders"
	FeatureCloudBackup          FeatureKey = "cloud_backup"
	FeatureNaturalLanguageInput FeatureKey = "natural_language_input"
	FeaturePrioritySupport      FeatureKey = "priority_support"
)

// PremiumFeatures is the full entitlement set derived from a tier. Two
// statuses with the same tier always yield identical features; there is no
// hidden state here.
type PremiumFeatures struct {
	UnlimitedReminders   bool            `json:"unlimited_reminders"`
	MaxActiveReminders   int             `json:"max_active_reminders"` // 0 means unlimited
	CustomThemes         bool            `json:"custom_themes"`
	AdFree               bool            `json:"ad_free"`
	Attachments          bool            `json:"attachments"`
	LocationReminders    bool            `json:"location_reminders"`
	CloudBackup          bool            `json:"cloud_backup"`
	NaturalLanguageInput bool            `json:"natural_language_input"`
	PrioritySupport      bool            `json:"priority_support"`
	MonthlyPrice         decimal.Decimal `json:"monthly_price"`
}

// featureTable is the single source of truth for tier semantics. Adding a
// tier requires touching this table and tierRank only.
var featureTable = map[SubscriptionTier]PremiumFeatures{
	SubscriptionTierFree: {
		MaxActiveReminders: 50,
		MonthlyPrice:       decimal.Zero,
	},
	SubscriptionTierPremium: {
		UnlimitedReminders: true,
		CustomThemes:       true,
		AdFree:             true,
		Attachments:        true,
		LocationReminders:  true,
		MonthlyPrice:       decimal.NewFromFloat(4.99),
	},
	SubscriptionTierPro: {
		UnlimitedReminders:   true,
		CustomThemes:         true,
		AdFree:               true,
		Attachments:          true,
		LocationReminders:    true,
		CloudBackup:          true,
		NaturalLanguageInput: true,
		PrioritySupport:      true,
		MonthlyPrice:         decimal.NewFromFloat(9.99),
	},
}

// FeaturesForTier returns the feature set for a tier. Total over the closed
// enumeration; unknown tiers resolve to the free feature set.
func FeaturesForTier(tier SubscriptionTier) PremiumFeatures {
	if features, ok := featureTable[tier]; ok {
		return features
	}
	return featureTable[SubscriptionTierFree]
}

// Has reports whether a single gated capability is unlocked.
func (f PremiumFeatures) Has(key FeatureKey) bool {
	return f.Flags()[key]
}

// Flags returns the boolean feature flags keyed by feature key.
func (f PremiumFeatures) Flags() map[FeatureKey]bool {
	return map[FeatureKey]bool{
		FeatureUnlimitedReminders:   f.UnlimitedReminders,
		FeatureCustomThemes:         f.CustomThemes,
		FeatureAdFree:               f.AdFree,
		FeatureAttachments:          f.Attachments,
		FeatureLocationReminders:    f.LocationReminders,
		FeatureCloudBackup:          f.CloudBackup,
		FeatureNaturalLanguageInput: f.NaturalLanguageInput,
		FeaturePrioritySupport:      f.PrioritySupport,
	}
}

func (k FeatureKey) Validate() error {
	allowedKeys := []FeatureKey{
		FeatureUnlimitedReminders,
		FeatureCustomThemes,
		FeatureAdFree,
		FeatureAttachments,
		FeatureLocationReminders,
		FeatureCloudBackup,
		FeatureNaturalLanguageInput,
		FeaturePrioritySupport,
	}

	if !lo.Contains(allowedKeys, k) {
		return ierr.NewErrorf("invalid feature key: %s", k).
			WithHint("Please provide a valid feature key").
			WithReportableDetails(map[string]any{
				"allowed": allowedKeys,
			}).
			Mark(ierr.ErrValidation)
	}
	return nil
}
