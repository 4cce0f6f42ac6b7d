package dto

import (
	"time"

	"github.com/remindly/remindly/internal/domain/entitlement"
	"github.com/remindly/remindly/internal/types"
	"github.com/remindly/remindly/internal/validator"
)

// GetEffectiveStatusRequest identifies the user whose effective status is
// being resolved.
type GetEffectiveStatusRequest struct {
	UserID string `json:"user_id" validate:"required"`
}

func (r GetEffectiveStatusRequest) Validate() error {
	return validator.ValidateRequest(r)
}

// CheckFeatureRequest identifies a per-user feature check.
type CheckFeatureRequest struct {
	UserID     string           `json:"user_id" validate:"required"`
	FeatureKey types.FeatureKey `json:"feature_key" validate:"required"`
}

func (r CheckFeatureRequest) Validate() error {
	if err := validator.ValidateRequest(r); err != nil {
		return err
	}
	return r.FeatureKey.Validate()
}

// EffectiveStatusResponse is the wire shape of a resolved entitlement.
type EffectiveStatusResponse struct {
	UserID              string                 `json:"user_id,omitempty"`
	Tier                types.SubscriptionTier `json:"tier"`
	IsActive            bool                   `json:"is_active"`
	IsPremium           bool                   `json:"is_premium"`
	IsPro               bool                   `json:"is_pro"`
	Name                string                 `json:"name"`
	Description         string                 `json:"description"`
	RenewalOrExpiryDate *time.Time             `json:"renewal_or_expiry_date,omitempty"`
	Features            types.PremiumFeatures  `json:"features"`
}

func NewEffectiveStatusResponse(userID string, status *entitlement.SubscriptionStatus) *EffectiveStatusResponse {
	return &EffectiveStatusResponse{
		UserID:              userID,
		Tier:                status.Tier,
		IsActive:            status.IsActive,
		IsPremium:           status.IsActive && status.Tier.Compare(types.SubscriptionTierPremium) >= 0,
		IsPro:               status.IsActive && status.Tier == types.SubscriptionTierPro,
		Name:                status.Name,
		Description:         status.Description,
		RenewalOrExpiryDate: status.RenewalOrExpiryDate,
		Features:            status.Features(),
	}
}

// FeatureCheckResponse is the wire shape of a single feature check.
type FeatureCheckResponse struct {
	UserID     string                 `json:"user_id"`
	FeatureKey types.FeatureKey       `json:"feature_key"`
	Enabled    bool                   `json:"enabled"`
	Tier       types.SubscriptionTier `json:"tier"`
}
