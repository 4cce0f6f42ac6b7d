package v1

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/remindly/remindly/internal/api/dto"
	"github.com/remindly/remindly/internal/logger"
	"github.com/remindly/remindly/internal/service"
	"github.com/remindly/remindly/internal/types"
)

type EntitlementHandler struct {
	entitlementService service.EntitlementService
	logger             *logger.Logger
}

func NewEntitlementHandler(
	entitlementService service.EntitlementService,
	logger *logger.Logger,
) *EntitlementHandler {
	return &EntitlementHandler{
		entitlementService: entitlementService,
		logger:             logger,
	}
}

// GetEffectiveStatus resolves the family-merged status for a user.
func (h *EntitlementHandler) GetEffectiveStatus(c *gin.Context) {
	req := dto.GetEffectiveStatusRequest{UserID: c.Param("user_id")}
	if err := req.Validate(); err != nil {
		c.Error(err)
		return
	}

	status, err := h.entitlementService.GetEffectivePremiumStatus(c.Request.Context(), req.UserID)
	if err != nil {
		h.logger.Errorw("failed to resolve effective status", "user_id", req.UserID, "error", err)
		c.Error(err)
		return
	}

	c.JSON(http.StatusOK, dto.NewEffectiveStatusResponse(req.UserID, status))
}

// CheckFeature answers a per-user feature gate check against the effective
// status.
func (h *EntitlementHandler) CheckFeature(c *gin.Context) {
	req := dto.CheckFeatureRequest{
		UserID:     c.Param("user_id"),
		FeatureKey: types.FeatureKey(c.Param("key")),
	}
	if err := req.Validate(); err != nil {
		c.Error(err)
		return
	}

	status, err := h.entitlementService.GetEffectivePremiumStatus(c.Request.Context(), req.UserID)
	if err != nil {
		c.Error(err)
		return
	}

	c.JSON(http.StatusOK, dto.FeatureCheckResponse{
		UserID:     req.UserID,
		FeatureKey: req.FeatureKey,
		Enabled:    status.Features().Has(req.FeatureKey),
		Tier:       status.Tier,
	})
}

// Refresh forces a billing provider re-query and returns the raw status the
// engine holds afterwards. A provider failure still returns the last known
// good status.
func (h *EntitlementHandler) Refresh(c *gin.Context) {
	h.entitlementService.RefreshStatus(c.Request.Context())
	c.JSON(http.StatusOK, dto.NewEffectiveStatusResponse("", h.entitlementService.GetCurrentStatus()))
}

// Clear resets the stored status to free/inactive, e.g. on logout.
func (h *EntitlementHandler) Clear(c *gin.Context) {
	h.entitlementService.ForceClearStatus(c.Request.Context())
	c.JSON(http.StatusOK, dto.NewEffectiveStatusResponse("", h.entitlementService.GetCurrentStatus()))
}

// Debug dumps engine internals for diagnostics.
func (h *EntitlementHandler) Debug(c *gin.Context) {
	c.JSON(http.StatusOK, h.entitlementService.DebugStatus())
}
