package v1

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/remindly/remindly/internal/api/dto"
	"github.com/remindly/remindly/internal/domain/entitlement"
	ierr "github.com/remindly/remindly/internal/errors"
	"github.com/remindly/remindly/internal/rest/middleware"
	"github.com/remindly/remindly/internal/service"
	"github.com/remindly/remindly/internal/testutil"
	"github.com/remindly/remindly/internal/types"
	"github.com/stretchr/testify/suite"
)

type EntitlementHandlerSuite struct {
	testutil.BaseServiceTestSuite
	service service.EntitlementService
	router  *gin.Engine
}

func TestEntitlementHandler(t *testing.T) {
	suite.Run(t, new(EntitlementHandlerSuite))
}

func (s *EntitlementHandlerSuite) SetupTest() {
	s.BaseServiceTestSuite.SetupTest()

	s.service = service.NewEntitlementService(service.ServiceParams{
		Logger:          s.GetLogger(),
		Config:          s.GetConfig(),
		Cache:           s.GetCache(),
		BillingProvider: s.GetProvider(),
		FamilyDirectory: s.GetDirectory(),
	})

	handler := NewEntitlementHandler(s.service, s.GetLogger())

	gin.SetMode(gin.TestMode)
	s.router = gin.New()
	s.router.Use(
		middleware.RequestIDMiddleware,
		middleware.ErrorHandlerMiddleware(s.GetLogger()),
	)
	group := s.router.Group("/v1/entitlements")
	group.POST("/refresh", handler.Refresh)
	group.POST("/clear", handler.Clear)
	group.GET("/debug", handler.Debug)
	group.GET("/:user_id", handler.GetEffectiveStatus)
	group.GET("/:user_id/features/:key", handler.CheckFeature)
}

func (s *EntitlementHandlerSuite) serve(method, path string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, nil)
	w := httptest.NewRecorder()
	s.router.ServeHTTP(w, req)
	return w
}

func (s *EntitlementHandlerSuite) TestGetEffectiveStatus() {
	renewal := time.Now().UTC().Add(14 * 24 * time.Hour)
	s.GetDirectory().SetFamily("alice", "bob")
	s.GetProvider().SetStatusFor("bob", entitlement.StatusForTier(types.SubscriptionTierPro, &renewal))
	s.NoError(s.service.Initialize(s.GetContext()))

	w := s.serve(http.MethodGet, "/v1/entitlements/alice")
	s.Equal(http.StatusOK, w.Code)

	var resp dto.EffectiveStatusResponse
	s.NoError(json.Unmarshal(w.Body.Bytes(), &resp))
	s.Equal("alice", resp.UserID)
	s.Equal(types.SubscriptionTierPro, resp.Tier)
	s.True(resp.IsActive)
	s.True(resp.IsPro)
	s.True(resp.Features.CloudBackup)
}

func (s *EntitlementHandlerSuite) TestGetEffectiveStatusWithoutFamily() {
	s.NoError(s.service.Initialize(s.GetContext()))

	w := s.serve(http.MethodGet, "/v1/entitlements/loner")
	s.Equal(http.StatusOK, w.Code)

	var resp dto.EffectiveStatusResponse
	s.NoError(json.Unmarshal(w.Body.Bytes(), &resp))
	s.Equal(types.SubscriptionTierFree, resp.Tier)
	s.False(resp.IsPremium)
}

func (s *EntitlementHandlerSuite) TestCheckFeature() {
	renewal := time.Now().UTC().Add(14 * 24 * time.Hour)
	s.GetDirectory().SetFamily("alice", "bob")
	s.GetProvider().SetStatusFor("bob", entitlement.StatusForTier(types.SubscriptionTierPremium, &renewal))
	s.NoError(s.service.Initialize(s.GetContext()))

	w := s.serve(http.MethodGet, "/v1/entitlements/alice/features/ad_free")
	s.Equal(http.StatusOK, w.Code)

	var resp dto.FeatureCheckResponse
	s.NoError(json.Unmarshal(w.Body.Bytes(), &resp))
	s.True(resp.Enabled)
	s.Equal(types.FeatureAdFree, resp.FeatureKey)
	s.Equal(types.SubscriptionTierPremium, resp.Tier)

	// Premium does not unlock pro-only features.
	w = s.serve(http.MethodGet, "/v1/entitlements/alice/features/cloud_backup")
	s.Equal(http.StatusOK, w.Code)
	s.NoError(json.Unmarshal(w.Body.Bytes(), &resp))
	s.False(resp.Enabled)
}

func (s *EntitlementHandlerSuite) TestCheckFeatureUnknownKey() {
	s.NoError(s.service.Initialize(s.GetContext()))

	w := s.serve(http.MethodGet, "/v1/entitlements/alice/features/time_travel")
	s.Equal(http.StatusBadRequest, w.Code)

	var resp ierr.ErrorResponse
	s.NoError(json.Unmarshal(w.Body.Bytes(), &resp))
	s.False(resp.Success)
	s.NotEmpty(resp.Error.Message)
}

func (s *EntitlementHandlerSuite) TestRefresh() {
	s.NoError(s.service.Initialize(s.GetContext()))

	renewal := time.Now().UTC().Add(30 * 24 * time.Hour)
	s.GetProvider().SetStatus(entitlement.StatusForTier(types.SubscriptionTierPremium, &renewal))

	w := s.serve(http.MethodPost, "/v1/entitlements/refresh")
	s.Equal(http.StatusOK, w.Code)

	var resp dto.EffectiveStatusResponse
	s.NoError(json.Unmarshal(w.Body.Bytes(), &resp))
	s.Equal(types.SubscriptionTierPremium, resp.Tier)
	s.True(resp.IsPremium)
}

func (s *EntitlementHandlerSuite) TestRefreshProviderFailureReturnsLastKnown() {
	renewal := time.Now().UTC().Add(30 * 24 * time.Hour)
	s.GetProvider().SetStatus(entitlement.StatusForTier(types.SubscriptionTierPro, &renewal))
	s.NoError(s.service.Initialize(s.GetContext()))

	s.GetProvider().FailWith(ierr.NewError("provider down").
		WithHint("Unable to reach the billing provider").
		Mark(ierr.ErrProviderUnavailable))

	w := s.serve(http.MethodPost, "/v1/entitlements/refresh")
	s.Equal(http.StatusOK, w.Code)

	var resp dto.EffectiveStatusResponse
	s.NoError(json.Unmarshal(w.Body.Bytes(), &resp))
	s.Equal(types.SubscriptionTierPro, resp.Tier)
}

func (s *EntitlementHandlerSuite) TestClear() {
	renewal := time.Now().UTC().Add(30 * 24 * time.Hour)
	s.GetProvider().SetStatus(entitlement.StatusForTier(types.SubscriptionTierPro, &renewal))
	s.NoError(s.service.Initialize(s.GetContext()))

	w := s.serve(http.MethodPost, "/v1/entitlements/clear")
	s.Equal(http.StatusOK, w.Code)

	var resp dto.EffectiveStatusResponse
	s.NoError(json.Unmarshal(w.Body.Bytes(), &resp))
	s.Equal(types.SubscriptionTierFree, resp.Tier)
	s.False(resp.IsActive)
	s.Equal(1, s.GetProvider().ClearCount())
}

func (s *EntitlementHandlerSuite) TestDebug() {
	s.NoError(s.service.Initialize(s.GetContext()))

	w := s.serve(http.MethodGet, "/v1/entitlements/debug")
	s.Equal(http.StatusOK, w.Code)

	var resp service.DebugStatus
	s.NoError(json.Unmarshal(w.Body.Bytes(), &resp))
	s.Equal(service.EngineStateReady, resp.State)
	s.True(resp.CacheReady)
	s.Equal(types.SubscriptionTierFree, resp.RawStatus.Tier)
}
