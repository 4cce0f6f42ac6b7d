package revenuecat

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"sync"
	"time"

	"github.com/hashicorp/go-retryablehttp"
	"github.com/remindly/remindly/internal/config"
	"github.com/remindly/remindly/internal/domain/entitlement"
	ierr "github.com/remindly/remindly/internal/errors"
	"github.com/remindly/remindly/internal/logger"
	"github.com/remindly/remindly/internal/types"
)

// Entitlement identifiers as configured in the subscriptions dashboard.
const (
	entitlementPremium = "premium"
	entitlementPro     = "pro"
)

// Client implements entitlement.BillingProvider against a RevenueCat-style
// subscriptions API. The engine serializes device-level queries, so the
// client does not guard against concurrent QueryStatus calls itself.
type Client struct {
	cfg        config.BillingConfig
	logger     *logger.Logger
	httpClient *retryablehttp.Client

	// etags holds per-user ETags so unchanged subscribers can be revalidated
	// cheaply; ClearCache drops them along with the cached bodies.
	mu     sync.Mutex
	etags  map[string]string
	bodies map[string][]byte
}

// NewClient creates a billing provider client with retrying transport.
func NewClient(cfg *config.Configuration, log *logger.Logger) *Client {
	httpClient := retryablehttp.NewClient()
	httpClient.RetryMax = cfg.Billing.MaxRetries
	httpClient.HTTPClient.Timeout = cfg.Billing.Timeout
	httpClient.Logger = log.GetRetryableHTTPLogger()

	return &Client{
		cfg:        cfg.Billing,
		logger:     log,
		httpClient: httpClient,
		etags:      make(map[string]string),
		bodies:     make(map[string][]byte),
	}
}

func (c *Client) QueryStatus(ctx context.Context) (*entitlement.SubscriptionStatus, error) {
	return c.QueryStatusFor(ctx, c.cfg.AppUserID)
}

func (c *Client) QueryStatusFor(ctx context.Context, userID string) (*entitlement.SubscriptionStatus, error) {
	if userID == "" {
		return nil, ierr.NewError("app user id is required").
			WithHint("Configure billing.app_user_id or pass a user id").
			Mark(ierr.ErrValidation)
	}

	subscriber, err := c.getSubscriber(ctx, userID)
	if err != nil {
		return nil, err
	}
	return c.toStatus(subscriber), nil
}

// ClearCache drops client-side cached subscriber state without issuing a
// network query.
func (c *Client) ClearCache(ctx context.Context) error {
	c.mu.Lock()
	c.etags = make(map[string]string)
	c.bodies = make(map[string][]byte)
	c.mu.Unlock()

	c.logger.Debugw("cleared billing provider client cache")
	return nil
}

func (c *Client) getSubscriber(ctx context.Context, userID string) (*Subscriber, error) {
	httpReq, err := retryablehttp.NewRequestWithContext(ctx, http.MethodGet,
		c.cfg.BaseURL+"/v1/subscribers/"+userID, nil)
	if err != nil {
		return nil, ierr.WithError(err).
			WithHint("Failed to create subscriber request").
			Mark(ierr.ErrInternal)
	}

	httpReq.Header.Set("Authorization", "Bearer "+c.cfg.APIKey)
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set(types.HeaderRequestID, types.GetRequestID(ctx))

	c.mu.Lock()
	if etag := c.etags[userID]; etag != "" {
		httpReq.Header.Set("If-None-Match", etag)
	}
	c.mu.Unlock()

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		c.logger.Errorw("failed to query subscriber", "user_id", userID, "error", err)
		return nil, ierr.WithError(err).
			WithHint("Unable to connect to the subscriptions API").
			Mark(ierr.ErrProviderUnavailable)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, ierr.WithError(err).
			WithHint("Failed to read subscriptions API response").
			Mark(ierr.ErrProviderUnavailable)
	}

	switch {
	case resp.StatusCode == http.StatusNotModified:
		c.mu.Lock()
		respBody = c.bodies[userID]
		c.mu.Unlock()
		if respBody == nil {
			return nil, ierr.NewError("subscriptions API returned 304 without a cached body").
				WithHint("Retry after clearing the billing cache").
				Mark(ierr.ErrProviderUnavailable)
		}
	case resp.StatusCode == http.StatusNotFound:
		return nil, ierr.NewError("subscriber not found").
			WithHint(fmt.Sprintf("No subscriber record for user %s", userID)).
			WithReportableDetails(map[string]any{"user_id": userID}).
			Mark(ierr.ErrNotFound)
	case resp.StatusCode < 200 || resp.StatusCode >= 300:
		var errResp ErrorResponse
		if err := json.Unmarshal(respBody, &errResp); err == nil && errResp.Message != "" {
			c.logger.Errorw("subscriptions API error",
				"status", resp.StatusCode,
				"code", errResp.Code,
				"message", errResp.Message)
			return nil, ierr.NewError(errResp.Message).
				WithHint("Subscriptions API rejected the query").
				WithReportableDetails(map[string]any{"code": errResp.Code}).
				Mark(ierr.ErrProviderUnavailable)
		}
		return nil, ierr.NewError("subscriptions API error").
			WithHint(fmt.Sprintf("HTTP status %d", resp.StatusCode)).
			Mark(ierr.ErrProviderUnavailable)
	default:
		if etag := resp.Header.Get("ETag"); etag != "" {
			c.mu.Lock()
			c.etags[userID] = etag
			c.bodies[userID] = respBody
			c.mu.Unlock()
		}
	}

	var subscriberResp SubscriberResponse
	if err := json.Unmarshal(respBody, &subscriberResp); err != nil {
		return nil, ierr.WithError(err).
			WithHint("Failed to parse subscriptions API response").
			Mark(ierr.ErrProviderUnavailable)
	}
	return &subscriberResp.Subscriber, nil
}

// toStatus maps granted entitlements onto the tier model. When both premium
// and pro are active, pro wins per the tier ordering.
func (c *Client) toStatus(subscriber *Subscriber) *entitlement.SubscriptionStatus {
	now := time.Now().UTC()

	tier := types.SubscriptionTierFree
	var renewal *time.Time

	if ent, ok := subscriber.Entitlements[entitlementPremium]; ok && ent.Active(now) {
		tier = types.SubscriptionTierPremium
		renewal = ent.ExpiresDate
	}
	if ent, ok := subscriber.Entitlements[entitlementPro]; ok && ent.Active(now) {
		tier = types.SubscriptionTierPro
		renewal = ent.ExpiresDate
	}

	if tier == types.SubscriptionTierFree {
		return entitlement.DefaultStatus()
	}
	return entitlement.StatusForTier(tier, renewal)
}
