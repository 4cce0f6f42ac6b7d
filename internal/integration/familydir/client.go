package familydir

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"

	"github.com/hashicorp/go-retryablehttp"
	"github.com/remindly/remindly/internal/config"
	ierr "github.com/remindly/remindly/internal/errors"
	"github.com/remindly/remindly/internal/logger"
	"github.com/remindly/remindly/internal/types"
)

// membersResponse is the shape of GET /v1/families/{user_id}/members.
type membersResponse struct {
	FamilyID string   `json:"family_id"`
	Members  []string `json:"members"`
}

// Client implements entitlement.FamilyDirectory against the household
// membership API.
type Client struct {
	cfg        config.FamilyConfig
	logger     *logger.Logger
	httpClient *retryablehttp.Client
}

func NewClient(cfg *config.Configuration, log *logger.Logger) *Client {
	httpClient := retryablehttp.NewClient()
	httpClient.HTTPClient.Timeout = cfg.Family.Timeout
	httpClient.Logger = log.GetRetryableHTTPLogger()

	return &Client{
		cfg:        cfg.Family,
		logger:     log,
		httpClient: httpClient,
	}
}

func (c *Client) GetFamilyMembers(ctx context.Context, userID string) ([]string, error) {
	if userID == "" {
		return nil, ierr.NewError("user id is required").
			WithHint("Please provide a valid user id").
			Mark(ierr.ErrValidation)
	}

	httpReq, err := retryablehttp.NewRequestWithContext(ctx, http.MethodGet,
		c.cfg.BaseURL+"/v1/families/"+userID+"/members", nil)
	if err != nil {
		return nil, ierr.WithError(err).
			WithHint("Failed to create family members request").
			Mark(ierr.ErrInternal)
	}

	httpReq.Header.Set("Authorization", "Bearer "+c.cfg.APIKey)
	httpReq.Header.Set(types.HeaderRequestID, types.GetRequestID(ctx))

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		c.logger.Errorw("failed to query family directory", "user_id", userID, "error", err)
		return nil, ierr.WithError(err).
			WithHint("Unable to connect to the family directory").
			Mark(ierr.ErrDirectoryUnavailable)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, ierr.WithError(err).
			WithHint("Failed to read family directory response").
			Mark(ierr.ErrDirectoryUnavailable)
	}

	// 404 means the user is not on a family plan, which is not an error.
	if resp.StatusCode == http.StatusNotFound {
		return nil, nil
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, ierr.NewError("family directory error").
			WithHint(fmt.Sprintf("HTTP status %d", resp.StatusCode)).
			Mark(ierr.ErrDirectoryUnavailable)
	}

	var members membersResponse
	if err := json.Unmarshal(respBody, &members); err != nil {
		return nil, ierr.WithError(err).
			WithHint("Failed to parse family directory response").
			Mark(ierr.ErrDirectoryUnavailable)
	}
	return members.Members, nil
}
