package middleware

import (
	"time"

	sentrygin "github.com/getsentry/sentry-go/gin"
	"github.com/gin-gonic/gin"
	"github.com/remindly/remindly/internal/config"
	"github.com/remindly/remindly/internal/types"
)

// SentryMiddleware returns a middleware that captures errors and performance data
func SentryMiddleware(cfg *config.Configuration) gin.HandlerFunc {
	if !cfg.Sentry.Enabled {
		return func(c *gin.Context) {
			c.Next()
		}
	}

	return sentrygin.New(sentrygin.Options{
		Repanic:         true,
		WaitForDelivery: false,
		Timeout:         2 * time.Second,
	})
}

// SentryUserContextMiddleware sets user_id on the Sentry scope when it is
// present in the request context, so captured events carry it as a tag.
func SentryUserContextMiddleware(c *gin.Context) {
	hub := sentrygin.GetHubFromContext(c)
	if hub == nil {
		c.Next()
		return
	}
	if userID := types.GetUserID(c.Request.Context()); userID != "" {
		hub.Scope().SetTag("user_id", userID)
	}
	c.Next()
}
