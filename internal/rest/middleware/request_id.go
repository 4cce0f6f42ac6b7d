package middleware

import (
	"github.com/gin-gonic/gin"
	"github.com/remindly/remindly/internal/types"
)

// RequestIDMiddleware propagates the client-supplied request id, or generates
// one, into the request context and response headers.
func RequestIDMiddleware(c *gin.Context) {
	requestID := c.GetHeader(types.HeaderRequestID)
	if requestID == "" {
		requestID = types.GenerateRequestID()
	}

	ctx := types.SetRequestID(c.Request.Context(), requestID)
	if userID := c.GetHeader(types.HeaderUserID); userID != "" {
		ctx = types.SetUserID(ctx, userID)
	}

	c.Request = c.Request.WithContext(ctx)
	c.Writer.Header().Set(types.HeaderRequestID, requestID)
	c.Next()
}
