package http

import (
	"context"

	mw "github.com/lorrc/chat-relay-backend/internal/adapters/primary/http/middleware"
)

// GetRequestID retrieves the request ID from context
func GetRequestID(ctx context.Context) string {
	return mw.GetRequestID(ctx)
}
