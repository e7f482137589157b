package testutil

import (
	"context"
	"net/http"

	"kycdsl/pkg/requestcontext"
)

// WithActor marks the request as authenticated by actor.
// This simulates what the auth middleware would do for authenticated requests.
func WithActor(req *http.Request, actor string) *http.Request {
	return req.WithContext(requestcontext.WithActor(req.Context(), actor))
}

// WithContextValue adds an arbitrary key-value pair to the request context.
func WithContextValue(req *http.Request, key, value any) *http.Request {
	ctx := context.WithValue(req.Context(), key, value)
	return req.WithContext(ctx)
}
