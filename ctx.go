package auth

import (
	"context"

	"github.com/goliatone/go-router"
)

var authDataCtxKey = &contextKey{"auth_data"}

type contextKey struct {
	name string
}

// WithAuthContext sets the extracted AuthData in the given context
func WithAuthContext(r context.Context, data *AuthData) context.Context {
	return context.WithValue(r, authDataCtxKey, data)
}

// AuthFromContext finds the extracted AuthData in the standard context.
func AuthFromContext(ctx context.Context) (*AuthData, bool) {
	raw, ok := ctx.Value(authDataCtxKey).(*AuthData)
	return raw, ok
}

// ClaimsFromContext is a convenience accessor for just the claims.
func ClaimsFromContext(ctx context.Context) (*Claims, bool) {
	data, ok := AuthFromContext(ctx)
	if !ok || data == nil {
		return nil, false
	}
	return data.Claims, true
}

// AuthFromRouterContext reads the cached AuthData from the router locals, as
// stored by the authenticate stage under key.
func AuthFromRouterContext(ctx router.Context, key string) (*AuthData, bool) {
	if key == "" {
		key = "auth"
	}
	raw := ctx.Locals(key)
	if raw == nil {
		return nil, false
	}
	data, ok := raw.(*AuthData)
	return data, ok
}
