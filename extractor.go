package auth

import (
	"github.com/goliatone/go-router"
)

// Extract locates the candidate token for a request and decodes it. Sources
// are consulted in strict priority order: the named cookie, then the named
// header, then the query parameter (same name as the cookie); the first
// present value wins and later sources are not consulted.
//
// Extraction is idempotent per request: when the authenticate stage has
// already cached AuthData on the router locals under cfg.GetContextKey(),
// that value is returned without re-parsing or re-verifying.
func Extract(ctx router.Context, verifier TokenService, cfg Config) (*AuthData, error) {
	if data, ok := AuthFromRouterContext(ctx, cfg.GetContextKey()); ok {
		return data, nil
	}

	token := ctx.Cookies(cfg.GetCookieName())
	if token == "" {
		token = ctx.Header(cfg.GetHeaderName())
	}
	if token == "" {
		token = ctx.Query(cfg.GetCookieName(), "")
	}
	if token == "" {
		return nil, ErrMissingToken
	}

	claims, err := verifier.Verify(token)
	if err != nil {
		return nil, err
	}

	return &AuthData{Token: token, Claims: claims}, nil
}
