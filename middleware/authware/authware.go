// Package authware provides the two request-pipeline stages of the
// authentication core: Authenticate, which verifies the presented token and
// cross-checks it against the single-active-session registry, and Authorize,
// which gates one protected operation behind a per-user permission lookup.
// Stages compose as ordered middleware and short-circuit on the first failure.
package authware

import (
	"github.com/goliatone/go-errors"
	"github.com/goliatone/go-router"

	"github.com/tokengate/go-auth"
)

type Config struct {
	// Verifier decodes and validates raw tokens. Required.
	Verifier auth.TokenService
	// Store is the shared session-token registry. Required for Authenticate.
	Store auth.TokenStore
	// Oracle answers permission checks. Required for Authorize.
	Oracle auth.Authorizer
	// AuthCfg supplies transport names (cookie, header, query) and the locals
	// key under which extracted auth data is cached. Required.
	AuthCfg auth.Config

	// Filter skips the stage entirely when it returns true.
	Filter func(router.Context) bool
	// SuccessHandler, when set, runs instead of the wrapped handler after the
	// stage passes.
	SuccessHandler router.HandlerFunc
	// ErrorHandler renders stage failures. Defaults to a status + message
	// response derived from the rich error.
	ErrorHandler router.ErrorHandler
}

func setDefaults(cfg Config) Config {
	if cfg.Verifier == nil {
		panic("AUTH: authware configuration: Verifier is required.")
	}

	if cfg.AuthCfg == nil {
		panic("AUTH: authware configuration: AuthCfg is required.")
	}

	if cfg.ErrorHandler == nil {
		cfg.ErrorHandler = defaultErrorHandler
	}

	return cfg
}

func defaultErrorHandler(c router.Context, err error) error {
	var richErr *errors.Error
	if !errors.As(err, &richErr) {
		return c.Status(router.StatusUnauthorized).SendString("authentication failed")
	}
	return c.Status(richErr.Code).SendString(richErr.Message)
}

// Authenticate returns the stage that runs before any protected handler. It
// extracts and verifies the token, then requires the token id to match the
// registry's current record for the subject; a missing record or a mismatch
// is rejected so that promoting or logging out elsewhere invalidates every
// previously issued token. On success the extracted auth data is cached on
// the request for downstream stages. Exactly one Store read, no writes.
func Authenticate(config Config) router.MiddlewareFunc {
	cfg := setDefaults(config)
	if cfg.Store == nil {
		panic("AUTH: authware configuration: Store is required for Authenticate.")
	}

	return func(next router.HandlerFunc) router.HandlerFunc {
		return func(ctx router.Context) error {
			if cfg.Filter != nil && cfg.Filter(ctx) {
				return next(ctx)
			}

			data, err := auth.Extract(ctx, cfg.Verifier, cfg.AuthCfg)
			if err != nil {
				return cfg.ErrorHandler(ctx, err)
			}

			current, err := cfg.Store.Current(ctx.Context(), data.Claims.Subject())
			if err != nil {
				return cfg.ErrorHandler(ctx, err)
			}

			if current == nil {
				return cfg.ErrorHandler(ctx, auth.ErrNoActiveToken)
			}

			if current.TokenID != data.Claims.TokenID() {
				return cfg.ErrorHandler(ctx, auth.ErrTokenSuperseded)
			}

			ctx.Locals(cfg.AuthCfg.GetContextKey(), data)
			ctx.SetContext(auth.WithAuthContext(ctx.Context(), data))

			if cfg.SuccessHandler != nil {
				return cfg.SuccessHandler(ctx)
			}
			return next(ctx)
		}
	}
}

// Authorize returns a stage bound at setup time to one protected operation,
// identified by its (application code, method code) pair. It assumes
// Authenticate already ran for the request: it reuses the cached auth data to
// re-derive the subject and only asks the oracle whether that subject may
// perform the operation. Chain several Authorize stages for endpoints that
// need more than one permission.
func Authorize(appCode, methodCode string, config Config) router.MiddlewareFunc {
	cfg := setDefaults(config)
	if cfg.Oracle == nil {
		panic("AUTH: authware configuration: Oracle is required for Authorize.")
	}

	return func(next router.HandlerFunc) router.HandlerFunc {
		return func(ctx router.Context) error {
			if cfg.Filter != nil && cfg.Filter(ctx) {
				return next(ctx)
			}

			data, err := auth.Extract(ctx, cfg.Verifier, cfg.AuthCfg)
			if err != nil {
				return cfg.ErrorHandler(ctx, err)
			}

			allowed, err := cfg.Oracle.Allowed(ctx.Context(), data.Claims.Subject(), appCode, methodCode)
			if err != nil {
				return cfg.ErrorHandler(ctx, err)
			}

			if !allowed {
				return cfg.ErrorHandler(ctx, auth.ErrNotPermitted)
			}

			if cfg.SuccessHandler != nil {
				return cfg.SuccessHandler(ctx)
			}
			return next(ctx)
		}
	}
}
