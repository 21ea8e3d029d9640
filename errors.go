package auth

import (
	"fmt"
	"net/http"
	"time"

	"github.com/goliatone/go-errors"
)

const (
	TextCodeMissingToken    = "auth_missing_token"
	TextCodeTokenInvalid    = "auth_token_invalid"
	TextCodeTokenExpired    = "auth_token_expired"
	TextCodeUserNotFound    = "auth_user_not_found"
	TextCodeNoActiveToken   = "auth_no_active_token"
	TextCodeTokenSuperseded = "auth_token_superseded"
	TextCodeLoginThrottled  = "auth_login_throttled"
	TextCodeNotPermitted    = "auth_not_permitted"
)

// ErrMissingToken is returned when no token is present in any transport source.
var ErrMissingToken = errors.New("missing authentication token", errors.CategoryAuth).
	WithTextCode(TextCodeMissingToken).
	WithCode(errors.CodeUnauthorized)

// ErrTokenInvalid covers malformed tokens and signature failures.
var ErrTokenInvalid = errors.New("invalid authentication token", errors.CategoryAuth).
	WithTextCode(TextCodeTokenInvalid).
	WithCode(errors.CodeUnauthorized)

// ErrTokenExpired is returned when a token fails the expiry check.
var ErrTokenExpired = errors.New("authentication token expired", errors.CategoryAuth).
	WithTextCode(TextCodeTokenExpired).
	WithCode(errors.CodeUnauthorized)

// ErrUserNotFound is returned when login is attempted for an unknown user.
var ErrUserNotFound = errors.New("user not found", errors.CategoryAuth).
	WithTextCode(TextCodeUserNotFound).
	WithCode(errors.CodeUnauthorized)

// ErrNoActiveToken is returned when a user has no current session record.
var ErrNoActiveToken = errors.New("no active token registration", errors.CategoryAuthz).
	WithTextCode(TextCodeNoActiveToken).
	WithCode(errors.CodeForbidden)

// ErrTokenSuperseded is returned when a structurally valid token is no longer
// the user's current session, e.g. after a promotion or logout elsewhere.
var ErrTokenSuperseded = errors.New("invalid token", errors.CategoryAuthz).
	WithTextCode(TextCodeTokenSuperseded).
	WithCode(errors.CodeForbidden)

// ErrNotPermitted is returned by the Authorize stage on a negative oracle answer.
var ErrNotPermitted = errors.New("insufficient rights", errors.CategoryAuth).
	WithTextCode(TextCodeNotPermitted).
	WithCode(errors.CodeUnauthorized)

// ThrottledError reports a login attempt inside the cooldown window, carrying
// the remaining wait in whole minutes for client display.
func ThrottledError(wait time.Duration) *errors.Error {
	minutes := int(wait.Round(time.Minute) / time.Minute)
	if minutes < 1 {
		minutes = 1
	}
	return errors.New(fmt.Sprintf("wait-minutes:%d", minutes), errors.CategoryRateLimit).
		WithTextCode(TextCodeLoginThrottled).
		WithCode(http.StatusNotAcceptable).
		WithMetadata(map[string]any{"wait_minutes": minutes})
}

// IsThrottledError reports whether err is a login cooldown rejection.
func IsThrottledError(err error) bool {
	var richErr *errors.Error
	if !errors.As(err, &richErr) {
		return false
	}
	return richErr.TextCode == TextCodeLoginThrottled
}

// IsTokenExpiredError will check for expired tokens
func IsTokenExpiredError(err error) bool {
	if err == nil {
		return false
	}
	return errors.Is(err, ErrTokenExpired)
}
