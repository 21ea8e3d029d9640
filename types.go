package auth

import (
	"context"
	"fmt"
	"time"
)

const (
	// DefaultCookieName is the cookie (and query parameter) carrying the token.
	DefaultCookieName = "atk"
	// DefaultHeaderName is the request header carrying the token.
	DefaultHeaderName = "X-Auth-Token"
)

type Logger interface {
	Debug(format string, args ...any)
	Info(format string, args ...any)
	Warn(format string, args ...any)
	Error(format string, args ...any)
}

// Config holds auth options
type Config interface {
	GetIssuer() string
	GetAppPath() string
	GetCookieName() string
	GetHeaderName() string
	GetContextKey() string
	GetLoginTokenTTL() time.Duration
	GetSessionTokenTTL() time.Duration
	GetLoginCooldown() time.Duration
}

// TokenStore is the single shared source of truth for the "current token" of
// each user. Save has upsert semantics keyed by user id; the stored row acts
// as a revocation list of size one.
type TokenStore interface {
	// Current returns the session record for the user, or (nil, nil) when no
	// record exists.
	Current(ctx context.Context, userID string) (*SessionToken, error)
	// Save records the token id as the user's current session, superseding any
	// previous record. The write must be atomic per user row.
	Save(ctx context.Context, record *SessionToken) error
}

// UserFinder retrieves user accounts by their business identifier.
type UserFinder interface {
	GetByUserID(ctx context.Context, userID string) (*User, error)
}

// Authorizer is the permission oracle consulted by the Authorize stage.
type Authorizer interface {
	Allowed(ctx context.Context, userID, appCode, methodCode string) (bool, error)
}

// LinkSender delivers a freshly minted login token to the user out-of-band.
type LinkSender interface {
	SendLoginLink(ctx context.Context, user *User, token string) error
}

type defLogger struct{}

func (d defLogger) Error(format string, args ...any) {
	fmt.Printf("[ERR] AUTH "+newline(format), args...)
}

func (d defLogger) Warn(format string, args ...any) {
	fmt.Printf("[WRN] AUTH "+newline(format), args...)
}

func (d defLogger) Info(format string, args ...any) {
	fmt.Printf("[INF] AUTH "+newline(format), args...)
}

func (d defLogger) Debug(format string, args ...any) {
	fmt.Printf("[DBG] AUTH "+newline(format), args...)
}

func newline(s string) string {
	if len(s) > 0 && s[len(s)-1] != '\n' {
		s += "\n"
	}
	return s
}
