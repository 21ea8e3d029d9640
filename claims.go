package auth

import (
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// Claims is the payload of a signed identity token: issuer, subject, a unique
// token id (jti), issued-at, and expiry. Claims are immutable once built; a
// new token always carries a freshly generated token id.
type Claims struct {
	jwt.RegisteredClaims
}

// NewClaims mints claims for subject with a new token id, issued now and
// expiring after ttl.
func NewClaims(issuer, subject string, ttl time.Duration) *Claims {
	now := time.Now()
	return &Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    issuer,
			Subject:   subject,
			ID:        uuid.NewString(),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
	}
}

// Renew returns a copy with a fresh token id, issued now and expiring after
// ttl. Issuer and subject carry over; the original claims are not modified.
func (c *Claims) Renew(ttl time.Duration) *Claims {
	return NewClaims(c.RegisteredClaims.Issuer, c.RegisteredClaims.Subject, ttl)
}

// Subject returns the user identifier the token was issued for.
func (c *Claims) Subject() string {
	return c.RegisteredClaims.Subject
}

// TokenID returns the unique token identifier (jti).
func (c *Claims) TokenID() string {
	return c.RegisteredClaims.ID
}

// Issuer returns the issuing domain.
func (c *Claims) Issuer() string {
	return c.RegisteredClaims.Issuer
}

// IssuedAt returns the issuance time, zero when absent.
func (c *Claims) IssuedAt() time.Time {
	if c.RegisteredClaims.IssuedAt == nil {
		return time.Time{}
	}
	return c.RegisteredClaims.IssuedAt.Time
}

// Expires returns the expiry time, zero when absent.
func (c *Claims) Expires() time.Time {
	if c.RegisteredClaims.ExpiresAt == nil {
		return time.Time{}
	}
	return c.RegisteredClaims.ExpiresAt.Time
}

// SessionRecord converts the claims into the session row the TokenStore
// persists for the single-active-session check.
func (c *Claims) SessionRecord() *SessionToken {
	return &SessionToken{
		UserID:  c.Subject(),
		TokenID: c.TokenID(),
		ModTime: c.IssuedAt(),
	}
}

// AuthData pairs a raw token string with its decoded claims. It is produced
// once per request by the extractor and cached on the request context.
type AuthData struct {
	Token  string
	Claims *Claims
}
