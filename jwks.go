package auth

import (
	"fmt"
	"time"

	"github.com/MicahParks/keyfunc/v2"
	"github.com/golang-jwt/jwt/v5"
	"github.com/goliatone/go-errors"
)

// JWKSVerifier verifies tokens against one or more remote JWK Sets. It is a
// verification-only TokenService for deployments that consume tokens issued
// elsewhere, e.g. a sibling service that trusts this module's published keys.
type JWKSVerifier struct {
	keyfunc jwt.Keyfunc
	logger  Logger
}

// NewJWKSVerifier fetches the given JWK Set URLs and keeps them refreshed in
// the background.
func NewJWKSVerifier(urls []string, logger Logger) (*JWKSVerifier, error) {
	if logger == nil {
		logger = defLogger{}
	}

	if len(urls) == 0 {
		return nil, errors.New("at least one JWK Set URL is required", errors.CategoryBadInput)
	}

	opts := keyfunc.Options{
		RefreshErrorHandler: func(err error) {
			logger.Error("failed to do a background refresh of JWK Set: %s", err)
		},
		RefreshInterval:   time.Hour,
		RefreshRateLimit:  time.Minute * 5,
		RefreshTimeout:    time.Second * 10,
		RefreshUnknownKID: true,
	}

	m := make(map[string]keyfunc.Options, len(urls))
	for _, url := range urls {
		m[url] = opts
	}

	multi, err := keyfunc.GetMultiple(m, keyfunc.MultipleOptions{
		KeySelector: keyfunc.KeySelectorFirst,
	})
	if err != nil {
		return nil, errors.Wrap(err, errors.CategoryInternal, "failed to fetch JWK Set URLs")
	}

	return &JWKSVerifier{keyfunc: multi.Keyfunc, logger: logger}, nil
}

// Sign is not supported; JWKS deployments hold no private key.
func (v *JWKSVerifier) Sign(claims *Claims) (string, error) {
	return "", errors.New("JWKS verifier cannot sign tokens", errors.CategoryInternal)
}

// Verify parses the token and checks its signature against the JWK Set keys,
// with the same expiry leeway as the local verifier.
func (v *JWKSVerifier) Verify(tokenString string) (*Claims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &Claims{}, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodRSA); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return v.keyfunc(t)
	}, jwt.WithLeeway(VerifyLeeway))

	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, ErrTokenExpired
		}
		return nil, errors.Wrap(err, ErrTokenInvalid.Category, ErrTokenInvalid.Message).
			WithTextCode(ErrTokenInvalid.TextCode).
			WithCode(ErrTokenInvalid.Code)
	}

	claims, ok := token.Claims.(*Claims)
	if !ok || !token.Valid {
		return nil, ErrTokenInvalid
	}

	return claims, nil
}

var _ TokenService = (*JWKSVerifier)(nil)
