package auth

import (
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/goliatone/go-errors"
)

// VerifyLeeway is the clock-skew tolerance applied to the expiry check.
const VerifyLeeway = 5 * time.Second

// TokenService signs and verifies identity tokens.
type TokenService interface {
	Sign(claims *Claims) (string, error)
	Verify(token string) (*Claims, error)
}

// TokenServiceImpl implements TokenService with RS512 over a KeyPair.
type TokenServiceImpl struct {
	keys   *KeyPair
	logger Logger
}

// NewTokenService creates a new TokenService instance
func NewTokenService(keys *KeyPair, logger Logger) TokenService {
	if logger == nil {
		logger = defLogger{}
	}
	return &TokenServiceImpl{
		keys:   keys,
		logger: logger,
	}
}

// Sign serializes and signs claims with the private key. Failures indicate a
// configuration problem with the key material, not a per-request error.
func (ts *TokenServiceImpl) Sign(claims *Claims) (string, error) {
	if claims == nil {
		return "", errors.New("claims must not be nil", errors.CategoryInternal)
	}

	token := jwt.NewWithClaims(jwt.SigningMethodRS512, claims)

	signed, err := token.SignedString(ts.keys.Private())
	if err != nil {
		return "", errors.Wrap(err, errors.CategoryInternal, "failed to sign token")
	}

	return signed, nil
}

// Verify parses the token, checks the RS512 signature against the public key,
// and validates expiry with a small leeway window. Both checks are mandatory.
func (ts *TokenServiceImpl) Verify(tokenString string) (*Claims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &Claims{}, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodRSA); !ok {
			ts.logger.Error("TokenService verify encountered unexpected signing method: %v", t.Header["alg"])
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return ts.keys.Public(), nil
	}, jwt.WithLeeway(VerifyLeeway), jwt.WithValidMethods([]string{jwt.SigningMethodRS512.Alg()}))

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
		ts.logger.Error("TokenService verify could not decode claims")
		return nil, ErrTokenInvalid
	}

	return claims, nil
}
