package auth

import (
	"context"
	"time"

	"github.com/goliatone/go-errors"
	"github.com/google/uuid"
)

// Auther drives the passwordless login lifecycle: link-based login requests,
// promotion of short-lived tokens into long-lived sessions, and logout. Every
// mint writes the new token id to the TokenStore, which is what enforces the
// single-active-session policy checked by the middleware.
type Auther struct {
	users        UserFinder
	tokens       TokenStore
	tokenService TokenService
	sender       LinkSender
	issuer       string
	loginTTL     time.Duration
	sessionTTL   time.Duration
	cooldown     time.Duration
	logger       Logger
	activitySink ActivitySink
	now          func() time.Time
}

// NewAuther returns a new Auther
func NewAuther(users UserFinder, tokens TokenStore, tokenService TokenService, sender LinkSender, cfg Config) *Auther {
	return &Auther{
		users:        users,
		tokens:       tokens,
		tokenService: tokenService,
		sender:       sender,
		issuer:       cfg.GetIssuer(),
		loginTTL:     cfg.GetLoginTokenTTL(),
		sessionTTL:   cfg.GetSessionTokenTTL(),
		cooldown:     cfg.GetLoginCooldown(),
		logger:       defLogger{},
		activitySink: noopActivitySink{},
		now:          time.Now,
	}
}

func (s *Auther) WithLogger(logger Logger) *Auther {
	if logger != nil {
		s.logger = logger
	}
	return s
}

// WithActivitySink configures an ActivitySink for emitting auth events.
func (s *Auther) WithActivitySink(sink ActivitySink) *Auther {
	s.activitySink = normalizeActivitySink(sink)
	return s
}

// WithClock overrides the time source, used by tests to exercise the cooldown.
func (s *Auther) WithClock(now func() time.Time) *Auther {
	if now != nil {
		s.now = now
	}
	return s
}

// TokenService returns the TokenService instance used by this Auther
func (s *Auther) TokenService() TokenService {
	return s.tokenService
}

// RequestLogin looks up the claimed user, enforces the login cooldown, mints
// a short-lived token, emails it as a login link, and records its id as the
// user's current session. A second request inside the cooldown fails with a
// rate-limit error carrying the remaining wait in whole minutes.
func (s *Auther) RequestLogin(ctx context.Context, userID string) error {
	user, err := s.users.GetByUserID(ctx, userID)
	if err != nil {
		s.logger.Error("RequestLogin user lookup failed: user_id=%s error=%v", userID, err)
		s.emitEvent(ctx, ActivityEventLoginFailure, userID, "", map[string]any{
			"error": err.Error(),
		})
		return err
	}

	current, err := s.tokens.Current(ctx, user.UserID)
	if err != nil {
		s.logger.Error("RequestLogin session record lookup failed: user_id=%s error=%v", user.UserID, err)
		return err
	}

	// Throttling keys off the session record's mod time, so an unconsumed
	// login link and a recent promotion both count against the cooldown.
	if current != nil {
		elapsed := s.now().Sub(current.ModTime)
		if elapsed <= s.cooldown {
			s.emitEvent(ctx, ActivityEventLoginThrottled, user.UserID, "", map[string]any{
				"elapsed": elapsed.String(),
			})
			return ThrottledError(s.cooldown - elapsed)
		}
	}

	claims := NewClaims(s.issuer, user.UserID, s.loginTTL)

	token, err := s.tokenService.Sign(claims)
	if err != nil {
		s.emitEvent(ctx, ActivityEventLoginFailure, user.UserID, "", map[string]any{
			"error": err.Error(),
		})
		return err
	}

	// Delivery failure is fatal for this request; the session record is only
	// written once the link is on its way.
	if err := s.sender.SendLoginLink(ctx, user, token); err != nil {
		s.logger.Error("RequestLogin link delivery failed: user_id=%s error=%v", user.UserID, err)
		s.emitEvent(ctx, ActivityEventLoginFailure, user.UserID, claims.TokenID(), map[string]any{
			"error": err.Error(),
		})
		return errors.Wrap(err, errors.CategoryInternal, "failed to deliver login link")
	}

	if err := s.tokens.Save(ctx, claims.SessionRecord()); err != nil {
		s.logger.Error("RequestLogin session record save failed: user_id=%s error=%v", user.UserID, err)
		return err
	}

	s.emitEvent(ctx, ActivityEventLinkSent, user.UserID, claims.TokenID(), map[string]any{
		"email": user.Email,
	})

	return nil
}

// Promote exchanges already-authenticated claims for a long-lived session
// token. The new token id supersedes the short-lived one in the TokenStore,
// making this the sole path that produces the token users hold afterwards.
func (s *Auther) Promote(ctx context.Context, claims *Claims) (string, *Claims, error) {
	if claims == nil {
		return "", nil, errors.New("claims are required for promotion", errors.CategoryInternal)
	}

	promoted := claims.Renew(s.sessionTTL)

	token, err := s.tokenService.Sign(promoted)
	if err != nil {
		return "", nil, err
	}

	if err := s.tokens.Save(ctx, promoted.SessionRecord()); err != nil {
		s.logger.Error("Promote session record save failed: user_id=%s error=%v", promoted.Subject(), err)
		return "", nil, err
	}

	s.emitEvent(ctx, ActivityEventPromoted, promoted.Subject(), promoted.TokenID(), nil)

	return token, promoted, nil
}

// Logout overwrites the user's session record with a freshly generated random
// token id that no issued token carries. The previously active token keeps a
// valid signature but fails the single-session check from here on.
func (s *Auther) Logout(ctx context.Context, userID string) error {
	record := &SessionToken{
		UserID:  userID,
		TokenID: uuid.NewString(),
		ModTime: s.now(),
	}

	if err := s.tokens.Save(ctx, record); err != nil {
		s.logger.Error("Logout session record save failed: user_id=%s error=%v", userID, err)
		return err
	}

	s.emitEvent(ctx, ActivityEventLogout, userID, "", nil)

	return nil
}

func (s *Auther) emitEvent(ctx context.Context, eventType ActivityEventType, userID, tokenID string, metadata map[string]any) {
	sink := normalizeActivitySink(s.activitySink)
	event := ActivityEvent{
		EventType:  eventType,
		UserID:     userID,
		TokenID:    tokenID,
		Metadata:   metadata,
		OccurredAt: s.now(),
	}

	if event.Metadata == nil {
		event.Metadata = map[string]any{}
	}

	if err := sink.Record(ctx, event); err != nil {
		s.logger.Warn("activity sink record error: %v", err)
	}
}
