// Package mailer delivers login links over SMTP.
package mailer

import (
	"context"
	"fmt"

	"github.com/goliatone/go-errors"
	mail "github.com/wneessen/go-mail"

	auth "github.com/tokengate/go-auth"
)

// Config carries SMTP credentials and the link template inputs.
type Config struct {
	Host     string
	Port     int
	Username string
	Password string

	FromName    string
	FromAddress string

	// AppDomain and AppPath prefix the login link, e.g.
	// https://portal.example.com + /portal.
	AppDomain  string
	AppPath    string
	CookieName string
}

// LinkSender mails a one time login link to a user.
type LinkSender struct {
	cfg    Config
	client *mail.Client
	logger auth.Logger
}

// New builds a LinkSender with an authenticated SMTP client.
func New(cfg Config, logger auth.Logger) (*LinkSender, error) {
	if cfg.CookieName == "" {
		cfg.CookieName = auth.DefaultCookieName
	}

	client, err := mail.NewClient(cfg.Host,
		mail.WithPort(cfg.Port),
		mail.WithSMTPAuth(mail.SMTPAuthPlain),
		mail.WithUsername(cfg.Username),
		mail.WithPassword(cfg.Password),
	)
	if err != nil {
		return nil, errors.Wrap(err, errors.CategoryOperation, "failed to build SMTP client")
	}

	return &LinkSender{cfg: cfg, client: client, logger: logger}, nil
}

// SendLoginLink mails the signed login token to the user's address.
func (s *LinkSender) SendLoginLink(ctx context.Context, user *auth.User, token string) error {
	msg, err := s.BuildMessage(user, token)
	if err != nil {
		return err
	}

	if err := s.client.DialAndSendWithContext(ctx, msg); err != nil {
		return errors.Wrap(err, errors.CategoryOperation, "failed to send login link").
			WithMetadata(map[string]any{"user_id": user.UserID})
	}

	if s.logger != nil {
		s.logger.Info("login link sent to %s", user.Email)
	}

	return nil
}

// BuildMessage renders the login email. Split out so tests can inspect
// the message without an SMTP server.
func (s *LinkSender) BuildMessage(user *auth.User, token string) (*mail.Msg, error) {
	msg := mail.NewMsg()

	if err := msg.FromFormat(s.cfg.FromName, s.cfg.FromAddress); err != nil {
		return nil, errors.Wrap(err, errors.CategoryBadInput, "invalid sender address")
	}
	if err := msg.AddToFormat(user.FullName(), user.Email); err != nil {
		return nil, errors.Wrap(err, errors.CategoryBadInput, "invalid recipient address").
			WithMetadata(map[string]any{"user_id": user.UserID})
	}

	msg.Subject("Sign in to your account")
	msg.SetBodyString(mail.TypeTextHTML, s.LoginLinkBody(token))

	return msg, nil
}

// LoginLinkBody renders the HTML body with the one time link.
func (s *LinkSender) LoginLinkBody(token string) string {
	return fmt.Sprintf(
		`<span>To sign in, follow this link: <a href="%s%s/auth?%s=%s">sign in</a>.</span><br/>
<span>The link expires in 10 minutes.</span>`,
		s.cfg.AppDomain, s.cfg.AppPath, s.cfg.CookieName, token,
	)
}

var _ auth.LinkSender = (*LinkSender)(nil)
