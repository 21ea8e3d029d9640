package auth

import (
	"net/http"
	"time"

	validation "github.com/go-ozzo/ozzo-validation"
	"github.com/goliatone/go-errors"
	"github.com/goliatone/go-print"
	"github.com/goliatone/go-router"
)

// RouteRegistrar captures the router methods used by the controller.
type RouteRegistrar interface {
	Get(path string, handler router.HandlerFunc, mw ...router.MiddlewareFunc) router.RouteInfo
	Post(path string, handler router.HandlerFunc, mw ...router.MiddlewareFunc) router.RouteInfo
}

// LoginPayload is the body accepted by POST /login.
type LoginPayload struct {
	UserID string `json:"user_id" form:"user_id"`
}

func (p LoginPayload) Validate() error {
	return validation.ValidateStruct(&p,
		validation.Field(&p.UserID, validation.Required, validation.Length(1, 100)),
	)
}

// HTTPController exposes the token lifecycle over go-router.
type HTTPController struct {
	auther       *Auther
	users        UserFinder
	grants       *MethodGrants
	keys         *KeyPair
	cfg          Config
	Logger       Logger
	ErrorHandler func(c router.Context, err error) error
}

// NewHTTPController wires the lifecycle use cases to their routes.
func NewHTTPController(auther *Auther, users UserFinder, grants *MethodGrants, keys *KeyPair, cfg Config) *HTTPController {
	c := &HTTPController{
		auther: auther,
		users:  users,
		grants: grants,
		keys:   keys,
		cfg:    cfg,
		Logger: defLogger{},
	}
	c.ErrorHandler = c.defaultErrHandler
	return c
}

// RegisterRoutes mounts the endpoints. Routes that act on an existing
// session take the Authenticate middleware; /login and /rsa/keys stay open.
func (c *HTTPController) RegisterRoutes(r RouteRegistrar, authenticated router.MiddlewareFunc) {
	r.Post("/login", c.Login)
	r.Get("/auth/isauth", c.IsAuthenticated)
	r.Get("/auth/user", c.CurrentUser, authenticated)
	r.Get("/auth/methods", c.AllowedMethods, authenticated)
	r.Get("/auth", c.Promote, authenticated)
	r.Get("/logout", c.Logout, authenticated)
	r.Get("/rsa/keys", c.PublicKey)
}

// Login starts a passwordless session: looks the user up, throttles
// repeats, and mails a short lived login link.
func (c *HTTPController) Login(ctx router.Context) error {
	var payload LoginPayload
	if err := ctx.Bind(&payload); err != nil {
		return c.ErrorHandler(ctx, errors.Wrap(err, errors.CategoryBadInput, "invalid login payload").
			WithCode(errors.CodeBadRequest))
	}

	if err := payload.Validate(); err != nil {
		return c.ErrorHandler(ctx, errors.Wrap(err, errors.CategoryValidation, "invalid login payload").
			WithCode(errors.CodeBadRequest))
	}

	if err := c.auther.RequestLogin(ctx.Context(), payload.UserID); err != nil {
		c.Logger.Error("login request failed: %s", err)
		return c.ErrorHandler(ctx, err)
	}

	return ctx.NoContent(router.StatusOK)
}

// Promote exchanges the short lived login token for a long lived session
// token, returned both in the auth header and as a cookie on the app path.
func (c *HTTPController) Promote(ctx router.Context) error {
	data, ok := AuthFromRouterContext(ctx, c.cfg.GetContextKey())
	if !ok {
		return c.ErrorHandler(ctx, ErrMissingToken)
	}

	token, claims, err := c.auther.Promote(ctx.Context(), data.Claims)
	if err != nil {
		c.Logger.Error("session promotion failed: %s", err)
		return c.ErrorHandler(ctx, err)
	}

	ctx.SetHeader(c.cfg.GetHeaderName(), token)
	c.setCookieToken(ctx, token, time.Until(claims.Expires()))

	return ctx.NoContent(http.StatusFound)
}

// IsAuthenticated reports whether the request carries a structurally valid,
// unexpired token. It never fails: any extraction problem reads as "false".
// The single-session registry is deliberately not consulted; a superseded
// token still reads "true" here and is rejected by the Authenticate stage.
func (c *HTTPController) IsAuthenticated(ctx router.Context) error {
	return ctx.SendString(boolBody(c.probe(ctx)))
}

func (c *HTTPController) probe(ctx router.Context) bool {
	_, err := Extract(ctx, c.auther.TokenService(), c.cfg)
	return err == nil
}

// CurrentUser returns the account record behind the session token.
func (c *HTTPController) CurrentUser(ctx router.Context) error {
	data, ok := AuthFromRouterContext(ctx, c.cfg.GetContextKey())
	if !ok {
		return c.ErrorHandler(ctx, ErrMissingToken)
	}

	user, err := c.users.GetByUserID(ctx.Context(), data.Claims.Subject())
	if err != nil {
		return c.ErrorHandler(ctx, err)
	}

	return ctx.JSON(router.StatusOK, user)
}

// AllowedMethods returns every (app, method) pair the caller may invoke.
func (c *HTTPController) AllowedMethods(ctx router.Context) error {
	data, ok := AuthFromRouterContext(ctx, c.cfg.GetContextKey())
	if !ok {
		return c.ErrorHandler(ctx, ErrMissingToken)
	}

	grants, err := c.grants.ListForUser(ctx.Context(), data.Claims.Subject())
	if err != nil {
		return c.ErrorHandler(ctx, errors.Wrap(err, errors.CategoryInternal, "failed to list permissions").
			WithCode(errors.CodeInternal))
	}

	return ctx.JSON(router.StatusOK, grants)
}

// Logout rotates the registered token id to a value no client holds and
// expires the session cookie.
func (c *HTTPController) Logout(ctx router.Context) error {
	data, ok := AuthFromRouterContext(ctx, c.cfg.GetContextKey())
	if !ok {
		return c.ErrorHandler(ctx, ErrMissingToken)
	}

	if err := c.auther.Logout(ctx.Context(), data.Claims.Subject()); err != nil {
		c.Logger.Error("logout failed: %s", err)
		return c.ErrorHandler(ctx, err)
	}

	ctx.SetHeader(c.cfg.GetHeaderName(), "")
	c.cookieDel(ctx, c.cfg.GetCookieName())

	return ctx.NoContent(http.StatusFound)
}

// PublicKey serves the verification key as PKCS#1 PEM.
func (c *HTTPController) PublicKey(ctx router.Context) error {
	ctx.SetHeader("Content-Type", "application/x-pem-file")
	return ctx.Send(c.keys.PublicKeyPEM())
}

func (c *HTTPController) setCookieToken(ctx router.Context, val string, duration time.Duration) {
	ctx.Cookie(&router.Cookie{
		Name:     c.cfg.GetCookieName(),
		Value:    val,
		Path:     c.cfg.GetAppPath(),
		Expires:  time.Now().Add(duration),
		HTTPOnly: true,
		Secure:   true,
		SameSite: "Lax",
	})
}

func (c *HTTPController) cookieDel(ctx router.Context, name string) {
	ctx.Cookie(&router.Cookie{
		Name:     name,
		Value:    "",
		Path:     c.cfg.GetAppPath(),
		Expires:  time.Now().Add(-time.Hour * (24 * 365)),
		HTTPOnly: true,
		Secure:   true,
		SameSite: "Lax",
	})
}

func (c *HTTPController) defaultErrHandler(ctx router.Context, err error) error {
	var richErr *errors.Error
	if !errors.As(err, &richErr) {
		richErr = errors.Wrap(err, errors.CategoryInternal, "An unexpected server error occurred").
			WithCode(errors.CodeInternal)
	}

	c.Logger.Info(
		"request error handler: %s category=%s details=%s",
		richErr.Message,
		richErr.Category,
		print.MaybePrettyJSON(richErr.Metadata),
	)

	status := richErr.Code
	if status == 0 {
		status = http.StatusInternalServerError
	}

	return ctx.JSON(status, map[string]any{
		"error":     richErr.Message,
		"text_code": richErr.TextCode,
	})
}

func boolBody(v bool) string {
	if v {
		return "true"
	}
	return "false"
}
