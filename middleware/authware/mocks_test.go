package authware_test

import (
	"context"
	"encoding/json"
	"time"

	"github.com/goliatone/go-router"
	"github.com/stretchr/testify/mock"

	auth "github.com/tokengate/go-auth"
)

type testConfig struct {
	cookieName string
	headerName string
	contextKey string
}

func newTestConfig() *testConfig {
	return &testConfig{
		cookieName: auth.DefaultCookieName,
		headerName: auth.DefaultHeaderName,
		contextKey: "auth",
	}
}

func (c *testConfig) GetIssuer() string                 { return "https://portal.example.com" }
func (c *testConfig) GetAppPath() string                { return "/portal" }
func (c *testConfig) GetCookieName() string             { return c.cookieName }
func (c *testConfig) GetHeaderName() string             { return c.headerName }
func (c *testConfig) GetContextKey() string             { return c.contextKey }
func (c *testConfig) GetLoginTokenTTL() time.Duration   { return 10 * time.Minute }
func (c *testConfig) GetSessionTokenTTL() time.Duration { return 90 * 24 * time.Hour }
func (c *testConfig) GetLoginCooldown() time.Duration   { return 10 * time.Minute }

type MockTokenService struct {
	mock.Mock
}

func (m *MockTokenService) Sign(claims *auth.Claims) (string, error) {
	args := m.Called(claims)
	return args.String(0), args.Error(1)
}

func (m *MockTokenService) Verify(token string) (*auth.Claims, error) {
	args := m.Called(token)
	var claims *auth.Claims
	if v := args.Get(0); v != nil {
		claims = v.(*auth.Claims)
	}
	return claims, args.Error(1)
}

type MockTokenStore struct {
	mock.Mock
}

func (m *MockTokenStore) Current(ctx context.Context, userID string) (*auth.SessionToken, error) {
	args := m.Called(ctx, userID)
	var record *auth.SessionToken
	if v := args.Get(0); v != nil {
		record = v.(*auth.SessionToken)
	}
	return record, args.Error(1)
}

func (m *MockTokenStore) Save(ctx context.Context, record *auth.SessionToken) error {
	args := m.Called(ctx, record)
	return args.Error(0)
}

type MockAuthorizer struct {
	mock.Mock
}

func (m *MockAuthorizer) Allowed(ctx context.Context, userID, appCode, methodCode string) (bool, error) {
	args := m.Called(ctx, userID, appCode, methodCode)
	return args.Bool(0), args.Error(1)
}

// MockContext is a stateful router.Context; request inputs go in the maps and
// written responses are recorded for assertions.
type MockContext struct {
	NextCalled bool

	PathV   string
	MethodV string
	BodyV   []byte

	HeadersM map[string]string
	CookiesM map[string]string
	QueriesM map[string]string
	LocalsM  map[any]any

	SetHeadersM map[string]string
	SetCookies  []*router.Cookie

	StatusCode    int
	SentBody      string
	JSONCode      int
	JSONValue     any
	NoContentCode int

	BindPayload []byte

	stdctx context.Context
}

func NewMockContext() *MockContext {
	return &MockContext{
		HeadersM:    map[string]string{},
		CookiesM:    map[string]string{},
		QueriesM:    map[string]string{},
		LocalsM:     map[any]any{},
		SetHeadersM: map[string]string{},
		stdctx:      context.Background(),
	}
}

var _ router.Context = (*MockContext)(nil)

func (m *MockContext) Next() error {
	m.NextCalled = true
	return nil
}

func (m *MockContext) Context() context.Context {
	return m.stdctx
}

func (m *MockContext) SetContext(ctx context.Context) {
	m.stdctx = ctx
}

func (m *MockContext) Path() string   { return m.PathV }
func (m *MockContext) Method() string { return m.MethodV }
func (m *MockContext) Body() []byte   { return m.BodyV }

func (m *MockContext) Status(code int) router.Context {
	m.StatusCode = code
	return m
}

func (m *MockContext) SendString(s string) error {
	m.SentBody = s
	return nil
}

func (m *MockContext) Send(b []byte) error {
	m.SentBody = string(b)
	return nil
}

func (m *MockContext) JSON(code int, val any) error {
	m.JSONCode = code
	m.JSONValue = val
	return nil
}

func (m *MockContext) NoContent(code int) error {
	m.NoContentCode = code
	return nil
}

func (m *MockContext) Render(name string, bind any, layout ...string) error {
	return nil
}

func (m *MockContext) Redirect(path string, status ...int) error {
	if len(status) > 0 {
		m.StatusCode = status[0]
	}
	return nil
}

func (m *MockContext) RedirectToRoute(name string, data router.ViewContext, status ...int) error {
	return nil
}

func (m *MockContext) RedirectBack(fallback string, status ...int) error {
	return nil
}

func (m *MockContext) SetHeader(key, val string) router.Context {
	m.SetHeadersM[key] = val
	return m
}

func (m *MockContext) Header(key string) string {
	return m.HeadersM[key]
}

func (m *MockContext) Get(key string, defaultValue any) any {
	if v, ok := m.LocalsM[key]; ok {
		return v
	}
	return defaultValue
}

func (m *MockContext) GetBool(key string, defaultValue bool) bool {
	if v, ok := m.LocalsM[key].(bool); ok {
		return v
	}
	return defaultValue
}

func (m *MockContext) GetInt(key string, def int) int {
	if v, ok := m.LocalsM[key].(int); ok {
		return v
	}
	return def
}

func (m *MockContext) Set(key string, val any) {
	m.LocalsM[key] = val
}

func (m *MockContext) Bind(i any) error {
	if m.BindPayload == nil {
		return nil
	}
	return json.Unmarshal(m.BindPayload, i)
}

func (m *MockContext) BindJSON(i any) error  { return m.Bind(i) }
func (m *MockContext) BindXML(i any) error   { return m.Bind(i) }
func (m *MockContext) BindQuery(i any) error { return m.Bind(i) }

func (m *MockContext) CookieParser(i any) error { return nil }

func (m *MockContext) Cookie(cookie *router.Cookie) {
	m.SetCookies = append(m.SetCookies, cookie)
}

func (m *MockContext) Cookies(key string, defaultValue ...string) string {
	if v, ok := m.CookiesM[key]; ok {
		return v
	}
	if len(defaultValue) > 0 {
		return defaultValue[0]
	}
	return ""
}

func (m *MockContext) Param(key string, defaultValue ...string) string {
	if len(defaultValue) > 0 {
		return defaultValue[0]
	}
	return ""
}

func (m *MockContext) ParamsInt(key string, defaultValue int) int {
	return defaultValue
}

func (m *MockContext) Query(key string, defaultValue string) string {
	if v, ok := m.QueriesM[key]; ok {
		return v
	}
	return defaultValue
}

func (m *MockContext) QueryInt(key string, defaultValue int) int {
	return defaultValue
}

func (m *MockContext) Queries() map[string]string {
	return m.QueriesM
}

func (m *MockContext) GetString(key string, defaultValue string) string {
	if v, ok := m.LocalsM[key].(string); ok {
		return v
	}
	return defaultValue
}

func (m *MockContext) Locals(key any, value ...any) any {
	if len(value) > 0 {
		m.LocalsM[key] = value[0]
		return nil
	}
	return m.LocalsM[key]
}

func (m *MockContext) LocalsMerge(key string, values map[string]any) map[string]any {
	merged, _ := m.LocalsM[key].(map[string]any)
	if merged == nil {
		merged = map[string]any{}
	}
	for k, v := range values {
		merged[k] = v
	}
	m.LocalsM[key] = merged
	return merged
}

func (m *MockContext) OriginalURL() string { return m.PathV }

func (m *MockContext) OnNext(callback func() error) {}

func (m *MockContext) Referer() string {
	return m.HeadersM["Referer"]
}
