package app

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/teamroster/server/internal/module/identity"
	"github.com/teamroster/server/internal/shared/config"
)

const testSecret = "test-secret"

func testConfig() *config.Config {
	return &config.Config{
		Server: config.ServerConfig{AllowOrigins: []string{"*"}},
		Database: config.DatabaseConfig{
			Driver:      "sqlite",
			Path:        ":memory:",
			AutoMigrate: true,
		},
		Identity: config.IdentityConfig{JWTSecret: testSecret, TrackLogin: true},
		Membership: config.MembershipConfig{
			Salt:              "pepper",
			InviteExpireHours: 72,
			MaxRosterRetries:  5,
			InviteURL:         "http://localhost:8080/invites",
			SiteName:          "Roster",
			InviteRateLimit:   5,
		},
		Mail:    config.MailConfig{TemplateFormat: "html"},
		Metrics: config.MetricsConfig{Enabled: true, Namespace: "roster_test"},
		Log:     config.LogConfig{Level: "error", Format: "json"},
	}
}

func newTestApp(t *testing.T) *App {
	t.Helper()
	a, err := New(testConfig())
	require.NoError(t, err)
	t.Cleanup(a.Stop)
	return a
}

func token(t *testing.T, sub, email, name string) string {
	t.Helper()
	claims := identity.Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   sub,
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
		},
		Email: email,
		Name:  name,
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(testSecret))
	require.NoError(t, err)
	return signed
}

func call(a *App, method, path, bearer string, body any) *httptest.ResponseRecorder {
	var buf bytes.Buffer
	if body != nil {
		_ = json.NewEncoder(&buf).Encode(body)
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if bearer != "" {
		req.Header.Set("Authorization", "Bearer "+bearer)
	}
	w := httptest.NewRecorder()
	a.Router().ServeHTTP(w, req)
	return w
}

func TestApp_AccountFlow(t *testing.T) {
	a := newTestApp(t)
	alice := token(t, "alice", "alice@example.com", "Alice")
	bob := token(t, "bob", "bob@example.com", "Bob")

	w := call(a, http.MethodPost, "/api/v1/accounts", alice, map[string]string{"account_name": "Acme"})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	var created struct {
		AccountID string `json:"account_id"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &created))
	members := "/api/v1/accounts/" + created.AccountID + "/members"

	// bob signs in once so he can be found by email
	w = call(a, http.MethodGet, members, bob, nil)
	assert.Equal(t, http.StatusForbidden, w.Code)

	w = call(a, http.MethodPost, members, alice, map[string]string{"email": "bob@example.com", "role": "member"})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	w = call(a, http.MethodGet, members, alice, nil)
	require.Equal(t, http.StatusOK, w.Code)

	var list struct {
		Members []struct {
			ID          string `json:"id"`
			DisplayName string `json:"display_name"`
			Role        string `json:"role"`
		} `json:"members"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &list))
	require.Len(t, list.Members, 2)
	assert.Equal(t, "Alice", list.Members[0].DisplayName)
	assert.Equal(t, "admin", list.Members[0].Role)
	assert.Equal(t, "Bob", list.Members[1].DisplayName)
	assert.Equal(t, "member", list.Members[1].Role)

	var count int64
	require.NoError(t, a.deps.DB.Table("activities").Count(&count).Error)
	assert.Equal(t, int64(2), count)
}

func TestApp_RequiresAuth(t *testing.T) {
	a := newTestApp(t)

	w := call(a, http.MethodPost, "/api/v1/accounts", "", map[string]string{"account_name": "Acme"})
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	w = call(a, http.MethodPost, "/api/v1/accounts", "not-a-token", map[string]string{"account_name": "Acme"})
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestApp_OperationalEndpoints(t *testing.T) {
	a := newTestApp(t)

	w := call(a, http.MethodGet, "/health", "", nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.NotEmpty(t, w.Header().Get("X-Request-ID"))

	w = call(a, http.MethodGet, "/metrics", "", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "roster_test_http_requests_total")
}

func TestNew_InvalidMembershipConfig(t *testing.T) {
	cfg := testConfig()
	cfg.Membership.Salt = ""

	_, err := New(cfg)
	assert.Error(t, err)
}
