package web

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/url"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	jwt "github.com/golang-jwt/jwt/v5"
	"go.uber.org/zap"

	"github.com/anurag9179/smartcashbook.client/internal/backend"
	"github.com/anurag9179/smartcashbook.client/internal/config"
	"github.com/anurag9179/smartcashbook.client/internal/session"
	"github.com/anurag9179/smartcashbook.client/internal/storage"
)

func mintToken(t *testing.T, role string, ttl time.Duration) string {
	t.Helper()
	claims := jwt.MapClaims{
		"userId":   "u-1",
		"username": "alice",
		"email":    "alice@example.com",
		"role":     role,
		"exp":      time.Now().Add(ttl).Unix(),
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte("test-secret"))
	if err != nil {
		t.Fatalf("sign token: %v", err)
	}
	return signed
}

// newTestApp wires a full fiber app against a mock backend. Credentials map
// to roles so capability gating can be exercised end to end.
func newTestApp(t *testing.T, storedToken string) *fiber.App {
	t.Helper()

	roles := map[string]string{"admin": "Admin", "clerk": "DataEntryUser", "viewer": "Observer"}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var req map[string]string
		_ = json.NewDecoder(r.Body).Decode(&req)
		role, ok := roles[req["identifier"]]
		if !ok || req["password"] != "pw" {
			w.WriteHeader(http.StatusUnauthorized)
			json.NewEncoder(w).Encode(map[string]string{"message": "Invalid credentials"})
			return
		}
		json.NewEncoder(w).Encode(map[string]string{"token": mintToken(t, role, time.Hour)})
	}))
	t.Cleanup(srv.Close)

	tokens, err := storage.NewFileStore(filepath.Join(t.TempDir(), "token"), "")
	if err != nil {
		t.Fatalf("NewFileStore: %v", err)
	}
	if storedToken != "" {
		if err := tokens.Save(context.Background(), storedToken); err != nil {
			t.Fatalf("seed token: %v", err)
		}
	}

	cfg := config.AuthConfig{WarningWindowMinutes: 5, WatchdogIntervalSec: 60, CountdownIntervalSec: 1}
	store, err := session.New(context.Background(), cfg, backend.NewWithHTTPClient(srv.URL, srv.Client()), tokens, zap.NewNop())
	if err != nil {
		t.Fatalf("session.New: %v", err)
	}
	t.Cleanup(store.Close)

	app := fiber.New()
	RegisterMiddlewares(app, zap.NewNop())
	RegisterRoutes(app, RouteConfig{
		Handlers: NewHandlers(store, zap.NewNop(), "smartcashbook-client", "test"),
		Guard:    NewGuard(store, zap.NewNop()),
	})
	return app
}

func TestGuard_RedirectsWhenLoggedOut(t *testing.T) {
	app := newTestApp(t, "")

	req := httptest.NewRequest(http.MethodGet, "/dashboard", nil)
	resp, err := app.Test(req)
	if err != nil {
		t.Fatalf("app.Test: %v", err)
	}
	if resp.StatusCode != http.StatusSeeOther {
		t.Errorf("status = %d, want 303", resp.StatusCode)
	}
	if loc := resp.Header.Get("Location"); loc != "/login" {
		t.Errorf("Location = %q, want /login", loc)
	}
}

func TestGuard_JSONCallersGet401(t *testing.T) {
	app := newTestApp(t, "")

	req := httptest.NewRequest(http.MethodGet, "/session", nil)
	req.Header.Set("Accept", "application/json")
	resp, err := app.Test(req)
	if err != nil {
		t.Fatalf("app.Test: %v", err)
	}
	if resp.StatusCode != http.StatusUnauthorized {
		t.Errorf("status = %d, want 401", resp.StatusCode)
	}
}

func TestGuard_PassesAuthenticatedRequests(t *testing.T) {
	app := newTestApp(t, mintToken(t, "Observer", time.Hour))

	req := httptest.NewRequest(http.MethodGet, "/dashboard", nil)
	resp, err := app.Test(req)
	if err != nil {
		t.Fatalf("app.Test: %v", err)
	}
	if resp.StatusCode != http.StatusOK {
		t.Errorf("status = %d, want 200", resp.StatusCode)
	}
}

func TestGuard_CapabilityGating(t *testing.T) {
	cases := []struct {
		role       string
		path       string
		wantStatus int
	}{
		{"Admin", "/users", http.StatusOK},
		{"DataEntryUser", "/users", http.StatusForbidden},
		{"Observer", "/users", http.StatusForbidden},
		{"Observer", "/transactions", http.StatusOK},
		{"UnknownRole", "/transactions", http.StatusForbidden},
	}
	for _, tc := range cases {
		t.Run(tc.role+"_"+tc.path, func(t *testing.T) {
			app := newTestApp(t, mintToken(t, tc.role, time.Hour))
			req := httptest.NewRequest(http.MethodGet, tc.path, nil)
			resp, err := app.Test(req)
			if err != nil {
				t.Fatalf("app.Test: %v", err)
			}
			if resp.StatusCode != tc.wantStatus {
				t.Errorf("status = %d, want %d", resp.StatusCode, tc.wantStatus)
			}
		})
	}
}

func TestLoginFlow(t *testing.T) {
	app := newTestApp(t, "")

	form := url.Values{"identifier": {"admin"}, "password": {"pw"}}
	req := httptest.NewRequest(http.MethodPost, "/login", strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	resp, err := app.Test(req)
	if err != nil {
		t.Fatalf("app.Test: %v", err)
	}
	if resp.StatusCode != http.StatusSeeOther {
		t.Fatalf("login status = %d, want 303", resp.StatusCode)
	}
	if loc := resp.Header.Get("Location"); loc != "/dashboard" {
		t.Errorf("Location = %q, want /dashboard", loc)
	}

	// The session is process-wide; the follow-up navigation is authenticated.
	req = httptest.NewRequest(http.MethodGet, "/session", nil)
	resp, err = app.Test(req)
	if err != nil {
		t.Fatalf("app.Test: %v", err)
	}
	var sess SessionResponse
	if err := json.NewDecoder(resp.Body).Decode(&sess); err != nil {
		t.Fatalf("decode session: %v", err)
	}
	if !sess.Authenticated {
		t.Error("expected authenticated session after login")
	}
	if sess.User == nil || sess.User.Role != "Admin" {
		t.Errorf("session user = %+v, want Admin", sess.User)
	}
	if sess.Capabilities == nil || !sess.Capabilities.ManageUsers {
		t.Error("Admin should have the manage-users capability")
	}
}

func TestLoginFlow_BadCredentials(t *testing.T) {
	app := newTestApp(t, "")

	body := strings.NewReader(`{"identifier":"admin","password":"nope"}`)
	req := httptest.NewRequest(http.MethodPost, "/login", body)
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	resp, err := app.Test(req)
	if err != nil {
		t.Fatalf("app.Test: %v", err)
	}
	if resp.StatusCode != http.StatusUnauthorized {
		t.Fatalf("status = %d, want 401", resp.StatusCode)
	}
	var payload struct {
		Error struct {
			Message string `json:"message"`
		} `json:"error"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		t.Fatalf("decode error body: %v", err)
	}
	if payload.Error.Message != "Invalid credentials" {
		t.Errorf("message = %q, want server message passed through", payload.Error.Message)
	}
}

func TestLogoutEvictsNextNavigation(t *testing.T) {
	app := newTestApp(t, mintToken(t, "Admin", time.Hour))

	req := httptest.NewRequest(http.MethodPost, "/logout", nil)
	resp, err := app.Test(req)
	if err != nil {
		t.Fatalf("app.Test: %v", err)
	}
	if resp.StatusCode != http.StatusSeeOther {
		t.Fatalf("logout status = %d, want 303", resp.StatusCode)
	}

	req = httptest.NewRequest(http.MethodGet, "/dashboard", nil)
	resp, err = app.Test(req)
	if err != nil {
		t.Fatalf("app.Test: %v", err)
	}
	if resp.StatusCode != http.StatusSeeOther {
		t.Errorf("status after logout = %d, want redirect to login", resp.StatusCode)
	}
}
