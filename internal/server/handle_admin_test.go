package server

import (
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestAdminLoginFlow(t *testing.T) {
	r, _, _ := testRouter(t)

	// Wrong password.
	code := doJSON(t, r, http.MethodPost, "/api/admin/login",
		AdminLoginRequest{Email: "admin@test.local", Password: "wrong"}, nil)
	if code != http.StatusUnauthorized {
		t.Fatalf("bad password: status %d, want 401", code)
	}

	// Unknown account gets the same answer as a bad password.
	code = doJSON(t, r, http.MethodPost, "/api/admin/login",
		AdminLoginRequest{Email: "nobody@test.local", Password: "secret"}, nil)
	if code != http.StatusUnauthorized {
		t.Fatalf("unknown email: status %d, want 401", code)
	}

	// Successful login sets the session cookie.
	req := httptest.NewRequest(http.MethodPost, "/api/admin/login",
		jsonBody(t, AdminLoginRequest{Email: "admin@test.local", Password: "secret"}))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("login: status %d", rec.Code)
	}

	var session string
	for _, c := range rec.Result().Cookies() {
		if c.Name == adminCookieName {
			session = c.Value
		}
	}
	if session == "" {
		t.Fatal("login did not set the admin session cookie")
	}

	// The cookie opens the authority surface.
	var me AdminMeResponse
	code = doJSON(t, r, http.MethodGet, "/api/admin/me", nil, &me, withAdminCookie(session))
	if code != http.StatusOK {
		t.Fatalf("me: status %d", code)
	}
	if me.Email != "admin@test.local" {
		t.Fatalf("me email = %q", me.Email)
	}

	// Logout invalidates it.
	code = doJSON(t, r, http.MethodPost, "/api/admin/logout", nil, nil, withAdminCookie(session))
	if code != http.StatusOK {
		t.Fatalf("logout: status %d", code)
	}
	code = doJSON(t, r, http.MethodGet, "/api/admin/me", nil, nil, withAdminCookie(session))
	if code != http.StatusUnauthorized {
		t.Fatalf("me after logout: status %d, want 401", code)
	}
}

func TestAuthorityMiddlewareRejectsForgedSession(t *testing.T) {
	r, _, _ := testRouter(t)

	code := doJSON(t, r, http.MethodPost, "/api/admin/game/start", nil, nil,
		withAdminCookie("not-a-real-session"))
	if code != http.StatusForbidden {
		t.Fatalf("forged session start: status %d, want 403", code)
	}
}
