package httpapi

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"fieldops.org/internal/auth"
)

func postLogin(f *fixture, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, "/v1/auth/login", strings.NewReader(body))
	rec := httptest.NewRecorder()
	f.handler.ServeHTTP(rec, req)
	return rec
}

func TestLoginSuccess(t *testing.T) {
	f := newFixture(t)
	f.store.add(t, &auth.Identity{
		ID: "u1", Email: "agent@fieldops.org", Role: auth.RoleFieldAgent, IsActive: true,
	}, "hunter2")

	body, _ := json.Marshal(map[string]string{"email": "agent@fieldops.org", "password": "hunter2"})
	req := httptest.NewRequest(http.MethodPost, "/v1/auth/login", bytes.NewReader(body))
	rec := httptest.NewRecorder()
	f.handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	var res loginResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &res); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if !res.Success || res.Token == "" || res.User == nil || res.User.ID != "u1" {
		t.Fatalf("unexpected response: %+v", res)
	}
	if res.ExpiresAt.IsZero() {
		t.Fatal("expires_at not set")
	}
}

func TestLoginWrongPassword(t *testing.T) {
	f := newFixture(t)
	f.store.add(t, &auth.Identity{
		ID: "u1", Email: "agent@fieldops.org", Role: auth.RoleFieldAgent, IsActive: true,
	}, "hunter2")

	rec := postLogin(f, `{"email":"agent@fieldops.org","password":"wrong"}`)
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", rec.Code)
	}
	payload := decodeEnvelope(t, rec)
	if payload["message"] != "invalid email or password" {
		t.Fatalf("unexpected message: %v", payload["message"])
	}
}

func TestLoginBadBody(t *testing.T) {
	f := newFixture(t)

	for _, body := range []string{"", "{", `{"email":"a@b.c","password":"x","extra":1}`} {
		rec := postLogin(f, body)
		if rec.Code != http.StatusBadRequest {
			t.Fatalf("body %q: expected 400, got %d", body, rec.Code)
		}
	}
}

func TestLoginMethodNotAllowed(t *testing.T) {
	f := newFixture(t)

	rec := f.do(http.MethodGet, "/v1/auth/login", "")
	if rec.Code != http.StatusMethodNotAllowed {
		t.Fatalf("expected 405, got %d", rec.Code)
	}
	if rec.Header().Get("Allow") != http.MethodPost {
		t.Fatalf("unexpected Allow header: %q", rec.Header().Get("Allow"))
	}
}

func TestLogoutInvalidatesSession(t *testing.T) {
	f := newFixture(t)
	f.store.add(t, &auth.Identity{
		ID: "u1", Email: "agent@fieldops.org", Role: auth.RoleFieldAgent, IsActive: true,
	}, "hunter2")

	token := f.login(t, "agent@fieldops.org", "hunter2")

	rec := f.do(http.MethodPost, "/v1/auth/logout", token)
	if rec.Code != http.StatusOK {
		t.Fatalf("logout: expected 200, got %d: %s", rec.Code, rec.Body.String())
	}

	// The same token is now rejected before reaching any handler.
	rec = f.do(http.MethodGet, "/v1/auth/me", token)
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("me after logout: expected 401, got %d", rec.Code)
	}
	payload := decodeEnvelope(t, rec)
	if payload["message"] != "no active session" {
		t.Fatalf("unexpected message: %v", payload["message"])
	}
}

func TestMeReturnsIdentity(t *testing.T) {
	f := newFixture(t)
	f.store.add(t, &auth.Identity{
		ID: "a1", Email: "admin@fieldops.org", Role: auth.RoleAdmin, IsActive: true,
	}, "adminpass")

	token := f.login(t, "admin@fieldops.org", "adminpass")
	rec := f.do(http.MethodGet, "/v1/auth/me", token)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	payload := decodeEnvelope(t, rec)
	user, _ := payload["user"].(map[string]any)
	if user["id"] != "a1" || user["role"] != "admin" {
		t.Fatalf("unexpected user: %v", payload["user"])
	}
}
