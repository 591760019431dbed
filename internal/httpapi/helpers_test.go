package httpapi

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"fieldops.org/internal/auth"
	"fieldops.org/internal/resource"
	"fieldops.org/internal/stream"
)

// memStore is an in-memory auth.IdentityStore for handler tests.
type memStore struct {
	mu         sync.Mutex
	identities map[string]*auth.Identity
	hashes     map[string]string
}

func newMemStore() *memStore {
	return &memStore{
		identities: make(map[string]*auth.Identity),
		hashes:     make(map[string]string),
	}
}

func (m *memStore) add(t *testing.T, identity *auth.Identity, password string) {
	t.Helper()
	m.mu.Lock()
	defer m.mu.Unlock()
	m.identities[identity.ID] = identity
	if password != "" {
		hash, err := auth.HashPassword(password)
		if err != nil {
			t.Fatalf("hash password: %v", err)
		}
		m.hashes[identity.ID] = hash
	}
}

func (m *memStore) FindByID(ctx context.Context, id string) (*auth.Identity, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	identity, ok := m.identities[id]
	if !ok {
		return nil, auth.ErrIdentityNotFound
	}
	cp := *identity
	return &cp, nil
}

func (m *memStore) FindByEmail(ctx context.Context, email string) (*auth.Identity, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, identity := range m.identities {
		if identity.Email == email {
			cp := *identity
			return &cp, nil
		}
	}
	return nil, auth.ErrIdentityNotFound
}

func (m *memStore) PasswordHash(ctx context.Context, id string) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	hash, ok := m.hashes[id]
	if !ok {
		return "", auth.ErrIdentityNotFound
	}
	return hash, nil
}

func (m *memStore) UpdateSession(ctx context.Context, id, sessionToken string, expiresAt time.Time) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	identity, ok := m.identities[id]
	if !ok {
		return auth.ErrIdentityNotFound
	}
	identity.CurrentSessionToken = sessionToken
	exp := expiresAt
	identity.SessionExpiresAt = &exp
	return nil
}

func (m *memStore) ClearSession(ctx context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	identity, ok := m.identities[id]
	if !ok {
		return auth.ErrIdentityNotFound
	}
	identity.CurrentSessionToken = ""
	identity.SessionExpiresAt = nil
	return nil
}

func (m *memStore) UpdateLastSeen(ctx context.Context, id string, at time.Time) error {
	return nil
}

// fixture bundles the API under test with its collaborators.
type fixture struct {
	api      *API
	handler  http.Handler
	store    *memStore
	registry *resource.Registry
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	store := newMemStore()
	codec, err := auth.NewCodec("test-secret")
	if err != nil {
		t.Fatalf("NewCodec: %v", err)
	}
	svc, err := auth.NewService(store, codec)
	if err != nil {
		t.Fatalf("NewService: %v", err)
	}

	registry := resource.NewRegistry()
	api := New(Deps{
		Auth:      svc,
		Resources: registry,
		Events:    stream.New(),
		Version:   "test",
	})
	return &fixture{
		api:      api,
		handler:  api.Handler(),
		store:    store,
		registry: registry,
	}
}

// login runs the real login endpoint and returns the issued bearer token.
func (f *fixture) login(t *testing.T, email, password string) string {
	t.Helper()
	body, _ := json.Marshal(map[string]string{"email": email, "password": password})
	req := httptest.NewRequest(http.MethodPost, "/v1/auth/login", bytes.NewReader(body))
	rec := httptest.NewRecorder()
	f.handler.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("login returned %d: %s", rec.Code, rec.Body.String())
	}
	var res loginResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &res); err != nil {
		t.Fatalf("decode login response: %v", err)
	}
	if res.Token == "" {
		t.Fatal("login response missing token")
	}
	return res.Token
}

func (f *fixture) do(method, path, token string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, nil)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	f.handler.ServeHTTP(rec, req)
	return rec
}

func decodeEnvelope(t *testing.T, rec *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var payload map[string]any
	if err := json.Unmarshal(rec.Body.Bytes(), &payload); err != nil {
		t.Fatalf("decode response %q: %v", rec.Body.String(), err)
	}
	return payload
}
