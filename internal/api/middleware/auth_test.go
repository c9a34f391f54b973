package middleware

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"github.com/99minutos/account-service/internal/core/domain"
	"github.com/99minutos/account-service/internal/core/service"
)

type stubDirectory struct {
	identities map[string]*domain.Identity
	err        error
}

func (d *stubDirectory) Lookup(_ context.Context, email string) (*domain.Identity, error) {
	if d.err != nil {
		return nil, d.err
	}
	identity, ok := d.identities[email]
	if !ok {
		return nil, domain.ErrAccountNotFound
	}
	clone := *identity
	return &clone, nil
}

func (d *stubDirectory) Evict(context.Context, ...string) error { return nil }

func newDirectory(identities ...domain.Identity) *stubDirectory {
	d := &stubDirectory{identities: make(map[string]*domain.Identity)}
	for i := range identities {
		d.identities[identities[i].Email] = &identities[i]
	}
	return d
}

func runGate(t *testing.T, tokens *service.TokenService, dir *stubDirectory, authHeader string) (*httptest.ResponseRecorder, bool, *domain.Identity) {
	t.Helper()
	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/accounts", nil)
	if authHeader != "" {
		req.Header.Set(echo.HeaderAuthorization, authHeader)
	}
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	var (
		called   bool
		identity *domain.Identity
	)
	handler := Authenticate(tokens, dir, zerolog.Nop())(func(c echo.Context) error {
		called = true
		identity, _ = IdentityFrom(c.Request().Context())
		return c.NoContent(http.StatusOK)
	})

	if err := handler(c); err != nil {
		e.HTTPErrorHandler(err, c)
	}
	return rec, called, identity
}

func TestAuthenticate_ValidToken(t *testing.T) {
	tokens := service.NewTokenService("secret", time.Hour)
	token, err := tokens.Issue("juan@rodriguez.org")
	if err != nil {
		t.Fatalf("issue token: %v", err)
	}
	dir := newDirectory(domain.Identity{Email: "juan@rodriguez.org", CredentialVersion: "v1", Active: true})

	rec, called, identity := runGate(t, tokens, dir, "Bearer "+token)

	if !called {
		t.Fatalf("next not called")
	}
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	if identity == nil || identity.Email != "juan@rodriguez.org" {
		t.Fatalf("identity not stored in context: %+v", identity)
	}
}

func TestAuthenticate_NoBearerPassesThrough(t *testing.T) {
	tokens := service.NewTokenService("secret", time.Hour)

	for _, header := range []string{"", "Token abc", "bearer abc", "Basic dXNlcjpwYXNz"} {
		rec, called, identity := runGate(t, tokens, newDirectory(), header)
		if !called {
			t.Fatalf("header %q: next not called", header)
		}
		if rec.Code != http.StatusOK {
			t.Fatalf("header %q: expected 200, got %d", header, rec.Code)
		}
		if identity != nil {
			t.Fatalf("header %q: expected no identity, got %+v", header, identity)
		}
	}
}

func TestAuthenticate_Rejections(t *testing.T) {
	now := time.Now()
	tokens := service.NewTokenService("secret", time.Hour)
	valid, _ := tokens.Issue("juan@rodriguez.org")
	expired, _ := tokens.IssueUntil("juan@rodriguez.org", now.Add(-time.Minute))
	foreign, _ := service.NewTokenService("other", time.Hour).Issue("juan@rodriguez.org")
	ghost, _ := tokens.Issue("ghost@rodriguez.org")

	active := domain.Identity{Email: "juan@rodriguez.org", CredentialVersion: "v1", Active: true}
	inactive := domain.Identity{Email: "juan@rodriguez.org", CredentialVersion: "v1", Active: false}

	tests := []struct {
		name   string
		header string
		dir    *stubDirectory
		want   int
	}{
		{"garbage token", "Bearer not-a-jwt", newDirectory(active), http.StatusBadRequest},
		{"wrong signature", "Bearer " + foreign, newDirectory(active), http.StatusBadRequest},
		{"expired token", "Bearer " + expired, newDirectory(active), http.StatusUnauthorized},
		{"unknown account", "Bearer " + ghost, newDirectory(active), http.StatusUnauthorized},
		{"inactive account", "Bearer " + valid, newDirectory(inactive), http.StatusUnauthorized},
		{"directory failure", "Bearer " + valid, &stubDirectory{err: errors.New("redis down")}, http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec, called, _ := runGate(t, tokens, tt.dir, tt.header)
			if called {
				t.Fatalf("should not reach next")
			}
			if rec.Code != tt.want {
				t.Fatalf("expected %d, got %d", tt.want, rec.Code)
			}
		})
	}
}

func TestRequireIdentity(t *testing.T) {
	e := echo.New()
	mw := RequireIdentity()
	next := func(c echo.Context) error { return c.NoContent(http.StatusOK) }

	req := httptest.NewRequest(http.MethodGet, "/accounts", nil)
	c := e.NewContext(req, httptest.NewRecorder())
	if err := mw(next)(c); !errors.Is(err, domain.ErrUnauthenticated) {
		t.Fatalf("expected ErrUnauthenticated, got %v", err)
	}

	req = httptest.NewRequest(http.MethodGet, "/accounts", nil)
	req = req.WithContext(WithIdentity(req.Context(), &domain.Identity{Email: "juan@rodriguez.org", Active: true}))
	rec := httptest.NewRecorder()
	c = e.NewContext(req, rec)
	if err := mw(next)(c); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
}
