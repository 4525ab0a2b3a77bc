package middleware

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/aldianriski/portfolioapi/internal/config"
	"github.com/aldianriski/portfolioapi/internal/models"
	"github.com/aldianriski/portfolioapi/internal/repository"
	"github.com/aldianriski/portfolioapi/internal/service"
	"github.com/labstack/echo/v4"
)

const testCsrfToken = "0123456789abcdef0123456789abcdef0123456789abcdef0123456789abcdef"

type failingStore struct{}

func (failingStore) Hit(ctx context.Context, key string, window time.Duration, now time.Time) (models.RateLimitEntry, error) {
	return models.RateLimitEntry{}, errors.New("store down")
}

func (failingStore) Sweep(ctx context.Context, now time.Time) (int, error) {
	return 0, nil
}

func newTestGuard(t *testing.T, store service.RateLimitStore, max int) *AdminGuard {
	t.Helper()
	cfg := &config.Config{
		Environment:             config.EnvTest,
		SessionSecret:           strings.Repeat("k", 32),
		SessionDuration:         8 * time.Hour,
		SessionRefreshThreshold: 30 * time.Minute,
		CsrfTTL:                 24 * time.Hour,
		CsrfHeader:              "x-csrf-token",
	}
	limiter := service.NewRateLimiter(store, "admin", service.RateLimitConfig{MaxRequests: max, Window: time.Minute})
	return NewAdminGuard(service.NewSessionStore(cfg), service.NewCsrfGuard(cfg), limiter)
}

func sessionCookie(t *testing.T, g *AdminGuard) *http.Cookie {
	t.Helper()
	now := time.Now()
	value, err := g.Sessions.Encode(&models.Session{Version: service.SessionVersion, Authenticated: true, CreatedAt: now, LastActivity: now})
	if err != nil {
		t.Fatal(err)
	}
	return &http.Cookie{Name: service.SessionCookieName, Value: value}
}

// serve runs one request through Protect and a handler that echoes the rate
// limit headers
func serve(g *AdminGuard, opts AdminRouteOptions, method string, setup func(*http.Request)) (*httptest.ResponseRecorder, bool) {
	e := echo.New()
	req := httptest.NewRequest(method, "/api/projects/reorder", nil)
	if setup != nil {
		setup(req)
	}
	rec := httptest.NewRecorder()
	reached := false
	handler := g.Protect(opts)(func(c echo.Context) error {
		reached = true
		if _, ok := c.Get(SessionContextKey).(*models.Session); !ok {
			return c.NoContent(http.StatusTeapot)
		}
		AddRateLimitHeaders(c)
		return c.NoContent(http.StatusOK)
	})
	_ = handler(e.NewContext(req, rec))
	return rec, reached
}

func TestProtectWithoutSession(t *testing.T) {
	g := newTestGuard(t, repository.NewMemoryRateLimitStore(), 10)
	rec, reached := serve(g, AdminRouteOptions{}, http.MethodPost, nil)
	if rec.Code != http.StatusUnauthorized || reached {
		t.Fatalf("status = %d reached = %v, want 401", rec.Code, reached)
	}
}

func TestProtectRejectsForgedSession(t *testing.T) {
	g := newTestGuard(t, repository.NewMemoryRateLimitStore(), 10)
	rec, _ := serve(g, AdminRouteOptions{}, http.MethodGet, func(r *http.Request) {
		r.AddCookie(&http.Cookie{Name: service.SessionCookieName, Value: "authenticated"})
	})
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("status = %d, want 401", rec.Code)
	}
}

func TestProtectMutationWithoutCsrf(t *testing.T) {
	g := newTestGuard(t, repository.NewMemoryRateLimitStore(), 10)
	cookie := sessionCookie(t, g)
	rec, reached := serve(g, AdminRouteOptions{}, http.MethodPost, func(r *http.Request) {
		r.AddCookie(cookie)
	})
	if rec.Code != http.StatusForbidden || reached {
		t.Fatalf("status = %d reached = %v, want 403", rec.Code, reached)
	}
}

func TestProtectMutationWithCsrf(t *testing.T) {
	g := newTestGuard(t, repository.NewMemoryRateLimitStore(), 10)
	cookie := sessionCookie(t, g)
	rec, reached := serve(g, AdminRouteOptions{}, http.MethodPost, func(r *http.Request) {
		r.AddCookie(cookie)
		r.AddCookie(&http.Cookie{Name: service.CsrfCookieName, Value: testCsrfToken})
		r.Header.Set("x-csrf-token", testCsrfToken)
	})
	if rec.Code != http.StatusOK || !reached {
		t.Fatalf("status = %d reached = %v, want 200", rec.Code, reached)
	}
	if rec.Header().Get(HeaderRateLimitLimit) != "10" || rec.Header().Get(HeaderRateLimitRemaining) != "9" {
		t.Fatalf("rate limit headers = %v", rec.Header())
	}
	if rec.Header().Get(HeaderRateLimitReset) == "" {
		t.Fatal("missing reset header")
	}
}

func TestProtectReadSkipsCsrf(t *testing.T) {
	g := newTestGuard(t, repository.NewMemoryRateLimitStore(), 10)
	cookie := sessionCookie(t, g)
	rec, _ := serve(g, AdminRouteOptions{}, http.MethodGet, func(r *http.Request) {
		r.AddCookie(cookie)
	})
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}

	rec, _ = serve(g, AdminRouteOptions{RequireCsrf: Bool(true)}, http.MethodGet, func(r *http.Request) {
		r.AddCookie(cookie)
	})
	if rec.Code != http.StatusForbidden {
		t.Fatalf("forced csrf status = %d, want 403", rec.Code)
	}

	rec, _ = serve(g, AdminRouteOptions{RequireCsrf: Bool(false)}, http.MethodDelete, func(r *http.Request) {
		r.AddCookie(cookie)
	})
	if rec.Code != http.StatusOK {
		t.Fatalf("csrf disabled status = %d, want 200", rec.Code)
	}
}

func TestProtectRateLimitBeforeCsrf(t *testing.T) {
	g := newTestGuard(t, repository.NewMemoryRateLimitStore(), 1)
	cookie := sessionCookie(t, g)
	withSession := func(r *http.Request) { r.AddCookie(cookie) }

	if rec, _ := serve(g, AdminRouteOptions{}, http.MethodGet, withSession); rec.Code != http.StatusOK {
		t.Fatalf("first status = %d", rec.Code)
	}
	// over the limit without a csrf token: the limiter answers first
	rec, reached := serve(g, AdminRouteOptions{}, http.MethodPost, withSession)
	if rec.Code != http.StatusTooManyRequests || reached {
		t.Fatalf("status = %d reached = %v, want 429", rec.Code, reached)
	}
	if rec.Header().Get(HeaderRateLimitRemaining) != "0" || rec.Header().Get(HeaderRetryAfter) == "" {
		t.Fatalf("headers = %v", rec.Header())
	}
	if !strings.Contains(rec.Body.String(), `"resetTime"`) {
		t.Fatalf("body = %s", rec.Body.String())
	}
}

func TestProtectRouteOverrides(t *testing.T) {
	g := newTestGuard(t, repository.NewMemoryRateLimitStore(), 1)
	cookie := sessionCookie(t, g)
	withSession := func(r *http.Request) { r.AddCookie(cookie) }

	off := AdminRouteOptions{EnableRateLimit: Bool(false)}
	for i := 0; i < 3; i++ {
		rec, _ := serve(g, off, http.MethodGet, withSession)
		if rec.Code != http.StatusOK {
			t.Fatalf("unlimited request %d status = %d", i+1, rec.Code)
		}
		if rec.Header().Get(HeaderRateLimitLimit) != "" {
			t.Fatal("rate limit headers set with limiting disabled")
		}
	}

	wide := AdminRouteOptions{RateLimit: &service.RateLimitConfig{MaxRequests: 3, Window: time.Minute}}
	for i := 0; i < 3; i++ {
		rec, _ := serve(g, wide, http.MethodGet, withSession)
		if rec.Code != http.StatusOK {
			t.Fatalf("custom budget request %d status = %d", i+1, rec.Code)
		}
	}
	if rec, _ := serve(g, wide, http.MethodGet, withSession); rec.Code != http.StatusTooManyRequests {
		t.Fatalf("status = %d, want 429", rec.Code)
	}
}

func TestProtectDropsClientRateLimitHeaders(t *testing.T) {
	g := newTestGuard(t, repository.NewMemoryRateLimitStore(), 10)
	cookie := sessionCookie(t, g)
	rec, reached := serve(g, AdminRouteOptions{EnableRateLimit: Bool(false)}, http.MethodGet, func(r *http.Request) {
		r.AddCookie(cookie)
		r.Header.Set(HeaderRateLimitLimit, "9999")
		r.Header.Set(HeaderRateLimitRemaining, "9999")
		r.Header.Set(HeaderRateLimitReset, "1")
	})
	if rec.Code != http.StatusOK || !reached {
		t.Fatalf("status = %d reached = %v, want 200", rec.Code, reached)
	}
	for _, name := range []string{HeaderRateLimitLimit, HeaderRateLimitRemaining, HeaderRateLimitReset} {
		if v := rec.Header().Get(name); v != "" {
			t.Fatalf("%s = %q echoed from the request", name, v)
		}
	}

	// with limiting on, the guard's values replace the client's
	rec, _ = serve(g, AdminRouteOptions{}, http.MethodGet, func(r *http.Request) {
		r.AddCookie(cookie)
		r.Header.Set(HeaderRateLimitLimit, "9999")
	})
	if got := rec.Header().Get(HeaderRateLimitLimit); got != "10" {
		t.Fatalf("limit header = %q, want 10", got)
	}
}

func TestProtectStoreFailure(t *testing.T) {
	g := newTestGuard(t, failingStore{}, 10)
	cookie := sessionCookie(t, g)
	rec, reached := serve(g, AdminRouteOptions{}, http.MethodGet, func(r *http.Request) {
		r.AddCookie(cookie)
	})
	if rec.Code != http.StatusInternalServerError || reached {
		t.Fatalf("status = %d reached = %v, want 500", rec.Code, reached)
	}
}
