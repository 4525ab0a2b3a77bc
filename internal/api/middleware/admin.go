package middleware

import (
	"net/http"
	"strconv"

	"github.com/aldianriski/portfolioapi/internal/service"
	"github.com/aldianriski/portfolioapi/pkg/utils/response"
	"github.com/aldianriski/portfolioapi/pkg/utils/zaplogger"
	"github.com/labstack/echo/v4"
)

// Rate limit headers set on guarded requests and echoed on responses
const (
	HeaderRateLimitLimit     = "X-RateLimit-Limit"
	HeaderRateLimitRemaining = "X-RateLimit-Remaining"
	HeaderRateLimitReset     = "X-RateLimit-Reset"
	HeaderRetryAfter         = "Retry-After"
)

// SessionContextKey holds the admin session on the echo context
const SessionContextKey = "admin_session"

// AdminRouteOptions tunes one guarded route. Nil fields take the defaults:
// CSRF is required for POST, PUT, PATCH and DELETE; rate limiting is on and
// uses the limiter budget.
type AdminRouteOptions struct {
	RequireCsrf     *bool
	EnableRateLimit *bool
	RateLimit       *service.RateLimitConfig
}

// AdminGuard protects admin routes with the session, rate limit and CSRF
// checks, in that order
type AdminGuard struct {
	Sessions *service.SessionStore
	Csrf     *service.CsrfGuard
	Limiter  *service.RateLimiter
}

// NewAdminGuard creates a new admin guard
func NewAdminGuard(sessions *service.SessionStore, csrf *service.CsrfGuard, limiter *service.RateLimiter) *AdminGuard {
	return &AdminGuard{Sessions: sessions, Csrf: csrf, Limiter: limiter}
}

// Protect returns the middleware for a route. The first failing check ends
// the request: 401 without a valid session, 429 over the rate limit, 403
// without a matching CSRF token.
func (g *AdminGuard) Protect(opts AdminRouteOptions) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			req := c.Request()

			// 1. Authentication
			session := g.Sessions.Get(c)
			if !g.Sessions.Valid(session) {
				return response.ErrorResponse(c, http.StatusUnauthorized, response.AuthorizationException, "Unauthorized")
			}
			if _, err := g.Sessions.Refresh(c, session); err != nil {
				zaplogger.Error("session refresh failed", zaplogger.Fields{"error": err})
			}
			c.Set(SessionContextKey, session)

			// 2. Rate limit
			if opts.EnableRateLimit == nil || *opts.EnableRateLimit {
				cfg := g.Limiter.Config()
				if opts.RateLimit != nil {
					cfg = *opts.RateLimit
				}
				result, err := g.Limiter.CheckWithConfig(req.Context(), service.ClientIdentifier(req), cfg)
				if err != nil {
					zaplogger.Error("admin rate limit check failed", zaplogger.Fields{"error": err})
					return response.ServerErrorResponse(c)
				}
				reset := strconv.FormatInt(result.ResetTime.UnixMilli(), 10)
				if !result.Allowed {
					h := c.Response().Header()
					h.Set(HeaderRateLimitLimit, strconv.Itoa(cfg.MaxRequests))
					h.Set(HeaderRateLimitRemaining, "0")
					h.Set(HeaderRateLimitReset, reset)
					h.Set(HeaderRetryAfter, strconv.Itoa(result.RetryAfter(g.Limiter.Now())))
					return response.TooManyRequestsResponse(c, "Too many requests", result.ResetTime.UnixMilli())
				}
				req.Header.Set(HeaderRateLimitLimit, strconv.Itoa(cfg.MaxRequests))
				req.Header.Set(HeaderRateLimitRemaining, strconv.Itoa(result.Remaining))
				req.Header.Set(HeaderRateLimitReset, reset)
			} else {
				// client-sent values must not reach AddRateLimitHeaders
				req.Header.Del(HeaderRateLimitLimit)
				req.Header.Del(HeaderRateLimitRemaining)
				req.Header.Del(HeaderRateLimitReset)
			}

			// 3. CSRF
			requireCsrf := isMutating(req.Method)
			if opts.RequireCsrf != nil {
				requireCsrf = *opts.RequireCsrf
			}
			if requireCsrf && !g.Csrf.VerifyRequest(c) {
				return response.ErrorResponse(c, http.StatusForbidden, response.CsrfException, "Invalid CSRF token")
			}

			return next(c)
		}
	}
}

// AddRateLimitHeaders copies the rate limit headers set by Protect from the
// request onto the response
func AddRateLimitHeaders(c echo.Context) {
	for _, name := range []string{HeaderRateLimitLimit, HeaderRateLimitRemaining, HeaderRateLimitReset} {
		if v := c.Request().Header.Get(name); v != "" {
			c.Response().Header().Set(name, v)
		}
	}
}

func isMutating(method string) bool {
	switch method {
	case http.MethodPost, http.MethodPut, http.MethodPatch, http.MethodDelete:
		return true
	}
	return false
}

// Bool returns a pointer to b, for AdminRouteOptions fields
func Bool(b bool) *bool {
	return &b
}
