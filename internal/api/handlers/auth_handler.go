package handlers

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/aldianriski/portfolioapi/internal/api/middleware"
	"github.com/aldianriski/portfolioapi/internal/models"
	"github.com/aldianriski/portfolioapi/internal/service"
	"github.com/aldianriski/portfolioapi/pkg/utils/logger"
	"github.com/aldianriski/portfolioapi/pkg/utils/response"
	"github.com/aldianriski/portfolioapi/pkg/utils/zaplogger"
	"github.com/labstack/echo/v4"
)

// AuthHandler serves admin login, logout and session status
type AuthHandler struct {
	auth     *service.AuthService
	sessions *service.SessionStore
	limiter  *service.RateLimiter
	audit    *logger.Logger
}

func NewAuthHandler(auth *service.AuthService, sessions *service.SessionStore, limiter *service.RateLimiter, audit *logger.Logger) *AuthHandler {
	return &AuthHandler{auth: auth, sessions: sessions, limiter: limiter, audit: audit}
}

type loginRequest struct {
	Password string `json:"password"`
	Totp     string `json:"totp"`
}

type sessionResponse struct {
	Authenticated bool      `json:"authenticated"`
	CreatedAt     time.Time `json:"created_at"`
	LastActivity  time.Time `json:"last_activity"`
	ExpiresAt     time.Time `json:"expires_at"`
	CsrfToken     string    `json:"csrf_token,omitempty"`
}

// Login checks the admin credentials and opens a session
func (h *AuthHandler) Login(c echo.Context) error {
	clientID := service.ClientIdentifier(c.Request())
	limit, err := h.limiter.Check(c.Request().Context(), clientID)
	if err != nil {
		zaplogger.Error("login rate limit check failed", zaplogger.Fields{"error": err})
		return response.ServerErrorResponse(c)
	}
	if !limit.Allowed {
		c.Response().Header().Set(middleware.HeaderRetryAfter, strconv.Itoa(limit.RetryAfter(h.limiter.Now())))
		return response.TooManyRequestsResponse(c, "Too many login attempts", limit.ResetTime.UnixMilli())
	}

	var req loginRequest
	if err := c.Bind(&req); err != nil {
		return response.ErrorResponse(c, http.StatusBadRequest, response.InputException, "Invalid request body")
	}
	if req.Password == "" {
		return response.ErrorResponse(c, http.StatusBadRequest, response.InputException, "`password` is required")
	}

	session, token, err := h.auth.Login(c, req.Password, req.Totp)
	switch {
	case errors.Is(err, service.ErrTotpRequired):
		return response.ErrorResponse(c, http.StatusUnauthorized, response.AuthorizationException, "TOTP code required")
	case errors.Is(err, service.ErrInvalidCredentials):
		zaplogger.Warn("admin login rejected", zaplogger.Fields{"client": clientID})
		return response.ErrorResponse(c, http.StatusUnauthorized, response.AuthorizationException, "Invalid credentials")
	case err != nil:
		zaplogger.Error("admin login failed", zaplogger.Fields{"error": err})
		return response.ServerErrorResponse(c)
	}

	h.audit.Record(c.Request().Context(), "session", logger.LOGIN, clientID, nil)
	return response.SuccessResponse(c, h.describe(session, token))
}

// Logout destroys the session
func (h *AuthHandler) Logout(c echo.Context) error {
	h.auth.Logout(c)
	h.audit.Record(c.Request().Context(), "session", logger.LOGOUT, service.ClientIdentifier(c.Request()), nil)
	middleware.AddRateLimitHeaders(c)
	return response.OKResponse(c)
}

// Session reports the current session timestamps
func (h *AuthHandler) Session(c echo.Context) error {
	session, ok := c.Get(middleware.SessionContextKey).(*models.Session)
	if !ok {
		return response.ErrorResponse(c, http.StatusUnauthorized, response.AuthorizationException, "Unauthorized")
	}
	middleware.AddRateLimitHeaders(c)
	return response.SuccessResponse(c, h.describe(session, ""))
}

func (h *AuthHandler) describe(session *models.Session, token string) sessionResponse {
	return sessionResponse{
		Authenticated: session.Authenticated,
		CreatedAt:     session.CreatedAt,
		LastActivity:  session.LastActivity,
		ExpiresAt:     session.CreatedAt.Add(h.sessions.Duration()),
		CsrfToken:     token,
	}
}
