// Package service contains the service layer for the Portfolio API
package service

import (
	"fmt"
	"net/http"
	"time"

	"github.com/aldianriski/portfolioapi/internal/config"
	"github.com/aldianriski/portfolioapi/internal/models"
	"github.com/aldianriski/portfolioapi/pkg/utils/zaplogger"
	"github.com/golang-jwt/jwt/v5"
	"github.com/labstack/echo/v4"
)

// Session cookie names and the current session format version
const (
	SessionCookieName       = "admin_session"
	LegacySessionCookieName = "admin-session"
	SessionVersion          = 2

	legacySessionValue = "authenticated"
)

type sessionClaims struct {
	Version       int   `json:"v"`
	Authenticated bool  `json:"authenticated"`
	CreatedAt     int64 `json:"created_at"`
	LastActivity  int64 `json:"last_activity"`
	jwt.RegisteredClaims
}

// SessionStore keeps the admin session in a signed cookie. Timestamps are
// carried with millisecond precision.
type SessionStore struct {
	secret           []byte
	duration         time.Duration
	refreshThreshold time.Duration
	secure           bool
	migrateLegacy    bool
	now              func() time.Time
}

// NewSessionStore creates a session store from config
func NewSessionStore(cfg *config.Config) *SessionStore {
	return &SessionStore{
		secret:           []byte(cfg.SessionSecret),
		duration:         cfg.SessionDuration,
		refreshThreshold: cfg.SessionRefreshThreshold,
		secure:           cfg.IsProduction(),
		migrateLegacy:    cfg.SessionLegacyCookie,
		now:              time.Now,
	}
}

// WithClock replaces the time source
func (s *SessionStore) WithClock(now func() time.Time) *SessionStore {
	s.now = now
	return s
}

// Duration returns the absolute session lifetime
func (s *SessionStore) Duration() time.Duration {
	return s.duration
}

// Create mints an authenticated session and writes its cookie
func (s *SessionStore) Create(c echo.Context) (*models.Session, error) {
	now := s.now().Truncate(time.Millisecond)
	session := &models.Session{
		Version:       SessionVersion,
		Authenticated: true,
		CreatedAt:     now,
		LastActivity:  now,
	}
	if err := s.setCookie(c, session); err != nil {
		return nil, err
	}
	return session, nil
}

// Get returns the session carried by the request, or nil when there is none.
// A malformed or badly signed cookie counts as no session. An expired session
// is destroyed.
func (s *SessionStore) Get(c echo.Context) *models.Session {
	cookie, err := c.Cookie(SessionCookieName)
	if err != nil || cookie.Value == "" {
		return s.readLegacy(c)
	}

	session, err := s.Decode(cookie.Value)
	if err != nil {
		zaplogger.Debug("session cookie rejected", zaplogger.Fields{"error": err})
		return nil
	}

	if s.now().Sub(session.CreatedAt) > s.duration {
		s.Destroy(c)
		return nil
	}
	return session
}

// Valid reports whether session exists, is authenticated and is not past its
// absolute lifetime
func (s *SessionStore) Valid(session *models.Session) bool {
	if session == nil || !session.Authenticated {
		return false
	}
	return s.now().Sub(session.CreatedAt) <= s.duration
}

// ShouldRefresh reports whether the idle time exceeds the refresh threshold
func (s *SessionStore) ShouldRefresh(session *models.Session) bool {
	return s.now().Sub(session.LastActivity) > s.refreshThreshold
}

// Refresh moves LastActivity to now and rewrites the cookie when the refresh
// threshold is exceeded. CreatedAt never changes. It reports whether the
// cookie was rewritten.
func (s *SessionStore) Refresh(c echo.Context, session *models.Session) (bool, error) {
	if !s.ShouldRefresh(session) {
		return false, nil
	}
	session.LastActivity = s.now().Truncate(time.Millisecond)
	if err := s.setCookie(c, session); err != nil {
		return false, err
	}
	return true, nil
}

// Destroy deletes the session cookie
func (s *SessionStore) Destroy(c echo.Context) {
	c.SetCookie(s.expiredCookie(SessionCookieName))
}

// Encode signs session into a cookie value
func (s *SessionStore) Encode(session *models.Session) (string, error) {
	claims := sessionClaims{
		Version:       SessionVersion,
		Authenticated: session.Authenticated,
		CreatedAt:     session.CreatedAt.UnixMilli(),
		LastActivity:  session.LastActivity.UnixMilli(),
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.secret)
	if err != nil {
		return "", fmt.Errorf("sign session: %w", err)
	}
	return token, nil
}

// Decode verifies and parses a cookie value
func (s *SessionStore) Decode(value string) (*models.Session, error) {
	claims := &sessionClaims{}
	_, err := jwt.ParseWithClaims(value, claims, func(t *jwt.Token) (interface{}, error) {
		return s.secret, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
	if err != nil {
		return nil, fmt.Errorf("parse session: %w", err)
	}
	if claims.Version != SessionVersion {
		return nil, fmt.Errorf("unsupported session version %d", claims.Version)
	}
	return &models.Session{
		Version:       claims.Version,
		Authenticated: claims.Authenticated,
		CreatedAt:     time.UnixMilli(claims.CreatedAt),
		LastActivity:  time.UnixMilli(claims.LastActivity),
	}, nil
}

// readLegacy handles the boolean cookie of the first session format. The old
// cookie is always removed; it is exchanged for a new session only when
// migration is enabled.
func (s *SessionStore) readLegacy(c echo.Context) *models.Session {
	cookie, err := c.Cookie(LegacySessionCookieName)
	if err != nil {
		return nil
	}
	c.SetCookie(s.expiredCookie(LegacySessionCookieName))

	if !s.migrateLegacy || cookie.Value != legacySessionValue {
		return nil
	}
	session, err := s.Create(c)
	if err != nil {
		zaplogger.Error("legacy session migration failed", zaplogger.Fields{"error": err})
		return nil
	}
	zaplogger.Info("legacy session migrated")
	return session
}

func (s *SessionStore) setCookie(c echo.Context, session *models.Session) error {
	value, err := s.Encode(session)
	if err != nil {
		return err
	}
	c.SetCookie(&http.Cookie{
		Name:     SessionCookieName,
		Value:    value,
		Path:     "/",
		MaxAge:   int(s.duration / time.Second),
		HttpOnly: true,
		Secure:   s.secure,
		SameSite: http.SameSiteStrictMode,
	})
	return nil
}

func (s *SessionStore) expiredCookie(name string) *http.Cookie {
	return &http.Cookie{
		Name:     name,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		Expires:  time.Unix(0, 0),
		HttpOnly: true,
		Secure:   s.secure,
		SameSite: http.SameSiteStrictMode,
	}
}
