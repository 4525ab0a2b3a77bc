package service

import (
	"crypto/rand"
	"crypto/subtle"
	"encoding/hex"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/aldianriski/portfolioapi/internal/config"
	"github.com/labstack/echo/v4"
)

// CsrfCookieName is the cookie holding the anti-forgery token
const CsrfCookieName = "csrf_token"

const csrfTokenBytes = 32

// CsrfGuard implements double-submit CSRF protection: the token lives in a
// cookie and must be echoed in a request header
type CsrfGuard struct {
	ttl    time.Duration
	header string
	secure bool
}

// NewCsrfGuard creates a guard from config
func NewCsrfGuard(cfg *config.Config) *CsrfGuard {
	return &CsrfGuard{
		ttl:    cfg.CsrfTTL,
		header: cfg.CsrfHeader,
		secure: cfg.IsProduction(),
	}
}

// HeaderName returns the request header that must carry the token
func (g *CsrfGuard) HeaderName() string {
	return g.header
}

// GenerateCsrfToken returns 32 random bytes, hex encoded
func GenerateCsrfToken() (string, error) {
	b := make([]byte, csrfTokenBytes)
	if _, err := rand.Read(b); err != nil {
		return "", fmt.Errorf("generate csrf token: %w", err)
	}
	return hex.EncodeToString(b), nil
}

// SetCookie stores token in the csrf cookie
func (g *CsrfGuard) SetCookie(c echo.Context, token string) {
	c.SetCookie(&http.Cookie{
		Name:     CsrfCookieName,
		Value:    token,
		Path:     "/",
		MaxAge:   int(g.ttl / time.Second),
		HttpOnly: true,
		Secure:   g.secure,
		SameSite: http.SameSiteStrictMode,
	})
}

// Issue mints a fresh token and stores it in the cookie
func (g *CsrfGuard) Issue(c echo.Context) (string, error) {
	token, err := GenerateCsrfToken()
	if err != nil {
		return "", err
	}
	g.SetCookie(c, token)
	return token, nil
}

// Token returns the token of the request cookie, minting and storing a new
// one when there is none
func (g *CsrfGuard) Token(c echo.Context) (string, error) {
	if cookie, err := c.Cookie(CsrfCookieName); err == nil && cookie.Value != "" {
		return cookie.Value, nil
	}
	return g.Issue(c)
}

// Verify reports whether headerToken matches the cookie token. An empty
// header or a missing cookie never verifies.
func (g *CsrfGuard) Verify(c echo.Context, headerToken string) bool {
	if headerToken == "" {
		return false
	}
	cookie, err := c.Cookie(CsrfCookieName)
	if err != nil || cookie.Value == "" {
		return false
	}
	return TokensEqual(headerToken, cookie.Value)
}

// VerifyRequest checks the token carried in the configured header
func (g *CsrfGuard) VerifyRequest(c echo.Context) bool {
	return g.Verify(c, strings.TrimSpace(c.Request().Header.Get(g.header)))
}

// TokensEqual compares in constant time. Different lengths are unequal
// without comparing content.
func TokensEqual(a, b string) bool {
	if len(a) != len(b) {
		return false
	}
	return subtle.ConstantTimeCompare([]byte(a), []byte(b)) == 1
}
