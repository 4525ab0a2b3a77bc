package service

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/aldianriski/portfolioapi/internal/config"
	"github.com/aldianriski/portfolioapi/internal/models"
	"github.com/labstack/echo/v4"
	"github.com/pquerna/otp"
	"github.com/pquerna/otp/totp"
	"golang.org/x/crypto/bcrypt"
)

var (
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrTotpRequired       = errors.New("totp code required")
)

// AuthService checks the admin password and opens or closes the session
type AuthService struct {
	passwordHash []byte
	totpSecret   string
	sessions     *SessionStore
	csrf         *CsrfGuard
	now          func() time.Time
}

// NewAuthService hashes the configured admin password once at startup
func NewAuthService(cfg *config.Config, sessions *SessionStore, csrf *CsrfGuard) (*AuthService, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(cfg.AdminPassword), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("failed to hash admin password: %v", err)
	}
	return &AuthService{
		passwordHash: hash,
		totpSecret:   strings.TrimSpace(cfg.AdminTotpSecret),
		sessions:     sessions,
		csrf:         csrf,
		now:          time.Now,
	}, nil
}

// TotpEnabled reports whether a second factor is required
func (s *AuthService) TotpEnabled() bool {
	return s.totpSecret != ""
}

// CheckCredentials verifies the password and, when enabled, the TOTP code
func (s *AuthService) CheckCredentials(password, code string) error {
	if err := bcrypt.CompareHashAndPassword(s.passwordHash, []byte(password)); err != nil {
		return ErrInvalidCredentials
	}
	if !s.TotpEnabled() {
		return nil
	}
	if strings.TrimSpace(code) == "" {
		return ErrTotpRequired
	}
	if !ValidateTOTP(s.totpSecret, code, s.now()) {
		return ErrInvalidCredentials
	}
	return nil
}

// Login checks the credentials, opens a session and issues a fresh CSRF token
func (s *AuthService) Login(c echo.Context, password, code string) (*models.Session, string, error) {
	if err := s.CheckCredentials(password, code); err != nil {
		return nil, "", err
	}
	session, err := s.sessions.Create(c)
	if err != nil {
		return nil, "", err
	}
	token, err := s.csrf.Issue(c)
	if err != nil {
		return nil, "", err
	}
	return session, token, nil
}

// Logout destroys the session
func (s *AuthService) Logout(c echo.Context) {
	s.sessions.Destroy(c)
}

// ValidateTOTP checks a 6 digit SHA1 code with one period of skew
func ValidateTOTP(secret, code string, now time.Time) bool {
	cleanCode := strings.TrimSpace(code)
	if len(cleanCode) != 6 {
		return false
	}
	valid, err := totp.ValidateCustom(cleanCode, secret, now, totp.ValidateOpts{
		Period:    30,
		Skew:      1,
		Digits:    otp.DigitsSix,
		Algorithm: otp.AlgorithmSHA1,
	})
	if err != nil {
		return false
	}
	return valid
}
