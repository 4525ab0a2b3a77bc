package service

import (
	"context"
	"fmt"
	"regexp"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/aldianriski/portfolioapi/internal/models"
	"github.com/aldianriski/portfolioapi/internal/repository"
	"github.com/aldianriski/portfolioapi/pkg/utils/zaplogger"
)

// Contact field limits, counted in characters
const (
	ContactNameMaxLength    = 100
	ContactEmailMaxLength   = 255
	ContactMessageMaxLength = 2000
)

var emailPattern = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)

// ContactInput is the body of a contact submission. Website is the honeypot
// field and must stay empty.
type ContactInput struct {
	Name    string `json:"name"`
	Email   string `json:"email"`
	Message string `json:"message"`
	Locale  string `json:"locale"`
	Website string `json:"website"`
}

// ContactResult is the outcome of an accepted submission. Honeypot is set when
// the submission was silently dropped.
type ContactResult struct {
	Message   *models.ContactMessage
	Remaining int
	Honeypot  bool
}

// ValidationError is a client input error tied to a field
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return e.Message
}

// RateLimitError is returned when the contact budget of a client is spent
type RateLimitError struct {
	Result RateLimitResult
}

func (e *RateLimitError) Error() string {
	return fmt.Sprintf("rate limit exceeded, resets at %s", e.Result.ResetTime.Format(time.RFC3339))
}

// ContactService stores contact form submissions
type ContactService struct {
	messages *repository.MessageRepository
	limiter  *RateLimiter
	notifier Notifier
}

// NewContactService creates a new contact service
func NewContactService(messages *repository.MessageRepository, limiter *RateLimiter, notifier Notifier) *ContactService {
	if notifier == nil {
		notifier = NopNotifier{}
	}
	return &ContactService{messages: messages, limiter: limiter, notifier: notifier}
}

// Submit runs the honeypot, rate limit and validation checks in that order and
// stores the sanitized message
func (s *ContactService) Submit(ctx context.Context, clientID string, in ContactInput) (*ContactResult, error) {
	if in.Website != "" {
		zaplogger.Warn("contact honeypot triggered", zaplogger.Fields{"client": clientID})
		return &ContactResult{Honeypot: true}, nil
	}

	limit, err := s.limiter.Check(ctx, clientID)
	if err != nil {
		return nil, fmt.Errorf("contact rate limit: %w", err)
	}
	if !limit.Allowed {
		return nil, &RateLimitError{Result: limit}
	}

	msg, err := validateContact(in)
	if err != nil {
		return nil, err
	}

	if err := s.messages.Create(ctx, msg); err != nil {
		return nil, fmt.Errorf("save contact message: %w", err)
	}

	if err := s.notifier.NotifyContact(ctx, msg); err != nil {
		zaplogger.Error("contact notification failed", zaplogger.Fields{"id": msg.ID, "error": err})
	}

	return &ContactResult{Message: msg, Remaining: limit.Remaining}, nil
}

func validateContact(in ContactInput) (*models.ContactMessage, error) {
	name := strings.TrimSpace(in.Name)
	email := strings.ToLower(strings.TrimSpace(in.Email))
	message := strings.TrimSpace(in.Message)

	if name == "" || email == "" || message == "" {
		return nil, &ValidationError{Field: "", Message: "Missing required fields"}
	}
	if utf8.RuneCountInString(in.Name) > ContactNameMaxLength {
		return nil, &ValidationError{Field: "name", Message: fmt.Sprintf("Name must be %d characters or less", ContactNameMaxLength)}
	}
	if utf8.RuneCountInString(in.Email) > ContactEmailMaxLength {
		return nil, &ValidationError{Field: "email", Message: fmt.Sprintf("Email must be %d characters or less", ContactEmailMaxLength)}
	}
	if utf8.RuneCountInString(in.Message) > ContactMessageMaxLength {
		return nil, &ValidationError{Field: "message", Message: fmt.Sprintf("Message must be %d characters or less", ContactMessageMaxLength)}
	}
	if !emailPattern.MatchString(email) {
		return nil, &ValidationError{Field: "email", Message: "Invalid email address"}
	}

	locale := in.Locale
	if !models.IsSupportedLocale(locale) {
		locale = models.DefaultLocale
	}

	return &models.ContactMessage{
		Name:    name,
		Email:   email,
		Message: message,
		Locale:  locale,
		IsRead:  false,
	}, nil
}
