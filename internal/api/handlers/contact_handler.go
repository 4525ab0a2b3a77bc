package handlers

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/aldianriski/portfolioapi/internal/api/middleware"
	"github.com/aldianriski/portfolioapi/internal/service"
	"github.com/aldianriski/portfolioapi/pkg/utils/response"
	"github.com/aldianriski/portfolioapi/pkg/utils/zaplogger"
	"github.com/labstack/echo/v4"
)

// ContactHandler serves the public contact form
type ContactHandler struct {
	contact *service.ContactService
	limiter *service.RateLimiter
}

func NewContactHandler(contact *service.ContactService, limiter *service.RateLimiter) *ContactHandler {
	return &ContactHandler{contact: contact, limiter: limiter}
}

type contactResponse struct {
	Success   bool        `json:"success"`
	Data      interface{} `json:"data,omitempty"`
	Remaining *int        `json:"remaining,omitempty"`
}

// Submit stores a contact message. A filled honeypot gets a plain success
// with nothing stored.
func (h *ContactHandler) Submit(c echo.Context) error {
	var in service.ContactInput
	if err := c.Bind(&in); err != nil {
		return response.ErrorResponse(c, http.StatusBadRequest, response.InputException, "Invalid request body")
	}

	result, err := h.contact.Submit(c.Request().Context(), service.ClientIdentifier(c.Request()), in)
	if err != nil {
		var rateErr *service.RateLimitError
		var validationErr *service.ValidationError
		switch {
		case errors.As(err, &rateErr):
			c.Response().Header().Set(middleware.HeaderRetryAfter, strconv.Itoa(rateErr.Result.RetryAfter(h.limiter.Now())))
			return response.TooManyRequestsResponse(c, "Too many requests. Please try again later.", rateErr.Result.ResetTime.UnixMilli())
		case errors.As(err, &validationErr):
			return response.ErrorResponse(c, http.StatusBadRequest, response.InputException, validationErr.Message)
		default:
			zaplogger.Error("contact submission failed", zaplogger.Fields{"error": err})
			return response.ErrorResponse(c, http.StatusInternalServerError, response.ServerException, "Failed to save message")
		}
	}

	if result.Honeypot {
		return c.JSON(http.StatusOK, contactResponse{Success: true})
	}
	remaining := result.Remaining
	return c.JSON(http.StatusOK, contactResponse{Success: true, Data: result.Message, Remaining: &remaining})
}
