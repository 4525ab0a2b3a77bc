// Package response contains response utility functions and types
package response

import (
	"net/http"

	"github.com/labstack/echo/v4"
)

// Error types returned in the `error_type` field
const (
	InputException           = "InputException"
	AuthorizationException   = "AuthorizationException"
	CsrfException            = "CsrfException"
	TooManyRequestsException = "TooManyRequestsException"
	NotFoundException        = "NotFoundException"
	ServerException          = "ServerException"
)

// Response represents the standard API response structure
type Response struct {
	Success   bool        `json:"success"`
	Data      interface{} `json:"data,omitempty"`
	Error     string      `json:"error,omitempty"`
	ErrorType string      `json:"error_type,omitempty"`
}

// SuccessResponse sends a successful JSON response
func SuccessResponse(c echo.Context, data interface{}) error {
	return c.JSON(http.StatusOK, Response{
		Success: true,
		Data:    data,
	})
}

// OKResponse sends `{"success": true}` with no payload
func OKResponse(c echo.Context) error {
	return c.JSON(http.StatusOK, Response{Success: true})
}

// ErrorResponse sends an error JSON response
func ErrorResponse(c echo.Context, httpStatus int, errorType, message string) error {
	return c.JSON(httpStatus, Response{
		Success:   false,
		Error:     message,
		ErrorType: errorType,
	})
}

// ServerErrorResponse sends the generic 500 body; details belong in the server log
func ServerErrorResponse(c echo.Context) error {
	return ErrorResponse(c, http.StatusInternalServerError, ServerException, "Internal server error")
}

// RateLimitedResponse is the 429 body; ResetTime is in epoch milliseconds
type RateLimitedResponse struct {
	Response
	ResetTime int64 `json:"resetTime"`
}

// TooManyRequestsResponse sends a 429 with the window reset time
func TooManyRequestsResponse(c echo.Context, message string, resetTime int64) error {
	return c.JSON(http.StatusTooManyRequests, RateLimitedResponse{
		Response: Response{
			Success:   false,
			Error:     message,
			ErrorType: TooManyRequestsException,
		},
		ResetTime: resetTime,
	})
}
