package handlers

import (
	"net/http"

	"github.com/aldianriski/portfolioapi/internal/service"
	"github.com/aldianriski/portfolioapi/pkg/utils/response"
	"github.com/aldianriski/portfolioapi/pkg/utils/zaplogger"
	"github.com/labstack/echo/v4"
)

// CsrfHandler issues anti-forgery tokens
type CsrfHandler struct {
	csrf *service.CsrfGuard
}

func NewCsrfHandler(csrf *service.CsrfGuard) *CsrfHandler {
	return &CsrfHandler{csrf: csrf}
}

// GetToken mints a token, stores it in the csrf cookie and returns it as
// `{"token": "..."}`
func (h *CsrfHandler) GetToken(c echo.Context) error {
	token, err := h.csrf.Issue(c)
	if err != nil {
		zaplogger.Error("csrf token generation failed", zaplogger.Fields{"error": err})
		return response.ErrorResponse(c, http.StatusInternalServerError, response.ServerException, "Failed to generate CSRF token")
	}
	return c.JSON(http.StatusOK, map[string]string{"token": token})
}
