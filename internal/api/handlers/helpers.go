// Package handlers contains the handlers for the API
package handlers

import (
	"net/http"

	"github.com/aldianriski/portfolioapi/internal/models"
	"github.com/aldianriski/portfolioapi/pkg/utils/response"
	"github.com/labstack/echo/v4"
)

// readLocale returns the `locale` query value, en when empty. ok is false
// after an error response has been written for an unsupported locale.
func readLocale(c echo.Context) (string, bool, error) {
	locale := c.QueryParam("locale")
	if locale == "" {
		return models.DefaultLocale, true, nil
	}
	if !models.IsSupportedLocale(locale) {
		return "", false, response.ErrorResponse(c, http.StatusBadRequest, response.InputException, "Unsupported `locale`, expected en or id")
	}
	return locale, true, nil
}

// readOptionalLocale is readLocale where an empty value means every locale
func readOptionalLocale(c echo.Context) (string, bool, error) {
	if c.QueryParam("locale") == "" {
		return "", true, nil
	}
	return readLocale(c)
}

// idsRequest is the body of the bulk delete endpoints
type idsRequest struct {
	IDs []string `json:"ids"`
}
