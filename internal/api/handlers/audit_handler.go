package handlers

import (
	"strconv"

	"github.com/aldianriski/portfolioapi/internal/api/middleware"
	"github.com/aldianriski/portfolioapi/pkg/utils/logger"
	"github.com/aldianriski/portfolioapi/pkg/utils/response"
	"github.com/labstack/echo/v4"
)

// AuditHandler serves the admin action log
type AuditHandler struct {
	audit *logger.Logger
}

func NewAuditHandler(audit *logger.Logger) *AuditHandler {
	return &AuditHandler{audit: audit}
}

// Recent returns the latest entries, newest first. `limit` defaults to 100.
func (h *AuditHandler) Recent(c echo.Context) error {
	limit, _ := strconv.Atoi(c.QueryParam("limit"))
	entries, err := h.audit.Recent(c.Request().Context(), limit)
	if err != nil {
		return fetchError(c, "audit entries", err)
	}
	middleware.AddRateLimitHeaders(c)
	return response.SuccessResponse(c, entries)
}
