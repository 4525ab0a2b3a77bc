package handlers

import (
	"bytes"
	"fmt"
	"net/http"

	"github.com/aldianriski/portfolioapi/internal/api/middleware"
	"github.com/aldianriski/portfolioapi/internal/service"
	"github.com/aldianriski/portfolioapi/pkg/utils/response"
	"github.com/aldianriski/portfolioapi/pkg/utils/zaplogger"
	"github.com/labstack/echo/v4"
)

// ResumeHandler serves the generated PDF résumé
type ResumeHandler struct {
	resume *service.ResumeService
}

func NewResumeHandler(resume *service.ResumeService) *ResumeHandler {
	return &ResumeHandler{resume: resume}
}

// Download renders the résumé of a locale as a PDF attachment
func (h *ResumeHandler) Download(c echo.Context) error {
	locale, ok, err := readLocale(c)
	if !ok {
		return err
	}
	data, err := h.resume.Collect(c.Request().Context(), locale)
	if err != nil {
		return fetchError(c, "resume content", err)
	}
	var buf bytes.Buffer
	if err := service.RenderResume(data, &buf); err != nil {
		zaplogger.Error("resume rendering failed", zaplogger.Fields{"locale": locale, "error": err})
		return response.ErrorResponse(c, http.StatusInternalServerError, response.ServerException, "Failed to generate resume")
	}
	c.Response().Header().Set(echo.HeaderContentDisposition, fmt.Sprintf("attachment; filename=%q", service.ResumeFileName(data.Name)))
	middleware.AddRateLimitHeaders(c)
	return c.Blob(http.StatusOK, "application/pdf", buf.Bytes())
}
