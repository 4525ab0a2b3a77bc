package handlers

import (
	"net/http"
	"strings"

	"github.com/aldianriski/portfolioapi/internal/api/middleware"
	"github.com/aldianriski/portfolioapi/internal/models"
	"github.com/aldianriski/portfolioapi/internal/repository"
	"github.com/aldianriski/portfolioapi/internal/service"
	"github.com/aldianriski/portfolioapi/pkg/utils/logger"
	"github.com/aldianriski/portfolioapi/pkg/utils/response"
	"github.com/aldianriski/portfolioapi/pkg/utils/zaplogger"
	"github.com/labstack/echo/v4"
)

const settingsEntity = "settings"

// SettingsHandler serves the admin view of the site settings
type SettingsHandler struct {
	repo  *repository.SettingsRepository
	audit *logger.Logger
}

func NewSettingsHandler(repo *repository.SettingsRepository, audit *logger.Logger) *SettingsHandler {
	return &SettingsHandler{repo: repo, audit: audit}
}

type settingsRequest struct {
	Items []models.SettingInput `json:"items"`
}

// List returns the settings rows of a locale, or of all locales
func (h *SettingsHandler) List(c echo.Context) error {
	locale, ok, err := readOptionalLocale(c)
	if !ok {
		return err
	}
	settings, err := h.repo.List(c.Request().Context(), locale)
	if err != nil {
		return fetchError(c, settingsEntity, err)
	}
	middleware.AddRateLimitHeaders(c)
	return response.SuccessResponse(c, settings)
}

// Update upserts every item on (key, locale)
func (h *SettingsHandler) Update(c echo.Context) error {
	var req settingsRequest
	if err := c.Bind(&req); err != nil || len(req.Items) == 0 {
		return response.ErrorResponse(c, http.StatusBadRequest, response.InputException, "`items` must be a non-empty array")
	}
	keys := make([]string, 0, len(req.Items))
	for i := range req.Items {
		item := &req.Items[i]
		item.Key = strings.TrimSpace(item.Key)
		if item.Key == "" {
			return response.ErrorResponse(c, http.StatusBadRequest, response.InputException, "`key` is required")
		}
		if item.Locale == "" {
			item.Locale = models.DefaultLocale
		}
		if !models.IsSupportedLocale(item.Locale) {
			return response.ErrorResponse(c, http.StatusBadRequest, response.InputException, "Unsupported `locale`, expected en or id")
		}
		keys = append(keys, item.Key)
	}

	if err := h.repo.Upsert(c.Request().Context(), req.Items); err != nil {
		zaplogger.Error("failed to update settings", zaplogger.Fields{"error": err})
		return response.ErrorResponse(c, http.StatusInternalServerError, response.ServerException, "Failed to update settings")
	}
	h.audit.Record(c.Request().Context(), settingsEntity, logger.UPDATE, service.ClientIdentifier(c.Request()), map[string]interface{}{"keys": keys})
	middleware.AddRateLimitHeaders(c)
	return response.OKResponse(c)
}
