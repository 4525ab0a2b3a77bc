package handlers

import (
	"bytes"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/aldianriski/portfolioapi/internal/api/middleware"
	"github.com/aldianriski/portfolioapi/internal/models"
	"github.com/aldianriski/portfolioapi/internal/repository"
	"github.com/aldianriski/portfolioapi/internal/service"
	"github.com/aldianriski/portfolioapi/pkg/utils/logger"
	"github.com/aldianriski/portfolioapi/pkg/utils/response"
	"github.com/aldianriski/portfolioapi/pkg/utils/zaplogger"
	"github.com/labstack/echo/v4"
)

// ContentEntity is a pointer to an orderable, localized content model
type ContentEntity[T any] interface {
	*T
	Validate() error
	ContentBase() *models.Base
}

// ContentHandler serves the admin CRUD endpoints of one content entity
type ContentHandler[T any, PT ContentEntity[T]] struct {
	entity string
	repo   *repository.ContentRepository[T]
	audit  *logger.Logger
	now    func() time.Time
}

func NewContentHandler[T any, PT ContentEntity[T]](entity string, repo *repository.ContentRepository[T], audit *logger.Logger) *ContentHandler[T, PT] {
	return &ContentHandler[T, PT]{entity: entity, repo: repo, audit: audit, now: time.Now}
}

type reorderRequest struct {
	Items []models.ReorderItem `json:"items"`
}

// List returns every row of a locale, or of all locales when none is given
func (h *ContentHandler[T, PT]) List(c echo.Context) error {
	locale, ok, err := readOptionalLocale(c)
	if !ok {
		return err
	}
	items, err := h.repo.List(c.Request().Context(), locale)
	if err != nil {
		return fetchError(c, h.entity, err)
	}
	middleware.AddRateLimitHeaders(c)
	return response.SuccessResponse(c, items)
}

// Get returns one row by id
func (h *ContentHandler[T, PT]) Get(c echo.Context) error {
	item, err := h.repo.Get(c.Request().Context(), c.Param("id"))
	if errors.Is(err, repository.ErrNotFound) {
		return h.notFound(c)
	}
	if err != nil {
		return fetchError(c, h.entity, err)
	}
	middleware.AddRateLimitHeaders(c)
	return response.SuccessResponse(c, item)
}

// Create inserts a new row; the id is always assigned by the server
func (h *ContentHandler[T, PT]) Create(c echo.Context) error {
	item := PT(new(T))
	if err := c.Bind(item); err != nil {
		return response.ErrorResponse(c, http.StatusBadRequest, response.InputException, "Invalid request body")
	}
	base := item.ContentBase()
	base.ID = ""
	if base.Locale == "" {
		base.Locale = models.DefaultLocale
	}
	if err := h.validate(item); err != nil {
		return response.ErrorResponse(c, http.StatusBadRequest, response.InputException, err.Error())
	}

	if err := h.repo.Create(c.Request().Context(), (*T)(item)); err != nil {
		zaplogger.Error("failed to create "+h.entity, zaplogger.Fields{"error": err})
		return response.ErrorResponse(c, http.StatusInternalServerError, response.ServerException, fmt.Sprintf("Failed to create %s", h.entity))
	}
	h.record(c, logger.CREATE, map[string]interface{}{"id": base.ID})
	middleware.AddRateLimitHeaders(c)
	return c.JSON(http.StatusCreated, response.Response{Success: true, Data: item})
}

// Update applies the body onto the stored row. Fields missing from the body
// keep their stored values.
func (h *ContentHandler[T, PT]) Update(c echo.Context) error {
	id := c.Param("id")
	existing, err := h.repo.Get(c.Request().Context(), id)
	if errors.Is(err, repository.ErrNotFound) {
		return h.notFound(c)
	}
	if err != nil {
		return fetchError(c, h.entity, err)
	}

	item := PT(existing)
	if err := c.Bind(item); err != nil {
		return response.ErrorResponse(c, http.StatusBadRequest, response.InputException, "Invalid request body")
	}
	item.ContentBase().ID = id
	if err := h.validate(item); err != nil {
		return response.ErrorResponse(c, http.StatusBadRequest, response.InputException, err.Error())
	}

	updated, err := h.repo.Update(c.Request().Context(), id, (*T)(item))
	if errors.Is(err, repository.ErrNotFound) {
		return h.notFound(c)
	}
	if err != nil {
		zaplogger.Error("failed to update "+h.entity, zaplogger.Fields{"id": id, "error": err})
		return response.ErrorResponse(c, http.StatusInternalServerError, response.ServerException, fmt.Sprintf("Failed to update %s", h.entity))
	}
	h.record(c, logger.UPDATE, map[string]interface{}{"id": id})
	middleware.AddRateLimitHeaders(c)
	return response.SuccessResponse(c, updated)
}

// Delete removes one row
func (h *ContentHandler[T, PT]) Delete(c echo.Context) error {
	id := c.Param("id")
	err := h.repo.Delete(c.Request().Context(), id)
	if errors.Is(err, repository.ErrNotFound) {
		return h.notFound(c)
	}
	if err != nil {
		zaplogger.Error("failed to delete "+h.entity, zaplogger.Fields{"id": id, "error": err})
		return response.ErrorResponse(c, http.StatusInternalServerError, response.ServerException, fmt.Sprintf("Failed to delete %s", h.entity))
	}
	h.record(c, logger.DELETE, map[string]interface{}{"id": id})
	middleware.AddRateLimitHeaders(c)
	return response.OKResponse(c)
}

// BulkDelete removes the listed ids one by one
func (h *ContentHandler[T, PT]) BulkDelete(c echo.Context) error {
	var req idsRequest
	if err := c.Bind(&req); err != nil || len(req.IDs) == 0 {
		return response.ErrorResponse(c, http.StatusBadRequest, response.InputException, "`ids` must be a non-empty array")
	}
	deleted, err := h.repo.BulkDelete(c.Request().Context(), req.IDs)
	h.record(c, logger.BULKDELETE, map[string]interface{}{"ids": req.IDs, "deleted": deleted})
	if err != nil {
		return response.ErrorResponse(c, http.StatusInternalServerError, response.ServerException, "Failed to delete some items: "+err.Error())
	}
	middleware.AddRateLimitHeaders(c)
	return response.SuccessResponse(c, map[string]int{"deleted": deleted})
}

// Reorder writes the order_index of each listed item
func (h *ContentHandler[T, PT]) Reorder(c echo.Context) error {
	var req reorderRequest
	if err := c.Bind(&req); err != nil || req.Items == nil {
		return response.ErrorResponse(c, http.StatusBadRequest, response.InputException, "`items` must be an array")
	}
	if err := h.repo.Reorder(c.Request().Context(), req.Items); err != nil {
		return response.ErrorResponse(c, http.StatusInternalServerError, response.ServerException, "Failed to update some items: "+err.Error())
	}
	h.record(c, logger.REORDER, map[string]interface{}{"items": len(req.Items)})
	middleware.AddRateLimitHeaders(c)
	return response.OKResponse(c)
}

// Export downloads the rows of a locale as csv or json
func (h *ContentHandler[T, PT]) Export(c echo.Context) error {
	locale, ok, err := readOptionalLocale(c)
	if !ok {
		return err
	}
	format := c.QueryParam("format")
	if format == "" {
		format = service.ExportFormatCSV
	}
	if format != service.ExportFormatCSV && format != service.ExportFormatJSON {
		return response.ErrorResponse(c, http.StatusBadRequest, response.InputException, "`format` must be csv or json")
	}

	items, err := h.repo.List(c.Request().Context(), locale)
	if err != nil {
		return fetchError(c, h.entity, err)
	}
	return writeExport(c, h.entity, locale, format, h.now(), items)
}

func (h *ContentHandler[T, PT]) validate(item PT) error {
	if !models.IsSupportedLocale(item.ContentBase().Locale) {
		return errors.New("unsupported `locale`, expected en or id")
	}
	return item.Validate()
}

func (h *ContentHandler[T, PT]) notFound(c echo.Context) error {
	return response.ErrorResponse(c, http.StatusNotFound, response.NotFoundException, fmt.Sprintf("%s not found", h.entity))
}

func (h *ContentHandler[T, PT]) record(c echo.Context, action logger.Action, fields map[string]interface{}) {
	h.audit.Record(c.Request().Context(), h.entity, action, service.ClientIdentifier(c.Request()), fields)
}

// writeExport renders rows in format and sends them as an attachment
func writeExport[T any](c echo.Context, entity, locale, format string, now time.Time, rows []T) error {
	var buf bytes.Buffer
	var err error
	contentType := "text/csv; charset=utf-8"
	if format == service.ExportFormatJSON {
		contentType = echo.MIMEApplicationJSONCharsetUTF8
		err = service.ExportJSON(&buf, rows)
	} else {
		err = service.ExportCSV(&buf, rows)
	}
	if err != nil {
		zaplogger.Error("export failed", zaplogger.Fields{"entity": entity, "error": err})
		return response.ErrorResponse(c, http.StatusInternalServerError, response.ServerException, "Failed to export data")
	}

	name := service.ExportFileName(entity, locale, format, now)
	c.Response().Header().Set(echo.HeaderContentDisposition, fmt.Sprintf("attachment; filename=%q", name))
	middleware.AddRateLimitHeaders(c)
	return c.Blob(http.StatusOK, contentType, buf.Bytes())
}
