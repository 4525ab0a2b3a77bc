package handlers

import (
	"errors"
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

const messagesEntity = "messages"

// MessageHandler serves the admin inbox of contact messages
type MessageHandler struct {
	repo  *repository.MessageRepository
	audit *logger.Logger
	now   func() time.Time
}

func NewMessageHandler(repo *repository.MessageRepository, audit *logger.Logger) *MessageHandler {
	return &MessageHandler{repo: repo, audit: audit, now: time.Now}
}

type markReadRequest struct {
	IsRead *bool `json:"is_read"`
}

func readMessageStatus(c echo.Context) (string, bool, error) {
	status := c.QueryParam("status")
	switch status {
	case "":
		return models.MessageStatusAll, true, nil
	case models.MessageStatusAll, models.MessageStatusUnread, models.MessageStatusRead:
		return status, true, nil
	}
	return "", false, response.ErrorResponse(c, http.StatusBadRequest, response.InputException, "`status` must be all, unread or read")
}

// List returns messages newest first, filtered by `status`
func (h *MessageHandler) List(c echo.Context) error {
	status, ok, err := readMessageStatus(c)
	if !ok {
		return err
	}
	messages, err := h.repo.List(c.Request().Context(), status)
	if err != nil {
		return fetchError(c, messagesEntity, err)
	}
	middleware.AddRateLimitHeaders(c)
	return response.SuccessResponse(c, messages)
}

// MarkRead sets the read flag of one message
func (h *MessageHandler) MarkRead(c echo.Context) error {
	var req markReadRequest
	if err := c.Bind(&req); err != nil || req.IsRead == nil {
		return response.ErrorResponse(c, http.StatusBadRequest, response.InputException, "`is_read` must be a boolean")
	}
	id := c.Param("id")
	msg, err := h.repo.SetRead(c.Request().Context(), id, *req.IsRead)
	if errors.Is(err, repository.ErrNotFound) {
		return response.ErrorResponse(c, http.StatusNotFound, response.NotFoundException, "Message not found")
	}
	if err != nil {
		zaplogger.Error("failed to update message", zaplogger.Fields{"id": id, "error": err})
		return response.ErrorResponse(c, http.StatusInternalServerError, response.ServerException, "Failed to update message")
	}
	middleware.AddRateLimitHeaders(c)
	return response.SuccessResponse(c, msg)
}

// Delete removes one message
func (h *MessageHandler) Delete(c echo.Context) error {
	id := c.Param("id")
	err := h.repo.Delete(c.Request().Context(), id)
	if errors.Is(err, repository.ErrNotFound) {
		return response.ErrorResponse(c, http.StatusNotFound, response.NotFoundException, "Message not found")
	}
	if err != nil {
		zaplogger.Error("failed to delete message", zaplogger.Fields{"id": id, "error": err})
		return response.ErrorResponse(c, http.StatusInternalServerError, response.ServerException, "Failed to delete message")
	}
	h.audit.Record(c.Request().Context(), messagesEntity, logger.DELETE, service.ClientIdentifier(c.Request()), map[string]interface{}{"id": id})
	middleware.AddRateLimitHeaders(c)
	return response.OKResponse(c)
}

// BulkDelete removes the listed messages one by one
func (h *MessageHandler) BulkDelete(c echo.Context) error {
	var req idsRequest
	if err := c.Bind(&req); err != nil || len(req.IDs) == 0 {
		return response.ErrorResponse(c, http.StatusBadRequest, response.InputException, "`ids` must be a non-empty array")
	}
	deleted, err := h.repo.BulkDelete(c.Request().Context(), req.IDs)
	h.audit.Record(c.Request().Context(), messagesEntity, logger.BULKDELETE, service.ClientIdentifier(c.Request()), map[string]interface{}{"ids": req.IDs, "deleted": deleted})
	if err != nil {
		return response.ErrorResponse(c, http.StatusInternalServerError, response.ServerException, "Failed to delete some messages: "+err.Error())
	}
	middleware.AddRateLimitHeaders(c)
	return response.SuccessResponse(c, map[string]int{"deleted": deleted})
}

// Export downloads the inbox as csv or json
func (h *MessageHandler) Export(c echo.Context) error {
	status, ok, err := readMessageStatus(c)
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
	messages, err := h.repo.List(c.Request().Context(), status)
	if err != nil {
		return fetchError(c, messagesEntity, err)
	}
	return writeExport(c, messagesEntity, "", format, h.now(), messages)
}
