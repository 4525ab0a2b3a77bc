package handlers

import (
	"errors"
	"net/http"

	"github.com/aldianriski/portfolioapi/internal/api/middleware"
	"github.com/aldianriski/portfolioapi/internal/service"
	"github.com/aldianriski/portfolioapi/pkg/utils/logger"
	"github.com/aldianriski/portfolioapi/pkg/utils/response"
	"github.com/aldianriski/portfolioapi/pkg/utils/zaplogger"
	"github.com/labstack/echo/v4"
)

const uploadsEntity = "uploads"

// UploadHandler serves image uploads into object storage
type UploadHandler struct {
	uploads *service.UploadService
	audit   *logger.Logger
}

func NewUploadHandler(uploads *service.UploadService, audit *logger.Logger) *UploadHandler {
	return &UploadHandler{uploads: uploads, audit: audit}
}

// Upload stores the multipart `file` under `folder`
func (h *UploadHandler) Upload(c echo.Context) error {
	header, err := c.FormFile("file")
	if err != nil {
		return response.ErrorResponse(c, http.StatusBadRequest, response.InputException, "No file provided")
	}
	file, err := header.Open()
	if err != nil {
		return response.ErrorResponse(c, http.StatusBadRequest, response.InputException, "Failed to read file")
	}
	defer file.Close()

	result, err := h.uploads.Upload(c.Request().Context(), c.FormValue("folder"), file, header.Size)
	if err != nil {
		return h.storageError(c, "upload", err)
	}
	h.audit.Record(c.Request().Context(), uploadsEntity, logger.UPLOAD, service.ClientIdentifier(c.Request()), map[string]interface{}{"path": result.Path})
	middleware.AddRateLimitHeaders(c)
	return response.SuccessResponse(c, result)
}

// Delete removes the object at `path`
func (h *UploadHandler) Delete(c echo.Context) error {
	path := c.QueryParam("path")
	if path == "" {
		return response.ErrorResponse(c, http.StatusBadRequest, response.InputException, "`path` is required")
	}
	if err := h.uploads.Delete(c.Request().Context(), path); err != nil {
		return h.storageError(c, "delete", err)
	}
	h.audit.Record(c.Request().Context(), uploadsEntity, logger.DELETE, service.ClientIdentifier(c.Request()), map[string]interface{}{"path": path})
	middleware.AddRateLimitHeaders(c)
	return response.OKResponse(c)
}

func (h *UploadHandler) storageError(c echo.Context, op string, err error) error {
	var validationErr *service.ValidationError
	switch {
	case errors.Is(err, service.ErrStorageDisabled):
		return response.ErrorResponse(c, http.StatusServiceUnavailable, response.ServerException, "Image storage is not configured")
	case errors.As(err, &validationErr):
		return response.ErrorResponse(c, http.StatusBadRequest, response.InputException, validationErr.Message)
	}
	zaplogger.Error("object storage "+op+" failed", zaplogger.Fields{"error": err})
	return response.ErrorResponse(c, http.StatusInternalServerError, response.ServerException, "Failed to "+op+" file")
}
