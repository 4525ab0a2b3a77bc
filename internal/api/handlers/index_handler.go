package handlers

import (
	"fmt"

	"github.com/aldianriski/portfolioapi/internal/config"
	"github.com/aldianriski/portfolioapi/pkg/utils/response"
	"github.com/labstack/echo/v4"
)

// IndexHandler serves the API banner
type IndexHandler struct {
	cfg *config.Config
}

func NewIndexHandler(cfg *config.Config) *IndexHandler {
	return &IndexHandler{cfg: cfg}
}

// Index returns the API name and version
func (h *IndexHandler) Index(c echo.Context) error {
	return response.SuccessResponse(c, fmt.Sprintf("%s %s", h.cfg.APIName, h.cfg.APIVersion))
}
