package http

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/wyfcoding/librarylending/internal/reporting/application"
	"github.com/wyfcoding/librarylending/pkg/logger"
)

type Handler struct {
	svc *application.ReportingService
}

func NewHandler(svc *application.ReportingService) *Handler {
	return &Handler{svc: svc}
}

func (h *Handler) RegisterRoutes(r *gin.RouterGroup) {
	g := r.Group("/reports")
	g.GET("/overdue-last-month", h.OverdueLastMonth)
	g.GET("/borrowing-last-month", h.BorrowingLastMonth)
	g.GET("/export/:report", h.Export)
}

func (h *Handler) OverdueLastMonth(c *gin.Context) {
	records, err := h.svc.OverdueLastMonth(c.Request.Context())
	if err != nil {
		h.renderError(c, err)
		return
	}
	c.JSON(http.StatusOK, records)
}

func (h *Handler) BorrowingLastMonth(c *gin.Context) {
	records, err := h.svc.BorrowingLastMonth(c.Request.Context())
	if err != nil {
		h.renderError(c, err)
		return
	}
	c.JSON(http.StatusOK, records)
}

func (h *Handler) Export(c *gin.Context) {
	report := c.Param("report")
	format := c.DefaultQuery("format", "xlsx")

	file, err := h.svc.Export(c.Request.Context(), report, format)
	if err != nil {
		h.renderError(c, err)
		return
	}

	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", file.Name))
	c.Data(http.StatusOK, file.ContentType, file.Data)
}

func (h *Handler) renderError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, application.ErrUnknownReport), errors.Is(err, application.ErrUnknownFormat):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	default:
		logger.Error(c.Request.Context(), "report request failed", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal server error"})
	}
}
