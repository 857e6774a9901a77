package http

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/wyfcoding/librarylending/internal/lending/application"
	"github.com/wyfcoding/librarylending/internal/lending/domain"
	"github.com/wyfcoding/librarylending/pkg/logger"
)

type Handler struct {
	svc *application.LendingService
}

func NewHandler(svc *application.LendingService) *Handler {
	return &Handler{svc: svc}
}

func (h *Handler) RegisterRoutes(r *gin.RouterGroup) {
	g := r.Group("/borrowing")
	g.POST("/checkout", h.Checkout)
	g.POST("/return", h.Return)
	g.GET("/borrowers/:id/current-books", h.CurrentBooks)
	g.GET("/overdue", h.Overdue)
	g.GET("/records", h.Records)
}

type checkoutRequest struct {
	BookID     uint `json:"book_id" binding:"required"`
	BorrowerID uint `json:"borrower_id" binding:"required"`
}

// returnRequest 支持两种选择器形态：record_id，或 book_id + borrower_id
type returnRequest struct {
	RecordID   uint `json:"record_id"`
	BookID     uint `json:"book_id"`
	BorrowerID uint `json:"borrower_id"`
}

func (h *Handler) Checkout(c *gin.Context) {
	var req checkoutRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	record, err := h.svc.Checkout(c.Request.Context(), req.BookID, req.BorrowerID)
	if err != nil {
		h.renderError(c, err)
		return
	}
	c.JSON(http.StatusCreated, record)
}

func (h *Handler) Return(c *gin.Context) {
	var req returnRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	var selector domain.ReturnSelector
	if req.RecordID != 0 {
		selector = domain.ByRecordID(req.RecordID)
	} else {
		selector = domain.ByBookAndBorrower(req.BookID, req.BorrowerID)
	}

	record, err := h.svc.Return(c.Request.Context(), selector)
	if err != nil {
		h.renderError(c, err)
		return
	}
	c.JSON(http.StatusOK, record)
}

func (h *Handler) CurrentBooks(c *gin.Context) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid id"})
		return
	}

	records, err := h.svc.CurrentBooksForBorrower(c.Request.Context(), uint(id))
	if err != nil {
		h.renderError(c, err)
		return
	}
	c.JSON(http.StatusOK, records)
}

func (h *Handler) Overdue(c *gin.Context) {
	records, err := h.svc.OverdueBooks(c.Request.Context())
	if err != nil {
		h.renderError(c, err)
		return
	}
	c.JSON(http.StatusOK, records)
}

func (h *Handler) Records(c *gin.Context) {
	records, err := h.svc.AllRecords(c.Request.Context())
	if err != nil {
		h.renderError(c, err)
		return
	}
	c.JSON(http.StatusOK, records)
}

func (h *Handler) renderError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, domain.ErrBookNotFound), errors.Is(err, domain.ErrBorrowerNotFound),
		errors.Is(err, domain.ErrNoActiveCheckout):
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
	case errors.Is(err, domain.ErrBookUnavailable), errors.Is(err, domain.ErrAlreadyCheckedOut),
		errors.Is(err, domain.ErrInvalidSelector):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	default:
		logger.Error(c.Request.Context(), "borrowing request failed", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal server error"})
	}
}
