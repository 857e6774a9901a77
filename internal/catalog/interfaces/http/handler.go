package http

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/wyfcoding/librarylending/internal/catalog/application"
	"github.com/wyfcoding/librarylending/internal/catalog/domain"
	"github.com/wyfcoding/librarylending/pkg/logger"
)

type Handler struct {
	svc *application.CatalogService
}

func NewHandler(svc *application.CatalogService) *Handler {
	return &Handler{svc: svc}
}

func (h *Handler) RegisterRoutes(r *gin.RouterGroup) {
	g := r.Group("/books")
	g.POST("", h.Register)
	g.GET("", h.List)
	g.GET("/search", h.Search)
	g.GET("/:id", h.Get)
	g.PATCH("/:id", h.Update)
	g.DELETE("/:id", h.Remove)
}

type registerBookRequest struct {
	Title         string `json:"title" binding:"required"`
	Author        string `json:"author" binding:"required"`
	ISBN          string `json:"isbn" binding:"required"`
	TotalQuantity int    `json:"total_quantity" binding:"required,gt=0"`
	ShelfLocation string `json:"shelf_location"`
}

type updateBookRequest struct {
	Title         *string `json:"title"`
	Author        *string `json:"author"`
	ISBN          *string `json:"isbn"`
	TotalQuantity *int    `json:"total_quantity" binding:"omitempty,gt=0"`
	ShelfLocation *string `json:"shelf_location"`
}

func (h *Handler) Register(c *gin.Context) {
	var req registerBookRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	book, err := h.svc.Register(c.Request.Context(), application.RegisterBookCommand{
		Title:         req.Title,
		Author:        req.Author,
		ISBN:          req.ISBN,
		TotalQuantity: req.TotalQuantity,
		ShelfLocation: req.ShelfLocation,
	})
	if err != nil {
		h.renderError(c, err)
		return
	}
	c.JSON(http.StatusCreated, book)
}

func (h *Handler) List(c *gin.Context) {
	books, err := h.svc.List(c.Request.Context())
	if err != nil {
		h.renderError(c, err)
		return
	}
	c.JSON(http.StatusOK, books)
}

func (h *Handler) Search(c *gin.Context) {
	query := c.Query("q")
	if query == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "q is required"})
		return
	}

	books, err := h.svc.Search(c.Request.Context(), query)
	if err != nil {
		h.renderError(c, err)
		return
	}
	c.JSON(http.StatusOK, books)
}

func (h *Handler) Get(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}

	book, err := h.svc.Get(c.Request.Context(), id)
	if err != nil {
		h.renderError(c, err)
		return
	}
	c.JSON(http.StatusOK, book)
}

func (h *Handler) Update(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}

	var req updateBookRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	book, err := h.svc.Update(c.Request.Context(), id, application.UpdateBookCommand{
		Title:         req.Title,
		Author:        req.Author,
		ISBN:          req.ISBN,
		TotalQuantity: req.TotalQuantity,
		ShelfLocation: req.ShelfLocation,
	})
	if err != nil {
		h.renderError(c, err)
		return
	}
	c.JSON(http.StatusOK, book)
}

func (h *Handler) Remove(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}

	if err := h.svc.Remove(c.Request.Context(), id); err != nil {
		h.renderError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *Handler) renderError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, domain.ErrBookNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
	case errors.Is(err, domain.ErrISBNTaken), errors.Is(err, domain.ErrBookOnLoan):
		c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
	default:
		logger.Error(c.Request.Context(), "catalog request failed", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal server error"})
	}
}

func parseID(c *gin.Context) (uint, bool) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid id"})
		return 0, false
	}
	return uint(id), true
}
