// internal/handler/category.go
package handler

import (
	"context"
	"expense-ledger/internal/domain"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
)

type CategoryService interface {
	Create(ctx context.Context, name string) (*domain.Category, error)
	List(ctx context.Context, page, limit int) (*domain.Page[domain.Category], error)
	Get(ctx context.Context, id int64) (*domain.Category, error)
	Rename(ctx context.Context, id int64, name string) (*domain.Category, error)
	Remove(ctx context.Context, id int64) (*domain.Confirmation, error)
}

type CategoryHandler struct {
	svc CategoryService
}

func NewCategoryHandler(svc CategoryService) *CategoryHandler {
	return &CategoryHandler{svc: svc}
}

// Create godoc
// @Summary Create a category
// @Tags category
// @Param request body CategoryRequest true "Category"
// @Success 201 {object} domain.Category
// @Failure 409 {object} map[string]string
// @Router /category [post]
func (h *CategoryHandler) Create(c *gin.Context) {
	var req CategoryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "Invalid JSON")
		return
	}
	if err := validateStruct(req); err != nil {
		badRequest(c, err.Error())
		return
	}

	cat, err := h.svc.Create(c.Request.Context(), req.Name)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusCreated, cat)
}

// List godoc
// @Summary List categories
// @Tags category
// @Param page query int false "Page, from 1"
// @Param limit query int false "Page size"
// @Success 200 {object} domain.Page[domain.Category]
// @Router /category [get]
func (h *CategoryHandler) List(c *gin.Context) {
	page, _ := strconv.Atoi(c.Query("page"))
	limit, _ := strconv.Atoi(c.Query("limit"))

	out, err := h.svc.List(c.Request.Context(), page, limit)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, out)
}

// Get godoc
// @Summary Get a category
// @Tags category
// @Param id path int true "Category ID"
// @Success 200 {object} domain.Category
// @Failure 404 {object} map[string]string
// @Router /category/{id} [get]
func (h *CategoryHandler) Get(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	cat, err := h.svc.Get(c.Request.Context(), id)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, cat)
}

// Rename godoc
// @Summary Rename a category
// @Tags category
// @Param id path int true "Category ID"
// @Param request body CategoryRequest true "New name"
// @Success 200 {object} domain.Category
// @Failure 404 {object} map[string]string
// @Failure 409 {object} map[string]string
// @Router /category/{id} [patch]
func (h *CategoryHandler) Rename(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	var req CategoryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "Invalid JSON")
		return
	}
	if err := validateStruct(req); err != nil {
		badRequest(c, err.Error())
		return
	}

	cat, err := h.svc.Rename(c.Request.Context(), id, req.Name)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, cat)
}

// Remove godoc
// @Summary Soft delete a category
// @Tags category
// @Param id path int true "Category ID"
// @Success 200 {object} domain.Confirmation
// @Failure 404 {object} map[string]string
// @Router /category/{id} [delete]
func (h *CategoryHandler) Remove(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	conf, err := h.svc.Remove(c.Request.Context(), id)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, conf)
}

type CategoryRequest struct {
	Name string `json:"name" validate:"required,notblank,max=100"`
}
