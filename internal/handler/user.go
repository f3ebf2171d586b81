// internal/handler/user.go
package handler

import (
	"context"
	"expense-ledger/internal/domain"
	"expense-ledger/internal/middleware"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
)

type UserService interface {
	List(ctx context.Context, credential string, page, limit int) (*domain.Page[domain.Account], error)
	Get(ctx context.Context, credential string, accountID int64) (*domain.Account, error)
	UpdatePassword(ctx context.Context, credential string, accountID int64, password string) (*domain.Account, error)
	Remove(ctx context.Context, credential string, accountID int64) (*domain.Confirmation, error)
}

type UserHandler struct {
	svc UserService
}

func NewUserHandler(svc UserService) *UserHandler {
	return &UserHandler{svc: svc}
}

// List godoc
// @Summary List accounts
// @Tags user
// @Security BearerAuth
// @Param page query int false "Page, from 1"
// @Param limit query int false "Page size"
// @Success 200 {object} domain.Page[domain.Account]
// @Failure 401 {object} map[string]string
// @Router /user [get]
func (h *UserHandler) List(c *gin.Context) {
	page, _ := strconv.Atoi(c.Query("page"))
	limit, _ := strconv.Atoi(c.Query("limit"))

	out, err := h.svc.List(c.Request.Context(), middleware.Credential(c), page, limit)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, out)
}

// Get godoc
// @Summary Get an account
// @Tags user
// @Security BearerAuth
// @Param id path int true "Account ID"
// @Success 200 {object} domain.Account
// @Failure 404 {object} map[string]string
// @Router /user/{id} [get]
func (h *UserHandler) Get(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	acc, err := h.svc.Get(c.Request.Context(), middleware.Credential(c), id)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, acc)
}

// Update godoc
// @Summary Change the caller's own password
// @Tags user
// @Security BearerAuth
// @Param id path int true "Account ID"
// @Param request body PasswordRequest true "New password"
// @Success 200 {object} domain.Account
// @Failure 403 {object} map[string]string
// @Router /user/{id} [patch]
func (h *UserHandler) Update(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	var req PasswordRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "Invalid JSON")
		return
	}
	if err := validateStruct(req); err != nil {
		badRequest(c, err.Error())
		return
	}

	acc, err := h.svc.UpdatePassword(c.Request.Context(), middleware.Credential(c), id, req.Password)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, acc)
}

// Remove godoc
// @Summary Soft delete the caller's own account
// @Tags user
// @Security BearerAuth
// @Param id path int true "Account ID"
// @Success 200 {object} domain.Confirmation
// @Failure 403 {object} map[string]string
// @Router /user/{id} [delete]
func (h *UserHandler) Remove(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	conf, err := h.svc.Remove(c.Request.Context(), middleware.Credential(c), id)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, conf)
}

type PasswordRequest struct {
	Password string `json:"password" validate:"required,min=6"`
}
