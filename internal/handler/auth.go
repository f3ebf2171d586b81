// internal/handler/auth.go
package handler

import (
	"context"
	"expense-ledger/internal/domain"
	"net/http"

	"github.com/gin-gonic/gin"
)

type AccountService interface {
	Register(ctx context.Context, email, password string) (*domain.Account, error)
	Login(ctx context.Context, email, password string) (string, error)
}

type AuthHandler struct {
	svc AccountService
}

func NewAuthHandler(svc AccountService) *AuthHandler {
	return &AuthHandler{svc: svc}
}

// Register godoc
// @Summary Create an account
// @Tags auth
// @Param request body CredentialsRequest true "Email and password"
// @Success 201 {object} domain.Account
// @Failure 400 {object} map[string]string
// @Failure 409 {object} map[string]string
// @Router /auth/register [post]
func (h *AuthHandler) Register(c *gin.Context) {
	var req CredentialsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "Invalid JSON")
		return
	}
	if err := validateStruct(req); err != nil {
		badRequest(c, err.Error())
		return
	}

	acc, err := h.svc.Register(c.Request.Context(), req.Email, req.Password)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusCreated, acc)
}

// Login godoc
// @Summary Exchange email and password for a bearer token
// @Tags auth
// @Param request body CredentialsRequest true "Email and password"
// @Success 200 {object} map[string]string
// @Failure 401 {object} map[string]string
// @Router /auth/login [post]
func (h *AuthHandler) Login(c *gin.Context) {
	var req CredentialsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "Invalid JSON")
		return
	}
	if err := validateStruct(req); err != nil {
		badRequest(c, err.Error())
		return
	}

	token, err := h.svc.Login(c.Request.Context(), req.Email, req.Password)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"token": token})
}

type CredentialsRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=6"`
}
