// internal/handler/router.go
package handler

import (
	"expense-ledger/internal/middleware"
	"net/http"

	"github.com/gin-gonic/gin"
)

type Handlers struct {
	Auth     *AuthHandler
	Category *CategoryHandler
	Expense  *ExpenseHandler
	User     *UserHandler
	// Telegram is optional; POST /telegram is only mounted when set.
	Telegram *TelegramHandler
}

// NewRouter wires all routes. Expense and user routes carry the credential
// through to the service; category routes are gated by the auth middleware.
func NewRouter(h Handlers, tokens middleware.CredentialValidator, accounts middleware.IdentityResolver) *gin.Engine {
	router := gin.New()
	router.Use(gin.Recovery(), middleware.RequestLogger(), middleware.CarryCredential())

	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	authGroup := router.Group("/auth")
	{
		authGroup.POST("/register", h.Auth.Register)
		authGroup.POST("/login", h.Auth.Login)
	}

	categories := router.Group("/category")
	categories.Use(middleware.NewAuthMiddleware(tokens, accounts).RequireAuth())
	{
		categories.POST("", h.Category.Create)
		categories.GET("", h.Category.List)
		categories.GET("/:id", h.Category.Get)
		categories.PATCH("/:id", h.Category.Rename)
		categories.DELETE("/:id", h.Category.Remove)
	}

	expenses := router.Group("/expense")
	{
		expenses.POST("", h.Expense.Create)
		expenses.GET("", h.Expense.List)
		expenses.GET("/report", h.Expense.Report)
		expenses.GET("/:id", h.Expense.GetOne)
		expenses.PATCH("/:id", h.Expense.Update)
		expenses.DELETE("/:id", h.Expense.Remove)
	}

	users := router.Group("/user")
	{
		users.GET("", h.User.List)
		users.GET("/:id", h.User.Get)
		users.PATCH("/:id", h.User.Update)
		users.DELETE("/:id", h.User.Remove)
	}

	if h.Telegram != nil {
		router.POST("/telegram", h.Telegram.Webhook)
	}

	return router
}
