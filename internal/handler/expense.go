// internal/handler/expense.go
package handler

import (
	"context"
	"expense-ledger/internal/domain"
	"expense-ledger/internal/middleware"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
)

type ExpenseService interface {
	Create(ctx context.Context, credential string, in domain.NewExpense) (*domain.Expense, error)
	List(ctx context.Context, credential string, f domain.ExpenseFilter) (*domain.Page[domain.Expense], error)
	GetOne(ctx context.Context, credential string, expenseID int64) (*domain.Expense, error)
	Update(ctx context.Context, credential string, expenseID int64, patch domain.ExpensePatch) (*domain.Expense, error)
	Remove(ctx context.Context, credential string, expenseID int64) (*domain.Confirmation, error)
	GenerateReport(ctx context.Context, credential string, start, end time.Time) ([]domain.ReportRow, error)
}

// ExpenseHandler forwards the raw Authorization header to the service on
// every call; ownership checks live in the service.
type ExpenseHandler struct {
	svc ExpenseService
}

func NewExpenseHandler(svc ExpenseService) *ExpenseHandler {
	return &ExpenseHandler{svc: svc}
}

// Create godoc
// @Summary Create an expense owned by the caller
// @Tags expense
// @Accept json
// @Produce json
// @Param request body CreateExpenseRequest true "Expense"
// @Success 201 {object} ExpenseResponse
// @Failure 400 {object} map[string]string
// @Failure 401 {object} map[string]string
// @Failure 404 {object} map[string]string
// @Router /expense [post]
func (h *ExpenseHandler) Create(c *gin.Context) {
	var req CreateExpenseRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "Invalid JSON")
		return
	}
	if err := validateStruct(req); err != nil {
		badRequest(c, err.Error())
		return
	}

	date, _ := time.Parse(domain.DateLayout, req.Date)
	e, err := h.svc.Create(c.Request.Context(), middleware.Credential(c), domain.NewExpense{
		Title:      req.Title,
		Amount:     req.Amount,
		Date:       date,
		CategoryID: req.CategoryID,
	})
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusCreated, toExpenseResponse(e))
}

// List godoc
// @Summary List the caller's expenses
// @Tags expense
// @Param page query int false "Page, from 1"
// @Param limit query int false "Page size, up to 100"
// @Param startDate query string false "YYYY-MM-DD, inclusive"
// @Param endDate query string false "YYYY-MM-DD, inclusive"
// @Param categoryId query int false "Category filter"
// @Success 200 {object} domain.Page[ExpenseResponse]
// @Router /expense [get]
func (h *ExpenseHandler) List(c *gin.Context) {
	f, msg := parseExpenseFilter(c)
	if msg != "" {
		badRequest(c, msg)
		return
	}

	page, err := h.svc.List(c.Request.Context(), middleware.Credential(c), f)
	if err != nil {
		writeError(c, err)
		return
	}

	out := make([]ExpenseResponse, 0, len(page.Data))
	for i := range page.Data {
		out = append(out, toExpenseResponse(&page.Data[i]))
	}
	c.JSON(http.StatusOK, domain.NewPage(out, page.Total, page.Page, page.Limit))
}

// GetOne godoc
// @Summary Get one of the caller's expenses
// @Tags expense
// @Param id path int true "Expense ID"
// @Success 200 {object} ExpenseResponse
// @Failure 404 {object} map[string]string
// @Router /expense/{id} [get]
func (h *ExpenseHandler) GetOne(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	e, err := h.svc.GetOne(c.Request.Context(), middleware.Credential(c), id)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, toExpenseResponse(e))
}

// Update godoc
// @Summary Partially update one of the caller's expenses
// @Tags expense
// @Param id path int true "Expense ID"
// @Param request body UpdateExpenseRequest true "Fields to change"
// @Success 200 {object} ExpenseResponse
// @Failure 400 {object} map[string]string
// @Failure 404 {object} map[string]string
// @Router /expense/{id} [patch]
func (h *ExpenseHandler) Update(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	var req UpdateExpenseRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "Invalid JSON")
		return
	}
	if err := validateStruct(req); err != nil {
		badRequest(c, err.Error())
		return
	}

	e, err := h.svc.Update(c.Request.Context(), middleware.Credential(c), id, req.patch())
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, toExpenseResponse(e))
}

// Remove godoc
// @Summary Soft delete one of the caller's expenses
// @Tags expense
// @Param id path int true "Expense ID"
// @Success 200 {object} domain.Confirmation
// @Failure 404 {object} map[string]string
// @Router /expense/{id} [delete]
func (h *ExpenseHandler) Remove(c *gin.Context) {
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

// Report godoc
// @Summary Sum the caller's expenses per category over a date range
// @Tags expense
// @Param startDate query string true "YYYY-MM-DD, inclusive"
// @Param endDate query string true "YYYY-MM-DD, inclusive"
// @Success 200 {array} domain.ReportRow
// @Failure 400 {object} map[string]string
// @Failure 404 {object} map[string]string
// @Router /expense/report [get]
func (h *ExpenseHandler) Report(c *gin.Context) {
	start, err := time.Parse(domain.DateLayout, c.Query("startDate"))
	if err != nil {
		badRequest(c, "startDate query param required in YYYY-MM-DD format")
		return
	}
	end, err := time.Parse(domain.DateLayout, c.Query("endDate"))
	if err != nil {
		badRequest(c, "endDate query param required in YYYY-MM-DD format")
		return
	}

	rows, err := h.svc.GenerateReport(c.Request.Context(), middleware.Credential(c), start, end)
	if err != nil {
		writeError(c, err)
		return
	}
	slog.Debug("Report generated", "rows", len(rows), "start", start, "end", end)
	c.JSON(http.StatusOK, rows)
}

func pathID(c *gin.Context) (int64, bool) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || id < 1 {
		badRequest(c, "id must be a positive integer")
		return 0, false
	}
	return id, true
}

// parseExpenseFilter reads paging and filter query params. Paging values
// that are missing or out of range are left for the service to clamp.
func parseExpenseFilter(c *gin.Context) (domain.ExpenseFilter, string) {
	var f domain.ExpenseFilter
	if v := c.Query("page"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return f, "page must be an integer"
		}
		f.Page = n
	}
	if v := c.Query("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return f, "limit must be an integer"
		}
		f.Limit = n
	}
	if v := c.Query("startDate"); v != "" {
		t, err := time.Parse(domain.DateLayout, v)
		if err != nil {
			return f, "startDate must be in YYYY-MM-DD format"
		}
		f.StartDate = &t
	}
	if v := c.Query("endDate"); v != "" {
		t, err := time.Parse(domain.DateLayout, v)
		if err != nil {
			return f, "endDate must be in YYYY-MM-DD format"
		}
		f.EndDate = &t
	}
	if v := c.Query("categoryId"); v != "" {
		n, err := strconv.ParseInt(v, 10, 64)
		if err != nil || n < 1 {
			return f, "categoryId must be a positive integer"
		}
		f.CategoryID = &n
	}
	return f, ""
}

// === DTO ===

type CreateExpenseRequest struct {
	Title      string          `json:"title" validate:"required,notblank"`
	Amount     decimal.Decimal `json:"amount" validate:"required,money"`
	Date       string          `json:"date" validate:"required,isodate"`
	CategoryID int64           `json:"categoryId" validate:"required,gt=0"`
}

type UpdateExpenseRequest struct {
	Title      *string          `json:"title" validate:"omitempty,notblank"`
	Amount     *decimal.Decimal `json:"amount" validate:"omitempty,money"`
	Date       *string          `json:"date" validate:"omitempty,isodate"`
	CategoryID *int64           `json:"categoryId" validate:"omitempty,gt=0"`
}

func (r UpdateExpenseRequest) patch() domain.ExpensePatch {
	p := domain.ExpensePatch{
		Title:      r.Title,
		Amount:     r.Amount,
		CategoryID: r.CategoryID,
	}
	if r.Date != nil {
		d, _ := time.Parse(domain.DateLayout, *r.Date)
		p.Date = &d
	}
	return p
}

type ExpenseResponse struct {
	ID         int64            `json:"id"`
	Title      string           `json:"title"`
	Amount     decimal.Decimal  `json:"amount"`
	Date       string           `json:"date"`
	CategoryID int64            `json:"categoryId"`
	Category   *domain.Category `json:"category,omitempty"`
	CreatedAt  time.Time        `json:"createdAt"`
	UpdatedAt  time.Time        `json:"updatedAt"`
}

func toExpenseResponse(e *domain.Expense) ExpenseResponse {
	return ExpenseResponse{
		ID:         e.ID,
		Title:      e.Title,
		Amount:     e.Amount,
		Date:       e.Date.Format(domain.DateLayout),
		CategoryID: e.CategoryID,
		Category:   e.Category,
		CreatedAt:  e.CreatedAt,
		UpdatedAt:  e.UpdatedAt,
	}
}
