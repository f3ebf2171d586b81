// internal/bot/bot.go
package bot

import (
	"context"
	"errors"
	"expense-ledger/internal/auth"
	"expense-ledger/internal/domain"
	"fmt"
	"log/slog"
	"strconv"
	"strings"
	"sync"
	"time"
	"unicode"
	"unicode/utf8"

	val "expense-ledger/internal/validator"

	"github.com/shopspring/decimal"
	"golang.org/x/text/encoding/charmap"
)

type ExpenseService interface {
	Create(ctx context.Context, credential string, in domain.NewExpense) (*domain.Expense, error)
	List(ctx context.Context, credential string, f domain.ExpenseFilter) (*domain.Page[domain.Expense], error)
	Remove(ctx context.Context, credential string, expenseID int64) (*domain.Confirmation, error)
	GenerateReport(ctx context.Context, credential string, start, end time.Time) ([]domain.ReportRow, error)
}

const helpText = "💸 Учёт расходов\n\n" +
	"Команды:\n" +
	"/login <token> — привязать токен к чату\n" +
	"/list [страница] — список расходов\n" +
	"/report <YYYY-MM-DD> <YYYY-MM-DD> — сумма по категориям\n" +
	"/add <категория> <сумма> <YYYY-MM-DD> <название> — добавить расход\n" +
	"/delete <id> — удалить расход"

// Dispatcher turns chat messages into service calls. The token a chat
// logged in with is kept in memory only and sent as the credential on
// every call.
type Dispatcher struct {
	svc ExpenseService

	mu     sync.RWMutex
	tokens map[int64]string
}

func NewDispatcher(svc ExpenseService) *Dispatcher {
	return &Dispatcher{svc: svc, tokens: make(map[int64]string)}
}

// Handle returns the reply text for one incoming message.
func (d *Dispatcher) Handle(ctx context.Context, chatID int64, raw string) string {
	text := SanitizeInput(fixEncoding(raw))
	slog.Info("Bot message received", "chat_id", chatID, "command", command(text))

	fields := strings.Fields(text)
	if len(fields) == 0 {
		return "Неизвестная команда. Напиши /help"
	}
	args := fields[1:]

	var (
		reply string
		err   error
	)
	switch command(text) {
	case "/start", "/help":
		reply = helpText
	case "/login":
		reply = d.login(chatID, args)
	case "/list":
		reply, err = d.list(ctx, chatID, args)
	case "/report":
		reply, err = d.report(ctx, chatID, args)
	case "/add":
		reply, err = d.add(ctx, chatID, args)
	case "/delete":
		reply, err = d.remove(ctx, chatID, args)
	default:
		reply = "Неизвестная команда. Напиши /help"
	}

	if err != nil {
		slog.Warn("Bot command failed", "chat_id", chatID, "error", err)
		return "❌ " + describe(err)
	}
	return reply
}

// command strips a @botname suffix from the first word.
func command(text string) string {
	first, _, _ := strings.Cut(text, " ")
	first, _, _ = strings.Cut(first, "@")
	return strings.ToLower(first)
}

func (d *Dispatcher) credential(chatID int64) string {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return d.tokens[chatID]
}

func (d *Dispatcher) login(chatID int64, args []string) string {
	if len(args) == 2 && strings.EqualFold(args[0], "bearer") {
		args = args[1:]
	}
	if len(args) != 1 {
		return "❌ Используй: /login <token>"
	}

	d.mu.Lock()
	d.tokens[chatID] = auth.BearerPrefix + args[0]
	d.mu.Unlock()
	return "✅ Токен сохранён"
}

func (d *Dispatcher) list(ctx context.Context, chatID int64, args []string) (string, error) {
	page := 1
	if len(args) > 0 {
		n, err := strconv.Atoi(args[0])
		if err != nil {
			return "❌ Используй: /list [страница]", nil
		}
		page = n
	}

	out, err := d.svc.List(ctx, d.credential(chatID), domain.ExpenseFilter{Page: page})
	if err != nil {
		return "", err
	}
	if len(out.Data) == 0 {
		return "📭 Расходов нет", nil
	}

	lines := []string{fmt.Sprintf("📋 Расходы, страница %d из %d", out.Page, out.TotalPages)}
	for _, e := range out.Data {
		cat := strconv.FormatInt(e.CategoryID, 10)
		if e.Category != nil {
			cat = e.Category.Name
		}
		lines = append(lines, fmt.Sprintf("#%d %s %s: %s (%s)",
			e.ID, e.Date.Format(domain.DateLayout), e.Title, e.Amount.StringFixed(2), cat))
	}
	return strings.Join(lines, "\n"), nil
}

func (d *Dispatcher) report(ctx context.Context, chatID int64, args []string) (string, error) {
	if len(args) != 2 {
		return "❌ Используй: /report <YYYY-MM-DD> <YYYY-MM-DD>", nil
	}
	start, err1 := time.Parse(domain.DateLayout, args[0])
	end, err2 := time.Parse(domain.DateLayout, args[1])
	if err1 != nil || err2 != nil {
		return "❌ Даты в формате YYYY-MM-DD", nil
	}

	rows, err := d.svc.GenerateReport(ctx, d.credential(chatID), start, end)
	if err != nil {
		return "", err
	}

	total := decimal.Zero
	lines := []string{fmt.Sprintf("📊 Отчёт %s — %s", args[0], args[1])}
	for _, r := range rows {
		total = total.Add(r.TotalAmount)
		lines = append(lines, fmt.Sprintf("- %s: %s", r.CategoryName, r.TotalAmount.StringFixed(2)))
	}
	lines = append(lines, "Итого: "+total.StringFixed(2))
	return strings.Join(lines, "\n"), nil
}

func (d *Dispatcher) add(ctx context.Context, chatID int64, args []string) (string, error) {
	const usage = "❌ Используй: /add <категория> <сумма> <YYYY-MM-DD> <название>"
	if len(args) < 4 {
		return usage, nil
	}
	categoryID, err := strconv.ParseInt(args[0], 10, 64)
	if err != nil || categoryID < 1 {
		return usage, nil
	}
	amountStr := strings.ReplaceAll(args[1], ",", ".")
	if !val.IsMoney(amountStr) {
		return "❌ Сумма должна быть положительной, не больше двух знаков после запятой", nil
	}
	date, err := time.Parse(domain.DateLayout, args[2])
	if err != nil {
		return "❌ Дата в формате YYYY-MM-DD", nil
	}

	e, err := d.svc.Create(ctx, d.credential(chatID), domain.NewExpense{
		Title:      strings.Join(args[3:], " "),
		Amount:     decimal.RequireFromString(amountStr),
		Date:       date,
		CategoryID: categoryID,
	})
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("✅ Сохранено, #%d", e.ID), nil
}

func (d *Dispatcher) remove(ctx context.Context, chatID int64, args []string) (string, error) {
	if len(args) != 1 {
		return "❌ Используй: /delete <id>", nil
	}
	id, err := strconv.ParseInt(args[0], 10, 64)
	if err != nil || id < 1 {
		return "❌ Используй: /delete <id>", nil
	}

	if _, err := d.svc.Remove(ctx, d.credential(chatID), id); err != nil {
		return "", err
	}
	return "✅ Расход удалён", nil
}

func describe(err error) string {
	switch {
	case errors.Is(err, domain.ErrMissingCredential):
		return "Сначала выполни /login <token>"
	case errors.Is(err, domain.ErrInvalidCredential):
		return "Токен недействителен, выполни /login заново"
	case errors.Is(err, domain.ErrIdentityNotFound):
		return "Аккаунт не найден"
	case errors.Is(err, domain.ErrCategoryNotFound):
		return "Категория не найдена"
	case errors.Is(err, domain.ErrExpenseNotFound):
		return "Расход не найден"
	case errors.Is(err, domain.ErrNoExpensesInRange):
		return "Нет расходов за этот период"
	default:
		return "Внутренняя ошибка, попробуй позже"
	}
}

// SanitizeInput collapses any run of whitespace into a single space.
func SanitizeInput(s string) string {
	var b strings.Builder
	for _, r := range s {
		if unicode.IsSpace(r) {
			b.WriteRune(' ')
		} else {
			b.WriteRune(r)
		}
	}
	return strings.Join(strings.Fields(b.String()), " ")
}

func fixEncoding(s string) string {
	if utf8.ValidString(s) {
		return s
	}

	// Пробуем перекодировать из windows-1251
	fixed, err := charmap.Windows1251.NewDecoder().String(s)
	if err == nil && utf8.ValidString(fixed) {
		return fixed
	}
	return strings.ToValidUTF8(s, "")
}
