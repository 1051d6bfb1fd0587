package handler

import (
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/shopspring/decimal"

	expensesdomain "github.com/manishdhiman1/splitmateapp/internal/domain/expenses"
	roomsdomain "github.com/manishdhiman1/splitmateapp/internal/domain/rooms"
	"github.com/manishdhiman1/splitmateapp/internal/transport/httpserver/middleware"
)

type createExpenseRequest struct {
	Amount      decimal.Decimal `json:"amount"`
	Category    string          `json:"category"`
	Note        string          `json:"note"`
	ExpenseDate string          `json:"expense_date"`
}

type expenseResponse struct {
	ID          string          `json:"id"`
	RoomID      string          `json:"room_id"`
	Amount      decimal.Decimal `json:"amount"`
	Category    string          `json:"category"`
	Note        string          `json:"note"`
	PaidBy      string          `json:"paid_by"`
	PaidByName  string          `json:"paid_by_name"`
	PaidByEmail string          `json:"paid_by_email"`
	CycleNumber *int64          `json:"cycle_number"`
	ExpenseDate string          `json:"expense_date"`
	CreatedAt   time.Time       `json:"created_at"`
}

type expensePageResponse struct {
	Items      []expenseResponse `json:"items"`
	NextCursor string            `json:"next_cursor,omitempty"`
	HasMore    bool              `json:"has_more"`
}

type cycleSummaryResponse struct {
	CycleNumber   int64           `json:"cycle_number"`
	MyTotal       decimal.Decimal `json:"my_total"`
	RoommateTotal decimal.Decimal `json:"roommate_total"`
	Total         decimal.Decimal `json:"total"`
}

func toExpenseResponse(expense *expensesdomain.Expense) expenseResponse {
	return expenseResponse{
		ID:          expense.ID,
		RoomID:      expense.RoomID,
		Amount:      expense.Amount,
		Category:    expense.Category,
		Note:        expense.Note,
		PaidBy:      expense.PaidBy,
		PaidByName:  expense.PaidByName,
		PaidByEmail: expense.PaidByEmail,
		CycleNumber: expense.CycleNumber,
		ExpenseDate: expense.ExpenseDate.Format("2006-01-02"),
		CreatedAt:   expense.CreatedAt,
	}
}

func toExpensePageResponse(page *expensesdomain.Page) expensePageResponse {
	items := make([]expenseResponse, 0, len(page.Items))
	for i := range page.Items {
		items = append(items, toExpenseResponse(&page.Items[i]))
	}
	return expensePageResponse{
		Items:      items,
		NextCursor: encodeCursor(page.NextCursor),
		HasMore:    page.HasMore,
	}
}

func (h *Handlers) CreateExpense(w http.ResponseWriter, r *http.Request) {
	var req createExpenseRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_json", "invalid json body")
		return
	}
	req.Note = strings.TrimSpace(req.Note)
	if !req.Amount.IsPositive() {
		writeError(w, http.StatusBadRequest, "invalid_request", "amount must be positive")
		return
	}
	if req.Note == "" {
		writeError(w, http.StatusBadRequest, "invalid_request", "note is required")
		return
	}

	expenseDate, err := parseDateParam(req.ExpenseDate)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid_request", "expense_date must be YYYY-MM-DD")
		return
	}

	user, ok := middleware.UserFromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "invalid_token", "invalid token")
		return
	}

	payer := expensesdomain.Payer{ID: user.ID, Name: user.Name, Email: user.Email}
	expense, err := h.Expenses.Create(r.Context(), payer, expensesdomain.CreateExpenseInput{
		Amount:      req.Amount,
		Category:    strings.TrimSpace(req.Category),
		Note:        req.Note,
		ExpenseDate: expenseDate,
	})
	if err != nil {
		switch {
		case errors.Is(err, roomsdomain.ErrRoomNotFound):
			h.log.BusinessError("expenses.create: room not found", err, "user_id", user.ID)
			writeError(w, http.StatusNotFound, "room_not_found", "room not found")
		case errors.Is(err, expensesdomain.ErrFutureExpenseDate):
			h.log.BusinessError("expenses.create: future date", err, "user_id", user.ID)
			writeError(w, http.StatusBadRequest, "future_expense_date", "expense_date cannot be in the future")
		default:
			h.log.InternalError("expenses.create: create failed", err, "user_id", user.ID)
			writeError(w, http.StatusInternalServerError, "internal_error", "internal error")
		}
		return
	}

	writeJSON(w, http.StatusCreated, toExpenseResponse(expense))
}

func (h *Handlers) ListExpenses(w http.ResponseWriter, r *http.Request) {
	user, ok := middleware.UserFromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "invalid_token", "invalid token")
		return
	}

	limit, err := parseIntParam(r.URL.Query().Get("limit"), h.historyPageSize)
	if err != nil || limit == 0 {
		writeError(w, http.StatusBadRequest, "invalid_request", "limit must be a positive integer")
		return
	}
	if limit > h.historyPageSize {
		limit = h.historyPageSize
	}

	after, err := decodeCursor(r.URL.Query().Get("cursor"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid_request", "malformed cursor")
		return
	}

	page, err := h.Expenses.List(r.Context(), user.ID, after, limit)
	if err != nil {
		if errors.Is(err, roomsdomain.ErrRoomNotFound) {
			h.log.BusinessError("expenses.list: room not found", err, "user_id", user.ID)
			writeError(w, http.StatusNotFound, "room_not_found", "room not found")
			return
		}
		h.log.InternalError("expenses.list: list failed", err, "user_id", user.ID)
		writeError(w, http.StatusInternalServerError, "internal_error", "internal error")
		return
	}

	writeJSON(w, http.StatusOK, toExpensePageResponse(page))
}

// RecentExpenses serves the dashboard widget: the newest few records without
// pagination.
func (h *Handlers) RecentExpenses(w http.ResponseWriter, r *http.Request) {
	user, ok := middleware.UserFromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "invalid_token", "invalid token")
		return
	}

	page, err := h.Expenses.List(r.Context(), user.ID, nil, h.recentPageSize)
	if err != nil {
		if errors.Is(err, roomsdomain.ErrRoomNotFound) {
			h.log.BusinessError("expenses.recent: room not found", err, "user_id", user.ID)
			writeError(w, http.StatusNotFound, "room_not_found", "room not found")
			return
		}
		h.log.InternalError("expenses.recent: list failed", err, "user_id", user.ID)
		writeError(w, http.StatusInternalServerError, "internal_error", "internal error")
		return
	}

	items := make([]expenseResponse, 0, len(page.Items))
	for i := range page.Items {
		items = append(items, toExpenseResponse(&page.Items[i]))
	}
	writeJSON(w, http.StatusOK, items)
}

func (h *Handlers) DeleteExpense(w http.ResponseWriter, r *http.Request) {
	user, ok := middleware.UserFromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "invalid_token", "invalid token")
		return
	}

	expenseID := chi.URLParam(r, "id")
	if err := h.Expenses.Delete(r.Context(), user.ID, expenseID); err != nil {
		switch {
		case errors.Is(err, expensesdomain.ErrExpenseNotFound):
			h.log.BusinessError("expenses.delete: not found", err, "user_id", user.ID, "expense_id", expenseID)
			writeError(w, http.StatusNotFound, "expense_not_found", "expense not found")
		case errors.Is(err, expensesdomain.ErrNotExpenseAuthor):
			h.log.BusinessError("expenses.delete: not author", err, "user_id", user.ID, "expense_id", expenseID)
			writeError(w, http.StatusForbidden, "not_expense_author", "only the author can delete an expense")
		default:
			h.log.InternalError("expenses.delete: delete failed", err, "user_id", user.ID, "expense_id", expenseID)
			writeError(w, http.StatusInternalServerError, "internal_error", "internal error")
		}
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

func (h *Handlers) CycleSummaries(w http.ResponseWriter, r *http.Request) {
	user, ok := middleware.UserFromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "invalid_token", "invalid token")
		return
	}

	summaries, err := h.Expenses.CycleSummaries(r.Context(), user.ID)
	if err != nil {
		if errors.Is(err, roomsdomain.ErrRoomNotFound) {
			h.log.BusinessError("expenses.cycle_summaries: room not found", err, "user_id", user.ID)
			writeError(w, http.StatusNotFound, "room_not_found", "room not found")
			return
		}
		h.log.InternalError("expenses.cycle_summaries: query failed", err, "user_id", user.ID)
		writeError(w, http.StatusInternalServerError, "internal_error", "internal error")
		return
	}

	out := make([]cycleSummaryResponse, 0, len(summaries))
	for _, summary := range summaries {
		out = append(out, cycleSummaryResponse{
			CycleNumber:   summary.CycleNumber,
			MyTotal:       summary.MyTotal,
			RoommateTotal: summary.RoommateTotal,
			Total:         summary.Total,
		})
	}
	writeJSON(w, http.StatusOK, out)
}
