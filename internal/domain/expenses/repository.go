package expenses

import (
	"context"
	"time"

	"github.com/shopspring/decimal"
)

type Repository interface {
	Create(ctx context.Context, expense *Expense) error
	GetByID(ctx context.Context, expenseID string) (*Expense, error)
	Delete(ctx context.Context, expenseID string) (bool, error)

	// ListByRoom returns up to limit records ordered by (created_at, id)
	// descending, strictly after the cursor position when one is given.
	ListByRoom(ctx context.Context, roomID string, after *Cursor, limit int) ([]Expense, error)

	// ListRecentByCycle returns the most recent records ordered by cycle
	// number descending, feeding the recent-cycles summary.
	ListRecentByCycle(ctx context.Context, roomID string, limit int) ([]Expense, error)

	SumCycleSpendByPayer(ctx context.Context, roomID, cycleUserID string, since time.Time) (map[string]decimal.Decimal, error)
}

// RoomSource exposes the caller's active room to the expense log.
type RoomSource interface {
	ActiveRoom(ctx context.Context, userID string) (RoomInfo, error)
	MarkExpense(ctx context.Context, roomID string, at time.Time) error
}

// Notifier delivers a best-effort push to one user.
type Notifier interface {
	Push(ctx context.Context, userID, title, body string) error
}
