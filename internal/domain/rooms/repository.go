package rooms

import (
	"context"
	"time"

	"github.com/shopspring/decimal"
)

type Repository interface {
	Transaction(ctx context.Context, fn func(Repository) error) error
	Create(ctx context.Context, room *Room) error
	GetByID(ctx context.Context, roomID string) (*Room, error)
	GetActiveByUser(ctx context.Context, userID string) (*Room, error)
	HasActiveRoom(ctx context.Context, userID string) (bool, error)
	SetStatus(ctx context.Context, roomID, status string) error
	UpdateTarget(ctx context.Context, roomID string, target decimal.Decimal) error

	// BeginCycle assigns the cycle to userID with a server-side timestamp and
	// an atomic cycle_number increment. The write is guarded on both cycle
	// fields being null; false means a cycle was already running.
	BeginCycle(ctx context.Context, roomID, userID, userEmail string) (bool, error)

	// AdvanceCycle hands the turn to the next participant, guarded on the
	// cycle_number observed by the caller. False means a concurrent
	// completion won the race.
	AdvanceCycle(ctx context.Context, roomID string, fromCycle int64, nextID, nextEmail string) (bool, error)

	TouchLastExpense(ctx context.Context, roomID string, at time.Time) error
}

// SpendReader aggregates expense amounts for the active cycle window,
// partitioned by payer. Implemented by the expenses domain.
type SpendReader interface {
	CycleSpendByPayer(ctx context.Context, roomID, cycleUserID string, since time.Time) (map[string]decimal.Decimal, error)
}

// Directory resolves registered users by email when inviting a roommate.
type Directory interface {
	LookupByEmail(ctx context.Context, email string) (Participant, error)
}

// Notifier delivers a best-effort push to one user.
type Notifier interface {
	Push(ctx context.Context, userID, title, body string) error
}
