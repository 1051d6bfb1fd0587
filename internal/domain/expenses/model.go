package expenses

import (
	"time"

	"github.com/shopspring/decimal"
)

// Expense is an append-only spend record. It is stamped with the cycle that
// was active when it was created and is never reassigned afterwards, even if
// the room's cycle moves on.
type Expense struct {
	ID          string          `gorm:"type:uuid;primaryKey"`
	RoomID      string          `gorm:"type:uuid;index;not null"`
	Amount      decimal.Decimal `gorm:"type:numeric(12,2);not null"`
	Category    string          `gorm:"size:32;not null"`
	Note        string          `gorm:"not null"`
	PaidBy      string          `gorm:"type:uuid;index;not null"`
	PaidByName  string          `gorm:"not null"`
	PaidByEmail string          `gorm:"not null"`
	CycleNumber *int64          `gorm:"index"`
	CycleUserID *string         `gorm:"type:uuid;index"`
	ExpenseDate time.Time       `gorm:"type:date;not null"`
	CreatedAt   time.Time       `gorm:"autoCreateTime;index"`
}

// Cursor is a keyset pagination position: the creation timestamp and id of
// the last record of the previous page.
type Cursor struct {
	CreatedAt time.Time
	ID        string
}

type Page struct {
	Items      []Expense
	NextCursor *Cursor
	HasMore    bool
}

// CycleSummary is one line of the recent-cycles widget, partitioned into the
// caller's and the roommate's totals.
type CycleSummary struct {
	CycleNumber   int64
	MyTotal       decimal.Decimal
	RoommateTotal decimal.Decimal
	Total         decimal.Decimal
}

type Payer struct {
	ID    string
	Name  string
	Email string
}

type CreateExpenseInput struct {
	Amount      decimal.Decimal
	Category    string
	Note        string
	ExpenseDate time.Time
}

// RoomInfo is the slice of the room record the expense log needs: where to
// append, and which cycle to attribute the record to.
type RoomInfo struct {
	ID           string
	OwnerID      string
	RoommateID   string
	CycleNumber  int64
	ActiveUserID *string
}

func (r RoomInfo) Counterpart(userID string) string {
	if userID == r.OwnerID {
		return r.RoommateID
	}
	return r.OwnerID
}
