package rooms

import (
	"time"

	"github.com/shopspring/decimal"
)

const (
	StatusActive   = "active"
	StatusInactive = "inactive"
)

// Room is the single shared mutable record between the two participants.
// A cycle is active iff ActiveUserID and CycleStartAt are both set; the two
// fields are always written together.
type Room struct {
	ID              string          `gorm:"type:uuid;primaryKey"`
	Name            string          `gorm:"not null"`
	OwnerID         string          `gorm:"type:uuid;not null;index"`
	OwnerEmail      string          `gorm:"not null"`
	RoommateID      string          `gorm:"type:uuid;not null;index"`
	RoommateEmail   string          `gorm:"not null"`
	Status          string          `gorm:"size:16;not null;index"`
	TargetAmount    decimal.Decimal `gorm:"type:numeric(12,2);not null"`
	ActiveUserID    *string         `gorm:"type:uuid"`
	ActiveUserEmail *string         `gorm:"type:text"`
	CycleStartAt    *time.Time
	CycleNumber     int64 `gorm:"not null;default:0"`
	LastExpenseAt   *time.Time
	CreatedAt       time.Time `gorm:"autoCreateTime"`
	UpdatedAt       time.Time `gorm:"autoUpdateTime"`
}

type Participant struct {
	ID    string
	Email string
}

func (r *Room) CycleActive() bool {
	return r.ActiveUserID != nil && r.CycleStartAt != nil
}

func (r *Room) HasParticipant(userID string) bool {
	return userID == r.OwnerID || userID == r.RoommateID
}

// Counterpart returns the fixed participant that is not userID. Turn handoff
// alternates strictly between these two, regardless of who paid what.
func (r *Room) Counterpart(userID string) Participant {
	if userID == r.OwnerID {
		return Participant{ID: r.RoommateID, Email: r.RoommateEmail}
	}
	return Participant{ID: r.OwnerID, Email: r.OwnerEmail}
}

// CycleStatus is the per-caller view of the current cycle, recomputed from
// the expense log on every read.
type CycleStatus struct {
	Active          bool
	MyTurn          bool
	CanStart        bool
	CycleNumber     int64
	StartedAt       *time.Time
	ActiveUserEmail string
	Target          decimal.Decimal
	MyTotal         decimal.Decimal
	RoommateTotal   decimal.Decimal
	Remaining       decimal.Decimal
	ProgressPercent float64
}

type CreateRoomInput struct {
	Name          string
	RoommateEmail string
}
