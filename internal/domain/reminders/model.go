package reminders

import "time"

const (
	TypeFixed    = "fixed"
	TypeInterval = "interval"
)

// Reminder is a user-scoped recurring notification definition. The
// declarative fields (Time/RepeatDays or IntervalMinutes) are the source of
// truth; NotificationIDs mirrors the trigger handles currently live in the
// scheduler, one per selected weekday for fixed reminders and exactly one
// for interval reminders.
type Reminder struct {
	ID              string    `gorm:"type:uuid;primaryKey"`
	UserID          string    `gorm:"type:uuid;index;not null"`
	Name            string    `gorm:"not null"`
	Message         string    `gorm:"not null"`
	Type            string    `gorm:"size:16;not null"`
	Time            string    `gorm:"size:16"`
	RepeatDays      []int     `gorm:"serializer:json"`
	IntervalMinutes int       `gorm:"not null;default:0"`
	NotificationIDs []string  `gorm:"serializer:json"`
	IsActive        bool      `gorm:"not null;default:true"`
	CreatedAt       time.Time `gorm:"autoCreateTime"`
	UpdatedAt       time.Time `gorm:"autoUpdateTime"`
}

type ReminderInput struct {
	Name            string
	Message         string
	Type            string
	Time            string
	RepeatDays      []int
	IntervalMinutes int
}
