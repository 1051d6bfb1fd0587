package reminders

import (
	"context"
	"time"
)

type Repository interface {
	Create(ctx context.Context, reminder *Reminder) error
	GetByID(ctx context.Context, reminderID string) (*Reminder, error)
	Update(ctx context.Context, reminder *Reminder) error
	Delete(ctx context.Context, reminderID string) (bool, error)
	ListByUser(ctx context.Context, userID string) ([]Reminder, error)
	ListActive(ctx context.Context) ([]Reminder, error)
}

// TriggerScheduler is the external scheduler the declarative definitions are
// mapped onto. It only supports single-weekday weekly recurrence, so a
// multi-day reminder fans out into independent triggers. Weekday uses the
// scheduler's encoding (1=Sunday .. 7=Saturday). Cancelling an unknown
// handle is not an error.
type TriggerScheduler interface {
	ScheduleWeekly(ctx context.Context, userID, title, body string, weekday, hour, minute int) (string, error)
	ScheduleInterval(ctx context.Context, userID, title, body string, every time.Duration) (string, error)
	Cancel(ctx context.Context, handle string) error
}
