package reminders

import "errors"

var (
	ErrInvalidInput      = errors.New("invalid reminder input")
	ErrReminderNotFound  = errors.New("reminder not found")
	ErrNotReminderOwner  = errors.New("reminder belongs to another user")
	ErrInvalidClock      = errors.New("invalid time, expected HH:MM AM/PM")
	ErrInvalidRepeatDays = errors.New("repeat days must be weekday indices 0-6")
)
