package reminders

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/manishdhiman1/splitmateapp/pkg/logger"
)

type Service struct {
	repo      Repository
	scheduler TriggerScheduler
	log       logger.Logger
}

func NewService(repo Repository, scheduler TriggerScheduler, log logger.Logger) *Service {
	return &Service{
		repo:      repo,
		scheduler: scheduler,
		log:       log,
	}
}

func (s *Service) List(ctx context.Context, userID string) ([]Reminder, error) {
	return s.repo.ListByUser(ctx, userID)
}

// Rehydrate rebuilds the triggers for every active reminder. Handles do not
// survive a process restart, so the stored lists are replaced wholesale with
// freshly registered ones. A reminder whose schedule cannot be rebuilt is
// logged and skipped rather than blocking the rest.
func (s *Service) Rehydrate(ctx context.Context) error {
	active, err := s.repo.ListActive(ctx)
	if err != nil {
		return err
	}

	for i := range active {
		reminder := &active[i]

		handles, err := s.schedule(ctx, reminder)
		if err != nil {
			s.log.BusinessError("reminders: rehydrate schedule failed", err, "reminder_id", reminder.ID)
			continue
		}
		reminder.NotificationIDs = handles

		if err := s.repo.Update(ctx, reminder); err != nil {
			s.cancelAll(ctx, handles)
			return err
		}
	}

	s.log.Info("reminders: rehydrated active reminders", "count", len(active))
	return nil
}

// Create validates the declarative definition, registers its triggers and
// persists the record with the resulting handles.
func (s *Service) Create(ctx context.Context, userID string, input ReminderInput) (*Reminder, error) {
	reminder, err := buildReminder(userID, input)
	if err != nil {
		return nil, err
	}

	handles, err := s.schedule(ctx, reminder)
	if err != nil {
		return nil, err
	}
	reminder.NotificationIDs = handles

	if err := s.repo.Create(ctx, reminder); err != nil {
		s.cancelAll(ctx, handles)
		return nil, err
	}

	return reminder, nil
}

// Update replaces the schedule: all previously stored handles are cancelled
// before any new trigger is registered, so an edit can never leave duplicate
// or orphaned triggers behind. Saving an edit re-enables the reminder.
func (s *Service) Update(ctx context.Context, userID, reminderID string, input ReminderInput) (*Reminder, error) {
	existing, err := s.ownedReminder(ctx, userID, reminderID)
	if err != nil {
		return nil, err
	}

	updated, err := buildReminder(userID, input)
	if err != nil {
		return nil, err
	}
	updated.ID = existing.ID
	updated.CreatedAt = existing.CreatedAt

	s.cancelAll(ctx, existing.NotificationIDs)

	// Persist the cleared list right away so a failure below cannot leave
	// the record pointing at cancelled triggers.
	existing.NotificationIDs = []string{}
	if err := s.repo.Update(ctx, existing); err != nil {
		return nil, err
	}

	handles, err := s.schedule(ctx, updated)
	if err != nil {
		return nil, err
	}
	updated.NotificationIDs = handles
	updated.UpdatedAt = time.Now().UTC()

	if err := s.repo.Update(ctx, updated); err != nil {
		s.cancelAll(ctx, handles)
		return nil, err
	}

	return updated, nil
}

// Toggle flips isActive. Off deterministically cancels every live trigger
// and clears the handle list; on rebuilds the triggers from the declarative
// fields.
func (s *Service) Toggle(ctx context.Context, userID, reminderID string) (*Reminder, error) {
	reminder, err := s.ownedReminder(ctx, userID, reminderID)
	if err != nil {
		return nil, err
	}

	if reminder.IsActive {
		s.cancelAll(ctx, reminder.NotificationIDs)
		reminder.NotificationIDs = []string{}
		reminder.IsActive = false
	} else {
		handles, err := s.schedule(ctx, reminder)
		if err != nil {
			return nil, err
		}
		reminder.NotificationIDs = handles
		reminder.IsActive = true
	}
	reminder.UpdatedAt = time.Now().UTC()

	if err := s.repo.Update(ctx, reminder); err != nil {
		return nil, err
	}
	return reminder, nil
}

// Delete cancels the triggers and removes the record. Cancellation failures
// are logged but never block the deletion.
func (s *Service) Delete(ctx context.Context, userID, reminderID string) error {
	reminder, err := s.ownedReminder(ctx, userID, reminderID)
	if err != nil {
		return err
	}

	s.cancelAll(ctx, reminder.NotificationIDs)

	deleted, err := s.repo.Delete(ctx, reminderID)
	if err != nil {
		return err
	}
	if !deleted {
		return ErrReminderNotFound
	}
	return nil
}

func (s *Service) ownedReminder(ctx context.Context, userID, reminderID string) (*Reminder, error) {
	reminder, err := s.repo.GetByID(ctx, reminderID)
	if err != nil {
		return nil, err
	}
	if reminder.UserID != userID {
		return nil, ErrNotReminderOwner
	}
	return reminder, nil
}

// schedule maps the declarative fields onto concrete triggers. A fixed
// reminder becomes one independent weekly trigger per selected day because
// the scheduler cannot express multi-day recurrence in a single trigger.
func (s *Service) schedule(ctx context.Context, reminder *Reminder) ([]string, error) {
	switch reminder.Type {
	case TypeFixed:
		hour, minute, err := ParseClock(reminder.Time)
		if err != nil {
			return nil, err
		}

		handles := make([]string, 0, len(reminder.RepeatDays))
		for _, day := range reminder.RepeatDays {
			handle, err := s.scheduler.ScheduleWeekly(ctx, reminder.UserID, reminder.Name, reminder.Message, schedulerWeekday(day), hour, minute)
			if err != nil {
				s.cancelAll(ctx, handles)
				return nil, err
			}
			handles = append(handles, handle)
		}
		return handles, nil

	case TypeInterval:
		every := time.Duration(reminder.IntervalMinutes) * time.Minute
		handle, err := s.scheduler.ScheduleInterval(ctx, reminder.UserID, reminder.Name, reminder.Message, every)
		if err != nil {
			return nil, err
		}
		return []string{handle}, nil
	}

	return nil, fmt.Errorf("unknown reminder type %q", reminder.Type)
}

func (s *Service) cancelAll(ctx context.Context, handles []string) {
	for _, handle := range handles {
		if err := s.scheduler.Cancel(ctx, handle); err != nil {
			s.log.BusinessError("reminders: cancel trigger failed", err, "handle", handle)
		}
	}
}

func buildReminder(userID string, input ReminderInput) (*Reminder, error) {
	name := strings.TrimSpace(input.Name)
	if name == "" {
		return nil, fmt.Errorf("%w: reminder name is required", ErrInvalidInput)
	}

	reminder := Reminder{
		ID:       uuid.NewString(),
		UserID:   userID,
		Name:     name,
		Message:  strings.TrimSpace(input.Message),
		Type:     input.Type,
		IsActive: true,
	}

	switch input.Type {
	case TypeFixed:
		if _, _, err := ParseClock(input.Time); err != nil {
			return nil, err
		}
		days, err := normalizeRepeatDays(input.RepeatDays)
		if err != nil {
			return nil, err
		}
		reminder.Time = strings.TrimSpace(input.Time)
		reminder.RepeatDays = days

	case TypeInterval:
		if input.IntervalMinutes <= 0 {
			return nil, fmt.Errorf("%w: interval minutes must be positive", ErrInvalidInput)
		}
		reminder.IntervalMinutes = input.IntervalMinutes

	default:
		return nil, fmt.Errorf("%w: type must be %q or %q", ErrInvalidInput, TypeFixed, TypeInterval)
	}

	return &reminder, nil
}

func normalizeRepeatDays(days []int) ([]int, error) {
	if len(days) == 0 {
		return nil, fmt.Errorf("%w: at least one repeat day is required", ErrInvalidRepeatDays)
	}

	seen := make(map[int]struct{}, len(days))
	result := make([]int, 0, len(days))
	for _, day := range days {
		if day < 0 || day > 6 {
			return nil, fmt.Errorf("%w: %d", ErrInvalidRepeatDays, day)
		}
		if _, ok := seen[day]; ok {
			continue
		}
		seen[day] = struct{}{}
		result = append(result, day)
	}

	sort.Ints(result)
	return result, nil
}
