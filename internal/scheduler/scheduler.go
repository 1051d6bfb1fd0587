package scheduler

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/manishdhiman1/splitmateapp/pkg/logger"
)

// Dispatcher delivers one due notification to its user.
type Dispatcher interface {
	Dispatch(ctx context.Context, userID, title, body string) error
}

// Scheduler keeps recurring triggers in process, one goroutine per trigger.
// Weekly triggers use the 1=Sunday .. 7=Saturday encoding. Handles are
// opaque; cancelling a handle that no longer exists is treated as already
// cancelled.
type Scheduler struct {
	mu         sync.Mutex
	triggers   map[string]chan struct{}
	dispatcher Dispatcher
	log        logger.Logger
	wg         sync.WaitGroup
	closed     bool
}

func New(dispatcher Dispatcher, log logger.Logger) *Scheduler {
	return &Scheduler{
		triggers:   make(map[string]chan struct{}),
		dispatcher: dispatcher,
		log:        log,
	}
}

func (s *Scheduler) ScheduleWeekly(ctx context.Context, userID, title, body string, weekday, hour, minute int) (string, error) {
	if weekday < 1 || weekday > 7 {
		return "", fmt.Errorf("weekday out of range: %d", weekday)
	}
	if hour < 0 || hour > 23 || minute < 0 || minute > 59 {
		return "", fmt.Errorf("invalid time %02d:%02d", hour, minute)
	}

	return s.register(userID, title, body, func(now time.Time) time.Time {
		return nextWeeklyFire(now, weekday, hour, minute)
	})
}

func (s *Scheduler) ScheduleInterval(ctx context.Context, userID, title, body string, every time.Duration) (string, error) {
	if every <= 0 {
		return "", fmt.Errorf("interval must be positive, got %s", every)
	}

	return s.register(userID, title, body, func(now time.Time) time.Time {
		return now.Add(every)
	})
}

func (s *Scheduler) Cancel(ctx context.Context, handle string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	stop, ok := s.triggers[handle]
	if !ok {
		return nil
	}
	close(stop)
	delete(s.triggers, handle)
	return nil
}

// Close stops every live trigger and waits for their goroutines.
func (s *Scheduler) Close() {
	s.mu.Lock()
	if !s.closed {
		s.closed = true
		for handle, stop := range s.triggers {
			close(stop)
			delete(s.triggers, handle)
		}
	}
	s.mu.Unlock()

	s.wg.Wait()
}

func (s *Scheduler) register(userID, title, body string, next func(time.Time) time.Time) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return "", fmt.Errorf("scheduler closed")
	}

	handle := uuid.NewString()
	stop := make(chan struct{})
	s.triggers[handle] = stop

	s.wg.Add(1)
	go s.run(handle, userID, title, body, next, stop)

	return handle, nil
}

func (s *Scheduler) run(handle, userID, title, body string, next func(time.Time) time.Time, stop chan struct{}) {
	defer s.wg.Done()

	for {
		timer := time.NewTimer(time.Until(next(time.Now())))
		select {
		case <-stop:
			timer.Stop()
			return
		case <-timer.C:
		}

		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		if err := s.dispatcher.Dispatch(ctx, userID, title, body); err != nil {
			s.log.BusinessError("scheduler: dispatch failed", err, "handle", handle, "user_id", userID)
		}
		cancel()
	}
}

// nextWeeklyFire returns the next wall-clock occurrence of hour:minute on
// weekday (1=Sunday .. 7=Saturday) strictly after now.
func nextWeeklyFire(now time.Time, weekday, hour, minute int) time.Time {
	target := time.Weekday(weekday - 1)
	daysAhead := (int(target) - int(now.Weekday()) + 7) % 7

	candidate := time.Date(now.Year(), now.Month(), now.Day(), hour, minute, 0, 0, now.Location()).
		AddDate(0, 0, daysAhead)
	if !candidate.After(now) {
		candidate = candidate.AddDate(0, 0, 7)
	}
	return candidate
}
