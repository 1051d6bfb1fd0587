package expenses

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/manishdhiman1/splitmateapp/pkg/logger"
)

const (
	defaultCategory     = "Other"
	recentCycleCount    = 3
	recentCycleReadSize = 20
)

type Service struct {
	repo     Repository
	rooms    RoomSource
	notifier Notifier
	log      logger.Logger
}

func NewService(repo Repository, rooms RoomSource, notifier Notifier, log logger.Logger) *Service {
	return &Service{
		repo:     repo,
		rooms:    rooms,
		notifier: notifier,
		log:      log,
	}
}

// Create appends one spend record attributed to the cycle running right now.
// The room's lastExpenseAt bump and the roommate push are best effort and
// never fail the save.
func (s *Service) Create(ctx context.Context, payer Payer, input CreateExpenseInput) (*Expense, error) {
	if !input.Amount.IsPositive() {
		return nil, fmt.Errorf("amount must be positive")
	}

	note := strings.TrimSpace(input.Note)
	if note == "" {
		return nil, fmt.Errorf("note is required")
	}

	category := strings.TrimSpace(input.Category)
	if category == "" {
		category = defaultCategory
	}

	now := time.Now().UTC()
	expenseDate := input.ExpenseDate
	if expenseDate.IsZero() {
		expenseDate = now
	}
	if dateOnly(expenseDate).After(dateOnly(now)) {
		return nil, ErrFutureExpenseDate
	}

	room, err := s.rooms.ActiveRoom(ctx, payer.ID)
	if err != nil {
		return nil, err
	}

	expense := Expense{
		ID:          uuid.NewString(),
		RoomID:      room.ID,
		Amount:      input.Amount,
		Category:    category,
		Note:        note,
		PaidBy:      payer.ID,
		PaidByName:  payer.Name,
		PaidByEmail: payer.Email,
		ExpenseDate: dateOnly(expenseDate),
	}
	if room.ActiveUserID != nil {
		cycleNumber := room.CycleNumber
		expense.CycleNumber = &cycleNumber
		expense.CycleUserID = room.ActiveUserID
	}

	if err := s.repo.Create(ctx, &expense); err != nil {
		return nil, err
	}

	if err := s.rooms.MarkExpense(ctx, room.ID, now); err != nil {
		s.log.BusinessError("expenses: last expense bump failed", err, "room_id", room.ID)
	}

	if s.notifier != nil {
		body := fmt.Sprintf("%s added %s for %s", payer.Name, expense.Amount.StringFixed(2), note)
		if err := s.notifier.Push(ctx, room.Counterpart(payer.ID), "New Expense Added", body); err != nil {
			s.log.BusinessError("expenses: roommate push failed", err, "room_id", room.ID)
		}
	}

	return &expense, nil
}

// Delete removes one record. Author only; records are never edited in place.
func (s *Service) Delete(ctx context.Context, userID, expenseID string) error {
	expense, err := s.repo.GetByID(ctx, expenseID)
	if err != nil {
		return err
	}
	if expense.PaidBy != userID {
		return ErrNotExpenseAuthor
	}

	deleted, err := s.repo.Delete(ctx, expenseID)
	if err != nil {
		return err
	}
	if !deleted {
		return ErrExpenseNotFound
	}
	return nil
}

// List pages through the room's history newest first. An empty page means
// the log is exhausted.
func (s *Service) List(ctx context.Context, userID string, after *Cursor, limit int) (*Page, error) {
	room, err := s.rooms.ActiveRoom(ctx, userID)
	if err != nil {
		return nil, err
	}

	items, err := s.repo.ListByRoom(ctx, room.ID, after, limit)
	if err != nil {
		return nil, err
	}

	page := Page{Items: items, HasMore: len(items) == limit}
	if len(items) > 0 {
		last := items[len(items)-1]
		page.NextCursor = &Cursor{CreatedAt: last.CreatedAt, ID: last.ID}
	}
	return &page, nil
}

// CycleSummaries folds the most recent records into per-cycle totals for the
// last three cycles, split between the caller and the roommate.
func (s *Service) CycleSummaries(ctx context.Context, userID string) ([]CycleSummary, error) {
	room, err := s.rooms.ActiveRoom(ctx, userID)
	if err != nil {
		return nil, err
	}

	items, err := s.repo.ListRecentByCycle(ctx, room.ID, recentCycleReadSize)
	if err != nil {
		return nil, err
	}

	summaries := make([]CycleSummary, 0, recentCycleCount)
	index := make(map[int64]int)
	for _, expense := range items {
		if expense.CycleNumber == nil {
			continue
		}
		cycle := *expense.CycleNumber

		at, ok := index[cycle]
		if !ok {
			if len(summaries) == recentCycleCount {
				continue
			}
			summaries = append(summaries, CycleSummary{CycleNumber: cycle})
			at = len(summaries) - 1
			index[cycle] = at
		}

		if expense.PaidBy == userID {
			summaries[at].MyTotal = summaries[at].MyTotal.Add(expense.Amount)
		} else {
			summaries[at].RoommateTotal = summaries[at].RoommateTotal.Add(expense.Amount)
		}
		summaries[at].Total = summaries[at].Total.Add(expense.Amount)
	}

	return summaries, nil
}

// CycleSpendByPayer sums the cycle window of the designated payer, split by
// who actually paid. Recomputed from the raw log on every call.
func (s *Service) CycleSpendByPayer(ctx context.Context, roomID, cycleUserID string, since time.Time) (map[string]decimal.Decimal, error) {
	return s.repo.SumCycleSpendByPayer(ctx, roomID, cycleUserID, since)
}

func dateOnly(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}
