package rooms

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/manishdhiman1/splitmateapp/pkg/logger"
)

type Service struct {
	repo          Repository
	directory     Directory
	spend         SpendReader
	notifier      Notifier
	defaultTarget decimal.Decimal
	log           logger.Logger
}

func NewService(repo Repository, directory Directory, spend SpendReader, notifier Notifier, defaultTarget decimal.Decimal, log logger.Logger) *Service {
	return &Service{
		repo:          repo,
		directory:     directory,
		spend:         spend,
		notifier:      notifier,
		defaultTarget: defaultTarget,
		log:           log,
	}
}

func (s *Service) GetMyRoom(ctx context.Context, userID string) (*Room, error) {
	return s.repo.GetActiveByUser(ctx, userID)
}

// CreateRoom invites a registered roommate by email and opens the shared
// room. Each user can be in at most one active room.
func (s *Service) CreateRoom(ctx context.Context, owner Participant, input CreateRoomInput) (*Room, error) {
	name := strings.TrimSpace(input.Name)
	if name == "" {
		return nil, fmt.Errorf("room name is required")
	}

	email := strings.ToLower(strings.TrimSpace(input.RoommateEmail))
	if email == "" {
		return nil, fmt.Errorf("roommate email is required")
	}
	if strings.EqualFold(email, owner.Email) {
		return nil, ErrSelfInvite
	}

	roommate, err := s.directory.LookupByEmail(ctx, email)
	if err != nil {
		return nil, err
	}

	room := Room{
		ID:            uuid.NewString(),
		Name:          name,
		OwnerID:       owner.ID,
		OwnerEmail:    owner.Email,
		RoommateID:    roommate.ID,
		RoommateEmail: roommate.Email,
		Status:        StatusActive,
		TargetAmount:  s.defaultTarget,
	}

	err = s.repo.Transaction(ctx, func(tx Repository) error {
		busy, err := tx.HasActiveRoom(ctx, owner.ID)
		if err != nil {
			return err
		}
		if busy {
			return ErrAlreadyInRoom
		}

		busy, err = tx.HasActiveRoom(ctx, roommate.ID)
		if err != nil {
			return err
		}
		if busy {
			return ErrRoommateInRoom
		}

		return tx.Create(ctx, &room)
	})
	if err != nil {
		return nil, err
	}

	return &room, nil
}

// DeactivateRoom soft-deletes the room. Owner only.
func (s *Service) DeactivateRoom(ctx context.Context, userID string) error {
	room, err := s.repo.GetActiveByUser(ctx, userID)
	if err != nil {
		return err
	}
	if room.OwnerID != userID {
		return ErrNotOwner
	}
	return s.repo.SetStatus(ctx, room.ID, StatusInactive)
}

func (s *Service) UpdateTarget(ctx context.Context, userID string, target decimal.Decimal) (*Room, error) {
	if !target.IsPositive() {
		return nil, fmt.Errorf("target amount must be positive")
	}

	room, err := s.repo.GetActiveByUser(ctx, userID)
	if err != nil {
		return nil, err
	}

	if err := s.repo.UpdateTarget(ctx, room.ID, target); err != nil {
		return nil, err
	}

	room.TargetAmount = target
	return room, nil
}

// StartCycle moves the room from Idle to Active with the initiator as the
// designated payer. Legal for either participant, only when no cycle runs.
func (s *Service) StartCycle(ctx context.Context, initiator Participant) (*Room, error) {
	room, err := s.repo.GetActiveByUser(ctx, initiator.ID)
	if err != nil {
		return nil, err
	}
	if room.CycleActive() {
		return nil, ErrCycleActive
	}

	started, err := s.repo.BeginCycle(ctx, room.ID, initiator.ID, initiator.Email)
	if err != nil {
		return nil, err
	}
	if !started {
		return nil, ErrCycleActive
	}

	return s.repo.GetByID(ctx, room.ID)
}

// CompleteCycle closes the running cycle and hands the turn to the other
// participant. Rejected with a ShortfallError while the designated payer's
// spend is below a positive target. The handoff write is guarded on the
// observed cycle number, so of two racing completions exactly one wins.
func (s *Service) CompleteCycle(ctx context.Context, userID string) (*Room, error) {
	room, err := s.repo.GetActiveByUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	if !room.CycleActive() {
		return nil, ErrCycleNotActive
	}

	if room.TargetAmount.IsPositive() {
		totals, err := s.spend.CycleSpendByPayer(ctx, room.ID, *room.ActiveUserID, *room.CycleStartAt)
		if err != nil {
			return nil, err
		}
		spent := totals[*room.ActiveUserID]
		if spent.LessThan(room.TargetAmount) {
			return nil, &ShortfallError{Remaining: room.TargetAmount.Sub(spent)}
		}
	}

	next := room.Counterpart(*room.ActiveUserID)
	advanced, err := s.repo.AdvanceCycle(ctx, room.ID, room.CycleNumber, next.ID, next.Email)
	if err != nil {
		return nil, err
	}
	if !advanced {
		return nil, ErrCycleConflict
	}

	if s.notifier != nil {
		if err := s.notifier.Push(ctx, next.ID, "Cycle completed", "It is your turn to pay"); err != nil {
			s.log.BusinessError("rooms: turn change push failed", err, "room_id", room.ID, "user_id", next.ID)
		}
	}

	return s.repo.GetByID(ctx, room.ID)
}

// CycleStatus derives the caller's view of the running cycle. Totals are
// recomputed from the expense log rather than kept as running counters, so
// concurrent expense deletions cannot leave a stale aggregate behind.
func (s *Service) CycleStatus(ctx context.Context, userID string) (*CycleStatus, error) {
	room, err := s.repo.GetActiveByUser(ctx, userID)
	if err != nil {
		return nil, err
	}

	status := CycleStatus{
		CycleNumber: room.CycleNumber,
		Target:      room.TargetAmount,
		Remaining:   room.TargetAmount,
	}

	if !room.CycleActive() {
		status.CanStart = true
		return &status, nil
	}

	status.Active = true
	status.MyTurn = *room.ActiveUserID == userID
	status.StartedAt = room.CycleStartAt
	if room.ActiveUserEmail != nil {
		status.ActiveUserEmail = *room.ActiveUserEmail
	}

	totals, err := s.spend.CycleSpendByPayer(ctx, room.ID, *room.ActiveUserID, *room.CycleStartAt)
	if err != nil {
		return nil, err
	}

	status.MyTotal = totals[userID]
	status.RoommateTotal = totals[room.Counterpart(userID).ID]

	status.Remaining = room.TargetAmount.Sub(status.MyTotal)
	if status.Remaining.IsNegative() {
		status.Remaining = decimal.Zero
	}
	if room.TargetAmount.IsPositive() {
		percent, _ := status.MyTotal.Div(room.TargetAmount).Mul(decimal.NewFromInt(100)).Float64()
		if percent > 100 {
			percent = 100
		}
		status.ProgressPercent = percent
	}

	return &status, nil
}

// IsShortfall unwraps a ShortfallError if err carries one.
func IsShortfall(err error) (*ShortfallError, bool) {
	var shortfall *ShortfallError
	if errors.As(err, &shortfall) {
		return shortfall, true
	}
	return nil, false
}
