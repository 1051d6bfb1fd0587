package rooms

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"github.com/manishdhiman1/splitmateapp/pkg/logger"
)

type fakeRoomRepo struct {
	rooms       map[string]*Room
	failAdvance bool
}

func newFakeRoomRepo() *fakeRoomRepo {
	return &fakeRoomRepo{rooms: make(map[string]*Room)}
}

func (r *fakeRoomRepo) Transaction(ctx context.Context, fn func(Repository) error) error {
	return fn(r)
}

func (r *fakeRoomRepo) Create(ctx context.Context, room *Room) error {
	copied := *room
	r.rooms[room.ID] = &copied
	return nil
}

func (r *fakeRoomRepo) GetByID(ctx context.Context, roomID string) (*Room, error) {
	room, ok := r.rooms[roomID]
	if !ok {
		return nil, ErrRoomNotFound
	}
	copied := *room
	return &copied, nil
}

func (r *fakeRoomRepo) GetActiveByUser(ctx context.Context, userID string) (*Room, error) {
	for _, room := range r.rooms {
		if room.Status == StatusActive && room.HasParticipant(userID) {
			copied := *room
			return &copied, nil
		}
	}
	return nil, ErrRoomNotFound
}

func (r *fakeRoomRepo) HasActiveRoom(ctx context.Context, userID string) (bool, error) {
	for _, room := range r.rooms {
		if room.Status == StatusActive && room.HasParticipant(userID) {
			return true, nil
		}
	}
	return false, nil
}

func (r *fakeRoomRepo) SetStatus(ctx context.Context, roomID, status string) error {
	room, ok := r.rooms[roomID]
	if !ok {
		return ErrRoomNotFound
	}
	room.Status = status
	return nil
}

func (r *fakeRoomRepo) UpdateTarget(ctx context.Context, roomID string, target decimal.Decimal) error {
	room, ok := r.rooms[roomID]
	if !ok {
		return ErrRoomNotFound
	}
	room.TargetAmount = target
	return nil
}

func (r *fakeRoomRepo) BeginCycle(ctx context.Context, roomID, userID, userEmail string) (bool, error) {
	room, ok := r.rooms[roomID]
	if !ok || room.Status != StatusActive {
		return false, nil
	}
	if room.ActiveUserID != nil || room.CycleStartAt != nil {
		return false, nil
	}
	now := time.Now().UTC()
	room.ActiveUserID = &userID
	room.ActiveUserEmail = &userEmail
	room.CycleStartAt = &now
	room.CycleNumber++
	return true, nil
}

func (r *fakeRoomRepo) AdvanceCycle(ctx context.Context, roomID string, fromCycle int64, nextID, nextEmail string) (bool, error) {
	if r.failAdvance {
		return false, nil
	}
	room, ok := r.rooms[roomID]
	if !ok || room.Status != StatusActive || room.CycleNumber != fromCycle {
		return false, nil
	}
	now := time.Now().UTC()
	room.ActiveUserID = &nextID
	room.ActiveUserEmail = &nextEmail
	room.CycleStartAt = &now
	room.CycleNumber++
	return true, nil
}

func (r *fakeRoomRepo) TouchLastExpense(ctx context.Context, roomID string, at time.Time) error {
	room, ok := r.rooms[roomID]
	if !ok {
		return ErrRoomNotFound
	}
	room.LastExpenseAt = &at
	return nil
}

type fakeDirectory struct {
	users map[string]Participant
}

func (d fakeDirectory) LookupByEmail(ctx context.Context, email string) (Participant, error) {
	user, ok := d.users[email]
	if !ok {
		return Participant{}, ErrRoommateNotFound
	}
	return user, nil
}

type fakeSpendReader struct {
	totals map[string]decimal.Decimal
	since  time.Time
}

func (s *fakeSpendReader) CycleSpendByPayer(ctx context.Context, roomID, cycleUserID string, since time.Time) (map[string]decimal.Decimal, error) {
	s.since = since
	return s.totals, nil
}

type fakePush struct {
	pushes []string
}

func (p *fakePush) Push(ctx context.Context, userID, title, body string) error {
	p.pushes = append(p.pushes, userID+"|"+title+"|"+body)
	return nil
}

func testLogger() logger.Logger {
	return logger.New(io.Discard, slog.LevelError, "text")
}

const (
	ownerID    = "owner-1"
	ownerEmail = "owner@example.com"
	mateID     = "mate-1"
	mateEmail  = "mate@example.com"
)

func newTestService(repo *fakeRoomRepo, spend *fakeSpendReader, push *fakePush) *Service {
	directory := fakeDirectory{users: map[string]Participant{
		mateEmail: {ID: mateID, Email: mateEmail},
	}}
	return NewService(repo, directory, spend, push, decimal.NewFromInt(1000), testLogger())
}

func seedRoom(repo *fakeRoomRepo) *Room {
	room := &Room{
		ID:            "room-1",
		Name:          "Flat 4B",
		OwnerID:       ownerID,
		OwnerEmail:    ownerEmail,
		RoommateID:    mateID,
		RoommateEmail: mateEmail,
		Status:        StatusActive,
		TargetAmount:  decimal.NewFromInt(1000),
	}
	repo.rooms[room.ID] = room
	return room
}

func TestCreateRoomUsesDefaultTarget(t *testing.T) {
	repo := newFakeRoomRepo()
	svc := newTestService(repo, &fakeSpendReader{}, &fakePush{})

	room, err := svc.CreateRoom(context.Background(), Participant{ID: ownerID, Email: ownerEmail}, CreateRoomInput{
		Name:          "  Flat 4B  ",
		RoommateEmail: mateEmail,
	})
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if room.Name != "Flat 4B" {
		t.Fatalf("expected name trimmed, got %q", room.Name)
	}
	if !room.TargetAmount.Equal(decimal.NewFromInt(1000)) {
		t.Fatalf("expected default target 1000, got %s", room.TargetAmount)
	}
	if room.RoommateID != mateID {
		t.Fatalf("expected roommate %s, got %s", mateID, room.RoommateID)
	}
	if room.CycleNumber != 0 || room.ActiveUserID != nil {
		t.Fatalf("expected new room idle, got cycle=%d active=%v", room.CycleNumber, room.ActiveUserID)
	}
}

func TestCreateRoomSelfInvite(t *testing.T) {
	repo := newFakeRoomRepo()
	svc := newTestService(repo, &fakeSpendReader{}, &fakePush{})

	_, err := svc.CreateRoom(context.Background(), Participant{ID: ownerID, Email: ownerEmail}, CreateRoomInput{
		Name:          "Flat",
		RoommateEmail: "Owner@Example.com",
	})
	if !errors.Is(err, ErrSelfInvite) {
		t.Fatalf("expected ErrSelfInvite, got %v", err)
	}
}

func TestCreateRoomRoommateAlreadyBusy(t *testing.T) {
	repo := newFakeRoomRepo()
	repo.rooms["other"] = &Room{
		ID:         "other",
		OwnerID:    mateID,
		RoommateID: "someone-else",
		Status:     StatusActive,
	}
	svc := newTestService(repo, &fakeSpendReader{}, &fakePush{})

	_, err := svc.CreateRoom(context.Background(), Participant{ID: ownerID, Email: ownerEmail}, CreateRoomInput{
		Name:          "Flat",
		RoommateEmail: mateEmail,
	})
	if !errors.Is(err, ErrRoommateInRoom) {
		t.Fatalf("expected ErrRoommateInRoom, got %v", err)
	}
}

func TestCreateRoomOwnerAlreadyBusy(t *testing.T) {
	repo := newFakeRoomRepo()
	seedRoom(repo)
	svc := newTestService(repo, &fakeSpendReader{}, &fakePush{})

	_, err := svc.CreateRoom(context.Background(), Participant{ID: ownerID, Email: ownerEmail}, CreateRoomInput{
		Name:          "Second Flat",
		RoommateEmail: mateEmail,
	})
	if !errors.Is(err, ErrAlreadyInRoom) {
		t.Fatalf("expected ErrAlreadyInRoom, got %v", err)
	}
}

func TestDeactivateRoomOwnerOnly(t *testing.T) {
	repo := newFakeRoomRepo()
	seedRoom(repo)
	svc := newTestService(repo, &fakeSpendReader{}, &fakePush{})

	if err := svc.DeactivateRoom(context.Background(), mateID); !errors.Is(err, ErrNotOwner) {
		t.Fatalf("expected ErrNotOwner, got %v", err)
	}
	if err := svc.DeactivateRoom(context.Background(), ownerID); err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if repo.rooms["room-1"].Status != StatusInactive {
		t.Fatalf("expected room inactive, got %s", repo.rooms["room-1"].Status)
	}
}

func TestStartCycleAssignsInitiator(t *testing.T) {
	repo := newFakeRoomRepo()
	seedRoom(repo)
	svc := newTestService(repo, &fakeSpendReader{}, &fakePush{})

	room, err := svc.StartCycle(context.Background(), Participant{ID: mateID, Email: mateEmail})
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if room.ActiveUserID == nil || *room.ActiveUserID != mateID {
		t.Fatalf("expected active user %s, got %v", mateID, room.ActiveUserID)
	}
	if room.CycleNumber != 1 {
		t.Fatalf("expected cycle number 1, got %d", room.CycleNumber)
	}
	if room.CycleStartAt == nil {
		t.Fatalf("expected cycle start set")
	}
}

func TestStartCycleRejectedWhileActive(t *testing.T) {
	repo := newFakeRoomRepo()
	seedRoom(repo)
	svc := newTestService(repo, &fakeSpendReader{}, &fakePush{})

	if _, err := svc.StartCycle(context.Background(), Participant{ID: ownerID, Email: ownerEmail}); err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	_, err := svc.StartCycle(context.Background(), Participant{ID: mateID, Email: mateEmail})
	if !errors.Is(err, ErrCycleActive) {
		t.Fatalf("expected ErrCycleActive, got %v", err)
	}
}

func TestCompleteCycleAlternatesTurn(t *testing.T) {
	repo := newFakeRoomRepo()
	seedRoom(repo)
	spend := &fakeSpendReader{totals: map[string]decimal.Decimal{
		ownerID: decimal.NewFromInt(1200),
	}}
	push := &fakePush{}
	svc := newTestService(repo, spend, push)

	if _, err := svc.StartCycle(context.Background(), Participant{ID: ownerID, Email: ownerEmail}); err != nil {
		t.Fatalf("start: %v", err)
	}

	room, err := svc.CompleteCycle(context.Background(), ownerID)
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if room.ActiveUserID == nil || *room.ActiveUserID != mateID {
		t.Fatalf("expected turn handed to %s, got %v", mateID, room.ActiveUserID)
	}
	if room.CycleNumber != 2 {
		t.Fatalf("expected cycle number 2, got %d", room.CycleNumber)
	}
	if len(push.pushes) != 1 || push.pushes[0] != mateID+"|Cycle completed|It is your turn to pay" {
		t.Fatalf("expected turn-change push to roommate, got %v", push.pushes)
	}
}

func TestCompleteCycleShortfall(t *testing.T) {
	repo := newFakeRoomRepo()
	seedRoom(repo)
	spend := &fakeSpendReader{totals: map[string]decimal.Decimal{
		ownerID: decimal.NewFromInt(400),
	}}
	svc := newTestService(repo, spend, &fakePush{})

	if _, err := svc.StartCycle(context.Background(), Participant{ID: ownerID, Email: ownerEmail}); err != nil {
		t.Fatalf("start: %v", err)
	}

	_, err := svc.CompleteCycle(context.Background(), ownerID)
	shortfall, ok := IsShortfall(err)
	if !ok {
		t.Fatalf("expected shortfall error, got %v", err)
	}
	if !shortfall.Remaining.Equal(decimal.NewFromInt(600)) {
		t.Fatalf("expected remaining 600, got %s", shortfall.Remaining)
	}

	room := repo.rooms["room-1"]
	if room.ActiveUserID == nil || *room.ActiveUserID != ownerID {
		t.Fatalf("expected turn unchanged, got %v", room.ActiveUserID)
	}
	if room.CycleNumber != 1 {
		t.Fatalf("expected cycle number unchanged, got %d", room.CycleNumber)
	}
}

func TestCompleteCycleZeroTargetSkipsGate(t *testing.T) {
	repo := newFakeRoomRepo()
	room := seedRoom(repo)
	room.TargetAmount = decimal.Zero
	spend := &fakeSpendReader{}
	svc := newTestService(repo, spend, &fakePush{})

	if _, err := svc.StartCycle(context.Background(), Participant{ID: ownerID, Email: ownerEmail}); err != nil {
		t.Fatalf("start: %v", err)
	}

	result, err := svc.CompleteCycle(context.Background(), ownerID)
	if err != nil {
		t.Fatalf("expected no error with zero target, got %v", err)
	}
	if result.ActiveUserID == nil || *result.ActiveUserID != mateID {
		t.Fatalf("expected turn handed over, got %v", result.ActiveUserID)
	}
}

func TestCompleteCycleRequiresActiveCycle(t *testing.T) {
	repo := newFakeRoomRepo()
	seedRoom(repo)
	svc := newTestService(repo, &fakeSpendReader{}, &fakePush{})

	_, err := svc.CompleteCycle(context.Background(), ownerID)
	if !errors.Is(err, ErrCycleNotActive) {
		t.Fatalf("expected ErrCycleNotActive, got %v", err)
	}
}

func TestCompleteCycleConcurrentConflict(t *testing.T) {
	repo := newFakeRoomRepo()
	seedRoom(repo)
	spend := &fakeSpendReader{totals: map[string]decimal.Decimal{
		ownerID: decimal.NewFromInt(1000),
	}}
	svc := newTestService(repo, spend, &fakePush{})

	if _, err := svc.StartCycle(context.Background(), Participant{ID: ownerID, Email: ownerEmail}); err != nil {
		t.Fatalf("start: %v", err)
	}

	repo.failAdvance = true
	_, err := svc.CompleteCycle(context.Background(), ownerID)
	if !errors.Is(err, ErrCycleConflict) {
		t.Fatalf("expected ErrCycleConflict, got %v", err)
	}
}

func TestCycleStatusIdle(t *testing.T) {
	repo := newFakeRoomRepo()
	seedRoom(repo)
	svc := newTestService(repo, &fakeSpendReader{}, &fakePush{})

	status, err := svc.CycleStatus(context.Background(), ownerID)
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if status.Active || !status.CanStart {
		t.Fatalf("expected idle status, got %+v", status)
	}
	if !status.Remaining.Equal(decimal.NewFromInt(1000)) {
		t.Fatalf("expected remaining to mirror target, got %s", status.Remaining)
	}
}

func TestCycleStatusProgress(t *testing.T) {
	repo := newFakeRoomRepo()
	seedRoom(repo)
	spend := &fakeSpendReader{totals: map[string]decimal.Decimal{
		ownerID: decimal.NewFromInt(250),
		mateID:  decimal.NewFromInt(90),
	}}
	svc := newTestService(repo, spend, &fakePush{})

	if _, err := svc.StartCycle(context.Background(), Participant{ID: ownerID, Email: ownerEmail}); err != nil {
		t.Fatalf("start: %v", err)
	}

	status, err := svc.CycleStatus(context.Background(), ownerID)
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if !status.Active || !status.MyTurn {
		t.Fatalf("expected active cycle on caller's turn, got %+v", status)
	}
	if !status.MyTotal.Equal(decimal.NewFromInt(250)) {
		t.Fatalf("expected my total 250, got %s", status.MyTotal)
	}
	if !status.RoommateTotal.Equal(decimal.NewFromInt(90)) {
		t.Fatalf("expected roommate total 90, got %s", status.RoommateTotal)
	}
	if !status.Remaining.Equal(decimal.NewFromInt(750)) {
		t.Fatalf("expected remaining 750, got %s", status.Remaining)
	}
	if status.ProgressPercent != 25 {
		t.Fatalf("expected progress 25, got %v", status.ProgressPercent)
	}

	mateView, err := svc.CycleStatus(context.Background(), mateID)
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if mateView.MyTurn {
		t.Fatalf("expected not roommate's turn")
	}
	if !mateView.MyTotal.Equal(decimal.NewFromInt(90)) {
		t.Fatalf("expected roommate view total 90, got %s", mateView.MyTotal)
	}
}

func TestCycleStatusOverspendClamps(t *testing.T) {
	repo := newFakeRoomRepo()
	seedRoom(repo)
	spend := &fakeSpendReader{totals: map[string]decimal.Decimal{
		ownerID: decimal.NewFromInt(1500),
	}}
	svc := newTestService(repo, spend, &fakePush{})

	if _, err := svc.StartCycle(context.Background(), Participant{ID: ownerID, Email: ownerEmail}); err != nil {
		t.Fatalf("start: %v", err)
	}

	status, err := svc.CycleStatus(context.Background(), ownerID)
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if !status.Remaining.Equal(decimal.Zero) {
		t.Fatalf("expected remaining clamped to zero, got %s", status.Remaining)
	}
	if status.ProgressPercent != 100 {
		t.Fatalf("expected progress capped at 100, got %v", status.ProgressPercent)
	}
}
