package app

import (
	"context"
	"errors"
	"time"

	expensesdomain "github.com/manishdhiman1/splitmateapp/internal/domain/expenses"
	roomsdomain "github.com/manishdhiman1/splitmateapp/internal/domain/rooms"
	userdomain "github.com/manishdhiman1/splitmateapp/internal/domain/user"
)

// userDirectory lets the rooms service resolve invitees against the users
// table without depending on the user domain directly.
type userDirectory struct {
	users *userdomain.Service
}

func (d userDirectory) LookupByEmail(ctx context.Context, email string) (roomsdomain.Participant, error) {
	u, err := d.users.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, userdomain.ErrUserNotFound) {
			return roomsdomain.Participant{}, roomsdomain.ErrRoommateNotFound
		}
		return roomsdomain.Participant{}, err
	}
	return roomsdomain.Participant{ID: u.ID, Email: u.Email}, nil
}

// roomSource projects the caller's active room into the slice the expense
// log needs. It wraps the repository rather than the rooms service so the
// two services can be constructed without a cycle.
type roomSource struct {
	rooms roomsdomain.Repository
}

func (r roomSource) ActiveRoom(ctx context.Context, userID string) (expensesdomain.RoomInfo, error) {
	room, err := r.rooms.GetActiveByUser(ctx, userID)
	if err != nil {
		return expensesdomain.RoomInfo{}, err
	}
	return expensesdomain.RoomInfo{
		ID:           room.ID,
		OwnerID:      room.OwnerID,
		RoommateID:   room.RoommateID,
		CycleNumber:  room.CycleNumber,
		ActiveUserID: room.ActiveUserID,
	}, nil
}

func (r roomSource) MarkExpense(ctx context.Context, roomID string, at time.Time) error {
	return r.rooms.TouchLastExpense(ctx, roomID, at)
}
