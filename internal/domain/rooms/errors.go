package rooms

import (
	"errors"
	"fmt"

	"github.com/shopspring/decimal"
)

var (
	ErrRoomNotFound     = errors.New("room not found")
	ErrNotOwner         = errors.New("only the owner can delete the room")
	ErrSelfInvite       = errors.New("cannot invite yourself")
	ErrRoommateNotFound = errors.New("no user exists with this email")
	ErrRoommateInRoom   = errors.New("roommate already in an active room")
	ErrAlreadyInRoom    = errors.New("already in an active room")
	ErrCycleActive      = errors.New("cycle already active")
	ErrCycleNotActive   = errors.New("no active cycle")
	ErrCycleConflict    = errors.New("cycle changed concurrently")
)

// ShortfallError rejects a cycle completion while the designated payer is
// still below target. Remaining carries target minus spend for the caller.
type ShortfallError struct {
	Remaining decimal.Decimal
}

func (e *ShortfallError) Error() string {
	return fmt.Sprintf("cycle target not met: %s remaining", e.Remaining.StringFixed(2))
}
