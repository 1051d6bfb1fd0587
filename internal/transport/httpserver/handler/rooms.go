package handler

import (
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	roomsdomain "github.com/manishdhiman1/splitmateapp/internal/domain/rooms"
	"github.com/manishdhiman1/splitmateapp/internal/transport/httpserver/middleware"
)

type createRoomRequest struct {
	Name          string `json:"name"`
	RoommateEmail string `json:"roommate_email"`
}

type updateTargetRequest struct {
	TargetAmount decimal.Decimal `json:"target_amount"`
}

type roomResponse struct {
	ID              string          `json:"id"`
	Name            string          `json:"name"`
	OwnerID         string          `json:"owner_id"`
	OwnerEmail      string          `json:"owner_email"`
	RoommateID      string          `json:"roommate_id"`
	RoommateEmail   string          `json:"roommate_email"`
	Status          string          `json:"status"`
	TargetAmount    decimal.Decimal `json:"target_amount"`
	ActiveUserID    *string         `json:"active_user_id"`
	ActiveUserEmail *string         `json:"active_user_email"`
	CycleStartAt    *time.Time      `json:"cycle_start_at"`
	CycleNumber     int64           `json:"cycle_number"`
	LastExpenseAt   *time.Time      `json:"last_expense_at"`
	CreatedAt       time.Time       `json:"created_at"`
}

type cycleStatusResponse struct {
	Active          bool            `json:"active"`
	MyTurn          bool            `json:"my_turn"`
	CanStart        bool            `json:"can_start"`
	CycleNumber     int64           `json:"cycle_number"`
	StartedAt       *time.Time      `json:"started_at,omitempty"`
	ActiveUserEmail string          `json:"active_user_email,omitempty"`
	Target          decimal.Decimal `json:"target"`
	MyTotal         decimal.Decimal `json:"my_total"`
	RoommateTotal   decimal.Decimal `json:"roommate_total"`
	Remaining       decimal.Decimal `json:"remaining"`
	ProgressPercent float64         `json:"progress_percent"`
}

func toRoomResponse(room *roomsdomain.Room) roomResponse {
	return roomResponse{
		ID:              room.ID,
		Name:            room.Name,
		OwnerID:         room.OwnerID,
		OwnerEmail:      room.OwnerEmail,
		RoommateID:      room.RoommateID,
		RoommateEmail:   room.RoommateEmail,
		Status:          room.Status,
		TargetAmount:    room.TargetAmount,
		ActiveUserID:    room.ActiveUserID,
		ActiveUserEmail: room.ActiveUserEmail,
		CycleStartAt:    room.CycleStartAt,
		CycleNumber:     room.CycleNumber,
		LastExpenseAt:   room.LastExpenseAt,
		CreatedAt:       room.CreatedAt,
	}
}

func (h *Handlers) GetMyRoom(w http.ResponseWriter, r *http.Request) {
	user, ok := middleware.UserFromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "invalid_token", "invalid token")
		return
	}

	room, err := h.Rooms.GetMyRoom(r.Context(), user.ID)
	if err != nil {
		if errors.Is(err, roomsdomain.ErrRoomNotFound) {
			h.log.BusinessError("rooms.get_me: room not found", err, "user_id", user.ID)
			writeError(w, http.StatusNotFound, "room_not_found", "room not found")
			return
		}
		h.log.InternalError("rooms.get_me: get room failed", err, "user_id", user.ID)
		writeError(w, http.StatusInternalServerError, "internal_error", "internal error")
		return
	}

	writeJSON(w, http.StatusOK, toRoomResponse(room))
}

func (h *Handlers) CreateRoom(w http.ResponseWriter, r *http.Request) {
	var req createRoomRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_json", "invalid json body")
		return
	}
	req.Name = strings.TrimSpace(req.Name)
	req.RoommateEmail = strings.TrimSpace(req.RoommateEmail)
	if req.Name == "" || req.RoommateEmail == "" {
		writeError(w, http.StatusBadRequest, "invalid_request", "name and roommate_email are required")
		return
	}

	user, ok := middleware.UserFromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "invalid_token", "invalid token")
		return
	}

	owner := roomsdomain.Participant{ID: user.ID, Email: user.Email}
	room, err := h.Rooms.CreateRoom(r.Context(), owner, roomsdomain.CreateRoomInput{
		Name:          req.Name,
		RoommateEmail: req.RoommateEmail,
	})
	if err != nil {
		switch {
		case errors.Is(err, roomsdomain.ErrSelfInvite):
			h.log.BusinessError("rooms.create: self invite", err, "user_id", user.ID)
			writeError(w, http.StatusBadRequest, "self_invite", "cannot invite yourself")
		case errors.Is(err, roomsdomain.ErrRoommateNotFound):
			h.log.BusinessError("rooms.create: roommate not found", err, "user_id", user.ID)
			writeError(w, http.StatusNotFound, "user_not_found", "no user exists with this email")
		case errors.Is(err, roomsdomain.ErrRoommateInRoom):
			h.log.BusinessError("rooms.create: roommate busy", err, "user_id", user.ID)
			writeError(w, http.StatusConflict, "roommate_in_room", "this user is already part of another active room")
		case errors.Is(err, roomsdomain.ErrAlreadyInRoom):
			h.log.BusinessError("rooms.create: already in room", err, "user_id", user.ID)
			writeError(w, http.StatusConflict, "already_in_room", "already in an active room")
		default:
			h.log.InternalError("rooms.create: create failed", err, "user_id", user.ID)
			writeError(w, http.StatusInternalServerError, "internal_error", "internal error")
		}
		return
	}

	writeJSON(w, http.StatusCreated, toRoomResponse(room))
}

func (h *Handlers) DeleteRoom(w http.ResponseWriter, r *http.Request) {
	user, ok := middleware.UserFromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "invalid_token", "invalid token")
		return
	}

	if err := h.Rooms.DeactivateRoom(r.Context(), user.ID); err != nil {
		switch {
		case errors.Is(err, roomsdomain.ErrRoomNotFound):
			h.log.BusinessError("rooms.delete: room not found", err, "user_id", user.ID)
			writeError(w, http.StatusNotFound, "room_not_found", "room not found")
		case errors.Is(err, roomsdomain.ErrNotOwner):
			h.log.BusinessError("rooms.delete: not owner", err, "user_id", user.ID)
			writeError(w, http.StatusForbidden, "not_owner", "only the owner can delete the room")
		default:
			h.log.InternalError("rooms.delete: deactivate failed", err, "user_id", user.ID)
			writeError(w, http.StatusInternalServerError, "internal_error", "internal error")
		}
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

func (h *Handlers) UpdateTarget(w http.ResponseWriter, r *http.Request) {
	var req updateTargetRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_json", "invalid json body")
		return
	}
	if !req.TargetAmount.IsPositive() {
		writeError(w, http.StatusBadRequest, "invalid_request", "target_amount must be positive")
		return
	}

	user, ok := middleware.UserFromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "invalid_token", "invalid token")
		return
	}

	room, err := h.Rooms.UpdateTarget(r.Context(), user.ID, req.TargetAmount)
	if err != nil {
		if errors.Is(err, roomsdomain.ErrRoomNotFound) {
			h.log.BusinessError("rooms.update_target: room not found", err, "user_id", user.ID)
			writeError(w, http.StatusNotFound, "room_not_found", "room not found")
			return
		}
		h.log.InternalError("rooms.update_target: update failed", err, "user_id", user.ID)
		writeError(w, http.StatusInternalServerError, "internal_error", "internal error")
		return
	}

	writeJSON(w, http.StatusOK, toRoomResponse(room))
}

func (h *Handlers) CycleStatus(w http.ResponseWriter, r *http.Request) {
	user, ok := middleware.UserFromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "invalid_token", "invalid token")
		return
	}

	status, err := h.Rooms.CycleStatus(r.Context(), user.ID)
	if err != nil {
		if errors.Is(err, roomsdomain.ErrRoomNotFound) {
			h.log.BusinessError("rooms.cycle_status: room not found", err, "user_id", user.ID)
			writeError(w, http.StatusNotFound, "room_not_found", "room not found")
			return
		}
		h.log.InternalError("rooms.cycle_status: compute failed", err, "user_id", user.ID)
		writeError(w, http.StatusInternalServerError, "internal_error", "internal error")
		return
	}

	writeJSON(w, http.StatusOK, cycleStatusResponse{
		Active:          status.Active,
		MyTurn:          status.MyTurn,
		CanStart:        status.CanStart,
		CycleNumber:     status.CycleNumber,
		StartedAt:       status.StartedAt,
		ActiveUserEmail: status.ActiveUserEmail,
		Target:          status.Target,
		MyTotal:         status.MyTotal,
		RoommateTotal:   status.RoommateTotal,
		Remaining:       status.Remaining,
		ProgressPercent: status.ProgressPercent,
	})
}

func (h *Handlers) StartCycle(w http.ResponseWriter, r *http.Request) {
	user, ok := middleware.UserFromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "invalid_token", "invalid token")
		return
	}

	initiator := roomsdomain.Participant{ID: user.ID, Email: user.Email}
	room, err := h.Rooms.StartCycle(r.Context(), initiator)
	if err != nil {
		switch {
		case errors.Is(err, roomsdomain.ErrRoomNotFound):
			h.log.BusinessError("rooms.start_cycle: room not found", err, "user_id", user.ID)
			writeError(w, http.StatusNotFound, "room_not_found", "room not found")
		case errors.Is(err, roomsdomain.ErrCycleActive):
			h.log.BusinessError("rooms.start_cycle: cycle already active", err, "user_id", user.ID)
			writeError(w, http.StatusConflict, "cycle_active", "a cycle is already running")
		default:
			h.log.InternalError("rooms.start_cycle: start failed", err, "user_id", user.ID)
			writeError(w, http.StatusInternalServerError, "internal_error", "internal error")
		}
		return
	}

	writeJSON(w, http.StatusOK, toRoomResponse(room))
}

func (h *Handlers) CompleteCycle(w http.ResponseWriter, r *http.Request) {
	user, ok := middleware.UserFromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "invalid_token", "invalid token")
		return
	}

	room, err := h.Rooms.CompleteCycle(r.Context(), user.ID)
	if err != nil {
		if shortfall, ok := roomsdomain.IsShortfall(err); ok {
			h.log.BusinessError("rooms.complete_cycle: target not met", err, "user_id", user.ID)
			message := fmt.Sprintf("you need to spend %s more to complete the cycle", shortfall.Remaining.StringFixed(2))
			writeError(w, http.StatusConflict, "target_not_met", message)
			return
		}
		switch {
		case errors.Is(err, roomsdomain.ErrRoomNotFound):
			h.log.BusinessError("rooms.complete_cycle: room not found", err, "user_id", user.ID)
			writeError(w, http.StatusNotFound, "room_not_found", "room not found")
		case errors.Is(err, roomsdomain.ErrCycleNotActive):
			h.log.BusinessError("rooms.complete_cycle: no active cycle", err, "user_id", user.ID)
			writeError(w, http.StatusConflict, "cycle_not_active", "no active cycle")
		case errors.Is(err, roomsdomain.ErrCycleConflict):
			h.log.BusinessError("rooms.complete_cycle: concurrent completion", err, "user_id", user.ID)
			writeError(w, http.StatusConflict, "cycle_conflict", "cycle changed, reload and retry")
		default:
			h.log.InternalError("rooms.complete_cycle: complete failed", err, "user_id", user.ID)
			writeError(w, http.StatusInternalServerError, "internal_error", "internal error")
		}
		return
	}

	writeJSON(w, http.StatusOK, toRoomResponse(room))
}
