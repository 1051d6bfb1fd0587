package handler

import (
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	remindersdomain "github.com/manishdhiman1/splitmateapp/internal/domain/reminders"
	"github.com/manishdhiman1/splitmateapp/internal/transport/httpserver/middleware"
)

type reminderRequest struct {
	Name            string `json:"name"`
	Message         string `json:"message"`
	Type            string `json:"type"`
	Time            string `json:"time"`
	RepeatDays      []int  `json:"repeat_days"`
	IntervalMinutes int    `json:"interval_minutes"`
}

type reminderResponse struct {
	ID              string    `json:"id"`
	Name            string    `json:"name"`
	Message         string    `json:"message"`
	Type            string    `json:"type"`
	Time            string    `json:"time,omitempty"`
	RepeatDays      []int     `json:"repeat_days,omitempty"`
	IntervalMinutes int       `json:"interval_minutes,omitempty"`
	IsActive        bool      `json:"is_active"`
	CreatedAt       time.Time `json:"created_at"`
}

func toReminderResponse(reminder *remindersdomain.Reminder) reminderResponse {
	return reminderResponse{
		ID:              reminder.ID,
		Name:            reminder.Name,
		Message:         reminder.Message,
		Type:            reminder.Type,
		Time:            reminder.Time,
		RepeatDays:      reminder.RepeatDays,
		IntervalMinutes: reminder.IntervalMinutes,
		IsActive:        reminder.IsActive,
		CreatedAt:       reminder.CreatedAt,
	}
}

func (h *Handlers) ListReminders(w http.ResponseWriter, r *http.Request) {
	user, ok := middleware.UserFromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "invalid_token", "invalid token")
		return
	}

	reminders, err := h.Reminders.List(r.Context(), user.ID)
	if err != nil {
		h.log.InternalError("reminders.list: list failed", err, "user_id", user.ID)
		writeError(w, http.StatusInternalServerError, "internal_error", "internal error")
		return
	}

	out := make([]reminderResponse, 0, len(reminders))
	for i := range reminders {
		out = append(out, toReminderResponse(&reminders[i]))
	}
	writeJSON(w, http.StatusOK, out)
}

func (h *Handlers) CreateReminder(w http.ResponseWriter, r *http.Request) {
	var req reminderRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_json", "invalid json body")
		return
	}

	user, ok := middleware.UserFromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "invalid_token", "invalid token")
		return
	}

	reminder, err := h.Reminders.Create(r.Context(), user.ID, remindersdomain.ReminderInput{
		Name:            req.Name,
		Message:         req.Message,
		Type:            req.Type,
		Time:            req.Time,
		RepeatDays:      req.RepeatDays,
		IntervalMinutes: req.IntervalMinutes,
	})
	if err != nil {
		if h.writeReminderError(w, "reminders.create", user.ID, err) {
			return
		}
		h.log.InternalError("reminders.create: create failed", err, "user_id", user.ID)
		writeError(w, http.StatusInternalServerError, "internal_error", "internal error")
		return
	}

	writeJSON(w, http.StatusCreated, toReminderResponse(reminder))
}

func (h *Handlers) UpdateReminder(w http.ResponseWriter, r *http.Request) {
	var req reminderRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_json", "invalid json body")
		return
	}

	user, ok := middleware.UserFromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "invalid_token", "invalid token")
		return
	}

	reminderID := chi.URLParam(r, "id")
	reminder, err := h.Reminders.Update(r.Context(), user.ID, reminderID, remindersdomain.ReminderInput{
		Name:            req.Name,
		Message:         req.Message,
		Type:            req.Type,
		Time:            req.Time,
		RepeatDays:      req.RepeatDays,
		IntervalMinutes: req.IntervalMinutes,
	})
	if err != nil {
		if h.writeReminderError(w, "reminders.update", user.ID, err) {
			return
		}
		h.log.InternalError("reminders.update: update failed", err, "user_id", user.ID, "reminder_id", reminderID)
		writeError(w, http.StatusInternalServerError, "internal_error", "internal error")
		return
	}

	writeJSON(w, http.StatusOK, toReminderResponse(reminder))
}

func (h *Handlers) ToggleReminder(w http.ResponseWriter, r *http.Request) {
	user, ok := middleware.UserFromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "invalid_token", "invalid token")
		return
	}

	reminderID := chi.URLParam(r, "id")
	reminder, err := h.Reminders.Toggle(r.Context(), user.ID, reminderID)
	if err != nil {
		if h.writeReminderError(w, "reminders.toggle", user.ID, err) {
			return
		}
		h.log.InternalError("reminders.toggle: toggle failed", err, "user_id", user.ID, "reminder_id", reminderID)
		writeError(w, http.StatusInternalServerError, "internal_error", "internal error")
		return
	}

	writeJSON(w, http.StatusOK, toReminderResponse(reminder))
}

func (h *Handlers) DeleteReminder(w http.ResponseWriter, r *http.Request) {
	user, ok := middleware.UserFromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "invalid_token", "invalid token")
		return
	}

	reminderID := chi.URLParam(r, "id")
	if err := h.Reminders.Delete(r.Context(), user.ID, reminderID); err != nil {
		if h.writeReminderError(w, "reminders.delete", user.ID, err) {
			return
		}
		h.log.InternalError("reminders.delete: delete failed", err, "user_id", user.ID, "reminder_id", reminderID)
		writeError(w, http.StatusInternalServerError, "internal_error", "internal error")
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// writeReminderError maps the reminder domain errors shared by every endpoint.
// Returns false when the error is not one of them.
func (h *Handlers) writeReminderError(w http.ResponseWriter, op, userID string, err error) bool {
	switch {
	case errors.Is(err, remindersdomain.ErrReminderNotFound):
		h.log.BusinessError(op+": reminder not found", err, "user_id", userID)
		writeError(w, http.StatusNotFound, "reminder_not_found", "reminder not found")
	case errors.Is(err, remindersdomain.ErrNotReminderOwner):
		h.log.BusinessError(op+": not owner", err, "user_id", userID)
		writeError(w, http.StatusForbidden, "not_reminder_owner", "reminder belongs to another user")
	case errors.Is(err, remindersdomain.ErrInvalidClock):
		h.log.BusinessError(op+": invalid time", err, "user_id", userID)
		writeError(w, http.StatusBadRequest, "invalid_time", "time must look like 07:30 PM")
	case errors.Is(err, remindersdomain.ErrInvalidRepeatDays):
		h.log.BusinessError(op+": invalid repeat days", err, "user_id", userID)
		writeError(w, http.StatusBadRequest, "invalid_repeat_days", "repeat_days must be weekday numbers 0 to 6")
	case errors.Is(err, remindersdomain.ErrInvalidInput):
		h.log.BusinessError(op+": invalid input", err, "user_id", userID)
		writeError(w, http.StatusBadRequest, "invalid_request", err.Error())
	default:
		return false
	}
	return true
}
