//go:build e2e
// +build e2e

package e2e_test

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"strings"
	"testing"
	"time"

	"gorm.io/gorm"

	"github.com/manishdhiman1/splitmateapp/internal/config"
	"github.com/manishdhiman1/splitmateapp/internal/db"
	expensesdomain "github.com/manishdhiman1/splitmateapp/internal/domain/expenses"
	remindersdomain "github.com/manishdhiman1/splitmateapp/internal/domain/reminders"
	roomsdomain "github.com/manishdhiman1/splitmateapp/internal/domain/rooms"
	userdomain "github.com/manishdhiman1/splitmateapp/internal/domain/user"
	"github.com/manishdhiman1/splitmateapp/internal/notify"
	expensesrepo "github.com/manishdhiman1/splitmateapp/internal/repository/postgres/expenses"
	remindersrepo "github.com/manishdhiman1/splitmateapp/internal/repository/postgres/reminders"
	roomsrepo "github.com/manishdhiman1/splitmateapp/internal/repository/postgres/rooms"
	userrepo "github.com/manishdhiman1/splitmateapp/internal/repository/postgres/user"
	"github.com/manishdhiman1/splitmateapp/internal/scheduler"
	"github.com/manishdhiman1/splitmateapp/internal/transport/httpserver"
	"github.com/manishdhiman1/splitmateapp/internal/transport/httpserver/handler"
	"github.com/manishdhiman1/splitmateapp/pkg/logger"
	"github.com/shopspring/decimal"
)

const (
	ownerToken = "00000000-0000-0000-0000-00000000aaaa"
	mateToken  = "00000000-0000-0000-0000-00000000bbbb"
)

type testEnv struct {
	server     *httptest.Server
	authServer *httptest.Server
	db         *gorm.DB
	scheduler  *scheduler.Scheduler
}

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

type userDirectory struct {
	users *userdomain.Service
}

func (d userDirectory) LookupByEmail(ctx context.Context, email string) (roomsdomain.Participant, error) {
	u, err := d.users.GetByEmail(ctx, email)
	if err != nil {
		return roomsdomain.Participant{}, roomsdomain.ErrRoommateNotFound
	}
	return roomsdomain.Participant{ID: u.ID, Email: u.Email}, nil
}

func setupE2E(t *testing.T) *testEnv {
	t.Helper()

	dsn := os.Getenv("E2E_DB_DSN")
	if dsn == "" {
		t.Skip("E2E_DB_DSN not set; skipping e2e tests")
	}

	authServer := newAuthServer(t)
	log := logger.New(io.Discard, logger.LevelCritical, "text")

	cfg := config.Config{
		DB: config.DBConfig{DSN: dsn},
		Auth: config.AuthConfig{
			URL:            authServer.URL,
			PublishableKey: "test-key",
			Timeout:        2 * time.Second,
		},
		Push: config.PushConfig{Enabled: false},
		Room: config.RoomConfig{DefaultTarget: 1000, HistoryPageSize: 100, RecentPageSize: 5},
	}

	dbConn, err := db.NewPostgres(cfg.DB, log)
	if err != nil {
		t.Fatalf("db connect: %v", err)
	}

	if err := db.Migrate(dbConn); err != nil {
		t.Fatalf("migrate: %v", err)
	}

	if err := cleanDB(dbConn); err != nil {
		t.Fatalf("clean db: %v", err)
	}

	userRepo := userrepo.NewPostgres(dbConn)
	roomRepo := roomsrepo.NewPostgres(dbConn)
	expenseRepo := expensesrepo.NewPostgres(dbConn)
	reminderRepo := remindersrepo.NewPostgres(dbConn)

	users := userdomain.NewService(userRepo)
	pushClient := notify.NewClient(cfg.Push, log)
	notifier := notify.NewUserNotifier(users, pushClient, log)
	sched := scheduler.New(notifier, log)

	expenses := expensesdomain.NewService(expenseRepo, roomSource{rooms: roomRepo}, notifier, log)
	rooms := roomsdomain.NewService(roomRepo, userDirectory{users: users}, expenses, notifier, decimal.NewFromInt(cfg.Room.DefaultTarget), log)
	reminders := remindersdomain.NewService(reminderRepo, sched, log)

	handlers := handler.New(rooms, expenses, reminders, users, cfg.Room.HistoryPageSize, cfg.Room.RecentPageSize, log)
	router := httpserver.NewRouter(cfg, handlers, users, log)
	server := httptest.NewServer(router)

	return &testEnv{server: server, authServer: authServer, db: dbConn, scheduler: sched}
}

func (e *testEnv) Close() {
	e.server.Close()
	e.authServer.Close()
	e.scheduler.Close()
	sqlDB, err := e.db.DB()
	if err == nil {
		_ = sqlDB.Close()
	}
}

func newAuthServer(t *testing.T) *httptest.Server {
	t.Helper()
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("apikey") != "test-key" {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}
		auth := r.Header.Get("Authorization")
		if !strings.HasPrefix(auth, "Bearer ") {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}
		token := strings.TrimSpace(strings.TrimPrefix(auth, "Bearer "))
		if token == "" {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}

		payload := map[string]interface{}{
			"id":    token,
			"email": token + "@example.com",
			"user_metadata": map[string]interface{}{
				"name": "User " + token[len(token)-4:],
			},
		}

		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(payload)
	}))
}

func cleanDB(dbConn *gorm.DB) error {
	return dbConn.WithContext(context.Background()).Exec(
		"TRUNCATE TABLE reminders, expenses, rooms, users RESTART IDENTITY CASCADE",
	).Error
}

func requestJSON(t *testing.T, client *http.Client, method, url, token string, payload interface{}) (*http.Response, []byte) {
	t.Helper()

	var body io.Reader
	if payload != nil {
		data, err := json.Marshal(payload)
		if err != nil {
			t.Fatalf("marshal payload: %v", err)
		}
		body = bytes.NewReader(data)
	}

	req, err := http.NewRequest(method, url, body)
	if err != nil {
		t.Fatalf("new request: %v", err)
	}
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := client.Do(req)
	if err != nil {
		t.Fatalf("do request: %v", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		t.Fatalf("read response: %v", err)
	}

	return resp, respBody
}

type errorEnvelope struct {
	Error errorBody `json:"error"`
}

type errorBody struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

type roomResponse struct {
	ID           string  `json:"id"`
	Name         string  `json:"name"`
	OwnerID      string  `json:"owner_id"`
	RoommateID   string  `json:"roommate_id"`
	TargetAmount string  `json:"target_amount"`
	ActiveUserID *string `json:"active_user_id"`
	CycleNumber  int64   `json:"cycle_number"`
}

type cycleStatusResponse struct {
	Active          bool    `json:"active"`
	MyTurn          bool    `json:"my_turn"`
	CanStart        bool    `json:"can_start"`
	CycleNumber     int64   `json:"cycle_number"`
	MyTotal         string  `json:"my_total"`
	Remaining       string  `json:"remaining"`
	ProgressPercent float64 `json:"progress_percent"`
}

func authenticate(t *testing.T, client *http.Client, base, token string) {
	t.Helper()
	resp, body := requestJSON(t, client, http.MethodGet, base+"/api/auth/me", token, nil)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("auth/me for %s: %d %s", token, resp.StatusCode, body)
	}
}

func TestE2ECycleFlow(t *testing.T) {
	env := setupE2E(t)
	defer env.Close()

	client := &http.Client{Timeout: 5 * time.Second}
	base := env.server.URL

	authenticate(t, client, base, ownerToken)
	authenticate(t, client, base, mateToken)

	resp, body := requestJSON(t, client, http.MethodPost, base+"/api/rooms", ownerToken, map[string]string{
		"name":           "Flat 4B",
		"roommate_email": mateToken + "@example.com",
	})
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("create room: %d %s", resp.StatusCode, body)
	}
	var room roomResponse
	if err := json.Unmarshal(body, &room); err != nil {
		t.Fatalf("decode room: %v", err)
	}
	if room.OwnerID != ownerToken || room.RoommateID != mateToken {
		t.Fatalf("unexpected participants: %+v", room)
	}

	// A second room for either participant is rejected.
	resp, body = requestJSON(t, client, http.MethodPost, base+"/api/rooms", mateToken, map[string]string{
		"name":           "Another",
		"roommate_email": ownerToken + "@example.com",
	})
	if resp.StatusCode != http.StatusConflict {
		t.Fatalf("expected 409 for second room, got %d %s", resp.StatusCode, body)
	}

	resp, body = requestJSON(t, client, http.MethodPost, base+"/api/rooms/me/cycle/start", ownerToken, nil)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("start cycle: %d %s", resp.StatusCode, body)
	}
	if err := json.Unmarshal(body, &room); err != nil {
		t.Fatalf("decode room: %v", err)
	}
	if room.ActiveUserID == nil || *room.ActiveUserID != ownerToken || room.CycleNumber != 1 {
		t.Fatalf("expected owner's cycle 1, got %+v", room)
	}

	// Starting again while a cycle runs is rejected.
	resp, body = requestJSON(t, client, http.MethodPost, base+"/api/rooms/me/cycle/start", mateToken, nil)
	if resp.StatusCode != http.StatusConflict {
		t.Fatalf("expected 409 for double start, got %d %s", resp.StatusCode, body)
	}

	// Completing below target reports the shortfall.
	resp, body = requestJSON(t, client, http.MethodPost, base+"/api/rooms/me/cycle/complete", ownerToken, nil)
	if resp.StatusCode != http.StatusConflict {
		t.Fatalf("expected 409 shortfall, got %d %s", resp.StatusCode, body)
	}
	var envelope errorEnvelope
	if err := json.Unmarshal(body, &envelope); err != nil {
		t.Fatalf("decode error: %v", err)
	}
	if envelope.Error.Code != "target_not_met" {
		t.Fatalf("expected target_not_met, got %+v", envelope.Error)
	}

	resp, body = requestJSON(t, client, http.MethodPost, base+"/api/expenses", ownerToken, map[string]interface{}{
		"amount": 1200,
		"note":   "monthly groceries",
	})
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("create expense: %d %s", resp.StatusCode, body)
	}

	resp, body = requestJSON(t, client, http.MethodGet, base+"/api/rooms/me/cycle", ownerToken, nil)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("cycle status: %d %s", resp.StatusCode, body)
	}
	var status cycleStatusResponse
	if err := json.Unmarshal(body, &status); err != nil {
		t.Fatalf("decode status: %v", err)
	}
	if !status.Active || !status.MyTurn || status.ProgressPercent != 100 {
		t.Fatalf("expected full progress on owner's turn, got %+v", status)
	}

	resp, body = requestJSON(t, client, http.MethodPost, base+"/api/rooms/me/cycle/complete", ownerToken, nil)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("complete cycle: %d %s", resp.StatusCode, body)
	}
	if err := json.Unmarshal(body, &room); err != nil {
		t.Fatalf("decode room: %v", err)
	}
	if room.ActiveUserID == nil || *room.ActiveUserID != mateToken || room.CycleNumber != 2 {
		t.Fatalf("expected turn handed to roommate on cycle 2, got %+v", room)
	}
}

func TestE2EReminders(t *testing.T) {
	env := setupE2E(t)
	defer env.Close()

	client := &http.Client{Timeout: 5 * time.Second}
	base := env.server.URL

	authenticate(t, client, base, ownerToken)

	resp, body := requestJSON(t, client, http.MethodPost, base+"/api/reminders", ownerToken, map[string]interface{}{
		"name":        "Pay rent",
		"message":     "Transfer your half",
		"type":        "fixed",
		"time":        "07:30 PM",
		"repeat_days": []int{0, 3},
	})
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("create reminder: %d %s", resp.StatusCode, body)
	}
	var reminder struct {
		ID       string `json:"id"`
		IsActive bool   `json:"is_active"`
	}
	if err := json.Unmarshal(body, &reminder); err != nil {
		t.Fatalf("decode reminder: %v", err)
	}
	if !reminder.IsActive {
		t.Fatalf("expected reminder active")
	}

	resp, body = requestJSON(t, client, http.MethodPost, base+"/api/reminders/"+reminder.ID+"/toggle", ownerToken, nil)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("toggle reminder: %d %s", resp.StatusCode, body)
	}
	var toggled struct {
		IsActive bool `json:"is_active"`
	}
	if err := json.Unmarshal(body, &toggled); err != nil {
		t.Fatalf("decode toggled: %v", err)
	}
	if toggled.IsActive {
		t.Fatalf("expected reminder disabled after toggle")
	}

	resp, body = requestJSON(t, client, http.MethodDelete, base+"/api/reminders/"+reminder.ID, ownerToken, nil)
	if resp.StatusCode != http.StatusNoContent {
		t.Fatalf("delete reminder: %d %s", resp.StatusCode, body)
	}
}
