package app

import (
	"context"
	"net/http"

	"github.com/shopspring/decimal"
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
)

type App struct {
	cfg        config.Config
	httpServer *http.Server
	db         *gorm.DB
	scheduler  *scheduler.Scheduler
}

func New(log logger.Logger) (*App, error) {
	log.Info("app: loading config")
	cfg, err := config.Load(log)
	if err != nil {
		return nil, err
	}

	log.Info("app: initializing database")
	dbConn, err := db.NewPostgres(cfg.DB, log)
	if err != nil {
		return nil, err
	}
	if err := db.Migrate(dbConn); err != nil {
		return nil, err
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
	rooms := roomsdomain.NewService(
		roomRepo,
		userDirectory{users: users},
		expenses,
		notifier,
		decimal.NewFromInt(cfg.Room.DefaultTarget),
		log,
	)
	reminders := remindersdomain.NewService(reminderRepo, sched, log)

	// Trigger handles live only in this process, so every active reminder
	// has to be rescheduled before the server starts taking traffic.
	log.Info("app: rehydrating reminder triggers")
	if err := reminders.Rehydrate(context.Background()); err != nil {
		return nil, err
	}

	log.Info("app: initializing router")
	handlers := handler.New(rooms, expenses, reminders, users, cfg.Room.HistoryPageSize, cfg.Room.RecentPageSize, log)
	router := httpserver.NewRouter(cfg, handlers, users, log)

	log.Info("app: initializing http server")
	srv := httpserver.New(cfg, router)

	return &App{
		cfg:        cfg,
		httpServer: srv,
		db:         dbConn,
		scheduler:  sched,
	}, nil
}

func (a *App) HTTPServer() *http.Server {
	return a.httpServer
}

func (a *App) Close() error {
	if a.scheduler != nil {
		a.scheduler.Close()
	}

	if a.db == nil {
		return nil
	}
	sqlDB, err := a.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}
