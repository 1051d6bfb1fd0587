package handler

import (
	expensesdomain "github.com/manishdhiman1/splitmateapp/internal/domain/expenses"
	remindersdomain "github.com/manishdhiman1/splitmateapp/internal/domain/reminders"
	roomsdomain "github.com/manishdhiman1/splitmateapp/internal/domain/rooms"
	userdomain "github.com/manishdhiman1/splitmateapp/internal/domain/user"
	"github.com/manishdhiman1/splitmateapp/pkg/logger"
)

type Handlers struct {
	Rooms     *roomsdomain.Service
	Expenses  *expensesdomain.Service
	Reminders *remindersdomain.Service
	Users     *userdomain.Service

	historyPageSize int
	recentPageSize  int
	log             logger.Logger
}

func New(rooms *roomsdomain.Service, expenses *expensesdomain.Service, reminders *remindersdomain.Service, users *userdomain.Service, historyPageSize, recentPageSize int, log logger.Logger) *Handlers {
	return &Handlers{
		Rooms:           rooms,
		Expenses:        expenses,
		Reminders:       reminders,
		Users:           users,
		historyPageSize: historyPageSize,
		recentPageSize:  recentPageSize,
		log:             log,
	}
}
