package rooms

import (
	"context"
	"errors"
	"time"

	"github.com/shopspring/decimal"

	roomsdomain "github.com/manishdhiman1/splitmateapp/internal/domain/rooms"
	"gorm.io/gorm"
)

type PostgresRepository struct {
	db *gorm.DB
}

func NewPostgres(db *gorm.DB) *PostgresRepository {
	return &PostgresRepository{db: db}
}

func (r *PostgresRepository) Transaction(ctx context.Context, fn func(roomsdomain.Repository) error) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(&PostgresRepository{db: tx})
	})
}

func (r *PostgresRepository) Create(ctx context.Context, room *roomsdomain.Room) error {
	return r.db.WithContext(ctx).Create(room).Error
}

func (r *PostgresRepository) GetByID(ctx context.Context, roomID string) (*roomsdomain.Room, error) {
	var room roomsdomain.Room
	if err := r.db.WithContext(ctx).Where("id = ?", roomID).First(&room).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, roomsdomain.ErrRoomNotFound
		}
		return nil, err
	}
	return &room, nil
}

func (r *PostgresRepository) GetActiveByUser(ctx context.Context, userID string) (*roomsdomain.Room, error) {
	var room roomsdomain.Room
	if err := r.db.WithContext(ctx).
		Where("status = ? AND (owner_id = ? OR roommate_id = ?)", roomsdomain.StatusActive, userID, userID).
		First(&room).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, roomsdomain.ErrRoomNotFound
		}
		return nil, err
	}
	return &room, nil
}

func (r *PostgresRepository) HasActiveRoom(ctx context.Context, userID string) (bool, error) {
	var count int64
	if err := r.db.WithContext(ctx).
		Model(&roomsdomain.Room{}).
		Where("status = ? AND (owner_id = ? OR roommate_id = ?)", roomsdomain.StatusActive, userID, userID).
		Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}

func (r *PostgresRepository) SetStatus(ctx context.Context, roomID, status string) error {
	return r.db.WithContext(ctx).
		Model(&roomsdomain.Room{}).
		Where("id = ?", roomID).
		Updates(map[string]interface{}{
			"status":     status,
			"updated_at": time.Now().UTC(),
		}).Error
}

func (r *PostgresRepository) UpdateTarget(ctx context.Context, roomID string, target decimal.Decimal) error {
	return r.db.WithContext(ctx).
		Model(&roomsdomain.Room{}).
		Where("id = ?", roomID).
		Updates(map[string]interface{}{
			"target_amount": target,
			"updated_at":    time.Now().UTC(),
		}).Error
}

// BeginCycle writes the whole cycle field-group in one guarded statement:
// both cycle fields must still be null, the timestamp is assigned by the
// database, and the cycle counter increments atomically.
func (r *PostgresRepository) BeginCycle(ctx context.Context, roomID, userID, userEmail string) (bool, error) {
	result := r.db.WithContext(ctx).
		Model(&roomsdomain.Room{}).
		Where("id = ? AND status = ? AND active_user_id IS NULL AND cycle_start_at IS NULL", roomID, roomsdomain.StatusActive).
		Updates(map[string]interface{}{
			"active_user_id":    userID,
			"active_user_email": userEmail,
			"cycle_start_at":    gorm.Expr("NOW()"),
			"cycle_number":      gorm.Expr("cycle_number + 1"),
			"updated_at":        gorm.Expr("NOW()"),
		})
	return result.RowsAffected > 0, result.Error
}

// AdvanceCycle is the compare-and-swap handoff: it only lands if the cycle
// counter still matches what the caller read, so concurrent completions
// cannot both advance the turn.
func (r *PostgresRepository) AdvanceCycle(ctx context.Context, roomID string, fromCycle int64, nextID, nextEmail string) (bool, error) {
	result := r.db.WithContext(ctx).
		Model(&roomsdomain.Room{}).
		Where("id = ? AND status = ? AND cycle_number = ?", roomID, roomsdomain.StatusActive, fromCycle).
		Updates(map[string]interface{}{
			"active_user_id":    nextID,
			"active_user_email": nextEmail,
			"cycle_start_at":    gorm.Expr("NOW()"),
			"cycle_number":      gorm.Expr("cycle_number + 1"),
			"updated_at":        gorm.Expr("NOW()"),
		})
	return result.RowsAffected > 0, result.Error
}

func (r *PostgresRepository) TouchLastExpense(ctx context.Context, roomID string, at time.Time) error {
	return r.db.WithContext(ctx).
		Model(&roomsdomain.Room{}).
		Where("id = ?", roomID).
		Updates(map[string]interface{}{
			"last_expense_at": at,
			"updated_at":      at,
		}).Error
}
