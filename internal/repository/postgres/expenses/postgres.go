package expenses

import (
	"context"
	"errors"
	"time"

	"github.com/shopspring/decimal"

	expensesdomain "github.com/manishdhiman1/splitmateapp/internal/domain/expenses"
	"gorm.io/gorm"
)

type PostgresRepository struct {
	db *gorm.DB
}

func NewPostgres(db *gorm.DB) *PostgresRepository {
	return &PostgresRepository{db: db}
}

func (r *PostgresRepository) Create(ctx context.Context, expense *expensesdomain.Expense) error {
	return r.db.WithContext(ctx).Create(expense).Error
}

func (r *PostgresRepository) GetByID(ctx context.Context, expenseID string) (*expensesdomain.Expense, error) {
	var expense expensesdomain.Expense
	if err := r.db.WithContext(ctx).Where("id = ?", expenseID).First(&expense).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, expensesdomain.ErrExpenseNotFound
		}
		return nil, err
	}
	return &expense, nil
}

func (r *PostgresRepository) Delete(ctx context.Context, expenseID string) (bool, error) {
	result := r.db.WithContext(ctx).Delete(&expensesdomain.Expense{}, "id = ?", expenseID)
	return result.RowsAffected > 0, result.Error
}

func (r *PostgresRepository) ListByRoom(ctx context.Context, roomID string, after *expensesdomain.Cursor, limit int) ([]expensesdomain.Expense, error) {
	query := r.db.WithContext(ctx).Where("room_id = ?", roomID)
	if after != nil {
		query = query.Where("(created_at, id) < (?, ?)", after.CreatedAt, after.ID)
	}

	var items []expensesdomain.Expense
	if err := query.Order("created_at DESC, id DESC").Limit(limit).Find(&items).Error; err != nil {
		return nil, err
	}
	return items, nil
}

func (r *PostgresRepository) ListRecentByCycle(ctx context.Context, roomID string, limit int) ([]expensesdomain.Expense, error) {
	var items []expensesdomain.Expense
	if err := r.db.WithContext(ctx).
		Where("room_id = ? AND cycle_number IS NOT NULL", roomID).
		Order("cycle_number DESC, created_at DESC").
		Limit(limit).
		Find(&items).Error; err != nil {
		return nil, err
	}
	return items, nil
}

func (r *PostgresRepository) SumCycleSpendByPayer(ctx context.Context, roomID, cycleUserID string, since time.Time) (map[string]decimal.Decimal, error) {
	var rows []struct {
		PaidBy string          `gorm:"column:paid_by"`
		Total  decimal.Decimal `gorm:"column:total"`
	}

	if err := r.db.WithContext(ctx).
		Model(&expensesdomain.Expense{}).
		Select("paid_by, COALESCE(SUM(amount), 0) AS total").
		Where("room_id = ? AND cycle_user_id = ? AND created_at >= ?", roomID, cycleUserID, since).
		Group("paid_by").
		Find(&rows).Error; err != nil {
		return nil, err
	}

	totals := make(map[string]decimal.Decimal, len(rows))
	for _, row := range rows {
		totals[row.PaidBy] = row.Total
	}
	return totals, nil
}
