package reminders

import (
	"context"
	"errors"

	remindersdomain "github.com/manishdhiman1/splitmateapp/internal/domain/reminders"
	"gorm.io/gorm"
)

type PostgresRepository struct {
	db *gorm.DB
}

func NewPostgres(db *gorm.DB) *PostgresRepository {
	return &PostgresRepository{db: db}
}

func (r *PostgresRepository) Create(ctx context.Context, reminder *remindersdomain.Reminder) error {
	return r.db.WithContext(ctx).Create(reminder).Error
}

func (r *PostgresRepository) GetByID(ctx context.Context, reminderID string) (*remindersdomain.Reminder, error) {
	var reminder remindersdomain.Reminder
	if err := r.db.WithContext(ctx).Where("id = ?", reminderID).First(&reminder).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, remindersdomain.ErrReminderNotFound
		}
		return nil, err
	}
	return &reminder, nil
}

func (r *PostgresRepository) Update(ctx context.Context, reminder *remindersdomain.Reminder) error {
	return r.db.WithContext(ctx).Save(reminder).Error
}

func (r *PostgresRepository) Delete(ctx context.Context, reminderID string) (bool, error) {
	result := r.db.WithContext(ctx).Delete(&remindersdomain.Reminder{}, "id = ?", reminderID)
	return result.RowsAffected > 0, result.Error
}

func (r *PostgresRepository) ListByUser(ctx context.Context, userID string) ([]remindersdomain.Reminder, error) {
	var items []remindersdomain.Reminder
	if err := r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("created_at DESC").
		Find(&items).Error; err != nil {
		return nil, err
	}
	return items, nil
}

func (r *PostgresRepository) ListActive(ctx context.Context) ([]remindersdomain.Reminder, error) {
	var items []remindersdomain.Reminder
	if err := r.db.WithContext(ctx).
		Where("is_active = ?", true).
		Find(&items).Error; err != nil {
		return nil, err
	}
	return items, nil
}
