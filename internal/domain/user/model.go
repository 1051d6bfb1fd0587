package user

import "time"

const (
	NotifyPermissionGranted = "granted"
	NotifyPermissionDenied  = "denied"
)

type User struct {
	ID               string    `gorm:"type:uuid;primaryKey"`
	Email            string    `gorm:"not null;uniqueIndex"`
	Name             string    `gorm:"not null"`
	AvatarURL        *string   `gorm:"type:text"`
	Provider         string    `gorm:"size:32"`
	NotifyToken      *string   `gorm:"type:text"`
	NotifyPermission string    `gorm:"size:16"`
	CreatedAt        time.Time `gorm:"autoCreateTime"`
	UpdatedAt        time.Time `gorm:"autoUpdateTime"`
}
