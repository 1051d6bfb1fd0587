package user

import "context"

type Repository interface {
	GetByID(ctx context.Context, userID string) (*User, error)
	GetByEmail(ctx context.Context, email string) (*User, error)
	Upsert(ctx context.Context, user *User) error
	UpdateNotifyToken(ctx context.Context, userID string, token *string, permission string) error
}
