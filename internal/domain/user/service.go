package user

import (
	"context"
	"fmt"
	"strings"
)

type Service struct {
	repo Repository
}

func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

func (s *Service) GetByID(ctx context.Context, userID string) (*User, error) {
	return s.repo.GetByID(ctx, userID)
}

func (s *Service) GetByEmail(ctx context.Context, email string) (*User, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	if email == "" {
		return nil, fmt.Errorf("email is required")
	}
	return s.repo.GetByEmail(ctx, email)
}

// UpsertProfile records the identity attached to a verified token. Called by
// the auth middleware on every request, so it must tolerate existing rows.
func (s *Service) UpsertProfile(ctx context.Context, userID, email, name, avatarURL string) error {
	if userID == "" {
		return fmt.Errorf("user id is required")
	}

	profile := User{
		ID:    userID,
		Email: strings.ToLower(strings.TrimSpace(email)),
		Name:  strings.TrimSpace(name),
	}
	if avatar := strings.TrimSpace(avatarURL); avatar != "" {
		profile.AvatarURL = &avatar
	}

	return s.repo.Upsert(ctx, &profile)
}

// RegisterNotifyToken stores a fresh push token for the user. An empty token
// means the user declined the notification permission prompt.
func (s *Service) RegisterNotifyToken(ctx context.Context, userID, token string) error {
	token = strings.TrimSpace(token)
	if token == "" {
		return s.repo.UpdateNotifyToken(ctx, userID, nil, NotifyPermissionDenied)
	}
	return s.repo.UpdateNotifyToken(ctx, userID, &token, NotifyPermissionGranted)
}

// NotifyToken resolves the push token for a user, if one is registered.
func (s *Service) NotifyToken(ctx context.Context, userID string) (string, bool, error) {
	u, err := s.repo.GetByID(ctx, userID)
	if err != nil {
		return "", false, err
	}
	if u.NotifyToken == nil || *u.NotifyToken == "" {
		return "", false, nil
	}
	return *u.NotifyToken, true, nil
}
