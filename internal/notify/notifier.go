package notify

import (
	"context"

	"github.com/manishdhiman1/splitmateapp/pkg/logger"
)

// TokenSource resolves a user's registered push token.
type TokenSource interface {
	NotifyToken(ctx context.Context, userID string) (string, bool, error)
}

// UserNotifier pushes to a user by id, skipping users who never granted the
// notification permission. It backs both the domain notifiers and the
// reminder scheduler's dispatcher.
type UserNotifier struct {
	tokens TokenSource
	client *Client
	log    logger.Logger
}

func NewUserNotifier(tokens TokenSource, client *Client, log logger.Logger) *UserNotifier {
	return &UserNotifier{
		tokens: tokens,
		client: client,
		log:    log,
	}
}

func (n *UserNotifier) Push(ctx context.Context, userID, title, body string) error {
	token, ok, err := n.tokens.NotifyToken(ctx, userID)
	if err != nil {
		return err
	}
	if !ok {
		n.log.Debug("notify: no push token registered", "user_id", userID)
		return nil
	}
	return n.client.Send(ctx, []string{token}, title, body)
}

// Dispatch satisfies the trigger scheduler's Dispatcher.
func (n *UserNotifier) Dispatch(ctx context.Context, userID, title, body string) error {
	return n.Push(ctx, userID, title, body)
}
