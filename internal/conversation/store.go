package conversation

import (
	"context"
	"errors"
)

// Store persists conversations. Implementations return copies: callers may
// mutate what they get without affecting the stored value.
type Store interface {
	Create(ctx context.Context, c *Conversation) error
	Get(ctx context.Context, id string) (*Conversation, error)
	Save(ctx context.Context, c *Conversation) error
	List(ctx context.Context, userID string) ([]*Conversation, error)
	Delete(ctx context.Context, id string) error
}

var ErrNotFound = errors.New("conversation not found")
