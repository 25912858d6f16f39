package media

import (
	"context"
	"errors"
	"strings"
)

// Object is a stored plot or generated data file.
type Object struct {
	Data        []byte
	ContentType string
}

// Store defines operations for persisting conversation media.
type Store interface {
	Put(ctx context.Context, conversationID, path string, content []byte, contentType string) error
	Get(ctx context.Context, conversationID, path string) (Object, error)
	GetURL(ctx context.Context, conversationID, path string) (string, error)
	List(ctx context.Context, conversationID string) ([]string, error)
	// Delete removes one object. A missing object is not an error.
	Delete(ctx context.Context, conversationID, path string) error
}

var ErrNotFound = errors.New("media not found")

const defaultContentType = "application/octet-stream"

func objectKey(conversationID, path string) string {
	normalized := strings.TrimLeft(strings.TrimSpace(path), "/")
	return strings.TrimSpace(conversationID) + "/" + normalized
}

func validKey(conversationID, path string) error {
	if strings.TrimSpace(conversationID) == "" {
		return errors.New("conversation_id is required")
	}
	p := strings.TrimSpace(path)
	if p == "" {
		return errors.New("path is required")
	}
	for _, seg := range strings.Split(p, "/") {
		if seg == ".." {
			return errors.New("path must not contain ..")
		}
	}
	return nil
}
