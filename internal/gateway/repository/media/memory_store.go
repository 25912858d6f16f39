package media

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"
)

type MemoryStore struct {
	mu   sync.RWMutex
	data map[string]Object
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		data: make(map[string]Object),
	}
}

func (s *MemoryStore) Put(_ context.Context, conversationID, path string, content []byte, contentType string) error {
	if s == nil {
		return fmt.Errorf("store is nil")
	}
	if err := validKey(conversationID, path); err != nil {
		return err
	}
	if strings.TrimSpace(contentType) == "" {
		contentType = defaultContentType
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.data[objectKey(conversationID, path)] = Object{
		Data:        append([]byte(nil), content...),
		ContentType: contentType,
	}
	return nil
}

func (s *MemoryStore) Get(_ context.Context, conversationID, path string) (Object, error) {
	if s == nil {
		return Object{}, fmt.Errorf("store is nil")
	}
	if err := validKey(conversationID, path); err != nil {
		return Object{}, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	obj, ok := s.data[objectKey(conversationID, path)]
	if !ok {
		return Object{}, ErrNotFound
	}
	return Object{Data: append([]byte(nil), obj.Data...), ContentType: obj.ContentType}, nil
}

func (s *MemoryStore) List(_ context.Context, conversationID string) ([]string, error) {
	if s == nil {
		return nil, fmt.Errorf("store is nil")
	}
	conversationID = strings.TrimSpace(conversationID)
	if conversationID == "" {
		return nil, fmt.Errorf("conversation_id is required")
	}
	prefix := conversationID + "/"
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]string, 0, 16)
	for key := range s.data {
		if !strings.HasPrefix(key, prefix) {
			continue
		}
		out = append(out, strings.TrimPrefix(key, prefix))
	}
	sort.Strings(out)
	return out, nil
}

func (s *MemoryStore) Delete(_ context.Context, conversationID, path string) error {
	if s == nil {
		return fmt.Errorf("store is nil")
	}
	if err := validKey(conversationID, path); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.data, objectKey(conversationID, path))
	return nil
}

// GetURL returns "": memory objects are only served through the gateway.
func (s *MemoryStore) GetURL(_ context.Context, _, _ string) (string, error) {
	return "", nil
}
