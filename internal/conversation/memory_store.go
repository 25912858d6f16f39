package conversation

import (
	"context"
	"fmt"
	"strings"
	"sync"
)

type MemoryStore struct {
	mu   sync.RWMutex
	byID map[string]*Conversation
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		byID: make(map[string]*Conversation),
	}
}

func (s *MemoryStore) Create(_ context.Context, c *Conversation) error {
	if c == nil || strings.TrimSpace(c.ID) == "" {
		return fmt.Errorf("conversation id is required")
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.byID[c.ID]; ok {
		return fmt.Errorf("conversation %s already exists", c.ID)
	}
	s.byID[c.ID] = c.Clone()
	return nil
}

func (s *MemoryStore) Get(_ context.Context, id string) (*Conversation, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	c, ok := s.byID[strings.TrimSpace(id)]
	if !ok {
		return nil, ErrNotFound
	}
	return c.Clone(), nil
}

func (s *MemoryStore) Save(_ context.Context, c *Conversation) error {
	if c == nil || strings.TrimSpace(c.ID) == "" {
		return fmt.Errorf("conversation id is required")
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.byID[c.ID]; !ok {
		return ErrNotFound
	}
	s.byID[c.ID] = c.Clone()
	return nil
}

func (s *MemoryStore) List(_ context.Context, userID string) ([]*Conversation, error) {
	userID = strings.TrimSpace(userID)
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]*Conversation, 0, len(s.byID))
	for _, c := range s.byID {
		if userID != "" && c.UserID != userID {
			continue
		}
		out = append(out, c.Clone())
	}
	return out, nil
}

func (s *MemoryStore) Delete(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	id = strings.TrimSpace(id)
	if _, ok := s.byID[id]; !ok {
		return ErrNotFound
	}
	delete(s.byID, id)
	return nil
}
