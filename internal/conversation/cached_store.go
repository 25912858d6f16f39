package conversation

import (
	"context"
	"fmt"
	"strings"

	lru "github.com/hashicorp/golang-lru/v2"
)

const DefaultCacheEntries = 256

// CachedStore keeps recently used conversations in memory in front of an
// origin store. Writes go through to the origin first.
type CachedStore struct {
	origin Store
	cache  *lru.Cache[string, *Conversation]
}

func NewCachedStore(origin Store, entries int) (*CachedStore, error) {
	if origin == nil {
		return nil, fmt.Errorf("origin store is nil")
	}
	if entries <= 0 {
		entries = DefaultCacheEntries
	}
	cache, err := lru.New[string, *Conversation](entries)
	if err != nil {
		return nil, err
	}
	return &CachedStore{origin: origin, cache: cache}, nil
}

func (s *CachedStore) Create(ctx context.Context, c *Conversation) error {
	if err := s.origin.Create(ctx, c); err != nil {
		return err
	}
	s.cache.Add(c.ID, c.Clone())
	return nil
}

func (s *CachedStore) Get(ctx context.Context, id string) (*Conversation, error) {
	id = strings.TrimSpace(id)
	if c, ok := s.cache.Get(id); ok {
		return c.Clone(), nil
	}
	c, err := s.origin.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	s.cache.Add(id, c.Clone())
	return c, nil
}

func (s *CachedStore) Save(ctx context.Context, c *Conversation) error {
	if err := s.origin.Save(ctx, c); err != nil {
		if c != nil {
			s.cache.Remove(c.ID)
		}
		return err
	}
	s.cache.Add(c.ID, c.Clone())
	return nil
}

func (s *CachedStore) List(ctx context.Context, userID string) ([]*Conversation, error) {
	return s.origin.List(ctx, userID)
}

func (s *CachedStore) Delete(ctx context.Context, id string) error {
	id = strings.TrimSpace(id)
	s.cache.Remove(id)
	return s.origin.Delete(ctx, id)
}
