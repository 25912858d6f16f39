package chat

import (
	"context"
	"strings"

	"agentui/internal/gateway/repository/media"
)

type MediaEntry struct {
	Ref string `json:"ref"`
	URL string `json:"url,omitempty"`
}

// Media returns a stored plot or data file of the conversation.
func (s *Service) Media(ctx context.Context, id, ref string) (media.Object, error) {
	c, err := s.Get(ctx, id)
	if err != nil {
		return media.Object{}, err
	}
	ref = strings.TrimSpace(ref)
	if ref == "" {
		return media.Object{}, invalid("media ref is required")
	}
	return s.media.Get(ctx, c.ID, ref)
}

func (s *Service) deleteMedia(ctx context.Context, id string) error {
	refs, err := s.media.List(ctx, id)
	if err != nil {
		return err
	}
	for _, ref := range refs {
		if err := s.media.Delete(ctx, id, ref); err != nil {
			return err
		}
	}
	return nil
}

// MediaList lists every stored object of the conversation. URL is set when
// the backing store can hand out direct links.
func (s *Service) MediaList(ctx context.Context, id string) ([]MediaEntry, error) {
	c, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	refs, err := s.media.List(ctx, c.ID)
	if err != nil {
		return nil, err
	}
	out := make([]MediaEntry, 0, len(refs))
	for _, ref := range refs {
		u, err := s.media.GetURL(ctx, c.ID, ref)
		if err != nil {
			return nil, err
		}
		out = append(out, MediaEntry{Ref: ref, URL: u})
	}
	return out, nil
}
