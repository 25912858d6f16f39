package conversation

import (
	"sort"
	"strings"
	"time"
)

// Summary is a sidebar entry.
type Summary struct {
	ID           string    `json:"id"`
	Title        string    `json:"title"`
	LastMessage  string    `json:"last_message"`
	UpdatedAt    time.Time `json:"updated_at"`
	MessageCount int       `json:"message_count"`
}

func (c *Conversation) Summary() Summary {
	s := Summary{
		ID:        c.ID,
		Title:     c.Title,
		UpdatedAt: c.UpdatedAt,
	}
	for _, t := range c.Turns {
		if t.Role == RoleSystem {
			continue
		}
		s.MessageCount++
		if t.Role == RoleUser {
			s.LastMessage = t.Content
		}
	}
	return s
}

// Summaries orders conversations by most recent activity.
func Summaries(convs []*Conversation) []Summary {
	out := make([]Summary, 0, len(convs))
	for _, c := range convs {
		if c == nil {
			continue
		}
		out = append(out, c.Summary())
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].UpdatedAt.After(out[j].UpdatedAt)
	})
	return out
}

// Filter keeps summaries whose title or last message contains query,
// case-insensitively.
func Filter(summaries []Summary, query string) []Summary {
	q := strings.ToLower(strings.TrimSpace(query))
	if q == "" {
		return summaries
	}
	out := make([]Summary, 0, len(summaries))
	for _, s := range summaries {
		if strings.Contains(strings.ToLower(s.Title), q) || strings.Contains(strings.ToLower(s.LastMessage), q) {
			out = append(out, s)
		}
	}
	return out
}
