// Package conversation holds chat turns exchanged with a supervisor and the
// stores that keep them.
package conversation

import (
	"strings"
	"time"
	"unicode/utf8"

	"agentui/internal/filesession"

	"github.com/google/uuid"
)

type Role string

const (
	RoleUser   Role = "user"
	RoleAgent  Role = "agent"
	RoleSystem Role = "system"
)

// Attachment is a plot or generated data file. Data is offloaded to the
// media store before a turn is appended; Ref names the stored object.
type Attachment struct {
	Name        string `json:"name,omitempty"`
	ContentType string `json:"content_type,omitempty"`
	Ref         string `json:"ref,omitempty"`
	Size        int    `json:"size,omitempty"`
	Data        []byte `json:"data,omitempty"`
}

type Media struct {
	Plots []Attachment `json:"plots,omitempty"`
	Data  *Attachment  `json:"data,omitempty"`
}

func (m *Media) Empty() bool {
	return m == nil || (len(m.Plots) == 0 && m.Data == nil)
}

// FileMetadata echoes the file session as it was when a turn was produced.
type FileMetadata struct {
	FileID   string                   `json:"file_id,omitempty"`
	FileName string                   `json:"file_name,omitempty"`
	FileType string                   `json:"file_type,omitempty"`
	Updated  bool                     `json:"updated"`
	Version  *filesession.VersionInfo `json:"version_info,omitempty"`
}

type Turn struct {
	ID        string        `json:"id"`
	Role      Role          `json:"role"`
	Content   string        `json:"content"`
	CreatedAt time.Time     `json:"created_at"`
	Media     *Media        `json:"media,omitempty"`
	File      *FileMetadata `json:"file,omitempty"`
}

// NewTurn stamps a turn with an id and creation time.
func NewTurn(role Role, content string) Turn {
	return Turn{
		ID:        uuid.NewString(),
		Role:      role,
		Content:   content,
		CreatedAt: time.Now().UTC(),
	}
}

type Conversation struct {
	ID         string              `json:"id"`
	UserID     string              `json:"user_id"`
	Title      string              `json:"title"`
	Supervisor string              `json:"supervisor,omitempty"`
	Turns      []Turn              `json:"turns"`
	Session    filesession.Session `json:"file_session"`
	CreatedAt  time.Time           `json:"created_at"`
	UpdatedAt  time.Time           `json:"updated_at"`
}

const (
	DefaultTitle  = "New conversation"
	maxTitleRunes = 60
)

func New(userID string) *Conversation {
	now := time.Now().UTC()
	return &Conversation{
		ID:        uuid.NewString(),
		UserID:    strings.TrimSpace(userID),
		Title:     DefaultTitle,
		Turns:     []Turn{},
		CreatedAt: now,
		UpdatedAt: now,
	}
}

// Append adds turns at the end. Existing turns are never modified; the
// first user turn names an untitled conversation.
func (c *Conversation) Append(turns ...Turn) {
	for _, t := range turns {
		if t.ID == "" {
			t.ID = uuid.NewString()
		}
		if t.CreatedAt.IsZero() {
			t.CreatedAt = time.Now().UTC()
		}
		if t.Role == RoleUser && c.Title == DefaultTitle {
			c.Title = titleFrom(t.Content)
		}
		c.Turns = append(c.Turns, t)
		c.UpdatedAt = t.CreatedAt
	}
}

// Clone returns a copy that shares no slices with c.
func (c *Conversation) Clone() *Conversation {
	if c == nil {
		return nil
	}
	out := *c
	out.Turns = append([]Turn(nil), c.Turns...)
	if out.Turns == nil {
		out.Turns = []Turn{}
	}
	return &out
}

func titleFrom(content string) string {
	line := strings.TrimSpace(content)
	if i := strings.IndexByte(line, '\n'); i >= 0 {
		line = strings.TrimSpace(line[:i])
	}
	if line == "" {
		return DefaultTitle
	}
	if utf8.RuneCountInString(line) <= maxTitleRunes {
		return line
	}
	runes := []rune(line)
	return strings.TrimSpace(string(runes[:maxTitleRunes])) + "…"
}
