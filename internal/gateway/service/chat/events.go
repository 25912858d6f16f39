package chat

import (
	"context"
	"strings"
	"sync"

	"agentui/internal/conversation"
	"agentui/internal/filesession"
)

type EventKind string

const (
	EventTurn    EventKind = "turn"
	EventSession EventKind = "session"
	EventBusy    EventKind = "busy"
)

// Event is pushed to every subscriber of a conversation.
type Event struct {
	Kind           EventKind          `json:"type"`
	ConversationID string             `json:"conversation_id"`
	Turn           *conversation.Turn `json:"turn,omitempty"`
	Session        *SessionView       `json:"session,omitempty"`
	Busy           bool               `json:"busy,omitempty"`
	OpenViewer     bool               `json:"open_viewer,omitempty"`
}

// SessionView is the client-facing shape of a file session. File bytes
// are never included; the preview endpoint serves them decoded.
type SessionView struct {
	Kind        filesession.Kind         `json:"kind"`
	FileID      string                   `json:"file_id,omitempty"`
	FileName    string                   `json:"file_name,omitempty"`
	FileType    string                   `json:"file_type,omitempty"`
	Size        int                      `json:"size"`
	HasContent  bool                     `json:"has_content"`
	VersionInfo *filesession.VersionInfo `json:"version_info,omitempty"`
}

func ViewOf(s filesession.Session) SessionView {
	data, _, _ := s.ViewContent()
	return SessionView{
		Kind:        s.Kind,
		FileID:      s.FileID,
		FileName:    s.DisplayName,
		FileType:    s.DeclaredType,
		Size:        len(data),
		HasContent:  data != nil,
		VersionInfo: s.Version,
	}
}

type broker struct {
	mu   sync.Mutex
	subs map[string]map[chan *Event]struct{}
}

func newBroker() *broker {
	return &broker{subs: make(map[string]map[chan *Event]struct{})}
}

func (b *broker) subscribe(ctx context.Context, conversationID string) <-chan *Event {
	out := make(chan *Event, 16)
	b.mu.Lock()
	set, ok := b.subs[conversationID]
	if !ok {
		set = make(map[chan *Event]struct{})
		b.subs[conversationID] = set
	}
	set[out] = struct{}{}
	b.mu.Unlock()

	go func() {
		<-ctx.Done()
		b.mu.Lock()
		defer b.mu.Unlock()
		if set, ok := b.subs[conversationID]; ok {
			delete(set, out)
			if len(set) == 0 {
				delete(b.subs, conversationID)
			}
		}
		close(out)
	}()
	return out
}

func (b *broker) publish(evt *Event) {
	if evt == nil {
		return
	}
	id := strings.TrimSpace(evt.ConversationID)
	b.mu.Lock()
	defer b.mu.Unlock()
	for ch := range b.subs[id] {
		pushEvent(ch, evt)
	}
}

// pushEvent never blocks: when a subscriber falls behind its oldest
// pending event is dropped.
func pushEvent(out chan *Event, evt *Event) {
	select {
	case out <- evt:
		return
	default:
	}
	select {
	case <-out:
	default:
	}
	select {
	case out <- evt:
	default:
	}
}
