// Package chat drives conversations with the supervisor backend: it owns the
// per-conversation file session, the in-flight guard, media offloading, and
// the event stream the UI listens to.
package chat

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"
	"sync"
	"time"

	"agentui/internal/cache/memory"
	"agentui/internal/conversation"
	"agentui/internal/filesession"
	"agentui/internal/gateway/repository/media"
	"agentui/internal/tabular"
	"agentui/internal/upstream"
)

const DefaultUserID = "system_user"

var (
	ErrBusy     = errors.New("a request is already in progress for this conversation")
	ErrNoFile   = errors.New("no file content to preview")
	ErrNotFound = conversation.ErrNotFound
)

// ValidationError marks bad caller input.
type ValidationError struct {
	Message string
}

func (e *ValidationError) Error() string { return e.Message }

func invalid(format string, args ...any) error {
	return &ValidationError{Message: fmt.Sprintf(format, args...)}
}

// Analyzer is the part of the Supervisor API the service needs.
type Analyzer interface {
	Analyze(ctx context.Context, in upstream.AnalyzeRequest) (*upstream.AnalyzeResponse, error)
}

type Options struct {
	DefaultUserID string
	PageSize      int
	DecodeCache   *memory.LRUTTL[string, tabular.Table]
}

type Service struct {
	store    conversation.Store
	media    media.Store
	analyzer Analyzer
	events   *broker

	decodeCache   *memory.LRUTTL[string, tabular.Table]
	defaultUserID string
	pageSize      int

	mu      sync.Mutex
	seq     uint64
	busy    map[string]uint64
	locks   map[string]*sync.Mutex
	viewers map[string]*tabular.Viewer
}

func New(store conversation.Store, mediaStore media.Store, analyzer Analyzer, opts Options) *Service {
	if strings.TrimSpace(opts.DefaultUserID) == "" {
		opts.DefaultUserID = DefaultUserID
	}
	if opts.PageSize <= 0 {
		opts.PageSize = tabular.DefaultPageSize
	}
	if opts.DecodeCache == nil {
		opts.DecodeCache = memory.NewLRUTTL[string, tabular.Table](64, 64<<20, 10*time.Minute)
	}
	if mediaStore == nil {
		mediaStore = media.NewMemoryStore()
	}
	return &Service{
		store:         store,
		media:         mediaStore,
		analyzer:      analyzer,
		events:        newBroker(),
		decodeCache:   opts.DecodeCache,
		defaultUserID: strings.TrimSpace(opts.DefaultUserID),
		pageSize:      opts.PageSize,
		busy:          make(map[string]uint64),
		locks:         make(map[string]*sync.Mutex),
		viewers:       make(map[string]*tabular.Viewer),
	}
}

func (s *Service) userOrDefault(userID string) string {
	if v := strings.TrimSpace(userID); v != "" {
		return v
	}
	return s.defaultUserID
}

func (s *Service) Create(ctx context.Context, userID, supervisor string) (*conversation.Conversation, error) {
	sup, ok := upstream.LookupSupervisor(supervisor)
	if !ok {
		return nil, invalid("unknown supervisor: %s", strings.TrimSpace(supervisor))
	}
	c := conversation.New(s.userOrDefault(userID))
	c.Supervisor = sup.ID
	if err := s.store.Create(ctx, c); err != nil {
		return nil, err
	}
	log.Printf("chat: created conversation %s user=%s supervisor=%s", c.ID, c.UserID, c.Supervisor)
	return c, nil
}

func (s *Service) Get(ctx context.Context, id string) (*conversation.Conversation, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return nil, invalid("conversation id is required")
	}
	return s.store.Get(ctx, id)
}

// List returns sidebar summaries for a user, newest first, filtered by query.
func (s *Service) List(ctx context.Context, userID, query string) ([]conversation.Summary, error) {
	convs, err := s.store.List(ctx, s.userOrDefault(userID))
	if err != nil {
		return nil, err
	}
	return conversation.Filter(conversation.Summaries(convs), query), nil
}

func (s *Service) Delete(ctx context.Context, id string) error {
	id = strings.TrimSpace(id)
	if id == "" {
		return invalid("conversation id is required")
	}
	l := s.lockFor(id)
	l.Lock()
	defer l.Unlock()
	if err := s.store.Delete(ctx, id); err != nil {
		if errors.Is(err, ErrNotFound) {
			s.dropLock(id, l)
		}
		return err
	}
	s.mu.Lock()
	delete(s.viewers, id)
	delete(s.busy, id)
	s.mu.Unlock()
	s.dropLock(id, l)
	if err := s.deleteMedia(ctx, id); err != nil {
		log.Printf("chat: media cleanup failed conversation=%s: %v", id, err)
	}
	log.Printf("chat: deleted conversation %s", id)
	return nil
}

// Busy reports whether a submit is outstanding.
func (s *Service) Busy(id string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, ok := s.busy[strings.TrimSpace(id)]
	return ok
}

// Cancel clears the busy indicator. The upstream request is not aborted;
// its answer is still appended when it arrives.
func (s *Service) Cancel(ctx context.Context, id string) error {
	if _, err := s.Get(ctx, id); err != nil {
		return err
	}
	id = strings.TrimSpace(id)
	s.mu.Lock()
	_, was := s.busy[id]
	delete(s.busy, id)
	s.mu.Unlock()
	if was {
		s.events.publish(&Event{Kind: EventBusy, ConversationID: id, Busy: false})
	}
	return nil
}

// Subscribe streams events for one conversation until ctx is done.
func (s *Service) Subscribe(ctx context.Context, id string) (<-chan *Event, error) {
	c, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	return s.events.subscribe(ctx, c.ID), nil
}

func (s *Service) acquire(id string) (uint64, bool) {
	s.mu.Lock()
	if _, ok := s.busy[id]; ok {
		s.mu.Unlock()
		return 0, false
	}
	s.seq++
	token := s.seq
	s.busy[id] = token
	s.mu.Unlock()
	s.events.publish(&Event{Kind: EventBusy, ConversationID: id, Busy: true})
	return token, true
}

// release clears the busy flag unless Cancel already did and a newer submit
// owns it now.
func (s *Service) release(id string, token uint64) {
	s.mu.Lock()
	owned := s.busy[id] == token
	if owned {
		delete(s.busy, id)
	}
	s.mu.Unlock()
	if owned {
		s.events.publish(&Event{Kind: EventBusy, ConversationID: id, Busy: false})
	}
}

func (s *Service) lockFor(id string) *sync.Mutex {
	s.mu.Lock()
	defer s.mu.Unlock()
	l, ok := s.locks[id]
	if !ok {
		l = &sync.Mutex{}
		s.locks[id] = l
	}
	return l
}

// dropLock forgets the lock of a conversation that no longer exists, unless
// it was already replaced.
func (s *Service) dropLock(id string, l *sync.Mutex) {
	s.mu.Lock()
	if s.locks[id] == l {
		delete(s.locks, id)
	}
	s.mu.Unlock()
}

// update runs fn on a fresh copy of the conversation and saves the result.
// Read-modify-write cycles on one conversation never interleave.
func (s *Service) update(ctx context.Context, id string, fn func(c *conversation.Conversation) error) (*conversation.Conversation, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return nil, invalid("conversation id is required")
	}
	l := s.lockFor(id)
	l.Lock()
	defer l.Unlock()

	c, err := s.store.Get(ctx, id)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			s.dropLock(id, l)
		}
		return nil, err
	}
	if err := fn(c); err != nil {
		return nil, err
	}
	if err := s.store.Save(ctx, c); err != nil {
		return nil, err
	}
	return c, nil
}

func (s *Service) publishTurns(id string, turns ...conversation.Turn) {
	for i := range turns {
		t := turns[i]
		s.events.publish(&Event{Kind: EventTurn, ConversationID: id, Turn: &t})
	}
}

func (s *Service) publishSession(id string, sess filesession.Session, openViewer bool) {
	view := ViewOf(sess)
	s.events.publish(&Event{Kind: EventSession, ConversationID: id, Session: &view, OpenViewer: openViewer})
}
