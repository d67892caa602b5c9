package core

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/benbjohnson/clock"
	"github.com/rs/zerolog"
	"github.com/samber/lo"
)

// HubConfig configures the session registry.
type HubConfig struct {
	ChatRoom Profile
	Chatbot  Profile
	// MaxSessions caps concurrently open sessions. Zero means unlimited.
	MaxSessions int
	// Seed makes session randomness reproducible. Zero seeds from the clock.
	Seed uint64
	// Responses overrides the counterpart reply source per kind.
	Responses map[Kind]func() ResponseSource
	Clock     clock.Clock
	Sanitize  func(string) string
	Logger    zerolog.Logger
}

// SessionInfo describes an open session.
type SessionInfo struct {
	ID        string
	Kind      Kind
	LocalName string
	OpenedAt  time.Time
}

type hubEntry struct {
	session *Session
	info    SessionInfo
}

// Hub owns every open session. Each session runs on its own goroutine.
type Hub struct {
	cfg    HubConfig
	ctx    context.Context
	cancel context.CancelFunc
	log    zerolog.Logger

	mu       sync.Mutex
	sessions map[string]hubEntry
	opened   uint64
	closed   bool
	wg       sync.WaitGroup
}

// NewHub creates a session registry.
func NewHub(cfg HubConfig) *Hub {
	if cfg.Clock == nil {
		cfg.Clock = clock.New()
	}
	ctx, cancel := context.WithCancel(context.Background())
	return &Hub{
		cfg:      cfg,
		ctx:      ctx,
		cancel:   cancel,
		log:      cfg.Logger.With().Str("component", "hub").Logger(),
		sessions: make(map[string]hubEntry),
	}
}

// Run blocks until ctx is cancelled, then stops every session.
func (h *Hub) Run(ctx context.Context) {
	select {
	case <-ctx.Done():
	case <-h.ctx.Done():
	}
	h.Shutdown()
}

// Open starts a new session of the given kind.
func (h *Hub) Open(kind Kind, localName string) (*Session, error) {
	profile, err := h.profile(kind)
	if err != nil {
		return nil, err
	}

	h.mu.Lock()
	defer h.mu.Unlock()

	if h.closed {
		return nil, ErrSessionClosed
	}
	if h.cfg.MaxSessions > 0 && len(h.sessions) >= h.cfg.MaxSessions {
		return nil, ErrTooManySessions
	}

	h.opened++
	var rng Rand
	if h.cfg.Seed != 0 {
		rng = NewRand(h.cfg.Seed + h.opened)
	} else {
		rng = NewRand(0)
	}
	var responses ResponseSource
	if mk, ok := h.cfg.Responses[kind]; ok && mk != nil {
		responses = mk()
	}

	s, err := NewSession(Options{
		Profile:   profile,
		Clock:     h.cfg.Clock,
		Rand:      rng,
		Responses: responses,
		LocalName: localName,
		Sanitize:  h.cfg.Sanitize,
		Logger:    h.cfg.Logger,
	})
	if err != nil {
		return nil, err
	}

	h.sessions[s.ID()] = hubEntry{
		session: s,
		info: SessionInfo{
			ID:        s.ID(),
			Kind:      kind,
			LocalName: s.localName,
			OpenedAt:  h.cfg.Clock.Now(),
		},
	}
	h.wg.Add(1)
	go func() {
		defer h.wg.Done()
		s.Run(h.ctx)
	}()

	h.log.Info().Str("session_id", s.ID()).Str("kind", string(kind)).Int("open", len(h.sessions)).Msg("session opened")
	return s, nil
}

// Get looks up an open session.
func (h *Hub) Get(id string) (*Session, error) {
	h.mu.Lock()
	defer h.mu.Unlock()

	e, ok := h.sessions[id]
	if !ok {
		return nil, ErrSessionNotFound
	}
	return e.session, nil
}

// Close stops a session and waits for its loop to exit.
func (h *Hub) Close(id string) error {
	h.mu.Lock()
	e, ok := h.sessions[id]
	if ok {
		delete(h.sessions, id)
	}
	h.mu.Unlock()

	if !ok {
		return ErrSessionNotFound
	}
	e.session.Close()
	<-e.session.Done()
	h.log.Info().Str("session_id", id).Msg("session closed")
	return nil
}

// List returns the open sessions ordered by id, which follows opening order.
func (h *Hub) List() []SessionInfo {
	h.mu.Lock()
	infos := lo.MapToSlice(h.sessions, func(_ string, e hubEntry) SessionInfo { return e.info })
	h.mu.Unlock()

	sort.Slice(infos, func(i, j int) bool { return infos[i].ID < infos[j].ID })
	return infos
}

// Len returns the number of open sessions.
func (h *Hub) Len() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.sessions)
}

// Shutdown stops every session and waits for them. Open fails afterwards.
func (h *Hub) Shutdown() {
	h.mu.Lock()
	if h.closed {
		h.mu.Unlock()
		return
	}
	h.closed = true
	h.sessions = make(map[string]hubEntry)
	h.mu.Unlock()

	h.cancel()
	h.wg.Wait()
	h.log.Info().Msg("hub stopped")
}

func (h *Hub) profile(kind Kind) (Profile, error) {
	switch kind {
	case KindChatRoom:
		p := h.cfg.ChatRoom
		if p.Kind == "" {
			p = DefaultChatRoomProfile()
		}
		return p, nil
	case KindChatbot:
		p := h.cfg.Chatbot
		if p.Kind == "" {
			p = DefaultChatbotProfile()
		}
		return p, nil
	default:
		return Profile{}, coreError(ErrCodeBadRequest, "unknown session kind "+string(kind))
	}
}
