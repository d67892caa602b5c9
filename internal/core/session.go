package core

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"github.com/benbjohnson/clock"
	"github.com/rs/zerolog"
	"github.com/samber/lo"

	"github.com/trinetra/chatsim-server/internal/content"
	"github.com/trinetra/chatsim-server/internal/utils"
)

// Options configures a Session. Zero values pick production defaults.
type Options struct {
	ID        string
	Profile   Profile
	Clock     clock.Clock
	Rand      Rand
	Responses ResponseSource
	Chatter   []string
	LocalName string
	NewID     func() string
	Sanitize  func(string) string
	Logger    zerolog.Logger
}

// View is a read-only snapshot of a session.
type View struct {
	ID            string
	Kind          Kind
	State         State
	LocalName     string
	Messages      []Message
	Notifications []Notification
	Roster        []PresenceEntry
}

type pendingReply struct {
	prompt string
	typing bool
	timers []TimerID
}

// Session is one simulated conversation. All state is owned by the
// goroutine running Run; the exported methods hand work to it and wait.
type Session struct {
	id        string
	profile   Profile
	clock     clock.Clock
	rng       Rand
	responses ResponseSource
	chatter   []string
	newID     func() string
	sanitize  func(string) string
	log       zerolog.Logger

	state     State
	localName string
	seeded    bool
	connectID TimerID
	replies   []*pendingReply

	sched    *Scheduler
	messages *MessageStore
	toasts   *NotificationQueue
	roster   *Roster
	presence *PresenceSimulator
	delivery *DeliveryProgression
	audience *Audience

	tasks     chan func()
	quit      chan struct{}
	stopped   chan struct{}
	closeOnce sync.Once
}

// NewSession builds a session. Call Run to start it.
func NewSession(opts Options) (*Session, error) {
	if err := opts.Profile.Validate(); err != nil {
		return nil, fmt.Errorf("invalid profile: %w", err)
	}

	s := &Session{
		id:        opts.ID,
		profile:   opts.Profile,
		clock:     opts.Clock,
		rng:       opts.Rand,
		responses: opts.Responses,
		chatter:   opts.Chatter,
		newID:     opts.NewID,
		sanitize:  opts.Sanitize,
		localName: opts.LocalName,
		tasks:     make(chan func(), 64),
		quit:      make(chan struct{}),
		stopped:   make(chan struct{}),
	}
	if s.newID == nil {
		s.newID = utils.NewID
	}
	if s.id == "" {
		s.id = s.newID()
	}
	if s.clock == nil {
		s.clock = clock.New()
	}
	if s.rng == nil {
		s.rng = NewRand(0)
	}
	if s.sanitize == nil {
		s.sanitize = content.Sanitize
	}
	if s.localName == "" {
		s.localName = DefaultLocalName
	}
	if s.responses == nil {
		if s.profile.Kind == KindChatbot {
			s.responses = NewRandomPool(s.rng, ChatbotReplies()...)
		} else {
			s.responses = NewRandomPool(s.rng, ChatRoomReplies()...)
		}
	}
	if s.chatter == nil {
		s.chatter = ChatterLines()
	}
	s.log = opts.Logger.With().Str("session_id", s.id).Str("kind", string(s.profile.Kind)).Logger()

	s.sched = NewScheduler(s.clock, s.post)
	s.messages = NewMessageStore()
	s.toasts = NewNotificationQueue(s.sched, s.newID, s.profile.NotificationDuration, s.onToastRemoved)
	s.roster = NewRoster()
	s.presence = NewPresenceSimulator(s.roster, s.rng, s.profile.PresenceChangeProbability, LocalUserID, s.clock.Now)
	s.delivery = NewDeliveryProgression(s.sched, s.profile.Delivery, s.updateStatus)
	s.audience = NewAudience()

	return s, nil
}

// ID returns the session identifier.
func (s *Session) ID() string { return s.id }

// Kind returns which demo the session simulates.
func (s *Session) Kind() Kind { return s.profile.Kind }

// Done is closed once Run has returned.
func (s *Session) Done() <-chan struct{} { return s.stopped }

// Run processes session work until ctx is cancelled or Close is called.
// It must be called exactly once.
func (s *Session) Run(ctx context.Context) {
	defer close(s.stopped)

	s.start()
	s.log.Debug().Msg("session started")

	for {
		select {
		case <-ctx.Done():
			s.teardown()
			return
		case <-s.quit:
			s.teardown()
			return
		case fn := <-s.tasks:
			fn()
		}
	}
}

// Close stops the session. Pending timers are cancelled and subscriber
// channels are closed by the loop on its way out.
func (s *Session) Close() {
	s.closeOnce.Do(func() { close(s.quit) })
}

// post queues fn for the loop. Used by timer goroutines.
func (s *Session) post(fn func()) {
	select {
	case s.tasks <- fn:
	case <-s.quit:
	case <-s.stopped:
	}
}

// call runs fn on the loop and waits for it.
func (s *Session) call(fn func()) error {
	done := make(chan struct{})
	task := func() {
		fn()
		close(done)
	}
	select {
	case s.tasks <- task:
	case <-s.quit:
		return ErrSessionClosed
	case <-s.stopped:
		return ErrSessionClosed
	}
	select {
	case <-done:
		return nil
	case <-s.stopped:
		return ErrSessionClosed
	}
}

// Submit sends a user message. When the session is not connected an error
// toast is pushed and the result is not accepted.
func (s *Session) Submit(text string) (SubmitResult, error) {
	var (
		res SubmitResult
		err error
	)
	if callErr := s.call(func() { res, err = s.submit(text) }); callErr != nil {
		return SubmitResult{}, callErr
	}
	return res, err
}

// SelectQuickReply behaves exactly like Submit.
func (s *Session) SelectQuickReply(text string) (SubmitResult, error) {
	return s.Submit(text)
}

// SelectSuggestion behaves exactly like Submit.
func (s *Session) SelectSuggestion(text string) (SubmitResult, error) {
	return s.Submit(text)
}

// Upload appends a file-upload echo message for the given file name.
func (s *Session) Upload(name string) (SubmitResult, error) {
	var (
		res SubmitResult
		err error
	)
	if callErr := s.call(func() { res, err = s.upload(name) }); callErr != nil {
		return SubmitResult{}, callErr
	}
	return res, err
}

// Dismiss removes a toast. Unknown ids are ignored.
func (s *Session) Dismiss(id string) (bool, error) {
	var removed bool
	err := s.call(func() { removed = s.toasts.Dismiss(id) })
	return removed, err
}

// ClearNotifications dismisses every queued toast.
func (s *Session) ClearNotifications() error {
	return s.call(s.toasts.Clear)
}

// Reset clears the conversation and cancels its pending timers.
func (s *Session) Reset() error {
	return s.call(s.reset)
}

// Connect reconnects a disconnected session after the profile connect delay.
func (s *Session) Connect() error {
	return s.call(s.connect)
}

// Disconnect drops the simulated connection and cancels pending replies.
func (s *Session) Disconnect() error {
	return s.call(s.disconnect)
}

// SetLocalName renames the local user.
func (s *Session) SetLocalName(name string) error {
	var err error
	if callErr := s.call(func() { err = s.rename(name) }); callErr != nil {
		return callErr
	}
	return err
}

// Snapshot returns a copy of the session state.
func (s *Session) Snapshot() (View, error) {
	var v View
	err := s.call(func() { v = s.view() })
	return v, err
}

// Subscribe registers a new event subscriber.
func (s *Session) Subscribe(buffer int) (*Subscriber, error) {
	sub := NewSubscriber(s.newID(), buffer)
	if err := s.call(func() { s.audience.Add(sub) }); err != nil {
		return nil, err
	}
	return sub, nil
}

// Attach subscribes and snapshots in one step, so the subscriber receives
// exactly the events that happen after the returned view.
func (s *Session) Attach(buffer int) (*Subscriber, View, error) {
	sub := NewSubscriber(s.newID(), buffer)
	var v View
	err := s.call(func() {
		s.audience.Add(sub)
		v = s.view()
	})
	if err != nil {
		return nil, View{}, err
	}
	return sub, v, nil
}

// Unsubscribe removes the subscriber and closes its channel.
func (s *Session) Unsubscribe(sub *Subscriber) error {
	return s.call(func() { s.audience.Remove(sub) })
}

// Execute dispatches a client command.
func (s *Session) Execute(cmd Command) (*SubmitResult, error) {
	switch cmd.Kind {
	case CommandSubmit:
		res, err := s.Submit(cmd.Text)
		return &res, err
	case CommandQuickReply:
		res, err := s.SelectQuickReply(cmd.Text)
		return &res, err
	case CommandSuggestion:
		res, err := s.SelectSuggestion(cmd.Text)
		return &res, err
	case CommandUpload:
		res, err := s.Upload(cmd.Text)
		return &res, err
	case CommandDismiss:
		_, err := s.Dismiss(cmd.ID)
		return nil, err
	case CommandReset:
		return nil, s.Reset()
	case CommandConnect:
		return nil, s.Connect()
	case CommandDisconnect:
		return nil, s.Disconnect()
	case CommandRename:
		return nil, s.SetLocalName(cmd.Text)
	case CommandClearNotifications:
		return nil, s.ClearNotifications()
	default:
		return nil, ErrUnknownCommand
	}
}

// Everything below runs on the loop.

func (s *Session) view() View {
	return View{
		ID:            s.id,
		Kind:          s.profile.Kind,
		State:         s.state,
		LocalName:     s.localName,
		Messages:      s.messages.Messages(),
		Notifications: s.toasts.Items(),
		Roster:        s.roster.Entries(),
	}
}

func (s *Session) start() {
	if s.profile.ConnectDelay <= 0 {
		s.state = StateIdle
		s.connected()
		return
	}
	s.state = StateConnecting
	s.connectID = s.sched.After(GroupBackground, s.profile.ConnectDelay, s.connected)
}

func (s *Session) connected() {
	s.connectID = 0
	s.setState(StateIdle)
	if s.profile.ConnectDelay > 0 {
		s.notify(Notification{
			Severity: SeveritySuccess,
			Title:    "Connected",
			Body:     "Successfully connected to chat room",
		})
	}
	if s.seeded {
		return
	}
	s.seeded = true
	s.seed()
	if s.profile.PresenceInterval > 0 {
		s.sched.After(GroupBackground, s.profile.PresenceInterval, s.presenceTick)
	}
	if s.profile.ChatterInterval > 0 {
		s.sched.After(GroupBackground, s.profile.ChatterInterval, s.chatterTick)
	}
}

func (s *Session) seed() {
	switch s.profile.Kind {
	case KindChatRoom:
		s.roster.Replace(DefaultRoster(s.localName, s.clock.Now()))
		for _, e := range s.roster.Entries() {
			entry := e
			s.broadcast(&Event{Kind: EventPresenceChanged, Presence: &entry})
		}
		s.appendMessage(Message{
			ID:        s.newID(),
			Text:      ChatRoomWelcome,
			Sender:    SenderSystem,
			CreatedAt: s.clock.Now(),
		})
	case KindChatbot:
		s.appendBotMessage(ChatbotWelcome())
	}
}

func (s *Session) connect() {
	if s.state != StateDisconnected {
		return
	}
	if s.profile.ConnectDelay <= 0 {
		s.connected()
		return
	}
	s.setState(StateConnecting)
	s.connectID = s.sched.After(GroupBackground, s.profile.ConnectDelay, s.connected)
}

func (s *Session) disconnect() {
	if s.state == StateDisconnected {
		return
	}
	if s.connectID != 0 {
		s.sched.Cancel(s.connectID)
		s.connectID = 0
	}
	s.dropReplies()
	s.setState(StateDisconnected)
	s.log.Debug().Msg("session disconnected")
}

func (s *Session) submit(text string) (SubmitResult, error) {
	text = strings.TrimSpace(s.sanitize(text))
	if text == "" {
		return SubmitResult{}, ErrEmptyMessage
	}
	if !s.state.Connected() {
		s.rejectNotConnected()
		return SubmitResult{Accepted: false}, nil
	}

	msg := Message{
		ID:        s.newID(),
		Text:      text,
		Sender:    SenderUser,
		Author:    s.localName,
		CreatedAt: s.clock.Now(),
		Status:    StatusSending,
	}
	s.appendMessage(msg)
	s.delivery.Start(msg.ID)

	if s.profile.ConfirmSends {
		s.notify(Notification{
			Severity: SeveritySuccess,
			Title:    "Message Sent",
			Body:     "Your message was delivered successfully",
		})
	}
	if chance(s.rng, s.profile.ReplyProbability) {
		s.scheduleReply(text)
	}

	s.log.Debug().Str("message_id", msg.ID).Msg("message submitted")
	return SubmitResult{Accepted: true, Message: msg}, nil
}

func (s *Session) upload(name string) (SubmitResult, error) {
	name = strings.TrimSpace(s.sanitize(name))
	if name == "" {
		return SubmitResult{}, ErrEmptyMessage
	}
	if !s.state.Connected() {
		s.rejectNotConnected()
		return SubmitResult{Accepted: false}, nil
	}
	msg := Message{
		ID:        s.newID(),
		Text:      "📎 Uploaded: " + name,
		Sender:    SenderUser,
		Author:    s.localName,
		CreatedAt: s.clock.Now(),
		Status:    StatusSent,
	}
	s.appendMessage(msg)
	return SubmitResult{Accepted: true, Message: msg}, nil
}

func (s *Session) rejectNotConnected() {
	s.notify(Notification{
		Severity: SeverityError,
		Title:    "Connection Error",
		Body:     "Not connected to chat room",
	})
	s.log.Debug().Str("state", string(s.state)).Msg("submit rejected: not connected")
}

func (s *Session) scheduleReply(prompt string) {
	r := &pendingReply{prompt: prompt}
	delay := between(s.rng, s.profile.ReplyDelayMin, s.profile.ReplyDelayMax)

	if s.profile.TypingDelay > 0 && s.profile.TypingDelay < delay {
		r.timers = append(r.timers, s.sched.After(GroupConversation, s.profile.TypingDelay, func() {
			r.typing = true
			s.setState(s.turnState())
		}))
	}
	r.timers = append(r.timers, s.sched.After(GroupConversation, delay, func() {
		s.deliverReply(r)
	}))

	s.replies = append(s.replies, r)
	s.setState(s.turnState())
}

func (s *Session) deliverReply(r *pendingReply) {
	s.replies = lo.Without(s.replies, r)
	// Typing ends before the reply shows up.
	s.setState(s.turnState())

	resp := s.responses.Next(r.prompt)
	if s.profile.Kind == KindChatbot {
		s.appendBotMessage(resp)
	} else {
		s.appendMessage(Message{
			ID:           s.newID(),
			Text:         resp.Text,
			Sender:       SenderCounterpart,
			Author:       "Assistant",
			CreatedAt:    s.clock.Now(),
			QuickReplies: resp.QuickReplies,
			Suggestions:  resp.Suggestions,
		})
	}
	if s.profile.AnnounceReplies {
		s.notify(Notification{
			Severity: SeverityInfo,
			Title:    "Bot Response",
			Body:     "Assistant replied to your message",
		})
	}
}

func (s *Session) appendBotMessage(resp Response) {
	s.appendMessage(Message{
		ID:           s.newID(),
		Text:         resp.Text,
		Sender:       SenderCounterpart,
		Author:       "AI Assistant",
		CreatedAt:    s.clock.Now(),
		Status:       StatusRead,
		QuickReplies: resp.QuickReplies,
		Suggestions:  resp.Suggestions,
	})
}

// dropReplies cancels every pending reply and typing timer.
func (s *Session) dropReplies() {
	for _, r := range s.replies {
		for _, id := range r.timers {
			s.sched.Cancel(id)
		}
	}
	s.replies = nil
}

// turnState derives the connected sub-state from the pending replies.
func (s *Session) turnState() State {
	if !s.state.Connected() {
		return s.state
	}
	switch {
	case lo.SomeBy(s.replies, func(r *pendingReply) bool { return r.typing }):
		return StateTyping
	case len(s.replies) > 0:
		return StateAwaitingReply
	default:
		return StateIdle
	}
}

func (s *Session) reset() {
	cancelled := s.sched.CancelGroup(GroupConversation)
	s.replies = nil
	s.messages.Reset()
	s.broadcast(&Event{Kind: EventConversationReset})
	s.setState(s.turnState())

	if s.profile.ClearedWelcomeDelay > 0 {
		s.sched.After(GroupConversation, s.profile.ClearedWelcomeDelay, func() {
			if s.profile.Kind == KindChatbot {
				s.appendBotMessage(ChatbotClearedWelcome())
				return
			}
			s.appendMessage(Message{
				ID:        s.newID(),
				Text:      ChatRoomWelcome,
				Sender:    SenderSystem,
				CreatedAt: s.clock.Now(),
			})
		})
	}
	s.log.Debug().Int("cancelled_timers", cancelled).Msg("conversation reset")
}

func (s *Session) rename(name string) error {
	name = strings.TrimSpace(s.sanitize(name))
	if name == "" {
		return coreError(ErrCodeBadRequest, "name is required")
	}
	s.localName = name
	if s.roster.Rename(LocalUserID, name) {
		if e, ok := s.roster.Get(LocalUserID); ok {
			s.broadcast(&Event{Kind: EventPresenceChanged, Presence: &e})
		}
	}
	return nil
}

func (s *Session) presenceTick() {
	for _, change := range s.presence.Tick() {
		entry := change.Entry
		s.broadcast(&Event{Kind: EventPresenceChanged, Presence: &entry})
		if n, ok := PresenceNotification(change); ok {
			s.notify(n)
		}
	}
	s.sched.After(GroupBackground, s.profile.PresenceInterval, s.presenceTick)
}

func (s *Session) chatterTick() {
	defer s.sched.After(GroupBackground, s.profile.ChatterInterval, s.chatterTick)

	if !s.state.Connected() || len(s.chatter) == 0 || !chance(s.rng, s.profile.ChatterProbability) {
		return
	}
	senders := s.roster.Online(LocalUserID)
	if len(senders) == 0 {
		return
	}
	sender := senders[s.rng.IntN(len(senders))]
	s.appendMessage(Message{
		ID:        s.newID(),
		Text:      s.chatter[s.rng.IntN(len(s.chatter))],
		Sender:    SenderCounterpart,
		Author:    sender.Name,
		CreatedAt: s.clock.Now(),
	})
	s.notify(Notification{
		Severity: SeverityInfo,
		Title:    "New Message",
		Body:     fmt.Sprintf("%s sent a message", sender.Name),
	})
}

func (s *Session) teardown() {
	cancelled := s.sched.CancelAll()
	s.audience.CloseAll()
	s.log.Debug().Int("cancelled_timers", cancelled).Msg("session stopped")
}

func (s *Session) appendMessage(msg Message) {
	s.messages.Append(msg)
	stored, _ := s.messages.Get(msg.ID)
	s.broadcast(&Event{Kind: EventMessageAppended, Message: &stored, MessageID: stored.ID})
}

func (s *Session) updateStatus(id string, status Status) {
	if !s.messages.UpdateStatus(id, status) {
		return
	}
	s.broadcast(&Event{Kind: EventMessageStatus, MessageID: id, Status: status})
}

func (s *Session) notify(n Notification) Notification {
	stored := s.toasts.Push(n)
	s.broadcast(&Event{Kind: EventNotificationPushed, Notification: &stored})
	return stored
}

func (s *Session) onToastRemoved(n Notification, reason RemovalReason) {
	s.broadcast(&Event{Kind: EventNotificationRemoved, Notification: &n, Removal: reason})
}

func (s *Session) setState(st State) {
	if s.state == st {
		return
	}
	s.state = st
	s.broadcast(&Event{Kind: EventStateChanged, State: st})
}

func (s *Session) broadcast(ev *Event) {
	ev.SessionID = s.id
	if ev.State == "" {
		ev.State = s.state
	}
	s.audience.Broadcast(ev)
}
