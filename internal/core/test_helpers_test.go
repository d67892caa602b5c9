package core

import (
	"context"
	"testing"
	"time"

	"github.com/benbjohnson/clock"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"
)

const waitFor = 2 * time.Second

// fixedRand always draws the same values.
type fixedRand struct {
	f float64
	i int
}

func (r fixedRand) Float64() float64 { return r.f }

func (r fixedRand) IntN(n int) int { return r.i % n }

// loop stands in for the session goroutine in scheduler-level tests.
type loop struct {
	tasks chan func()
}

func newLoop() *loop {
	return &loop{tasks: make(chan func(), 64)}
}

func (l *loop) post(fn func()) { l.tasks <- fn }

// run executes posted tasks until n have run.
func (l *loop) run(t *testing.T, n int) {
	t.Helper()
	for i := 0; i < n; i++ {
		select {
		case fn := <-l.tasks:
			fn()
		case <-time.After(waitFor):
			t.Fatalf("expected %d posted tasks, got %d", n, i)
		}
	}
}

// idle asserts that nothing is posted for a short while.
func (l *loop) idle(t *testing.T) {
	t.Helper()
	select {
	case <-l.tasks:
		t.Fatal("unexpected task posted")
	case <-time.After(50 * time.Millisecond):
	}
}

type harness struct {
	t       *testing.T
	clock   *clock.Mock
	session *Session
}

func newHarness(t *testing.T, profile Profile, rng Rand, responses ResponseSource) *harness {
	t.Helper()

	mock := clock.NewMock()
	s, err := NewSession(Options{
		Profile:   profile,
		Clock:     mock,
		Rand:      rng,
		Responses: responses,
		Logger:    zerolog.Nop(),
	})
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	go s.Run(ctx)
	t.Cleanup(func() {
		cancel()
		<-s.Done()
	})

	// Run schedules the start-up timers; wait for it so the first advance sees them.
	_, err = s.Snapshot()
	require.NoError(t, err)

	return &harness{t: t, clock: mock, session: s}
}

// advance moves the mock clock in small steps so callbacks fired by one step
// reach the loop before the next step fires more.
func (h *harness) advance(d time.Duration) {
	h.t.Helper()
	const step = 250 * time.Millisecond
	for d > 0 {
		n := step
		if d < n {
			n = d
		}
		h.clock.Add(n)
		d -= n
		// Round-trip through the loop so posted callbacks queued ahead of it run.
		_, err := h.session.Snapshot()
		require.NoError(h.t, err)
	}
}

func (h *harness) view() View {
	h.t.Helper()
	v, err := h.session.Snapshot()
	require.NoError(h.t, err)
	return v
}

func (h *harness) eventually(cond func(View) bool, msg string) {
	h.t.Helper()
	require.Eventually(h.t, func() bool {
		v, err := h.session.Snapshot()
		return err == nil && cond(v)
	}, waitFor, 5*time.Millisecond, msg)
}

func toastTitles(v View) []string {
	titles := make([]string, 0, len(v.Notifications))
	for _, n := range v.Notifications {
		titles = append(titles, n.Title)
	}
	return titles
}

func lastMessage(v View) Message {
	if len(v.Messages) == 0 {
		return Message{}
	}
	return v.Messages[len(v.Messages)-1]
}

func mustEvent(t *testing.T, ch <-chan *Event, kind EventKind) *Event {
	t.Helper()

	deadline := time.After(waitFor)
	for {
		select {
		case ev, ok := <-ch:
			require.True(t, ok, "event channel closed before %v", kind)
			if ev.Kind == kind {
				return ev
			}
		case <-deadline:
			t.Fatalf("expected event kind %v not received", kind)
			return nil
		}
	}
}

// quietChatRoom is the chat room profile without background chatter or presence.
func quietChatRoom() Profile {
	p := DefaultChatRoomProfile()
	p.PresenceInterval = 0
	p.ChatterInterval = 0
	return p
}
