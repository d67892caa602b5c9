package core

import (
	"time"

	"github.com/benbjohnson/clock"
)

// TimerGroup partitions scheduled callbacks so they can be cancelled together.
type TimerGroup int

const (
	// GroupConversation holds delivery, reply, typing and welcome timers.
	// It is cleared on reset.
	GroupConversation TimerGroup = iota
	// GroupNotifications holds toast expiry timers.
	GroupNotifications
	// GroupBackground holds connect, presence and chatter timers.
	GroupBackground
)

// TimerID identifies a scheduled callback.
type TimerID uint64

type pendingTimer struct {
	timer *clock.Timer
	group TimerGroup
}

// Scheduler keeps the handle of every callback a session scheduled.
// Callbacks never run on the timer goroutine: they are handed to post,
// which must execute them on the owning loop. A callback whose handle was
// cancelled before it reached the loop is dropped there.
//
// Scheduler is confined to the owning loop like the rest of the session state.
type Scheduler struct {
	clock   clock.Clock
	post    func(func())
	next    TimerID
	pending map[TimerID]pendingTimer
}

// NewScheduler builds a scheduler that hands fired callbacks to post.
func NewScheduler(clk clock.Clock, post func(func())) *Scheduler {
	return &Scheduler{
		clock:   clk,
		post:    post,
		pending: make(map[TimerID]pendingTimer),
	}
}

// After schedules fn to run on the loop once d has elapsed.
func (s *Scheduler) After(group TimerGroup, d time.Duration, fn func()) TimerID {
	if d < 0 {
		d = 0
	}
	s.next++
	id := s.next
	t := s.clock.AfterFunc(d, func() {
		s.post(func() { s.fire(id, fn) })
	})
	s.pending[id] = pendingTimer{timer: t, group: group}
	return id
}

func (s *Scheduler) fire(id TimerID, fn func()) {
	if _, ok := s.pending[id]; !ok {
		return
	}
	delete(s.pending, id)
	fn()
}

// Cancel stops a single callback. Returns false if it already ran or was cancelled.
func (s *Scheduler) Cancel(id TimerID) bool {
	p, ok := s.pending[id]
	if !ok {
		return false
	}
	p.timer.Stop()
	delete(s.pending, id)
	return true
}

// CancelGroup stops every pending callback of the group and returns how many were stopped.
func (s *Scheduler) CancelGroup(group TimerGroup) int {
	n := 0
	for id, p := range s.pending {
		if p.group != group {
			continue
		}
		p.timer.Stop()
		delete(s.pending, id)
		n++
	}
	return n
}

// CancelAll stops every pending callback.
func (s *Scheduler) CancelAll() int {
	n := len(s.pending)
	for id, p := range s.pending {
		p.timer.Stop()
		delete(s.pending, id)
	}
	return n
}

// Pending returns the number of callbacks still scheduled in the group.
func (s *Scheduler) Pending(group TimerGroup) int {
	n := 0
	for _, p := range s.pending {
		if p.group == group {
			n++
		}
	}
	return n
}

// Now returns the scheduler clock's current time.
func (s *Scheduler) Now() time.Time {
	return s.clock.Now()
}
