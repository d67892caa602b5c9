package core

import (
	"testing"
	"time"

	"github.com/benbjohnson/clock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSchedulerRunsCallbacksOnLoop(t *testing.T) {
	mock := clock.NewMock()
	l := newLoop()
	s := NewScheduler(mock, l.post)

	var fired []string
	s.After(GroupConversation, time.Second, func() { fired = append(fired, "a") })
	s.After(GroupBackground, 2*time.Second, func() { fired = append(fired, "b") })
	require.Equal(t, 1, s.Pending(GroupConversation))
	require.Equal(t, 1, s.Pending(GroupBackground))

	mock.Add(time.Second)
	l.run(t, 1)
	assert.Equal(t, []string{"a"}, fired)
	assert.Zero(t, s.Pending(GroupConversation))

	mock.Add(time.Second)
	l.run(t, 1)
	assert.Equal(t, []string{"a", "b"}, fired)
	assert.Zero(t, s.Pending(GroupBackground))
}

func TestSchedulerCancelGroupLeavesOthers(t *testing.T) {
	mock := clock.NewMock()
	l := newLoop()
	s := NewScheduler(mock, l.post)

	var fired []TimerGroup
	for _, g := range []TimerGroup{GroupConversation, GroupConversation, GroupNotifications} {
		g := g
		s.After(g, time.Second, func() { fired = append(fired, g) })
	}

	require.Equal(t, 2, s.CancelGroup(GroupConversation))
	mock.Add(time.Second)
	l.run(t, 1)
	l.idle(t)

	assert.Equal(t, []TimerGroup{GroupNotifications}, fired)
}

func TestSchedulerDropsCallbackCancelledInFlight(t *testing.T) {
	mock := clock.NewMock()
	l := newLoop()
	s := NewScheduler(mock, l.post)

	ran := false
	id := s.After(GroupConversation, time.Second, func() { ran = true })

	// The timer fires and posts, but the loop cancels before running it.
	mock.Add(time.Second)
	var task func()
	select {
	case task = <-l.tasks:
	case <-time.After(waitFor):
		t.Fatal("timer did not post")
	}
	require.True(t, s.Cancel(id))
	task()

	assert.False(t, ran)
	assert.False(t, s.Cancel(id))
}

func TestSchedulerCancelAll(t *testing.T) {
	mock := clock.NewMock()
	l := newLoop()
	s := NewScheduler(mock, l.post)

	s.After(GroupConversation, time.Second, func() { t.Error("conversation timer ran") })
	s.After(GroupNotifications, time.Second, func() { t.Error("notification timer ran") })
	s.After(GroupBackground, time.Second, func() { t.Error("background timer ran") })

	require.Equal(t, 3, s.CancelAll())
	mock.Add(2 * time.Second)
	l.idle(t)
}
