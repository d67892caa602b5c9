package core

import (
	"time"

	"github.com/samber/lo"
)

// Severity is the visual class of a toast notification.
type Severity string

const (
	SeveritySuccess Severity = "success"
	SeverityInfo    Severity = "info"
	SeverityWarning Severity = "warning"
	SeverityError   Severity = "error"
)

// Position is the screen corner a toast stacks in.
type Position string

const (
	PositionTopRight    Position = "top-right"
	PositionTopLeft     Position = "top-left"
	PositionBottomRight Position = "bottom-right"
	PositionBottomLeft  Position = "bottom-left"
)

// DefaultNotificationDuration is used when neither the caller nor the profile sets one.
const DefaultNotificationDuration = 3 * time.Second

// Notification is a transient toast.
type Notification struct {
	ID        string
	Severity  Severity
	Title     string
	Body      string
	Position  Position
	CreatedAt time.Time
	Duration  time.Duration
}

// RemovalReason tells why a notification left the queue.
type RemovalReason string

const (
	RemovedExpired   RemovalReason = "expired"
	RemovedDismissed RemovalReason = "dismissed"
)

type queuedNotification struct {
	Notification
	timer TimerID
}

// NotificationQueue holds toasts until they expire or are dismissed.
type NotificationQueue struct {
	sched           *Scheduler
	newID           func() string
	defaultDuration time.Duration
	items           []queuedNotification
	onRemove        func(Notification, RemovalReason)
}

// NewNotificationQueue builds a queue whose expiry timers run on sched.
// onRemove, if set, is called after a notification leaves the queue.
func NewNotificationQueue(sched *Scheduler, newID func() string, defaultDuration time.Duration, onRemove func(Notification, RemovalReason)) *NotificationQueue {
	if defaultDuration <= 0 {
		defaultDuration = DefaultNotificationDuration
	}
	return &NotificationQueue{
		sched:           sched,
		newID:           newID,
		defaultDuration: defaultDuration,
		onRemove:        onRemove,
	}
}

// Push inserts n, fills in id, time, duration and position defaults,
// starts its expiry timer and returns the stored notification.
func (q *NotificationQueue) Push(n Notification) Notification {
	if n.ID == "" {
		n.ID = q.newID()
	}
	if n.Duration <= 0 {
		n.Duration = q.defaultDuration
	}
	if n.Position == "" {
		n.Position = PositionTopRight
	}
	if n.Severity == "" {
		n.Severity = SeverityInfo
	}
	if n.CreatedAt.IsZero() {
		n.CreatedAt = q.sched.Now()
	}

	id := n.ID
	timer := q.sched.After(GroupNotifications, n.Duration, func() {
		q.remove(id, RemovedExpired)
	})
	q.items = append(q.items, queuedNotification{Notification: n, timer: timer})
	return n
}

// Dismiss removes the notification immediately and cancels its timer.
// Unknown ids are ignored.
func (q *NotificationQueue) Dismiss(id string) bool {
	return q.remove(id, RemovedDismissed)
}

// Clear dismisses every notification.
func (q *NotificationQueue) Clear() {
	for len(q.items) > 0 {
		q.remove(q.items[0].ID, RemovedDismissed)
	}
}

func (q *NotificationQueue) remove(id string, reason RemovalReason) bool {
	_, i, ok := lo.FindIndexOf(q.items, func(item queuedNotification) bool {
		return item.ID == id
	})
	if !ok {
		return false
	}
	item := q.items[i]
	q.sched.Cancel(item.timer)
	q.items = append(q.items[:i], q.items[i+1:]...)
	if q.onRemove != nil {
		q.onRemove(item.Notification, reason)
	}
	return true
}

// Items returns the queued notifications in insertion order.
func (q *NotificationQueue) Items() []Notification {
	return lo.Map(q.items, func(item queuedNotification, _ int) Notification {
		return item.Notification
	})
}

// ByPosition groups the queued notifications per position, each stack in insertion order.
func (q *NotificationQueue) ByPosition() map[Position][]Notification {
	return lo.GroupBy(q.Items(), func(n Notification) Position {
		return n.Position
	})
}

// Len returns the number of queued notifications.
func (q *NotificationQueue) Len() int {
	return len(q.items)
}
