package core

import (
	"fmt"
	"time"

	"github.com/samber/lo"
)

// PresenceStatus is a user's simulated availability.
type PresenceStatus string

const (
	PresenceOnline  PresenceStatus = "online"
	PresenceAway    PresenceStatus = "away"
	PresenceOffline PresenceStatus = "offline"
)

// presenceStates is the full transition table: every draw lands in one of these.
var presenceStates = []PresenceStatus{PresenceOnline, PresenceAway, PresenceOffline}

// PresenceEntry is one roster row.
type PresenceEntry struct {
	UserID   string
	Name     string
	Status   PresenceStatus
	LastSeen *time.Time
}

// Roster is the ordered list of tracked users.
type Roster struct {
	entries []PresenceEntry
}

// NewRoster builds a roster from the given entries, keeping their order.
func NewRoster(entries ...PresenceEntry) *Roster {
	return &Roster{entries: append([]PresenceEntry(nil), entries...)}
}

// Replace swaps the roster contents, used when a connection seeds it.
func (r *Roster) Replace(entries []PresenceEntry) {
	r.entries = append(r.entries[:0], entries...)
}

// UpdateStatus overwrites the status of a user in place. Unknown ids are ignored.
func (r *Roster) UpdateStatus(userID string, status PresenceStatus, at time.Time) (PresenceEntry, bool) {
	_, i, ok := lo.FindIndexOf(r.entries, func(e PresenceEntry) bool { return e.UserID == userID })
	if !ok {
		return PresenceEntry{}, false
	}
	e := &r.entries[i]
	if status == PresenceOffline && e.Status != PresenceOffline {
		seen := at
		e.LastSeen = &seen
	}
	e.Status = status
	return *e, true
}

// Rename changes a user's display name. Unknown ids are ignored.
func (r *Roster) Rename(userID, name string) bool {
	_, i, ok := lo.FindIndexOf(r.entries, func(e PresenceEntry) bool { return e.UserID == userID })
	if !ok {
		return false
	}
	r.entries[i].Name = name
	return true
}

// Get returns the entry for a user.
func (r *Roster) Get(userID string) (PresenceEntry, bool) {
	return lo.Find(r.entries, func(e PresenceEntry) bool { return e.UserID == userID })
}

// Entries returns a copy of the roster.
func (r *Roster) Entries() []PresenceEntry {
	return append([]PresenceEntry(nil), r.entries...)
}

// Online returns the online users other than exclude.
func (r *Roster) Online(exclude string) []PresenceEntry {
	return lo.Filter(r.entries, func(e PresenceEntry, _ int) bool {
		return e.UserID != exclude && e.Status == PresenceOnline
	})
}

// PresenceChange describes one status flip produced by a tick.
type PresenceChange struct {
	Entry PresenceEntry
	From  PresenceStatus
}

// PresenceSimulator flips roster statuses at random on every tick.
type PresenceSimulator struct {
	roster      *Roster
	rng         Rand
	probability float64
	localUserID string
	now         func() time.Time
}

// NewPresenceSimulator builds a simulator that never touches localUserID.
func NewPresenceSimulator(roster *Roster, rng Rand, probability float64, localUserID string, now func() time.Time) *PresenceSimulator {
	return &PresenceSimulator{
		roster:      roster,
		rng:         rng,
		probability: probability,
		localUserID: localUserID,
		now:         now,
	}
}

// Tick runs one simulation round and returns the entries whose status changed.
func (p *PresenceSimulator) Tick() []PresenceChange {
	var changes []PresenceChange
	for _, e := range p.roster.Entries() {
		if e.UserID == p.localUserID || !chance(p.rng, p.probability) {
			continue
		}
		next := presenceStates[p.rng.IntN(len(presenceStates))]
		updated, ok := p.roster.UpdateStatus(e.UserID, next, p.now())
		if !ok || next == e.Status {
			continue
		}
		changes = append(changes, PresenceChange{Entry: updated, From: e.Status})
	}
	return changes
}

// PresenceNotification maps a status change to the toast it produces.
// Transitions into away are silent.
func PresenceNotification(change PresenceChange) (Notification, bool) {
	switch change.Entry.Status {
	case PresenceOnline:
		return Notification{
			Severity: SeverityInfo,
			Title:    "User Online",
			Body:     fmt.Sprintf("%s is now online", change.Entry.Name),
		}, true
	case PresenceOffline:
		return Notification{
			Severity: SeverityWarning,
			Title:    "User Offline",
			Body:     fmt.Sprintf("%s went offline", change.Entry.Name),
		}, true
	default:
		return Notification{}, false
	}
}
