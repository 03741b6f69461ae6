// Package events keeps the in-memory log of build events and fires
// notifications on status transitions.
package events

import (
	"context"
	"sync"
	"time"

	"buildwatchdog/internal/models"
	"buildwatchdog/internal/notify"
)

// DisplayLimit is how many events the dashboard shows.
const DisplayLimit = 8

// NotificationTitle is the title of every desktop notification.
const NotificationTitle = "BuildWatchDog"

// Log is an append-only event history. It remembers the last status it
// announced so transitions can be detected.
type Log struct {
	mode     models.NotifyMode
	notifier notify.Notifier
	now      func() time.Time

	mu      sync.RWMutex
	events  []models.BuildEvent
	last    string
	hasLast bool
}

// NewLog creates an empty log. A nil notifier discards notifications.
func NewLog(mode models.NotifyMode, notifier notify.Notifier) *Log {
	if notifier == nil {
		notifier = notify.Nop{}
	}
	return &Log{mode: mode, notifier: notifier, now: time.Now}
}

// SetClock replaces the timestamp source.
func (l *Log) SetClock(now func() time.Time) {
	l.now = now
}

// Seed records status as the last known status without logging an event.
func (l *Log) Seed(status string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.last = status
	l.hasLast = true
}

// Append records an event. When status differs from a previously recorded
// status the marker moves to status, and a desktop notification is sent if
// the mode allows it. The very first status never notifies.
func (l *Log) Append(ctx context.Context, status, message string) models.BuildEvent {
	event := models.BuildEvent{
		Timestamp: l.now(),
		Status:    status,
		Message:   message,
	}

	l.mu.Lock()
	l.events = append(l.events, event)
	changed := l.hasLast && status != l.last
	if changed {
		l.last = status
	}
	l.mu.Unlock()

	if changed && l.mode.Desktop() {
		l.notifier.Notify(ctx, NotificationTitle, message)
	}
	return event
}

// Last returns the last recorded status.
func (l *Log) Last() (string, bool) {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.last, l.hasLast
}

// Len returns the number of logged events.
func (l *Log) Len() int {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return len(l.events)
}

// All returns a copy of every logged event, oldest first.
func (l *Log) All() []models.BuildEvent {
	return l.Recent(0)
}

// Recent returns a copy of the newest n events, oldest first. n <= 0
// returns everything.
func (l *Log) Recent(n int) []models.BuildEvent {
	l.mu.RLock()
	defer l.mu.RUnlock()

	if len(l.events) == 0 {
		return nil
	}
	start := 0
	if n > 0 && len(l.events) > n {
		start = len(l.events) - n
	}
	out := make([]models.BuildEvent, len(l.events)-start)
	copy(out, l.events[start:])
	return out
}
