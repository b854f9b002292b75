package application

import (
	"sync"
	"time"

	"github.com/google/uuid"

	"solvectl/internal/domain"
	"solvectl/internal/ports"
)

const (
	notifierCapacity = 3
	notificationTTL  = 5 * time.Second
)

// Notifier is the process-wide queue of ephemeral user-facing messages.
// New entries go to the head; the sequence is bounded and each entry expires
// after a fixed delay independent of later insertions.
type Notifier struct {
	clock ports.Clock

	mu           sync.Mutex
	items        []domain.Notification
	timers       map[domain.NotificationID]ports.Timer
	listeners    map[int]func([]domain.Notification)
	nextListener int
}

func NewNotifier(clock ports.Clock) *Notifier {
	if clock == nil {
		clock = ports.SystemClock{}
	}

	return &Notifier{
		clock:     clock,
		timers:    map[domain.NotificationID]ports.Timer{},
		listeners: map[int]func([]domain.Notification){},
	}
}

// Enqueue inserts at the head, dropping oldest entries beyond capacity, and
// schedules removal of this specific entry after the fixed delay.
func (n *Notifier) Enqueue(message string, severity domain.Severity) domain.NotificationID {
	id := domain.NotificationID(uuid.NewString())

	n.mu.Lock()
	note := domain.Notification{
		ID:        id,
		Message:   message,
		Severity:  severity,
		CreatedAt: n.clock.Now(),
	}
	n.items = append([]domain.Notification{note}, n.items...)

	for len(n.items) > notifierCapacity {
		dropped := n.items[len(n.items)-1]
		n.items = n.items[:len(n.items)-1]
		if timer, ok := n.timers[dropped.ID]; ok {
			timer.Stop()
			delete(n.timers, dropped.ID)
		}
	}

	n.timers[id] = n.clock.AfterFunc(notificationTTL, func() {
		n.Dismiss(id)
	})

	snap, listeners := n.snapshotLocked()
	n.mu.Unlock()

	notifyAll(snap, listeners)
	return id
}

// Dismiss removes an entry immediately. The scheduled expiry becomes a
// no-op once the entry is gone; dismissing an unknown id does nothing.
func (n *Notifier) Dismiss(id domain.NotificationID) {
	n.mu.Lock()
	if timer, ok := n.timers[id]; ok {
		timer.Stop()
		delete(n.timers, id)
	}

	index := -1
	for i, note := range n.items {
		if note.ID == id {
			index = i
			break
		}
	}
	if index < 0 {
		n.mu.Unlock()
		return
	}
	n.items = append(n.items[:index], n.items[index+1:]...)

	snap, listeners := n.snapshotLocked()
	n.mu.Unlock()

	notifyAll(snap, listeners)
}

func (n *Notifier) Notifications() []domain.Notification {
	n.mu.Lock()
	defer n.mu.Unlock()
	snap, _ := n.snapshotLocked()
	return snap
}

// Subscribe registers an observer invoked synchronously on every change;
// the returned cancel detaches it without affecting others.
func (n *Notifier) Subscribe(fn func([]domain.Notification)) func() {
	n.mu.Lock()
	id := n.nextListener
	n.nextListener++
	n.listeners[id] = fn
	n.mu.Unlock()

	return func() {
		n.mu.Lock()
		delete(n.listeners, id)
		n.mu.Unlock()
	}
}

func (n *Notifier) snapshotLocked() ([]domain.Notification, []func([]domain.Notification)) {
	items := make([]domain.Notification, len(n.items))
	copy(items, n.items)

	listeners := make([]func([]domain.Notification), 0, len(n.listeners))
	for _, fn := range n.listeners {
		listeners = append(listeners, fn)
	}

	return items, listeners
}

func notifyAll(items []domain.Notification, listeners []func([]domain.Notification)) {
	for _, fn := range listeners {
		fn(items)
	}
}
