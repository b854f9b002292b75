package application

import (
	"context"
	"fmt"
	"sync"
	"time"

	"solvectl/internal/domain"
	"solvectl/internal/ports"
)

const (
	defaultFeedInterval = 10 * time.Second
	defaultFeedLimit    = 50
)

// CredentialSource supplies the bearer token for each fetch; *Session
// satisfies it.
type CredentialSource interface {
	Credential() string
}

// TaskSnapshot is the latest view of one polling subscription. IsLoading is
// true until the first fetch completes; IsRefreshing is true while any fetch
// is in flight, so views can tell "no data yet" from "data present, now
// stale-refreshing".
type TaskSnapshot struct {
	Items         []domain.Task
	IsLoading     bool
	IsRefreshing  bool
	LastFetchedAt time.Time
}

type FeedOptions struct {
	// Status is a server-side filter, not a client-side post-filter.
	Status *domain.TaskStatus
	Limit  int
	Offset int
	// Interval between fetches. A fetch already in flight when the timer
	// fires is not cancelled.
	Interval time.Duration
	// Admin lists every user's tasks via the administrative variant.
	Admin bool
}

// Feed polls the remote service for task collections on a fixed interval.
// One Feed backs one subscription; Stop cancels its timer deterministically
// and a stopped feed performs no further work.
type Feed struct {
	gateway ports.Gateway
	creds   CredentialSource
	clock   ports.Clock
	notify  *Notifier
	opts    FeedOptions

	mu       sync.Mutex
	snapshot TaskSnapshot
	started  bool
	stopped  bool
	seq      uint64
	applied  uint64

	updates chan TaskSnapshot
	refresh chan struct{}
	stop    chan struct{}
}

// NewFeed builds a feed; notify may be nil when fetch failures and task
// completions need no reporting.
func NewFeed(gateway ports.Gateway, creds CredentialSource, clock ports.Clock, notify *Notifier, opts FeedOptions) *Feed {
	if clock == nil {
		clock = ports.SystemClock{}
	}
	if opts.Interval <= 0 {
		opts.Interval = defaultFeedInterval
	}
	if opts.Limit <= 0 {
		opts.Limit = defaultFeedLimit
	}

	return &Feed{
		gateway:  gateway,
		creds:    creds,
		clock:    clock,
		notify:   notify,
		opts:     opts,
		snapshot: TaskSnapshot{IsLoading: true},
		updates:  make(chan TaskSnapshot, 8),
		refresh:  make(chan struct{}, 1),
		stop:     make(chan struct{}),
	}
}

// Start issues an immediate fetch and then re-fetches on the configured
// interval until Stop or context cancellation.
func (f *Feed) Start(ctx context.Context) {
	f.mu.Lock()
	if f.started || f.stopped {
		f.mu.Unlock()
		return
	}
	f.started = true
	f.mu.Unlock()

	go f.run(ctx)
}

// Refresh triggers an immediate out-of-band fetch without resetting the
// timer. A refresh already queued is not duplicated.
func (f *Feed) Refresh() {
	select {
	case f.refresh <- struct{}{}:
	default:
	}
}

// Stop cancels the timer. Responses arriving after Stop are discarded.
func (f *Feed) Stop() {
	f.mu.Lock()
	if f.stopped {
		f.mu.Unlock()
		return
	}
	f.stopped = true
	f.mu.Unlock()

	close(f.stop)
}

// Updates delivers snapshots as they change. The channel is never closed;
// stop consuming after Stop.
func (f *Feed) Updates() <-chan TaskSnapshot {
	return f.updates
}

func (f *Feed) Snapshot() TaskSnapshot {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.snapshot
}

// Search applies a free-text filter over the latest snapshot, client-side,
// matching task id, kind, and owner email.
func (f *Feed) Search(query string) []domain.Task {
	f.mu.Lock()
	items := f.snapshot.Items
	f.mu.Unlock()

	if query == "" {
		return items
	}

	matched := make([]domain.Task, 0, len(items))
	for _, task := range items {
		if task.Matches(query) {
			matched = append(matched, task)
		}
	}

	return matched
}

func (f *Feed) run(ctx context.Context) {
	ticker := f.clock.NewTicker(f.opts.Interval)
	defer ticker.Stop()

	f.launchFetch(ctx)

	for {
		select {
		case <-ctx.Done():
			return
		case <-f.stop:
			return
		case <-ticker.C():
			f.launchFetch(ctx)
		case <-f.refresh:
			f.launchFetch(ctx)
		}
	}
}

func (f *Feed) launchFetch(ctx context.Context) {
	f.mu.Lock()
	if f.stopped {
		f.mu.Unlock()
		return
	}
	f.seq++
	seq := f.seq
	f.snapshot.IsRefreshing = true
	snap := f.snapshot
	f.mu.Unlock()
	f.publish(snap)

	go func() {
		items, err := f.fetch(ctx)
		f.apply(seq, items, err)
	}()
}

func (f *Feed) fetch(ctx context.Context) ([]domain.Task, error) {
	query := ports.TaskQuery{
		Status: f.opts.Status,
		Limit:  f.opts.Limit,
		Offset: f.opts.Offset,
	}
	token := f.creds.Credential()

	if f.opts.Admin {
		return f.gateway.AdminListTasks(ctx, token, query)
	}

	return f.gateway.ListTasks(ctx, token, query)
}

func (f *Feed) apply(seq uint64, items []domain.Task, err error) {
	f.mu.Lock()
	if f.stopped || seq <= f.applied {
		// Late response after Stop, or superseded by a newer fetch that
		// already applied. Server data from the newer fetch wins.
		f.mu.Unlock()
		return
	}
	f.applied = seq
	f.snapshot.IsRefreshing = f.seq > seq
	f.snapshot.IsLoading = false
	var completed []domain.Task
	if err == nil {
		completed = terminalProgressions(f.snapshot.Items, items)
		f.snapshot.Items = items
		f.snapshot.LastFetchedAt = f.clock.Now()
	}
	snap := f.snapshot
	f.mu.Unlock()

	if f.notify != nil {
		if err != nil {
			f.notify.Enqueue("task refresh failed: "+err.Error(), domain.SeverityWarning)
		}
		for _, task := range completed {
			f.notify.Enqueue(completionMessage(task), completionSeverity(task))
		}
	}

	f.publish(snap)
}

// terminalProgressions lists tasks that reached a terminal status between
// two consecutive snapshots. A completion counts when the status machine can
// reach the new state from the old one — directly, or through a processing
// observation the poll interval skipped. A terminal task reappearing
// non-terminally (or flipping between terminal states) is the server
// rewriting history: the later snapshot wins, silently.
func terminalProgressions(previous, current []domain.Task) []domain.Task {
	if len(previous) == 0 {
		return nil
	}

	index := make(map[domain.TaskID]domain.TaskStatus, len(previous))
	for _, task := range previous {
		index[task.ID] = task.Status
	}

	var completed []domain.Task
	for _, task := range current {
		from, seen := index[task.ID]
		if !seen || from == task.Status || !task.Status.IsTerminal() {
			continue
		}
		if !from.CanTransitionTo(task.Status) && !from.CanTransitionTo(domain.TaskProcessing) {
			continue
		}
		completed = append(completed, task)
	}

	return completed
}

func completionMessage(task domain.Task) string {
	id := string(task.ID)
	if len(id) > 8 {
		id = id[:8]
	}

	if task.Status == domain.TaskReady {
		return fmt.Sprintf("task %s ready", id)
	}

	message := fmt.Sprintf("task %s failed", id)
	if summary := task.ErrorSummary(); summary != "" {
		message += ": " + summary
	}

	return message
}

func completionSeverity(task domain.Task) domain.Severity {
	if task.Status == domain.TaskReady {
		return domain.SeveritySuccess
	}

	return domain.SeverityError
}

// publish never blocks; when the buffer is full the oldest snapshot is
// dropped in favor of the newest.
func (f *Feed) publish(snap TaskSnapshot) {
	for {
		select {
		case f.updates <- snap:
			return
		default:
		}

		select {
		case <-f.updates:
		default:
		}
	}
}
