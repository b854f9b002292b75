package application

import (
	"context"
	"errors"
	"sync"
	"time"

	"solvectl/internal/domain"
	"solvectl/internal/ports"
)

var errFakeNotConfigured = errors.New("fake call not configured")

// fakeGateway implements ports.Gateway with overridable behavior per method.
// Unconfigured methods fail loudly so a test never silently exercises a path
// it did not arrange.
type fakeGateway struct {
	exchangeFn     func(ctx context.Context, email, password string) (string, error)
	registerFn     func(ctx context.Context, email, password string) error
	currentUserFn  func(ctx context.Context, token string) (domain.User, error)
	rotateKeyFn    func(ctx context.Context, token string) (string, error)
	listTasksFn    func(ctx context.Context, token string, query ports.TaskQuery) ([]domain.Task, error)
	getTaskFn      func(ctx context.Context, token string, id domain.TaskID) (domain.Task, error)
	transactionsFn func(ctx context.Context, token string, limit, offset int) ([]domain.Transaction, error)
	depositFn      func(ctx context.Context, token string, amount float64) (string, error)
	adminUsersFn   func(ctx context.Context, token string, limit, offset int) ([]domain.User, error)
	adminUpdateFn  func(ctx context.Context, token string, id domain.UserID, update ports.UserUpdate) (domain.User, error)
	adminTasksFn   func(ctx context.Context, token string, query ports.TaskQuery) ([]domain.Task, error)
	adminStatsFn   func(ctx context.Context, token string) (domain.FinanceStats, error)
}

var _ ports.Gateway = (*fakeGateway)(nil)

func (f *fakeGateway) ExchangeCredentials(ctx context.Context, email, password string) (string, error) {
	if f.exchangeFn == nil {
		return "", errFakeNotConfigured
	}
	return f.exchangeFn(ctx, email, password)
}

func (f *fakeGateway) Register(ctx context.Context, email, password string) error {
	if f.registerFn == nil {
		return errFakeNotConfigured
	}
	return f.registerFn(ctx, email, password)
}

func (f *fakeGateway) CurrentUser(ctx context.Context, token string) (domain.User, error) {
	if f.currentUserFn == nil {
		return domain.User{}, errFakeNotConfigured
	}
	return f.currentUserFn(ctx, token)
}

func (f *fakeGateway) RotateAPIKey(ctx context.Context, token string) (string, error) {
	if f.rotateKeyFn == nil {
		return "", errFakeNotConfigured
	}
	return f.rotateKeyFn(ctx, token)
}

func (f *fakeGateway) ListTasks(ctx context.Context, token string, query ports.TaskQuery) ([]domain.Task, error) {
	if f.listTasksFn == nil {
		return nil, errFakeNotConfigured
	}
	return f.listTasksFn(ctx, token, query)
}

func (f *fakeGateway) GetTask(ctx context.Context, token string, id domain.TaskID) (domain.Task, error) {
	if f.getTaskFn == nil {
		return domain.Task{}, errFakeNotConfigured
	}
	return f.getTaskFn(ctx, token, id)
}

func (f *fakeGateway) ListTransactions(ctx context.Context, token string, limit, offset int) ([]domain.Transaction, error) {
	if f.transactionsFn == nil {
		return nil, errFakeNotConfigured
	}
	return f.transactionsFn(ctx, token, limit, offset)
}

func (f *fakeGateway) CreateDeposit(ctx context.Context, token string, amount float64) (string, error) {
	if f.depositFn == nil {
		return "", errFakeNotConfigured
	}
	return f.depositFn(ctx, token, amount)
}

func (f *fakeGateway) AdminListUsers(ctx context.Context, token string, limit, offset int) ([]domain.User, error) {
	if f.adminUsersFn == nil {
		return nil, errFakeNotConfigured
	}
	return f.adminUsersFn(ctx, token, limit, offset)
}

func (f *fakeGateway) AdminUpdateUser(ctx context.Context, token string, id domain.UserID, update ports.UserUpdate) (domain.User, error) {
	if f.adminUpdateFn == nil {
		return domain.User{}, errFakeNotConfigured
	}
	return f.adminUpdateFn(ctx, token, id, update)
}

func (f *fakeGateway) AdminListTasks(ctx context.Context, token string, query ports.TaskQuery) ([]domain.Task, error) {
	if f.adminTasksFn == nil {
		return nil, errFakeNotConfigured
	}
	return f.adminTasksFn(ctx, token, query)
}

func (f *fakeGateway) AdminFinanceStats(ctx context.Context, token string) (domain.FinanceStats, error) {
	if f.adminStatsFn == nil {
		return domain.FinanceStats{}, errFakeNotConfigured
	}
	return f.adminStatsFn(ctx, token)
}

// fakeStore keeps the token in memory; loadErr and saveErr force failures.
type fakeStore struct {
	mu      sync.Mutex
	token   string
	loadErr error
	saveErr error
	clears  int
}

var _ ports.TokenStore = (*fakeStore)(nil)

func (f *fakeStore) Load(context.Context) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.loadErr != nil {
		return "", f.loadErr
	}
	return f.token, nil
}

func (f *fakeStore) Save(_ context.Context, token string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.saveErr != nil {
		return f.saveErr
	}
	f.token = token
	return nil
}

func (f *fakeStore) Clear(context.Context) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.token = ""
	f.clears++
	return nil
}

func (f *fakeStore) stored() string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.token
}

// fakeClock drives tickers and timers by hand. Tick delivers one tick to the
// single feed ticker; FireTimers runs every pending AfterFunc callback.
type fakeClock struct {
	mu     sync.Mutex
	now    time.Time
	ticks  chan time.Time
	timers []*fakeTimer
}

var _ ports.Clock = (*fakeClock)(nil)

func newFakeClock() *fakeClock {
	return &fakeClock{
		now:   time.Date(2026, time.March, 14, 12, 0, 0, 0, time.UTC),
		ticks: make(chan time.Time),
	}
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	c.now = c.now.Add(d)
	c.mu.Unlock()
}

func (c *fakeClock) NewTicker(time.Duration) ports.Ticker {
	return fakeTicker{ticks: c.ticks}
}

func (c *fakeClock) AfterFunc(_ time.Duration, fn func()) ports.Timer {
	timer := &fakeTimer{fn: fn}
	c.mu.Lock()
	c.timers = append(c.timers, timer)
	c.mu.Unlock()
	return timer
}

// Tick blocks until the ticker consumer receives, which keeps the test in
// lockstep with the feed loop.
func (c *fakeClock) Tick() {
	c.ticks <- c.Now()
}

func (c *fakeClock) FireTimers() {
	c.mu.Lock()
	pending := c.timers
	c.timers = nil
	c.mu.Unlock()

	for _, timer := range pending {
		timer.fire()
	}
}

type fakeTicker struct {
	ticks chan time.Time
}

func (t fakeTicker) C() <-chan time.Time { return t.ticks }

func (t fakeTicker) Stop() {}

type fakeTimer struct {
	mu      sync.Mutex
	fn      func()
	stopped bool
}

func (t *fakeTimer) Stop() bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.stopped {
		return false
	}
	t.stopped = true
	return true
}

func (t *fakeTimer) fire() {
	t.mu.Lock()
	stopped := t.stopped
	fn := t.fn
	t.mu.Unlock()

	if !stopped && fn != nil {
		fn()
	}
}
