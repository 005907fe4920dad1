package session

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"time"

	"github.com/basekit-io/basekit/internal/client/api"
	"github.com/basekit-io/basekit/internal/logging"
)

// State is the watcher's subscription state. StateTerminated is
// absorbing; no transition leaves it.
type State int32

const (
	StateUnsubscribed State = iota
	StateSubscribing
	StateSubscribed
	StateError
	StateReconnecting
	StateTerminated
)

func (s State) String() string {
	switch s {
	case StateUnsubscribed:
		return "unsubscribed"
	case StateSubscribing:
		return "subscribing"
	case StateSubscribed:
		return "subscribed"
	case StateError:
		return "error"
	case StateReconnecting:
		return "reconnecting"
	case StateTerminated:
		return "terminated"
	default:
		return "unknown"
	}
}

// Watcher defaults.
const (
	DefaultInterval    = 5 * time.Minute
	DefaultLogoutDelay = time.Second
	DefaultBackoffBase = time.Second
	DefaultMaxAttempts = 5
)

type feed interface {
	Watch(ctx context.Context, userID string) (<-chan api.Event, func(), error)
}

type sessionState interface {
	Apply(user *api.User)
	Clear()
}

type checker interface {
	Validate(ctx context.Context, userID string) Result
}

// WatcherOptions tune the Watcher. Zero values fall back to the
// package defaults; nil callbacks are skipped.
type WatcherOptions struct {
	// Interval between periodic validation passes.
	Interval time.Duration
	// LogoutDelay is the pause between the logout notification and the
	// session wipe, long enough for a UI to show the reason.
	LogoutDelay time.Duration
	// BackoffBase seeds the exponential reconnect delay.
	BackoffBase time.Duration
	// MaxAttempts caps consecutive failed subscription attempts.
	MaxAttempts int
	// OnLogout is called once with the revocation reason.
	OnLogout func(reason string)
	// Navigate is called once after the session is cleared, to send the
	// UI back to its login entry point.
	Navigate func()
	Logger   logging.Logger
}

// Watcher keeps one live session honest. It holds a change-feed
// subscription for push revocation and a ticker for pull validation;
// either trigger runs the same forced-logout sequence exactly once.
type Watcher struct {
	userID string
	feed   feed
	sess   sessionState
	check  checker
	opts   WatcherOptions
	logger logging.Logger

	state     atomic.Int32
	loggedOut atomic.Bool
	started   atomic.Bool
	cancel    context.CancelFunc
	wg        sync.WaitGroup
}

// NewWatcher builds a Watcher for one user's session. The feed, session
// state and checker are consumed through small interfaces so tests can
// substitute fakes.
func NewWatcher(userID string, f feed, sess sessionState, check checker, opts WatcherOptions) *Watcher {
	if opts.Interval <= 0 {
		opts.Interval = DefaultInterval
	}
	if opts.LogoutDelay <= 0 {
		opts.LogoutDelay = DefaultLogoutDelay
	}
	if opts.BackoffBase <= 0 {
		opts.BackoffBase = DefaultBackoffBase
	}
	if opts.MaxAttempts <= 0 {
		opts.MaxAttempts = DefaultMaxAttempts
	}
	logger := opts.Logger
	if logger == nil {
		logger = logging.NewNullLogger()
	}
	return &Watcher{
		userID: userID,
		feed:   f,
		sess:   sess,
		check:  check,
		opts:   opts,
		logger: logger,
	}
}

// Start launches the subscription and validation goroutines. It may be
// called once per Watcher.
func (w *Watcher) Start(ctx context.Context) error {
	if !w.started.CompareAndSwap(false, true) {
		return errors.New("watcher already started")
	}

	ctx, cancel := context.WithCancel(ctx)
	w.cancel = cancel

	w.wg.Add(2)
	go w.subscribeLoop(ctx)
	go w.pollLoop(ctx)
	return nil
}

// Stop terminates the watcher and waits for both goroutines to exit.
// Safe to call more than once, and after a forced logout.
func (w *Watcher) Stop() {
	w.state.Store(int32(StateTerminated))
	if w.cancel != nil {
		w.cancel()
	}
	w.wg.Wait()
}

// State reports the current subscription state.
func (w *Watcher) State() State {
	return State(w.state.Load())
}

// setState moves to s unless the watcher is already terminated.
func (w *Watcher) setState(s State) {
	for {
		cur := w.state.Load()
		if State(cur) == StateTerminated {
			return
		}
		if w.state.CompareAndSwap(cur, int32(s)) {
			return
		}
	}
}

// subscribeLoop owns the change-feed subscription. Failed attempts and
// dropped streams both count toward the backoff budget; once the budget
// is spent the loop stops silently and periodic validation remains as
// the fallback.
func (w *Watcher) subscribeLoop(ctx context.Context) {
	defer w.wg.Done()

	attempt := 0
	for ctx.Err() == nil {
		w.setState(StateSubscribing)
		events, closeStream, err := w.feed.Watch(ctx, w.userID)
		if err == nil {
			w.setState(StateSubscribed)
			attempt = 0
			reconnect := w.drain(ctx, events)
			closeStream()
			if !reconnect {
				return
			}
		}

		if ctx.Err() != nil {
			return
		}
		w.setState(StateError)
		attempt++
		if attempt >= w.opts.MaxAttempts {
			w.logger.Debug(ctx, "change feed unavailable, relying on periodic validation", "attempts", attempt)
			w.setState(StateUnsubscribed)
			return
		}
		delay := w.opts.BackoffBase << (attempt - 1)
		w.logger.Debug(ctx, "change feed reconnect scheduled", "attempt", attempt, "delay", delay)
		w.setState(StateReconnecting)
		if !sleep(ctx, delay) {
			return
		}
	}
}

// drain consumes events until the stream closes. It reports true when
// the subscription should be re-established.
func (w *Watcher) drain(ctx context.Context, events <-chan api.Event) bool {
	for {
		select {
		case <-ctx.Done():
			return false
		case evt, ok := <-events:
			if !ok {
				return true
			}
			w.handle(evt)
			if w.loggedOut.Load() {
				return false
			}
		}
	}
}

func (w *Watcher) handle(evt api.Event) {
	switch evt.Type {
	case api.EventDeleted:
		w.forceLogout(ReasonDeleted)
	case api.EventUpdated:
		if evt.Record == nil {
			return
		}
		if !evt.Record.IsActive {
			w.forceLogout(ReasonDeactivated)
			return
		}
		w.sess.Apply(evt.Record)
	}
}

// pollLoop revalidates the session on a fixed interval. It backstops
// the subscription: a revocation is caught within one interval even
// when no event was delivered.
func (w *Watcher) pollLoop(ctx context.Context) {
	defer w.wg.Done()

	ticker := time.NewTicker(w.opts.Interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			res := w.check.Validate(ctx, w.userID)
			if ctx.Err() != nil {
				return
			}
			if !res.Valid {
				w.forceLogout(res.Reason)
				return
			}
		}
	}
}

// forceLogout runs the notify, delay, clear, navigate sequence. The
// swap collapses concurrent triggers into one sequence; triggers
// arriving after termination are ignored.
func (w *Watcher) forceLogout(reason string) {
	if w.State() == StateTerminated {
		return
	}
	if !w.loggedOut.CompareAndSwap(false, true) {
		return
	}

	w.logger.Info(context.Background(), "session revoked", "reason", reason)
	if w.opts.OnLogout != nil {
		w.opts.OnLogout(reason)
	}
	time.Sleep(w.opts.LogoutDelay)
	w.sess.Clear()
	if w.opts.Navigate != nil {
		w.opts.Navigate()
	}

	w.state.Store(int32(StateTerminated))
	if w.cancel != nil {
		w.cancel()
	}
}

// sleep waits d unless ctx ends first. Reports false when interrupted.
func sleep(ctx context.Context, d time.Duration) bool {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return false
	case <-t.C:
		return true
	}
}
