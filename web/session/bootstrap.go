package session

import (
	"context"
	"net/http"
	"sync"
	"time"

	"go.uber.org/zap"
)

// DefaultBootstrapWait bounds how long a page request waits for the identity check
const DefaultBootstrapWait = 3 * time.Second

// FetchFunc resolves the current user. Any error means "no session".
type FetchFunc func(ctx context.Context) (*User, error)

// Task is one identity fetch bound to a Session
type Task struct {
	cancel context.CancelFunc
	done   chan struct{}

	mu      sync.Mutex
	stopped bool
	err     error
}

// Start runs fetch once in the background and settles s with its result.
// On failure s is settled with no user. Nothing is retried.
func Start(ctx context.Context, s *Session, fetch FetchFunc) *Task {
	ctx, cancel := context.WithCancel(ctx)
	t := &Task{cancel: cancel, done: make(chan struct{})}

	go func() {
		defer close(t.done)
		defer cancel()

		user, err := fetch(ctx)
		if err != nil {
			user = nil
		}

		t.mu.Lock()
		defer t.mu.Unlock()
		if t.stopped {
			return
		}
		t.err = err
		s.settle(user)
	}()

	return t
}

// Stop cancels the fetch and discards its result. After Stop returns the
// session is never mutated by this task.
func (t *Task) Stop() {
	t.mu.Lock()
	t.stopped = true
	t.mu.Unlock()
	t.cancel()
}

// Done is closed when the fetch goroutine has exited
func (t *Task) Done() <-chan struct{} {
	return t.done
}

// Err returns the fetch error once the task settled the session
func (t *Task) Err() error {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.err
}

// IdentifyFunc resolves the user behind a page request
type IdentifyFunc func(ctx context.Context, r *http.Request) (*User, error)

// Bootstrapper attaches a bootstrapped Session to every page request
type Bootstrapper struct {
	identify IdentifyFunc
	wait     time.Duration
	logger   *zap.Logger
}

// NewBootstrapper creates a bootstrap middleware factory
func NewBootstrapper(identify IdentifyFunc, wait time.Duration, logger *zap.Logger) *Bootstrapper {
	if wait <= 0 {
		wait = DefaultBootstrapWait
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Bootstrapper{identify: identify, wait: wait, logger: logger}
}

// Middleware starts the identity fetch, waits for it up to the configured bound,
// serves the request and then stops the task.
func (b *Bootstrapper) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		s := New()
		task := Start(r.Context(), s, func(ctx context.Context) (*User, error) {
			return b.identify(ctx, r)
		})
		defer task.Stop()

		timer := time.NewTimer(b.wait)
		defer timer.Stop()

		select {
		case <-task.Done():
		case <-timer.C:
			b.logger.Warn("session bootstrap still pending",
				zap.String("path", r.URL.Path),
				zap.Duration("wait", b.wait),
			)
		case <-r.Context().Done():
		}

		next.ServeHTTP(w, r.WithContext(WithSession(r.Context(), s)))
	})
}
