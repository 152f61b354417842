package session

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/upb/conference-portal/internal/rbac"
	"go.uber.org/zap"
)

func testUser() *User {
	return &User{
		ID:    uuid.New(),
		Name:  "Ada",
		Email: "ada@example.com",
		Roles: []rbac.Role{rbac.RoleAuthor},
	}
}

func waitDone(t *testing.T, task *Task) {
	t.Helper()
	select {
	case <-task.Done():
	case <-time.After(time.Second):
		t.Fatal("task did not finish")
	}
}

func TestSession_States(t *testing.T) {
	t.Run("new session is bootstrapping", func(t *testing.T) {
		s := New()
		assert.True(t, s.Bootstrapping())
		assert.Nil(t, s.User())
	})

	t.Run("nil session reads as signed out", func(t *testing.T) {
		var s *Session
		assert.False(t, s.Bootstrapping())
		assert.Nil(t, s.User())
		assert.Empty(t, s.Roles())
	})

	t.Run("user is copied", func(t *testing.T) {
		u := testUser()
		s := NewSettled(u)
		u.Roles[0] = rbac.RoleAdmin

		got := s.User()
		require.NotNil(t, got)
		assert.Equal(t, []rbac.Role{rbac.RoleAuthor}, got.Roles)

		got.Roles[0] = rbac.RoleAdmin
		assert.Equal(t, []rbac.Role{rbac.RoleAuthor}, s.Roles())
	})

	t.Run("context round trip", func(t *testing.T) {
		s := NewSettled(testUser())
		ctx := WithSession(context.Background(), s)
		assert.Same(t, s, FromContext(ctx))
		assert.Nil(t, FromContext(context.Background()))
	})
}

func TestStart(t *testing.T) {
	t.Run("success stores user", func(t *testing.T) {
		u := testUser()
		s := New()
		task := Start(context.Background(), s, func(context.Context) (*User, error) {
			return u, nil
		})
		waitDone(t, task)

		assert.False(t, s.Bootstrapping())
		require.NotNil(t, s.User())
		assert.Equal(t, u.ID, s.User().ID)
		assert.NoError(t, task.Err())
	})

	t.Run("failure stores no user", func(t *testing.T) {
		s := New()
		fetchErr := errors.New("connection refused")
		task := Start(context.Background(), s, func(context.Context) (*User, error) {
			return testUser(), fetchErr
		})
		waitDone(t, task)

		assert.False(t, s.Bootstrapping())
		assert.Nil(t, s.User())
		assert.ErrorIs(t, task.Err(), fetchErr)
	})

	t.Run("fetch runs exactly once", func(t *testing.T) {
		calls := 0
		s := New()
		task := Start(context.Background(), s, func(context.Context) (*User, error) {
			calls++
			return nil, errors.New("boom")
		})
		waitDone(t, task)
		assert.Equal(t, 1, calls)
	})

	t.Run("stop discards late result", func(t *testing.T) {
		release := make(chan struct{})
		s := New()
		task := Start(context.Background(), s, func(ctx context.Context) (*User, error) {
			<-release
			return testUser(), nil
		})

		task.Stop()
		close(release)
		waitDone(t, task)

		assert.True(t, s.Bootstrapping())
		assert.Nil(t, s.User())
	})

	t.Run("stop cancels fetch context", func(t *testing.T) {
		s := New()
		cancelled := make(chan struct{})
		task := Start(context.Background(), s, func(ctx context.Context) (*User, error) {
			<-ctx.Done()
			close(cancelled)
			return nil, ctx.Err()
		})

		task.Stop()
		waitDone(t, task)

		select {
		case <-cancelled:
		default:
			t.Fatal("fetch context was not cancelled")
		}
		assert.True(t, s.Bootstrapping())
	})
}

func TestBootstrapper_Middleware(t *testing.T) {
	capture := func(got **Session) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			*got = FromContext(r.Context())
			w.WriteHeader(http.StatusOK)
		})
	}

	t.Run("settled before next runs", func(t *testing.T) {
		u := testUser()
		b := NewBootstrapper(func(ctx context.Context, r *http.Request) (*User, error) {
			return u, nil
		}, time.Second, zap.NewNop())

		var got *Session
		rec := httptest.NewRecorder()
		b.Middleware(capture(&got)).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/author", nil))

		require.NotNil(t, got)
		assert.False(t, got.Bootstrapping())
		assert.Equal(t, u.ID, got.User().ID)
	})

	t.Run("identify receives the request", func(t *testing.T) {
		var seen string
		b := NewBootstrapper(func(ctx context.Context, r *http.Request) (*User, error) {
			ck, err := r.Cookie("access_token")
			if err == nil {
				seen = ck.Value
			}
			return nil, errors.New("unauthorized")
		}, time.Second, nil)

		req := httptest.NewRequest(http.MethodGet, "/author", nil)
		req.AddCookie(&http.Cookie{Name: "access_token", Value: "tok"})

		var got *Session
		b.Middleware(capture(&got)).ServeHTTP(httptest.NewRecorder(), req)

		assert.Equal(t, "tok", seen)
		assert.False(t, got.Bootstrapping())
		assert.Nil(t, got.User())
	})

	t.Run("slow identity leaves session bootstrapping", func(t *testing.T) {
		release := make(chan struct{})
		defer close(release)

		b := NewBootstrapper(func(ctx context.Context, r *http.Request) (*User, error) {
			select {
			case <-release:
			case <-ctx.Done():
			}
			return testUser(), nil
		}, 20*time.Millisecond, zap.NewNop())

		var got *Session
		b.Middleware(capture(&got)).ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/author", nil))

		require.NotNil(t, got)
		assert.True(t, got.Bootstrapping())
		assert.Nil(t, got.User())
	})
}
