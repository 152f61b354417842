package audit

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"github.com/upb/conference-portal/internal/rbac"
	"github.com/upb/conference-portal/models"
	"github.com/upb/conference-portal/repositories/mocks"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
)

// MockSink is a mock implementation of Sink
type MockSink struct {
	mock.Mock
	mu      sync.Mutex
	written []*Event
}

func (m *MockSink) Write(ctx context.Context, event *Event) error {
	args := m.Called(ctx, event)
	m.mu.Lock()
	m.written = append(m.written, event)
	m.mu.Unlock()
	return args.Error(0)
}

func (m *MockSink) Written() []*Event {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]*Event(nil), m.written...)
}

func TestAuditService_StartStop(t *testing.T) {
	sink := new(MockSink)
	service := NewAuditService(sink, zap.NewNop(), Config{BufferSize: 10, WorkerCount: 2})

	require.NoError(t, service.Start())

	stats := service.GetStats()
	assert.True(t, stats.Started)
	assert.Equal(t, 2, stats.WorkerCount)
	assert.Equal(t, 10, stats.BufferSize)

	assert.Error(t, service.Start())

	require.NoError(t, service.Stop(5*time.Second))
	assert.False(t, service.GetStats().Started)
	assert.Error(t, service.Stop(time.Second))
}

func TestAuditService_LogEvent(t *testing.T) {
	sink := new(MockSink)
	sink.On("Write", mock.Anything, mock.Anything).Return(nil)
	service := NewAuditService(sink, zap.NewNop(), Config{BufferSize: 10, WorkerCount: 1})

	t.Run("rejected before start", func(t *testing.T) {
		assert.Error(t, service.LogEvent(NewEvent(ActionLoginSucceeded)))
	})

	require.NoError(t, service.Start())

	userID := uuid.New()
	require.NoError(t, service.LogEvent(NewEvent(ActionLoginSucceeded).WithActor(userID)))
	require.NoError(t, service.Stop(5*time.Second))

	written := sink.Written()
	require.Len(t, written, 1)
	assert.Equal(t, ActionLoginSucceeded, written[0].Action)
	assert.Equal(t, userID, *written[0].ActorID)

	t.Run("rejected after stop", func(t *testing.T) {
		assert.Error(t, service.LogEvent(NewEvent(ActionLoginSucceeded)))
	})
}

func TestAuditService_ConcurrentRecord(t *testing.T) {
	sink := new(MockSink)
	sink.On("Write", mock.Anything, mock.Anything).Return(nil)
	service := NewAuditService(sink, zap.NewNop(), Config{BufferSize: 200, WorkerCount: 4})
	require.NoError(t, service.Start())

	var wg sync.WaitGroup
	for i := 0; i < 100; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			service.Record(NewEvent(ActionUserRegistered).WithSubject(uuid.New()))
		}()
	}
	wg.Wait()

	require.NoError(t, service.Stop(5*time.Second))
	assert.Len(t, sink.Written(), 100)
}

func TestAuditService_BufferFull(t *testing.T) {
	release := make(chan struct{})
	sink := new(MockSink)
	sink.On("Write", mock.Anything, mock.Anything).Return(nil).Run(func(mock.Arguments) {
		<-release
	})

	service := NewAuditService(sink, zap.NewNop(), Config{BufferSize: 2, WorkerCount: 1})
	require.NoError(t, service.Start())

	failures := 0
	for i := 0; i < 10; i++ {
		if err := service.LogEvent(NewEvent(ActionLoginFailed)); err != nil {
			failures++
		}
	}
	assert.Greater(t, failures, 0)

	close(release)
	require.NoError(t, service.Stop(5*time.Second))
}

func TestAuditService_StopTimeout(t *testing.T) {
	release := make(chan struct{})
	defer close(release)

	sink := new(MockSink)
	sink.On("Write", mock.Anything, mock.Anything).Return(nil).Run(func(mock.Arguments) {
		<-release
	})

	service := NewAuditService(sink, zap.NewNop(), Config{BufferSize: 10, WorkerCount: 1})
	require.NoError(t, service.Start())
	require.NoError(t, service.LogEvent(NewEvent(ActionLoginSucceeded)))

	err := service.Stop(50 * time.Millisecond)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "timeout")
}

func TestLoggerSink_Write(t *testing.T) {
	core, logs := observer.New(zap.InfoLevel)
	sink := NewLoggerSink(zap.New(core))
	actor, subject := uuid.New(), uuid.New()

	event := RolesChanged(actor, subject,
		[]rbac.Role{rbac.RoleParticipant},
		[]rbac.Role{rbac.RoleAdmin, rbac.RoleParticipant})
	require.NoError(t, sink.Write(context.Background(), event))

	entries := logs.All()
	require.Len(t, entries, 1)
	assert.Equal(t, "audit", entries[0].LoggerName)

	fields := entries[0].ContextMap()
	assert.Equal(t, string(ActionRolesChanged), fields["action"])
	assert.Equal(t, actor.String(), fields["actor_id"])
	assert.Equal(t, subject.String(), fields["subject_id"])
}

func TestRepositorySink_Write(t *testing.T) {
	t.Run("maps event to audit log", func(t *testing.T) {
		repo := new(mocks.AuditRepository)
		sink := NewRepositorySink(repo)
		actor, subject := uuid.New(), uuid.New()
		event := RolesChanged(actor, subject,
			[]rbac.Role{rbac.RoleParticipant},
			[]rbac.Role{rbac.RoleAdmin, rbac.RoleParticipant})

		var stored *models.AuditLog
		repo.On("Insert", mock.Anything, mock.AnythingOfType("*models.AuditLog")).
			Run(func(args mock.Arguments) { stored = args.Get(1).(*models.AuditLog) }).
			Return(nil)

		require.NoError(t, sink.Write(context.Background(), event))
		require.NotNil(t, stored)
		assert.NotEqual(t, uuid.Nil, stored.ID)
		assert.Equal(t, string(ActionRolesChanged), stored.Action)
		assert.Equal(t, &actor, stored.ActorID)
		assert.Equal(t, &subject, stored.SubjectID)
		assert.Equal(t, event.At, stored.CreatedAt)
		assert.Contains(t, string(stored.Details), "ADMIN")
		repo.AssertExpectations(t)
	})

	t.Run("no details", func(t *testing.T) {
		repo := new(mocks.AuditRepository)
		sink := NewRepositorySink(repo)
		repo.On("Insert", mock.Anything, mock.MatchedBy(func(e *models.AuditLog) bool {
			return e.Details == nil && e.ActorID == nil
		})).Return(nil)

		require.NoError(t, sink.Write(context.Background(), NewEvent(ActionLoginFailed)))
		repo.AssertExpectations(t)
	})

	t.Run("repository error", func(t *testing.T) {
		repo := new(mocks.AuditRepository)
		repo.On("Insert", mock.Anything, mock.Anything).Return(errors.New("db down"))

		err := NewRepositorySink(repo).Write(context.Background(), NewEvent(ActionLoginFailed))
		assert.EqualError(t, err, "db down")
	})
}

func TestMultiSink_Write(t *testing.T) {
	first, second := new(MockSink), new(MockSink)
	first.On("Write", mock.Anything, mock.Anything).Return(errors.New("first failed"))
	second.On("Write", mock.Anything, mock.Anything).Return(nil)

	err := MultiSink{first, second}.Write(context.Background(), NewEvent(ActionLoginSucceeded))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "first failed")
	assert.Len(t, second.Written(), 1)

	assert.NoError(t, MultiSink{second}.Write(context.Background(), NewEvent(ActionLoginSucceeded)))
}

func TestNopRecorder(t *testing.T) {
	assert.NotPanics(t, func() {
		NopRecorder{}.Record(NewEvent(ActionLoginSucceeded))
	})
}

func TestDefaultConfig(t *testing.T) {
	config := DefaultConfig()
	assert.Equal(t, 1024, config.BufferSize)
	assert.Equal(t, 2, config.WorkerCount)
}
