package audit

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/upb/conference-portal/internal/rbac"
	"go.uber.org/zap"
)

// Action names a security relevant event
type Action string

const (
	ActionUserRegistered    Action = "user.registered"
	ActionLoginSucceeded    Action = "auth.login_succeeded"
	ActionLoginFailed       Action = "auth.login_failed"
	ActionRolesChanged      Action = "user.roles_changed"
	ActionConferenceDeleted Action = "conference.deleted"
	ActionEvaluatorAssigned Action = "submission.evaluator_assigned"
)

// Event is one entry of the audit trail
type Event struct {
	Action    Action
	ActorID   *uuid.UUID
	SubjectID *uuid.UUID
	Details   map[string]interface{}
	At        time.Time
}

// NewEvent creates an Event stamped with the current time
func NewEvent(action Action) *Event {
	return &Event{
		Action:  action,
		Details: make(map[string]interface{}),
		At:      time.Now().UTC(),
	}
}

// WithActor sets the user who performed the action
func (e *Event) WithActor(id uuid.UUID) *Event {
	e.ActorID = &id
	return e
}

// WithSubject sets the entity the action applied to
func (e *Event) WithSubject(id uuid.UUID) *Event {
	e.SubjectID = &id
	return e
}

// WithDetail adds a detail to the event
func (e *Event) WithDetail(key string, value interface{}) *Event {
	e.Details[key] = value
	return e
}

// Sink persists audit events
type Sink interface {
	Write(ctx context.Context, event *Event) error
}

// Recorder is what services depend on to emit audit events
type Recorder interface {
	Record(event *Event)
}

// NopRecorder discards every event
type NopRecorder struct{}

// Record implements Recorder
func (NopRecorder) Record(*Event) {}

// LoggerSink writes events as structured log entries
type LoggerSink struct {
	logger *zap.Logger
}

// NewLoggerSink creates a sink that logs under the "audit" logger name
func NewLoggerSink(logger *zap.Logger) *LoggerSink {
	return &LoggerSink{logger: logger.Named("audit")}
}

// Write implements Sink
func (s *LoggerSink) Write(_ context.Context, event *Event) error {
	fields := []zap.Field{
		zap.String("action", string(event.Action)),
		zap.Time("at", event.At),
	}
	if event.ActorID != nil {
		fields = append(fields, zap.String("actor_id", event.ActorID.String()))
	}
	if event.SubjectID != nil {
		fields = append(fields, zap.String("subject_id", event.SubjectID.String()))
	}
	if len(event.Details) > 0 {
		fields = append(fields, zap.Any("details", event.Details))
	}
	s.logger.Info("audit event", fields...)
	return nil
}

// AuditService drains audit events to a sink on background workers
type AuditService struct {
	sink        Sink
	logger      *zap.Logger
	eventChan   chan *Event
	workerCount int
	bufferSize  int
	wg          sync.WaitGroup
	ctx         context.Context
	cancel      context.CancelFunc
	started     bool
	stopped     bool
	mu          sync.Mutex
}

// Config holds configuration for the AuditService
type Config struct {
	BufferSize  int // Size of the event buffer channel
	WorkerCount int // Number of concurrent workers
}

// DefaultConfig returns the default configuration
func DefaultConfig() Config {
	return Config{
		BufferSize:  1024,
		WorkerCount: 2,
	}
}

// NewAuditService creates a new AuditService instance
func NewAuditService(sink Sink, logger *zap.Logger, config Config) *AuditService {
	ctx, cancel := context.WithCancel(context.Background())

	return &AuditService{
		sink:        sink,
		logger:      logger,
		eventChan:   make(chan *Event, config.BufferSize),
		workerCount: config.WorkerCount,
		bufferSize:  config.BufferSize,
		ctx:         ctx,
		cancel:      cancel,
	}
}

// Start starts the background workers
func (s *AuditService) Start() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.started {
		return fmt.Errorf("audit service already started")
	}

	for i := 0; i < s.workerCount; i++ {
		s.wg.Add(1)
		go s.worker(i)
	}

	s.started = true
	s.logger.Info("started audit service",
		zap.Int("worker_count", s.workerCount),
		zap.Int("buffer_size", s.bufferSize))

	return nil
}

// Stop closes the queue and waits for pending events to be written
func (s *AuditService) Stop(timeout time.Duration) error {
	s.mu.Lock()
	if !s.started || s.stopped {
		s.mu.Unlock()
		return fmt.Errorf("audit service not running")
	}
	s.stopped = true
	close(s.eventChan)
	s.mu.Unlock()

	s.logger.Info("stopping audit service", zap.Int("pending_events", len(s.eventChan)))

	done := make(chan struct{})
	go func() {
		s.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		s.logger.Info("audit service stopped gracefully")
		s.cancel()
		return nil
	case <-time.After(timeout):
		s.cancel()
		return fmt.Errorf("audit service stop timeout after %v", timeout)
	}
}

// LogEvent queues an event without blocking. A full buffer drops the event.
func (s *AuditService) LogEvent(event *Event) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.started || s.stopped {
		return fmt.Errorf("audit service not running")
	}

	select {
	case s.eventChan <- event:
		return nil
	default:
		s.logger.Warn("audit event channel full, dropping event",
			zap.String("action", string(event.Action)))
		return fmt.Errorf("audit event buffer full")
	}
}

// Record implements Recorder. Queue failures are logged and otherwise ignored so
// auditing never fails the request that triggered it.
func (s *AuditService) Record(event *Event) {
	if err := s.LogEvent(event); err != nil {
		s.logger.Debug("audit event not queued", zap.Error(err))
	}
}

func (s *AuditService) worker(id int) {
	defer s.wg.Done()

	s.logger.Debug("audit worker started", zap.Int("worker_id", id))

	for event := range s.eventChan {
		if err := s.processEvent(event); err != nil {
			s.logger.Error("failed to process audit event",
				zap.Int("worker_id", id),
				zap.Error(err),
				zap.String("action", string(event.Action)))
		}
	}

	s.logger.Debug("audit worker stopped", zap.Int("worker_id", id))
}

func (s *AuditService) processEvent(event *Event) error {
	ctx, cancel := context.WithTimeout(s.ctx, 5*time.Second)
	defer cancel()

	if err := s.sink.Write(ctx, event); err != nil {
		return fmt.Errorf("failed to write audit event: %w", err)
	}
	return nil
}

// GetStats returns statistics about the audit service
func (s *AuditService) GetStats() Stats {
	s.mu.Lock()
	defer s.mu.Unlock()

	return Stats{
		BufferSize:    s.bufferSize,
		PendingEvents: len(s.eventChan),
		WorkerCount:   s.workerCount,
		Started:       s.started && !s.stopped,
	}
}

// Stats represents audit service statistics
type Stats struct {
	BufferSize    int
	PendingEvents int
	WorkerCount   int
	Started       bool
}

// RolesChanged builds the event recorded when an administrator replaces a user's roles
func RolesChanged(actorID, userID uuid.UUID, before, after []rbac.Role) *Event {
	return NewEvent(ActionRolesChanged).
		WithActor(actorID).
		WithSubject(userID).
		WithDetail("before", rbac.Strings(before)).
		WithDetail("after", rbac.Strings(after))
}
