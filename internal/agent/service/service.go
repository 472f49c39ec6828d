package service

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"fieldforce/internal/agent/models"
	"fieldforce/internal/platform/metrics"
	"fieldforce/internal/platform/tracer"
	id "fieldforce/pkg/domain"
	dErrors "fieldforce/pkg/domain-errors"
	"fieldforce/pkg/identity"
	"fieldforce/pkg/platform/middleware/request"
	"fieldforce/pkg/platform/sentinel"
	"fieldforce/pkg/platform/sync"
)

// Store persists agent records.
// Error Contract:
//   - Create and Update return sentinel.ErrAlreadyUsed when the identity number belongs
//     to another agent
//   - FindByID, FindByIdentityNumber, Update and Delete return sentinel.ErrNotFound for
//     unknown agents
type Store interface {
	Create(ctx context.Context, a *models.Agent) error
	Update(ctx context.Context, a *models.Agent) error
	FindByID(ctx context.Context, agentID id.AgentID) (*models.Agent, error)
	FindByIdentityNumber(ctx context.Context, t identity.Type, number string) (*models.Agent, error)
	List(ctx context.Context, f models.Filter) (*models.Page, error)
	Delete(ctx context.Context, agentID id.AgentID) error
	Count(ctx context.Context) (int, error)
}

// Cache holds agent profiles by ID. Get returns sentinel.ErrNotFound on a miss.
type Cache interface {
	Get(ctx context.Context, agentID id.AgentID) (*models.Agent, error)
	Set(ctx context.Context, a *models.Agent) error
	Invalidate(ctx context.Context, agentID id.AgentID) error
}

type Publisher interface {
	Publish(ctx context.Context, ev models.Event) error
}

type Option func(*Service)

// Service owns the agent lifecycle: capture validation, identity uniqueness, the
// active/inactive transitions and the side effects of each change.
type Service struct {
	store     Store
	cache     Cache
	publisher Publisher
	locks     *sync.ShardedMutex
	metrics   *metrics.Metrics
	tracer    tracer.Tracer
	logger    *slog.Logger
	newID     func() id.AgentID
}

func New(store Store, logger *slog.Logger, opts ...Option) *Service {
	svc := &Service{
		store:  store,
		logger: logger,
		tracer: tracer.NewNoop(),
		newID:  id.NewAgentID,
	}
	for _, opt := range opts {
		opt(svc)
	}
	if svc.locks == nil {
		svc.locks = sync.NewShardedMutex(0)
	}
	return svc
}

func WithCache(c Cache) Option {
	return func(s *Service) {
		s.cache = c
	}
}

func WithPublisher(p Publisher) Option {
	return func(s *Service) {
		s.publisher = p
	}
}

func WithMetrics(m *metrics.Metrics) Option {
	return func(s *Service) {
		s.metrics = m
	}
}

// WithTracer sets the tracer used for service spans. Nil keeps the no-op tracer.
func WithTracer(t tracer.Tracer) Option {
	return func(s *Service) {
		if t != nil {
			s.tracer = t
		}
	}
}

// WithLocker replaces the per-agent lock used to serialize read-modify-write updates.
func WithLocker(m *sync.ShardedMutex) Option {
	return func(s *Service) {
		s.locks = m
	}
}

// WithIDGenerator overrides agent ID generation.
func WithIDGenerator(fn func() id.AgentID) Option {
	return func(s *Service) {
		s.newID = fn
	}
}

func (s *Service) logAudit(ctx context.Context, event string, attrs ...any) {
	if s.logger == nil {
		return
	}
	if requestID := request.GetRequestID(ctx); requestID != "" {
		attrs = append(attrs, "request_id", requestID)
	}
	args := append(attrs, "event", event, "log_type", "audit")
	s.logger.InfoContext(ctx, event, args...)
}

func (s *Service) publish(ctx context.Context, t models.EventType, a *models.Agent, at time.Time) {
	if s.publisher == nil {
		return
	}
	err := s.publisher.Publish(ctx, models.NewEvent(t, a, at, request.GetRequestID(ctx)))
	if s.metrics != nil {
		s.metrics.RecordEventPublished(string(t), err)
	}
	if err != nil && s.logger != nil {
		s.logger.WarnContext(ctx, "failed to publish agent event",
			"error", err,
			"event_type", t,
			"agent_id", a.ID,
		)
	}
}

func (s *Service) invalidate(ctx context.Context, agentID id.AgentID) {
	if s.cache == nil {
		return
	}
	if err := s.cache.Invalidate(ctx, agentID); err != nil {
		s.logCacheErr(ctx, "failed to invalidate cached agent", agentID, err)
	}
}

// logCacheErr keeps an open breaker at debug level; the cache already logs the trip.
func (s *Service) logCacheErr(ctx context.Context, msg string, agentID id.AgentID, err error) {
	if s.logger == nil {
		return
	}
	if errors.Is(err, sentinel.ErrUnavailable) {
		s.logger.DebugContext(ctx, msg, "error", err, "agent_id", agentID)
		return
	}
	s.logger.WarnContext(ctx, msg, "error", err, "agent_id", agentID)
}

func (s *Service) observe(operation string, start time.Time) {
	if s.metrics != nil {
		s.metrics.ObserveOperation(operation, start)
	}
}

func wrapAgentErr(err error, action string) error {
	if errors.Is(err, sentinel.ErrNotFound) {
		return dErrors.New(dErrors.CodeNotFound, "agent not found")
	}
	return dErrors.Wrap(err, dErrors.CodeInternal, action)
}

// identityConflict reports a duplicate identity number against the form field that
// carries it.
func identityConflict(t identity.Type) error {
	field := t.FieldName()
	msg := "an agent with this ID number already exists"
	if t == identity.TypePassport {
		msg = "an agent with this passport number already exists"
	}
	return dErrors.NewFields(dErrors.CodeConflict, msg, map[string]string{field: msg})
}

// transitionErr reports a no-op status change as a conflict.
func transitionErr(err error) error {
	var de *dErrors.Error
	if errors.As(err, &de) && de.Code == dErrors.CodeInvariantViolation {
		return dErrors.New(dErrors.CodeConflict, de.Message)
	}
	return err
}

// profileErr maps a rejected profile to a validation failure. Commands validate field
// by field first, so this only fires when a caller builds a profile by hand.
func profileErr(err error) error {
	var de *dErrors.Error
	if errors.As(err, &de) && de.Code == dErrors.CodeInvariantViolation {
		return dErrors.New(dErrors.CodeValidation, de.Message)
	}
	return err
}
