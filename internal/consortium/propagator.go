package consortium

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"authlinks/internal/platform/async"
	"authlinks/internal/platform/metrics"
	id "authlinks/pkg/domain"
	"authlinks/pkg/requestcontext"
)

// PropagationType selects what a member tenant does with propagated data.
type PropagationType string

const (
	PropagationCreate PropagationType = "CREATE"
	PropagationUpdate PropagationType = "UPDATE"
	PropagationDelete PropagationType = "DELETE"
)

// Members resolves the member tenants a tenant propagates to.
type Members interface {
	MembersOf(ctx context.Context, tenant id.TenantID) ([]id.TenantID, error)
}

// Submitter queues a task without blocking.
type Submitter interface {
	Submit(task async.Task) error
}

// Runner executes fn scoped to a tenant and acting user.
type Runner interface {
	Run(ctx context.Context, tenant id.TenantID, user id.UserID, fn func(ctx context.Context) error) error
}

// ApplyFunc applies propagated data inside a member tenant's context.
type ApplyFunc[T any] func(ctx context.Context, data T, op PropagationType) error

// Propagator fans data out to every member tenant as independent pool tasks.
// Nothing it does is allowed to fail the caller: lookup and submission
// failures are logged and the affected members skipped.
type Propagator[T any] struct {
	kind    string
	members Members
	pool    Submitter
	runner  Runner
	apply   ApplyFunc[T]
	tracer  trace.Tracer
	logger  *slog.Logger
	metrics *metrics.Metrics
}

type settings struct {
	logger  *slog.Logger
	metrics *metrics.Metrics
}

type Option func(*settings)

func WithLogger(logger *slog.Logger) Option {
	return func(s *settings) {
		s.logger = logger
	}
}

func WithMetrics(m *metrics.Metrics) Option {
	return func(s *settings) {
		s.metrics = m
	}
}

func NewPropagator[T any](kind string, members Members, pool Submitter, runner Runner, apply ApplyFunc[T], opts ...Option) *Propagator[T] {
	cfg := settings{logger: slog.Default()}
	for _, opt := range opts {
		opt(&cfg)
	}
	return &Propagator[T]{
		kind:    kind,
		members: members,
		pool:    pool,
		runner:  runner,
		apply:   apply,
		tracer:  otel.Tracer("authlinks/consortium"),
		logger:  cfg.logger,
		metrics: cfg.metrics,
	}
}

// Propagate submits one task per member of tenant. It returns the number of
// tasks accepted by the pool.
func (p *Propagator[T]) Propagate(ctx context.Context, data T, op PropagationType, tenant id.TenantID) int {
	members, err := p.members.MembersOf(ctx, tenant)
	if err != nil {
		level := slog.LevelWarn
		if errors.Is(err, ErrIntegrationUnavailable) {
			level = slog.LevelDebug
		}
		p.logger.Log(ctx, level, "skip propagation",
			"kind", p.kind,
			"tenant", tenant,
			"error", err,
		)
		return 0
	}
	if len(members) == 0 {
		return 0
	}

	user := requestcontext.UserID(ctx)
	requestID := requestcontext.RequestID(ctx)
	submitted := 0
	for _, member := range members {
		member := member
		task := async.Task{
			Name: fmt.Sprintf("%s propagation to %s", p.kind, member),
			Run: func(taskCtx context.Context) error {
				if requestID != "" {
					taskCtx = requestcontext.WithRequestID(taskCtx, requestID)
				}
				return p.run(taskCtx, data, op, tenant, member, user)
			},
		}
		if err := p.pool.Submit(task); err != nil {
			p.logger.ErrorContext(ctx, "propagation task rejected",
				"kind", p.kind,
				"tenant", tenant,
				"member", member,
				"error", err,
			)
			if p.metrics != nil {
				p.metrics.IncrementPropagationDropped(p.kind)
			}
			continue
		}
		submitted++
		if p.metrics != nil {
			p.metrics.IncrementPropagationSubmitted(p.kind)
		}
	}
	return submitted
}

func (p *Propagator[T]) run(ctx context.Context, data T, op PropagationType, central, member id.TenantID, user id.UserID) error {
	ctx, span := p.tracer.Start(ctx, "consortium.propagate", trace.WithAttributes(
		attribute.String("kind", p.kind),
		attribute.String("operation", string(op)),
		attribute.String("central_tenant", central.String()),
		attribute.String("member_tenant", member.String()),
	))
	defer span.End()

	err := p.runner.Run(ctx, member, user, func(ctx context.Context) error {
		return p.apply(ctx, data, op)
	})
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		if p.metrics != nil {
			p.metrics.IncrementPropagationFailed(p.kind)
		}
		return fmt.Errorf("propagate %s from %s to %s: %w", op, central, member, err)
	}
	return nil
}
