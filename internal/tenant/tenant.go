// Package tenant runs units of work on behalf of a tenant and acting user.
//
// Everything downstream (stores, peer clients, caches) reads the tenant from
// the request context, so scoping happens in exactly one place.
package tenant

import (
	"context"
	"log/slog"
	"sync"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	id "authlinks/pkg/domain"
	dErrors "authlinks/pkg/domain-errors"
	"authlinks/pkg/requestcontext"
)

// Bootstrap prepares a tenant's storage before its first unit of work.
type Bootstrap func(ctx context.Context, tenant id.TenantID) error

// Executor scopes a context to a tenant and acting user.
type Executor struct {
	bootstrap Bootstrap
	ready     sync.Map // id.TenantID -> struct{}
	tracer    trace.Tracer
	logger    *slog.Logger
}

type Option func(*Executor)

func WithLogger(logger *slog.Logger) Option {
	return func(e *Executor) {
		e.logger = logger
	}
}

// WithBootstrap runs fn once per tenant, before the first successful Run for
// that tenant. A failed bootstrap fails the Run and is retried next time.
func WithBootstrap(fn Bootstrap) Option {
	return func(e *Executor) {
		e.bootstrap = fn
	}
}

func NewExecutor(opts ...Option) *Executor {
	e := &Executor{
		tracer: otel.Tracer("authlinks/tenant"),
		logger: slog.Default(),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Run calls fn with ctx scoped to tenant and user. A request id is attached
// when ctx carries none. Errors from fn are returned unchanged.
func (e *Executor) Run(ctx context.Context, tenant id.TenantID, user id.UserID, fn func(ctx context.Context) error) error {
	if tenant.IsNil() {
		return dErrors.New(dErrors.CodeInvariantViolation, "tenant is required")
	}

	ctx = requestcontext.WithTenantID(ctx, tenant)
	ctx = requestcontext.WithUserID(ctx, user)
	if requestcontext.RequestID(ctx) == "" {
		ctx = requestcontext.WithRequestID(ctx, uuid.NewString())
	}

	ctx, span := e.tracer.Start(ctx, "tenant.run", trace.WithAttributes(
		attribute.String("tenant", tenant.String()),
		attribute.String("user_id", user.String()),
	))
	defer span.End()

	if err := e.ensureReady(ctx, tenant); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "bootstrap failed")
		return err
	}

	err := fn(ctx)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	}
	return err
}

func (e *Executor) ensureReady(ctx context.Context, tenant id.TenantID) error {
	if e.bootstrap == nil {
		return nil
	}
	if _, ok := e.ready.Load(tenant); ok {
		return nil
	}
	if err := e.bootstrap(ctx, tenant); err != nil {
		e.logger.ErrorContext(ctx, "tenant bootstrap failed", "tenant", tenant, "error", err)
		return dErrors.Wrap(err, dErrors.CodeUnavailable, "tenant bootstrap failed")
	}
	e.ready.Store(tenant, struct{}{})
	e.logger.InfoContext(ctx, "tenant bootstrapped", "tenant", tenant)
	return nil
}
