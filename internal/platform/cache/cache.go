// Package cache stores small read-mostly JSON values keyed by tenant.
//
// Two stores exist: Redis for shared deployments and an in-process map for
// single-instance deployments and tests. Values are namespaced so several
// caches can share one Redis database.
package cache

import (
	"context"
	"log/slog"

	id "authlinks/pkg/domain"
)

// Store is a tenant-scoped JSON cache.
type Store interface {
	// Get decodes the cached value into dest and reports whether it existed.
	Get(ctx context.Context, tenant id.TenantID, key string, dest any) (bool, error)
	Set(ctx context.Context, tenant id.TenantID, key string, value any) error
	Delete(ctx context.Context, tenant id.TenantID, key string) error
}

// Loader reads through a Store. Cache failures degrade to a load; they are
// logged and never returned.
type Loader[T any] struct {
	store  Store
	logger *slog.Logger
}

func NewLoader[T any](store Store, logger *slog.Logger) *Loader[T] {
	if logger == nil {
		logger = slog.Default()
	}
	return &Loader[T]{store: store, logger: logger}
}

// GetOrLoad returns the cached value for (tenant, key) or calls load and
// caches its result. Load errors are returned and nothing is cached.
func (l *Loader[T]) GetOrLoad(ctx context.Context, tenant id.TenantID, key string, load func(ctx context.Context) (T, error)) (T, error) {
	var cached T
	found, err := l.store.Get(ctx, tenant, key, &cached)
	if err != nil {
		l.logger.WarnContext(ctx, "cache read failed",
			"tenant", tenant,
			"key", key,
			"error", err,
		)
	}
	if found && err == nil {
		return cached, nil
	}

	value, err := load(ctx)
	if err != nil {
		var zero T
		return zero, err
	}
	if err := l.store.Set(ctx, tenant, key, value); err != nil {
		l.logger.WarnContext(ctx, "cache write failed",
			"tenant", tenant,
			"key", key,
			"error", err,
		)
	}
	return value, nil
}

// Invalidate drops the cached value for (tenant, key).
func (l *Loader[T]) Invalidate(ctx context.Context, tenant id.TenantID, key string) error {
	return l.store.Delete(ctx, tenant, key)
}
