// Package requestcontext provides transport-independent context accessors for
// values scoped to a unit of work.
//
// Kafka listeners and the tenant executor set these values; services and
// stores only read them. Keeping this package free of transport imports lets
// services depend on it without pulling in franz-go or net/http.
//
// Usage in services (read values):
//
//	tenant := requestcontext.TenantID(ctx)
//	userID := requestcontext.UserID(ctx)
//	now := requestcontext.Now(ctx)
//
// Usage in the tenant executor (set values):
//
//	ctx = requestcontext.WithTenantID(ctx, tenant)
//	ctx = requestcontext.WithUserID(ctx, userID)
//
// Usage in tests (inject values):
//
//	ctx = requestcontext.WithTime(ctx, fixedTime)
package requestcontext

import (
	"context"
	"time"

	id "authlinks/pkg/domain"
)

// Context key types (unexported for encapsulation).
type (
	tenantIDKey    struct{}
	userIDKey      struct{}
	requestIDKey   struct{}
	requestTimeKey struct{}
)

// Exported context keys for direct use in tests that need context.WithValue.
var (
	ContextKeyTenantID    = tenantIDKey{}
	ContextKeyUserID      = userIDKey{}
	ContextKeyRequestID   = requestIDKey{}
	ContextKeyRequestTime = requestTimeKey{}
)

// -----------------------------------------------------------------------------
// Execution identity (tenant, user)
// -----------------------------------------------------------------------------

// TenantID retrieves the tenant the current unit of work runs as.
// Returns the empty tenant if not set.
func TenantID(ctx context.Context) id.TenantID {
	if tenant, ok := ctx.Value(ContextKeyTenantID).(id.TenantID); ok {
		return tenant
	}
	return ""
}

// WithTenantID injects a tenant into the context.
func WithTenantID(ctx context.Context, tenant id.TenantID) context.Context {
	return context.WithValue(ctx, ContextKeyTenantID, tenant)
}

// UserID retrieves the acting user from the context.
// Returns the zero value (nil UUID) if not set.
func UserID(ctx context.Context) id.UserID {
	if userID, ok := ctx.Value(ContextKeyUserID).(id.UserID); ok {
		return userID
	}
	return id.UserID{}
}

// WithUserID injects a user ID into the context.
func WithUserID(ctx context.Context, userID id.UserID) context.Context {
	return context.WithValue(ctx, ContextKeyUserID, userID)
}

// -----------------------------------------------------------------------------
// Request metadata
// -----------------------------------------------------------------------------

// RequestID retrieves the correlation id carried by the triggering record.
func RequestID(ctx context.Context) string {
	if reqID, ok := ctx.Value(ContextKeyRequestID).(string); ok {
		return reqID
	}
	return ""
}

// WithRequestID injects a correlation id into the context.
func WithRequestID(ctx context.Context, requestID string) context.Context {
	return context.WithValue(ctx, ContextKeyRequestID, requestID)
}

// -----------------------------------------------------------------------------
// Request time
// -----------------------------------------------------------------------------

// Now retrieves the request-scoped time from context.
// Falls back to time.Now() if not set.
func Now(ctx context.Context) time.Time {
	if t, ok := ctx.Value(ContextKeyRequestTime).(time.Time); ok {
		return t
	}
	return time.Now()
}

// WithTime injects a specific time into a context.
// Useful for:
//   - Service unit tests that need deterministic timestamps
//   - Batches that need one consistent time for every record
func WithTime(ctx context.Context, t time.Time) context.Context {
	return context.WithValue(ctx, ContextKeyRequestTime, t)
}
