package testutil

import (
	"context"
	"time"

	id "authlinks/pkg/domain"
	"authlinks/pkg/requestcontext"
)

// TenantContext returns a background context scoped to tenant and user, the
// state the tenant executor establishes before running a unit of work.
func TenantContext(tenant id.TenantID, user id.UserID) context.Context {
	ctx := requestcontext.WithTenantID(context.Background(), tenant)
	return requestcontext.WithUserID(ctx, user)
}

// FixedTime is like TenantContext but also pins requestcontext.Now.
func FixedTime(ctx context.Context, now time.Time) context.Context {
	return requestcontext.WithTime(ctx, now)
}
