// Package topics names tenant-scoped topics and creates them with kadm.
package topics

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/twmb/franz-go/pkg/kadm"
	"github.com/twmb/franz-go/pkg/kerr"
	"github.com/twmb/franz-go/pkg/kgo"

	id "authlinks/pkg/domain"
)

// Topic name suffixes, relative to {env}.{tenant}.
const (
	AuthorityEvents   = "authorities.authority"
	LinkNotifications = "links.instance-authority"
	LinkStatsReports  = "links.instance-authority-stats"
)

// Record headers carrying the request scope, in the lower case the consumer
// normalises header names to.
const (
	HeaderTenant    = "x-okapi-tenant"
	HeaderUserID    = "x-okapi-user-id"
	HeaderRequestID = "x-okapi-request-id"
)

// Name returns the tenant-scoped topic {env}.{tenant}.{suffix}.
func Name(env string, tenant id.TenantID, suffix string) string {
	return env + "." + string(tenant) + "." + suffix
}

// TenantFromTopic extracts the tenant from a topic named by Name. It returns
// false when topic does not belong to env.
func TenantFromTopic(env, topic string) (id.TenantID, bool) {
	rest, ok := strings.CutPrefix(topic, env+".")
	if !ok {
		return "", false
	}
	tenant, _, ok := strings.Cut(rest, ".")
	if !ok || tenant == "" {
		return "", false
	}
	return id.TenantID(tenant), true
}

// Admin creates topics through kadm.
type Admin struct {
	adm               *kadm.Client
	partitions        int32
	replicationFactor int16
}

// NewAdmin wraps client. The caller keeps ownership of client.
func NewAdmin(client *kgo.Client, partitions int32, replicationFactor int16) *Admin {
	if partitions < 1 {
		partitions = 1
	}
	if replicationFactor < 1 {
		replicationFactor = 1
	}
	return &Admin{
		adm:               kadm.NewClient(client),
		partitions:        partitions,
		replicationFactor: replicationFactor,
	}
}

// Ensure creates every missing topic. Existing topics are left untouched. It
// returns the names that were created.
func (a *Admin) Ensure(ctx context.Context, names ...string) ([]string, error) {
	if len(names) == 0 {
		return nil, nil
	}
	resp, err := a.adm.CreateTopics(ctx, a.partitions, a.replicationFactor, nil, names...)
	if err != nil {
		return nil, fmt.Errorf("create topics: %w", err)
	}

	var created []string
	var errs []error
	for _, name := range names {
		r, ok := resp[name]
		if !ok {
			continue
		}
		switch {
		case r.Err == nil:
			created = append(created, name)
		case errors.Is(r.Err, kerr.TopicAlreadyExists):
		default:
			errs = append(errs, fmt.Errorf("topic %s: %w", name, r.Err))
		}
	}
	return created, errors.Join(errs...)
}
