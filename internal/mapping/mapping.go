// Package mapping resolves which record tag a heading field is mapped to,
// using the tenant's authority mapping rules.
package mapping

import (
	"context"
	"errors"
	"log/slog"
	"slices"

	"authlinks/internal/authority/models"
	"authlinks/internal/platform/cache"
	dErrors "authlinks/pkg/domain-errors"
	"authlinks/pkg/requestcontext"
)

const (
	rulesPath     = "mapping-rules/marc-authority"
	rulesCacheKey = "marc-authority"
)

// Rules maps a record tag to the authority fields it populates.
type Rules map[string][]string

// RulesSource fetches the current mapping rules of the context tenant.
type RulesSource interface {
	FetchRules(ctx context.Context) (Rules, error)
}

var errEmptyRules = errors.New("empty mapping rules")

// TagLookup answers TagFor from tenant-scoped cached rules. Empty rule sets
// are not cached so a tenant without rules is asked again next time.
type TagLookup struct {
	source RulesSource
	rules  *cache.Loader[Rules]
	logger *slog.Logger
}

type Option func(*TagLookup)

func WithLogger(logger *slog.Logger) Option {
	return func(l *TagLookup) {
		l.logger = logger
	}
}

func NewTagLookup(source RulesSource, store cache.Store, opts ...Option) *TagLookup {
	l := &TagLookup{
		source: source,
		logger: slog.Default(),
	}
	for _, opt := range opts {
		opt(l)
	}
	l.rules = cache.NewLoader[Rules](store, l.logger)
	return l
}

// TagFor returns the lowest tag whose targets include field. A field missing
// from cached rules drops the cache entry and asks the source once more.
func (l *TagLookup) TagFor(ctx context.Context, field models.Field) (string, bool, error) {
	rules, fetched, err := l.load(ctx)
	if err != nil {
		return "", false, err
	}
	tag, ok, err := rules.TagFor(field)
	if ok || err != nil || fetched {
		return tag, ok, err
	}

	tenant := requestcontext.TenantID(ctx)
	if err := l.rules.Invalidate(ctx, tenant, rulesCacheKey); err != nil {
		l.logger.WarnContext(ctx, "mapping rules invalidation failed",
			"tenant", tenant,
			"error", err,
		)
	}
	rules, _, err = l.load(ctx)
	if err != nil {
		return "", false, err
	}
	return rules.TagFor(field)
}

// Tags returns every field that has a mapped tag.
func (l *TagLookup) Tags(ctx context.Context) (map[models.Field]string, error) {
	rules, _, err := l.load(ctx)
	if err != nil {
		return nil, err
	}
	out := make(map[models.Field]string)
	for _, f := range models.Fields() {
		if tag, ok, _ := rules.TagFor(f); ok {
			out[f] = tag
		}
	}
	return out, nil
}

// load returns the tenant's rules and whether they came from the source
// rather than the cache.
func (l *TagLookup) load(ctx context.Context) (Rules, bool, error) {
	tenant := requestcontext.TenantID(ctx)
	if tenant.IsNil() {
		return nil, false, dErrors.New(dErrors.CodeInvariantViolation, "tenant scope required")
	}
	fetched := false
	rules, err := l.rules.GetOrLoad(ctx, tenant, rulesCacheKey, func(ctx context.Context) (Rules, error) {
		fetched = true
		rules, err := l.source.FetchRules(ctx)
		if err != nil {
			return nil, err
		}
		if len(rules) == 0 {
			return nil, errEmptyRules
		}
		return rules, nil
	})
	switch {
	case errors.Is(err, errEmptyRules):
		l.logger.WarnContext(ctx, "no authority mapping rules", "tenant", tenant)
		return Rules{}, true, nil
	case err != nil:
		return nil, fetched, dErrors.Wrap(err, dErrors.CodeUnavailable, "failed to fetch mapping rules")
	}
	return rules, fetched, nil
}

// TagFor scans tags in ascending order and returns the first one mapped to
// field.
func (r Rules) TagFor(field models.Field) (string, bool, error) {
	tags := make([]string, 0, len(r))
	for tag := range r {
		tags = append(tags, tag)
	}
	slices.Sort(tags)
	name := field.String()
	for _, tag := range tags {
		if slices.Contains(r[tag], name) {
			return tag, true, nil
		}
	}
	return "", false, nil
}
