// Package batch processes a batch as a unit with retries and falls back to
// item-by-item processing when the batch keeps failing.
package batch

import (
	"context"
	"errors"
	"time"

	"github.com/cenkalti/backoff/v4"
)

const (
	defaultMaxRetries      = 3
	defaultInitialInterval = 200 * time.Millisecond
	defaultMaxInterval     = 5 * time.Second
)

// Policy controls the whole-batch retry phase.
type Policy struct {
	MaxRetries      int
	InitialInterval time.Duration
	MaxInterval     time.Duration
}

// DefaultPolicy is used when a zero Policy is passed.
var DefaultPolicy = Policy{
	MaxRetries:      defaultMaxRetries,
	InitialInterval: defaultInitialInterval,
	MaxInterval:     defaultMaxInterval,
}

// Permanent marks err so the batch phase stops retrying immediately and moves
// to per-item fallback.
func Permanent(err error) error {
	return backoff.Permanent(err)
}

// ProcessWithFallback calls process with all items, retrying with exponential
// backoff. If the batch still fails, every item is processed alone and
// onFailure is called for each item that fails on its own. It only returns an
// error when ctx is done.
func ProcessWithFallback[T any](
	ctx context.Context,
	items []T,
	policy Policy,
	process func(ctx context.Context, items []T) error,
	onFailure func(item T, err error),
) error {
	if len(items) == 0 {
		return nil
	}
	if policy == (Policy{}) {
		policy = DefaultPolicy
	}

	err := backoff.Retry(func() error {
		if err := ctx.Err(); err != nil {
			return backoff.Permanent(err)
		}
		return process(ctx, items)
	}, backoff.WithContext(policy.backOff(), ctx))
	if err == nil {
		return nil
	}
	if ctxErr := ctx.Err(); ctxErr != nil {
		return ctxErr
	}
	if len(items) == 1 {
		onFailure(items[0], unwrapPermanent(err))
		return nil
	}

	for _, item := range items {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return ctxErr
		}
		if err := process(ctx, []T{item}); err != nil {
			onFailure(item, unwrapPermanent(err))
		}
	}
	return nil
}

func (p Policy) backOff() backoff.BackOff {
	b := backoff.NewExponentialBackOff()
	if p.InitialInterval > 0 {
		b.InitialInterval = p.InitialInterval
	}
	if p.MaxInterval > 0 {
		b.MaxInterval = p.MaxInterval
	}
	b.MaxElapsedTime = 0
	retries := p.MaxRetries
	if retries < 0 {
		retries = 0
	}
	return backoff.WithMaxRetries(b, uint64(retries))
}

func unwrapPermanent(err error) error {
	var perm *backoff.PermanentError
	if errors.As(err, &perm) {
		return perm.Err
	}
	return err
}
