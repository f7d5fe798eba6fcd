// Package consumer runs a franz-go consumer group and hands each fetched
// partition batch to a BatchHandler.
package consumer

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/twmb/franz-go/pkg/kgo"
	"golang.org/x/sync/errgroup"
)

const (
	defaultConcurrency  = 4
	defaultMaxRetries   = 3
	defaultRetryBackoff = 500 * time.Millisecond
)

// Message is a transport-neutral view of a Kafka record.
type Message struct {
	Topic     string
	Partition int32
	Offset    int64
	Key       []byte
	Value     []byte
	Headers   map[string]string
	Timestamp time.Time
}

// Header returns the value of a header; names are case-insensitive.
func (m *Message) Header(name string) string {
	return m.Headers[strings.ToLower(name)]
}

// BatchHandler handles all records fetched from one partition in one poll.
type BatchHandler interface {
	HandleBatch(ctx context.Context, msgs []*Message) error
}

// BatchHandlerFunc adapts a function to BatchHandler.
type BatchHandlerFunc func(ctx context.Context, msgs []*Message) error

func (f BatchHandlerFunc) HandleBatch(ctx context.Context, msgs []*Message) error {
	return f(ctx, msgs)
}

// Config configures a Consumer.
type Config struct {
	Brokers     []string
	Group       string
	TopicRegex  string
	Concurrency int
	MaxRetries  int
}

// Consumer polls a consumer group and commits after every poll. Handler
// errors are retried with backoff and then logged; the offsets are committed
// regardless so one poisoned batch cannot stall a partition.
type Consumer struct {
	client       *kgo.Client
	handler      BatchHandler
	logger       *slog.Logger
	concurrency  int
	maxRetries   int
	retryBackoff time.Duration
}

type Option func(*Consumer)

func WithLogger(logger *slog.Logger) Option {
	return func(c *Consumer) {
		c.logger = logger
	}
}

func WithRetryBackoff(d time.Duration) Option {
	return func(c *Consumer) {
		c.retryBackoff = d
	}
}

// New creates a Consumer subscribed to every topic matching cfg.TopicRegex.
func New(cfg Config, handler BatchHandler, opts ...Option) (*Consumer, error) {
	if len(cfg.Brokers) == 0 || cfg.Group == "" || cfg.TopicRegex == "" {
		return nil, errors.New("kafka consumer: brokers, group and topic regex are required")
	}
	client, err := kgo.NewClient(
		kgo.SeedBrokers(cfg.Brokers...),
		kgo.ConsumerGroup(cfg.Group),
		kgo.ConsumeRegex(),
		kgo.ConsumeTopics(cfg.TopicRegex),
		kgo.ConsumeResetOffset(kgo.NewOffset().AtStart()),
		kgo.DisableAutoCommit(),
		kgo.BlockRebalanceOnPoll(),
	)
	if err != nil {
		return nil, fmt.Errorf("create kafka consumer: %w", err)
	}

	c := &Consumer{
		client:       client,
		handler:      handler,
		logger:       slog.Default(),
		concurrency:  cfg.Concurrency,
		maxRetries:   cfg.MaxRetries,
		retryBackoff: defaultRetryBackoff,
	}
	if c.concurrency < 1 {
		c.concurrency = defaultConcurrency
	}
	if c.maxRetries < 0 {
		c.maxRetries = defaultMaxRetries
	}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

// Run polls until ctx is cancelled or the client is closed.
func (c *Consumer) Run(ctx context.Context) error {
	for {
		fetches := c.client.PollFetches(ctx)
		if fetches.IsClientClosed() {
			return nil
		}
		if err := ctx.Err(); err != nil {
			return nil
		}
		fetches.EachError(func(topic string, partition int32, err error) {
			c.logger.ErrorContext(ctx, "kafka fetch error",
				"topic", topic,
				"partition", partition,
				"error", err,
			)
		})

		g, gctx := errgroup.WithContext(ctx)
		g.SetLimit(c.concurrency)
		fetches.EachPartition(func(p kgo.FetchTopicPartition) {
			if len(p.Records) == 0 {
				return
			}
			msgs := toMessages(p.Records)
			g.Go(func() error {
				c.handle(gctx, msgs)
				return nil
			})
		})
		_ = g.Wait()

		if err := c.client.CommitUncommittedOffsets(ctx); err != nil && ctx.Err() == nil {
			c.logger.ErrorContext(ctx, "kafka commit failed", "error", err)
		}
		c.client.AllowRebalance()
	}
}

func (c *Consumer) handle(ctx context.Context, msgs []*Message) {
	b := backoff.WithContext(
		backoff.WithMaxRetries(newBackOff(c.retryBackoff), uint64(c.maxRetries)),
		ctx,
	)
	err := backoff.Retry(func() error {
		return c.handler.HandleBatch(ctx, msgs)
	}, b)
	if err != nil {
		first := msgs[0]
		c.logger.ErrorContext(ctx, "kafka batch handling failed, skipping",
			"topic", first.Topic,
			"partition", first.Partition,
			"first_offset", first.Offset,
			"records", len(msgs),
			"error", err,
		)
	}
}

// Ping checks broker connectivity.
func (c *Consumer) Ping(ctx context.Context) error {
	return c.client.Ping(ctx)
}

// Close leaves the group and closes the client.
func (c *Consumer) Close() {
	c.client.Close()
}

func newBackOff(initial time.Duration) *backoff.ExponentialBackOff {
	b := backoff.NewExponentialBackOff()
	b.InitialInterval = initial
	b.MaxElapsedTime = 0
	return b
}

func toMessages(records []*kgo.Record) []*Message {
	msgs := make([]*Message, 0, len(records))
	for _, r := range records {
		headers := make(map[string]string, len(r.Headers))
		for _, h := range r.Headers {
			headers[strings.ToLower(h.Key)] = string(h.Value)
		}
		msgs = append(msgs, &Message{
			Topic:     r.Topic,
			Partition: r.Partition,
			Offset:    r.Offset,
			Key:       r.Key,
			Value:     r.Value,
			Headers:   headers,
			Timestamp: r.Timestamp,
		})
	}
	return msgs
}
