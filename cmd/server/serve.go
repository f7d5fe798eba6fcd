package main

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"golang.org/x/sync/errgroup"

	"authlinks/internal/authority/diff"
	"authlinks/internal/authority/handler"
	"authlinks/internal/authority/ingest"
	"authlinks/internal/authority/publisher"
	"authlinks/internal/authority/stats"
	"authlinks/internal/consortium"
	"authlinks/internal/links"
	"authlinks/internal/mapping"
	"authlinks/internal/platform/async"
	"authlinks/internal/platform/cache"
	"authlinks/internal/platform/config"
	"authlinks/internal/platform/httpserver"
	"authlinks/internal/platform/kafka/consumer"
	"authlinks/internal/platform/kafka/producer"
	"authlinks/internal/platform/logger"
	"authlinks/internal/platform/metrics"
	"authlinks/internal/platform/okapi"
	"authlinks/internal/platform/postgres"
	"authlinks/internal/platform/redis"
	"authlinks/internal/sourcerecord"
	"authlinks/internal/tenant"
	kafkatransport "authlinks/internal/transport/kafka"
	id "authlinks/pkg/domain"
	"authlinks/pkg/platform/batch"
	"authlinks/pkg/platform/circuit"
)

const (
	shutdownTimeout = 10 * time.Second
	cacheNamespace  = "lookups"
	reportGroupTail = "-reports"
)

func serveCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Consume authority changes and publish link update notifications",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServe(cmd.Context())
		},
	}
}

func runServe(ctx context.Context) error {
	cfg, err := config.Load(viper.GetViper())
	if err != nil {
		return err
	}
	log := logger.New(cfg.Log.Level, cfg.Log.Format)
	slog.SetDefault(log)

	ctx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	db, err := postgres.Open(ctx, cfg.Postgres.DSN)
	if err != nil {
		return err
	}
	defer db.Close()

	rdb, err := redis.New(ctx, cfg.Redis)
	if err != nil {
		return err
	}
	if rdb != nil {
		defer rdb.Close()
	}

	prod, err := producer.New(cfg.Kafka.Brokers)
	if err != nil {
		return err
	}
	defer prod.Close()

	registry := prometheus.NewRegistry()
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	m := metrics.New(registry)

	pool := async.New(cfg.Propagation.Workers, cfg.Propagation.QueueSize, async.WithLogger(log))
	pool.Start(ctx)
	defer pool.Close()

	authorityListener, reportListener, err := buildPipeline(ctx, cfg, pipelineDeps{
		db:       db,
		cache:    newCacheStore(rdb, cfg.CacheTTL),
		producer: prod,
		pool:     pool,
		metrics:  m,
		logger:   log,
	})
	if err != nil {
		return err
	}

	authorityConsumer, err := consumer.New(consumer.Config{
		Brokers:     cfg.Kafka.Brokers,
		Group:       cfg.Kafka.Group,
		TopicRegex:  cfg.Kafka.AuthorityTopicRegex(),
		Concurrency: cfg.Kafka.Concurrency,
		MaxRetries:  cfg.Kafka.MaxRetries,
	}, authorityListener, consumer.WithLogger(log))
	if err != nil {
		return err
	}
	defer authorityConsumer.Close()

	reportConsumer, err := consumer.New(consumer.Config{
		Brokers:     cfg.Kafka.Brokers,
		Group:       cfg.Kafka.Group + reportGroupTail,
		TopicRegex:  cfg.Kafka.ReportTopicRegex(),
		Concurrency: cfg.Kafka.Concurrency,
		MaxRetries:  cfg.Kafka.MaxRetries,
	}, reportListener, consumer.WithLogger(log))
	if err != nil {
		return err
	}
	defer reportConsumer.Close()

	checks := map[string]httpserver.HealthCheck{
		"postgres": db.PingContext,
		"kafka":    prod.Ping,
	}
	if rdb != nil {
		checks["redis"] = rdb.Health
	}
	srv := httpserver.New(cfg.Server.Addr, httpserver.NewOpsRouter(registry, checks))

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		log.InfoContext(gctx, "ops server starting", "address", cfg.Server.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("ops server: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		log.InfoContext(gctx, "consuming authority events", "topics", cfg.Kafka.AuthorityTopicRegex())
		return authorityConsumer.Run(gctx)
	})
	g.Go(func() error {
		log.InfoContext(gctx, "consuming link update reports", "topics", cfg.Kafka.ReportTopicRegex())
		return reportConsumer.Run(gctx)
	})
	g.Go(func() error {
		<-gctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})

	err = g.Wait()
	log.Info("shutting down")
	return err
}

type pipelineDeps struct {
	db       *sql.DB
	cache    cache.Store
	producer *producer.Producer
	pool     *async.Pool
	metrics  *metrics.Metrics
	logger   *slog.Logger
}

// buildPipeline wires the change pipeline behind the two Kafka listeners.
func buildPipeline(ctx context.Context, cfg config.AppConfig, d pipelineDeps) (*kafkatransport.AuthorityListener, *kafkatransport.ReportListener, error) {
	log := d.logger

	gateway := okapi.New(cfg.Okapi,
		okapi.WithLogger(log),
		okapi.WithBreaker(circuit.New("okapi")),
	)
	executor := tenant.NewExecutor(
		tenant.WithLogger(log),
		tenant.WithBootstrap(func(ctx context.Context, t id.TenantID) error {
			return postgres.EnsureTenantSchema(ctx, d.db, t)
		}),
	)

	linkStore := links.NewPostgres(d.db)
	linkCounter := links.NewResolver(linkStore)
	statService := stats.New(stats.NewPostgres(d.db), linkStore,
		stats.WithLogger(log),
		stats.WithMetrics(d.metrics),
		stats.WithTx(postgres.NewTransactor(d.db)),
	)

	tags := mapping.NewTagLookup(mapping.NewClient(gateway), d.cache, mapping.WithLogger(log))
	recorder := stats.NewRecorder(statService, tags, stats.WithRecorderLogger(log))
	table := handler.New(tags, handler.WithLogger(log))
	if err := table.Validate(); err != nil {
		return nil, nil, err
	}
	pub := publisher.New(d.producer, cfg.Kafka.Env,
		publisher.WithLogger(log),
		publisher.WithMetrics(d.metrics),
	)

	membership := consortium.NewMembership(gateway, d.cache, consortium.WithMembershipLogger(log))
	linkPropagator := consortium.NewLinkPropagator(membership, d.pool, executor, linkCounter, recorder, table, pub,
		consortium.WithLogger(log),
		consortium.WithMetrics(d.metrics),
	)
	statsPropagator := consortium.NewStatsPropagator(membership, d.pool, executor, statService, linkCounter,
		consortium.WithLogger(log),
		consortium.WithMetrics(d.metrics),
	)

	policy := batch.Policy{
		MaxRetries:      cfg.Batch.MaxRetries,
		InitialInterval: cfg.Batch.InitialInterval,
	}
	coordinator := ingest.New(ingest.Deps{
		Runner:     executor,
		Links:      linkCounter,
		Differ:     diff.New(diff.WithLogger(log)),
		Sources:    sourcerecord.New(gateway, sourcerecord.WithLogger(log)),
		Recorder:   recorder,
		Dispatcher: table,
		Publisher:  pub,
		Propagator: linkPropagator,
	}, ingest.WithLogger(log), ingest.WithMetrics(d.metrics), ingest.WithPolicy(policy))

	log.InfoContext(ctx, "pipeline ready",
		"kafka_env", cfg.Kafka.Env,
		"propagation_workers", cfg.Propagation.Workers,
	)
	return kafkatransport.NewAuthorityListener(coordinator, cfg.Kafka.Env, kafkatransport.WithLogger(log)),
		kafkatransport.NewReportListener(executor, statService, statsPropagator, cfg.Kafka.Env, policy, kafkatransport.WithLogger(log)),
		nil
}

// newCacheStore returns a Redis-backed store when Redis is configured and an
// in-process store otherwise.
func newCacheStore(rdb *redis.Client, ttl time.Duration) cache.Store {
	if rdb == nil {
		return cache.NewMemory(ttl)
	}
	return cache.NewRedis(rdb.Client, cacheNamespace, ttl)
}
