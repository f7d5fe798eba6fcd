// Package config loads runtime configuration from defaults, an optional
// config file, AUTHLINKS_* environment variables and command-line flags.
package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"

	id "authlinks/pkg/domain"
	"authlinks/pkg/platform/collections"
)

const (
	envPrefix = "AUTHLINKS"

	defaultHTTPAddress           = ":8081"
	defaultLogLevel              = "info"
	defaultLogFormat             = "text"
	defaultKafkaEnv              = "folio"
	defaultKafkaGroup            = "authlinks-authority-changes"
	defaultAuthorityTopicPattern = `^%s\.[a-z][a-z0-9_]*\.authorities\.authority$`
	defaultReportTopicPattern    = `^%s\.[a-z][a-z0-9_]*\.links\.instance-authority-stats$`
	defaultKafkaConcurrency      = 4
	defaultKafkaMaxRetries       = 3
	defaultKafkaPartitions       = 1
	defaultKafkaReplication      = 1
	defaultRedisPoolSize         = 10
	defaultRedisTimeout          = time.Second
	defaultCacheTTL              = 5 * time.Minute
	defaultOkapiTimeout          = 10 * time.Second
	defaultPropagationWorkers    = 4
	defaultPropagationQueueSize  = 256
	defaultBatchMaxRetries       = 3
	defaultBatchInitialInterval  = 200 * time.Millisecond
)

// Server captures HTTP (ops endpoint) configuration.
type Server struct {
	Addr string
}

// Log captures logger construction parameters.
type Log struct {
	Level  string
	Format string
}

// Kafka captures broker, topic and consumer configuration.
type Kafka struct {
	Brokers               []string
	Env                   string
	Group                 string
	AuthorityTopicPattern string
	ReportTopicPattern    string
	Concurrency           int
	MaxRetries            int
	Tenants               []id.TenantID
	Partitions            int32
	ReplicationFactor     int16
}

// Postgres captures the shared database connection.
type Postgres struct {
	DSN string
}

// Redis captures the cache connection. An empty URL selects in-memory caches.
type Redis struct {
	URL      string
	PoolSize int
	Timeout  time.Duration
}

// Okapi captures the gateway used for peer module calls.
type Okapi struct {
	URL     string
	Timeout time.Duration
}

// Propagation sizes the consortium propagation pool.
type Propagation struct {
	Workers   int
	QueueSize int
}

// Batch configures retry before per-item fallback.
type Batch struct {
	MaxRetries      int
	InitialInterval time.Duration
}

// AppConfig is the fully resolved configuration.
type AppConfig struct {
	Server      Server
	Log         Log
	Kafka       Kafka
	Postgres    Postgres
	Redis       Redis
	CacheTTL    time.Duration
	Okapi       Okapi
	Propagation Propagation
	Batch       Batch
}

// NewViper returns a viper instance with defaults and env bindings configured.
func NewViper() *viper.Viper {
	v := viper.New()
	ApplyDefaults(v)
	return v
}

// ApplyDefaults configures defaults and env bindings on the provided viper instance.
func ApplyDefaults(v *viper.Viper) {
	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	v.SetDefault("http.address", defaultHTTPAddress)
	v.SetDefault("log.level", defaultLogLevel)
	v.SetDefault("log.format", defaultLogFormat)
	v.SetDefault("kafka.brokers", []string{"localhost:9092"})
	v.SetDefault("kafka.env", defaultKafkaEnv)
	v.SetDefault("kafka.group", defaultKafkaGroup)
	v.SetDefault("kafka.authority_topic_pattern", defaultAuthorityTopicPattern)
	v.SetDefault("kafka.report_topic_pattern", defaultReportTopicPattern)
	v.SetDefault("kafka.concurrency", defaultKafkaConcurrency)
	v.SetDefault("kafka.max_retries", defaultKafkaMaxRetries)
	v.SetDefault("kafka.tenants", []string{})
	v.SetDefault("kafka.partitions", defaultKafkaPartitions)
	v.SetDefault("kafka.replication_factor", defaultKafkaReplication)
	v.SetDefault("redis.pool_size", defaultRedisPoolSize)
	v.SetDefault("redis.timeout", defaultRedisTimeout)
	v.SetDefault("cache.ttl", defaultCacheTTL)
	v.SetDefault("okapi.timeout", defaultOkapiTimeout)
	v.SetDefault("propagation.workers", defaultPropagationWorkers)
	v.SetDefault("propagation.queue_size", defaultPropagationQueueSize)
	v.SetDefault("batch.max_retries", defaultBatchMaxRetries)
	v.SetDefault("batch.initial_interval", defaultBatchInitialInterval)
}

// Load parses runtime configuration from viper and validates everything the
// serve command needs.
func Load(v *viper.Viper) (AppConfig, error) {
	cfg, err := Parse(v)
	if err != nil {
		return AppConfig{}, err
	}
	if err := cfg.validate(); err != nil {
		return AppConfig{}, err
	}
	return cfg, nil
}

// Parse reads the configuration without validating it. Commands that need
// only part of it check that part themselves.
func Parse(v *viper.Viper) (AppConfig, error) {
	tenants, err := parseTenants(v.GetStringSlice("kafka.tenants"))
	if err != nil {
		return AppConfig{}, err
	}
	cfg := AppConfig{
		Server: Server{Addr: v.GetString("http.address")},
		Log: Log{
			Level:  v.GetString("log.level"),
			Format: v.GetString("log.format"),
		},
		Kafka: Kafka{
			Brokers:               collections.SplitAndDedupe(v.GetStringSlice("kafka.brokers")),
			Env:                   v.GetString("kafka.env"),
			Group:                 v.GetString("kafka.group"),
			AuthorityTopicPattern: v.GetString("kafka.authority_topic_pattern"),
			ReportTopicPattern:    v.GetString("kafka.report_topic_pattern"),
			Concurrency:           v.GetInt("kafka.concurrency"),
			MaxRetries:            v.GetInt("kafka.max_retries"),
			Tenants:               tenants,
			Partitions:            v.GetInt32("kafka.partitions"),
			ReplicationFactor:     int16(v.GetInt("kafka.replication_factor")),
		},
		Postgres: Postgres{DSN: v.GetString("postgres.dsn")},
		Redis: Redis{
			URL:      v.GetString("redis.url"),
			PoolSize: v.GetInt("redis.pool_size"),
			Timeout:  v.GetDuration("redis.timeout"),
		},
		CacheTTL: v.GetDuration("cache.ttl"),
		Okapi: Okapi{
			URL:     strings.TrimRight(v.GetString("okapi.url"), "/"),
			Timeout: v.GetDuration("okapi.timeout"),
		},
		Propagation: Propagation{
			Workers:   v.GetInt("propagation.workers"),
			QueueSize: v.GetInt("propagation.queue_size"),
		},
		Batch: Batch{
			MaxRetries:      v.GetInt("batch.max_retries"),
			InitialInterval: v.GetDuration("batch.initial_interval"),
		},
	}
	return cfg, nil
}

// AuthorityTopicRegex returns the subscription pattern with the environment
// substituted.
func (c Kafka) AuthorityTopicRegex() string {
	return fmt.Sprintf(c.AuthorityTopicPattern, c.Env)
}

// ReportTopicRegex returns the report subscription pattern with the
// environment substituted.
func (c Kafka) ReportTopicRegex() string {
	return fmt.Sprintf(c.ReportTopicPattern, c.Env)
}

func (c AppConfig) validate() error {
	if len(c.Kafka.Brokers) == 0 {
		return fmt.Errorf("kafka.brokers is required")
	}
	if strings.TrimSpace(c.Kafka.Env) == "" {
		return fmt.Errorf("kafka.env is required")
	}
	if strings.TrimSpace(c.Kafka.Group) == "" {
		return fmt.Errorf("kafka.group is required")
	}
	if c.Kafka.Concurrency < 1 {
		return fmt.Errorf("kafka.concurrency must be positive")
	}
	if strings.TrimSpace(c.Postgres.DSN) == "" {
		return fmt.Errorf("postgres.dsn is required")
	}
	if strings.TrimSpace(c.Okapi.URL) == "" {
		return fmt.Errorf("okapi.url is required")
	}
	if c.Propagation.Workers < 1 || c.Propagation.QueueSize < 1 {
		return fmt.Errorf("propagation.workers and propagation.queue_size must be positive")
	}
	if c.Batch.MaxRetries < 0 {
		return fmt.Errorf("batch.max_retries must not be negative")
	}
	return nil
}

func parseTenants(values []string) ([]id.TenantID, error) {
	var tenants []id.TenantID
	for _, raw := range collections.SplitAndDedupe(values) {
		t, err := id.ParseTenantID(raw)
		if err != nil {
			return nil, fmt.Errorf("kafka.tenants: %q: %w", raw, err)
		}
		tenants = append(tenants, t)
	}
	return tenants, nil
}
