package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"authlinks/internal/platform/config"
	"authlinks/internal/platform/kafka/producer"
	"authlinks/internal/platform/kafka/topics"
	"authlinks/internal/platform/logger"
	"authlinks/internal/platform/postgres"
)

// tenantTopics are created per tenant by the topics command.
var tenantTopics = []string{topics.LinkNotifications, topics.LinkStatsReports}

func topicsCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "topics",
		Short: "Create the tenant-scoped Kafka topics of the configured tenants",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadWithTenants()
			if err != nil {
				return err
			}
			return ensureTopics(cmd.Context(), cfg)
		},
	}
}

func schemaCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "schema",
		Short: "Create the database schema of the configured tenants",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadWithTenants()
			if err != nil {
				return err
			}
			return ensureSchemas(cmd.Context(), cfg)
		},
	}
}

func loadWithTenants() (config.AppConfig, error) {
	cfg, err := config.Parse(viper.GetViper())
	if err != nil {
		return config.AppConfig{}, err
	}
	if len(cfg.Kafka.Tenants) == 0 {
		return config.AppConfig{}, fmt.Errorf("no tenants configured: set kafka.tenants or --tenants")
	}
	return cfg, nil
}

func ensureTopics(ctx context.Context, cfg config.AppConfig) error {
	log := logger.New(cfg.Log.Level, cfg.Log.Format)

	prod, err := producer.New(cfg.Kafka.Brokers)
	if err != nil {
		return err
	}
	defer prod.Close()

	names := make([]string, 0, len(cfg.Kafka.Tenants)*len(tenantTopics))
	for _, tenant := range cfg.Kafka.Tenants {
		for _, suffix := range tenantTopics {
			names = append(names, topics.Name(cfg.Kafka.Env, tenant, suffix))
		}
	}

	admin := topics.NewAdmin(prod.Client(), cfg.Kafka.Partitions, cfg.Kafka.ReplicationFactor)
	created, err := admin.Ensure(ctx, names...)
	log.InfoContext(ctx, "tenant topics ensured",
		"requested", len(names),
		"created", created,
	)
	return err
}

func ensureSchemas(ctx context.Context, cfg config.AppConfig) error {
	log := logger.New(cfg.Log.Level, cfg.Log.Format)

	db, err := postgres.Open(ctx, cfg.Postgres.DSN)
	if err != nil {
		return err
	}
	defer db.Close()

	for _, tenant := range cfg.Kafka.Tenants {
		if err := postgres.EnsureTenantSchema(ctx, db, tenant); err != nil {
			return fmt.Errorf("tenant %s: %w", tenant, err)
		}
		log.InfoContext(ctx, "tenant schema ensured", "tenant", tenant, "schema", postgres.SchemaName(tenant))
	}
	return nil
}
