package main

import (
	"errors"
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"authlinks/internal/platform/config"
)

var cfgFile string

// main builds the command tree. serve runs the pipeline; topics and schema
// prepare the configured tenants ahead of the first event.
func main() {
	rootCmd := &cobra.Command{
		Use:          "authlinks",
		Short:        "Authority change detection and link update propagation",
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return initConfig()
		},
	}

	setupFlags(rootCmd)
	rootCmd.AddCommand(serveCommand(), topicsCommand(), schemaCommand())

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func setupFlags(cmd *cobra.Command) {
	config.ApplyDefaults(viper.GetViper())
	defaults := config.NewViper()
	flags := cmd.PersistentFlags()
	flags.StringVar(&cfgFile, "config", "", "Path to configuration file")
	flags.String("http-address", defaults.GetString("http.address"), "Ops HTTP listen address")
	flags.String("log-level", defaults.GetString("log.level"), "Log level (debug, info, warn, error)")
	flags.String("log-format", defaults.GetString("log.format"), "Log format (text, json)")
	flags.StringSlice("kafka-brokers", defaults.GetStringSlice("kafka.brokers"), "Kafka seed brokers")
	flags.String("kafka-env", defaults.GetString("kafka.env"), "Environment prefix of topic names")
	flags.StringSlice("tenants", nil, "Tenants prepared by the topics and schema commands")
	flags.String("postgres-dsn", "", "Postgres connection string")
	flags.String("redis-url", "", "Redis URL; in-memory caches when empty")
	flags.String("okapi-url", "", "Gateway URL for peer module calls")

	bindFlag(cmd, "http.address", "http-address")
	bindFlag(cmd, "log.level", "log-level")
	bindFlag(cmd, "log.format", "log-format")
	bindFlag(cmd, "kafka.brokers", "kafka-brokers")
	bindFlag(cmd, "kafka.env", "kafka-env")
	bindFlag(cmd, "kafka.tenants", "tenants")
	bindFlag(cmd, "postgres.dsn", "postgres-dsn")
	bindFlag(cmd, "redis.url", "redis-url")
	bindFlag(cmd, "okapi.url", "okapi-url")
}

func bindFlag(cmd *cobra.Command, key, flag string) {
	if err := viper.BindPFlag(key, cmd.PersistentFlags().Lookup(flag)); err != nil {
		panic(err)
	}
}

func initConfig() error {
	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	}

	if err := viper.ReadInConfig(); err != nil {
		var configNotFound viper.ConfigFileNotFoundError
		if cfgFile != "" || !errors.As(err, &configNotFound) {
			return err
		}
	}
	return nil
}
