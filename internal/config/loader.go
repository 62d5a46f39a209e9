package config

import (
	"fmt"
	"strings"

	"github.com/spf13/viper"

	"nexusq/internal/constants"
)

// LoadConfig reads configFile (optional) and layers environment overrides on top.
func LoadConfig(configFile string) (*Config, error) {
	viper.Reset()

	viper.SetConfigType("yaml")

	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv()

	setDefaults()
	bindEnvVariables()

	if configFile != "" {
		viper.SetConfigFile(configFile)
		if err := viper.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("failed to read config file %s: %w", configFile, err)
		}
	}

	var cfg Config
	if err := viper.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if err := applyEnvOverrides(&cfg); err != nil {
		return nil, fmt.Errorf("failed to apply environment overrides: %w", err)
	}

	if err := ValidateStatic(&cfg); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	return &cfg, nil
}

func setDefaults() {
	viper.SetDefault("server.port", constants.DefaultPort)
	viper.SetDefault("server.read_timeout_seconds", 15)
	viper.SetDefault("server.write_timeout_seconds", 0)

	viper.SetDefault("database.postgres.port", 5432)
	viper.SetDefault("database.postgres.sslmode", "disable")
	viper.SetDefault("database.postgres.max_open_conns", 10)
	viper.SetDefault("database.postgres.max_idle_conns", 5)
	viper.SetDefault("database.run_migrations", true)

	viper.SetDefault("logging.level", "info")
	viper.SetDefault("logging.format", "json")

	viper.SetDefault("automation.pool_size", constants.DefaultAutomationPoolSize)
	viper.SetDefault("automation.timeout_seconds", 10)

	viper.SetDefault("pipeline.update_webhook_url", constants.DefaultPipelineUpdateURL)
	viper.SetDefault("pipeline.timeout_seconds", 10)

	viper.SetDefault("intake.webhook_urls", constants.DefaultIntakeWebhookURLs)
	viper.SetDefault("intake.default_country", constants.DefaultCountry)
	viper.SetDefault("intake.source", constants.IntakeSource)
	viper.SetDefault("intake.timeout_seconds", 10)
	viper.SetDefault("intake.dedup.enabled", false)
	viper.SetDefault("intake.dedup.hash_algorithm", "sha256")
	viper.SetDefault("intake.dedup.ttl_seconds", constants.DefaultTTLSeconds)
	viper.SetDefault("intake.dedup.on_redis_error", constants.FallbackAllow)
	viper.SetDefault("intake.dedup.fields_to_hash", []string{"service", "phone", "address"})

	viper.SetDefault("dashboard.lead_limit", constants.DefaultLeadLimit)
	viper.SetDefault("dashboard.event_limit", constants.DefaultEventLimit)
	viper.SetDefault("dashboard.pipeline_limit", constants.DefaultPipelineLimit)

	viper.SetDefault("realtime.enabled", true)
	viper.SetDefault("realtime.channel", constants.ChangeChannel)
	viper.SetDefault("realtime.min_reconnect_interval", "1s")
	viper.SetDefault("realtime.max_reconnect_interval", "1m")
	viper.SetDefault("realtime.subscriber_buffer", 16)

	viper.SetDefault("rate_limit.rps", 10)
	viper.SetDefault("rate_limit.burst", 20)
	viper.SetDefault("rate_limit.cleanup_interval", 300)
	viper.SetDefault("rate_limit.max_age", 600)

	viper.SetDefault("circuit_breaker.enabled", true)
	viper.SetDefault("circuit_breaker.max_requests", 1)
	viper.SetDefault("circuit_breaker.interval", "60s")
	viper.SetDefault("circuit_breaker.timeout", "30s")
	viper.SetDefault("circuit_breaker.failure_ratio", 0.5)
	viper.SetDefault("circuit_breaker.min_requests", 5)
}

func bindEnvVariables() {
	viper.BindEnv("broker.type", "BROKER_TYPE")
	viper.BindEnv("broker.kafka.brokers", "BROKER_KAFKA_BROKERS")
	viper.BindEnv("broker.kafka.events_topic", "BROKER_KAFKA_EVENTS_TOPIC")

	viper.BindEnv("database.postgres.host", "DATABASE_POSTGRES_HOST")
	viper.BindEnv("database.postgres.port", "DATABASE_POSTGRES_PORT")
	viper.BindEnv("database.postgres.user", "DATABASE_POSTGRES_USER")
	viper.BindEnv("database.postgres.password", "DATABASE_POSTGRES_PASSWORD")
	viper.BindEnv("database.postgres.dbname", "DATABASE_POSTGRES_DBNAME")
	viper.BindEnv("database.postgres.sslmode", "DATABASE_POSTGRES_SSLMODE")
	viper.BindEnv("database.run_migrations", "DATABASE_RUN_MIGRATIONS")

	viper.BindEnv("database.redis.host", "DATABASE_REDIS_HOST")
	viper.BindEnv("database.redis.port", "DATABASE_REDIS_PORT")
	viper.BindEnv("database.redis.password", "DATABASE_REDIS_PASSWORD")
	viper.BindEnv("database.redis.db", "DATABASE_REDIS_DB")

	viper.BindEnv("server.port", "SERVER_PORT", "PORT")
	viper.BindEnv("server.read_timeout_seconds", "SERVER_READ_TIMEOUT_SECONDS")
	viper.BindEnv("server.write_timeout_seconds", "SERVER_WRITE_TIMEOUT_SECONDS")

	viper.BindEnv("automation.webhook_url", "AUTOMATION_WEBHOOK_URL", "N8N_WEBHOOK_URL")
	viper.BindEnv("automation.filter", "AUTOMATION_FILTER")
	viper.BindEnv("pipeline.update_webhook_url", "PIPELINE_UPDATE_WEBHOOK_URL")
	viper.BindEnv("intake.default_country", "INTAKE_DEFAULT_COUNTRY")
	viper.BindEnv("intake.dedup.enabled", "INTAKE_DEDUP_ENABLED")

	viper.BindEnv("logging.level", "LOGGING_LEVEL")
	viper.BindEnv("logging.format", "LOGGING_FORMAT")

	viper.BindEnv("tracing.otlp.endpoint", "TRACING_OTLP_ENDPOINT")
	viper.BindEnv("tracing.otlp.insecure", "TRACING_OTLP_INSECURE")
	viper.BindEnv("tracing.enabled", "TRACING_ENABLED")
	viper.BindEnv("tracing.service_name", "TRACING_SERVICE_NAME")
}

func applyEnvOverrides(cfg *Config) error {
	if brokersEnv := viper.GetString("BROKER_KAFKA_BROKERS"); brokersEnv != "" {
		cfg.Broker.Kafka.Brokers = splitList(brokersEnv)
	}

	if urlsEnv := viper.GetString("INTAKE_WEBHOOK_URLS"); urlsEnv != "" {
		cfg.Intake.WebhookURLs = splitList(urlsEnv)
	}

	if otlpEndpoint := viper.GetString("TRACING_OTLP_ENDPOINT"); otlpEndpoint != "" {
		cfg.Tracing.OTLP.Endpoint = otlpEndpoint
	}

	return nil
}

func splitList(raw string) []string {
	parts := strings.Split(raw, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
