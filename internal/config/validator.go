package config

import (
	"fmt"
	"net/url"
	"strings"

	"nexusq/internal/constants"
	"nexusq/pkg/cel"
)

type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("validation error for field '%s': %s", e.Field, e.Message)
}

func ValidateStatic(cfg *Config) error {
	var errors []error

	if err := validateServer(cfg.Server); err != nil {
		errors = append(errors, err)
	}

	if err := validateBroker(cfg.Broker); err != nil {
		errors = append(errors, err)
	}

	if err := validateDatabase(cfg.Database); err != nil {
		errors = append(errors, err)
	}

	if err := validateAutomation(cfg.Automation); err != nil {
		errors = append(errors, err)
	}

	if err := validatePipeline(cfg.Pipeline); err != nil {
		errors = append(errors, err)
	}

	if err := validateIntake(cfg.Intake); err != nil {
		errors = append(errors, err)
	}

	if err := validateDashboard(cfg.Dashboard); err != nil {
		errors = append(errors, err)
	}

	if len(errors) > 0 {
		return fmt.Errorf("configuration validation failed: %v", errors)
	}

	return nil
}

func validateServer(cfg ServerConfig) error {
	if cfg.Port < 1 || cfg.Port > 65535 {
		return &ValidationError{
			Field:   "server.port",
			Message: fmt.Sprintf("port must be between 1 and 65535, got %d", cfg.Port),
		}
	}

	if cfg.ReadTimeoutSeconds <= 0 {
		return &ValidationError{
			Field:   "server.read_timeout_seconds",
			Message: "read timeout must be positive",
		}
	}

	// zero disables the write timeout, which the event stream relies on
	if cfg.WriteTimeoutSeconds < 0 {
		return &ValidationError{
			Field:   "server.write_timeout_seconds",
			Message: "write timeout must be non-negative",
		}
	}

	return nil
}

func validateBroker(cfg BrokerConfig) error {
	switch cfg.Type {
	case "":
		return nil
	case "kafka":
		return validateKafka(cfg.Kafka)
	default:
		return &ValidationError{
			Field:   "broker.type",
			Message: fmt.Sprintf("unknown broker type: %s (supported: kafka)", cfg.Type),
		}
	}
}

func validateKafka(cfg KafkaConfig) error {
	if len(cfg.Brokers) == 0 {
		return &ValidationError{
			Field:   "broker.kafka.brokers",
			Message: "at least one Kafka broker is required",
		}
	}

	for i, broker := range cfg.Brokers {
		if broker == "" {
			return &ValidationError{
				Field:   fmt.Sprintf("broker.kafka.brokers[%d]", i),
				Message: "broker address cannot be empty",
			}
		}
	}

	if cfg.EventsTopic == "" {
		return &ValidationError{
			Field:   "broker.kafka.events_topic",
			Message: "events topic is required when kafka is enabled",
		}
	}

	return nil
}

func validateDatabase(cfg DatabaseConfig) error {
	if err := validatePostgres(cfg.Postgres); err != nil {
		return err
	}

	if cfg.Redis.Host != "" || cfg.Redis.Port > 0 {
		if err := validateRedis(cfg.Redis); err != nil {
			return err
		}
	}

	return nil
}

func validatePostgres(cfg PostgresConfig) error {
	if cfg.Host == "" {
		return &ValidationError{
			Field:   "database.postgres.host",
			Message: "PostgreSQL host is required",
		}
	}

	if cfg.Port < 1 || cfg.Port > 65535 {
		return &ValidationError{
			Field:   "database.postgres.port",
			Message: fmt.Sprintf("port must be between 1 and 65535, got %d", cfg.Port),
		}
	}

	if cfg.User == "" {
		return &ValidationError{
			Field:   "database.postgres.user",
			Message: "PostgreSQL user is required",
		}
	}

	if cfg.DBName == "" {
		return &ValidationError{
			Field:   "database.postgres.dbname",
			Message: "PostgreSQL database name is required",
		}
	}

	validSSLModes := map[string]bool{
		"disable": true, "allow": true, "prefer": true,
		"require": true, "verify-ca": true, "verify-full": true,
	}
	if cfg.SSLMode != "" && !validSSLModes[strings.ToLower(cfg.SSLMode)] {
		return &ValidationError{
			Field:   "database.postgres.sslmode",
			Message: fmt.Sprintf("invalid SSL mode: %s (valid: disable, allow, prefer, require, verify-ca, verify-full)", cfg.SSLMode),
		}
	}

	return nil
}

func validateRedis(cfg RedisConfig) error {
	if cfg.Host == "" {
		return &ValidationError{
			Field:   "database.redis.host",
			Message: "Redis host is required",
		}
	}

	if cfg.Port < 1 || cfg.Port > 65535 {
		return &ValidationError{
			Field:   "database.redis.port",
			Message: fmt.Sprintf("port must be between 1 and 65535, got %d", cfg.Port),
		}
	}

	return nil
}

func validateAutomation(cfg AutomationConfig) error {
	if cfg.WebhookURL != "" {
		if err := validateURL("automation.webhook_url", cfg.WebhookURL); err != nil {
			return err
		}
	}

	if cfg.PoolSize < 1 {
		return &ValidationError{
			Field:   "automation.pool_size",
			Message: "pool size must be positive",
		}
	}

	if cfg.Filter != "" {
		eval, err := cel.NewEvaluator()
		if err != nil {
			return err
		}
		if err := eval.ValidateFilterExpression(cfg.Filter); err != nil {
			return &ValidationError{
				Field:   "automation.filter",
				Message: err.Error(),
			}
		}
	}

	return nil
}

func validatePipeline(cfg PipelineConfig) error {
	if cfg.UpdateWebhookURL == "" {
		return &ValidationError{
			Field:   "pipeline.update_webhook_url",
			Message: "pipeline update webhook URL is required",
		}
	}
	return validateURL("pipeline.update_webhook_url", cfg.UpdateWebhookURL)
}

func validateIntake(cfg IntakeConfig) error {
	if len(cfg.WebhookURLs) == 0 {
		return &ValidationError{
			Field:   "intake.webhook_urls",
			Message: "at least one intake webhook URL is required",
		}
	}

	for i, u := range cfg.WebhookURLs {
		if err := validateURL(fmt.Sprintf("intake.webhook_urls[%d]", i), u); err != nil {
			return err
		}
	}

	if _, ok := constants.CountryDialCodes[strings.ToUpper(cfg.DefaultCountry)]; !ok {
		return &ValidationError{
			Field:   "intake.default_country",
			Message: fmt.Sprintf("unsupported country: %s", cfg.DefaultCountry),
		}
	}

	return validateDedup(cfg.Dedup)
}

func validateDedup(cfg DedupConfig) error {
	if !cfg.Enabled {
		return nil
	}

	validAlgorithms := map[string]bool{
		"md5": true, "sha256": true,
	}
	if cfg.HashAlgorithm != "" && !validAlgorithms[strings.ToLower(cfg.HashAlgorithm)] {
		return &ValidationError{
			Field:   "intake.dedup.hash_algorithm",
			Message: fmt.Sprintf("invalid hash algorithm: %s (valid: md5, sha256)", cfg.HashAlgorithm),
		}
	}

	if cfg.TTLSeconds <= 0 {
		return &ValidationError{
			Field:   "intake.dedup.ttl_seconds",
			Message: "TTL must be positive",
		}
	}

	validOnError := map[string]bool{
		constants.FallbackAllow: true, constants.FallbackDeny: true,
	}
	if cfg.OnRedisError != "" && !validOnError[strings.ToLower(cfg.OnRedisError)] {
		return &ValidationError{
			Field:   "intake.dedup.on_redis_error",
			Message: fmt.Sprintf("invalid on_redis_error value: %s (valid: allow, deny)", cfg.OnRedisError),
		}
	}

	if len(cfg.FieldsToHash) == 0 {
		return &ValidationError{
			Field:   "intake.dedup.fields_to_hash",
			Message: "at least one field is required",
		}
	}

	return nil
}

func validateDashboard(cfg DashboardConfig) error {
	limits := map[string]int{
		"dashboard.lead_limit":     cfg.LeadLimit,
		"dashboard.event_limit":    cfg.EventLimit,
		"dashboard.pipeline_limit": cfg.PipelineLimit,
	}
	for field, v := range limits {
		if v < 1 || v > constants.MaxSnapshotLimit {
			return &ValidationError{
				Field:   field,
				Message: fmt.Sprintf("limit must be between 1 and %d, got %d", constants.MaxSnapshotLimit, v),
			}
		}
	}
	return nil
}

func validateURL(field, raw string) error {
	u, err := url.Parse(raw)
	if err != nil || u.Host == "" || (u.Scheme != "http" && u.Scheme != "https") {
		return &ValidationError{
			Field:   field,
			Message: fmt.Sprintf("invalid URL: %q", raw),
		}
	}
	return nil
}
