package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func validConfig() *Config {
	return &Config{
		Server: ServerConfig{Port: 3001, ReadTimeoutSeconds: 15},
		Database: DatabaseConfig{
			Postgres: PostgresConfig{Host: "localhost", Port: 5432, User: "u", DBName: "d", SSLMode: "disable"},
		},
		Automation: AutomationConfig{PoolSize: 4},
		Pipeline:   PipelineConfig{UpdateWebhookURL: "https://hooks.example.com/pipeline-update"},
		Intake: IntakeConfig{
			WebhookURLs:    []string{"https://hooks.example.com/lead"},
			DefaultCountry: "ZW",
		},
		Dashboard: DashboardConfig{LeadLimit: 200, EventLimit: 50, PipelineLimit: 2000},
	}
}

func TestValidateStatic(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr string
	}{
		{
			name:   "valid",
			mutate: func(*Config) {},
		},
		{
			name:    "bad port",
			mutate:  func(c *Config) { c.Server.Port = 0 },
			wantErr: "server.port",
		},
		{
			name:    "missing postgres host",
			mutate:  func(c *Config) { c.Database.Postgres.Host = "" },
			wantErr: "database.postgres.host",
		},
		{
			name:    "kafka without topic",
			mutate:  func(c *Config) { c.Broker = BrokerConfig{Type: "kafka", Kafka: KafkaConfig{Brokers: []string{"k:9092"}}} },
			wantErr: "broker.kafka.events_topic",
		},
		{
			name:    "unknown broker",
			mutate:  func(c *Config) { c.Broker.Type = "rabbitmq" },
			wantErr: "broker.type",
		},
		{
			name:    "no intake targets",
			mutate:  func(c *Config) { c.Intake.WebhookURLs = nil },
			wantErr: "intake.webhook_urls",
		},
		{
			name:    "unsupported country",
			mutate:  func(c *Config) { c.Intake.DefaultCountry = "FR" },
			wantErr: "intake.default_country",
		},
		{
			name: "dedup enabled without ttl",
			mutate: func(c *Config) {
				c.Intake.Dedup = DedupConfig{Enabled: true, FieldsToHash: []string{"phone"}}
			},
			wantErr: "intake.dedup.ttl_seconds",
		},
		{
			name:    "automation filter must be boolean",
			mutate:  func(c *Config) { c.Automation.Filter = `entity_id` },
			wantErr: "automation.filter",
		},
		{
			name:    "dashboard limit too large",
			mutate:  func(c *Config) { c.Dashboard.PipelineLimit = 100000 },
			wantErr: "dashboard.pipeline_limit",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := validConfig()
			tt.mutate(cfg)
			err := ValidateStatic(cfg)
			if tt.wantErr == "" {
				assert.NoError(t, err)
				return
			}
			if assert.Error(t, err) {
				assert.Contains(t, err.Error(), tt.wantErr)
			}
		})
	}
}
