package constants

import "time"

const (
	ServiceName = "nexusq"
	DefaultPort = 3001
)

const (
	KafkaBatchTimeout = 10 * time.Millisecond
	KafkaWriteTimeout = 10 * time.Second
)

const (
	DefaultHTTPTimeout = 10 * time.Second
)

const (
	CacheKeyPrefixIntake = "intake:"
)

const (
	ShutdownTimeout = 5 * time.Second

	SnapshotReloadTimeout = 30 * time.Second
)

const (
	DefaultLimit     = 100
	MaxLimit         = 1000
	MaxSnapshotLimit = 5000
)

const (
	DefaultLeadLimit     = 200
	DefaultEventLimit    = 50
	DefaultPipelineLimit = 2000
	RecentActivityLimit  = 6
	TopActivityKinds     = 3
	TrendDays            = 7
)

const (
	DefaultTTLSeconds = 3600
)

const (
	HTTPStatusOKMin = 200
	HTTPStatusOKMax = 300
)

const (
	FallbackAllow = "allow"
	FallbackDeny  = "deny"
)

const (
	ChangeChannel = "nexusq_changes"

	TableLeads      = "leads"
	TableLeadEvents = "lead_events"
	TablePipeline   = "pipeline"
	TableEvents     = "events"
)

const (
	DefaultAutomationPoolSize = 8
	DefaultPipelineUpdateURL  = "https://n8n-k7j4.onrender.com/webhook/pipeline-update"
)

var DefaultIntakeWebhookURLs = []string{
	"https://n8n-k7j4.onrender.com/webhook-test/lead-webhook",
	"https://n8n-k7j4.onrender.com/webhook/lead-webhook",
}

const (
	IntakeSource    = "nexusq-website"
	DefaultUrgency  = "standard"
	DefaultCountry  = "ZW"
	ReferencePrefix = "QX"
)

// CountryDialCodes maps ISO country codes to international dialling prefixes.
var CountryDialCodes = map[string]string{
	"ZW": "263",
	"ZA": "27",
	"GB": "44",
	"US": "1",
}

const (
	EntityTypeLead       = "lead"
	EventTypeLeadCreated = "lead_created"
)
