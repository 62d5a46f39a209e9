package models

import "time"

// EventEnvelope is the wire form of a backend event published to the broker.
type EventEnvelope struct {
	ID         string                 `json:"id"`
	Source     string                 `json:"source"`
	Timestamp  time.Time              `json:"timestamp"`
	EntityType string                 `json:"entity_type"`
	EntityID   string                 `json:"entity_id"`
	EventType  string                 `json:"event_type"`
	Payload    map[string]interface{} `json:"payload"`
	Metadata   Metadata               `json:"metadata"`
}

type Metadata struct {
	TraceID   string `json:"trace_id,omitempty"`
	RequestID string `json:"request_id,omitempty"`
}
