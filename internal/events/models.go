package events

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"time"
)

// Payload is a JSON object stored in a jsonb column.
type Payload map[string]interface{}

func (p Payload) Value() (driver.Value, error) {
	if p == nil {
		return []byte("{}"), nil
	}
	return json.Marshal(p)
}

// Scan accepts any JSON document. Non-object documents are kept under "value".
func (p *Payload) Scan(src interface{}) error {
	var raw []byte
	switch v := src.(type) {
	case nil:
		*p = Payload{}
		return nil
	case []byte:
		raw = v
	case string:
		raw = []byte(v)
	default:
		return fmt.Errorf("unsupported payload type %T", src)
	}

	var decoded interface{}
	if err := json.Unmarshal(raw, &decoded); err != nil {
		return fmt.Errorf("failed to decode payload: %w", err)
	}

	switch d := decoded.(type) {
	case map[string]interface{}:
		*p = Payload(d)
	case nil:
		*p = Payload{}
	default:
		*p = Payload{"value": d}
	}
	return nil
}

// Event is the durable record of a backend action. Rows are never updated or deleted.
type Event struct {
	ID         string    `db:"id" json:"id"`
	EntityType string    `db:"entity_type" json:"entity_type"`
	EntityID   string    `db:"entity_id" json:"entity_id"`
	EventType  string    `db:"event_type" json:"event_type"`
	Payload    Payload   `db:"payload" json:"payload"`
	CreatedAt  time.Time `db:"created_at" json:"created_at"`
}

// LeadEvent is a lead lifecycle entry written by external workflows.
type LeadEvent struct {
	ID          string    `db:"id" json:"id"`
	ClientID    *string   `db:"client_id" json:"client_id"`
	LeadID      *string   `db:"lead_id" json:"lead_id"`
	EventType   string    `db:"event_type" json:"event_type"`
	PayloadJSON Payload   `db:"payload_json" json:"payload_json"`
	CreatedAt   time.Time `db:"created_at" json:"created_at"`
}

type EmitRequest struct {
	EntityType string
	EntityID   string
	EventType  string
	Payload    map[string]interface{}
}

type ListFilter struct {
	EntityType string `form:"entity_type"`
	EntityID   string `form:"entity_id"`
	EventType  string `form:"event_type"`
	Limit      int    `form:"limit"`
}
