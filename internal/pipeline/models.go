package pipeline

import (
	"encoding/json"
	"fmt"
	"time"
)

type Stage string

const (
	StageNew        Stage = "new"
	StageQualifying Stage = "qualifying"
	StageQuoted     Stage = "quoted"
	StageBooked     Stage = "booked"
)

// Stages is the board column order.
var Stages = []Stage{StageNew, StageQualifying, StageQuoted, StageBooked}

var stageTitles = map[Stage]string{
	StageNew:        "New",
	StageQualifying: "Qualifying",
	StageQuoted:     "Quoted",
	StageBooked:     "Booked",
}

func (s Stage) Title() string {
	return stageTitles[s]
}

type Row struct {
	ID          string     `db:"id" json:"id"`
	ClientID    *string    `db:"client_id" json:"client_id"`
	LeadID      *string    `db:"lead_id" json:"lead_id"`
	Stage       *string    `db:"stage" json:"stage"`
	Value       *float64   `db:"value" json:"value"`
	Probability *float64   `db:"probability" json:"probability"`
	UpdatedAt   *time.Time `db:"updated_at" json:"updated_at"`
}

type Card struct {
	ID          string    `json:"id"`
	Name        string    `json:"name"`
	Company     string    `json:"company"`
	Value       float64   `json:"value"`
	Stage       Stage     `json:"stage"`
	Probability *float64  `json:"probability"`
	CreatedAt   time.Time `json:"created_at"`
}

type Column struct {
	Stage Stage  `json:"stage"`
	Title string `json:"title"`
	Count int    `json:"count"`
	Cards []Card `json:"cards"`
}

type StageCount struct {
	Stage string `json:"stage"`
	Count int    `json:"count"`
}

type StageRevenue struct {
	Stage   string  `json:"stage"`
	Revenue float64 `json:"revenue"`
}

type FlowPoint struct {
	Stage string `json:"stage"`
	Value int    `json:"value"`
}

type Board struct {
	Columns      []Column       `json:"columns"`
	Distribution []StageCount   `json:"distribution"`
	Revenue      []StageRevenue `json:"revenue"`
	Flow         []FlowPoint    `json:"flow"`
}

// Money accepts a JSON number or a formatted money string such as "$1,200".
type Money float64

func (m *Money) UnmarshalJSON(data []byte) error {
	var v interface{}
	if err := json.Unmarshal(data, &v); err != nil {
		return err
	}

	switch val := v.(type) {
	case float64:
		*m = Money(val)
	case string:
		*m = Money(ParseMoney(val))
	default:
		return fmt.Errorf("value must be a number or string, got %s", string(data))
	}
	return nil
}

// StageUpdateRequest is the body of POST /api/v1/pipeline/stage.
type StageUpdateRequest struct {
	LeadID string `json:"lead_id" validate:"required"`
	Stage  string `json:"stage" validate:"required,oneof=new qualifying quoted booked"`
	Value  *Money `json:"value"`
}

// StageUpdate is posted to the pipeline update workflow. Status mirrors Stage for
// workflows that still read the older key.
type StageUpdate struct {
	LeadID string   `json:"lead_id"`
	Stage  Stage    `json:"stage"`
	Status Stage    `json:"status"`
	Value  *float64 `json:"value"`
}
