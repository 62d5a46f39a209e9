package events

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newMockDB(t *testing.T) (*sqlx.DB, sqlmock.Sqlmock) {
	t.Helper()
	mockDB, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { mockDB.Close() })
	return sqlx.NewDb(mockDB, "sqlmock"), mock
}

var eventCols = []string{"id", "entity_type", "entity_id", "event_type", "payload", "created_at"}

func TestRepository_Insert(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewRepository(db)
	now := time.Now().UTC()

	mock.ExpectQuery(`INSERT INTO events`).
		WithArgs("lead", "lead-1", "lead_created", sqlmock.AnyArg()).
		WillReturnRows(sqlmock.NewRows(eventCols).
			AddRow("evt-1", "lead", "lead-1", "lead_created", []byte(`{"source":"web"}`), now))

	ev, err := repo.Insert(context.Background(), db, EmitRequest{
		EntityType: "lead",
		EntityID:   "lead-1",
		EventType:  "lead_created",
		Payload:    map[string]interface{}{"source": "web"},
	})
	require.NoError(t, err)
	assert.Equal(t, "evt-1", ev.ID)
	assert.Equal(t, "web", ev.Payload["source"])
	assert.Equal(t, now, ev.CreatedAt)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRepository_InsertError(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewRepository(db)

	mock.ExpectQuery(`INSERT INTO events`).WillReturnError(errors.New("connection reset"))

	_, err := repo.Insert(context.Background(), db, EmitRequest{EntityType: "lead", EventType: "lead_created"})
	assert.ErrorContains(t, err, "connection reset")
}

func TestRepository_ListWithFilter(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewRepository(db)

	mock.ExpectQuery(`SELECT .+ FROM events WHERE entity_id = \$1 ORDER BY created_at DESC LIMIT \$2`).
		WithArgs("lead-1", 10).
		WillReturnRows(sqlmock.NewRows(eventCols).
			AddRow("evt-2", "lead", "lead-1", "lead_created", []byte(`{}`), time.Now()).
			AddRow("evt-1", "lead", "lead-1", "lead_created", nil, time.Now()))

	rows, err := repo.List(context.Background(), ListFilter{EntityID: "lead-1", Limit: 10})
	require.NoError(t, err)
	require.Len(t, rows, 2)
	assert.Equal(t, "evt-2", rows[0].ID)
	assert.NotNil(t, rows[1].Payload)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRepository_ListLeadEvents(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewRepository(db)

	mock.ExpectQuery(`SELECT .+ FROM lead_events ORDER BY created_at DESC LIMIT \$1`).
		WithArgs(50).
		WillReturnRows(sqlmock.NewRows([]string{"id", "client_id", "lead_id", "event_type", "payload_json", "created_at"}).
			AddRow("le-1", nil, "lead-1", "status_changed", []byte(`{"status":"Quoted"}`), time.Now()))

	rows, err := repo.ListLeadEvents(context.Background(), 50)
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Nil(t, rows[0].ClientID)
	assert.Equal(t, "lead-1", *rows[0].LeadID)
	assert.Equal(t, "Quoted", rows[0].PayloadJSON["status"])
}

func TestPayloadScan(t *testing.T) {
	var p Payload
	require.NoError(t, p.Scan([]byte(`[1,2]`)))
	assert.Equal(t, []interface{}{float64(1), float64(2)}, p["value"])

	require.NoError(t, p.Scan(nil))
	assert.Empty(t, p)

	assert.Error(t, p.Scan(42))
	assert.Error(t, p.Scan([]byte(`{`)))

	v, err := Payload(nil).Value()
	require.NoError(t, err)
	assert.Equal(t, []byte("{}"), v)
}
