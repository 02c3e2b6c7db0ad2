package outbox

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"staybeyond/internal/domain/shared/events"
)

type stubEvent struct {
	Booking string `json:"booking_id"`
	at      time.Time
}

func (e stubEvent) EventName() string     { return "booking.created" }
func (e stubEvent) OccurredAt() time.Time { return e.at }
func (e stubEvent) AggregateID() string   { return e.Booking }

type collectingOutbox struct {
	records []EventRecord
	addErr  error
}

func (o *collectingOutbox) Add(_ context.Context, rec EventRecord) error {
	if o.addErr != nil {
		return o.addErr
	}
	o.records = append(o.records, rec)
	return nil
}

func (o *collectingOutbox) Flush(context.Context) error { return nil }

func TestJSONEventEncoderStampsRecord(t *testing.T) {
	at := time.Date(2030, 5, 1, 12, 0, 0, 0, time.UTC)
	rec, err := JSONEventEncoder{}.Encode(stubEvent{Booking: "bkg-1", at: at})
	require.NoError(t, err)

	assert.NotEmpty(t, rec.ID)
	assert.Equal(t, "booking.created", rec.Name)
	assert.Equal(t, "bkg-1", rec.Aggregate)
	assert.Equal(t, at, rec.OccurredAt)
	assert.Equal(t, "booking.created", rec.Headers["event-name"])

	var payload map[string]any
	require.NoError(t, json.Unmarshal(rec.Payload, &payload))
	assert.Equal(t, "bkg-1", payload["booking_id"])
}

func TestRecordDomainEventsStagesAll(t *testing.T) {
	box := &collectingOutbox{}
	evs := []events.DomainEvent{
		stubEvent{Booking: "bkg-1", at: time.Now()},
		stubEvent{Booking: "bkg-1", at: time.Now()},
	}

	require.NoError(t, RecordDomainEvents(context.Background(), box, nil, evs))
	require.Len(t, box.records, 2)
	assert.NotEqual(t, box.records[0].ID, box.records[1].ID)
}

func TestRecordDomainEventsWrapsStageFailure(t *testing.T) {
	sink := errors.New("sink closed")
	box := &collectingOutbox{addErr: sink}

	err := RecordDomainEvents(context.Background(), box, nil, []events.DomainEvent{stubEvent{Booking: "bkg-1"}})
	assert.ErrorIs(t, err, sink)
	assert.Contains(t, err.Error(), "booking.created")
}

func TestRecordDomainEventsNilOutboxIsNoOp(t *testing.T) {
	assert.NoError(t, RecordDomainEvents(context.Background(), nil, nil, []events.DomainEvent{stubEvent{}}))
}
