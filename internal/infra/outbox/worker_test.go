package outbox

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type published struct {
	topic   string
	key     string
	payload []byte
	headers map[string]string
}

type fakeProducer struct {
	sent []published
	err  error
}

func (p *fakeProducer) Publish(ctx context.Context, topic, key string, payload []byte, headers map[string]string) error {
	if p.err != nil {
		return p.err
	}
	p.sent = append(p.sent, published{topic: topic, key: key, payload: payload, headers: headers})
	return nil
}

type fakeStore struct {
	docs   []*EventDocument
	sent   []string
	failed []string
}

func (s *fakeStore) Claim(ctx context.Context, workerID string) (*EventDocument, error) {
	for _, doc := range s.docs {
		if doc.State == "NEW" || doc.State == "FAILED" {
			doc.State = "CLAIMED"
			doc.ClaimedBy = workerID
			copyDoc := *doc
			return &copyDoc, nil
		}
	}
	return nil, nil
}

func (s *fakeStore) MarkSent(ctx context.Context, id string) error {
	s.sent = append(s.sent, id)
	for _, doc := range s.docs {
		if doc.ID == id {
			doc.State = "SENT"
		}
	}
	return nil
}

func (s *fakeStore) MarkFailed(ctx context.Context, id string, next time.Time, errMsg string) error {
	s.failed = append(s.failed, id)
	for _, doc := range s.docs {
		if doc.ID == id {
			doc.State = "FAILED"
			doc.LastError = errMsg
		}
	}
	return nil
}

func newDoc(name, aggregate string) *EventDocument {
	return &EventDocument{
		ID:         name + "/" + aggregate,
		Name:       name,
		Payload:    []byte(`{"booking_id":"bk-1"}`),
		OccurredAt: time.Date(2026, time.March, 10, 12, 0, 0, 0, time.UTC),
		Aggregate:  aggregate,
		State:      "NEW",
	}
}

func TestWorkerPublishesCloudEvent(t *testing.T) {
	store := &fakeStore{docs: []*EventDocument{newDoc("booking.created", "bk-1")}}
	producer := &fakeProducer{}
	w := &Worker{Store: store, Producer: producer, ID: "worker-1"}

	require.NoError(t, w.processOnce(context.Background()))
	require.Len(t, producer.sent, 1)

	msg := producer.sent[0]
	assert.Equal(t, "booking.events.v1", msg.topic)
	assert.Equal(t, "bk-1", msg.key)
	assert.Equal(t, "application/cloudevents+json", msg.headers["content-type"])

	var envelope map[string]any
	require.NoError(t, json.Unmarshal(msg.payload, &envelope))
	assert.Equal(t, "1.0", envelope["specversion"])
	assert.Equal(t, "booking.created.v1", envelope["type"])
	assert.Equal(t, "app://staybeyond", envelope["source"])
	data, ok := envelope["data"].(map[string]any)
	require.True(t, ok)
	assert.Equal(t, "bk-1", data["booking_id"])

	assert.Equal(t, []string{"booking.created/bk-1"}, store.sent)

	// The entry is now sent; nothing further to claim.
	require.NoError(t, w.processOnce(context.Background()))
	assert.Len(t, producer.sent, 1)
}

func TestWorkerTopicPrefix(t *testing.T) {
	store := &fakeStore{docs: []*EventDocument{newDoc("transport.booked", "tb-1")}}
	producer := &fakeProducer{}
	w := &Worker{Store: store, Producer: producer, ID: "worker-1", TopicPrefix: "staging."}

	require.NoError(t, w.processOnce(context.Background()))
	require.Len(t, producer.sent, 1)
	assert.Equal(t, "staging.transport.events.v1", producer.sent[0].topic)
}

func TestWorkerRetriesAfterPublishFailure(t *testing.T) {
	store := &fakeStore{docs: []*EventDocument{newDoc("booking.created", "bk-1")}}
	producer := &fakeProducer{err: errors.New("broker down")}
	w := &Worker{Store: store, Producer: producer, ID: "worker-1", Backoff: []time.Duration{0}}

	// Publish fails; the entry is marked failed, not lost, and the loop
	// keeps running.
	require.NoError(t, w.processOnce(context.Background()))
	assert.Empty(t, producer.sent)
	assert.Equal(t, []string{"booking.created/bk-1"}, store.failed)

	producer.err = nil
	require.NoError(t, w.processOnce(context.Background()))
	assert.Len(t, producer.sent, 1)
}

func TestWorkerMalformedPayloadMarkedFailed(t *testing.T) {
	doc := newDoc("booking.created", "bk-1")
	doc.Payload = []byte("not json")
	store := &fakeStore{docs: []*EventDocument{doc}}
	producer := &fakeProducer{}
	w := &Worker{Store: store, Producer: producer, ID: "worker-1"}

	require.NoError(t, w.processOnce(context.Background()))
	assert.Empty(t, producer.sent)
	require.Len(t, store.failed, 1)
	assert.NotEmpty(t, doc.LastError)
}

func TestWorkerRunRequiresDependencies(t *testing.T) {
	w := &Worker{}
	assert.ErrorIs(t, w.Run(context.Background()), ErrWorkerNotConfigured)
}
