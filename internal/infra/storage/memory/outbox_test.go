package memory

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	appoutbox "staybeyond/internal/app/outbox"
)

func TestOutboxClaimInOrder(t *testing.T) {
	store := NewOutboxStore()
	ctx := context.Background()

	for _, id := range []string{"ev-1", "ev-2", "ev-3"} {
		require.NoError(t, store.Add(ctx, appoutbox.EventRecord{
			ID:         id,
			Name:       "booking.created",
			Payload:    []byte(`{}`),
			OccurredAt: time.Now(),
			Aggregate:  "bk-1",
		}))
	}

	first, err := store.Claim(ctx, "worker-1")
	require.NoError(t, err)
	require.NotNil(t, first)
	assert.Equal(t, "ev-1", first.ID)
	assert.Equal(t, "worker-1", first.ClaimedBy)

	second, err := store.Claim(ctx, "worker-1")
	require.NoError(t, err)
	require.NotNil(t, second)
	assert.Equal(t, "ev-2", second.ID)
}

func TestOutboxClaimSkipsSentAndClaimed(t *testing.T) {
	store := NewOutboxStore()
	ctx := context.Background()

	require.NoError(t, store.Add(ctx, appoutbox.EventRecord{ID: "ev-1", Name: "booking.created", Payload: []byte(`{}`)}))

	doc, err := store.Claim(ctx, "worker-1")
	require.NoError(t, err)
	require.NotNil(t, doc)

	// Claimed but not yet resolved: nothing else to hand out.
	doc, err = store.Claim(ctx, "worker-2")
	require.NoError(t, err)
	assert.Nil(t, doc)

	require.NoError(t, store.MarkSent(ctx, "ev-1"))
	doc, err = store.Claim(ctx, "worker-1")
	require.NoError(t, err)
	assert.Nil(t, doc)
}

func TestOutboxFailedEntryWaitsForBackoff(t *testing.T) {
	store := NewOutboxStore()
	ctx := context.Background()

	require.NoError(t, store.Add(ctx, appoutbox.EventRecord{ID: "ev-1", Name: "booking.created", Payload: []byte(`{}`)}))

	doc, err := store.Claim(ctx, "worker-1")
	require.NoError(t, err)
	require.NotNil(t, doc)

	// Failure with a future retry time keeps it out of the claim loop.
	require.NoError(t, store.MarkFailed(ctx, "ev-1", time.Now().Add(time.Hour), "broker down"))
	doc, err = store.Claim(ctx, "worker-1")
	require.NoError(t, err)
	assert.Nil(t, doc)

	// A past retry time makes it due again.
	require.NoError(t, store.MarkFailed(ctx, "ev-1", time.Now().Add(-time.Second), "broker down"))
	doc, err = store.Claim(ctx, "worker-1")
	require.NoError(t, err)
	require.NotNil(t, doc)
	assert.Equal(t, "ev-1", doc.ID)
	assert.Equal(t, "broker down", doc.LastError)
}
