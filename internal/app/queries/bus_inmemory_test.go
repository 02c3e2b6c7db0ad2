package queries

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stayCountQuery struct{}

func (stayCountQuery) Key() string { return "catalog.stay_count" }

type otherQuery struct{}

func (otherQuery) Key() string { return "catalog.other" }

func TestAskRoutesByKey(t *testing.T) {
	bus := NewInMemoryBus()
	RegisterHandler(bus, stayCountQuery{}.Key(), HandlerFunc[stayCountQuery, int](
		func(context.Context, stayCountQuery) (int, error) { return 6, nil }))

	got, err := Ask[stayCountQuery, int](context.Background(), bus, stayCountQuery{})
	require.NoError(t, err)
	assert.Equal(t, 6, got)
}

func TestAskUnknownKeyNamesTheQuery(t *testing.T) {
	bus := NewInMemoryBus()

	_, err := bus.Ask(context.Background(), otherQuery{})
	assert.ErrorIs(t, err, ErrHandlerNotFound)
	assert.Contains(t, err.Error(), "catalog.other")
}

func TestRegisterRawRejectsDuplicateKey(t *testing.T) {
	bus := NewInMemoryBus()
	handler := func(context.Context, Query) (any, error) { return nil, nil }

	bus.RegisterRaw("catalog.stay_count", handler)
	assert.Panics(t, func() { bus.RegisterRaw("catalog.stay_count", handler) })
}
