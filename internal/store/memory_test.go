package store

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"stealthcompany.com/patients/internal/patient"
)

func TestMemoryStoreCopiesState(t *testing.T) {
	ctx := context.Background()
	seed := map[string]patient.Record{"P1": {Name: "A"}}
	ms := NewMemoryStore(seed)

	seed["P2"] = patient.Record{Name: "B"}

	loaded, err := ms.Load(ctx)
	require.NoError(t, err)
	assert.Len(t, loaded, 1)

	loaded["P3"] = patient.Record{Name: "C"}
	again, err := ms.Load(ctx)
	require.NoError(t, err)
	assert.Len(t, again, 1)

	require.NoError(t, ms.Save(ctx, loaded))
	again, err = ms.Load(ctx)
	require.NoError(t, err)
	assert.Len(t, again, 2)
	assert.Equal(t, 1, ms.Saves())
}

func TestMemoryStoreHonoursCancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := NewMemoryStore(nil).Load(ctx)
	assert.ErrorIs(t, err, context.Canceled)
}
