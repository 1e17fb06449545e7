package archive

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"fixpay/core/types"
)

type wrappedEvent struct {
	evt *types.Event
}

func (w wrappedEvent) EventType() string   { return w.evt.Type }
func (w wrappedEvent) Event() *types.Event { return w.evt }

type opaqueEvent struct{}

func (opaqueEvent) EventType() string { return "opaque" }

func openTestStore(t *testing.T) *Store {
	t.Helper()
	store, err := Open(filepath.Join(t.TempDir(), "archive.db"))
	require.NoError(t, err)
	return store
}

func TestEmitPersistsActions(t *testing.T) {
	store := openTestStore(t)

	store.Emit(wrappedEvent{evt: &types.Event{
		Type: "escrow.created",
		Attributes: map[string]string{
			"id":     "4",
			"payer":  "payer-4",
			"payee":  "payee-4",
			"amount": "900",
			"status": "active",
		},
	}})
	store.Emit(wrappedEvent{evt: &types.Event{
		Type: "escrow.released",
		Attributes: map[string]string{
			"id":     "4",
			"payer":  "payer-4",
			"payee":  "payee-4",
			"amount": "900",
			"status": "released",
		},
	}})
	store.Emit(wrappedEvent{evt: &types.Event{
		Type:       "escrow.created",
		Attributes: map[string]string{"id": "5", "status": "active"},
	}})

	history, err := store.History(4)
	require.NoError(t, err)
	require.Len(t, history, 2)
	assert.Equal(t, "escrow.created", history[0].EventType)
	assert.Equal(t, "escrow.released", history[1].EventType)
	assert.Equal(t, "payer-4", history[0].Payer)
	assert.Equal(t, "900", history[1].Amount)
	assert.Contains(t, history[0].Attributes, `"status":"active"`)

	total, err := store.Count()
	require.NoError(t, err)
	assert.Equal(t, int64(3), total)
}

func TestEmitIgnoresForeignEvents(t *testing.T) {
	store := openTestStore(t)
	store.Emit(opaqueEvent{})
	total, err := store.Count()
	require.NoError(t, err)
	assert.Zero(t, total)
}
