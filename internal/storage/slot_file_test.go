package storage

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFileSlot_MissingFileIsEmpty(t *testing.T) {
	slot, err := NewFileSlot(filepath.Join(t.TempDir(), "cart.json"))
	require.NoError(t, err)

	data, err := slot.Load(context.Background())
	require.NoError(t, err)
	assert.Nil(t, data)
}

func TestFileSlot_SaveCreatesDirAndOverwrites(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "cart.json")
	slot, err := NewFileSlot(path)
	require.NoError(t, err)
	ctx := context.Background()

	require.NoError(t, slot.Save(ctx, []byte(`[{"id":1}]`)))
	require.NoError(t, slot.Save(ctx, []byte(`[{"id":2}]`)))

	raw, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, `[{"id":2}]`, string(raw))

	entries, err := os.ReadDir(filepath.Dir(path))
	require.NoError(t, err)
	assert.Len(t, entries, 1, "temp files must be cleaned up")
}

func TestFileSlot_CanceledContext(t *testing.T) {
	slot, err := NewFileSlot(filepath.Join(t.TempDir(), "cart.json"))
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	assert.ErrorIs(t, slot.Save(ctx, []byte(`[]`)), context.Canceled)
	_, err = slot.Load(ctx)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestMemSlot_CopiesData(t *testing.T) {
	slot := NewMemSlot()
	buf := []byte(`[1]`)
	require.NoError(t, slot.Save(context.Background(), buf))
	buf[1] = '2'

	data, err := slot.Load(context.Background())
	require.NoError(t, err)
	assert.Equal(t, `[1]`, string(data))
	assert.Equal(t, 1, slot.Saves())
}
