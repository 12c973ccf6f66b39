package blobstore

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLocalStorePutGet(t *testing.T) {
	s, err := NewLocalStore(t.TempDir())
	require.NoError(t, err)
	ctx := context.Background()

	require.NoError(t, s.Put(ctx, "model.json", []byte(`{"k":2}`)))

	data, err := s.Get(ctx, "model.json")
	require.NoError(t, err)
	assert.Equal(t, []byte(`{"k":2}`), data)
}

func TestLocalStoreOverwrite(t *testing.T) {
	s, err := NewLocalStore(t.TempDir())
	require.NoError(t, err)
	ctx := context.Background()

	require.NoError(t, s.Put(ctx, "obj", []byte("v1")))
	require.NoError(t, s.Put(ctx, "obj", []byte("v2")))

	data, err := s.Get(ctx, "obj")
	require.NoError(t, err)
	assert.Equal(t, []byte("v2"), data)
}

func TestLocalStoreNested(t *testing.T) {
	s, err := NewLocalStore(t.TempDir())
	require.NoError(t, err)
	ctx := context.Background()

	require.NoError(t, s.Put(ctx, "runs/42/model.json", []byte("x")))

	data, err := s.Get(ctx, "runs/42/model.json")
	require.NoError(t, err)
	assert.Equal(t, []byte("x"), data)
}

func TestLocalStoreNotFound(t *testing.T) {
	s, err := NewLocalStore(t.TempDir())
	require.NoError(t, err)

	_, err = s.Get(context.Background(), "missing")
	assert.ErrorIs(t, err, ErrNotFound)
}
