package kvstore_test

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"nutridiary/kvstore"
)

type record struct {
	UserID   string `json:"user_id"`
	LoggedIn bool   `json:"logged_in"`
}

func TestFileStore_RoundTrip(t *testing.T) {
	st, err := kvstore.NewFileStore(t.TempDir())
	require.NoError(t, err)
	ctx := context.Background()

	var got record
	ok, err := st.Get(ctx, "auth.cached_record", &got)
	require.NoError(t, err)
	assert.False(t, ok)

	require.NoError(t, st.Set(ctx, "auth.cached_record", record{UserID: "u1", LoggedIn: true}))
	ok, err = st.Get(ctx, "auth.cached_record", &got)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, record{UserID: "u1", LoggedIn: true}, got)

	require.NoError(t, st.Delete(ctx, "auth.cached_record"))
	require.NoError(t, st.Delete(ctx, "auth.cached_record"))
	ok, err = st.Get(ctx, "auth.cached_record", &got)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestFileStore_CorruptFile(t *testing.T) {
	dir := t.TempDir()
	st, err := kvstore.NewFileStore(dir)
	require.NoError(t, err)
	require.NoError(t, os.WriteFile(filepath.Join(dir, "broken.json"), []byte("{not json"), 0o600))

	var got record
	ok, err := st.Get(context.Background(), "broken", &got)
	assert.Error(t, err)
	assert.False(t, ok)
}

func TestFileStore_RejectsPathKeys(t *testing.T) {
	st, err := kvstore.NewFileStore(t.TempDir())
	require.NoError(t, err)
	assert.Error(t, st.Set(context.Background(), "../escape", record{}))
}

func TestNewByBackend(t *testing.T) {
	st, err := kvstore.NewByBackend(kvstore.Options{Dir: t.TempDir()})
	require.NoError(t, err)
	assert.IsType(t, &kvstore.FileStore{}, st)

	st, err = kvstore.NewByBackend(kvstore.Options{Backend: "redis", RedisAddr: "127.0.0.1:0"})
	require.NoError(t, err)
	assert.IsType(t, &kvstore.RedisStore{}, st)

	_, err = kvstore.NewByBackend(kvstore.Options{Backend: "etcd"})
	assert.Error(t, err)
}
