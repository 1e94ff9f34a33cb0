package cache

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFileCacheRoundTrip(t *testing.T) {
	ctx := context.Background()
	c, err := NewFileCache(filepath.Join(t.TempDir(), "nested", "cache"))
	require.NoError(t, err)
	defer c.Close()

	_, hit, err := c.Get(ctx, "layout:abc")
	require.NoError(t, err)
	assert.False(t, hit)

	payload := []byte(`{"blocks":[{"id":"movies/heat.mkv","x":0,"y":0,"w":300,"h":200}]}`)
	require.NoError(t, c.Set(ctx, "layout:abc", payload, time.Hour))

	got, hit, err := c.Get(ctx, "layout:abc")
	require.NoError(t, err)
	assert.True(t, hit)
	assert.Equal(t, payload, got)

	require.NoError(t, c.Delete(ctx, "layout:abc"))
	_, hit, _ = c.Get(ctx, "layout:abc")
	assert.False(t, hit)
	assert.NoError(t, c.Delete(ctx, "layout:abc"), "deleting a missing key is not an error")
}

func TestFileCacheEntriesAreCompressed(t *testing.T) {
	ctx := context.Background()
	c, err := NewFileCache(t.TempDir())
	require.NoError(t, err)

	require.NoError(t, c.Set(ctx, "k", []byte("plain-text-marker"), 0))
	raw, err := os.ReadFile(c.path("k"))
	require.NoError(t, err)
	assert.NotContains(t, string(raw), "plain-text-marker")
	assert.Equal(t, []byte{0x28, 0xb5, 0x2f, 0xfd}, raw[:4], "zstd frame magic")
	assert.Equal(t, ".zst", filepath.Ext(c.path("k")))
}

func TestFileCacheExpiry(t *testing.T) {
	ctx := context.Background()
	c, err := NewFileCache(t.TempDir())
	require.NoError(t, err)

	require.NoError(t, c.Set(ctx, "short", []byte("x"), time.Nanosecond))
	time.Sleep(2 * time.Millisecond)

	_, hit, err := c.Get(ctx, "short")
	require.NoError(t, err)
	assert.False(t, hit)

	_, err = os.Stat(c.path("short"))
	assert.True(t, os.IsNotExist(err), "expired entry should be removed")
}

func TestFileCacheCorruptEntry(t *testing.T) {
	ctx := context.Background()
	c, err := NewFileCache(t.TempDir())
	require.NoError(t, err)

	p := c.path("broken")
	require.NoError(t, os.MkdirAll(filepath.Dir(p), 0o755))
	require.NoError(t, os.WriteFile(p, []byte("not zstd"), 0o644))

	_, hit, err := c.Get(ctx, "broken")
	require.NoError(t, err)
	assert.False(t, hit)
	_, err = os.Stat(p)
	assert.True(t, os.IsNotExist(err))

	require.NoError(t, os.WriteFile(p, compress([]byte("{not json")), 0o644))
	_, hit, err = c.Get(ctx, "broken")
	require.NoError(t, err)
	assert.False(t, hit)
}

func TestFileCacheClear(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()
	c, err := NewFileCache(dir)
	require.NoError(t, err)

	for _, k := range []string{"a", "b", "c"} {
		require.NoError(t, c.Set(ctx, k, []byte(k), 0))
	}
	keep := filepath.Join(dir, "README")
	require.NoError(t, os.WriteFile(keep, []byte("keep"), 0o644))

	n, err := c.Clear()
	require.NoError(t, err)
	assert.Equal(t, 3, n)

	for _, k := range []string{"a", "b", "c"} {
		_, hit, _ := c.Get(ctx, k)
		assert.False(t, hit, k)
	}
	_, err = os.Stat(keep)
	assert.NoError(t, err)
	assert.Equal(t, dir, c.Dir())
}

func TestFileCachePathLayout(t *testing.T) {
	c := &FileCache{dir: "/cache"}
	p := c.path("layout:abc")
	hash := Hash([]byte("layout:abc"))
	assert.Equal(t, filepath.Join("/cache", hash[:2], hash[2:]+".json.zst"), p)
}
