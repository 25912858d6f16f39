package media

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemoryStorePutGetList(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore()

	require.NoError(t, s.Put(ctx, "c1", "plots/b.png", []byte("png-b"), "image/png"))
	require.NoError(t, s.Put(ctx, "c1", "/plots/a.png", []byte("png-a"), ""))
	require.NoError(t, s.Put(ctx, "c2", "data/out.csv", []byte("a,b"), "text/csv"))

	obj, err := s.Get(ctx, "c1", "plots/a.png")
	require.NoError(t, err)
	assert.Equal(t, []byte("png-a"), obj.Data)
	assert.Equal(t, defaultContentType, obj.ContentType)

	paths, err := s.List(ctx, "c1")
	require.NoError(t, err)
	assert.Equal(t, []string{"plots/a.png", "plots/b.png"}, paths)

	_, err = s.Get(ctx, "c2", "plots/a.png")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestMemoryStoreCopiesContent(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore()
	buf := []byte("abc")
	require.NoError(t, s.Put(ctx, "c1", "x.bin", buf, ""))
	buf[0] = 'z'

	obj, err := s.Get(ctx, "c1", "x.bin")
	require.NoError(t, err)
	assert.Equal(t, "abc", string(obj.Data))
}

func TestMemoryStoreRejectsBadKeys(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore()
	assert.Error(t, s.Put(ctx, "", "a.png", nil, ""))
	assert.Error(t, s.Put(ctx, "c1", " ", nil, ""))
	assert.Error(t, s.Put(ctx, "c1", "../escape.png", nil, ""))
	_, err := s.List(ctx, "")
	assert.Error(t, err)
}

func TestNewS3StoreValidatesConfig(t *testing.T) {
	_, err := NewS3Store(S3Config{})
	assert.Error(t, err)
	_, err = NewS3Store(S3Config{Endpoint: "localhost:9000", AccessKey: "k", SecretKey: "s"})
	assert.Error(t, err)

	s, err := NewS3Store(S3Config{Endpoint: "localhost:9000", AccessKey: "k", SecretKey: "s", Bucket: "media"})
	require.NoError(t, err)
	assert.Equal(t, "us-east-1", s.region)
	assert.Equal(t, "media", s.bucketName)
}

func TestMemoryStoreDelete(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore()
	require.NoError(t, s.Put(ctx, "c1", "a.png", []byte("a"), "image/png"))
	require.NoError(t, s.Put(ctx, "c2", "a.png", []byte("a"), "image/png"))

	require.NoError(t, s.Delete(ctx, "c1", "a.png"))
	require.NoError(t, s.Delete(ctx, "c1", "a.png"))
	_, err := s.Get(ctx, "c1", "a.png")
	assert.ErrorIs(t, err, ErrNotFound)
	_, err = s.Get(ctx, "c2", "a.png")
	assert.NoError(t, err)

	assert.Error(t, s.Delete(ctx, "c1", "../c2/a.png"))
}
