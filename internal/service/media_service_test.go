package service

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"sync"
	"testing"
	"time"

	"evermart/media-service/internal/cache"
	"evermart/media-service/internal/storage"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestMediaService(allowedTypes []string) (MediaService, *storage.MemoryStorage, *cache.AssetCache) {
	store := storage.NewMemoryStorage()
	assetCache := cache.New(time.Minute)
	svc := NewMediaService(store, assetCache, nil, MediaConfig{
		MediaPrefix:      "media/",
		PublicBaseURL:    "http://cdn.test",
		AllowedMimeTypes: allowedTypes,
	})
	return svc, store, assetCache
}

func pngFile(name, content string) UploadFile {
	return UploadFile{
		Name:     name,
		MimeType: "image/png",
		Size:     int64(len(content)),
		Body:     strings.NewReader(content),
	}
}

func TestUploadAssignsSequentialPositions(t *testing.T) {
	svc, _, _ := newTestMediaService(nil)
	ctx := context.Background()

	created, err := svc.Upload(ctx, "E1", "product", "C1", []UploadFile{
		pngFile("a.png", "aaa"),
		pngFile("b.png", "bbb"),
	})
	require.NoError(t, err)
	require.Len(t, created, 2)

	assert.Equal(t, 0, created[0].Position)
	assert.Equal(t, "E1-0.png", created[0].StoredName)
	assert.Equal(t, 1, created[1].Position)
	assert.Equal(t, "E1-1.png", created[1].StoredName)
	assert.NotEqual(t, created[0].ID, created[1].ID)

	listed, err := svc.ListByEntity(ctx, "E1")
	require.NoError(t, err)
	require.Len(t, listed, 2)
	assert.Equal(t, 0, listed[0].Position)
	assert.Equal(t, 1, listed[1].Position)
	assert.Equal(t, "a.png", listed[0].OriginalName)
}

func TestUploadedBinaryIsServable(t *testing.T) {
	svc, _, _ := newTestMediaService(nil)
	ctx := context.Background()

	_, err := svc.Upload(ctx, "E1", "product", "C1", []UploadFile{pngFile("a.png", "payload")})
	require.NoError(t, err)

	rc, info, err := svc.FetchFile(ctx, "E1-0.png")
	require.NoError(t, err)
	defer rc.Close()

	data, err := io.ReadAll(rc)
	require.NoError(t, err)
	assert.Equal(t, "payload", string(data))
	assert.Equal(t, int64(len("payload")), info.Size)
}

func TestReuploadReplacesOccupiedPosition(t *testing.T) {
	svc, _, _ := newTestMediaService(nil)
	ctx := context.Background()

	_, err := svc.Upload(ctx, "E1", "product", "C1", []UploadFile{
		pngFile("a.png", "aaa"),
		pngFile("b.png", "bbb"),
	})
	require.NoError(t, err)

	_, err = svc.Upload(ctx, "E1", "product", "C1", []UploadFile{pngFile("c.png", "ccc")})
	require.NoError(t, err)

	listed, err := svc.ListByEntity(ctx, "E1")
	require.NoError(t, err)
	require.Len(t, listed, 2, "aggregate size must not grow on re-upload")
	assert.Equal(t, "c.png", listed[0].OriginalName)
	assert.Equal(t, "b.png", listed[1].OriginalName)

	rc, _, err := svc.FetchFile(ctx, "E1-0.png")
	require.NoError(t, err)
	defer rc.Close()
	data, _ := io.ReadAll(rc)
	assert.Equal(t, "ccc", string(data), "slot binary must be shadowed by the new upload")
}

func TestListUnknownEntityReturnsEmpty(t *testing.T) {
	svc, _, _ := newTestMediaService(nil)

	listed, err := svc.ListByEntity(context.Background(), "nope")
	require.NoError(t, err)
	assert.Empty(t, listed)
}

func TestFileURL(t *testing.T) {
	svc, _, _ := newTestMediaService(nil)
	assert.Equal(t, "http://cdn.test/media/file/E1-0.png", svc.FileURL("E1-0.png"))
}

func TestDeleteRemovesBinaryAndCacheButNotAggregate(t *testing.T) {
	svc, _, assetCache := newTestMediaService(nil)
	ctx := context.Background()

	_, err := svc.Upload(ctx, "E1", "product", "C1", []UploadFile{
		pngFile("a.png", "aaa"),
		pngFile("b.png", "bbb"),
	})
	require.NoError(t, err)

	require.NoError(t, svc.Delete(ctx, "E1", 0, "C1"))

	_, _, err = svc.FetchFile(ctx, "E1-0.png")
	assert.ErrorIs(t, err, ErrAssetNotFound)

	_, ok := assetCache.Get(cache.SlotCacheKey("E1", 0))
	assert.False(t, ok, "cache entry must be removed")

	// Documented inconsistency: the aggregate is not rewritten on
	// delete, so the listing still reports the removed position.
	listed, err := svc.ListByEntity(ctx, "E1")
	require.NoError(t, err)
	assert.Len(t, listed, 2)
}

func TestDeleteRejectsForeignCompanyWhileCacheIsWarm(t *testing.T) {
	svc, _, _ := newTestMediaService(nil)
	ctx := context.Background()

	_, err := svc.Upload(ctx, "E1", "product", "C1", []UploadFile{pngFile("a.png", "aaa")})
	require.NoError(t, err)

	err = svc.Delete(ctx, "E1", 0, "C2")
	assert.ErrorIs(t, err, ErrOwnershipMismatch)

	_, _, err = svc.FetchFile(ctx, "E1-0.png")
	assert.NoError(t, err, "rejected delete must not mutate storage")
}

func TestDeleteAllowsForeignCompanyWhenCacheIsCold(t *testing.T) {
	svc, _, assetCache := newTestMediaService(nil)
	ctx := context.Background()

	_, err := svc.Upload(ctx, "E1", "product", "C1", []UploadFile{pngFile("a.png", "aaa")})
	require.NoError(t, err)

	// Simulate TTL expiry of the slot's shadow entry.
	assetCache.Delete(cache.SlotCacheKey("E1", 0))

	// Ownership is only enforced while the cache is warm; the durable
	// aggregate is never consulted.
	err = svc.Delete(ctx, "E1", 0, "C2")
	require.NoError(t, err)

	_, _, err = svc.FetchFile(ctx, "E1-0.png")
	assert.ErrorIs(t, err, ErrAssetNotFound)
}

func TestDeleteLeavesNeighbouringSlotsAlone(t *testing.T) {
	svc, store, _ := newTestMediaService(nil)
	ctx := context.Background()

	require.NoError(t, store.Put(ctx, "media/E1-1.png", "image/png", strings.NewReader("one"), 3))
	require.NoError(t, store.Put(ctx, "media/E1-10.png", "image/png", strings.NewReader("ten"), 3))

	require.NoError(t, svc.Delete(ctx, "E1", 1, "C1"))

	_, _, err := svc.FetchFile(ctx, "E1-1.png")
	assert.ErrorIs(t, err, ErrAssetNotFound)
	_, _, err = svc.FetchFile(ctx, "E1-10.png")
	assert.NoError(t, err, "position 10 shares the naive prefix of position 1 and must survive")
}

func TestUploadRejectsUnsupportedMimeType(t *testing.T) {
	svc, store, _ := newTestMediaService([]string{"image/png", "image/jpeg"})
	ctx := context.Background()

	_, err := svc.Upload(ctx, "E1", "product", "C1", []UploadFile{
		pngFile("a.png", "aaa"),
		{Name: "b.exe", MimeType: "application/octet-stream", Size: 3, Body: strings.NewReader("bbb")},
	})
	assert.ErrorIs(t, err, ErrUnsupportedMediaType)

	infos, err := store.List(ctx, "media/")
	require.NoError(t, err)
	assert.Empty(t, infos, "a rejected batch must leave no partial writes")
}

func TestUploadRejectsOversizedFile(t *testing.T) {
	store := storage.NewMemoryStorage()
	svc := NewMediaService(store, cache.New(time.Minute), nil, MediaConfig{
		MediaPrefix:   "media/",
		PublicBaseURL: "http://cdn.test",
		MaxSizeBytes:  4,
	})

	_, err := svc.Upload(context.Background(), "E1", "product", "C1", []UploadFile{pngFile("a.png", "too big")})
	assert.ErrorIs(t, err, ErrFileTooLarge)
}

func TestUploadValidatesRequiredFields(t *testing.T) {
	svc, _, _ := newTestMediaService(nil)
	ctx := context.Background()

	_, err := svc.Upload(ctx, "", "product", "C1", []UploadFile{pngFile("a.png", "a")})
	assert.ErrorIs(t, err, ErrMissingFields)

	_, err = svc.Upload(ctx, "E1", "product", "C1", nil)
	assert.ErrorIs(t, err, ErrNoFiles)
}

func TestUploadSurvivesCorruptedAggregate(t *testing.T) {
	svc, store, _ := newTestMediaService(nil)
	ctx := context.Background()

	require.NoError(t, store.Put(ctx, "media/E1.json", "application/json", strings.NewReader("{not json"), 9))

	created, err := svc.Upload(ctx, "E1", "product", "C1", []UploadFile{pngFile("a.png", "aaa")})
	require.NoError(t, err, "corrupted aggregate must not fail the upload")
	require.Len(t, created, 1)

	listed, err := svc.ListByEntity(ctx, "E1")
	require.NoError(t, err)
	assert.Len(t, listed, 1, "the rewritten aggregate holds only the new batch")
}

func TestConcurrentUploadsToOneEntityAreSerialized(t *testing.T) {
	svc, _, _ := newTestMediaService(nil)
	ctx := context.Background()

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, err := svc.Upload(ctx, "E1", "product", "C1", []UploadFile{
				pngFile(fmt.Sprintf("f%d.png", i), "data"),
			})
			assert.NoError(t, err)
		}(i)
	}
	wg.Wait()

	// Every upload targets position 0, so the aggregate must hold
	// exactly one entry whichever writer came last.
	listed, err := svc.ListByEntity(ctx, "E1")
	require.NoError(t, err)
	assert.Len(t, listed, 1)
}

func TestFetchFileUnknownName(t *testing.T) {
	svc, _, _ := newTestMediaService(nil)

	_, _, err := svc.FetchFile(context.Background(), "missing.png")
	assert.True(t, errors.Is(err, ErrAssetNotFound))
}
