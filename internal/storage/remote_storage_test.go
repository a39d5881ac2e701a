package storage

import (
	"accounts/internal/config"
	"context"
	"hash/crc64"
	"io"
	"net/http"
	"net/http/httptest"
	"strconv"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var pngPayload = []byte("\x89PNG\r\n\x1a\n\x00\x00\x00\rIHDR\x00\x00\x00\x01\x00\x00\x00\x01")

type bucketRequest struct {
	method      string
	path        string
	contentType string
	body        []byte
}

// fakeBucket records object requests and answers with a per-method status.
type fakeBucket struct {
	*httptest.Server
	mu       sync.Mutex
	requests []bucketRequest
	status   map[string]int
	errBody  string
}

func newFakeBucket(t *testing.T) *fakeBucket {
	t.Helper()
	b := &fakeBucket{status: map[string]int{}}
	b.Server = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, _ := io.ReadAll(r.Body)
		b.mu.Lock()
		b.requests = append(b.requests, bucketRequest{
			method:      r.Method,
			path:        r.URL.Path,
			contentType: r.Header.Get("Content-Type"),
			body:        body,
		})
		status, ok := b.status[r.Method]
		errBody := b.errBody
		b.mu.Unlock()

		if !ok {
			status = http.StatusOK
			if r.Method == http.MethodDelete {
				status = http.StatusNoContent
			}
		}
		if status >= 300 {
			w.Header().Set("Content-Type", "application/xml")
			w.WriteHeader(status)
			_, _ = io.WriteString(w, errBody)
			return
		}
		checksum := strconv.FormatUint(crc64.Checksum(body, crc64.MakeTable(crc64.ECMA)), 10)
		w.Header().Set("x-cos-hash-crc64ecma", checksum)
		w.Header().Set("ETag", `"d41d8cd98f00b204e9800998ecf8427e"`)
		w.WriteHeader(status)
	}))
	t.Cleanup(b.Close)
	return b
}

func (b *fakeBucket) respond(method string, status int, body string) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.status[method] = status
	b.errBody = body
}

func (b *fakeBucket) recorded() []bucketRequest {
	b.mu.Lock()
	defer b.mu.Unlock()
	return append([]bucketRequest(nil), b.requests...)
}

const noSuchKeyBody = `<?xml version="1.0" encoding="UTF-8"?><Error><Code>NoSuchKey</Code><Message>The specified key does not exist.</Message></Error>`

const accessDeniedBody = `<?xml version="1.0" encoding="UTF-8"?><Error><Code>AccessDenied</Code><Message>Access Denied</Message></Error>`

func TestRemoteAvatarStores(t *testing.T) {
	tests := []struct {
		name string
		// pathPrefix is what the provider puts before the object key.
		pathPrefix string
		open       func(endpoint string) (Storage, error)
	}{
		{
			name:       "s3",
			pathPrefix: "/avatars/",
			open: func(endpoint string) (Storage, error) {
				return NewS3Storage(config.Config{
					StorageS3Bucket:          "avatars",
					StorageS3Region:          "eu-west-3",
					StorageS3Endpoint:        endpoint,
					StorageS3AccessKeyID:     "key",
					StorageS3SecretAccessKey: "secret",
					StorageS3ForcePathStyle:  true,
					StorageS3Prefix:          "/profiles/",
				})
			},
		},
		{
			name:       "r2",
			pathPrefix: "/avatars/",
			open: func(endpoint string) (Storage, error) {
				return NewR2Storage(config.Config{
					StorageR2Bucket:          "avatars",
					StorageR2Endpoint:        endpoint,
					StorageR2AccessKeyID:     "key",
					StorageR2SecretAccessKey: "secret",
					StorageR2Prefix:          "profiles",
				})
			},
		},
		{
			name:       "oss",
			pathPrefix: "/avatars/",
			open: func(endpoint string) (Storage, error) {
				return NewOSSStorage(config.Config{
					StorageOSSEndpoint:        endpoint,
					StorageOSSBucket:          "avatars",
					StorageOSSAccessKeyID:     "key",
					StorageOSSAccessKeySecret: "secret",
					StorageOSSPrefix:          "profiles/",
				})
			},
		},
		{
			name:       "cos",
			pathPrefix: "/",
			open: func(endpoint string) (Storage, error) {
				return NewCOSStorage(config.Config{
					StorageCOSBucketURL: endpoint,
					StorageCOSSecretID:  "id",
					StorageCOSSecretKey: "secret",
					StorageCOSPrefix:    "profiles",
				})
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctx := context.Background()
			bucket := newFakeBucket(t)
			store, err := tt.open(bucket.URL)
			require.NoError(t, err)

			key, err := store.Save(ctx, pngPayload, SaveOptions{BaseName: "1760000000000-me", Extension: ".png", Flat: true})
			require.NoError(t, err)
			assert.Equal(t, "profiles/1760000000000-me.png", key)

			objectPath := tt.pathPrefix + "profiles/1760000000000-me.png"
			requests := bucket.recorded()
			require.Len(t, requests, 1)
			assert.Equal(t, http.MethodPut, requests[0].method)
			assert.Equal(t, objectPath, requests[0].path)
			assert.Equal(t, "image/png", requests[0].contentType)
			assert.Contains(t, string(requests[0].body), string(pngPayload))

			require.NoError(t, store.Delete(ctx, key))
			requests = bucket.recorded()
			require.Len(t, requests, 2)
			assert.Equal(t, http.MethodDelete, requests[1].method)
			assert.Equal(t, objectPath, requests[1].path)

			// 前缀之外的键不会发出请求
			for _, outside := range []string{"other/1760000000000-me.png", "profiles", "../profiles/x.png", ""} {
				assert.ErrorIs(t, store.Delete(ctx, outside), ErrInvalidKey, "key %q", outside)
			}
			assert.Len(t, bucket.recorded(), 2)
		})
	}
}

func TestRemoteStoreToleratesMissingObject(t *testing.T) {
	bucket := newFakeBucket(t)
	bucket.respond(http.MethodDelete, http.StatusNotFound, noSuchKeyBody)

	s3Store, err := NewS3Storage(config.Config{
		StorageS3Bucket:          "avatars",
		StorageS3Region:          "us-east-1",
		StorageS3Endpoint:        bucket.URL,
		StorageS3AccessKeyID:     "key",
		StorageS3SecretAccessKey: "secret",
		StorageS3ForcePathStyle:  true,
	})
	require.NoError(t, err)
	assert.NoError(t, s3Store.Delete(context.Background(), "gone.png"))

	cosStore, err := NewCOSStorage(config.Config{StorageCOSBucketURL: bucket.URL, StorageCOSSecretID: "id", StorageCOSSecretKey: "secret"})
	require.NoError(t, err)
	assert.NoError(t, cosStore.Delete(context.Background(), "gone.png"))
}

func TestRemoteStoreSurfacesBucketErrors(t *testing.T) {
	bucket := newFakeBucket(t)
	bucket.respond(http.MethodPut, http.StatusForbidden, accessDeniedBody)

	store, err := NewS3Storage(config.Config{
		StorageS3Bucket:          "avatars",
		StorageS3Region:          "us-east-1",
		StorageS3Endpoint:        bucket.URL,
		StorageS3AccessKeyID:     "key",
		StorageS3SecretAccessKey: "secret",
		StorageS3ForcePathStyle:  true,
	})
	require.NoError(t, err)

	_, err = store.Save(context.Background(), pngPayload, SaveOptions{BaseName: "me", Extension: "png", Flat: true})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "s3 put object")

	bucket.respond(http.MethodDelete, http.StatusForbidden, accessDeniedBody)
	err = store.Delete(context.Background(), "me.png")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "s3 delete object")
}

func TestRemoteStoreRejectsEmptyPayload(t *testing.T) {
	bucket := newFakeBucket(t)
	store, err := NewCOSStorage(config.Config{StorageCOSBucketURL: bucket.URL, StorageCOSSecretID: "id", StorageCOSSecretKey: "secret"})
	require.NoError(t, err)

	_, err = store.Save(context.Background(), nil, SaveOptions{Flat: true})
	assert.Error(t, err)
	assert.Empty(t, bucket.recorded())
}

func TestPayloadContentType(t *testing.T) {
	assert.Equal(t, "image/png", payloadContentType(pngPayload, ".jpg"))
	assert.Equal(t, "image/gif", payloadContentType([]byte{0x00, 0x01}, "gif"))
	assert.Equal(t, "application/octet-stream", payloadContentType([]byte{0x00, 0x01}, ""))
}

func TestR2EndpointFromAccount(t *testing.T) {
	endpoint, err := r2Endpoint(config.Config{StorageR2AccountID: "acc123"})
	require.NoError(t, err)
	assert.Equal(t, "https://acc123.r2.cloudflarestorage.com", endpoint)

	endpoint, err = r2Endpoint(config.Config{StorageR2AccountID: "acc123", StorageR2Endpoint: "http://minio:9000"})
	require.NoError(t, err)
	assert.Equal(t, "http://minio:9000", endpoint)

	_, err = r2Endpoint(config.Config{})
	assert.Error(t, err)
}
