package storage

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/gabriel-vasile/mimetype"
)

// objectClient is the minimal bucket surface a remote avatar store needs.
// remove must treat a missing object as success.
type objectClient interface {
	put(ctx context.Context, key string, data []byte, contentType string) error
	remove(ctx context.Context, key string) error
}

// remoteStorage keeps avatars in an object bucket under an optional prefix.
// Keys returned by Save carry the prefix, and Delete only accepts keys below it.
type remoteStorage struct {
	backend string
	objects objectClient
	prefix  string
}

func newRemoteStorage(backend string, objects objectClient, prefix string) *remoteStorage {
	return &remoteStorage{backend: backend, objects: objects, prefix: trimPrefix(prefix)}
}

func (s *remoteStorage) Save(ctx context.Context, data []byte, opts SaveOptions) (string, error) {
	if len(data) == 0 {
		return "", errors.New("empty payload")
	}
	if err := ctx.Err(); err != nil {
		return "", err
	}

	key := joinPrefix(s.prefix, buildObjectPath(opts))
	if err := s.objects.put(ctx, key, data, payloadContentType(data, opts.Extension)); err != nil {
		return "", fmt.Errorf("%s put object: %w", s.backend, err)
	}
	return key, nil
}

func (s *remoteStorage) Delete(ctx context.Context, key string) error {
	cleaned, ok := s.scopedKey(key)
	if !ok {
		return ErrInvalidKey
	}
	if err := s.objects.remove(ctx, cleaned); err != nil {
		return fmt.Errorf("%s delete object: %w", s.backend, err)
	}
	return nil
}

func (s *remoteStorage) scopedKey(key string) (string, bool) {
	cleaned, ok := cleanKey(key)
	if !ok {
		return "", false
	}
	if s.prefix != "" && !strings.HasPrefix(cleaned, s.prefix+"/") {
		return "", false
	}
	return cleaned, true
}

// payloadContentType sniffs the bytes first and falls back to the extension.
func payloadContentType(data []byte, ext string) string {
	if detected := mimetype.Detect(data); detected != nil && !detected.Is("application/octet-stream") {
		return detected.String()
	}
	return detectContentType(ext)
}

var _ Storage = (*remoteStorage)(nil)
