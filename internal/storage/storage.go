// Package storage holds the binary blob backends for uploaded images.
package storage

import (
	"context"
	"errors"
	"fmt"
	"regexp"

	"github.com/andriinero/inkspace-backend/internal/config"
	"github.com/andriinero/inkspace-backend/internal/observability"
)

// ErrNotFound is returned by Get when no blob has the key.
var ErrNotFound = errors.New("blob not found")

// BlobStore stores opaque blobs by key. Delete of a missing key succeeds.
type BlobStore interface {
	Backend() string
	Put(ctx context.Context, key, contentType string, data []byte) error
	Get(ctx context.Context, key string) ([]byte, error)
	Delete(ctx context.Context, key string) error
}

var keyPattern = regexp.MustCompile(`^[A-Za-z0-9_-]{1,64}$`)

// ValidKey reports whether key is safe to use as a blob name on every
// backend.
func ValidKey(key string) bool {
	return keyPattern.MatchString(key)
}

// New opens the backend selected by cfg.ImageStore.
func New(ctx context.Context, cfg *config.Config) (BlobStore, error) {
	var (
		store BlobStore
		err   error
	)
	switch cfg.ImageStore {
	case "", "local":
		store, err = NewLocalStore(cfg.ImageUploadDir)
	case "gcs":
		store, err = NewGCSStore(ctx, cfg.GCSBucket, cfg.GCSCredentialsFile)
	case "gridfs":
		store, err = NewGridFSStore(ctx, cfg.MongoURI, cfg.MongoDatabase)
	default:
		return nil, fmt.Errorf("unknown image store %q", cfg.ImageStore)
	}
	if err != nil {
		return nil, fmt.Errorf("open %s image store: %w", cfg.ImageStore, err)
	}
	return Instrument(store), nil
}

// Closer is implemented by backends holding a client connection.
type Closer interface {
	Close(ctx context.Context) error
}

// Close releases store's client when it has one.
func Close(ctx context.Context, store BlobStore) error {
	if in, ok := store.(*instrumented); ok {
		store = in.next
	}
	if c, ok := store.(Closer); ok {
		return c.Close(ctx)
	}
	return nil
}

// Instrument wraps store with tracing spans and operation counters.
func Instrument(store BlobStore) BlobStore {
	if _, ok := store.(*instrumented); ok {
		return store
	}
	return &instrumented{next: store}
}

type instrumented struct {
	next BlobStore
}

func (s *instrumented) Backend() string { return s.next.Backend() }

func (s *instrumented) observe(ctx context.Context, op, key string, fn func(context.Context) error) error {
	ctx, span := observability.GetTraceLayer().TraceBlobOperation(ctx, s.next.Backend(), op, key)
	err := fn(ctx)
	result := observability.ResultLabel(err)
	if errors.Is(err, ErrNotFound) {
		result = "miss"
	}
	observability.BlobOperations.WithLabelValues(s.next.Backend(), op, result).Inc()
	observability.FinishSpan(span, err)
	return err
}

func (s *instrumented) Put(ctx context.Context, key, contentType string, data []byte) error {
	return s.observe(ctx, "put", key, func(ctx context.Context) error {
		return s.next.Put(ctx, key, contentType, data)
	})
}

func (s *instrumented) Get(ctx context.Context, key string) ([]byte, error) {
	var data []byte
	err := s.observe(ctx, "get", key, func(ctx context.Context) error {
		var err error
		data, err = s.next.Get(ctx, key)
		return err
	})
	return data, err
}

func (s *instrumented) Delete(ctx context.Context, key string) error {
	return s.observe(ctx, "delete", key, func(ctx context.Context) error {
		return s.next.Delete(ctx, key)
	})
}
