package storage

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/gridfs"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const gridFSBucket = "images"

// GridFSStore keeps blobs in a MongoDB GridFS bucket with the blob key as
// the file id.
type GridFSStore struct {
	client *mongo.Client
	bucket *gridfs.Bucket
}

// NewGridFSStore connects to uri and opens the images bucket of database.
func NewGridFSStore(ctx context.Context, uri, database string) (*GridFSStore, error) {
	if uri == "" {
		return nil, errors.New("mongo uri is required")
	}
	connectCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	client, err := mongo.Connect(connectCtx, options.Client().ApplyURI(uri))
	if err != nil {
		return nil, err
	}
	if err := client.Ping(connectCtx, nil); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, err
	}

	bucket, err := gridfs.NewBucket(client.Database(database), options.GridFSBucket().SetName(gridFSBucket))
	if err != nil {
		_ = client.Disconnect(context.Background())
		return nil, err
	}
	return &GridFSStore{client: client, bucket: bucket}, nil
}

func (s *GridFSStore) Backend() string { return "gridfs" }

func deadline(ctx context.Context) time.Time {
	if d, ok := ctx.Deadline(); ok {
		return d
	}
	return time.Time{}
}

func (s *GridFSStore) Put(ctx context.Context, key, contentType string, data []byte) error {
	if !ValidKey(key) {
		return fmt.Errorf("invalid blob key %q", key)
	}
	if err := s.bucket.SetWriteDeadline(deadline(ctx)); err != nil {
		return err
	}
	opts := options.GridFSUpload().SetMetadata(bson.D{{Key: "contentType", Value: contentType}})
	return s.bucket.UploadFromStreamWithID(key, key, bytes.NewReader(data), opts)
}

func (s *GridFSStore) Get(ctx context.Context, key string) ([]byte, error) {
	if err := s.bucket.SetReadDeadline(deadline(ctx)); err != nil {
		return nil, err
	}
	var buf bytes.Buffer
	if _, err := s.bucket.DownloadToStream(key, &buf); err != nil {
		if errors.Is(err, gridfs.ErrFileNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return buf.Bytes(), nil
}

func (s *GridFSStore) Delete(ctx context.Context, key string) error {
	if err := s.bucket.SetWriteDeadline(deadline(ctx)); err != nil {
		return err
	}
	if err := s.bucket.Delete(key); err != nil && !errors.Is(err, gridfs.ErrFileNotFound) {
		return err
	}
	return nil
}

// Close disconnects the client.
func (s *GridFSStore) Close(ctx context.Context) error {
	return s.client.Disconnect(ctx)
}
