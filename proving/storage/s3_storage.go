package storage

import (
	"context"
	"fmt"
	"io"
	"path"
	"sync"

	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/feature/s3/manager"
	"github.com/aws/aws-sdk-go-v2/service/s3"
)

// S3Storage retains run artifacts in a bucket, under an optional key prefix,
// for inspection after ephemeral CI environments are gone.
type S3Storage struct {
	client *s3.Client
	bucket string
	prefix string
}

func NewS3Storage(ctx context.Context, bucket, prefix string) (*S3Storage, error) {
	cfg, err := config.LoadDefaultConfig(ctx)
	if err != nil {
		return nil, fmt.Errorf("unable to load SDK config: %w", err)
	}
	return &S3Storage{
		client: s3.NewFromConfig(cfg),
		bucket: bucket,
		prefix: prefix,
	}, nil
}

func (s *S3Storage) key(key string) string {
	return path.Join(s.prefix, key)
}

func (s *S3Storage) Reader(key string) (io.ReadCloser, error) {
	object, err := s.client.GetObject(context.TODO(), &s3.GetObjectInput{
		Bucket: &s.bucket,
		Key:    stringPtr(s.key(key)),
	})
	if err != nil {
		return nil, fmt.Errorf("unable to get object: %w", err)
	}
	return object.Body, nil
}

func (s *S3Storage) Writer(key string) (io.WriteCloser, error) {
	uploader := manager.NewUploader(s.client)

	reader, writer := io.Pipe()
	w := &writeWaiter{WriteCloser: writer}
	w.wg.Add(1)
	go func() {
		_, err := uploader.Upload(context.TODO(), &s3.PutObjectInput{
			Bucket: &s.bucket,
			Key:    stringPtr(s.key(key)),
			Body:   reader,
		})
		w.wg.Done()
		if err != nil {
			_ = reader.CloseWithError(err)
		}
	}()

	return NewLoggingWriter(w, s.key(key)), nil
}

func stringPtr(s string) *string {
	return &s
}

type writeWaiter struct {
	io.WriteCloser
	wg sync.WaitGroup
}

func (w *writeWaiter) Close() error {
	err := w.WriteCloser.Close()
	if err != nil {
		return err
	}
	w.wg.Wait()
	return nil
}
