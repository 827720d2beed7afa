package helpers

import (
	"context"
	"errors"
	"fmt"
	"io"

	"cloud.google.com/go/storage"
	"google.golang.org/api/option"
)

// NewGCSClient creates a Google Cloud Storage client. If credsPath is empty, ADC is used.
func NewGCSClient(ctx context.Context, credsPath string) (*storage.Client, error) {
	if credsPath == "" {
		return storage.NewClient(ctx)
	}
	return storage.NewClient(ctx, option.WithCredentialsFile(credsPath))
}

// GCSObjectStore uploads images into a single bucket and hands back their public URL.
type GCSObjectStore struct {
	Client *storage.Client
	Bucket string
}

func NewGCSObjectStore(client *storage.Client, bucket string) *GCSObjectStore {
	return &GCSObjectStore{Client: client, Bucket: bucket}
}

// Upload writes r to objectPath and returns its public URL.
func (s *GCSObjectStore) Upload(ctx context.Context, objectPath, contentType string, r io.Reader) (string, error) {
	if s == nil || s.Client == nil || s.Bucket == "" {
		return "", errors.New("gcs not configured")
	}
	wc := s.Client.Bucket(s.Bucket).Object(objectPath).NewWriter(ctx)
	wc.ContentType = contentType
	wc.ChunkSize = 0 // disable chunking for small files
	if _, err := io.Copy(wc, r); err != nil {
		_ = wc.Close()
		return "", err
	}
	if err := wc.Close(); err != nil {
		return "", err
	}
	return PublicURL(s.Bucket, objectPath), nil
}

// PublicURL builds a public URL for an object (assuming public read access)
func PublicURL(bucket, objectPath string) string {
	return fmt.Sprintf("https://storage.googleapis.com/%s/%s", bucket, objectPath)
}
