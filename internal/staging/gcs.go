package staging

import (
	"context"
	"fmt"
	"io"

	"cloud.google.com/go/storage"
	"google.golang.org/api/option"
)

// GCSFetcher downloads objects from Google Cloud Storage.
type GCSFetcher struct {
	client *storage.Client
}

// NewGCSFetcher creates a GCS fetcher authenticated with a service-account key file.
func NewGCSFetcher(ctx context.Context, keyFilePath string) (*GCSFetcher, error) {
	if keyFilePath == "" {
		return nil, fmt.Errorf("GCS key file path is required")
	}
	client, err := storage.NewClient(ctx, option.WithAuthCredentialsFile(option.ServiceAccount, keyFilePath))
	if err != nil {
		return nil, fmt.Errorf("create GCS client: %w", err)
	}
	return &GCSFetcher{client: client}, nil
}

func (f *GCSFetcher) Scheme() string { return SchemeGCS }

func (f *GCSFetcher) Fetch(ctx context.Context, bucket, key string, w io.Writer) error {
	r, err := f.client.Bucket(bucket).Object(key).NewReader(ctx)
	if err != nil {
		return fmt.Errorf("open gs://%s/%s: %w", bucket, key, err)
	}
	defer r.Close() //nolint:errcheck

	if _, err := io.Copy(w, r); err != nil {
		return fmt.Errorf("read gs://%s/%s: %w", bucket, key, err)
	}
	return nil
}

// Close releases the underlying client.
func (f *GCSFetcher) Close() error {
	return f.client.Close()
}
