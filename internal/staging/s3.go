package staging

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
)

// S3Config holds static credentials for an S3-compatible store.
type S3Config struct {
	KeyID    string
	Secret   string
	Endpoint string // host[:port] or full URL; empty uses AWS
	Region   string
	URLStyle string // "path" (default) or "vhost"
}

// S3Fetcher downloads objects with the AWS SDK v2.
type S3Fetcher struct {
	client *s3.Client
}

// NewS3Fetcher creates an S3 fetcher from static credentials.
func NewS3Fetcher(cfg S3Config) (*S3Fetcher, error) {
	if cfg.KeyID == "" || cfg.Secret == "" {
		return nil, fmt.Errorf("S3 key id and secret are required")
	}
	region := cfg.Region
	if region == "" {
		region = "us-east-1"
	}

	opts := s3.Options{
		Region: region,
		Credentials: credentials.NewStaticCredentialsProvider(
			cfg.KeyID, cfg.Secret, "",
		),
		UsePathStyle: cfg.URLStyle != "vhost",
	}
	if cfg.Endpoint != "" {
		endpoint := cfg.Endpoint
		if !strings.Contains(endpoint, "://") {
			endpoint = "https://" + endpoint
		}
		opts.BaseEndpoint = aws.String(endpoint)
	}
	return &S3Fetcher{client: s3.New(opts)}, nil
}

func (f *S3Fetcher) Scheme() string { return SchemeS3 }

func (f *S3Fetcher) Fetch(ctx context.Context, bucket, key string, w io.Writer) error {
	out, err := f.client.GetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		return fmt.Errorf("get s3://%s/%s: %w", bucket, key, err)
	}
	defer out.Body.Close() //nolint:errcheck

	if _, err := io.Copy(w, out.Body); err != nil {
		return fmt.Errorf("read s3://%s/%s: %w", bucket, key, err)
	}
	return nil
}
