package staging

import (
	"context"
	"fmt"
	"io"

	"github.com/Azure/azure-sdk-for-go/sdk/storage/azblob"
)

// AzureFetcher downloads blobs from Azure Blob Storage. Bucket is the
// container name.
type AzureFetcher struct {
	client *azblob.Client
}

// NewAzureFetcher creates an Azure fetcher with shared-key credentials.
func NewAzureFetcher(accountName, accountKey string) (*AzureFetcher, error) {
	if accountName == "" || accountKey == "" {
		return nil, fmt.Errorf("Azure account name and key are required")
	}
	cred, err := azblob.NewSharedKeyCredential(accountName, accountKey)
	if err != nil {
		return nil, fmt.Errorf("create shared key credential: %w", err)
	}
	serviceURL := fmt.Sprintf("https://%s.blob.core.windows.net", accountName)
	client, err := azblob.NewClientWithSharedKeyCredential(serviceURL, cred, nil)
	if err != nil {
		return nil, fmt.Errorf("create Azure blob client: %w", err)
	}
	return &AzureFetcher{client: client}, nil
}

func (f *AzureFetcher) Scheme() string { return SchemeAzure }

func (f *AzureFetcher) Fetch(ctx context.Context, container, blob string, w io.Writer) error {
	resp, err := f.client.DownloadStream(ctx, container, blob, nil)
	if err != nil {
		return fmt.Errorf("download az://%s/%s: %w", container, blob, err)
	}
	defer resp.Body.Close() //nolint:errcheck

	if _, err := io.Copy(w, resp.Body); err != nil {
		return fmt.Errorf("read az://%s/%s: %w", container, blob, err)
	}
	return nil
}
