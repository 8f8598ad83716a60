// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package store

import (
	"context"
	"fmt"
	"io"

	"github.com/Azure/azure-sdk-for-go/sdk/storage/azblob"

	"github.com/pdiddy/health-etl/pkg/types"
)

// Azure reads and writes blobs in one container of an ADLS Gen2 account,
// authorized by a SAS token appended to the service URL.
type Azure struct {
	client    *azblob.Client
	account   string
	container string
}

// NewAzure builds a client for cfg. The SAS token must already be resolved;
// it is part of the service URL and never appears in errors or logs.
func NewAzure(cfg types.StorageConfig) (*Azure, error) {
	if cfg.Account == "" || cfg.Container == "" {
		return nil, fmt.Errorf("storage account and container are required")
	}
	serviceURL := fmt.Sprintf("https://%s.blob.core.windows.net/?%s", cfg.Account, cfg.SASToken)
	client, err := azblob.NewClientWithNoCredential(serviceURL, nil)
	if err != nil {
		return nil, fmt.Errorf("creating blob client for account %s: %w", cfg.Account, err)
	}
	return &Azure{client: client, account: cfg.Account, container: cfg.Container}, nil
}

// Get downloads one blob in full.
func (a *Azure) Get(ctx context.Context, name string) ([]byte, error) {
	resp, err := a.client.DownloadStream(ctx, a.container, name, nil)
	if err != nil {
		return nil, &TransportError{Location: a.location(name), Err: err}
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, &TransportError{Location: a.location(name), Err: err}
	}
	return data, nil
}

// Put uploads data as one blob, overwriting any previous version.
func (a *Azure) Put(ctx context.Context, name string, data []byte) error {
	if _, err := a.client.UploadBuffer(ctx, a.container, name, data, nil); err != nil {
		return &TransportError{Location: a.location(name), Err: err}
	}
	return nil
}

func (a *Azure) location(name string) string {
	return fmt.Sprintf("abfs://%s@%s/%s", a.container, a.account, name)
}
