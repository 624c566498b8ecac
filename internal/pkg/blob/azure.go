// Package blob implements the attachment store on Azure Blob Storage.
// Read access is handed out through short-lived SAS URLs when shared-key
// credentials are configured.
package blob

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/Azure/azure-sdk-for-go/sdk/storage/azblob"
	"github.com/Azure/azure-sdk-for-go/sdk/storage/azblob/blob"
	"github.com/Azure/azure-sdk-for-go/sdk/storage/azblob/sas"
)

// readURLTTL bounds how long a signed read link stays valid.
const readURLTTL = 30 * time.Minute

// AzureStore stores attachments as block blobs in a single container.
type AzureStore struct {
	client     *azblob.Client
	credential *azblob.SharedKeyCredential
	serviceURL string
	container  string
}

// NewAzureStore connects to the storage account with shared-key
// credentials. The container must already exist.
func NewAzureStore(accountName, accountKey, container string) (*AzureStore, error) {
	credential, err := azblob.NewSharedKeyCredential(accountName, accountKey)
	if err != nil {
		return nil, fmt.Errorf("building storage credential: %w", err)
	}
	serviceURL := fmt.Sprintf("https://%s.blob.core.windows.net", accountName)
	client, err := azblob.NewClientWithSharedKeyCredential(serviceURL, credential, nil)
	if err != nil {
		return nil, fmt.Errorf("building blob client: %w", err)
	}
	return &AzureStore{
		client:     client,
		credential: credential,
		serviceURL: serviceURL,
		container:  container,
	}, nil
}

// Upload writes the content as a block blob and returns its plain URL.
func (s *AzureStore) Upload(ctx context.Context, name string, content []byte, contentType string) (string, error) {
	opts := &azblob.UploadBufferOptions{}
	if contentType != "" {
		opts.HTTPHeaders = &blob.HTTPHeaders{BlobContentType: &contentType}
	}
	if _, err := s.client.UploadBuffer(ctx, s.container, name, content, opts); err != nil {
		return "", fmt.Errorf("uploading blob %s: %w", name, err)
	}
	return s.blobURL(name), nil
}

// Delete removes the blob. Deleting a blob that does not exist is an
// error from the service; callers treat deletion as best effort.
func (s *AzureStore) Delete(ctx context.Context, name string) error {
	if _, err := s.client.DeleteBlob(ctx, s.container, name, nil); err != nil {
		return fmt.Errorf("deleting blob %s: %w", name, err)
	}
	return nil
}

// ReadURL signs a read-only URL valid for a short window.
func (s *AzureStore) ReadURL(name string) (string, error) {
	now := time.Now().UTC()
	values := sas.BlobSignatureValues{
		Protocol:      sas.ProtocolHTTPS,
		StartTime:     now.Add(-5 * time.Minute),
		ExpiryTime:    now.Add(readURLTTL),
		Permissions:   (&sas.BlobPermissions{Read: true}).String(),
		ContainerName: s.container,
		BlobName:      name,
	}
	params, err := values.SignWithSharedKey(s.credential)
	if err != nil {
		return "", fmt.Errorf("signing read URL for %s: %w", name, err)
	}
	return s.blobURL(name) + "?" + params.Encode(), nil
}

func (s *AzureStore) blobURL(name string) string {
	return fmt.Sprintf("%s/%s/%s", strings.TrimSuffix(s.serviceURL, "/"), s.container, name)
}
