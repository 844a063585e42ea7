package storage

import (
	"context"
	"fmt"
	"io"
	"strings"

	"cloud.google.com/go/storage"
	"github.com/google/uuid"
	"google.golang.org/api/option"
)

// CloudStorageClient is the media collaborator: it uploads raw attachment
// and story media and hands back a public URL plus the stored size. A
// failed upload aborts the enclosing operation; nothing is retried here.
type CloudStorageClient struct {
	client     *storage.Client
	bucketName string
	projectID  string
}

func NewCloudStorageClient(ctx context.Context, bucketName, projectID string, credentialsPath string) (*CloudStorageClient, error) {
	var opts []option.ClientOption
	if credentialsPath != "" {
		opts = append(opts, option.WithCredentialsFile(credentialsPath))
	}

	client, err := storage.NewClient(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create storage client: %v", err)
	}

	return &CloudStorageClient{
		client:     client,
		bucketName: bucketName,
		projectID:  projectID,
	}, nil
}

func contentTypeFor(kind string) string {
	switch kind {
	case "image":
		return "image/jpeg"
	case "video":
		return "video/mp4"
	default:
		return "application/octet-stream"
	}
}

// Upload stores the media under folder/ with a generated object name and
// returns its public URL and byte size.
func (c *CloudStorageClient) Upload(ctx context.Context, data io.Reader, kind, folder string) (string, int64, error) {
	objectName := fmt.Sprintf("%s/%s", strings.Trim(folder, "/"), uuid.New().String())

	obj := c.client.Bucket(c.bucketName).Object(objectName)
	writer := obj.NewWriter(ctx)
	writer.ContentType = contentTypeFor(kind)

	size, err := io.Copy(writer, data)
	if err != nil {
		writer.Close()
		return "", 0, fmt.Errorf("failed to write media object: %v", err)
	}
	if err := writer.Close(); err != nil {
		return "", 0, fmt.Errorf("failed to finalize media object: %v", err)
	}

	url := fmt.Sprintf("https://storage.googleapis.com/%s/%s", c.bucketName, objectName)
	return url, size, nil
}

// Delete removes a previously uploaded object by its public URL. Used for
// story media cleanup; best-effort at the call sites.
func (c *CloudStorageClient) Delete(ctx context.Context, url string) error {
	prefix := fmt.Sprintf("https://storage.googleapis.com/%s/", c.bucketName)
	if !strings.HasPrefix(url, prefix) {
		return fmt.Errorf("url does not belong to bucket %s", c.bucketName)
	}
	objectName := strings.TrimPrefix(url, prefix)

	return c.client.Bucket(c.bucketName).Object(objectName).Delete(ctx)
}

func (c *CloudStorageClient) Close() error {
	return c.client.Close()
}
