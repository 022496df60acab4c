package media

import (
	"context"
	"fmt"
	"io"
	"mime"
	"os"
	"path/filepath"

	"cloud.google.com/go/storage"
	"go.uber.org/zap"
	"google.golang.org/api/option"

	apperrors "socialgraph/backend/pkg/errors"
	"socialgraph/backend/pkg/logger"
)

// GCSStore uploads into a Google Cloud Storage bucket
type GCSStore struct {
	client *storage.Client
	bucket string
	logger *zap.Logger
}

// NewGCSStore creates a client from the service account key at
// credentialsFile, or from application default credentials when it is empty
func NewGCSStore(ctx context.Context, bucket, credentialsFile string) (*GCSStore, error) {
	var opts []option.ClientOption
	if credentialsFile != "" {
		if _, err := os.Stat(credentialsFile); os.IsNotExist(err) {
			return nil, fmt.Errorf("service account key not found at path: %s", credentialsFile)
		}
		opts = append(opts, option.WithCredentialsFile(credentialsFile))
	}

	client, err := storage.NewClient(ctx, opts...)
	if err != nil {
		return nil, apperrors.NewStorageFailure("gcs", "failed to create GCS storage client", err)
	}
	return &GCSStore{
		client: client,
		bucket: bucket,
		logger: logger.Named("media.gcs"),
	}, nil
}

func (s *GCSStore) Save(ctx context.Context, filename string, r io.Reader) (string, error) {
	name, err := objectName(filename)
	if err != nil {
		return "", err
	}

	writer := s.client.Bucket(s.bucket).Object(name).NewWriter(ctx)
	writer.ContentType = mime.TypeByExtension(filepath.Ext(name))
	writer.CacheControl = "public, max-age=86400"

	if _, err := io.Copy(writer, r); err != nil {
		_ = writer.Close()
		return "", apperrors.NewStorageFailure("gcs", fmt.Sprintf("failed to upload %s", name), err)
	}
	if err := writer.Close(); err != nil {
		return "", apperrors.NewStorageFailure("gcs", fmt.Sprintf("failed to finalize %s", name), err)
	}

	s.logger.Debug("Stored upload", zap.String("bucket", s.bucket), zap.String("object", name))
	return fmt.Sprintf("https://storage.googleapis.com/%s/%s", s.bucket, name), nil
}

// Close releases the underlying client
func (s *GCSStore) Close() error {
	return s.client.Close()
}
