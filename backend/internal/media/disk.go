package media

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"go.uber.org/zap"

	apperrors "socialgraph/backend/pkg/errors"
	"socialgraph/backend/pkg/logger"
)

// DiskStore writes uploads under dir and serves them below baseURL
type DiskStore struct {
	dir     string
	baseURL string
	logger  *zap.Logger
}

// NewDiskStore creates dir if needed
func NewDiskStore(dir, baseURL string) (*DiskStore, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, apperrors.NewStorageFailure("disk", fmt.Sprintf("cannot create %s", dir), err)
	}
	return &DiskStore{
		dir:     dir,
		baseURL: strings.TrimSuffix(baseURL, "/"),
		logger:  logger.Named("media.disk"),
	}, nil
}

// Dir is the directory uploads are written to
func (s *DiskStore) Dir() string {
	return s.dir
}

func (s *DiskStore) Save(ctx context.Context, filename string, r io.Reader) (string, error) {
	name, err := objectName(filename)
	if err != nil {
		return "", err
	}
	target := filepath.Join(s.dir, name)

	f, err := os.OpenFile(target, os.O_CREATE|os.O_EXCL|os.O_WRONLY, 0o644)
	if err != nil {
		return "", apperrors.NewStorageFailure("disk", "failed to create file", err)
	}
	if _, err := io.Copy(f, r); err != nil {
		f.Close()
		_ = os.Remove(target)
		return "", apperrors.NewStorageFailure("disk", "failed to write file", err)
	}
	if err := f.Close(); err != nil {
		_ = os.Remove(target)
		return "", apperrors.NewStorageFailure("disk", "failed to close file", err)
	}

	s.logger.Debug("Stored upload", zap.String("file", name))
	return s.baseURL + "/" + name, nil
}
