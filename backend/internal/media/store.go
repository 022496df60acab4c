package media

import (
	"context"
	"io"
	"path/filepath"
	"strings"

	"github.com/google/uuid"

	apperrors "socialgraph/backend/pkg/errors"
)

// Store persists an uploaded file and returns the URI clients use to fetch it
type Store interface {
	Save(ctx context.Context, filename string, r io.Reader) (string, error)
}

var imageExtensions = map[string]bool{
	".jpg":  true,
	".jpeg": true,
	".png":  true,
	".gif":  true,
	".webp": true,
}

// objectName replaces the client's file name with a random one, keeping
// the extension so the served content type stays right
func objectName(filename string) (string, error) {
	ext := strings.ToLower(filepath.Ext(filename))
	if ext == "" {
		return "", apperrors.NewValidationFailed("media", "file has no extension")
	}
	if !imageExtensions[ext] {
		return "", apperrors.NewValidationFailed("media", "unsupported file type "+ext)
	}
	return uuid.New().String() + ext, nil
}
