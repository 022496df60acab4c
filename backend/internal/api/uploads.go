package api

import (
	"errors"
	"io"
	"net/http"

	"github.com/gin-gonic/gin"

	"socialgraph/backend/internal/social"
	apperrors "socialgraph/backend/pkg/errors"
)

// formUpload opens the named multipart file. A request without the file, or
// one that is not multipart at all, yields a nil upload.
func formUpload(c *gin.Context, field string) (*social.Upload, io.Closer, error) {
	fh, err := c.FormFile(field)
	if errors.Is(err, http.ErrMissingFile) || errors.Is(err, http.ErrNotMultipart) {
		return nil, nopCloser{}, nil
	}
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			return nil, nil, err
		}
		return nil, nil, apperrors.NewValidationFailed(field, err.Error())
	}

	f, err := fh.Open()
	if err != nil {
		return nil, nil, apperrors.NewValidationFailed(field, err.Error())
	}
	return &social.Upload{Filename: fh.Filename, Body: f}, f, nil
}

type nopCloser struct{}

func (nopCloser) Close() error { return nil }

// bind decodes the body by content type: JSON, urlencoded form or multipart
func bind(c *gin.Context, dst interface{}) error {
	if err := c.ShouldBind(dst); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			return err
		}
		return apperrors.NewValidationFailed("body", err.Error())
	}
	return nil
}
