package media

import (
	"context"
	"errors"
	"fmt"
	"path"
	"strings"

	"github.com/google/uuid"

	pkgerrors "github.com/angelmondragon/hangout-backend/pkg/errors"
	"github.com/angelmondragon/hangout-backend/pkg/logger"
)

const (
	defaultPrefix   = "events"
	defaultMaxBytes = 10 << 20
)

type objectStore interface {
	Upload(ctx context.Context, object, contentType string, data []byte) (string, error)
}

// Uploader stores image payloads and returns their public URL.
type Uploader interface {
	Upload(ctx context.Context, data []byte) (string, error)
}

type UploaderOptions struct {
	// Prefix is the object folder, "events" when empty.
	Prefix   string
	MaxBytes int64
	Logger   *logger.Logger
}

type uploader struct {
	store    objectStore
	prefix   string
	maxBytes int64
	logg     *logger.Logger
	newName  func() string
}

// NewUploader wraps an object store with image validation and naming.
func NewUploader(store objectStore, opts UploaderOptions) (Uploader, error) {
	if store == nil {
		return nil, errors.New("object store required")
	}
	prefix := strings.Trim(strings.TrimSpace(opts.Prefix), "/")
	if prefix == "" {
		prefix = defaultPrefix
	}
	maxBytes := opts.MaxBytes
	if maxBytes <= 0 {
		maxBytes = defaultMaxBytes
	}
	return &uploader{
		store:    store,
		prefix:   prefix,
		maxBytes: maxBytes,
		logg:     opts.Logger,
		newName:  uuid.NewString,
	}, nil
}

func (u *uploader) Upload(ctx context.Context, data []byte) (string, error) {
	if len(data) == 0 {
		return "", pkgerrors.New(pkgerrors.CodeUpload, "image is empty")
	}
	if int64(len(data)) > u.maxBytes {
		return "", pkgerrors.Newf(pkgerrors.CodeUpload, "image exceeds %d bytes", u.maxBytes)
	}

	contentType, ext, err := sniffImage(data)
	if err != nil {
		return "", pkgerrors.Wrap(pkgerrors.CodeUpload, err, "unsupported image type "+contentType)
	}

	object := path.Join(u.prefix, fmt.Sprintf("%s.%s", u.newName(), ext))
	url, err := u.store.Upload(ctx, object, contentType, data)
	if err != nil {
		if u.logg != nil {
			u.logg.Error(u.logg.WithField(ctx, "object", object), "image upload failed", err)
		}
		return "", pkgerrors.Wrap(pkgerrors.CodeUpload, err, "upload image")
	}
	return url, nil
}
