package validators

import (
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"

	pkgerrors "github.com/angelmondragon/hangout-backend/pkg/errors"
)

const multipartMemory = 8 << 20

// Form wraps a parsed multipart request.
type Form struct {
	values   map[string][]string
	files    map[string][]*multipart.FileHeader
	maxBytes int64
}

// ParseMultipartForm parses r, bounding every file to maxFileBytes and the
// whole body to maxFiles of them plus form overhead.
func ParseMultipartForm(w http.ResponseWriter, r *http.Request, maxFileBytes int64, maxFiles int) (*Form, error) {
	if maxFiles < 1 {
		maxFiles = 1
	}
	r.Body = http.MaxBytesReader(w, r.Body, maxFileBytes*int64(maxFiles)+multipartMemory)
	if err := r.ParseMultipartForm(multipartMemory); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			return nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "request body too large")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid multipart form")
	}
	return &Form{
		values:   r.MultipartForm.Value,
		files:    r.MultipartForm.File,
		maxBytes: maxFileBytes,
	}, nil
}

// String returns the trimmed first value of key.
func (f *Form) String(key string) string {
	if vals := f.values[key]; len(vals) > 0 {
		return strings.TrimSpace(vals[0])
	}
	return ""
}

// OptionalString returns nil when key is absent or blank.
func (f *Form) OptionalString(key string) *string {
	if v := f.String(key); v != "" {
		return &v
	}
	return nil
}

// OptionalTime parses an RFC 3339 value.
func (f *Form) OptionalTime(key string) (*time.Time, error) {
	raw := f.String(key)
	if raw == "" {
		return nil, nil
	}
	t, err := time.Parse(time.RFC3339, raw)
	if err != nil {
		return nil, fieldError(key, "must be an RFC 3339 timestamp")
	}
	utc := t.UTC()
	return &utc, nil
}

// OptionalFloat parses a decimal number.
func (f *Form) OptionalFloat(key string) (*float64, error) {
	raw := f.String(key)
	if raw == "" {
		return nil, nil
	}
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return nil, fieldError(key, "must be a number")
	}
	return &v, nil
}

// OptionalUUID parses a uuid value.
func (f *Form) OptionalUUID(key string) (*uuid.UUID, error) {
	raw := f.String(key)
	if raw == "" {
		return nil, nil
	}
	id, err := uuid.Parse(raw)
	if err != nil {
		return nil, fieldError(key, "must be a valid uuid")
	}
	return &id, nil
}

// File reads the first file under key. It returns nil when none was sent.
func (f *Form) File(key string) ([]byte, error) {
	headers := f.files[key]
	if len(headers) == 0 {
		return nil, nil
	}
	return f.read(key, headers[0])
}

// Files reads every file under key, at most max of them.
func (f *Form) Files(key string, max int) ([][]byte, error) {
	headers := f.files[key]
	if max > 0 && len(headers) > max {
		return nil, fieldError(key, fmt.Sprintf("at most %d files", max))
	}
	out := make([][]byte, 0, len(headers))
	for _, header := range headers {
		data, err := f.read(key, header)
		if err != nil {
			return nil, err
		}
		out = append(out, data)
	}
	return out, nil
}

func (f *Form) read(key string, header *multipart.FileHeader) ([]byte, error) {
	if f.maxBytes > 0 && header.Size > f.maxBytes {
		return nil, fieldError(key, fmt.Sprintf("file exceeds %d bytes", f.maxBytes))
	}
	file, err := header.Open()
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "unreadable file")
	}
	defer func() { _ = file.Close() }()
	return io.ReadAll(file)
}

func fieldError(key, msg string) error {
	return pkgerrors.New(pkgerrors.CodeValidation, "validation failed").WithDetails(map[string]string{key: msg})
}
