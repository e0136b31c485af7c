package gcs

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"
)

// Upload stores data under object with a single media upload and returns the
// object's public URL.
func (c *Client) Upload(ctx context.Context, object, contentType string, data []byte) (string, error) {
	if c == nil || c.tokens == nil {
		return "", errors.New("gcs client not initialized")
	}
	object = strings.TrimLeft(strings.TrimSpace(object), "/")
	if object == "" {
		return "", errors.New("object name is required")
	}
	if len(data) == 0 {
		return "", errors.New("object data is empty")
	}

	query := url.Values{"uploadType": {"media"}, "name": {object}}
	endpoint := fmt.Sprintf("%s/upload/storage/v1/b/%s/o?%s", c.base(), url.PathEscape(c.bucket), query.Encode())

	req, err := c.newRequest(ctx, http.MethodPost, endpoint, bytes.NewReader(data))
	if err != nil {
		return "", err
	}
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	req.ContentLength = int64(len(data))

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("gcs upload: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return "", responseError("gcs upload", resp)
	}
	return c.PublicURL(object), nil
}

// PublicURL returns the address an object is served from.
func (c *Client) PublicURL(object string) string {
	base := defaultAPIBase
	if c.publicBase != "" {
		base = c.publicBase
	}
	return fmt.Sprintf("%s/%s/%s", base, c.bucket, strings.TrimLeft(object, "/"))
}
