// Package gcs talks to the Cloud Storage JSON API for event media.
package gcs

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"cloud.google.com/go/auth"
	"cloud.google.com/go/auth/credentials"

	"github.com/angelmondragon/hangout-backend/pkg/config"
	"github.com/angelmondragon/hangout-backend/pkg/logger"
)

const (
	storageScope   = "https://www.googleapis.com/auth/devstorage.read_write"
	defaultAPIBase = "https://storage.googleapis.com"
	requestTimeout = 10 * time.Second
	pingTimeout    = 5 * time.Second
	errBodyLimit   = 2048
)

type tokenProvider interface {
	Token(ctx context.Context) (*auth.Token, error)
}

// Client uploads objects to a single bucket.
type Client struct {
	httpClient *http.Client
	bucket     string
	tokens     tokenProvider
	apiBase    string
	publicBase string
}

// NewClient resolves credentials, checks the bucket is reachable and returns a
// ready client. Explicit JSON wins over a credentials file; with neither, the
// default chain (metadata server, gcloud ADC) is used.
func NewClient(ctx context.Context, cfg config.GCSConfig, gcp config.GCPConfig, logg *logger.Logger) (*Client, error) {
	if cfg.BucketName == "" {
		return nil, errors.New("gcs bucket name is required")
	}

	httpClient := &http.Client{Timeout: requestTimeout}
	creds, err := credentials.DetectDefault(detectOptions(gcp, httpClient))
	if err != nil {
		return nil, fmt.Errorf("resolving gcs credentials: %w", err)
	}

	client := &Client{
		httpClient: httpClient,
		bucket:     cfg.BucketName,
		tokens:     creds,
		apiBase:    defaultAPIBase,
		publicBase: strings.TrimRight(cfg.PublicBaseURL, "/"),
	}
	if err := client.Ping(ctx); err != nil {
		return nil, fmt.Errorf("gcs health check failed: %w", err)
	}

	if logg != nil {
		logg.Info(logg.WithField(ctx, "bucket", cfg.BucketName), "gcs client initialized")
	}
	return client, nil
}

func detectOptions(gcp config.GCPConfig, httpClient *http.Client) *credentials.DetectOptions {
	opts := &credentials.DetectOptions{
		Scopes: []string{storageScope},
		Client: httpClient,
	}
	switch {
	case gcp.CredentialsJSON != "":
		opts.CredentialsJSON = []byte(gcp.CredentialsJSON)
	case gcp.ApplicationCredentials != "":
		opts.CredentialsFile = gcp.ApplicationCredentials
	}
	return opts
}

// Bucket returns the configured bucket name.
func (c *Client) Bucket() string {
	if c == nil {
		return ""
	}
	return c.bucket
}

func (c *Client) Close() error {
	return nil
}

// Ping lists at most one object, which needs storage.objects.list on the bucket.
func (c *Client) Ping(ctx context.Context) error {
	if c == nil || c.tokens == nil {
		return errors.New("gcs client not initialized")
	}

	ctx, cancel := context.WithTimeout(ctx, pingTimeout)
	defer cancel()

	endpoint := fmt.Sprintf("%s/storage/v1/b/%s/o?maxResults=1", c.base(), url.PathEscape(c.bucket))
	req, err := c.newRequest(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return err
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		return responseError("gcs bucket check", resp)
	}
	return nil
}

// newRequest builds a request carrying a bearer token.
func (c *Client) newRequest(ctx context.Context, method, endpoint string, body io.Reader) (*http.Request, error) {
	token, err := c.tokens.Token(ctx)
	if err != nil {
		return nil, fmt.Errorf("gcs token: %w", err)
	}
	req, err := http.NewRequestWithContext(ctx, method, endpoint, body)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Authorization", "Bearer "+token.Value)
	return req, nil
}

func (c *Client) base() string {
	if c.apiBase == "" {
		return defaultAPIBase
	}
	return strings.TrimRight(c.apiBase, "/")
}

func responseError(op string, resp *http.Response) error {
	body, _ := io.ReadAll(io.LimitReader(resp.Body, errBodyLimit))
	if msg := strings.TrimSpace(string(body)); msg != "" {
		return fmt.Errorf("%s failed: %s: %s", op, resp.Status, msg)
	}
	return fmt.Errorf("%s failed: %s", op, resp.Status)
}
