package middleware

import (
	"bytes"
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/redis/go-redis/v9"

	"github.com/angelmondragon/hangout-backend/api/responses"
	pkgerrors "github.com/angelmondragon/hangout-backend/pkg/errors"
	"github.com/angelmondragon/hangout-backend/pkg/logger"
	pkgredis "github.com/angelmondragon/hangout-backend/pkg/redis"
)

const (
	idempotencyHeader = "Idempotency-Key"
	replayHeader      = "Idempotent-Replay"
	maxKeyLength      = 128

	defaultIdempotencyTTL  = 24 * time.Hour
	criticalIdempotencyTTL = 7 * 24 * time.Hour
	// pendingIdempotencyTTL bounds how long a crashed request blocks its key.
	pendingIdempotencyTTL = 2 * time.Minute
)

var (
	errKeyInFlight = pkgerrors.New(pkgerrors.CodeIdempotency, "request with this key is still in progress")
	errKeyReused   = pkgerrors.New(pkgerrors.CodeIdempotency, "idempotency key reused with different request body")
	errKeyTooLong  = pkgerrors.New(pkgerrors.CodeValidation, "Idempotency-Key too long")
)

// idempotentRoute matches a POST route by prefix and suffix so it works on
// both chi patterns and raw paths.
type idempotentRoute struct {
	prefix, suffix string
	ttl            time.Duration
}

func (r idempotentRoute) matches(path string) bool {
	if r.suffix == "" {
		return path == r.prefix
	}
	return strings.HasPrefix(path, r.prefix) && strings.HasSuffix(path, r.suffix)
}

var idempotentRoutes = []idempotentRoute{
	{prefix: "/api/v1/businesses", ttl: defaultIdempotencyTTL},
	{prefix: "/api/v1/vouchers", ttl: defaultIdempotencyTTL},
	{prefix: "/api/v1/events", ttl: defaultIdempotencyTTL},
	{prefix: "/api/v1/vouchers/", suffix: "/grant", ttl: criticalIdempotencyTTL},
	{prefix: "/api/v1/vouchers/", suffix: "/redeem", ttl: criticalIdempotencyTTL},
}

// storedResponse is what Redis holds under an idempotency key. A pending
// entry is the claim taken before the handler runs.
type storedResponse struct {
	Pending     bool   `json:"pending,omitempty"`
	Status      int    `json:"status,omitempty"`
	ContentType string `json:"content_type,omitempty"`
	Body        []byte `json:"body,omitempty"`
	RequestHash string `json:"request_hash"`
}

// Idempotency replays the first response for a repeated Idempotency-Key on
// the create, grant and redeem routes. Keys are scoped per account, method
// and path. A request without the header is passed through.
func Idempotency(store pkgredis.IdempotencyStore, logg *logger.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := r.Context()
			ttl, ok := routeTTL(r.Method, routePattern(r))
			key := strings.TrimSpace(r.Header.Get(idempotencyHeader))
			if !ok || store == nil || key == "" {
				next.ServeHTTP(w, r)
				return
			}
			if len(key) > maxKeyLength {
				responses.WriteError(ctx, logg, w, errKeyTooLong)
				return
			}

			body, err := io.ReadAll(r.Body)
			if err != nil {
				responses.WriteError(ctx, logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "unreadable request body"))
				return
			}
			r.Body = io.NopCloser(bytes.NewReader(body))

			sum := sha256.Sum256(body)
			hash := hex.EncodeToString(sum[:])
			redisKey := store.IdempotencyKey(scopeFor(r), key)

			claimed, err := claim(ctx, store, redisKey, hash)
			if err != nil {
				responses.WriteError(ctx, logg, w, err)
				return
			}
			if !claimed {
				replay(ctx, store, logg, w, redisKey, hash)
				return
			}

			capture := &capturingWriter{ResponseWriter: w}
			next.ServeHTTP(capture, r)

			if capture.status >= http.StatusInternalServerError {
				if err := store.Del(ctx, redisKey); err != nil {
					logFailure(ctx, logg, "release idempotency key", err)
				}
				return
			}
			final, err := json.Marshal(storedResponse{
				Status:      capture.statusOrOK(),
				ContentType: capture.Header().Get("Content-Type"),
				Body:        capture.body.Bytes(),
				RequestHash: hash,
			})
			if err == nil {
				err = store.Set(ctx, redisKey, string(final), ttl)
			}
			if err != nil {
				logFailure(ctx, logg, "store idempotent response", err)
			}
		})
	}
}

// claim takes the key with a pending entry. False means another request
// already holds it.
func claim(ctx context.Context, store pkgredis.IdempotencyStore, key, hash string) (bool, error) {
	pending, err := json.Marshal(storedResponse{Pending: true, RequestHash: hash})
	if err != nil {
		return false, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "encode idempotency claim")
	}
	ok, err := store.SetNX(ctx, key, string(pending), pendingIdempotencyTTL)
	if err != nil {
		return false, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "claim idempotency key")
	}
	return ok, nil
}

func replay(ctx context.Context, store pkgredis.IdempotencyStore, logg *logger.Logger, w http.ResponseWriter, key, hash string) {
	raw, err := store.Get(ctx, key)
	if errors.Is(err, redis.Nil) {
		// released or expired between SetNX and Get
		responses.WriteError(ctx, logg, w, errKeyInFlight)
		return
	}
	if err != nil {
		responses.WriteError(ctx, logg, w, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load idempotent response"))
		return
	}

	var stored storedResponse
	if err := json.Unmarshal([]byte(raw), &stored); err != nil {
		responses.WriteError(ctx, logg, w, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "decode idempotent response"))
		return
	}
	switch {
	case stored.RequestHash != hash:
		responses.WriteError(ctx, logg, w, errKeyReused)
	case stored.Pending:
		responses.WriteError(ctx, logg, w, errKeyInFlight)
	default:
		if stored.ContentType != "" {
			w.Header().Set("Content-Type", stored.ContentType)
		}
		w.Header().Set(replayHeader, "true")
		w.WriteHeader(stored.Status)
		_, _ = w.Write(stored.Body)
	}
}

func scopeFor(r *http.Request) string {
	return AccountIDFromContext(r.Context()) + "|" + r.Method + "|" + r.URL.Path
}

// routePattern prefers the matched chi pattern. Under a mounted sub-router
// the pattern is still partial ("/api/v1/*"), so the raw path is used.
func routePattern(r *http.Request) string {
	if rc := chi.RouteContext(r.Context()); rc != nil {
		if p := rc.RoutePattern(); p != "" && !strings.HasSuffix(p, "*") {
			return p
		}
	}
	return r.URL.Path
}

func routeTTL(method, path string) (time.Duration, bool) {
	if method != http.MethodPost || path == "" {
		return 0, false
	}
	for _, route := range idempotentRoutes {
		if route.matches(path) {
			return route.ttl, true
		}
	}
	return 0, false
}

type capturingWriter struct {
	http.ResponseWriter
	status int
	body   bytes.Buffer
}

func (c *capturingWriter) WriteHeader(status int) {
	if c.status == 0 {
		c.status = status
	}
	c.ResponseWriter.WriteHeader(status)
}

func (c *capturingWriter) Write(p []byte) (int, error) {
	if c.status == 0 {
		c.status = http.StatusOK
	}
	c.body.Write(p)
	return c.ResponseWriter.Write(p)
}

func (c *capturingWriter) statusOrOK() int {
	if c.status == 0 {
		return http.StatusOK
	}
	return c.status
}

func logFailure(ctx context.Context, logg *logger.Logger, msg string, err error) {
	if logg != nil {
		logg.Error(ctx, msg, err)
	}
}
