package session

import (
	"context"
	"fmt"
	"strings"
	"time"

	redisclient "github.com/angelmondragon/hangout-backend/pkg/redis"
)

type revocationStore interface {
	Set(ctx context.Context, key string, value any, ttl time.Duration) error
	Exists(ctx context.Context, key string) (bool, error)
}

type revocationKeyer interface {
	RevokedTokenKey(tokenID string) string
}

// RevocationChecker exposes the read-only surface needed by middleware.
type RevocationChecker interface {
	IsRevoked(ctx context.Context, tokenID string) (bool, error)
}

// Revoker records access token ids that must no longer be accepted.
type Revoker interface {
	RevocationChecker
	Revoke(ctx context.Context, tokenID string, ttl time.Duration) error
}

// Manager keeps a deny list of token ids in Redis. Entries expire together
// with the token they block, so the list never outgrows the live tokens.
type Manager struct {
	store revocationStore
	keyer revocationKeyer
}

// NewManager constructs a revocation manager backed by Redis.
func NewManager(client *redisclient.Client) (*Manager, error) {
	if client == nil {
		return nil, fmt.Errorf("redis client is required")
	}
	return &Manager{store: client, keyer: client}, nil
}

// Revoke blocks tokenID for ttl. A non-positive ttl means the token is
// already expired and nothing is stored.
func (m *Manager) Revoke(ctx context.Context, tokenID string, ttl time.Duration) error {
	if strings.TrimSpace(tokenID) == "" {
		return fmt.Errorf("token id is required")
	}
	if ttl <= 0 {
		return nil
	}
	return m.store.Set(ctx, m.keyer.RevokedTokenKey(tokenID), "1", ttl)
}

// IsRevoked reports whether tokenID was revoked and has not expired yet.
func (m *Manager) IsRevoked(ctx context.Context, tokenID string) (bool, error) {
	if strings.TrimSpace(tokenID) == "" {
		return false, fmt.Errorf("token id is required")
	}
	return m.store.Exists(ctx, m.keyer.RevokedTokenKey(tokenID))
}
