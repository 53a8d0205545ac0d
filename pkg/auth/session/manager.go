package session

import (
	"context"
	"crypto/rand"
	"crypto/subtle"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/procurehub/portal/pkg/config"
	"github.com/procurehub/portal/pkg/enums"
	redisclient "github.com/procurehub/portal/pkg/redis"
	redislib "github.com/redis/go-redis/v9"
)

const refreshTokenBytes = 32

var ErrInvalidRefreshToken = errors.New("invalid refresh token")

type sessionStore interface {
	Set(ctx context.Context, key string, value any, ttl time.Duration) error
	Get(ctx context.Context, key string) (string, error)
	Del(ctx context.Context, keys ...string) error
}

type sessionKeyer interface {
	AccessSessionKey(accessID string) string
}

// Principal is the identity a refresh session re-issues access tokens for.
type Principal struct {
	UserID uuid.UUID  `json:"user_id"`
	Role   enums.Role `json:"role"`
}

type record struct {
	RefreshToken string `json:"refresh_token"`
	Principal
}

// Rotation is the result of exchanging a refresh token.
type Rotation struct {
	AccessID     string
	RefreshToken string
	Principal    Principal
}

// Manager handles refresh token creation, storage, and rotation.
type Manager struct {
	store sessionStore
	keyer sessionKeyer
	ttl   time.Duration
}

// AccessSessionChecker exposes the read-only surface needed by middleware.
type AccessSessionChecker interface {
	HasSession(ctx context.Context, accessID string) (bool, error)
}

// NewManager constructs a session manager backed by Redis.
func NewManager(client *redisclient.Client, cfg config.JWTConfig) (*Manager, error) {
	if client == nil {
		return nil, fmt.Errorf("redis client is required")
	}
	ttl := cfg.RefreshTokenTTL()
	if ttl <= 0 {
		return nil, fmt.Errorf("refresh token ttl must be positive")
	}
	accessTTL := cfg.AccessTokenTTL()
	if ttl <= accessTTL {
		return nil, fmt.Errorf("refresh token ttl (%s) must exceed access token ttl (%s)", ttl, accessTTL)
	}

	return &Manager{
		store: client,
		keyer: client,
		ttl:   ttl,
	}, nil
}

// Generate creates a refresh token for the access ID and stores it with the principal.
func (m *Manager) Generate(ctx context.Context, accessID string, principal Principal) (string, error) {
	if strings.TrimSpace(accessID) == "" {
		return "", fmt.Errorf("access id is required")
	}
	if principal.UserID == uuid.Nil || !principal.Role.IsValid() {
		return "", fmt.Errorf("session principal is incomplete")
	}
	token, err := generateRefreshToken()
	if err != nil {
		return "", err
	}
	if err := m.put(ctx, accessID, record{RefreshToken: token, Principal: principal}); err != nil {
		return "", err
	}
	return token, nil
}

// Rotate validates the provided refresh token, invalidates the prior session,
// and issues a new access id / refresh token pair for the same principal.
func (m *Manager) Rotate(ctx context.Context, oldAccessID, provided string) (Rotation, error) {
	if strings.TrimSpace(oldAccessID) == "" || strings.TrimSpace(provided) == "" {
		return Rotation{}, ErrInvalidRefreshToken
	}

	key := m.keyer.AccessSessionKey(oldAccessID)
	stored, err := m.load(ctx, key)
	if err != nil {
		return Rotation{}, err
	}
	if subtle.ConstantTimeCompare([]byte(stored.RefreshToken), []byte(provided)) != 1 {
		return Rotation{}, ErrInvalidRefreshToken
	}

	newAccessID := NewAccessID()
	newToken, err := generateRefreshToken()
	if err != nil {
		return Rotation{}, err
	}
	if err := m.put(ctx, newAccessID, record{RefreshToken: newToken, Principal: stored.Principal}); err != nil {
		return Rotation{}, err
	}
	if err := m.store.Del(ctx, key); err != nil {
		return Rotation{}, err
	}

	return Rotation{AccessID: newAccessID, RefreshToken: newToken, Principal: stored.Principal}, nil
}

// Revoke deletes the refresh mapping tied to the access identifier.
func (m *Manager) Revoke(ctx context.Context, accessID string) error {
	if strings.TrimSpace(accessID) == "" {
		return fmt.Errorf("access id is required")
	}
	return m.store.Del(ctx, m.keyer.AccessSessionKey(accessID))
}

// HasSession reports whether the provided access ID still has an active refresh session.
func (m *Manager) HasSession(ctx context.Context, accessID string) (bool, error) {
	if strings.TrimSpace(accessID) == "" {
		return false, fmt.Errorf("access id is required")
	}
	if _, err := m.store.Get(ctx, m.keyer.AccessSessionKey(accessID)); err != nil {
		if errors.Is(err, redislib.Nil) {
			return false, nil
		}
		return false, err
	}
	return true, nil
}

// NewAccessID produces a stable identifier used as the JWT jti/Redis key.
func NewAccessID() string {
	return uuid.NewString()
}

func (m *Manager) put(ctx context.Context, accessID string, rec record) error {
	payload, err := json.Marshal(rec)
	if err != nil {
		return fmt.Errorf("encoding session: %w", err)
	}
	return m.store.Set(ctx, m.keyer.AccessSessionKey(accessID), string(payload), m.ttl)
}

func (m *Manager) load(ctx context.Context, key string) (record, error) {
	raw, err := m.store.Get(ctx, key)
	if err != nil {
		if errors.Is(err, redislib.Nil) {
			return record{}, ErrInvalidRefreshToken
		}
		return record{}, err
	}
	var rec record
	if err := json.Unmarshal([]byte(raw), &rec); err != nil {
		return record{}, ErrInvalidRefreshToken
	}
	return rec, nil
}

func generateRefreshToken() (string, error) {
	bytes := make([]byte, refreshTokenBytes)
	if _, err := rand.Read(bytes); err != nil {
		return "", fmt.Errorf("generating refresh token: %w", err)
	}
	return base64.RawURLEncoding.EncodeToString(bytes), nil
}
