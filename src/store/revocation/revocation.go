package revocation

//go:generate mockgen -source=revocation.go -destination=../../mocks/revocation_mocks.go -package=mocks List

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/halalbiye/halalbiye-server/src/metrics"
	"github.com/redis/go-redis/v9"
)

// revokedTokenKeyPrefix namespaces revoked token ids in Redis.
const revokedTokenKeyPrefix = "trl:jti:"

// List records revoked token ids until the tokens would have expired anyway.
type List interface {
	Revoke(ctx context.Context, jti string, ttl time.Duration) error
	IsRevoked(ctx context.Context, jti string) (bool, error)
}

// RedisList shares revocations between server instances.
type RedisList struct {
	client *redis.Client
}

var _ List = (*RedisList)(nil)

func NewRedisList(client *redis.Client) *RedisList {
	return &RedisList{client: client}
}

// Revoke stores a marker for jti that expires after ttl.
// A non-positive ttl means the token is already expired and nothing is stored.
func (l *RedisList) Revoke(ctx context.Context, jti string, ttl time.Duration) error {
	if jti == "" || ttl <= 0 {
		return nil
	}
	return l.client.Set(ctx, revokedTokenKeyPrefix+jti, "1", ttl).Err()
}

func (l *RedisList) IsRevoked(ctx context.Context, jti string) (bool, error) {
	defer metrics.ObserveRevocationCheck(time.Now())

	if jti == "" {
		return false, nil
	}
	_, err := l.client.Get(ctx, revokedTokenKeyPrefix+jti).Result()
	if errors.Is(err, redis.Nil) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}

// MemoryList keeps revocations in process memory. Expired entries are
// dropped lazily on write.
type MemoryList struct {
	mu      sync.Mutex
	revoked map[string]time.Time
	now     func() time.Time
}

var _ List = (*MemoryList)(nil)

func NewMemoryList() *MemoryList {
	return &MemoryList{revoked: make(map[string]time.Time), now: time.Now}
}

func (l *MemoryList) Revoke(_ context.Context, jti string, ttl time.Duration) error {
	if jti == "" || ttl <= 0 {
		return nil
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	now := l.now()
	for id, exp := range l.revoked {
		if !now.Before(exp) {
			delete(l.revoked, id)
		}
	}
	l.revoked[jti] = now.Add(ttl)
	return nil
}

func (l *MemoryList) IsRevoked(_ context.Context, jti string) (bool, error) {
	defer metrics.ObserveRevocationCheck(time.Now())

	l.mu.Lock()
	defer l.mu.Unlock()

	exp, ok := l.revoked[jti]
	return ok && l.now().Before(exp), nil
}
