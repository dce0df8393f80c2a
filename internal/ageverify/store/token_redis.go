package store

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/goccy/go-json"
	"github.com/redis/go-redis/v9"

	"contentgw/internal/ageverify/models"
	"contentgw/pkg/platform/sentinel"
)

const (
	tokenKeyPrefix    = "contentgw:agetoken:v:"
	identityKeyPrefix = "contentgw:agetoken:i:"
)

// dropPointerScript deletes the identity pointer only while it still names
// the taken token, so a newer token issued to the same identity survives.
// Every command touches a single key, which keeps the store usable on
// Redis Cluster.
var dropPointerScript = redis.NewScript(`
if redis.call("GET", KEYS[1]) == ARGV[1] then
	return redis.call("DEL", KEYS[1])
end
return 0
`)

// RedisTokenStore shares pending tokens across replicas. Keys expire natively
// after the token's lifetime plus the retention period.
type RedisTokenStore struct {
	client    redis.UniversalClient
	retention time.Duration
	clock     func() time.Time
}

func NewRedisTokenStore(client redis.UniversalClient, retention time.Duration) *RedisTokenStore {
	return &RedisTokenStore{client: client, retention: retention, clock: time.Now}
}

func (s *RedisTokenStore) Create(ctx context.Context, token *models.Token) error {
	if token == nil || token.Value == "" {
		return fmt.Errorf("token value is required")
	}
	raw, err := json.Marshal(token)
	if err != nil {
		return fmt.Errorf("encode token: %w", err)
	}
	keep := token.ExpiresAt.Sub(s.clock()) + s.retention
	if keep <= 0 {
		keep = time.Second
	}
	pipe := s.client.TxPipeline()
	pipe.Set(ctx, tokenKeyPrefix+token.Value, raw, keep)
	pipe.Set(ctx, identityKeyPrefix+token.Identity, token.Value, keep)
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("redis store token: %w", err)
	}
	return nil
}

func (s *RedisTokenStore) FindLive(ctx context.Context, identity string, now time.Time) (*models.Token, error) {
	value, err := s.client.Get(ctx, identityKeyPrefix+identity).Result()
	if errors.Is(err, redis.Nil) {
		return nil, fmt.Errorf("token for identity: %w", sentinel.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("redis get identity token: %w", err)
	}
	raw, err := s.client.Get(ctx, tokenKeyPrefix+value).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, fmt.Errorf("live token for identity: %w", sentinel.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("redis get token: %w", err)
	}
	token, err := decodeToken(raw)
	if err != nil {
		return nil, err
	}
	if token.Expired(now) {
		return nil, fmt.Errorf("live token for identity: %w", sentinel.ErrNotFound)
	}
	return token, nil
}

// Take consumes the token with GETDEL, which is what makes it single use.
// Clearing the identity pointer afterwards is best effort: a pointer left
// behind names a token key that no longer exists, which FindLive already
// reports as not found.
func (s *RedisTokenStore) Take(ctx context.Context, value string) (*models.Token, error) {
	raw, err := s.client.GetDel(ctx, tokenKeyPrefix+value).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, fmt.Errorf("token: %w", sentinel.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("redis take token: %w", err)
	}
	token, err := decodeToken(raw)
	if err != nil {
		return nil, err
	}
	_ = dropPointerScript.Run(ctx, s.client, []string{identityKeyPrefix + token.Identity}, token.Value).Err()
	return token, nil
}

func decodeToken(raw []byte) (*models.Token, error) {
	var token models.Token
	if err := json.Unmarshal(raw, &token); err != nil {
		return nil, fmt.Errorf("decode token: %w", err)
	}
	return &token, nil
}
