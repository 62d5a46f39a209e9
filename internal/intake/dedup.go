package intake

import (
	"context"
	"crypto/md5"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"

	"nexusq/internal/config"
	"nexusq/internal/constants"
	"nexusq/internal/logger"
	"nexusq/pkg/circuitbreaker"
	"nexusq/pkg/metrics"
)

var defaultDedupFields = []string{"service", "phone", "address"}

type ClaimRepository interface {
	SetNX(ctx context.Context, key string, value interface{}, ttl time.Duration) (bool, error)
	Del(ctx context.Context, key string) error
}

type RedisClaimRepository struct {
	client *redis.Client
}

func NewRedisClaimRepository(client *redis.Client) *RedisClaimRepository {
	return &RedisClaimRepository{client: client}
}

func (r *RedisClaimRepository) SetNX(ctx context.Context, key string, value interface{}, ttl time.Duration) (bool, error) {
	ok, err := r.client.SetNX(ctx, key, value, ttl).Result()
	if err != nil {
		return false, fmt.Errorf("redis SetNX failed: %w", err)
	}
	return ok, nil
}

func (r *RedisClaimRepository) Del(ctx context.Context, key string) error {
	if err := r.client.Del(ctx, key).Err(); err != nil {
		return fmt.Errorf("redis Del failed: %w", err)
	}
	return nil
}

// BreakerClaimRepository short-circuits Redis calls while the breaker is open.
type BreakerClaimRepository struct {
	repo ClaimRepository
	cb   *circuitbreaker.Wrapper
}

func NewBreakerClaimRepository(repo ClaimRepository, cfg config.CircuitBreakerConfig) *BreakerClaimRepository {
	return &BreakerClaimRepository{
		repo: repo,
		cb:   circuitbreaker.FromSettings("redis-intake-dedup", cfg),
	}
}

func (r *BreakerClaimRepository) SetNX(ctx context.Context, key string, value interface{}, ttl time.Duration) (bool, error) {
	return circuitbreaker.Do(ctx, r.cb, func() (bool, error) {
		return r.repo.SetNX(ctx, key, value, ttl)
	})
}

func (r *BreakerClaimRepository) Del(ctx context.Context, key string) error {
	_, err := circuitbreaker.Do(ctx, r.cb, func() (struct{}, error) {
		return struct{}{}, r.repo.Del(ctx, key)
	})
	return err
}

// Hash builds a digest over fields in the given order. Missing fields hash as empty.
func Hash(algorithm string, data map[string]interface{}, fields []string) (string, error) {
	if len(fields) == 0 {
		return "", fmt.Errorf("no fields specified for hashing")
	}

	var b strings.Builder
	for _, field := range fields {
		val, ok := data[field]
		if !ok {
			val = ""
		}
		fmt.Fprintf(&b, "%v|", val)
	}

	switch algorithm {
	case "sha256":
		sum := sha256.Sum256([]byte(b.String()))
		return hex.EncodeToString(sum[:]), nil
	default:
		sum := md5.Sum([]byte(b.String()))
		return hex.EncodeToString(sum[:]), nil
	}
}

// Guard claims a key per distinct submission so repeats within the TTL are rejected.
type Guard struct {
	repo   ClaimRepository
	cfg    config.DedupConfig
	fields []string
	logger logger.Logger
}

func NewGuard(repo ClaimRepository, cfg config.DedupConfig, log logger.Logger) *Guard {
	fields := cfg.FieldsToHash
	if len(fields) == 0 {
		fields = defaultDedupFields
	}
	if cfg.TTLSeconds <= 0 {
		cfg.TTLSeconds = constants.DefaultTTLSeconds
	}
	return &Guard{
		repo:   repo,
		cfg:    cfg,
		fields: fields,
		logger: log,
	}
}

// Claim returns the claimed key and whether the submission is new. On Redis errors
// the configured fallback decides: allow lets the submission through unclaimed.
func (g *Guard) Claim(ctx context.Context, p Payload) (string, bool, error) {
	hash, err := Hash(g.cfg.HashAlgorithm, p.fields(), g.fields)
	if err != nil {
		return "", false, err
	}
	key := constants.CacheKeyPrefixIntake + hash

	start := time.Now()
	ok, err := g.repo.SetNX(ctx, key, p.ReferenceID, time.Duration(g.cfg.TTLSeconds)*time.Second)
	duration := time.Since(start)

	if err != nil {
		metrics.ObserveIntakeDedup(duration, "error")
		if g.cfg.OnRedisError == constants.FallbackDeny {
			metrics.FallbackUsageTotal.WithLabelValues("intake_dedup", "deny_on_error", "redis_error").Inc()
			return "", false, fmt.Errorf("redis error during duplicate check: %w", err)
		}
		metrics.FallbackUsageTotal.WithLabelValues("intake_dedup", "allow_on_error", "redis_error").Inc()
		g.logger.WarnwCtx(ctx, "Redis error during duplicate check, allowing submission", "error", err)
		return "", true, nil
	}

	if ok {
		metrics.ObserveIntakeDedup(duration, "unique")
	} else {
		metrics.ObserveIntakeDedup(duration, "duplicate")
	}
	return key, ok, nil
}

// Release drops a claim so a failed submission can be retried.
func (g *Guard) Release(ctx context.Context, key string) {
	if key == "" {
		return
	}
	if err := g.repo.Del(ctx, key); err != nil {
		g.logger.WarnwCtx(ctx, "Failed to release duplicate claim", "key", key, "error", err)
	}
}
