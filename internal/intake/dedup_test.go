package intake

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"nexusq/internal/config"
	"nexusq/internal/logger"
)

type memoryClaims struct {
	mu   sync.Mutex
	keys map[string]interface{}
	ttl  time.Duration
	err  error
}

func newMemoryClaims() *memoryClaims {
	return &memoryClaims{keys: map[string]interface{}{}}
}

func (m *memoryClaims) SetNX(_ context.Context, key string, value interface{}, ttl time.Duration) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return false, m.err
	}
	m.ttl = ttl
	if _, ok := m.keys[key]; ok {
		return false, nil
	}
	m.keys[key] = value
	return true, nil
}

func (m *memoryClaims) Del(_ context.Context, key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.keys, key)
	return m.err
}

func TestHash(t *testing.T) {
	data := map[string]interface{}{"service": "hvac", "phone": "+263771840862"}

	a, err := Hash("sha256", data, []string{"service", "phone"})
	require.NoError(t, err)
	assert.Len(t, a, 64)

	b, err := Hash("md5", data, []string{"service", "phone"})
	require.NoError(t, err)
	assert.Len(t, b, 32)

	c, err := Hash("sha256", data, []string{"phone", "service"})
	require.NoError(t, err)
	assert.NotEqual(t, a, c, "field order matters")

	_, err = Hash("sha256", data, nil)
	assert.Error(t, err)
}

func TestGuard_Claim(t *testing.T) {
	repo := newMemoryClaims()
	g := NewGuard(repo, config.DedupConfig{Enabled: true, HashAlgorithm: "sha256"}, logger.NopLogger())
	p := Payload{Service: "plumbing", Phone: "+263771840862", Address: "1 Main St", ReferenceID: "QX-AAAA-BBBB"}

	key, fresh, err := g.Claim(context.Background(), p)
	require.NoError(t, err)
	assert.True(t, fresh)
	assert.Contains(t, key, "intake:")
	assert.Equal(t, time.Hour, repo.ttl)

	p.ReferenceID = "QX-CCCC-DDDD"
	_, fresh, err = g.Claim(context.Background(), p)
	require.NoError(t, err)
	assert.False(t, fresh, "same fields, new reference id is still a duplicate")

	g.Release(context.Background(), key)
	_, fresh, _ = g.Claim(context.Background(), p)
	assert.True(t, fresh)
}

func TestGuard_RedisErrorFallback(t *testing.T) {
	repo := newMemoryClaims()
	repo.err = errors.New("connection refused")

	allow := NewGuard(repo, config.DedupConfig{OnRedisError: "allow"}, logger.NopLogger())
	key, fresh, err := allow.Claim(context.Background(), Payload{Service: "hvac"})
	require.NoError(t, err)
	assert.True(t, fresh)
	assert.Empty(t, key)

	deny := NewGuard(repo, config.DedupConfig{OnRedisError: "deny"}, logger.NopLogger())
	_, _, err = deny.Claim(context.Background(), Payload{Service: "hvac"})
	assert.ErrorContains(t, err, "connection refused")
}

func TestBreakerClaimRepository_Disabled(t *testing.T) {
	repo := NewBreakerClaimRepository(newMemoryClaims(), config.CircuitBreakerConfig{})

	ok, err := repo.SetNX(context.Background(), "k", "v", time.Minute)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.NoError(t, repo.Del(context.Background(), "k"))
}
