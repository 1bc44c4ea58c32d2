package auth

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"sync"
	"testing"
	"time"

	"github.com/raywall/semaphore-tagger/pkg/config"
	"github.com/raywall/semaphore-tagger/pkg/outbound"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// countingFetcher simula o endpoint de token contando as chamadas
func countingFetcher(ttl time.Duration, err error) (TokenFetcher, *int) {
	count := 0
	var mu sync.Mutex
	return func(ctx context.Context) (string, time.Duration, error) {
		mu.Lock()
		defer mu.Unlock()
		count++
		if err != nil {
			return "", 0, err
		}
		return fmt.Sprintf("token-%d", count), ttl, nil
	}, &count
}

func TestDirect(t *testing.T) {
	fetcher, count := countingFetcher(time.Hour, nil)
	src := NewDirect(fetcher)

	t1, err := src.Token(context.Background())
	require.NoError(t, err)
	t2, err := src.Token(context.Background())
	require.NoError(t, err)

	assert.Equal(t, "token-1", t1)
	assert.Equal(t, "token-2", t2)
	assert.Equal(t, 2, *count)
}

func TestCache(t *testing.T) {
	t.Run("Deve reutilizar token dentro da validade", func(t *testing.T) {
		fetcher, count := countingFetcher(10*time.Minute, nil)
		cache := NewCache(fetcher, time.Minute)
		now := time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)
		cache.now = func() time.Time { return now }

		t1, _ := cache.Token(context.Background())
		now = now.Add(7 * time.Minute)
		t2, _ := cache.Token(context.Background())

		assert.Equal(t, t1, t2)
		assert.Equal(t, 1, *count)

		// 80% de 10 minutos = 8 minutos
		now = now.Add(time.Minute)
		t3, _ := cache.Token(context.Background())
		assert.Equal(t, "token-2", t3)
		assert.Equal(t, 2, *count)
	})

	t.Run("Deve usar TTL de fallback sem expires_in", func(t *testing.T) {
		fetcher, count := countingFetcher(0, nil)
		cache := NewCache(fetcher, 10*time.Second)
		now := time.Now()
		cache.now = func() time.Time { return now }

		cache.Token(context.Background())
		now = now.Add(9 * time.Second)
		cache.Token(context.Background())

		assert.Equal(t, 2, *count)
	})

	t.Run("Invalidate força nova busca", func(t *testing.T) {
		fetcher, count := countingFetcher(time.Hour, nil)
		cache := NewCache(fetcher, 0)

		cache.Token(context.Background())
		cache.Invalidate(context.Background())
		token, err := cache.Token(context.Background())

		require.NoError(t, err)
		assert.Equal(t, "token-2", token)
		assert.Equal(t, 2, *count)
	})

	t.Run("Erro não é armazenado", func(t *testing.T) {
		fetcher, _ := countingFetcher(0, errors.New("down"))
		cache := NewCache(fetcher, time.Minute)

		_, err := cache.Token(context.Background())
		assert.Error(t, err)
		assert.Empty(t, cache.token)
	})

	t.Run("Chamadas concorrentes fazem uma única busca", func(t *testing.T) {
		fetcher, count := countingFetcher(time.Hour, nil)
		cache := NewCache(fetcher, 0)

		var wg sync.WaitGroup
		for i := 0; i < 20; i++ {
			wg.Add(1)
			go func() {
				defer wg.Done()
				cache.Token(context.Background())
			}()
		}
		wg.Wait()

		assert.Equal(t, 1, *count)
	})
}

func TestPerOperation(t *testing.T) {
	fetcher, count := countingFetcher(0, nil)
	op := PerOperation(NewDirect(fetcher))

	for i := 0; i < 5; i++ {
		token, err := op.Token(context.Background())
		require.NoError(t, err)
		assert.Equal(t, "token-1", token)
	}
	assert.Equal(t, 1, *count)

	failing, _ := countingFetcher(0, errors.New("down"))
	_, err := PerOperation(NewDirect(failing)).Token(context.Background())
	assert.Error(t, err)
}

// --- Redis ---

type MockRedis struct {
	values map[string]string
	ttls   map[string]time.Duration
	getErr error
}

func (m *MockRedis) Get(ctx context.Context, key string) *redis.StringCmd {
	if m.getErr != nil {
		return redis.NewStringResult("", m.getErr)
	}
	v, ok := m.values[key]
	if !ok {
		return redis.NewStringResult("", redis.Nil)
	}
	return redis.NewStringResult(v, nil)
}

func (m *MockRedis) Set(ctx context.Context, key string, value interface{}, expiration time.Duration) *redis.StatusCmd {
	m.values[key] = value.(string)
	m.ttls[key] = expiration
	return redis.NewStatusResult("OK", nil)
}

func (m *MockRedis) Del(ctx context.Context, keys ...string) *redis.IntCmd {
	var n int64
	for _, k := range keys {
		if _, ok := m.values[k]; ok {
			delete(m.values, k)
			n++
		}
	}
	return redis.NewIntResult(n, nil)
}

func TestRedisCache(t *testing.T) {
	t.Run("Miss busca e grava com TTL", func(t *testing.T) {
		mock := &MockRedis{values: map[string]string{}, ttls: map[string]time.Duration{}}
		fetcher, count := countingFetcher(100*time.Second, nil)
		cache := NewRedisCache(mock, "semaphore:token", fetcher, time.Minute)

		token, err := cache.Token(context.Background())
		require.NoError(t, err)
		assert.Equal(t, "token-1", token)
		assert.Equal(t, "token-1", mock.values["semaphore:token"])
		assert.Equal(t, 80*time.Second, mock.ttls["semaphore:token"])

		token, _ = cache.Token(context.Background())
		assert.Equal(t, "token-1", token)
		assert.Equal(t, 1, *count)
	})

	t.Run("Invalidate remove a chave compartilhada", func(t *testing.T) {
		mock := &MockRedis{values: map[string]string{}, ttls: map[string]time.Duration{}}
		fetcher, count := countingFetcher(time.Hour, nil)
		cache := NewRedisCache(mock, "k", fetcher, 0)

		cache.Token(context.Background())
		cache.Invalidate(context.Background())
		assert.NotContains(t, mock.values, "k")

		token, err := cache.Token(context.Background())
		require.NoError(t, err)
		assert.Equal(t, "token-2", token)
		assert.Equal(t, 2, *count)
	})

	t.Run("Erro no Redis busca direto no provedor", func(t *testing.T) {
		mock := &MockRedis{values: map[string]string{}, ttls: map[string]time.Duration{}, getErr: errors.New("redis down")}
		fetcher, count := countingFetcher(time.Minute, nil)
		cache := NewRedisCache(mock, "k", fetcher, 0)

		token, err := cache.Token(context.Background())
		require.NoError(t, err)
		assert.Equal(t, "token-1", token)
		assert.Equal(t, 1, *count)
	})
}

func TestInvalidateOnUnauthorized(t *testing.T) {
	unauthorized := fmt.Errorf("classify: %w", &outbound.TransportError{Method: "POST", URL: "http://x", StatusCode: http.StatusUnauthorized})

	t.Run("Deve descartar o token do cache em um 401", func(t *testing.T) {
		fetcher, count := countingFetcher(time.Hour, nil)
		cache := NewCache(fetcher, 0)
		cache.Token(context.Background())

		assert.True(t, InvalidateOnUnauthorized(context.Background(), cache, unauthorized))

		token, _ := cache.Token(context.Background())
		assert.Equal(t, "token-2", token)
		assert.Equal(t, 2, *count)
	})

	t.Run("Deve repassar pela fonte da operação", func(t *testing.T) {
		fetcher, count := countingFetcher(time.Hour, nil)
		cache := NewCache(fetcher, 0)
		op := PerOperation(cache)
		op.Token(context.Background())

		assert.True(t, InvalidateOnUnauthorized(context.Background(), op, unauthorized))

		token, _ := op.Token(context.Background())
		assert.Equal(t, "token-2", token)
		assert.Equal(t, 2, *count)
	})

	t.Run("Deve ignorar outros erros e fontes sem cache", func(t *testing.T) {
		fetcher, count := countingFetcher(time.Hour, nil)
		cache := NewCache(fetcher, 0)
		cache.Token(context.Background())

		serverErr := &outbound.TransportError{StatusCode: http.StatusInternalServerError}
		assert.False(t, InvalidateOnUnauthorized(context.Background(), cache, serverErr))
		assert.False(t, InvalidateOnUnauthorized(context.Background(), cache, errors.New("timeout")))
		assert.False(t, InvalidateOnUnauthorized(context.Background(), NewDirect(fetcher), unauthorized))

		cache.Token(context.Background())
		assert.Equal(t, 1, *count)
	})
}

func TestNewSource(t *testing.T) {
	fetcher, _ := countingFetcher(0, nil)

	src, err := NewSource(config.TokenConf{Cache: "none"}, fetcher)
	require.NoError(t, err)
	assert.IsType(t, &Direct{}, src)

	src, err = NewSource(config.TokenConf{Cache: "memory", TTL: time.Minute}, fetcher)
	require.NoError(t, err)
	assert.IsType(t, &Cache{}, src)

	src, err = NewSource(config.TokenConf{Cache: "redis", RedisAddr: "localhost:6379"}, fetcher)
	require.NoError(t, err)
	assert.IsType(t, &RedisCache{}, src)

	_, err = NewSource(config.TokenConf{Cache: "redis"}, fetcher)
	assert.Error(t, err)

	_, err = NewSource(config.TokenConf{Cache: "disk"}, fetcher)
	assert.Error(t, err)
}
