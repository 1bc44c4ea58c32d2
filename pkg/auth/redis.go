package auth

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/raywall/semaphore-tagger/pkg/config"
	"github.com/redis/go-redis/v9"
)

// RedisClient é o subconjunto do go-redis usado pelo cache (permite mocking).
type RedisClient interface {
	Get(ctx context.Context, key string) *redis.StringCmd
	Set(ctx context.Context, key string, value interface{}, expiration time.Duration) *redis.StatusCmd
	Del(ctx context.Context, keys ...string) *redis.IntCmd
}

// RedisCache compartilha o token entre réplicas via Redis.
// Erros do Redis não impedem a operação: o token é buscado direto no provedor.
type RedisCache struct {
	client   RedisClient
	key      string
	fetcher  TokenFetcher
	fallback time.Duration
}

func NewRedisCache(client RedisClient, key string, fetcher TokenFetcher, fallbackTTL time.Duration) *RedisCache {
	return &RedisCache{client: client, key: key, fetcher: fetcher, fallback: fallbackTTL}
}

func (r *RedisCache) Token(ctx context.Context) (string, error) {
	cached, err := r.client.Get(ctx, r.key).Result()
	if err == nil && cached != "" {
		return cached, nil
	}

	token, ttl, err := r.fetcher(ctx)
	if err != nil {
		return "", err
	}

	// Falha ao gravar só custa uma nova busca na próxima chamada
	_ = r.client.Set(ctx, r.key, token, calculateWait(ttl, r.fallback)).Err()

	return token, nil
}

// Invalidate remove o token compartilhado, forçando todas as réplicas a buscar outro.
func (r *RedisCache) Invalidate(ctx context.Context) {
	_ = r.client.Del(ctx, r.key).Err()
}

// NewSource monta a estratégia de token configurada (none, memory ou redis).
func NewSource(cfg config.TokenConf, fetcher TokenFetcher) (TokenSource, error) {
	switch cfg.Cache {
	case "", "none":
		return NewDirect(fetcher), nil
	case "memory":
		return NewCache(fetcher, cfg.TTL), nil
	case "redis":
		if cfg.RedisAddr == "" {
			return nil, errors.New("auth: cache redis exige SEMAPHORE_REDIS_ADDR")
		}
		client := redis.NewClient(&redis.Options{
			Addr:     cfg.RedisAddr,
			Password: cfg.RedisPassword,
			DB:       0,
		})
		key := cfg.RedisKey
		if key == "" {
			key = "semaphore:access_token"
		}
		return NewRedisCache(client, key, fetcher, cfg.TTL), nil
	default:
		return nil, fmt.Errorf("auth: estratégia de cache desconhecida: %s", cfg.Cache)
	}
}
