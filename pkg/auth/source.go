package auth

import (
	"context"
	"errors"
	"net/http"
	"sync"
	"time"

	"github.com/raywall/semaphore-tagger/pkg/outbound"
)

// TokenSource é o contrato get_token: devolve um bearer token válido.
type TokenSource interface {
	Token(ctx context.Context) (string, error)
}

// Invalidator é implementado pelas fontes que guardam o token entre chamadas.
type Invalidator interface {
	Invalidate(ctx context.Context)
}

// InvalidateOnUnauthorized descarta o token guardado por src quando err é um
// 401 do fornecedor. A chamada que falhou não é repetida.
func InvalidateOnUnauthorized(ctx context.Context, src TokenSource, err error) bool {
	var te *outbound.TransportError
	if !errors.As(err, &te) || te.StatusCode != http.StatusUnauthorized {
		return false
	}
	inv, ok := src.(Invalidator)
	if !ok {
		return false
	}
	inv.Invalidate(ctx)
	return true
}

// Direct busca um token novo a cada chamada, sem cache.
type Direct struct {
	fetcher TokenFetcher
}

func NewDirect(fetcher TokenFetcher) *Direct {
	return &Direct{fetcher: fetcher}
}

func (d *Direct) Token(ctx context.Context) (string, error) {
	token, _, err := d.fetcher(ctx)
	return token, err
}

// Cache guarda o token em memória até 80% da validade.
// Seguro para uso concorrente; a renovação é preguiçosa (na próxima chamada).
type Cache struct {
	fetcher    TokenFetcher
	fallback   time.Duration
	now        func() time.Time
	mu         sync.RWMutex
	token      string
	expiresAt  time.Time
	refreshing sync.Mutex
}

// NewCache cria o cache. fallbackTTL vale quando o provedor não informa expires_in.
func NewCache(fetcher TokenFetcher, fallbackTTL time.Duration) *Cache {
	return &Cache{
		fetcher:  fetcher,
		fallback: fallbackTTL,
		now:      time.Now,
	}
}

func (c *Cache) Token(ctx context.Context) (string, error) {
	if token, ok := c.current(); ok {
		return token, nil
	}

	// Apenas uma renovação por vez; quem esperou reaproveita o resultado
	c.refreshing.Lock()
	defer c.refreshing.Unlock()

	if token, ok := c.current(); ok {
		return token, nil
	}

	token, ttl, err := c.fetcher(ctx)
	if err != nil {
		return "", err
	}

	c.mu.Lock()
	c.token = token
	c.expiresAt = c.now().Add(calculateWait(ttl, c.fallback))
	c.mu.Unlock()

	return token, nil
}

// Invalidate descarta o token (ex: após um 401 do fornecedor).
func (c *Cache) Invalidate(_ context.Context) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.token = ""
	c.expiresAt = time.Time{}
}

func (c *Cache) current() (string, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if c.token == "" || !c.now().Before(c.expiresAt) {
		return "", false
	}
	return c.token, true
}

func calculateWait(ttl, fallback time.Duration) time.Duration {
	// Renova quando passar 80% do tempo de vida (margem de segurança)
	if ttl <= 0 {
		ttl = fallback
	}
	if ttl <= 0 {
		ttl = 5 * time.Minute
	}
	return time.Duration(float64(ttl) * 0.8)
}

// PerOperation memoriza o primeiro token obtido, para que uma operação lógica
// (um analyze ou search) faça no máximo uma busca de token.
func PerOperation(src TokenSource) TokenSource {
	return &onceSource{src: src}
}

type onceSource struct {
	src   TokenSource
	mu    sync.Mutex
	token string
}

func (o *onceSource) Token(ctx context.Context) (string, error) {
	o.mu.Lock()
	defer o.mu.Unlock()

	if o.token != "" {
		return o.token, nil
	}
	token, err := o.src.Token(ctx)
	if err != nil {
		return "", err
	}
	o.token = token
	return token, nil
}

// Invalidate esquece o token da operação e repassa para a fonte de origem.
func (o *onceSource) Invalidate(ctx context.Context) {
	o.mu.Lock()
	o.token = ""
	o.mu.Unlock()

	if inv, ok := o.src.(Invalidator); ok {
		inv.Invalidate(ctx)
	}
}
