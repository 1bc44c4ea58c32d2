package outbound

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net"
	"net/http"
	"strings"
	"time"

	"github.com/raywall/semaphore-tagger/pkg/config"
	"github.com/raywall/semaphore-tagger/pkg/logger"
	"github.com/rs/zerolog"
)

// Doer permite mockar o cliente HTTP nos testes.
type Doer interface {
	Do(req *http.Request) (*http.Response, error)
}

// Request descreve uma chamada ao fornecedor.
type Request struct {
	Method  string
	URL     string
	Body    []byte
	Headers map[string]string
}

// Response representa a resposta do fornecedor.
type Response struct {
	StatusCode int
	Headers    map[string]string
	Body       []byte
}

// Client executa as chamadas ao Semaphore com timeout uniforme.
// Substitui a sessão global: cada serviço recebe sua instância.
type Client struct {
	doer      Doer
	timeout   time.Duration
	userAgent string
	logger    zerolog.Logger
}

// NewHTTPClient cria um *http.Client com timeout de conexão e de leitura separados.
// O pool de conexões do Transport é compartilhado por todas as chamadas.
func NewHTTPClient(cfg config.HTTPConf) *http.Client {
	dialer := &net.Dialer{Timeout: cfg.ConnectTimeout, KeepAlive: 30 * time.Second}
	transport := &http.Transport{
		Proxy:                 http.ProxyFromEnvironment,
		DialContext:           dialer.DialContext,
		TLSHandshakeTimeout:   cfg.ConnectTimeout,
		ResponseHeaderTimeout: cfg.ReadTimeout,
		MaxIdleConnsPerHost:   10,
		IdleConnTimeout:       90 * time.Second,
	}
	return &http.Client{
		Transport: transport,
		Timeout:   cfg.ConnectTimeout + cfg.ReadTimeout,
	}
}

// New cria o Client. doer == nil usa NewHTTPClient(cfg).
func New(cfg config.HTTPConf, doer Doer, log zerolog.Logger) *Client {
	if doer == nil {
		doer = NewHTTPClient(cfg)
	}
	ua := cfg.UserAgent
	if ua == "" {
		ua = "SemaphoreTagger/1.0"
	}
	return &Client{
		doer:      doer,
		timeout:   cfg.ConnectTimeout + cfg.ReadTimeout,
		userAgent: ua,
		logger:    log,
	}
}

// Do envia a requisição e lê a resposta inteira.
// Falhas de rede e status fora de 2xx viram *TransportError.
func (c *Client) Do(ctx context.Context, r Request) (*Response, error) {
	reqCtx := ctx
	if c.timeout > 0 {
		var cancel context.CancelFunc
		reqCtx, cancel = context.WithTimeout(ctx, c.timeout)
		defer cancel()
	}

	method := strings.ToUpper(r.Method)
	if method == "" {
		method = http.MethodGet
	}

	var body io.Reader
	if r.Body != nil {
		body = bytes.NewReader(r.Body)
	}

	req, err := http.NewRequestWithContext(reqCtx, method, r.URL, body)
	if err != nil {
		return nil, &TransportError{Method: method, URL: r.URL, Err: fmt.Errorf("erro ao criar request: %w", err)}
	}

	req.Header.Set("User-Agent", c.userAgent)
	for k, v := range r.Headers {
		req.Header.Set(k, v)
	}

	c.logger.Debug().
		Str("method", method).
		Str("url", r.URL).
		Interface("headers", logger.RedactHeaders(req.Header)).
		Msg("chamada ao semaphore")

	start := time.Now()
	resp, err := c.doer.Do(req)
	if err != nil {
		return nil, &TransportError{Method: method, URL: r.URL, Err: err}
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, &TransportError{Method: method, URL: r.URL, StatusCode: resp.StatusCode, Err: fmt.Errorf("erro ao ler resposta: %w", err)}
	}

	respHeaders := make(map[string]string)
	for k, v := range resp.Header {
		if len(v) > 0 {
			respHeaders[k] = v[0]
		}
	}

	c.logger.Debug().
		Str("url", r.URL).
		Int("status", resp.StatusCode).
		Int64("latency_ms", time.Since(start).Milliseconds()).
		Msg("resposta do semaphore")

	out := &Response{StatusCode: resp.StatusCode, Headers: respHeaders, Body: respBody}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return out, &TransportError{Method: method, URL: r.URL, StatusCode: resp.StatusCode, Body: truncate(respBody, 512)}
	}
	return out, nil
}

func truncate(b []byte, n int) string {
	if len(b) <= n {
		return string(b)
	}
	return string(b[:n]) + "..."
}
