// Package engine monta o adaptador a partir da configuração: logger, métricas,
// transporte, estratégia de token, filtro de tags, Service e formatter.
package engine

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/raywall/semaphore-tagger/pkg/auth"
	"github.com/raywall/semaphore-tagger/pkg/config"
	"github.com/raywall/semaphore-tagger/pkg/formatter"
	"github.com/raywall/semaphore-tagger/pkg/logger"
	"github.com/raywall/semaphore-tagger/pkg/metrics"
	"github.com/raywall/semaphore-tagger/pkg/outbound"
	"github.com/raywall/semaphore-tagger/pkg/rules"
	"github.com/raywall/semaphore-tagger/pkg/semaphore"
	"github.com/rs/zerolog"
)

// Engine agrupa os componentes prontos para uso pelos transportes e pela CLI.
type Engine struct {
	Config    *config.Config
	Logger    zerolog.Logger
	Metrics   metrics.Provider
	Service   *semaphore.Service
	Formatter *formatter.Semaphore
}

type options struct {
	logOutput io.Writer
	doer      outbound.Doer
	metrics   metrics.Provider
}

// Option customiza a montagem (usado principalmente em testes).
type Option func(*options)

// WithLogOutput direciona os logs para w.
func WithLogOutput(w io.Writer) Option {
	return func(o *options) { o.logOutput = w }
}

// WithHTTPDoer troca o cliente HTTP usado nas chamadas ao Semaphore.
func WithHTTPDoer(d outbound.Doer) Option {
	return func(o *options) { o.doer = d }
}

// WithMetrics ignora a configuração do Datadog e usa o provider informado.
// O Engine passa a ser dono do provider e o fecha em Close.
func WithMetrics(p metrics.Provider) Option {
	return func(o *options) { o.metrics = p }
}

// New monta o Engine. Erros aqui são de configuração e devem abortar o boot.
func New(cfg *config.Config, opts ...Option) (*Engine, error) {
	o := &options{}
	for _, opt := range opts {
		opt(o)
	}

	log := logger.Configure(cfg.Logging, o.logOutput)

	provider := o.metrics
	if provider == nil {
		var err error
		if provider, err = metrics.Setup(cfg.Metrics); err != nil {
			return nil, fmt.Errorf("falha métricas: %w", err)
		}
	}

	client := outbound.New(cfg.HTTP, o.doer, log)

	fetcher := countFetches(auth.NewAPIKeyFetcher(client, cfg.Semaphore.BaseURL, cfg.Semaphore.APIKey), provider)
	tokens, err := auth.NewSource(cfg.Token, fetcher)
	if err != nil {
		return nil, fmt.Errorf("falha token source: %w", err)
	}

	deps := semaphore.Dependencies{
		Client:  client,
		Tokens:  tokens,
		Builder: newBuilder(cfg.Semaphore.Sanitizer),
		Metrics: provider,
		Logger:  log,
	}

	if cfg.Rules.TagFilter != "" {
		rm, err := rules.NewRuleManager()
		if err != nil {
			return nil, fmt.Errorf("falha fatal ao iniciar RuleManager: %w", err)
		}
		filter, err := rules.NewTagFilter(rm, cfg.Rules.TagFilter)
		if err != nil {
			return nil, fmt.Errorf("filtro de tags inválido: %w", err)
		}
		deps.Filter = filter
	}

	svc := semaphore.NewService(cfg.Semaphore, deps)
	if !svc.Enabled() {
		log.Warn().Msg("SEMAPHORE_BASE_URL ou SEMAPHORE_API_KEY ausentes, adaptador desabilitado")
	}

	log.Info().
		Str("sanitizer", cfg.Semaphore.Sanitizer).
		Str("token_cache", cfg.Token.Cache).
		Bool("tag_filter", deps.Filter != nil).
		Msg("adaptador Semaphore inicializado")

	return &Engine{
		Config:    cfg,
		Logger:    log,
		Metrics:   provider,
		Service:   svc,
		Formatter: formatter.New(svc, log),
	}, nil
}

// Close libera os recursos do Engine (cliente de métricas). Chamado pelo
// Holder quando um reload substitui este Engine.
func (e *Engine) Close() error {
	return metrics.Close(e.Metrics)
}

func newBuilder(sanitizer string) *semaphore.RequestBuilder {
	if sanitizer == "html" {
		return semaphore.NewHTMLRequestBuilder()
	}
	return semaphore.NewRequestBuilder()
}

// countFetches registra cada troca de API key por token.
func countFetches(next auth.TokenFetcher, m metrics.Provider) auth.TokenFetcher {
	return func(ctx context.Context) (string, time.Duration, error) {
		token, ttl, err := next(ctx)
		status := "status:ok"
		if err != nil {
			status = "status:error"
		}
		m.Count(metrics.TokenFetches, 1, []string{status})
		return token, ttl, err
	}
}
