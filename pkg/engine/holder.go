package engine

import (
	"context"
	"errors"
	"fmt"
	"sync/atomic"

	"github.com/raywall/semaphore-tagger/pkg/secrets"
)

// Factory constrói um Engine novo (carrega configuração, resolve segredos e monta).
type Factory func(ctx context.Context) (*Engine, error)

// Holder mantém o Engine corrente e permite trocá-lo sem parar o servidor.
// Requisições em andamento seguem com o Engine que obtiveram em Current.
type Holder struct {
	current atomic.Pointer[Engine]
	factory Factory
}

// NewHolder constrói o primeiro Engine. Falha aqui aborta o boot.
func NewHolder(ctx context.Context, factory Factory) (*Holder, error) {
	if factory == nil {
		return nil, errors.New("factory não pode ser nil")
	}
	eng, err := factory(ctx)
	if err != nil {
		return nil, err
	}
	h := &Holder{factory: factory}
	h.current.Store(eng)
	return h, nil
}

// Current devolve o Engine ativo.
func (h *Holder) Current() *Engine {
	return h.current.Load()
}

// Reload reconstrói o Engine; em caso de erro o anterior continua ativo.
func (h *Holder) Reload() error {
	eng, err := h.factory(context.Background())
	if err != nil {
		return fmt.Errorf("reload abortado: %w", err)
	}
	old := h.current.Swap(eng)
	eng.Logger.Info().Msg("configuração recarregada")

	if old != nil {
		if err := old.Close(); err != nil {
			eng.Logger.Warn().Err(err).Msg("falha ao liberar o engine anterior")
		}
	}
	return nil
}

// DefaultFactory carrega a configuração do ambiente (e da origem em
// SEMAPHORE_CONFIG_FILE), busca a API key na AWS se preciso e monta o Engine.
func DefaultFactory(opts ...Option) Factory {
	return func(ctx context.Context) (*Engine, error) {
		cfg, err := NewUniversalLoader().LoadFromEnv(ctx)
		if err != nil {
			return nil, err
		}
		if err := secrets.Fill(ctx, cfg, secrets.NewResolver); err != nil {
			return nil, fmt.Errorf("falha ao resolver API key: %w", err)
		}
		return New(cfg, opts...)
	}
}
