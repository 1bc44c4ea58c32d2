// Package formatter implementa o formatter de saída "semaphore" do CMS.
package formatter

import (
	"context"
	"fmt"
	"strings"

	"github.com/raywall/semaphore-tagger/pkg/sanitize"
	"github.com/raywall/semaphore-tagger/pkg/semaphore"
	"github.com/rs/zerolog"
)

// FormatType é o identificador do formatter no CMS.
const FormatType = "semaphore"

// Analyzer é o subconjunto do semaphore.Service usado pelo formatter.
type Analyzer interface {
	Analyze(ctx context.Context, input map[string]any) (semaphore.Envelope, error)
}

// Semaphore formata artigos de texto com as tags do Semaphore.
type Semaphore struct {
	analyzer Analyzer
	logger   zerolog.Logger
}

// New cria o formatter. analyzer nil desliga o enriquecimento com tags.
func New(analyzer Analyzer, log zerolog.Logger) *Semaphore {
	return &Semaphore{analyzer: analyzer, logger: log}
}

// CanFormat aceita apenas artigos de texto.
func (s *Semaphore) CanFormat(formatType string, article map[string]any) bool {
	return strings.EqualFold(formatType, FormatType) && article["type"] == "text"
}

// Format devolve {uuid, headline} e, quando há tags, o envelope em "semaphore".
// Falhas no uuid ou headline resultam em mapa vazio.
func (s *Semaphore) Format(ctx context.Context, article map[string]any, subscriber map[string]any) map[string]any {
	out, err := s.base(article)
	if err != nil {
		s.logger.Error().Err(err).Msg("erro ao formatar dados para o Semaphore")
		return map[string]any{}
	}

	if s.analyzer == nil {
		return out
	}

	env, err := s.analyzer.Analyze(ctx, article)
	if err != nil {
		s.logger.Warn().Err(err).Interface("uuid", out["uuid"]).Msg("artigo formatado sem tags do Semaphore")
		return out
	}
	if !env.IsEmpty() {
		out["semaphore"] = env
	}
	return out
}

func (s *Semaphore) base(article map[string]any) (map[string]any, error) {
	guid, ok := article["guid"]
	if !ok {
		return nil, fmt.Errorf("campo guid ausente")
	}
	headline, ok := article["headline"]
	if !ok {
		return nil, fmt.Errorf("campo headline ausente")
	}
	text, ok := headline.(string)
	if !ok && headline != nil {
		return nil, fmt.Errorf("headline com tipo inválido: %T", headline)
	}

	return map[string]any{
		"uuid":     guid,
		"headline": sanitize.Text(text),
	}, nil
}
