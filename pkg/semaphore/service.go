package semaphore

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"github.com/raywall/semaphore-tagger/pkg/auth"
	"github.com/raywall/semaphore-tagger/pkg/config"
	"github.com/raywall/semaphore-tagger/pkg/metrics"
	"github.com/raywall/semaphore-tagger/pkg/outbound"
	"github.com/rs/zerolog"
)

// SearchKey marca uma entrada de busca livre em vez de um artigo.
const SearchKey = "searchString"

const (
	modeAnalyze = "analyze"
	modeSearch  = "search"
)

// TagFilter decide se uma tag normalizada deve ser mantida.
// category é o nome da categoria ou "broader".
type TagFilter interface {
	Keep(category string, t Tag) (bool, error)
}

// Dependencies agrupa os colaboradores injetáveis do Service.
// Campos nulos recebem implementações padrão.
type Dependencies struct {
	Client  Caller
	Tokens  auth.TokenSource
	Builder *RequestBuilder
	Filter  TagFilter
	Metrics metrics.Provider
	Logger  zerolog.Logger
}

// Service é o ponto de entrada do auto-tagging: despacha entre classify e
// search, normaliza a resposta e devolve o envelope do CMS.
type Service struct {
	cfg     config.SemaphoreConf
	client  Caller
	tokens  auth.TokenSource
	builder *RequestBuilder
	parents *ParentResolver
	filter  TagFilter
	metrics metrics.Provider
	logger  zerolog.Logger
}

func NewService(cfg config.SemaphoreConf, deps Dependencies) *Service {
	s := &Service{
		cfg:     cfg,
		client:  deps.Client,
		tokens:  deps.Tokens,
		builder: deps.Builder,
		filter:  deps.Filter,
		metrics: metrics.OrNoop(deps.Metrics),
		logger:  deps.Logger,
	}

	if s.client == nil {
		s.client = outbound.New(config.HTTPConf{ConnectTimeout: 5 * time.Second, ReadTimeout: 30 * time.Second}, nil, s.logger)
	}
	if s.tokens == nil {
		s.tokens = auth.NewDirect(auth.NewAPIKeyFetcher(s.client, cfg.BaseURL, cfg.APIKey))
	}
	if s.builder == nil {
		s.builder = NewRequestBuilder()
	}
	s.parents = NewParentResolver(s.client, cfg.GetParentURL, s.tokens, s.metrics, s.logger)

	return s
}

// Enabled indica se há endpoint de token e API key configurados.
func (s *Service) Enabled() bool {
	return s.cfg.BaseURL != "" && s.cfg.APIKey != ""
}

// Analyze despacha a entrada: com "searchString" executa o search, senão
// trata a entrada como artigo e executa o classify. Os dois caminhos devolvem
// o mesmo envelope. Só erros do chamador (campo ausente) são propagados.
func (s *Service) Analyze(ctx context.Context, input map[string]any) (Envelope, error) {
	if !s.Enabled() {
		s.logger.Warn().Msg("Semaphore não está configurado, conteúdo não será analisado")
		return Envelope{}, nil
	}

	if q, ok := input[SearchKey]; ok {
		query, _ := q.(string)
		if q != nil && query == "" {
			query = fmt.Sprint(q)
		}
		return s.Search(ctx, query)
	}

	fields, err := ArticleFieldsFrom(input)
	if err != nil {
		return Envelope{}, err
	}
	return s.Classify(ctx, fields)
}

// Classify envia o artigo ao endpoint de analyze.
func (s *Service) Classify(ctx context.Context, fields ArticleFields) (Envelope, error) {
	if !s.Enabled() {
		s.logger.Warn().Msg("Semaphore não está configurado, conteúdo não será analisado")
		return Envelope{}, nil
	}
	start := time.Now()
	buckets, err := s.classify(ctx, fields)
	return s.finish(modeAnalyze, start, buckets, err), nil
}

// Search consulta o endpoint de busca por termo.
func (s *Service) Search(ctx context.Context, query string) (Envelope, error) {
	if !s.Enabled() {
		s.logger.Warn().Msg("Semaphore Search não está configurado, termo não será buscado")
		return Envelope{}, nil
	}
	start := time.Now()
	buckets, err := s.search(ctx, query)
	return s.finish(modeSearch, start, buckets, err), nil
}

// ResolveParents expõe a cadeia de termos mais amplos de um termo.
func (s *Service) ResolveParents(ctx context.Context, termID string) (leafFirst, rootFirst []Term, err error) {
	if !s.Enabled() {
		return nil, nil, ErrNotConfigured
	}
	leafFirst, rootFirst = s.parents.WithTokens(auth.PerOperation(s.tokens)).Resolve(ctx, termID)
	return leafFirst, rootFirst, nil
}

// BuildRequest monta o XML de classify sem chamar o fornecedor.
func (s *Service) BuildRequest(input map[string]any) (string, error) {
	fields, err := ArticleFieldsFrom(input)
	if err != nil {
		return "", err
	}
	return s.builder.Build(fields), nil
}

func (s *Service) classify(ctx context.Context, fields ArticleFields) (*Buckets, error) {
	payload := s.builder.Build(fields)

	tokens := auth.PerOperation(s.tokens)

	token, err := tokens.Token(ctx)
	if err != nil {
		return nil, err
	}

	form := url.Values{}
	form.Set("XML_INPUT", payload)

	resp, err := s.client.Do(ctx, outbound.Request{
		Method: http.MethodPost,
		URL:    s.cfg.AnalyzeURL,
		Body:   []byte(form.Encode()),
		Headers: map[string]string{
			"Authorization": "Bearer " + token,
			"Content-Type":  "application/x-www-form-urlencoded",
		},
	})
	if err != nil {
		s.dropRevokedToken(ctx, tokens, err)
		return nil, err
	}

	return NormalizeAnalyze(resp.Body)
}

func (s *Service) search(ctx context.Context, query string) (*Buckets, error) {
	tokens := auth.PerOperation(s.tokens)

	token, err := tokens.Token(ctx)
	if err != nil {
		return nil, err
	}

	resp, err := s.client.Do(ctx, outbound.Request{
		Method:  http.MethodGet,
		URL:     s.cfg.SearchURL + url.PathEscape(query) + ".json",
		Headers: map[string]string{"Authorization": "Bearer " + token},
	})
	if err != nil {
		s.dropRevokedToken(ctx, tokens, err)
		return nil, err
	}

	normalizer := NewSearchNormalizer(s.parents.WithTokens(tokens), s.logger)
	return normalizer.Normalize(ctx, resp.Body)
}

// dropRevokedToken tira do cache um token recusado com 401, para que a
// próxima operação busque outro.
func (s *Service) dropRevokedToken(ctx context.Context, tokens auth.TokenSource, err error) {
	if auth.InvalidateOnUnauthorized(ctx, tokens, err) {
		s.logger.Warn().Msg("token recusado pelo Semaphore, cache descartado")
	}
}

// finish registra métricas e logs e converte falhas do fornecedor em envelope vazio.
func (s *Service) finish(mode string, start time.Time, buckets *Buckets, err error) Envelope {
	modeTag := "mode:" + mode
	s.metrics.Count(metrics.AnalyzeRequests, 1, []string{modeTag})
	s.metrics.Histogram(metrics.AnalyzeDuration, float64(time.Since(start).Milliseconds()), []string{modeTag})

	if err != nil {
		kind := failureKind(err)
		s.metrics.Count(metrics.AnalyzeFailures, 1, []string{modeTag, "kind:" + kind})
		s.logger.Error().Err(err).Str("mode", mode).Str("kind", kind).Msg("falha na chamada ao Semaphore")
		return Envelope{}
	}

	s.applyFilter(buckets)

	for _, c := range Categories {
		s.metrics.Count(metrics.TagsEmitted, float64(len(buckets.Get(c))), []string{modeTag, "category:" + string(c)})
	}
	s.metrics.Count(metrics.TagsEmitted, float64(len(buckets.Broader)), []string{modeTag, "category:broader"})

	s.logger.Info().Str("mode", mode).Int("tags", buckets.Len()).Msg("tags geradas pelo Semaphore")
	return Shape(buckets)
}

func (s *Service) applyFilter(b *Buckets) {
	if s.filter == nil {
		return
	}
	for _, c := range Categories {
		slot := b.slot(c)
		*slot = s.keep(string(c), *slot)
	}
	b.Broader = s.keep("broader", b.Broader)
}

func (s *Service) keep(category string, tags []Tag) []Tag {
	var kept []Tag
	for _, t := range tags {
		ok, err := s.filter.Keep(category, t)
		if err != nil {
			// Regra quebrada não deve apagar tags
			s.logger.Error().Err(err).
				Str("category", category).
				Str("qcode", t.QCode).
				Str("parent", t.ParentQCode()).
				Msg("erro ao avaliar filtro de tags")
			ok = true
		}
		if ok {
			kept = append(kept, t)
		}
	}
	return kept
}
