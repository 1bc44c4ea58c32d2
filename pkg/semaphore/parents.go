package semaphore

import (
	"context"
	"net/http"
	"net/url"

	"github.com/raywall/semaphore-tagger/pkg/auth"
	"github.com/raywall/semaphore-tagger/pkg/metrics"
	"github.com/raywall/semaphore-tagger/pkg/outbound"
	"github.com/rs/zerolog"
)

const (
	broaderQuery     = "?relationshipType=has%20broader"
	narrowerPathType = "Narrower Term"
	topicClass       = "Topic"
)

// Term é um elemento do caminho de termos mais amplos.
type Term struct {
	Name  string `json:"name"`
	QCode string `json:"qcode"`
}

// Caller é o subconjunto do outbound.Client usado pelo pacote.
type Caller interface {
	Do(ctx context.Context, r outbound.Request) (*outbound.Response, error)
}

// ParentLookup resolve a cadeia de termos mais amplos de um termo.
type ParentLookup interface {
	Resolve(ctx context.Context, termID string) (leafFirst, rootFirst []Term)
}

// ParentResolver consulta o endpoint "get parent" do Semaphore.
type ParentResolver struct {
	client  Caller
	baseURL string
	tokens  auth.TokenSource
	metrics metrics.Provider
	logger  zerolog.Logger
}

func NewParentResolver(client Caller, getParentURL string, tokens auth.TokenSource, m metrics.Provider, log zerolog.Logger) *ParentResolver {
	return &ParentResolver{
		client:  client,
		baseURL: getParentURL,
		tokens:  tokens,
		metrics: metrics.OrNoop(m),
		logger:  log,
	}
}

// WithTokens devolve uma cópia que usa outra fonte de token
// (ex: o token único de uma operação).
func (r *ParentResolver) WithTokens(tokens auth.TokenSource) *ParentResolver {
	cp := *r
	cp.tokens = tokens
	return &cp
}

// Resolve devolve a cadeia na ordem da resposta e invertida.
// Nunca falha: qualquer erro é logado e resulta em cadeias vazias.
func (r *ParentResolver) Resolve(ctx context.Context, termID string) (leafFirst, rootFirst []Term) {
	chain, err := r.fetch(ctx, termID)
	if err != nil {
		r.metrics.Count(metrics.ParentLookups, 1, []string{"status:error"})
		r.logger.Error().Err(err).Str("qcode", termID).Msg("erro ao buscar termos mais amplos")
		return nil, nil
	}
	r.metrics.Count(metrics.ParentLookups, 1, []string{"status:ok"})

	reversed := make([]Term, len(chain))
	for i, t := range chain {
		reversed[len(chain)-1-i] = t
	}
	return chain, reversed
}

func (r *ParentResolver) fetch(ctx context.Context, termID string) ([]Term, error) {
	token, err := r.tokens.Token(ctx)
	if err != nil {
		return nil, err
	}

	resp, err := r.client.Do(ctx, outbound.Request{
		Method:  http.MethodGet,
		URL:     r.baseURL + url.PathEscape(termID) + broaderQuery,
		Headers: map[string]string{"Authorization": "Bearer " + token},
	})
	if err != nil {
		auth.InvalidateOnUnauthorized(ctx, r.tokens, err)
		return nil, err
	}

	return parseParentPath(resp.Body)
}

// parseParentPath lê o primeiro PATH do tipo "Narrower Term" e coleta os
// FIELD cuja CLASS é Topic.
func parseParentPath(data []byte) ([]Term, error) {
	root, err := parseXMLTree(data)
	if err != nil {
		return nil, err
	}

	path := root.findDescendant(func(n *xmlNode) bool {
		if n.XMLName.Local != "PATH" {
			return false
		}
		typ, _ := n.attr("TYPE")
		return typ == narrowerPathType
	})
	if path == nil {
		return nil, nil
	}

	var chain []Term
	for i := range path.Children {
		field := &path.Children[i]
		if field.XMLName.Local != "FIELD" {
			continue
		}
		class := field.child("CLASS")
		if class == nil {
			continue
		}
		if name, _ := class.attr("NAME"); name != topicClass {
			continue
		}
		name, _ := field.attr("NAME")
		id, _ := field.attr("ID")
		chain = append(chain, Term{Name: name, QCode: id})
	}
	return chain, nil
}
