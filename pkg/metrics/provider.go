package metrics

import "io"

// Provider define o contrato para envio de métricas.
// Isso permite trocar Datadog por outro backend sem alterar a lógica de negócio.
type Provider interface {
	Count(name string, value float64, tags []string) error
	Gauge(name string, value float64, tags []string) error
	Histogram(name string, value float64, tags []string) error
}

// Nomes das métricas emitidas pelo adaptador (sem o namespace).
const (
	AnalyzeRequests = "analyze.requests"
	AnalyzeFailures = "analyze.failures"
	AnalyzeDuration = "analyze.duration_ms"
	TagsEmitted     = "tags.emitted"
	TokenFetches    = "token.fetches"
	ParentLookups   = "parents.lookups"
)

// NoopProvider é usado quando as métricas estão desabilitadas.
type NoopProvider struct{}

func (n *NoopProvider) Count(name string, value float64, tags []string) error     { return nil }
func (n *NoopProvider) Gauge(name string, value float64, tags []string) error     { return nil }
func (n *NoopProvider) Histogram(name string, value float64, tags []string) error { return nil }

// OrNoop garante um Provider utilizável.
func OrNoop(p Provider) Provider {
	if p == nil {
		return &NoopProvider{}
	}
	return p
}

// Close libera os recursos do provider (ex: o socket do statsd), quando houver.
func Close(p Provider) error {
	if c, ok := p.(io.Closer); ok {
		return c.Close()
	}
	return nil
}
