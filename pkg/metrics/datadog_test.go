package metrics

import (
	"testing"

	"github.com/raywall/semaphore-tagger/pkg/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeStatsd struct {
	calls  []string
	last   float64
	closed bool
}

func (f *fakeStatsd) Close() error {
	f.closed = true
	return nil
}

func (f *fakeStatsd) Count(name string, value int64, tags []string, rate float64) error {
	f.calls = append(f.calls, "count:"+name)
	f.last = float64(value)
	return nil
}

func (f *fakeStatsd) Gauge(name string, value float64, tags []string, rate float64) error {
	f.calls = append(f.calls, "gauge:"+name)
	f.last = value
	return nil
}

func (f *fakeStatsd) Histogram(name string, value float64, tags []string, rate float64) error {
	f.calls = append(f.calls, "histogram:"+name)
	f.last = value
	return nil
}

func TestSetup(t *testing.T) {
	t.Run("Desabilitado retorna Noop", func(t *testing.T) {
		p, err := Setup(config.MetricsConf{})
		require.NoError(t, err)
		assert.IsType(t, &NoopProvider{}, p)
		assert.NoError(t, p.Count(AnalyzeRequests, 1, nil))
	})

	t.Run("Habilitado retorna Datadog", func(t *testing.T) {
		// statsd via UDP não exige agente ativo para criar o cliente
		p, err := Setup(config.MetricsConf{Datadog: config.DatadogConf{Enabled: true, Addr: "127.0.0.1:8125"}})
		require.NoError(t, err)
		assert.IsType(t, &DatadogProvider{}, p)
	})
}

func TestDatadogProvider(t *testing.T) {
	fake := &fakeStatsd{}
	p := &DatadogProvider{client: fake}

	require.NoError(t, p.Count(AnalyzeRequests, 2.7, []string{"mode:search"}))
	assert.Equal(t, float64(2), fake.last)

	require.NoError(t, p.Gauge(TagsEmitted, 3, nil))
	require.NoError(t, p.Histogram(AnalyzeDuration, 12.5, nil))
	assert.Equal(t, 12.5, fake.last)

	assert.Equal(t, []string{
		"count:" + AnalyzeRequests,
		"gauge:" + TagsEmitted,
		"histogram:" + AnalyzeDuration,
	}, fake.calls)
}

func TestOrNoop(t *testing.T) {
	assert.IsType(t, &NoopProvider{}, OrNoop(nil))

	d := &DatadogProvider{client: &fakeStatsd{}}
	assert.Same(t, d, OrNoop(d))
}

func TestClose(t *testing.T) {
	t.Run("Deve fechar o cliente statsd", func(t *testing.T) {
		fake := &fakeStatsd{}
		require.NoError(t, Close(&DatadogProvider{client: fake}))
		assert.True(t, fake.closed)
	})

	t.Run("Deve ignorar providers sem recursos", func(t *testing.T) {
		assert.NoError(t, Close(&NoopProvider{}))
	})
}
