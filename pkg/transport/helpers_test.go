package transport

import (
	"bytes"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/raywall/semaphore-tagger/pkg/config"
	"github.com/raywall/semaphore-tagger/pkg/engine"
	"github.com/raywall/semaphore-tagger/pkg/metrics"
	"github.com/stretchr/testify/require"
)

type staticSource struct {
	eng *engine.Engine
}

func (s staticSource) Current() *engine.Engine { return s.eng }

const vendorXML = `<response><STRUCTUREDDOCUMENT>
<META name="Person" value="Jane Doe" id="p-1"/>
</STRUCTUREDDOCUMENT></response>`

// newTestEngine monta um Engine falando com um Semaphore falso.
func newTestEngine(t *testing.T, enabled bool) *engine.Engine {
	t.Helper()

	vendor := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/token":
			w.Write([]byte(`{"access_token":"tkn"}`))
		case "/analyze":
			w.Write([]byte(vendorXML))
		case "/search/jane.json":
			w.Write([]byte(`{"termHints":[{"id":"p-1","name":"Jane Doe","classes":["People"]}]}`))
		default:
			w.WriteHeader(http.StatusNotFound)
		}
	}))
	t.Cleanup(vendor.Close)

	cfg := &config.Config{}
	cfg.Semaphore = config.SemaphoreConf{
		BaseURL:    vendor.URL + "/token",
		AnalyzeURL: vendor.URL + "/analyze",
		SearchURL:  vendor.URL + "/search/",
		Sanitizer:  "legacy",
	}
	if enabled {
		cfg.Semaphore.APIKey = "key"
	}
	cfg.Logging = config.LoggingConf{Enabled: true, Level: "info", Format: "json"}

	eng, err := engine.New(cfg, engine.WithMetrics(&metrics.NoopProvider{}), engine.WithLogOutput(&bytes.Buffer{}))
	require.NoError(t, err)
	return eng
}

const articleJSON = `{"guid":"urn:1","type":"text","headline":"<p>Título</p>","abstract":"","body_html":"<p>Corpo</p>","slugline":"s"}`
