package transport

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func doRequest(t *testing.T, router http.Handler, method, path, body string, headers map[string]string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	for k, v := range headers {
		req.Header.Set(k, v)
	}
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	return rec
}

func TestRouter_Analyze(t *testing.T) {
	router := NewRouter(staticSource{eng: newTestEngine(t, true)})

	t.Run("Deve devolver o envelope para um artigo", func(t *testing.T) {
		rec := doRequest(t, router, http.MethodPost, "/analyze", articleJSON, nil)
		require.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))

		var out map[string]any
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out))
		person := out["result"].(map[string]any)["tags"].(map[string]any)["person"].([]any)
		assert.Len(t, person, 1)
	})

	t.Run("Deve despachar para a busca com searchString", func(t *testing.T) {
		rec := doRequest(t, router, http.MethodPost, "/analyze", `{"searchString":"jane"}`, nil)
		require.Equal(t, http.StatusOK, rec.Code)
		assert.Contains(t, rec.Body.String(), `"person":[{"name":"Jane Doe"`)
	})

	t.Run("Deve devolver 400 para campo ausente", func(t *testing.T) {
		rec := doRequest(t, router, http.MethodPost, "/analyze", `{"headline":"x"}`, nil)
		assert.Equal(t, http.StatusBadRequest, rec.Code)
		assert.Contains(t, rec.Body.String(), "campo obrigatório ausente")
	})

	t.Run("Deve devolver 400 para JSON inválido", func(t *testing.T) {
		rec := doRequest(t, router, http.MethodPost, "/analyze", `{`, nil)
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("Deve recusar método não registrado", func(t *testing.T) {
		rec := doRequest(t, router, http.MethodGet, "/analyze", "", nil)
		assert.Equal(t, http.StatusMethodNotAllowed, rec.Code)
	})
}

func TestRouter_Disabled(t *testing.T) {
	router := NewRouter(staticSource{eng: newTestEngine(t, false)})

	rec := doRequest(t, router, http.MethodPost, "/analyze", articleJSON, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{}`, rec.Body.String())

	rec = doRequest(t, router, http.MethodGet, "/health", "", nil)
	assert.JSONEq(t, `{"status":"ok","enabled":false}`, rec.Body.String())
}

func TestRouter_Format(t *testing.T) {
	router := NewRouter(staticSource{eng: newTestEngine(t, true)})

	t.Run("Deve formatar artigos de texto", func(t *testing.T) {
		body := `{"format_type":"semaphore","article":` + articleJSON + `,"subscriber":{}}`
		rec := doRequest(t, router, http.MethodPost, "/format", body, nil)
		require.Equal(t, http.StatusOK, rec.Code)

		var out map[string]any
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out))
		assert.Equal(t, "urn:1", out["uuid"])
		assert.Equal(t, "Título", out["headline"])
		assert.Contains(t, out, "semaphore")
	})

	t.Run("Deve devolver 422 para formato não suportado", func(t *testing.T) {
		body := `{"format_type":"ninjs","article":` + articleJSON + `}`
		rec := doRequest(t, router, http.MethodPost, "/format", body, nil)
		assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	})

	t.Run("Deve devolver 400 sem artigo", func(t *testing.T) {
		rec := doRequest(t, router, http.MethodPost, "/format", `{"format_type":"semaphore"}`, nil)
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})
}

func TestObservabilityMiddleware(t *testing.T) {
	router := NewRouter(staticSource{eng: newTestEngine(t, true)})

	t.Run("Deve propagar o correlation id recebido", func(t *testing.T) {
		rec := doRequest(t, router, http.MethodGet, "/health", "", map[string]string{HeaderCorrelationID: "corr-123"})
		assert.Equal(t, "corr-123", rec.Header().Get(HeaderCorrelationID))
		assert.NotEmpty(t, rec.Header().Get(HeaderLatency))
	})

	t.Run("Deve gerar um correlation id quando ausente", func(t *testing.T) {
		rec := doRequest(t, router, http.MethodGet, "/health", "", nil)
		assert.Len(t, rec.Header().Get(HeaderCorrelationID), 36)
	})
}
