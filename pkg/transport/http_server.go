package transport

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/mux"
	"github.com/rs/zerolog/log"
)

const (
	HeaderCorrelationID = "x-correlation-id"
	HeaderLatency       = "x-latency-ms"
	ContextKeyCorrID    = "correlation_id"
)

type ctxKey string

// maxBodyBytes limita o corpo aceito (artigos grandes cabem com folga).
const maxBodyBytes = 10 << 20

// NewRouter registra as rotas do adaptador.
func NewRouter(src EngineSource) *mux.Router {
	router := mux.NewRouter()
	for _, r := range routes {
		router.HandleFunc(r.path, httpHandler(src, r.handler)).Methods(r.method)
	}
	router.Use(ObservabilityMiddleware)
	return router
}

// StartHTTPServer sobe o servidor local (bloqueante).
func StartHTTPServer(src EngineSource, port int) error {
	addr := fmt.Sprintf(":%d", port)
	src.Current().Logger.Info().Msgf("Servidor HTTP ouvindo em %s", addr)

	server := &http.Server{
		Addr:              addr,
		Handler:           NewRouter(src),
		ReadHeaderTimeout: 10 * time.Second,
	}
	return server.ListenAndServe()
}

func httpHandler(src EngineSource, fn handlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		defer r.Body.Close()

		body, err := io.ReadAll(io.LimitReader(r.Body, maxBodyBytes))
		if err != nil {
			http.Error(w, `{"error": "falha ao ler body"}`, http.StatusBadRequest)
			return
		}

		code, resp := encode(fn(r.Context(), src.Current(), body))

		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(code)
		w.Write(resp)
	}
}

// --- MIDDLEWARE DE OBSERVABILIDADE ---
type responseWriterWrapper struct {
	http.ResponseWriter
	statusCode  int
	startTime   time.Time
	wroteHeader bool
}

func (rw *responseWriterWrapper) WriteHeader(code int) {
	if rw.wroteHeader {
		return
	}
	rw.statusCode = code
	duration := time.Since(rw.startTime)
	rw.Header().Set(HeaderLatency, fmt.Sprintf("%d", duration.Milliseconds()))
	rw.ResponseWriter.WriteHeader(code)
	rw.wroteHeader = true
}

func (rw *responseWriterWrapper) Write(b []byte) (int, error) {
	if !rw.wroteHeader {
		rw.WriteHeader(http.StatusOK)
	}
	return rw.ResponseWriter.Write(b)
}

// withCorrelation injeta o logger com correlation_id no contexto.
func withCorrelation(ctx context.Context, corrID string) context.Context {
	logger := log.With().Str("correlation_id", corrID).Logger()
	ctx = logger.WithContext(ctx)
	return context.WithValue(ctx, ctxKey(ContextKeyCorrID), corrID)
}

// CorrelationID devolve o id da requisição corrente, se houver.
func CorrelationID(ctx context.Context) string {
	id, _ := ctx.Value(ctxKey(ContextKeyCorrID)).(string)
	return id
}

func ObservabilityMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		corrID := r.Header.Get(HeaderCorrelationID)
		if corrID == "" {
			corrID = uuid.NewString()
		}
		w.Header().Set(HeaderCorrelationID, corrID)

		ctx := withCorrelation(r.Context(), corrID)

		wrapper := &responseWriterWrapper{
			ResponseWriter: w,
			statusCode:     http.StatusOK,
			startTime:      start,
		}

		next.ServeHTTP(wrapper, r.WithContext(ctx))

		log.Ctx(ctx).Info().
			Str("method", r.Method).
			Str("path", r.URL.Path).
			Int("status", wrapper.statusCode).
			Int64("latency_ms", time.Since(start).Milliseconds()).
			Msg("request completed")
	})
}
