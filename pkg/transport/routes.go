package transport

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/raywall/semaphore-tagger/pkg/engine"
	"github.com/raywall/semaphore-tagger/pkg/semaphore"
	"github.com/rs/zerolog/log"
)

// EngineSource entrega o Engine ativo (engine.Holder em produção).
type EngineSource interface {
	Current() *engine.Engine
}

// handlerFunc é o contrato comum aos transportes HTTP e Lambda.
type handlerFunc func(ctx context.Context, eng *engine.Engine, body []byte) (int, any)

type route struct {
	method  string
	path    string
	handler handlerFunc
}

var routes = []route{
	{method: http.MethodPost, path: "/analyze", handler: handleAnalyze},
	{method: http.MethodPost, path: "/format", handler: handleFormat},
	{method: http.MethodGet, path: "/health", handler: handleHealth},
}

type errorBody struct {
	Error string `json:"error"`
}

type formatRequest struct {
	FormatType string         `json:"format_type"`
	Article    map[string]any `json:"article"`
	Subscriber map[string]any `json:"subscriber"`
}

// handleAnalyze recebe um artigo ou {"searchString": "..."} e devolve o envelope.
func handleAnalyze(ctx context.Context, eng *engine.Engine, body []byte) (int, any) {
	var input map[string]any
	if err := json.Unmarshal(body, &input); err != nil || input == nil {
		return http.StatusBadRequest, errorBody{Error: "Invalid JSON Body"}
	}

	env, err := eng.Service.Analyze(ctx, input)
	if err != nil {
		if semaphore.IsCallerError(err) {
			return http.StatusBadRequest, errorBody{Error: err.Error()}
		}
		log.Ctx(ctx).Error().Err(err).Msg("erro inesperado no analyze")
		return http.StatusInternalServerError, errorBody{Error: "internal server error"}
	}
	return http.StatusOK, env
}

func handleFormat(ctx context.Context, eng *engine.Engine, body []byte) (int, any) {
	var req formatRequest
	if err := json.Unmarshal(body, &req); err != nil || req.Article == nil {
		return http.StatusBadRequest, errorBody{Error: "Invalid JSON Body"}
	}

	if !eng.Formatter.CanFormat(req.FormatType, req.Article) {
		return http.StatusUnprocessableEntity, errorBody{Error: "formato não suportado para este artigo"}
	}
	return http.StatusOK, eng.Formatter.Format(ctx, req.Article, req.Subscriber)
}

func handleHealth(_ context.Context, eng *engine.Engine, _ []byte) (int, any) {
	return http.StatusOK, map[string]any{
		"status":  "ok",
		"enabled": eng.Service.Enabled(),
	}
}

// encode serializa a resposta; falha de serialização vira 500.
func encode(code int, payload any) (int, []byte) {
	data, err := json.Marshal(payload)
	if err != nil {
		return http.StatusInternalServerError, []byte(`{"error": "internal server error"}`)
	}
	return code, data
}
