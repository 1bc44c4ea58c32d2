package transport

import (
	"context"
	"encoding/base64"
	"net/http"
	"strings"
	"time"

	"github.com/aws/aws-lambda-go/events"
	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
)

// LambdaHandler adapta eventos do API Gateway para as mesmas rotas do servidor HTTP.
type LambdaHandler struct {
	src EngineSource
}

// NewLambdaHandler cria uma nova instância do adaptador
func NewLambdaHandler(src EngineSource) *LambdaHandler {
	return &LambdaHandler{src: src}
}

// Handle processa a requisição Lambda
func (h *LambdaHandler) Handle(ctx context.Context, req events.APIGatewayProxyRequest) (events.APIGatewayProxyResponse, error) {
	start := time.Now()

	corrID := headerValue(req.Headers, HeaderCorrelationID)
	if corrID == "" {
		corrID = uuid.NewString()
	}
	ctx = withCorrelation(ctx, corrID)

	code, body := h.route(ctx, req)

	log.Ctx(ctx).Info().
		Str("method", req.HTTPMethod).
		Str("path", req.Path).
		Int("status", code).
		Int64("latency_ms", time.Since(start).Milliseconds()).
		Msg("lambda request completed")

	return events.APIGatewayProxyResponse{
		StatusCode: code,
		Headers: map[string]string{
			"Content-Type":      "application/json",
			HeaderCorrelationID: corrID,
		},
		Body: string(body),
	}, nil
}

func (h *LambdaHandler) route(ctx context.Context, req events.APIGatewayProxyRequest) (int, []byte) {
	pathMatched := false
	for _, r := range routes {
		if r.path != req.Path {
			continue
		}
		pathMatched = true
		if r.method == strings.ToUpper(req.HTTPMethod) {
			body := []byte(req.Body)
			if req.IsBase64Encoded {
				decoded, err := base64.StdEncoding.DecodeString(req.Body)
				if err != nil {
					return encode(http.StatusBadRequest, errorBody{Error: "Invalid base64 body"})
				}
				body = decoded
			}
			return encode(r.handler(ctx, h.src.Current(), body))
		}
	}
	if pathMatched {
		return encode(http.StatusMethodNotAllowed, errorBody{Error: "method not allowed"})
	}
	return encode(http.StatusNotFound, errorBody{Error: "not found"})
}

// headerValue busca o header sem diferenciar maiúsculas (o API Gateway pode normalizar).
func headerValue(headers map[string]string, name string) string {
	if v, ok := headers[name]; ok {
		return v
	}
	for k, v := range headers {
		if strings.EqualFold(k, name) {
			return v
		}
	}
	return ""
}
