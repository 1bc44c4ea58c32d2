package auth

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/url"
	"time"

	"github.com/raywall/semaphore-tagger/pkg/outbound"
)

// tokenResponse mapeia a resposta do endpoint de token do Semaphore.
type tokenResponse struct {
	AccessToken string `json:"access_token"`
	ExpiresIn   int    `json:"expires_in"` // segundos, opcional
	TokenType   string `json:"token_type"`
}

// TokenFetcher define a função que sabe como buscar um novo token.
// ttl == 0 significa que o provedor não informou a validade.
type TokenFetcher func(ctx context.Context) (string, time.Duration, error)

// Caller é o subconjunto do outbound.Client usado pelo fetcher.
type Caller interface {
	Do(ctx context.Context, r outbound.Request) (*outbound.Response, error)
}

// NewAPIKeyFetcher cria o fetcher que troca a API key por um bearer token
// (grant_type=apikey, application/x-www-form-urlencoded).
func NewAPIKeyFetcher(client Caller, tokenURL, apiKey string) TokenFetcher {
	return func(ctx context.Context) (string, time.Duration, error) {
		data := url.Values{}
		data.Set("grant_type", "apikey")
		data.Set("key", apiKey)

		resp, err := client.Do(ctx, outbound.Request{
			Method: http.MethodPost,
			URL:    tokenURL,
			Body:   []byte(data.Encode()),
			Headers: map[string]string{
				"Content-Type": "application/x-www-form-urlencoded",
				"Accept":       "application/json",
			},
		})
		if err != nil {
			authErr := &AuthError{Reason: "falha ao obter token", Err: err}
			var transportErr *outbound.TransportError
			if errors.As(err, &transportErr) {
				authErr.StatusCode = transportErr.StatusCode
			}
			return "", 0, authErr
		}

		var tokenResp tokenResponse
		if err := json.Unmarshal(resp.Body, &tokenResp); err != nil {
			return "", 0, &AuthError{StatusCode: resp.StatusCode, Reason: "resposta de token inválida", Err: err}
		}

		if tokenResp.AccessToken == "" {
			return "", 0, &AuthError{StatusCode: resp.StatusCode, Reason: "access_token ausente na resposta"}
		}

		return tokenResp.AccessToken, time.Duration(tokenResp.ExpiresIn) * time.Second, nil
	}
}
