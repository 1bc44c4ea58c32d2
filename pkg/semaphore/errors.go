package semaphore

import (
	"errors"
	"fmt"

	"github.com/raywall/semaphore-tagger/pkg/auth"
	"github.com/raywall/semaphore-tagger/pkg/outbound"
)

// ErrNotConfigured é devolvido pelas operações de baixo nível quando falta
// endpoint ou credencial. Analyze não o propaga: devolve o envelope vazio.
var ErrNotConfigured = &ConfigurationError{Reason: "SEMAPHORE_BASE_URL ou SEMAPHORE_API_KEY ausentes"}

// ConfigurationError indica configuração insuficiente para falar com o fornecedor.
type ConfigurationError struct {
	Reason string
}

func (e *ConfigurationError) Error() string {
	return "semaphore: configuração inválida: " + e.Reason
}

// ParseError indica uma resposta do fornecedor que não pôde ser interpretada.
type ParseError struct {
	Format string // "xml" ou "json"
	Err    error
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("semaphore: resposta %s inválida: %v", e.Format, e.Err)
}

func (e *ParseError) Unwrap() error {
	return e.Err
}

// MissingFieldError indica que o artigo não traz um campo obrigatório.
// É erro do chamador e, ao contrário das falhas do fornecedor, é propagado.
type MissingFieldError struct {
	Field string
}

func (e *MissingFieldError) Error() string {
	return fmt.Sprintf("semaphore: campo obrigatório ausente: %s", e.Field)
}

// IsCallerError indica se o erro foi causado pela entrada do chamador.
func IsCallerError(err error) bool {
	var missing *MissingFieldError
	return errors.As(err, &missing)
}

// failureKind classifica um erro para métricas e logs.
func failureKind(err error) string {
	var (
		authErr      *auth.AuthError
		transportErr *outbound.TransportError
		parseErr     *ParseError
		configErr    *ConfigurationError
	)
	switch {
	case errors.As(err, &authErr):
		return "auth"
	case errors.As(err, &transportErr):
		return "transport"
	case errors.As(err, &parseErr):
		return "parse"
	case errors.As(err, &configErr):
		return "configuration"
	default:
		return "unknown"
	}
}
