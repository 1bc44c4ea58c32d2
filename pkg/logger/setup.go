package logger

import (
	"io"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/raywall/semaphore-tagger/pkg/config"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// Configure inicializa o logger global a partir da configuração.
// out == nil usa os.Stdout.
func Configure(cfg config.LoggingConf, out io.Writer) zerolog.Logger {
	level, err := zerolog.ParseLevel(strings.ToLower(cfg.Level))
	if err != nil || cfg.Level == "" {
		level = zerolog.InfoLevel
	}
	zerolog.SetGlobalLevel(level)

	if out == nil {
		out = os.Stdout
	}

	// JSON para produção, console "bonito" para uso local
	var output io.Writer = out
	if !cfg.Enabled {
		output = io.Discard
	} else if cfg.Format == "console" {
		output = zerolog.ConsoleWriter{Out: out, TimeFormat: time.RFC3339}
	}

	logger := zerolog.New(output).
		With().
		Timestamp().
		Str("component", "semaphore").
		Logger()

	log.Logger = logger
	zerolog.DefaultContextLogger = &log.Logger

	return logger
}

var sensitiveHeaders = []string{"Authorization", "X-Api-Key", "Cookie", "Set-Cookie"}

// RedactHeaders devolve uma cópia dos headers com credenciais mascaradas,
// mantendo apenas os 4 últimos caracteres.
func RedactHeaders(headers http.Header) http.Header {
	redacted := headers.Clone()
	if redacted == nil {
		return http.Header{}
	}
	for _, key := range sensitiveHeaders {
		if val := redacted.Get(key); val != "" {
			redacted.Set(key, Redact(val))
		}
	}
	return redacted
}

// Redact mascara um segredo (API key, token) para log.
func Redact(secret string) string {
	if len(secret) > 8 {
		return "***" + secret[len(secret)-4:]
	}
	if secret == "" {
		return ""
	}
	return "***"
}
