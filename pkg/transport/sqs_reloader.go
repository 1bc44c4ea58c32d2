package transport

import (
	"context"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/sqs"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// SQSClient define a interface necessária para o reloader (permite Mocking)
type SQSClient interface {
	ReceiveMessage(ctx context.Context, params *sqs.ReceiveMessageInput, optFns ...func(*sqs.Options)) (*sqs.ReceiveMessageOutput, error)
	DeleteMessage(ctx context.Context, params *sqs.DeleteMessageInput, optFns ...func(*sqs.Options)) (*sqs.DeleteMessageOutput, error)
}

// Reloader reconstrói o adaptador (ex: engine.Holder).
type Reloader interface {
	Reload() error
}

// SQSReloader consome a fila de hot reload. Qualquer mensagem dispara um
// Reload; o conteúdo é ignorado.
type SQSReloader struct {
	client     SQSClient
	queueURL   string
	reloader   Reloader
	retryDelay time.Duration
	logger     zerolog.Logger
}

func NewSQSReloader(client SQSClient, queueURL string, reloader Reloader) *SQSReloader {
	return &SQSReloader{
		client:     client,
		queueURL:   queueURL,
		reloader:   reloader,
		retryDelay: 5 * time.Second,
		logger:     log.With().Str("component", "sqs_reloader").Logger(),
	}
}

// Start inicia o monitoramento (bloqueante até ctx ser cancelado).
func (s *SQSReloader) Start(ctx context.Context) {
	if s.queueURL == "" {
		s.logger.Warn().Msg("URL da fila SQS não configurada. Hot Reload desativado.")
		return
	}

	s.logger.Info().Str("queue", s.queueURL).Msg("monitorando fila SQS para hot reload")

	for {
		select {
		case <-ctx.Done():
			s.logger.Info().Msg("parando monitoramento SQS")
			return
		default:
		}

		out, err := s.client.ReceiveMessage(ctx, &sqs.ReceiveMessageInput{
			QueueUrl:            aws.String(s.queueURL),
			MaxNumberOfMessages: 1,
			WaitTimeSeconds:     20, // Long polling
		})
		if err != nil {
			if ctx.Err() != nil {
				return
			}
			s.logger.Error().Err(err).Dur("retry_in", s.retryDelay).Msg("erro no SQS")
			select {
			case <-ctx.Done():
				return
			case <-time.After(s.retryDelay):
			}
			continue
		}

		if len(out.Messages) == 0 {
			continue
		}

		s.logger.Info().Msg("evento de alteração recebido via SQS")
		if err := s.reloader.Reload(); err != nil {
			s.logger.Error().Err(err).Msg("falha no reload, configuração anterior mantida")
		}

		// A mensagem é removida mesmo com falha: reprocessar a mesma config não ajuda
		_, _ = s.client.DeleteMessage(ctx, &sqs.DeleteMessageInput{
			QueueUrl:      aws.String(s.queueURL),
			ReceiptHandle: out.Messages[0].ReceiptHandle,
		})
	}
}
