package main

import (
	"context"
	"fmt"
	"log"

	"github.com/aws/aws-lambda-go/lambda"
	"github.com/aws/aws-sdk-go-v2/service/sqs"
	"github.com/joho/godotenv"
	"github.com/raywall/semaphore-tagger/pkg/engine"
	"github.com/raywall/semaphore-tagger/pkg/secrets"
	"github.com/raywall/semaphore-tagger/pkg/transport"
)

var (
	// Variáveis injetáveis para mocking
	factory       = engine.DefaultFactory()
	serverStarter = transport.StartHTTPServer
	lambdaStarter = lambda.Start
	reloadStarter = startReloader
)

func main() {
	// .env é opcional: em produção as variáveis vêm do ambiente
	_ = godotenv.Load()

	if err := run(context.Background()); err != nil {
		log.Fatalf("FATAL: %v", err)
	}
}

// run contém a lógica principal testável
func run(ctx context.Context) error {
	holder, err := engine.NewHolder(ctx, factory)
	if err != nil {
		return err
	}
	cfg := holder.Current().Config

	if cfg.Service.ReloadQueueURL != "" {
		if err := reloadStarter(ctx, cfg.Service.ReloadQueueURL, cfg.Secrets.Region, holder); err != nil {
			return fmt.Errorf("falha ao iniciar hot reload: %w", err)
		}
	}

	switch cfg.Service.Runtime {
	case "local":
		return serverStarter(holder, cfg.Service.Port)
	case "lambda":
		handler := transport.NewLambdaHandler(holder)
		lambdaStarter(handler.Handle)
		return nil
	default:
		return fmt.Errorf("runtime desconhecido: %s", cfg.Service.Runtime)
	}
}

func startReloader(ctx context.Context, queueURL, region string, reloader transport.Reloader) error {
	awsCfg, err := secrets.GetAWSConfig(ctx, region)
	if err != nil {
		return err
	}
	go transport.NewSQSReloader(sqs.NewFromConfig(awsCfg), queueURL, reloader).Start(ctx)
	return nil
}

