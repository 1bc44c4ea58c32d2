package secrets

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/service/secretsmanager"
	"github.com/aws/aws-sdk-go-v2/service/ssm"
	appcfg "github.com/raywall/semaphore-tagger/pkg/config"
	"github.com/rs/zerolog/log"
)

// APIKeyField é o campo lido quando o segredo é um JSON.
const APIKeyField = "api_key"

// Interfaces para abstrair o SDK da AWS (Permite Mocking)
type SSMClient interface {
	GetParameter(ctx context.Context, params *ssm.GetParameterInput, optFns ...func(*ssm.Options)) (*ssm.GetParameterOutput, error)
}

type SecretsClient interface {
	GetSecretValue(ctx context.Context, params *secretsmanager.GetSecretValueInput, optFns ...func(*secretsmanager.Options)) (*secretsmanager.GetSecretValueOutput, error)
}

// Resolver busca a API key do Semaphore no Secrets Manager ou no SSM.
type Resolver struct {
	SSM     SSMClient
	Secrets SecretsClient
}

// NewResolver inicializa os clients reais da AWS.
func NewResolver(ctx context.Context, region string) (*Resolver, error) {
	cfg, err := GetAWSConfig(ctx, region)
	if err != nil {
		return nil, fmt.Errorf("erro ao carregar configuração AWS: %w", err)
	}
	return &Resolver{
		SSM:     ssm.NewFromConfig(cfg),
		Secrets: secretsmanager.NewFromConfig(cfg),
	}, nil
}

// APIKey resolve a chave. O Secrets Manager tem precedência sobre o SSM.
func (r *Resolver) APIKey(ctx context.Context, cfg appcfg.SecretsConf) (string, error) {
	switch {
	case cfg.APIKeySecretID != "":
		return r.fromSecret(ctx, cfg.APIKeySecretID)
	case cfg.APIKeyParameter != "":
		return r.fromParameter(ctx, cfg.APIKeyParameter)
	}
	return "", errors.New("nenhuma origem de API key configurada")
}

func (r *Resolver) fromParameter(ctx context.Context, path string) (string, error) {
	if r.SSM == nil {
		return "", errors.New("client SSM não configurado")
	}
	decrypt := true
	out, err := r.SSM.GetParameter(ctx, &ssm.GetParameterInput{
		Name:           &path,
		WithDecryption: &decrypt,
	})
	if err != nil {
		return "", fmt.Errorf("erro no SSM GetParameter: %w", err)
	}
	if out.Parameter == nil || out.Parameter.Value == nil {
		return "", fmt.Errorf("parâmetro %s sem valor", path)
	}
	return *out.Parameter.Value, nil
}

func (r *Resolver) fromSecret(ctx context.Context, secretID string) (string, error) {
	if r.Secrets == nil {
		return "", errors.New("client SecretsManager não configurado")
	}
	out, err := r.Secrets.GetSecretValue(ctx, &secretsmanager.GetSecretValueInput{
		SecretId: &secretID,
	})
	if err != nil {
		return "", fmt.Errorf("erro no SecretsManager: %w", err)
	}
	if out.SecretString == nil {
		return "", fmt.Errorf("segredo %s sem SecretString", secretID)
	}

	val := *out.SecretString

	// Tenta decodificar JSON; texto puro é a própria chave
	var data map[string]interface{}
	if err := json.Unmarshal([]byte(val), &data); err != nil {
		return val, nil
	}
	key, ok := data[APIKeyField].(string)
	if !ok || key == "" {
		return "", fmt.Errorf("segredo %s não contém o campo %s", secretID, APIKeyField)
	}
	return key, nil
}

// Fill preenche cfg.Semaphore.APIKey quando ela não veio do ambiente.
// newResolver só é chamado se houver busca a fazer.
func Fill(ctx context.Context, cfg *appcfg.Config, newResolver func(ctx context.Context, region string) (*Resolver, error)) error {
	if !cfg.NeedsAPIKeyLookup() {
		return nil
	}

	r, err := newResolver(ctx, cfg.Secrets.Region)
	if err != nil {
		return err
	}
	key, err := r.APIKey(ctx, cfg.Secrets)
	if err != nil {
		return err
	}

	cfg.Semaphore.APIKey = key
	log.Info().Msg("API key do Semaphore carregada da AWS")
	return nil
}
