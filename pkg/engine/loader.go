package engine

import (
	"context"
	"fmt"
	"io"
	"net/url"
	"os"
	"strings"

	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/raywall/semaphore-tagger/envloader"
	"github.com/raywall/semaphore-tagger/pkg/config"
	"github.com/raywall/semaphore-tagger/pkg/secrets"
)

// --- Interfaces para Mocking ---

type S3Downloader interface {
	GetObject(ctx context.Context, params *s3.GetObjectInput, optFns ...func(*s3.Options)) (*s3.GetObjectOutput, error)
}

type DynamoGetter interface {
	GetItem(ctx context.Context, params *dynamodb.GetItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.GetItemOutput, error)
}

// UniversalLoader lê o YAML base de várias origens (arquivo local, S3, DynamoDB)
// e aplica o ambiente por cima.
type UniversalLoader struct {
	lookup envloader.LookupFunc
	s3     S3Downloader
	dynamo DynamoGetter
}

// NewUniversalLoader cria uma nova instância que lê o ambiente do processo.
// Os clientes AWS são criados sob demanda.
func NewUniversalLoader() *UniversalLoader {
	return &UniversalLoader{lookup: os.LookupEnv}
}

// LoadFromEnv carrega a partir da origem indicada em SEMAPHORE_CONFIG_FILE.
// Sem origem, a configuração vem só do ambiente.
func (ul *UniversalLoader) LoadFromEnv(ctx context.Context) (*config.Config, error) {
	source, _ := ul.lookup(config.EnvConfigFile)
	return ul.Load(ctx, source)
}

// Load detecta o esquema da fonte e carrega a configuração.
func (ul *UniversalLoader) Load(ctx context.Context, source string) (*config.Config, error) {
	var (
		rawData []byte
		err     error
	)

	switch {
	case source == "":
		// Só ambiente
	case strings.HasPrefix(source, "s3://"):
		var client S3Downloader
		if client, err = ul.s3Client(ctx); err == nil {
			rawData, err = ul.loadFromS3Internal(ctx, client, source)
		}
	case strings.HasPrefix(source, "dynamodb://"):
		var client DynamoGetter
		if client, err = ul.dynamoClient(ctx); err == nil {
			rawData, err = ul.loadFromDynamoDBInternal(ctx, client, source)
		}
	default:
		rawData, err = ul.loadFromFile(source)
	}

	if err != nil {
		return nil, fmt.Errorf("falha leitura config (%s): %w", source, err)
	}

	cfg, err := config.Parse(rawData, ul.lookup)
	if err != nil {
		return nil, fmt.Errorf("validação da configuração falhou: %w", err)
	}
	return cfg, nil
}

func (ul *UniversalLoader) s3Client(ctx context.Context) (S3Downloader, error) {
	if ul.s3 != nil {
		return ul.s3, nil
	}
	awsCfg, err := secrets.GetAWSConfig(ctx, "")
	if err != nil {
		return nil, err
	}
	return s3.NewFromConfig(awsCfg), nil
}

func (ul *UniversalLoader) dynamoClient(ctx context.Context) (DynamoGetter, error) {
	if ul.dynamo != nil {
		return ul.dynamo, nil
	}
	awsCfg, err := secrets.GetAWSConfig(ctx, "")
	if err != nil {
		return nil, err
	}
	return dynamodb.NewFromConfig(awsCfg), nil
}

// --- Estratégias de carregamento (métodos internos testáveis) ---

func (ul *UniversalLoader) loadFromFile(path string) ([]byte, error) {
	// Suporta tanto "file://config.yaml" quanto apenas "config.yaml"
	cleanPath := strings.TrimPrefix(path, "file://")
	return os.ReadFile(cleanPath)
}

func (ul *UniversalLoader) loadFromS3Internal(ctx context.Context, client S3Downloader, uri string) ([]byte, error) {
	u, err := url.Parse(uri)
	if err != nil {
		return nil, fmt.Errorf("URL S3 inválida: %w", err)
	}
	bucket := u.Host
	key := strings.TrimPrefix(u.Path, "/")

	out, err := client.GetObject(ctx, &s3.GetObjectInput{
		Bucket: &bucket,
		Key:    &key,
	})
	if err != nil {
		return nil, err
	}
	defer out.Body.Close()

	return io.ReadAll(out.Body)
}

// loadFromDynamoDBInternal lê o YAML guardado em uma coluna.
// URI: dynamodb://tabela/chave?col=config&pk=id
func (ul *UniversalLoader) loadFromDynamoDBInternal(ctx context.Context, client DynamoGetter, uri string) ([]byte, error) {
	u, err := url.Parse(uri)
	if err != nil {
		return nil, fmt.Errorf("URL DynamoDB inválida: %w", err)
	}

	tableName := u.Host
	pkValue := strings.TrimPrefix(u.Path, "/")

	colName := u.Query().Get("col")
	if colName == "" {
		colName = "config"
	}

	pkName := u.Query().Get("pk")
	if pkName == "" {
		pkName = "id"
	}

	out, err := client.GetItem(ctx, &dynamodb.GetItemInput{
		TableName: &tableName,
		Key: map[string]types.AttributeValue{
			pkName: &types.AttributeValueMemberS{Value: pkValue},
		},
	})
	if err != nil {
		return nil, err
	}

	if out.Item == nil {
		return nil, fmt.Errorf("item não encontrado no DynamoDB")
	}

	var itemMap map[string]interface{}
	if err := attributevalue.UnmarshalMap(out.Item, &itemMap); err != nil {
		return nil, err
	}

	content, ok := itemMap[colName].(string)
	if !ok {
		return nil, fmt.Errorf("coluna '%s' inválida ou vazia no DynamoDB", colName)
	}

	return []byte(content), nil
}
