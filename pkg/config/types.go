package config

import "time"

// Config representa a configuração completa do adaptador Semaphore.
//
// Pode ser carregada de um YAML (SEMAPHORE_CONFIG_FILE) e sobrescrita
// por variáveis de ambiente.
type Config struct {
	Semaphore SemaphoreConf `yaml:"semaphore"`
	HTTP      HTTPConf      `yaml:"http"`
	Token     TokenConf     `yaml:"token"`
	Secrets   SecretsConf   `yaml:"secrets"`
	Rules     RulesConf     `yaml:"rules"`
	Service   ServiceConf   `yaml:"service"`
	Logging   LoggingConf   `yaml:"logging"`
	Metrics   MetricsConf   `yaml:"metrics"`
}

// SemaphoreConf contém os endpoints e a credencial do fornecedor.
type SemaphoreConf struct {
	BaseURL      string `yaml:"base_url" env:"SEMAPHORE_BASE_URL" validate:"omitempty,url"` // endpoint de token
	AnalyzeURL   string `yaml:"analyze_url" env:"SEMAPHORE_ANALYZE_URL" validate:"omitempty,url"`
	SearchURL    string `yaml:"search_url" env:"SEMAPHORE_SEARCH_URL" validate:"omitempty,url"`
	GetParentURL string `yaml:"get_parent_url" env:"SEMAPHORE_GET_PARENT_URL" validate:"omitempty,url"`
	APIKey       string `yaml:"api_key" env:"SEMAPHORE_API_KEY"`
	Sanitizer    string `yaml:"sanitizer" env:"SEMAPHORE_SANITIZER" envDefault:"legacy" validate:"oneof=legacy html"`
}

type HTTPConf struct {
	ConnectTimeout time.Duration `yaml:"connect_timeout" env:"SEMAPHORE_CONNECT_TIMEOUT" envDefault:"5s" validate:"gt=0"`
	ReadTimeout    time.Duration `yaml:"read_timeout" env:"SEMAPHORE_READ_TIMEOUT" envDefault:"30s" validate:"gt=0"`
	UserAgent      string        `yaml:"user_agent" env:"SEMAPHORE_USER_AGENT" envDefault:"SemaphoreTagger/1.0"`
}

// TokenConf define a estratégia de cache do bearer token.
type TokenConf struct {
	Cache         string        `yaml:"cache" env:"SEMAPHORE_TOKEN_CACHE" envDefault:"none" validate:"oneof=none memory redis"`
	TTL           time.Duration `yaml:"ttl" env:"SEMAPHORE_TOKEN_TTL" envDefault:"5m"` // usado quando o provedor não informa expires_in
	RedisAddr     string        `yaml:"redis_addr" env:"SEMAPHORE_REDIS_ADDR" validate:"required_if=Cache redis"`
	RedisPassword string        `yaml:"redis_password" env:"SEMAPHORE_REDIS_PASSWORD"`
	RedisKey      string        `yaml:"redis_key" env:"SEMAPHORE_REDIS_KEY" envDefault:"semaphore:access_token"`
}

// SecretsConf permite buscar a API key na AWS quando ela não vem do ambiente.
type SecretsConf struct {
	APIKeySecretID  string `yaml:"api_key_secret_id" env:"SEMAPHORE_API_KEY_SECRET_ID"`
	APIKeyParameter string `yaml:"api_key_parameter" env:"SEMAPHORE_API_KEY_PARAMETER"`
	Region          string `yaml:"region" env:"AWS_REGION"`
}

type RulesConf struct {
	TagFilter string `yaml:"tag_filter" env:"SEMAPHORE_TAG_FILTER"` // expressão CEL
}

type ServiceConf struct {
	Runtime        string `yaml:"runtime" env:"SERVICE_RUNTIME" envDefault:"local" validate:"oneof=local lambda"`
	Port           int    `yaml:"port" env:"PORT" envDefault:"8080" validate:"required_if=Runtime local"`
	ReloadQueueURL string `yaml:"reload_queue_url" env:"SEMAPHORE_RELOAD_QUEUE_URL" validate:"omitempty,url"` // fila SQS de hot reload
}

type LoggingConf struct {
	Enabled bool   `yaml:"enabled" env:"LOG_ENABLED" envDefault:"true"`
	Level   string `yaml:"level" env:"LOG_LEVEL" envDefault:"info" validate:"oneof=debug info warn error"`
	Format  string `yaml:"format" env:"LOG_FORMAT" envDefault:"json" validate:"oneof=json console"`
}

type MetricsConf struct {
	Datadog DatadogConf `yaml:"datadog"`
}

type DatadogConf struct {
	Enabled   bool   `yaml:"enabled" env:"DD_ENABLED"`
	Addr      string `yaml:"addr" env:"DD_AGENT_HOST" validate:"required_if=Enabled true"`
	Namespace string `yaml:"namespace" env:"DD_NAMESPACE" envDefault:"semaphore."`
}

// Enabled indica se o adaptador tem o mínimo para falar com o fornecedor.
// Sem endpoint de token ou API key o serviço se desabilita sozinho.
func (c *Config) Enabled() bool {
	return c.Semaphore.BaseURL != "" && c.Semaphore.APIKey != ""
}

// NeedsAPIKeyLookup indica se a API key deve ser resolvida no Secrets Manager ou SSM.
func (c *Config) NeedsAPIKeyLookup() bool {
	return c.Semaphore.APIKey == "" && (c.Secrets.APIKeySecretID != "" || c.Secrets.APIKeyParameter != "")
}
