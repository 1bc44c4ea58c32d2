package config

import (
	"fmt"
	"os"

	"github.com/raywall/semaphore-tagger/envloader"
	"gopkg.in/yaml.v3"
)

// EnvConfigFile aponta para um YAML opcional com a configuração base.
const EnvConfigFile = "SEMAPHORE_CONFIG_FILE"

// Load carrega a configuração: primeiro o YAML (se informado), depois o ambiente.
// O resultado é validado antes de ser retornado.
func Load(path string) (*Config, error) {
	return LoadWithLookup(path, os.LookupEnv)
}

// LoadWithLookup é o Load com fonte de variáveis injetável (testes).
func LoadWithLookup(path string, lookup envloader.LookupFunc) (*Config, error) {
	var raw []byte
	if path != "" {
		var err error
		if raw, err = os.ReadFile(path); err != nil {
			return nil, fmt.Errorf("falha leitura config (%s): %w", path, err)
		}
	}
	return Parse(raw, lookup)
}

// Parse decodifica o YAML (vazio é aceito), aplica o ambiente e valida.
func Parse(raw []byte, lookup envloader.LookupFunc) (*Config, error) {
	cfg := &Config{}

	if len(raw) > 0 {
		if err := yaml.Unmarshal(raw, cfg); err != nil {
			return nil, fmt.Errorf("yaml inválido: %w", err)
		}
	}

	if err := envloader.LoadWithLookup(cfg, lookup); err != nil {
		return nil, err
	}

	if err := NewValidator().Validate(cfg); err != nil {
		return nil, err
	}

	return cfg, nil
}
