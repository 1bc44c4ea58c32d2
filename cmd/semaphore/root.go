package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/raywall/semaphore-tagger/pkg/config"
	"github.com/raywall/semaphore-tagger/pkg/engine"
	"github.com/spf13/cobra"
)

// engineBuilder monta o Engine usado pelos comandos.
type engineBuilder func(ctx context.Context) (*engine.Engine, error)

// defaultEngine lê o ambiente como o servidor, mas só loga erros no stderr
// para não poluir a saída JSON.
func defaultEngine(ctx context.Context) (*engine.Engine, error) {
	if _, ok := os.LookupEnv("LOG_LEVEL"); !ok {
		os.Setenv("LOG_LEVEL", "error")
	}
	return engine.DefaultFactory(engine.WithLogOutput(os.Stderr))(ctx)
}

func newRootCmd(build engineBuilder) *cobra.Command {
	root := &cobra.Command{
		Use:           "semaphore",
		Short:         "Auto-tagging de artigos com o Semaphore",
		Long:          "Ferramenta de linha de comando para classificar artigos, buscar termos e inspecionar a taxonomia do Semaphore.",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	root.AddCommand(
		newAnalyzeCmd(build),
		newSearchCmd(build),
		newParentsCmd(build),
		newRequestCmd(build),
	)
	return root
}

// readArticle lê um JSON de artigo do arquivo (ou stdin com "-").
func readArticle(cmd *cobra.Command, path string) (map[string]any, error) {
	var (
		raw []byte
		err error
	)
	if path == "-" {
		raw, err = io.ReadAll(cmd.InOrStdin())
	} else {
		raw, err = os.ReadFile(path)
	}
	if err != nil {
		return nil, fmt.Errorf("read article: %w", err)
	}

	var article map[string]any
	if err := json.Unmarshal(raw, &article); err != nil {
		return nil, fmt.Errorf("parse article: %w", err)
	}
	return article, nil
}

func printJSON(cmd *cobra.Command, v any) error {
	b, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return err
	}
	fmt.Fprintln(cmd.OutOrStdout(), string(b))
	return nil
}

func requireEnabled(eng *engine.Engine) error {
	if !eng.Service.Enabled() {
		return fmt.Errorf("defina SEMAPHORE_BASE_URL e SEMAPHORE_API_KEY (ou %s)", config.EnvConfigFile)
	}
	return nil
}
