package main

import (
	"fmt"

	"github.com/raywall/semaphore-tagger/pkg/semaphore"
	"github.com/spf13/cobra"
)

func newAnalyzeCmd(build engineBuilder) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "analyze",
		Short: "Classifica um artigo e imprime o envelope de tags",
		RunE: func(cmd *cobra.Command, args []string) error {
			file, _ := cmd.Flags().GetString("file")
			article, err := readArticle(cmd, file)
			if err != nil {
				return err
			}

			eng, err := build(cmd.Context())
			if err != nil {
				return err
			}
			if err := requireEnabled(eng); err != nil {
				return err
			}

			env, err := eng.Service.Analyze(cmd.Context(), article)
			if err != nil {
				return err
			}
			return printJSON(cmd, env)
		},
	}

	cmd.Flags().StringP("file", "f", "", "Arquivo JSON do artigo (- para stdin)")
	cmd.MarkFlagRequired("file")
	return cmd
}

func newSearchCmd(build engineBuilder) *cobra.Command {
	return &cobra.Command{
		Use:   "search <query>",
		Short: "Busca termos na taxonomia",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			eng, err := build(cmd.Context())
			if err != nil {
				return err
			}
			if err := requireEnabled(eng); err != nil {
				return err
			}

			env, err := eng.Service.Analyze(cmd.Context(), map[string]any{semaphore.SearchKey: args[0]})
			if err != nil {
				return err
			}
			return printJSON(cmd, env)
		},
	}
}

func newParentsCmd(build engineBuilder) *cobra.Command {
	return &cobra.Command{
		Use:   "parents <term-id>",
		Short: "Mostra a cadeia de termos mais amplos de um termo",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			eng, err := build(cmd.Context())
			if err != nil {
				return err
			}

			leafFirst, rootFirst, err := eng.Service.ResolveParents(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			return printJSON(cmd, map[string]any{
				"term":       args[0],
				"leaf_first": orEmpty(leafFirst),
				"root_first": orEmpty(rootFirst),
			})
		},
	}
}

func newRequestCmd(build engineBuilder) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "request",
		Short: "Imprime o XML de classify sem chamar o Semaphore",
		RunE: func(cmd *cobra.Command, args []string) error {
			file, _ := cmd.Flags().GetString("file")
			article, err := readArticle(cmd, file)
			if err != nil {
				return err
			}

			eng, err := build(cmd.Context())
			if err != nil {
				return err
			}

			payload, err := eng.Service.BuildRequest(article)
			if err != nil {
				return err
			}
			_, err = fmt.Fprint(cmd.OutOrStdout(), payload)
			return err
		},
	}

	cmd.Flags().StringP("file", "f", "", "Arquivo JSON do artigo (- para stdin)")
	cmd.MarkFlagRequired("file")
	return cmd
}

func orEmpty(terms []semaphore.Term) []semaphore.Term {
	if terms == nil {
		return []semaphore.Term{}
	}
	return terms
}
