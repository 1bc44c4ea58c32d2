// Package semaphore_tagger fornece o adaptador de auto-tagging entre o CMS
// e o serviço de classificação Semaphore.
//
// Visão Geral:
// O adaptador recebe um artigo (ou uma busca textual), conversa com o
// Semaphore e devolve tags normalizadas agrupadas por categoria:
// subject, organisation, person, event, place e broader.
//
// Fluxos suportados:
//
// 1. Classificação de artigo:
//   - Monta o XML de requisição a partir de headline, slugline, abstract e body_html.
//   - Obtém um token de acesso (grant_type=apikey) e faz o POST do formulário XML_INPUT.
//   - Converte os elementos META da resposta em tags, desduplicando por nome e qcode.
//
// 2. Busca textual (searchString):
//   - Faz o GET em SearchURL/<consulta>.json e lê os termHints.
//   - Para tópicos, resolve a cadeia de ancestrais e emite os termos "broader".
//
// Sub-Pacotes Principais:
//
// 1. envloader:
//   - Carregamento de configurações via tags "env" e "envDefault".
//
// 2. pkg/config:
//   - Estrutura de configuração (YAML + ambiente) e validação com validator/v10.
//
// 3. pkg/semaphore:
//   - Montagem de requisição, normalização das respostas e resolução de ancestrais.
//
// 4. pkg/auth e pkg/outbound:
//   - Obtenção/cache de tokens (memória ou Redis) e chamadas HTTP com timeouts.
//
// 5. pkg/engine e pkg/transport:
//   - Montagem do adaptador a partir da configuração, hot reload via SQS e
//     exposição HTTP local ou via AWS Lambda.
//
// 6. pkg/formatter:
//   - Formatter de saída "semaphore" para artigos do tipo texto.
//
// Exemplo de Início Rápido:
//
//	package main
//
//	import (
//		"context"
//		"fmt"
//		"log"
//
//		"github.com/raywall/semaphore-tagger/pkg/engine"
//	)
//
//	func main() {
//		ctx := context.Background()
//
//		eng, err := engine.DefaultFactory()(ctx)
//		if err != nil {
//			log.Fatalf("Falha ao montar o adaptador: %v", err)
//		}
//
//		envelope, err := eng.Service.Analyze(ctx, map[string]any{
//			"guid":      "urn:article:1",
//			"headline":  "Primeiro-ministro visita Ottawa",
//			"slugline":  "visita",
//			"abstract":  "",
//			"body_html": "<p>Texto</p>",
//		})
//		if err != nil {
//			log.Fatal(err)
//		}
//		fmt.Println(envelope)
//	}
package semaphore_tagger
