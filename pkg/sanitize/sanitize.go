// Package sanitize isola a limpeza de HTML aplicada ao conteúdo enviado ao
// Semaphore, permitindo trocar a remoção literal legada por um parser real.
package sanitize

import (
	"strings"

	"golang.org/x/net/html"
)

// Sanitizer transforma um texto antes do envio ao classificador.
type Sanitizer interface {
	Sanitize(s string) string
}

// legacyTokens são removidos nesta ordem, exatamente como o contrato do fornecedor espera.
var legacyTokens = []string{"<p>", "</p>", "<br>", "&nbsp;", "&amp;", "&lt;&gt;"}

// Legacy remove literalmente os tokens legados. Não é um sanitizador de HTML:
// tags com atributos ou aninhadas passam intactas.
// Diferente da remoção de passada única, repete até nenhum token sobrar:
// "<<p>p>" vira "" e não "<p>".
type Legacy struct{}

func (Legacy) Sanitize(s string) string {
	for {
		out := s
		for _, tok := range legacyTokens {
			out = strings.ReplaceAll(out, tok, "")
		}
		// Uma remoção pode formar um novo token (ex: "<<p>p>"); repete até estabilizar
		if out == s {
			return out
		}
		s = out
	}
}

// HTMLText extrai apenas o texto de um fragmento HTML, decodificando entidades
// e colapsando espaços.
type HTMLText struct{}

func (HTMLText) Sanitize(s string) string {
	return Text(s)
}

// Text devolve o conteúdo textual de um fragmento HTML.
func Text(fragment string) string {
	if !strings.ContainsAny(fragment, "<&") {
		return strings.Join(strings.Fields(fragment), " ")
	}

	tokenizer := html.NewTokenizer(strings.NewReader(fragment))
	var b strings.Builder
	skip := 0

	for {
		switch tokenizer.Next() {
		case html.ErrorToken:
			return strings.Join(strings.Fields(b.String()), " ")
		case html.StartTagToken:
			name, _ := tokenizer.TagName()
			switch string(name) {
			case "script", "style":
				skip++
			case "p", "br", "div", "li", "h1", "h2", "h3", "h4", "h5", "h6":
				b.WriteByte(' ')
			}
		case html.EndTagToken:
			name, _ := tokenizer.TagName()
			switch string(name) {
			case "script", "style":
				if skip > 0 {
					skip--
				}
			case "p", "div", "li":
				b.WriteByte(' ')
			}
		case html.SelfClosingTagToken:
			b.WriteByte(' ')
		case html.TextToken:
			if skip == 0 {
				b.Write(tokenizer.Text())
			}
		}
	}
}
