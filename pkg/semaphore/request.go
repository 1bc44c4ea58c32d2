package semaphore

import (
	"fmt"
	"strings"

	"github.com/raywall/semaphore-tagger/pkg/sanitize"
)

// Campos obrigatórios do artigo para o classify.
const (
	FieldBodyHTML = "body_html"
	FieldHeadline = "headline"
	FieldAbstract = "abstract"
	FieldSlugline = "slugline"
)

// ArticleFields são os campos do artigo enviados ao classificador.
type ArticleFields struct {
	BodyHTML string `json:"body_html"`
	Headline string `json:"headline"`
	Abstract string `json:"abstract"`
	Slugline string `json:"slugline"`
}

// ArticleFieldsFrom extrai os campos de um registro do CMS.
// Valores nulos viram string vazia; chaves ausentes geram *MissingFieldError.
func ArticleFieldsFrom(article map[string]any) (ArticleFields, error) {
	get := func(key string) (string, error) {
		v, ok := article[key]
		if !ok {
			return "", &MissingFieldError{Field: key}
		}
		switch val := v.(type) {
		case nil:
			return "", nil
		case string:
			return val, nil
		default:
			return fmt.Sprint(val), nil
		}
	}

	var (
		f   ArticleFields
		err error
	)
	if f.BodyHTML, err = get(FieldBodyHTML); err != nil {
		return ArticleFields{}, err
	}
	if f.Headline, err = get(FieldHeadline); err != nil {
		return ArticleFields{}, err
	}
	if f.Abstract, err = get(FieldAbstract); err != nil {
		return ArticleFields{}, err
	}
	if f.Slugline, err = get(FieldSlugline); err != nil {
		return ArticleFields{}, err
	}
	return f, nil
}

// classifyTemplate é o envelope exigido pelo fornecedor: o <body> externo carrega
// um segundo documento XML escapado como texto. Deve ser mantido byte a byte.
const classifyTemplate = `<?xml version="1.0" ?>
                <request op="CLASSIFY">
                <document>
                    <body>&lt;?xml version=&quot;1.0&quot; encoding=&quot;UTF-8&quot;?&gt;
                &lt;story&gt;
                    &lt;headline&gt;%s&lt;/headline&gt;
                    &lt;headline_extended&gt;%s&lt;/headline_extended&gt;
                    &lt;body_html&gt;%s&lt;/body_html&gt;
                    &lt;slugline&gt;%s&lt;/slugline&gt;
                &lt;/story&gt;
                </body>
                </document>
                </request>
                `

var xmlTextEscaper = strings.NewReplacer("&", "&amp;", "<", "&lt;", ">", "&gt;", `"`, "&quot;")

// RequestBuilder monta o XML de classify a partir dos campos do artigo.
type RequestBuilder struct {
	// Document é aplicado ao documento já montado (modo legado).
	Document sanitize.Sanitizer
	// Body, quando definido, extrai o texto do body_html. Os demais campos são
	// texto puro e nunca passam pelo parser HTML.
	Body sanitize.Sanitizer
	// Escape escapa cada campo para o documento interno e para o envelope externo.
	Escape bool
}

// NewRequestBuilder cria o builder compatível com o contrato atual:
// campos inseridos crus e remoção literal de tokens no documento inteiro.
func NewRequestBuilder() *RequestBuilder {
	return &RequestBuilder{Document: sanitize.Legacy{}}
}

// NewHTMLRequestBuilder usa um parser HTML real no body_html e escapa todos os campos.
func NewHTMLRequestBuilder() *RequestBuilder {
	return &RequestBuilder{Body: sanitize.HTMLText{}, Escape: true}
}

// Build devolve o XML de requisição.
func (b *RequestBuilder) Build(f ArticleFields) string {
	body := f.BodyHTML
	if b.Body != nil {
		body = b.Body.Sanitize(body)
	}

	fields := []string{f.Headline, f.Abstract, body, f.Slugline}
	args := make([]any, len(fields))
	for i, v := range fields {
		if b.Escape {
			v = xmlTextEscaper.Replace(xmlTextEscaper.Replace(v))
		}
		args[i] = v
	}

	out := fmt.Sprintf(classifyTemplate, args...)
	if b.Document != nil {
		out = b.Document.Sanitize(out)
	}
	return out
}
