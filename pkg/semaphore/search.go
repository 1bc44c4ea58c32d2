package semaphore

import (
	"context"
	"encoding/json"
	"errors"
	"slices"

	"github.com/rs/zerolog"
)

// searchRule mapeia uma classe do fornecedor para a categoria do CMS.
// A grafia segue exatamente o vocabulário do Semaphore ("People" no plural).
type searchRule struct {
	class    string
	category Category
	scheme   string
}

var searchRules = []searchRule{
	{class: "Organization", category: CategoryOrganisation, scheme: SchemeOrganisation},
	{class: "People", category: CategoryPerson, scheme: SchemePerson},
	{class: "Event", category: CategoryEvent, scheme: SchemeEvent},
	{class: "Place", category: CategoryPlace, scheme: SchemePlace},
}

type termHint struct {
	Classes []string `json:"classes"`
	Name    *string  `json:"name"`
	ID      *string  `json:"id"`
}

type searchResponse struct {
	TermHints *[]termHint `json:"termHints"`
}

// SearchNormalizer converte a resposta JSON do search, resolvendo os termos
// mais amplos de cada subject.
type SearchNormalizer struct {
	parents ParentLookup
	logger  zerolog.Logger
}

func NewSearchNormalizer(parents ParentLookup, log zerolog.Logger) *SearchNormalizer {
	return &SearchNormalizer{parents: parents, logger: log}
}

// Normalize não deduplica: cada hint gera uma tag, e cada cadeia de pais
// é anexada inteira ao bucket broader.
func (n *SearchNormalizer) Normalize(ctx context.Context, data []byte) (*Buckets, error) {
	var resp searchResponse
	if err := json.Unmarshal(data, &resp); err != nil {
		return nil, &ParseError{Format: "json", Err: err}
	}
	if resp.TermHints == nil {
		return nil, &ParseError{Format: "json", Err: errors.New("campo termHints ausente")}
	}

	out := &Buckets{}
	for i, hint := range *resp.TermHints {
		if hint.ID == nil || hint.Name == nil {
			n.logger.Warn().Int("index", i).Msg("termHint sem id ou name ignorado")
			continue
		}

		if rule, ok := matchSearchRule(hint.Classes); ok {
			out.Append(rule.category, newTag(*hint.Name, *hint.ID, rule.scheme, nil))
			continue
		}

		n.appendSubject(ctx, out, *hint.Name, *hint.ID)
	}

	return out, nil
}

func matchSearchRule(classes []string) (searchRule, bool) {
	for _, rule := range searchRules {
		if slices.Contains(classes, rule.class) {
			return rule, true
		}
	}
	return searchRule{}, false
}

func (n *SearchNormalizer) appendSubject(ctx context.Context, out *Buckets, name, id string) {
	subject := newTag(name, id, SchemeMediaTopic, nil)

	var rootFirst []Term
	if n.parents != nil {
		_, rootFirst = n.parents.Resolve(ctx, id)
	}
	if len(rootFirst) > 0 {
		subject.Parent = strPtr(rootFirst[0].QCode)
		subject.Scheme = SchemeMediaTopic
	}
	out.Append(CategorySubject, subject)

	for i, term := range rootFirst {
		var parent *string
		if i+1 < len(rootFirst) {
			parent = strPtr(rootFirst[i+1].QCode)
		}
		out.Broader = append(out.Broader, newTag(term.Name, term.QCode, SchemeMediaTopic, parent))
	}
}
