package semaphore

import "strings"

const (
	metaPathLabel = "Media Topic_PATH_LABEL"
	metaPathGUID  = "Media Topic_PATH_GUID"
)

// metaRule associa um trecho do nome do META a uma categoria.
type metaRule struct {
	match    string
	category Category
	scheme   string
}

// A primeira regra que casa vence.
var analyzeRules = []metaRule{
	{match: "Organization", category: CategoryOrganisation, scheme: SchemeOrganisation},
	{match: "Person", category: CategoryPerson, scheme: SchemePerson},
	{match: "Event", category: CategoryEvent, scheme: SchemeEvent},
	{match: "Place", category: CategoryPlace, scheme: SchemePlace},
}

// topicPaths acumula os caminhos de Media Topic por score, na ordem em que
// os labels aparecem.
type topicPaths struct {
	order  []string
	labels map[string][]string
	guids  map[string][]string
}

func newTopicPaths() *topicPaths {
	return &topicPaths{labels: map[string][]string{}, guids: map[string][]string{}}
}

func (p *topicPaths) setLabels(score, value string) {
	if _, seen := p.labels[score]; !seen {
		p.order = append(p.order, score)
	}
	p.labels[score] = splitPath(value)
}

func (p *topicPaths) setGUIDs(score, value string) {
	p.guids[score] = splitPath(value)
}

// splitPath separa o caminho por "/" e descarta o primeiro segmento, que é a
// raiz do vocabulário: "/A/B/C" vira [B C].
func splitPath(value string) []string {
	parts := strings.Split(strings.TrimPrefix(value, "/"), "/")
	return parts[1:]
}

// NormalizeAnalyze converte a resposta XML do classify nas categorias do CMS.
// Só os caminhos de Media Topic populam subject; METAs de categorias
// desconhecidas são descartados.
func NormalizeAnalyze(data []byte) (*Buckets, error) {
	root, err := parseXMLTree(data)
	if err != nil {
		return nil, err
	}

	out := &Buckets{}
	paths := newTopicPaths()

	root.iter(func(n *xmlNode) {
		if n.XMLName.Local != "META" {
			return
		}
		name, _ := n.attr("name")
		value, _ := n.attr("value")
		score, _ := n.attr("score")
		id, _ := n.attr("id")

		switch name {
		case metaPathLabel:
			paths.setLabels(score, value)
		case metaPathGUID:
			paths.setGUIDs(score, value)
		default:
			for _, rule := range analyzeRules {
				if strings.Contains(name, rule.match) {
					out.AddUnique(rule.category, newTag(value, id, rule.scheme, nil))
					break
				}
			}
		}
	})

	for _, score := range paths.order {
		labels := paths.labels[score]
		guids := paths.guids[score]
		if len(labels) != len(guids) {
			continue
		}

		var parent *string
		for i, label := range labels {
			out.AddUnique(CategorySubject, newTag(label, guids[i], SchemeMediaTopic, parent))
			parent = strPtr(guids[i])
		}
	}

	return out, nil
}
