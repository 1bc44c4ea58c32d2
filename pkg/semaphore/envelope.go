package semaphore

// Envelope é o documento entregue ao CMS.
// O envelope vazio (Result nil) serializa como {}.
type Envelope struct {
	Result *TagResult `json:"result,omitempty"`
}

type TagResult struct {
	Tags    TagSet     `json:"tags"`
	Broader BroaderSet `json:"broader"`
}

// TagSet traz as categorias do CMS. Object é reservado: o Semaphore ainda
// não tem essa categoria e a lista sai sempre vazia.
type TagSet struct {
	Subject      []Tag `json:"subject"`
	Organisation []Tag `json:"organisation"`
	Person       []Tag `json:"person"`
	Event        []Tag `json:"event"`
	Place        []Tag `json:"place"`
	Object       []Tag `json:"object"`
}

type BroaderSet struct {
	Subject []Tag `json:"subject"`
}

// IsEmpty indica o envelope vazio (serviço desabilitado ou falha no fornecedor).
func (e Envelope) IsEmpty() bool {
	return e.Result == nil
}

// Shape embrulha as categorias no envelope final.
func Shape(b *Buckets) Envelope {
	if b == nil {
		b = &Buckets{}
	}
	return Envelope{Result: &TagResult{
		Tags: TagSet{
			Subject:      orEmpty(b.Subject),
			Organisation: orEmpty(b.Organisation),
			Person:       orEmpty(b.Person),
			Event:        orEmpty(b.Event),
			Place:        orEmpty(b.Place),
			Object:       []Tag{},
		},
		Broader: BroaderSet{Subject: orEmpty(b.Broader)},
	}}
}

func orEmpty(tags []Tag) []Tag {
	if tags == nil {
		return []Tag{}
	}
	return tags
}
