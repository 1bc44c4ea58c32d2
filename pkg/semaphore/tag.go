package semaphore

import "maps"

// Category identifica o grupo da taxonomia do CMS.
type Category string

const (
	CategorySubject      Category = "subject"
	CategoryOrganisation Category = "organisation"
	CategoryPerson       Category = "person"
	CategoryEvent        Category = "event"
	CategoryPlace        Category = "place"
)

// Categories lista as categorias na ordem do documento de saída.
var Categories = []Category{CategorySubject, CategoryOrganisation, CategoryPerson, CategoryEvent, CategoryPlace}

// Schemes de vocabulário controlado por categoria.
const (
	SchemeOrganisation = "http://cv.cp.org/Organizations/"
	SchemePerson       = "http://cv.cp.org/People/"
	SchemeEvent        = "http://cv.cp.org/Events/"
	SchemePlace        = "http://cv.cp.org/Places/"
	SchemeMediaTopic   = "http://cv.iptc.org/newscodes/mediatopic/"
)

const (
	tagSource         = "Semaphore"
	tagOriginalSource = "original_source_value"
)

// Tag é um termo da taxonomia já no formato do CMS.
type Tag struct {
	Name           string            `json:"name"`
	QCode          string            `json:"qcode"`
	Source         string            `json:"source"`
	Scheme         string            `json:"scheme"`
	Parent         *string           `json:"parent"`
	AltIDs         map[string]string `json:"altids"`
	OriginalSource string            `json:"original_source"`
}

func newTag(name, qcode, scheme string, parent *string) Tag {
	return Tag{
		Name:           name,
		QCode:          qcode,
		Source:         tagSource,
		Scheme:         scheme,
		Parent:         parent,
		AltIDs:         map[string]string{"source_name": "source_id"},
		OriginalSource: tagOriginalSource,
	}
}

// ParentQCode devolve o qcode do pai ou "" quando é raiz.
func (t Tag) ParentQCode() string {
	if t.Parent == nil {
		return ""
	}
	return *t.Parent
}

// Equal compara todos os campos, incluindo o valor apontado por Parent.
func (t Tag) Equal(o Tag) bool {
	if t.Name != o.Name || t.QCode != o.QCode || t.Source != o.Source ||
		t.Scheme != o.Scheme || t.OriginalSource != o.OriginalSource {
		return false
	}
	if (t.Parent == nil) != (o.Parent == nil) {
		return false
	}
	if t.Parent != nil && *t.Parent != *o.Parent {
		return false
	}
	return maps.Equal(t.AltIDs, o.AltIDs)
}

func strPtr(s string) *string {
	return &s
}

// Buckets agrupa as tags por categoria na ordem em que foram descobertas.
type Buckets struct {
	Subject      []Tag
	Organisation []Tag
	Person       []Tag
	Event        []Tag
	Place        []Tag
	Broader      []Tag
}

func (b *Buckets) slot(c Category) *[]Tag {
	switch c {
	case CategorySubject:
		return &b.Subject
	case CategoryOrganisation:
		return &b.Organisation
	case CategoryPerson:
		return &b.Person
	case CategoryEvent:
		return &b.Event
	case CategoryPlace:
		return &b.Place
	}
	return nil
}

// Get devolve as tags de uma categoria.
func (b *Buckets) Get(c Category) []Tag {
	if s := b.slot(c); s != nil {
		return *s
	}
	return nil
}

// Append adiciona sem deduplicar.
func (b *Buckets) Append(c Category, t Tag) {
	if s := b.slot(c); s != nil {
		*s = append(*s, t)
	}
}

// AddUnique adiciona apenas tags com qcode que ainda não estão na categoria.
func (b *Buckets) AddUnique(c Category, t Tag) bool {
	s := b.slot(c)
	if s == nil || t.QCode == "" {
		return false
	}
	for _, existing := range *s {
		if existing.Equal(t) {
			return false
		}
	}
	*s = append(*s, t)
	return true
}

// Len soma as tags de todas as categorias, incluindo broader.
func (b *Buckets) Len() int {
	n := len(b.Broader)
	for _, c := range Categories {
		n += len(b.Get(c))
	}
	return n
}
