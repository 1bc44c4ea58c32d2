package semaphore

import (
	"bytes"
	"encoding/xml"

	"golang.org/x/net/html/charset"
)

// xmlNode é uma árvore genérica usada para navegar as respostas XML do
// Semaphore, cujos elementos relevantes podem aparecer em qualquer profundidade.
type xmlNode struct {
	XMLName  xml.Name
	Attrs    []xml.Attr `xml:",any,attr"`
	Children []xmlNode  `xml:",any"`
}

func parseXMLTree(data []byte) (*xmlNode, error) {
	dec := xml.NewDecoder(bytes.NewReader(data))
	// O fornecedor pode declarar encodings diferentes de UTF-8
	dec.CharsetReader = charset.NewReaderLabel

	var root xmlNode
	if err := dec.Decode(&root); err != nil {
		return nil, &ParseError{Format: "xml", Err: err}
	}
	return &root, nil
}

func (n *xmlNode) attr(name string) (string, bool) {
	for _, a := range n.Attrs {
		if a.Name.Local == name {
			return a.Value, true
		}
	}
	return "", false
}

// iter percorre o nó e seus descendentes em ordem de documento.
func (n *xmlNode) iter(fn func(*xmlNode)) {
	fn(n)
	for i := range n.Children {
		n.Children[i].iter(fn)
	}
}

// findDescendant devolve o primeiro descendente (excluindo o próprio nó)
// que satisfaz o predicado.
func (n *xmlNode) findDescendant(match func(*xmlNode) bool) *xmlNode {
	for i := range n.Children {
		child := &n.Children[i]
		if match(child) {
			return child
		}
		if found := child.findDescendant(match); found != nil {
			return found
		}
	}
	return nil
}

// child devolve o primeiro filho direto com o nome informado.
func (n *xmlNode) child(name string) *xmlNode {
	for i := range n.Children {
		if n.Children[i].XMLName.Local == name {
			return &n.Children[i]
		}
	}
	return nil
}
