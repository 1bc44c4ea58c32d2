package rules

import (
	"github.com/google/cel-go/cel"
	"github.com/raywall/semaphore-tagger/pkg/semaphore"
)

// TagFilter aplica uma expressão CEL a cada tag antes de montar o envelope.
// Ex: `category != "broader" || tag.qcode.startsWith("medtop:")`
type TagFilter struct {
	expression string
	program    cel.Program
}

// NewTagFilter compila a expressão uma única vez. Expressão vazia devolve nil,
// o que desliga o filtro.
func NewTagFilter(rm *RuleManager, expression string) (*TagFilter, error) {
	if expression == "" {
		return nil, nil
	}
	prg, err := rm.CompileProgram(expression)
	if err != nil {
		return nil, err
	}
	return &TagFilter{expression: expression, program: prg}, nil
}

// Keep avalia a expressão para a tag.
func (f *TagFilter) Keep(category string, t semaphore.Tag) (bool, error) {
	return evalBool(f.program, map[string]interface{}{
		"category": category,
		"tag":      tagVars(t),
	})
}

func (f *TagFilter) String() string {
	return f.expression
}

func tagVars(t semaphore.Tag) map[string]interface{} {
	var parent interface{}
	if t.Parent != nil {
		parent = *t.Parent
	}
	return map[string]interface{}{
		"name":   t.Name,
		"qcode":  t.QCode,
		"scheme": t.Scheme,
		"source": t.Source,
		"parent": parent,
	}
}
