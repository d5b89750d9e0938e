package analysis

import "github.com/CWBudde/go-elm-lsp/internal/ast"

// scopeEntry is one lexically visible binding: a function argument, a
// let-bound name, a case-branch binder or a lambda binder.
type scopeEntry struct {
	name  string
	where ast.Range
}

// scope is the ordered list of bindings visible at a point; shadowing
// is implicit by order, so lookups walk backwards.
type scope []scopeEntry

func (s scope) lookup(name string) (ast.Range, bool) {
	for i := len(s) - 1; i >= 0; i-- {
		if s[i].name == name {
			return s[i].where, true
		}
	}
	return ast.Range{}, false
}

// withPattern extends the scope with every binder of a pattern.
func (s scope) withPattern(pattern ast.Pattern) scope {
	for _, binder := range ast.PatternBinders(pattern) {
		s = append(s, scopeEntry{name: binder.Name, where: binder.Range})
	}
	return s
}

// withLetDecls extends the scope with the names every let declaration
// binds: function names and destructured pattern binders.
func (s scope) withLetDecls(decls []ast.Declaration) scope {
	for _, decl := range decls {
		switch d := decl.(type) {
		case *ast.FunctionDecl:
			s = append(s, scopeEntry{name: d.Name, where: d.NameRange})
		case *ast.DestructuringDecl:
			s = s.withPattern(d.Pattern)
		}
	}
	return s
}
