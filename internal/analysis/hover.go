package analysis

import (
	"fmt"
	"strings"

	"github.com/CWBudde/go-elm-lsp/internal/ast"
	"github.com/CWBudde/go-elm-lsp/internal/project"
)

// Hover renders a markdown payload for the symbol at pos, or none.
// Local project files win over package docs; docs are consulted in
// dependency order, first hit wins.
func Hover(file *ast.File, pos ast.Position, w *Workspace) (string, bool) {
	identity, ok := IdentityAt(file, pos, w)
	if !ok {
		return "", false
	}

	// Same-file symbols render straight from this AST.
	if identity.DefModule == file.ModuleName() {
		if md, ok := hoverFromAST(file, identity); ok {
			return md, true
		}
	}

	// Project files next.
	if _, moduleFile := w.ModuleAST(identity.DefModule); moduleFile != nil {
		if md, ok := hoverFromAST(moduleFile, identity); ok {
			return md, true
		}
	}

	// Package docs last.
	if w.Project != nil {
		if docs := w.Project.FindModuleDocs(identity.DefModule); docs != nil {
			return hoverFromDocs(docs, identity)
		}
	}

	return "", false
}

func hoverFromAST(file *ast.File, identity SymbolIdentity) (string, bool) {
	moduleName := file.ModuleName()

	if identity.Kind == SymbolConstructor {
		if td, ctor := file.FindConstructor(identity.Name); ctor != nil {
			line := ctor.Name
			for _, arg := range ctor.Args {
				line += " " + ast.RenderType(arg)
			}
			var b strings.Builder
			writeFenced(&b, line)
			fmt.Fprintf(&b, "Constructor of `%s`\n\n", td.Name)
			writeFooter(&b, moduleName)
			return b.String(), true
		}
		return "", false
	}

	decl := file.FindDeclaration(identity.Name)
	if decl == nil {
		return "", false
	}

	var b strings.Builder
	switch d := decl.(type) {
	case *ast.FunctionDecl:
		if d.Signature != nil {
			writeFenced(&b, d.Name+" : "+ast.RenderType(d.Signature.Type))
		} else {
			writeFenced(&b, d.Name)
		}
		writeDoc(&b, d.Doc)
	case *ast.TypeAliasDecl:
		writeFenced(&b, "type alias "+d.Name+" =\n    "+ast.RenderType(d.Type))
		writeDoc(&b, d.Doc)
	case *ast.TypeDecl:
		var lines []string
		for i, ctor := range d.Constructors {
			sep := "| "
			if i == 0 {
				sep = "= "
			}
			line := "    " + sep + ctor.Name
			for _, arg := range ctor.Args {
				line += " " + ast.RenderType(arg)
			}
			lines = append(lines, line)
		}
		writeFenced(&b, "type "+d.Name+"\n"+strings.Join(lines, "\n"))
		writeDoc(&b, d.Doc)
	case *ast.PortDecl:
		writeFenced(&b, "port "+d.Name+" : "+ast.RenderType(d.Type))
	default:
		return "", false
	}
	writeFooter(&b, moduleName)
	return b.String(), true
}

func hoverFromDocs(docs *project.ModuleDocs, identity SymbolIdentity) (string, bool) {
	var b strings.Builder

	switch identity.Kind {
	case SymbolConstructor:
		for _, union := range docs.Unions {
			for _, c := range union.Cases {
				if c.Name != identity.Name {
					continue
				}
				line := c.Name
				if len(c.Args) > 0 {
					line += " " + strings.Join(c.Args, " ")
				}
				writeFenced(&b, line)
				fmt.Fprintf(&b, "Constructor of `%s`\n\n", union.Name)
				writeFooter(&b, docs.Name)
				return b.String(), true
			}
		}
	case SymbolType:
		for _, union := range docs.Unions {
			if union.Name != identity.Name {
				continue
			}
			writeFenced(&b, "type "+union.Name)
			writeDocComment(&b, union.Comment)
			writeFooter(&b, docs.Name)
			return b.String(), true
		}
		for _, alias := range docs.Aliases {
			if alias.Name != identity.Name {
				continue
			}
			writeFenced(&b, "type alias "+alias.Name+" =\n    "+alias.Type)
			writeDocComment(&b, alias.Comment)
			writeFooter(&b, docs.Name)
			return b.String(), true
		}
	default:
		for _, value := range docs.Values {
			if value.Name != identity.Name {
				continue
			}
			writeFenced(&b, value.Name+" : "+value.Type)
			writeDocComment(&b, value.Comment)
			writeFooter(&b, docs.Name)
			return b.String(), true
		}
		// Docs list constructors under unions even in value position.
		for _, union := range docs.Unions {
			for _, c := range union.Cases {
				if c.Name != identity.Name {
					continue
				}
				line := c.Name
				if len(c.Args) > 0 {
					line += " " + strings.Join(c.Args, " ")
				}
				writeFenced(&b, line)
				fmt.Fprintf(&b, "Constructor of `%s`\n\n", union.Name)
				writeFooter(&b, docs.Name)
				return b.String(), true
			}
		}
	}

	return "", false
}

func writeFenced(b *strings.Builder, code string) {
	fmt.Fprintf(b, "```elm\n%s\n```\n\n", code)
}

func writeDoc(b *strings.Builder, doc *ast.Comment) {
	if doc == nil {
		return
	}
	writeDocComment(b, stripDocDelimiters(doc.Text))
}

func writeDocComment(b *strings.Builder, comment string) {
	trimmed := strings.TrimSpace(comment)
	if trimmed == "" {
		return
	}
	b.WriteString(trimmed)
	b.WriteString("\n\n")
}

func writeFooter(b *strings.Builder, moduleName string) {
	if moduleName != "" {
		fmt.Fprintf(b, "*%s*", moduleName)
	}
}

func stripDocDelimiters(text string) string {
	text = strings.TrimPrefix(text, "{-|")
	text = strings.TrimPrefix(text, "{-")
	text = strings.TrimSuffix(text, "-}")
	return text
}
