// Package lsp implements LSP protocol handlers.
package lsp

import (
	"log"
	"strings"

	"github.com/tliron/glsp"
	protocol "github.com/tliron/glsp/protocol_3_16"

	"github.com/CWBudde/go-elm-lsp/internal/analysis"
	"github.com/CWBudde/go-elm-lsp/internal/ast"
)

// Completion handles the textDocument/completion request. Dot-triggered
// completion offers the members of the qualified module (through alias
// widening) plus sub-module name suggestions; without a qualifier it
// offers same-file declarations and explicitly exposed imports.
func Completion(context *glsp.Context, params *protocol.CompletionParams) (interface{}, error) {
	srv := getServer("Completion")
	if srv == nil {
		return nil, nil
	}

	uri := params.TextDocument.URI
	position := params.Position

	doc, exists := srv.Documents().Get(uri)
	if !exists {
		return nil, nil
	}

	file, _ := documentAST(srv, uri)
	if file == nil {
		log.Printf("No AST available for completion: %s\n", uri)
		return nil, nil
	}

	w := workspaceFor(srv, uri)
	tracker := ast.NewImportTracker(file)

	prefix := qualifierBefore(doc.Text, int(position.Line), int(position.Character))

	var items []protocol.CompletionItem
	if prefix == "" {
		items = localCompletions(file, tracker)
	} else {
		for _, module := range tracker.ResolveAlias(prefix) {
			items = append(items, moduleCompletions(w, module)...)
		}
		items = append(items, subModuleCompletions(w, prefix)...)
	}

	return items, nil
}

// qualifierBefore extracts the dotted module qualifier immediately
// before the cursor, e.g. "H" from "x = H." or "Json.Decode" from a
// "Json.Decode." prefix. A partial member name typed after the dot is
// skipped, so "H.ad" also yields "H". Empty when no dot-terminated
// qualifier precedes the cursor.
func qualifierBefore(text string, line, character int) string {
	lines := strings.Split(text, "\n")
	if line < 0 || line >= len(lines) {
		return ""
	}
	lineText := lines[line]
	if character > len(lineText) {
		character = len(lineText)
	}
	before := lineText[:character]

	if !strings.HasSuffix(before, ".") {
		// The client may send the position after a partial member name;
		// strip it back to the dot.
		i := len(before)
		for i > 0 && isIdentByte(before[i-1]) {
			i--
		}
		before = before[:i]
		if !strings.HasSuffix(before, ".") {
			return ""
		}
	}
	before = strings.TrimSuffix(before, ".")

	// Walk back through Upper ('.' Upper)* segments.
	end := len(before)
	start := end
	for {
		segStart := start
		for segStart > 0 && isIdentByte(before[segStart-1]) {
			segStart--
		}
		if segStart == start || before[segStart] < 'A' || before[segStart] > 'Z' {
			break
		}
		start = segStart
		if start > 0 && before[start-1] == '.' {
			start--
			continue
		}
		break
	}
	qualifier := before[start:end]
	qualifier = strings.TrimPrefix(qualifier, ".")
	if qualifier == "" || qualifier[0] < 'A' || qualifier[0] > 'Z' {
		return ""
	}
	return qualifier
}

func isIdentByte(b byte) bool {
	return b == '_' || (b >= 'a' && b <= 'z') || (b >= 'A' && b <= 'Z') || (b >= '0' && b <= '9')
}

func localCompletions(file *ast.File, tracker *ast.ImportTracker) []protocol.CompletionItem {
	var items []protocol.CompletionItem
	seen := make(map[string]bool)

	add := func(label string, kind protocol.CompletionItemKind, detail string) {
		if label == "" || seen[label] {
			return
		}
		seen[label] = true
		item := protocol.CompletionItem{Label: label, Kind: &kind}
		if detail != "" {
			item.Detail = &detail
		}
		items = append(items, item)
	}

	for _, decl := range file.Decls {
		switch d := decl.(type) {
		case *ast.FunctionDecl:
			add(d.Name, protocol.CompletionItemKindFunction, "")
		case *ast.TypeAliasDecl:
			add(d.Name, protocol.CompletionItemKindStruct, "")
		case *ast.TypeDecl:
			add(d.Name, protocol.CompletionItemKindEnum, "")
			for _, ctor := range d.Constructors {
				add(ctor.Name, protocol.CompletionItemKindConstructor, d.Name)
			}
		case *ast.PortDecl:
			add(d.Name, protocol.CompletionItemKindFunction, "port")
		}
	}

	for name, modules := range tracker.ExplicitExposing {
		if len(modules) > 0 {
			add(name, protocol.CompletionItemKindFunction, modules[0])
		}
	}

	return items
}

// moduleCompletions lists a module's exposed members, from its source
// file when it is part of the project, else from package docs.
func moduleCompletions(w *analysis.Workspace, module string) []protocol.CompletionItem {
	var items []protocol.CompletionItem

	if _, moduleFile := w.ModuleAST(module); moduleFile != nil {
		for _, decl := range moduleFile.Decls {
			name := ast.DeclarationName(decl)
			if name == "" || !ast.IsExposedFrom(moduleFile, name) {
				continue
			}
			kind := protocol.CompletionItemKindFunction
			switch decl.(type) {
			case *ast.TypeAliasDecl:
				kind = protocol.CompletionItemKindStruct
			case *ast.TypeDecl:
				kind = protocol.CompletionItemKindEnum
			}
			k := kind
			items = append(items, protocol.CompletionItem{Label: name, Kind: &k})
		}
		for _, decl := range moduleFile.Decls {
			td, ok := decl.(*ast.TypeDecl)
			if !ok {
				continue
			}
			for _, ctor := range td.Constructors {
				if ast.IsExposedFrom(moduleFile, ctor.Name) {
					k := protocol.CompletionItemKindConstructor
					detail := td.Name
					items = append(items, protocol.CompletionItem{Label: ctor.Name, Kind: &k, Detail: &detail})
				}
			}
		}
	}

	if w.Project == nil {
		return items
	}
	docs := w.Project.FindModuleDocs(module)
	if docs == nil {
		return items
	}
	for _, value := range docs.Values {
		k := protocol.CompletionItemKindFunction
		detail := value.Type
		items = append(items, protocol.CompletionItem{Label: value.Name, Kind: &k, Detail: &detail})
	}
	for _, alias := range docs.Aliases {
		k := protocol.CompletionItemKindStruct
		items = append(items, protocol.CompletionItem{Label: alias.Name, Kind: &k})
	}
	for _, union := range docs.Unions {
		k := protocol.CompletionItemKindEnum
		items = append(items, protocol.CompletionItem{Label: union.Name, Kind: &k})
		for _, c := range union.Cases {
			ck := protocol.CompletionItemKindConstructor
			detail := union.Name
			items = append(items, protocol.CompletionItem{Label: c.Name, Kind: &ck, Detail: &detail})
		}
	}
	return items
}

// subModuleCompletions suggests the next dotted component of any known
// module under the typed prefix, one level deep.
func subModuleCompletions(w *analysis.Workspace, prefix string) []protocol.CompletionItem {
	if w.Project == nil {
		return nil
	}

	var items []protocol.CompletionItem
	seen := make(map[string]bool)
	dotted := prefix + "."

	for _, module := range w.Project.KnownModules() {
		if !strings.HasPrefix(module, dotted) {
			continue
		}
		next := strings.TrimPrefix(module, dotted)
		if i := strings.IndexByte(next, '.'); i >= 0 {
			next = next[:i]
		}
		if next == "" || seen[next] {
			continue
		}
		seen[next] = true
		k := protocol.CompletionItemKindModule
		items = append(items, protocol.CompletionItem{Label: next, Kind: &k})
	}
	return items
}
