// Package lsp implements LSP protocol handlers.
package lsp

import (
	"log"

	"github.com/tliron/glsp"
	protocol "github.com/tliron/glsp/protocol_3_16"

	"github.com/CWBudde/go-elm-lsp/internal/ast"
)

// DocumentSymbol handles the textDocument/documentSymbol request. On a
// parse failure the last successful result for the URI is served, so
// the outline view does not flicker while the user types through
// broken states.
func DocumentSymbol(context *glsp.Context, params *protocol.DocumentSymbolParams) (interface{}, error) {
	srv := getServer("DocumentSymbol")
	if srv == nil {
		return nil, nil
	}

	uri := params.TextDocument.URI

	file, _ := documentAST(srv, uri)
	if file == nil {
		log.Printf("No AST for documentSymbol, serving last good result: %s\n", uri)
		return srv.LastSymbols(uri), nil
	}

	symbols := fileSymbols(file)
	srv.SetLastSymbols(uri, symbols)
	return symbols, nil
}

func fileSymbols(file *ast.File) []protocol.DocumentSymbol {
	symbols := make([]protocol.DocumentSymbol, 0, len(file.Decls))

	for _, decl := range file.Decls {
		switch d := decl.(type) {
		case *ast.FunctionDecl:
			symbol := protocol.DocumentSymbol{
				Name:           d.Name,
				Kind:           protocol.SymbolKindFunction,
				Range:          toProtocolRange(d.Range),
				SelectionRange: toProtocolRange(d.NameRange),
			}
			if d.Body != nil {
				symbol.Children = letSymbols(d.Body)
			}
			symbols = append(symbols, symbol)
		case *ast.TypeAliasDecl:
			symbols = append(symbols, protocol.DocumentSymbol{
				Name:           d.Name,
				Kind:           protocol.SymbolKindObject,
				Range:          toProtocolRange(d.Range),
				SelectionRange: toProtocolRange(d.NameRange),
			})
		case *ast.TypeDecl:
			symbol := protocol.DocumentSymbol{
				Name:           d.Name,
				Kind:           protocol.SymbolKindEnum,
				Range:          toProtocolRange(d.Range),
				SelectionRange: toProtocolRange(d.NameRange),
			}
			for _, ctor := range d.Constructors {
				symbol.Children = append(symbol.Children, protocol.DocumentSymbol{
					Name:           ctor.Name,
					Kind:           protocol.SymbolKindEnumMember,
					Range:          toProtocolRange(ctor.Range),
					SelectionRange: toProtocolRange(ctor.NameRange),
				})
			}
			symbols = append(symbols, symbol)
		case *ast.PortDecl:
			symbols = append(symbols, protocol.DocumentSymbol{
				Name:           d.Name,
				Kind:           protocol.SymbolKindFunction,
				Range:          toProtocolRange(d.Range),
				SelectionRange: toProtocolRange(d.NameRange),
			})
		}
	}

	return symbols
}

// letSymbols collects let-bound function names as children of their
// enclosing function.
func letSymbols(expr ast.Expr) []protocol.DocumentSymbol {
	var children []protocol.DocumentSymbol

	switch e := expr.(type) {
	case *ast.LetExpr:
		for _, decl := range e.Decls {
			if fn, ok := decl.(*ast.FunctionDecl); ok {
				child := protocol.DocumentSymbol{
					Name:           fn.Name,
					Kind:           protocol.SymbolKindFunction,
					Range:          toProtocolRange(fn.Range),
					SelectionRange: toProtocolRange(fn.NameRange),
				}
				if fn.Body != nil {
					child.Children = letSymbols(fn.Body)
				}
				children = append(children, child)
			}
		}
		children = append(children, letSymbols(e.Body)...)
	case *ast.IfExpr:
		children = append(children, letSymbols(e.Then)...)
		children = append(children, letSymbols(e.Else)...)
	case *ast.CaseExpr:
		for _, branch := range e.Branches {
			children = append(children, letSymbols(branch.Body)...)
		}
	case *ast.Lambda:
		children = append(children, letSymbols(e.Body)...)
	case *ast.Parenthesized:
		children = append(children, letSymbols(e.Inner)...)
	case *ast.Application:
		for _, arg := range e.Args {
			children = append(children, letSymbols(arg)...)
		}
	case *ast.OperatorApplication:
		children = append(children, letSymbols(e.Left)...)
		children = append(children, letSymbols(e.Right)...)
	}

	return children
}
