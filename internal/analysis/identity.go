package analysis

import (
	"github.com/CWBudde/go-elm-lsp/internal/ast"
)

// SymbolKind classifies a canonical symbol identity.
type SymbolKind int

const (
	SymbolValue SymbolKind = iota
	SymbolType
	SymbolConstructor
)

// SymbolIdentity is the canonical (defining-module, name, kind) triple
// used as the cross-file key of a symbol.
type SymbolIdentity struct {
	DefModule string
	Name      string
	Kind      SymbolKind
}

// IdentityAt resolves the symbol named at pos to its canonical identity.
// Pure locals (arguments, let/case binders) have no identity; navigation
// handles those through the scope list instead.
func IdentityAt(file *ast.File, pos ast.Position, w *Workspace) (SymbolIdentity, bool) {
	if file == nil {
		return SymbolIdentity{}, false
	}
	current := file.ModuleName()
	tracker := ast.NewImportTracker(file)

	// 1. Module-header exposing list.
	if file.Header != nil && file.Header.Exposing != nil {
		if item, ok := exposedItemAt(file.Header.Exposing, pos); ok {
			return SymbolIdentity{DefModule: current, Name: item.Name, Kind: exposedKind(item)}, true
		}
	}

	// 2. Import exposing lists.
	for _, imp := range file.Imports {
		if imp.Exposing == nil {
			continue
		}
		if item, ok := exposedItemAt(imp.Exposing, pos); ok {
			return SymbolIdentity{DefModule: imp.ModuleName, Name: item.Name, Kind: exposedKind(item)}, true
		}
	}

	// 3. Declarations.
	for _, decl := range file.Decls {
		if !decl.DeclRange().Contains(pos) {
			continue
		}
		return identityInDeclaration(decl, pos, current, file, tracker, w)
	}

	return SymbolIdentity{}, false
}

func exposedItemAt(list *ast.ExposingList, pos ast.Position) (ast.ExposedItem, bool) {
	if list.All {
		return ast.ExposedItem{}, false
	}
	for _, item := range list.Items {
		if item.Range.Contains(pos) {
			return item, true
		}
	}
	return ast.ExposedItem{}, false
}

func exposedKind(item ast.ExposedItem) SymbolKind {
	switch item.Kind {
	case ast.ExposedTypeOrAlias, ast.ExposedType:
		return SymbolType
	default:
		return SymbolValue
	}
}

func identityInDeclaration(decl ast.Declaration, pos ast.Position, current string, file *ast.File, tracker *ast.ImportTracker, w *Workspace) (SymbolIdentity, bool) {
	switch d := decl.(type) {
	case *ast.FunctionDecl:
		if d.NameRange.Contains(pos) {
			return SymbolIdentity{DefModule: current, Name: d.Name, Kind: SymbolValue}, true
		}
		if d.Signature != nil {
			if d.Signature.NameRange.Contains(pos) {
				return SymbolIdentity{DefModule: current, Name: d.Name, Kind: SymbolValue}, true
			}
			if id, ok := identityInType(d.Signature.Type, pos, current, file, tracker, w); ok {
				return id, true
			}
		}
		for _, arg := range d.Args {
			if id, ok := identityInPattern(arg, pos, current, file, tracker, w); ok {
				return id, true
			}
		}
		if d.Body != nil {
			return identityInExpr(d.Body, pos, current, file, tracker, w)
		}
	case *ast.TypeAliasDecl:
		if d.NameRange.Contains(pos) {
			return SymbolIdentity{DefModule: current, Name: d.Name, Kind: SymbolType}, true
		}
		return identityInType(d.Type, pos, current, file, tracker, w)
	case *ast.TypeDecl:
		if d.NameRange.Contains(pos) {
			return SymbolIdentity{DefModule: current, Name: d.Name, Kind: SymbolType}, true
		}
		for _, ctor := range d.Constructors {
			if ctor.NameRange.Contains(pos) {
				return SymbolIdentity{DefModule: current, Name: ctor.Name, Kind: SymbolConstructor}, true
			}
			for _, arg := range ctor.Args {
				if id, ok := identityInType(arg, pos, current, file, tracker, w); ok {
					return id, true
				}
			}
		}
	case *ast.PortDecl:
		if d.NameRange.Contains(pos) {
			return SymbolIdentity{DefModule: current, Name: d.Name, Kind: SymbolValue}, true
		}
		return identityInType(d.Type, pos, current, file, tracker, w)
	case *ast.DestructuringDecl:
		if id, ok := identityInPattern(d.Pattern, pos, current, file, tracker, w); ok {
			return id, true
		}
		return identityInExpr(d.Expr, pos, current, file, tracker, w)
	}
	return SymbolIdentity{}, false
}

// identityInExpr descends into sub-expressions whose range contains pos
// and resolves name references at the cursor.
func identityInExpr(expr ast.Expr, pos ast.Position, current string, file *ast.File, tracker *ast.ImportTracker, w *Workspace) (SymbolIdentity, bool) {
	if expr == nil || !expr.ExprRange().Contains(pos) {
		return SymbolIdentity{}, false
	}

	switch e := expr.(type) {
	case *ast.FunctionOrValue:
		return resolveNameRef(e.ModuleParts, e.Name, current, file, tracker, w)
	case *ast.Application:
		for _, arg := range e.Args {
			if id, ok := identityInExpr(arg, pos, current, file, tracker, w); ok {
				return id, true
			}
		}
	case *ast.OperatorApplication:
		if id, ok := identityInExpr(e.Left, pos, current, file, tracker, w); ok {
			return id, true
		}
		return identityInExpr(e.Right, pos, current, file, tracker, w)
	case *ast.IfExpr:
		for _, sub := range []ast.Expr{e.Cond, e.Then, e.Else} {
			if id, ok := identityInExpr(sub, pos, current, file, tracker, w); ok {
				return id, true
			}
		}
	case *ast.LetExpr:
		for _, decl := range e.Decls {
			if decl.DeclRange().Contains(pos) {
				return identityInDeclaration(decl, pos, current, file, tracker, w)
			}
		}
		return identityInExpr(e.Body, pos, current, file, tracker, w)
	case *ast.CaseExpr:
		if id, ok := identityInExpr(e.Scrutinee, pos, current, file, tracker, w); ok {
			return id, true
		}
		for _, branch := range e.Branches {
			if id, ok := identityInPattern(branch.Pattern, pos, current, file, tracker, w); ok {
				return id, true
			}
			if id, ok := identityInExpr(branch.Body, pos, current, file, tracker, w); ok {
				return id, true
			}
		}
	case *ast.Lambda:
		for _, pat := range e.Patterns {
			if id, ok := identityInPattern(pat, pos, current, file, tracker, w); ok {
				return id, true
			}
		}
		return identityInExpr(e.Body, pos, current, file, tracker, w)
	case *ast.Parenthesized:
		return identityInExpr(e.Inner, pos, current, file, tracker, w)
	case *ast.Negation:
		return identityInExpr(e.Inner, pos, current, file, tracker, w)
	case *ast.Tupled:
		for _, item := range e.Items {
			if id, ok := identityInExpr(item, pos, current, file, tracker, w); ok {
				return id, true
			}
		}
	case *ast.ListExpr:
		for _, item := range e.Items {
			if id, ok := identityInExpr(item, pos, current, file, tracker, w); ok {
				return id, true
			}
		}
	case *ast.RecordExpr:
		for _, setter := range e.Setters {
			if id, ok := identityInExpr(setter.Value, pos, current, file, tracker, w); ok {
				return id, true
			}
		}
	case *ast.RecordUpdate:
		for _, setter := range e.Setters {
			if id, ok := identityInExpr(setter.Value, pos, current, file, tracker, w); ok {
				return id, true
			}
		}
	case *ast.RecordAccess:
		return identityInExpr(e.Target, pos, current, file, tracker, w)
	}

	return SymbolIdentity{}, false
}

// identityInPattern resolves constructor names inside patterns.
func identityInPattern(pattern ast.Pattern, pos ast.Position, current string, file *ast.File, tracker *ast.ImportTracker, w *Workspace) (SymbolIdentity, bool) {
	if pattern == nil || !pattern.PatternRange().Contains(pos) {
		return SymbolIdentity{}, false
	}

	switch p := pattern.(type) {
	case *ast.NamedPattern:
		if p.NameRange.Contains(pos) {
			return resolveCtorRef(p.ModuleParts, p.Name, current, file, tracker, w)
		}
		for _, sub := range p.Args {
			if id, ok := identityInPattern(sub, pos, current, file, tracker, w); ok {
				return id, true
			}
		}
	case *ast.AsPattern:
		return identityInPattern(p.Inner, pos, current, file, tracker, w)
	case *ast.TuplePattern:
		for _, sub := range p.Items {
			if id, ok := identityInPattern(sub, pos, current, file, tracker, w); ok {
				return id, true
			}
		}
	case *ast.ListPattern:
		for _, sub := range p.Items {
			if id, ok := identityInPattern(sub, pos, current, file, tracker, w); ok {
				return id, true
			}
		}
	case *ast.UnconsPattern:
		if id, ok := identityInPattern(p.Head, pos, current, file, tracker, w); ok {
			return id, true
		}
		return identityInPattern(p.Tail, pos, current, file, tracker, w)
	case *ast.ParenthesizedPattern:
		return identityInPattern(p.Inner, pos, current, file, tracker, w)
	}

	return SymbolIdentity{}, false
}

// identityInType resolves named types inside a type annotation.
func identityInType(annotation ast.TypeAnnotation, pos ast.Position, current string, file *ast.File, tracker *ast.ImportTracker, w *Workspace) (SymbolIdentity, bool) {
	if annotation == nil || !annotation.TypeRange().Contains(pos) {
		return SymbolIdentity{}, false
	}

	switch t := annotation.(type) {
	case *ast.TypedType:
		if t.NameRange.Contains(pos) {
			return resolveTypeRef(t.ModuleParts, t.Name, current, file, tracker, w)
		}
		for _, arg := range t.Args {
			if id, ok := identityInType(arg, pos, current, file, tracker, w); ok {
				return id, true
			}
		}
	case *ast.FunctionType:
		if id, ok := identityInType(t.From, pos, current, file, tracker, w); ok {
			return id, true
		}
		return identityInType(t.To, pos, current, file, tracker, w)
	case *ast.TupleType:
		for _, item := range t.Items {
			if id, ok := identityInType(item, pos, current, file, tracker, w); ok {
				return id, true
			}
		}
	case *ast.RecordType:
		for _, f := range t.Fields {
			if id, ok := identityInType(f.Type, pos, current, file, tracker, w); ok {
				return id, true
			}
		}
	case *ast.GenericRecordType:
		for _, f := range t.Fields {
			if id, ok := identityInType(f.Type, pos, current, file, tracker, w); ok {
				return id, true
			}
		}
	}

	return SymbolIdentity{}, false
}

// resolveNameRef resolves a value-position name reference.
func resolveNameRef(moduleParts []string, name, current string, file *ast.File, tracker *ast.ImportTracker, w *Workspace) (SymbolIdentity, bool) {
	if len(moduleParts) > 0 {
		qualifier := ast.JoinModuleParts(moduleParts)
		modules := tracker.ResolveAlias(qualifier)
		return SymbolIdentity{DefModule: modules[0], Name: name, Kind: SymbolValue}, true
	}

	if file.FindDeclaration(name) != nil {
		return SymbolIdentity{DefModule: current, Name: name, Kind: SymbolValue}, true
	}
	if td, _ := file.FindConstructor(name); td != nil {
		return SymbolIdentity{DefModule: current, Name: name, Kind: SymbolConstructor}, true
	}
	if owners := tracker.ExposedBy(name); len(owners) > 0 {
		return SymbolIdentity{DefModule: owners[0], Name: name, Kind: SymbolValue}, true
	}
	if module, ok := openTypeCtorOwner(file, name, w); ok {
		return SymbolIdentity{DefModule: module, Name: name, Kind: SymbolConstructor}, true
	}
	for _, module := range tracker.UnknownImports {
		_, moduleFile := w.ModuleAST(module)
		if moduleFile == nil {
			continue
		}
		if moduleFile.FindDeclaration(name) != nil {
			return SymbolIdentity{DefModule: module, Name: name, Kind: SymbolValue}, true
		}
		if td, _ := moduleFile.FindConstructor(name); td != nil {
			return SymbolIdentity{DefModule: module, Name: name, Kind: SymbolValue}, true
		}
	}
	return SymbolIdentity{}, false
}

// resolveCtorRef resolves a constructor name in pattern position.
func resolveCtorRef(moduleParts []string, name, current string, file *ast.File, tracker *ast.ImportTracker, w *Workspace) (SymbolIdentity, bool) {
	if len(moduleParts) > 0 {
		qualifier := ast.JoinModuleParts(moduleParts)
		modules := tracker.ResolveAlias(qualifier)
		return SymbolIdentity{DefModule: modules[0], Name: name, Kind: SymbolConstructor}, true
	}

	if td, _ := file.FindConstructor(name); td != nil {
		return SymbolIdentity{DefModule: current, Name: name, Kind: SymbolConstructor}, true
	}
	if owners := tracker.ExposedBy(name); len(owners) > 0 {
		return SymbolIdentity{DefModule: owners[0], Name: name, Kind: SymbolConstructor}, true
	}
	// A constructor can arrive through "exposing (T(..))" on an import;
	// the owner is only known by consulting that module's type decls.
	if module, ok := openTypeCtorOwner(file, name, w); ok {
		return SymbolIdentity{DefModule: module, Name: name, Kind: SymbolConstructor}, true
	}
	for _, module := range tracker.UnknownImports {
		_, moduleFile := w.ModuleAST(module)
		if moduleFile == nil {
			continue
		}
		if td, _ := moduleFile.FindConstructor(name); td != nil {
			return SymbolIdentity{DefModule: module, Name: name, Kind: SymbolConstructor}, true
		}
	}
	return SymbolIdentity{}, false
}

// openTypeCtorOwner finds the module whose type, imported open with
// "(..)", defines a constructor named name.
func openTypeCtorOwner(file *ast.File, name string, w *Workspace) (string, bool) {
	for _, imp := range file.Imports {
		if imp.Exposing == nil || imp.Exposing.All {
			continue
		}
		for _, item := range imp.Exposing.Items {
			if item.Kind != ast.ExposedType || item.OpenRange == nil {
				continue
			}
			_, moduleFile := w.ModuleAST(imp.ModuleName)
			if moduleFile == nil {
				continue
			}
			if td, _ := moduleFile.FindConstructor(name); td != nil && td.Name == item.Name {
				return imp.ModuleName, true
			}
		}
	}
	return "", false
}

// resolveTypeRef resolves a named type reference.
func resolveTypeRef(moduleParts []string, name, current string, file *ast.File, tracker *ast.ImportTracker, w *Workspace) (SymbolIdentity, bool) {
	if len(moduleParts) > 0 {
		qualifier := ast.JoinModuleParts(moduleParts)
		modules := tracker.ResolveAlias(qualifier)
		return SymbolIdentity{DefModule: modules[0], Name: name, Kind: SymbolType}, true
	}

	if decl := file.FindDeclaration(name); decl != nil {
		switch decl.(type) {
		case *ast.TypeAliasDecl, *ast.TypeDecl:
			return SymbolIdentity{DefModule: current, Name: name, Kind: SymbolType}, true
		}
	}
	if owners := tracker.ExposedBy(name); len(owners) > 0 {
		return SymbolIdentity{DefModule: owners[0], Name: name, Kind: SymbolType}, true
	}
	for _, module := range tracker.UnknownImports {
		_, moduleFile := w.ModuleAST(module)
		if moduleFile == nil {
			continue
		}
		if decl := moduleFile.FindDeclaration(name); decl != nil {
			switch decl.(type) {
			case *ast.TypeAliasDecl, *ast.TypeDecl:
				return SymbolIdentity{DefModule: module, Name: name, Kind: SymbolType}, true
			}
		}
	}
	return SymbolIdentity{}, false
}
