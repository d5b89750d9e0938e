package analysis

import (
	"github.com/CWBudde/go-elm-lsp/internal/ast"
)

// Definition resolves goto-definition at pos in file. The returned
// location's empty Path means "the requesting document".
func Definition(file *ast.File, pos ast.Position, w *Workspace) (Location, bool) {
	if file == nil {
		return Location{}, false
	}
	tracker := ast.NewImportTracker(file)

	// Module-header exposing item: jump to the same-file declaration.
	if file.Header != nil && file.Header.Exposing != nil {
		if item, ok := exposedItemAt(file.Header.Exposing, pos); ok {
			if target, ok := findInFile(file, item.Name); ok {
				return Location{Range: target}, true
			}
			return Location{}, false
		}
	}

	for _, imp := range file.Imports {
		// Import module name: jump to the start of the resolved file.
		if imp.ModuleNameRange.Contains(pos) {
			if w.Project == nil {
				return Location{}, false
			}
			if path, ok := w.Project.ResolveModuleToFile(imp.ModuleName); ok {
				start := ast.Position{Line: 1, Column: 1}
				return Location{Path: path, Range: ast.Range{Start: start, End: start}}, true
			}
			return Location{}, false
		}
		// Import exposing item: jump into the imported module, gated by
		// that module's own exposing list.
		if imp.Exposing != nil {
			if item, ok := exposedItemAt(imp.Exposing, pos); ok {
				return findInModule(w, imp.ModuleName, item.Name)
			}
		}
	}

	for _, decl := range file.Decls {
		if decl.DeclRange().Contains(pos) {
			return definitionInDeclaration(decl, pos, file, tracker, w)
		}
	}

	return Location{}, false
}

// findInFile returns the name-node range of a declaration or
// constructor named name in file.
func findInFile(file *ast.File, name string) (ast.Range, bool) {
	if decl := file.FindDeclaration(name); decl != nil {
		return ast.DeclarationNameRange(decl), true
	}
	if _, ctor := file.FindConstructor(name); ctor != nil {
		return ctor.NameRange, true
	}
	return ast.Range{}, false
}

// findInModule resolves name inside moduleName, honoring the target's
// exposing list. Package-only modules yield no location.
func findInModule(w *Workspace, moduleName, name string) (Location, bool) {
	path, moduleFile := w.ModuleAST(moduleName)
	if moduleFile == nil {
		return Location{}, false
	}
	if !ast.IsExposedFrom(moduleFile, name) {
		return Location{}, false
	}
	if target, ok := findInFile(moduleFile, name); ok {
		return Location{Path: path, Range: target}, true
	}
	return Location{}, false
}

func definitionInDeclaration(decl ast.Declaration, pos ast.Position, file *ast.File, tracker *ast.ImportTracker, w *Workspace) (Location, bool) {
	switch d := decl.(type) {
	case *ast.FunctionDecl:
		if d.NameRange.Contains(pos) {
			return Location{Range: d.NameRange}, true
		}
		if d.Signature != nil {
			if d.Signature.NameRange.Contains(pos) {
				return Location{Range: d.NameRange}, true
			}
			if loc, ok := definitionInType(d.Signature.Type, pos, file, tracker, w); ok {
				return loc, true
			}
		}
		sc := scope{}
		for _, arg := range d.Args {
			if loc, ok := definitionInPattern(arg, pos, file, tracker, w); ok {
				return loc, true
			}
			sc = sc.withPattern(arg)
		}
		if d.Body != nil {
			return definitionInExpr(d.Body, pos, sc, file, tracker, w)
		}
	case *ast.TypeAliasDecl:
		if d.NameRange.Contains(pos) {
			return Location{Range: d.NameRange}, true
		}
		return definitionInType(d.Type, pos, file, tracker, w)
	case *ast.TypeDecl:
		if d.NameRange.Contains(pos) {
			return Location{Range: d.NameRange}, true
		}
		for _, ctor := range d.Constructors {
			if ctor.NameRange.Contains(pos) {
				return Location{Range: ctor.NameRange}, true
			}
			for _, arg := range ctor.Args {
				if loc, ok := definitionInType(arg, pos, file, tracker, w); ok {
					return loc, true
				}
			}
		}
	case *ast.PortDecl:
		if d.NameRange.Contains(pos) {
			return Location{Range: d.NameRange}, true
		}
		return definitionInType(d.Type, pos, file, tracker, w)
	case *ast.DestructuringDecl:
		if loc, ok := definitionInPattern(d.Pattern, pos, file, tracker, w); ok {
			return loc, true
		}
		return definitionInExpr(d.Expr, pos, scope{}, file, tracker, w)
	}
	return Location{}, false
}

// definitionInType resolves named types: same-file first, then the
// import tracker (explicit exposing before open imports).
func definitionInType(annotation ast.TypeAnnotation, pos ast.Position, file *ast.File, tracker *ast.ImportTracker, w *Workspace) (Location, bool) {
	if annotation == nil || !annotation.TypeRange().Contains(pos) {
		return Location{}, false
	}

	switch t := annotation.(type) {
	case *ast.TypedType:
		if t.NameRange.Contains(pos) {
			return resolveTypeTarget(t.ModuleParts, t.Name, file, tracker, w)
		}
		for _, arg := range t.Args {
			if loc, ok := definitionInType(arg, pos, file, tracker, w); ok {
				return loc, true
			}
		}
	case *ast.FunctionType:
		if loc, ok := definitionInType(t.From, pos, file, tracker, w); ok {
			return loc, true
		}
		return definitionInType(t.To, pos, file, tracker, w)
	case *ast.TupleType:
		for _, item := range t.Items {
			if loc, ok := definitionInType(item, pos, file, tracker, w); ok {
				return loc, true
			}
		}
	case *ast.RecordType:
		for _, f := range t.Fields {
			if loc, ok := definitionInType(f.Type, pos, file, tracker, w); ok {
				return loc, true
			}
		}
	case *ast.GenericRecordType:
		for _, f := range t.Fields {
			if loc, ok := definitionInType(f.Type, pos, file, tracker, w); ok {
				return loc, true
			}
		}
	}
	return Location{}, false
}

func resolveTypeTarget(moduleParts []string, name string, file *ast.File, tracker *ast.ImportTracker, w *Workspace) (Location, bool) {
	if len(moduleParts) > 0 {
		for _, module := range tracker.ResolveAlias(ast.JoinModuleParts(moduleParts)) {
			if loc, ok := findInModule(w, module, name); ok {
				return loc, true
			}
		}
		return Location{}, false
	}

	if decl := file.FindDeclaration(name); decl != nil {
		switch decl.(type) {
		case *ast.TypeAliasDecl, *ast.TypeDecl:
			return Location{Range: ast.DeclarationNameRange(decl)}, true
		}
	}
	for _, module := range tracker.ExposedBy(name) {
		if loc, ok := findInModule(w, module, name); ok {
			return loc, true
		}
	}
	for _, module := range tracker.UnknownImports {
		if loc, ok := findInModule(w, module, name); ok {
			return loc, true
		}
	}
	return Location{}, false
}

// definitionInPattern resolves constructor names in pattern position.
func definitionInPattern(pattern ast.Pattern, pos ast.Position, file *ast.File, tracker *ast.ImportTracker, w *Workspace) (Location, bool) {
	if pattern == nil || !pattern.PatternRange().Contains(pos) {
		return Location{}, false
	}

	switch p := pattern.(type) {
	case *ast.NamedPattern:
		if p.NameRange.Contains(pos) {
			return resolveCtorTarget(p.ModuleParts, p.Name, file, tracker, w)
		}
		for _, sub := range p.Args {
			if loc, ok := definitionInPattern(sub, pos, file, tracker, w); ok {
				return loc, true
			}
		}
	case *ast.AsPattern:
		return definitionInPattern(p.Inner, pos, file, tracker, w)
	case *ast.TuplePattern:
		for _, sub := range p.Items {
			if loc, ok := definitionInPattern(sub, pos, file, tracker, w); ok {
				return loc, true
			}
		}
	case *ast.ListPattern:
		for _, sub := range p.Items {
			if loc, ok := definitionInPattern(sub, pos, file, tracker, w); ok {
				return loc, true
			}
		}
	case *ast.UnconsPattern:
		if loc, ok := definitionInPattern(p.Head, pos, file, tracker, w); ok {
			return loc, true
		}
		return definitionInPattern(p.Tail, pos, file, tracker, w)
	case *ast.ParenthesizedPattern:
		return definitionInPattern(p.Inner, pos, file, tracker, w)
	}
	return Location{}, false
}

func resolveCtorTarget(moduleParts []string, name string, file *ast.File, tracker *ast.ImportTracker, w *Workspace) (Location, bool) {
	if len(moduleParts) > 0 {
		for _, module := range tracker.ResolveAlias(ast.JoinModuleParts(moduleParts)) {
			if loc, ok := findInModule(w, module, name); ok {
				return loc, true
			}
		}
		return Location{}, false
	}

	if _, ctor := file.FindConstructor(name); ctor != nil {
		return Location{Range: ctor.NameRange}, true
	}
	for _, module := range tracker.ExposedBy(name) {
		if loc, ok := findInModule(w, module, name); ok {
			return loc, true
		}
	}
	if module, ok := openTypeCtorOwner(file, name, w); ok {
		if loc, ok := findInModule(w, module, name); ok {
			return loc, true
		}
	}
	for _, module := range tracker.UnknownImports {
		if loc, ok := findInModule(w, module, name); ok {
			return loc, true
		}
	}
	return Location{}, false
}

// definitionInExpr walks the expression carrying the lexical scope.
func definitionInExpr(expr ast.Expr, pos ast.Position, sc scope, file *ast.File, tracker *ast.ImportTracker, w *Workspace) (Location, bool) {
	if expr == nil || !expr.ExprRange().Contains(pos) {
		return Location{}, false
	}

	switch e := expr.(type) {
	case *ast.FunctionOrValue:
		return resolveValueTarget(e.ModuleParts, e.Name, sc, file, tracker, w)
	case *ast.Application:
		for _, arg := range e.Args {
			if loc, ok := definitionInExpr(arg, pos, sc, file, tracker, w); ok {
				return loc, true
			}
		}
	case *ast.OperatorApplication:
		if loc, ok := definitionInExpr(e.Left, pos, sc, file, tracker, w); ok {
			return loc, true
		}
		return definitionInExpr(e.Right, pos, sc, file, tracker, w)
	case *ast.IfExpr:
		for _, sub := range []ast.Expr{e.Cond, e.Then, e.Else} {
			if loc, ok := definitionInExpr(sub, pos, sc, file, tracker, w); ok {
				return loc, true
			}
		}
	case *ast.LetExpr:
		inner := sc.withLetDecls(e.Decls)
		for _, decl := range e.Decls {
			if !decl.DeclRange().Contains(pos) {
				continue
			}
			return definitionInLetDecl(decl, pos, inner, file, tracker, w)
		}
		return definitionInExpr(e.Body, pos, inner, file, tracker, w)
	case *ast.CaseExpr:
		if loc, ok := definitionInExpr(e.Scrutinee, pos, sc, file, tracker, w); ok {
			return loc, true
		}
		for _, branch := range e.Branches {
			if !branch.Range.Contains(pos) {
				continue
			}
			if loc, ok := definitionInPattern(branch.Pattern, pos, file, tracker, w); ok {
				return loc, true
			}
			return definitionInExpr(branch.Body, pos, sc.withPattern(branch.Pattern), file, tracker, w)
		}
	case *ast.Lambda:
		inner := sc
		for _, pat := range e.Patterns {
			if loc, ok := definitionInPattern(pat, pos, file, tracker, w); ok {
				return loc, true
			}
			inner = inner.withPattern(pat)
		}
		return definitionInExpr(e.Body, pos, inner, file, tracker, w)
	case *ast.Parenthesized:
		return definitionInExpr(e.Inner, pos, sc, file, tracker, w)
	case *ast.Negation:
		return definitionInExpr(e.Inner, pos, sc, file, tracker, w)
	case *ast.Tupled:
		for _, item := range e.Items {
			if loc, ok := definitionInExpr(item, pos, sc, file, tracker, w); ok {
				return loc, true
			}
		}
	case *ast.ListExpr:
		for _, item := range e.Items {
			if loc, ok := definitionInExpr(item, pos, sc, file, tracker, w); ok {
				return loc, true
			}
		}
	case *ast.RecordExpr:
		for _, setter := range e.Setters {
			if loc, ok := definitionInExpr(setter.Value, pos, sc, file, tracker, w); ok {
				return loc, true
			}
		}
	case *ast.RecordUpdate:
		// The record being updated is scope-or-same-file, never
		// cross-module.
		if e.NameRange.Contains(pos) {
			if where, ok := sc.lookup(e.Name); ok {
				return Location{Range: where}, true
			}
			if decl := file.FindDeclaration(e.Name); decl != nil {
				return Location{Range: ast.DeclarationNameRange(decl)}, true
			}
			return Location{}, false
		}
		for _, setter := range e.Setters {
			if loc, ok := definitionInExpr(setter.Value, pos, sc, file, tracker, w); ok {
				return loc, true
			}
		}
	case *ast.RecordAccess:
		return definitionInExpr(e.Target, pos, sc, file, tracker, w)
	}

	return Location{}, false
}

// definitionInLetDecl handles a let declaration the cursor is inside:
// the declaration's own name and arguments join the scope.
func definitionInLetDecl(decl ast.Declaration, pos ast.Position, sc scope, file *ast.File, tracker *ast.ImportTracker, w *Workspace) (Location, bool) {
	switch d := decl.(type) {
	case *ast.FunctionDecl:
		if d.NameRange.Contains(pos) {
			return Location{Range: d.NameRange}, true
		}
		if d.Signature != nil {
			if d.Signature.NameRange.Contains(pos) {
				return Location{Range: d.NameRange}, true
			}
			if loc, ok := definitionInType(d.Signature.Type, pos, file, tracker, w); ok {
				return loc, true
			}
		}
		inner := sc
		for _, arg := range d.Args {
			if loc, ok := definitionInPattern(arg, pos, file, tracker, w); ok {
				return loc, true
			}
			inner = inner.withPattern(arg)
		}
		if d.Body != nil {
			return definitionInExpr(d.Body, pos, inner, file, tracker, w)
		}
	case *ast.DestructuringDecl:
		if loc, ok := definitionInPattern(d.Pattern, pos, file, tracker, w); ok {
			return loc, true
		}
		return definitionInExpr(d.Expr, pos, sc, file, tracker, w)
	}
	return Location{}, false
}

// resolveValueTarget implements the unqualified lookup chain: scope,
// same-file declaration, same-file constructor, explicit exposing, then
// open imports; qualified names resolve through the alias mapping.
func resolveValueTarget(moduleParts []string, name string, sc scope, file *ast.File, tracker *ast.ImportTracker, w *Workspace) (Location, bool) {
	if len(moduleParts) > 0 {
		for _, module := range tracker.ResolveAlias(ast.JoinModuleParts(moduleParts)) {
			if loc, ok := findInModule(w, module, name); ok {
				return loc, true
			}
		}
		return Location{}, false
	}

	if where, ok := sc.lookup(name); ok {
		return Location{Range: where}, true
	}
	if decl := file.FindDeclaration(name); decl != nil {
		return Location{Range: ast.DeclarationNameRange(decl)}, true
	}
	if _, ctor := file.FindConstructor(name); ctor != nil {
		return Location{Range: ctor.NameRange}, true
	}
	for _, module := range tracker.ExposedBy(name) {
		if loc, ok := findInModule(w, module, name); ok {
			return loc, true
		}
	}
	if module, ok := openTypeCtorOwner(file, name, w); ok {
		if loc, ok := findInModule(w, module, name); ok {
			return loc, true
		}
	}
	for _, module := range tracker.UnknownImports {
		if loc, ok := findInModule(w, module, name); ok {
			return loc, true
		}
	}
	return Location{}, false
}
