package analysis

import (
	"sort"

	"github.com/CWBudde/go-elm-lsp/internal/ast"
)

// References enumerates every binding and use site of identity across
// the workspace. When includeDeclaration is false the declaration
// name-node in the defining module is dropped.
//
// currentPath/currentFile let the requesting document participate even
// when it is not saved under a source directory yet.
func References(identity SymbolIdentity, w *Workspace, currentPath string, currentFile *ast.File, includeDeclaration bool) []Location {
	collector := &refCollector{
		identity: identity,
		seen:     make(map[refKey]bool),
	}
	if identity.Kind == SymbolConstructor {
		_, defFile := w.ModuleAST(identity.DefModule)
		if defFile == nil && currentFile != nil && currentFile.ModuleName() == identity.DefModule {
			defFile = currentFile
		}
		if defFile != nil {
			if td, _ := defFile.FindConstructor(identity.Name); td != nil {
				collector.ownerType = td.Name
			}
		}
	}

	scanned := make(map[string]bool)
	if w.Project != nil {
		for _, path := range w.Project.ElmFiles() {
			scanned[path] = true
			file := currentFile
			if path != currentPath {
				file = w.ParseFile(path)
			}
			if file == nil {
				continue
			}
			collector.collectFile(path, file, w)
		}
	}
	if currentPath != "" && !scanned[currentPath] && currentFile != nil {
		collector.collectFile(currentPath, currentFile, w)
	}

	locations := collector.locations
	if !includeDeclaration {
		locations = dropDeclaration(locations, identity, w, currentPath, currentFile)
	}

	sort.Slice(locations, func(i, j int) bool {
		a, b := locations[i], locations[j]
		if a.Path != b.Path {
			return a.Path < b.Path
		}
		if a.Range.Start.Line != b.Range.Start.Line {
			return a.Range.Start.Line < b.Range.Start.Line
		}
		return a.Range.Start.Column < b.Range.Start.Column
	})
	return locations
}

type refKey struct {
	path string
	line int
	col  int
}

type refCollector struct {
	identity SymbolIdentity

	// ownerType is the custom type owning a constructor identity, used
	// to recognize "exposing (T(..))" imports in referencing files.
	ownerType string

	// fileCtorOpen is set per file: the current file imports the
	// constructor through an open type exposure.
	fileCtorOpen bool

	seen      map[refKey]bool
	locations []Location
}

// push records a location unless one with the same start already exists.
func (c *refCollector) push(path string, r ast.Range) {
	key := refKey{path: path, line: r.Start.Line, col: r.Start.Column}
	if c.seen[key] {
		return
	}
	c.seen[key] = true
	c.locations = append(c.locations, Location{Path: path, Range: r})
}

// nameTrimmed narrows an item range to just the symbol name: same start,
// length of the name. This keeps rename edits off "(..)" suffixes.
func (c *refCollector) nameTrimmed(r ast.Range) ast.Range {
	return ast.Range{
		Start: r.Start,
		End:   ast.Position{Line: r.Start.Line, Column: r.Start.Column + len(c.identity.Name)},
	}
}

func (c *refCollector) collectFile(path string, file *ast.File, w *Workspace) {
	identity := c.identity
	tracker := ast.NewImportTracker(file)
	moduleName := file.ModuleName()
	isDefining := moduleName == identity.DefModule

	if !canReference(file, tracker, identity.DefModule, isDefining) {
		return
	}

	c.fileCtorOpen = false
	if identity.Kind == SymbolConstructor && c.ownerType != "" {
		for _, imp := range file.Imports {
			if imp.ModuleName != identity.DefModule || imp.Exposing == nil {
				continue
			}
			if imp.Exposing.ExposesTypeOpen(c.ownerType) {
				c.fileCtorOpen = true
			}
		}
	}

	// Module-header exposing items, only in the defining module.
	if isDefining && file.Header != nil && file.Header.Exposing != nil {
		for _, item := range file.Header.Exposing.Items {
			if item.Name == identity.Name {
				c.push(path, c.nameTrimmed(item.Range))
			}
		}
	}

	// Import-exposing items on imports of the defining module.
	for _, imp := range file.Imports {
		if imp.ModuleName != identity.DefModule || imp.Exposing == nil {
			continue
		}
		for _, item := range imp.Exposing.Items {
			if item.Name == identity.Name {
				c.push(path, c.nameTrimmed(item.Range))
			}
		}
	}

	for _, decl := range file.Decls {
		c.collectDecl(path, decl, isDefining, moduleName, tracker)
	}
}

// canReference prunes files that cannot mention the identity: not the
// defining module, no direct import, no alias of it, and the defining
// module is not part of the implicit prelude.
func canReference(file *ast.File, tracker *ast.ImportTracker, defModule string, isDefining bool) bool {
	if isDefining || ast.IsPreludeModule(defModule) {
		return true
	}
	for _, imp := range file.Imports {
		if imp.ModuleName == defModule {
			return true
		}
	}
	for _, modules := range tracker.AliasMapping {
		for _, m := range modules {
			if m == defModule {
				return true
			}
		}
	}
	return false
}

func (c *refCollector) collectDecl(path string, decl ast.Declaration, isDefining bool, moduleName string, tracker *ast.ImportTracker) {
	identity := c.identity

	switch d := decl.(type) {
	case *ast.FunctionDecl:
		if isDefining && identity.Kind == SymbolValue && d.Name == identity.Name {
			c.push(path, d.NameRange)
			if d.Signature != nil {
				c.push(path, d.Signature.NameRange)
			}
		}
		if identity.Kind == SymbolType && d.Signature != nil {
			c.collectType(path, d.Signature.Type, moduleName, tracker)
		}
		if identity.Kind == SymbolConstructor {
			for _, arg := range d.Args {
				c.collectPattern(path, arg, moduleName, tracker)
			}
		}
		if d.Body != nil {
			c.collectExpr(path, d.Body, moduleName, tracker)
		}
	case *ast.TypeAliasDecl:
		if isDefining && identity.Kind == SymbolType && d.Name == identity.Name {
			c.push(path, d.NameRange)
		}
		if identity.Kind == SymbolType {
			c.collectType(path, d.Type, moduleName, tracker)
		}
	case *ast.TypeDecl:
		if isDefining && identity.Kind == SymbolType && d.Name == identity.Name {
			c.push(path, d.NameRange)
		}
		for _, ctor := range d.Constructors {
			if isDefining && identity.Kind == SymbolConstructor && ctor.Name == identity.Name {
				c.push(path, ctor.NameRange)
			}
			if identity.Kind == SymbolType {
				for _, arg := range ctor.Args {
					c.collectType(path, arg, moduleName, tracker)
				}
			}
		}
	case *ast.PortDecl:
		if isDefining && identity.Kind == SymbolValue && d.Name == identity.Name {
			c.push(path, d.NameRange)
		}
		if identity.Kind == SymbolType {
			c.collectType(path, d.Type, moduleName, tracker)
		}
	case *ast.DestructuringDecl:
		if identity.Kind == SymbolConstructor {
			c.collectPattern(path, d.Pattern, moduleName, tracker)
		}
		c.collectExpr(path, d.Expr, moduleName, tracker)
	}
}

// refersToModule is the three-way visibility check for an unqualified
// occurrence: same module, explicitly exposed from the defining module,
// or the defining module is open-imported.
func (c *refCollector) refersToModule(moduleName string, tracker *ast.ImportTracker) bool {
	if moduleName == c.identity.DefModule || c.fileCtorOpen {
		return true
	}
	for _, m := range tracker.ExposedBy(c.identity.Name) {
		if m == c.identity.DefModule {
			return true
		}
	}
	for _, m := range tracker.UnknownImports {
		if m == c.identity.DefModule {
			return true
		}
	}
	return false
}

// aliasResolvesTo checks a qualified occurrence: the written qualifier
// must denote the defining module through the alias mapping.
func (c *refCollector) aliasResolvesTo(moduleParts []string, tracker *ast.ImportTracker) bool {
	if len(moduleParts) == 0 {
		return false
	}
	for _, m := range tracker.ResolveAlias(ast.JoinModuleParts(moduleParts)) {
		if m == c.identity.DefModule {
			return true
		}
	}
	return false
}

func (c *refCollector) collectType(path string, annotation ast.TypeAnnotation, moduleName string, tracker *ast.ImportTracker) {
	if annotation == nil {
		return
	}
	switch t := annotation.(type) {
	case *ast.TypedType:
		if t.Name == c.identity.Name {
			if len(t.ModuleParts) > 0 {
				if c.aliasResolvesTo(t.ModuleParts, tracker) {
					c.push(path, trimQualifier(t.NameRange, t.ModuleParts))
				}
			} else if c.refersToModule(moduleName, tracker) {
				c.push(path, t.NameRange)
			}
		}
		for _, arg := range t.Args {
			c.collectType(path, arg, moduleName, tracker)
		}
	case *ast.FunctionType:
		c.collectType(path, t.From, moduleName, tracker)
		c.collectType(path, t.To, moduleName, tracker)
	case *ast.TupleType:
		for _, item := range t.Items {
			c.collectType(path, item, moduleName, tracker)
		}
	case *ast.RecordType:
		for _, f := range t.Fields {
			c.collectType(path, f.Type, moduleName, tracker)
		}
	case *ast.GenericRecordType:
		for _, f := range t.Fields {
			c.collectType(path, f.Type, moduleName, tracker)
		}
	}
}

// trimQualifier narrows a qualified name range to the bare name.
func trimQualifier(r ast.Range, moduleParts []string) ast.Range {
	prefix := len(ast.JoinModuleParts(moduleParts)) + 1
	return ast.Range{
		Start: ast.Position{Line: r.Start.Line, Column: r.Start.Column + prefix},
		End:   r.End,
	}
}

func (c *refCollector) collectPattern(path string, pattern ast.Pattern, moduleName string, tracker *ast.ImportTracker) {
	if pattern == nil {
		return
	}
	switch p := pattern.(type) {
	case *ast.NamedPattern:
		if p.Name == c.identity.Name {
			if len(p.ModuleParts) > 0 {
				if c.aliasResolvesTo(p.ModuleParts, tracker) {
					c.push(path, trimQualifier(p.NameRange, p.ModuleParts))
				}
			} else if c.refersToModule(moduleName, tracker) {
				c.push(path, p.NameRange)
			}
		}
		for _, sub := range p.Args {
			c.collectPattern(path, sub, moduleName, tracker)
		}
	case *ast.AsPattern:
		c.collectPattern(path, p.Inner, moduleName, tracker)
	case *ast.TuplePattern:
		for _, sub := range p.Items {
			c.collectPattern(path, sub, moduleName, tracker)
		}
	case *ast.ListPattern:
		for _, sub := range p.Items {
			c.collectPattern(path, sub, moduleName, tracker)
		}
	case *ast.UnconsPattern:
		c.collectPattern(path, p.Head, moduleName, tracker)
		c.collectPattern(path, p.Tail, moduleName, tracker)
	case *ast.ParenthesizedPattern:
		c.collectPattern(path, p.Inner, moduleName, tracker)
	}
}

func (c *refCollector) collectExpr(path string, expr ast.Expr, moduleName string, tracker *ast.ImportTracker) {
	if expr == nil {
		return
	}
	switch e := expr.(type) {
	case *ast.FunctionOrValue:
		if e.Name == c.identity.Name && c.identity.Kind != SymbolType {
			if len(e.ModuleParts) > 0 {
				if c.aliasResolvesTo(e.ModuleParts, tracker) {
					c.push(path, e.NameRange())
				}
			} else if c.refersToModule(moduleName, tracker) {
				c.push(path, e.Range)
			}
		}
	case *ast.Application:
		for _, arg := range e.Args {
			c.collectExpr(path, arg, moduleName, tracker)
		}
	case *ast.OperatorApplication:
		c.collectExpr(path, e.Left, moduleName, tracker)
		c.collectExpr(path, e.Right, moduleName, tracker)
	case *ast.IfExpr:
		c.collectExpr(path, e.Cond, moduleName, tracker)
		c.collectExpr(path, e.Then, moduleName, tracker)
		c.collectExpr(path, e.Else, moduleName, tracker)
	case *ast.LetExpr:
		for _, decl := range e.Decls {
			c.collectDecl(path, decl, false, moduleName, tracker)
		}
		c.collectExpr(path, e.Body, moduleName, tracker)
	case *ast.CaseExpr:
		c.collectExpr(path, e.Scrutinee, moduleName, tracker)
		for _, branch := range e.Branches {
			if c.identity.Kind == SymbolConstructor {
				c.collectPattern(path, branch.Pattern, moduleName, tracker)
			}
			c.collectExpr(path, branch.Body, moduleName, tracker)
		}
	case *ast.Lambda:
		if c.identity.Kind == SymbolConstructor {
			for _, pat := range e.Patterns {
				c.collectPattern(path, pat, moduleName, tracker)
			}
		}
		c.collectExpr(path, e.Body, moduleName, tracker)
	case *ast.Parenthesized:
		c.collectExpr(path, e.Inner, moduleName, tracker)
	case *ast.Negation:
		c.collectExpr(path, e.Inner, moduleName, tracker)
	case *ast.Tupled:
		for _, item := range e.Items {
			c.collectExpr(path, item, moduleName, tracker)
		}
	case *ast.ListExpr:
		for _, item := range e.Items {
			c.collectExpr(path, item, moduleName, tracker)
		}
	case *ast.RecordExpr:
		for _, setter := range e.Setters {
			c.collectExpr(path, setter.Value, moduleName, tracker)
		}
	case *ast.RecordUpdate:
		for _, setter := range e.Setters {
			c.collectExpr(path, setter.Value, moduleName, tracker)
		}
	case *ast.RecordAccess:
		c.collectExpr(path, e.Target, moduleName, tracker)
	}
}

// dropDeclaration removes the declaration name-node location in the
// defining module, for includeDeclaration=false requests.
func dropDeclaration(locations []Location, identity SymbolIdentity, w *Workspace, currentPath string, currentFile *ast.File) []Location {
	declStart, declPath, ok := declarationStart(identity, w, currentPath, currentFile)
	if !ok {
		return locations
	}
	var out []Location
	for _, loc := range locations {
		if loc.Path == declPath && loc.Range.Start == declStart {
			continue
		}
		out = append(out, loc)
	}
	return out
}

func declarationStart(identity SymbolIdentity, w *Workspace, currentPath string, currentFile *ast.File) (ast.Position, string, bool) {
	path, file := w.ModuleAST(identity.DefModule)
	if file == nil && currentFile != nil && currentFile.ModuleName() == identity.DefModule {
		path, file = currentPath, currentFile
	}
	if file == nil {
		return ast.Position{}, "", false
	}
	if identity.Kind == SymbolConstructor {
		if _, ctor := file.FindConstructor(identity.Name); ctor != nil {
			return ctor.NameRange.Start, path, true
		}
		return ast.Position{}, "", false
	}
	if decl := file.FindDeclaration(identity.Name); decl != nil {
		return ast.DeclarationNameRange(decl).Start, path, true
	}
	return ast.Position{}, "", false
}
