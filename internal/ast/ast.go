// Package ast defines the Elm syntax tree produced by the parser backend
// and the projections the analysis engines run over it.
package ast

import "strings"

// Position is a 1-based line/column pair, matching the parser's output.
// LSP positions are 0-based; conversion happens at the protocol boundary.
type Position struct {
	Line   int
	Column int
}

// Before reports whether p comes strictly before other in document order.
func (p Position) Before(other Position) bool {
	if p.Line != other.Line {
		return p.Line < other.Line
	}
	return p.Column < other.Column
}

// Range is a span between two positions. End is the position just past
// the last character of the span, as the lexer records token ends.
type Range struct {
	Start Position
	End   Position
}

// Contains reports whether pos lies within the range, inclusive at both ends.
func (r Range) Contains(pos Position) bool {
	if pos.Line < r.Start.Line || pos.Line > r.End.Line {
		return false
	}
	if pos.Line == r.Start.Line && pos.Column < r.Start.Column {
		return false
	}
	if pos.Line == r.End.Line && pos.Column > r.End.Column {
		return false
	}
	return true
}

// Encloses reports whether r fully contains other.
func (r Range) Encloses(other Range) bool {
	return r.Contains(other.Start) && r.Contains(other.End)
}

// ModuleKind distinguishes the three module header forms.
type ModuleKind int

const (
	ModuleNormal ModuleKind = iota
	ModulePort
	ModuleEffect
)

// ModuleHeader is the `module X exposing (...)` line of a file.
type ModuleHeader struct {
	Kind      ModuleKind
	Name      string
	NameRange Range
	Exposing  *ExposingList
	Range     Range
}

// ExposedKind classifies an item of an explicit exposing list.
type ExposedKind int

const (
	ExposedValue ExposedKind = iota
	ExposedTypeOrAlias
	ExposedType // type with optional (..) constructor exposure
	ExposedInfix
)

// ExposedItem is one entry of an explicit exposing list.
type ExposedItem struct {
	Kind  ExposedKind
	Name  string
	Range Range
	// OpenRange is the span of the "(..)" suffix on an ExposedType item.
	// When present, all constructors of the type are exposed too.
	OpenRange *Range
}

// ExposingList is either exposing-all or an explicit list of items.
type ExposingList struct {
	All   bool
	Items []ExposedItem
	Range Range
}

// Exposes reports whether name appears in the list (exposing-all counts).
func (e *ExposingList) Exposes(name string) bool {
	if e == nil {
		return false
	}
	if e.All {
		return true
	}
	for _, item := range e.Items {
		if item.Name == name {
			return true
		}
	}
	return false
}

// ExposesTypeOpen reports whether the list exposes typeName with "(..)".
func (e *ExposingList) ExposesTypeOpen(typeName string) bool {
	if e == nil {
		return false
	}
	if e.All {
		return true
	}
	for _, item := range e.Items {
		if item.Kind == ExposedType && item.Name == typeName && item.OpenRange != nil {
			return true
		}
	}
	return false
}

// Import is one `import M [as A] [exposing (...)]` line.
type Import struct {
	ModuleName      string
	ModuleNameRange Range
	Alias           string
	AliasRange      *Range
	Exposing        *ExposingList
	Range           Range
}

// Comment is a line or block comment, including doc comments.
type Comment struct {
	Text  string
	Range Range
}

// File is a parsed Elm module.
type File struct {
	Header   *ModuleHeader
	Imports  []*Import
	Decls    []Declaration
	Comments []Comment
}

// ModuleName returns the declared module name, or "" when the header is
// missing (a file without a header is still navigable within itself).
func (f *File) ModuleName() string {
	if f == nil || f.Header == nil {
		return ""
	}
	return f.Header.Name
}

// Declaration is the closed sum of top-level (and let-local) declarations.
type Declaration interface {
	DeclRange() Range
}

// TypeSignature is a standalone `name : Type` annotation line.
type TypeSignature struct {
	Name      string
	NameRange Range
	Type      TypeAnnotation
	Range     Range
}

// FunctionDecl is a value or function declaration, with its optional
// doc comment and sibling type signature attached.
type FunctionDecl struct {
	Doc       *Comment
	Signature *TypeSignature
	Name      string
	NameRange Range
	Args      []Pattern
	Body      Expr
	Range     Range
}

func (d *FunctionDecl) DeclRange() Range { return d.Range }

// TypeAliasDecl is `type alias N generics = annotation`.
type TypeAliasDecl struct {
	Doc       *Comment
	Name      string
	NameRange Range
	Generics  []string
	Type      TypeAnnotation
	Range     Range
}

func (d *TypeAliasDecl) DeclRange() Range { return d.Range }

// Constructor is one variant of a custom type.
type Constructor struct {
	Name      string
	NameRange Range
	Args      []TypeAnnotation
	Range     Range
}

// TypeDecl is `type N generics = C1 ... | C2 ...`.
type TypeDecl struct {
	Doc          *Comment
	Name         string
	NameRange    Range
	Generics     []string
	Constructors []*Constructor
	Range        Range
}

func (d *TypeDecl) DeclRange() Range { return d.Range }

// PortDecl is `port name : Type`.
type PortDecl struct {
	Name      string
	NameRange Range
	Type      TypeAnnotation
	Range     Range
}

func (d *PortDecl) DeclRange() Range { return d.Range }

// DestructuringDecl is an anonymous `pattern = expr` binding (let-only
// in current Elm, but the parser accepts it at top level too).
type DestructuringDecl struct {
	Pattern Pattern
	Expr    Expr
	Range   Range
}

func (d *DestructuringDecl) DeclRange() Range { return d.Range }

// InfixDecl is `infix right 5 (++) = append`.
type InfixDecl struct {
	Operator      string
	OperatorRange Range
	FunctionName  string
	Range         Range
}

func (d *InfixDecl) DeclRange() Range { return d.Range }

// DeclarationName returns the binding name of a declaration, or "" for
// anonymous forms (destructuring).
func DeclarationName(d Declaration) string {
	switch decl := d.(type) {
	case *FunctionDecl:
		return decl.Name
	case *TypeAliasDecl:
		return decl.Name
	case *TypeDecl:
		return decl.Name
	case *PortDecl:
		return decl.Name
	case *InfixDecl:
		return decl.Operator
	default:
		return ""
	}
}

// DeclarationNameRange returns the range of the declaration's name node,
// falling back to the declaration range for anonymous forms.
func DeclarationNameRange(d Declaration) Range {
	switch decl := d.(type) {
	case *FunctionDecl:
		return decl.NameRange
	case *TypeAliasDecl:
		return decl.NameRange
	case *TypeDecl:
		return decl.NameRange
	case *PortDecl:
		return decl.NameRange
	case *InfixDecl:
		return decl.OperatorRange
	default:
		return d.DeclRange()
	}
}

// FindDeclaration returns the declaration binding name, if any.
func (f *File) FindDeclaration(name string) Declaration {
	for _, d := range f.Decls {
		if DeclarationName(d) == name {
			return d
		}
	}
	return nil
}

// FindConstructor returns the constructor named name together with its
// owning type declaration, or nils.
func (f *File) FindConstructor(name string) (*TypeDecl, *Constructor) {
	for _, d := range f.Decls {
		td, ok := d.(*TypeDecl)
		if !ok {
			continue
		}
		for _, c := range td.Constructors {
			if c.Name == name {
				return td, c
			}
		}
	}
	return nil, nil
}

// IsExposedFrom reports whether name is visible to importers of f:
// either it appears in the exposing list, or it is a constructor of a
// type exposed with "(..)".
func IsExposedFrom(f *File, name string) bool {
	if f == nil || f.Header == nil || f.Header.Exposing == nil {
		return false
	}
	exp := f.Header.Exposing
	if exp.Exposes(name) {
		return true
	}
	if td, _ := f.FindConstructor(name); td != nil {
		return exp.ExposesTypeOpen(td.Name)
	}
	return false
}

// JoinModuleParts renders a qualified prefix like []string{"Json","Decode"}
// back to "Json.Decode".
func JoinModuleParts(parts []string) string {
	return strings.Join(parts, ".")
}
