package ast

import "strings"

// TypeAnnotation is the closed sum of Elm type expressions.
type TypeAnnotation interface {
	TypeRange() Range
}

// TypeVar is a lowercase type variable.
type TypeVar struct {
	Name  string
	Range Range
}

func (t *TypeVar) TypeRange() Range { return t.Range }

// TypeUnit is `()`.
type TypeUnit struct {
	Range Range
}

func (t *TypeUnit) TypeRange() Range { return t.Range }

// TypedType is a (possibly qualified) named type with arguments.
type TypedType struct {
	ModuleParts []string
	Name        string
	NameRange   Range
	Args        []TypeAnnotation
	Range       Range
}

func (t *TypedType) TypeRange() Range { return t.Range }

// FunctionType is `From -> To`.
type FunctionType struct {
	From  TypeAnnotation
	To    TypeAnnotation
	Range Range
}

func (t *FunctionType) TypeRange() Range { return t.Range }

// TupleType is `( A, B )`.
type TupleType struct {
	Items []TypeAnnotation
	Range Range
}

func (t *TupleType) TypeRange() Range { return t.Range }

// RecordTypeField is one `name : Type` field.
type RecordTypeField struct {
	Name  string
	Type  TypeAnnotation
	Range Range
}

// RecordType is `{ f : T, ... }`.
type RecordType struct {
	Fields []RecordTypeField
	Range  Range
}

func (t *RecordType) TypeRange() Range { return t.Range }

// GenericRecordType is `{ r | f : T, ... }`.
type GenericRecordType struct {
	Base   string
	Fields []RecordTypeField
	Range  Range
}

func (t *GenericRecordType) TypeRange() Range { return t.Range }

// RenderType renders a type annotation back to source-shaped text, used
// by hover. Function types on the left of an arrow are parenthesized.
func RenderType(t TypeAnnotation) string {
	switch ty := t.(type) {
	case *TypeVar:
		return ty.Name
	case *TypeUnit:
		return "()"
	case *TypedType:
		name := ty.Name
		if len(ty.ModuleParts) > 0 {
			name = JoinModuleParts(ty.ModuleParts) + "." + name
		}
		if len(ty.Args) == 0 {
			return name
		}
		parts := []string{name}
		for _, arg := range ty.Args {
			parts = append(parts, renderTypeArg(arg))
		}
		return strings.Join(parts, " ")
	case *FunctionType:
		left := RenderType(ty.From)
		if _, ok := ty.From.(*FunctionType); ok {
			left = "(" + left + ")"
		}
		return left + " -> " + RenderType(ty.To)
	case *TupleType:
		parts := make([]string, 0, len(ty.Items))
		for _, item := range ty.Items {
			parts = append(parts, RenderType(item))
		}
		return "( " + strings.Join(parts, ", ") + " )"
	case *RecordType:
		return "{ " + renderFields(ty.Fields) + " }"
	case *GenericRecordType:
		return "{ " + ty.Base + " | " + renderFields(ty.Fields) + " }"
	default:
		return ""
	}
}

// renderTypeArg parenthesizes applied or arrow types in argument position.
func renderTypeArg(t TypeAnnotation) string {
	switch ty := t.(type) {
	case *TypedType:
		if len(ty.Args) > 0 {
			return "(" + RenderType(ty) + ")"
		}
	case *FunctionType:
		return "(" + RenderType(ty) + ")"
	}
	return RenderType(t)
}

func renderFields(fields []RecordTypeField) string {
	parts := make([]string, 0, len(fields))
	for _, f := range fields {
		parts = append(parts, f.Name+" : "+RenderType(f.Type))
	}
	return strings.Join(parts, ", ")
}
