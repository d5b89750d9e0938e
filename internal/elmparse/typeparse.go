package elmparse

import "github.com/CWBudde/go-elm-lsp/internal/ast"

func (p *parser) startsTypeAtom() bool {
	t := p.peek()
	switch t.kind {
	case tokUpper, tokLParen, tokLBrace:
		return true
	case tokLower:
		return !isKeyword(t.text)
	}
	return false
}

// parseType parses a full type annotation; arrows are right associative.
func (p *parser) parseType(indent int) ast.TypeAnnotation {
	left := p.parseTypeApp(indent)

	if p.at(tokArrow) && continues(p.peek(), indent) {
		p.take()
		right := p.parseType(indent)
		return &ast.FunctionType{
			From:  left,
			To:    right,
			Range: ast.Range{Start: left.TypeRange().Start, End: right.TypeRange().End},
		}
	}
	return left
}

// parseTypeApp parses a named type applied to argument atoms.
func (p *parser) parseTypeApp(indent int) ast.TypeAnnotation {
	head := p.parseTypeAtom(indent)

	typed, ok := head.(*ast.TypedType)
	if !ok {
		return head
	}

	for p.startsTypeAtom() && continues(p.peek(), indent) {
		arg := p.parseTypeAtom(indent)
		typed.Args = append(typed.Args, arg)
		typed.Range.End = arg.TypeRange().End
	}
	return typed
}

func (p *parser) parseTypeAtom(indent int) ast.TypeAnnotation {
	t := p.peek()

	switch t.kind {
	case tokLower:
		if isKeyword(t.text) {
			p.fail("unexpected keyword in type")
		}
		p.take()
		return &ast.TypeVar{Name: t.text, Range: tokenRange(t)}
	case tokUpper:
		first := p.take()
		parts := []string{first.text}
		last := first
		for p.at(tokDot) && adjacent(last, p.peek()) && p.peekN(1).kind == tokUpper && adjacent(p.peek(), p.peekN(1)) {
			p.take()
			last = p.take()
			parts = append(parts, last.text)
		}
		return &ast.TypedType{
			ModuleParts: parts[:len(parts)-1],
			Name:        parts[len(parts)-1],
			NameRange:   ast.Range{Start: first.pos(), End: last.endPos()},
			Range:       ast.Range{Start: first.pos(), End: last.endPos()},
		}
	case tokLParen:
		return p.parseParenType()
	case tokLBrace:
		return p.parseRecordType()
	}

	p.fail("expected type")
	return nil
}

func (p *parser) parseParenType() ast.TypeAnnotation {
	open := p.take()

	if p.at(tokRParen) {
		closing := p.take()
		return &ast.TypeUnit{Range: ast.Range{Start: open.pos(), End: closing.endPos()}}
	}

	items := []ast.TypeAnnotation{p.parseType(0)}
	for p.at(tokComma) {
		p.take()
		items = append(items, p.parseType(0))
	}
	closing := p.expect(tokRParen, ")")
	full := ast.Range{Start: open.pos(), End: closing.endPos()}

	if len(items) == 1 {
		// Parenthesized types keep their inner node; only the range of
		// the parenthesized group is widened.
		inner := items[0]
		widenTypeRange(inner, full)
		return inner
	}
	return &ast.TupleType{Items: items, Range: full}
}

func widenTypeRange(t ast.TypeAnnotation, r ast.Range) {
	switch ty := t.(type) {
	case *ast.TypeVar:
		ty.Range = r
	case *ast.TypeUnit:
		ty.Range = r
	case *ast.TypedType:
		ty.Range = r
	case *ast.FunctionType:
		ty.Range = r
	case *ast.TupleType:
		ty.Range = r
	case *ast.RecordType:
		ty.Range = r
	case *ast.GenericRecordType:
		ty.Range = r
	}
}

func (p *parser) parseRecordType() ast.TypeAnnotation {
	open := p.take()

	if p.at(tokRBrace) {
		closing := p.take()
		return &ast.RecordType{Range: ast.Range{Start: open.pos(), End: closing.endPos()}}
	}

	if p.at(tokLower) && p.peekN(1).kind == tokPipe {
		base := p.take()
		p.take() // |
		fields := p.parseRecordTypeFields()
		closing := p.expect(tokRBrace, "}")
		return &ast.GenericRecordType{
			Base:   base.text,
			Fields: fields,
			Range:  ast.Range{Start: open.pos(), End: closing.endPos()},
		}
	}

	fields := p.parseRecordTypeFields()
	closing := p.expect(tokRBrace, "}")
	return &ast.RecordType{
		Fields: fields,
		Range:  ast.Range{Start: open.pos(), End: closing.endPos()},
	}
}

func (p *parser) parseRecordTypeFields() []ast.RecordTypeField {
	var fields []ast.RecordTypeField
	for {
		name := p.expect(tokLower, "record type field")
		p.expect(tokColon, ":")
		fieldType := p.parseType(0)
		fields = append(fields, ast.RecordTypeField{
			Name:  name.text,
			Type:  fieldType,
			Range: ast.Range{Start: name.pos(), End: fieldType.TypeRange().End},
		})
		if p.at(tokComma) {
			p.take()
			continue
		}
		break
	}
	return fields
}
