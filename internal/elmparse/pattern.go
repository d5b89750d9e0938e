package elmparse

import "github.com/CWBudde/go-elm-lsp/internal/ast"

func (p *parser) startsPattern() bool {
	t := p.peek()
	switch t.kind {
	case tokUnderscore, tokUpper, tokLParen, tokLBracket, tokLBrace,
		tokInt, tokHex, tokFloat, tokString, tokChar:
		return true
	case tokLower:
		return !isKeyword(t.text)
	}
	return false
}

// parsePattern parses a full pattern: constructor applications, uncons
// chains and as-aliases.
func (p *parser) parsePattern(indent int) ast.Pattern {
	pattern := p.parseConsPattern(indent)

	if p.atLower("as") {
		p.take()
		name := p.expect(tokLower, "as alias")
		pattern = &ast.AsPattern{
			Inner:     pattern,
			Name:      name.text,
			NameRange: tokenRange(name),
			Range:     ast.Range{Start: pattern.PatternRange().Start, End: name.endPos()},
		}
	}
	return pattern
}

func (p *parser) parseConsPattern(indent int) ast.Pattern {
	head := p.parseCtorPattern(indent)

	if p.at(tokOperator) && p.peek().text == "::" {
		p.take()
		tail := p.parseConsPattern(indent)
		return &ast.UnconsPattern{
			Head:  head,
			Tail:  tail,
			Range: ast.Range{Start: head.PatternRange().Start, End: tail.PatternRange().End},
		}
	}
	return head
}

// parseCtorPattern parses a constructor pattern with arguments, or
// falls through to an atomic pattern.
func (p *parser) parseCtorPattern(indent int) ast.Pattern {
	if !p.at(tokUpper) {
		return p.parseAtomPattern(indent)
	}

	first := p.take()
	parts := []string{first.text}
	last := first
	for p.at(tokDot) && adjacent(last, p.peek()) && p.peekN(1).kind == tokUpper && adjacent(p.peek(), p.peekN(1)) {
		p.take()
		last = p.take()
		parts = append(parts, last.text)
	}

	pattern := &ast.NamedPattern{
		ModuleParts: parts[:len(parts)-1],
		Name:        parts[len(parts)-1],
		NameRange:   ast.Range{Start: first.pos(), End: last.endPos()},
		Range:       ast.Range{Start: first.pos(), End: last.endPos()},
	}

	for p.startsPattern() && continues(p.peek(), indent) {
		arg := p.parseAtomPattern(indent)
		pattern.Args = append(pattern.Args, arg)
		pattern.Range.End = arg.PatternRange().End
	}
	return pattern
}

// parseAtomPattern parses a pattern that needs no surrounding parens:
// the argument-position grammar.
func (p *parser) parseAtomPattern(indent int) ast.Pattern {
	t := p.peek()

	switch t.kind {
	case tokUnderscore:
		p.take()
		return &ast.WildcardPattern{Range: tokenRange(t)}
	case tokLower:
		if isKeyword(t.text) {
			p.fail("unexpected keyword in pattern")
		}
		p.take()
		return &ast.VarPattern{Name: t.text, Range: tokenRange(t)}
	case tokUpper:
		// Bare constructor; arguments only attach in parseCtorPattern.
		first := p.take()
		parts := []string{first.text}
		last := first
		for p.at(tokDot) && adjacent(last, p.peek()) && p.peekN(1).kind == tokUpper && adjacent(p.peek(), p.peekN(1)) {
			p.take()
			last = p.take()
			parts = append(parts, last.text)
		}
		return &ast.NamedPattern{
			ModuleParts: parts[:len(parts)-1],
			Name:        parts[len(parts)-1],
			NameRange:   ast.Range{Start: first.pos(), End: last.endPos()},
			Range:       ast.Range{Start: first.pos(), End: last.endPos()},
		}
	case tokInt:
		p.take()
		return &ast.LiteralPattern{Kind: ast.LitInt, Text: t.text, Range: tokenRange(t)}
	case tokHex:
		p.take()
		return &ast.LiteralPattern{Kind: ast.LitHex, Text: t.text, Range: tokenRange(t)}
	case tokFloat:
		p.take()
		return &ast.LiteralPattern{Kind: ast.LitFloat, Text: t.text, Range: tokenRange(t)}
	case tokString:
		p.take()
		return &ast.LiteralPattern{Kind: ast.LitString, Text: t.text, Range: tokenRange(t)}
	case tokChar:
		p.take()
		return &ast.LiteralPattern{Kind: ast.LitChar, Text: t.text, Range: tokenRange(t)}
	case tokOperator:
		if t.text == "-" && p.peekN(1).kind == tokInt && adjacent(t, p.peekN(1)) {
			p.take()
			num := p.take()
			return &ast.LiteralPattern{
				Kind:  ast.LitInt,
				Text:  "-" + num.text,
				Range: ast.Range{Start: t.pos(), End: num.endPos()},
			}
		}
	case tokLParen:
		return p.parseParenPattern()
	case tokLBracket:
		return p.parseListPattern()
	case tokLBrace:
		return p.parseRecordPattern()
	}

	p.fail("expected pattern")
	return nil
}

func (p *parser) parseParenPattern() ast.Pattern {
	open := p.take()

	if p.at(tokRParen) {
		closing := p.take()
		return &ast.UnitPattern{Range: ast.Range{Start: open.pos(), End: closing.endPos()}}
	}

	items := []ast.Pattern{p.parsePattern(0)}
	for p.at(tokComma) {
		p.take()
		items = append(items, p.parsePattern(0))
	}
	closing := p.expect(tokRParen, ")")
	full := ast.Range{Start: open.pos(), End: closing.endPos()}

	if len(items) == 1 {
		return &ast.ParenthesizedPattern{Inner: items[0], Range: full}
	}
	return &ast.TuplePattern{Items: items, Range: full}
}

func (p *parser) parseListPattern() ast.Pattern {
	open := p.take()

	pattern := &ast.ListPattern{}
	if !p.at(tokRBracket) {
		pattern.Items = append(pattern.Items, p.parsePattern(0))
		for p.at(tokComma) {
			p.take()
			pattern.Items = append(pattern.Items, p.parsePattern(0))
		}
	}
	closing := p.expect(tokRBracket, "]")
	pattern.Range = ast.Range{Start: open.pos(), End: closing.endPos()}
	return pattern
}

func (p *parser) parseRecordPattern() ast.Pattern {
	open := p.take()

	pattern := &ast.RecordPattern{}
	if !p.at(tokRBrace) {
		for {
			name := p.expect(tokLower, "record pattern field")
			pattern.Fields = append(pattern.Fields, ast.RecordFieldPattern{
				Name:  name.text,
				Range: tokenRange(name),
			})
			if p.at(tokComma) {
				p.take()
				continue
			}
			break
		}
	}
	closing := p.expect(tokRBrace, "}")
	pattern.Range = ast.Range{Start: open.pos(), End: closing.endPos()}
	return pattern
}
