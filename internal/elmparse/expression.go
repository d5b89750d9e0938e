package elmparse

import "github.com/CWBudde/go-elm-lsp/internal/ast"

// binopInfo carries Elm's operator precedence table. Unknown operators
// default to precedence 5, left associative.
type binopInfo struct {
	prec  int
	right bool
}

var binops = map[string]binopInfo{
	"<|": {0, true}, "|>": {0, false},
	"||": {2, false}, "&&": {3, false},
	"==": {4, false}, "/=": {4, false},
	"<": {4, false}, ">": {4, false}, "<=": {4, false}, ">=": {4, false},
	"++": {5, true}, "::": {5, true},
	"+": {6, false}, "-": {6, false},
	"*": {7, false}, "/": {7, false}, "//": {7, false},
	"^": {8, true},
	"<<": {9, false}, ">>": {9, true},
}

func binop(op string) binopInfo {
	if info, ok := binops[op]; ok {
		return info
	}
	return binopInfo{prec: 5}
}

// stop keywords end the expression to their left.
func isStopKeyword(t token) bool {
	if t.kind != tokLower {
		return false
	}
	switch t.text {
	case "then", "else", "of", "in":
		return true
	}
	return false
}

// continues reports whether t belongs to a construct whose base column
// is indent. Tokens at or left of the base column start something new.
func continues(t token, indent int) bool {
	return t.kind != tokEOF && t.col > indent
}

// parseExpr parses a full expression whose content must stay right of
// the indent column.
func (p *parser) parseExpr(indent int) ast.Expr {
	return p.parseOpExpr(indent, 0)
}

func (p *parser) parseOpExpr(indent int, minPrec int) ast.Expr {
	left := p.parseApplication(indent)

	for {
		t := p.peek()
		if t.kind != tokOperator || !continues(t, indent) {
			break
		}
		info := binop(t.text)
		if info.prec < minPrec {
			break
		}
		p.take()
		nextMin := info.prec + 1
		if info.right {
			nextMin = info.prec
		}
		right := p.parseOpExpr(indent, nextMin)
		left = &ast.OperatorApplication{
			Op:    t.text,
			Left:  left,
			Right: right,
			Range: ast.Range{Start: left.ExprRange().Start, End: right.ExprRange().End},
		}
	}

	return left
}

func (p *parser) parseApplication(indent int) ast.Expr {
	first := p.parseAtom(indent)
	args := []ast.Expr{first}

	for p.startsAtom() && continues(p.peek(), indent) && !isStopKeyword(p.peek()) {
		args = append(args, p.parseAtom(indent))
	}

	if len(args) == 1 {
		return first
	}
	return &ast.Application{
		Args:  args,
		Range: ast.Range{Start: first.ExprRange().Start, End: args[len(args)-1].ExprRange().End},
	}
}

func (p *parser) startsAtom() bool {
	t := p.peek()
	switch t.kind {
	case tokInt, tokHex, tokFloat, tokString, tokChar, tokGLSL,
		tokUpper, tokLParen, tokLBracket, tokLBrace, tokBackslash:
		return true
	case tokLower:
		return !isKeyword(t.text) || t.text == "if" || t.text == "let" || t.text == "case"
	case tokDot:
		// .field access function
		return p.peekN(1).kind == tokLower && adjacent(t, p.peekN(1))
	}
	return false
}

func (p *parser) parseAtom(indent int) ast.Expr {
	expr := p.parseBareAtom(indent)
	return p.parsePostfixAccess(expr)
}

// parsePostfixAccess chains `.field` accesses written without spaces.
func (p *parser) parsePostfixAccess(expr ast.Expr) ast.Expr {
	for {
		dot := p.peek()
		if dot.kind != tokDot {
			return expr
		}
		end := expr.ExprRange().End
		if dot.line != end.Line || dot.col != end.Column {
			return expr
		}
		field := p.peekN(1)
		if field.kind != tokLower || !adjacent(dot, field) {
			return expr
		}
		p.take()
		p.take()
		expr = &ast.RecordAccess{
			Target:     expr,
			FieldName:  field.text,
			FieldRange: ast.Range{Start: field.pos(), End: field.endPos()},
			Range:      ast.Range{Start: expr.ExprRange().Start, End: field.endPos()},
		}
	}
}

func (p *parser) parseBareAtom(indent int) ast.Expr {
	t := p.peek()

	switch t.kind {
	case tokInt:
		p.take()
		return &ast.Literal{Kind: ast.LitInt, Text: t.text, Range: tokenRange(t)}
	case tokHex:
		p.take()
		return &ast.Literal{Kind: ast.LitHex, Text: t.text, Range: tokenRange(t)}
	case tokFloat:
		p.take()
		return &ast.Literal{Kind: ast.LitFloat, Text: t.text, Range: tokenRange(t)}
	case tokString:
		p.take()
		return &ast.Literal{Kind: ast.LitString, Text: t.text, Range: multilineRange(t)}
	case tokChar:
		p.take()
		return &ast.Literal{Kind: ast.LitChar, Text: t.text, Range: tokenRange(t)}
	case tokGLSL:
		p.take()
		return &ast.Literal{Kind: ast.LitGLSL, Text: t.text, Range: multilineRange(t)}
	case tokLower:
		switch t.text {
		case "if":
			return p.parseIf(indent)
		case "let":
			return p.parseLet(indent)
		case "case":
			return p.parseCase(indent)
		}
		if isKeyword(t.text) {
			p.fail("unexpected keyword " + t.text)
		}
		p.take()
		return &ast.FunctionOrValue{Name: t.text, Range: tokenRange(t)}
	case tokUpper:
		return p.parseQualifiedRef()
	case tokDot:
		// .field as a function value
		dot := p.take()
		field := p.expect(tokLower, "field name")
		return &ast.RecordAccessFunction{
			Name:  field.text,
			Range: ast.Range{Start: dot.pos(), End: field.endPos()},
		}
	case tokLParen:
		return p.parseParenExpr()
	case tokLBracket:
		return p.parseListExpr()
	case tokLBrace:
		return p.parseRecordExpr()
	case tokBackslash:
		return p.parseLambda(indent)
	case tokOperator:
		if t.text == "-" {
			next := p.peekN(1)
			if adjacent(t, next) {
				p.take()
				inner := p.parseAtom(indent)
				return &ast.Negation{
					Inner: inner,
					Range: ast.Range{Start: t.pos(), End: inner.ExprRange().End},
				}
			}
		}
	}

	p.fail("expected expression")
	return nil
}

// parseQualifiedRef parses Upper ('.' Upper)* ('.' lower)? as a module
// member reference or a bare constructor/type reference.
func (p *parser) parseQualifiedRef() ast.Expr {
	first := p.take()
	parts := []string{first.text}
	last := first

	for p.at(tokDot) && adjacent(last, p.peek()) {
		next := p.peekN(1)
		if !adjacent(p.peek(), next) {
			break
		}
		if next.kind == tokUpper {
			p.take()
			last = p.take()
			parts = append(parts, last.text)
			continue
		}
		if next.kind == tokLower && !isKeyword(next.text) {
			p.take()
			last = p.take()
			return &ast.FunctionOrValue{
				ModuleParts: parts,
				Name:        last.text,
				Range:       ast.Range{Start: first.pos(), End: last.endPos()},
			}
		}
		break
	}

	return &ast.FunctionOrValue{
		ModuleParts: parts[:len(parts)-1],
		Name:        parts[len(parts)-1],
		Range:       ast.Range{Start: first.pos(), End: last.endPos()},
	}
}

func (p *parser) parseIf(indent int) ast.Expr {
	start := p.take() // if
	cond := p.parseExpr(indent)
	p.expectLower("then")
	thenBranch := p.parseExpr(indent)
	p.expectLower("else")
	elseBranch := p.parseExpr(indent)

	return &ast.IfExpr{
		Cond:  cond,
		Then:  thenBranch,
		Else:  elseBranch,
		Range: ast.Range{Start: start.pos(), End: elseBranch.ExprRange().End},
	}
}

func (p *parser) parseLet(indent int) ast.Expr {
	start := p.take() // let
	if p.atEOF() {
		p.fail("unterminated let")
	}

	declCol := p.peek().col
	var decls []ast.Declaration

	for !p.atEOF() && !p.atLower("in") && p.peek().col == declCol {
		before := p.i
		decls = append(decls, p.parseLetDeclaration(declCol))
		if p.i == before {
			p.fail("no progress in let declarations")
		}
	}

	if len(decls) == 0 {
		p.fail("let without declarations")
	}
	p.expectLower("in")
	body := p.parseExpr(indent)

	return &ast.LetExpr{
		Decls: decls,
		Body:  body,
		Range: ast.Range{Start: start.pos(), End: body.ExprRange().End},
	}
}

func (p *parser) parseLetDeclaration(declCol int) ast.Declaration {
	t := p.peek()

	if t.kind == tokLower && !isKeyword(t.text) {
		name := p.take()

		if p.at(tokColon) {
			// Let-local type signature; parse it and the following
			// declaration of the same name as one unit.
			p.take()
			annotation := p.parseType(declCol)
			sig := &ast.TypeSignature{
				Name:      name.text,
				NameRange: ast.Range{Start: name.pos(), End: name.endPos()},
				Type:      annotation,
				Range:     ast.Range{Start: name.pos(), End: annotation.TypeRange().End},
			}
			if p.peek().kind == tokLower && p.peek().text == name.text && p.peek().col == declCol {
				decl := p.parseLetDeclaration(declCol)
				if fn, ok := decl.(*ast.FunctionDecl); ok {
					fn.Signature = sig
					fn.Range.Start = sig.Range.Start
				}
				return decl
			}
			return danglingSignature(sig)
		}

		var args []ast.Pattern
		for !p.at(tokEquals) && !p.atEOF() {
			if !p.startsPattern() {
				p.fail("expected argument pattern or = in let")
			}
			args = append(args, p.parseAtomPattern(declCol))
		}
		p.expect(tokEquals, "=")
		body := p.parseExpr(declCol)

		return &ast.FunctionDecl{
			Name:      name.text,
			NameRange: ast.Range{Start: name.pos(), End: name.endPos()},
			Args:      args,
			Body:      body,
			Range:     ast.Range{Start: name.pos(), End: body.ExprRange().End},
		}
	}

	// Destructuring let binding.
	pattern := p.parsePattern(declCol)
	p.expect(tokEquals, "=")
	expr := p.parseExpr(declCol)
	return &ast.DestructuringDecl{
		Pattern: pattern,
		Expr:    expr,
		Range:   ast.Range{Start: pattern.PatternRange().Start, End: expr.ExprRange().End},
	}
}

func (p *parser) parseCase(indent int) ast.Expr {
	start := p.take() // case
	scrutinee := p.parseExpr(indent)
	p.expectLower("of")

	if p.atEOF() {
		p.fail("case without branches")
	}
	branchCol := p.peek().col
	if branchCol <= indent {
		p.fail("case branches must be indented")
	}

	expr := &ast.CaseExpr{Scrutinee: scrutinee}

	for !p.atEOF() && p.peek().col == branchCol && p.startsPattern() {
		before := p.i
		pattern := p.parsePattern(branchCol)
		p.expect(tokArrow, "->")
		body := p.parseExpr(branchCol)
		expr.Branches = append(expr.Branches, &ast.CaseBranch{
			Pattern: pattern,
			Body:    body,
			Range:   ast.Range{Start: pattern.PatternRange().Start, End: body.ExprRange().End},
		})
		if p.i == before {
			p.fail("no progress in case branches")
		}
	}

	if len(expr.Branches) == 0 {
		p.fail("case without branches")
	}
	expr.Range = ast.Range{
		Start: start.pos(),
		End:   expr.Branches[len(expr.Branches)-1].Range.End,
	}
	return expr
}

func (p *parser) parseLambda(indent int) ast.Expr {
	start := p.take() // backslash

	var patterns []ast.Pattern
	for !p.at(tokArrow) && !p.atEOF() {
		if !p.startsPattern() {
			p.fail("expected lambda pattern")
		}
		patterns = append(patterns, p.parseAtomPattern(indent))
	}
	p.expect(tokArrow, "->")
	body := p.parseExpr(indent)

	return &ast.Lambda{
		Patterns: patterns,
		Body:     body,
		Range:    ast.Range{Start: start.pos(), End: body.ExprRange().End},
	}
}

// parseParenExpr handles (), (op), (expr) and tuples. Layout is
// suspended inside the parentheses.
func (p *parser) parseParenExpr() ast.Expr {
	open := p.take()

	if p.at(tokRParen) {
		closing := p.take()
		return &ast.UnitExpr{Range: ast.Range{Start: open.pos(), End: closing.endPos()}}
	}

	if isOperatorToken(p.peek()) && p.peekN(1).kind == tokRParen {
		op := p.take()
		closing := p.take()
		return &ast.PrefixOperator{
			Op:    op.text,
			Range: ast.Range{Start: open.pos(), End: closing.endPos()},
		}
	}

	items := []ast.Expr{p.parseExpr(0)}
	for p.at(tokComma) {
		p.take()
		items = append(items, p.parseExpr(0))
	}
	closing := p.expect(tokRParen, ")")
	full := ast.Range{Start: open.pos(), End: closing.endPos()}

	if len(items) == 1 {
		return &ast.Parenthesized{Inner: items[0], Range: full}
	}
	return &ast.Tupled{Items: items, Range: full}
}

func isOperatorToken(t token) bool {
	switch t.kind {
	case tokOperator, tokDotDot:
		return true
	}
	return false
}

func (p *parser) parseListExpr() ast.Expr {
	open := p.take()

	list := &ast.ListExpr{}
	if !p.at(tokRBracket) {
		list.Items = append(list.Items, p.parseExpr(0))
		for p.at(tokComma) {
			p.take()
			list.Items = append(list.Items, p.parseExpr(0))
		}
	}
	closing := p.expect(tokRBracket, "]")
	list.Range = ast.Range{Start: open.pos(), End: closing.endPos()}
	return list
}

func (p *parser) parseRecordExpr() ast.Expr {
	open := p.take()

	if p.at(tokRBrace) {
		closing := p.take()
		return &ast.RecordExpr{Range: ast.Range{Start: open.pos(), End: closing.endPos()}}
	}

	if p.at(tokLower) && p.peekN(1).kind == tokPipe {
		name := p.take()
		p.take() // |
		setters := p.parseRecordSetters()
		closing := p.expect(tokRBrace, "}")
		return &ast.RecordUpdate{
			Name:      name.text,
			NameRange: tokenRange(name),
			Setters:   setters,
			Range:     ast.Range{Start: open.pos(), End: closing.endPos()},
		}
	}

	setters := p.parseRecordSetters()
	closing := p.expect(tokRBrace, "}")
	return &ast.RecordExpr{
		Setters: setters,
		Range:   ast.Range{Start: open.pos(), End: closing.endPos()},
	}
}

func (p *parser) parseRecordSetters() []*ast.RecordSetter {
	var setters []*ast.RecordSetter
	for {
		name := p.expect(tokLower, "record field name")
		p.expect(tokEquals, "=")
		value := p.parseExpr(0)
		setters = append(setters, &ast.RecordSetter{
			Name:      name.text,
			NameRange: tokenRange(name),
			Value:     value,
			Range:     ast.Range{Start: name.pos(), End: value.ExprRange().End},
		})
		if p.at(tokComma) {
			p.take()
			continue
		}
		break
	}
	return setters
}

func tokenRange(t token) ast.Range {
	return ast.Range{Start: t.pos(), End: t.endPos()}
}

// multilineRange computes the range of a token whose text may span
// lines (triple-quoted strings, GLSL blocks).
func multilineRange(t token) ast.Range {
	line, col := t.line, t.col
	for _, r := range t.text {
		if r == '\n' {
			line++
			col = 1
		} else {
			col++
		}
	}
	return ast.Range{
		Start: ast.Position{Line: t.line, Column: t.col},
		End:   ast.Position{Line: line, Column: col},
	}
}
