package elmparse

import (
	"fmt"

	"github.com/CWBudde/go-elm-lsp/internal/ast"
)

// parseError aborts the parse; Parse recovers it into an error return.
type parseError struct {
	msg  string
	line int
	col  int
}

func (e *parseError) Error() string {
	return fmt.Sprintf("%d:%d: %s", e.line, e.col, e.msg)
}

type parser struct {
	toks     []token
	i        int
	comments []ast.Comment
}

// Parse parses Elm source into a File. Any structural error yields a
// nil file and a non-nil error; malformed input never panics through.
func Parse(source string) (file *ast.File, err error) {
	toks, comments := lex(source)
	p := &parser{toks: toks, comments: comments}

	defer func() {
		if r := recover(); r != nil {
			if pe, ok := r.(*parseError); ok {
				file = nil
				err = pe
				return
			}
			panic(r)
		}
	}()

	file = &ast.File{Comments: comments}

	if p.atLower("module") || (p.atLower("port") && p.peekN(1).text == "module") ||
		(p.atLower("effect") && p.peekN(1).text == "module") {
		file.Header = p.parseModuleHeader()
	}

	for p.atLower("import") {
		file.Imports = append(file.Imports, p.parseImport())
	}

	for !p.atEOF() {
		before := p.i
		decl := p.parseDeclaration()
		if decl != nil {
			file.Decls = append(file.Decls, decl)
		}
		if p.i == before {
			p.fail("no progress at top level")
		}
	}

	attachSignatures(file)
	return file, nil
}

// attachSignatures merges a standalone type signature into the function
// declaration of the same name that immediately follows it.
func attachSignatures(file *ast.File) {
	var out []ast.Declaration
	var pending *ast.TypeSignature
	for _, d := range file.Decls {
		switch decl := d.(type) {
		case *signatureDecl:
			if pending != nil {
				// Dangling signature with no body; keep it as a bodyless
				// function so navigation still has a name node.
				out = append(out, danglingSignature(pending))
			}
			pending = decl.sig
		case *ast.FunctionDecl:
			if pending != nil && pending.Name == decl.Name {
				decl.Signature = pending
				decl.Range.Start = pending.Range.Start
				if decl.Doc == nil {
					decl.Doc = docBefore(file.Comments, pending.Range.Start.Line)
				}
			} else if pending != nil {
				out = append(out, danglingSignature(pending))
			}
			pending = nil
			out = append(out, decl)
		default:
			if pending != nil {
				out = append(out, danglingSignature(pending))
				pending = nil
			}
			out = append(out, d)
		}
	}
	if pending != nil {
		out = append(out, danglingSignature(pending))
	}
	file.Decls = out
}

func danglingSignature(sig *ast.TypeSignature) *ast.FunctionDecl {
	return &ast.FunctionDecl{
		Signature: sig,
		Name:      sig.Name,
		NameRange: sig.NameRange,
		Range:     sig.Range,
	}
}

// signatureDecl is a parser-internal placeholder for a standalone type
// signature before it is merged with its function body.
type signatureDecl struct {
	sig *ast.TypeSignature
}

func (d *signatureDecl) DeclRange() ast.Range { return d.sig.Range }

// --- token access helpers ---

func (p *parser) peek() token {
	return p.toks[p.i]
}

func (p *parser) peekN(n int) token {
	if p.i+n >= len(p.toks) {
		return p.toks[len(p.toks)-1]
	}
	return p.toks[p.i+n]
}

func (p *parser) take() token {
	t := p.toks[p.i]
	if t.kind != tokEOF {
		p.i++
	}
	return t
}

func (p *parser) atEOF() bool {
	return p.peek().kind == tokEOF
}

func (p *parser) at(kind tokKind) bool {
	return p.peek().kind == kind
}

func (p *parser) atLower(text string) bool {
	t := p.peek()
	return t.kind == tokLower && t.text == text
}

func (p *parser) expect(kind tokKind, what string) token {
	if !p.at(kind) {
		p.fail("expected " + what)
	}
	return p.take()
}

func (p *parser) expectLower(text string) token {
	if !p.atLower(text) {
		p.fail("expected keyword " + text)
	}
	return p.take()
}

func (p *parser) fail(msg string) {
	t := p.peek()
	panic(&parseError{msg: msg, line: t.line, col: t.col})
}

// adjacent reports whether b starts exactly where a ends, on one line.
func adjacent(a, b token) bool {
	return a.line == b.line && a.end() == b.col
}

// --- module header and imports ---

func (p *parser) parseModuleHeader() *ast.ModuleHeader {
	start := p.peek()
	kind := ast.ModuleNormal
	if p.atLower("port") {
		kind = ast.ModulePort
		p.take()
	} else if p.atLower("effect") {
		kind = ast.ModuleEffect
		p.take()
	}
	p.expectLower("module")

	name, nameRange := p.parseDottedUpperName()

	if kind == ast.ModuleEffect && p.atLower("where") {
		p.take()
		p.skipBalancedBraces()
	}

	p.expectLower("exposing")
	exposing := p.parseExposingList()

	return &ast.ModuleHeader{
		Kind:      kind,
		Name:      name,
		NameRange: nameRange,
		Exposing:  exposing,
		Range:     ast.Range{Start: start.pos(), End: exposing.Range.End},
	}
}

func (p *parser) skipBalancedBraces() {
	p.expect(tokLBrace, "{")
	depth := 1
	for depth > 0 && !p.atEOF() {
		switch p.take().kind {
		case tokLBrace:
			depth++
		case tokRBrace:
			depth--
		}
	}
}

// parseDottedUpperName consumes Upper ('.' Upper)* written without spaces.
func (p *parser) parseDottedUpperName() (string, ast.Range) {
	first := p.expect(tokUpper, "module name")
	name := first.text
	last := first
	for p.at(tokDot) && adjacent(last, p.peek()) && p.peekN(1).kind == tokUpper && adjacent(p.peek(), p.peekN(1)) {
		p.take()
		part := p.take()
		name += "." + part.text
		last = part
	}
	return name, ast.Range{Start: first.pos(), End: last.endPos()}
}

func (p *parser) parseImport() *ast.Import {
	start := p.expectLower("import")
	name, nameRange := p.parseDottedUpperName()

	imp := &ast.Import{
		ModuleName:      name,
		ModuleNameRange: nameRange,
		Range:           ast.Range{Start: start.pos(), End: nameRange.End},
	}

	if p.atLower("as") {
		p.take()
		alias := p.expect(tokUpper, "import alias")
		imp.Alias = alias.text
		r := ast.Range{Start: alias.pos(), End: alias.endPos()}
		imp.AliasRange = &r
		imp.Range.End = r.End
	}

	if p.atLower("exposing") {
		p.take()
		imp.Exposing = p.parseExposingList()
		imp.Range.End = imp.Exposing.Range.End
	}

	return imp
}

func (p *parser) parseExposingList() *ast.ExposingList {
	open := p.expect(tokLParen, "(")
	list := &ast.ExposingList{}

	if p.at(tokDotDot) {
		p.take()
		list.All = true
		closing := p.expect(tokRParen, ")")
		list.Range = ast.Range{Start: open.pos(), End: closing.endPos()}
		return list
	}

	for {
		list.Items = append(list.Items, p.parseExposedItem())
		if p.at(tokComma) {
			p.take()
			continue
		}
		break
	}

	closing := p.expect(tokRParen, ")")
	list.Range = ast.Range{Start: open.pos(), End: closing.endPos()}
	return list
}

func (p *parser) parseExposedItem() ast.ExposedItem {
	switch {
	case p.at(tokLower):
		t := p.take()
		return ast.ExposedItem{
			Kind:  ast.ExposedValue,
			Name:  t.text,
			Range: ast.Range{Start: t.pos(), End: t.endPos()},
		}
	case p.at(tokLParen):
		// Exposed operator like (</>).
		open := p.take()
		op := p.expectOperatorish()
		closing := p.expect(tokRParen, ")")
		return ast.ExposedItem{
			Kind:  ast.ExposedInfix,
			Name:  op.text,
			Range: ast.Range{Start: open.pos(), End: closing.endPos()},
		}
	case p.at(tokUpper):
		t := p.take()
		item := ast.ExposedItem{
			Kind:  ast.ExposedTypeOrAlias,
			Name:  t.text,
			Range: ast.Range{Start: t.pos(), End: t.endPos()},
		}
		if p.at(tokLParen) && p.peekN(1).kind == tokDotDot {
			open := p.take()
			p.take()
			closing := p.expect(tokRParen, ")")
			item.Kind = ast.ExposedType
			openRange := ast.Range{Start: open.pos(), End: closing.endPos()}
			item.OpenRange = &openRange
			item.Range.End = openRange.End
		}
		return item
	default:
		p.fail("expected exposing item")
		return ast.ExposedItem{}
	}
}

func (p *parser) expectOperatorish() token {
	switch p.peek().kind {
	case tokOperator, tokPipe, tokColon, tokEquals, tokDot, tokDotDot, tokComma:
		return p.take()
	}
	p.fail("expected operator")
	return token{}
}

// --- top-level declarations ---

func (p *parser) parseDeclaration() ast.Declaration {
	t := p.peek()

	switch {
	case t.kind == tokLower && t.text == "type":
		if p.peekN(1).kind == tokLower && p.peekN(1).text == "alias" {
			return p.parseTypeAlias()
		}
		return p.parseTypeDecl()
	case t.kind == tokLower && t.text == "port":
		return p.parsePortDecl()
	case t.kind == tokLower && t.text == "infix":
		return p.parseInfixDecl()
	case t.kind == tokLower && !isKeyword(t.text):
		return p.parseValueDeclaration()
	case t.kind == tokLParen || t.kind == tokLBrace || t.kind == tokUnderscore:
		return p.parseDestructuring()
	default:
		// Recover: skip the offending token so the loop makes progress
		// and later declarations still parse.
		p.take()
		return nil
	}
}

func (p *parser) docFor(line int) *ast.Comment {
	return docBefore(p.comments, line)
}

// docBefore finds the doc comment ending on the line just above line.
func docBefore(comments []ast.Comment, line int) *ast.Comment {
	for i := len(comments) - 1; i >= 0; i-- {
		c := comments[i]
		if len(c.Text) >= 3 && c.Text[:3] == "{-|" &&
			c.Range.End.Line >= line-1 && c.Range.End.Line <= line && c.Range.Start.Line < line {
			return &comments[i]
		}
	}
	return nil
}

func (p *parser) parseTypeAlias() ast.Declaration {
	start := p.take() // type
	p.take()          // alias
	name := p.expect(tokUpper, "type alias name")

	var generics []string
	for p.at(tokLower) && !isKeyword(p.peek().text) {
		generics = append(generics, p.take().text)
	}

	p.expect(tokEquals, "=")
	annotation := p.parseType(start.col)

	return &ast.TypeAliasDecl{
		Doc:       p.docFor(start.line),
		Name:      name.text,
		NameRange: ast.Range{Start: name.pos(), End: name.endPos()},
		Generics:  generics,
		Type:      annotation,
		Range:     ast.Range{Start: start.pos(), End: annotation.TypeRange().End},
	}
}

func (p *parser) parseTypeDecl() ast.Declaration {
	start := p.take() // type
	name := p.expect(tokUpper, "type name")

	var generics []string
	for p.at(tokLower) && !isKeyword(p.peek().text) {
		generics = append(generics, p.take().text)
	}

	p.expect(tokEquals, "=")

	decl := &ast.TypeDecl{
		Doc:       p.docFor(start.line),
		Name:      name.text,
		NameRange: ast.Range{Start: name.pos(), End: name.endPos()},
		Generics:  generics,
	}

	for {
		ctor := p.parseConstructor(start.col)
		decl.Constructors = append(decl.Constructors, ctor)
		if p.at(tokPipe) && p.peek().col > start.col {
			p.take()
			continue
		}
		break
	}

	end := decl.Constructors[len(decl.Constructors)-1].Range.End
	decl.Range = ast.Range{Start: start.pos(), End: end}
	return decl
}

func (p *parser) parseConstructor(indent int) *ast.Constructor {
	name := p.expect(tokUpper, "constructor name")
	ctor := &ast.Constructor{
		Name:      name.text,
		NameRange: ast.Range{Start: name.pos(), End: name.endPos()},
		Range:     ast.Range{Start: name.pos(), End: name.endPos()},
	}
	for p.startsTypeAtom() && p.peek().col > indent {
		arg := p.parseTypeAtom(indent)
		ctor.Args = append(ctor.Args, arg)
		ctor.Range.End = arg.TypeRange().End
	}
	return ctor
}

func (p *parser) parsePortDecl() ast.Declaration {
	start := p.take() // port
	name := p.expect(tokLower, "port name")
	p.expect(tokColon, ":")
	annotation := p.parseType(start.col)

	return &ast.PortDecl{
		Name:      name.text,
		NameRange: ast.Range{Start: name.pos(), End: name.endPos()},
		Type:      annotation,
		Range:     ast.Range{Start: start.pos(), End: annotation.TypeRange().End},
	}
}

func (p *parser) parseInfixDecl() ast.Declaration {
	start := p.take() // infix
	p.expect(tokLower, "associativity")
	p.expect(tokInt, "precedence")
	p.expect(tokLParen, "(")
	op := p.expectOperatorish()
	p.expect(tokRParen, ")")
	p.expect(tokEquals, "=")
	fn := p.expect(tokLower, "implementation name")

	return &ast.InfixDecl{
		Operator:      op.text,
		OperatorRange: ast.Range{Start: op.pos(), End: op.endPos()},
		FunctionName:  fn.text,
		Range:         ast.Range{Start: start.pos(), End: fn.endPos()},
	}
}

// parseValueDeclaration parses either a standalone type signature or a
// function declaration starting at the current lower identifier.
func (p *parser) parseValueDeclaration() ast.Declaration {
	name := p.take()

	if p.at(tokColon) {
		p.take()
		annotation := p.parseType(name.col)
		sig := &ast.TypeSignature{
			Name:      name.text,
			NameRange: ast.Range{Start: name.pos(), End: name.endPos()},
			Type:      annotation,
			Range:     ast.Range{Start: name.pos(), End: annotation.TypeRange().End},
		}
		return &signatureDecl{sig: sig}
	}

	var args []ast.Pattern
	for !p.at(tokEquals) && !p.atEOF() {
		if !p.startsPattern() {
			p.fail("expected argument pattern or =")
		}
		args = append(args, p.parseAtomPattern(name.col))
	}
	p.expect(tokEquals, "=")
	body := p.parseExpr(name.col)

	return &ast.FunctionDecl{
		Doc:       p.docFor(name.line),
		Name:      name.text,
		NameRange: ast.Range{Start: name.pos(), End: name.endPos()},
		Args:      args,
		Body:      body,
		Range:     ast.Range{Start: name.pos(), End: body.ExprRange().End},
	}
}

func (p *parser) parseDestructuring() ast.Declaration {
	start := p.peek()
	pattern := p.parsePattern(start.col)
	p.expect(tokEquals, "=")
	expr := p.parseExpr(start.col)

	return &ast.DestructuringDecl{
		Pattern: pattern,
		Expr:    expr,
		Range:   ast.Range{Start: start.pos(), End: expr.ExprRange().End},
	}
}
