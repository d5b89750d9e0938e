package elmparse

import (
	"testing"
)

func TestLexPositionsAreOneBased(t *testing.T) {
	toks, _ := lex("add x =\n    x + 1\n")

	if toks[0].text != "add" || toks[0].line != 1 || toks[0].col != 1 {
		t.Fatalf("first token = %+v, want add at 1:1", toks[0])
	}
	if toks[0].end() != 4 {
		t.Errorf("end of %q = %d, want 4", toks[0].text, toks[0].end())
	}

	// "x" on the second line sits at column 5.
	var secondLine []token
	for _, tok := range toks {
		if tok.line == 2 {
			secondLine = append(secondLine, tok)
		}
	}
	if len(secondLine) == 0 || secondLine[0].col != 5 {
		t.Fatalf("second line tokens = %+v, want first at col 5", secondLine)
	}
}

func TestLexTokenKinds(t *testing.T) {
	cases := []struct {
		source string
		kind   tokKind
	}{
		{"helper", tokLower},
		{"Helper", tokUpper},
		{"42", tokInt},
		{"0x2A", tokHex},
		{"3.14", tokFloat},
		{"1.0e6", tokFloat},
		{`"hi"`, tokString},
		{`"""multi"""`, tokString},
		{"'c'", tokChar},
		{"->", tokArrow},
		{"..", tokDotDot},
		{"::", tokOperator},
		{"|>", tokOperator},
		{"=", tokEquals},
		{"|", tokPipe},
		{":", tokColon},
		{"\\", tokBackslash},
		{"_", tokUnderscore},
	}

	for _, tc := range cases {
		toks, _ := lex(tc.source)
		if len(toks) < 2 {
			t.Errorf("lex(%q) produced no tokens", tc.source)
			continue
		}
		if toks[0].kind != tc.kind {
			t.Errorf("lex(%q) kind = %d, want %d", tc.source, toks[0].kind, tc.kind)
		}
	}
}

func TestLexCommentsAreCollected(t *testing.T) {
	source := "-- line comment\n{- block {- nested -} comment -}\nx = 1\n"
	toks, comments := lex(source)

	if len(comments) != 2 {
		t.Fatalf("comments = %d, want 2", len(comments))
	}
	if comments[1].Range.Start.Line != 2 {
		t.Errorf("block comment starts line %d, want 2", comments[1].Range.Start.Line)
	}

	// Comments never leak into the token stream.
	for _, tok := range toks {
		if tok.line < 3 && tok.kind != tokEOF {
			t.Errorf("token %+v leaked from comment lines", tok)
		}
	}
}

func TestLexIntDotDotStaysRange(t *testing.T) {
	toks, _ := lex("List.range 1..10")
	var kinds []tokKind
	for _, tok := range toks {
		kinds = append(kinds, tok.kind)
	}
	// Upper Dot lower Int DotDot Int EOF
	want := []tokKind{tokUpper, tokDot, tokLower, tokInt, tokDotDot, tokInt, tokEOF}
	if len(kinds) != len(want) {
		t.Fatalf("kinds = %v, want %v", kinds, want)
	}
	for i := range want {
		if kinds[i] != want[i] {
			t.Fatalf("kinds[%d] = %d, want %d (%v)", i, kinds[i], want[i], kinds)
		}
	}
}
