// Copyright 2016 The OPA Authors.  All rights reserved.
// Use of this source code is governed by an Apache2
// license that can be found in the LICENSE file.

package ast

import (
	"strconv"
	"strings"
)

// Precedence tiers, low to high, per spec.md §4.2. Unary operators bind
// tighter than every binary tier and are handled outside this table by
// parsePrimary/parseUnary.
const (
	precAssign = iota + 1
	precOr
	precAnd
	precEquality
	precComparison
	precAdditive
	precMultiplicative
)

var binOpPrecedence = map[string]int{
	"=":  precAssign,
	":=": precAssign,
	"|":  precOr,
	"&":  precAnd,
	"==": precEquality,
	"!=": precEquality,
	"in": precEquality,
	"<":  precComparison,
	"<=": precComparison,
	">":  precComparison,
	">=": precComparison,
	"+":  precAdditive,
	"-":  precAdditive,
	"*":  precMultiplicative,
	"/":  precMultiplicative,
	"%":  precMultiplicative,
}

var binOpName = map[string]string{
	"=": OpUnify, ":=": OpAssign, "|": OpOr, "&": OpAnd,
	"==": OpEq, "!=": OpNeq, "in": OpIn,
	"<": OpLt, "<=": OpLte, ">": OpGt, ">=": OpGte,
	"+": OpAdd, "-": OpSub, "*": OpMul, "/": OpDiv, "%": OpMod,
}

type parser struct {
	toks []Token
	idx  int
	file string
	errs Errors
}

// ParseRef lexes and parses a standalone reference/expression string such
// as a query's `data.pkg.rule` target. It is the exported entry point
// parseStandaloneExpr backs; rego.Evaluator uses it to turn a query
// string into the Term it resolves against a CompiledModule.
func ParseRef(src string) (*Term, error) {
	return parseStandaloneExpr(src, "query", nil)
}

// ParseModule lexes and parses a single Rego source file into a Module.
func ParseModule(file string, src string) (*Module, error) {
	toks, err := Tokenize([]byte(src), file)
	if err != nil {
		return nil, err
	}
	p := &parser{toks: toks, file: file}
	mod := p.parseModule()
	if len(p.errs) > 0 {
		return nil, p.errs
	}
	return mod, nil
}

func (p *parser) cur() Token  { return p.toks[p.idx] }
func (p *parser) loc() *Location {
	return p.cur().Location
}

func (p *parser) advance() Token {
	t := p.toks[p.idx]
	if p.idx < len(p.toks)-1 {
		p.idx++
	}
	return t
}

func (p *parser) atEOF() bool { return p.cur().Kind == TokenEOF }

func (p *parser) skipNL() {
	for p.cur().Kind == TokenNewline {
		p.advance()
	}
}

func (p *parser) skipSeparators() {
	for p.cur().Kind == TokenNewline || p.atPunct(";") {
		p.advance()
	}
}

func (p *parser) atKeyword(kw string) bool {
	return p.cur().Kind == TokenKeyword && p.cur().Text == kw
}

func (p *parser) atPunct(s string) bool {
	return p.cur().Kind == TokenPunct && p.cur().Text == s
}

func (p *parser) atOp(s string) bool {
	return p.cur().Kind == TokenOperator && p.cur().Text == s
}

func (p *parser) errorf(loc *Location, f string, a ...interface{}) {
	p.errs = append(p.errs, NewError(ParseErr, loc, f, a...))
}

// resync skips tokens up to the next statement boundary (newline, ';',
// or a top-level keyword) after a parse error, per spec.md §4.2 Recovery.
func (p *parser) resync() {
	for !p.atEOF() {
		if p.cur().Kind == TokenNewline || p.atPunct(";") {
			return
		}
		if p.cur().Kind == TokenKeyword {
			switch p.cur().Text {
			case "package", "import", "default":
				return
			}
		}
		p.advance()
	}
}

func (p *parser) expectPunct(s string) (*Location, bool) {
	if p.atPunct(s) {
		loc := p.loc()
		p.advance()
		return loc, true
	}
	p.errorf(p.loc(), "expected %q, got %q", s, p.cur().Text)
	return nil, false
}

func (p *parser) expectKeyword(s string) (*Location, bool) {
	if p.atKeyword(s) {
		loc := p.loc()
		p.advance()
		return loc, true
	}
	p.errorf(p.loc(), "expected keyword %q, got %q", s, p.cur().Text)
	return nil, false
}

func (p *parser) expectIdent() (string, *Location, bool) {
	if p.cur().Kind == TokenIdent {
		loc := p.loc()
		text := p.cur().Text
		p.advance()
		return text, loc, true
	}
	p.errorf(p.loc(), "expected identifier, got %q", p.cur().Text)
	return "", nil, false
}

// ---- module-level ----

func (p *parser) parseModule() *Module {
	p.skipSeparators()
	mod := &Module{}

	if _, ok := p.expectKeyword("package"); !ok {
		p.resync()
		return mod
	}
	pkgLoc := p.loc()
	path := p.parseDottedPath()
	mod.Package = &Package{Location: pkgLoc, Path: Ref{Head: NewTerm(Var("data")), Path: dotArgs(path)}}
	p.skipSeparators()

	for p.atKeyword("import") {
		imp := p.parseImport()
		if imp != nil {
			mod.Imports = append(mod.Imports, imp)
		}
		p.skipSeparators()
	}

	for !p.atEOF() {
		rule := p.parseRule()
		if rule != nil {
			rule.Module = mod
			mod.Rules = append(mod.Rules, rule)
		}
		p.skipSeparators()
	}

	return mod
}

func dotArgs(names []string) []RefArg {
	args := make([]RefArg, len(names))
	for i, n := range names {
		args[i] = NewDotArg(n)
	}
	return args
}

// parseDottedPath parses `ident(.ident)*`, used for `package` paths.
func (p *parser) parseDottedPath() []string {
	name, _, ok := p.expectIdent()
	if !ok {
		return nil
	}
	path := []string{name}
	for p.atPunct(".") {
		p.advance()
		name, _, ok := p.expectIdent()
		if !ok {
			break
		}
		path = append(path, name)
	}
	return path
}

func (p *parser) parseImport() *Import {
	loc := p.loc()
	p.advance() // 'import'
	term := p.parseExpr(precAssign + 1)
	imp := &Import{Location: loc, Path: term}
	if p.atKeyword("as") {
		p.advance()
		name, _, ok := p.expectIdent()
		if ok {
			imp.Alias = Var(name)
		}
	}
	return imp
}

// ---- rules ----

func (p *parser) parseRule() *Rule {
	loc := p.loc()
	isDefault := false
	if p.atKeyword("default") {
		p.advance()
		isDefault = true
	}

	name, nameLoc, ok := p.expectIdent()
	if !ok {
		p.resync()
		return nil
	}

	head := p.parseHead(Var(name), nameLoc)
	if head == nil {
		p.resync()
		return nil
	}

	rule := &Rule{Location: loc, Default: isDefault, Head: head}

	if !isDefault {
		rule.Body = p.parseOptionalBody()
	}

	cursor := rule
	for {
		if p.cur().Kind == TokenNewline && p.idx+1 < len(p.toks) &&
			p.toks[p.idx+1].Kind == TokenKeyword && p.toks[p.idx+1].Text == "else" {
			p.advance()
		}
		if !p.atKeyword("else") {
			break
		}
		elseLoc := p.loc()
		p.advance()
		elseHead := &Head{Location: elseLoc, Kind: head.Kind, Name: head.Name, Args: head.Args}
		if p.atOp("=") || p.atOp(":=") {
			p.advance()
			elseHead.Value = p.parseExpr(precAssign + 1)
		} else {
			elseHead.Value = BooleanTerm(true)
		}
		elseRule := &Rule{Location: elseLoc, Head: elseHead}
		elseRule.Body = p.parseOptionalBody()
		cursor.Else = elseRule
		cursor = elseRule
	}

	return rule
}

// parseHead dispatches on the token following the rule name to build the
// appropriate Head shape (spec.md §4.2/§4.3).
func (p *parser) parseHead(name Var, loc *Location) *Head {
	switch {
	case p.atPunct("("):
		return p.parseFunctionHead(name, loc)
	case p.atPunct("["):
		return p.parseBracketHead(name, loc)
	case p.atKeyword("contains"):
		p.advance()
		key := p.parseExpr(precAssign + 1)
		return &Head{Location: loc, Kind: PartialSetRule, Name: name, Key: key}
	case p.atPunct("."):
		return p.parseDottedObjectHead(name, loc)
	case p.atOp("=") || p.atOp(":="):
		p.advance()
		value := p.parseExpr(precAssign + 1)
		return &Head{Location: loc, Kind: CompleteRule, Name: name, Value: value}
	default:
		return &Head{Location: loc, Kind: CompleteRule, Name: name, Value: BooleanTerm(true)}
	}
}

func (p *parser) parseFunctionHead(name Var, loc *Location) *Head {
	p.advance() // '('
	var args []*Term
	for !p.atPunct(")") && !p.atEOF() {
		args = append(args, p.parseExpr(precAssign+1))
		if p.atPunct(",") {
			p.advance()
			p.skipNL()
			continue
		}
		break
	}
	p.expectPunct(")")
	head := &Head{Location: loc, Kind: FunctionRule, Name: name, Args: args, Value: BooleanTerm(true)}
	if p.atOp("=") || p.atOp(":=") {
		p.advance()
		head.Value = p.parseExpr(precAssign + 1)
	}
	return head
}

func (p *parser) parseBracketHead(name Var, loc *Location) *Head {
	p.advance() // '['
	key := p.parseExpr(precAssign + 1)
	p.expectPunct("]")

	var path []RefArg
	for p.atPunct(".") {
		p.advance()
		seg, _, ok := p.expectIdent()
		if !ok {
			break
		}
		path = append(path, NewDotArg(seg))
	}

	if p.atOp("=") || p.atOp(":=") {
		p.advance()
		value := p.parseExpr(precAssign + 1)
		full := append([]RefArg{NewBracketArg(key)}, path...)
		return &Head{Location: loc, Kind: PartialObjectRule, Name: name, KeyPath: full, Value: value}
	}
	if len(path) > 0 {
		p.errorf(loc, "rule head %s[...]%s... is missing a value", name, path[0])
	}
	return &Head{Location: loc, Kind: PartialSetRule, Name: name, Key: key}
}

// parseDottedObjectHead handles `foo.bar.baz := v`.
func (p *parser) parseDottedObjectHead(name Var, loc *Location) *Head {
	var path []RefArg
	for p.atPunct(".") {
		p.advance()
		seg, _, ok := p.expectIdent()
		if !ok {
			break
		}
		path = append(path, NewDotArg(seg))
	}
	if _, ok := p.expectOneOfOps("=", ":="); !ok {
		return nil
	}
	value := p.parseExpr(precAssign + 1)
	return &Head{Location: loc, Kind: PartialObjectRule, Name: name, KeyPath: path, Value: value}
}

func (p *parser) expectOneOfOps(ops ...string) (string, bool) {
	for _, op := range ops {
		if p.atOp(op) {
			p.advance()
			return op, true
		}
	}
	p.errorf(p.loc(), "expected one of %v, got %q", ops, p.cur().Text)
	return "", false
}

// parseOptionalBody parses `{ query }` or `if query`/`if { query }`, or
// returns nil if neither follows (a fact rule with no body).
func (p *parser) parseOptionalBody() Body {
	switch {
	case p.atPunct("{"):
		p.advance()
		body := p.parseBody("}")
		p.expectPunct("}")
		return body
	case p.atKeyword("if"):
		p.advance()
		if p.atPunct("{") {
			p.advance()
			body := p.parseBody("}")
			p.expectPunct("}")
			return body
		}
		return p.parseBody("")
	default:
		return nil
	}
}

// parseBody parses a `;`/newline separated list of literals until the
// closing punct (if non-empty) or a statement boundary (newline/EOF/a
// top-level keyword) when closing is "".
func (p *parser) parseBody(closing string) Body {
	var body Body
	p.skipSeparators()
	for {
		if closing != "" {
			if p.atPunct(closing) || p.atEOF() {
				break
			}
		} else {
			if p.atEOF() || p.cur().Kind == TokenNewline || p.atKeyword("else") {
				break
			}
		}
		lit := p.parseLiteral()
		if lit != nil {
			body = append(body, lit)
		} else {
			p.resync()
		}
		if closing != "" {
			p.skipSeparators()
		} else if p.atPunct(";") {
			p.advance()
		} else {
			break
		}
	}
	return body
}

func (p *parser) parseLiteral() *Literal {
	loc := p.loc()
	switch {
	case p.atKeyword("some"):
		decl := p.parseSomeDecl()
		return &Literal{Location: loc, Kind: SomeLiteral, Some: decl}
	case p.atKeyword("every"):
		every := p.parseEvery()
		return &Literal{Location: loc, Kind: EveryLiteral, Every: every}
	default:
		expr := p.parseExpr(precAssign)
		lit := &Literal{Location: loc, Kind: ExprLiteral, Expr: expr}
		for p.atKeyword("with") {
			lit.With = append(lit.With, p.parseWith())
		}
		return lit
	}
}

func (p *parser) parseSomeDecl() *SomeDecl {
	loc := p.loc()
	p.advance() // 'some'
	decl := &SomeDecl{Location: loc}
	decl.Symbols = append(decl.Symbols, p.parsePattern())
	for p.atPunct(",") {
		p.advance()
		decl.Symbols = append(decl.Symbols, p.parsePattern())
	}
	if p.atKeyword("in") {
		p.advance()
		decl.Collection = p.parseExpr(precAssign + 1)
	}
	return decl
}

func (p *parser) parseEvery() *Every {
	loc := p.loc()
	p.advance() // 'every'
	first := p.parsePattern()
	every := &Every{Location: loc}
	if p.atPunct(",") {
		p.advance()
		second := p.parsePattern()
		every.Key = first
		every.Value = second
	} else {
		every.Value = first
	}
	p.expectKeyword("in")
	every.Domain = p.parseExpr(precAssign + 1)
	p.skipNL()
	p.expectPunct("{")
	every.Body = p.parseBody("}")
	p.expectPunct("}")
	return every
}

func (p *parser) parseWith() *With {
	loc := p.loc()
	p.advance() // 'with'
	target := p.parseExpr(precAssign + 1)
	p.expectKeyword("as")
	value := p.parseExpr(precAssign + 1)
	return &With{Location: loc, Target: target, Value: value}
}

// parsePattern parses a binding target for `some`/`every`: a variable or
// a destructuring array/object literal. It never consumes operators, so
// it stops short of turning `x` followed by `in` into anything but a Var.
func (p *parser) parsePattern() *Term {
	return p.parsePrimary()
}

// ---- expressions (precedence climbing) ----

func (p *parser) parseExpr(minPrec int) *Term {
	left := p.parseUnary()
	for {
		tok := p.cur()
		if tok.Kind != TokenOperator {
			break
		}
		prec, ok := binOpPrecedence[tok.Text]
		if !ok || prec < minPrec {
			break
		}
		p.advance()
		p.skipNL()
		right := p.parseExpr(prec + 1)
		left = BinaryOpTerm(binOpName[tok.Text], left, right)
	}
	return left
}

func (p *parser) parseUnary() *Term {
	loc := p.loc()
	if p.atKeyword("not") {
		p.advance()
		operand := p.parseUnary()
		return UnaryOpTerm(OpNot, operand).SetLocation(loc)
	}
	if p.atOp("-") {
		p.advance()
		operand := p.parseUnary()
		if n, ok := operand.Value.(Number); ok {
			return NewTerm(NumNeg(n)).SetLocation(loc)
		}
		return UnaryOpTerm(OpNeg, operand).SetLocation(loc)
	}
	return p.parsePostfix()
}

// parsePostfix parses a primary term followed by any dot/bracket
// reference segments and/or a call's argument list.
func (p *parser) parsePostfix() *Term {
	term := p.parsePrimary()
	for {
		switch {
		case p.atPunct("(") && isCallable(term):
			term = p.parseCallArgs(term)
		case p.atPunct("."):
			p.advance()
			seg, segLoc, ok := p.expectIdent()
			if !ok {
				return term
			}
			term = appendRefArg(term, NewDotArg(seg)).SetLocation(segLoc)
		case p.atPunct("["):
			p.advance()
			idx := p.parseExpr(precAssign + 1)
			bLoc, ok := p.expectPunct("]")
			if !ok {
				return term
			}
			term = appendRefArg(term, NewBracketArg(idx)).SetLocation(bLoc)
		default:
			return term
		}
	}
}

func isCallable(term *Term) bool {
	switch term.Value.(type) {
	case Var, Ref:
		return true
	default:
		return false
	}
}

func (p *parser) parseCallArgs(callee *Term) *Term {
	name := callName(callee)
	p.advance() // '('
	var args []*Term
	for !p.atPunct(")") && !p.atEOF() {
		args = append(args, p.parseExpr(precAssign+1))
		if p.atPunct(",") {
			p.advance()
			p.skipNL()
			continue
		}
		break
	}
	p.expectPunct(")")
	return CallTerm(name, args...)
}

func callName(t *Term) string {
	switch v := t.Value.(type) {
	case Var:
		return string(v)
	case Ref:
		if parts, ok := v.StaticDotPath(); ok {
			return strings.Join(parts, ".")
		}
		return v.String()
	default:
		return t.String()
	}
}

// appendRefArg extends term into (or turns term into) a Ref with arg
// appended to its path.
func appendRefArg(term *Term, arg RefArg) *Term {
	switch v := term.Value.(type) {
	case Ref:
		return NewTerm(v.Append(arg))
	default:
		return NewTerm(Ref{Head: term, Path: []RefArg{arg}})
	}
}

func (p *parser) parsePrimary() *Term {
	loc := p.loc()
	tok := p.cur()

	switch tok.Kind {
	case TokenNumber:
		p.advance()
		return NewTerm(NumberFromLiteral(tok.Text)).SetLocation(loc)

	case TokenString:
		p.advance()
		return p.buildStringTerm(tok, false).SetLocation(loc)

	case TokenRawString:
		p.advance()
		return p.buildStringTerm(tok, true).SetLocation(loc)

	case TokenIdent:
		p.advance()
		return VarTerm(tok.Text).SetLocation(loc)

	case TokenKeyword:
		switch tok.Text {
		case "true":
			p.advance()
			return BooleanTerm(true).SetLocation(loc)
		case "false":
			p.advance()
			return BooleanTerm(false).SetLocation(loc)
		case "null":
			p.advance()
			return NullTerm().SetLocation(loc)
		case "not":
			return p.parseUnary()
		default:
			p.errorf(loc, "unexpected keyword %q", tok.Text)
			p.advance()
			return NullTerm()
		}

	case TokenPunct:
		switch tok.Text {
		case "(":
			p.advance()
			p.skipNL()
			inner := p.parseExpr(precAssign + 1)
			p.skipNL()
			p.expectPunct(")")
			return inner
		case "[":
			return p.parseArrayOrComprehension(loc)
		case "{":
			return p.parseBraceLiteral(loc)
		}
	}

	p.errorf(loc, "unexpected token %q", tok.Text)
	p.advance()
	return NullTerm()
}

func (p *parser) buildStringTerm(tok Token, raw bool) *Term {
	if !containsUnescapedBrace(tok.Text) {
		if raw {
			return StringTerm(tok.Text)
		}
		return StringTerm(tok.Text)
	}
	parts := splitTemplateParts(tok.Text, p.file, tok.Location)
	return TemplateStringTerm(parts...)
}

// containsUnescapedBrace reports whether s has a `{` not immediately
// followed by another `{` (a literal escaped brace is written `{{`).
func containsUnescapedBrace(s string) bool {
	for i := 0; i < len(s); i++ {
		if s[i] == '{' {
			if i+1 < len(s) && s[i+1] == '{' {
				i++
				continue
			}
			return true
		}
	}
	return false
}

// splitTemplateParts scans s for `{ expr }` interpolations, tracking
// brace depth and quoted-string state so an expression may itself
// contain braces or quotes (spec.md §4.1).
func splitTemplateParts(s string, file string, loc *Location) []TemplatePart {
	var parts []TemplatePart
	var lit strings.Builder
	i := 0
	for i < len(s) {
		c := s[i]
		if c == '{' && i+1 < len(s) && s[i+1] == '{' {
			lit.WriteByte('{')
			i += 2
			continue
		}
		if c == '}' && i+1 < len(s) && s[i+1] == '}' {
			lit.WriteByte('}')
			i += 2
			continue
		}
		if c != '{' {
			lit.WriteByte(c)
			i++
			continue
		}
		// start of interpolation
		if lit.Len() > 0 {
			parts = append(parts, TemplatePart{Literal: lit.String()})
			lit.Reset()
		}
		depth := 1
		j := i + 1
		inStr := false
		for j < len(s) && depth > 0 {
			switch {
			case s[j] == '"' && (j == 0 || s[j-1] != '\\'):
				inStr = !inStr
			case !inStr && s[j] == '{':
				depth++
			case !inStr && s[j] == '}':
				depth--
				if depth == 0 {
					break
				}
			}
			if depth == 0 {
				break
			}
			j++
		}
		exprSrc := s[i+1 : j]
		expr, err := parseStandaloneExpr(exprSrc, file, loc)
		if err != nil {
			expr = UndefinedTerm()
		}
		parts = append(parts, TemplatePart{Expr: expr})
		i = j + 1
	}
	if lit.Len() > 0 || len(parts) == 0 {
		parts = append(parts, TemplatePart{Literal: lit.String()})
	}
	return parts
}

func parseStandaloneExpr(src, file string, loc *Location) (*Term, error) {
	toks, err := Tokenize([]byte(src), file)
	if err != nil {
		return nil, err
	}
	sub := &parser{toks: toks, file: file}
	term := sub.parseExpr(precAssign + 1)
	if len(sub.errs) > 0 {
		return nil, sub.errs
	}
	return term, nil
}

// parseArrayOrComprehension parses `[ ... ]`: an array literal, or an
// array comprehension if a `|` separates the first term from a body.
func (p *parser) parseArrayOrComprehension(loc *Location) *Term {
	p.advance() // '['
	p.skipNL()
	if p.atPunct("]") {
		p.advance()
		return ArrayTerm().SetLocation(loc)
	}
	first := p.parseExpr(precOr + 1)
	p.skipNL()
	if p.atOp("|") {
		p.advance()
		p.skipNL()
		body := p.parseBody("]")
		p.expectPunct("]")
		return ArrayComprehensionTerm(first, body).SetLocation(loc)
	}
	elems := []*Term{first}
	for p.atPunct(",") {
		p.advance()
		p.skipNL()
		if p.atPunct("]") {
			break
		}
		elems = append(elems, p.parseExpr(precAssign+1))
		p.skipNL()
	}
	p.expectPunct("]")
	return ArrayTerm(elems...).SetLocation(loc)
}

// parseBraceLiteral parses `{ ... }`: empty object, object literal, set
// literal, or a set/object comprehension.
func (p *parser) parseBraceLiteral(loc *Location) *Term {
	p.advance() // '{'
	p.skipNL()
	if p.atPunct("}") {
		p.advance()
		return ObjectTerm().SetLocation(loc)
	}

	first := p.parseExpr(precOr + 1)
	p.skipNL()

	if p.atPunct(":") {
		p.advance()
		p.skipNL()
		value := p.parseExpr(precOr + 1)
		p.skipNL()
		if p.atOp("|") {
			p.advance()
			p.skipNL()
			body := p.parseBody("}")
			p.expectPunct("}")
			return ObjectComprehensionTerm(first, value, body).SetLocation(loc)
		}
		pairs := [][2]*Term{{first, value}}
		for p.atPunct(",") {
			p.advance()
			p.skipNL()
			if p.atPunct("}") {
				break
			}
			k := p.parseExpr(precAssign + 1)
			p.skipNL()
			p.expectPunct(":")
			p.skipNL()
			v := p.parseExpr(precAssign + 1)
			p.skipNL()
			pairs = append(pairs, [2]*Term{k, v})
		}
		p.expectPunct("}")
		return ObjectTerm(pairs...).SetLocation(loc)
	}

	if p.atOp("|") {
		p.advance()
		p.skipNL()
		body := p.parseBody("}")
		p.expectPunct("}")
		return SetComprehensionTerm(first, body).SetLocation(loc)
	}

	elems := []*Term{first}
	for p.atPunct(",") {
		p.advance()
		p.skipNL()
		if p.atPunct("}") {
			break
		}
		elems = append(elems, p.parseExpr(precAssign+1))
		p.skipNL()
	}
	p.expectPunct("}")
	return SetTerm(elems...).SetLocation(loc)
}

var _ = strconv.Itoa // reserved for future numeric formatting in diagnostics
