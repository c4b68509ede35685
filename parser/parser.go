// Package parser turns datamodel source text into an *ast.Datamodel.
//
// It is a small hand-rolled recursive-descent parser, following the same
// "parse a flat token stream into a typed tree, accumulate the position as
// you go" style the reference schema tool uses for its own Go-struct
// annotation parser. Unlike that parser, this one reads a `.prisma`-style
// grammar: top-level `model`/`enum`/`type`/`source`/`generator` blocks.
package parser

import (
	"strconv"

	"github.com/kodeflow/datamodel/ast"
	"github.com/kodeflow/datamodel/lexer"
)

// Parser holds the token cursor over a single source file.
type Parser struct {
	lx   *lexer.Lexer
	tok  lexer.Token
	next lexer.Token
	src  string
}

// Parse parses src and returns the resulting datamodel, or the first error
// encountered. Unlike the semantic validator, the parser fails fast: a
// malformed source file has no well-formed partial tree to accumulate
// errors against.
func Parse(src string) (*ast.Datamodel, error) {
	p := &Parser{lx: lexer.New(src), src: src}
	p.advance()
	p.advance()
	return p.parseDatamodel()
}

func (p *Parser) advance() {
	p.tok = p.next
	p.next = p.lx.Next()
}

func (p *Parser) parseDatamodel() (*ast.Datamodel, error) {
	dm := &ast.Datamodel{}
	for p.tok.Kind != lexer.TokEOF {
		switch {
		case p.tok.Kind == lexer.TokIdent && p.tok.Text == "model":
			m, err := p.parseModel()
			if err != nil {
				return nil, err
			}
			dm.Models = append(dm.Models, m)
		case p.tok.Kind == lexer.TokIdent && p.tok.Text == "enum":
			e, err := p.parseEnum()
			if err != nil {
				return nil, err
			}
			dm.Enums = append(dm.Enums, e)
		case p.tok.Kind == lexer.TokIdent && p.tok.Text == "type":
			// `type X { ... }` is the pre-1.0 way of declaring a model; reject
			// it with the fixed legacy message. `type X = ...` (a genuine type
			// alias) is still accepted.
			start := p.tok.Start
			nameTok := p.next
			if nameTok.Kind == lexer.TokIdent {
				after := p.peekAfter(nameTok)
				if after.Kind == lexer.TokLBrace {
					return nil, &LegacyParserError{Message: legacyModelKeyword, Span: ast.NewSpan(start, nameTok.End)}
				}
			}
			ta, err := p.parseTypeAlias()
			if err != nil {
				return nil, err
			}
			dm.Types = append(dm.Types, ta)
		case p.tok.Kind == lexer.TokIdent && p.tok.Text == "source":
			s, err := p.parseSource()
			if err != nil {
				return nil, err
			}
			dm.Sources = append(dm.Sources, s)
		case p.tok.Kind == lexer.TokIdent && p.tok.Text == "generator":
			g, err := p.parseGenerator()
			if err != nil {
				return nil, err
			}
			dm.Generators = append(dm.Generators, g)
		default:
			return nil, &ParserError{
				Expected: []string{"end of input", "type declaration", "model declaration", "enum declaration", "source definition", "generator definition"},
				Span:     ast.NewSpan(p.tok.Start, p.tok.Start),
			}
		}
	}
	return dm, nil
}

// peekAfter performs a one-token lookahead past an already-peeked token by
// re-lexing from its end. Used only for the `type X {` vs `type X =`
// disambiguation, which needs to see two tokens past the current one.
func (p *Parser) peekAfter(t lexer.Token) lexer.Token {
	sub := lexer.New(p.src[t.End:])
	tok := sub.Next()
	tok.Start += t.End
	tok.End += t.End
	return tok
}

func (p *Parser) expectIdent(expectedDesc string) (lexer.Token, error) {
	if p.tok.Kind != lexer.TokIdent {
		return lexer.Token{}, &ParserError{Expected: []string{expectedDesc}, Span: ast.NewSpan(p.tok.Start, p.tok.Start)}
	}
	t := p.tok
	p.advance()
	return t, nil
}

func (p *Parser) expect(kind lexer.TokenKind, desc string) (lexer.Token, error) {
	if p.tok.Kind != kind {
		return lexer.Token{}, &ParserError{Expected: []string{desc}, Span: ast.NewSpan(p.tok.Start, p.tok.Start)}
	}
	t := p.tok
	p.advance()
	return t, nil
}

func (p *Parser) parseModel() (*ast.Model, error) {
	start := p.tok.Start
	p.advance() // 'model'
	nameTok, err := p.expectIdent("model name")
	if err != nil {
		return nil, err
	}
	if _, err := p.expect(lexer.TokLBrace, `Start of block ("{")`); err != nil {
		return nil, err
	}

	m := &ast.Model{Name: nameTok.Text}
	for p.tok.Kind != lexer.TokRBrace {
		if p.tok.Kind == lexer.TokEOF {
			return nil, &ParserError{Expected: []string{`End of block ("}")`}, Span: ast.NewSpan(p.tok.Start, p.tok.Start)}
		}
		if p.tok.Kind == lexer.TokAtAt {
			d, err := p.parseDirective()
			if err != nil {
				return nil, err
			}
			m.Directives = append(m.Directives, d)
			continue
		}
		f, err := p.parseField()
		if err != nil {
			return nil, err
		}
		m.Fields = append(m.Fields, f)
	}
	end := p.tok.End
	p.advance() // '}'
	m.Span = ast.NewSpan(start, end)
	return m, nil
}

func (p *Parser) parseField() (*ast.Field, error) {
	nameTok, err := p.expectIdent("field name")
	if err != nil {
		return nil, err
	}

	if p.tok.Kind == lexer.TokBadColon {
		return nil, &LegacyParserError{Message: legacyColonMsg, Span: ast.NewSpan(p.tok.Start, p.tok.End)}
	}

	if p.tok.Kind == lexer.TokLBracket {
		// `[Type]` is the superseded list syntax; consume the closed bracket
		// group so the span covers the whole construct.
		start := p.tok.Start
		end := p.tok.End
		p.advance()
		if p.tok.Kind == lexer.TokIdent {
			p.advance()
		}
		if p.tok.Kind == lexer.TokRBracket {
			end = p.tok.End
			p.advance()
		}
		return nil, &LegacyParserError{Message: legacyListMsg, Span: ast.NewSpan(start, end)}
	}

	if p.tok.Kind != lexer.TokIdent {
		return nil, &ParserError{Expected: []string{"field type"}, Span: ast.NewSpan(p.tok.Start, p.tok.Start)}
	}
	typeTok := p.tok
	p.advance()

	arity := ast.Required
	switch p.tok.Kind {
	case lexer.TokQuestion:
		arity = ast.Optional
		p.advance()
	case lexer.TokLBracket:
		p.advance()
		if _, err := p.expect(lexer.TokRBracket, `"]"`); err != nil {
			return nil, err
		}
		arity = ast.List
	case lexer.TokBadBang:
		return nil, &LegacyParserError{Message: legacyBangMsg, Span: ast.NewSpan(typeTok.Start, p.tok.End)}
	}

	f := &ast.Field{
		Name: nameTok.Text,
		Type: ast.FieldTypeRef{Name: typeTok.Text, Arity: arity},
	}

	for p.tok.Kind == lexer.TokAt {
		d, err := p.parseDirective()
		if err != nil {
			return nil, err
		}
		f.Directives = append(f.Directives, d)
	}

	f.Span = ast.NewSpan(nameTok.Start, typeTok.End)
	return f, nil
}

func (p *Parser) parseDirective() (*ast.Directive, error) {
	start := p.tok.Start
	p.advance() // '@' or '@@'

	if p.tok.Kind != lexer.TokIdent {
		return nil, &ParserError{Expected: []string{"directive"}, Span: ast.NewSpan(p.tok.Start, p.tok.Start)}
	}
	nameTok := p.tok
	p.advance()

	name := nameTok.Text
	end := nameTok.End
	// A dotted name (`@pg.something`) addresses a source-namespaced
	// directive registry.
	if p.tok.Kind == lexer.TokDot && p.next.Kind == lexer.TokIdent {
		p.advance()
		name += "." + p.tok.Text
		end = p.tok.End
		p.advance()
	}

	d := &ast.Directive{Name: name}

	if p.tok.Kind == lexer.TokLParen {
		p.advance()
		for p.tok.Kind != lexer.TokRParen {
			arg, err := p.parseArg()
			if err != nil {
				return nil, err
			}
			d.Args = append(d.Args, arg)
			if p.tok.Kind == lexer.TokComma {
				p.advance()
			}
		}
		end = p.tok.End
		p.advance() // ')'
	}
	d.Span = ast.NewSpan(start, end)
	return d, nil
}

func (p *Parser) parseArg() (*ast.Arg, error) {
	start := p.tok.Start
	name := ""
	if p.tok.Kind == lexer.TokIdent && p.next.Kind == lexer.TokBadColon {
		// Inside a directive's parens, `:` is the named-argument separator,
		// not the legacy field-colon syntax; reuse the same token kind and
		// disambiguate here by context.
		name = p.tok.Text
		p.advance() // ident
		p.advance() // ':'
	}
	val, err := p.parseValue()
	if err != nil {
		return nil, err
	}
	return &ast.Arg{Name: name, Value: val, Span: ast.NewSpan(start, val.Span.End)}, nil
}

func (p *Parser) parseValue() (*ast.ValueExpr, error) {
	start := p.tok.Start
	switch p.tok.Kind {
	case lexer.TokString:
		v := &ast.ValueExpr{Kind: ast.ValueString, Str: p.tok.Text, Span: ast.NewSpan(start, p.tok.End)}
		p.advance()
		return v, nil
	case lexer.TokInt:
		var n int64
		for _, c := range p.tok.Text {
			n = n*10 + int64(c-'0')
		}
		v := &ast.ValueExpr{Kind: ast.ValueInt, Int: n, Span: ast.NewSpan(start, p.tok.End)}
		p.advance()
		return v, nil
	case lexer.TokFloat:
		f, _ := strconv.ParseFloat(p.tok.Text, 64)
		v := &ast.ValueExpr{Kind: ast.ValueFloat, Str: p.tok.Text, Float: f, Span: ast.NewSpan(start, p.tok.End)}
		p.advance()
		return v, nil
	case lexer.TokLBracket:
		p.advance()
		v := &ast.ValueExpr{Kind: ast.ValueArray, Span: ast.NewSpan(start, start)}
		for p.tok.Kind != lexer.TokRBracket {
			elem, err := p.parseValue()
			if err != nil {
				return nil, err
			}
			v.Elems = append(v.Elems, elem)
			if p.tok.Kind == lexer.TokComma {
				p.advance()
			}
		}
		v.Span.End = p.tok.End
		p.advance()
		return v, nil
	case lexer.TokIdent:
		if p.tok.Text == "true" || p.tok.Text == "false" {
			v := &ast.ValueExpr{Kind: ast.ValueBool, Bool: p.tok.Text == "true", Span: ast.NewSpan(start, p.tok.End)}
			p.advance()
			return v, nil
		}
		name := p.tok.Text
		p.advance()
		if p.tok.Kind == lexer.TokLParen {
			p.advance()
			v := &ast.ValueExpr{Kind: ast.ValueCall, Str: name, Span: ast.NewSpan(start, start)}
			for p.tok.Kind != lexer.TokRParen {
				arg, err := p.parseValue()
				if err != nil {
					return nil, err
				}
				v.CallArgs = append(v.CallArgs, arg)
				if p.tok.Kind == lexer.TokComma {
					p.advance()
				}
			}
			v.Span.End = p.tok.End
			p.advance()
			return v, nil
		}
		return &ast.ValueExpr{Kind: ast.ValueIdent, Str: name, Span: ast.NewSpan(start, start+len(name))}, nil
	default:
		return nil, &ParserError{Expected: []string{"value"}, Span: ast.NewSpan(p.tok.Start, p.tok.Start)}
	}
}

func (p *Parser) parseEnum() (*ast.Enum, error) {
	start := p.tok.Start
	p.advance() // 'enum'
	nameTok, err := p.expectIdent("enum name")
	if err != nil {
		return nil, err
	}
	if _, err := p.expect(lexer.TokLBrace, `Start of block ("{")`); err != nil {
		return nil, err
	}
	e := &ast.Enum{Name: nameTok.Text}
	for p.tok.Kind != lexer.TokRBrace {
		if p.tok.Kind != lexer.TokIdent {
			return nil, &ParserError{Expected: []string{`End of block ("}")`, "enum field declaration"}, Span: ast.NewSpan(p.tok.Start, p.tok.Start)}
		}
		e.Values = append(e.Values, p.tok.Text)
		p.advance()
	}
	end := p.tok.End
	p.advance() // '}'
	e.Span = ast.NewSpan(start, end)
	return e, nil
}

func (p *Parser) parseTypeAlias() (*ast.TypeAlias, error) {
	start := p.tok.Start
	p.advance() // 'type'
	nameTok, err := p.expectIdent("type name")
	if err != nil {
		return nil, err
	}
	if _, err := p.expect(lexer.TokEquals, `"="`); err != nil {
		return nil, err
	}
	targetTok, err := p.expectIdent("type target")
	if err != nil {
		return nil, err
	}
	return &ast.TypeAlias{Name: nameTok.Text, Target: targetTok.Text, Span: ast.NewSpan(start, targetTok.End)}, nil
}

func (p *Parser) parseSource() (*ast.SourceConfig, error) {
	return p.parseConfigBlock("source")
}

func (p *Parser) parseGenerator() (*ast.GeneratorConfig, error) {
	s, err := p.parseConfigBlock("generator")
	if err != nil {
		return nil, err
	}
	return (*ast.GeneratorConfig)(s), nil
}

func (p *Parser) parseConfigBlock(keyword string) (*ast.SourceConfig, error) {
	start := p.tok.Start
	p.advance() // keyword
	nameTok, err := p.expectIdent(keyword + " name")
	if err != nil {
		return nil, err
	}
	if _, err := p.expect(lexer.TokLBrace, `Start of block ("{")`); err != nil {
		return nil, err
	}
	cfg := &ast.SourceConfig{Name: nameTok.Text}
	for p.tok.Kind != lexer.TokRBrace {
		if p.tok.Kind != lexer.TokIdent {
			return nil, &ParserError{Expected: []string{`End of block ("}")`, "config key"}, Span: ast.NewSpan(p.tok.Start, p.tok.Start)}
		}
		keyTok := p.tok
		p.advance()
		if _, err := p.expect(lexer.TokEquals, `"="`); err != nil {
			return nil, err
		}
		val, err := p.parseValue()
		if err != nil {
			return nil, err
		}
		cfg.Args = append(cfg.Args, &ast.Arg{Name: keyTok.Text, Value: val, Span: ast.NewSpan(keyTok.Start, val.Span.End)})
	}
	end := p.tok.End
	p.advance() // '}'
	cfg.Span = ast.NewSpan(start, end)
	return cfg, nil
}
