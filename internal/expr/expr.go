package expr

import (
	"strconv"
	"strings"

	"github.com/pkg/errors"

	"github.com/askiada/go-pisa/pkg/units"
)

const unitPrefix = "units."

var (
	ErrSyntax            = errors.New("syntax error")
	ErrUnknownIdentifier = errors.New("unknown identifier")
	ErrType              = errors.New("type error")
)

// Env is the closed set of names an expression may reference.
type Env map[string]units.Quantity

var binaryPrecedence = map[string]int{
	"+": 10,
	"-": 10,
	"*": 20,
	"/": 20,
}

// Eval evaluates src against env. Besides the names in env, only literals,
// unit references (units.<name>), lists, keyword dictionaries and arithmetic
// are understood.
func Eval(src string, env Env) (Value, error) {
	tokens, err := lex(src)
	if err != nil {
		return Value{}, err
	}
	p := &parser{tokens: tokens, env: env}
	v, err := p.expr(0)
	if err != nil {
		return Value{}, err
	}
	if tok := p.peek(); tok.typ != tokenEOF {
		return Value{}, errors.Wrapf(ErrSyntax, "unexpected %q at %d", tok.val, tok.pos)
	}
	return v, nil
}

type parser struct {
	tokens []token
	pos    int
	env    Env
}

func (p *parser) peek() token {
	return p.tokens[p.pos]
}

func (p *parser) next() token {
	tok := p.tokens[p.pos]
	if tok.typ != tokenEOF {
		p.pos++
	}
	return tok
}

func (p *parser) isOp(val string) bool {
	tok := p.peek()
	return tok.typ == tokenOp && tok.val == val
}

func (p *parser) expect(val string) error {
	tok := p.next()
	if tok.typ != tokenOp || tok.val != val {
		return errors.Wrapf(ErrSyntax, "expected %q at %d, got %q", val, tok.pos, tok.val)
	}
	return nil
}

func (p *parser) expr(minPrec int) (Value, error) {
	left, err := p.unary()
	if err != nil {
		return Value{}, err
	}
	for {
		tok := p.peek()
		prec, ok := binaryPrecedence[tok.val]
		if tok.typ != tokenOp || !ok || prec < minPrec {
			return left, nil
		}
		p.next()
		right, err := p.expr(prec + 1)
		if err != nil {
			return Value{}, err
		}
		left, err = binary(tok.val, left, right)
		if err != nil {
			return Value{}, err
		}
	}
}

func (p *parser) unary() (Value, error) {
	switch {
	case p.isOp("-"):
		p.next()
		v, err := p.unary()
		if err != nil {
			return Value{}, err
		}
		return negate(v)
	case p.isOp("+"):
		p.next()
		return p.unary()
	}
	return p.power()
}

func (p *parser) power() (Value, error) {
	base, err := p.primary()
	if err != nil {
		return Value{}, err
	}
	if !p.isOp("**") {
		return base, nil
	}
	p.next()
	exp, err := p.unary()
	if err != nil {
		return Value{}, err
	}
	return binary("**", base, exp)
}

func (p *parser) primary() (Value, error) {
	tok := p.next()
	switch tok.typ {
	case tokenNumber:
		f, err := strconv.ParseFloat(tok.val, 64)
		if err != nil {
			return Value{}, errors.Wrapf(ErrSyntax, "bad number %q", tok.val)
		}
		return Number(units.New(f, units.Dimensionless)), nil
	case tokenString:
		return Value{Kind: KindString, Str: tok.val}, nil
	case tokenIdent:
		return p.ident(tok)
	case tokenOp:
		switch tok.val {
		case "(":
			v, err := p.expr(0)
			if err != nil {
				return Value{}, err
			}
			return v, p.expect(")")
		case "[":
			return p.list()
		case "{":
			return p.braceDict()
		}
	}
	if tok.typ == tokenEOF {
		return Value{}, errors.Wrap(ErrSyntax, "unexpected end of expression")
	}
	return Value{}, errors.Wrapf(ErrSyntax, "unexpected %q at %d", tok.val, tok.pos)
}

func (p *parser) ident(tok token) (Value, error) {
	switch tok.val {
	case "True":
		return Value{Kind: KindBool, Bool: true}, nil
	case "False":
		return Value{Kind: KindBool}, nil
	case "None":
		return Value{Kind: KindNone}, nil
	case "dict":
		if p.isOp("(") {
			p.next()
			return p.callDict()
		}
	}
	if name, ok := strings.CutPrefix(tok.val, unitPrefix); ok {
		u, err := units.ParseUnit(name)
		if err != nil {
			return Value{}, err
		}
		return Number(units.New(1, u)), nil
	}
	if q, ok := p.env[tok.val]; ok {
		return Number(q), nil
	}
	return Value{}, errors.Wrapf(ErrUnknownIdentifier, "%q at %d", tok.val, tok.pos)
}

func (p *parser) list() (Value, error) {
	var items []Value
	for !p.isOp("]") {
		v, err := p.expr(0)
		if err != nil {
			return Value{}, err
		}
		items = append(items, v)
		if !p.isOp(",") {
			break
		}
		p.next()
	}
	return Value{Kind: KindList, List: items}, p.expect("]")
}

// callDict parses dict(key=value, ...) after the opening parenthesis.
func (p *parser) callDict() (Value, error) {
	d := newDict()
	for !p.isOp(")") {
		key := p.next()
		if key.typ != tokenIdent || strings.Contains(key.val, ".") {
			return Value{}, errors.Wrapf(ErrSyntax, "expected keyword at %d, got %q", key.pos, key.val)
		}
		if err := p.expect("="); err != nil {
			return Value{}, err
		}
		v, err := p.expr(0)
		if err != nil {
			return Value{}, err
		}
		if err := d.set(key.val, v); err != nil {
			return Value{}, err
		}
		if !p.isOp(",") {
			break
		}
		p.next()
	}
	return Value{Kind: KindDict, Dict: d}, p.expect(")")
}

// braceDict parses {'key': value, ...} after the opening brace.
func (p *parser) braceDict() (Value, error) {
	d := newDict()
	for !p.isOp("}") {
		key := p.next()
		if key.typ != tokenString {
			return Value{}, errors.Wrapf(ErrSyntax, "expected string key at %d, got %q", key.pos, key.val)
		}
		if err := p.expect(":"); err != nil {
			return Value{}, err
		}
		v, err := p.expr(0)
		if err != nil {
			return Value{}, err
		}
		if err := d.set(key.val, v); err != nil {
			return Value{}, err
		}
		if !p.isOp(",") {
			break
		}
		p.next()
	}
	return Value{Kind: KindDict, Dict: d}, p.expect("}")
}
