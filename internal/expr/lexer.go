package expr

import (
	"strings"

	"github.com/pkg/errors"
)

type tokenType int

const (
	tokenEOF tokenType = iota
	tokenNumber
	tokenString
	tokenIdent
	tokenOp
)

type token struct {
	typ tokenType
	val string
	pos int
}

// lex splits src into tokens. Identifiers may contain dots so that "units.GeV"
// is a single token.
func lex(src string) ([]token, error) {
	var tokens []token
	pos := 0
	for pos < len(src) {
		c := src[pos]
		switch {
		case c == ' ' || c == '\t' || c == '\n' || c == '\r':
			pos++
		case isDigit(c) || (c == '.' && pos+1 < len(src) && isDigit(src[pos+1])):
			end := scanNumber(src, pos)
			tokens = append(tokens, token{typ: tokenNumber, val: src[pos:end], pos: pos})
			pos = end
		case (c == 'r' || c == 'R') && pos+1 < len(src) && isQuote(src[pos+1]):
			s, end, err := scanString(src, pos+1, true)
			if err != nil {
				return nil, err
			}
			tokens = append(tokens, token{typ: tokenString, val: s, pos: pos})
			pos = end
		case isQuote(c):
			s, end, err := scanString(src, pos, false)
			if err != nil {
				return nil, err
			}
			tokens = append(tokens, token{typ: tokenString, val: s, pos: pos})
			pos = end
		case isIdentStart(c):
			end := pos + 1
			for end < len(src) && (isIdentStart(src[end]) || isDigit(src[end]) || src[end] == '.') {
				end++
			}
			tokens = append(tokens, token{typ: tokenIdent, val: src[pos:end], pos: pos})
			pos = end
		case strings.HasPrefix(src[pos:], "**"):
			tokens = append(tokens, token{typ: tokenOp, val: "**", pos: pos})
			pos += 2
		case strings.IndexByte("+-*/()[]{},=:", c) >= 0:
			tokens = append(tokens, token{typ: tokenOp, val: string(c), pos: pos})
			pos++
		default:
			return nil, errors.Wrapf(ErrSyntax, "unexpected %q at %d", c, pos)
		}
	}
	return append(tokens, token{typ: tokenEOF, pos: pos}), nil
}

func scanNumber(src string, pos int) int {
	end := pos
	for end < len(src) && (isDigit(src[end]) || src[end] == '.') {
		end++
	}
	if end < len(src) && (src[end] == 'e' || src[end] == 'E') {
		exp := end + 1
		if exp < len(src) && (src[exp] == '+' || src[exp] == '-') {
			exp++
		}
		if exp < len(src) && isDigit(src[exp]) {
			end = exp
			for end < len(src) && isDigit(src[end]) {
				end++
			}
		}
	}
	return end
}

func scanString(src string, pos int, raw bool) (string, int, error) {
	quote := src[pos]
	var b strings.Builder
	for i := pos + 1; i < len(src); i++ {
		c := src[i]
		switch {
		case c == quote:
			return b.String(), i + 1, nil
		case c == '\\' && i+1 < len(src):
			if raw {
				b.WriteByte(c)
				b.WriteByte(src[i+1])
			} else {
				b.WriteByte(src[i+1])
			}
			i++
		default:
			b.WriteByte(c)
		}
	}
	return "", 0, errors.Wrapf(ErrSyntax, "unterminated string at %d", pos)
}

func isDigit(c byte) bool      { return c >= '0' && c <= '9' }
func isQuote(c byte) bool      { return c == '\'' || c == '"' }
func isIdentStart(c byte) bool { return c == '_' || (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z') }
